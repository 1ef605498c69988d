package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoamiDoc() map[string]any {
	return map[string]any{
		"services": map[string]any{
			"whoami": map[string]any{
				"image": "traefik/whoami:latest",
				"environment": map[string]any{
					"EXISTING": "kept",
				},
			},
		},
	}
}

// =============================================================================
// BuildOverlay Tests
// =============================================================================

func TestBuildOverlay_InjectsEnvironment(t *testing.T) {
	out, err := BuildOverlay(whoamiDoc(), "whoami", map[string]any{"TZ": "UTC"})
	require.NoError(t, err)

	svc := out["services"].(map[string]any)["whoami"].(map[string]any)
	env := svc["environment"].(map[string]any)
	assert.Equal(t, "UTC", env["TZ"])
	assert.Equal(t, "kept", env["EXISTING"])
}

func TestBuildOverlay_FlattensNestedEnv(t *testing.T) {
	out, err := BuildOverlay(whoamiDoc(), "whoami", map[string]any{
		"db": map[string]any{"host": "pg", "port": 5432},
	})
	require.NoError(t, err)

	env := out["services"].(map[string]any)["whoami"].(map[string]any)["environment"].(map[string]any)
	assert.Equal(t, "pg", env["db_host"])
	assert.Equal(t, "5432", env["db_port"])
}

func TestBuildOverlay_AttachesHubNetwork(t *testing.T) {
	out, err := BuildOverlay(whoamiDoc(), "whoami", nil)
	require.NoError(t, err)

	svc := out["services"].(map[string]any)["whoami"].(map[string]any)
	assert.Equal(t, []any{HubNetworkName}, svc["networks"])

	networks := out["networks"].(map[string]any)
	assert.Equal(t, map[string]any{"external": true}, networks[HubNetworkName])
}

func TestBuildOverlay_PreservesTemplateNetworks(t *testing.T) {
	doc := whoamiDoc()
	doc["services"].(map[string]any)["whoami"].(map[string]any)["networks"] = []any{"internal"}

	out, err := BuildOverlay(doc, "whoami", nil)
	require.NoError(t, err)

	svc := out["services"].(map[string]any)["whoami"].(map[string]any)
	assert.Equal(t, []any{"internal", HubNetworkName}, svc["networks"])
}

func TestBuildOverlay_HubNetworkNotDuplicated(t *testing.T) {
	doc := whoamiDoc()
	doc["services"].(map[string]any)["whoami"].(map[string]any)["networks"] = []any{HubNetworkName}

	out, err := BuildOverlay(doc, "whoami", nil)
	require.NoError(t, err)

	svc := out["services"].(map[string]any)["whoami"].(map[string]any)
	assert.Equal(t, []any{HubNetworkName}, svc["networks"])
}

func TestBuildOverlay_DoesNotMutateInput(t *testing.T) {
	doc := whoamiDoc()
	_, err := BuildOverlay(doc, "whoami", map[string]any{"TZ": "UTC"})
	require.NoError(t, err)

	svc := doc["services"].(map[string]any)["whoami"].(map[string]any)
	assert.Nil(t, svc["networks"])
	assert.NotContains(t, svc["environment"].(map[string]any), "TZ")
}

func TestBuildOverlay_Errors(t *testing.T) {
	_, err := BuildOverlay(map[string]any{}, "whoami", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = BuildOverlay(map[string]any{"version": "3"}, "whoami", nil)
	assert.ErrorIs(t, err, ErrNoServices)

	_, err = BuildOverlay(whoamiDoc(), "other", nil)
	assert.ErrorIs(t, err, ErrServiceMissing)

	var oErr *OverlayError
	require.ErrorAs(t, err, &oErr)
	assert.Equal(t, "services.other", oErr.Field)
}

// =============================================================================
// FlattenEnv Tests
// =============================================================================

func TestFlattenEnv_Scalars(t *testing.T) {
	flat := FlattenEnv(map[string]any{
		"STR":  "x",
		"INT":  42,
		"BOOL": true,
		"NIL":  nil,
	})
	assert.Equal(t, map[string]string{
		"STR":  "x",
		"INT":  "42",
		"BOOL": "true",
		"NIL":  "",
	}, flat)
}

// =============================================================================
// ValidateOverlay Tests
// =============================================================================

func TestValidateOverlay_ValidDocument(t *testing.T) {
	assert.NoError(t, ValidateOverlay(t.Context(), `
services:
  whoami:
    image: traefik/whoami:latest
    environment:
      TZ: UTC
networks:
  hub:
    external: true
`))
}

func TestValidateOverlay_EmptyInput(t *testing.T) {
	assert.ErrorIs(t, ValidateOverlay(t.Context(), "   \n"), ErrEmptyInput)
}

func TestValidateOverlay_InvalidYAML(t *testing.T) {
	assert.ErrorIs(t, ValidateOverlay(t.Context(), "services: [unclosed"), ErrInvalidYAML)
}

func TestValidateOverlay_ServiceWithoutImage(t *testing.T) {
	err := ValidateOverlay(t.Context(), `
services:
  broken:
    environment:
      A: "1"
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceNoImage)
}
