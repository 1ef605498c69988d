package compose

import (
	"context"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Overlay Validation
// =============================================================================

// ValidateOverlay parses a generated compose overlay with the compose
// loader and checks it is deployable: valid YAML, at least one service,
// every service with an image or build. Interpolation is skipped because
// the overlay may legitimately carry ${...} references resolved by the
// stack manager's runtime environment at deploy time.
func ValidateOverlay(ctx context.Context, yamlContent string) error {
	if strings.TrimSpace(yamlContent) == "" {
		return ErrEmptyInput
	}

	var dict map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &dict); err != nil {
		return NewOverlayError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return NewOverlayError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("hubctl-validate", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = true
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "image") && strings.Contains(errStr, "build") {
			return NewOverlayError("", "service must have image or build", ErrServiceNoImage)
		}
		return NewOverlayError("", errStr, ErrInvalidYAML)
	}

	if len(project.Services) == 0 {
		return NewOverlayError("services", "compose document must define at least one service", ErrNoServices)
	}
	for _, svc := range project.Services {
		if svc.Image == "" && svc.Build == nil {
			return NewOverlayError("services."+svc.Name, "service must have image or build", ErrServiceNoImage)
		}
	}
	return nil
}
