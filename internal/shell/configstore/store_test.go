package configstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammck/hubctl/internal/core/hub"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "hub-config.yml"))
}

// =============================================================================
// Load / Save Tests
// =============================================================================

func TestLoad_MissingFile(t *testing.T) {
	s := tempStore(t)
	_, err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_MissingHubSection(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, os.WriteFile(s.Path, []byte("other: {}\n"), 0o600))

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrMissingHubSection)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := tempStore(t)
	cfg := &hub.HubConfig{
		ParentDNSDomain:     "example.com",
		DefaultCertResolver: "staging",
		AppSubdomain:        "apps",
		BaseStackEnv:        map[string]any{"TZ": "UTC"},
	}
	require.NoError(t, s.Save(cfg))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "example.com", loaded.ParentDNSDomain)
	assert.Equal(t, "apps", loaded.AppSubdomain)
	assert.Equal(t, map[string]any{"TZ": "UTC"}, loaded.BaseStackEnv)
	assert.Equal(t, hub.CurrentConfigVersion, loaded.Version)
}

func TestSave_RejectsInvalidConfig(t *testing.T) {
	s := tempStore(t)
	err := s.Save(&hub.HubConfig{DefaultCertResolver: "staging"})
	assert.ErrorIs(t, err, hub.ErrDomainRequired)

	_, statErr := os.Stat(s.Path)
	assert.True(t, os.IsNotExist(statErr), "invalid config must not be persisted")
}

func TestSave_FileModeProtectsSecrets(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(&hub.HubConfig{
		ParentDNSDomain:     "example.com",
		DefaultCertResolver: "staging",
	}))

	info, err := os.Stat(s.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

// =============================================================================
// Get / Set Tests
// =============================================================================

func TestSet_CreatesDocumentIncrementally(t *testing.T) {
	s := tempStore(t)

	// First-time init: required fields arrive one set at a time.
	require.NoError(t, s.Set("parent_dns_domain", "example.com"))
	require.NoError(t, s.Set("default_cert_resolver", "prod"))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "example.com", cfg.ParentDNSDomain)
	assert.Equal(t, "prod", cfg.DefaultCertResolver)
}

func TestSet_RejectsBadValue(t *testing.T) {
	s := tempStore(t)
	err := s.Set("parent_dns_domain", "not a domain")
	assert.ErrorIs(t, err, hub.ErrDomainInvalid)
}

func TestSet_UnknownKey(t *testing.T) {
	s := tempStore(t)
	err := s.Set("no_such_key", "v")
	assert.ErrorIs(t, err, hub.ErrUnknownKey)
}

func TestGet_EffectiveValues(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(&hub.HubConfig{
		ParentDNSDomain:     "example.com",
		DefaultCertResolver: "staging",
	}))

	tests := []struct {
		key  string
		want string
	}{
		{"parent_dns_domain", "example.com"},
		{"admin_parent_dns_domain", "example.com"},   // defaults to parent
		{"admin_cert_resolver", "prod"},              // fixed default
		{"app_cert_resolver", "staging"},             // defaults to default resolver
		{"default_app_subdomain", "hub"},             // fixed default
		{"stable_public_dns_name", "ddns.example.com"},
	}
	for _, tt := range tests {
		got, err := s.Get(tt.key)
		require.NoError(t, err, "key %s", tt.key)
		assert.Equal(t, tt.want, got, "key %s", tt.key)
	}
}

func TestGet_AcceptsHubPrefix(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(&hub.HubConfig{
		ParentDNSDomain:     "example.com",
		DefaultCertResolver: "staging",
	}))

	got, err := s.Get("hub.parent_dns_domain")
	require.NoError(t, err)
	assert.Equal(t, "example.com", got)
}

func TestKeys_SortedAndComplete(t *testing.T) {
	keys := Keys()
	assert.True(t, sortedStrings(keys), "keys must be sorted")
	assert.Contains(t, keys, "parent_dns_domain")
	assert.Contains(t, keys, "dashboard_htpasswd")
	assert.Contains(t, keys, "letsencrypt_owner_email")
	assert.Contains(t, keys, "lan_hostnames")
}

func TestStore_LANHostnamesCommaSeparated(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(&hub.HubConfig{
		ParentDNSDomain:     "example.com",
		DefaultCertResolver: "staging",
	}))

	require.NoError(t, s.Set("lan_hostnames", "pi.local, nas.local"))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"pi.local", "nas.local"}, cfg.LANHostnames)

	got, err := s.Get("lan_hostnames")
	require.NoError(t, err)
	assert.Equal(t, "pi.local,nas.local", got)

	// Empty value clears the list.
	require.NoError(t, s.Set("lan_hostnames", ""))
	got, err = s.Get("lan_hostnames")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_EnvMapKeysPointAtTheFile(t *testing.T) {
	s := tempStore(t)

	_, err := s.Get("base_stack_env")
	assert.ErrorIs(t, err, ErrKeyNotScalar)

	err = s.Set("hub.traefik_stack_env.TZ", "UTC")
	assert.ErrorIs(t, err, ErrKeyNotScalar)
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if strings.Compare(s[i-1], s[i]) > 0 {
			return false
		}
	}
	return true
}
