package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Defaulting Accessor Tests
// =============================================================================

func minimalConfig() *HubConfig {
	return &HubConfig{
		ParentDNSDomain:     "example.com",
		DefaultCertResolver: "staging",
	}
}

func TestEffectiveAdminParentDNSDomain_DefaultsToParent(t *testing.T) {
	cfg := minimalConfig()
	assert.Equal(t, "example.com", cfg.EffectiveAdminParentDNSDomain())
}

func TestEffectiveAdminParentDNSDomain_Override(t *testing.T) {
	cfg := minimalConfig()
	cfg.AdminParentDNSDomain = "admin.example.com"
	assert.Equal(t, "admin.example.com", cfg.EffectiveAdminParentDNSDomain())
}

func TestEffectiveAdminCertResolver_DefaultsToProd(t *testing.T) {
	cfg := minimalConfig()
	assert.Equal(t, "prod", cfg.EffectiveAdminCertResolver())
}

func TestEffectiveAppCertResolver_DefaultsToDefaultResolver(t *testing.T) {
	cfg := minimalConfig()
	assert.Equal(t, "staging", cfg.EffectiveAppCertResolver())

	cfg.AppCertResolver = "prod"
	assert.Equal(t, "prod", cfg.EffectiveAppCertResolver())
}

func TestSharedAppDNSName_UsesDefaultSubdomain(t *testing.T) {
	cfg := minimalConfig()
	assert.Equal(t, "hub.example.com", cfg.SharedAppDNSName())
}

func TestSharedAppDNSName_OverriddenSubdomain(t *testing.T) {
	cfg := minimalConfig()
	cfg.AppSubdomain = "apps"
	assert.Equal(t, "apps.example.com", cfg.SharedAppDNSName())
}

func TestEffectiveStablePublicDNSName_BareLabelQualified(t *testing.T) {
	cfg := minimalConfig()
	// Default label "ddns" is qualified under the admin parent domain.
	assert.Equal(t, "ddns.example.com", cfg.EffectiveStablePublicDNSName())

	cfg.StablePublicDNSName = "gateway"
	assert.Equal(t, "gateway.example.com", cfg.EffectiveStablePublicDNSName())
}

func TestEffectiveStablePublicDNSName_FullNameKept(t *testing.T) {
	cfg := minimalConfig()
	cfg.StablePublicDNSName = "myhub.duckdns.org"
	assert.Equal(t, "myhub.duckdns.org", cfg.EffectiveStablePublicDNSName())
}

func TestOwnerEmailFor_FallsBackToShared(t *testing.T) {
	cfg := minimalConfig()
	cfg.LetsencryptOwnerEmail = "owner@example.com"

	assert.Equal(t, "owner@example.com", cfg.OwnerEmailFor("prod"))
	assert.Equal(t, "owner@example.com", cfg.OwnerEmailFor("staging"))
}

func TestOwnerEmailFor_ResolverSpecificWins(t *testing.T) {
	cfg := minimalConfig()
	cfg.LetsencryptOwnerEmail = "owner@example.com"
	cfg.LetsencryptOwnerEmailStaging = "staging@example.com"

	assert.Equal(t, "owner@example.com", cfg.OwnerEmailFor("prod"))
	assert.Equal(t, "staging@example.com", cfg.OwnerEmailFor("staging"))
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate_MinimalConfigValid(t *testing.T) {
	assert.NoError(t, minimalConfig().Validate())
}

func TestValidate_MissingParentDomain(t *testing.T) {
	cfg := minimalConfig()
	cfg.ParentDNSDomain = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomainRequired)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "hub.parent_dns_domain", vErr.Field)
}

func TestValidate_MissingDefaultResolver(t *testing.T) {
	cfg := minimalConfig()
	cfg.DefaultCertResolver = ""
	assert.ErrorIs(t, cfg.Validate(), ErrResolverRequired)
}

func TestValidate_BadDomain(t *testing.T) {
	cfg := minimalConfig()
	cfg.ParentDNSDomain = "no_underscores.example.com"
	assert.ErrorIs(t, cfg.Validate(), ErrDomainInvalid)
}

func TestValidate_BadEmail(t *testing.T) {
	cfg := minimalConfig()
	cfg.LetsencryptOwnerEmail = "not-an-email"
	assert.ErrorIs(t, cfg.Validate(), ErrEmailInvalid)
}

func TestValidateSyntax_AllowsMissingRequiredFields(t *testing.T) {
	// Incremental initialization: an empty document is syntactically fine.
	cfg := &HubConfig{}
	assert.NoError(t, cfg.ValidateSyntax())
}

func TestValidateSyntax_RejectsBadPresentField(t *testing.T) {
	cfg := &HubConfig{AppSubdomain: "Not A Label"}
	assert.ErrorIs(t, cfg.ValidateSyntax(), ErrSubdomainInvalid)
}

func TestValidate_TableDriven(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*HubConfig)
		wantErr error
	}{
		{"valid minimal", func(c *HubConfig) {}, nil},
		{"bad admin domain", func(c *HubConfig) { c.AdminParentDNSDomain = "-bad.example.com" }, ErrDomainInvalid},
		{"bad resolver chars", func(c *HubConfig) { c.DefaultCertResolver = "pr od" }, ErrResolverInvalid},
		{"bad app subdomain", func(c *HubConfig) { c.AppSubdomain = "two.labels" }, ErrSubdomainInvalid},
		{"bad htpasswd", func(c *HubConfig) { c.DashboardHtpasswd = "missing-colon" }, ErrHtpasswdFormat},
		{"bad htpasswd scheme", func(c *HubConfig) { c.DashboardHtpasswd = "admin:plaintext" }, ErrHtpasswdScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := minimalConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
