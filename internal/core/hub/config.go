package hub

import "strings"

// =============================================================================
// HubConfig
// =============================================================================

// CurrentConfigVersion is the version stamped into newly written config
// documents. Older documents are accepted as long as required fields parse.
const CurrentConfigVersion = 1

// DefaultAppSubdomain is the subdomain used for shared path-routed services
// when the config does not override it.
const DefaultAppSubdomain = "hub"

// DefaultStablePublicDNSName is the default DDNS CNAME label.
const DefaultStablePublicDNSName = "ddns"

// HubConfig is the single process-wide hub configuration record. Exactly one
// instance is active per deployment. Optional fields default through the
// Effective* accessors; raw fields are kept as authored so the document
// round-trips unchanged.
type HubConfig struct {
	Version int `yaml:"version"`

	// ParentDNSDomain is the registered public DNS domain under which
	// service subdomains are created. Required.
	ParentDNSDomain string `yaml:"parent_dns_domain"`

	// AdminParentDNSDomain is the domain for the proxy dashboard and the
	// stack manager UI. Defaults to ParentDNSDomain.
	AdminParentDNSDomain string `yaml:"admin_parent_dns_domain,omitempty"`

	// DefaultCertResolver names the Traefik certificate resolver used for
	// HTTPS routes ("prod" or "staging"). Required.
	DefaultCertResolver string `yaml:"default_cert_resolver"`

	// AdminCertResolver is the resolver for dashboard routes. Defaults
	// to "prod".
	AdminCertResolver string `yaml:"admin_cert_resolver,omitempty"`

	// AppCertResolver is the resolver for routes on the shared app DNS
	// name. Defaults to DefaultCertResolver.
	AppCertResolver string `yaml:"app_cert_resolver,omitempty"`

	// AppSubdomain is the subdomain under ParentDNSDomain shared by all
	// path-routed services. Defaults to "hub".
	AppSubdomain string `yaml:"default_app_subdomain,omitempty"`

	// StablePublicDNSName is a permanent DNS name resolving to the
	// network's public IP. A bare label is qualified under the admin
	// parent domain. Defaults to "ddns".
	StablePublicDNSName string `yaml:"stable_public_dns_name,omitempty"`

	// DashboardHtpasswd is the "user:bcrypt-hash" credential for HTTP
	// basic auth on the proxy dashboard. Dollar signs are stored
	// unescaped here; escaping happens at interpolation time.
	DashboardHtpasswd string `yaml:"dashboard_htpasswd,omitempty"`

	// ACME registration emails. The prod/staging values default to the
	// shared owner email.
	LetsencryptOwnerEmail        string `yaml:"letsencrypt_owner_email,omitempty"`
	LetsencryptOwnerEmailProd    string `yaml:"letsencrypt_owner_email_prod,omitempty"`
	LetsencryptOwnerEmailStaging string `yaml:"letsencrypt_owner_email_staging,omitempty"`

	// LAN identification, used for private-LAN routing hints.
	LANIP        string   `yaml:"lan_ip,omitempty"`
	LANHostnames []string `yaml:"lan_hostnames,omitempty"`

	// Injected-environment fragments, deep-merged into stack
	// environments at build time. base < (traefik|base_app) < portainer.
	BaseStackEnv      map[string]any `yaml:"base_stack_env,omitempty"`
	TraefikStackEnv   map[string]any `yaml:"traefik_stack_env,omitempty"`
	PortainerStackEnv map[string]any `yaml:"portainer_stack_env,omitempty"`
	BaseAppStackEnv   map[string]any `yaml:"base_app_stack_env,omitempty"`
}

// =============================================================================
// Defaulting Accessors
// =============================================================================

// EffectiveAdminParentDNSDomain returns the admin parent domain, falling back
// to the parent DNS domain.
func (c *HubConfig) EffectiveAdminParentDNSDomain() string {
	if c.AdminParentDNSDomain != "" {
		return c.AdminParentDNSDomain
	}
	return c.ParentDNSDomain
}

// EffectiveAdminCertResolver returns the resolver for dashboard routes,
// defaulting to "prod".
func (c *HubConfig) EffectiveAdminCertResolver() string {
	if c.AdminCertResolver != "" {
		return c.AdminCertResolver
	}
	return "prod"
}

// EffectiveAppCertResolver returns the resolver for shared-app-name routes,
// falling back to the default resolver.
func (c *HubConfig) EffectiveAppCertResolver() string {
	if c.AppCertResolver != "" {
		return c.AppCertResolver
	}
	return c.DefaultCertResolver
}

// EffectiveAppSubdomain returns the shared app subdomain, defaulting to
// "hub".
func (c *HubConfig) EffectiveAppSubdomain() string {
	if c.AppSubdomain != "" {
		return c.AppSubdomain
	}
	return DefaultAppSubdomain
}

// SharedAppDNSName returns the DNS name shared by all path-routed services,
// e.g. "hub.example.com".
func (c *HubConfig) SharedAppDNSName() string {
	return c.EffectiveAppSubdomain() + "." + c.ParentDNSDomain
}

// EffectiveStablePublicDNSName returns the stable public DNS name. A bare
// label (no dots) is qualified under the admin parent domain.
func (c *HubConfig) EffectiveStablePublicDNSName() string {
	name := c.StablePublicDNSName
	if name == "" {
		name = DefaultStablePublicDNSName
	}
	if !strings.Contains(name, ".") {
		name = name + "." + c.EffectiveAdminParentDNSDomain()
	}
	return name
}

// OwnerEmailFor returns the ACME registration email for the named resolver,
// falling back to the shared owner email.
func (c *HubConfig) OwnerEmailFor(resolver string) string {
	switch resolver {
	case "prod":
		if c.LetsencryptOwnerEmailProd != "" {
			return c.LetsencryptOwnerEmailProd
		}
	case "staging":
		if c.LetsencryptOwnerEmailStaging != "" {
			return c.LetsencryptOwnerEmailStaging
		}
	}
	return c.LetsencryptOwnerEmail
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks all required fields and the syntax of optional ones.
// It returns the first problem found as a *ValidationError.
func (c *HubConfig) Validate() error {
	if c.ParentDNSDomain == "" {
		return NewValidationError("hub.parent_dns_domain", "", ErrDomainRequired)
	}
	if c.DefaultCertResolver == "" {
		return NewValidationError("hub.default_cert_resolver", "", ErrResolverRequired)
	}
	return c.ValidateSyntax()
}

// ValidateSyntax checks the format of every present field without
// requiring the required ones, so a document can be initialized
// incrementally through "config set".
func (c *HubConfig) ValidateSyntax() error {
	if c.ParentDNSDomain != "" {
		if err := ValidateDNSName(c.ParentDNSDomain); err != nil {
			return NewValidationError("hub.parent_dns_domain", c.ParentDNSDomain, err)
		}
	}
	if c.AdminParentDNSDomain != "" {
		if err := ValidateDNSName(c.AdminParentDNSDomain); err != nil {
			return NewValidationError("hub.admin_parent_dns_domain", c.AdminParentDNSDomain, err)
		}
	}
	if c.DefaultCertResolver != "" {
		if err := ValidateCertResolver(c.DefaultCertResolver); err != nil {
			return NewValidationError("hub.default_cert_resolver", c.DefaultCertResolver, err)
		}
	}
	if c.AdminCertResolver != "" {
		if err := ValidateCertResolver(c.AdminCertResolver); err != nil {
			return NewValidationError("hub.admin_cert_resolver", c.AdminCertResolver, err)
		}
	}
	if c.AppCertResolver != "" {
		if err := ValidateCertResolver(c.AppCertResolver); err != nil {
			return NewValidationError("hub.app_cert_resolver", c.AppCertResolver, err)
		}
	}
	if c.AppSubdomain != "" {
		if err := ValidateDNSLabel(c.AppSubdomain); err != nil {
			return NewValidationError("hub.default_app_subdomain", c.AppSubdomain, err)
		}
	}
	if c.DashboardHtpasswd != "" {
		if err := ValidateHtpasswd(c.DashboardHtpasswd); err != nil {
			return NewValidationError("hub.dashboard_htpasswd", "", err)
		}
	}
	for _, key := range []struct{ field, value string }{
		{"hub.letsencrypt_owner_email", c.LetsencryptOwnerEmail},
		{"hub.letsencrypt_owner_email_prod", c.LetsencryptOwnerEmailProd},
		{"hub.letsencrypt_owner_email_staging", c.LetsencryptOwnerEmailStaging},
	} {
		if key.value != "" {
			if err := ValidateEmail(key.value); err != nil {
				return NewValidationError(key.field, key.value, err)
			}
		}
	}
	return nil
}
