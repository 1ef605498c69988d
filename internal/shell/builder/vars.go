package builder

import (
	"fmt"

	"github.com/sammck/hubctl/internal/core/hub"
	"github.com/sammck/hubctl/internal/core/template"
)

// =============================================================================
// Resolution Sources
// =============================================================================

// HubVars derives the hub-level variable source every template can
// reference. The htpasswd value is dollar-escaped here because generated
// env files feed a second compose interpolation pass at deploy time.
func HubVars(cfg *hub.HubConfig) map[string]string {
	vars := map[string]string{
		"PARENT_DNS_DOMAIN":               cfg.ParentDNSDomain,
		"ADMIN_PARENT_DNS_DOMAIN":         cfg.EffectiveAdminParentDNSDomain(),
		"SHARED_APP_DNS_NAME":             cfg.SharedAppDNSName(),
		"SHARED_APP_SUBDOMAIN":            cfg.EffectiveAppSubdomain(),
		"DEFAULT_CERT_RESOLVER":           cfg.DefaultCertResolver,
		"ADMIN_CERT_RESOLVER":             cfg.EffectiveAdminCertResolver(),
		"APP_CERT_RESOLVER":               cfg.EffectiveAppCertResolver(),
		"STABLE_PUBLIC_DNS_NAME":          cfg.EffectiveStablePublicDNSName(),
		"LETSENCRYPT_OWNER_EMAIL":         cfg.LetsencryptOwnerEmail,
		"LETSENCRYPT_OWNER_EMAIL_PROD":    cfg.OwnerEmailFor("prod"),
		"LETSENCRYPT_OWNER_EMAIL_STAGING": cfg.OwnerEmailFor("staging"),
		"LAN_IP":                          cfg.LANIP,
		"HUB_NETWORK_NAME":                "hub",
	}
	if cfg.DashboardHtpasswd != "" {
		vars["DASHBOARD_HTPASSWD"] = template.Escape(cfg.DashboardHtpasswd)
	}
	return vars
}

// ServiceVars derives the per-service variable source consulted ahead of
// the hub-level one.
func ServiceVars(cfg *hub.HubConfig, desc hub.ServiceDescriptor) map[string]string {
	resolver := desc.CertResolver
	if resolver == "" {
		resolver = cfg.DefaultCertResolver
	}
	return map[string]string{
		"SUBDOMAIN":        desc.Subdomain,
		"BACKEND_PORT":     fmt.Sprintf("%d", desc.BackendPort),
		"SERVICE_DNS_NAME": desc.Subdomain + "." + cfg.ParentDNSDomain,
		"CERT_RESOLVER":    resolver,
	}
}

// NewServiceExpander builds the ordered resolution context for one
// service stack: service vars shadow hub vars.
func NewServiceExpander(cfg *hub.HubConfig, desc hub.ServiceDescriptor) *template.Expander {
	return template.NewExpander(
		template.Source{Name: "service", Vars: ServiceVars(cfg, desc)},
		template.Source{Name: "hub", Vars: HubVars(cfg)},
	)
}
