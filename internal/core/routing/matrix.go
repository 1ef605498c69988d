package routing

import (
	"fmt"

	"github.com/sammck/hubctl/internal/core/hub"
)

// =============================================================================
// Route Matrix Generation
// =============================================================================

// ForwardedPrefixHeader carries the stripped path prefix to the backend so
// it can reconstruct absolute links if it chooses to.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ViaHeader stamps which entrypoint and router matched a request, to aid
// operational debugging.
const ViaHeader = "X-Hub-Router"

// RouteSpec is one generated (entrypoint, rule, middleware-chain,
// cert-resolver) tuple. The router name is unique within the whole
// compiled output.
type RouteSpec struct {
	Router       string
	Subdomain    string // owning service
	Entrypoint   string
	Rule         string
	Middlewares  []string // ordered chain
	CertResolver string   // empty on plain (non-TLS) entrypoints
	Service      string   // backend service name
}

// Warning is a non-fatal configuration finding.
type Warning struct {
	Subdomain string
	Message   string
}

// Matrix is the complete generated routing table for one compilation run.
type Matrix struct {
	Routes      []RouteSpec
	Middlewares map[string]Middleware
	Services    map[string]Service
}

// Router names claimed by the proxy's own dashboard (installed by
// AddDashboard after generation). DashboardOwner marks them in the
// uniqueness check so a service whose routes would shadow them fails with
// *CollisionError instead of being silently replaced.
const DashboardOwner = "traefik dashboard (built-in)"

const (
	dashboardSecureRouter = "dashboard-websecure-host"
	dashboardLocalRouter  = "dashboard-dashboard-host"
)

// Generate produces the full cross-product of applicable entrypoints and
// requested routing styles for every descriptor. Router names are
// validated for uniqueness across the whole output before anything is
// written; duplicate subdomains fail with *CollisionError.
//
// A descriptor with no visibility flags (or no routing style) yields no
// routes and a warning: the service may be deliberately parked.
func Generate(cfg *hub.HubConfig, descriptors []hub.ServiceDescriptor) (*Matrix, []Warning, error) {
	m := &Matrix{
		Middlewares: make(map[string]Middleware),
		Services:    make(map[string]Service),
	}
	var warnings []Warning
	routerOwner := map[string]string{
		dashboardSecureRouter: DashboardOwner,
		dashboardLocalRouter:  DashboardOwner,
	}

	for _, desc := range descriptors {
		if desc.Visibility.None() {
			warnings = append(warnings, Warning{
				Subdomain: desc.Subdomain,
				Message:   "no visibility flags set; service generates no routes",
			})
			continue
		}
		if !desc.Style.Host && !desc.Style.Path {
			warnings = append(warnings, Warning{
				Subdomain: desc.Subdomain,
				Message:   "no routing style requested; service generates no routes",
			})
			continue
		}

		m.Services[desc.Subdomain] = Service{
			LoadBalancer: LoadBalancer{
				Servers: []Server{{URL: fmt.Sprintf("http://%s:%d", desc.Subdomain, desc.BackendPort)}},
			},
		}

		for _, ep := range Entrypoints {
			if !entrypointApplies(ep, desc.Visibility) {
				continue
			}
			if desc.Style.Host {
				route := buildRoute(cfg, desc, ep, "host")
				if err := claimRouter(routerOwner, route); err != nil {
					return nil, nil, err
				}
				m.addRoute(route, desc)
			}
			if desc.Style.Path {
				route := buildRoute(cfg, desc, ep, "path")
				if err := claimRouter(routerOwner, route); err != nil {
					return nil, nil, err
				}
				m.addRoute(route, desc)
			}
		}
	}
	return m, warnings, nil
}

// entrypointApplies maps descriptor visibility flags onto entrypoint
// classes.
func entrypointApplies(ep Entrypoint, vis hub.Visibility) bool {
	switch ep.Class {
	case ClassPublic:
		return vis.Public
	case ClassPrivate:
		return vis.Private
	case ClassDashboard:
		return vis.Dashboard
	default:
		return false
	}
}

// buildRoute generates one RouteSpec for a (descriptor, entrypoint, style)
// combination.
func buildRoute(cfg *hub.HubConfig, desc hub.ServiceDescriptor, ep Entrypoint, style string) RouteSpec {
	router := fmt.Sprintf("%s-%s-%s", desc.Subdomain, ep.Name, style)

	route := RouteSpec{
		Router:     router,
		Subdomain:  desc.Subdomain,
		Entrypoint: ep.Name,
		Service:    desc.Subdomain,
	}

	switch style {
	case "host":
		route.Rule = fmt.Sprintf("Host(`%s.%s`)", desc.Subdomain, cfg.ParentDNSDomain)
	case "path":
		route.Rule = fmt.Sprintf("Host(`%s`) && PathPrefix(`/%s`)", cfg.SharedAppDNSName(), desc.Subdomain)
		// Strip must run before the request reaches the backend; the
		// informational headers follow it in the chain.
		route.Middlewares = append(route.Middlewares,
			desc.Subdomain+"-strip",
			desc.Subdomain+"-prefix-header",
		)
	}
	route.Middlewares = append(route.Middlewares, router+"-via")

	if ep.TLS {
		route.CertResolver = certResolverFor(cfg, desc, style)
	}
	return route
}

// certResolverFor selects the certificate resolver for a TLS route:
// descriptor override first, then the shared-app resolver for path-style
// routes, then the hub default.
func certResolverFor(cfg *hub.HubConfig, desc hub.ServiceDescriptor, style string) string {
	if desc.CertResolver != "" {
		return desc.CertResolver
	}
	if style == "path" {
		return cfg.EffectiveAppCertResolver()
	}
	return cfg.DefaultCertResolver
}

// claimRouter enforces whole-output router-name uniqueness.
func claimRouter(owner map[string]string, route RouteSpec) error {
	if prev, taken := owner[route.Router]; taken {
		return &CollisionError{Router: route.Router, SubdomainA: prev, SubdomainB: route.Subdomain}
	}
	owner[route.Router] = route.Subdomain
	return nil
}

// addRoute records a route and materializes its middleware definitions.
func (m *Matrix) addRoute(route RouteSpec, desc hub.ServiceDescriptor) {
	m.Routes = append(m.Routes, route)

	prefix := "/" + desc.Subdomain
	for _, name := range route.Middlewares {
		switch name {
		case desc.Subdomain + "-strip":
			m.Middlewares[name] = Middleware{
				StripPrefix: &StripPrefix{Prefixes: []string{prefix}},
			}
		case desc.Subdomain + "-prefix-header":
			m.Middlewares[name] = Middleware{
				Headers: &Headers{
					CustomRequestHeaders: map[string]string{ForwardedPrefixHeader: prefix},
				},
			}
		case route.Router + "-via":
			m.Middlewares[name] = Middleware{
				Headers: &Headers{
					CustomResponseHeaders: map[string]string{
						ViaHeader: route.Entrypoint + "/" + route.Router,
					},
				},
			}
		}
	}
}

// =============================================================================
// Dynamic Configuration Assembly
// =============================================================================

// ToDynamic converts the matrix into the proxy's file-provider document.
func (m *Matrix) ToDynamic() DynamicConfig {
	dc := DynamicConfig{
		HTTP: HTTPConfig{
			Routers:     make(map[string]Router, len(m.Routes)),
			Middlewares: make(map[string]Middleware, len(m.Middlewares)),
			Services:    make(map[string]Service, len(m.Services)),
		},
	}
	for _, route := range m.Routes {
		r := Router{
			EntryPoints: []string{route.Entrypoint},
			Rule:        route.Rule,
			Middlewares: route.Middlewares,
			Service:     route.Service,
		}
		if route.CertResolver != "" {
			r.TLS = &RouterTLS{CertResolver: route.CertResolver}
		}
		dc.HTTP.Routers[route.Router] = r
	}
	for name, mw := range m.Middlewares {
		dc.HTTP.Middlewares[name] = mw
	}
	for name, svc := range m.Services {
		dc.HTTP.Services[name] = svc
	}
	return dc
}

// AddDashboard wires the proxy's own dashboard into the dynamic config:
// an HTTPS router on the admin domain guarded by basic auth, plus the
// plain router on the dedicated dashboard entrypoint.
func AddDashboard(dc *DynamicConfig, cfg *hub.HubConfig) {
	if cfg.DashboardHtpasswd == "" {
		return
	}
	dc.HTTP.Middlewares["dashboard-auth"] = Middleware{
		BasicAuth: &BasicAuth{Users: []string{cfg.DashboardHtpasswd}},
	}
	rule := fmt.Sprintf("Host(`traefik.%s`)", cfg.EffectiveAdminParentDNSDomain())
	dc.HTTP.Routers[dashboardSecureRouter] = Router{
		EntryPoints: []string{"websecure"},
		Rule:        rule,
		Middlewares: []string{"dashboard-auth"},
		Service:     "api@internal",
		TLS:         &RouterTLS{CertResolver: cfg.EffectiveAdminCertResolver()},
	}
	dc.HTTP.Routers[dashboardLocalRouter] = Router{
		EntryPoints: []string{"dashboard"},
		Rule:        "PathPrefix(`/`)",
		Middlewares: []string{"dashboard-auth"},
		Service:     "api@internal",
	}
}
