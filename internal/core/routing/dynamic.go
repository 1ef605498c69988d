package routing

// =============================================================================
// Traefik Dynamic Configuration Model (file provider)
// =============================================================================

// DynamicConfig is the document shape consumed by the proxy's file
// provider. Field names follow the proxy's own YAML schema, so the struct
// marshals directly into a loadable dynamic configuration file.
type DynamicConfig struct {
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig holds the HTTP routing tables.
type HTTPConfig struct {
	Routers     map[string]Router     `yaml:"routers,omitempty"`
	Middlewares map[string]Middleware `yaml:"middlewares,omitempty"`
	Services    map[string]Service    `yaml:"services,omitempty"`
}

// Router binds a match rule on one entrypoint to a backend service through
// an ordered middleware chain.
type Router struct {
	EntryPoints []string   `yaml:"entryPoints"`
	Rule        string     `yaml:"rule"`
	Middlewares []string   `yaml:"middlewares,omitempty"`
	Service     string     `yaml:"service"`
	TLS         *RouterTLS `yaml:"tls,omitempty"`
}

// RouterTLS enables TLS termination and selects the certificate resolver.
type RouterTLS struct {
	CertResolver string `yaml:"certResolver,omitempty"`
}

// Middleware is one request-transformation step. Exactly one of the fields
// is set.
type Middleware struct {
	StripPrefix    *StripPrefix    `yaml:"stripPrefix,omitempty"`
	Headers        *Headers        `yaml:"headers,omitempty"`
	BasicAuth      *BasicAuth      `yaml:"basicAuth,omitempty"`
	RedirectScheme *RedirectScheme `yaml:"redirectScheme,omitempty"`
}

// StripPrefix removes leading path prefixes before forwarding.
type StripPrefix struct {
	Prefixes []string `yaml:"prefixes"`
}

// Headers injects request and/or response headers.
type Headers struct {
	CustomRequestHeaders  map[string]string `yaml:"customRequestHeaders,omitempty"`
	CustomResponseHeaders map[string]string `yaml:"customResponseHeaders,omitempty"`
}

// BasicAuth guards a router with HTTP basic authentication. Users are
// htpasswd-style "user:bcrypt-hash" entries.
type BasicAuth struct {
	Users []string `yaml:"users"`
}

// RedirectScheme redirects matched requests to another scheme.
type RedirectScheme struct {
	Scheme    string `yaml:"scheme"`
	Permanent bool   `yaml:"permanent,omitempty"`
}

// Service is a backend with a load balancer over one or more servers.
type Service struct {
	LoadBalancer LoadBalancer `yaml:"loadBalancer"`
}

// LoadBalancer holds the backend server list.
type LoadBalancer struct {
	Servers []Server `yaml:"servers"`
}

// Server is one backend URL.
type Server struct {
	URL string `yaml:"url"`
}
