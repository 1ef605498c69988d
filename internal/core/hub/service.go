package hub

// =============================================================================
// ServiceDescriptor
// =============================================================================

// Visibility selects which network entrypoint classes serve a service.
// A descriptor with no flags set generates no routes (the service is
// parked, not broken).
type Visibility struct {
	Public    bool `yaml:"public"`
	Private   bool `yaml:"private"`
	Dashboard bool `yaml:"dashboard"`
}

// None reports whether no visibility flag is set.
func (v Visibility) None() bool {
	return !v.Public && !v.Private && !v.Dashboard
}

// RoutingStyle selects how requests are matched to the service.
type RoutingStyle struct {
	// Host matches the dedicated hostname <subdomain>.<parent-domain>.
	Host bool `yaml:"host"`
	// Path matches the shared app hostname plus PathPrefix(/<subdomain>).
	Path bool `yaml:"path"`
}

// ServiceDescriptor describes one deployable service stack. Authored by
// whoever adds the stack; read-only input to the compiler.
type ServiceDescriptor struct {
	// Subdomain doubles as the hostname prefix and the URL path-prefix
	// token. Must be a valid DNS label, unique across descriptors.
	Subdomain string `yaml:"subdomain"`

	// Kind selects the hub-level env layering for the stack. Empty (the
	// usual case) means a plain app stack; "portainer" additionally layers
	// the stack-manager env fragment.
	Kind string `yaml:"kind,omitempty"`

	Visibility Visibility   `yaml:"visibility"`
	Style      RoutingStyle `yaml:"style"`

	// BackendPort is the container port requests are forwarded to.
	BackendPort int `yaml:"backend_port"`

	// CertResolver overrides the hub-level certificate resolver for this
	// service's TLS routes.
	CertResolver string `yaml:"cert_resolver,omitempty"`

	// Env holds the service's own explicit environment values. These
	// always win over fragment-provided defaults.
	Env map[string]any `yaml:"env,omitempty"`

	// PinnedEnv lists env key paths (dotted for nested maps) that
	// fragments may never override.
	PinnedEnv []string `yaml:"pinned_env,omitempty"`

	// Fragments names the injected-env fragments to apply, in order.
	Fragments []string `yaml:"fragments,omitempty"`
}

// Validate checks descriptor syntax. It returns a *ValidationError naming
// the offending field.
func (d *ServiceDescriptor) Validate() error {
	if err := ValidateDNSLabel(d.Subdomain); err != nil {
		return NewValidationError("service.subdomain", d.Subdomain, err)
	}
	if d.BackendPort < 1 || d.BackendPort > 65535 {
		return NewValidationError("service.backend_port", "", ErrPortInvalid)
	}
	if d.CertResolver != "" {
		if err := ValidateCertResolver(d.CertResolver); err != nil {
			return NewValidationError("service.cert_resolver", d.CertResolver, err)
		}
	}
	return nil
}
