package routing

import "github.com/sammck/hubctl/internal/core/hub"

// =============================================================================
// Traefik Static Configuration Model
// =============================================================================

// LetsEncrypt CA directories for the two standard resolvers.
const (
	acmeProdCAServer    = "https://acme-v02.api.letsencrypt.org/directory"
	acmeStagingCAServer = "https://acme-staging-v02.api.letsencrypt.org/directory"
)

// StaticConfig is the proxy's boot-time configuration document: listeners,
// providers and certificate resolvers. Field names follow the proxy's YAML
// schema.
type StaticConfig struct {
	EntryPoints           map[string]ListenAddress `yaml:"entryPoints"`
	Providers             Providers                `yaml:"providers"`
	API                   *API                     `yaml:"api,omitempty"`
	CertificatesResolvers map[string]CertResolver  `yaml:"certificatesResolvers,omitempty"`
	Log                   *LogConfig               `yaml:"log,omitempty"`
}

// ListenAddress is one entrypoint listener.
type ListenAddress struct {
	Address string `yaml:"address"`
}

// Providers enables the configuration discovery backends.
type Providers struct {
	Docker *DockerProvider `yaml:"docker,omitempty"`
	File   *FileProvider   `yaml:"file,omitempty"`
}

// DockerProvider discovers per-container routing labels.
type DockerProvider struct {
	ExposedByDefault bool `yaml:"exposedByDefault"`
}

// FileProvider loads the generated dynamic configuration document.
type FileProvider struct {
	Filename string `yaml:"filename"`
	Watch    bool   `yaml:"watch,omitempty"`
}

// API enables the proxy dashboard.
type API struct {
	Dashboard bool `yaml:"dashboard,omitempty"`
}

// CertResolver is one ACME certificate resolver.
type CertResolver struct {
	ACME ACME `yaml:"acme"`
}

// ACME holds the resolver's registration and challenge settings.
type ACME struct {
	Email         string         `yaml:"email"`
	Storage       string         `yaml:"storage"`
	CAServer      string         `yaml:"caServer,omitempty"`
	HTTPChallenge *HTTPChallenge `yaml:"httpChallenge,omitempty"`
}

// HTTPChallenge answers ACME HTTP-01 challenges on an entrypoint.
type HTTPChallenge struct {
	EntryPoint string `yaml:"entryPoint"`
}

// LogConfig sets the proxy's own log level.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// BuildStaticConfig assembles the proxy's static configuration from the hub
// config: the fixed entrypoint set, the docker and file providers, and one
// ACME resolver per certificate environment (prod and staging), each
// registered with the owner email resolved through the hub's defaulting
// chain. dynamicConfigPath is where the generated dynamic document will be
// mounted inside the proxy container.
func BuildStaticConfig(cfg *hub.HubConfig, dynamicConfigPath string) StaticConfig {
	eps := make(map[string]ListenAddress, len(Entrypoints))
	for _, ep := range Entrypoints {
		eps[ep.Name] = ListenAddress{Address: ep.Address}
	}

	return StaticConfig{
		EntryPoints: eps,
		Providers: Providers{
			Docker: &DockerProvider{ExposedByDefault: false},
			File:   &FileProvider{Filename: dynamicConfigPath, Watch: true},
		},
		API: &API{Dashboard: true},
		CertificatesResolvers: map[string]CertResolver{
			"prod": {ACME: ACME{
				Email:         cfg.OwnerEmailFor("prod"),
				Storage:       "/data/acme-prod.json",
				CAServer:      acmeProdCAServer,
				HTTPChallenge: &HTTPChallenge{EntryPoint: "web"},
			}},
			"staging": {ACME: ACME{
				Email:         cfg.OwnerEmailFor("staging"),
				Storage:       "/data/acme-staging.json",
				CAServer:      acmeStagingCAServer,
				HTTPChallenge: &HTTPChallenge{EntryPoint: "web"},
			}},
		},
	}
}
