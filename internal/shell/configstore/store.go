// Package configstore loads, mutates and persists the central hub
// configuration document. This is part of the Imperative Shell - it owns
// the config file on disk.
//
// The document is a YAML file with a top-level "hub" section. Nothing is
// cached across process invocations: every operation re-reads the file, so
// concurrent invocations are last-writer-wins at whole-file granularity.
package configstore

import (
	"errors"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sammck/hubctl/internal/core/hub"
	"github.com/sammck/hubctl/internal/shell/artifact"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrConfigNotFound    = errors.New("hub configuration file not found")
	ErrMissingHubSection = errors.New("configuration file has no 'hub' section")
	ErrKeyNotScalar      = errors.New("key holds a nested env map; edit the configuration file directly")
)

// =============================================================================
// Store
// =============================================================================

// Store reads and writes the hub configuration document at a fixed path.
type Store struct {
	Path string
}

// NewStore creates a store for the document at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// document is the on-disk shape: everything lives under the "hub" key so
// the file can coexist with other tools' sections.
type document struct {
	Hub *hub.HubConfig `yaml:"hub"`
}

// Load reads and validates the persisted configuration.
func (s *Store) Load() (*hub.HubConfig, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, hub.NewValidationError("hub", s.Path, ErrConfigNotFound)
		}
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, hub.NewValidationError("hub", s.Path, err)
	}
	if doc.Hub == nil {
		return nil, hub.NewValidationError("hub", s.Path, ErrMissingHubSection)
	}
	if err := doc.Hub.Validate(); err != nil {
		return nil, err
	}
	return doc.Hub, nil
}

// Save fully validates cfg and persists it atomically.
func (s *Store) Save(cfg *hub.HubConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.persist(cfg)
}

// persist writes the document via write-to-temporary-then-rename, stamping
// the current document version. The file is written mode 0600: it carries
// credential hashes.
func (s *Store) persist(cfg *hub.HubConfig) error {
	cfg.Version = hub.CurrentConfigVersion
	raw, err := yaml.Marshal(document{Hub: cfg})
	if err != nil {
		return err
	}
	content := append([]byte(configHeader), raw...)
	_, err = artifact.NewWriter().Write(artifact.Artifact{
		Path:    s.Path,
		Content: content,
		Mode:    0o600,
	})
	return err
}

const configHeader = "# Hub configuration. Edit with `hubctl config set`.\n"

// =============================================================================
// Keyed Access
// =============================================================================

// field describes one CLI-addressable configuration key.
type field struct {
	// get returns the effective (defaulted) value.
	get func(c *hub.HubConfig) string
	// set validates and stores a raw value.
	set func(c *hub.HubConfig, value string) error
}

var fields = map[string]field{
	"parent_dns_domain": {
		get: func(c *hub.HubConfig) string { return c.ParentDNSDomain },
		set: func(c *hub.HubConfig, v string) error { c.ParentDNSDomain = v; return nil },
	},
	"admin_parent_dns_domain": {
		get: func(c *hub.HubConfig) string { return c.EffectiveAdminParentDNSDomain() },
		set: func(c *hub.HubConfig, v string) error { c.AdminParentDNSDomain = v; return nil },
	},
	"default_cert_resolver": {
		get: func(c *hub.HubConfig) string { return c.DefaultCertResolver },
		set: func(c *hub.HubConfig, v string) error { c.DefaultCertResolver = v; return nil },
	},
	"admin_cert_resolver": {
		get: func(c *hub.HubConfig) string { return c.EffectiveAdminCertResolver() },
		set: func(c *hub.HubConfig, v string) error { c.AdminCertResolver = v; return nil },
	},
	"app_cert_resolver": {
		get: func(c *hub.HubConfig) string { return c.EffectiveAppCertResolver() },
		set: func(c *hub.HubConfig, v string) error { c.AppCertResolver = v; return nil },
	},
	"default_app_subdomain": {
		get: func(c *hub.HubConfig) string { return c.EffectiveAppSubdomain() },
		set: func(c *hub.HubConfig, v string) error { c.AppSubdomain = v; return nil },
	},
	"stable_public_dns_name": {
		get: func(c *hub.HubConfig) string { return c.EffectiveStablePublicDNSName() },
		set: func(c *hub.HubConfig, v string) error { c.StablePublicDNSName = v; return nil },
	},
	"dashboard_htpasswd": {
		get: func(c *hub.HubConfig) string { return c.DashboardHtpasswd },
		set: func(c *hub.HubConfig, v string) error { c.DashboardHtpasswd = v; return nil },
	},
	"letsencrypt_owner_email": {
		get: func(c *hub.HubConfig) string { return c.LetsencryptOwnerEmail },
		set: func(c *hub.HubConfig, v string) error { c.LetsencryptOwnerEmail = v; return nil },
	},
	"letsencrypt_owner_email_prod": {
		get: func(c *hub.HubConfig) string { return c.OwnerEmailFor("prod") },
		set: func(c *hub.HubConfig, v string) error { c.LetsencryptOwnerEmailProd = v; return nil },
	},
	"letsencrypt_owner_email_staging": {
		get: func(c *hub.HubConfig) string { return c.OwnerEmailFor("staging") },
		set: func(c *hub.HubConfig, v string) error { c.LetsencryptOwnerEmailStaging = v; return nil },
	},
	"lan_ip": {
		get: func(c *hub.HubConfig) string { return c.LANIP },
		set: func(c *hub.HubConfig, v string) error { c.LANIP = v; return nil },
	},
	"lan_hostnames": {
		// Comma-separated on the command line, stored as a list.
		get: func(c *hub.HubConfig) string { return strings.Join(c.LANHostnames, ",") },
		set: func(c *hub.HubConfig, v string) error {
			c.LANHostnames = splitHostList(v)
			return nil
		},
	},
}

// splitHostList parses a comma-separated hostname list, trimming whitespace
// and dropping empty entries. An empty value clears the list.
func splitHostList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Free-form nested env maps are not addressable through get/set; name them
// in the error so the operator is pointed at the file instead.
var envMapKeys = map[string]bool{
	"base_stack_env":      true,
	"base_app_stack_env":  true,
	"traefik_stack_env":   true,
	"portainer_stack_env": true,
}

func lookupField(key string) (field, error) {
	name := normalizeKey(key)
	if f, ok := fields[name]; ok {
		return f, nil
	}
	if envMapKeys[strings.SplitN(name, ".", 2)[0]] {
		return field{}, hub.NewValidationError(key, "", ErrKeyNotScalar)
	}
	return field{}, hub.NewValidationError(key, "", hub.ErrUnknownKey)
}

// Keys lists the CLI-addressable configuration keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the effective value for a dotted key. The leading "hub."
// prefix is optional.
func (s *Store) Get(key string) (string, error) {
	f, err := lookupField(key)
	if err != nil {
		return "", err
	}
	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	return f.get(cfg), nil
}

// Set validates and stores a value for a dotted key, then persists the
// whole document atomically. If no document exists yet, one is created:
// first initialization happens through successive sets, so only field
// syntax is validated here; "build" and "validate" enforce the required
// fields.
func (s *Store) Set(key, value string) error {
	f, err := lookupField(key)
	if err != nil {
		return err
	}

	cfg, err := s.loadUnvalidated()
	if err != nil {
		return err
	}
	if err := f.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.ValidateSyntax(); err != nil {
		return err
	}
	return s.persist(cfg)
}

// loadUnvalidated reads the document without validation, for incremental
// initialization via Set. A missing file yields an empty config.
func (s *Store) loadUnvalidated() (*hub.HubConfig, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &hub.HubConfig{}, nil
		}
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, hub.NewValidationError("hub", s.Path, err)
	}
	if doc.Hub == nil {
		doc.Hub = &hub.HubConfig{}
	}
	return doc.Hub, nil
}

func normalizeKey(key string) string {
	return strings.TrimPrefix(key, "hub.")
}
