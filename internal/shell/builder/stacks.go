package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sammck/hubctl/internal/core/envmerge"
	"github.com/sammck/hubctl/internal/core/hub"
)

// =============================================================================
// Stack Discovery
// =============================================================================

// DescriptorFileName is the per-stack service descriptor file.
const DescriptorFileName = "hub-service.yml"

// ComposeTemplateFileName is the per-stack compose overlay template.
const ComposeTemplateFileName = "docker-compose.yml"

// Stack is one discovered service stack: its descriptor plus the raw
// compose template text.
type Stack struct {
	Name            string
	Dir             string
	Descriptor      hub.ServiceDescriptor
	ComposeTemplate string
}

// DiscoverStacks scans projectDir/stacks for service stacks. A stack is
// any directory containing a descriptor file; directories without one are
// skipped (they may hold shared assets). Stacks come back sorted by name
// so generation order is deterministic.
func DiscoverStacks(projectDir string) ([]Stack, error) {
	stacksDir := filepath.Join(projectDir, "stacks")
	entries, err := os.ReadDir(stacksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var stacks []Stack
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(stacksDir, entry.Name())
		descPath := filepath.Join(dir, DescriptorFileName)
		raw, err := os.ReadFile(descPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		var desc hub.ServiceDescriptor
		if err := yaml.Unmarshal(raw, &desc); err != nil {
			return nil, hub.NewValidationError("service", descPath, err)
		}
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", descPath, err)
		}

		tmplRaw, err := os.ReadFile(filepath.Join(dir, ComposeTemplateFileName))
		if err != nil {
			return nil, err
		}

		stacks = append(stacks, Stack{
			Name:            entry.Name(),
			Dir:             dir,
			Descriptor:      desc,
			ComposeTemplate: string(tmplRaw),
		})
	}
	sort.Slice(stacks, func(i, j int) bool { return stacks[i].Name < stacks[j].Name })
	return stacks, nil
}

// =============================================================================
// Fragment Resolution
// =============================================================================

// Hub-config fragment names resolvable without a fragment file.
const (
	FragmentBase      = "base"
	FragmentBaseApp   = "base_app"
	FragmentTraefik   = "traefik"
	FragmentPortainer = "portainer"
)

// StackLayers returns the merge-ordered hub-level fragment names for a
// stack kind: each layer deliberately overrides the previous one, so the
// builder applies them as successive merge invocations.
func StackLayers(kind string) []string {
	switch kind {
	case "traefik":
		return []string{FragmentBase, FragmentTraefik}
	case "portainer":
		return []string{FragmentBase, FragmentBaseApp, FragmentPortainer}
	default:
		return []string{FragmentBase, FragmentBaseApp}
	}
}

// FragmentRegistry resolves named env fragments: the hub config's built-in
// env maps first, then fragment files under projectDir/fragments.
type FragmentRegistry struct {
	cfg        *hub.HubConfig
	projectDir string
}

// NewFragmentRegistry creates a registry over cfg and projectDir.
func NewFragmentRegistry(cfg *hub.HubConfig, projectDir string) *FragmentRegistry {
	return &FragmentRegistry{cfg: cfg, projectDir: projectDir}
}

// Resolve returns the named fragment.
func (r *FragmentRegistry) Resolve(name string) (envmerge.Fragment, error) {
	switch name {
	case FragmentBase:
		return envmerge.Fragment{Name: name, Vars: r.cfg.BaseStackEnv}, nil
	case FragmentBaseApp:
		return envmerge.Fragment{Name: name, Vars: r.cfg.BaseAppStackEnv}, nil
	case FragmentTraefik:
		return envmerge.Fragment{Name: name, Vars: r.cfg.TraefikStackEnv}, nil
	case FragmentPortainer:
		return envmerge.Fragment{Name: name, Vars: r.cfg.PortainerStackEnv}, nil
	}

	path := filepath.Join(r.projectDir, "fragments", name+".yml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return envmerge.Fragment{}, fmt.Errorf("env fragment %q: %w", name, err)
	}
	var vars map[string]any
	if err := yaml.Unmarshal(raw, &vars); err != nil {
		return envmerge.Fragment{}, fmt.Errorf("env fragment %q: %w", name, err)
	}
	return envmerge.Fragment{Name: name, Vars: vars}, nil
}
