// Package builder orchestrates the full compilation pipeline: load the hub
// config, expand templates, generate the route matrix, merge injected env
// fragments, and commit artifacts. This is part of the Imperative Shell.
//
// One Build invocation is a single-threaded batch run; there is no internal
// locking. Two concurrent invocations interleave at whole-file granularity
// (each output file is always internally consistent, last rename wins);
// callers needing stronger guarantees must serialize externally.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sammck/hubctl/internal/core/compose"
	"github.com/sammck/hubctl/internal/core/envmerge"
	"github.com/sammck/hubctl/internal/core/hub"
	"github.com/sammck/hubctl/internal/core/routing"
	"github.com/sammck/hubctl/internal/core/template"
	"github.com/sammck/hubctl/internal/shell/artifact"
	"github.com/sammck/hubctl/internal/shell/configstore"
)

// DynamicConfigMountPath is where the generated dynamic configuration is
// mounted inside the proxy container; the static config points the file
// provider at it.
const DynamicConfigMountPath = "/etc/traefik/dynamic/traefik-dynamic-config.yml"

// =============================================================================
// Builder
// =============================================================================

// Builder runs the compilation pipeline.
type Builder struct {
	Store      *configstore.Store
	ProjectDir string
	BuildDir   string
	Logger     *slog.Logger
}

// New creates a Builder.
func New(store *configstore.Store, projectDir, buildDir string, logger *slog.Logger) *Builder {
	return &Builder{Store: store, ProjectDir: projectDir, BuildDir: buildDir, Logger: logger}
}

// VariableInfo describes one recognized template variable, for operator
// discovery via the validate command.
type VariableInfo struct {
	Name     string
	Default  string // empty for required references
	Required bool
	Source   string // template (or "hub") that defines or references it
}

// Result summarizes one pipeline run.
type Result struct {
	RunID     string
	Changed   []string // paths actually rewritten; empty on a no-op rebuild
	Warnings  []routing.Warning
	Variables []VariableInfo
}

// Build runs the full pipeline and commits artifacts.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	return b.run(ctx, true)
}

// Validate runs everything except the write phase (dry run).
func (b *Builder) Validate(ctx context.Context) (*Result, error) {
	return b.run(ctx, false)
}

func (b *Builder) run(ctx context.Context, write bool) (*Result, error) {
	result := &Result{RunID: uuid.New().String()[:8]}
	log := b.Logger.With("run", result.RunID)

	cfg, err := b.Store.Load()
	if err != nil {
		return nil, err
	}
	log.Info("hub config loaded", "parent_domain", cfg.ParentDNSDomain)

	stacks, err := DiscoverStacks(b.ProjectDir)
	if err != nil {
		return nil, err
	}
	log.Info("stacks discovered", "count", len(stacks))

	// Route matrix first: router-name collisions must fail the run
	// before any artifact is written.
	descriptors := make([]hub.ServiceDescriptor, 0, len(stacks))
	for _, st := range stacks {
		descriptors = append(descriptors, st.Descriptor)
	}
	matrix, warnings, err := routing.Generate(cfg, descriptors)
	if err != nil {
		return nil, err
	}
	result.Warnings = warnings
	for _, w := range warnings {
		log.Warn("route generation", "service", w.Subdomain, "warning", w.Message)
	}

	dynamic := matrix.ToDynamic()
	routing.AddDashboard(&dynamic, cfg)
	static := routing.BuildStaticConfig(cfg, DynamicConfigMountPath)

	registry := NewFragmentRegistry(cfg, b.ProjectDir)
	vars := newVariableSet(cfg)

	var artifacts []artifact.Artifact

	// Proxy stack artifacts.
	traefikDir := filepath.Join(b.BuildDir, "stacks", "traefik")
	staticDoc, err := marshalArtifact("Traefik configuration file", static)
	if err != nil {
		return nil, err
	}
	dynamicDoc, err := marshalArtifact("Traefik dynamic configuration file", dynamic)
	if err != nil {
		return nil, err
	}
	traefikEnv, err := b.proxyStackEnv(cfg, registry, vars)
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts,
		artifact.Artifact{Path: filepath.Join(traefikDir, "traefik-config.yml"), Content: staticDoc},
		artifact.Artifact{Path: filepath.Join(traefikDir, "traefik-dynamic-config.yml"), Content: dynamicDoc},
		artifact.Artifact{Path: filepath.Join(traefikDir, ".env"), Content: []byte(template.EncodeDotenv(traefikEnv)), Mode: 0o600},
	)

	// Service stack artifacts.
	for _, st := range stacks {
		stackArtifacts, err := b.compileStack(ctx, cfg, registry, vars, st)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, stackArtifacts...)
	}

	result.Variables = vars.list()

	if !write {
		log.Info("dry run complete", "artifacts", len(artifacts))
		return result, nil
	}

	changed, err := artifact.NewWriter().WriteAll(artifacts)
	if err != nil {
		return nil, err
	}
	result.Changed = changed
	log.Info("build complete", "artifacts", len(artifacts), "changed", len(changed))
	return result, nil
}

// =============================================================================
// Stack Compilation
// =============================================================================

// compileStack expands one stack's compose template, merges its injected
// environment and produces its overlay and env artifacts.
func (b *Builder) compileStack(ctx context.Context, cfg *hub.HubConfig, registry *FragmentRegistry, vars *variableSet, st Stack) ([]artifact.Artifact, error) {
	exp := NewServiceExpander(cfg, st.Descriptor)
	templateName := filepath.Join("stacks", st.Name, ComposeTemplateFileName)

	refs, err := template.References(templateName, st.ComposeTemplate)
	if err != nil {
		return nil, err
	}
	vars.addReferences(templateName, refs)

	expanded, err := exp.Expand(templateName, st.ComposeTemplate)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, &template.ExpansionError{Template: templateName, Err: err}
	}

	env, err := b.serviceEnv(cfg, registry, exp, vars, st.Descriptor)
	if err != nil {
		return nil, err
	}

	overlay, err := compose.BuildOverlay(doc, st.Descriptor.Subdomain, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", templateName, err)
	}

	overlayDoc, err := marshalArtifact("Compose overlay for stack "+st.Name, overlay)
	if err != nil {
		return nil, err
	}
	if err := compose.ValidateOverlay(ctx, string(overlayDoc)); err != nil {
		return nil, fmt.Errorf("%s: %w", templateName, err)
	}

	stackDir := filepath.Join(b.BuildDir, "stacks", st.Name)
	return []artifact.Artifact{
		{Path: filepath.Join(stackDir, "docker-compose.yml"), Content: overlayDoc},
		{Path: filepath.Join(stackDir, ".env"), Content: []byte(template.EncodeDotenv(compose.FlattenEnv(env))), Mode: 0o600},
	}, nil
}

// serviceEnv computes the merged runtime environment for one service.
//
// Hub-level layers (base, then base_app) are applied as successive merge
// invocations: later layers deliberately override earlier ones. The
// service's own explicit env then overlays the accumulated defaults.
// Finally the descriptor-listed fragments are applied in one invocation
// over that target, so fragments that disagree on a key the service does
// not arbitrate fail loudly instead of racing.
func (b *Builder) serviceEnv(cfg *hub.HubConfig, registry *FragmentRegistry, exp *template.Expander, vars *variableSet, desc hub.ServiceDescriptor) (map[string]any, error) {
	acc := map[string]any{}
	for _, name := range StackLayers(desc.Kind) {
		frag, err := b.expandedFragment(registry, exp, vars, name)
		if err != nil {
			return nil, err
		}
		if len(frag.Vars) == 0 {
			continue
		}
		acc, err = envmerge.Merge(envmerge.Target{Vars: acc}, frag)
		if err != nil {
			return nil, err
		}
	}

	if len(desc.Env) > 0 {
		var err error
		acc, err = envmerge.Merge(envmerge.Target{Vars: acc}, envmerge.Fragment{Name: "service-env", Vars: desc.Env})
		if err != nil {
			return nil, err
		}
	}

	if len(desc.Fragments) == 0 {
		return acc, nil
	}
	fragments := make([]envmerge.Fragment, 0, len(desc.Fragments))
	for _, name := range desc.Fragments {
		frag, err := b.expandedFragment(registry, exp, vars, name)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, frag)
	}
	return envmerge.Merge(envmerge.Target{Vars: acc, Pinned: desc.PinnedEnv}, fragments...)
}

// expandedFragment resolves a fragment, records its template references in
// the recognized-variable listing and expands them. Expansion sees only hub
// and service vars: a fragment may not forward-reference values introduced
// by a later fragment.
func (b *Builder) expandedFragment(registry *FragmentRegistry, exp *template.Expander, vars *variableSet, name string) (envmerge.Fragment, error) {
	frag, err := registry.Resolve(name)
	if err != nil {
		return envmerge.Fragment{}, err
	}
	if len(frag.Vars) == 0 {
		return frag, nil
	}
	if err := vars.addValueReferences("fragment "+name, frag.Vars); err != nil {
		return envmerge.Fragment{}, err
	}
	expanded, err := exp.ExpandAny("fragment "+name, frag.Vars)
	if err != nil {
		return envmerge.Fragment{}, err
	}
	frag.Vars = expanded.(map[string]any)
	return frag, nil
}

// proxyStackEnv computes the proxy stack's .env: computed hub vars
// overlaid with the base and traefik env layers.
func (b *Builder) proxyStackEnv(cfg *hub.HubConfig, registry *FragmentRegistry, vars *variableSet) (map[string]string, error) {
	hubExp := template.NewExpander(template.Source{Name: "hub", Vars: HubVars(cfg)})

	acc := map[string]any{}
	for _, name := range StackLayers("traefik") {
		frag, err := b.expandedFragment(registry, hubExp, vars, name)
		if err != nil {
			return nil, err
		}
		if len(frag.Vars) == 0 {
			continue
		}
		acc, err = envmerge.Merge(envmerge.Target{Vars: acc}, frag)
		if err != nil {
			return nil, err
		}
	}

	env := HubVars(cfg)
	for k, v := range compose.FlattenEnv(acc) {
		env[k] = v
	}
	return env, nil
}

// =============================================================================
// Helpers
// =============================================================================

// marshalArtifact renders a document to YAML with the provenance header.
func marshalArtifact(title string, doc any) ([]byte, error) {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	header := fmt.Sprintf("# %s\n#\n# Auto-generated by `hubctl build`. DO NOT EDIT!\n#\n", title)
	return append([]byte(header), raw...), nil
}

// variableSet accumulates the recognized-variable listing.
type variableSet struct {
	byName map[string]VariableInfo
}

func newVariableSet(cfg *hub.HubConfig) *variableSet {
	vs := &variableSet{byName: make(map[string]VariableInfo)}
	for name := range HubVars(cfg) {
		vs.byName[name] = VariableInfo{Name: name, Source: "hub"}
	}
	return vs
}

func (vs *variableSet) addReferences(templateName string, refs []template.Reference) {
	for _, ref := range refs {
		if existing, ok := vs.byName[ref.Name]; ok {
			// Keep the first sighting; upgrade to required if any
			// reference is required.
			if ref.Required && !existing.Required {
				existing.Required = true
				vs.byName[ref.Name] = existing
			}
			continue
		}
		vs.byName[ref.Name] = VariableInfo{
			Name:     ref.Name,
			Default:  ref.Default,
			Required: ref.Required,
			Source:   templateName,
		}
	}
}

// addValueReferences walks an env value tree (nested maps, lists, scalars)
// and records template references found in its string values, so variables
// referenced only from env fragments still show up in the listing.
func (vs *variableSet) addValueReferences(source string, val any) error {
	switch v := val.(type) {
	case string:
		refs, err := template.References(source, v)
		if err != nil {
			return err
		}
		vs.addReferences(source, refs)
	case map[string]any:
		for _, inner := range v {
			if err := vs.addValueReferences(source, inner); err != nil {
				return err
			}
		}
	case []any:
		for _, inner := range v {
			if err := vs.addValueReferences(source, inner); err != nil {
				return err
			}
		}
	}
	return nil
}

func (vs *variableSet) list() []VariableInfo {
	out := make([]VariableInfo, 0, len(vs.byName))
	for _, v := range vs.byName {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
