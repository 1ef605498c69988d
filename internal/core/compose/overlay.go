package compose

import (
	"fmt"
	"sort"
)

// =============================================================================
// Overlay Construction
// =============================================================================

// HubNetworkName is the shared docker network every hub-routed service
// joins so the proxy can reach it by service name.
const HubNetworkName = "hub"

// BuildOverlay injects the merged runtime environment into the named
// service of an expanded compose document and attaches the shared hub
// network. The input document is not mutated.
//
// Nested environment maps are flattened into compose's flat string
// environment by joining key path segments with "_": {"db": {"host": "x"}}
// becomes "db_host=x". Scalars are stringified the way compose would
// render them.
func BuildOverlay(doc map[string]any, serviceName string, env map[string]any) (map[string]any, error) {
	if len(doc) == 0 {
		return nil, ErrEmptyInput
	}
	out := deepCopy(doc).(map[string]any)

	services, ok := out["services"].(map[string]any)
	if !ok || len(services) == 0 {
		return nil, NewOverlayError("services", "compose document must define at least one service", ErrNoServices)
	}
	svc, ok := services[serviceName].(map[string]any)
	if !ok {
		return nil, NewOverlayError("services."+serviceName, "named service not present in compose document", ErrServiceMissing)
	}

	// Merge the injected environment over whatever the template already
	// declares. Template-declared values were folded into env upstream,
	// so the flattened env is authoritative here.
	flat := FlattenEnv(env)
	if len(flat) > 0 {
		existing, _ := svc["environment"].(map[string]any)
		merged := make(map[string]any, len(existing)+len(flat))
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range flat {
			merged[k] = v
		}
		svc["environment"] = merged
	}

	// Join the shared hub network, preserving any template networks.
	attachNetwork(svc, out)

	return out, nil
}

// FlattenEnv flattens nested maps into compose's flat string environment,
// joining key path segments with "_".
func FlattenEnv(env map[string]any) map[string]string {
	flat := make(map[string]string)
	flattenInto(flat, "", env)
	return flat
}

func flattenInto(flat map[string]string, prefix string, env map[string]any) {
	for key, val := range env {
		path := key
		if prefix != "" {
			path = prefix + "_" + key
		}
		if inner, ok := val.(map[string]any); ok {
			flattenInto(flat, path, inner)
			continue
		}
		flat[path] = stringifyScalar(val)
	}
}

func stringifyScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}

// attachNetwork adds the hub network to the service and declares it as
// external at the document top level.
func attachNetwork(svc, doc map[string]any) {
	var networks []any
	switch existing := svc["networks"].(type) {
	case []any:
		networks = existing
	case map[string]any:
		// Map form; normalize to list form for the overlay.
		keys := make([]string, 0, len(existing))
		for k := range existing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			networks = append(networks, k)
		}
	}
	for _, n := range networks {
		if n == HubNetworkName {
			svc["networks"] = networks
			ensureExternalNetwork(doc)
			return
		}
	}
	svc["networks"] = append(networks, HubNetworkName)
	ensureExternalNetwork(doc)
}

func ensureExternalNetwork(doc map[string]any) {
	networks, ok := doc["networks"].(map[string]any)
	if !ok {
		networks = make(map[string]any)
		doc["networks"] = networks
	}
	if _, declared := networks[HubNetworkName]; !declared {
		networks[HubNetworkName] = map[string]any{"external": true}
	}
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = deepCopy(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = deepCopy(inner)
		}
		return out
	default:
		return v
	}
}
