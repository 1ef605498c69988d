package template

import "strings"

// =============================================================================
// Variable Resolution Sources
// =============================================================================

// Source is one named mapping in an ordered resolution context. Earlier
// sources win. The name shows up in diagnostics only.
type Source struct {
	Name string
	Vars map[string]string
}

// Expander expands variable references against an ordered list of sources,
// first match wins. A key that is present with an empty value counts as
// resolved for required references but as unset for defaulted ones,
// matching docker-compose ":-" semantics.
type Expander struct {
	sources []Source
}

// NewExpander creates an Expander consulting the given sources in order.
func NewExpander(sources ...Source) *Expander {
	return &Expander{sources: sources}
}

// Lookup returns the first value found for name across the sources.
func (e *Expander) Lookup(name string) (value string, found bool) {
	for _, src := range e.sources {
		if v, ok := src.Vars[name]; ok {
			return v, true
		}
	}
	return "", false
}

// =============================================================================
// Expansion
// =============================================================================

// Expand performs a single left-to-right pass over text, substituting every
// variable reference. templateName identifies the template in errors.
//
// Example:
//
//	e := NewExpander(Source{Name: "env", Vars: map[string]string{"HOST": "hub"}})
//	out, err := e.Expand("demo", "${HOST}.${DOMAIN:-example.com}")
//	// out == "hub.example.com"
func (e *Expander) Expand(templateName, text string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		if c != '$' {
			out.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(text) {
			// Trailing bare dollar, kept literally.
			out.WriteByte('$')
			break
		}
		switch next := text[i+1]; {
		case next == '$':
			out.WriteByte('$')
			i += 2
		case next == '{':
			ref, length, err := parseBracedRef(text[i:])
			if err != nil {
				return "", &ExpansionError{Template: templateName, Err: err}
			}
			val, err := e.resolve(templateName, ref)
			if err != nil {
				return "", err
			}
			out.WriteString(val)
			i += length
		case isIdentStart(next):
			j := i + 1
			for j < len(text) && isIdentChar(text[j]) {
				j++
			}
			name := text[i+1 : j]
			val, ok := e.Lookup(name)
			if !ok {
				return "", &ExpansionError{Variable: name, Template: templateName, Err: ErrUnresolvedVariable}
			}
			out.WriteString(val)
			i = j
		default:
			// "$" followed by something that cannot start a reference.
			out.WriteByte('$')
			i++
		}
	}
	return out.String(), nil
}

// ExpandAny expands every string leaf of a nested structure of maps, slices
// and scalars, as produced by YAML decoding. Non-string scalars pass
// through unchanged.
func (e *Expander) ExpandAny(templateName string, v any) (any, error) {
	switch val := v.(type) {
	case string:
		return e.Expand(templateName, val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			expanded, err := e.ExpandAny(templateName, inner)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			expanded, err := e.ExpandAny(templateName, inner)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolve produces the substitution for one parsed reference. Defaults are
// expanded before use so chained defaults like ${A:-${B:-literal}} work.
func (e *Expander) resolve(templateName string, ref Reference) (string, error) {
	val, found := e.Lookup(ref.Name)
	if ref.Required {
		if !found {
			return "", &ExpansionError{Variable: ref.Name, Template: templateName, Err: ErrUnresolvedVariable}
		}
		return val, nil
	}
	// Defaulted reference: present-but-empty counts as unset.
	if found && val != "" {
		return val, nil
	}
	return e.Expand(templateName, ref.Default)
}

// Escape doubles every dollar sign in value so that it survives a
// subsequent interpolation pass over the generated document. Apply it to
// any resolved value embedded in a document that compose (or this package)
// will interpolate again.
//
// Example:
//
//	Escape("admin:$2b$12$abc") // "admin:$$2b$$12$$abc"
func Escape(value string) string {
	return strings.ReplaceAll(value, "$", "$$")
}

// EscapeVars returns a copy of vars with every value escaped via Escape.
func EscapeVars(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = Escape(v)
	}
	return out
}

// =============================================================================
// Reference Parsing
// =============================================================================

// Reference is one variable reference found in a template.
type Reference struct {
	Name     string
	Default  string // raw default text, may contain nested references
	Required bool   // true for ${VAR} / $VAR, false for ${VAR:-default}
}

// References lists every reference in text in order of appearance,
// including references nested inside defaults. Callers aggregating the
// recognized-variable set should dedupe by name.
func References(templateName, text string) ([]Reference, error) {
	var refs []Reference
	i := 0
	for i < len(text) {
		if text[i] != '$' || i+1 >= len(text) {
			i++
			continue
		}
		switch next := text[i+1]; {
		case next == '$':
			i += 2
		case next == '{':
			ref, length, err := parseBracedRef(text[i:])
			if err != nil {
				return nil, &ExpansionError{Template: templateName, Err: err}
			}
			refs = append(refs, ref)
			if ref.Default != "" {
				nested, err := References(templateName, ref.Default)
				if err != nil {
					return nil, err
				}
				refs = append(refs, nested...)
			}
			i += length
		case isIdentStart(next):
			j := i + 1
			for j < len(text) && isIdentChar(text[j]) {
				j++
			}
			refs = append(refs, Reference{Name: text[i+1 : j], Required: true})
			i = j
		default:
			i++
		}
	}
	return refs, nil
}

// parseBracedRef parses a ${NAME} or ${NAME:-DEFAULT} reference at the
// start of text. The default may contain nested ${...} references, so
// braces are matched by depth rather than by regex. Returns the reference
// and the number of bytes consumed.
func parseBracedRef(text string) (Reference, int, error) {
	// text starts with "${"
	depth := 1
	i := 2
	nameEnd := -1
	defaultStart := -1
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "${"):
			depth++
			i += 2
		case text[i] == '}':
			depth--
			if depth == 0 {
				if nameEnd == -1 {
					nameEnd = i
				}
				return makeRef(text, nameEnd, defaultStart, i)
			}
			i++
		case depth == 1 && defaultStart == -1 && strings.HasPrefix(text[i:], ":-"):
			nameEnd = i
			defaultStart = i + 2
			i += 2
		default:
			i++
		}
	}
	return Reference{}, 0, ErrUnterminatedRef
}

func makeRef(text string, nameEnd, defaultStart, closing int) (Reference, int, error) {
	name := text[2:nameEnd]
	if name == "" {
		return Reference{}, 0, ErrEmptyVariableName
	}
	if !isIdentName(name) {
		return Reference{}, 0, ErrBadVariableName
	}
	ref := Reference{Name: name, Required: defaultStart == -1}
	if defaultStart != -1 {
		ref.Default = text[defaultStart:closing]
	}
	return ref, closing + 1, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentName(s string) bool {
	if !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
