package template

import (
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// Dotenv Encoding
// =============================================================================

// unquotedSafeRegex matches values that can be written to a .env file
// without quoting. Anything else (spaces, quotes, dollar signs, ...) is
// single-quoted, which also shields the value from interpolation when the
// file is read back.
var unquotedSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:\-]+$`)

// EncodeDotenv serializes vars into parseable .env content with
// deterministic (sorted) key order.
//
// Example:
//
//	EncodeDotenv(map[string]string{"A": "1", "B": "x y"})
//	// "A=1\nB='x y'\n"
func EncodeDotenv(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(encodeDotenvPair(k, vars[k]))
		b.WriteByte('\n')
	}
	return b.String()
}

func encodeDotenvPair(name, value string) string {
	if unquotedSafeRegex.MatchString(value) {
		return name + "=" + value
	}
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `'\''`)
	return name + "='" + escaped + "'"
}

// ParseDotenv parses .env content produced by EncodeDotenv (plus comments
// and blank lines). Values round-trip exactly, including dollar signs.
func ParseDotenv(content string) map[string]string {
	vars := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, raw, found := strings.Cut(line, "=")
		if !found || name == "" {
			continue
		}
		vars[strings.TrimSpace(name)] = decodeDotenvValue(raw)
	}
	return vars
}

func decodeDotenvValue(raw string) string {
	if len(raw) >= 2 && strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") {
		inner := raw[1 : len(raw)-1]
		inner = strings.ReplaceAll(inner, `'\''`, `'`)
		inner = strings.ReplaceAll(inner, `\\`, `\`)
		return inner
	}
	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		inner := raw[1 : len(raw)-1]
		inner = strings.ReplaceAll(inner, `\"`, `"`)
		inner = strings.ReplaceAll(inner, `\\`, `\`)
		return inner
	}
	return raw
}
