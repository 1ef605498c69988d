// Package template performs environment-variable interpolation over text
// templates. This is part of the Functional Core - all functions are pure
// with no I/O.
//
// Two reference forms are supported, mirroring docker-compose interpolation:
//
//	${VAR}           required - expansion fails if VAR is not resolvable
//	${VAR:-default}  defaulted - default is used if VAR is unset OR empty
//
// A bare $VAR is accepted as shorthand for ${VAR}, and $$ produces a
// literal dollar sign. Defaults may themselves contain references
// (${A:-${B:-literal}}), which are expanded first, in a single left-to-right
// pass.
//
// Escaping rule: "$" is the interpolation escape character of the generated
// documents themselves (compose re-interpolates .env values), so any
// resolved value that is embedded in a re-interpolated document must have
// every "$" doubled. Escape implements exactly that; the builder applies it
// when rendering compose-facing env files. Forgetting this is the classic
// way to corrupt bcrypt hashes, which are full of dollar signs.
package template

import (
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrUnresolvedVariable = errors.New("unresolved required variable")
	ErrUnterminatedRef    = errors.New("unterminated ${...} reference")
	ErrEmptyVariableName  = errors.New("empty variable name in reference")
	ErrBadVariableName    = errors.New("malformed variable name in reference")
)

// ExpansionError reports a failed template expansion with the variable name
// and the source template so the operator can find the offending reference.
type ExpansionError struct {
	Variable string // variable name, empty for syntax errors
	Template string // template identity (file name or document label)
	Err      error
}

func (e *ExpansionError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %v: %s", e.Template, e.Err, e.Variable)
	}
	return fmt.Sprintf("%s: %v", e.Template, e.Err)
}

func (e *ExpansionError) Unwrap() error {
	return e.Err
}
