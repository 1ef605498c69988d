// Package routing generates the full matrix of reverse-proxy router and
// middleware definitions for each service across every applicable network
// entrypoint. This is part of the Functional Core - all functions are pure
// with no I/O.
package routing

import (
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

var ErrRouterCollision = errors.New("duplicate router name")

// CollisionError reports two service descriptors that would generate the
// same router identity. Detected before any artifact is written.
type CollisionError struct {
	Router     string // colliding router name
	SubdomainA string // descriptor that generated the router first
	SubdomainB string // descriptor that collided with it
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("router %q: services %q and %q generate the same router name", e.Router, e.SubdomainA, e.SubdomainB)
}

func (e *CollisionError) Unwrap() error {
	return ErrRouterCollision
}
