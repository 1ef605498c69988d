package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sammck/hubctl/internal/core/envmerge"
	"github.com/sammck/hubctl/internal/core/hub"
	"github.com/sammck/hubctl/internal/core/routing"
	"github.com/sammck/hubctl/internal/core/template"
	"github.com/sammck/hubctl/internal/shell/artifact"
)

// =============================================================================
// Exit Code Mapping Tests
// =============================================================================

func TestExitCodeFor_ErrorClasses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			"validation error",
			hub.NewValidationError("hub.parent_dns_domain", "", hub.ErrDomainRequired),
			ExitConfigError,
		},
		{
			"template error",
			&template.ExpansionError{Variable: "X", Template: "t", Err: template.ErrUnresolvedVariable},
			ExitTemplateError,
		},
		{
			"route collision",
			&routing.CollisionError{Router: "r", SubdomainA: "a", SubdomainB: "b"},
			ExitRouteError,
		},
		{
			"env merge conflict",
			&envmerge.ConflictError{Key: "K", FragmentA: "a", FragmentB: "b"},
			ExitEnvMergeError,
		},
		{
			"write error",
			&artifact.WriteError{Path: "/out", Err: errors.New("disk full")},
			ExitWriteError,
		},
		{
			"unclassified error",
			errors.New("mystery"),
			ExitConfigError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
			// Wrapping must not change the classification.
			assert.Equal(t, tt.want, exitCodeFor(fmt.Errorf("stacks/x: %w", tt.err)))
		})
	}
}

// =============================================================================
// CLI Dispatch Tests
// =============================================================================

func TestRun_Version(t *testing.T) {
	assert.Equal(t, ExitSuccess, run([]string{"-version"}))
	assert.Equal(t, ExitSuccess, run([]string{"version"}))
}

func TestRun_NoCommand(t *testing.T) {
	assert.Equal(t, ExitUsage, run(nil))
}

func TestRun_UnknownCommand(t *testing.T) {
	assert.Equal(t, ExitUsage, run([]string{"frobnicate"}))
}

func TestRun_ConfigUsageErrors(t *testing.T) {
	assert.Equal(t, ExitUsage, run([]string{"config"}))
	assert.Equal(t, ExitUsage, run([]string{"config", "get"}))
	assert.Equal(t, ExitUsage, run([]string{"config", "set", "only-key"}))
	assert.Equal(t, ExitUsage, run([]string{"config", "bogus"}))
}

func TestRun_ConfigKeys(t *testing.T) {
	assert.Equal(t, ExitSuccess, run([]string{"config", "keys"}))
}
