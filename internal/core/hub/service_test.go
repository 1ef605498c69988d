package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// ServiceDescriptor Tests
// =============================================================================

func validDescriptor() ServiceDescriptor {
	return ServiceDescriptor{
		Subdomain:   "whoami",
		Visibility:  Visibility{Public: true},
		Style:       RoutingStyle{Host: true},
		BackendPort: 80,
	}
}

func TestServiceDescriptor_Valid(t *testing.T) {
	d := validDescriptor()
	assert.NoError(t, d.Validate())
}

func TestServiceDescriptor_BadSubdomain(t *testing.T) {
	d := validDescriptor()
	d.Subdomain = "Who Ami"
	assert.ErrorIs(t, d.Validate(), ErrSubdomainInvalid)
}

func TestServiceDescriptor_BadPort(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		d := validDescriptor()
		d.BackendPort = port
		assert.ErrorIs(t, d.Validate(), ErrPortInvalid, "port %d", port)
	}
}

func TestServiceDescriptor_BadResolverOverride(t *testing.T) {
	d := validDescriptor()
	d.CertResolver = "Not Valid"
	assert.ErrorIs(t, d.Validate(), ErrResolverInvalid)
}

func TestVisibility_None(t *testing.T) {
	assert.True(t, Visibility{}.None())
	assert.False(t, Visibility{Public: true}.None())
	assert.False(t, Visibility{Private: true}.None())
	assert.False(t, Visibility{Dashboard: true}.None())
}
