package hub

import (
	"regexp"
	"strings"
)

// =============================================================================
// Syntax Validation (DNS names, labels, emails, resolvers)
// =============================================================================

var (
	dnsLabelRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	dnsNameRegex  = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
	resolverRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// ValidateDNSName validates a fully qualified DNS name such as
// "hub.example.com".
func ValidateDNSName(name string) error {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ErrDomainRequired
	}
	if len(name) > 253 {
		return ErrDomainTooLong
	}
	if !dnsNameRegex.MatchString(name) {
		return ErrDomainInvalid
	}
	return nil
}

// ValidateDNSLabel validates a single DNS label (one subdomain component).
// Labels are lowercase alphanumerics and hyphens, at most 63 characters,
// and may not start or end with a hyphen.
func ValidateDNSLabel(label string) error {
	if !dnsLabelRegex.MatchString(label) {
		return ErrSubdomainInvalid
	}
	return nil
}

// ValidateEmail validates an email address for ACME registration.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateCertResolver validates a certificate resolver identifier.
func ValidateCertResolver(name string) error {
	if name == "" {
		return ErrResolverRequired
	}
	if !resolverRegex.MatchString(name) {
		return ErrResolverInvalid
	}
	return nil
}
