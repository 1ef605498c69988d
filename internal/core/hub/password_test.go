package hub

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HashUsernamePassword Tests
// =============================================================================

func TestHashUsernamePassword_RoundTrip(t *testing.T) {
	entry, err := HashUsernamePassword("admin", "hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(entry, "admin:$2"), "entry should be user:bcrypt-hash, got %q", entry)

	ok, err := CheckUsernamePassword(entry, "admin", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckUsernamePassword_WrongPassword(t *testing.T) {
	entry, err := HashUsernamePassword("admin", "hunter2")
	require.NoError(t, err)

	ok, err := CheckUsernamePassword(entry, "admin", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckUsernamePassword_WrongUsername(t *testing.T) {
	entry, err := HashUsernamePassword("admin", "hunter2")
	require.NoError(t, err)

	ok, err := CheckUsernamePassword(entry, "other", "hunter2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckUsernamePassword_MalformedEntry(t *testing.T) {
	_, err := CheckUsernamePassword("no-colon-here", "admin", "hunter2")
	assert.ErrorIs(t, err, ErrHtpasswdFormat)
}

// =============================================================================
// ValidateHtpasswd Tests
// =============================================================================

func TestValidateHtpasswd_AcceptedPrefixes(t *testing.T) {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		assert.NoError(t, ValidateHtpasswd("admin:"+prefix+"10$abcdefghijk"), "prefix %s", prefix)
	}
}

func TestValidateHtpasswd_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		wantErr error
	}{
		{"no colon", "adminhash", ErrHtpasswdFormat},
		{"empty user", ":$2b$10$abc", ErrHtpasswdFormat},
		{"empty hash", "admin:", ErrHtpasswdFormat},
		{"md5 scheme", "admin:$apr1$abc", ErrHtpasswdScheme},
		{"plaintext", "admin:hunter2", ErrHtpasswdScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateHtpasswd(tt.entry), tt.wantErr)
		})
	}
}
