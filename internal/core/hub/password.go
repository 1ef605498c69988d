package hub

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// htpasswd-Compatible Credentials
// =============================================================================

// acceptedBcryptPrefixes are the hash-scheme prefixes recognized in stored
// htpasswd entries. htpasswd -B emits $2y$; the Go bcrypt package emits $2a$.
var acceptedBcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// HashUsernamePassword hashes a username/password pair with bcrypt in a
// format compatible with htpasswd: "username:bcrypt-hash".
//
// Example:
//
//	entry, err := HashUsernamePassword("admin", "hunter2")
//	// entry == "admin:$2a$10$..."
func HashUsernamePassword(username, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return username + ":" + string(hashed), nil
}

// CheckUsernamePassword verifies a username/password pair against an
// htpasswd-style "username:bcrypt-hash" entry.
func CheckUsernamePassword(entry, username, password string) (bool, error) {
	if err := ValidateHtpasswd(entry); err != nil {
		return false, err
	}
	entryUser, hash, _ := strings.Cut(entry, ":")
	if entryUser != username {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		return false, nil
	}
	return true, nil
}

// ValidateHtpasswd checks that an htpasswd entry is of the form
// "username:bcrypt-hash" with an accepted hash-scheme prefix.
func ValidateHtpasswd(entry string) error {
	user, hash, found := strings.Cut(entry, ":")
	if !found || user == "" || hash == "" {
		return ErrHtpasswdFormat
	}
	for _, prefix := range acceptedBcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			return nil
		}
	}
	return ErrHtpasswdScheme
}
