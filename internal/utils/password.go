package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the value to store for a new password. A cost of
// zero or less keeps the password in plain text, which is what the
// existing data files contain. Plain text storage is insecure.
func HashPassword(plain string, cost int) (string, error) {
	if cost <= 0 {
		return plain, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored value with a candidate password. Bcrypt
// hashes are checked with bcrypt, anything else by exact match.
func VerifyPassword(stored, plain string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	}
	return stored == plain
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
