// Package password holds the credential hashing used for member accounts and
// the digest applied to refresh tokens before they touch the database.
package password

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for member password hashes.
const BcryptCost = 12

// MinLength is the shortest password accepted at registration and on change.
const MinLength = 8

// Hash derives a bcrypt hash for storage in users.password
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether plain matches the stored bcrypt hash
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashToken digests a refresh token with SHA-256 so the raw token is never
// persisted; lookups compare digests only.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidatePassword checks the password policy
func ValidatePassword(plain string) bool {
	return len(plain) >= MinLength
}
