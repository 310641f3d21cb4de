package utils

import (
	"crypto/rand"     // Random bytes for temporary passwords
	"encoding/hex"    // Hex encoding of random bytes
	"fmt"             // Composing the fallback password
	"time"            // Timestamp fallback

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err // Return error if hashing fails
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateTempPassword produces a random temporary password for the
// password-reset flow. The reset replaces the stored credential immediately,
// so the value only lives in the reset response and the diagnostic log.
func GenerateTempPassword() string {
	buf := make([]byte, 8) // 16 hex characters
	if _, err := rand.Read(buf); err != nil {
		// Extremely unlikely; fall back to a timestamp-based value
		return fmt.Sprintf("tmp%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
