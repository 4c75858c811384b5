package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for stored credentials. Changing these invalidates
// every stored hash, so they are fixed.
const (
	saltBytes      = 16
	hashIterations = 10000
	hashKeyBytes   = 64
)

// HashPassword derives a salted PBKDF2-HMAC-SHA512 hash and returns it
// as "salt:hash" with both parts hex-encoded.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(saltHex), hashIterations, hashKeyBytes, sha512.New)

	return saltHex + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword recomputes the hash for password with the salt embedded
// in stored and compares. Malformed stored values verify as false rather
// than erroring.
func VerifyPassword(password, stored string) bool {
	saltHex, hashHex, ok := strings.Cut(stored, ":")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	key := pbkdf2.Key([]byte(password), []byte(saltHex), hashIterations, hashKeyBytes, sha512.New)
	return hex.EncodeToString(key) == hashHex
}
