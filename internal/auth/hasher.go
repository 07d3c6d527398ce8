package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-SHA256 parameters. Changing any of them invalidates every stored
// credential, so they are fixed here rather than configurable.
const (
	saltSize      = 16
	keySize       = 32
	kdfIterations = 100_000
	HashAlgorithm = "PBKDF2-SHA256"
)

// HashPassword derives a salted one-way hash of password. The salt is fresh
// random bytes on every call; hash and salt are returned base64 encoded.
func HashPassword(password string) (hash string, salt string, err error) {
	rawSalt := make([]byte, saltSize)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), rawSalt, kdfIterations, keySize, sha256.New)

	return base64.StdEncoding.EncodeToString(key),
		base64.StdEncoding.EncodeToString(rawSalt),
		nil
}

// VerifyPassword re-derives the hash for password under the stored salt and
// compares it against the stored hash in constant time. A stored value that
// fails to decode is a storage-integrity error, not a wrong password, and is
// reported via the error return.
func VerifyPassword(password, storedHash, storedSalt string) (bool, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(storedSalt)
	if err != nil {
		return false, fmt.Errorf("decode stored salt: %w", err)
	}
	expected, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil {
		return false, fmt.Errorf("decode stored hash: %w", err)
	}

	candidate := pbkdf2.Key([]byte(password), rawSalt, kdfIterations, keySize, sha256.New)

	return subtle.ConstantTimeCompare(candidate, expected) == 1, nil
}
