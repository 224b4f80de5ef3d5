package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// New returns a random hex token of 2*n characters.
func New(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewAPIKey mints an API key secret with a recognizable prefix. The full
// secret is shown to the user once; only its hash is stored.
func NewAPIKey() (secret string, prefix string, err error) {
	t, err := New(24)
	if err != nil {
		return "", "", err
	}
	secret = "mk_" + t
	return secret, secret[:10], nil
}

// Hash returns the hex-encoded SHA-256 digest of a secret, the stored form
// of API keys.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
