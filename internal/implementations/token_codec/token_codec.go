package tokencodec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"orderform/internal/core/domain/token"
)

// SecretSize is the number of random bytes behind every secret.
const SecretSize = 32

// SHA256 generates URL-safe secrets and stores only their hex SHA-256 digest.
type SHA256 struct {
	random io.Reader
}

func NewSHA256() *SHA256 {
	return &SHA256{random: rand.Reader}
}

func (c *SHA256) GenerateSecret() (token.RawSecret, error) {
	b := make([]byte, SecretSize)
	if _, err := io.ReadFull(c.random, b); err != nil {
		return "", fmt.Errorf("could not read random bytes: %w", err)
	}
	return token.RawSecret(base64.RawURLEncoding.EncodeToString(b)), nil
}

func (c *SHA256) Hash(secret token.RawSecret) token.Digest {
	sum := sha256.Sum256([]byte(secret))
	return token.Digest(hex.EncodeToString(sum[:]))
}
