// Package credential derives password hashes and issues the opaque random
// strings used as salts and bearer tokens.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	randomLen = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Service hashes passwords and generates salts and tokens.
type Service struct {
	random io.Reader
}

// New returns a Service reading randomness from crypto/rand.
func New() *Service {
	return NewWithReader(rand.Reader)
}

// NewWithReader returns a Service reading randomness from r.
func NewWithReader(r io.Reader) *Service {
	return &Service{random: r}
}

// Derive computes the hash of password with salt. It is deterministic.
func (s *Service) Derive(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.StdEncoding.EncodeToString(key)
}

// Verify reports whether password and salt derive to hash.
func (s *Service) Verify(password, salt, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(s.Derive(password, salt)), []byte(hash)) == 1
}

// IssueToken returns a new 64 character bearer token.
func (s *Service) IssueToken() (string, error) {
	return s.randomHex()
}

// IssueSalt returns a new 64 character salt.
func (s *Service) IssueSalt() (string, error) {
	return s.randomHex()
}

func (s *Service) randomHex() (string, error) {
	b := make([]byte, randomLen)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
