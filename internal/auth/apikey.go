// Package auth generates and verifies the API keys that guard the HTTP
// adapter. Only bcrypt hashes of keys are ever stored.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyLength is the length of the random part of an API key.
	APIKeyLength = 32

	// APIKeyPrefix starts every API key.
	APIKeyPrefix = "sk"

	// BcryptCost is the cost used for stored key hashes.
	BcryptCost = 12

	// BcryptMaxInputLength is the most bcrypt reads; longer keys are
	// pre-hashed with SHA-256.
	BcryptMaxInputLength = 72
)

// hashCost is lowered by tests.
var hashCost = BcryptCost

// GeneratedKey is a fresh key together with the hash to put in the config.
type GeneratedKey struct {
	Key    string `json:"key"`
	Hash   string `json:"hash"`
	Prefix string `json:"prefix"`
}

// GenerateAPIKey creates a random key and hashes it.
func GenerateAPIKey() (*GeneratedKey, error) {
	randomBytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	// base32 has no ambiguous characters
	randomPart := strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes))
	if len(randomPart) > APIKeyLength {
		randomPart = randomPart[:APIKeyLength]
	}
	key := APIKeyPrefix + "_" + randomPart

	hash, err := HashAPIKey(key)
	if err != nil {
		return nil, err
	}
	return &GeneratedKey{Key: key, Hash: hash, Prefix: CreateDisplayPrefix(key)}, nil
}

func keyBytes(apiKey string) []byte {
	b := []byte(apiKey)
	if len(b) > BcryptMaxInputLength {
		sum := sha256.Sum256(b)
		b = sum[:]
	}
	return b
}

// HashAPIKey creates a bcrypt hash of an API key for storage.
func HashAPIKey(apiKey string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("API key cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword(keyBytes(apiKey), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}

// ValidateAPIKey checks a key against a stored hash.
func ValidateAPIKey(apiKey, storedHash string) bool {
	if apiKey == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), keyBytes(apiKey)) == nil
}

// IsValidAPIKeyFormat checks prefix, length and alphabet.
func IsValidAPIKeyFormat(apiKey string) bool {
	if !strings.HasPrefix(apiKey, APIKeyPrefix+"_") {
		return false
	}
	if len(apiKey) < 15 || len(apiKey) > 50 {
		return false
	}
	for _, char := range apiKey {
		if (char < 'a' || char > 'z') &&
			(char < 'A' || char > 'Z') &&
			(char < '0' || char > '9') &&
			char != '_' {
			return false
		}
	}
	return true
}

// CreateDisplayPrefix returns a loggable prefix such as "sk_abcdefgh...".
func CreateDisplayPrefix(apiKey string) string {
	if !IsValidAPIKeyFormat(apiKey) {
		return "invalid_key"
	}
	parts := strings.SplitN(apiKey, "_", 2)
	if len(parts[1]) >= 8 {
		return fmt.Sprintf("%s_%s...", parts[0], parts[1][:8])
	}
	return fmt.Sprintf("%s_%s...", parts[0], parts[1])
}

// KeyRing verifies presented keys against a set of stored hashes. Keys that
// matched once are remembered by digest so bcrypt runs once per key.
type KeyRing struct {
	hashes []string

	mu       sync.RWMutex
	verified map[[sha256.Size]byte]bool
}

// NewKeyRing creates a key ring from bcrypt hashes.
func NewKeyRing(hashes ...string) *KeyRing {
	return &KeyRing{
		hashes:   append([]string(nil), hashes...),
		verified: make(map[[sha256.Size]byte]bool),
	}
}

// Len returns the number of stored hashes.
func (k *KeyRing) Len() int {
	return len(k.hashes)
}

// Verify reports whether apiKey matches one of the stored hashes.
func (k *KeyRing) Verify(apiKey string) bool {
	if !IsValidAPIKeyFormat(apiKey) {
		return false
	}
	digest := sha256.Sum256([]byte(apiKey))

	k.mu.RLock()
	ok := k.verified[digest]
	k.mu.RUnlock()
	if ok {
		return true
	}

	for _, hash := range k.hashes {
		if ValidateAPIKey(apiKey, hash) {
			k.mu.Lock()
			k.verified[digest] = true
			k.mu.Unlock()
			return true
		}
	}
	return false
}
