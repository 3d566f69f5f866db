// Package auth implements API-key authentication, session fallback, scope
// checking, and resource-ownership authorization, per spec.md §4.6.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tessera-contracts/tessera/internal/domain"
)

const (
	keyRandomHexChars = 64
	keyPrefixChars    = 8
)

// GeneratedKey is the one-time result of minting a new API key: the raw key
// to return to the caller, and everything needed to persist the stored
// record (spec.md §4.6: "The raw key is returned to the caller exactly
// once").
type GeneratedKey struct {
	Raw       string
	KeyHash   string
	KeyPrefix string
}

// GenerateKey mints a new key of the form tess_{env}_{64-hex-chars} and
// returns both the raw value and its salted hash for storage.
func GenerateKey(env string) (GeneratedKey, error) {
	buf := make([]byte, keyRandomHexChars/2)
	if _, err := rand.Read(buf); err != nil {
		return GeneratedKey{}, fmt.Errorf("generate key material: %w", err)
	}
	hexPart := hex.EncodeToString(buf)
	raw := fmt.Sprintf("tess_%s_%s", env, hexPart)

	hash, err := HashKey(raw)
	if err != nil {
		return GeneratedKey{}, err
	}

	return GeneratedKey{
		Raw:       raw,
		KeyHash:   hash,
		KeyPrefix: prefixOf(env, hexPart),
	}, nil
}

func prefixOf(env, hexPart string) string {
	n := keyPrefixChars
	if len(hexPart) < n {
		n = len(hexPart)
	}
	return fmt.Sprintf("tess_%s_%s", env, hexPart[:n])
}

// HashKey salts and hashes a raw key for storage, using the same
// password-hash style construction as APIKey.key_hash in spec.md §3.
func HashKey(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash key: %w", err)
	}
	return string(hash), nil
}

// VerifyKey reports whether raw matches the stored salted hash.
func VerifyKey(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// ParsePrefix extracts the discriminator prefix tess_{env}_{first8} used
// for indexed candidate lookup (spec.md §4.6 step 1/2). Returns false if
// the key is not well-formed.
func ParsePrefix(raw string) (prefix string, ok bool) {
	parts := strings.SplitN(raw, "_", 3)
	if len(parts) != 3 || parts[0] != "tess" || parts[1] == "" || len(parts[2]) < keyPrefixChars {
		return "", false
	}
	return fmt.Sprintf("tess_%s_%s", parts[1], parts[2][:keyPrefixChars]), true
}

// ConstantTimeEqual compares two strings without leaking timing
// information, used for the bootstrap key comparison where there is no
// per-candidate hash to check against.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// FindMatchingKey scans candidates (already filtered by prefix, non-revoked,
// non-expired by the caller per spec.md §4.6 step 2) and returns the first
// whose hash verifies against raw.
func FindMatchingKey(candidates []domain.APIKey, raw string) (*domain.APIKey, bool) {
	for i := range candidates {
		if VerifyKey(candidates[i].KeyHash, raw) {
			return &candidates[i], true
		}
	}
	return nil, false
}
