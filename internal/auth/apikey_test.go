package auth

import (
	"strings"
	"testing"

	"github.com/tessera-contracts/tessera/internal/domain"
)

func TestGenerateKey_FormatAndRoundTrip(t *testing.T) {
	gk, err := GenerateKey("production")
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if !strings.HasPrefix(gk.Raw, "tess_production_") {
		t.Errorf("Raw = %q, want tess_production_ prefix", gk.Raw)
	}
	hexPart := strings.TrimPrefix(gk.Raw, "tess_production_")
	if len(hexPart) != 64 {
		t.Errorf("hex part length = %d, want 64", len(hexPart))
	}
	if !VerifyKey(gk.KeyHash, gk.Raw) {
		t.Error("VerifyKey() should succeed for the key it was generated from")
	}
	if VerifyKey(gk.KeyHash, "tess_production_wrong") {
		t.Error("VerifyKey() should fail for a different key")
	}
}

func TestGenerateKey_Uniqueness(t *testing.T) {
	a, _ := GenerateKey("production")
	b, _ := GenerateKey("production")
	if a.Raw == b.Raw {
		t.Error("two generated keys should never collide")
	}
}

func TestParsePrefix(t *testing.T) {
	gk, _ := GenerateKey("staging")
	prefix, ok := ParsePrefix(gk.Raw)
	if !ok {
		t.Fatal("ParsePrefix() ok = false, want true")
	}
	if prefix != gk.KeyPrefix {
		t.Errorf("prefix = %q, want %q", prefix, gk.KeyPrefix)
	}

	if _, ok := ParsePrefix("not-a-key"); ok {
		t.Error("ParsePrefix() should reject malformed keys")
	}
	if _, ok := ParsePrefix("tess_production_short"); ok {
		t.Error("ParsePrefix() should reject a key shorter than 8 hex chars after env")
	}
}

func TestFindMatchingKey(t *testing.T) {
	gk, _ := GenerateKey("production")
	candidates := []domain.APIKey{
		{ID: "k1", KeyHash: mustHash(t, "tess_production_deadbeef")},
		{ID: "k2", KeyHash: gk.KeyHash},
	}
	match, ok := FindMatchingKey(candidates, gk.Raw)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.ID != "k2" {
		t.Errorf("matched ID = %q, want k2", match.ID)
	}

	if _, ok := FindMatchingKey(candidates, "tess_production_"+strings.Repeat("0", 64)); ok {
		t.Error("expected no match for an unrelated key")
	}
}

func mustHash(t *testing.T, raw string) string {
	t.Helper()
	h, err := HashKey(raw)
	if err != nil {
		t.Fatalf("HashKey() error = %v", err)
	}
	return h
}
