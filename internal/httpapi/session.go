package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/tessera-contracts/tessera/internal/domain"
)

// sessionCookieName is the signed-session fallback referenced in
// spec.md §4.6.
const sessionCookieName = "tessera_session"

// userLookup is the narrow slice of store.UserStore the session fallback
// needs, kept separate so httpapi doesn't depend on the full store.Store
// just to resolve a cookie.
type userLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// sessionCodec signs and verifies a user_id with HMAC-SHA256. There is no
// session-signing library in the teacher's or the pack's dependency stack
// (DESIGN.md: golang.org/x/crypto supplies bcrypt, not a cookie-signing
// helper), so this is a minimal hand-rolled MAC over crypto/hmac, the same
// primitive the ecosystem's own cookie-signing libraries wrap.
type sessionCodec struct {
	key []byte
}

func newSessionCodec(key string) *sessionCodec {
	return &sessionCodec{key: []byte(key)}
}

// Sign produces an opaque "<userID>.<base64url(mac)>" token.
func (c *sessionCodec) Sign(userID string) string {
	mac := c.mac(userID)
	return userID + "." + base64.RawURLEncoding.EncodeToString(mac)
}

// Verify checks a token produced by Sign and returns the user id it
// carries.
func (c *sessionCodec) Verify(token string) (userID string, ok bool) {
	i := strings.LastIndexByte(token, '.')
	if i < 0 {
		return "", false
	}
	userID, sig := token[:i], token[i+1:]
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	got := c.mac(userID)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return "", false
	}
	return userID, true
}

func (c *sessionCodec) mac(userID string) []byte {
	h := hmac.New(sha256.New, c.key)
	h.Write([]byte(userID))
	return h.Sum(nil)
}
