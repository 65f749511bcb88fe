package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/JieningYu/yfass/internal/yerr"
)

const (
	bearerEntropyBytes = 18 // 144 bits of entropy
	DefaultTTLDays      = 10
)

// Token is a bearer credential bound to a user with an expiry.
type Token struct {
	Bearer    string    `json:"bearer"`
	User      string    `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether t is past its lifetime as of now.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// NewBearer generates a URL-safe random bearer string with at least
// 128 bits of entropy.
func NewBearer() (string, error) {
	buf := make([]byte, bearerEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", yerr.Wrap(yerr.Internal, "generate token", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IssueToken mints a Token for user, valid for ttlDays days from now
// (default DefaultTTLDays when ttlDays <= 0).
func IssueToken(user string, ttlDays int, now time.Time) (Token, error) {
	if ttlDays <= 0 {
		ttlDays = DefaultTTLDays
	}
	bearer, err := NewBearer()
	if err != nil {
		return Token{}, err
	}
	return Token{
		Bearer:    bearer,
		User:      user,
		ExpiresAt: now.Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}
