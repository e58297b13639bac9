package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kycflow/kycflow/errors"
	kychttp "github.com/kycflow/kycflow/protocol/http"
)

// BearerToken is a time-limited opaque token attached as "Authorization: Bearer <token>".
type BearerToken struct {
	Value string
	// ExpiresAt is zero if the token is not a JWT or has no exp claim.
	ExpiresAt time.Time
}

// NewBearerToken returns a token with the expiry read from value when it is a JWT.
// The signature is not verified: the token is opaque to its holder.
// An already expired JWT is an AuthError.
func NewBearerToken(value string, now time.Time) (*BearerToken, error) {
	if value == "" {
		return nil, errors.Authf("token is empty")
	}
	tok := &BearerToken{Value: value}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(value, &claims); err != nil {
		return tok, nil //nolint:nilerr
	}
	if claims.ExpiresAt != nil {
		tok.ExpiresAt = claims.ExpiresAt.Time
		if tok.Expired(now) {
			return nil, errors.Authf("token expired at %s", tok.ExpiresAt.Format(time.RFC3339))
		}
	}
	return tok, nil
}

// Expired reports whether t is expired at now.
func (t *BearerToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Apply implements http.Credential interface.
func (t *BearerToken) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+t.Value)
	return nil
}

// String returns the token value.
func (t *BearerToken) String() string {
	return t.Value
}

// StaticToken is a pre-shared token like the private key of the verification service.
type StaticToken struct {
	Token string
	now   func() time.Time
}

// Acquire returns the token.
func (s *StaticToken) Acquire(context.Context) (*BearerToken, error) {
	return NewBearerToken(s.Token, nowFunc(s.now))
}

// Credential implements Provider interface.
func (s *StaticToken) Credential(ctx context.Context) (kychttp.Credential, error) {
	return credential(s.Acquire(ctx))
}

func credential(t *BearerToken, err error) (kychttp.Credential, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

func nowFunc(f func() time.Time) time.Time {
	if f != nil {
		return f()
	}
	return time.Now()
}
