// Package tokeninfo reads claims from a stored bearer token without
// verifying its signature. It is for display only.
package tokeninfo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for tokens that are not three-part JWTs.
var ErrNotJWT = errors.New("token is not a JWT")

type Info struct {
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	Issuer    string    `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Algorithm string    `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
}

// Expired reports whether the token carries an expiry at or before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !i.ExpiresAt.After(now)
}

// Inspect parses raw without verification.
func Inspect(raw string) (Info, error) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ".") != 2 {
		return Info{}, ErrNotJWT
	}

	claims := jwt.MapClaims{}
	token, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	var info Info
	if token.Method != nil {
		info.Algorithm = token.Method.Alg()
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iss, err := claims.GetIssuer(); err == nil {
		info.Issuer = iss
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
