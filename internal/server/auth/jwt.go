// Package auth is the trust boundary of the server: it hashes and checks
// passwords, issues and verifies signed bearer tokens, and resolves an
// Authorization header into a stored user.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity is the lifetime of an issued token.
const DefaultTokenValidity = 24 * time.Hour

// Claims is the signed token payload. The subject is the user's login;
// IssuedAt and ExpiresAt are whole seconds.
type Claims struct {
	jwt.RegisteredClaims
}

// Login returns the login the token was issued for.
func (c *Claims) Login() string { return c.Subject }

// Authority issues and verifies tokens with one HMAC secret and resolves
// verified subjects through users.
type Authority struct {
	secret   []byte
	validity time.Duration
	users    UserFinder
	now      func() time.Time
}

// NewAuthority builds an Authority. A non-positive validity falls back to
// DefaultTokenValidity.
func NewAuthority(secret []byte, validity time.Duration, users UserFinder) *Authority {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	return &Authority{
		secret:   secret,
		validity: validity,
		users:    users,
		now:      time.Now,
	}
}

// Issue signs a token for login valid from now until now+validity.
func (a *Authority) Issue(login string) (string, error) {
	if login == "" {
		return "", errors.New("empty subject")
	}

	now := a.now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.validity)),
		},
	})

	return token.SignedString(a.secret)
}

// Verify parses tokenString, checks its HS256 signature and that it has not
// expired. Every failure is reported as common.ErrInvalidToken so callers
// cannot tell which check failed.
func (a *Authority) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
