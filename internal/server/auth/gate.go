package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/dmitrijs2005/jobhub/internal/server/models"
)

var (
	// Header errors. Both map to 403 at the HTTP edge.
	ErrMissingHeader    = errors.New("missing authorization header")
	ErrUnreadableHeader = errors.New("unreadable authorization header")

	// ErrUnknownSubject means a valid token names no stored user.
	ErrUnknownSubject = errors.New("unknown subject")
)

// UserFinder resolves a login to a stored user, returning
// common.ErrorNotFound when there is none.
type UserFinder interface {
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

// Authenticate walks an Authorization header through the gate:
// present → visible ASCII → "<scheme> <token>" → signature and expiry → known
// subject. headerValues is the raw list from http.Header.Values, so an absent
// header is distinguishable from an empty one.
//
// Errors: ErrMissingHeader, ErrUnreadableHeader, common.ErrInvalidToken,
// ErrUnknownSubject, or a wrapped lookup failure. The user store is not
// consulted unless the token verifies.
func (a *Authority) Authenticate(ctx context.Context, headerValues []string) (*models.User, error) {
	if len(headerValues) == 0 {
		return nil, ErrMissingHeader
	}

	header := headerValues[0]
	if !isVisibleASCII(header) {
		return nil, ErrUnreadableHeader
	}

	// the scheme is required to be present but its value is not checked
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return nil, common.ErrInvalidToken
	}

	claims, err := a.Verify(fields[1])
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetUserByLogin(ctx, claims.Login())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	return user, nil
}

// isVisibleASCII accepts the bytes a header value may carry as text:
// printable ASCII and horizontal tab.
func isVisibleASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\t' && (c < 0x20 || c > 0x7e) {
			return false
		}
	}
	return true
}

type ctxKey string

const userKey ctxKey = "currentUser"

// WithUser returns a child context carrying the verified user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
