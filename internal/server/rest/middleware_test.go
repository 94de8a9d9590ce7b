package rest

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/dmitrijs2005/jobhub/internal/server/auth"
	"github.com/dmitrijs2005/jobhub/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probe mounts a gated route that counts its invocations and records the
// user it saw on both contexts.
type probe struct {
	calls   int
	ginUser *models.User
	ctxUser *models.User
}

func (f *fixture) mountProbe(p *probe) {
	f.server.engine.GET("/probe", f.server.authRequired(), func(c *gin.Context) {
		p.calls++
		p.ginUser, _ = currentUser(c)
		p.ctxUser, _ = auth.UserFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
}

func signed(t *testing.T, sub string, iat, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestGate_RegisteredUserReachesHandlerOnce(t *testing.T) {
	f := newFixture(t)
	p := &probe{}
	f.mountProbe(p)

	w := f.do(t, http.MethodPost, "/register", credentialsRequest{Login: "alice", Password: "p@ss1"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	token, _ := decode(t, w)["token"].(string)

	w = f.do(t, http.MethodGet, "/probe", nil, bearer(token))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1, p.calls)
	require.NotNil(t, p.ginUser)
	require.NotNil(t, p.ctxUser)
	assert.Equal(t, "alice", p.ginUser.Login)
	assert.Same(t, p.ginUser, p.ctxUser)
}

func TestGate_Denials(t *testing.T) {
	f := newFixture(t)
	p := &probe{}
	f.mountProbe(p)

	_, err := f.users.Create(t.Context(), &models.User{Login: "alice", PasswordHash: "x"})
	require.NoError(t, err)

	now := time.Now()
	valid := signed(t, "alice", now, now.Add(time.Hour))

	cases := []struct {
		name   string
		header http.Header
		status int
		msg    string
	}{
		{"missing header", nil, http.StatusForbidden, "missing authorization header"},
		{"non ascii header", http.Header{common.AuthorizationHeaderName: {"Bearer tökén"}}, http.StatusForbidden, "unreadable authorization header"},
		{"control byte", http.Header{common.AuthorizationHeaderName: {"Bearer a\x01b"}}, http.StatusForbidden, "unreadable authorization header"},
		{"scheme only", http.Header{common.AuthorizationHeaderName: {"Bearer"}}, http.StatusUnauthorized, "invalid or expired token"},
		{"empty header", http.Header{common.AuthorizationHeaderName: {""}}, http.StatusUnauthorized, "invalid or expired token"},
		{"garbage token", bearer("not.a.jwt"), http.StatusUnauthorized, "invalid or expired token"},
		{"expired", bearer(signed(t, "alice", now.Add(-25*time.Hour), now.Add(-time.Hour))), http.StatusUnauthorized, "invalid or expired token"},
		{"tampered", bearer(valid + "x"), http.StatusUnauthorized, "invalid or expired token"},
		{"unknown subject", bearer(signed(t, "ghost", now, now.Add(time.Hour))), http.StatusUnauthorized, "unknown user"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/probe", nil, tc.header)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, decode(t, w)["error"])
		})
	}

	assert.Zero(t, p.calls, "denied requests must not reach the handler")

	w := f.do(t, http.MethodGet, "/probe", nil, bearer(valid))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, p.calls)
}

func TestGate_MissingHeaderSkipsLookup(t *testing.T) {
	f := newFixture(t)
	p := &probe{}
	f.mountProbe(p)

	f.do(t, http.MethodGet, "/probe", nil, nil)
	f.do(t, http.MethodGet, "/probe", nil, bearer("garbage"))

	assert.Zero(t, f.users.lookups())
}

func TestGate_LookupFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	p := &probe{}
	f.mountProbe(p)
	f.users.getErr = errDBDown

	now := time.Now()
	w := f.do(t, http.MethodGet, "/probe", nil, bearer(signed(t, "alice", now, now.Add(time.Hour))))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, p.calls)
}

func TestGateStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{auth.ErrMissingHeader, http.StatusForbidden},
		{auth.ErrUnreadableHeader, http.StatusForbidden},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrUnknownSubject, http.StatusUnauthorized},
		{fmt.Errorf("user lookup: %w", errDBDown), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, msg := gateStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.NotEmpty(t, msg)
	}
}
