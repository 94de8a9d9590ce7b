package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/dmitrijs2005/jobhub/internal/dbx"
	"github.com/dmitrijs2005/jobhub/internal/logging"
	"github.com/dmitrijs2005/jobhub/internal/server/auth"
	"github.com/dmitrijs2005/jobhub/internal/server/live"
	"github.com/dmitrijs2005/jobhub/internal/server/models"
	"github.com/dmitrijs2005/jobhub/internal/server/repositories/users"
	"github.com/dmitrijs2005/jobhub/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

type memUsers struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int64
	lookup int
	getErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byName: map[string]*models.User{}}
}

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Login]; ok {
		return nil, common.ErrAlreadyExists
	}
	r.nextID++
	stored := *u
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	r.byName[u.Login] = &stored
	return &stored, nil
}

func (r *memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup++
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *memUsers) lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup
}

type memRepoMgr struct{ users users.Repository }

func (m *memRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoMgr) Users(dbx.DBTX) users.Repository              { return m.users }

type fakeLogos struct {
	gotUser int64
	gotType string
	err     error
}

func (f *fakeLogos) PresignUpload(_ context.Context, userID int64, contentType string) (*services.LogoUpload, error) {
	f.gotUser, f.gotType = userID, contentType
	if f.err != nil {
		return nil, f.err
	}
	return &services.LogoUpload{Key: "logos/k", URL: "https://s3.local/logos/k"}, nil
}

type fixture struct {
	server    *Server
	users     *memUsers
	logos     *fakeLogos
	authority *auth.Authority
	registry  *live.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemUsers()
	authority := auth.NewAuthority([]byte(testSecret), auth.DefaultTokenValidity, repo)
	us := services.NewUserService(nil, &memRepoMgr{users: repo}, authority)
	logos := &fakeLogos{}
	registry := live.NewRegistry(logging.Nop(), time.Second)

	return &fixture{
		server:    NewServer("127.0.0.1:0", logging.Nop(), us, logos, authority, registry),
		users:     repo,
		logos:     logos,
		authority: authority,
		registry:  registry,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func bearer(token string) http.Header {
	return http.Header{common.AuthorizationHeaderName: {"Bearer " + token}}
}

var errDBDown = errors.New("db down")
