// Package services contains server-side business logic. This file implements
// UserService, which handles registration and sign-in and mints bearer tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/dmitrijs2005/jobhub/internal/server/auth"
	"github.com/dmitrijs2005/jobhub/internal/server/models"
	"github.com/dmitrijs2005/jobhub/internal/server/repositories/repomanager"
)

// TokenIssuer mints a bearer token for a login.
type TokenIssuer interface {
	Issue(login string) (string, error)
}

// UserService provides authentication-related operations:
// - Register: create users and sign them in
// - Login: verify credentials and mint a token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
}

// NewUserService constructs a UserService on top of the repository manager
// and a token issuer (normally *auth.Authority).
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer) *UserService {
	return &UserService{db: db, repomanager: m, tokens: tokens}
}

// Register creates a user with a bcrypt hash of password and returns a token
// for it. A taken login yields common.ErrAlreadyExists; empty fields or an
// over-long password yield common.ErrorValidation.
func (s *UserService) Register(ctx context.Context, login, password string) (string, error) {
	if err := validateCredentials(login, password); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Login: login, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return "", common.ErrAlreadyExists
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(u.Login)
}

// Login verifies the password against the stored hash and, on success,
// returns a fresh token. Unknown logins and wrong passwords are the same
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, login, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn a comparison so unknown logins cost the same as known ones
			_, _ = auth.CheckPassword(password, decoyHash())
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return "", common.ErrorInternal
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	return s.issue(user.Login)
}

// --- helpers below ---

func (s *UserService) issue(login string) (string, error) {
	token, err := s.tokens.Issue(login)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func validateCredentials(login, password string) error {
	switch {
	case strings.TrimSpace(login) == "":
		return fmt.Errorf("%w: login is required", common.ErrorValidation)
	case password == "":
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	case len(password) > auth.MaxPasswordLength:
		return fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, auth.MaxPasswordLength)
	}
	return nil
}

var decoyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("decoy-password")
	return h
})
