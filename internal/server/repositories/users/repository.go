package users

import (
	"context"

	"github.com/dmitrijs2005/jobhub/internal/server/models"
)

// Repository is the user store consumed by the auth gate and the sign-in
// flow. GetUserByLogin returns common.ErrorNotFound for unknown logins;
// Create returns common.ErrAlreadyExists when the login is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
