package repository

import (
	"context"

	"rifas-el-negro-backend/internal/features/user/models"
)

type UserRepository interface {
	// Create inserts the user and fills in its id. Duplicate email or
	// cedula surfaces as a conflict error.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
