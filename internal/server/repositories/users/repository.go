// Package users is the credential store: persistent user rows keyed by
// normalized email.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	// Create inserts user and fills CreatedAt. A taken email yields
	// common.ErrDuplicateEmail; the check is the storage unique index.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByEmail returns common.ErrorNotFound when no row matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePasswordHash replaces the stored hash wholesale. It returns
	// common.ErrorNotFound if the account no longer exists.
	UpdatePasswordHash(ctx context.Context, email string, passwordHash string) error
}
