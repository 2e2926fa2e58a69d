// Package resettokens declares the server-side repository contract for
// pending password-reset handshakes.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores reset handshakes keyed by the digest of the opaque token.
type Repository interface {
	// Create stores a new handshake.
	Create(ctx context.Context, reset *models.PasswordReset) error

	// Consume looks up and deletes the handshake in one statement, so a token
	// can be consumed at most once. Returns common.ErrResetTokenNotFound when
	// absent. Expiry is not checked here; the caller decides.
	Consume(ctx context.Context, tokenHash string) (*models.PasswordReset, error)

	// DeleteByEmail drops every outstanding handshake for an account.
	DeleteByEmail(ctx context.Context, email string) (int64, error)

	// DeleteExpired removes handshakes that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
