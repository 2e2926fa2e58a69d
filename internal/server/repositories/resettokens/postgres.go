// Package resettokens provides a PostgreSQL-backed repository for the
// password_resets table.
package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new handshake row.
func (r *PostgresRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	query := `
		INSERT INTO password_resets (token_hash, email, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, reset.TokenHash, reset.Email, reset.ExpiresAt).Scan(&reset.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume deletes the row for tokenHash and returns what it held.
func (r *PostgresRepository) Consume(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	query := `
		DELETE FROM password_resets
		WHERE token_hash = $1
		RETURNING email, expires_at, created_at
	`
	reset := &models.PasswordReset{TokenHash: tokenHash}
	if err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&reset.Email, &reset.ExpiresAt, &reset.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reset, nil
}

// DeleteByEmail removes all handshakes for email.
func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	query := `
		DELETE FROM password_resets
		WHERE email = $1
	`
	return r.exec(ctx, query, email)
}

// DeleteExpired removes handshakes with expires_at before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM password_resets
		WHERE expires_at < $1
	`
	return r.exec(ctx, query, now)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
