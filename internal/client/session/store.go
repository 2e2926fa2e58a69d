// Package session persists the CLI's login state in a per-user SQLite file.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/migrations"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// FileName is the session database inside the session directory.
const FileName = "session.db"

const (
	keyAccessToken = "access_token"
	keyEmail       = "email"
	keyExpiresAt   = "expires_at"
)

// Session is what a successful login leaves behind.
type Session struct {
	AccessToken string
	Email       string
	ExpiresAt   time.Time
}

// Expired reports whether the token is past its advertised lifetime.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Store struct {
	db *sql.DB
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open creates (if needed) and opens the session database in dir. The file
// is restricted to the current user since it holds a bearer token.
func Open(ctx context.Context, dir string) (*Store, error) {
	if _, err := filex.EnsureDir(dir); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session migrations: %w", err)
	}

	if err := os.Chmod(path, 0o600); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored session.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyAccessToken, []byte(sess.AccessToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyEmail, []byte(sess.Email)); err != nil {
			return err
		}
		return repo.Set(ctx, keyExpiresAt, []byte(sess.ExpiresAt.UTC().Format(time.RFC3339)))
	})
}

// Load returns the stored session, or nil when nobody is logged in.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	repo := NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, nil
	}

	email, err := repo.Get(ctx, keyEmail)
	if err != nil {
		return nil, err
	}

	sess := &Session{AccessToken: string(token), Email: string(email)}

	expires, err := repo.Get(ctx, keyExpiresAt)
	if err != nil {
		return nil, err
	}
	if len(expires) > 0 {
		if t, err := time.Parse(time.RFC3339, string(expires)); err == nil {
			sess.ExpiresAt = t
		}
	}
	return sess, nil
}

// Clear forgets the stored session.
func (s *Store) Clear(ctx context.Context) error {
	return NewSQLiteRepository(s.db).Clear(ctx)
}
