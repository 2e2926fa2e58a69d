package services

import (
	"context"
	"database/sql"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/resettokens"
	usersrepo "github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, "debug")
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = string(testSecret)
	cfg.BcryptCost = bcrypt.MinCost
	cfg.PublicBaseURL = "http://front.test"
	return cfg
}

// fakeUsersRepo is an in-memory credential store keyed by email.
type fakeUsersRepo struct {
	mu    sync.Mutex
	users map[string]*models.User

	getErr    error
	createErr error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[string]*models.User)}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[u.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	cp := *u
	cp.CreatedAt = time.Now()
	f.users[u.Email] = &cp
	u.CreatedAt = cp.CreatedAt
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, email string, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[email]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) remove(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, email)
}

// fakeResetRepo is an in-memory password_resets table keyed by digest.
type fakeResetRepo struct {
	mu   sync.Mutex
	rows map[string]*models.PasswordReset

	createErr error
	purgeErr  error
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{rows: make(map[string]*models.PasswordReset)}
}

func (f *fakeResetRepo) Create(ctx context.Context, r *models.PasswordReset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	r.CreatedAt = time.Now()
	cp := *r
	f.rows[r.TokenHash] = &cp
	return nil
}

func (f *fakeResetRepo) Consume(ctx context.Context, hash string) (*models.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[hash]
	if !ok {
		return nil, common.ErrResetTokenNotFound
	}
	delete(f.rows, hash)
	return r, nil
}

func (f *fakeResetRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, r := range f.rows {
		if r.Email == email {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeResetRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	var n int64
	for k, r := range f.rows {
		if r.ExpiresAt.Before(now) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeResetRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeResetRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), r: newFakeResetRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error      { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository            { return m.u }
func (m *fakeRepoManager) PasswordResets(db dbx.DBTX) resettokens.Repository { return m.r }

// recordingNotifier remembers every delivered notice. When release is set,
// deliveries block until it is closed.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.ResetNotice
	err     error
	release chan struct{}
}

func (n *recordingNotifier) NotifyReset(ctx context.Context, notice notify.ResetNotice) error {
	if n.release != nil {
		<-n.release
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

func (n *recordingNotifier) last() (notify.ResetNotice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return notify.ResetNotice{}, false
	}
	return n.notices[len(n.notices)-1], true
}

type fixture struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	rm       *fakeRepoManager
	notifier *recordingNotifier
	broker   *ResetBroker
	svc      *AuthService
	cfg      *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	cfg := testConfig()
	rm := newFakeRepoManager()
	n := &recordingNotifier{}
	log := discardLogger()

	broker := NewResetBroker(db, rm, n, cfg, log)
	svc := NewAuthService(db, rm, auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration), broker, cfg, log)

	return &fixture{db: db, mock: mock, rm: rm, notifier: n, broker: broker, svc: svc, cfg: cfg}
}

// expectTx queues one begin/commit pair on the sqlmock connection.
func (f *fixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func (f *fixture) expectRollback() {
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
}

// tokenFromLink extracts the token query value from a reset link.
func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	tok := u.Query().Get("token")
	if tok == "" {
		t.Fatalf("no token in link %q", link)
	}
	return tok
}
