package services

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// deliveryTimeout bounds one background reset notice delivery.
const deliveryTimeout = 30 * time.Second

// ResetBroker issues and redeems single-use password reset tokens.
//
// Tokens are 32 random bytes, hex encoded. Only their SHA-256 digest is
// stored, next to an absolute expiry. Redeeming deletes the row in the same
// statement that reads it, so each token works at most once. Links are
// delivered in the background; Wait blocks until pending deliveries finish.
type ResetBroker struct {
	deliveries sync.WaitGroup

	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.ResetNotifier
	ttl         time.Duration
	baseURL     string
	now         func() time.Time
	log         logging.Logger
}

// NewResetBroker constructs a ResetBroker using the reset TTL and public base
// URL from cfg.
func NewResetBroker(db *sql.DB, m repomanager.RepositoryManager, n notify.ResetNotifier, cfg *config.Config, log logging.Logger) *ResetBroker {
	return &ResetBroker{
		db:          db,
		repomanager: m,
		notifier:    n,
		ttl:         cfg.ResetTokenValidityDuration,
		baseURL:     cfg.PublicBaseURL,
		now:         time.Now,
		log:         log,
	}
}

// RequestReset stores a fresh handshake for email and hands the link to the
// notifier without waiting for it. A delivery failure is logged; the stored
// token stays valid.
func (b *ResetBroker) RequestReset(ctx context.Context, email string) (string, error) {
	email = common.NormalizeEmail(email)

	token, digest, err := cryptox.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	now := b.now()
	reset := &models.PasswordReset{
		TokenHash: digest,
		Email:     email,
		ExpiresAt: now.Add(b.ttl),
	}
	if err := b.repomanager.PasswordResets(b.db).Create(ctx, reset); err != nil {
		return "", err
	}

	link := b.ResetLink(token)

	notice := notify.ResetNotice{Email: email, Link: link, ExpiresAt: reset.ExpiresAt, IssuedAt: now}
	b.deliver(context.WithoutCancel(ctx), notice)

	return link, nil
}

func (b *ResetBroker) deliver(ctx context.Context, notice notify.ResetNotice) {
	b.deliveries.Add(1)
	go func() {
		defer b.deliveries.Done()

		ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		defer cancel()

		if err := b.notifier.NotifyReset(ctx, notice); err != nil {
			b.log.Error(ctx, "reset link delivery failed", "email", notice.Email, "error", err)
		}
	}()
}

// Wait blocks until every reset notice handed out so far was delivered or
// failed.
func (b *ResetBroker) Wait() {
	b.deliveries.Wait()
}

// ResetLink builds the front-end URL carrying token.
func (b *ResetBroker) ResetLink(token string) string {
	return strings.TrimRight(b.baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// ConsumeReset redeems token and returns the account email.
func (b *ResetBroker) ConsumeReset(ctx context.Context, token string) (string, error) {
	return b.ConsumeResetWith(ctx, b.db, token)
}

// ConsumeResetWith is ConsumeReset on a caller-provided DBTX, typically a
// transaction that also updates the password. Unknown, already used and
// expired tokens all yield common.ErrResetTokenNotFound.
func (b *ResetBroker) ConsumeResetWith(ctx context.Context, db dbx.DBTX, token string) (string, error) {
	if token == "" {
		return "", common.ErrResetTokenNotFound
	}

	reset, err := b.repomanager.PasswordResets(db).Consume(ctx, cryptox.HashToken(token))
	if err != nil {
		return "", err
	}

	if reset.IsExpired(b.now()) {
		b.log.Debug(ctx, "expired reset token presented", "email", reset.Email)
		return "", common.ErrResetTokenNotFound
	}

	return reset.Email, nil
}

// PurgeExpired deletes handshakes past their expiry.
func (b *ResetBroker) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := b.repomanager.PasswordResets(b.db).DeleteExpired(ctx, b.now())
	if err != nil {
		return 0, err
	}
	metrics.AddPurged(n)
	return n, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is done.
func (b *ResetBroker) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := b.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.log.Error(ctx, "purging expired reset tokens", "error", err)
				}
				continue
			}
			if n > 0 {
				b.log.Info(ctx, "purged expired reset tokens", "count", n)
			}
		}
	}
}
