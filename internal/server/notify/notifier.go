// Package notify delivers password-reset links out of band.
package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// ResetNotice is what gets delivered to the account owner.
type ResetNotice struct {
	Email     string    `json:"email"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// ResetNotifier hands a reset link to whatever transport reaches the user.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, notice ResetNotice) error
}

// LogNotifier writes reset links to the log. Meant for development setups
// without an outbox.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyReset(ctx context.Context, notice ResetNotice) error {
	n.log.Info(ctx, "password reset link issued",
		"email", notice.Email,
		"link", notice.Link,
		"expires_at", notice.ExpiresAt,
	)
	return nil
}
