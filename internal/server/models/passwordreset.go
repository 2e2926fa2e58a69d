package models

import "time"

// PasswordReset is a pending reset handshake. Only the digest of the opaque
// token is kept.
type PasswordReset struct {
	TokenHash string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the handshake is no longer usable at now.
func (r *PasswordReset) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
