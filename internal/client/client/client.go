package client

import (
	"context"
	"time"
)

// TokenResponse is the answer to a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// User is the profile returned by the me endpoint.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ForgotPasswordResult acknowledges a reset request. ResetLink is only set by
// servers running in development mode.
type ForgotPasswordResult struct {
	Message   string `json:"message"`
	ResetLink string `json:"reset_link,omitempty"`
}

type Client interface {
	Signup(ctx context.Context, email, password, name string) error
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	Me(ctx context.Context, accessToken string) (*User, error)
	ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	Ping(ctx context.Context) error
}
