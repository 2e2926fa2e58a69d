package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// ErrNotLoggedIn is returned by commands that need a stored session.
var ErrNotLoggedIn = errors.New("not logged in, run 'gophauth login' first")

// Signup prompts for whatever is missing and creates an account. No session
// is stored: the user logs in afterwards.
func (a *App) Signup(ctx context.Context, email, name string) error {
	email, err := a.askIfEmpty(email, "Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Signup(ctx, email, string(password), name); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created. You can log in now.")
	return nil
}

// Login authenticates and stores the access token in the session database.
func (a *App) Login(ctx context.Context, email string) error {
	email, err := a.askIfEmpty(email, "Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	tokens, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	sess := &session.Session{
		AccessToken: tokens.AccessToken,
		Email:       common.NormalizeEmail(email),
		ExpiresAt:   a.now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (token valid until %s)\n", sess.Email, sess.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Me prints the profile behind the stored token. A token the server rejects
// is dropped from the session database.
func (a *App) Me(ctx context.Context) error {
	sess, err := a.sessions.Load(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotLoggedIn
	}
	if sess.Expired(a.now()) {
		if err := a.sessions.Clear(ctx); err != nil {
			return err
		}
		return ErrNotLoggedIn
	}

	user, err := a.api.Me(ctx, sess.AccessToken)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if cerr := a.sessions.Clear(ctx); cerr != nil {
				return cerr
			}
			return fmt.Errorf("session is no longer valid, log in again: %w", err)
		}
		return err
	}

	fmt.Fprintf(a.out, "id:         %s\n", user.ID)
	fmt.Fprintf(a.out, "email:      %s\n", user.Email)
	if user.Name != "" {
		fmt.Fprintf(a.out, "name:       %s\n", user.Name)
	}
	fmt.Fprintf(a.out, "created at: %s\n", user.CreatedAt.Format(time.RFC3339))
	return nil
}

// Forgot asks the server to send a reset link.
func (a *App) Forgot(ctx context.Context, email string) error {
	email, err := a.askIfEmpty(email, "Enter email")
	if err != nil {
		return err
	}

	res, err := a.api.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, res.Message)
	if res.ResetLink != "" {
		fmt.Fprintf(a.out, "Reset link: %s\n", res.ResetLink)
	}
	return nil
}

// Reset redeems a reset token and sets a new password. Any stored session is
// dropped since the old credentials are gone.
func (a *App) Reset(ctx context.Context, token string) error {
	token, err := a.askIfEmpty(token, "Enter reset token")
	if err != nil {
		return err
	}

	password, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.ResetPassword(ctx, token, string(password)); err != nil {
		return err
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password updated. Log in with the new password.")
	return nil
}

// Logout forgets the stored session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Health pings the server.
func (a *App) Health(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Server is up")
	return nil
}
