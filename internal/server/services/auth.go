// Package services contains server-side business logic: the auth service
// orchestrating signup, login, identity lookup and the password reset
// handshake, plus the reset broker that owns reset tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, stored string) bool
}

// TokenAuthority issues and verifies access tokens.
type TokenAuthority interface {
	Issue(email string) (string, error)
	Verify(token string) (*auth.Claims, error)
	TTL() time.Duration
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ForgotPasswordResult is the acknowledgement of a forgot-password request.
// ResetLink is only filled when the server runs with DevExposeResetLink.
type ForgotPasswordResult struct {
	Message   string `json:"message"`
	ResetLink string `json:"reset_link,omitempty"`
}

// AuthService provides the credential lifecycle operations.
type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	hasher          PasswordHasher
	tokens          TokenAuthority
	resets          *ResetBroker
	exposeResetLink bool
	log             logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the service over its collaborators.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenAuthority,
	resets *ResetBroker, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		db:              db,
		repomanager:     m,
		hasher:          hasher,
		tokens:          tokens,
		resets:          resets,
		exposeResetLink: cfg.DevExposeResetLink,
		log:             log,
	}
}

// Signup registers a new account. No token is issued.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (err error) {
	defer func() { metrics.RecordOperation("signup", err) }()

	in.Email = common.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return err
	}

	hash, err := s.hashPassword(in.Password, "password")
	if err != nil {
		return err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
	}
	if _, err := s.repomanager.Users(s.db).Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return common.ErrDuplicateEmail
		}
		return internalError(err)
	}

	s.log.Info(ctx, "user signed up", "email", user.Email)
	return nil
}

// Login checks credentials and issues an access token. An unknown email and
// a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (resp *TokenResponse, err error) {
	defer func() { metrics.RecordOperation("login", err) }()

	in := LoginInput{Email: common.NormalizeEmail(email), Password: password}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep timing close to the wrong-password path
			s.hasher.Verify(in.Password, s.dummy())
			return nil, common.ErrInvalidCredentials
		}
		return nil, internalError(err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, internalError(err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   common.BearerTokenType,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Identify resolves a bearer token to the public profile of its owner.
func (s *AuthService) Identify(ctx context.Context, token string) (user *models.PublicUser, err error) {
	defer func() { metrics.RecordOperation("me", err) }()

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug(ctx, "access token rejected", "reason", err)
		return nil, common.ErrUnauthenticated
	}

	u, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalError(err)
	}

	return u.Public(), nil
}

// ForgotPassword starts a reset handshake when the account exists. The
// answer is the same either way; storage trouble is logged, not returned.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (res *ForgotPasswordResult, err error) {
	defer func() { metrics.RecordOperation("forgot_password", err) }()

	in := ForgotPasswordInput{Email: common.NormalizeEmail(email)}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	res = &ForgotPasswordResult{Message: common.ForgotPasswordAck}

	if _, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "forgot password lookup failed", "error", err)
		}
		return res, nil
	}

	link, err := s.resets.RequestReset(ctx, in.Email)
	if err != nil {
		s.log.Error(ctx, "issuing reset token failed", "email", in.Email, "error", err)
		return res, nil
	}

	if s.exposeResetLink {
		res.ResetLink = link
	}
	return res, nil
}

// ResetPassword redeems a reset token and replaces the password. Other
// outstanding tokens of the account are dropped. If the account vanished in
// the meantime the call still succeeds.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	defer func() { metrics.RecordOperation("reset_password", err) }()

	in := ResetPasswordInput{Token: strings.TrimSpace(token), NewPassword: newPassword}
	if err := validateStruct(in); err != nil {
		return err
	}

	hash, err := s.hashPassword(in.NewPassword, "new_password")
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		email, err := s.resets.ConsumeResetWith(ctx, tx, in.Token)
		if err != nil {
			return err
		}

		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, email, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.log.Info(ctx, "reset for vanished account", "email", email)
				return nil
			}
			return err
		}

		if _, err := s.repomanager.PasswordResets(tx).DeleteByEmail(ctx, email); err != nil {
			return err
		}

		s.log.Info(ctx, "password reset", "email", email)
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrResetTokenNotFound) {
			return common.ErrInvalidResetToken
		}
		return internalError(err)
	}
	return nil
}

func (s *AuthService) hashPassword(plaintext, field string) (string, error) {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", fieldError(field, "max")
		}
		return "", internalError(err)
	}
	return hash, nil
}

// dummy returns a hash to compare against when the user does not exist.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func internalError(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
