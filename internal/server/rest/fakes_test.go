package rest

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, "debug")
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

// stubService answers each call through an optional hook; nil hooks succeed.
type stubService struct {
	signup   func(services.SignupInput) error
	login    func(email, password string) (*services.TokenResponse, error)
	identify func(token string) (*models.PublicUser, error)
	forgot   func(email string) (*services.ForgotPasswordResult, error)
	reset    func(token, pw string) error
}

func (s *stubService) Signup(_ context.Context, in services.SignupInput) error {
	if s.signup != nil {
		return s.signup(in)
	}
	return nil
}

func (s *stubService) Login(_ context.Context, email, password string) (*services.TokenResponse, error) {
	if s.login != nil {
		return s.login(email, password)
	}
	return &services.TokenResponse{AccessToken: "tok", TokenType: common.BearerTokenType, ExpiresIn: 60}, nil
}

func (s *stubService) Identify(_ context.Context, token string) (*models.PublicUser, error) {
	if s.identify != nil {
		return s.identify(token)
	}
	return &models.PublicUser{ID: "u-1", Email: "a@x.com"}, nil
}

func (s *stubService) ForgotPassword(_ context.Context, email string) (*services.ForgotPasswordResult, error) {
	if s.forgot != nil {
		return s.forgot(email)
	}
	return &services.ForgotPasswordResult{Message: common.ForgotPasswordAck}, nil
}

func (s *stubService) ResetPassword(_ context.Context, token, pw string) error {
	if s.reset != nil {
		return s.reset(token, pw)
	}
	return nil
}

// memService is a tiny stateful stand-in used to drive whole flows through
// the router. Tokens are "token:<email>", reset tokens "reset:<email>".
type memService struct {
	mu       sync.Mutex
	accounts map[string]string
	resets   map[string]string
}

func newMemService() *memService {
	return &memService{accounts: map[string]string{}, resets: map[string]string{}}
}

func (m *memService) Signup(_ context.Context, in services.SignupInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := common.NormalizeEmail(in.Email)
	if len(in.Password) < 6 {
		return &services.ValidationError{Fields: map[string]string{"password": "min"}}
	}
	if _, ok := m.accounts[email]; ok {
		return common.ErrDuplicateEmail
	}
	m.accounts[email] = in.Password
	return nil
}

func (m *memService) Login(_ context.Context, email, password string) (*services.TokenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = common.NormalizeEmail(email)
	if pw, ok := m.accounts[email]; !ok || pw != password {
		return nil, common.ErrInvalidCredentials
	}
	return &services.TokenResponse{AccessToken: "token:" + email, TokenType: common.BearerTokenType, ExpiresIn: 3600}, nil
}

func (m *memService) Identify(_ context.Context, token string) (*models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := strings.CutPrefix(token, "token:")
	if !ok {
		return nil, common.ErrUnauthenticated
	}
	if _, ok := m.accounts[email]; !ok {
		return nil, common.ErrorNotFound
	}
	return &models.PublicUser{ID: "id-" + email, Email: email, CreatedAt: time.Unix(0, 0).UTC()}, nil
}

func (m *memService) ForgotPassword(_ context.Context, email string) (*services.ForgotPasswordResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = common.NormalizeEmail(email)
	res := &services.ForgotPasswordResult{Message: common.ForgotPasswordAck}
	if _, ok := m.accounts[email]; ok {
		token := "reset:" + email
		m.resets[token] = email
		res.ResetLink = "http://front.test/reset-password?token=" + token
	}
	return res, nil
}

func (m *memService) ResetPassword(_ context.Context, token, pw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.resets[token]
	if !ok {
		return common.ErrInvalidResetToken
	}
	delete(m.resets, token)
	m.accounts[email] = pw
	return nil
}

func (m *memService) deleteAccount(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, email)
}
