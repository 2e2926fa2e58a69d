package grpc

import (
	"context"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, "debug")
}

// ---- fakes ----

type fakeAuth struct {
	signupIn  services.SignupInput
	signupErr error

	loginResp *services.TokenResponse
	loginErr  error

	identifyToken string
	identifyResp  *models.PublicUser
	identifyErr   error

	forgotResp *services.ForgotPasswordResult
	forgotErr  error

	resetToken, resetPassword string
	resetErr                  error
}

func (f *fakeAuth) Signup(ctx context.Context, in services.SignupInput) error {
	f.signupIn = in
	return f.signupErr
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Identify(ctx context.Context, token string) (*models.PublicUser, error) {
	f.identifyToken = token
	return f.identifyResp, f.identifyErr
}

func (f *fakeAuth) ForgotPassword(ctx context.Context, email string) (*services.ForgotPasswordResult, error) {
	if f.forgotResp == nil && f.forgotErr == nil {
		return &services.ForgotPasswordResult{Message: common.ForgotPasswordAck}, nil
	}
	return f.forgotResp, f.forgotErr
}

func (f *fakeAuth) ResetPassword(ctx context.Context, token, newPassword string) error {
	f.resetToken, f.resetPassword = token, newPassword
	return f.resetErr
}

func newTestServer(svc AuthService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", discardLogger(), svc)
}
