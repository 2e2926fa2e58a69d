package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/netx"
)

type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// call wraps netx.DoJSON and maps failures onto the package errors.
func (c *HTTPClient) call(ctx context.Context, method, path, bearer string, in, out any) error {
	err := netx.DoJSON(ctx, c.hc, method, c.baseURL+path, bearer, in, out)
	if err == nil {
		return nil
	}

	var apiErr *netx.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Detail)
		}
		return apiErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *HTTPClient) Signup(ctx context.Context, email, password, name string) error {
	in := map[string]string{"email": email, "password": password}
	if name != "" {
		in["name"] = name
	}
	return c.call(ctx, http.MethodPost, "/api/auth/signup", "", in, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*User, error) {
	var out User
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	var out ForgotPasswordResult
	in := map[string]string{"email": email}
	if err := c.call(ctx, http.MethodPost, "/api/auth/forgot-password", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	in := map[string]string{"token": token, "new_password": newPassword}
	return c.call(ctx, http.MethodPost, "/api/auth/reset-password", "", in, nil)
}

// Ping checks the health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", "", nil, nil)
}
