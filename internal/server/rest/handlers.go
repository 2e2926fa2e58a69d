// Package rest exposes the auth service over HTTP/JSON.
package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// AuthService is the part of services.AuthService the handlers need.
type AuthService interface {
	Signup(ctx context.Context, in services.SignupInput) error
	Login(ctx context.Context, email, password string) (*services.TokenResponse, error)
	Identify(ctx context.Context, token string) (*models.PublicUser, error)
	ForgotPassword(ctx context.Context, email string) (*services.ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type Handler struct {
	svc AuthService
	log logging.Logger
}

func NewHandler(svc AuthService, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := readJSON(w, r, &in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.svc.Signup(r.Context(), in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, messageBody{Message: "signup_ok"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := readJSON(w, r, &in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// Me returns the profile injected by RequireAuth.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		h.writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	h.writeJSON(w, r, http.StatusOK, user)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in services.ForgotPasswordInput
	if err := readJSON(w, r, &in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.ForgotPassword(r.Context(), in.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in services.ResetPasswordInput
	if err := readJSON(w, r, &in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), in.Token, in.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, messageBody{Message: "password_reset_ok"})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}
