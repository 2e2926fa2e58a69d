package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// statusFor maps a service error onto an HTTP status and a client-safe detail.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadJSON):
		return http.StatusBadRequest, errBadJSON.Error()
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity, common.ErrValidation.Error()
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, common.ErrInvalidResetToken):
		return http.StatusBadRequest, "Invalid or expired reset token"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeServiceError renders err. Internal failures are logged here and only
// here; the client gets an opaque body.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)

	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	body := errorBody{Detail: detail}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	h.writeJSON(w, r, status, body)
}
