package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; every payload here is a handful of fields.
const maxBodyBytes = 64 << 10

var errBadJSON = errors.New("invalid JSON body")

// errorBody is the shape of every non-2xx response.
type errorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code and data.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error(r.Context(), "write JSON response", "error", err)
	}
}

// writeError sends a {"detail": ...} body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	h.writeJSON(w, r, status, errorBody{Detail: detail})
}

// readJSON decodes the request body into dst. Trailing data and oversized
// bodies are rejected.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadJSON)
	}
	return nil
}
