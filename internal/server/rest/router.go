package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP API. Legacy paths used by older web clients are
// routed to the same handlers as the canonical ones.
func NewRouter(svc AuthService, cfg *config.Config, log logging.Logger) http.Handler {
	h := NewHandler(svc, log.With("module", "rest"))

	r := mux.NewRouter()
	r.StrictSlash(true)
	r.Use(h.logRequests)

	post := func(fn http.HandlerFunc, paths ...string) {
		for _, p := range paths {
			r.HandleFunc(p, fn).Methods(http.MethodPost)
		}
	}

	post(h.Signup, "/api/auth/signup", "/api/auth/register")
	post(h.Login, "/api/auth/login")
	post(h.ForgotPassword, "/api/auth/forgot-password", "/api/auth/forgot", "/api/forgot-password")
	post(h.ResetPassword, "/api/auth/reset-password", "/api/auth/reset")

	r.Handle("/api/auth/me", h.RequireAuth(http.HandlerFunc(h.Me))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)
	return cors(r)
}
