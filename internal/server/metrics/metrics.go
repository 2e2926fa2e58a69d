// Package metrics declares the Prometheus instruments of the auth server.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authOperations counts service operations by name and outcome.
	authOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophauth_auth_operations_total",
		Help: "Total number of auth operations by outcome",
	}, []string{"operation", "outcome"})

	// httpDuration tracks request latency per route template.
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gophauth_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	resetTokensPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gophauth_reset_tokens_purged_total",
		Help: "Total number of expired reset handshakes removed",
	})
)

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrValidation):
		return "validation"
	case errors.Is(err, common.ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, common.ErrInvalidResetToken):
		return "invalid_reset_token"
	case errors.Is(err, common.ErrorNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// RecordOperation counts one finished service operation.
func RecordOperation(operation string, err error) {
	authOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

// ObserveHTTP records one served HTTP request.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// AddPurged counts expired reset handshakes deleted by the janitor.
func AddPurged(n int64) {
	if n > 0 {
		resetTokensPurged.Add(float64(n))
	}
}
