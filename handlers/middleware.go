package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/satheeshds/orderledger/reports"
	"github.com/satheeshds/orderledger/service"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// Ledger is the shared ledger service used by all handlers.
var Ledger *service.Ledger

// Reports computes dashboard figures.
var Reports *reports.Reporter

// DefaultAccount scopes requests that name no account.
var DefaultAccount = "default"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}

// writeServiceError maps a service error to its status code.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInUse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// BasicAuth returns middleware that enforces HTTP Basic Authentication.
func BasicAuth(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// If no credentials are configured, skip auth
		if user == "" && pass == "" {
			slog.Warn("AUTH_USER and AUTH_PASS not set, API is unauthenticated")
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != pass {
				w.Header().Set("WWW-Authenticate", `Basic realm="orderledger"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type accountKey struct{}

// AccountScope resolves the account a request works on: the X-Account-ID header,
// else the basic auth user, else DefaultAccount.
func AccountScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := strings.TrimSpace(r.Header.Get("X-Account-ID"))
		if account == "" {
			if u, _, ok := r.BasicAuth(); ok && u != "" {
				account = u
			}
		}
		if account == "" {
			account = DefaultAccount
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey{}, account)))
	})
}

func accountOf(r *http.Request) string {
	if a, ok := r.Context().Value(accountKey{}).(string); ok {
		return a
	}
	return DefaultAccount
}

// RateLimit returns middleware limiting each client IP to the formatted rate, e.g. "120-M".
func RateLimit(formatted string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parsing rate limit %q: %w", formatted, err)
	}
	mw := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate))
	return mw.Handler, nil
}
