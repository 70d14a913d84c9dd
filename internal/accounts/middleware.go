package accounts

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/civreg-ph/civreg/internal/shared"
)

// Middleware resolves the acting account for authenticated requests and
// provides role gates for protected route groups.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// WithActor loads the session's account and stores it in the request
// context as the acting account. Anonymous requests pass through with
// the zero actor.
func (m Middleware) WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := strings.TrimSpace(sess.Account())
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("parse session account id", slog.String("value", raw))
			}
			next.ServeHTTP(w, r)
			return
		}
		actor, err := m.Service.LoadActor(r.Context(), id)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("load actor", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireAuthenticated rejects requests without a live acting account.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.ActorFromContext(r.Context()).Authenticated() {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff rejects requests whose acting account is not staff.
func (m Middleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.ActorFromContext(r.Context()).Staff() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
