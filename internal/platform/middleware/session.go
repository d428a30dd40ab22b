package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"signup/internal/session"
	"signup/pkg/requestcontext"
)

// SessionConfig configures the browser session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session attaches a browser session id to every request. A missing or
// invalid cookie starts a new session.
func Session(tokens *session.Tokens, cfg SessionConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				claims, err := tokens.Parse(cookie.Value)
				if err == nil {
					ctx = requestcontext.WithSessionID(ctx, claims.SessionID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				logger.DebugContext(ctx, "discarding session cookie",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
			}

			sessionID, token, err := tokens.Issue(cfg.TTL)
			if err != nil {
				logger.ErrorContext(ctx, "failed to issue session",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			ctx = requestcontext.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
