package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/shop-cart/internal/cart"
	"github.com/fjod/go_cart/shop-cart/internal/session"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	SessionHeader   = "X-Session-ID"
	RequestIDHeader = "X-Request-ID"
)

type ctxKey int

const (
	sessionIDKey ctxKey = iota
	storeKey
)

// Sessions is the session registry as seen by the handlers.
type Sessions interface {
	Open() (string, *cart.Store)
	Get(id string) (*cart.Store, error)
	End(id string) error
}

// RequestIDMiddleware echoes the chi request id back to the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware resolves X-Session-ID to a cart. Requests without the
// header get a fresh session, announced in the response header.
func SessionMiddleware(sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)

			var store *cart.Store
			if sessionID == "" {
				sessionID, store = sessions.Open()
			} else {
				var err error
				store, err = sessions.Get(sessionID)
				if errors.Is(err, session.ErrSessionNotFound) {
					respondError(w, http.StatusNotFound, "session_not_found", "session not found or expired")
					return
				}
				if err != nil {
					respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
					return
				}
			}

			w.Header().Set(SessionHeader, sessionID)
			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			ctx = context.WithValue(ctx, storeKey, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request through slog.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func getSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

func getStore(ctx context.Context) *cart.Store {
	if store, ok := ctx.Value(storeKey).(*cart.Store); ok {
		return store
	}
	return nil
}
