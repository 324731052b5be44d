package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logpkg "github.com/sheetsearch/sheets-search/logger"
	"github.com/sheetsearch/sheets-search/session"
)

const cookie = "sheets-search-session"

type sessionKey struct{}

// sessionMiddleware attaches the session ID from the cookie to the request context, creating
// a new session (and cookie) for first visits and expired sessions.
func (srv *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logpkg.FromContext(ctx)

		id := ""
		if c, err := r.Cookie(cookie); err == nil {
			id = c.Value
		}

		if _, err := srv.sessions.Get(ctx, id); err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Warn("discarding session", zap.String("session", id), zap.Error(err))
			}

			s, err := srv.sessions.Create(ctx)
			if err != nil {
				log.Error("create session", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			id = s.ID
			http.SetCookie(w, &http.Cookie{
				Name:     cookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   srv.options.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx = context.WithValue(ctx, sessionKey{}, id)
		ctx = logpkg.With(ctx, zap.String("session", id))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}

	return ""
}

// recoverer logs panics and answers with a bare 500.
func recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}

					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithEvent(logpkg.ContextWithLogger(r.Context(), reqLogger))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			}

			reqLogger.Info("http_request", append(fields, logpkg.EventFields(ctx)...)...)
		})
	}
}
