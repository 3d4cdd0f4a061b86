package rest

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	identityHeader  = "X-Identity"
	requestIDHeader = "X-Request-ID"
)

type ctxKey int

const identityKey ctxKey = iota

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (that *statusWriter) WriteHeader(status int) {
	that.status = status
	that.ResponseWriter.WriteHeader(status)
}

// logging tags every request with an id and logs its outcome.
func logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					writeJSON(w, http.StatusInternalServerError, errorResponse{Error: apiError{
						Code:    "INTERNAL_ERROR",
						Message: "internal server error",
					}})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// requireIdentity rejects requests without the caller identity header.
func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get(identityHeader)
		if identity == "" {
			writeError(w, newUnauthorizedError())
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, entity.Identity(identity))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) entity.Identity {
	identity, _ := ctx.Value(identityKey).(entity.Identity)
	return identity
}
