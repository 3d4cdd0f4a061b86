package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires the game API, ping and an optional metrics handler.
func NewRouter(logger *slog.Logger, engine gameEngine, metrics http.Handler) http.Handler {
	log := logger.With("component", "rest")
	r := mux.NewRouter()

	r.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	games := &gameHandlers{engine: engine}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recovery(log))
	api.Use(logging(log))

	api.HandleFunc("/games/{id:[0-9]+}", games.Get).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(requireIdentity)
	protected.HandleFunc("/games", games.Create).Methods(http.MethodPost)
	protected.HandleFunc("/games/{id:[0-9]+}/moves", games.Play).Methods(http.MethodPost)

	return r
}

// Start serves handler on port until ctx is cancelled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
