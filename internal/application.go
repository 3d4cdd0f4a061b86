package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/observability"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/rest"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// OpenRepository connects the configured store. The returned func releases it.
func OpenRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	log := logger.With("component", "storage", "driver", conf.Storage.Driver)

	switch conf.Storage.Driver {
	case config.DriverMemory:
		return repository.NewMemoryGameRepository(), func() {}, nil

	case config.DriverRedis:
		if conf.Storage.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisConf := conf.Storage.Redis
		client, err := storage.NewRedisStorage(ctx, redisConf.GetRedisAddr(), redisConf.Password, redisConf.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewGameRepository(client, redisConf.GameTTL), func() {
			if err := client.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}, nil

	case config.DriverSQLite:
		db, err := storage.NewSQLiteStorage(conf.Storage.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = db.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteGameRepository(db.Connection), func() {
			if err := db.Close(); err != nil {
				log.Error("could not close sqlite storage", "error", err)
			}
		}, nil

	case config.DriverPostgres:
		pool, err := storage.NewPostgresStorage(ctx, conf.Storage.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		return repository.NewPostgresGameRepository(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, conf.Storage.Driver)
	}
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	repo, closeRepo, err := OpenRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	metrics := observability.NewMetrics()
	gameManager := usecase.NewGameManager(logger, repo, usecase.WithMetrics(metrics))
	engine := usecase.NewSerializedEngine(gameManager)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, engine, metrics.Handler())
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, engine)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
