package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/tictactoe"
)

type gameRepo interface {
	Get(ctx context.Context, id entity.GameID) (*entity.Game, error)
	Set(ctx context.Context, id entity.GameID, game *entity.Game) error
	NextID(ctx context.Context) (entity.GameID, error)
}

// gameMetrics receives engine outcomes. Results are apperror code names or "ok".
type gameMetrics interface {
	GameCreated()
	MoveRecorded(result string)
	GameFinished(state entity.GameState)
}

type noopMetrics struct{}

func (noopMetrics) GameCreated()                  {}
func (noopMetrics) MoveRecorded(string)           {}
func (noopMetrics) GameFinished(entity.GameState) {}

const moveAccepted = "ok"

type GameManager struct {
	logger  *slog.Logger
	repo    gameRepo
	metrics gameMetrics
}

type Option func(*GameManager)

func WithMetrics(metrics gameMetrics) Option {
	return func(that *GameManager) {
		that.metrics = metrics
	}
}

func NewGameManager(logger *slog.Logger, repo gameRepo, opts ...Option) *GameManager {
	manager := &GameManager{
		logger:  logger,
		repo:    repo,
		metrics: noopMetrics{},
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// Create starts a session where caller is the challenger and moves first.
func (that *GameManager) Create(ctx context.Context, opponent, caller entity.Identity) (entity.GameID, error) {
	log := that.logger.With("method", "Create")

	id, err := that.repo.NextID(ctx)
	if err != nil {
		apperror.LogError(log, "failed to reserve game id", err)
		return 0, fmt.Errorf("failed to reserve game id: %w", err)
	}

	game := entity.NewGame(id, caller, opponent)
	if err = that.repo.Set(ctx, id, game); err != nil {
		apperror.LogError(log, "failed to store game", err)
		return 0, fmt.Errorf("failed to store game: %w", err)
	}

	that.metrics.GameCreated()
	log.Debug("game created", "game_id", id, "challenger", caller, "opposition", opponent)

	return id, nil
}

// Play places caller's mark at pos and reports whether the game is now finished.
// A rejected move leaves the stored game untouched.
func (that *GameManager) Play(ctx context.Context, id entity.GameID, pos int, caller entity.Identity) (bool, error) {
	log := that.logger.With("method", "Play", "game_id", id)

	game, err := that.validateMove(ctx, id, pos, caller)
	if err != nil {
		that.metrics.MoveRecorded(apperror.CodeOf(err).String())
		return false, err
	}

	game.Board[pos] = game.MarkOf(caller)
	game.Turn = game.OtherPlayer(caller)
	game.State = tictactoe.Evaluate(game.Board, game.Challenger, game.Opposition)

	if err = that.repo.Set(ctx, id, game); err != nil {
		apperror.LogError(log, "failed to store game", err)
		that.metrics.MoveRecorded(apperror.CodeUnknown.String())
		return false, fmt.Errorf("failed to store game: %w", err)
	}

	that.metrics.MoveRecorded(moveAccepted)

	finished := game.IsFinished()
	if finished {
		that.metrics.GameFinished(game.State)
		log.Info("game finished", "state", game.State.String())
	}

	return finished, nil
}

// GetGame returns the stored session.
func (that *GameManager) GetGame(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	game, err := that.getGame(ctx, id)
	if err != nil {
		return nil, err
	}

	return game, nil
}

// validateMove applies the move checks in order; the first failure wins.
func (that *GameManager) validateMove(ctx context.Context, id entity.GameID, pos int, caller entity.Identity) (*entity.Game, error) {
	if pos < 0 || pos >= entity.BoardSize {
		return nil, apperror.ErrInvalidPosition
	}

	game, err := that.getGame(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case game.IsFinished():
		return nil, apperror.ErrGameFinito
	case caller != game.Turn:
		return nil, apperror.ErrNotYourTurn
	case game.Board[pos] != entity.Empty:
		return nil, apperror.ErrInvalidPlay
	case !game.IsPlayer(caller):
		return nil, apperror.ErrNonPlayer
	}

	return game, nil
}

func (that *GameManager) getGame(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	game, err := that.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, apperror.ErrGameDoesNotExist
	}

	if err != nil {
		apperror.LogError(that.logger.With("method", "getGame", "game_id", id), "failed to get game", err)
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}
