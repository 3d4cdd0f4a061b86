package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

var ErrGameNotFound = errors.New("game not found")

// GameRepository is the keyed session store: one record per game id plus a monotonic id counter.
type GameRepository interface {
	Get(ctx context.Context, id entity.GameID) (*entity.Game, error)
	Set(ctx context.Context, id entity.GameID, game *entity.Game) error
	NextID(ctx context.Context) (entity.GameID, error)
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository returns a redis-backed repository. A zero ttl keeps games forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) Set(ctx context.Context, id entity.GameID, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(id), gameJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) Get(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal(response, &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// NextID reserves an id with INCR, so the counter always holds the next unused id.
func (that *dbGame) NextID(ctx context.Context) (entity.GameID, error) {
	next, err := that.client.Incr(ctx, gameCountKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to reserve game id: %w", err)
	}

	return entity.GameID(next - 1), nil
}
