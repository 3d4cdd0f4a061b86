package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/testing/suite"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return mr, client
}

func TestRedisGameRepository(t *testing.T) {
	runGameRepositoryContract(t, func(t *testing.T) GameRepository {
		_, client := newMiniredisClient(t)
		return NewGameRepository(client, 0)
	})
}

func TestRedisGameRepository_Keys(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredisClient(t)
	repo := NewGameRepository(client, time.Hour)

	// Given: a reserved id and a stored game
	id, err := repo.NextID(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, id, entity.NewGame(id, "alice", "bob")))

	// Then: the counter holds the next unused id
	count, err := mr.Get("tictactoe:game_count")
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	// And: the game lives under its own key with the configured ttl
	assert.True(t, mr.Exists("tictactoe:game:0"))
	assert.Equal(t, time.Hour, mr.TTL("tictactoe:game:0"))
}

func TestRedisGameRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredisClient(t)
	repo := NewGameRepository(client, time.Minute)

	require.NoError(t, repo.Set(ctx, 3, entity.NewGame(3, "alice", "bob")))

	// When: the ttl elapses
	mr.FastForward(2 * time.Minute)

	// Then: the game is gone
	_, err := repo.Get(ctx, 3)
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestRedisGameRepository_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredisClient(t)
	repo := NewGameRepository(client, 0)

	// Given: the server went away
	mr.Close()

	// Then: failures surface as errors other than not-found
	_, err := repo.Get(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGameNotFound)

	_, err = repo.NextID(ctx)
	require.Error(t, err)
}

func TestRedisGameRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	runGameRepositoryContract(t, func(t *testing.T) GameRepository {
		_, s := suite.New(t)
		return NewGameRepository(s.Storage, 0)
	})
}
