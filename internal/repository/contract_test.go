package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// runGameRepositoryContract checks the behaviour every GameRepository must share.
func runGameRepositoryContract(t *testing.T, newRepo func(t *testing.T) GameRepository) {
	t.Helper()

	t.Run("NextID starts at zero and never repeats", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		// When: reserving several ids
		ids := make([]entity.GameID, 0, 5)
		for range 5 {
			id, err := repo.NextID(ctx)
			require.NoError(t, err)
			ids = append(ids, id)
		}

		// Then: they are consecutive from zero
		assert.Equal(t, []entity.GameID{0, 1, 2, 3, 4}, ids)
	})

	t.Run("Set then Get returns the stored game", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		// Given: a game in progress
		game := entity.NewGame(42, "alice", "bob")
		game.Board[4] = entity.MarkA
		game.Turn = "bob"

		// When: it is stored and read back
		require.NoError(t, repo.Set(ctx, game.ID, game))
		retrievedGame, err := repo.Get(ctx, game.ID)

		// Then: the record is identical
		require.NoError(t, err)
		assert.Equal(t, game, retrievedGame)
	})

	t.Run("Set replaces an existing record", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		game := entity.NewGame(1, "alice", "bob")
		require.NoError(t, repo.Set(ctx, game.ID, game))

		// When: the game finishes and is stored again
		game.Board = entity.Board{
			entity.MarkA, entity.MarkA, entity.MarkA,
			entity.MarkB, entity.MarkB, entity.Empty,
			entity.Empty, entity.Empty, entity.Empty,
		}
		game.State = entity.Winner("alice")
		require.NoError(t, repo.Set(ctx, game.ID, game))

		// Then: the latest version is returned
		retrievedGame, err := repo.Get(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Winner("alice"), retrievedGame.State)
		assert.Equal(t, game.Board, retrievedGame.Board)
	})

	t.Run("Get on a missing id returns ErrGameNotFound", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		retrievedGame, err := repo.Get(ctx, 9999999)

		require.ErrorIs(t, err, ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})

	t.Run("Stored records are isolated from caller mutation", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		game := entity.NewGame(5, "alice", "bob")
		require.NoError(t, repo.Set(ctx, game.ID, game))

		// When: the caller mutates both the original and a fetched copy
		game.Board[0] = entity.MarkA
		fetched, err := repo.Get(ctx, game.ID)
		require.NoError(t, err)
		fetched.Board[1] = entity.MarkB

		// Then: the stored record is untouched
		stored, err := repo.Get(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, stored.Board)
	})
}
