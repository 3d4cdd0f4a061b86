package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
)

const (
	alice   entity.Identity = "alice"
	bob     entity.Identity = "bob"
	mallory entity.Identity = "mallory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestManager(t *testing.T) (*GameManager, repository.GameRepository) {
	t.Helper()

	repo := repository.NewMemoryGameRepository()
	return NewGameManager(newTestLogger(), repo), repo
}

type mockGameRepo struct {
	mock.Mock
}

func (m *mockGameRepo) Get(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	args := m.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *mockGameRepo) Set(ctx context.Context, id entity.GameID, game *entity.Game) error {
	args := m.Called(ctx, id, game)
	return args.Error(0)
}

func (m *mockGameRepo) NextID(ctx context.Context) (entity.GameID, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.GameID), args.Error(1)
}

type recordingMetrics struct {
	created  int
	moves    []string
	finished []entity.GameState
}

func (that *recordingMetrics) GameCreated() { that.created++ }

func (that *recordingMetrics) MoveRecorded(result string) { that.moves = append(that.moves, result) }

func (that *recordingMetrics) GameFinished(state entity.GameState) {
	that.finished = append(that.finished, state)
}

func TestGameManager_Create(t *testing.T) {
	t.Run("Caller becomes challenger and moves first", func(t *testing.T) {
		ctx := context.Background()
		manager, _ := newTestManager(t)

		// When: alice challenges bob
		id, err := manager.Create(ctx, bob, alice)
		require.NoError(t, err)

		// Then: the stored game is fresh and alice is to move
		game, err := manager.GetGame(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.NewGame(id, alice, bob), game)
	})

	t.Run("Ids are distinct and increasing", func(t *testing.T) {
		ctx := context.Background()
		manager, _ := newTestManager(t)

		first, err := manager.Create(ctx, bob, alice)
		require.NoError(t, err)
		second, err := manager.Create(ctx, alice, bob)
		require.NoError(t, err)

		assert.Equal(t, entity.GameID(0), first)
		assert.Greater(t, second, first)
	})

	t.Run("Self-play is allowed", func(t *testing.T) {
		ctx := context.Background()
		manager, _ := newTestManager(t)

		id, err := manager.Create(ctx, alice, alice)
		require.NoError(t, err)

		// When: alice plays against herself
		finished, err := manager.Play(ctx, id, 0, alice)
		require.NoError(t, err)
		assert.False(t, finished)

		// Then: she keeps the turn and places the opposition mark
		game, err := manager.GetGame(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, alice, game.Turn)
		assert.Equal(t, entity.MarkB, game.Board[0])
	})

	t.Run("Store failure on id reservation is returned", func(t *testing.T) {
		ctx := context.Background()
		repo := &mockGameRepo{}
		repo.On("NextID", mock.Anything).Return(entity.GameID(0), errors.New("redis down"))

		manager := NewGameManager(newTestLogger(), repo)

		_, err := manager.Create(ctx, bob, alice)

		require.Error(t, err)
		assert.Equal(t, apperror.CodeUnknown, apperror.CodeOf(err))
		repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGameManager_Play(t *testing.T) {
	t.Run("Challenger wins along the top row", func(t *testing.T) {
		ctx := context.Background()
		metrics := &recordingMetrics{}
		manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(), WithMetrics(metrics))

		id, err := manager.Create(ctx, bob, alice)
		require.NoError(t, err)

		// When: the players alternate 0,3,1,4,2
		moves := []struct {
			pos    int
			caller entity.Identity
		}{
			{0, alice}, {3, bob}, {1, alice}, {4, bob}, {2, alice},
		}

		var finished bool
		for i, move := range moves {
			finished, err = manager.Play(ctx, id, move.pos, move.caller)
			require.NoError(t, err)
			assert.Equal(t, i == len(moves)-1, finished)
		}

		// Then: alice is the winner
		game, err := manager.GetGame(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.Winner(alice), game.State)
		assert.Equal(t, entity.Board{
			entity.MarkA, entity.MarkA, entity.MarkA,
			entity.MarkB, entity.MarkB, entity.Empty,
			entity.Empty, entity.Empty, entity.Empty,
		}, game.Board)

		// And: metrics saw every accepted move and one finish
		assert.Equal(t, 1, metrics.created)
		assert.Equal(t, []string{"ok", "ok", "ok", "ok", "ok"}, metrics.moves)
		assert.Equal(t, []entity.GameState{entity.Winner(alice)}, metrics.finished)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		ctx := context.Background()
		manager, _ := newTestManager(t)

		id, err := manager.Create(ctx, bob, alice)
		require.NoError(t, err)

		// X: 0,2,5,6,7  O: 1,3,4,8
		positions := []int{0, 1, 2, 4, 7, 3, 5, 8, 6}
		players := []entity.Identity{alice, bob}

		var finished bool
		for i, pos := range positions {
			finished, err = manager.Play(ctx, id, pos, players[i%2])
			require.NoError(t, err)
		}

		assert.True(t, finished)
		game, err := manager.GetGame(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.Draw(), game.State)
	})

	t.Run("Turn alternates after every accepted move", func(t *testing.T) {
		ctx := context.Background()
		manager, _ := newTestManager(t)

		id, err := manager.Create(ctx, bob, alice)
		require.NoError(t, err)

		expected := []entity.Identity{bob, alice, bob}
		callers := []entity.Identity{alice, bob, alice}
		for i, pos := range []int{4, 0, 8} {
			_, err = manager.Play(ctx, id, pos, callers[i])
			require.NoError(t, err)

			game, err := manager.GetGame(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, expected[i], game.Turn)
		}
	})
}

func TestGameManager_PlayRejections(t *testing.T) {
	// Given: alice opened in the centre, so bob is to move
	setup := func(t *testing.T) (*GameManager, entity.GameID) {
		t.Helper()

		manager, _ := newTestManager(t)
		id, err := manager.Create(context.Background(), bob, alice)
		require.NoError(t, err)
		_, err = manager.Play(context.Background(), id, 4, alice)
		require.NoError(t, err)

		return manager, id
	}

	tests := []struct {
		name    string
		id      func(id entity.GameID) entity.GameID
		pos     int
		caller  entity.Identity
		wantErr *apperror.Error
	}{
		{name: "position past the board", pos: 9, caller: bob, wantErr: apperror.ErrInvalidPosition},
		{name: "negative position", pos: -1, caller: bob, wantErr: apperror.ErrInvalidPosition},
		{
			name:    "position is checked before existence",
			id:      func(id entity.GameID) entity.GameID { return id + 100 },
			pos:     42,
			caller:  bob,
			wantErr: apperror.ErrInvalidPosition,
		},
		{
			name:    "unknown game",
			id:      func(id entity.GameID) entity.GameID { return id + 100 },
			pos:     0,
			caller:  bob,
			wantErr: apperror.ErrGameDoesNotExist,
		},
		{name: "wrong player", pos: 0, caller: alice, wantErr: apperror.ErrNotYourTurn},
		{name: "outsider is not on turn", pos: 0, caller: mallory, wantErr: apperror.ErrNotYourTurn},
		{name: "occupied cell", pos: 4, caller: bob, wantErr: apperror.ErrInvalidPlay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			manager, id := setup(t)
			before, err := manager.GetGame(ctx, id)
			require.NoError(t, err)

			target := id
			if tt.id != nil {
				target = tt.id(id)
			}

			// When: the move is attempted
			finished, err := manager.Play(ctx, target, tt.pos, tt.caller)

			// Then: it is rejected with the expected error and nothing changes
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, finished)

			after, err := manager.GetGame(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, before, after)

			_, err = manager.GetGame(ctx, id+100)
			assert.ErrorIs(t, err, apperror.ErrGameDoesNotExist)
		})
	}
}

func TestGameManager_FinishedGameIsFrozen(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	id, err := manager.Create(ctx, bob, alice)
	require.NoError(t, err)
	for i, pos := range []int{0, 3, 1, 4, 2} {
		_, err = manager.Play(ctx, id, pos, []entity.Identity{alice, bob}[i%2])
		require.NoError(t, err)
	}

	before, err := manager.GetGame(ctx, id)
	require.NoError(t, err)

	// When: bob tries to play after the game ended
	finished, err := manager.Play(ctx, id, 8, bob)

	// Then: the game is finished and unchanged
	require.ErrorIs(t, err, apperror.ErrGameFinito)
	assert.False(t, finished)

	after, err := manager.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGameManager_NonPlayer(t *testing.T) {
	ctx := context.Background()
	repo := &mockGameRepo{}

	// Given: a stored record whose turn points at an outsider
	game := entity.NewGame(1, alice, bob)
	game.Turn = mallory
	repo.On("Get", mock.Anything, entity.GameID(1)).Return(game, nil)

	manager := NewGameManager(newTestLogger(), repo)

	// When: the outsider plays
	_, err := manager.Play(ctx, 1, 0, mallory)

	// Then: the participant check rejects it and nothing is stored
	require.ErrorIs(t, err, apperror.ErrNonPlayer)
	repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameManager_StoreFailures(t *testing.T) {
	t.Run("Get failure is not reported as a missing game", func(t *testing.T) {
		ctx := context.Background()
		repo := &mockGameRepo{}
		repo.On("Get", mock.Anything, entity.GameID(1)).Return(nil, errors.New("connection reset"))

		manager := NewGameManager(newTestLogger(), repo)

		_, err := manager.GetGame(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperror.ErrGameDoesNotExist)
		assert.Equal(t, apperror.CodeUnknown, apperror.CodeOf(err))
	})

	t.Run("Set failure is returned from Play", func(t *testing.T) {
		ctx := context.Background()
		metrics := &recordingMetrics{}
		repo := &mockGameRepo{}
		repo.On("Get", mock.Anything, entity.GameID(1)).Return(entity.NewGame(1, alice, bob), nil)
		repo.On("Set", mock.Anything, entity.GameID(1), mock.Anything).Return(errors.New("disk full"))

		manager := NewGameManager(newTestLogger(), repo, WithMetrics(metrics))

		finished, err := manager.Play(ctx, 1, 0, alice)

		require.Error(t, err)
		assert.False(t, finished)
		assert.Equal(t, []string{"INTERNAL_ERROR"}, metrics.moves)
		repo.AssertExpectations(t)
	})
}
