package usecase

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// SerializedEngine runs calls for the same game id one at a time. Calls for different ids
// proceed in parallel.
type SerializedEngine struct {
	manager *GameManager

	mu    sync.Mutex
	locks map[entity.GameID]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func NewSerializedEngine(manager *GameManager) *SerializedEngine {
	return &SerializedEngine{
		manager: manager,
		locks:   make(map[entity.GameID]*gameLock),
	}
}

func (that *SerializedEngine) Create(ctx context.Context, opponent, caller entity.Identity) (entity.GameID, error) {
	return that.manager.Create(ctx, opponent, caller)
}

func (that *SerializedEngine) Play(ctx context.Context, id entity.GameID, pos int, caller entity.Identity) (bool, error) {
	unlock := that.lock(id)
	defer unlock()

	return that.manager.Play(ctx, id, pos, caller)
}

// PlayAndGet plays a move and reads the resulting game under the same lock.
func (that *SerializedEngine) PlayAndGet(ctx context.Context, id entity.GameID, pos int, caller entity.Identity) (bool, *entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	finished, err := that.manager.Play(ctx, id, pos, caller)
	if err != nil {
		return false, nil, err
	}

	game, err := that.manager.GetGame(ctx, id)
	if err != nil {
		return false, nil, err
	}

	return finished, game, nil
}

func (that *SerializedEngine) GetGame(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	return that.manager.GetGame(ctx, id)
}

func (that *SerializedEngine) lock(id entity.GameID) func() {
	that.mu.Lock()
	lock, ok := that.locks[id]
	if !ok {
		lock = &gameLock{}
		that.locks[id] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}
