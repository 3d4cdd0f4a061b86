package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

type memoryGame struct {
	mu     sync.RWMutex
	games  map[entity.GameID]entity.Game
	nextID entity.GameID
}

// NewMemoryGameRepository returns a process-local repository. Records are copied in and out.
func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[entity.GameID]entity.Game),
	}
}

func (that *memoryGame) Get(_ context.Context, id entity.GameID) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	return &game, nil
}

func (that *memoryGame) Set(_ context.Context, id entity.GameID, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[id] = *game

	return nil
}

func (that *memoryGame) NextID(_ context.Context) (entity.GameID, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.nextID
	that.nextID++

	return id, nil
}
