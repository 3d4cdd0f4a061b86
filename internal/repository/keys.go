package repository

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const keyPrefix = "tictactoe"

// gameCountKey holds the next unused game id.
func gameCountKey() string {
	return keyPrefix + ":game_count"
}

func gameKey(id entity.GameID) string {
	return fmt.Sprintf("%s:game:%d", keyPrefix, id)
}
