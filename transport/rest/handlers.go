package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

type gameEngine interface {
	Create(ctx context.Context, opponent, caller entity.Identity) (entity.GameID, error)
	PlayAndGet(ctx context.Context, id entity.GameID, pos int, caller entity.Identity) (bool, *entity.Game, error)
	GetGame(ctx context.Context, id entity.GameID) (*entity.Game, error)
}

type createGameRequest struct {
	Opponent string `json:"opponent"`
}

type createGameResponse struct {
	ID entity.GameID `json:"id"`
}

type playRequest struct {
	Position *int `json:"position"`
}

type playResponse struct {
	Finished bool         `json:"finished"`
	Game     *entity.Game `json:"game"`
}

type gameHandlers struct {
	engine gameEngine
}

// Create handles POST /api/v1/games
func (that *gameHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newInvalidRequestError("invalid JSON body"))
		return
	}

	if req.Opponent == "" {
		writeError(w, newInvalidRequestError("opponent is required"))
		return
	}

	id, err := that.engine.Create(r.Context(), entity.Identity(req.Opponent), identityFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createGameResponse{ID: id})
}

// Play handles POST /api/v1/games/{id}/moves
func (that *gameHandlers) Play(w http.ResponseWriter, r *http.Request) {
	id, err := gameIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req playRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newInvalidRequestError("invalid JSON body"))
		return
	}

	if req.Position == nil {
		writeError(w, newInvalidRequestError("position is required"))
		return
	}

	finished, game, err := that.engine.PlayAndGet(r.Context(), id, *req.Position, identityFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playResponse{Finished: finished, Game: game})
}

// Get handles GET /api/v1/games/{id}
func (that *gameHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := gameIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	game, err := that.engine.GetGame(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func gameIDFrom(r *http.Request) (entity.GameID, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, newInvalidRequestError("invalid game id")
	}

	return entity.GameID(id), nil
}
