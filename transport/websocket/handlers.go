package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

type handlerFunc func(ctx context.Context, caller entity.Identity, req *RequestPayload) (ResponsePayload, error)

func (that *Server) handleCreate(ctx context.Context, caller entity.Identity, req *RequestPayload) (ResponsePayload, error) {
	if req.Opponent == "" {
		return ResponsePayload{}, fmt.Errorf("%w: opponent is required", errInvalidRequest)
	}

	id, err := that.engine.Create(ctx, entity.Identity(req.Opponent), caller)
	if err != nil {
		return ResponsePayload{}, err
	}

	game, err := that.engine.GetGame(ctx, id)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{ID: &id, Game: game}, nil
}

func (that *Server) handlePlay(ctx context.Context, caller entity.Identity, req *RequestPayload) (ResponsePayload, error) {
	if req.ID == nil {
		return ResponsePayload{}, fmt.Errorf("%w: id is required", errInvalidRequest)
	}

	if req.Position == nil {
		return ResponsePayload{}, fmt.Errorf("%w: position is required", errInvalidRequest)
	}

	finished, game, err := that.engine.PlayAndGet(ctx, *req.ID, *req.Position, caller)
	if err != nil {
		return ResponsePayload{ID: req.ID}, err
	}

	return ResponsePayload{ID: req.ID, Game: game, Finished: finished}, nil
}

func (that *Server) handleGet(ctx context.Context, _ entity.Identity, req *RequestPayload) (ResponsePayload, error) {
	if req.ID == nil {
		return ResponsePayload{}, fmt.Errorf("%w: id is required", errInvalidRequest)
	}

	game, err := that.engine.GetGame(ctx, *req.ID)
	if err != nil {
		return ResponsePayload{ID: req.ID}, err
	}

	return ResponsePayload{ID: req.ID, Game: game, Finished: game.IsFinished()}, nil
}
