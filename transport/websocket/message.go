package websocket

import (
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	actionCreate = "game:create"
	actionPlay   = "game:play"
	actionGet    = "game:get"
	actionError  = "error"
)

const codeInvalidRequest = "INVALID_REQUEST"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	ID       *entity.GameID `json:"id,omitempty"`
	Opponent string         `json:"opponent,omitempty"`
	Position *int           `json:"position,omitempty"`
}

type ResponsePayload struct {
	ID       *entity.GameID `json:"id,omitempty"`
	Game     *entity.Game   `json:"game,omitempty"`
	Finished bool           `json:"finished"`
	Error    *ErrorPayload  `json:"error,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Number  uint32 `json:"number,omitempty"`
}

type Response struct {
	Action  string          `json:"action"`
	Payload ResponsePayload `json:"payload"`
}

var errInvalidRequest = errors.New("invalid request")

func newErrorPayload(err error) *ErrorPayload {
	if errors.Is(err, errInvalidRequest) {
		return &ErrorPayload{Code: codeInvalidRequest, Message: err.Error()}
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return &ErrorPayload{Code: appErr.Code.String(), Message: appErr.Message, Number: uint32(appErr.Code)}
	}

	return &ErrorPayload{Code: apperror.CodeUnknown.String(), Message: "internal server error"}
}
