package apperror

import (
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Code is the stable discriminant reported to callers for a rejected invocation.
type Code uint32

const (
	CodeUnknown Code = iota
	CodeGameDoesNotExist
	CodeGameFinito
	CodeNotYourTurn
	CodeInvalidPlay
	CodeNonPlayer
	CodeInvalidPosition
)

var codeNames = map[Code]string{
	CodeUnknown:          "INTERNAL_ERROR",
	CodeGameDoesNotExist: "GAME_DOES_NOT_EXIST",
	CodeGameFinito:       "GAME_FINITO",
	CodeNotYourTurn:      "NOT_YOUR_TURN",
	CodeInvalidPlay:      "INVALID_PLAY",
	CodeNonPlayer:        "NON_PLAYER",
	CodeInvalidPosition:  "INVALID_POSITION",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[CodeUnknown]
}

// Error is a caller-visible rejection.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrGameDoesNotExist = &Error{Code: CodeGameDoesNotExist, Message: "game does not exist"}
	ErrGameFinito       = &Error{Code: CodeGameFinito, Message: "game is already finished"}
	ErrNotYourTurn      = &Error{Code: CodeNotYourTurn, Message: "it's not your turn"}
	ErrInvalidPlay      = &Error{Code: CodeInvalidPlay, Message: "cell is already occupied"}
	ErrNonPlayer        = &Error{Code: CodeNonPlayer, Message: "caller is not a player of this game"}
	ErrInvalidPosition  = &Error{Code: CodeInvalidPosition, Message: "position is not on the board"}
)

// CodeOf returns the discriminant of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// LogError logs err with its oops code and context when it carries them.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{"error", oopsErr.Error()}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}

	logger.Error(msg, "error", err)
}
