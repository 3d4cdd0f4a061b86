package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeUnauthorized   = "UNAUTHORIZED"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Number  uint32 `json:"number,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// requestError is a rejection raised by the transport itself, before the engine is called.
type requestError struct {
	status   int
	apiError apiError
}

func (e *requestError) Error() string {
	return e.apiError.Message
}

func newInvalidRequestError(message string) error {
	return &requestError{http.StatusBadRequest, apiError{Code: codeInvalidRequest, Message: message}}
}

func newUnauthorizedError() error {
	return &requestError{http.StatusUnauthorized, apiError{Code: codeUnauthorized, Message: "missing " + identityHeader + " header"}}
}

var statusByCode = map[apperror.Code]int{
	apperror.CodeGameDoesNotExist: http.StatusNotFound,
	apperror.CodeInvalidPosition:  http.StatusBadRequest,
	apperror.CodeGameFinito:       http.StatusConflict,
	apperror.CodeInvalidPlay:      http.StatusConflict,
	apperror.CodeNotYourTurn:      http.StatusForbidden,
	apperror.CodeNonPlayer:        http.StatusForbidden,
}

func writeError(w http.ResponseWriter, err error) {
	status, body := toHTTPError(err)
	writeJSON(w, status, errorResponse{Error: body})
}

func toHTTPError(err error) (int, apiError) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status, reqErr.apiError
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status, ok := statusByCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return status, apiError{Code: appErr.Code.String(), Message: appErr.Message, Number: uint32(appErr.Code)}
	}

	return http.StatusInternalServerError, apiError{Code: apperror.CodeUnknown.String(), Message: "internal server error"}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
