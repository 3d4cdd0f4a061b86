package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	identityParam   = "identity"
	shutdownTimeout = 5 * time.Second
)

type gameEngine interface {
	Create(ctx context.Context, opponent, caller entity.Identity) (entity.GameID, error)
	PlayAndGet(ctx context.Context, id entity.GameID, pos int, caller entity.Identity) (bool, *entity.Game, error)
	GetGame(ctx context.Context, id entity.GameID) (*entity.Game, error)
}

type Server struct {
	logger *slog.Logger
	engine gameEngine

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, engine gameEngine) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		engine: engine,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionCreate] = server.handleCreate
	server.handlers[actionPlay] = server.handlePlay
	server.handlers[actionGet] = server.handleGet

	return server
}

// Handler serves the websocket endpoint at /ws.
func (that *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", that.serveWS)
	return r
}

// Start - starts WebSocket server. Connections are closed when ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	identity := entity.Identity(r.URL.Query().Get(identityParam))
	if identity == "" {
		http.Error(w, "identity is required", http.StatusUnauthorized)
		return
	}

	log := that.logger.With("connection_id", uuid.NewString(), "identity", identity)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(r.Context(), conn, identity, log); err != nil {
		log.Error("error handling messages", "error", err)
		return
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, caller entity.Identity, log *slog.Logger) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if isClosed(ctx, err) {
				log.Info("WebSocket connection closed")
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		response := that.dispatch(ctx, caller, data, log)
		if err = wsjson.Write(ctx, conn, response); err != nil {
			return fmt.Errorf("failed to send response: %w", err)
		}
	}
}

func (that *Server) dispatch(ctx context.Context, caller entity.Identity, data []byte, log *slog.Logger) Response {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return errorResponse(actionError, fmt.Errorf("%w: malformed message", errInvalidRequest))
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		return errorResponse(message.Action, fmt.Errorf("%w: unknown action %q", errInvalidRequest, message.Action))
	}

	var req RequestPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &req); err != nil {
			return errorResponse(message.Action, fmt.Errorf("%w: malformed payload", errInvalidRequest))
		}
	}

	payload, err := handler(ctx, caller, &req)
	if err != nil {
		log.Debug("action rejected", "action", message.Action, "error", err)
		payload.Error = newErrorPayload(err)
	}

	return Response{Action: message.Action, Payload: payload}
}

func errorResponse(action string, err error) Response {
	return Response{Action: action, Payload: ResponsePayload{Error: newErrorPayload(err)}}
}

func isClosed(ctx context.Context, err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}

	return ctx.Err() != nil
}
