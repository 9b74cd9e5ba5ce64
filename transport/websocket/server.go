package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frl-games/storychain-backend/internal/entity"
	"github.com/frl-games/storychain-backend/internal/message"
	"github.com/frl-games/storychain-backend/internal/pkg"
)

type coordinator interface {
	JoinRoom(ctx context.Context, roomCode string) (*entity.GameSession, error)
	JoinGame(ctx context.Context, connID, roomCode, playerName string) error
	StartGame(ctx context.Context, roomCode string) error
	AddSentence(ctx context.Context, roomCode, storyID, author, text string) error
}

type Server struct {
	logger      *slog.Logger
	coordinator coordinator
	hub         *Hub
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, connID string, msg *message.Message) error
}

func New(logger *slog.Logger, coordinator coordinator, hub *Hub) *Server {
	server := &Server{
		logger:      logger,
		coordinator: coordinator,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game client is served from a different origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, string, *message.Message) error),
	}

	server.handlers[message.ActionJoinRoom] = server.handleJoinRoom
	server.handlers[message.ActionJoinGame] = server.handleJoinGame
	server.handlers[message.ActionStartGame] = server.handleStartGame
	server.handlers[message.ActionAddSentence] = server.handleAddSentence

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection upgrades the request and pumps inbound actions until
// the client goes away. Each action names its room; one connection can
// act on any number of rooms.
func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	connID := pkg.GenerateConnectionID()
	that.hub.Add(connID, conn)
	defer that.hub.Drop(connID)

	log.Info("connection established", "connID", connID)

	for {
		var msg message.Message
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("connection read failed", "connID", connID, "error", err)
			}

			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action, "connID", connID)
			continue
		}

		if err = handler(ctx, connID, &msg); err != nil {
			log.Error("failed to handle action", "action", msg.Action, "connID", connID, "error", err)
		}
	}
}
