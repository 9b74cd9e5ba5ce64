package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/frl-games/storychain-backend/internal/entity"
)

type coordinator interface {
	CreateRoom(ctx context.Context, playerName string) (*entity.GameSession, error)
	GetSession(ctx context.Context, roomCode string) (*entity.GameSession, error)
}

type Server struct {
	logger      *slog.Logger
	coordinator coordinator
}

func New(logger *slog.Logger, coordinator coordinator) *Server {
	return &Server{
		logger:      logger,
		coordinator: coordinator,
	}
}

func (that *Server) Start(port string) error {
	router := httprouter.New()
	router.POST("/", that.handleCreateRoom)
	router.GET("/:roomCode", that.handleGetSession)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
