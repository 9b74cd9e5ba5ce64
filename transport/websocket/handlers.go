package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frl-games/storychain-backend/internal/apperror"
	"github.com/frl-games/storychain-backend/internal/message"
)

func (that *Server) handleJoinRoom(ctx context.Context, connID string, msg *message.Message) error {
	log := that.logger.With("method", "handleJoinRoom", "connID", connID)

	var payload message.JoinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if _, err := that.coordinator.JoinRoom(ctx, payload.RoomCode); err != nil {
		log.Info("join room rejected", "roomCode", payload.RoomCode, "error", err)
		that.sendError(connID, message.ActionJoinRoomError, err)

		return nil
	}

	that.hub.JoinRoom(payload.RoomCode, connID)

	log.Info("connection joined room", "roomCode", payload.RoomCode)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, connID string, msg *message.Message) error {
	log := that.logger.With("method", "handleJoinGame", "connID", connID)

	var payload message.JoinGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := that.coordinator.JoinGame(ctx, connID, payload.RoomCode, payload.PlayerName); err != nil {
		log.Info("join game rejected", "roomCode", payload.RoomCode, "player", payload.PlayerName, "error", err)
		that.sendError(connID, message.ActionJoinGameError, err)

		return nil
	}

	that.hub.JoinRoom(payload.RoomCode, connID)

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, connID string, msg *message.Message) error {
	log := that.logger.With("method", "handleStartGame", "connID", connID)

	var payload message.StartGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := that.coordinator.StartGame(ctx, payload.RoomCode); err != nil {
		log.Info("start game rejected", "roomCode", payload.RoomCode, "error", err)
		that.sendError(connID, message.ActionStartGameError, err)

		return nil
	}

	return nil
}

func (that *Server) handleAddSentence(ctx context.Context, connID string, msg *message.Message) error {
	log := that.logger.With("method", "handleAddSentence", "connID", connID)

	var payload message.AddSentencePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	err := that.coordinator.AddSentence(ctx, payload.RoomCode, payload.StoryID, payload.Author, payload.Text)
	if err != nil {
		log.Info("add sentence rejected", "roomCode", payload.RoomCode, "storyID", payload.StoryID, "error", err)
		that.sendError(connID, message.ActionAddSentenceError, err)

		return nil
	}

	return nil
}

// sendError reports a failure to the originating connection only.
func (that *Server) sendError(connID, action string, err error) {
	that.hub.Unicast(connID, message.New(action, message.ErrorPayload{Error: userFacing(err)}))
}

// userFacing keeps known failures readable for clients; anything else
// is reported generically so internals do not leak.
func userFacing(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound),
		errors.Is(err, apperror.ErrStoryNotFound),
		errors.Is(err, apperror.ErrGameAlreadyStarted),
		errors.Is(err, apperror.ErrGameCompleted),
		errors.Is(err, apperror.ErrEmptyRoster),
		errors.Is(err, apperror.ErrPlayerNameRequired):
		return err.Error()
	case errors.Is(err, apperror.ErrVersionConflict):
		return "room is busy, try again"
	default:
		return "internal error"
	}
}
