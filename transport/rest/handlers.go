package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/frl-games/storychain-backend/internal/apperror"
	"github.com/frl-games/storychain-backend/internal/entity"
)

type createRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type createRoomResponse struct {
	RoomCode string           `json:"roomCode"`
	Players  []*entity.Player `json:"players"`
}

func (that *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := that.logger.With("method", "handleCreateRoom")

	var body createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, err := that.coordinator.CreateRoom(r.Context(), body.PlayerName)
	if errors.Is(err, apperror.ErrPlayerNameRequired) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Error("failed to create room", "error", err)
		http.Error(w, "failed to create room", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/"+session.RoomCode)
	w.WriteHeader(http.StatusCreated)

	response := createRoomResponse{
		RoomCode: session.RoomCode,
		Players:  session.Players,
	}

	if err = json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	log := that.logger.With("method", "handleGetSession")

	session, err := that.coordinator.GetSession(r.Context(), params.ByName("roomCode"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "failed to get session", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err = json.NewEncoder(w).Encode(session); err != nil {
		log.Error("failed to write response", "error", err)
	}
}
