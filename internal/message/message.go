// Package message defines the wire protocol between clients and the
// server: the action tags and the typed payloads they carry.
package message

import (
	"encoding/json"

	"github.com/frl-games/storychain-backend/internal/entity"
)

// Inbound actions.
const (
	ActionJoinRoom    = "SERVER_JOIN_ROOM"
	ActionJoinGame    = "SERVER_JOIN_GAME"
	ActionStartGame   = "SERVER_START_GAME"
	ActionAddSentence = "SERVER_ADD_SENTENCE"
)

// Outbound actions. Prompt messages are broadcast to the whole room;
// clients filter on the receiver field.
const (
	ActionJoinRoomError      = "JOIN_ROOM_ERROR"
	ActionJoinGameSuccess    = "JOIN_GAME_SUCCESS"
	ActionJoinGameError      = "JOIN_GAME_ERROR"
	ActionUpdatePlayers      = "UPDATE_PLAYERS"
	ActionStartGameSuccess   = "START_GAME_SUCCESS"
	ActionStartGameError     = "START_GAME_ERROR"
	ActionAddInitialPrompt   = "ADD_INITIAL_PROMPT"
	ActionAddSentenceSuccess = "ADD_SENTENCE_SUCCESS"
	ActionAddSentenceError   = "ADD_SENTENCE_ERROR"
	ActionAddUpcomingPrompt  = "ADD_UPCOMING_PROMPT"
	ActionFinishGame         = "FINISH_GAME"
)

// InitialPrompt is the invitation every story creator receives right
// after the game starts.
const InitialPrompt = "Write the first sentence of your story."

// Message is the envelope shared by inbound and outbound traffic.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds an outbound message from a payload value.
func New(action string, payload any) Message {
	return Message{
		Action:  action,
		Payload: mustMarshal(payload),
	}
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return raw
}

// Inbound payloads.

type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
}

type JoinGamePayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type StartGamePayload struct {
	RoomCode string `json:"roomCode"`
}

type AddSentencePayload struct {
	RoomCode string `json:"roomCode"`
	StoryID  string `json:"storyId"`
	Author   string `json:"author"`
	Text     string `json:"text"`
}

// Outbound payloads.

type ErrorPayload struct {
	Error string `json:"error"`
}

type SessionPayload struct {
	GameSession *entity.GameSession `json:"gameSession"`
}

type PlayersPayload struct {
	Players []*entity.Player `json:"players"`
}

type InitialPromptPayload struct {
	Receiver string `json:"receiver"`
	StoryID  string `json:"storyId"`
	Prompt   string `json:"prompt"`
}

type SentencePayload struct {
	Text    string `json:"text"`
	Author  string `json:"author"`
	ID      string `json:"id"`
	StoryID string `json:"storyId"`
}

type UpcomingPromptPayload struct {
	StoryID  string `json:"storyId"`
	Prompt   string `json:"prompt"`
	Receiver string `json:"receiver"`
}

type FinishGamePayload struct {
	Completed bool `json:"completed"`
}
