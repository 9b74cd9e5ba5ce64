package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frl-games/storychain-backend/internal/apperror"
	"github.com/frl-games/storychain-backend/internal/entity"
	"github.com/frl-games/storychain-backend/internal/message"
	"github.com/frl-games/storychain-backend/internal/pkg"
)

// maxSaveAttempts bounds both the reload-reapply-save loop on
// concurrent write conflicts and the room-code regeneration loop on
// collisions.
const maxSaveAttempts = 3

type sessionRepo interface {
	Create(ctx context.Context, session *entity.GameSession) error
	GetByRoomCode(ctx context.Context, roomCode string) (*entity.GameSession, error)
	Update(ctx context.Context, session *entity.GameSession) error
}

// broadcaster is the transport capability the coordinator needs:
// deliver a message to one connection or to every connection watching
// a room. Delivery is fire-and-forget.
type broadcaster interface {
	Unicast(connID string, msg message.Message)
	Broadcast(roomCode string, msg message.Message, exclude ...string)
}

// Coordinator orchestrates every game action: it validates the
// preconditions, mutates the session aggregate, persists it and emits
// the resulting room traffic. Precondition and lookup failures are
// returned to the transport, which reports them to the originating
// connection only.
type Coordinator struct {
	logger           *slog.Logger
	sessions         sessionRepo
	rooms            broadcaster
	completionLength int
}

func NewCoordinator(logger *slog.Logger, sessions sessionRepo, rooms broadcaster, completionLength int) *Coordinator {
	return &Coordinator{
		logger: logger,

		sessions:         sessions,
		rooms:            rooms,
		completionLength: completionLength,
	}
}

// CreateRoom creates a lobby with a fresh room code and the creating
// player. A room-code collision is retried with a new code.
func (that *Coordinator) CreateRoom(ctx context.Context, playerName string) (*entity.GameSession, error) {
	if playerName == "" {
		return nil, apperror.ErrPlayerNameRequired
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		session := entity.NewGameSession(pkg.GenerateRoomCode(), playerName, that.completionLength)

		err := that.sessions.Create(ctx, session)
		if errors.Is(err, apperror.ErrRoomCodeTaken) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		that.logger.Info("room created", "roomCode", session.RoomCode, "player", playerName)

		return session, nil
	}

	return nil, apperror.ErrRoomCodeTaken
}

// GetSession returns the current session snapshot for a room.
func (that *Coordinator) GetSession(ctx context.Context, roomCode string) (*entity.GameSession, error) {
	session, err := that.sessions.GetByRoomCode(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// JoinRoom checks that a room can still be watched. A completed game
// rejects new watchers; the transport adds the connection to the
// room's broadcast group only after this succeeds.
func (that *Coordinator) JoinRoom(ctx context.Context, roomCode string) (*entity.GameSession, error) {
	session, err := that.sessions.GetByRoomCode(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Completed {
		return nil, apperror.ErrGameCompleted
	}

	return session, nil
}

// JoinGame upserts the player into the roster, sends the caller the
// full session snapshot and tells everyone else about the new roster.
// Joining twice under the same name leaves the roster unchanged, which
// is what lets a player reconnect by name.
func (that *Coordinator) JoinGame(ctx context.Context, connID, roomCode, playerName string) error {
	if playerName == "" {
		return apperror.ErrPlayerNameRequired
	}

	session, err := that.commit(ctx, roomCode, func(session *entity.GameSession) error {
		if session.Started {
			return apperror.ErrGameAlreadyStarted
		}

		session.AddPlayer(playerName)

		return nil
	})
	if err != nil {
		return err
	}

	that.rooms.Unicast(connID, message.New(message.ActionJoinGameSuccess, session))
	that.rooms.Broadcast(roomCode, message.New(message.ActionUpdatePlayers, message.PlayersPayload{Players: session.Players}), connID)

	that.logger.Info("player joined game", "roomCode", roomCode, "player", playerName)

	return nil
}

// StartGame fixes the rotation, creates one story per player and moves
// the session into progress, all from one roster snapshot. On success
// the room gets the started session followed by one initial prompt per
// story, addressed to its creator.
func (that *Coordinator) StartGame(ctx context.Context, roomCode string) error {
	session, err := that.commit(ctx, roomCode, func(session *entity.GameSession) error {
		return session.Start()
	})
	if err != nil {
		return err
	}

	that.rooms.Broadcast(roomCode, message.New(message.ActionStartGameSuccess, message.SessionPayload{GameSession: session}))

	for _, story := range session.Stories {
		that.rooms.Broadcast(roomCode, message.New(message.ActionAddInitialPrompt, message.InitialPromptPayload{
			Receiver: story.Creator,
			StoryID:  story.ID,
			Prompt:   message.InitialPrompt,
		}))
	}

	that.logger.Info("game started", "roomCode", roomCode, "players", len(session.Players))

	return nil
}

// AddSentence commits the append, then routes the story onward: the
// new sentence goes to the whole room, and unless the story just
// completed it becomes the prompt for the author's successor. The
// append that completes the last open story finishes the game.
func (that *Coordinator) AddSentence(ctx context.Context, roomCode, storyID, author, text string) error {
	log := that.logger.With("method", "AddSentence", "roomCode", roomCode, "storyID", storyID)

	var (
		sentence     *entity.Sentence
		story        *entity.Story
		wasCompleted bool
	)

	session, err := that.commit(ctx, roomCode, func(session *entity.GameSession) error {
		wasCompleted = session.Completed

		var appendErr error
		sentence, story, appendErr = session.AppendSentence(storyID, author, text)

		return appendErr
	})
	if err != nil {
		return err
	}

	that.rooms.Broadcast(roomCode, message.New(message.ActionAddSentenceSuccess, message.SentencePayload{
		Text:    sentence.Text,
		Author:  sentence.Author,
		ID:      sentence.ID,
		StoryID: story.ID,
	}))

	if !story.Completed {
		if player := session.PlayerByName(author); player != nil && player.PassesTo != "" {
			that.rooms.Broadcast(roomCode, message.New(message.ActionAddUpcomingPrompt, message.UpcomingPromptPayload{
				StoryID:  story.ID,
				Prompt:   sentence.Text,
				Receiver: player.PassesTo,
			}))
		} else {
			log.Warn("author has no successor, story will not travel", "author", author)
		}
	}

	if !wasCompleted && session.Completed {
		that.rooms.Broadcast(roomCode, message.New(message.ActionFinishGame, message.FinishGamePayload{Completed: true}))

		log.Info("game finished")
	}

	return nil
}

// commit runs the load-mutate-save sequence for one room, retrying
// from a fresh read when another action for the same room committed in
// between. The mutate callback must be safe to re-apply.
func (that *Coordinator) commit(ctx context.Context, roomCode string, mutate func(session *entity.GameSession) error) (*entity.GameSession, error) {
	log := that.logger.With("method", "commit", "roomCode", roomCode)

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		session, err := that.sessions.GetByRoomCode(ctx, roomCode)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}

		if err = mutate(session); err != nil {
			return nil, err
		}

		err = that.sessions.Update(ctx, session)
		if errors.Is(err, apperror.ErrVersionConflict) {
			log.Info("concurrent update, retrying", "attempt", attempt+1)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}

		return session, nil
	}

	return nil, apperror.ErrVersionConflict
}
