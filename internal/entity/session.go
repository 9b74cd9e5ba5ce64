package entity

import (
	"fmt"
	"time"

	"github.com/frl-games/storychain-backend/internal/apperror"
	"github.com/frl-games/storychain-backend/internal/rotation"
)

// GameSession is the aggregate root for one room: the join-ordered
// roster, one story per player once started, and the lifecycle flags.
// It is loaded, mutated and saved as a whole; Version backs the
// conditional replace in the repository.
type GameSession struct {
	RoomCode         string    `json:"roomCode"`
	Players          []*Player `json:"players"`
	Stories          []*Story  `json:"stories"`
	Started          bool      `json:"started"`
	Completed        bool      `json:"completed"`
	CompletionLength int       `json:"completionLength"`
	Version          int64     `json:"version"`
}

func NewGameSession(roomCode, playerName string, completionLength int) *GameSession {
	if completionLength <= 0 {
		completionLength = DefaultCompletionLength
	}

	session := &GameSession{
		RoomCode:         roomCode,
		CompletionLength: completionLength,
	}
	session.AddPlayer(playerName)

	return session
}

// AddPlayer upserts a player by name. Joining twice with the same name
// is a no-op, so a player can reconnect under their name without
// duplicating the roster.
func (that *GameSession) AddPlayer(name string) *Player {
	if player := that.PlayerByName(name); player != nil {
		return player
	}

	player := &Player{
		Name:      name,
		InSession: true,
		JoinedAt:  time.Now().UTC(),
	}
	that.Players = append(that.Players, player)

	return player
}

func (that *GameSession) PlayerByName(name string) *Player {
	for _, player := range that.Players {
		if player.Name == name {
			return player
		}
	}

	return nil
}

func (that *GameSession) StoryByID(id string) *Story {
	for _, story := range that.Stories {
		if story.ID == id {
			return story
		}
	}

	return nil
}

// Start fixes the rotation over the roster as it stands, creates one
// story per player and marks the session started. It can succeed
// exactly once; the rotation is not recomputed if the roster changes
// later.
func (that *GameSession) Start() error {
	if that.Started {
		return apperror.ErrGameAlreadyStarted
	}

	if len(that.Players) == 0 {
		return apperror.ErrEmptyRoster
	}

	names := make([]string, len(that.Players))
	for i, player := range that.Players {
		names[i] = player.Name
	}

	successors := rotation.Successors(names)
	for _, player := range that.Players {
		player.PassesTo = successors[player.Name]
	}

	for _, player := range that.Players {
		that.Stories = append(that.Stories, NewStory(player.Name, that.CompletionLength))
	}

	that.Started = true

	return nil
}

// AppendSentence appends to the story with the given id and recomputes
// story and session completion. Appends past a story's completion are
// not rejected; the flags only ever move forward.
func (that *GameSession) AppendSentence(storyID, author, text string) (*Sentence, *Story, error) {
	story := that.StoryByID(storyID)
	if story == nil {
		return nil, nil, fmt.Errorf("%w: story %s", apperror.ErrStoryNotFound, storyID)
	}

	sentence := story.Append(author, text)
	that.refreshCompletion()

	return sentence, story, nil
}

// refreshCompletion marks the session completed once every story is.
// The flag is monotonic: nothing ever clears it.
func (that *GameSession) refreshCompletion() {
	if len(that.Stories) == 0 {
		return
	}

	for _, story := range that.Stories {
		if !story.Completed {
			return
		}
	}

	that.Completed = true
}
