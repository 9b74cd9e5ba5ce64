package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frl-games/storychain-backend/internal/apperror"
)

func TestGameSession_AddPlayer(t *testing.T) {
	t.Run("Joining twice with the same name leaves the roster unchanged", func(t *testing.T) {
		// Given: a session with one player
		session := NewGameSession("ABC234", "Alice", 3)
		require.Len(t, session.Players, 1)

		// When: the same name joins again
		session.AddPlayer("Alice")

		// Then: the roster still has one player
		assert.Len(t, session.Players, 1)
	})

	t.Run("Players keep their join order", func(t *testing.T) {
		// Given: a fresh session
		session := NewGameSession("ABC234", "Alice", 3)

		// When: two more players join
		session.AddPlayer("Bob")
		session.AddPlayer("Carol")

		// Then: the roster preserves insertion order
		require.Len(t, session.Players, 3)
		assert.Equal(t, "Alice", session.Players[0].Name)
		assert.Equal(t, "Bob", session.Players[1].Name)
		assert.Equal(t, "Carol", session.Players[2].Name)
		assert.True(t, session.Players[2].InSession)
	})
}

func TestGameSession_Start(t *testing.T) {
	t.Run("Start assigns the rotation and one story per player", func(t *testing.T) {
		// Given: a lobby with Alice, Bob and Carol
		session := NewGameSession("ABC234", "Alice", 3)
		session.AddPlayer("Bob")
		session.AddPlayer("Carol")

		// When: starting the game
		err := session.Start()

		// Then: the rotation cycles over the join order
		require.NoError(t, err)
		assert.True(t, session.Started)
		assert.Equal(t, "Bob", session.PlayerByName("Alice").PassesTo)
		assert.Equal(t, "Carol", session.PlayerByName("Bob").PassesTo)
		assert.Equal(t, "Alice", session.PlayerByName("Carol").PassesTo)

		// Then: every player creates exactly one story
		require.Len(t, session.Stories, 3)
		assert.Equal(t, "Alice", session.Stories[0].Creator)
		assert.Equal(t, "Bob", session.Stories[1].Creator)
		assert.Equal(t, "Carol", session.Stories[2].Creator)
		for _, story := range session.Stories {
			assert.NotEmpty(t, story.ID)
			assert.Equal(t, 3, story.CompletionLength)
		}
	})

	t.Run("Starting twice fails and leaves the session unchanged", func(t *testing.T) {
		// Given: a started session
		session := NewGameSession("ABC234", "Alice", 3)
		require.NoError(t, session.Start())

		// When: starting again
		err := session.Start()

		// Then: the second start is rejected and no extra stories appear
		assert.ErrorIs(t, err, apperror.ErrGameAlreadyStarted)
		assert.Len(t, session.Stories, 1)
	})

	t.Run("Starting with an empty roster fails", func(t *testing.T) {
		// Given: a session without players
		session := &GameSession{RoomCode: "ABC234", CompletionLength: 3}

		// When: starting the game
		err := session.Start()

		// Then: it is rejected
		assert.ErrorIs(t, err, apperror.ErrEmptyRoster)
		assert.False(t, session.Started)
	})

	t.Run("A single player passes to themself", func(t *testing.T) {
		// Given: a lobby with only Alice
		session := NewGameSession("ABC234", "Alice", 3)

		// When: starting the game
		require.NoError(t, session.Start())

		// Then: Alice is her own successor
		assert.Equal(t, "Alice", session.PlayerByName("Alice").PassesTo)
	})
}

func TestGameSession_AppendSentence(t *testing.T) {
	t.Run("Sentences keep their append order", func(t *testing.T) {
		// Given: a started single-player session
		session := NewGameSession("ABC234", "Alice", 5)
		require.NoError(t, session.Start())
		storyID := session.Stories[0].ID

		// When: appending three sentences
		_, _, err := session.AppendSentence(storyID, "Alice", "first")
		require.NoError(t, err)
		_, _, err = session.AppendSentence(storyID, "Alice", "second")
		require.NoError(t, err)
		_, _, err = session.AppendSentence(storyID, "Alice", "third")
		require.NoError(t, err)

		// Then: the story holds them in order, each with its own id
		story := session.Stories[0]
		require.Len(t, story.Sentences, 3)
		assert.Equal(t, "first", story.Sentences[0].Text)
		assert.Equal(t, "second", story.Sentences[1].Text)
		assert.Equal(t, "third", story.Sentences[2].Text)
		assert.NotEqual(t, story.Sentences[0].ID, story.Sentences[1].ID)
	})

	t.Run("Story completes when it reaches its completion length", func(t *testing.T) {
		// Given: a story one sentence short of completion
		session := NewGameSession("ABC234", "Alice", 2)
		require.NoError(t, session.Start())
		storyID := session.Stories[0].ID
		_, _, err := session.AppendSentence(storyID, "Alice", "first")
		require.NoError(t, err)
		require.False(t, session.Stories[0].Completed)

		// When: appending the final sentence
		_, story, err := session.AppendSentence(storyID, "Alice", "second")

		// Then: the story and, as the only story, the session complete
		require.NoError(t, err)
		assert.True(t, story.Completed)
		assert.True(t, session.Completed)
	})

	t.Run("Session completes only when every story is completed", func(t *testing.T) {
		// Given: two players, completion length one
		session := NewGameSession("ABC234", "Alice", 1)
		session.AddPlayer("Bob")
		require.NoError(t, session.Start())

		// When: only Alice's story gets its sentence
		_, story, err := session.AppendSentence(session.Stories[0].ID, "Alice", "done")
		require.NoError(t, err)

		// Then: that story is completed but the session is not
		assert.True(t, story.Completed)
		assert.False(t, session.Completed)

		// When: Bob's story completes too
		_, _, err = session.AppendSentence(session.Stories[1].ID, "Bob", "done")
		require.NoError(t, err)

		// Then: the session completes
		assert.True(t, session.Completed)
	})

	t.Run("Completion never reverts, even for appends past the threshold", func(t *testing.T) {
		// Given: a completed single-story session
		session := NewGameSession("ABC234", "Alice", 1)
		require.NoError(t, session.Start())
		storyID := session.Stories[0].ID
		_, _, err := session.AppendSentence(storyID, "Alice", "the end")
		require.NoError(t, err)
		require.True(t, session.Completed)

		// When: appending one more sentence
		_, story, err := session.AppendSentence(storyID, "Alice", "epilogue")

		// Then: the append commits and the flags stay set
		require.NoError(t, err)
		assert.Len(t, story.Sentences, 2)
		assert.True(t, story.Completed)
		assert.True(t, session.Completed)
	})

	t.Run("Unknown story is rejected", func(t *testing.T) {
		// Given: a started session
		session := NewGameSession("ABC234", "Alice", 3)
		require.NoError(t, session.Start())

		// When: appending to a story id that does not exist
		_, _, err := session.AppendSentence("no-such-story", "Alice", "text")

		// Then: the append fails with ErrStoryNotFound
		assert.ErrorIs(t, err, apperror.ErrStoryNotFound)
		assert.Empty(t, session.Stories[0].Sentences)
	})
}
