package repository

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frl-games/storychain-backend/internal/apperror"
	"github.com/frl-games/storychain-backend/internal/entity"
	"github.com/frl-games/storychain-backend/testing/suite"
)

func TestSessionRepository_Create(t *testing.T) {
	t.Run("Create_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// Given: a fresh lobby session
		session := entity.NewGameSession("ABC234", "Alice", 3)

		// When: Create is called
		err := sessionRepo.Create(ctx, session)

		// Then: no error should be returned, and the session is stored
		require.NoError(t, err)

		stored, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
		require.NoError(t, err)
		assert.Equal(t, "ABC234", stored.RoomCode)
		require.Len(t, stored.Players, 1)
		assert.Equal(t, "Alice", stored.Players[0].Name)
	})

	t.Run("Create_RoomCodeTaken", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// Given: a room code that is already stored
		require.NoError(t, sessionRepo.Create(ctx, entity.NewGameSession("ABC234", "Alice", 3)))

		// When: Create is called again with the same code
		err := sessionRepo.Create(ctx, entity.NewGameSession("ABC234", "Bob", 3))

		// Then: an ErrRoomCodeTaken error should be returned
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrRoomCodeTaken)

		// Then: the original session is untouched
		stored, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
		require.NoError(t, err)
		assert.Equal(t, "Alice", stored.Players[0].Name)
	})
}

func TestSessionRepository_GetByRoomCode(t *testing.T) {
	t.Run("GetByRoomCode_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// When: GetByRoomCode is called with a non-existent code
		_, err := sessionRepo.GetByRoomCode(ctx, "NOROOM")

		// Then: an ErrRoomNotFound error should be returned
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestSessionRepository_Update(t *testing.T) {
	t.Run("Update_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// Given: a stored lobby session
		session := entity.NewGameSession("ABC234", "Alice", 3)
		require.NoError(t, sessionRepo.Create(ctx, session))

		// When: a player is added and the session saved
		session.AddPlayer("Bob")
		err := sessionRepo.Update(ctx, session)

		// Then: the stored document reflects the change and a new version
		require.NoError(t, err)

		stored, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
		require.NoError(t, err)
		assert.Len(t, stored.Players, 2)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("Update_StaleVersion", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// Given: two copies of the same stored session
		require.NoError(t, sessionRepo.Create(ctx, entity.NewGameSession("ABC234", "Alice", 3)))

		first, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
		require.NoError(t, err)
		second, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
		require.NoError(t, err)

		// When: the first copy commits, then the second tries to
		first.AddPlayer("Bob")
		require.NoError(t, sessionRepo.Update(ctx, first))

		second.AddPlayer("Carol")
		err = sessionRepo.Update(ctx, second)

		// Then: the stale copy is rejected with ErrVersionConflict
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrVersionConflict)

		// Then: only the first commit is visible
		stored, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
		require.NoError(t, err)
		require.Len(t, stored.Players, 2)
		assert.Equal(t, "Bob", stored.Players[1].Name)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// Given: a session that was never stored
		session := entity.NewGameSession("NOROOM", "Alice", 3)

		// When: Update is called
		err := sessionRepo.Update(ctx, session)

		// Then: an ErrRoomNotFound error should be returned
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestSessionRepository_ConcurrentUpdates(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage)

	// Given: a started two-player game with one story per player
	session := entity.NewGameSession("ABC234", "Alice", 10)
	session.AddPlayer("Bob")
	require.NoError(t, session.Start())
	require.NoError(t, sessionRepo.Create(ctx, session))

	appendWithRetry := func(storyID, author, text string) error {
		for {
			current, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
			if err != nil {
				return err
			}

			if _, _, err = current.AppendSentence(storyID, author, text); err != nil {
				return err
			}

			err = sessionRepo.Update(ctx, current)
			if errors.Is(err, apperror.ErrVersionConflict) {
				continue
			}

			return err
		}
	}

	// When: both players append to their own stories concurrently
	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = appendWithRetry(session.Stories[0].ID, "Alice", "from alice")
	}()
	go func() {
		defer wg.Done()
		errs[1] = appendWithRetry(session.Stories[1].ID, "Bob", "from bob")
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Then: neither update is lost
	stored, err := sessionRepo.GetByRoomCode(ctx, "ABC234")
	require.NoError(t, err)
	require.Len(t, stored.Stories[0].Sentences, 1)
	require.Len(t, stored.Stories[1].Sentences, 1)
	assert.Equal(t, "from alice", stored.Stories[0].Sentences[0].Text)
	assert.Equal(t, "from bob", stored.Stories[1].Sentences[0].Text)
	assert.Equal(t, int64(2), stored.Version)
}
