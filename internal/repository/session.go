package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/frl-games/storychain-backend/internal/apperror"
	"github.com/frl-games/storychain-backend/internal/entity"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.GameSession) error
	GetByRoomCode(ctx context.Context, roomCode string) (*entity.GameSession, error)
	Update(ctx context.Context, session *entity.GameSession) error
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func sessionKey(roomCode string) string {
	return "session:" + roomCode
}

// Create stores a brand-new session. SETNX keeps room codes unique: a
// collision with an existing room fails with ErrRoomCodeTaken so the
// caller can regenerate the code.
func (that *dbSession) Create(ctx context.Context, session *entity.GameSession) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	created, err := that.client.SetNX(ctx, sessionKey(session.RoomCode), sessionJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", apperror.ErrRoomCodeTaken, session.RoomCode)
	}

	return nil
}

func (that *dbSession) GetByRoomCode(ctx context.Context, roomCode string) (*entity.GameSession, error) {
	response, err := that.client.Get(ctx, sessionKey(roomCode)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session entity.GameSession
	if err = json.Unmarshal([]byte(response), &session); err != nil {
		return nil, fmt.Errorf("could not unmarshal session: %w", err)
	}

	return &session, nil
}

// Update replaces the stored document only if its version still
// matches the one this session was loaded with. Any commit that
// happened in between surfaces as ErrVersionConflict, and the caller
// retries from a fresh read.
func (that *dbSession) Update(ctx context.Context, session *entity.GameSession) error {
	key := sessionKey(session.RoomCode)

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrRoomNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		var stored entity.GameSession
		if err = json.Unmarshal([]byte(response), &stored); err != nil {
			return fmt.Errorf("could not unmarshal session: %w", err)
		}

		if stored.Version != session.Version {
			return apperror.ErrVersionConflict
		}

		session.Version++
		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("could not marshal session: %w", err)
		}

		if _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, 0)
			return nil
		}); err != nil {
			return fmt.Errorf("failed to set session: %w", err)
		}

		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return apperror.ErrVersionConflict
	}

	return err
}
