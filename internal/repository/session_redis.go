package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"reinai/internal/chat"
	"reinai/internal/models"
)

// SessionRedisRepo keeps one client's state under keys suffixed with the
// client id.
type SessionRedisRepo struct {
	rdb      *redis.Client
	clientID string
}

func NewSessionRedisRepo(rdb *redis.Client, clientID string) *SessionRedisRepo {
	return &SessionRedisRepo{rdb: rdb, clientID: clientID}
}

func (r *SessionRedisRepo) Load(ctx context.Context) ([]models.Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(chat.SessionsKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return make([]models.Session, 0), nil
		}
		return nil, fmt.Errorf("failed to get sessions for %s: %w", r.clientID, err)
	}
	return decodeSessions(raw)
}

func (r *SessionRedisRepo) Save(ctx context.Context, sessions []models.Session) error {
	data, err := encodeSessions(sessions)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(chat.SessionsKey), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save sessions for %s: %w", r.clientID, err)
	}
	return nil
}

func (r *SessionRedisRepo) LoadModel(ctx context.Context) (string, error) {
	model, err := r.rdb.Get(ctx, r.key(chat.ModelKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get model for %s: %w", r.clientID, err)
	}
	return model, nil
}

func (r *SessionRedisRepo) SaveModel(ctx context.Context, model string) error {
	if err := r.rdb.Set(ctx, r.key(chat.ModelKey), model, 0).Err(); err != nil {
		return fmt.Errorf("failed to save model for %s: %w", r.clientID, err)
	}
	return nil
}

func (r *SessionRedisRepo) RemoveLegacy(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key(chat.LegacyKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete legacy messages for %s: %w", r.clientID, err)
	}
	return nil
}

func (r *SessionRedisRepo) key(name string) string {
	return fmt.Sprintf("%s:%s", name, r.clientID)
}
