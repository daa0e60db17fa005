package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reinai/internal/models"
)

// SessionRepo stores one client's state as a single chat_state row.
// Writes replace the row, so the last writer wins.
type SessionRepo struct {
	pool     *pgxpool.Pool
	clientID string
}

func NewSessionRepo(pool *pgxpool.Pool, clientID string) *SessionRepo {
	return &SessionRepo{pool: pool, clientID: clientID}
}

func (r *SessionRepo) Load(ctx context.Context) ([]models.Session, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT sessions FROM chat_state WHERE client_id = $1`, r.clientID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return make([]models.Session, 0), nil
		}
		return nil, fmt.Errorf("failed to load sessions for %s: %w", r.clientID, err)
	}
	return decodeSessions(raw)
}

func (r *SessionRepo) Save(ctx context.Context, sessions []models.Session) error {
	data, err := encodeSessions(sessions)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO chat_state (client_id, sessions, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (client_id)
		DO UPDATE SET sessions = EXCLUDED.sessions, updated_at = NOW()
	`, r.clientID, data)
	if err != nil {
		return fmt.Errorf("failed to save sessions for %s: %w", r.clientID, err)
	}
	return nil
}

func (r *SessionRepo) LoadModel(ctx context.Context) (string, error) {
	var model string
	err := r.pool.QueryRow(ctx,
		`SELECT model FROM chat_state WHERE client_id = $1`, r.clientID,
	).Scan(&model)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load model for %s: %w", r.clientID, err)
	}
	return model, nil
}

func (r *SessionRepo) SaveModel(ctx context.Context, model string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_state (client_id, model, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (client_id)
		DO UPDATE SET model = EXCLUDED.model, updated_at = NOW()
	`, r.clientID, model)
	if err != nil {
		return fmt.Errorf("failed to save model for %s: %w", r.clientID, err)
	}
	return nil
}
