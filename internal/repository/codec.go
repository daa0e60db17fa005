package repository

import (
	"encoding/json"
	"fmt"

	"reinai/internal/models"
)

func encodeSessions(sessions []models.Session) ([]byte, error) {
	if sessions == nil {
		sessions = []models.Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sessions: %w", err)
	}
	return data, nil
}

func decodeSessions(data []byte) ([]models.Session, error) {
	sessions := make([]models.Session, 0)
	if len(data) == 0 {
		return sessions, nil
	}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}
	return sessions, nil
}
