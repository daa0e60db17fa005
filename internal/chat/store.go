package chat

import (
	"context"

	"reinai/internal/models"
)

// Keys under which every store keeps the client state.
const (
	SessionsKey = "reinai-sessions"
	ModelKey    = "reinai-model"
	LegacyKey   = "reinai-messages"
)

// Store persists the full ordered session list. Load returns an empty
// slice, not an error, when nothing was saved yet.
type Store interface {
	Load(ctx context.Context) ([]models.Session, error)
	Save(ctx context.Context, sessions []models.Session) error
}

// Preferences persists the selected model independently of sessions.
// LoadModel returns "" when unset.
type Preferences interface {
	LoadModel(ctx context.Context) (string, error)
	SaveModel(ctx context.Context, model string) error
}

// LegacyRemover is implemented by stores that may still hold the old
// single-thread message list.
type LegacyRemover interface {
	RemoveLegacy(ctx context.Context) error
}

// Relay completes a conversation through the relay endpoint.
type Relay interface {
	Complete(ctx context.Context, messages []models.Message, model string) (string, error)
}
