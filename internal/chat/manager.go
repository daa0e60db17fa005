package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reinai/internal/models"
)

var (
	ErrEmptyInput      = errors.New("input is empty")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrUnknownModel    = errors.New("model is not in the catalog")
)

const (
	DefaultCannedDelay = 500 * time.Millisecond

	emptyReply      = "Something went wrong."
	fallbackSendErr = "Failed to send message."
)

type ExchangeState int

const (
	StateIdle ExchangeState = iota
	StateSending
	StateSucceeded
	StateFailed
)

func (s ExchangeState) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Exchange is one user prompt and the assistant message it resolved to.
type Exchange struct {
	SessionID string
	Prompt    models.Message
	Reply     models.Message
	State     ExchangeState
	Canned    bool
	Err       error // relay failure rendered into Reply
}

// Manager owns the ordered session list of one client and keeps it in
// sync with the store. It is safe for concurrent use; sends are not
// serialized against each other.
type Manager struct {
	store       Store
	prefs       Preferences
	relay       Relay
	rules       []Rule
	cannedDelay time.Duration
	now         func() time.Time
	newID       func() string
	sleep       func(context.Context, time.Duration) error
	logger      *slog.Logger

	mu       sync.Mutex
	sessions []models.Session
	activeID string
	model    string
	pending  int
}

type Option func(*Manager)

func WithPreferences(p Preferences) Option {
	return func(m *Manager) { m.prefs = p }
}

func WithRules(rules []Rule) Option {
	return func(m *Manager) { m.rules = rules }
}

func WithCannedDelay(d time.Duration) Option {
	return func(m *Manager) { m.cannedDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(m *Manager) { m.sleep = sleep }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager wires a manager to its store and relay. A store that also
// implements Preferences is used for the model selection unless
// WithPreferences says otherwise.
func NewManager(store Store, relay Relay, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		relay:       relay,
		rules:       DefaultRules,
		cannedDelay: DefaultCannedDelay,
		now:         time.Now,
		newID:       uuid.NewString,
		sleep:       sleepContext,
		logger:      slog.Default(),
		model:       models.DefaultModelID(),
	}
	if p, ok := store.(Preferences); ok {
		m.prefs = p
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init loads persisted state. With nothing persisted it creates and saves
// a single "Chat 1". The first session becomes active.
func (m *Manager) Init(ctx context.Context) error {
	sessions, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	var model string
	if m.prefs != nil {
		model, err = m.prefs.LoadModel(ctx)
		if err != nil {
			return fmt.Errorf("failed to load model selection: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if model != "" {
		m.model = model
	}

	if len(sessions) > 0 {
		m.sessions = sessions
		m.activeID = sessions[0].ID
		return nil
	}

	s := m.newSessionLocked()
	m.sessions = []models.Session{s}
	m.activeID = s.ID
	return m.persistLocked(ctx)
}

// NewSession prepends a fresh session and selects it.
func (m *Manager) NewSession(ctx context.Context) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.newSessionLocked()
	m.sessions = append([]models.Session{s}, m.sessions...)
	m.activeID = s.ID
	if err := m.persistLocked(ctx); err != nil {
		return models.Session{}, err
	}
	return s.Clone(), nil
}

func (m *Manager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.activeID = id
	return nil
}

func (m *Manager) Sessions() []models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Session, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.Clone()
	}
	return out
}

func (m *Manager) Active() (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(m.activeID)
	if i < 0 {
		return models.Session{}, false
	}
	return m.sessions[i].Clone(), true
}

func (m *Manager) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// SetModel selects a catalog model for every later send.
func (m *Manager) SetModel(ctx context.Context, id string) error {
	if !models.InCatalog(id) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.model = id
	if m.prefs == nil {
		return nil
	}
	if err := m.prefs.SaveModel(ctx, id); err != nil {
		return fmt.Errorf("failed to save model selection: %w", err)
	}
	return nil
}

// Loading reports whether any send is still waiting on its reply.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Clear empties the active session, keeping its id and name, and drops
// the legacy single-thread key where the store has one.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(m.activeID)
	if i < 0 {
		return ErrNoActiveSession
	}
	m.sessions[i].Messages = make([]models.Message, 0)
	if err := m.persistLocked(ctx); err != nil {
		return err
	}

	if lr, ok := m.store.(LegacyRemover); ok {
		if err := lr.RemoveLegacy(ctx); err != nil {
			return fmt.Errorf("failed to remove legacy messages: %w", err)
		}
	}
	return nil
}

// Send appends the user turn to the active session and persists it, then
// resolves the assistant turn from a matching rule or from the relay.
// Relay failures do not return an error; they become the assistant turn.
// Save failures also become the assistant turn and are returned as well.
func (m *Manager) Send(ctx context.Context, input string) (*Exchange, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyInput
	}

	ex, history, model, err := m.beginExchange(ctx, text)
	if err != nil {
		return ex, err
	}
	defer m.endPending()

	reply, canned, relayErr := m.resolve(ctx, text, history, model)
	ex.Canned = canned
	ex.Err = relayErr
	if relayErr != nil {
		ex.State = StateFailed
		m.logger.Warn("relay failed", "session", ex.SessionID, "model", model, "error", relayErr)
	} else {
		ex.State = StateSucceeded
	}
	ex.Reply = models.Message{Role: models.RoleAssistant, Content: reply}

	if err := m.appendReply(ctx, ex.SessionID, ex.Reply); err != nil {
		return ex, err
	}
	return ex, nil
}

// beginExchange is the pending phase: the user turn is stored before any
// reply exists. If that save fails the exchange is resolved on the spot
// with an error reply kept in memory.
func (m *Manager) beginExchange(ctx context.Context, text string) (*Exchange, []models.Message, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(m.activeID)
	if i < 0 {
		return nil, nil, "", ErrNoActiveSession
	}

	prompt := models.Message{Role: models.RoleUser, Content: text}
	m.sessions[i].Messages = append(m.sessions[i].Messages, prompt)

	history := make([]models.Message, len(m.sessions[i].Messages))
	copy(history, m.sessions[i].Messages)

	ex := &Exchange{
		SessionID: m.sessions[i].ID,
		Prompt:    prompt,
		State:     StateSending,
	}

	if err := m.persistLocked(ctx); err != nil {
		ex.State = StateFailed
		ex.Err = err
		ex.Reply = models.Message{Role: models.RoleAssistant, Content: formatSendError(err)}
		m.sessions[i].Messages = append(m.sessions[i].Messages, ex.Reply)
		m.logger.Warn("failed to persist prompt", "session", ex.SessionID, "error", err)
		return ex, nil, "", err
	}

	m.pending++
	return ex, history, m.model, nil
}

func (m *Manager) resolve(ctx context.Context, text string, history []models.Message, model string) (string, bool, error) {
	if rule, ok := matchRule(m.rules, text); ok {
		if err := m.sleep(ctx, m.cannedDelay); err != nil {
			return formatSendError(err), true, err
		}
		return rule.Reply, true, nil
	}

	reply, err := m.relay.Complete(ctx, history, model)
	if err != nil {
		return formatSendError(err), false, err
	}
	if reply == "" {
		reply = emptyReply
	}
	return reply, false, nil
}

// appendReply is the resolved phase. The reply goes to the session the
// exchange started in, even if another one was selected meanwhile.
func (m *Manager) appendReply(ctx context.Context, sessionID string, reply models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(sessionID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	m.sessions[i].Messages = append(m.sessions[i].Messages, reply)
	return m.persistLocked(ctx)
}

func (m *Manager) endPending() {
	m.mu.Lock()
	m.pending--
	m.mu.Unlock()
}

func (m *Manager) newSessionLocked() models.Session {
	return models.Session{
		ID:        m.newID(),
		Name:      fmt.Sprintf("Chat %d", len(m.sessions)+1),
		Messages:  make([]models.Message, 0),
		CreatedAt: m.now().UnixMilli(),
	}
}

func (m *Manager) indexLocked(id string) int {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) persistLocked(ctx context.Context) error {
	snapshot := make([]models.Session, len(m.sessions))
	for i, s := range m.sessions {
		snapshot[i] = s.Clone()
	}
	if err := m.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	return nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func formatSendError(err error) string {
	msg := err.Error()
	if msg == "" {
		msg = fallbackSendErr
	}
	return fmt.Sprintf("**Error:** %s\n\nPlease try again or contact support if the issue persists.", msg)
}
