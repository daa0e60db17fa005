package repository

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"reinai/internal/chat"
	"reinai/internal/models"
)

type clientStore interface {
	chat.Store
	chat.Preferences
	chat.LegacyRemover
}

var (
	_ clientStore      = (*SessionBoltRepo)(nil)
	_ clientStore      = (*SessionRedisRepo)(nil)
	_ chat.Store       = (*SessionRepo)(nil)
	_ chat.Preferences = (*SessionRepo)(nil)
)

func sampleSessions() []models.Session {
	return []models.Session{
		{
			ID:        "5b0e6c1e-2f0a-4a53-9a0b-1d8f3c1e7a10",
			Name:      "Chat 2",
			Messages:  []models.Message{},
			CreatedAt: 1700000005000,
		},
		{
			ID:   "0f7c2a9d-8d61-4b8e-b1a2-6a5f0e9c3d22",
			Name: "Chat 1",
			Messages: []models.Message{
				{Role: models.RoleUser, Content: "hi"},
				{Role: models.RoleAssistant, Content: "**Hello!**\n\n• one\n• two"},
				{Role: models.RoleUser, Content: "again"},
				{Role: models.RoleUser, Content: "and again"},
			},
			CreatedAt: 1700000000000,
		},
	}
}

func exerciseStore(t *testing.T, store clientStore) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no sessions, got %+v", empty)
	}
	model, err := store.LoadModel(ctx)
	if err != nil || model != "" {
		t.Fatalf("expected unset model, got %q (%v)", model, err)
	}

	want := sampleSessions()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}

	if err := store.SaveModel(ctx, "qwen/qwen3-coder:free"); err != nil {
		t.Fatalf("save model: %v", err)
	}
	model, err = store.LoadModel(ctx)
	if err != nil || model != "qwen/qwen3-coder:free" {
		t.Fatalf("expected saved model, got %q (%v)", model, err)
	}

	// Saving the model must not disturb the sessions.
	got, _ = store.Load(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sessions changed after model save: %+v", got)
	}

	if err := store.RemoveLegacy(ctx); err != nil {
		t.Fatalf("remove legacy on missing key: %v", err)
	}
}

func TestSessionBoltRepo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reinai.db")
	repo, err := NewSessionBoltRepo(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseStore(t, repo)
	repo.Close()

	// State survives reopening the file.
	reopened, err := NewSessionBoltRepo(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if !reflect.DeepEqual(got, sampleSessions()) {
		t.Fatalf("sessions lost on reopen: %+v", got)
	}
}

func TestSessionBoltRepo_RemoveLegacy(t *testing.T) {
	repo, err := NewSessionBoltRepo(filepath.Join(t.TempDir(), "reinai.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	if err := repo.put(chat.LegacyKey, []byte(`[{"role":"user","content":"old"}]`)); err != nil {
		t.Fatalf("seed legacy: %v", err)
	}
	if err := repo.RemoveLegacy(context.Background()); err != nil {
		t.Fatalf("remove legacy: %v", err)
	}
	data, err := repo.get(chat.LegacyKey)
	if err != nil || data != nil {
		t.Fatalf("legacy key still present: %q (%v)", data, err)
	}
}

func TestSessionRedisRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	exerciseStore(t, NewSessionRedisRepo(rdb, "alice"))

	if !mr.Exists("reinai-sessions:alice") || !mr.Exists("reinai-model:alice") {
		t.Fatalf("expected namespaced keys, have %v", mr.Keys())
	}
}

func TestSessionRedisRepo_ClientsAreIsolated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	alice := NewSessionRedisRepo(rdb, "alice")
	bob := NewSessionRedisRepo(rdb, "bob")

	if err := alice.Save(ctx, sampleSessions()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := bob.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("bob sees alice's sessions: %+v", got)
	}

	mr.Set("reinai-messages:alice", "[]")
	if err := alice.RemoveLegacy(ctx); err != nil {
		t.Fatalf("remove legacy: %v", err)
	}
	if mr.Exists("reinai-messages:alice") {
		t.Fatal("legacy key not removed")
	}
}

func TestSessionsDriveManager(t *testing.T) {
	repo, err := NewSessionBoltRepo(filepath.Join(t.TempDir(), "reinai.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	m := chat.NewManager(repo, nil)
	if err := m.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := m.NewSession(ctx); err != nil {
		t.Fatalf("new session: %v", err)
	}

	reloaded := chat.NewManager(repo, nil)
	if err := reloaded.Init(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	sessions := reloaded.Sessions()
	if len(sessions) != 2 || sessions[0].Name != "Chat 2" || sessions[1].Name != "Chat 1" {
		t.Fatalf("unexpected sessions after reload: %+v", sessions)
	}
}
