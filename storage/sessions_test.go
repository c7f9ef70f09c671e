package storage

import (
	"reflect"
	"testing"
	"time"

	"chaoscontext/chat"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSessions() []chat.Session {
	created := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	return []chat.Session{
		{
			ID:        "s1",
			CreatedAt: created,
			Preview:   "what changed in the payments flow?",
			Messages: []chat.Message{
				{ID: "m1", Role: chat.RoleUser, Content: "what changed in the payments flow?"},
				{
					ID:      "m2",
					Role:    chat.RoleAssistant,
					Content: "The retry policy was removed last sprint.",
					Thoughts: chat.Thoughts{
						chat.AgentStart{Agent: chat.AgentInterface},
						chat.Handoff{From: chat.AgentInterface, To: chat.AgentScavenger},
						chat.ToolCall{Agent: chat.AgentScavenger, Tool: "doc_search", Query: "payments retry"},
						chat.ToolResult{Agent: chat.AgentScavenger, Tool: "doc_search", Result: "2 documents"},
					},
				},
			},
		},
		{
			ID:        "s2",
			CreatedAt: created.Add(-time.Hour),
			Preview:   "New chat",
			Messages:  []chat.Message{},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	sessions := sampleSessions()

	store.Save(sessions)
	loaded := store.Load()

	if !reflect.DeepEqual(loaded, sessions) {
		t.Errorf("round trip changed sessions:\ngot  %#v\nwant %#v", loaded, sessions)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	if got := store.Load(); len(got) != 0 {
		t.Errorf("expected empty list from fresh database, got %#v", got)
	}
}

func TestSaveOverwritesPreviousValue(t *testing.T) {
	store := newTestStore(t)

	store.Save(sampleSessions())
	store.Save([]chat.Session{{ID: "only", Preview: "New chat", Messages: []chat.Message{}}})

	loaded := store.Load()
	if len(loaded) != 1 || loaded[0].ID != "only" {
		t.Errorf("expected the later save to win, got %#v", loaded)
	}
}

func TestLoadCorruptValueReadsAsEmpty(t *testing.T) {
	store := newTestStore(t)
	store.Save(sampleSessions())

	_, err := store.db.Exec(`UPDATE kv SET value = ? WHERE key = ?`, "{definitely not a session list", sessionsKey)
	if err != nil {
		t.Fatalf("failed to corrupt value: %v", err)
	}

	if got := store.Load(); len(got) != 0 {
		t.Errorf("corrupt data should read as empty, got %#v", got)
	}
}

func TestReopenedStoreSeesSavedData(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSessionStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	first.Save(sampleSessions())
	if err := first.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	second, err := NewSessionStore(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer second.Close()

	if got := second.Load(); !reflect.DeepEqual(got, sampleSessions()) {
		t.Errorf("reopened store lost data: %#v", got)
	}
}
