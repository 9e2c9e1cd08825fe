package cli

import (
	"path/filepath"
	"testing"

	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.Open(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestProjectNameFromConfig(t *testing.T) {
	cfg := &config.Config{Project: config.ProjectConfig{Name: "acme"}}
	if got := ProjectName(cfg, "/repos/something-else"); got != "acme" {
		t.Errorf("ProjectName() = %q, want %q", got, "acme")
	}
}

func TestProjectNameFallsBackToRepoDirBase(t *testing.T) {
	cfg := &config.Config{}
	if got := ProjectName(cfg, "/repos/acme"); got != "acme" {
		t.Errorf("ProjectName() = %q, want %q", got, "acme")
	}
}

func TestResolveSessionByFullID(t *testing.T) {
	store := newTestStore(t)
	sess := &session.Session{IssueRef: session.IssueRef{Project: "acme"}, Status: session.RunningStatus()}
	if err := store.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := ResolveSession(store, sess.ID)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("got session %s, want %s", got.ID, sess.ID)
	}
}

func TestResolveSessionByUnambiguousPrefix(t *testing.T) {
	store := newTestStore(t)
	sess := &session.Session{IssueRef: session.IssueRef{Project: "acme"}, Status: session.RunningStatus()}
	if err := store.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := ResolveSession(store, sess.ID[:8])
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("got session %s, want %s", got.ID, sess.ID)
	}
}

func TestResolveSessionNoMatch(t *testing.T) {
	store := newTestStore(t)
	if _, err := ResolveSession(store, "nonexistent"); err == nil {
		t.Error("ResolveSession() error = nil, want error for unknown id")
	}
}
