package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func pastDate(days int) time.Time {
	return time.Now().AddDate(0, 0, -days)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "sessions.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s := newTestStore(t)
	if got := s.All(); len(got) != 0 {
		t.Errorf("All() = %v, want empty", got)
	}
}

func TestOpenCorruptedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")
	if err := os.WriteFile(path, []byte("not json{{{"), 0644); err != nil {
		t.Fatalf("write corrupted file: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.All(); len(got) != 0 {
		t.Errorf("All() = %v, want empty", got)
	}
}

func TestAddAndByID(t *testing.T) {
	s := newTestStore(t)
	issueNumber := 42
	sess := &Session{
		IssueRef:   IssueRef{Project: "acme", IssueNumber: &issueNumber},
		Title:      "fix the thing",
		Status:     RunningStatus(),
		BranchName: "issue-42",
		AgentKind:  AgentClaude,
	}
	if err := s.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("Add did not assign an ID")
	}

	got, ok := s.ByID(sess.ID)
	if !ok {
		t.Fatal("ByID did not find the added session")
	}
	if got.Title != "fix the thing" {
		t.Errorf("Title = %q, want %q", got.Title, "fix the thing")
	}
}

func TestAddRejectsDuplicateActiveIssueSession(t *testing.T) {
	s := newTestStore(t)
	issueNumber := 7
	first := &Session{
		IssueRef: IssueRef{Project: "acme", IssueNumber: &issueNumber},
		Status:   RunningStatus(),
	}
	if err := s.Add(first); err != nil {
		t.Fatalf("Add first: %v", err)
	}

	second := &Session{
		IssueRef: IssueRef{Project: "acme", IssueNumber: &issueNumber},
		Status:   AwaitingStatus(),
	}
	if err := s.Add(second); err != ErrDuplicateIssueSession {
		t.Errorf("Add second = %v, want ErrDuplicateIssueSession", err)
	}
}

func TestAddAllowsNewIssueSessionAfterTerminal(t *testing.T) {
	s := newTestStore(t)
	issueNumber := 7
	first := &Session{
		IssueRef: IssueRef{Project: "acme", IssueNumber: &issueNumber},
		Status:   CompletedStatus(0),
	}
	if err := s.Add(first); err != nil {
		t.Fatalf("Add first: %v", err)
	}

	second := &Session{
		IssueRef: IssueRef{Project: "acme", IssueNumber: &issueNumber},
		Status:   RunningStatus(),
	}
	if err := s.Add(second); err != nil {
		t.Errorf("Add second: %v, want nil", err)
	}
}

func TestByIssueFindsOnlyActiveSession(t *testing.T) {
	s := newTestStore(t)
	issueNumber := 10
	sess := &Session{
		IssueRef: IssueRef{Project: "acme", IssueNumber: &issueNumber},
		Status:   AwaitingStatus(),
	}
	if err := s.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, ok := s.ByIssue("acme", 10)
	if !ok || got.ID != sess.ID {
		t.Errorf("ByIssue = (%v, %v), want (%v, true)", got, ok, sess.ID)
	}

	if _, ok := s.ByIssue("acme", 999); ok {
		t.Error("ByIssue found a session for an unknown issue")
	}
}

func TestRunningFiltersByStatus(t *testing.T) {
	s := newTestStore(t)
	running := &Session{Status: RunningStatus()}
	awaiting := &Session{Status: AwaitingStatus()}
	completed := &Session{Status: CompletedStatus(0)}
	for _, sess := range []*Session{running, awaiting, completed} {
		if err := s.Add(sess); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got := s.Running()
	if len(got) != 2 {
		t.Fatalf("Running() returned %d sessions, want 2", len(got))
	}
}

func TestUpdateStatusAndStatsPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sess := &Session{Status: RunningStatus()}
	if err := s.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := s.UpdateStatus(sess.ID, AwaitingStatus()); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := s.UpdateStats(sess.ID, Stats{LinesAdded: 10, FilesChanged: 2}); err != nil {
		t.Fatalf("UpdateStats: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.ByID(sess.ID)
	if !ok {
		t.Fatal("reopened store missing session")
	}
	if got.Status.Kind != Awaiting {
		t.Errorf("Status.Kind = %v, want %v", got.Status.Kind, Awaiting)
	}
	if got.Stats.LinesAdded != 10 || got.Stats.FilesChanged != 2 {
		t.Errorf("Stats = %+v, want LinesAdded=10 FilesChanged=2", got.Stats)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	sess := &Session{Status: RunningStatus()}
	if err := s.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Remove(sess.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := s.ByID(sess.ID); ok {
		t.Error("session still present after Remove")
	}
}

func TestCleanupOldKeepsNonTerminalRegardlessOfAge(t *testing.T) {
	s := newTestStore(t)
	old := &Session{Status: CompletedStatus(0), StartedAt: pastDate(30)}
	recent := &Session{Status: CompletedStatus(0), StartedAt: pastDate(1)}
	stillRunning := &Session{Status: RunningStatus(), StartedAt: pastDate(90)}
	for _, sess := range []*Session{old, recent, stillRunning} {
		if err := s.Add(sess); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	removed, err := s.CleanupOld(7)
	if err != nil {
		t.Fatalf("CleanupOld: %v", err)
	}
	if len(removed) != 1 || removed[0] != old.ID {
		t.Errorf("CleanupOld removed %v, want [%s]", removed, old.ID)
	}
	if _, ok := s.ByID(recent.ID); !ok {
		t.Error("CleanupOld removed a recent terminal session")
	}
	if _, ok := s.ByID(stillRunning.ID); !ok {
		t.Error("CleanupOld removed a non-terminal session")
	}
}
