package session

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeTmuxLister struct{ names []string }

func (f fakeTmuxLister) List() ([]string, error) { return f.names, nil }

func TestListWorktreeInfoJoinsSessionAndTmux(t *testing.T) {
	worktreesDir := t.TempDir()
	path := filepath.Join(worktreesDir, "acme-issue-42")
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	s, err := Open(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	issueNumber := 42
	sess := &Session{
		IssueRef:     IssueRef{Project: "acme", IssueNumber: &issueNumber},
		BranchName:   "issue-42",
		WorktreePath: path,
		Status:       RunningStatus(),
	}
	if err := s.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tc := fakeTmuxLister{names: []string{"acme-issue-42"}}
	infos, err := ListWorktreeInfo(worktreesDir, s, tc)
	if err != nil {
		t.Fatalf("ListWorktreeInfo: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d infos, want 1", len(infos))
	}
	info := infos[0]
	if !info.HasSession {
		t.Error("HasSession = false, want true")
	}
	if !info.HasTmux {
		t.Error("HasTmux = false, want true")
	}
	if info.IssueNumber == nil || *info.IssueNumber != 42 {
		t.Errorf("IssueNumber = %v, want 42", info.IssueNumber)
	}
}

func TestListWorktreeInfoWithoutSessionInfersFromDirName(t *testing.T) {
	worktreesDir := t.TempDir()
	path := filepath.Join(worktreesDir, "acme-feature-dark-mode")
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	s, err := Open(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	tc := fakeTmuxLister{names: []string{"acme-feature-dark-mode"}}
	infos, err := ListWorktreeInfo(worktreesDir, s, tc)
	if err != nil {
		t.Fatalf("ListWorktreeInfo: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d infos, want 1", len(infos))
	}
	info := infos[0]
	if info.HasSession {
		t.Error("HasSession = true, want false")
	}
	if !info.HasTmux {
		t.Error("HasTmux = false, want true")
	}
	if info.Project != "acme" {
		t.Errorf("Project = %q, want %q", info.Project, "acme")
	}
}

func TestListWorktreeInfoEmptyDir(t *testing.T) {
	worktreesDir := filepath.Join(t.TempDir(), "does-not-exist")
	s, err := Open(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	infos, err := ListWorktreeInfo(worktreesDir, s, fakeTmuxLister{})
	if err != nil {
		t.Fatalf("ListWorktreeInfo: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("infos = %v, want empty", infos)
	}
}
