package session

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kestrel-cli/kestrel/internal/tmux"
)

// WorktreeInfo is a derived view joining a worktree directory with the
// Session Store and the Tmux Controller's live listing. It is never
// persisted; it is recomputed on demand for the list view.
type WorktreeInfo struct {
	Name        string
	Path        string
	Branch      string
	IssueNumber *int
	Project     string
	HasSession  bool
	HasTmux     bool
}

// tmuxLister is the subset of tmux.Controller used by ListWorktreeInfo,
// narrowed for testability.
type tmuxLister interface {
	List() ([]string, error)
}

var _ tmuxLister = (*tmux.Controller)(nil)

// ListWorktreeInfo enumerates every directory under worktreesDir and joins
// it with store's records and tc's live tmux session list.
func ListWorktreeInfo(worktreesDir string, store *Store, tc tmuxLister) ([]WorktreeInfo, error) {
	entries, err := os.ReadDir(worktreesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	liveSessions := map[string]bool{}
	if names, err := tc.List(); err == nil {
		for _, n := range names {
			liveSessions[n] = true
		}
	}

	sessionsByPath := map[string]*Session{}
	for _, sess := range store.All() {
		sessionsByPath[sess.WorktreePath] = sess
	}

	var infos []WorktreeInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(worktreesDir, name)

		project, branch := splitWorktreeName(name)
		info := WorktreeInfo{
			Name:    name,
			Path:    path,
			Branch:  branch,
			Project: project,
		}

		if sess, ok := sessionsByPath[path]; ok {
			info.HasSession = true
			info.IssueNumber = sess.IssueRef.IssueNumber
			info.Project = sess.IssueRef.Project
			info.Branch = sess.BranchName
			info.HasTmux = liveSessions[issueOrBranchSessionName(sess)]
		} else if issueNumber, ok := parseIssueSuffix(branch); ok {
			info.IssueNumber = &issueNumber
			info.HasTmux = liveSessions[tmux.IssueSessionName(project, issueNumber)]
		} else {
			info.HasTmux = liveSessions[tmux.BranchSessionName(project, branch)]
		}

		infos = append(infos, info)
	}
	return infos, nil
}

// splitWorktreeName reverses the Path derivation in the worktree manager:
// "<project>-<sanitized-branch>" split on the first hyphen.
func splitWorktreeName(name string) (project, branch string) {
	idx := strings.Index(name, "-")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

// parseIssueSuffix recognizes a sanitized branch of the form "issue-<N>".
func parseIssueSuffix(branch string) (int, bool) {
	const prefix = "issue-"
	if !strings.HasPrefix(branch, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(branch[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

func issueOrBranchSessionName(sess *Session) string {
	if sess.IssueRef.IssueNumber != nil {
		return tmux.IssueSessionName(sess.IssueRef.Project, *sess.IssueRef.IssueNumber)
	}
	return tmux.BranchSessionName(sess.IssueRef.Project, sess.BranchName)
}
