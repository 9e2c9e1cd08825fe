// Package worktree manages isolated, branch-scoped git checkouts rooted in
// a central worktrees directory under the user cache, one per dispatched
// session or standalone branch.
package worktree

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kestrel-cli/kestrel/internal/kerrors"
	"github.com/kestrel-cli/kestrel/internal/logging"
)

// Manager creates, lists, and removes worktrees anchored to repoDir, and
// computes diff statistics for them.
type Manager struct {
	repoDir      string
	worktreesDir string
	logger       *logging.Logger
}

// SetLogger attaches a logger; the manager operates silently without one.
func (m *Manager) SetLogger(logger *logging.Logger) {
	m.logger = logger
}

func truncateOutput(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// FindGitRoot walks up from startDir looking for a .git entry (directory or,
// for a worktree checkout, file), returning the directory that contains it.
func FindGitRoot(startDir string) (string, error) {
	dir := startDir
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a git repository (or any parent up to mount point)")
		}
		dir = parent
	}
}

// New creates a Manager rooted at repoDir's git repository, storing new
// worktrees under worktreesDir.
func New(repoDir, worktreesDir string) (*Manager, error) {
	gitRoot, err := FindGitRoot(repoDir)
	if err != nil {
		return nil, kerrors.New(kerrors.Worktree, "New", fmt.Errorf("not a git repository: %s", repoDir))
	}
	if err := os.MkdirAll(worktreesDir, 0755); err != nil {
		return nil, kerrors.New(kerrors.Worktree, "New", err)
	}
	return &Manager{repoDir: gitRoot, worktreesDir: worktreesDir}, nil
}

// SanitizeBranch replaces path separators with "-" so a branch name is safe
// to use as a worktree directory component.
func SanitizeBranch(branch string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(branch)
}

// Path returns the deterministic worktree path for a project/branch pair,
// without creating anything.
func (m *Manager) Path(project, branchName string) string {
	return filepath.Join(m.worktreesDir, fmt.Sprintf("%s-%s", project, SanitizeBranch(branchName)))
}

// Create derives the worktree path from project and branchName, and ensures
// a worktree exists there pinned to branchName. If the path already exists
// it is returned as-is (idempotent, per spec's create_worktree round-trip
// law). If branchName does not already exist in the repository it is
// created from baseBranch, or from the current HEAD if baseBranch is empty.
func (m *Manager) Create(project, branchName, baseBranch string) (worktreePath string, resolvedBranch string, err error) {
	path := m.Path(project, branchName)

	if _, statErr := os.Stat(path); statErr == nil {
		if m.logger != nil {
			m.logger.Info("worktree already exists, reusing", "path", path)
		}
		return path, branchName, nil
	}

	branchExists := m.branchExists(branchName)

	var args []string
	if branchExists {
		args = []string{"worktree", "add", path, branchName}
	} else if baseBranch != "" {
		args = []string{"worktree", "add", "-b", branchName, path, baseBranch}
	} else {
		args = []string{"worktree", "add", "-b", branchName, path}
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = m.repoDir
	output, runErr := cmd.CombinedOutput()
	if m.logger != nil {
		m.logger.Debug("git command", "args", args, "output", truncateOutput(string(output), 500))
	}
	if runErr != nil {
		if m.logger != nil {
			m.logger.Error("git command failed", "args", args, "error", runErr, "output", string(output))
		}
		return "", "", kerrors.WithDetail(kerrors.Worktree, "Create", runErr, string(output))
	}

	if m.logger != nil {
		m.logger.Info("worktree created", "path", path, "branch", branchName)
	}
	return path, branchName, nil
}

func (m *Manager) branchExists(branch string) bool {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = m.repoDir
	return cmd.Run() == nil
}

// Remove detaches the worktree at path from the repository. The branch name
// is captured before detachment so it can optionally be deleted afterward.
// Cleanup sub-steps are best-effort: a failed "worktree remove" falls back
// to recursive directory deletion plus a prune, and a failed branch delete
// never escalates. "main" and "master" are never deleted regardless of
// alsoRemoveBranch.
func (m *Manager) Remove(path string, alsoRemoveBranch bool) error {
	branch, _ := m.GetBranch(path)

	args := []string{"worktree", "remove", "--force", path}
	cmd := exec.Command("git", args...)
	cmd.Dir = m.repoDir
	output, err := cmd.CombinedOutput()
	if m.logger != nil {
		m.logger.Debug("git command", "args", args, "output", truncateOutput(string(output), 500))
	}
	if err != nil {
		if m.logger != nil {
			m.logger.Error("git worktree remove failed, falling back to manual cleanup", "path", path, "error", err, "output", string(output))
		}
		_ = os.RemoveAll(path)
		m.prune()
	}

	if m.logger != nil {
		m.logger.Info("worktree removed", "path", path)
	}

	if alsoRemoveBranch && branch != "" && branch != "main" && branch != "master" {
		if delErr := m.DeleteBranch(branch); delErr != nil && m.logger != nil {
			m.logger.Warn("failed to delete branch during cleanup", "branch", branch, "error", delErr)
		}
	}

	return nil
}

func (m *Manager) prune() {
	cmd := exec.Command("git", "worktree", "prune")
	cmd.Dir = m.repoDir
	_ = cmd.Run()
}

// List returns the absolute paths of all worktrees known to the repository.
func (m *Manager) List() ([]string, error) {
	cmd := exec.Command("git", "worktree", "list", "--porcelain")
	cmd.Dir = m.repoDir

	output, err := cmd.Output()
	if err != nil {
		return nil, kerrors.New(kerrors.Worktree, "List", err)
	}

	var worktrees []string
	for _, line := range strings.Split(string(output), "\n") {
		if path, ok := strings.CutPrefix(line, "worktree "); ok {
			worktrees = append(worktrees, path)
		}
	}
	return worktrees, nil
}

// GetBranch returns the branch a worktree is checked out to.
func (m *Manager) GetBranch(path string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = path

	output, err := cmd.Output()
	if err != nil {
		return "", kerrors.New(kerrors.Worktree, "GetBranch", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// DeleteBranch force-deletes a branch. Refuses to delete "main" or "master".
func (m *Manager) DeleteBranch(branch string) error {
	if branch == "main" || branch == "master" || branch == "" {
		return nil
	}
	cmd := exec.Command("git", "branch", "-D", branch)
	cmd.Dir = m.repoDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return kerrors.WithDetail(kerrors.Worktree, "DeleteBranch", err, string(output))
	}
	return nil
}

// DiffStats computes {added, deleted, filesChanged} for the worktree at
// path. It first diffs against HEAD~1 (the expected case after a single
// agent commit); if that fails (e.g. the branch has zero commits) it falls
// back to diffing against the index. Parse failures and the no-commits
// fallback both return zeros rather than an error, since stats are purely
// observational.
func (m *Manager) DiffStats(path string) (added, deleted, filesChanged int) {
	if a, d, f, ok := m.numstat(path, "HEAD~1"); ok {
		return a, d, f
	}
	if a, d, f, ok := m.numstat(path); ok {
		return a, d, f
	}
	return 0, 0, 0
}

func (m *Manager) numstat(path string, extraArgs ...string) (added, deleted, files int, ok bool) {
	args := append([]string{"diff", "--numstat"}, extraArgs...)
	cmd := exec.Command("git", args...)
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return 0, 0, 0, false
	}
	added, deleted, files = parseNumstat(string(output))
	return added, deleted, files, true
}

// parseNumstat sums added/deleted/files from `git diff --numstat` output.
// It is split out from numstat so it can be unit tested without git.
func parseNumstat(output string) (added, deleted, files int) {
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		files++
		if n, err := strconv.Atoi(fields[0]); err == nil {
			added += n
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			deleted += n
		}
	}
	return added, deleted, files
}
