package session

import (
	"fmt"
	"os"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/spf13/cobra"
)

var killRemoveWorktree bool

var killCmd = &cobra.Command{
	Use:   "kill <session-id>",
	Short: "End a session's tmux session and mark it failed",
	Args:  cobra.ExactArgs(1),
	RunE:  runKill,
}

func init() {
	killCmd.Flags().BoolVar(&killRemoveWorktree, "remove-worktree", false, "also remove the session's git worktree")
}

func runKill(cmd *cobra.Command, args []string) error {
	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return err
	}

	sess, err := cli.ResolveSession(deps.Store, args[0])
	if err != nil {
		return err
	}

	tmuxName := tmuxNameForSession(sess)
	_ = deps.Tmux.SendKeys(tmuxName, "C-c")
	if err := deps.Tmux.Kill(tmuxName); err != nil {
		return fmt.Errorf("failed to kill tmux session: %w", err)
	}
	if err := deps.Store.UpdateStatus(sess.ID, session.FailedStatus("killed by operator")); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	if killRemoveWorktree {
		if err := deps.Worktrees.Remove(sess.WorktreePath, false); err != nil {
			return fmt.Errorf("failed to remove worktree: %w", err)
		}
	}

	fmt.Printf("killed session %s\n", sess.ID)
	return nil
}

func tmuxNameForSession(sess *session.Session) string {
	if sess.IssueRef.IssueNumber != nil {
		return fmt.Sprintf("%s-issue-%d", sess.IssueRef.Project, *sess.IssueRef.IssueNumber)
	}
	return fmt.Sprintf("%s-%s", sess.IssueRef.Project, sess.BranchName)
}
