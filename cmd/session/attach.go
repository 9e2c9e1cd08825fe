package session

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/tmux"
	"github.com/spf13/cobra"
)

var attachCmd = &cobra.Command{
	Use:   "attach <session-id>",
	Short: "Attach to a session's tmux pane",
	Long: `attach execs tmux directly against the session's detached tmux
session, inheriting the operator's own terminal. The TUI's session
detail pane instead routes the same tmux attach command through the
embedded terminal (internal/termview) so it can render inline; a bare
CLI attach has no need for that indirection.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

func runAttach(cmd *cobra.Command, args []string) error {
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
	if !deps.Tmux.Exists(tmuxName) {
		return fmt.Errorf("tmux session %s is not running", tmuxName)
	}

	attach := exec.Command("tmux", "-L", tmux.SocketName, "attach", "-t", tmuxName)
	attach.Stdin = os.Stdin
	attach.Stdout = os.Stdout
	attach.Stderr = os.Stderr
	return attach.Run()
}
