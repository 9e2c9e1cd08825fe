package worktree

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every worktree under kestrel's worktrees directory",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return err
	}

	worktreesDir, err := config.WorktreesDir()
	if err != nil {
		return err
	}
	infos, err := session.ListWorktreeInfo(worktreesDir, deps.Store, deps.Tmux)
	if err != nil {
		return fmt.Errorf("failed to list worktrees: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("no worktrees")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()
	fmt.Fprintln(w, "NAME\tBRANCH\tSESSION\tTMUX\tPATH")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n", info.Name, info.Branch, info.HasSession, info.HasTmux, info.Path)
	}
	return nil
}
