package worktree

import (
	"fmt"
	"os"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/spf13/cobra"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove worktrees with no Session Store record and no live tmux session",
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "print what would be removed without removing it")
}

func runPrune(cmd *cobra.Command, args []string) error {
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

	var removed int
	for _, info := range infos {
		if info.HasSession || info.HasTmux {
			continue
		}
		if pruneDryRun {
			fmt.Printf("would remove orphaned worktree %s\n", info.Path)
			continue
		}
		if err := deps.Worktrees.Remove(info.Path, true); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove %s: %v\n", info.Path, err)
			continue
		}
		fmt.Printf("removed orphaned worktree %s\n", info.Path)
		removed++
	}
	if !pruneDryRun && removed == 0 {
		fmt.Println("no orphaned worktrees found")
	}
	return nil
}
