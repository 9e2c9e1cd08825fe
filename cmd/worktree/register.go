// Package worktree provides CLI commands for managing git worktrees
// directly, outside of a full session dispatch: creating a standalone
// worktree, listing every worktree known to the engine, and pruning
// orphans that no longer have a live session or tmux pane.
package worktree

import "github.com/spf13/cobra"

// Register adds the worktree command group to parent.
func Register(parent *cobra.Command) {
	worktreeCmd := &cobra.Command{
		Use:   "worktree",
		Short: "Manage git worktrees",
	}
	worktreeCmd.AddCommand(createCmd)
	worktreeCmd.AddCommand(listCmd)
	worktreeCmd.AddCommand(pruneCmd)
	parent.AddCommand(worktreeCmd)
}
