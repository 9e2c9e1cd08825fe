package worktree

import (
	"fmt"
	"os"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/spf13/cobra"
)

var createBaseBranch string

var createCmd = &cobra.Command{
	Use:   "create <branch>",
	Short: "Create (or reuse) a worktree for a branch, with no tmux session or Session Store record",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createBaseBranch, "base", "", "base branch for a new branch (default: project.base_branch)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return err
	}

	project := cli.ProjectName(deps.Config, repoDir)
	baseBranch := createBaseBranch
	if baseBranch == "" {
		baseBranch = deps.Config.Project.BaseBranch
	}

	path, resolvedBranch, err := deps.Worktrees.Create(project, args[0], baseBranch)
	if err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	fmt.Printf("worktree for %s ready at %s\n", resolvedBranch, path)
	return nil
}
