// Package cmd provides kestrel's CLI command structure. Commands are
// organized into domain-specific subpackages: session/ (dispatch, list,
// kill, attach, cleanup, logs), worktree/ (create, list, prune), and
// config/ (show, init).
package cmd

import (
	"os"

	"github.com/kestrel-cli/kestrel/cmd/config"
	"github.com/kestrel-cli/kestrel/cmd/session"
	"github.com/kestrel-cli/kestrel/cmd/worktree"
	"github.com/kestrel-cli/kestrel/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "Fleet controller for terminal-based coding agents",
	Long: `kestrel dispatches coding agents (Claude Code, Opencode, ...) into
isolated git worktrees, each running inside its own tmux session, and
supervises them until they finish or need input.

Run with no subcommand to open the operator interface: a live view of
every dispatched session that also hosts the Supervisor for as long as
it stays open. The session/worktree/config subcommands are headless
equivalents for scripting.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	app, err := tui.New(repoDir)
	if err != nil {
		return err
	}
	return app.Run()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/kestrel/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	session.Register(rootCmd)
	worktree.Register(rootCmd)
	config.Register(rootCmd)
}
