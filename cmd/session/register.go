// Package session provides CLI commands for managing kestrel sessions:
// dispatching new ones, listing, killing, attaching, cleaning up old
// records, viewing logs, and recording pull requests.
package session

import "github.com/spf13/cobra"

// Register adds the session command group to parent.
func Register(parent *cobra.Command) {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage dispatched agent sessions",
	}
	sessionCmd.AddCommand(dispatchCmd)
	sessionCmd.AddCommand(listCmd)
	sessionCmd.AddCommand(killCmd)
	sessionCmd.AddCommand(attachCmd)
	sessionCmd.AddCommand(cleanupCmd)
	sessionCmd.AddCommand(logsCmd)
	sessionCmd.AddCommand(prCmd)
	parent.AddCommand(sessionCmd)
}
