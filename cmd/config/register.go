// Package config provides CLI commands for inspecting and bootstrapping
// kestrel's configuration file.
package config

import "github.com/spf13/cobra"

// Register adds the config command group to parent.
func Register(parent *cobra.Command) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize kestrel's configuration",
	}
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(initCmd)
	parent.AddCommand(configCmd)
}
