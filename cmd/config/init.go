package config

import (
	"fmt"
	"os"
	"path/filepath"

	kconfig "github.com/kestrel-cli/kestrel/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at $HOME/.config/kestrel/config.yaml with all available options.`,
	RunE:  runInit,
}

const defaultConfigTemplate = `# kestrel configuration

# The repository this invocation of kestrel operates on.
project:
  name: ""
  repo_path: ""
  base_branch: main

# Background polling loop that refreshes stats and liveness.
supervisor:
  poll_interval_seconds: 5

# Embedded terminal's default geometry.
terminal:
  rows: 50
  cols: 200

# Retention of terminal (completed/failed) session records.
cleanup:
  max_age_days: 30
  keep_protected_branches: true

# Desktop notifications on session state transitions.
notify:
  enabled: true

# Agent adapters and their CLI overrides.
agents:
  default: claude
  command: {}
`

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	configDir = filepath.Join(configDir, kconfig.AppName)
	configFile := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("wrote default config to %s\n", configFile)
	return nil
}
