package config

import (
	"fmt"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Println("Config file: (none - using defaults)")
	}
	fmt.Println()

	fmt.Println("project:")
	fmt.Printf("  name: %s\n", cfg.Project.Name)
	fmt.Printf("  repo_path: %s\n", cfg.Project.RepoPath)
	fmt.Printf("  base_branch: %s\n", cfg.Project.BaseBranch)

	fmt.Println("supervisor:")
	fmt.Printf("  poll_interval_seconds: %d\n", cfg.Supervisor.PollIntervalSeconds)

	fmt.Println("terminal:")
	fmt.Printf("  rows: %d\n", cfg.Terminal.Rows)
	fmt.Printf("  cols: %d\n", cfg.Terminal.Cols)

	fmt.Println("cleanup:")
	fmt.Printf("  max_age_days: %d\n", cfg.Cleanup.MaxAgeDays)

	fmt.Println("notify:")
	fmt.Printf("  enabled: %v\n", cfg.Notify.Enabled)

	fmt.Println("agents:")
	fmt.Printf("  default: %s\n", cfg.Agents.Default)
	for kind, command := range cfg.Agents.Command {
		fmt.Printf("  command.%s: %s\n", kind, command)
	}

	return nil
}
