package session

import (
	"fmt"
	"os"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/spf13/cobra"
)

var cleanupMaxAgeDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Evict old terminal (completed/failed) session records",
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupMaxAgeDays, "max-age-days", 0, "override cleanup.max_age_days from config")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return err
	}

	maxAge := cleanupMaxAgeDays
	if maxAge <= 0 {
		maxAge = deps.Config.Cleanup.MaxAgeDays
	}
	if maxAge <= 0 {
		fmt.Println("cleanup.max_age_days is 0; nothing to do")
		return nil
	}

	removed, err := deps.Store.CleanupOld(maxAge)
	if err != nil {
		return fmt.Errorf("failed to clean up session store: %w", err)
	}
	if len(removed) == 0 {
		fmt.Println("no sessions older than the retention window")
		return nil
	}
	fmt.Printf("removed %d session record(s)\n", len(removed))
	return nil
}
