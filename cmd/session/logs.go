package session

import (
	"fmt"
	"os"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/logging"
	"github.com/spf13/cobra"
)

var (
	logsLevel  string
	logsPhase  string
	logsSearch string
	logsExport string
	logsFormat string
)

var logsCmd = &cobra.Command{
	Use:   "logs <session-id>",
	Short: "View or export a session's structured agent log",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "minimum log level (DEBUG, INFO, WARN, ERROR)")
	logsCmd.Flags().StringVar(&logsPhase, "phase", "", "filter to a single phase (dispatch, supervisor, terminal, cleanup)")
	logsCmd.Flags().StringVar(&logsSearch, "contains", "", "filter to messages containing this substring")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "write the filtered log to this file instead of stdout")
	logsCmd.Flags().StringVar(&logsFormat, "format", "text", "export format: text, json, or csv")
}

func runLogs(cmd *cobra.Command, args []string) error {
	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return err
	}

	sess, err := cli.ResolveSession(deps.Store, args[0])
	if err != nil {
		return err
	}

	agentsLogDir, err := config.AgentsLogDir()
	if err != nil {
		return err
	}
	entries, err := logging.AggregateLogs(agentsLogDir, sess.ID)
	if err != nil {
		return err
	}

	filtered := logging.FilterLogs(entries, logging.LogFilter{
		Level:           logsLevel,
		Phase:           logsPhase,
		MessageContains: logsSearch,
	})

	if logsExport != "" {
		if err := logging.ExportLogEntries(filtered, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Printf("exported %d entries to %s\n", len(filtered), logsExport)
		return nil
	}

	for _, entry := range filtered {
		fmt.Printf("[%s] %s %s\n", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)
	}
	return nil
}
