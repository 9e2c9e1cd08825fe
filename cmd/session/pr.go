package session

import (
	"fmt"
	"os"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/spf13/cobra"
)

var prURL string

var prCmd = &cobra.Command{
	Use:   "pr <session-id>",
	Short: "Open or record a pull request for a session",
	Long: `pr opens a pull request for the session's branch via the configured
tracker.Client and records the resulting URL, or, with --url, records a
URL the operator opened manually. kestrel ships no concrete tracker
implementation, so --url is the only path available until one is wired.`,
	Args: cobra.ExactArgs(1),
	RunE: runPR,
}

func init() {
	prCmd.Flags().StringVar(&prURL, "url", "", "pull request URL to record (used when no tracker.Client is configured)")
}

func runPR(cmd *cobra.Command, args []string) error {
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

	url := prURL
	if url == "" {
		if deps.Tracker == nil {
			return fmt.Errorf("no tracker configured; pass --url to record a manually opened pull request")
		}
		project := cli.ProjectName(deps.Config, repoDir)
		url, err = deps.Tracker.OpenPullRequest(cmd.Context(), project, sess.BranchName, sess.Title, "")
		if err != nil {
			return fmt.Errorf("failed to open pull request: %w", err)
		}
	}

	if err := deps.Store.SetPRURL(sess.ID, url); err != nil {
		return err
	}
	fmt.Printf("recorded pull request for session %s: %s\n", sess.ID, url)
	return nil
}
