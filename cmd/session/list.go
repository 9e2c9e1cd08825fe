package session

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/spf13/cobra"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List dispatched sessions",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "include completed and failed sessions")
}

func runList(cmd *cobra.Command, args []string) error {
	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return err
	}

	var sessions []*session.Session
	for _, sess := range deps.Store.All() {
		if !listAll && sess.Status.IsTerminal() {
			continue
		}
		sessions = append(sessions, sess)
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tBRANCH\tDURATION\t+/-\tAGENT")
	for _, sess := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t+%d/-%d\t%s\n",
			shortID(sess.ID), sess.Title, sess.Status.Kind, sess.BranchName,
			sess.Duration(), sess.Stats.LinesAdded, sess.Stats.LinesDeleted, sess.AgentKind)
	}
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
