package session

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kestrel-cli/kestrel/internal/agent"
	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/logging"
	"github.com/kestrel-cli/kestrel/internal/notify"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/kestrel-cli/kestrel/internal/supervisor"
	"github.com/spf13/cobra"
)

var (
	dispatchIssue      int
	dispatchBranch     string
	dispatchTitle      string
	dispatchPrompt     string
	dispatchAgentKind  string
	dispatchBaseBranch string
	dispatchDetach     bool
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Carve a worktree, launch an agent inside tmux, and supervise it",
	Long: `dispatch performs the engine's core atomic flow: it creates (or
reuses) a git worktree, builds the agent's launch command, starts a
detached tmux session running it, and persists a Session Store record.

By default dispatch then blocks in the foreground, supervising the new
session (refreshing diff stats, watching for idle/awaiting transitions,
sending desktop notifications) until the session finishes. Pass
--detach to return as soon as the session record exists; in that case
supervision resumes the next time kestrel runs with no subcommand (the
operator interface).`,
	RunE: runDispatch,
}

func init() {
	dispatchCmd.Flags().IntVar(&dispatchIssue, "issue", 0, "GitHub issue number this session addresses")
	dispatchCmd.Flags().StringVar(&dispatchBranch, "branch", "", "branch name for a standalone (non-issue) dispatch")
	dispatchCmd.Flags().StringVar(&dispatchTitle, "title", "", "short human-readable title for the session")
	dispatchCmd.Flags().StringVar(&dispatchPrompt, "prompt", "", "initial prompt handed to the agent")
	dispatchCmd.Flags().StringVar(&dispatchAgentKind, "agent", "", "agent adapter to use (default: agents.default from config)")
	dispatchCmd.Flags().StringVar(&dispatchBaseBranch, "base", "", "base branch for a new branch (default: project.base_branch)")
	dispatchCmd.Flags().BoolVar(&dispatchDetach, "detach", false, "return immediately instead of supervising in the foreground")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	if dispatchIssue == 0 && dispatchBranch == "" {
		return fmt.Errorf("one of --issue or --branch is required")
	}

	repoDir, err := os.Getwd()
	if err != nil {
		return err
	}
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return err
	}

	project := cli.ProjectName(deps.Config, repoDir)
	baseBranch := dispatchBaseBranch
	if baseBranch == "" {
		baseBranch = deps.Config.Project.BaseBranch
	}

	var (
		branchName string
		issueRef   session.IssueRef
		title      = dispatchTitle
	)
	if dispatchIssue != 0 {
		issueNum := dispatchIssue
		issueRef = session.IssueRef{Project: project, IssueNumber: &issueNum}
		if existing, ok := deps.Store.ByIssue(project, issueNum); ok {
			return fmt.Errorf("session %s is already running or awaiting input for issue #%d", existing.ID, issueNum)
		}
		branchName = fmt.Sprintf("issue-%d", issueNum)
		if deps.Tracker != nil && (title == "" || dispatchPrompt == "") {
			if fetched, ferr := deps.Tracker.FetchIssue(cmd.Context(), project, issueNum); ferr != nil {
				deps.Logger.Debug("failed to fetch issue, falling back to flags", "issue", issueNum, "error", ferr.Error())
			} else {
				if title == "" {
					title = fetched.Title
				}
				if dispatchPrompt == "" {
					dispatchPrompt = fetched.Body
				}
			}
		}
		if title == "" {
			title = fmt.Sprintf("#%d", issueNum)
		}
	} else {
		issueRef = session.IssueRef{Project: project}
		branchName = dispatchBranch
		if title == "" {
			title = dispatchBranch
		}
	}

	worktreePath, resolvedBranch, err := deps.Worktrees.Create(project, branchName, baseBranch)
	if err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}

	agentKind := session.AgentKind(dispatchAgentKind)
	if agentKind == "" {
		agentKind = session.AgentKind(deps.Config.Agents.Default)
	}
	a, err := agent.New(agentKind, &deps.Config.Agents)
	if err != nil {
		return err
	}

	tmuxName := sessionTmuxName(issueRef, resolvedBranch)
	launchCmd := a.BuildLaunchCommand(worktreePath, dispatchPrompt)
	if err := deps.Tmux.Create(tmuxName, launchCmd, deps.Config.Terminal.Rows, deps.Config.Terminal.Cols); err != nil {
		return fmt.Errorf("failed to start tmux session: %w", err)
	}

	sess := &session.Session{
		IssueRef:     issueRef,
		Title:        title,
		Status:       session.RunningStatus(),
		WorktreePath: worktreePath,
		BranchName:   resolvedBranch,
		AgentKind:    agentKind,
	}
	if err := deps.Store.Add(sess); err != nil {
		return fmt.Errorf("failed to persist session record: %w", err)
	}

	agentsLogDir, logDirErr := config.AgentsLogDir()
	if logDirErr == nil {
		sess.LogPath = filepath.Join(agentsLogDir, sess.ID+".log")
		if err := deps.Store.Save(); err != nil {
			deps.Logger.Debug("failed to persist log path", "session_id", sess.ID, "error", err.Error())
		}
		if sessionLogger, err := logging.NewLogger(agentsLogDir, sess.ID, logging.LevelInfo); err == nil {
			sessionLogger = sessionLogger.WithPhase("dispatch")
			sessionLogger.Info("session dispatched", "tmux_session", tmuxName, "worktree", worktreePath, "agent", string(agentKind))
			_ = sessionLogger.Close()
		}
	}

	sup := supervisor.NewFromConfig(deps.Store, deps.Tmux, deps.Worktrees, notify.System(deps.Config.Notify.Enabled), deps.Logger, deps.Config.Supervisor)
	sup.Start(sess, a, false)

	fmt.Printf("dispatched session %s (%s) in %s\n", sess.ID, title, worktreePath)

	if dispatchDetach {
		return nil
	}
	return waitForInterruptOrCompletion(deps, sess.ID)
}

// sessionTmuxName derives the deterministic tmux session name for a dispatch.
func sessionTmuxName(issueRef session.IssueRef, branchName string) string {
	if issueRef.IssueNumber != nil {
		return fmt.Sprintf("%s-issue-%d", issueRef.Project, *issueRef.IssueNumber)
	}
	return fmt.Sprintf("%s-%s", issueRef.Project, branchName)
}

// waitForInterruptOrCompletion blocks the foreground dispatch process until
// the dispatched session reaches a terminal status or the operator sends
// SIGINT/SIGTERM. A one-shot "dispatch" invocation is this session's sole
// supervisor for as long as it stays in the foreground; an interrupt leaves
// the tmux session running, to be picked up the next time kestrel runs with
// no subcommand.
func waitForInterruptOrCompletion(deps *cli.Deps, sessionID string) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			fmt.Println("\ndispatch interrupted; session continues running under tmux and will be resumed the next time kestrel runs with no subcommand")
			return nil
		case <-ticker.C:
			sess, ok := deps.Store.ByID(sessionID)
			if !ok || sess.Status.IsTerminal() {
				fmt.Println("session finished")
				return nil
			}
		}
	}
}
