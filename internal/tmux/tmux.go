// Package tmux wraps the external tmux binary, the only process-multiplexing
// mechanism the engine uses: every agent runs inside a named detached tmux
// session, never spawned directly.
//
// kestrel uses a dedicated tmux socket to isolate its sessions from any
// other tmux clients (iTerm2's tmux integration, a developer's own tmux
// server) sharing the host, avoiding control-mode notification crashes that
// occur when unrelated clients share a server.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kestrel-cli/kestrel/internal/kerrors"
)

// SocketName is the dedicated tmux socket kestrel uses for all sessions.
const SocketName = "kestrel"

// SessionPrefix is empty and no code reads it: session names carry no
// prefix, and List returns every session on the dedicated socket unfiltered.
const SessionPrefix = ""

// IssueSessionName returns the deterministic session name for an
// issue-driven dispatch: "<project>-issue-<issueNumber>".
func IssueSessionName(project string, issueNumber int) string {
	return fmt.Sprintf("%s-issue-%d", project, issueNumber)
}

// BranchSessionName returns the deterministic session name for a
// branch-driven dispatch: "<project>-<branch>". It does not sanitize the
// branch, and its callers pass Session.BranchName unchanged, so a "/" in
// the branch name stays in the session name.
func BranchSessionName(project, sanitizedBranch string) string {
	return fmt.Sprintf("%s-%s", project, sanitizedBranch)
}

// Controller wraps tmux CLI invocations on the dedicated socket.
type Controller struct {
	socket string
}

// New returns a Controller bound to the dedicated kestrel socket.
func New() *Controller {
	return &Controller{socket: SocketName}
}

func (c *Controller) command(args ...string) *exec.Cmd {
	return exec.Command("tmux", append([]string{"-L", c.socket}, args...)...)
}

func (c *Controller) commandContext(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, "tmux", append([]string{"-L", c.socket}, args...)...)
}

// Create starts a detached session named sessionName running shellCommand
// inside a login shell, sized rows x cols.
func (c *Controller) Create(sessionName, shellCommand string, rows, cols int) error {
	args := []string{
		"new-session", "-d", "-s", sessionName,
		"-x", strconv.Itoa(cols), "-y", strconv.Itoa(rows),
		"bash", "-lc", shellCommand,
	}
	cmd := c.command(args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return kerrors.WithDetail(kerrors.Process, "tmux.Create", err, string(output))
	}
	return nil
}

// Exists reports whether sessionName is a live tmux session. Because
// session names are deterministic, this can be probed without consulting
// the Session Store.
func (c *Controller) Exists(sessionName string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := c.commandContext(ctx, "has-session", "-t", sessionName)
	return cmd.Run() == nil
}

// List returns every live session name on the dedicated socket.
func (c *Controller) List() ([]string, error) {
	cmd := c.command("list-sessions", "-F", "#{session_name}")
	output, err := cmd.Output()
	if err != nil {
		// An empty socket (no sessions at all) exits non-zero; treat that as
		// an empty list rather than an error.
		if exitErr, ok := err.(*exec.ExitError); ok && strings.Contains(string(exitErr.Stderr), "no server running") {
			return nil, nil
		}
		if strings.Contains(err.Error(), "exit status 1") {
			return nil, nil
		}
		return nil, kerrors.New(kerrors.Process, "tmux.List", err)
	}

	var names []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// Capture returns the last ~50 lines of sessionName's visible pane buffer.
// Returns ("", false) if the session does not exist or capture fails.
func (c *Controller) Capture(sessionName string) (string, bool) {
	cmd := c.command("capture-pane", "-t", sessionName, "-p", "-S", "-50")
	output, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return string(output), true
}

// Kill destroys sessionName's tmux session. A missing session is not an
// error (kill is idempotent per the spec's round-trip law).
func (c *Controller) Kill(sessionName string) error {
	cmd := c.command("kill-session", "-t", sessionName)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if strings.Contains(string(output), "can't find session") {
			return nil
		}
		return kerrors.WithDetail(kerrors.Process, "tmux.Kill", err, string(output))
	}
	return nil
}

// AttachCommand returns the shell command string the embedded terminal
// executes over its own PTY to wire into sessionName.
func (c *Controller) AttachCommand(sessionName string) string {
	return fmt.Sprintf("tmux -L %s attach -t %s", c.socket, sessionName)
}

// SendKeys forwards keys into sessionName; tmux key names such as "C-c" are
// interpreted rather than sent literally. The kill paths use it to send
// Ctrl+C before a hard kill.
func (c *Controller) SendKeys(sessionName, keys string) error {
	cmd := c.command("send-keys", "-t", sessionName, keys)
	return cmd.Run()
}

// PanePID returns the PID of the process running in sessionName's pane, or
// 0 if it cannot be determined.
func (c *Controller) PanePID(sessionName string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := c.commandContext(ctx, "display-message", "-t", sessionName, "-p", "#{pane_pid}")
	output, err := cmd.Output()
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0
	}
	return pid
}
