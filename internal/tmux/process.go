package tmux

import (
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// GracefulStopTimeout is how long GracefulShutdown waits after sending
// Ctrl+C before force-killing the session's process tree.
const GracefulStopTimeout = 500 * time.Millisecond

// IsProcessAlive reports whether pid exists, via kill(pid, 0) which checks
// existence without delivering a signal.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}

// DescendantPIDs returns all descendant PIDs of pid (recursive, via pgrep).
func DescendantPIDs(pid int) []int {
	if pid <= 0 {
		return nil
	}
	cmd := exec.Command("pgrep", "-P", strconv.Itoa(pid))
	output, err := cmd.Output()
	if err != nil {
		return nil
	}

	var descendants []int
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		childPID, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		descendants = append(descendants, childPID)
		descendants = append(descendants, DescendantPIDs(childPID)...)
	}
	return descendants
}

// KillProcessTree sends SIGKILL to pid and all its descendants, deepest
// first, to avoid orphaning children mid-kill.
func KillProcessTree(pid int) {
	if pid <= 0 {
		return
	}
	descendants := DescendantPIDs(pid)
	for i := len(descendants) - 1; i >= 0; i-- {
		if IsProcessAlive(descendants[i]) {
			_ = unix.Kill(descendants[i], unix.SIGKILL)
		}
	}
	if IsProcessAlive(pid) {
		_ = unix.Kill(pid, unix.SIGKILL)
	}
}

// WaitForProcessExit polls until pid exits or timeout elapses, returning
// true if it exited within the timeout.
func WaitForProcessExit(pid int, timeout time.Duration) bool {
	if pid <= 0 || !IsProcessAlive(pid) {
		return true
	}
	deadline := time.After(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			return !IsProcessAlive(pid)
		case <-ticker.C:
			if !IsProcessAlive(pid) {
				return true
			}
		}
	}
}

// GracefulShutdown performs a defense-in-depth teardown of sessionName: it
// captures the pane's process tree, sends Ctrl+C, polls for exit, kills the
// tmux session, then force-kills any survivors. The kill commands in
// cmd/session and internal/tui do not call it; they send Ctrl+C and kill
// the tmux session directly.
func (c *Controller) GracefulShutdown(sessionName string) {
	panePID := c.PanePID(sessionName)
	var pids []int
	if panePID > 0 {
		pids = append([]int{panePID}, DescendantPIDs(panePID)...)
	}

	_ = c.SendKeys(sessionName, "C-c")
	WaitForProcessExit(panePID, GracefulStopTimeout)

	_ = c.Kill(sessionName)

	for _, pid := range pids {
		if IsProcessAlive(pid) {
			KillProcessTree(pid)
		}
	}
}
