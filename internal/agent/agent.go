// Package agent implements the Agent Adapter: a small closed set of
// per-CLI-tool strategies for building the shell command that launches a
// coding agent inside a worktree, and for classifying a captured tmux pane
// as idle (awaiting input) or busy.
package agent

import (
	"fmt"
	"strings"

	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/session"
)

// Adapter provides agent-specific behavior for launching and monitoring a
// coding agent session.
type Adapter interface {
	// Kind returns the closed-enum tag identifying this adapter.
	Kind() session.AgentKind

	// Name is the human-readable name used in notifications.
	Name() string

	// CLICommand is the executable this adapter invokes.
	CLICommand() string

	// BuildLaunchCommand returns a single shell string that, run in a new
	// shell, cd's into worktreePath and invokes the agent with prompt as
	// its initial input.
	BuildLaunchCommand(worktreePath, prompt string) string

	// IsIdle reports whether paneContent (the last lines of a captured
	// tmux pane) indicates the agent is waiting for user input.
	IsIdle(paneContent string) bool
}

// ErrUnknownAgent is returned by New for an unrecognized agent kind.
var ErrUnknownAgent = fmt.Errorf("unknown agent kind")

// New constructs the Adapter for kind, using cfg to resolve the configured
// CLI command (falling back to the adapter's default binary name).
func New(kind session.AgentKind, cfg *config.AgentsConfig) (Adapter, error) {
	command := ""
	if cfg != nil {
		command = cfg.Command[string(kind)]
	}

	switch kind {
	case session.AgentClaude:
		return NewClaudeAdapter(command), nil
	case session.AgentOpencode:
		return NewOpencodeAdapter(command), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, kind)
	}
}

// shellSingleQuote wraps s in single quotes, escaping any embedded single
// quotes so the result is safe to interpolate into a `sh -c` string.
func shellSingleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// lastNonEmptyLines returns up to n trailing non-empty lines of s, in
// their original order (oldest first, like the source text).
func lastNonEmptyLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	var collected []string
	for i := len(lines) - 1; i >= 0 && len(collected) < n; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		collected = append(collected, lines[i])
	}
	// collected is newest-first; reverse to match source order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}
