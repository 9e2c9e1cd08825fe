package agent

import (
	"fmt"
	"strings"

	"github.com/kestrel-cli/kestrel/internal/session"
)

// ClaudeAdapter drives Claude Code.
type ClaudeAdapter struct {
	command string
}

// NewClaudeAdapter returns a ClaudeAdapter invoking command, or "claude" if
// command is empty.
func NewClaudeAdapter(command string) *ClaudeAdapter {
	if command == "" {
		command = "claude"
	}
	return &ClaudeAdapter{command: command}
}

func (a *ClaudeAdapter) Kind() session.AgentKind { return session.AgentClaude }

func (a *ClaudeAdapter) Name() string { return "Claude Code" }

func (a *ClaudeAdapter) CLICommand() string { return a.command }

func (a *ClaudeAdapter) BuildLaunchCommand(worktreePath, prompt string) string {
	return fmt.Sprintf("cd %s && %s %s", shellSingleQuote(worktreePath), a.command, shellSingleQuote(prompt))
}

// IsIdle checks the last few non-empty lines of a captured pane for
// Claude Code's input prompt or permission/selection dialogs.
func (a *ClaudeAdapter) IsIdle(paneContent string) bool {
	for _, line := range lastNonEmptyLines(paneContent, 5) {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == ">" || strings.HasPrefix(trimmed, "> ") {
			return true
		}
		if strings.Contains(trimmed, "Enter to select") {
			return true
		}
		if trimmed == "Esc to cancel" {
			return true
		}
	}
	return false
}
