package agent

import (
	"fmt"
	"strings"

	"github.com/kestrel-cli/kestrel/internal/session"
)

// OpencodeAdapter drives the Opencode CLI.
type OpencodeAdapter struct {
	command string
}

// NewOpencodeAdapter returns an OpencodeAdapter invoking command, or
// "opencode" if command is empty.
func NewOpencodeAdapter(command string) *OpencodeAdapter {
	if command == "" {
		command = "opencode"
	}
	return &OpencodeAdapter{command: command}
}

func (a *OpencodeAdapter) Kind() session.AgentKind { return session.AgentOpencode }

func (a *OpencodeAdapter) Name() string { return "Opencode" }

func (a *OpencodeAdapter) CLICommand() string { return a.command }

func (a *OpencodeAdapter) BuildLaunchCommand(worktreePath, prompt string) string {
	return fmt.Sprintf("cd %s && %s --prompt %s", shellSingleQuote(worktreePath), a.command, shellSingleQuote(prompt))
}

// IsIdle checks the last non-empty lines of a captured pane for Opencode's
// idle footer or permission-prompt text.
func (a *OpencodeAdapter) IsIdle(paneContent string) bool {
	for _, line := range lastNonEmptyLines(paneContent, 10) {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "tab switch agent") || strings.Contains(trimmed, "ctrl+p command") {
			return true
		}
		if strings.Contains(trimmed, "Permission required to run this tool:") {
			return true
		}
		if strings.Contains(trimmed, "enter accept") && strings.Contains(trimmed, "a accept always") {
			return true
		}
	}
	return false
}
