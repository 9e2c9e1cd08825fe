package tui

import (
	"fmt"

	"github.com/kestrel-cli/kestrel/internal/cli"

	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the bubbletea program driving the operator interface.
type App struct {
	program *tea.Program
}

// New constructs the App for repoDir's project, wiring the engine
// components via internal/cli and resuming supervision of any sessions
// left running from a previous process.
func New(repoDir string) (*App, error) {
	deps, err := cli.NewDeps(repoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	project := cli.ProjectName(deps.Config, repoDir)

	model := newModel(deps, repoDir, project)
	program := tea.NewProgram(model, tea.WithAltScreen())
	return &App{program: program}, nil
}

// Run starts the bubbletea event loop and blocks until the operator quits.
func (a *App) Run() error {
	_, err := a.program.Run()
	return err
}
