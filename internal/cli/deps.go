// Package cli wires the engine's components together for a single CLI
// invocation or TUI process: load configuration, open the Session Store,
// and construct the Worktree Manager and Tmux Controller rooted at the
// current repository. Every cmd/ subcommand and internal/tui share this
// construction path so they observe the same store and config.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/logging"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/kestrel-cli/kestrel/internal/tmux"
	"github.com/kestrel-cli/kestrel/internal/tracker"
	"github.com/kestrel-cli/kestrel/internal/worktree"
	"github.com/spf13/viper"
)

// Deps bundles the engine components a CLI command or the TUI needs.
type Deps struct {
	Config    *config.Config
	Store     *session.Store
	Worktrees *worktree.Manager
	Tmux      *tmux.Controller
	Logger    *logging.Logger

	// Tracker is the external issue-tracker/PR collaborator, left nil since
	// kestrel ships no concrete implementation (see internal/tracker).
	// Callers that need issue content or PR creation check for nil and
	// degrade to manual flags/prompts.
	Tracker tracker.Client
}

// LoadConfig reads kestrel's configuration via the process-global viper
// instance, so flags bound by cmd/root.go are honored.
func LoadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// NewDeps loads configuration and constructs every component a command
// needs to operate against the repository at repoDir.
func NewDeps(repoDir string) (*Deps, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	worktreesDir, err := config.WorktreesDir()
	if err != nil {
		return nil, err
	}
	wm, err := worktree.New(repoDir, worktreesDir)
	if err != nil {
		return nil, err
	}

	sessionsFile, err := config.SessionsFile()
	if err != nil {
		return nil, err
	}
	store, err := session.Open(sessionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	agentsLogDir, err := config.AgentsLogDir()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(agentsLogDir, "", logging.LevelInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &Deps{
		Config:    cfg,
		Store:     store,
		Worktrees: wm,
		Tmux:      tmux.New(),
		Logger:    logger,
	}, nil
}

// ProjectName resolves the repository nickname used in worktree paths and
// tmux session names: cfg.Project.Name if set, otherwise repoDir's base
// name.
func ProjectName(cfg *config.Config, repoDir string) string {
	if cfg.Project.Name != "" {
		return cfg.Project.Name
	}
	return filepath.Base(repoDir)
}

// ResolveSession looks up a session by its full ID, or by an unambiguous
// ID prefix (as printed by "kestrel session list").
func ResolveSession(store *session.Store, idOrPrefix string) (*session.Session, error) {
	if sess, ok := store.ByID(idOrPrefix); ok {
		return sess, nil
	}

	var matches []*session.Session
	for _, sess := range store.All() {
		if strings.HasPrefix(sess.ID, idOrPrefix) {
			matches = append(matches, sess)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no session matches %q", idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d sessions; use the full ID", idOrPrefix, len(matches))
	}
}
