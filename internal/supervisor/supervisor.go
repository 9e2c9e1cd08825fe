// Package supervisor implements the Supervisor: one background worker per
// running session that periodically refreshes diff stats, checks tmux
// liveness, classifies the agent as idle or busy, and emits desktop
// notifications on state transitions.
package supervisor

import (
	"fmt"
	"sync"
	"time"

	"github.com/kestrel-cli/kestrel/internal/agent"
	"github.com/kestrel-cli/kestrel/internal/config"
	"github.com/kestrel-cli/kestrel/internal/logging"
	"github.com/kestrel-cli/kestrel/internal/notify"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/kestrel-cli/kestrel/internal/tmux"
	"github.com/kestrel-cli/kestrel/internal/worktree"
)

// tmuxClient is the subset of *tmux.Controller the supervisor depends on,
// narrowed for testability.
type tmuxClient interface {
	Exists(sessionName string) bool
	Capture(sessionName string) (string, bool)
}

// diffStatter is the subset of *worktree.Manager the supervisor depends on.
type diffStatter interface {
	DiffStats(path string) (added, deleted, files int)
}

var (
	_ tmuxClient  = (*tmux.Controller)(nil)
	_ diffStatter = (*worktree.Manager)(nil)
)

// Supervisor spawns and tracks one monitor goroutine per running session.
type Supervisor struct {
	store    *session.Store
	tc       tmuxClient
	wm       diffStatter
	notifier notify.Notifier
	logger   *logging.Logger
	interval time.Duration

	mu      sync.Mutex
	cancels map[string]func()
}

// New constructs a Supervisor. pollInterval is read from
// config.SupervisorConfig.PollIntervalSeconds by the caller.
func New(store *session.Store, tc tmuxClient, wm diffStatter, notifier notify.Notifier, logger *logging.Logger, pollInterval time.Duration) *Supervisor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Supervisor{
		store:    store,
		tc:       tc,
		wm:       wm,
		notifier: notifier,
		logger:   logger,
		interval: pollInterval,
		cancels:  make(map[string]func()),
	}
}

// NewFromConfig is a convenience constructor reading the poll interval from
// cfg, defaulting to 5 seconds if unset.
func NewFromConfig(store *session.Store, tc tmuxClient, wm diffStatter, notifier notify.Notifier, logger *logging.Logger, cfg config.SupervisorConfig) *Supervisor {
	interval := time.Duration(cfg.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return New(store, tc, wm, notifier, logger, interval)
}

// Start spawns a monitor goroutine for sess, tagged with adapter for idle
// classification. alreadyAwaiting suppresses the first idle notification,
// used on resumption so a restart does not re-notify a session that was
// already Awaiting.
func (s *Supervisor) Start(sess *session.Session, a agent.Adapter, alreadyAwaiting bool) {
	s.mu.Lock()
	if _, running := s.cancels[sess.ID]; running {
		s.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	s.cancels[sess.ID] = func() { close(stopCh) }
	s.mu.Unlock()

	go s.monitorLoop(sess.ID, a, alreadyAwaiting, stopCh)
}

// Stop signals the monitor goroutine for sessionID to exit. It does not
// wait for the goroutine to finish.
func (s *Supervisor) Stop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[sessionID]; ok {
		cancel()
		delete(s.cancels, sessionID)
	}
}

// ResumeAll starts a monitor for every session in the store whose status is
// non-terminal and whose tmux session still exists, used on process
// startup to pick back up supervision across restarts. resolve is called
// once per session to obtain its Adapter.
func (s *Supervisor) ResumeAll(resolve func(*session.Session) (agent.Adapter, error)) {
	for _, sess := range s.store.Running() {
		tmuxName := tmuxSessionName(sess)
		if !s.tc.Exists(tmuxName) {
			continue
		}
		a, err := resolve(sess)
		if err != nil {
			s.logger.Warn("could not resolve adapter on resume", "session_id", sess.ID, "error", err.Error())
			continue
		}
		s.Start(sess, a, sess.Status.Kind == session.Awaiting)
	}
}

func tmuxSessionName(sess *session.Session) string {
	if sess.IssueRef.IssueNumber != nil {
		return tmux.IssueSessionName(sess.IssueRef.Project, *sess.IssueRef.IssueNumber)
	}
	return tmux.BranchSessionName(sess.IssueRef.Project, sess.BranchName)
}

// monitorLoop runs until the tmux session disappears or stopCh closes. A
// panic in one session's loop is isolated: it is logged and the goroutine
// exits without affecting other sessions.
func (s *Supervisor) monitorLoop(sessionID string, a agent.Adapter, alreadyAwaiting bool, stopCh chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("supervisor panic recovered", "session_id", sessionID, "panic", fmt.Sprint(r))
		}
		s.mu.Lock()
		delete(s.cancels, sessionID)
		s.mu.Unlock()
	}()

	wasIdle := alreadyAwaiting
	idleNotified := alreadyAwaiting

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		sess, ok := s.store.ByID(sessionID)
		if !ok {
			return
		}

		added, deleted, files := s.wm.DiffStats(sess.WorktreePath)
		stats := session.Stats{
			LinesAdded:   added,
			LinesDeleted: deleted,
			FilesChanged: files,
		}
		if err := s.store.UpdateStats(sessionID, stats); err != nil {
			s.logger.Debug("stats update failed, retrying next cycle", "session_id", sessionID, "error", err.Error())
		}

		tmuxName := tmuxSessionName(sess)
		if !s.tc.Exists(tmuxName) {
			if err := s.store.UpdateStatus(sessionID, session.CompletedStatus(0)); err != nil {
				s.logger.Debug("status update failed", "session_id", sessionID, "error", err.Error())
			}
			_ = s.notifier.Notify(a.Name(), fmt.Sprintf("Session ended for %s", sessionTitle(sess)))
			return
		}

		paneText, ok := s.tc.Capture(tmuxName)
		if !ok {
			continue
		}
		idle := a.IsIdle(paneText)

		switch {
		case idle && !wasIdle:
			if err := s.store.UpdateStatus(sessionID, session.AwaitingStatus()); err != nil {
				s.logger.Debug("status update failed", "session_id", sessionID, "error", err.Error())
			}
			if !idleNotified {
				_ = s.notifier.Notify(a.Name(), fmt.Sprintf("Awaiting input for %s (+%d -%d)", sessionTitle(sess), stats.LinesAdded, stats.LinesDeleted))
				idleNotified = true
			}
		case !idle && wasIdle:
			if err := s.store.UpdateStatus(sessionID, session.RunningStatus()); err != nil {
				s.logger.Debug("status update failed", "session_id", sessionID, "error", err.Error())
			}
			idleNotified = false
		}
		wasIdle = idle
	}
}

func sessionTitle(sess *session.Session) string {
	if sess.IssueRef.IssueNumber != nil {
		return fmt.Sprintf("#%d", *sess.IssueRef.IssueNumber)
	}
	return sess.BranchName
}
