// Package session implements the Session Store: a persistent mapping from
// session ID to session record, serialized atomically to a single JSON file
// in the user cache directory.
package session

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a session. Exactly one of the fields
// below is meaningful depending on Kind.
type Status struct {
	Kind     StatusKind `json:"kind"`
	ExitCode int        `json:"exit_code,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// StatusKind enumerates the session lifecycle states.
type StatusKind string

const (
	Running   StatusKind = "running"
	Awaiting  StatusKind = "awaiting"
	Completed StatusKind = "completed"
	Failed    StatusKind = "failed"
)

// IsTerminal reports whether status ends the session's lifecycle.
func (s Status) IsTerminal() bool {
	return s.Kind == Completed || s.Kind == Failed
}

// RunningStatus, AwaitingStatus, CompletedStatus and FailedStatus build the
// Status values for each kind.
func RunningStatus() Status  { return Status{Kind: Running} }
func AwaitingStatus() Status { return Status{Kind: Awaiting} }
func CompletedStatus(exitCode int) Status {
	return Status{Kind: Completed, ExitCode: exitCode}
}
func FailedStatus(errText string) Status {
	return Status{Kind: Failed, Error: errText}
}

// IssueRef identifies the GitHub issue (if any) a session was dispatched
// from, plus the project it belongs to. IssueNumber is nil for standalone
// worktrees not tied to an issue.
type IssueRef struct {
	Project     string `json:"project"`
	IssueNumber *int   `json:"issue_number,omitempty"`
}

// Stats are diff statistics refreshed by the Supervisor. All fields are
// non-negative and, for a fixed commit history, non-decreasing between
// consecutive observations.
type Stats struct {
	LinesAdded   int `json:"lines_added"`
	LinesDeleted int `json:"lines_deleted"`
	FilesChanged int `json:"files_changed"`
	LinesOutput  int `json:"lines_output"`
}

// AgentKind tags which Agent Adapter drives a session.
type AgentKind string

const (
	AgentClaude   AgentKind = "claude"
	AgentOpencode AgentKind = "opencode"
)

// Session is a single record in the Session Store. New fields must be
// optional (omitempty) so older and newer engines can interoperate reading
// the same sessions.json.
type Session struct {
	ID           string    `json:"id"`
	IssueRef     IssueRef  `json:"issue_ref"`
	Title        string    `json:"title"`
	StartedAt    time.Time `json:"started_at"`
	Status       Status    `json:"status"`
	LogPath      string    `json:"log_path"`
	WorktreePath string    `json:"worktree_path"`
	BranchName   string    `json:"branch_name"`
	Stats        Stats     `json:"stats"`
	PRURL        string    `json:"pr_url,omitempty"`
	AgentKind    AgentKind `json:"agent_kind"`
}

// IsRunningOrAwaiting reports whether s is in a non-terminal status.
func (s *Session) IsRunningOrAwaiting() bool {
	return s.Status.Kind == Running || s.Status.Kind == Awaiting
}

// Duration returns a human-readable elapsed time since the session
// started, in the coarsest two units that apply (e.g. "3m 12s", "1h 4m").
func (s *Session) Duration() string {
	return formatDuration(time.Since(s.StartedAt))
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
