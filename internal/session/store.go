package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

const lockFileName = "sessions.lock"

// fileLock provides cross-process mutual exclusion using flock(2), guarding
// the sessions.json file against concurrent writers from multiple kestrel
// processes.
type fileLock struct {
	path string
	file *os.File
}

func newFileLock(storeDir string) *fileLock {
	return &fileLock{path: filepath.Join(storeDir, lockFileName)}
}

func (fl *fileLock) Lock() error {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return fmt.Errorf("flock: %w", err)
	}
	fl.file = f
	return nil
}

func (fl *fileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}
	_ = syscall.Flock(int(fl.file.Fd()), syscall.LOCK_UN)
	err := fl.file.Close()
	fl.file = nil
	return err
}

// fileFormat is the on-disk shape of sessions.json.
type fileFormat struct {
	Sessions []*Session `json:"sessions"`
}

// Store is a persistent, process-safe mapping from session ID to Session
// record, serialized atomically to a single JSON file.
type Store struct {
	path string
	mu   sync.RWMutex
	byID map[string]*Session
}

// Open loads (or initializes) the session store at path, creating its
// parent directory if needed. A missing or corrupted file is treated as an
// empty store rather than an error, so a fresh cache directory or a
// half-written file from a crash never blocks startup.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	s := &Store{path: path, byID: make(map[string]*Session)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load re-reads the store file from disk, replacing the in-memory state.
// Used at startup and after an external edit is observed via Watch.
func (s *Store) Load() error {
	fl := newFileLock(filepath.Dir(s.path))
	if err := fl.Lock(); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.byID = make(map[string]*Session)
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read sessions file: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		// A corrupted store is not fatal: start empty rather than wedging
		// the engine, matching the "tolerate unknown/bad data" contract.
		s.mu.Lock()
		s.byID = make(map[string]*Session)
		s.mu.Unlock()
		return nil
	}

	byID := make(map[string]*Session, len(ff.Sessions))
	for _, sess := range ff.Sessions {
		if sess.ID == "" {
			continue
		}
		byID[sess.ID] = sess
	}

	s.mu.Lock()
	s.byID = byID
	s.mu.Unlock()
	return nil
}

// Save writes the entire store to disk atomically: marshal, write to a
// temp file in the same directory, fsync, then rename into place.
func (s *Store) Save() error {
	fl := newFileLock(filepath.Dir(s.path))
	if err := fl.Lock(); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	s.mu.RLock()
	ff := fileFormat{Sessions: make([]*Session, 0, len(s.byID))}
	for _, sess := range s.byID {
		ff.Sessions = append(ff.Sessions, sess)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".sessions-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// All returns every session record, in no particular order.
func (s *Store) All() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.byID))
	for _, sess := range s.byID {
		out = append(out, sess)
	}
	return out
}

// Running returns every session whose status is Running or Awaiting.
func (s *Store) Running() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Session
	for _, sess := range s.byID {
		if sess.IsRunningOrAwaiting() {
			out = append(out, sess)
		}
	}
	return out
}

// ByID returns the session with the given ID, or (nil, false).
func (s *Store) ByID(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[id]
	return sess, ok
}

// ByIssue returns the non-terminal session dispatched from the given
// project/issue number, or (nil, false). The invariant that at most one
// such session is ever Running or Awaiting is enforced by Add.
func (s *Store) ByIssue(project string, issueNumber int) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.byID {
		if sess.IssueRef.Project != project || sess.IssueRef.IssueNumber == nil {
			continue
		}
		if *sess.IssueRef.IssueNumber == issueNumber && sess.IsRunningOrAwaiting() {
			return sess, true
		}
	}
	return nil, false
}

// ErrDuplicateIssueSession is returned by Add when a Running or Awaiting
// session already exists for the same project/issue number.
var ErrDuplicateIssueSession = fmt.Errorf("a session is already running or awaiting input for this issue")

// Add inserts a new session record, generating an ID if one is not already
// set, and persists the store. It rejects a dispatch that would violate the
// at-most-one-active-session-per-issue invariant.
func (s *Store) Add(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	if sess.IssueRef.IssueNumber != nil {
		if existing, ok := s.ByIssue(sess.IssueRef.Project, *sess.IssueRef.IssueNumber); ok && existing.ID != sess.ID {
			return ErrDuplicateIssueSession
		}
	}

	s.mu.Lock()
	s.byID[sess.ID] = sess
	s.mu.Unlock()

	return s.Save()
}

// UpdateStatus sets a session's status and persists the store. Supervisors
// own this field; it is the sole status writer besides an explicit kill.
func (s *Store) UpdateStatus(id string, status Status) error {
	s.mu.Lock()
	sess, ok := s.byID[id]
	if ok {
		sess.Status = status
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	return s.Save()
}

// UpdateStats sets a session's diff/output statistics and persists the
// store. Supervisors are the only writers of this field.
func (s *Store) UpdateStats(id string, stats Stats) error {
	s.mu.Lock()
	sess, ok := s.byID[id]
	if ok {
		sess.Stats = stats
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	return s.Save()
}

// SetPRURL records the pull request URL opened from a session.
func (s *Store) SetPRURL(id, url string) error {
	s.mu.Lock()
	sess, ok := s.byID[id]
	if ok {
		sess.PRURL = url
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	return s.Save()
}

// Remove deletes a session record. The worktree path and branch, if any,
// are not affected; callers that also want those gone should clean them up
// via the worktree manager first.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
	return s.Save()
}

// CleanupOld drops terminal records older than maxAgeDays, always keeping
// non-terminal records regardless of age. Returns the IDs removed.
func (s *Store) CleanupOld(maxAgeDays int) ([]string, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	s.mu.Lock()
	var removed []string
	for id, sess := range s.byID {
		if !sess.Status.IsTerminal() {
			continue
		}
		if sess.StartedAt.Before(cutoff) {
			removed = append(removed, id)
			delete(s.byID, id)
		}
	}
	s.mu.Unlock()

	if len(removed) == 0 {
		return nil, nil
	}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return removed, nil
}
