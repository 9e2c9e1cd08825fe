package supervisor

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kestrel-cli/kestrel/internal/agent"
	"github.com/kestrel-cli/kestrel/internal/logging"
	"github.com/kestrel-cli/kestrel/internal/session"
)

type fakeTmux struct {
	mu     sync.Mutex
	exists bool
	pane   string
	paneOK bool
}

func (f *fakeTmux) Exists(string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists
}

func (f *fakeTmux) Capture(string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pane, f.paneOK
}

func (f *fakeTmux) setExists(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exists = v
}

func (f *fakeTmux) setPane(text string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pane = text
	f.paneOK = ok
}

type fakeDiffStats struct{}

func (fakeDiffStats) DiffStats(string) (int, int, int) { return 3, 1, 2 }

type fakeAdapter struct {
	idle bool
	mu   sync.Mutex
}

func (a *fakeAdapter) Kind() session.AgentKind                  { return session.AgentClaude }
func (a *fakeAdapter) Name() string                             { return "Fake Agent" }
func (a *fakeAdapter) CLICommand() string                       { return "fake" }
func (a *fakeAdapter) BuildLaunchCommand(string, string) string { return "fake" }
func (a *fakeAdapter) IsIdle(string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.idle
}
func (a *fakeAdapter) setIdle(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.idle = v
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, title+": "+message)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.Open(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestMonitorLoopCompletesWhenTmuxDisappears(t *testing.T) {
	store := newTestStore(t)
	sess := &session.Session{Status: session.RunningStatus()}
	if err := store.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tc := &fakeTmux{exists: false}
	sup := New(store, tc, fakeDiffStats{}, &fakeNotifier{}, logging.NopLogger(), 20*time.Millisecond)
	sup.Start(sess, &fakeAdapter{}, false)

	waitFor(t, 2*time.Second, func() bool {
		got, ok := store.ByID(sess.ID)
		return ok && got.Status.Kind == session.Completed
	})
}

func TestMonitorLoopNotifiesOnceWhenIdleBecomesTrue(t *testing.T) {
	store := newTestStore(t)
	sess := &session.Session{Status: session.RunningStatus()}
	if err := store.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tc := &fakeTmux{exists: true}
	tc.setPane("idle text", true)
	adapter := &fakeAdapter{idle: true}
	notifier := &fakeNotifier{}

	sup := New(store, tc, fakeDiffStats{}, notifier, logging.NopLogger(), 15*time.Millisecond)
	sup.Start(sess, adapter, false)

	waitFor(t, 2*time.Second, func() bool {
		got, ok := store.ByID(sess.ID)
		return ok && got.Status.Kind == session.Awaiting
	})

	time.Sleep(150 * time.Millisecond)
	if got := notifier.count(); got != 1 {
		t.Errorf("notifier received %d messages, want exactly 1 for a single contiguous idle interval", got)
	}

	sup.Stop(sess.ID)
}

func TestMonitorLoopRenotifiesAfterReturningToRunning(t *testing.T) {
	store := newTestStore(t)
	sess := &session.Session{Status: session.RunningStatus()}
	if err := store.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tc := &fakeTmux{exists: true}
	tc.setPane("working", true)
	adapter := &fakeAdapter{idle: false}
	notifier := &fakeNotifier{}

	sup := New(store, tc, fakeDiffStats{}, notifier, logging.NopLogger(), 15*time.Millisecond)
	sup.Start(sess, adapter, false)

	adapter.setIdle(true)
	waitFor(t, 2*time.Second, func() bool { return notifier.count() >= 1 })

	adapter.setIdle(false)
	waitFor(t, 2*time.Second, func() bool {
		got, ok := store.ByID(sess.ID)
		return ok && got.Status.Kind == session.Running
	})

	adapter.setIdle(true)
	waitFor(t, 2*time.Second, func() bool { return notifier.count() >= 2 })

	sup.Stop(sess.ID)
}

func TestResumeAllSkipsAlreadyAwaitingNotification(t *testing.T) {
	store := newTestStore(t)
	sess := &session.Session{Status: session.AwaitingStatus()}
	if err := store.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tc := &fakeTmux{exists: true}
	tc.setPane("still idle", true)
	adapter := &fakeAdapter{idle: true}
	notifier := &fakeNotifier{}

	sup := New(store, tc, fakeDiffStats{}, notifier, logging.NopLogger(), 15*time.Millisecond)
	sup.ResumeAll(func(*session.Session) (agent.Adapter, error) {
		return adapter, nil
	})

	time.Sleep(150 * time.Millisecond)
	if got := notifier.count(); got != 0 {
		t.Errorf("notifier received %d messages, want 0 on resumption of an already-Awaiting session", got)
	}
}
