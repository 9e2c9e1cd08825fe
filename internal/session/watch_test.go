package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kestrel-cli/kestrel/internal/logging"
)

func TestWatchStoreReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	w, err := WatchStore(s, logging.NopLogger())
	if err != nil {
		t.Fatalf("WatchStore: %v", err)
	}
	defer w.Stop()

	writer, err := Open(path)
	if err != nil {
		t.Fatalf("Open writer: %v", err)
	}
	sess := &Session{Status: RunningStatus()}
	if err := writer.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.ByID(sess.ID); ok {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("watched store did not observe external write within timeout")
}
