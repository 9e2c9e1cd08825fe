package termview

import (
	"strings"
	"testing"
	"time"
)

func TestOpenSmoke(t *testing.T) {
	v, err := Open(Config{Shell: "/bin/sh", Columns: 80, Rows: 24})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer v.Close()

	if v.PID() == 0 {
		t.Error("PID() = 0, want nonzero")
	}
	if cols, rows := v.Size(); cols != 80 || rows != 24 {
		t.Errorf("Size() = (%d, %d), want (80, 24)", cols, rows)
	}
}

func TestOpenEchoesWrittenInput(t *testing.T) {
	v, err := Open(Config{Shell: "/bin/sh", Columns: 80, Rows: 24})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer v.Close()

	if _, err := v.Write([]byte("echo kestrel-termview-smoke\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(v.PlainText(), "kestrel-termview-smoke") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("PlainText() did not contain expected echo, got %q", v.PlainText())
}

func TestResizePropagatesToGridAndPTY(t *testing.T) {
	v, err := Open(Config{Shell: "/bin/sh", Columns: 80, Rows: 24})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer v.Close()

	if err := v.Resize(100, 30); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if cols, rows := v.Size(); cols != 100 || rows != 30 {
		t.Errorf("Size() after Resize = (%d, %d), want (100, 30)", cols, rows)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	v, err := Open(Config{Shell: "/bin/sh", Columns: 80, Rows: 24})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !v.IsClosed() {
		t.Error("IsClosed() = false after Close()")
	}
}
