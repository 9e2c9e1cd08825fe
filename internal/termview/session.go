package termview

import (
	"log/slog"
	"sync"
)

// View is a running PTY paired with its screen emulator. One View backs
// each session's embedded terminal pane in the operator TUI, with two
// worker goroutines per attachment: a reader streaming master-side bytes
// into the screen grid, and a writer draining an unbounded queue of
// keystroke byte-sequences into the master so a caller forwarding input
// never blocks on a slow or stalled child process.
type View struct {
	mu     sync.Mutex
	pty    *PTY
	grid   *grid
	writeQ *writeQueue
}

// Open starts a PTY-backed process, begins feeding its output into a new
// screen grid sized cfg.Columns x cfg.Rows, and starts the writer goroutine
// that drains queued input to the master.
func Open(cfg Config) (*View, error) {
	p, err := Start(cfg)
	if err != nil {
		return nil, err
	}
	v := &View{
		pty:    p,
		grid:   newGrid(cfg.Columns, cfg.Rows),
		writeQ: newWriteQueue(),
	}
	go v.pty.ReadLoop(v.feed)
	go v.writeLoop()
	return v, nil
}

// writeLoop drains v.writeQ into the PTY master until the queue is closed,
// at which point it returns and lets the goroutine exit.
func (v *View) writeLoop() {
	for {
		data, ok := v.writeQ.pop()
		if !ok {
			return
		}
		if _, err := v.pty.Write(data); err != nil {
			slog.Debug("[termview] queued write failed", "error", err, "len", len(data))
		}
	}
}

func (v *View) feed(chunk []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = v.grid.Write(chunk)
}

// PID returns the child process id.
func (v *View) PID() int { return v.pty.PID() }

// IsClosed reports whether the underlying PTY has been closed.
func (v *View) IsClosed() bool { return v.pty.IsClosed() }

// Rows returns a snapshot of the visible screen, oldest row first.
func (v *View) Rows() [][]Cell {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grid.Rows()
}

// PlainText returns a snapshot of the visible screen as unstyled text.
// Idle detection does not read it; the Supervisor reads tmux pane captures.
func (v *View) PlainText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grid.String()
}

// Size returns the current screen dimensions.
func (v *View) Size() (cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grid.Size()
}

// Resize resizes both the PTY and the screen grid.
func (v *View) Resize(cols, rows int) error {
	v.mu.Lock()
	v.grid.Resize(cols, rows)
	v.mu.Unlock()
	return v.pty.Resize(cols, rows)
}

// Send encodes a key press and queues it for the writer goroutine. It never
// blocks on the PTY itself, so it is safe to call from a single-threaded
// caller such as bubbletea's Update.
func (v *View) Send(key Key) error {
	v.writeQ.push(EncodeKey(key))
	return nil
}

// Write queues raw bytes for the writer goroutine, bypassing key encoding.
func (v *View) Write(data []byte) (int, error) {
	v.writeQ.push(data)
	return len(data), nil
}

// Close closes the writer queue before closing the PTY master, so the
// writer goroutine drains and exits rather than blocking on a write to an
// already-torn-down master, then terminates the child process.
func (v *View) Close() error {
	v.writeQ.close()
	return v.pty.Close()
}
