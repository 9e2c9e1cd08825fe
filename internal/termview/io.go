package termview

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/creack/pty"
)

// Write sends input bytes to the PTY.
func (p *PTY) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return 0, errors.New("termview: PTY closed")
	}
	n, err := p.ptmx.Write(data)
	if err != nil {
		slog.Warn("[termview] write failed", "error", err, "len", len(data))
	}
	return n, err
}

// Resize updates the PTY window size.
func (p *PTY) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return errors.New("termview: invalid size")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("termview: PTY closed")
	}
	return pty.Setsize(p.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// ReadLoop reads PTY output until the PTY is closed or the process exits,
// invoking onData for each chunk read. onData must consume the bytes
// during the call since the backing buffer is reused on the next read.
func (p *PTY) ReadLoop(onData func([]byte)) {
	if onData == nil {
		return
	}
	p.mu.RLock()
	ptmx := p.ptmx
	p.mu.RUnlock()
	if ptmx == nil {
		return
	}
	readSource(ptmx, onData)
}

func readSource(r io.Reader, onData func([]byte)) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			onData(buf[:n])
		}
		if err != nil {
			slog.Debug("[termview] read loop exiting", "error", err)
			return
		}
	}
}

// Close tears down the PTY master and terminates the child process.
// Teardown order: kill the process before closing the master so the
// child does not briefly survive with a broken slave side.
func (p *PTY) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return p.closeErr
	}
	p.closed = true

	var firstErr error
	if p.cmd != nil && p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			firstErr = err
		}
	}
	if p.ptmx != nil {
		if err := p.ptmx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closeErr = firstErr
	return firstErr
}
