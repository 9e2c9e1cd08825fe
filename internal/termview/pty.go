// Package termview implements the embedded terminal view: a PTY-backed
// process paired with a VT-100-ish screen emulator, so a session's agent
// pane can be rendered inside the operator TUI without shelling out to a
// real terminal emulator.
package termview

import (
	"errors"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

const (
	defaultCols = 120
	defaultRows = 40
)

// Config configures a terminal process.
type Config struct {
	Shell   string
	Args    []string
	Dir     string
	Env     []string
	Columns int
	Rows    int
}

// PTY wraps one PTY-backed process.
type PTY struct {
	mu       sync.RWMutex
	cmd      *exec.Cmd
	ptmx     *os.File
	closed   bool
	closeErr error
}

// Start launches a PTY process via creack/pty, sized to cfg.Columns and
// cfg.Rows.
func Start(cfg Config) (*PTY, error) {
	if cfg.Shell == "" {
		cfg.Shell = defaultShell()
	}
	if cfg.Columns <= 0 {
		cfg.Columns = defaultCols
	}
	if cfg.Rows <= 0 {
		cfg.Rows = defaultRows
	}

	cmd := exec.Command(cfg.Shell, cfg.Args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = cfg.Env
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(cfg.Columns),
		Rows: uint16(cfg.Rows),
	})
	if err != nil {
		if errors.Is(err, pty.ErrUnsupported) {
			return nil, errors.New("termview: PTY unsupported on this platform")
		}
		return nil, err
	}
	return &PTY{cmd: cmd, ptmx: ptmx}, nil
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// PID returns the child process id.
func (p *PTY) PID() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// IsClosed reports whether Close has been called.
func (p *PTY) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
