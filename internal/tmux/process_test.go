package tmux

import (
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestDescendantPIDs_InvalidPID(t *testing.T) {
	tests := []struct {
		name string
		pid  int
	}{
		{"zero", 0},
		{"negative", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pids := DescendantPIDs(tt.pid)
			if pids != nil {
				t.Errorf("DescendantPIDs(%d) = %v, want nil", tt.pid, pids)
			}
		})
	}
}

func TestDescendantPIDs_WithChildren(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start sleep process: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	childPID := cmd.Process.Pid
	descendants := DescendantPIDs(os.Getpid())

	found := false
	for _, pid := range descendants {
		if pid == childPID {
			found = true
		}
	}
	if !found {
		t.Errorf("DescendantPIDs(%d) did not include child PID %d, got %v", os.Getpid(), childPID, descendants)
	}
}

func TestIsProcessAlive(t *testing.T) {
	tests := []struct {
		name     string
		pid      int
		expected bool
	}{
		{"zero PID", 0, false},
		{"negative PID", -1, false},
		{"own process", os.Getpid(), true},
		{"nonexistent PID", 99999999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProcessAlive(tt.pid); got != tt.expected {
				t.Errorf("IsProcessAlive(%d) = %v, want %v", tt.pid, got, tt.expected)
			}
		})
	}
}

func TestKillProcessTree_InvalidPID(t *testing.T) {
	KillProcessTree(0)
	KillProcessTree(-1)
}

func TestKillProcessTree_KillsProcess(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start sleep process: %v", err)
	}
	pid := cmd.Process.Pid

	if !IsProcessAlive(pid) {
		t.Fatalf("process %d should be alive after start", pid)
	}

	KillProcessTree(pid)
	_ = cmd.Wait()

	if IsProcessAlive(pid) {
		t.Errorf("process %d should be dead after KillProcessTree", pid)
	}
}

func TestKillProcessTree_KillsDescendants(t *testing.T) {
	cmd := exec.Command("sh", "-c", "sleep 60 & wait")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	shellPID := cmd.Process.Pid

	time.Sleep(200 * time.Millisecond)
	descendants := DescendantPIDs(shellPID)

	KillProcessTree(shellPID)
	_ = cmd.Wait()

	time.Sleep(100 * time.Millisecond)
	for _, pid := range descendants {
		if IsProcessAlive(pid) {
			_ = syscall.Kill(pid, syscall.SIGKILL)
			t.Errorf("descendant process %d should be dead after KillProcessTree", pid)
		}
	}
}

func TestWaitForProcessExit_AlreadyDead(t *testing.T) {
	if !WaitForProcessExit(99999999, 100*time.Millisecond) {
		t.Error("WaitForProcessExit should return true for non-existent process")
	}
}

func TestWaitForProcessExit_ProcessExits(t *testing.T) {
	cmd := exec.Command("sleep", "0.1")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()

	if !WaitForProcessExit(pid, 2*time.Second) {
		t.Error("WaitForProcessExit should return true when process exits within timeout")
	}
}

func TestWaitForProcessExit_Timeout(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	if WaitForProcessExit(cmd.Process.Pid, 150*time.Millisecond) {
		t.Error("WaitForProcessExit should return false when process doesn't exit within timeout")
	}
}

func TestGracefulShutdown_NonexistentSession(t *testing.T) {
	c := New()
	// Should not panic when called against a session that was never created.
	c.GracefulShutdown("kestrel-test-nonexistent-session")
}

func TestGracefulShutdown_Idempotent(t *testing.T) {
	c := New()
	for i := 0; i < 3; i++ {
		c.GracefulShutdown("kestrel-test-nonexistent-session")
	}
}
