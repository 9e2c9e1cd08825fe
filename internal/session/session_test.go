package session

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{192 * time.Second, "3m 12s"},
		{64 * time.Minute, "1h 4m"},
		{-1 * time.Second, "0s"},
	}
	for _, tc := range tests {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !CompletedStatus(0).IsTerminal() {
		t.Error("CompletedStatus should be terminal")
	}
	if !FailedStatus("boom").IsTerminal() {
		t.Error("FailedStatus should be terminal")
	}
	if RunningStatus().IsTerminal() || AwaitingStatus().IsTerminal() {
		t.Error("Running/Awaiting should not be terminal")
	}
}
