package termview

import (
	"reflect"
	"testing"
	"time"
)

func TestWriteQueueFIFO(t *testing.T) {
	q := newWriteQueue()
	q.push([]byte("a"))
	q.push([]byte("b"))

	first, ok := q.pop()
	if !ok || string(first) != "a" {
		t.Fatalf("pop() = (%q, %v), want (\"a\", true)", first, ok)
	}
	second, ok := q.pop()
	if !ok || string(second) != "b" {
		t.Fatalf("pop() = (%q, %v), want (\"b\", true)", second, ok)
	}
}

func TestWriteQueuePopBlocksUntilPush(t *testing.T) {
	q := newWriteQueue()
	done := make(chan []byte, 1)
	go func() {
		data, ok := q.pop()
		if !ok {
			return
		}
		done <- data
	}()

	select {
	case <-done:
		t.Fatal("pop() returned before any push")
	case <-time.After(20 * time.Millisecond):
	}

	q.push([]byte("queued"))
	select {
	case data := <-done:
		if !reflect.DeepEqual(data, []byte("queued")) {
			t.Errorf("pop() = %q, want %q", data, "queued")
		}
	case <-time.After(time.Second):
		t.Fatal("pop() did not return after push")
	}
}

func TestWriteQueueCloseWakesPop(t *testing.T) {
	q := newWriteQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.pop()
		done <- ok
	}()

	q.close()
	select {
	case ok := <-done:
		if ok {
			t.Error("pop() after close returned ok = true, want false")
		}
	case <-time.After(time.Second):
		t.Fatal("pop() did not return after close")
	}
}

func TestWriteQueuePushAfterCloseIsDropped(t *testing.T) {
	q := newWriteQueue()
	q.close()
	q.push([]byte("late"))

	_, ok := q.pop()
	if ok {
		t.Error("pop() after push-after-close returned ok = true, want false")
	}
}
