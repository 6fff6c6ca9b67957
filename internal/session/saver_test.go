package session

import (
	"context"
	"testing"
	"time"
)

func TestSaver_DebouncesRapidEdits(t *testing.T) {
	saves := &recordedSave{}
	s := NewSaver(saves.fn, 30*time.Millisecond, nil)

	s.Schedule("n.md", "v1")
	s.Schedule("n.md", "v2")
	s.Schedule("n.md", "v3")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, content, ok := saves.last(); ok {
			if content != "v3" {
				t.Fatalf("saved %q, want the latest edit v3", content)
			}
			saves.mu.Lock()
			n := len(saves.calls)
			saves.mu.Unlock()
			if n != 1 {
				t.Fatalf("saves = %d, want 1 coalesced write", n)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("debounced save never fired")
}

func TestSaver_FlushWritesImmediately(t *testing.T) {
	saves := &recordedSave{}
	s := NewSaver(saves.fn, time.Hour, nil)

	s.Schedule("n.md", "pending")
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	path, content, ok := saves.last()
	if !ok || path != "n.md" || content != "pending" {
		t.Errorf("flush wrote %q to %q", content, path)
	}
}

func TestSaver_FlushIdleIsNoop(t *testing.T) {
	saves := &recordedSave{}
	s := NewSaver(saves.fn, time.Hour, nil)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, _, ok := saves.last(); ok {
		t.Error("flush with nothing pending must not write")
	}
}

func TestSaver_FlushThenTimerDoesNotDoubleWrite(t *testing.T) {
	saves := &recordedSave{}
	s := NewSaver(saves.fn, 20*time.Millisecond, nil)

	s.Schedule("n.md", "once")
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(60 * time.Millisecond)

	saves.mu.Lock()
	n := len(saves.calls)
	saves.mu.Unlock()
	if n != 1 {
		t.Errorf("saves = %d, want 1 (timer must not refire after flush)", n)
	}
}

func TestSaver_NoteSwitchFlushesPrevious(t *testing.T) {
	saves := &recordedSave{}
	s := NewSaver(saves.fn, time.Hour, nil)

	s.Schedule("a.md", "a content")
	s.Schedule("b.md", "b content")

	// The edit to b.md must have pushed a.md's pending write out
	// immediately.
	saves.mu.Lock()
	n := len(saves.calls)
	var first struct{ path, content string }
	if n > 0 {
		first = saves.calls[0]
	}
	saves.mu.Unlock()
	if n != 1 || first.path != "a.md" || first.content != "a content" {
		t.Errorf("calls = %d, first = %+v", n, first)
	}

	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	path, content, _ := saves.last()
	if path != "b.md" || content != "b content" {
		t.Errorf("final write = %q to %q", content, path)
	}
}
