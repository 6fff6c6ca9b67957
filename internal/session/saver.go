package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Saver coalesces rapid edits into one durable write after a quiet period.
// Navigation and note switches call Flush first so storage is current
// before any operation that depends on it.
type Saver struct {
	save  SaveFunc
	delay time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	path    string
	content string
	dirty   bool
}

// NewSaver creates a debounced saver with the given quiet period.
func NewSaver(save SaveFunc, delay time.Duration, logger *slog.Logger) *Saver {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{save: save, delay: delay, log: logger}
}

// Schedule records the latest content for the note and (re)starts the
// quiet-period timer. An edit to a different note flushes the previous
// note's pending write immediately.
func (s *Saver) Schedule(notePath, content string) {
	s.mu.Lock()
	if s.dirty && s.path != notePath {
		prevPath, prevContent := s.path, s.content
		s.dirty = false
		s.mu.Unlock()
		s.write(prevPath, prevContent)
		s.mu.Lock()
	}

	s.path = notePath
	s.content = content
	s.dirty = true

	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)
	} else {
		s.timer.Reset(s.delay)
	}
	s.mu.Unlock()
}

func (s *Saver) fire() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	path, content := s.path, s.content
	s.dirty = false
	s.mu.Unlock()
	s.write(path, content)
}

// Flush writes any pending content immediately and stops the timer.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	path, content := s.path, s.content
	s.dirty = false
	s.mu.Unlock()
	return s.save(ctx, path, content)
}

func (s *Saver) write(path, content string) {
	if err := s.save(context.Background(), path, content); err != nil {
		s.log.Error("debounced save failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}
