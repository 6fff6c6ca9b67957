package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/doc"
)

// StackEntry is one level of the group navigation stack: the snapshot of
// the parent document the editor left behind when it entered a group. The
// stack holds ancestor snapshots, never live trees; only one level is ever
// materialized in the editor at a time.
type StackEntry struct {
	GroupID               string
	Title                 string
	ParentContentSnapshot string
	SourceNotePath        string
}

// SaveFunc persists a note's full content durably.
type SaveFunc func(ctx context.Context, notePath, content string) error

// SwitchFunc makes notePath the active note and loads its content into the
// editor surface, returning once the surface is ready. Replacing the
// fixed-delay readiness proxy of ad hoc hosts with a completion-reporting
// call removes the load race on cross-document navigation.
type SwitchFunc func(ctx context.Context, notePath string) error

// Session drives enter-group / leave-group transitions for one editing
// surface. Each surface owns its own Session; there is no shared module
// state, so concurrent sessions (and tests) stay independent.
//
// Transitions are serialized by an in-flight guard: a transition issued
// while another is still suspended on a bridge round trip fails with
// ErrNavigationBusy instead of interleaving stale and fresh content.
type Session struct {
	bridge     ContentBridge
	save       SaveFunc
	switchNote SwitchFunc
	log        *slog.Logger

	busy atomic.Bool

	mu         sync.Mutex
	activeNote string
	stack      []StackEntry
}

// New creates a session over the given bridge. save persists note content;
// switchNote activates another note for cross-document returns.
func New(bridge ContentBridge, save SaveFunc, switchNote SwitchFunc, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{bridge: bridge, save: save, switchNote: switchNote, log: logger}
}

// ActiveNote returns the path of the note the session is editing.
func (s *Session) ActiveNote() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeNote
}

// SetActiveNote records the newly active note and clears the navigation
// stack. Callers must flush pending edits before switching; the session
// performs no flush of its own.
func (s *Session) SetActiveNote(notePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeNote = notePath
	s.stack = nil
}

// Depth returns the number of groups the editor is inside. Zero means the
// session is at the note's root.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// AtRoot reports whether the navigation stack is empty.
func (s *Session) AtRoot() bool { return s.Depth() == 0 }

// EnterGroup descends into the group with the given id: it snapshots the
// surface's current content, extracts the group's region, and loads that
// region into the surface as its entire content. sourceNotePath, when
// non-empty, marks a cross-document entry: the final LeaveGroup returns to
// that note.
//
// A bridge failure aborts the transition with the stack unchanged.
func (s *Session) EnterGroup(ctx context.Context, groupID, title, sourceNotePath string) error {
	if !s.busy.CompareAndSwap(false, true) {
		return apperr.ErrNavigationBusy
	}
	defer s.busy.Store(false)

	current, err := s.bridge.GetContent(ctx)
	if err != nil {
		s.log.Error("enter group: content fetch failed",
			slog.String("group", groupID), slog.String("error", err.Error()))
		return fmt.Errorf("session: enter group %s: %w", groupID, err)
	}

	inner, err := doc.Extract(current, groupID)
	if err != nil {
		return fmt.Errorf("session: enter group: %w", err)
	}

	if err := s.bridge.SetContent(ctx, inner); err != nil {
		s.log.Error("enter group: content load failed",
			slog.String("group", groupID), slog.String("error", err.Error()))
		return fmt.Errorf("session: enter group %s: %w", groupID, err)
	}

	s.mu.Lock()
	s.stack = append(s.stack, StackEntry{
		GroupID:               groupID,
		Title:                 title,
		ParentContentSnapshot: current,
		SourceNotePath:        sourceNotePath,
	})
	s.mu.Unlock()
	return nil
}

// LeaveGroup ascends one level: it splices the surface's current (possibly
// edited) content back between the sentinel pair in the parent snapshot,
// persists the spliced note, and either loads the spliced text into the
// surface or, when leaving a cross-document entry at the last level,
// switches back to the origin note.
func (s *Session) LeaveGroup(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return apperr.ErrNavigationBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	if len(s.stack) == 0 {
		s.mu.Unlock()
		return apperr.ErrEmptyStack
	}
	top := s.stack[len(s.stack)-1]
	remaining := len(s.stack) - 1
	notePath := s.activeNote
	s.mu.Unlock()

	edited, err := s.bridge.GetContent(ctx)
	if err != nil {
		s.log.Error("leave group: content fetch failed",
			slog.String("group", top.GroupID), slog.String("error", err.Error()))
		return fmt.Errorf("session: leave group %s: %w", top.GroupID, err)
	}

	spliced, err := doc.Splice(top.ParentContentSnapshot, top.GroupID, edited)
	if err != nil {
		return fmt.Errorf("session: leave group: %w", err)
	}

	if s.save != nil {
		if err := s.save(ctx, notePath, spliced); err != nil {
			return fmt.Errorf("session: leave group: persist %s: %w", notePath, err)
		}
	}

	if top.SourceNotePath != "" && remaining == 0 {
		// Cross-document return: hand the surface to the origin note
		// instead of loading the spliced text.
		if err := s.switchNote(ctx, top.SourceNotePath); err != nil {
			return fmt.Errorf("session: leave group: switch to %s: %w", top.SourceNotePath, err)
		}
		s.mu.Lock()
		s.activeNote = top.SourceNotePath
		s.stack = nil
		s.mu.Unlock()
		return nil
	}

	if err := s.bridge.SetContent(ctx, spliced); err != nil {
		s.log.Error("leave group: content load failed",
			slog.String("group", top.GroupID), slog.String("error", err.Error()))
		return fmt.Errorf("session: leave group %s: %w", top.GroupID, err)
	}

	s.mu.Lock()
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	s.mu.Unlock()
	return nil
}

// ClearAll forcibly empties the stack. Invoked on note switch and reload;
// callers are responsible for flushing pending edits first.
func (s *Session) ClearAll() {
	s.mu.Lock()
	s.stack = nil
	s.mu.Unlock()
}
