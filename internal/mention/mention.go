// Package mention enumerates addressable notes and content groups across
// the vault and resolves a selected target into a same-document or
// cross-document navigation.
package mention

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/session"
)

// Target kinds.
const (
	KindNote  = "note"
	KindGroup = "group"
)

// DefaultLimit caps the targets returned for one query.
const DefaultLimit = 20

// Target is one addressable destination offered by the mention picker.
type Target struct {
	Kind           string `json:"kind"`
	ID             string `json:"id"`
	ParentNotePath string `json:"parent_note_path,omitempty"`
	Label          string `json:"label"`
	Preview        string `json:"preview,omitempty"`
}

// Locator lists mention targets from the index.
type Locator struct {
	db    index.NoteIndex
	limit int
}

// NewLocator creates a locator capped at limit results (DefaultLimit when
// zero or negative).
func NewLocator(db index.NoteIndex, limit int) *Locator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Locator{db: db, limit: limit}
}

// ListTargets returns one note target per note (label is the note's display
// title, preview its first content line) and one group target per open
// sentinel found in the corpus. A non-empty query filters by
// case-insensitive substring containment on the label. Results are capped
// for responsiveness.
func (l *Locator) ListTargets(ctx context.Context, query string) ([]Target, error) {
	notes, _, err := l.db.ListNotes(0, 0, "")
	if err != nil {
		return nil, fmt.Errorf("mention: list notes: %w", err)
	}
	groups, err := l.db.AllGroups()
	if err != nil {
		return nil, fmt.Errorf("mention: list groups: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	match := func(label string) bool {
		return needle == "" || strings.Contains(strings.ToLower(label), needle)
	}

	out := make([]Target, 0, l.limit)
	for _, n := range notes {
		if len(out) >= l.limit {
			return out, nil
		}
		if !match(n.Title) {
			continue
		}
		out = append(out, Target{
			Kind:    KindNote,
			ID:      n.Path,
			Label:   n.Title,
			Preview: firstLine(n.Preview),
		})
	}
	for _, g := range groups {
		if len(out) >= l.limit {
			return out, nil
		}
		if !match(g.Title) {
			continue
		}
		out = append(out, Target{
			Kind:           KindGroup,
			ID:             g.ID,
			ParentNotePath: g.NotePath,
			Label:          g.Title,
		})
	}
	return out, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Resolver turns a selected target into navigation against the live
// session.
type Resolver struct {
	sess       *session.Session
	saver      *session.Saver
	switchNote session.SwitchFunc
}

// NewResolver wires a resolver to the session it navigates. switchNote
// loads a note into the editor surface and returns once it is ready.
func NewResolver(sess *session.Session, saver *session.Saver, switchNote session.SwitchFunc) *Resolver {
	return &Resolver{sess: sess, saver: saver, switchNote: switchNote}
}

// Resolve navigates to the target. A note target switches the active note.
// A group target owned by another note first flushes pending edits and
// switches to the owning note, then enters the group with the previous
// active note recorded as the origin, so the final LeaveGroup returns the
// user there rather than merely to the group's owner. The switch call
// completes only when the new content is loaded, so no readiness delay is
// needed.
func (r *Resolver) Resolve(ctx context.Context, t Target) error {
	switch t.Kind {
	case KindNote:
		if err := r.saver.Flush(ctx); err != nil {
			return fmt.Errorf("mention: flush before switch: %w", err)
		}
		if err := r.switchNote(ctx, t.ID); err != nil {
			return fmt.Errorf("mention: switch note: %w", err)
		}
		r.sess.SetActiveNote(t.ID)
		return nil

	case KindGroup:
		origin := r.sess.ActiveNote()
		if t.ParentNotePath != "" && t.ParentNotePath != origin {
			if err := r.saver.Flush(ctx); err != nil {
				return fmt.Errorf("mention: flush before switch: %w", err)
			}
			if err := r.switchNote(ctx, t.ParentNotePath); err != nil {
				return fmt.Errorf("mention: switch note: %w", err)
			}
			r.sess.SetActiveNote(t.ParentNotePath)
			return r.sess.EnterGroup(ctx, t.ID, t.Label, origin)
		}
		return r.sess.EnterGroup(ctx, t.ID, t.Label, "")

	default:
		return fmt.Errorf("mention: unknown target kind %q", t.Kind)
	}
}
