package mention

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/session"
)

// fakeIndex serves canned notes and groups; everything else is unused by
// the locator.
type fakeIndex struct {
	notes  []index.NoteRow
	groups []models.GroupRef
}

func (f *fakeIndex) UpsertNote(index.NoteRow, string, []models.GroupRef) error { return nil }
func (f *fakeIndex) DeleteNote(string) error                                   { return nil }
func (f *fakeIndex) GetChecksum(string) (string, error)                        { return "", nil }
func (f *fakeIndex) GetNote(string) (*index.NoteRow, error)                    { return nil, nil }
func (f *fakeIndex) ListNotes(int, int, string) ([]index.NoteRow, int, error) {
	return f.notes, len(f.notes), nil
}
func (f *fakeIndex) Search(string, int) ([]index.SearchResult, error) { return nil, nil }
func (f *fakeIndex) GroupsForNote(string) ([]models.GroupRef, error)  { return nil, nil }
func (f *fakeIndex) AllGroups() ([]models.GroupRef, error)            { return f.groups, nil }
func (f *fakeIndex) FindGroup(string) ([]models.GroupRef, error)      { return nil, nil }
func (f *fakeIndex) Graph() ([]index.GraphNode, []index.GraphLink, error) {
	return nil, nil, nil
}
func (f *fakeIndex) AllPaths() (map[string]struct{}, error)  { return nil, nil }
func (f *fakeIndex) AllChecksums() (map[string]string, error) { return nil, nil }
func (f *fakeIndex) Close() error                             { return nil }

func fixtureIndex() *fakeIndex {
	return &fakeIndex{
		notes: []index.NoteRow{
			{Path: "shopping.md", Title: "Shopping list", Preview: "milk\neggs"},
			{Path: "work.md", Title: "Work journal"},
		},
		groups: []models.GroupRef{
			{ID: "g1", NotePath: "shopping.md", Title: "Groceries", Pos: 10},
			{ID: "g2", NotePath: "work.md", Title: "Standup notes", Pos: 5},
		},
	}
}

func TestListTargets_All(t *testing.T) {
	l := NewLocator(fixtureIndex(), 0)
	targets, err := l.ListTargets(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 4 {
		t.Fatalf("targets = %d, want 4", len(targets))
	}
	// Notes come before groups.
	if targets[0].Kind != KindNote || targets[2].Kind != KindGroup {
		t.Errorf("ordering wrong: %+v", targets)
	}
	if targets[0].Preview != "milk" {
		t.Errorf("preview = %q, want first line only", targets[0].Preview)
	}
}

func TestListTargets_FilterCaseInsensitive(t *testing.T) {
	l := NewLocator(fixtureIndex(), 0)
	targets, err := l.ListTargets(context.Background(), "GROC")
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 1 || targets[0].ID != "g1" {
		t.Errorf("targets = %+v, want just g1", targets)
	}
	if targets[0].ParentNotePath != "shopping.md" {
		t.Errorf("parent = %q", targets[0].ParentNotePath)
	}
}

func TestListTargets_Cap(t *testing.T) {
	idx := &fakeIndex{}
	for i := 0; i < 30; i++ {
		idx.notes = append(idx.notes, index.NoteRow{Path: "n.md", Title: "Note"})
	}
	l := NewLocator(idx, 5)
	targets, err := l.ListTargets(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 5 {
		t.Errorf("targets = %d, want capped at 5", len(targets))
	}
}

func TestListTargets_DefaultLimit(t *testing.T) {
	idx := &fakeIndex{}
	for i := 0; i < 40; i++ {
		idx.notes = append(idx.notes, index.NoteRow{Path: "n.md", Title: "Note"})
	}
	l := NewLocator(idx, 0)
	targets, _ := l.ListTargets(context.Background(), "")
	if len(targets) != DefaultLimit {
		t.Errorf("targets = %d, want %d", len(targets), DefaultLimit)
	}
}

// resolverEnv wires a session over an in-memory surface plus a vault of
// note contents served by switchNote.
func resolverEnv(t *testing.T, vault map[string]string, active string) (*Resolver, *session.Session, *session.MemoryBridge) {
	t.Helper()
	bridge := session.NewMemoryBridge(vault[active])

	save := func(_ context.Context, path, content string) error {
		vault[path] = content
		return nil
	}
	switchNote := func(ctx context.Context, path string) error {
		return bridge.SetContent(ctx, vault[path])
	}

	sess := session.New(bridge, save, switchNote, nil)
	sess.SetActiveNote(active)
	saver := session.NewSaver(save, time.Hour, nil)
	return NewResolver(sess, saver, switchNote), sess, bridge
}

func TestResolve_NoteTarget(t *testing.T) {
	vault := map[string]string{"a.md": "content a", "b.md": "content b"}
	r, sess, bridge := resolverEnv(t, vault, "a.md")

	err := r.Resolve(context.Background(), Target{Kind: KindNote, ID: "b.md"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.ActiveNote() != "b.md" {
		t.Errorf("active = %q", sess.ActiveNote())
	}
	got, _ := bridge.GetContent(context.Background())
	if got != "content b" {
		t.Errorf("surface = %q", got)
	}
}

func TestResolve_LocalGroup(t *testing.T) {
	content := "x\n\n<!-- group:g1:Local -->\nLocal\n<!-- /group:g1 -->"
	vault := map[string]string{"a.md": content}
	r, sess, bridge := resolverEnv(t, vault, "a.md")

	target := Target{Kind: KindGroup, ID: "g1", ParentNotePath: "a.md", Label: "Local"}
	if err := r.Resolve(context.Background(), target); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.Depth() != 1 {
		t.Errorf("depth = %d", sess.Depth())
	}
	got, _ := bridge.GetContent(context.Background())
	if got != "Local" {
		t.Errorf("surface = %q", got)
	}
}

func TestResolve_ForeignGroupThenLeaveReturnsToOrigin(t *testing.T) {
	owner := "head\n\n<!-- group:g9:Remote -->\nRemote\n<!-- /group:g9 -->"
	vault := map[string]string{"origin.md": "origin content", "owner.md": owner}
	r, sess, bridge := resolverEnv(t, vault, "origin.md")

	ctx := context.Background()
	target := Target{Kind: KindGroup, ID: "g9", ParentNotePath: "owner.md", Label: "Remote"}
	if err := r.Resolve(ctx, target); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.ActiveNote() != "owner.md" || sess.Depth() != 1 {
		t.Errorf("active = %q depth = %d", sess.ActiveNote(), sess.Depth())
	}
	got, _ := bridge.GetContent(ctx)
	if got != "Remote" {
		t.Errorf("surface = %q", got)
	}

	if err := sess.LeaveGroup(ctx); err != nil {
		t.Fatalf("LeaveGroup: %v", err)
	}
	if sess.ActiveNote() != "origin.md" {
		t.Errorf("leave returned to %q, want origin.md", sess.ActiveNote())
	}
	got, _ = bridge.GetContent(ctx)
	if got != "origin content" {
		t.Errorf("surface = %q", got)
	}
	if !strings.Contains(vault["owner.md"], "Remote") {
		t.Errorf("owner note lost its group: %q", vault["owner.md"])
	}
}

func TestResolve_UnknownKind(t *testing.T) {
	r, _, _ := resolverEnv(t, map[string]string{"a.md": ""}, "a.md")
	if err := r.Resolve(context.Background(), Target{Kind: "tag"}); err == nil {
		t.Error("unknown kind must error")
	}
}
