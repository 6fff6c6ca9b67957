package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/starford/perthro/internal/apperr"
)

const parentContent = "Top\n\n<!-- group:g1:Inside -->\nInside\n<!-- /group:g1 -->\n\nBottom"

type recordedSave struct {
	mu    sync.Mutex
	calls []struct{ path, content string }
}

func (r *recordedSave) fn(_ context.Context, path, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, struct{ path, content string }{path, content})
	return nil
}

func (r *recordedSave) last() (string, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return "", "", false
	}
	c := r.calls[len(r.calls)-1]
	return c.path, c.content, true
}

func TestEnterLeave_NoEditRestoresParentExactly(t *testing.T) {
	bridge := NewMemoryBridge(parentContent)
	saves := &recordedSave{}
	sess := New(bridge, saves.fn, nil, nil)
	sess.SetActiveNote("n.md")

	ctx := context.Background()
	if err := sess.EnterGroup(ctx, "g1", "Inside", ""); err != nil {
		t.Fatalf("EnterGroup: %v", err)
	}
	if sess.Depth() != 1 || sess.AtRoot() {
		t.Errorf("depth = %d", sess.Depth())
	}
	inner, _ := bridge.GetContent(ctx)
	if inner != "Inside" {
		t.Errorf("surface after enter = %q", inner)
	}

	if err := sess.LeaveGroup(ctx); err != nil {
		t.Fatalf("LeaveGroup: %v", err)
	}
	restored, _ := bridge.GetContent(ctx)
	if restored != parentContent {
		t.Errorf("leave without edits changed the note:\n got %q\nwant %q", restored, parentContent)
	}
	if sess.Depth() != 0 {
		t.Errorf("depth after leave = %d", sess.Depth())
	}
}

func TestLeave_SplicesEditsAndRetitles(t *testing.T) {
	bridge := NewMemoryBridge(parentContent)
	saves := &recordedSave{}
	sess := New(bridge, saves.fn, nil, nil)
	sess.SetActiveNote("n.md")

	ctx := context.Background()
	if err := sess.EnterGroup(ctx, "g1", "Inside", ""); err != nil {
		t.Fatal(err)
	}
	_ = bridge.SetContent(ctx, "New first line\n\nmore")
	if err := sess.LeaveGroup(ctx); err != nil {
		t.Fatal(err)
	}

	restored, _ := bridge.GetContent(ctx)
	if !strings.Contains(restored, "<!-- group:g1:New first line -->") {
		t.Errorf("sentinel title not recomputed: %q", restored)
	}
	if !strings.Contains(restored, "New first line\n\nmore") {
		t.Errorf("edits not spliced: %q", restored)
	}
	if !strings.HasPrefix(restored, "Top\n\n") || !strings.HasSuffix(restored, "\n\nBottom") {
		t.Errorf("surrounding text damaged: %q", restored)
	}

	path, content, ok := saves.last()
	if !ok {
		t.Fatal("leave did not persist the spliced note")
	}
	if path != "n.md" || content != restored {
		t.Errorf("persisted %q to %q, surface holds %q", content, path, restored)
	}
}

func TestNestedEnterLeave(t *testing.T) {
	content := "<!-- group:outer:Outer line -->\nOuter line\n\n" +
		"<!-- group:inner:Deep -->\nDeep\n<!-- /group:inner -->\n<!-- /group:outer -->"
	bridge := NewMemoryBridge(content)
	sess := New(bridge, nil, nil, nil)
	sess.SetActiveNote("n.md")

	ctx := context.Background()
	if err := sess.EnterGroup(ctx, "outer", "Outer line", ""); err != nil {
		t.Fatal(err)
	}
	if err := sess.EnterGroup(ctx, "inner", "Deep", ""); err != nil {
		t.Fatal(err)
	}
	if sess.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", sess.Depth())
	}
	surface, _ := bridge.GetContent(ctx)
	if surface != "Deep" {
		t.Errorf("surface = %q", surface)
	}

	if err := sess.LeaveGroup(ctx); err != nil {
		t.Fatal(err)
	}
	if err := sess.LeaveGroup(ctx); err != nil {
		t.Fatal(err)
	}
	restored, _ := bridge.GetContent(ctx)
	if restored != content {
		t.Errorf("nested round trip changed note:\n got %q\nwant %q", restored, content)
	}
}

func TestLeaveGroup_EmptyStack(t *testing.T) {
	sess := New(NewMemoryBridge("plain"), nil, nil, nil)
	if err := sess.LeaveGroup(context.Background()); !errors.Is(err, apperr.ErrEmptyStack) {
		t.Errorf("err = %v, want ErrEmptyStack", err)
	}
}

func TestEnterGroup_UnknownID(t *testing.T) {
	sess := New(NewMemoryBridge("no groups"), nil, nil, nil)
	err := sess.EnterGroup(context.Background(), "ghost", "", "")
	if !errors.Is(err, apperr.ErrGroupNotFound) {
		t.Errorf("err = %v, want ErrGroupNotFound", err)
	}
	if sess.Depth() != 0 {
		t.Errorf("failed enter must leave the stack unchanged")
	}
}

func TestNavigationBusyGuard(t *testing.T) {
	// A bridge that blocks on GetContent until released, so a second
	// transition can race the first.
	release := make(chan struct{})
	started := make(chan struct{})
	bridge := &blockingBridge{inner: NewMemoryBridge(parentContent), release: release, started: started}
	sess := New(bridge, nil, nil, nil)
	sess.SetActiveNote("n.md")

	done := make(chan error, 1)
	go func() {
		done <- sess.EnterGroup(context.Background(), "g1", "Inside", "")
	}()
	<-started

	if err := sess.EnterGroup(context.Background(), "g1", "Inside", ""); !errors.Is(err, apperr.ErrNavigationBusy) {
		t.Errorf("concurrent enter err = %v, want ErrNavigationBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first enter failed: %v", err)
	}
}

type blockingBridge struct {
	inner    *MemoryBridge
	release  chan struct{}
	started  chan struct{}
	onceOnly sync.Once
}

func (b *blockingBridge) GetContent(ctx context.Context) (string, error) {
	b.onceOnly.Do(func() {
		close(b.started)
		<-b.release
	})
	return b.inner.GetContent(ctx)
}

func (b *blockingBridge) SetContent(ctx context.Context, content string) error {
	return b.inner.SetContent(ctx, content)
}

func TestCrossDocumentReturn(t *testing.T) {
	bridge := NewMemoryBridge(parentContent)
	saves := &recordedSave{}
	var switched []string
	switchNote := func(_ context.Context, path string) error {
		switched = append(switched, path)
		return nil
	}
	sess := New(bridge, saves.fn, switchNote, nil)
	sess.SetActiveNote("owner.md")

	ctx := context.Background()
	if err := sess.EnterGroup(ctx, "g1", "Inside", "origin.md"); err != nil {
		t.Fatal(err)
	}
	if err := sess.LeaveGroup(ctx); err != nil {
		t.Fatal(err)
	}

	if len(switched) != 1 || switched[0] != "origin.md" {
		t.Errorf("switch calls = %v, want [origin.md]", switched)
	}
	if sess.ActiveNote() != "origin.md" {
		t.Errorf("active note = %q, want origin.md", sess.ActiveNote())
	}
	if sess.Depth() != 0 {
		t.Errorf("depth = %d", sess.Depth())
	}

	// The owner note was persisted with the spliced content before the
	// switch.
	path, _, ok := saves.last()
	if !ok || path != "owner.md" {
		t.Errorf("persisted path = %q, want owner.md", path)
	}
}

func TestSetActiveNoteClearsStack(t *testing.T) {
	bridge := NewMemoryBridge(parentContent)
	sess := New(bridge, nil, nil, nil)
	sess.SetActiveNote("a.md")
	if err := sess.EnterGroup(context.Background(), "g1", "Inside", ""); err != nil {
		t.Fatal(err)
	}
	sess.SetActiveNote("b.md")
	if sess.Depth() != 0 {
		t.Errorf("switching notes must clear the stack, depth = %d", sess.Depth())
	}
}

func TestClearAll(t *testing.T) {
	bridge := NewMemoryBridge(parentContent)
	sess := New(bridge, nil, nil, nil)
	sess.SetActiveNote("n.md")
	if err := sess.EnterGroup(context.Background(), "g1", "Inside", ""); err != nil {
		t.Fatal(err)
	}
	sess.ClearAll()
	if !sess.AtRoot() {
		t.Error("ClearAll must empty the stack")
	}
}
