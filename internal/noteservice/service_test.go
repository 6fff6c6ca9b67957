package noteservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestVault(t)
	return NewService(store, testutil.TestDB(t))
}

func TestCreateGetUpdateDelete(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "n.md", []byte("# Title\nbody"))
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if created.Title != "Title" || created.Checksum == "" {
		t.Errorf("created = %+v", created)
	}

	got, err := svc.GetNote(ctx, "n.md")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "# Title\nbody" {
		t.Errorf("content = %q", got.Content)
	}

	updated, err := svc.UpdateNote(ctx, "n.md", []byte("# New"), got.Checksum)
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Title != "New" {
		t.Errorf("title = %q", updated.Title)
	}

	if err := svc.DeleteNote(ctx, "n.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetNote(ctx, "n.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v", err)
	}
}

func TestCreateNote_AlreadyExists(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "dup.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "dup.md", []byte("y")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateNote_ChecksumConflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "n.md", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateNote(ctx, "n.md", []byte("v2"), "stale-checksum"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	// Empty ifMatch skips the check.
	if _, err := svc.UpdateNote(ctx, "n.md", []byte("v2"), ""); err != nil {
		t.Errorf("unconditional update failed: %v", err)
	}
}

func TestCreateGroup_AppendsSentinelRegion(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "n.md", []byte("# Note\n")); err != nil {
		t.Fatal(err)
	}

	g, err := svc.CreateGroup(ctx, "n.md", "Fresh thought\n\ndetails")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if g.ID == "" {
		t.Fatal("no id minted")
	}
	if g.Title != "Fresh thought" {
		t.Errorf("title = %q", g.Title)
	}

	note, err := svc.GetNote(ctx, "n.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(note.Content, "<!-- group:"+g.ID+":Fresh thought -->") {
		t.Errorf("open sentinel missing: %q", note.Content)
	}
	if !strings.Contains(note.Content, "<!-- /group:"+g.ID+" -->") {
		t.Errorf("close sentinel missing: %q", note.Content)
	}
	if !strings.HasPrefix(note.Content, "# Note\n") {
		t.Errorf("existing content disturbed: %q", note.Content)
	}
	if len(note.Groups) != 1 {
		t.Errorf("groups = %+v", note.Groups)
	}
}

func TestCreateGroup_TwoGroupsBlankLineSeparated(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "n.md", []byte("base")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateGroup(ctx, "n.md", "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateGroup(ctx, "n.md", "second"); err != nil {
		t.Fatal(err)
	}

	note, _ := svc.GetNote(ctx, "n.md")
	if strings.Contains(note.Content, "-->\n<!-- group:") {
		t.Errorf("groups not separated by a blank line: %q", note.Content)
	}
	groups, err := svc.ListGroups(ctx, "n.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Errorf("groups = %d, want 2", len(groups))
	}
}

func TestCreateGroup_MissingNote(t *testing.T) {
	svc := testService(t)
	if _, err := svc.CreateGroup(context.Background(), "ghost.md", "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadGroup(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "n.md", []byte("start")); err != nil {
		t.Fatal(err)
	}
	g, err := svc.CreateGroup(ctx, "n.md", "inner body\nsecond line")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.ReadGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ReadGroup: %v", err)
	}
	if got.Content != "inner body\nsecond line" {
		t.Errorf("content = %q", got.Content)
	}
	if got.NotePath != "n.md" {
		t.Errorf("note path = %q", got.NotePath)
	}
}

func TestReadGroup_NotFound(t *testing.T) {
	svc := testService(t)
	if _, err := svc.ReadGroup(context.Background(), "nope"); !errors.Is(err, apperr.ErrGroupNotFound) {
		t.Errorf("err = %v, want ErrGroupNotFound", err)
	}
}

func TestValidateNote(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	content := "<!-- group:a:A -->\nok\n<!-- /group:a -->\n" +
		"<!-- group:b:B -->\nno close\n" +
		"<!-- group:a:Again -->\nduplicate\n<!-- /group:a -->\n"
	if _, err := svc.CreateNote(ctx, "v.md", []byte(content)); err != nil {
		t.Fatal(err)
	}

	rep, err := svc.ValidateNote(ctx, "v.md")
	if err != nil {
		t.Fatal(err)
	}
	if rep.OK() {
		t.Fatal("report should flag problems")
	}
	if len(rep.UnmatchedOpens) != 1 || rep.UnmatchedOpens[0] != "b" {
		t.Errorf("unmatched opens = %v", rep.UnmatchedOpens)
	}
	if len(rep.DuplicateIDs) != 1 || rep.DuplicateIDs[0] != "a" {
		t.Errorf("duplicates = %v", rep.DuplicateIDs)
	}
}

func TestValidateNote_Clean(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "c.md", []byte("plain note")); err != nil {
		t.Fatal(err)
	}
	rep, err := svc.ValidateNote(ctx, "c.md")
	if err != nil {
		t.Fatal(err)
	}
	if !rep.OK() {
		t.Errorf("clean note flagged: %+v", rep)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	content := "# Head\n\nSome **bold** text.\n\n- a\n- b"
	if _, err := svc.CreateNote(ctx, "d.md", []byte(content)); err != nil {
		t.Fatal(err)
	}

	root, cs, err := svc.GetDocument(ctx, "d.md")
	if err != nil {
		t.Fatal(err)
	}
	note, err := svc.UpdateDocument(ctx, "d.md", root, cs)
	if err != nil {
		t.Fatal(err)
	}
	if note.Content != content {
		t.Errorf("round trip changed content:\n got %q\nwant %q", note.Content, content)
	}
}

func TestBlocksRoundTrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	content := "# Head\n\n- one\n- two"
	if _, err := svc.CreateNote(ctx, "b.md", []byte(content)); err != nil {
		t.Fatal(err)
	}

	blocks, cs, err := svc.GetBlocks(ctx, "b.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	note, err := svc.UpdateBlocks(ctx, "b.md", blocks, cs)
	if err != nil {
		t.Fatal(err)
	}
	if note.Content != content {
		t.Errorf("round trip changed content:\n got %q\nwant %q", note.Content, content)
	}
}

func TestSearchFindsIndexedNote(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "s.md", []byte("the word xylophone appears here")); err != nil {
		t.Fatal(err)
	}
	results, err := svc.Search(ctx, "xylophone", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("results = %+v", results)
	}
}
