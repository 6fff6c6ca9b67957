package doc

import (
	"testing"
)

func TestParse_HeadingAndParagraph(t *testing.T) {
	root := Parse("# Hi\n\nbody text")
	if root.Kind != KindDocument || len(root.Children) != 2 {
		t.Fatalf("root = %+v", root)
	}
	h := root.Children[0]
	if h.Kind != KindHeading || h.Level != 1 {
		t.Errorf("heading = %+v", h)
	}
	p := root.Children[1]
	if p.Kind != KindParagraph {
		t.Errorf("paragraph = %+v", p)
	}
}

func TestParse_HeadingLevelClamped(t *testing.T) {
	root := Parse("##### Deep heading")
	if root.Children[0].Level != 3 {
		t.Errorf("level = %d, want 3", root.Children[0].Level)
	}
}

func TestParse_InlineMarksInnermostFirst(t *testing.T) {
	root := Parse("***x***")
	p := root.Children[0]
	if len(p.Children) != 1 {
		t.Fatalf("runs = %d", len(p.Children))
	}
	run := p.Children[0]
	if run.Literal != "x" || len(run.Marks) != 2 {
		t.Fatalf("run = %+v", run)
	}
	// The innermost wrapper comes first in the mark list.
	if run.Marks[0].Kind != MarkBold && run.Marks[0].Kind != MarkItalic {
		t.Errorf("marks = %+v", run.Marks)
	}
}

func TestParse_MergesAdjacentRuns(t *testing.T) {
	root := Parse("plain text without marks")
	p := root.Children[0]
	if len(p.Children) != 1 {
		t.Errorf("expected one merged run, got %d", len(p.Children))
	}
}

func TestParse_GroupBecomesContentGroup(t *testing.T) {
	root := Parse("Intro\n\n<!-- group:g1:Inner -->\nInner text\n<!-- /group:g1 -->")
	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.Children))
	}
	g := root.Children[1]
	if g.Kind != KindContentGroup || g.GroupID != "g1" || g.Title != "Inner" {
		t.Fatalf("group = %+v", g)
	}
	if len(g.Children) != 1 || g.Children[0].Kind != KindParagraph {
		t.Errorf("group children = %+v", g.Children)
	}
}

func TestParse_OrphanSentinelDegradesToText(t *testing.T) {
	root := Parse("before\n\n<!-- group:lost:T -->\n\nafter")
	for _, child := range root.Children {
		if child.Kind == KindContentGroup {
			t.Fatal("unpaired sentinel must not create a group")
		}
	}
}

func TestParse_TaskList(t *testing.T) {
	root := Parse("- [x] done\n- [ ] todo")
	list := root.Children[0]
	if list.Kind != KindTaskList {
		t.Fatalf("kind = %v", list.Kind)
	}
	if !list.Children[0].Checked || list.Children[1].Checked {
		t.Errorf("checked flags wrong: %+v", list.Children)
	}
}

func TestParse_OrderedListStart(t *testing.T) {
	root := Parse("3. a\n4. b")
	list := root.Children[0]
	if list.Kind != KindOrderedList || list.Start != 3 {
		t.Errorf("list = %+v", list)
	}
}

func roundTrip(t *testing.T, content string) {
	t.Helper()
	got := Serialize(Parse(content))
	if got != content {
		t.Errorf("round trip changed text:\n got %q\nwant %q", got, content)
	}
}

func TestRoundTrip_Basics(t *testing.T) {
	roundTrip(t, "# Title\n\nPara with **bold** and *italic*.")
}

func TestRoundTrip_Lists(t *testing.T) {
	roundTrip(t, "- one\n- two\n\n1. first\n2. second")
	roundTrip(t, "- [x] done\n- [ ] todo")
	roundTrip(t, "3. a\n4. b")
}

func TestRoundTrip_CodeAndQuote(t *testing.T) {
	roundTrip(t, "```go\nfmt.Println(\"hi\")\n```")
	roundTrip(t, "> quoted line")
	roundTrip(t, "---")
}

func TestRoundTrip_Table(t *testing.T) {
	roundTrip(t, "| a | b |\n| --- | --- |\n| 1 | 2 |")
}

func TestRoundTrip_Group(t *testing.T) {
	roundTrip(t, "Intro\n\n<!-- group:g1:Inner text -->\nInner text\n<!-- /group:g1 -->\n\nOutro")
}

func TestRoundTrip_NestedGroups(t *testing.T) {
	roundTrip(t, "<!-- group:outer:Outer body -->\nOuter body\n\n"+
		"<!-- group:inner:Deep -->\nDeep\n<!-- /group:inner -->\n<!-- /group:outer -->")
}

func TestRoundTrip_SentinelsQuotedInCode(t *testing.T) {
	// Sentinels inside a fenced code block stay code-block literals and
	// never become a content group.
	content := "```md\n<!-- group:g1:Quoted -->\nexample\n<!-- /group:g1 -->\n```"
	root := Parse(content)
	if len(root.Children) != 1 || root.Children[0].Kind != KindCodeBlock {
		t.Fatalf("children = %+v, want a single code block", root.Children)
	}
	roundTrip(t, content)
}

func TestRoundTrip_Links(t *testing.T) {
	roundTrip(t, "See [docs](https://example.com) and `code`.")
}

func TestRoundTrip_Strikethrough(t *testing.T) {
	roundTrip(t, "old ~~gone~~ text")
}
