package doc

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gtext "github.com/yuin/goldmark/text"
)

// markdown is the structural parser behind Parse. Group regions reach it as
// fenced containers (see group_ext.go); tables, strikethrough and task
// lists come from the GFM extensions.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		groupExtension{},
	),
)

// Parse builds a document tree from Markdown text. It is the approximate
// left inverse of Serialize: trees built from the non-group, non-table
// subset round-trip structurally.
//
// Parsing is best effort. Unmatched sentinels are left in place and
// absorbed as ordinary content; no error is ever returned for malformed
// input. Use Validate to detect degraded regions explicitly.
func Parse(content string) *Node {
	normalized := normalizeSentinels(content)
	source := []byte(normalized)
	root := markdown.Parser().Parse(gtext.NewReader(source))
	return &Node{Kind: KindDocument, Children: convertChildren(root, source)}
}

// normalizeSentinels rewrites every balanced sentinel pair into the generic
// container fence understood by the structural parser. Deeper regions get
// shorter fences so nested containers close at the right level. Sentinels
// that fail to pair are left untouched so the parser absorbs them as plain
// content.
func normalizeSentinels(content string) string {
	regions, _ := ScanRegions(content)
	if len(regions) == 0 {
		return content
	}

	maxDepth := 0
	for _, r := range regions {
		if r.Depth > maxDepth {
			maxDepth = r.Depth
		}
	}

	type edit struct {
		start, end int
		repl       string
	}
	var edits []edit
	for _, r := range regions {
		fence := strings.Repeat(":", 3+maxDepth-r.Depth)
		edits = append(edits, edit{
			start: r.OpenStart,
			end:   r.OpenEnd,
			repl:  fmt.Sprintf(`%sgroup id="%s" title="%s"`, fence, r.ID, r.Title),
		})
		edits = append(edits, edit{start: r.CloseStart, end: r.CloseEnd, repl: fence})
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(content))
	prev := 0
	for _, e := range edits {
		b.WriteString(content[prev:e.start])
		b.WriteString(e.repl)
		prev = e.end
	}
	b.WriteString(content[prev:])
	return b.String()
}

func convertChildren(n gast.Node, source []byte) []*Node {
	var out []*Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if converted := convertBlock(c, source); converted != nil {
			out = append(out, converted)
		}
	}
	return out
}

func convertBlock(n gast.Node, source []byte) *Node {
	switch b := n.(type) {
	case *gast.Paragraph:
		return &Node{Kind: KindParagraph, Children: convertInlineChildren(b, source)}

	case *gast.TextBlock:
		return &Node{Kind: KindParagraph, Children: convertInlineChildren(b, source)}

	case *gast.Heading:
		level := b.Level
		if level > 3 {
			level = 3
		}
		return &Node{Kind: KindHeading, Level: level, Children: convertInlineChildren(b, source)}

	case *gast.Blockquote:
		return &Node{Kind: KindBlockquote, Children: convertChildren(b, source)}

	case *gast.FencedCodeBlock:
		return &Node{
			Kind:     KindCodeBlock,
			Language: string(b.Language(source)),
			Literal:  blockLines(b, source),
		}

	case *gast.CodeBlock:
		return &Node{Kind: KindCodeBlock, Literal: blockLines(b, source)}

	case *gast.ThematicBreak:
		return &Node{Kind: KindHorizontalRule}

	case *gast.List:
		return convertList(b, source)

	case *gast.HTMLBlock:
		// Raw HTML (including orphan sentinels) degrades to plain text.
		return &Node{Kind: KindParagraph, Children: []*Node{NewText(strings.TrimSuffix(blockLines(b, source), "\n"))}}

	case *groupBlock:
		children := convertChildren(b, source)
		if len(children) == 0 {
			children = []*Node{NewParagraph()}
		}
		return &Node{Kind: KindContentGroup, GroupID: b.id, Title: b.title, Children: children}

	case *east.Table:
		return convertTable(b, source)
	}
	return nil
}

// convertTable hoists the header wrapper the structural parser inserts: a
// Table node's children are TableRow nodes only.
func convertTable(t *east.Table, source []byte) *Node {
	table := &Node{Kind: KindTable}
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *east.TableHeader, *east.TableRow:
			row := &Node{Kind: KindTableRow}
			for cell := c.FirstChild(); cell != nil; cell = cell.NextSibling() {
				inline := convertInlineChildren(cell, source)
				row.AppendChild(&Node{Kind: KindTableCell, Children: []*Node{
					{Kind: KindParagraph, Children: inline},
				}})
			}
			table.AppendChild(row)
		}
	}
	return table
}

func convertList(l *gast.List, source []byte) *Node {
	task := listIsTask(l)

	var list *Node
	switch {
	case task:
		list = &Node{Kind: KindTaskList}
	case l.IsOrdered():
		list = &Node{Kind: KindOrderedList, Start: l.Start}
	default:
		list = &Node{Kind: KindBulletList}
	}

	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		children := convertChildren(item, source)
		if task {
			checked := stripTaskMarker(item, &children, source)
			list.AppendChild(&Node{Kind: KindTaskItem, Checked: checked, Children: children})
		} else {
			list.AppendChild(&Node{Kind: KindListItem, Children: children})
		}
	}
	return list
}

// listIsTask reports whether the list's first item starts with a task
// checkbox. Task-ness is decided per list, matching the model where task
// lists and plain lists are distinct node kinds.
func listIsTask(l *gast.List) bool {
	item := l.FirstChild()
	if item == nil {
		return false
	}
	first := item.FirstChild()
	if first == nil {
		return false
	}
	_, ok := first.FirstChild().(*east.TaskCheckBox)
	return ok
}

// stripTaskMarker removes the checkbox artifacts from an already converted
// item: the checkbox itself never reaches the converted tree (it is not an
// inline text), but the text run following it keeps one leading space.
func stripTaskMarker(item gast.Node, children *[]*Node, source []byte) bool {
	checked := false
	if first := item.FirstChild(); first != nil {
		if cb, ok := first.FirstChild().(*east.TaskCheckBox); ok {
			checked = cb.IsChecked
		}
	}
	if len(*children) > 0 {
		block := (*children)[0]
		if block.Kind == KindParagraph && len(block.Children) > 0 {
			run := block.Children[0]
			if run.Kind == KindText {
				run.Literal = strings.TrimPrefix(run.Literal, " ")
			}
		}
	}
	return checked
}

func blockLines(n gast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		s := lines.At(i)
		buf.Write(s.Value(source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func convertInlineChildren(n gast.Node, source []byte) []*Node {
	runs := collectInline(n, source)
	return mergeRuns(runs)
}

// collectInline flattens an inline subtree into text runs. Wrapper nodes
// append their mark to every run they contain, so a run's mark list reads
// innermost first: serialization re-wraps in the same order.
func collectInline(n gast.Node, source []byte) []*Node {
	var out []*Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch inline := c.(type) {
		case *gast.Text:
			value := string(inline.Segment.Value(source))
			if inline.SoftLineBreak() || inline.HardLineBreak() {
				value += "\n"
			}
			out = append(out, NewText(value))

		case *gast.String:
			out = append(out, NewText(string(inline.Value)))

		case *gast.Emphasis:
			kind := MarkItalic
			if inline.Level >= 2 {
				kind = MarkBold
			}
			out = append(out, markRuns(collectInline(c, source), Mark{Kind: kind})...)

		case *gast.CodeSpan:
			out = append(out, NewText(codeSpanText(inline, source), Mark{Kind: MarkCode}))

		case *gast.Link:
			out = append(out, markRuns(collectInline(c, source), Mark{Kind: MarkLink, Href: string(inline.Destination)})...)

		case *gast.AutoLink:
			url := string(inline.URL(source))
			out = append(out, NewText(url, Mark{Kind: MarkLink, Href: url}))

		case *east.Strikethrough:
			out = append(out, markRuns(collectInline(c, source), Mark{Kind: MarkStrike})...)

		case *east.TaskCheckBox:
			// Handled at list-item level.

		case *gast.RawHTML:
			var buf bytes.Buffer
			for i := 0; i < inline.Segments.Len(); i++ {
				seg := inline.Segments.At(i)
				buf.Write(seg.Value(source))
			}
			out = append(out, NewText(buf.String()))

		default:
			// Unknown inline constructs contribute their text content.
			out = append(out, collectInline(c, source)...)
		}
	}
	return out
}

func markRuns(runs []*Node, m Mark) []*Node {
	for _, r := range runs {
		r.Marks = append(r.Marks, m)
	}
	return runs
}

func codeSpanText(n *gast.CodeSpan, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// mergeRuns joins adjacent text runs carrying identical mark lists into one
// run, giving parsed trees a canonical inline form.
func mergeRuns(runs []*Node) []*Node {
	var out []*Node
	for _, r := range runs {
		if len(out) > 0 && sameMarks(out[len(out)-1].Marks, r.Marks) {
			out[len(out)-1].Literal += r.Literal
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
