package doc

import (
	"fmt"
	"strings"
)

// Serialize renders a document tree to its canonical Markdown text. It is a
// pure function: the same tree always produces the same text, and no node
// is mutated.
//
// Sibling blocks are joined by one blank line, except that consecutive
// lists of the same kind are joined by a single newline so they stay one
// visual list. Group titles are recomputed from serialized content; any
// title stored on the node is ignored.
func Serialize(n *Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == KindDocument {
		return serializeBlocks(n.Children)
	}
	return serializeBlock(n)
}

func serializeBlocks(blocks []*Node) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			if isListFamily(block.Kind) && blocks[i-1].Kind == block.Kind {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(serializeBlock(block))
	}
	return b.String()
}

func serializeBlock(n *Node) string {
	switch n.Kind {
	case KindParagraph:
		return serializeInline(n.Children)

	case KindHeading:
		return strings.Repeat("#", n.Level) + " " + serializeInline(n.Children)

	case KindBlockquote:
		return prefixLines(serializeBlocks(n.Children), "> ")

	case KindCodeBlock:
		var b strings.Builder
		b.WriteString("```")
		b.WriteString(n.Language)
		b.WriteString("\n")
		if n.Literal != "" {
			b.WriteString(n.Literal)
			if !strings.HasSuffix(n.Literal, "\n") {
				b.WriteString("\n")
			}
		}
		b.WriteString("```")
		return b.String()

	case KindHorizontalRule:
		return "---"

	case KindBulletList:
		return serializeListItems(n.Children, func(int) string { return "- " })

	case KindOrderedList:
		start := n.Start
		if start < 1 {
			start = 1
		}
		return serializeListItems(n.Children, func(i int) string {
			return fmt.Sprintf("%d. ", start+i)
		})

	case KindTaskList:
		return serializeListItems(n.Children, nil)

	case KindTable:
		return serializeTable(n)

	case KindContentGroup:
		content := serializeBlocks(n.Children)
		title := DeriveTitle(content)
		return OpenSentinel(n.GroupID, title) + "\n" + content + "\n" + CloseSentinel(n.GroupID)

	case KindText:
		return applyMarks(n.Literal, n.Marks)

	case KindListItem, KindTaskItem:
		// Items are rendered by their parent list; standalone rendering
		// falls back to the item's content.
		return serializeBlocks(n.Children)

	case KindTableRow, KindTableCell:
		return serializeBlocks(n.Children)

	case KindDocument:
		return serializeBlocks(n.Children)
	}
	return ""
}

// serializeListItems renders list items one per line. marker computes the
// item prefix by index; when nil, the item's own checked state selects a
// task marker. Continuation lines of multi-block items are indented to the
// content column.
func serializeListItems(items []*Node, marker func(int) string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		prefix := ""
		switch {
		case marker != nil:
			prefix = marker(i)
		case item.Checked:
			prefix = "- [x] "
		default:
			prefix = "- [ ] "
		}
		content := serializeBlocks(item.Children)
		b.WriteString(prefix)
		b.WriteString(indentContinuation(content, len(prefix)))
	}
	return b.String()
}

func indentContinuation(s string, width int) string {
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return s
	}
	pad := strings.Repeat(" ", width)
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// serializeTable renders one row per line. The column count is fixed by the
// first row; rows with a different cell count are emitted as-is, without
// reconciliation. A separator row follows the header row.
func serializeTable(table *Node) string {
	if len(table.Children) == 0 {
		return ""
	}
	cols := len(table.Children[0].Children)

	var lines []string
	for i, row := range table.Children {
		lines = append(lines, serializeTableRow(row))
		if i == 0 {
			cells := make([]string, cols)
			for c := range cells {
				cells[c] = "---"
			}
			lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

func serializeTableRow(row *Node) string {
	cells := make([]string, len(row.Children))
	for i, cell := range row.Children {
		// Cell content is inline-ish; newlines would break the row line.
		cells[i] = strings.ReplaceAll(serializeBlocks(cell.Children), "\n", " ")
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func serializeInline(children []*Node) string {
	var b strings.Builder
	for _, child := range children {
		b.WriteString(serializeBlock(child))
	}
	return b.String()
}

// applyMarks wraps text cumulatively in mark-list order: the first mark is
// the innermost wrapper. Order is preserved exactly, so runs with the same
// mark set but different ordering serialize differently.
func applyMarks(text string, marks []Mark) string {
	for _, m := range marks {
		switch m.Kind {
		case MarkBold:
			text = "**" + text + "**"
		case MarkItalic:
			text = "*" + text + "*"
		case MarkCode:
			text = "`" + text + "`"
		case MarkStrike:
			text = "~~" + text + "~~"
		case MarkLink:
			text = "[" + text + "](" + m.Href + ")"
		}
	}
	return text
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
