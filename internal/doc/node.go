// Package doc implements the nested rich-text document model and its
// bidirectional mapping to Markdown text. A document is a tree of typed
// nodes; content groups embed whole sub-documents inside a note, delimited
// in the Markdown form by sentinel comments.
package doc

// NodeKind identifies the variant of a Node. The set is closed: every
// function dispatching on kind switches exhaustively and treats unknown
// kinds as a programming error.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindParagraph
	KindHeading
	KindBlockquote
	KindCodeBlock
	KindHorizontalRule
	KindBulletList
	KindOrderedList
	KindListItem
	KindTaskList
	KindTaskItem
	KindTable
	KindTableRow
	KindTableCell
	KindContentGroup
	KindText
)

// String returns the kind name for logs and test failure messages.
func (k NodeKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindBlockquote:
		return "blockquote"
	case KindCodeBlock:
		return "code_block"
	case KindHorizontalRule:
		return "horizontal_rule"
	case KindBulletList:
		return "bullet_list"
	case KindOrderedList:
		return "ordered_list"
	case KindListItem:
		return "list_item"
	case KindTaskList:
		return "task_list"
	case KindTaskItem:
		return "task_item"
	case KindTable:
		return "table"
	case KindTableRow:
		return "table_row"
	case KindTableCell:
		return "table_cell"
	case KindContentGroup:
		return "content_group"
	case KindText:
		return "text"
	}
	return "unknown"
}

// MarkKind identifies an inline mark applied to a text run.
type MarkKind int

const (
	MarkBold MarkKind = iota
	MarkItalic
	MarkCode
	MarkStrike
	MarkLink
)

// Mark is one inline decoration on a text run. Href is set only for
// MarkLink. The order of marks within a run is significant: serialization
// wraps the text cumulatively in list order, so [Bold, Italic] and
// [Italic, Bold] produce different nesting.
type Mark struct {
	Kind MarkKind
	Href string
}

// Node is one node of a document tree. A node owns its children
// exclusively; trees are rebuilt from text on every round trip rather than
// mutated incrementally.
//
// Field usage by kind:
//   - Heading: Level (1..3)
//   - CodeBlock: Language (may be empty), Literal (verbatim content)
//   - OrderedList: Start (first displayed ordinal, default 1)
//   - TaskItem: Checked
//   - ContentGroup: GroupID, Title. Title is carried for display but is
//     never authoritative: serialization recomputes it from content.
//   - Text: Literal, Marks
type Node struct {
	Kind     NodeKind
	Children []*Node

	Level    int
	Language string
	Literal  string
	Start    int
	Checked  bool
	GroupID  string
	Title    string
	Marks    []Mark
}

// NewDocument returns a Document node with the given block children.
func NewDocument(children ...*Node) *Node {
	return &Node{Kind: KindDocument, Children: children}
}

// NewText returns a text run with the given marks applied in order.
func NewText(value string, marks ...Mark) *Node {
	return &Node{Kind: KindText, Literal: value, Marks: marks}
}

// NewParagraph returns a paragraph containing the given inline children.
func NewParagraph(children ...*Node) *Node {
	return &Node{Kind: KindParagraph, Children: children}
}

// NewHeading returns a heading node. Levels outside 1..3 are clamped.
func NewHeading(level int, children ...*Node) *Node {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return &Node{Kind: KindHeading, Level: level, Children: children}
}

// NewGroup returns a content group. Groups are never empty: a group with no
// children is given a single empty paragraph.
func NewGroup(id, title string, children ...*Node) *Node {
	if len(children) == 0 {
		children = []*Node{NewParagraph()}
	}
	return &Node{Kind: KindContentGroup, GroupID: id, Title: title, Children: children}
}

// AppendChild appends child to n, preserving order.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// isListFamily reports whether the kind belongs to the list family used by
// the same-type adjacency rule: consecutive sibling lists of the same kind
// are joined without a blank line.
func isListFamily(k NodeKind) bool {
	return k == KindBulletList || k == KindOrderedList || k == KindTaskList
}
