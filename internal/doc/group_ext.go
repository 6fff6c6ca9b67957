package doc

import (
	"regexp"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// The sentinel pre-processor rewrites balanced group sentinel pairs into a
// generic fenced container so the structural parser can treat group regions
// as ordinary nested blocks:
//
//	:::group id="ID" title="TITLE"
//	...
//	:::
//
// Nested regions use shorter fences than their ancestors; a close fence
// only terminates a container opened with a fence of at most its length,
// the same rule code fences use.
//
// groupBlock is the AST container node the fence produces; the tree
// converter maps it to a ContentGroup node by id and title.
type groupBlock struct {
	gast.BaseBlock
	id       string
	title    string
	fenceLen int
}

var kindGroupBlock = gast.NewNodeKind("ContentGroup")

func (n *groupBlock) Kind() gast.NodeKind { return kindGroupBlock }

func (n *groupBlock) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"ID":    n.id,
		"Title": n.title,
	}, nil)
}

var (
	groupFenceOpenRe  = regexp.MustCompile(`^(:{3,})group id="([^"]*)" title="(.*)"\s*$`)
	groupFenceCloseRe = regexp.MustCompile(`^(:{3,})\s*$`)
)

type groupBlockParser struct{}

func (p *groupBlockParser) Trigger() []byte { return []byte{':'} }

func (p *groupBlockParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || line[pos] != ':' {
		return nil, parser.NoChildren
	}
	m := groupFenceOpenRe.FindSubmatch(line[pos:])
	if m == nil {
		return nil, parser.NoChildren
	}
	node := &groupBlock{id: string(m[2]), title: string(m[3]), fenceLen: len(m[1])}
	reader.Advance(segment.Len() - 1 - segment.Padding)
	return node, parser.HasChildren
}

func (p *groupBlockParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*groupBlock)
	line, segment := reader.PeekLine()
	w, lpos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 {
		if m := groupFenceCloseRe.FindSubmatch(line[lpos:]); m != nil && len(m[1]) >= n.fenceLen {
			newline := 1
			if len(line) > 0 && line[len(line)-1] != '\n' {
				newline = 0
			}
			reader.Advance(segment.Len() - newline - segment.Padding)
			return parser.Close
		}
	}
	return parser.Continue | parser.HasChildren
}

func (p *groupBlockParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {}

func (p *groupBlockParser) CanInterruptParagraph() bool { return true }

func (p *groupBlockParser) CanAcceptIndentedLine() bool { return false }

type groupExtension struct{}

func (e groupExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&groupBlockParser{}, 100),
	))
}
