// Package block implements the legacy flat block model: an independent
// Markdown round trip over a list of typed blocks. It predates the document
// tree and is kept for migrating content that has no tree representation
// yet. It covers a strict subset of constructs: no tables, no content
// groups, no multi-mark inline runs.
package block

// Type enumerates the legacy block types.
type Type string

const (
	TypeText     Type = "text"
	TypeHeading1 Type = "heading1"
	TypeHeading2 Type = "heading2"
	TypeHeading3 Type = "heading3"
	TypeBullet   Type = "bullet"
	TypeNumbered Type = "numbered"
	TypeTodo     Type = "todo"
	TypeQuote    Type = "quote"
	TypeCode     Type = "code"
	TypeDivider  Type = "divider"
)

// Block is one flat content block. Checked is meaningful only for TypeTodo.
type Block struct {
	ID      string `json:"id"`
	Type    Type   `json:"type"`
	Content string `json:"content"`
	Checked bool   `json:"checked"`
}
