package api

import (
	"fmt"
	"time"

	"github.com/starford/perthro/internal/block"
	"github.com/starford/perthro/internal/doc"
	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// CreateGroupRequest asks for a new content group appended to a note.
type CreateGroupRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"Captured thought"`
}

// EnterGroupRequest names the group the session should descend into.
type EnterGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Title   string `json:"title"`
}

// ResolveMentionRequest is a selected mention target to navigate to.
type ResolveMentionRequest struct {
	Kind           string `json:"kind" validate:"required"`
	ID             string `json:"id" validate:"required"`
	ParentNotePath string `json:"parent_note_path"`
	Label          string `json:"label"`
}

// BridgeReplyRequest is the editor's answer to a bridge.request event.
type BridgeReplyRequest struct {
	ID      string `json:"id" validate:"required"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

// EditorContentRequest carries the editor's latest content for the
// debounced save path.
type EditorContentRequest struct {
	Content string `json:"content"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// GroupListResponse wraps group occurrence listings.
type GroupListResponse struct {
	Groups []models.GroupRef `json:"groups" validate:"required"`
}

// SearchResponse wraps full-text search hits.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the note and group containment graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes" validate:"required"`
	Links []index.GraphLink `json:"links" validate:"required"`
}

// SessionState describes where the navigation session currently is.
type SessionState struct {
	ActiveNote string `json:"active_note"`
	Depth      int    `json:"depth"`
	AtRoot     bool   `json:"at_root"`
}

// DocumentResponse is a note rendered as its structural tree.
type DocumentResponse struct {
	Path     string   `json:"path"`
	Checksum string   `json:"checksum"`
	Document *NodeDTO `json:"document"`
}

// BlocksResponse is a note rendered as the flat block list.
type BlocksResponse struct {
	Path     string        `json:"path"`
	Checksum string        `json:"checksum"`
	Blocks   []block.Block `json:"blocks"`
}

// MarkDTO is the wire form of one inline mark.
type MarkDTO struct {
	Type string `json:"type"`
	Href string `json:"href,omitempty"`
}

// NodeDTO is the wire form of one document tree node. Kind names follow
// NodeKind.String().
type NodeDTO struct {
	Kind     string     `json:"kind"`
	Children []*NodeDTO `json:"children,omitempty"`
	Level    int        `json:"level,omitempty"`
	Language string     `json:"language,omitempty"`
	Literal  string     `json:"literal,omitempty"`
	Start    int        `json:"start,omitempty"`
	Checked  bool       `json:"checked,omitempty"`
	GroupID  string     `json:"group_id,omitempty"`
	Title    string     `json:"title,omitempty"`
	Marks    []MarkDTO  `json:"marks,omitempty"`
}

var markNames = map[doc.MarkKind]string{
	doc.MarkBold:   "bold",
	doc.MarkItalic: "italic",
	doc.MarkCode:   "code",
	doc.MarkStrike: "strike",
	doc.MarkLink:   "link",
}

var markKinds = map[string]doc.MarkKind{
	"bold":   doc.MarkBold,
	"italic": doc.MarkItalic,
	"code":   doc.MarkCode,
	"strike": doc.MarkStrike,
	"link":   doc.MarkLink,
}

var nodeKinds = func() map[string]doc.NodeKind {
	m := make(map[string]doc.NodeKind)
	for k := doc.KindDocument; k <= doc.KindText; k++ {
		m[k.String()] = k
	}
	return m
}()

func toNodeDTO(n *doc.Node) *NodeDTO {
	if n == nil {
		return nil
	}
	out := &NodeDTO{
		Kind:     n.Kind.String(),
		Level:    n.Level,
		Language: n.Language,
		Literal:  n.Literal,
		Start:    n.Start,
		Checked:  n.Checked,
		GroupID:  n.GroupID,
		Title:    n.Title,
	}
	for _, m := range n.Marks {
		out.Marks = append(out.Marks, MarkDTO{Type: markNames[m.Kind], Href: m.Href})
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toNodeDTO(c))
	}
	return out
}

func fromNodeDTO(d *NodeDTO) (*doc.Node, error) {
	if d == nil {
		return nil, fmt.Errorf("api: missing document node")
	}
	kind, ok := nodeKinds[d.Kind]
	if !ok {
		return nil, fmt.Errorf("api: unknown node kind %q", d.Kind)
	}
	out := &doc.Node{
		Kind:     kind,
		Level:    d.Level,
		Language: d.Language,
		Literal:  d.Literal,
		Start:    d.Start,
		Checked:  d.Checked,
		GroupID:  d.GroupID,
		Title:    d.Title,
	}
	for _, m := range d.Marks {
		mk, ok := markKinds[m.Type]
		if !ok {
			return nil, fmt.Errorf("api: unknown mark type %q", m.Type)
		}
		out.Marks = append(out.Marks, doc.Mark{Kind: mk, Href: m.Href})
	}
	for _, c := range d.Children {
		child, err := fromNodeDTO(c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/assets/image.png" validate:"required"`
}

// NoteListItemDTO mirrors NoteListItem for swag.
type NoteListItemDTO struct {
	Path      string    `json:"path" example:"notes/hello.md"`
	Title     string    `json:"title" example:"Hello"`
	Checksum  string    `json:"checksum" example:"abc123..."`
	UpdatedAt time.Time `json:"updated_at"`
}
