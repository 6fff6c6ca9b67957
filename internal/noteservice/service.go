// Package noteservice coordinates vault storage and the index for note and
// content-group operations.
package noteservice

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/block"
	"github.com/starford/perthro/internal/checksum"
	"github.com/starford/perthro/internal/doc"
	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/parser"
	"github.com/starford/perthro/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path      string            `json:"path"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Checksum  string            `json:"checksum"`
	Groups    []models.GroupRef `json:"groups"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupDetail is one content group resolved to its inner markdown.
type GroupDetail struct {
	ID       string `json:"id"`
	NotePath string `json:"note_path"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// ValidationReport surfaces sentinel problems in one note.
type ValidationReport struct {
	Path            string   `json:"path"`
	UnmatchedOpens  []string `json:"unmatched_opens"`
	UnmatchedCloses []string `json:"unmatched_closes"`
	DuplicateIDs    []string `json:"duplicate_ids"`
}

// OK reports whether the note has no sentinel problems.
func (r ValidationReport) OK() bool {
	return len(r.UnmatchedOpens) == 0 && len(r.UnmatchedCloses) == 0 && len(r.DuplicateIDs) == 0
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.NoteIndex
}

// NewService creates a new note service.
func NewService(store storage.Provider, db index.NoteIndex) *Service {
	return &Service{store: store, db: db}
}

// GetNote reads a note from storage and parses its metadata.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildNoteDetail(path, data), nil
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content), nil
}

// UpdateNote writes updated content with optimistic concurrency.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content), nil
}

// DeleteNote removes a note from storage and index.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteNote(path)
}

// ListNotes returns paginated notes.
func (s *Service) ListNotes(_ context.Context, limit, offset int, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph returns all nodes and links of the note→group containment graph.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// ListGroups returns the group occurrences of one note, or every group in
// the corpus when path is empty.
func (s *Service) ListGroups(_ context.Context, path string) ([]models.GroupRef, error) {
	if path == "" {
		return s.db.AllGroups()
	}
	return s.db.GroupsForNote(path)
}

// ReadGroup resolves a group id to its inner markdown. When the id occurs in
// more than one note the first occurrence (note path, then position) wins.
func (s *Service) ReadGroup(_ context.Context, id string) (*GroupDetail, error) {
	refs, err := s.db.FindGroup(id)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, apperr.ErrGroupNotFound
	}
	ref := refs[0]
	data, err := s.store.Read(ref.NotePath)
	if err != nil {
		return nil, err
	}
	inner, err := doc.Extract(string(data), id)
	if err != nil {
		return nil, err
	}
	return &GroupDetail{
		ID:       id,
		NotePath: ref.NotePath,
		Title:    ref.Title,
		Content:  inner,
	}, nil
}

// CreateGroup mints a new group id, wraps content in a sentinel pair, and
// appends it to the note. Empty content produces a group holding a single
// blank line so the region stays enterable.
func (s *Service) CreateGroup(_ context.Context, path, content string) (*GroupDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	id := uuid.NewString()
	title := doc.DeriveTitle(content)
	region := doc.WrapGroup(id, content)

	updated := string(data)
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	if updated != "" {
		updated += "\n"
	}
	updated += region + "\n"

	if err := s.store.Write(path, []byte(updated)); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, []byte(updated)); err != nil {
		return nil, err
	}
	return &GroupDetail{ID: id, NotePath: path, Title: title, Content: content}, nil
}

// ValidateNote scans a note's sentinels and reports unmatched pairs and
// duplicate ids. Problems are reported, never repaired.
func (s *Service) ValidateNote(_ context.Context, path string) (*ValidationReport, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	rep := doc.Validate(string(data))
	out := &ValidationReport{
		Path:            path,
		UnmatchedOpens:  make([]string, 0, len(rep.UnmatchedOpens)),
		UnmatchedCloses: make([]string, 0, len(rep.UnmatchedCloses)),
		DuplicateIDs:    append([]string{}, rep.DuplicateIDs...),
	}
	for _, o := range rep.UnmatchedOpens {
		out.UnmatchedOpens = append(out.UnmatchedOpens, o.ID)
	}
	for _, c := range rep.UnmatchedCloses {
		out.UnmatchedCloses = append(out.UnmatchedCloses, strconv.Itoa(c))
	}
	return out, nil
}

// GetDocument parses a note into its structural tree.
func (s *Service) GetDocument(_ context.Context, path string) (*doc.Node, string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", err
	}
	return doc.Parse(string(data)), checksum.Sum(data), nil
}

// UpdateDocument serializes a tree back to markdown and writes it with
// optimistic concurrency.
func (s *Service) UpdateDocument(ctx context.Context, path string, root *doc.Node, ifMatch string) (*NoteDetail, error) {
	content := doc.Serialize(root)
	return s.UpdateNote(ctx, path, []byte(content), ifMatch)
}

// GetBlocks parses a note into the flat block representation.
func (s *Service) GetBlocks(_ context.Context, path string) ([]block.Block, string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", err
	}
	return block.ParseBlocks(string(data)), checksum.Sum(data), nil
}

// UpdateBlocks serializes flat blocks back to markdown and writes them with
// optimistic concurrency.
func (s *Service) UpdateBlocks(ctx context.Context, path string, blocks []block.Block, ifMatch string) (*NoteDetail, error) {
	content := block.SerializeBlocks(blocks)
	return s.UpdateNote(ctx, path, []byte(content), ifMatch)
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and the watcher callback can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	res := parser.Parse(path, data)
	return s.db.UpsertNote(index.NoteRow{
		Path:      path,
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}, res.Body, res.Groups)
}

func (s *Service) buildNoteDetail(path string, data []byte) *NoteDetail {
	res := parser.Parse(path, data)
	return &NoteDetail{
		Path:      path,
		Title:     res.Title,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Groups:    nonNilSlice(res.Groups),
		UpdatedAt: time.Now().UTC(),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
