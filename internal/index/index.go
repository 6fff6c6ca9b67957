package index

import "github.com/starford/perthro/internal/models"

// NoteIndex defines the interface for note and group indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, body string, groups []models.GroupRef) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	GetNote(path string) (*NoteRow, error)
	ListNotes(limit, offset int, sort string) ([]NoteRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	GroupsForNote(path string) ([]models.GroupRef, error)
	AllGroups() ([]models.GroupRef, error)
	FindGroup(id string) ([]models.GroupRef, error)
	Graph() ([]GraphNode, []GraphLink, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
