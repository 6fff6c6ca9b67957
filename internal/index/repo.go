package index

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/perthro/internal/models"
)

// NoteRow represents a row in the notes table. Preview carries the leading
// slice of the body for list and mention surfaces.
type NoteRow struct {
	Path      string
	Title     string
	Checksum  string
	Preview   string
	UpdatedAt time.Time
}

// SearchResult represents one full-text search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// GraphNode is a node in the containment graph: a note or a group.
type GraphNode struct {
	ID    string
	Kind  string // "note" or "group"
	Title string
}

// GraphLink is a containment edge from a note to a group it embeds.
type GraphLink struct {
	Source string
	Target string
}

// UpsertNote inserts or replaces a note, its FTS entry, and its group
// occurrences within a transaction. Duplicate group ids within one note are
// recorded as-is; Validate surfaces them, the index never drops them.
func (db *DB) UpsertNote(n NoteRow, body string, groups []models.GroupRef) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, n.Path, n.Title, n.Checksum, body, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, n.Path, n.Title, body); err != nil {
		return err
	}

	// Replace group occurrences: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM groups WHERE note_path = ?`, n.Path); err != nil {
		return fmt.Errorf("index: clear groups: %w", err)
	}
	if len(groups) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO groups (id, note_path, title, pos) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare group insert: %w", err)
		}
		defer stmt.Close()
		for _, g := range groups {
			if _, err := stmt.Exec(g.ID, n.Path, g.Title, g.Pos); err != nil {
				return fmt.Errorf("index: insert group: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNote removes a note, its FTS entry, and its group occurrences.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM groups WHERE note_path = ?`, path); err != nil {
		return fmt.Errorf("index: delete groups: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetNote returns a single note row, or nil when the path is not indexed.
func (db *DB) GetNote(path string) (*NoteRow, error) {
	var n NoteRow
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, substr(body, 1, 200), updated_at
		FROM notes WHERE path = ?
	`, path).Scan(&n.Path, &n.Title, &n.Checksum, &n.Preview, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	return &n, nil
}

// ListNotes returns notes ordered by sort ("title", "path", or the default
// "updated_at" descending). A non-positive limit returns all rows.
func (db *DB) ListNotes(limit, offset int, sort string) ([]NoteRow, int, error) {
	order := "updated_at DESC"
	switch sort {
	case "title":
		order = "title COLLATE NOCASE ASC"
	case "path":
		order = "path ASC"
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, title, checksum, substr(body, 1, 200), updated_at
		FROM notes
		ORDER BY `+order+`
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var n NoteRow
		if err := rows.Scan(&n.Path, &n.Title, &n.Checksum, &n.Preview, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// GroupsForNote returns the group occurrences of one note in document order.
func (db *DB) GroupsForNote(path string) ([]models.GroupRef, error) {
	return db.queryGroups(`SELECT id, note_path, title, pos FROM groups WHERE note_path = ? ORDER BY pos`, path)
}

// AllGroups returns every group occurrence in the corpus.
func (db *DB) AllGroups() ([]models.GroupRef, error) {
	return db.queryGroups(`SELECT id, note_path, title, pos FROM groups ORDER BY note_path, pos`)
}

// FindGroup returns the occurrences of a group id across all notes. More
// than one row means the id is duplicated somewhere.
func (db *DB) FindGroup(id string) ([]models.GroupRef, error) {
	return db.queryGroups(`SELECT id, note_path, title, pos FROM groups WHERE id = ? ORDER BY note_path, pos`, id)
}

func (db *DB) queryGroups(query string, args ...any) ([]models.GroupRef, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query groups: %w", err)
	}
	defer rows.Close()

	var out []models.GroupRef
	for rows.Next() {
		var g models.GroupRef
		if err := rows.Scan(&g.ID, &g.NotePath, &g.Title, &g.Pos); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Graph returns the containment graph: every note and group as nodes,
// note→group embedding as edges.
func (db *DB) Graph() ([]GraphNode, []GraphLink, error) {
	var nodes []GraphNode

	rows, err := db.conn.Query(`SELECT path, title FROM notes`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph notes: %w", err)
	}
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.ID, &n.Title); err != nil {
			rows.Close()
			return nil, nil, err
		}
		n.Kind = "note"
		nodes = append(nodes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var links []GraphLink
	rows, err = db.conn.Query(`SELECT id, note_path, title FROM groups`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g GraphNode
		var owner string
		if err := rows.Scan(&g.ID, &owner, &g.Title); err != nil {
			return nil, nil, err
		}
		g.Kind = "group"
		nodes = append(nodes, g)
		links = append(links, GraphLink{Source: owner, Target: g.ID})
	}
	return nodes, links, rows.Err()
}

// AllPaths returns every indexed note path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path→checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
