// Package models defines the domain types for Perthro.
package models

import "time"

// Note represents a Markdown note in the vault. Content is the persisted
// text: plain Markdown plus group sentinel pairs as the only extension.
type Note struct {
	Path      string     `json:"path"`
	Content   []byte     `json:"-"`
	Title     string     `json:"title,omitempty"`
	Groups    []GroupRef `json:"groups,omitempty"`
	Checksum  string     `json:"checksum"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupRef identifies one content group embedded in a note, located by a
// linear scan of the note's open sentinels.
type GroupRef struct {
	ID       string `json:"id"`
	NotePath string `json:"note_path"`
	Title    string `json:"title"`
	Pos      int    `json:"pos"`
}
