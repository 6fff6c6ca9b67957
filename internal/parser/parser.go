// Package parser extracts index metadata from Markdown note content: the
// display title, the searchable body, and group occurrences.
package parser

import (
	"strings"

	"github.com/starford/perthro/internal/doc"
	"github.com/starford/perthro/internal/models"
)

// Result holds the metadata extracted from one note.
type Result struct {
	Title  string
	Body   string
	Groups []models.GroupRef
}

// Parse extracts metadata from raw Markdown bytes. The title is derived
// from the first content line the way group titles are; the body is the
// content with sentinel lines removed so search never matches marker goo;
// groups come from a linear scan of open sentinels.
func Parse(path string, data []byte) *Result {
	content := string(data)

	opens := doc.ScanOpens(content)
	groups := make([]models.GroupRef, 0, len(opens))
	for _, o := range opens {
		groups = append(groups, models.GroupRef{
			ID:       o.ID,
			NotePath: path,
			Title:    o.Title,
			Pos:      o.Pos,
		})
	}

	body := stripSentinels(content)
	return &Result{
		Title:  doc.DeriveTitle(body),
		Body:   body,
		Groups: groups,
	}
}

// stripSentinels removes lines that consist solely of a group sentinel.
// Inner group content stays searchable.
func stripSentinels(content string) string {
	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "<!-- group:") || strings.HasPrefix(trimmed, "<!-- /group:") {
			if strings.HasSuffix(trimmed, "-->") {
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
