package doc

import (
	"regexp"
	"strings"
)

// UntitledGroup is the display title of a group whose content has no text.
const UntitledGroup = "Untitled"

// titleMaxLen is the display length limit before truncation.
const titleMaxLen = 50

var (
	headingMarkerRe = regexp.MustCompile(`^#{1,6}\s+`)
	listMarkerRe    = regexp.MustCompile(`^(?:[-*+]\s+|\d+[.)]\s+|>\s+)+`)
	boldRe          = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldUnderRe     = regexp.MustCompile(`__(.*?)__`)
	italicRe        = regexp.MustCompile(`\*(.*?)\*`)
	italicUnderRe   = regexp.MustCompile(`_(.*?)_`)
	codeSpanRe      = regexp.MustCompile("`(.*?)`")
)

// DeriveTitle computes a group's display title from its Markdown content.
// The first line with any non-whitespace text is flattened to plain text:
// leading heading, list and quote markers are stripped, inline emphasis and
// code markup is unwrapped (keeping the wrapped text), and the result is
// trimmed and truncated to 50 runes. Content with no text derives
// "Untitled".
//
// Titles are recomputed on every serialization and every splice-back; the
// Title field carried on a group node is never the source of truth.
func DeriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if title := flattenLine(line); title != "" {
			return truncateTitle(title)
		}
	}
	return UntitledGroup
}

func flattenLine(line string) string {
	s := strings.TrimSpace(line)
	s = headingMarkerRe.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "$1")
	s = boldUnderRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = italicUnderRe.ReplaceAllString(s, "$1")
	s = codeSpanRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= titleMaxLen {
		return s
	}
	return string(runes[:titleMaxLen]) + "…"
}
