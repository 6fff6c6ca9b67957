package block

import (
	"fmt"
	"strings"
)

// SerializeBlocks is the structural inverse of ParseBlocks on the covered
// subset. Numbered ordinals are recomputed from the count of immediately
// preceding numbered siblings, never stored. Consecutive blocks of the same
// list type are joined by a single newline; everything else gets a blank
// line between siblings.
func SerializeBlocks(blocks []Block) string {
	var b strings.Builder
	run := 0 // numbered-run length ending at the previous block

	for i, blk := range blocks {
		if i > 0 {
			if sameListType(blocks[i-1].Type, blk.Type) {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}

		if blk.Type == TypeNumbered {
			run++
		} else {
			run = 0
		}

		b.WriteString(serializeBlock(blk, run))
	}
	return b.String()
}

func serializeBlock(blk Block, ordinal int) string {
	switch blk.Type {
	case TypeHeading1:
		return "# " + blk.Content
	case TypeHeading2:
		return "## " + blk.Content
	case TypeHeading3:
		return "### " + blk.Content
	case TypeBullet:
		return "- " + blk.Content
	case TypeNumbered:
		return fmt.Sprintf("%d. %s", ordinal, blk.Content)
	case TypeTodo:
		if blk.Checked {
			return "- [x] " + blk.Content
		}
		return "- [ ] " + blk.Content
	case TypeQuote:
		lines := strings.Split(blk.Content, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n")
	case TypeCode:
		if blk.Content == "" {
			return "```\n```"
		}
		return "```\n" + blk.Content + "\n```"
	case TypeDivider:
		return "---"
	case TypeText:
		return blk.Content
	}
	return blk.Content
}

// sameListType reports whether two adjacent block types suppress the blank
// line between them. The adjacency test looks only at type, never content.
func sameListType(a, b Type) bool {
	if a != b {
		return false
	}
	return a == TypeBullet || a == TypeNumbered || a == TypeTodo
}
