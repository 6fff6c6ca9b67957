package block

import (
	"fmt"
	"regexp"
	"strings"
)

var numberedRe = regexp.MustCompile(`^\d+\. `)

// ParseBlocks scans Markdown into flat blocks with a single forward pass
// over lines. Recognition order per line: fenced code, divider, headings
// (deepest first), todo markers, bullets, numbered items, quote runs, plain
// text. Blank lines separate blocks and produce none themselves.
//
// Block ids are positional (b1, b2, ...); the model has no durable
// identity, it exists to migrate legacy content.
func ParseBlocks(markdown string) []Block {
	lines := strings.Split(markdown, "\n")
	var blocks []Block

	appendBlock := func(t Type, content string, checked bool) {
		blocks = append(blocks, Block{
			ID:      fmt.Sprintf("b%d", len(blocks)+1),
			Type:    t,
			Content: content,
			Checked: checked,
		})
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue

		case strings.HasPrefix(trimmed, "```"):
			// Fenced code: absorb until the matching close or end of input.
			var code []string
			j := i + 1
			for ; j < len(lines); j++ {
				if strings.TrimSpace(lines[j]) == "```" {
					break
				}
				code = append(code, lines[j])
			}
			appendBlock(TypeCode, strings.Join(code, "\n"), false)
			i = j

		case trimmed == "---" || trimmed == "***" || trimmed == "___":
			appendBlock(TypeDivider, "", false)

		case strings.HasPrefix(trimmed, "### "):
			appendBlock(TypeHeading3, trimmed[4:], false)

		case strings.HasPrefix(trimmed, "## "):
			appendBlock(TypeHeading2, trimmed[3:], false)

		case strings.HasPrefix(trimmed, "# "):
			appendBlock(TypeHeading1, trimmed[2:], false)

		case strings.HasPrefix(trimmed, "- [x] "):
			appendBlock(TypeTodo, trimmed[6:], true)

		case strings.HasPrefix(trimmed, "- [ ] "):
			appendBlock(TypeTodo, trimmed[6:], false)

		case strings.HasPrefix(trimmed, "- "):
			appendBlock(TypeBullet, trimmed[2:], false)

		case strings.HasPrefix(trimmed, "* "):
			appendBlock(TypeBullet, trimmed[2:], false)

		case numberedRe.MatchString(trimmed):
			marker := numberedRe.FindString(trimmed)
			appendBlock(TypeNumbered, trimmed[len(marker):], false)

		case strings.HasPrefix(trimmed, "> "):
			// Merge a run of quoted lines into one quote block.
			quoted := []string{trimmed[2:]}
			j := i + 1
			for ; j < len(lines); j++ {
				next := strings.TrimSpace(lines[j])
				if !strings.HasPrefix(next, "> ") {
					break
				}
				quoted = append(quoted, next[2:])
			}
			appendBlock(TypeQuote, strings.Join(quoted, "\n"), false)
			i = j - 1

		default:
			appendBlock(TypeText, trimmed, false)
		}
	}
	return blocks
}
