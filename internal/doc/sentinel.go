package doc

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/starford/perthro/internal/apperr"
)

// Sentinel grammar: a content group's region inside Markdown text is
// delimited by the comment pair
//
//	<!-- group:ID:TITLE -->
//	...
//	<!-- /group:ID -->
//
// This is the only non-standard extension of the persisted format; text
// outside the sentinels stays plain, human-readable Markdown. Sentinels
// quoted inside fenced code blocks are inert literals: every scan skips
// them, so a note documenting the grammar itself never grows a region.
var (
	openSentinelRe  = regexp.MustCompile(`<!-- group:([^:\s]+):(.*?) -->`)
	closeSentinelRe = regexp.MustCompile(`<!-- /group:([^:\s]+) -->`)
)

// fencedRanges returns the byte ranges covered by fenced code blocks,
// including the fence lines themselves. Backtick and tilde fences are
// recognized with up to three spaces of indentation; an unclosed fence
// runs to the end of the text, as in CommonMark.
func fencedRanges(text string) [][2]int {
	var (
		ranges     [][2]int
		inFence    bool
		fenceChar  byte
		fenceLen   int
		fenceStart int
	)
	pos := 0
	for pos < len(text) {
		next := len(text)
		line := text[pos:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			next = pos + nl + 1
		}
		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)
		if indent <= 3 && len(trimmed) >= 3 && (trimmed[0] == '`' || trimmed[0] == '~') {
			c := trimmed[0]
			n := 0
			for n < len(trimmed) && trimmed[n] == c {
				n++
			}
			rest := strings.TrimSpace(trimmed[n:])
			switch {
			case !inFence && n >= 3:
				// An info string may not contain backticks.
				if c != '`' || !strings.Contains(rest, "`") {
					inFence = true
					fenceChar = c
					fenceLen = n
					fenceStart = pos
				}
			case inFence && c == fenceChar && n >= fenceLen && rest == "":
				inFence = false
				ranges = append(ranges, [2]int{fenceStart, next})
			}
		}
		pos = next
	}
	if inFence {
		ranges = append(ranges, [2]int{fenceStart, len(text)})
	}
	return ranges
}

func insideAny(ranges [][2]int, pos int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}

// Opening is one open sentinel found by a linear scan, without pairing.
type Opening struct {
	ID    string
	Title string
	Pos   int
}

// Region is a matched sentinel pair. Inner content lies between OpenEnd
// and CloseStart. Depth is 0 for top-level groups.
type Region struct {
	ID         string
	Title      string
	OpenStart  int
	OpenEnd    int
	CloseStart int
	CloseEnd   int
	Depth      int
}

// Report is the result of validating sentinel structure in a text.
// Degraded regions are reported, never repaired: parsing keeps its
// silent-degrade behavior regardless of what Validate finds.
type Report struct {
	UnmatchedOpens  []Opening
	UnmatchedCloses []int // offsets of orphan close sentinels
	DuplicateIDs    []string
}

// Clean reports whether the text has no degraded sentinel regions.
func (r Report) Clean() bool {
	return len(r.UnmatchedOpens) == 0 && len(r.UnmatchedCloses) == 0 && len(r.DuplicateIDs) == 0
}

// ScanOpens returns every open sentinel in order of appearance. This is the
// cheap enumeration used by the mention locator and the index; it does not
// pair opens with closes.
func ScanOpens(text string) []Opening {
	fenced := fencedRanges(text)
	matches := openSentinelRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]Opening, 0, len(matches))
	for _, m := range matches {
		if insideAny(fenced, m[0]) {
			continue
		}
		out = append(out, Opening{
			ID:    text[m[2]:m[3]],
			Title: text[m[4]:m[5]],
			Pos:   m[0],
		})
	}
	return out
}

type sentinelToken struct {
	open       bool
	id         string
	title      string
	start, end int
}

func scanTokens(text string) []sentinelToken {
	fenced := fencedRanges(text)
	var toks []sentinelToken
	for _, m := range openSentinelRe.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(fenced, m[0]) {
			continue
		}
		toks = append(toks, sentinelToken{
			open:  true,
			id:    text[m[2]:m[3]],
			title: text[m[4]:m[5]],
			start: m[0],
			end:   m[1],
		})
	}
	for _, m := range closeSentinelRe.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(fenced, m[0]) {
			continue
		}
		toks = append(toks, sentinelToken{
			id:    text[m[2]:m[3]],
			start: m[0],
			end:   m[1],
		})
	}
	sort.Slice(toks, func(i, j int) bool { return toks[i].start < toks[j].start })
	return toks
}

// ScanRegions pairs sentinels with a depth-tracking scan. A close sentinel
// matches the nearest enclosing open with the same id, so nested groups and
// repeated-looking ids are scoped correctly. Unpaired sentinels are
// returned in the report and produce no region.
func ScanRegions(text string) ([]Region, Report) {
	var (
		regions []Region
		report  Report
		stack   []sentinelToken
		seen    = map[string]int{}
		dup     = map[string]bool{}
	)

	for _, tok := range scanTokens(text) {
		if tok.open {
			stack = append(stack, tok)
			seen[tok.id]++
			if seen[tok.id] == 2 && !dup[tok.id] {
				dup[tok.id] = true
				report.DuplicateIDs = append(report.DuplicateIDs, tok.id)
			}
			continue
		}
		// Close: find the nearest open with the same id.
		matched := -1
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].id == tok.id {
				matched = i
				break
			}
		}
		if matched < 0 {
			report.UnmatchedCloses = append(report.UnmatchedCloses, tok.start)
			continue
		}
		// Opens above the matched frame lost their close.
		for i := len(stack) - 1; i > matched; i-- {
			report.UnmatchedOpens = append(report.UnmatchedOpens, Opening{
				ID:    stack[i].id,
				Title: stack[i].title,
				Pos:   stack[i].start,
			})
		}
		open := stack[matched]
		regions = append(regions, Region{
			ID:         open.id,
			Title:      open.title,
			OpenStart:  open.start,
			OpenEnd:    open.end,
			CloseStart: tok.start,
			CloseEnd:   tok.end,
			Depth:      matched,
		})
		stack = stack[:matched]
	}

	for _, open := range stack {
		report.UnmatchedOpens = append(report.UnmatchedOpens, Opening{
			ID:    open.id,
			Title: open.title,
			Pos:   open.start,
		})
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].OpenStart < regions[j].OpenStart })
	return regions, report
}

// Validate reports degraded sentinel regions: unmatched opens or closes and
// duplicate group ids. It never alters the text.
func Validate(text string) Report {
	_, report := ScanRegions(text)
	return report
}

func findRegion(text, id string) (Region, bool) {
	regions, _ := ScanRegions(text)
	for _, r := range regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// Extract returns the content of the group with the given id: the text
// strictly between the first matching sentinel pair, with the single
// framing newline on each side removed. A group holding one empty
// paragraph extracts to the empty string.
func Extract(text, id string) (string, error) {
	r, ok := findRegion(text, id)
	if !ok {
		return "", fmt.Errorf("doc: extract group %s: %w", id, apperr.ErrGroupNotFound)
	}
	inner := text[r.OpenEnd:r.CloseStart]
	inner = strings.TrimPrefix(inner, "\n")
	inner = strings.TrimSuffix(inner, "\n")
	return inner, nil
}

// Splice replaces the content between the sentinel pair of the group with
// the given id by inner, framed with one newline on each side, and rewrites
// the open sentinel's embedded title from the new content. Everything
// outside the pair is left byte-identical.
func Splice(text, id, inner string) (string, error) {
	r, ok := findRegion(text, id)
	if !ok {
		return "", fmt.Errorf("doc: splice group %s: %w", id, apperr.ErrGroupNotFound)
	}
	var b strings.Builder
	b.Grow(len(text) + len(inner))
	b.WriteString(text[:r.OpenStart])
	b.WriteString(OpenSentinel(id, DeriveTitle(inner)))
	b.WriteString("\n")
	b.WriteString(inner)
	b.WriteString("\n")
	b.WriteString(CloseSentinel(id))
	b.WriteString(text[r.CloseEnd:])
	return b.String(), nil
}

// OpenSentinel renders an open sentinel. The title is sanitized so it can
// never terminate the comment or break the single-line grammar.
func OpenSentinel(id, title string) string {
	return fmt.Sprintf("<!-- group:%s:%s -->", id, sanitizeTitle(title))
}

// CloseSentinel renders a close sentinel for the given group id.
func CloseSentinel(id string) string {
	return fmt.Sprintf("<!-- /group:%s -->", id)
}

// WrapGroup renders a complete sentinel-wrapped region for content, deriving
// the embedded title from the content itself.
func WrapGroup(id, content string) string {
	return OpenSentinel(id, DeriveTitle(content)) + "\n" + content + "\n" + CloseSentinel(id)
}

func sanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.ReplaceAll(title, "-->", "")
	return strings.TrimSpace(title)
}
