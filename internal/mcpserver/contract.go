package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating or updating notes.
const NoteFormatContract = `# Perthro Note Format Contract

Every Markdown note stored in Perthro MUST follow this structure.

## Structure

Notes are plain GitHub-flavored Markdown. The first content line of a note
doubles as its display title, so start with a heading or a meaningful
sentence.

The only non-standard construct is the **content group**: a nested
sub-document embedded in the note and delimited by a sentinel comment pair.

` + "```" + `markdown
# Trip planning

Outer text before the group.

<!-- group:550e8400-e29b-41d4-a716-446655440000:Packing list -->
- [ ] Passport
- [ ] Charger
<!-- /group:550e8400-e29b-41d4-a716-446655440000 -->

Outer text after the group.
` + "```" + `

## Rules

1. **No frontmatter.** The file starts directly with content.
2. **Sentinels are single lines.** An open sentinel is
   ` + "`" + `<!-- group:ID:TITLE -->` + "`" + ` and its close is ` + "`" + `<!-- /group:ID -->` + "`" + `.
   The ID never contains ':' or whitespace; the TITLE never contains a
   newline or '-->'.
3. **Do not invent group ids.** Use the ` + "`" + `create_group` + "`" + ` tool; it mints the id
   and derives the title. Hand-written sentinels with duplicated ids degrade
   to plain text.
4. **Titles are derivative.** The TITLE inside a sentinel is recomputed from
   the group's first content line on every save; never rely on it as stored
   state.
5. **Groups nest.** A group's content may itself contain sentinel pairs.
6. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. File and
   directory names MUST be in English (Latin characters); note content may
   use any language.
7. **Encoding** is UTF-8 with a trailing newline.
8. **No HTML** beyond the sentinel comments; prefer Markdown equivalents.

## Supported Markdown

Paragraphs, headings ` + "`" + `#` + "`" + ` through ` + "`" + `###` + "`" + ` (deeper levels are clamped to
` + "`" + `###` + "`" + `), bullet/ordered/task lists, blockquotes, fenced code blocks,
horizontal rules, tables, and the inline marks **bold**, *italic*,
` + "`" + `code` + "`" + `, ~~strikethrough~~ and [links](https://example.com).

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + ` field ready to paste into the note body.
- Assets are stored in the shared ` + "`" + `assets/` + "`" + ` directory (flat, no sub-folders).
- Reference in notes using the absolute path: ` + "`" + `![description](/assets/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./assets/...` + "`" + ` — always use ` + "`" + `/assets/filename` + "`" + `.

## Example

` + "```" + `markdown
# Weekly standup 2026-08-24

Attendees: Alice, Bob.

![Whiteboard photo](/assets/standup-2026-08-24.jpg)

<!-- group:7f9c24e5-1a2b-4c3d-8e4f-5a6b7c8d9e0f:Action items -->
## Action items

- [ ] Alice to review the design doc
- [ ] Bob to update the roadmap
<!-- /group:7f9c24e5-1a2b-4c3d-8e4f-5a6b7c8d9e0f -->
` + "```" + `
`
