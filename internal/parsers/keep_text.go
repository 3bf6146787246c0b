package parsers

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/gkeep2notion/internal/entities"
	"github.com/mrlokans/gkeep2notion/internal/notion"
)

// MergeLimit caps the length of a merged paragraph block, in characters.
const MergeLimit = 2000

var (
	numberedItemRe = regexp.MustCompile(`^(\d+)\.\s+(.+)`)
	bulletedItemRe = regexp.MustCompile(`^\s*[*-]\s+(.+)`)
	quoteRe        = regexp.MustCompile(`^>\s+(.+)`)

	urlRe = regexp.MustCompile(`https?://[\w\-\.]+\.[a-z]+(?:/[\w_\.%\-&\?=/#]*)*`)
)

// ClassifyLine maps a single line of Keep note text to a block type and
// the text that goes into the block.
//
// Supported markers:
//   - "1. item" (any number) for numbered list items
//   - "- item" or "* item", optionally indented, for bulleted list items
//   - "> text" for quotes
//
// Anything else, the empty string included, is a paragraph holding the
// line unchanged. Nesting is not detected; the first matching rule wins.
func ClassifyLine(line string) (notion.BlockType, string) {
	if m := numberedItemRe.FindStringSubmatch(line); m != nil {
		return notion.BlockTypeNumberedListItem, m[2]
	}
	if m := bulletedItemRe.FindStringSubmatch(line); m != nil {
		return notion.BlockTypeBulletedListItem, m[1]
	}
	if m := quoteRe.FindStringSubmatch(line); m != nil {
		return notion.BlockTypeQuote, m[1]
	}
	return notion.BlockTypeParagraph, line
}

// SplitRichText cuts text into plain and link segments around every URL.
// The plain pieces before, between and after links are always emitted, even
// when empty, so "http://a.com" yields three segments.
func SplitRichText(text string) []notion.RichText {
	matches := urlRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []notion.RichText{notion.Text(text)}
	}

	segments := make([]notion.RichText, 0, 2*len(matches)+1)
	prev := 0
	for _, m := range matches {
		segments = append(segments, notion.Text(text[prev:m[0]]))
		segments = append(segments, notion.Link(text[m[0]:m[1]]))
		prev = m[1]
	}
	segments = append(segments, notion.Text(text[prev:]))
	return segments
}

// TextToBlocks converts a note body into blocks, one per line. With merge
// set, runs of paragraph lines are joined with newlines into a single block
// while the joined text stays under MergeLimit characters.
func TextToBlocks(text string, merge bool) []notion.Block {
	lines := splitLines(text)
	blocks := make([]notion.Block, 0, len(lines))

	if !merge {
		for _, line := range lines {
			blockType, content := ClassifyLine(line)
			blocks = append(blocks, textBlock(blockType, content))
		}
		return blocks
	}

	var (
		pending    strings.Builder
		pendingLen int
		hasPending bool
	)
	flush := func() {
		if hasPending {
			blocks = append(blocks, textBlock(notion.BlockTypeParagraph, pending.String()))
			pending.Reset()
			pendingLen = 0
			hasPending = false
		}
	}

	for _, line := range lines {
		blockType, content := ClassifyLine(line)
		if blockType != notion.BlockTypeParagraph {
			flush()
			blocks = append(blocks, textBlock(blockType, content))
			continue
		}

		contentLen := utf8.RuneCountInString(content)
		if hasPending && pendingLen+1+contentLen < MergeLimit {
			pending.WriteByte('\n')
			pending.WriteString(content)
			pendingLen += 1 + contentLen
			continue
		}

		flush()
		pending.WriteString(content)
		pendingLen = contentLen
		hasPending = true
	}
	// End of input behaves like a trailing sentinel line: whatever is
	// pending goes out, nothing else is emitted.
	flush()

	return blocks
}

// TextToPage appends the blocks for a note body to page.
func TextToPage(text string, page *notion.Page, merge bool) {
	page.Append(TextToBlocks(text, merge)...)
}

// ListToPage appends one to_do block per checklist item, keeping its
// checked state. Checklist items are never merged.
func ListToPage(items []entities.ListItem, page *notion.Page) {
	for _, item := range items {
		segments := notion.ChunkRichText(SplitRichText(item.Text), notion.MaxTextLength)
		page.Append(notion.NewToDo(segments, item.Checked))
	}
}

func textBlock(blockType notion.BlockType, content string) notion.Block {
	return notion.NewBlock(blockType, notion.ChunkRichText(SplitRichText(content), notion.MaxTextLength))
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not
// produce a final empty line and empty text has no lines at all.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
