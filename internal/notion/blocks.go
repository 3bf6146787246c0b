package notion

import (
	"encoding/json"
	"unicode/utf8"
)

// BlockType is the Notion block type name as used on the wire.
type BlockType string

const (
	BlockTypeParagraph        BlockType = "paragraph"
	BlockTypeBulletedListItem BlockType = "bulleted_list_item"
	BlockTypeNumberedListItem BlockType = "numbered_list_item"
	BlockTypeQuote            BlockType = "quote"
	BlockTypeToDo             BlockType = "to_do"
)

// MaxTextLength is the largest content Notion accepts in a single text object.
const MaxTextLength = 2000

// RichText is one text segment of a block. A non-empty Link turns the
// segment into a hyperlink.
type RichText struct {
	Content string
	Link    string
}

// Text returns a plain text segment.
func Text(content string) RichText {
	return RichText{Content: content}
}

// Link returns a segment whose content and target are both url.
func Link(url string) RichText {
	return RichText{Content: url, Link: url}
}

// IsLink reports whether the segment carries a link target.
func (r RichText) IsLink() bool {
	return r.Link != ""
}

type textLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type textObject struct {
	Content string    `json:"content"`
	Link    *textLink `json:"link,omitempty"`
}

type richTextObject struct {
	Type string     `json:"type"`
	Text textObject `json:"text"`
}

func (r RichText) MarshalJSON() ([]byte, error) {
	obj := richTextObject{Type: "text", Text: textObject{Content: r.Content}}
	if r.Link != "" {
		obj.Text.Link = &textLink{Type: "url", URL: r.Link}
	}
	return json.Marshal(obj)
}

func (r *RichText) UnmarshalJSON(data []byte) error {
	var obj richTextObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Content = obj.Text.Content
	r.Link = ""
	if obj.Text.Link != nil {
		r.Link = obj.Text.Link.URL
	}
	return nil
}

// Block is a single content block of a page. Blocks are values and are
// not modified after construction.
type Block struct {
	Type     BlockType
	RichText []RichText
	Checked  bool // to_do only
}

// NewBlock builds a block of the given type. An empty segment list is
// replaced by a single empty text segment so the block always has content.
func NewBlock(t BlockType, segments []RichText) Block {
	if len(segments) == 0 {
		segments = []RichText{Text("")}
	}
	return Block{Type: t, RichText: segments}
}

// NewToDo builds a to_do block.
func NewToDo(segments []RichText, checked bool) Block {
	b := NewBlock(BlockTypeToDo, segments)
	b.Checked = checked
	return b
}

// PlainText concatenates the content of all segments.
func (b Block) PlainText() string {
	var s string
	for _, r := range b.RichText {
		s += r.Content
	}
	return s
}

func (b Block) MarshalJSON() ([]byte, error) {
	body := map[string]any{"rich_text": b.RichText}
	if b.Type == BlockTypeToDo {
		body["checked"] = b.Checked
	}
	return json.Marshal(map[string]any{
		"object":       "block",
		"type":         b.Type,
		string(b.Type): body,
	})
}

// ChunkRichText splits segments longer than limit characters into
// consecutive segments carrying the same link, so every text object stays
// within what the API accepts.
func ChunkRichText(segments []RichText, limit int) []RichText {
	if limit <= 0 {
		return segments
	}
	out := make([]RichText, 0, len(segments))
	for _, seg := range segments {
		if utf8.RuneCountInString(seg.Content) <= limit {
			out = append(out, seg)
			continue
		}
		runes := []rune(seg.Content)
		for start := 0; start < len(runes); start += limit {
			end := start + limit
			if end > len(runes) {
				end = len(runes)
			}
			out = append(out, RichText{Content: string(runes[start:end]), Link: seg.Link})
		}
	}
	return out
}
