package notion

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_MarshalJSON(t *testing.T) {
	block := NewBlock(BlockTypeParagraph, []RichText{Text("see "), Link("http://a.com/x")})

	data, err := json.Marshal(block)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"object": "block",
		"type": "paragraph",
		"paragraph": {
			"rich_text": [
				{"type": "text", "text": {"content": "see "}},
				{"type": "text", "text": {"content": "http://a.com/x", "link": {"type": "url", "url": "http://a.com/x"}}}
			]
		}
	}`, string(data))
}

func TestBlock_ToDoCarriesChecked(t *testing.T) {
	data, err := json.Marshal(NewToDo([]RichText{Text("buy milk")}, false))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"object": "block",
		"type": "to_do",
		"to_do": {
			"rich_text": [{"type": "text", "text": {"content": "buy milk"}}],
			"checked": false
		}
	}`, string(data))
}

func TestNewBlock_NeverEmpty(t *testing.T) {
	block := NewBlock(BlockTypeQuote, nil)
	require.Len(t, block.RichText, 1)
	assert.Equal(t, "", block.RichText[0].Content)
}

func TestRichText_UnmarshalJSON(t *testing.T) {
	var segs []RichText
	err := json.Unmarshal([]byte(`[
		{"type": "text", "text": {"content": "plain"}},
		{"type": "text", "text": {"content": "https://x.org", "link": {"type": "url", "url": "https://x.org"}}}
	]`), &segs)
	require.NoError(t, err)
	assert.Equal(t, []RichText{Text("plain"), Link("https://x.org")}, segs)
}

func TestChunkRichText(t *testing.T) {
	long := strings.Repeat("é", 4500)
	out := ChunkRichText([]RichText{Text("short"), {Content: long, Link: "https://x.org"}}, MaxTextLength)

	require.Len(t, out, 4)
	assert.Equal(t, "short", out[0].Content)
	assert.Equal(t, 2000, len([]rune(out[1].Content)))
	assert.Equal(t, 2000, len([]rune(out[2].Content)))
	assert.Equal(t, 500, len([]rune(out[3].Content)))
	for _, seg := range out[1:] {
		assert.Equal(t, "https://x.org", seg.Link)
	}
}

func TestPage_MarshalJSON(t *testing.T) {
	page := NewPage("Work", "parent-1")
	page.Append(NewBlock(BlockTypeBulletedListItem, []RichText{Text("item")}))

	data, err := json.Marshal(page)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"parent": {"type": "page_id", "page_id": "parent-1"},
		"properties": {"title": [{"type": "text", "text": {"content": "Work"}}]},
		"children": [
			{"object": "block", "type": "bulleted_list_item", "bulleted_list_item": {"rich_text": [{"type": "text", "text": {"content": "item"}}]}}
		]
	}`, string(data))
}
