package entities

// ItemKind distinguishes free-text notes from checklists.
type ItemKind string

const (
	ItemKindNote ItemKind = "note"
	ItemKindList ItemKind = "list"
)

type MediaKind string

const (
	MediaKindImage   MediaKind = "image"
	MediaKindAudio   MediaKind = "audio"
	MediaKindDrawing MediaKind = "drawing"
)

// Label is a user-defined tag on Keep items.
type Label struct {
	ID   string
	Name string
}

// ListItem is one checklist entry.
type ListItem struct {
	Text    string
	Checked bool
}

// Media references an attachment of an item. Only the reference is
// fetched; attachments are never downloaded.
type Media struct {
	ID   string
	Kind MediaKind
}

// Item is a note or checklist fetched from Keep. Items are read-only
// once fetched.
type Item struct {
	ID       string
	Kind     ItemKind
	Title    string
	Text     string     // notes only
	Items    []ListItem // lists only, in display order
	Labels   []string   // label names, in the order Keep reports them
	Media    []Media
	Trashed  bool
	Archived bool
}

// IsList reports whether the item is a checklist.
func (i Item) IsList() bool {
	return i.Kind == ItemKindList
}

// HasLabel reports whether the item carries the label with the given name.
func (i Item) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// MediaCount returns the number of attachments of the given kind.
func (i Item) MediaCount(kind MediaKind) int {
	n := 0
	for _, m := range i.Media {
		if m.Kind == kind {
			n++
		}
	}
	return n
}
