package notion

import "encoding/json"

// Page is a destination page assembled in memory and persisted once.
// ID stays empty until the page has been created.
type Page struct {
	ID       string
	Title    string
	ParentID string
	Children []Block
}

// NewPage returns an unsaved page under parentID.
func NewPage(title, parentID string) *Page {
	return &Page{Title: title, ParentID: parentID}
}

// Append adds blocks to the end of the page body.
func (p *Page) Append(blocks ...Block) {
	p.Children = append(p.Children, blocks...)
}

// Persisted reports whether the page has been assigned an ID.
func (p *Page) Persisted() bool {
	return p.ID != ""
}

type pageParent struct {
	Type   string `json:"type"`
	PageID string `json:"page_id"`
}

type createPageRequest struct {
	Parent     pageParent            `json:"parent"`
	Properties map[string][]RichText `json:"properties"`
	Children   []Block               `json:"children,omitempty"`
}

// createRequest renders the POST /pages payload carrying at most the
// first limit children.
func (p *Page) createRequest(limit int) createPageRequest {
	children := p.Children
	if len(children) > limit {
		children = children[:limit]
	}
	return createPageRequest{
		Parent: pageParent{Type: "page_id", PageID: p.ParentID},
		Properties: map[string][]RichText{
			"title": {Text(p.Title)},
		},
		Children: children,
	}
}

// MarshalJSON renders the full page as it would be created, all children
// included. Used by the preview command and dry runs.
func (p *Page) MarshalJSON() ([]byte, error) {
	req := p.createRequest(len(p.Children))
	return json.Marshal(struct {
		ID string `json:"id,omitempty"`
		createPageRequest
	}{ID: p.ID, createPageRequest: req})
}
