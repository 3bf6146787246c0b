package keep

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/mrlokans/gkeep2notion/internal/entities"
)

const rootID = "root"

type nodeType string

const (
	nodeTypeNote     nodeType = "NOTE"
	nodeTypeList     nodeType = "LIST"
	nodeTypeListItem nodeType = "LIST_ITEM"
	nodeTypeBlob     nodeType = "BLOB"
)

type timestamps struct {
	Created string `json:"created,omitempty"`
	Updated string `json:"updated,omitempty"`
	Trashed string `json:"trashed,omitempty"`
	Deleted string `json:"deleted,omitempty"`
}

// isSet reports whether a Keep timestamp carries a real value. Unset
// timestamps are sent as the Unix epoch.
func isSet(ts string) bool {
	if ts == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return false
	}
	return t.After(time.Unix(0, 0))
}

type labelRef struct {
	LabelID string `json:"labelId"`
	Deleted string `json:"deleted,omitempty"`
}

type blob struct {
	Type    string `json:"type"`
	MediaID string `json:"mediaId,omitempty"`
}

type node struct {
	ID         string      `json:"id"`
	ServerID   string      `json:"serverId,omitempty"`
	ParentID   string      `json:"parentId"`
	Type       nodeType    `json:"type"`
	Title      string      `json:"title,omitempty"`
	Text       string      `json:"text,omitempty"`
	Checked    bool        `json:"checked,omitempty"`
	SortValue  json.Number `json:"sortValue,omitempty"`
	IsArchived bool        `json:"isArchived,omitempty"`
	Timestamps timestamps  `json:"timestamps"`
	LabelIDs   []labelRef  `json:"labelIds,omitempty"`
	Blob       *blob       `json:"blob,omitempty"`
}

func (n *node) sortKey() int64 {
	v, err := n.SortValue.Int64()
	if err != nil {
		return 0
	}
	return v
}

type label struct {
	MainID     string     `json:"mainId"`
	Name       string     `json:"name"`
	Timestamps timestamps `json:"timestamps"`
}

type clientVersion struct {
	Major    string `json:"major"`
	Minor    string `json:"minor"`
	Build    string `json:"build"`
	Revision string `json:"revision"`
}

type capability struct {
	Type string `json:"type"`
}

type requestHeader struct {
	ClientSessionID string        `json:"clientSessionId"`
	ClientPlatform  string        `json:"clientPlatform"`
	ClientVersion   clientVersion `json:"clientVersion"`
	Capabilities    []capability  `json:"capabilities"`
}

type changesRequest struct {
	Nodes           []node        `json:"nodes"`
	ClientTimestamp string        `json:"clientTimestamp"`
	RequestHeader   requestHeader `json:"requestHeader"`
	TargetVersion   string        `json:"targetVersion,omitempty"`
}

type userInfo struct {
	Labels []label `json:"labels"`
}

type changesResponse struct {
	ToVersion       string    `json:"toVersion"`
	Nodes           []node    `json:"nodes"`
	UserInfo        *userInfo `json:"userInfo,omitempty"`
	Truncated       bool      `json:"truncated"`
	ForceFullResync bool      `json:"forceFullResync,omitempty"`
}

var capabilities = []capability{
	{"NC"}, {"PI"}, {"LB"}, {"AN"}, {"SH"}, {"DR"},
	{"TR"}, {"IN"}, {"SNB"}, {"MI"}, {"CO"},
}

// tree is the local mirror of the account's node graph, built up across
// paginated change responses.
type tree struct {
	nodes      map[string]*node
	order      []string
	labels     map[string]entities.Label
	labelOrder []string
}

func newTree() *tree {
	return &tree{
		nodes:  make(map[string]*node),
		labels: make(map[string]entities.Label),
	}
}

func (t *tree) applyNodes(nodes []node) {
	for i := range nodes {
		n := nodes[i]
		if isSet(n.Timestamps.Deleted) {
			delete(t.nodes, n.ID)
			continue
		}
		if _, ok := t.nodes[n.ID]; !ok {
			t.order = append(t.order, n.ID)
		}
		t.nodes[n.ID] = &n
	}
}

func (t *tree) applyLabels(labels []label) {
	for _, l := range labels {
		if isSet(l.Timestamps.Deleted) {
			delete(t.labels, l.MainID)
			continue
		}
		if _, ok := t.labels[l.MainID]; !ok {
			t.labelOrder = append(t.labelOrder, l.MainID)
		}
		t.labels[l.MainID] = entities.Label{ID: l.MainID, Name: l.Name}
	}
}

func (t *tree) labelList() []entities.Label {
	out := make([]entities.Label, 0, len(t.labels))
	for _, id := range t.labelOrder {
		if l, ok := t.labels[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// items assembles the top-level notes and lists, trashed ones included,
// in the order the server first reported them.
func (t *tree) items() []entities.Item {
	children := make(map[string][]*node)
	for _, id := range t.order {
		n, ok := t.nodes[id]
		if !ok || n.ParentID == rootID {
			continue
		}
		children[n.ParentID] = append(children[n.ParentID], n)
	}

	var out []entities.Item
	for _, id := range t.order {
		n, ok := t.nodes[id]
		if !ok || n.ParentID != rootID {
			continue
		}
		if n.Type != nodeTypeNote && n.Type != nodeTypeList {
			continue
		}
		out = append(out, t.assemble(n, children[n.ID]))
	}
	return out
}

func (t *tree) assemble(n *node, children []*node) entities.Item {
	item := entities.Item{
		ID:       n.ID,
		Title:    n.Title,
		Trashed:  isSet(n.Timestamps.Trashed),
		Archived: n.IsArchived,
	}

	var listItems []*node
	for _, c := range children {
		switch c.Type {
		case nodeTypeListItem:
			listItems = append(listItems, c)
		case nodeTypeBlob:
			if m, ok := mediaOf(c); ok {
				item.Media = append(item.Media, m)
			}
		}
	}

	if n.Type == nodeTypeList {
		item.Kind = entities.ItemKindList
		sort.SliceStable(listItems, func(i, j int) bool {
			return listItems[i].sortKey() > listItems[j].sortKey()
		})
		for _, li := range listItems {
			item.Items = append(item.Items, entities.ListItem{Text: li.Text, Checked: li.Checked})
		}
	} else {
		item.Kind = entities.ItemKindNote
		item.Text = n.Text
		if len(listItems) > 0 {
			item.Text = listItems[0].Text
		}
	}

	for _, ref := range n.LabelIDs {
		if isSet(ref.Deleted) {
			continue
		}
		if l, ok := t.labels[ref.LabelID]; ok {
			item.Labels = append(item.Labels, l.Name)
		}
	}
	return item
}

func mediaOf(n *node) (entities.Media, bool) {
	if n.Blob == nil {
		return entities.Media{}, false
	}
	var kind entities.MediaKind
	switch n.Blob.Type {
	case "IMAGE":
		kind = entities.MediaKindImage
	case "AUDIO":
		kind = entities.MediaKindAudio
	case "DRAWING":
		kind = entities.MediaKindDrawing
	default:
		return entities.Media{}, false
	}
	return entities.Media{ID: n.ID, Kind: kind}, true
}
