package importers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrlokans/gkeep2notion/internal/entities"
	"github.com/mrlokans/gkeep2notion/internal/notion"
	"github.com/mrlokans/gkeep2notion/internal/parsers"
)

// ErrLabelNotFound is returned when a label filter names an unknown label.
var ErrLabelNotFound = errors.New("label not found")

// Source provides the items to import.
type Source interface {
	All() []entities.Item
	Find(query string, labels []entities.Label) []entities.Item
	FindLabel(name string) (entities.Label, bool)
}

// Destination persists a page and assigns its ID.
type Destination interface {
	CreatePage(ctx context.Context, page *notion.Page) error
}

// Recorder is told about every page after it has been created.
type Recorder interface {
	RecordPage(kind entities.PageKind, keepID string, page *notion.Page) error
}

type Options struct {
	RootID          string
	NotesTitle      string
	TodosTitle      string
	ImportNotes     bool
	ImportTodos     bool
	ImportMedia     bool
	MergeParagraphs bool
}

// Filter narrows the items to import. Labels take priority over Query;
// an empty filter selects everything.
type Filter struct {
	Labels []string
	Query  string
}

// ParseLabels splits a comma separated list, trimming each entry and
// dropping empty ones.
func ParseLabels(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func (f Filter) String() string {
	switch {
	case len(f.Labels) > 0:
		return "labels: " + strings.Join(f.Labels, ", ")
	case strings.TrimSpace(f.Query) != "":
		return "query: " + strings.TrimSpace(f.Query)
	default:
		return "all"
	}
}

type Result struct {
	NotesImported     int
	ListsImported     int
	Skipped           int
	CategoriesCreated int
	BlocksCreated     int
	MediaSkipped      int
}

// Importer copies Keep items into a two-level Notion page tree:
// root ("Notes" or "Todos") -> first label -> item.
type Importer struct {
	source   Source
	dest     Destination
	recorder Recorder
	opts     Options
	logger   *slog.Logger
}

func NewImporter(source Source, dest Destination, opts Options, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		source: source,
		dest:   dest,
		opts:   opts,
		logger: logger,
	}
}

// SetRecorder registers r to be told about every created page.
func (i *Importer) SetRecorder(r Recorder) {
	i.recorder = r
}

// Select resolves filter against the source.
func (i *Importer) Select(filter Filter) ([]entities.Item, error) {
	if len(filter.Labels) > 0 {
		labels := make([]entities.Label, 0, len(filter.Labels))
		for _, name := range filter.Labels {
			label, ok := i.source.FindLabel(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrLabelNotFound, name)
			}
			labels = append(labels, label)
		}
		return i.source.Find("", labels), nil
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		return i.source.Find(query, nil), nil
	}
	return i.source.All(), nil
}

// Run imports the items selected by filter. Items are processed one at a
// time; the first failure stops the run and is returned along with the
// counts so far.
func (i *Importer) Run(ctx context.Context, filter Filter) (Result, error) {
	var res Result

	items, err := i.Select(filter)
	if err != nil {
		return res, err
	}
	i.logger.Info("items selected", "filter", filter.String(), "count", len(items))

	notes, err := i.createRoot(ctx, i.opts.NotesTitle)
	if err != nil {
		return res, err
	}
	todos, err := i.createRoot(ctx, i.opts.TodosTitle)
	if err != nil {
		return res, err
	}

	resolver := NewCategoryResolver(i.dest)
	resolver.OnCreate = func(page *notion.Page) error {
		i.logger.Debug("category created", "title", page.Title, "id", page.ID)
		return i.record(entities.PageKindCategory, "", page)
	}

	for n, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		root, kind := notes, entities.PageKindNote
		if item.IsList() {
			root, kind = todos, entities.PageKindList
		}
		if (kind == entities.PageKindList && !i.opts.ImportTodos) || (kind == entities.PageKindNote && !i.opts.ImportNotes) {
			res.Skipped++
			continue
		}
		i.logger.Info("importing "+string(kind), "n", n+1, "of", len(items), "title", item.Title)

		parent, err := resolver.Resolve(ctx, item, root)
		if err != nil {
			return res, err
		}
		res.CategoriesCreated = resolver.Len()
		if len(item.Labels) > 1 {
			i.logger.Debug("extra labels ignored for placement", "title", item.Title, "labels", item.Labels[1:])
		}

		page := notion.NewPage(item.Title, parent.ID)
		if item.IsList() {
			parsers.ListToPage(item.Items, page)
		} else {
			parsers.TextToPage(item.Text, page, i.opts.MergeParagraphs)
			res.MediaSkipped += i.reportMedia(item)
		}
		i.logger.Debug("page rendered", "title", item.Title, "blocks", len(page.Children))

		if err := i.dest.CreatePage(ctx, page); err != nil {
			return res, fmt.Errorf("failed to import %q: %w", item.Title, err)
		}
		if err := i.record(kind, item.ID, page); err != nil {
			return res, err
		}

		res.BlocksCreated += len(page.Children)
		if item.IsList() {
			res.ListsImported++
		} else {
			res.NotesImported++
		}
	}
	return res, nil
}

func (i *Importer) createRoot(ctx context.Context, title string) (*notion.Page, error) {
	page := notion.NewPage(title, i.opts.RootID)
	if err := i.dest.CreatePage(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to create root page %q: %w", title, err)
	}
	if err := i.record(entities.PageKindRoot, "", page); err != nil {
		return nil, err
	}
	return page, nil
}

func (i *Importer) record(kind entities.PageKind, keepID string, page *notion.Page) error {
	if i.recorder == nil {
		return nil
	}
	return i.recorder.RecordPage(kind, keepID, page)
}

var mediaNames = []struct {
	kind entities.MediaKind
	name string
}{
	{entities.MediaKindImage, "images"},
	{entities.MediaKindAudio, "audio"},
	{entities.MediaKindDrawing, "drawings"},
}

// reportMedia logs the attachments that are left behind and returns how
// many there were.
func (i *Importer) reportMedia(item entities.Item) int {
	if len(item.Media) == 0 {
		return 0
	}
	if !i.opts.ImportMedia {
		i.logger.Info("skipping attachments, import_media is off", "title", item.Title, "count", len(item.Media))
		return len(item.Media)
	}
	for _, m := range mediaNames {
		if n := item.MediaCount(m.kind); n > 0 {
			i.logger.Warn("uploading "+m.name+" is unsupported by the Notion API", "title", item.Title, "count", n)
		}
	}
	return len(item.Media)
}
