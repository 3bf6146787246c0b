package importers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mrlokans/gkeep2notion/internal/notion"
)

// Snapshot stores a rendered page for later inspection.
type Snapshot interface {
	SaveJSON(name string, data any) (string, error)
}

// DryRun is a Destination that assigns local IDs and sends nothing.
type DryRun struct {
	snapshot Snapshot
	logger   *slog.Logger
	pages    int
}

// NewDryRun returns a DryRun destination. snapshot may be nil.
func NewDryRun(snapshot Snapshot, logger *slog.Logger) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{snapshot: snapshot, logger: logger}
}

func (d *DryRun) CreatePage(_ context.Context, page *notion.Page) error {
	if page.Persisted() {
		return fmt.Errorf("page %q already created with id %s", page.Title, page.ID)
	}
	page.ID = uuid.NewString()
	d.pages++

	if d.snapshot != nil {
		name, err := d.snapshot.SaveJSON(page.Title, page)
		if err != nil {
			return fmt.Errorf("failed to snapshot page %q: %w", page.Title, err)
		}
		d.logger.Debug("dry run page saved", "title", page.Title, "file", name)
	}
	return nil
}

// Pages returns how many pages would have been created.
func (d *DryRun) Pages() int {
	return d.pages
}
