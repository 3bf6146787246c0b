package importers

import (
	"context"
	"fmt"

	"github.com/mrlokans/gkeep2notion/internal/entities"
	"github.com/mrlokans/gkeep2notion/internal/notion"
)

// CategoryResolver places items under per-label category pages, creating
// each category page the first time it is needed. The cache lives as long
// as the resolver; call Reset between runs.
type CategoryResolver struct {
	dest  Destination
	pages map[string]*notion.Page

	// OnCreate, when set, is called after a category page is created.
	OnCreate func(page *notion.Page) error
}

func NewCategoryResolver(dest Destination) *CategoryResolver {
	return &CategoryResolver{
		dest:  dest,
		pages: make(map[string]*notion.Page),
	}
}

// Resolve returns the parent page for item under root. Items without labels
// go straight under root. Otherwise the first label names the category;
// further labels do not affect placement.
func (r *CategoryResolver) Resolve(ctx context.Context, item entities.Item, root *notion.Page) (*notion.Page, error) {
	if len(item.Labels) == 0 {
		return root, nil
	}

	name := item.Labels[0]
	key := categoryKey(root.Title, name)
	if page, ok := r.pages[key]; ok {
		return page, nil
	}

	page := notion.NewPage(name, root.ID)
	if err := r.dest.CreatePage(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", key, err)
	}
	r.pages[key] = page

	if r.OnCreate != nil {
		if err := r.OnCreate(page); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// Len returns the number of category pages created so far.
func (r *CategoryResolver) Len() int {
	return len(r.pages)
}

// Reset forgets all known category pages.
func (r *CategoryResolver) Reset() {
	clear(r.pages)
}

func categoryKey(rootTitle, category string) string {
	return rootTitle + "." + category
}
