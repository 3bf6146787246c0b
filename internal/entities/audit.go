package entities

import "time"

type ImportStatus string

const (
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// PageKind tells what an imported page was created for.
type PageKind string

const (
	PageKindRoot     PageKind = "root"
	PageKindCategory PageKind = "category"
	PageKindNote     PageKind = "note"
	PageKindList     PageKind = "list"
)

// ImportRun is one invocation of the import command.
type ImportRun struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	Account           string       `gorm:"index;size:255" json:"account"`
	Filter            string       `gorm:"size:500" json:"filter"` // Human-readable filter, e.g. "labels: Work, Home"
	DryRun            bool         `json:"dry_run"`
	Status            ImportStatus `gorm:"size:20" json:"status"`
	NotesImported     int          `json:"notes_imported"`
	ListsImported     int          `json:"lists_imported"`
	Skipped           int          `json:"skipped"`
	CategoriesCreated int          `json:"categories_created"`
	BlocksCreated     int          `json:"blocks_created"`
	ErrorMsg          string       `gorm:"size:500" json:"error_msg,omitempty"`
	StartedAt         time.Time    `gorm:"index" json:"started_at"`
	FinishedAt        *time.Time   `json:"finished_at,omitempty"`

	Pages []ImportedPage `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"pages,omitempty"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

// ImportedPage maps a created Notion page back to the Keep item it came
// from. Root and category pages have no Keep ID.
type ImportedPage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RunID        uint      `gorm:"index" json:"run_id"`
	KeepID       string    `gorm:"index;size:100" json:"keep_id,omitempty"`
	NotionPageID string    `gorm:"size:64" json:"notion_page_id"`
	ParentID     string    `gorm:"size:64" json:"parent_id"`
	Title        string    `gorm:"size:512" json:"title"`
	Kind         PageKind  `gorm:"size:20" json:"kind"`
	Blocks       int       `json:"blocks"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ImportedPage) TableName() string {
	return "imported_pages"
}
