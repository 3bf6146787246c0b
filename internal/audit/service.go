package audit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mrlokans/gkeep2notion/internal/database/audit"
	"github.com/mrlokans/gkeep2notion/internal/entities"
	"github.com/mrlokans/gkeep2notion/internal/notion"
)

// Service records import runs and the pages they create.
type Service struct {
	repo   *audit.Repository
	logger *slog.Logger
}

func NewService(repo *audit.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Counts are the totals reported when a run finishes.
type Counts struct {
	Notes      int
	Lists      int
	Skipped    int
	Categories int
	Blocks     int
}

// StartRun opens a new run in the running state.
func (s *Service) StartRun(account, filter string, dryRun bool) (*Run, error) {
	record := &entities.ImportRun{
		Account:   account,
		Filter:    truncate(filter, 500),
		DryRun:    dryRun,
		Status:    entities.ImportStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.repo.CreateRun(record); err != nil {
		return nil, fmt.Errorf("failed to start import run: %w", err)
	}
	return &Run{svc: s, record: record}, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Service) RecentRuns(limit int) ([]entities.ImportRun, error) {
	return s.repo.RecentRuns(limit)
}

// GetRun returns one run with its pages.
func (s *Service) GetRun(id uint) (*entities.ImportRun, error) {
	return s.repo.GetRun(id)
}

// Prune removes runs older than retention.
func (s *Service) Prune(retention time.Duration) (int64, error) {
	return s.repo.DeleteRunsBefore(time.Now().Add(-retention))
}

// Run is the handle of an open import run.
type Run struct {
	svc    *Service
	record *entities.ImportRun
}

func (r *Run) ID() uint {
	return r.record.ID
}

// RecordPage stores a page after it was created in Notion.
func (r *Run) RecordPage(kind entities.PageKind, keepID string, page *notion.Page) error {
	err := r.svc.repo.AddPage(&entities.ImportedPage{
		RunID:        r.record.ID,
		KeepID:       keepID,
		NotionPageID: page.ID,
		ParentID:     page.ParentID,
		Title:        truncate(page.Title, 512),
		Kind:         kind,
		Blocks:       len(page.Children),
	})
	if err != nil {
		return fmt.Errorf("failed to record page %q: %w", page.Title, err)
	}
	return nil
}

// Finish closes the run. A non-nil runErr marks it failed.
func (r *Run) Finish(c Counts, runErr error) error {
	now := time.Now()
	rec := r.record
	rec.FinishedAt = &now
	rec.NotesImported = c.Notes
	rec.ListsImported = c.Lists
	rec.Skipped = c.Skipped
	rec.CategoriesCreated = c.Categories
	rec.BlocksCreated = c.Blocks
	rec.Status = entities.ImportStatusCompleted
	if runErr != nil {
		rec.Status = entities.ImportStatusFailed
		rec.ErrorMsg = truncate(runErr.Error(), 500)
	}

	if err := r.svc.repo.UpdateRun(rec); err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}
	r.svc.logger.Debug("import run recorded", "run", rec.ID, "status", rec.Status)
	return nil
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
