package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/gkeep2notion/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateRun saves a new import run.
func (r *Repository) CreateRun(run *entities.ImportRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return r.db.Omit("Pages").Create(run).Error
}

// UpdateRun persists the counters and status of run.
func (r *Repository) UpdateRun(run *entities.ImportRun) error {
	return r.db.Omit("Pages").Save(run).Error
}

// AddPage records a page created during a run.
func (r *Repository) AddPage(page *entities.ImportedPage) error {
	if page.CreatedAt.IsZero() {
		page.CreatedAt = time.Now()
	}
	return r.db.Create(page).Error
}

// RecentRuns returns the latest runs first, without their pages.
func (r *Repository) RecentRuns(limit int) ([]entities.ImportRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []entities.ImportRun
	err := r.db.Order("started_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// GetRun retrieves a run with its pages in creation order.
func (r *Repository) GetRun(id uint) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.Preload("Pages", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// DeleteRunsBefore removes runs started before cutoff along with their pages.
func (r *Repository) DeleteRunsBefore(cutoff time.Time) (int64, error) {
	var ids []uint
	if err := r.db.Model(&entities.ImportRun{}).Where("started_at < ?", cutoff).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.db.Where("run_id IN ?", ids).Delete(&entities.ImportedPage{}).Error; err != nil {
		return 0, err
	}
	result := r.db.Where("id IN ?", ids).Delete(&entities.ImportRun{})
	return result.RowsAffected, result.Error
}
