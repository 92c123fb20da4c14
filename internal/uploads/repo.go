package uploads

import (
	"context"

	"gorm.io/gorm"

	"github.com/obadatech/tarkhees-backend/pkg/db/models"
)

// Repository persists the upload audit trail.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an upload repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts one audit row for a processed upload.
func (r *Repository) Create(ctx context.Context, upload *models.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

// List returns the most recent uploads, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Upload, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.Upload
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
