package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload is the audit record written for every processed spreadsheet.
// The canonical dataset itself lives in the dataset slot, not here.
type Upload struct {
	ID           uuid.UUID `gorm:"column:id;primaryKey"`
	Filename     string    `gorm:"column:filename;not null"`
	SizeBytes    int64     `gorm:"column:size_bytes;not null;default:0"`
	RowCount     int       `gorm:"column:row_count;not null;default:0"`
	ClientCount  int       `gorm:"column:client_count;not null;default:0"`
	ProblemRows  int       `gorm:"column:problem_rows;not null;default:0"`
	WarningCount int       `gorm:"column:warning_count;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the table name aligned with the goose migration.
func (Upload) TableName() string {
	return "uploads"
}
