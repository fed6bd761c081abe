package model

import (
	"time"

	"github.com/google/uuid"
)

// Import job lifecycle: pending → running → completed | failed.
const (
	ImportPending   = "pending"
	ImportRunning   = "running"
	ImportCompleted = "completed"
	ImportFailed    = "failed"
)

// ImportJob tracks one Excel bulk import processed by the worker pool.
// Type: products | clients | suppliers.
type ImportJob struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type             string    `gorm:"size:50;not null"`
	Status           string    `gorm:"size:20;not null;default:'pending'"`
	FileName         string    `gorm:"size:255;not null"`
	FilePath         string    `gorm:"size:500;not null"`
	TotalRecords     int       `gorm:"not null;default:0"`
	ProcessedRecords int       `gorm:"not null;default:0"`
	SuccessRecords   int       `gorm:"not null;default:0"`
	ErrorRecords     int       `gorm:"not null;default:0"`
	ErrorMessage     *string
	CreatedBy        *uint
	CreatedAt        time.Time
	CompletedAt      *time.Time

	Logs []ImportLog `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// ImportLog is one progress line. Level: info | success | error.
type ImportLog struct {
	LogID     uint      `gorm:"primaryKey"`
	JobID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Level     string    `gorm:"size:20;not null;default:'info'"`
	Message   string    `gorm:"not null"`
	CreatedAt time.Time
}
