package models

import "time"

type ImportRun struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	OwnerID        string `gorm:"size:64;not null;index"`
	Status         string `gorm:"type:text;not null"`
	TotalRecords   int64  `gorm:"not null;default:0"`
	CreatedCount   int64  `gorm:"not null;default:0"`
	UpdatedCount   int64  `gorm:"not null;default:0"`
	FailedCount    int64  `gorm:"not null;default:0"`
	DuplicateCount int64  `gorm:"not null;default:0"`
	StartedAt      time.Time
	FinishedAt     time.Time
	CreatedAt      time.Time
}

func (ImportRun) TableName() string {
	return "import_runs"
}
