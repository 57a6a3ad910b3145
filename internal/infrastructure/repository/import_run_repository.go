package repository

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
	"github.com/mohammadpnp/household-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportRunRepository keeps one audit row per finished import run.
type ImportRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

func (r *ImportRunRepository) RecordRun(ctx context.Context, summary domain.ImportRunSummary) error {
	run := models.ImportRun{
		ID:             summary.RunID,
		OwnerID:        summary.OwnerID,
		Status:         string(summary.Status),
		TotalRecords:   int64(summary.TotalRecords),
		CreatedCount:   int64(summary.CreatedCount),
		UpdatedCount:   int64(summary.UpdatedCount),
		FailedCount:    int64(summary.FailedCount),
		DuplicateCount: int64(summary.DuplicateCount),
		StartedAt:      summary.StartedAt,
		FinishedAt:     summary.FinishedAt,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "total_records", "created_count", "updated_count",
				"failed_count", "duplicate_count", "finished_at",
			}),
		}).
		Create(&run).Error
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}

func (r *ImportRunRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.ImportRunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.ImportRun
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}

	out := make([]domain.ImportRunSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ImportRunSummary{
			RunID:          row.ID,
			OwnerID:        row.OwnerID,
			Status:         domain.ProgressStatus(row.Status),
			TotalRecords:   int(row.TotalRecords),
			CreatedCount:   int(row.CreatedCount),
			UpdatedCount:   int(row.UpdatedCount),
			FailedCount:    int(row.FailedCount),
			DuplicateCount: int(row.DuplicateCount),
			StartedAt:      row.StartedAt,
			FinishedAt:     row.FinishedAt,
		})
	}
	return out, nil
}
