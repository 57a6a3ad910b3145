package importer

import (
	"fmt"
	"math"
	"time"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// ProgressTracker owns the ImportProgress of one run and recomputes counts,
// percentage and ETA after every row.
type ProgressTracker struct {
	progress domain.ImportProgress
	now      func() time.Time
}

func NewProgressTracker(runID string, total int, now func() time.Time) *ProgressTracker {
	if now == nil {
		now = time.Now
	}
	return &ProgressTracker{
		now: now,
		progress: domain.ImportProgress{
			RunID:                  runID,
			TotalRecords:           total,
			Status:                 domain.ProgressInProgress,
			StartedAt:              now(),
			CreatedRecordsDetail:   []domain.RecordDetail{},
			UpdatedRecordsDetail:   []domain.RecordDetail{},
			FailedRecordsDetail:    []domain.RecordDetail{},
			DuplicateRecordsDetail: []domain.RecordDetail{},
		},
	}
}

func (t *ProgressTracker) Snapshot() domain.ImportProgress {
	return t.progress.Clone()
}

func (t *ProgressTracker) Done() bool {
	return t.progress.Status == domain.ProgressCompleted
}

// Record applies one row outcome and returns the updated snapshot.
func (t *ProgressTracker) Record(o Outcome) domain.ImportProgress {
	p := &t.progress
	p.ProcessedRecords++

	detail := domain.RecordDetail{
		RowNumber: o.RowNumber,
		FirstName: o.FirstName,
		LastName:  o.LastName,
	}
	p.CurrentRecord = nil

	switch o.Kind {
	case OutcomeCreated:
		p.CreatedCount++
		p.CreatedRecordsDetail = append(p.CreatedRecordsDetail, detail)
		p.CurrentRecord = &domain.CurrentRecord{FirstName: o.FirstName, LastName: o.LastName}
	case OutcomeUpdated:
		p.UpdatedCount++
		detail.ChangedFields = o.ChangedFields
		p.UpdatedRecordsDetail = append(p.UpdatedRecordsDetail, detail)
		p.CurrentRecord = &domain.CurrentRecord{FirstName: o.FirstName, LastName: o.LastName}
	case OutcomeUnchanged:
		p.CurrentRecord = &domain.CurrentRecord{FirstName: o.FirstName, LastName: o.LastName}
	case OutcomeDuplicate:
		p.DuplicateCount++
		detail.Reason = o.Reason
		p.DuplicateRecordsDetail = append(p.DuplicateRecordsDetail, detail)
	case OutcomeFailed:
		p.FailedCount++
		detail.Reason = o.Reason
		p.FailedRecordsDetail = append(p.FailedRecordsDetail, detail)
	}

	p.Percentage = percentage(p.ProcessedRecords, p.TotalRecords)
	if p.ProcessedRecords >= p.TotalRecords {
		p.Percentage = 100
		p.EstimatedTimeRemaining = domain.EstimateCompleted
		p.Status = domain.ProgressCompleted
	} else {
		p.EstimatedTimeRemaining = estimate(t.now().Sub(p.StartedAt), p.ProcessedRecords, p.TotalRecords)
	}

	return p.Clone()
}

// Cancel marks the run as stopped before its last row.
func (t *ProgressTracker) Cancel() domain.ImportProgress {
	t.progress.Status = domain.ProgressCancelled
	t.progress.EstimatedTimeRemaining = ""
	t.progress.CurrentRecord = nil
	return t.progress.Clone()
}

func percentage(processed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(processed) / float64(total) * 100))
}

func estimate(elapsed time.Duration, processed, total int) string {
	if processed <= 0 {
		return ""
	}
	remaining := elapsed.Seconds() / float64(processed) * float64(total-processed)
	return fmt.Sprintf("%d seconds", int(math.Round(remaining)))
}
