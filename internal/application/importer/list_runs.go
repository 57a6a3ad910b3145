package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

const defaultRunHistoryLimit = 20

type ListRunsInput struct {
	UserID string
	Limit  int
}

type RunOutput struct {
	RunID          string    `json:"run_id"`
	Status         string    `json:"status"`
	TotalRecords   int       `json:"total_records"`
	CreatedCount   int       `json:"created_count"`
	UpdatedCount   int       `json:"updated_count"`
	FailedCount    int       `json:"failed_count"`
	DuplicateCount int       `json:"duplicate_count"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

type ListRuns interface {
	Execute(ctx context.Context, in ListRunsInput) ([]RunOutput, error)
}

type listRuns struct {
	history domain.RunHistory
}

func NewListRuns(history domain.RunHistory) ListRuns {
	return &listRuns{history: history}
}

func (uc *listRuns) Execute(ctx context.Context, in ListRunsInput) ([]RunOutput, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrMissingUser
	}

	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultRunHistoryLimit
	}

	runs, err := uc.history.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListRuns, err)
	}

	out := make([]RunOutput, 0, len(runs))
	for _, r := range runs {
		out = append(out, RunOutput{
			RunID:          r.RunID,
			Status:         string(r.Status),
			TotalRecords:   r.TotalRecords,
			CreatedCount:   r.CreatedCount,
			UpdatedCount:   r.UpdatedCount,
			FailedCount:    r.FailedCount,
			DuplicateCount: r.DuplicateCount,
			StartedAt:      r.StartedAt,
			FinishedAt:     r.FinishedAt,
		})
	}
	return out, nil
}
