package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type StartImportInput struct {
	UserID  string
	Mapping map[string]int
	Rows    [][]any
}

type StartImportOutput struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

type StartImport interface {
	Execute(ctx context.Context, in StartImportInput) (StartImportOutput, error)
}

type runSubmitter interface {
	Submit(run Run) error
}

type startImport struct {
	runner runSubmitter
}

func NewStartImport(runner runSubmitter) StartImport {
	return &startImport{runner: runner}
}

// Execute validates the request shape and hands the run to the runner. The
// run itself proceeds asynchronously.
func (uc *startImport) Execute(ctx context.Context, in StartImportInput) (StartImportOutput, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return StartImportOutput{}, ErrMissingUser
	}
	if len(in.Rows) == 0 {
		return StartImportOutput{}, &StructuralError{Err: ErrNoRows}
	}
	if len(in.Mapping) == 0 {
		return StartImportOutput{}, &StructuralError{Err: ErrNoMapping}
	}

	mapping, err := domain.ParseColumnMapping(in.Mapping)
	if err != nil {
		return StartImportOutput{}, &StructuralError{Err: err}
	}

	run := Run{
		ID:      uuid.NewString(),
		OwnerID: userID,
		Mapping: mapping,
		Rows:    in.Rows,
	}
	if err := uc.runner.Submit(run); err != nil {
		if errors.Is(err, ErrQueueFull) {
			return StartImportOutput{}, err
		}
		return StartImportOutput{}, fmt.Errorf("%w: %v", ErrStartImport, err)
	}

	return StartImportOutput{
		RunID:  run.ID,
		Status: "started",
	}, nil
}
