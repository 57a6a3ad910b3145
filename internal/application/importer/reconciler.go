package importer

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type OutcomeKind string

const (
	OutcomeCreated   OutcomeKind = "created"
	OutcomeUpdated   OutcomeKind = "updated"
	OutcomeUnchanged OutcomeKind = "unchanged"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeDuplicate OutcomeKind = "duplicate"
)

// Outcome is the classification of one processed row.
type Outcome struct {
	Kind          OutcomeKind
	RowNumber     int
	FirstName     string
	LastName      string
	Reason        string
	ChangedFields []string
	Err           error
}

func failed(rowNumber int, row domain.ImportRow, err error) Outcome {
	return Outcome{
		Kind:      OutcomeFailed,
		RowNumber: rowNumber,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Reason:    err.Error(),
		Err:       err,
	}
}

// RowReconciler runs one row through every stage and reports its outcome.
// It holds the run-scoped dedup set and household cache, so rows must be fed
// in input order from a single goroutine.
type RowReconciler struct {
	normalizer *Normalizer
	validator  *FieldValidator
	dedup      *Deduplicator
	grouper    *HouseholdGrouper
	resolver   *IdentityResolver
	store      domain.Store
	ownerID    string
}

func NewRowReconciler(
	store domain.Store,
	ownerID string,
	normalizer *Normalizer,
	validator *FieldValidator,
	newCode func() string,
) *RowReconciler {
	return &RowReconciler{
		normalizer: normalizer,
		validator:  validator,
		dedup:      NewDeduplicator(),
		grouper:    NewHouseholdGrouper(store, ownerID, newCode),
		resolver:   NewIdentityResolver(store, ownerID),
		store:      store,
		ownerID:    ownerID,
	}
}

func (r *RowReconciler) Process(ctx context.Context, rowNumber int, cells []any) Outcome {
	row, rejected := r.Classify(rowNumber, cells)
	if rejected != nil {
		return *rejected
	}
	return r.reconcile(ctx, rowNumber, row)
}

// Classify runs the I/O-free stages. A non-nil outcome means the row stops here.
func (r *RowReconciler) Classify(rowNumber int, cells []any) (domain.ImportRow, *Outcome) {
	row := r.normalizer.Normalize(cells)

	if err := r.validator.Validate(row); err != nil {
		o := failed(rowNumber, row, err)
		return row, &o
	}

	row, err := NormalizeStatuses(row)
	if err != nil {
		o := failed(rowNumber, row, err)
		return row, &o
	}

	if _, dup := r.dedup.Check(row); dup {
		return row, &Outcome{
			Kind:      OutcomeDuplicate,
			RowNumber: rowNumber,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Reason:    "duplicate of an earlier row in this upload",
		}
	}
	return row, nil
}

func (r *RowReconciler) reconcile(ctx context.Context, rowNumber int, row domain.ImportRow) Outcome {
	match, err := r.resolver.Resolve(ctx, row)
	if err != nil {
		return failed(rowNumber, row, err)
	}

	switch match.Kind {
	case MatchNone:
		return r.create(ctx, rowNumber, row)
	case MatchOne:
		return r.update(ctx, rowNumber, row, *match.Client)
	default:
		return failed(rowNumber, row, errors.New(ReasonAmbiguousMatch))
	}
}

func (r *RowReconciler) create(ctx context.Context, rowNumber int, row domain.ImportRow) Outcome {
	h, err := r.grouper.Resolve(ctx, row.ExternalHouseholdID)
	if err != nil {
		return failed(rowNumber, row, err)
	}

	client, err := r.store.CreateClient(ctx, domain.NewClientFromRow(h.ID, row))
	if err != nil {
		return failed(rowNumber, row, fmt.Errorf("create client: %w", err))
	}

	if !h.HasHead() {
		if err := r.assignHead(ctx, h, client.ID); err != nil {
			return failed(rowNumber, row, err)
		}
	}

	return Outcome{
		Kind:      OutcomeCreated,
		RowNumber: rowNumber,
		FirstName: client.FirstName,
		LastName:  client.LastName,
	}
}

func (r *RowReconciler) update(ctx context.Context, rowNumber int, row domain.ImportRow, existing domain.Client) Outcome {
	patch := DiffClient(existing, row)
	changed := patch.Fields()

	// Lookups come before any write so a failed row leaves the client untouched.
	h, err := r.store.FindHouseholdByID(ctx, r.ownerID, existing.HouseholdID)
	switch {
	case errors.Is(err, domain.ErrHouseholdNotFound):
	case err != nil:
		return failed(rowNumber, row, fmt.Errorf("find household: %w", err))
	case !h.HasHead():
		if err := r.assignHead(ctx, h, existing.ID); err != nil {
			return failed(rowNumber, row, err)
		}
	}

	if len(changed) > 0 {
		if _, err := r.store.UpdateClient(ctx, existing.ID, patch); err != nil {
			return failed(rowNumber, row, fmt.Errorf("update client: %w", err))
		}
	}

	if len(changed) == 0 {
		return Outcome{
			Kind:      OutcomeUnchanged,
			RowNumber: rowNumber,
			FirstName: existing.FirstName,
			LastName:  existing.LastName,
		}
	}
	return Outcome{
		Kind:          OutcomeUpdated,
		RowNumber:     rowNumber,
		FirstName:     existing.FirstName,
		LastName:      existing.LastName,
		ChangedFields: fieldNames(changed),
	}
}

func (r *RowReconciler) assignHead(ctx context.Context, h *domain.Household, clientID string) error {
	id := clientID
	h.HeadOfClientID = &id
	if err := r.store.SaveHousehold(ctx, h); err != nil {
		h.HeadOfClientID = nil
		return fmt.Errorf("assign head of household: %w", err)
	}
	return nil
}
