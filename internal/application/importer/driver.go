package importer

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// Run is one import request: the owner's mapped rows.
type Run struct {
	ID      string
	OwnerID string
	Mapping domain.ColumnMapping
	Rows    [][]any
}

type DriverConfig struct {
	Now     func() time.Time
	NewCode func() string
}

// Driver reconciles the rows of a run strictly in input order and publishes
// progress to the owner's channel after every row.
type Driver struct {
	store     domain.Store
	channel   domain.ProgressChannel
	recorder  domain.RunRecorder
	logger    *logrus.Logger
	validator *FieldValidator
	now       func() time.Time
	newCode   func() string
}

// NewDriver builds a driver. recorder may be nil.
func NewDriver(store domain.Store, channel domain.ProgressChannel, recorder domain.RunRecorder, logger *logrus.Logger, cfg DriverConfig) *Driver {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewCode == nil {
		cfg.NewCode = NewHouseholdCode
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Driver{
		store:     store,
		channel:   channel,
		recorder:  recorder,
		logger:    logger,
		validator: NewFieldValidator(cfg.Now),
		now:       cfg.Now,
		newCode:   cfg.NewCode,
	}
}

// Check reports structural problems that prevent a run from starting.
func (d *Driver) Check(run Run) error {
	_, err := d.prepare(run)
	return err
}

func (d *Driver) prepare(run Run) (*Normalizer, error) {
	if len(run.Rows) == 0 {
		return nil, &StructuralError{Err: ErrNoRows}
	}
	if len(run.Mapping) == 0 {
		return nil, &StructuralError{Err: ErrNoMapping}
	}
	normalizer, err := NewNormalizer(run.Mapping)
	if err != nil {
		return nil, &StructuralError{Err: err}
	}
	return normalizer, nil
}

// Execute processes every row of run. Per-row failures are recorded in the
// progress and never returned; the error is non-nil only for structural
// problems or when ctx is cancelled between rows.
func (d *Driver) Execute(ctx context.Context, run Run) (domain.ImportProgress, error) {
	normalizer, err := d.prepare(run)
	if err != nil {
		return domain.ImportProgress{}, err
	}

	log := d.logger.WithFields(logrus.Fields{
		"run_id":  run.ID,
		"user_id": run.OwnerID,
		"rows":    len(run.Rows),
	})
	tracker := NewProgressTracker(run.ID, len(run.Rows), d.now)

	if ctx.Err() != nil {
		return d.stop(ctx, run, tracker, log)
	}

	activeRuns.Inc()
	defer activeRuns.Dec()

	log.Info("household import started")
	d.publish(ctx, log, run.OwnerID, domain.EventImportProgress, tracker.Snapshot())

	reconciler := NewRowReconciler(d.store, run.OwnerID, normalizer, d.validator, d.newCode)
	// A started row always finishes; cancellation only applies between rows.
	rowCtx := context.WithoutCancel(ctx)
	for i, cells := range run.Rows {
		if ctx.Err() != nil {
			return d.stop(ctx, run, tracker, log)
		}

		outcome := reconciler.Process(rowCtx, i+1, cells)
		recordRowMetric(outcome.Kind)
		if outcome.Kind == OutcomeFailed {
			log.WithFields(logrus.Fields{"row": outcome.RowNumber, "reason": outcome.Reason}).Debug("import row failed")
		}

		snapshot := tracker.Record(outcome)
		d.publish(ctx, log, run.OwnerID, domain.EventImportProgress, snapshot)
		if tracker.Done() {
			d.publish(ctx, log, run.OwnerID, domain.EventImportComplete, snapshot)
		}
	}

	final := tracker.Snapshot()
	d.finish(ctx, run, final, log)
	return final, nil
}

func (d *Driver) stop(ctx context.Context, run Run, tracker *ProgressTracker, log *logrus.Entry) (domain.ImportProgress, error) {
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrRunSuperseded) {
		log.Info("household import superseded by a newer run")
		return tracker.Snapshot(), cause
	}

	snapshot := tracker.Cancel()
	d.publish(ctx, log, run.OwnerID, domain.EventImportComplete, snapshot)
	d.finish(ctx, run, snapshot, log)
	return snapshot, cause
}

func (d *Driver) finish(ctx context.Context, run Run, p domain.ImportProgress, log *logrus.Entry) {
	finishedAt := d.now()
	recordRunMetric(p.Status, finishedAt.Sub(p.StartedAt))

	log.WithFields(logrus.Fields{
		"status":     p.Status,
		"processed":  p.ProcessedRecords,
		"created":    p.CreatedCount,
		"updated":    p.UpdatedCount,
		"failed":     p.FailedCount,
		"duplicates": p.DuplicateCount,
	}).Info("household import finished")

	if d.recorder == nil {
		return
	}
	err := d.recorder.RecordRun(context.WithoutCancel(ctx), domain.ImportRunSummary{
		RunID:          run.ID,
		OwnerID:        run.OwnerID,
		Status:         p.Status,
		TotalRecords:   p.TotalRecords,
		CreatedCount:   p.CreatedCount,
		UpdatedCount:   p.UpdatedCount,
		FailedCount:    p.FailedCount,
		DuplicateCount: p.DuplicateCount,
		StartedAt:      p.StartedAt,
		FinishedAt:     finishedAt,
	})
	if err != nil {
		log.WithError(err).Warn("record import run failed")
	}
}

// Publish failures are logged; they never stop a run.
func (d *Driver) publish(ctx context.Context, log *logrus.Entry, userID, event string, p domain.ImportProgress) {
	if err := d.channel.Publish(context.WithoutCancel(ctx), userID, event, p); err != nil {
		log.WithError(err).WithField("event", event).Warn("publish import progress failed")
	}
}
