package importer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type runExecutor interface {
	Execute(ctx context.Context, run Run) (domain.ImportProgress, error)
}

type RunnerConfig struct {
	Workers   int
	QueueSize int
}

type queuedRun struct {
	run   Run
	ctx   context.Context
	slot  *activeRun
	after <-chan struct{}
}

type activeRun struct {
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// Runner executes import runs on a bounded pool of workers. Each user has at
// most one live run: submitting a new one cancels the previous run and waits
// for it to stop before starting.
type Runner struct {
	executor runExecutor
	cfg      RunnerConfig
	logger   *logrus.Logger
	queue    chan queuedRun

	mu      sync.Mutex
	baseCtx context.Context
	active  map[string]*activeRun

	once sync.Once
	wg   sync.WaitGroup
}

func NewRunner(executor runExecutor, logger *logrus.Logger, cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Workers > 10 {
		cfg.Workers = 10
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Runner{
		executor: executor,
		cfg:      cfg,
		logger:   logger,
		queue:    make(chan queuedRun, cfg.QueueSize),
		baseCtx:  context.Background(),
		active:   make(map[string]*activeRun),
	}
}

// Start launches the workers. Runs inherit cancellation from ctx.
func (r *Runner) Start(ctx context.Context) {
	r.once.Do(func() {
		r.mu.Lock()
		r.baseCtx = ctx
		r.mu.Unlock()

		for i := 0; i < r.cfg.Workers; i++ {
			r.wg.Add(1)
			go r.workerLoop(ctx)
		}
	})
}

// Wait blocks until every worker has returned after the Start context ends.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) Submit(run Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithCancelCause(r.baseCtx)
	next := &activeRun{cancel: cancel, done: make(chan struct{})}

	var after <-chan struct{}
	prev, hasPrev := r.active[run.OwnerID]
	if hasPrev {
		after = prev.done
	}

	select {
	case r.queue <- queuedRun{run: run, ctx: ctx, slot: next, after: after}:
	default:
		cancel(ErrQueueFull)
		return ErrQueueFull
	}

	if hasPrev {
		prev.cancel(ErrRunSuperseded)
	}
	r.active[run.OwnerID] = next
	return nil
}

// Cancel stops the user's live run between rows.
func (r *Runner) Cancel(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.active[userID]
	if !ok {
		return ErrRunNotFound
	}
	current.cancel(ErrRunCancelled)
	return nil
}

func (r *Runner) workerLoop(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case q := <-r.queue:
			r.execute(q)
		}
	}
}

func (r *Runner) execute(q queuedRun) {
	// Wait even when already cancelled: a superseded run hands the wait down
	// the chain. The predecessor was dequeued first, so it always finishes.
	if q.after != nil {
		<-q.after
	}

	defer func() {
		r.mu.Lock()
		if r.active[q.run.OwnerID] == q.slot {
			delete(r.active, q.run.OwnerID)
		}
		r.mu.Unlock()
		q.slot.cancel(nil)
		close(q.slot.done)
	}()

	if _, err := r.executor.Execute(q.ctx, q.run); err != nil {
		r.logger.WithFields(logrus.Fields{
			"run_id":  q.run.ID,
			"user_id": q.run.OwnerID,
		}).WithError(err).Info("household import stopped early")
	}
}
