package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/tickmerge/internal/queue"
	"github.com/rickgao/tickmerge/internal/worker"
)

const (
	// KindMerge rows describe one worker task.
	KindMerge = "merge"

	// KindConvergence rows describe the promotion of the final output.
	KindConvergence = "convergence"
)

const schema = `
CREATE TABLE IF NOT EXISTS merge_runs (
	id           BIGSERIAL PRIMARY KEY,
	kind         TEXT        NOT NULL,
	worker_id    TEXT        NOT NULL DEFAULT '',
	first_input  TEXT        NOT NULL DEFAULT '',
	second_input TEXT        NOT NULL DEFAULT '',
	output       TEXT        NOT NULL DEFAULT '',
	records      BIGINT      NOT NULL DEFAULT 0,
	stage        TEXT        NOT NULL DEFAULT '',
	error        TEXT        NOT NULL DEFAULT '',
	duration_ms  BIGINT      NOT NULL DEFAULT 0,
	recorded_at  TIMESTAMPTZ NOT NULL
)`

const insertRun = `
INSERT INTO merge_runs (
	kind, worker_id, first_input, second_input, output,
	records, stage, error, duration_ms, recorded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// writeTimeout bounds a single insert.
const writeTimeout = 5 * time.Second

// Execer is the subset of *pgxpool.Pool used by the journal.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Run is one journal row.
type Run struct {
	Kind        string
	WorkerID    string
	FirstInput  string
	SecondInput string
	Output      string
	Records     int
	Stage       string
	Error       string
	Duration    time.Duration
	At          time.Time
}

// RunFromResult converts a worker result to a journal row.
func RunFromResult(r worker.Result, at time.Time) Run {
	run := Run{
		Kind:        KindMerge,
		WorkerID:    r.WorkerID,
		FirstInput:  r.Task.First,
		SecondInput: r.Task.Second,
		Output:      r.Output,
		Records:     r.Records,
		Stage:       string(r.Stage),
		Duration:    r.Duration,
		At:          at,
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}
	return run
}

// Journal writes runs asynchronously.
type Journal struct {
	db     Execer
	logger *slog.Logger
	runs   *queue.Queue[Run]

	closeDB func() // Set by Open

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a journal writing through db.
func New(db Execer, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{
		db:     db,
		logger: logger,
		runs:   queue.New[Run](64),
	}
}

// EnsureSchema creates the merge_runs table if needed.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create merge_runs: %w", err)
	}
	return nil
}

// Record inserts one run synchronously.
func (j *Journal) Record(ctx context.Context, run Run) error {
	_, err := j.db.Exec(ctx, insertRun,
		run.Kind,
		run.WorkerID,
		run.FirstInput,
		run.SecondInput,
		run.Output,
		int64(run.Records),
		run.Stage,
		run.Error,
		run.Duration.Milliseconds(),
		run.At,
	)
	if err != nil {
		return fmt.Errorf("insert merge run: %w", err)
	}
	return nil
}

// Start begins writing queued runs. The writer outlives cancellation of
// ctx and ends only when Stop closes the queue or gives up waiting.
func (j *Journal) Start(ctx context.Context) error {
	j.ctx, j.cancel = context.WithCancel(context.WithoutCancel(ctx))

	j.wg.Add(1)
	go j.writeLoop()

	j.logger.Info("journal started")
	return nil
}

// Stop writes the runs already queued and shuts down. A pool created by
// Open is closed.
func (j *Journal) Stop(ctx context.Context) error {
	j.runs.Close()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("journal stopped")
	case <-ctx.Done():
		j.logger.Warn("journal stop timed out", "pending", j.runs.Len())
	}

	if j.cancel != nil {
		j.cancel()
	}
	if j.closeDB != nil {
		j.closeDB()
	}
	return nil
}

// HandleResult queues a row for a worker result.
func (j *Journal) HandleResult(r worker.Result) {
	j.enqueue(RunFromResult(r, time.Now().UTC()))
}

// HandleConvergence queues a row for the final output.
func (j *Journal) HandleConvergence(finalPath string) {
	j.enqueue(Run{
		Kind:   KindConvergence,
		Output: finalPath,
		Stage:  string(worker.StageDone),
		At:     time.Now().UTC(),
	})
}

func (j *Journal) enqueue(run Run) {
	if !j.runs.Push(run) {
		j.logger.Debug("journal closed, dropping run", "kind", run.Kind, "output", run.Output)
	}
}

// writeLoop drains the queue until it is closed.
func (j *Journal) writeLoop() {
	defer j.wg.Done()

	for {
		run, err := j.runs.Pop(j.ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrClosed) {
				j.logger.Warn("journal writer abandoned", "error", err, "pending", j.runs.Len())
			}
			return
		}

		ctx, cancel := context.WithTimeout(j.ctx, writeTimeout)
		if err := j.Record(ctx, run); err != nil {
			j.logger.Warn("failed to record merge run",
				"kind", run.Kind,
				"output", run.Output,
				"error", err,
			)
		}
		cancel()
	}
}
