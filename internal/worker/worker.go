package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"code.cloudfoundry.org/bytefmt"

	"github.com/rickgao/tickmerge/internal/files"
	"github.com/rickgao/tickmerge/internal/merge"
	"github.com/rickgao/tickmerge/internal/queue"
)

// Worker merges the tasks pushed onto its queue.
type Worker struct {
	cfg     Config
	id      string
	queue   *queue.Queue[Task]
	handler ResultHandler
	merger  *merge.Merger
	logger  *slog.Logger

	nameMu     sync.Mutex
	lastMillis int64
	now        func() time.Time
}

// New creates a worker reading from q. handler may be nil.
func New(cfg Config, id string, q *queue.Queue[Task], handler ResultHandler, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("worker", id)
	return &Worker{
		cfg:     cfg,
		id:      id,
		queue:   q,
		handler: handler,
		merger:  merge.NewMerger(merge.RecordBudget(cfg.MemoryBytes), logger),
		logger:  logger,
		now:     time.Now,
	}
}

// ID returns the worker identity.
func (w *Worker) ID() string {
	return w.id
}

// Run processes tasks until ctx ends or the queue is closed. Both are a
// normal exit and return nil.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		"memory", bytefmt.ByteSize(w.cfg.MemoryBytes),
		"budget", w.merger.Budget(),
	)

	for {
		task, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || ctx.Err() != nil {
				w.logger.Info("worker stopped")
				return nil
			}
			return fmt.Errorf("pop task: %w", err)
		}

		res := w.Process(ctx, task)
		if w.handler != nil {
			w.handler.HandleResult(res)
		}
	}
}

// Process claims and merges one task.
func (w *Worker) Process(ctx context.Context, task Task) (res Result) {
	start := time.Now()
	res = Result{WorkerID: w.id, Task: task}
	defer func() { res.Duration = time.Since(start) }()

	claim, err := files.ClaimPair(w.cfg.Directory, task.First, task.Second)
	if err != nil {
		w.logger.Warn("claim failed", "task", task.String(), "error", err)
		res.Stage, res.Err = StageClaim, err
		return res
	}

	name := w.nextOutputName()
	finalPath := filepath.Join(w.cfg.Directory, name)
	tempPath := files.TempName(finalPath)

	stats, err := w.mergeClaim(ctx, claim, tempPath)
	if err != nil {
		w.logger.Error("merge failed", "task", task.String(), "error", err)
		w.abort(claim, tempPath)
		res.Stage, res.Err = StageMerge, err
		return res
	}
	res.Stats = stats
	res.Records = stats.Records

	// The output is published even when an input cannot be removed; the
	// other input is already gone.
	var releaseErr error
	for _, c := range []files.Claimed{claim.First, claim.Second} {
		if err := files.Release(c); err != nil {
			w.logger.Error("release failed", "input", c.Name, "error", err)
			releaseErr = errors.Join(releaseErr, err)
		}
	}

	if err := files.Publish(tempPath, finalPath); err != nil {
		w.logger.Error("publish failed", "output", name, "error", err)
		res.Stage, res.Err = StagePublish, err
		return res
	}
	res.Output = name

	if releaseErr != nil {
		res.Stage, res.Err = StageRelease, releaseErr
		return res
	}

	res.Stage = StageDone
	w.logger.Info("merge complete",
		"inputs", task.String(),
		"output", name,
		"records", stats.Records,
		"peak_held", stats.PeakHeld,
		"duration", time.Since(start),
	)
	return res
}

func (w *Worker) mergeClaim(ctx context.Context, claim files.Claim, tempPath string) (merge.Stats, error) {
	left, err := merge.OpenFile(claim.First.Path, claim.First.Name)
	if err != nil {
		return merge.Stats{}, err
	}
	defer left.Close()

	right, err := merge.OpenFile(claim.Second.Path, claim.Second.Name)
	if err != nil {
		return merge.Stats{}, err
	}
	defer right.Close()

	sink, err := merge.CreateFile(tempPath)
	if err != nil {
		return merge.Stats{}, err
	}

	stats, err := w.merger.Merge(ctx, left, right, sink)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	return stats, err
}

// abort discards a partial output and re-offers the inputs.
func (w *Worker) abort(claim files.Claim, tempPath string) {
	if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("remove partial output", "path", tempPath, "error", err)
	}
	for _, c := range []files.Claimed{claim.First, claim.Second} {
		if err := files.Unclaim(c); err != nil {
			w.logger.Warn("unclaim failed", "input", c.Name, "error", err)
		}
	}
}

// nextOutputName returns a fresh output name. The millisecond component is
// strictly increasing per worker.
func (w *Worker) nextOutputName() string {
	w.nameMu.Lock()
	defer w.nameMu.Unlock()

	ms := w.now().UnixMilli()
	if ms <= w.lastMillis {
		ms = w.lastMillis + 1
	}
	w.lastMillis = ms
	return files.IntermediateName(w.id, time.UnixMilli(ms))
}
