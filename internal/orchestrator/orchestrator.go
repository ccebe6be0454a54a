package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/tickmerge/internal/files"
	"github.com/rickgao/tickmerge/internal/queue"
	"github.com/rickgao/tickmerge/internal/worker"
)

// Orchestrator owns the workers and schedules merge rounds.
type Orchestrator struct {
	cfg      Config
	handler  worker.ResultHandler
	logger   *slog.Logger
	instance string

	queues  []*queue.Queue[worker.Task]
	workers []*worker.Worker

	// Dispatch state
	mu       sync.Mutex
	inFlight map[string]struct{} // Names handed to a worker and not yet reported
	pending  int                 // Tasks handed to a worker and not yet reported
	next     int                 // Queue receiving the next task

	rounds       atomic.Int64
	convergences atomic.Int64

	converged     chan struct{}
	convergedOnce sync.Once

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	group  *errgroup.Group
}

// New creates an orchestrator and its workers. handler receives every task
// result and may also implement RoundObserver and ConvergenceHandler.
func New(cfg Config, handler worker.ResultHandler, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	o := &Orchestrator{
		cfg:       cfg,
		handler:   handler,
		logger:    logger,
		instance:  worker.NewInstanceID(),
		inFlight:  make(map[string]struct{}),
		converged: make(chan struct{}),
	}

	wcfg := worker.Config{Directory: cfg.Directory, MemoryBytes: cfg.MemoryBytes}
	for i := 0; i < cfg.Workers; i++ {
		q := queue.New[worker.Task](16)
		o.queues = append(o.queues, q)
		o.workers = append(o.workers, worker.New(wcfg, worker.ID(o.instance, i), q, o, logger))
	}

	return o
}

// Start launches the workers and the round loop.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.ctx, o.cancel = context.WithCancel(ctx)

	g, gctx := errgroup.WithContext(o.ctx)
	for _, w := range o.workers {
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	o.group = g

	o.wg.Add(1)
	go o.run()

	o.logger.Info("orchestrator started",
		"directory", o.cfg.Directory,
		"workers", len(o.workers),
		"instance", o.instance,
		"poll_interval", o.cfg.PollInterval,
	)
	return nil
}

// Stop cancels the round loop and the workers and waits for them. A merge
// cut short by cancellation returns its inputs to the directory.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.logger.Info("stopping orchestrator")

	done := make(chan error, 1)
	go func() {
		o.wg.Wait()
		for _, q := range o.queues {
			q.Close()
		}
		var err error
		if o.group != nil {
			err = o.group.Wait()
		}
		done <- err
	}()

	if o.cancel != nil {
		o.cancel()
	}

	select {
	case err := <-done:
		o.logger.Info("orchestrator stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Converged is closed the first time the final output is produced.
func (o *Orchestrator) Converged() <-chan struct{} {
	return o.converged
}

// Stats returns current counters.
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	inFlight := o.pending
	o.mu.Unlock()

	depth := 0
	for _, q := range o.queues {
		depth += q.Len()
	}
	return Stats{
		Workers:      len(o.workers),
		QueueDepth:   depth,
		InFlight:     inFlight,
		Rounds:       o.rounds.Load(),
		Convergences: o.convergences.Load(),
	}
}

// run waits out the warm-up delay, then runs a round every poll interval.
func (o *Orchestrator) run() {
	defer o.wg.Done()

	select {
	case <-o.ctx.Done():
		return
	case <-time.After(o.cfg.WarmUp):
	}

	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	for {
		o.Round(o.ctx)

		select {
		case <-o.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Round scans the directory once and dispatches every complete pair.
func (o *Orchestrator) Round(ctx context.Context) RoundResult {
	res := o.round(ctx)
	o.rounds.Add(1)

	if obs, ok := o.handler.(RoundObserver); ok {
		obs.ObserveRound(res)
	}
	if res.Converged() {
		o.convergences.Add(1)
		if h, ok := o.handler.(ConvergenceHandler); ok {
			h.HandleConvergence(res.Final)
		}
		o.convergedOnce.Do(func() { close(o.converged) })
		if o.cfg.ExitOnConverge && o.cancel != nil {
			o.cancel()
		}
	}
	return res
}

func (o *Orchestrator) round(ctx context.Context) RoundResult {
	if err := ctx.Err(); err != nil {
		return RoundResult{Err: err}
	}

	names, err := files.Scan(o.cfg.Directory)
	if err != nil {
		o.logger.Error("scan failed", "directory", o.cfg.Directory, "error", err)
		return RoundResult{Err: err}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	eligible := names[:0]
	for _, name := range names {
		if _, busy := o.inFlight[name]; !busy {
			eligible = append(eligible, name)
		}
	}

	res := RoundResult{Files: len(eligible), InFlight: o.pending}

	if len(eligible) < 2 {
		if len(eligible) == 1 && files.IsIntermediate(eligible[0]) && o.pending == 0 {
			final, err := files.Promote(o.cfg.Directory, eligible[0])
			if err != nil {
				o.logger.Error("promote failed", "file", eligible[0], "error", err)
				res.Err = err
				return res
			}
			o.logger.Info("merge converged", "output", final)
			res.Final = final
		}
		return res
	}

	for i := 0; i+1 < len(eligible); i += 2 {
		task := worker.Task{First: eligible[i], Second: eligible[i+1]}
		if !o.queues[o.next].Push(task) {
			// Queues close only on shutdown.
			break
		}
		o.inFlight[task.First] = struct{}{}
		o.inFlight[task.Second] = struct{}{}
		o.pending++
		res.Dispatched++
		o.next = (o.next + 1) % len(o.queues)
	}

	o.logger.Debug("round dispatched",
		"files", res.Files,
		"dispatched", res.Dispatched,
		"in_flight", res.InFlight,
	)
	return res
}

// HandleResult clears the finished task from the in-flight set and forwards
// the result.
func (o *Orchestrator) HandleResult(r worker.Result) {
	o.mu.Lock()
	delete(o.inFlight, r.Task.First)
	delete(o.inFlight, r.Task.Second)
	if o.pending > 0 {
		o.pending--
	}
	o.mu.Unlock()

	if o.handler != nil {
		o.handler.HandleResult(r)
	}
}
