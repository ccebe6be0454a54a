package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/tickmerge/internal/config"
	"github.com/rickgao/tickmerge/internal/journal"
	"github.com/rickgao/tickmerge/internal/metrics"
	"github.com/rickgao/tickmerge/internal/orchestrator"
	"github.com/rickgao/tickmerge/internal/status"
	"github.com/rickgao/tickmerge/internal/version"
)

// shutdownTimeout bounds the graceful shutdown of every component.
const shutdownTimeout = 30 * time.Second

// run wires the components and blocks until ctx ends or, with
// ExitOnConverge, the final file is produced.
func run(ctx context.Context, cfg *config.Config) error {
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger, closeLog := config.SetupLogger(cfg.Logging.File, level)
	defer closeLog()

	logger.Info("starting filemerger",
		"version", version.Version,
		"commit", version.Commit,
		"directory", cfg.Merge.Directory,
		"workers", cfg.Merge.Workers,
		"memory", cfg.Merge.MemoryBytes.String(),
	)

	m := metrics.New()
	hub := status.NewHub(logger)
	handlers := orchestrator.Handlers{m, hub}

	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		db := cfg.Journal.Database
		logger.Info("connecting to journal database",
			"host", db.Host,
			"port", db.Port,
			"database", db.Name,
		)
		j, err := journal.Open(ctx, db, logger)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		if err := j.Start(ctx); err != nil {
			_ = j.Stop(context.Background())
			return err
		}
		jrnl = j
		handlers = append(handlers, jrnl)
	}

	orch := orchestrator.New(orchestrator.Config{
		Directory:      cfg.Merge.Directory,
		Workers:        cfg.Merge.Workers,
		MemoryBytes:    uint64(cfg.Merge.MemoryBytes),
		PollInterval:   cfg.Merge.PollInterval,
		WarmUp:         cfg.Merge.WarmUp,
		ExitOnConverge: cfg.Merge.ExitOnConverge,
	}, handlers, logger)

	var server *status.Server
	if cfg.Status.Enabled {
		server = status.NewServer(cfg.Status.Port, orch, m.Handler(), hub, logger)
		if err := server.Start(ctx); err != nil {
			return err
		}
	}

	if err := orch.Start(ctx); err != nil {
		return err
	}

	var converged <-chan struct{}
	if cfg.Merge.ExitOnConverge {
		converged = orch.Converged()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case <-converged:
		logger.Info("final output produced, exiting")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopErr := orch.Stop(shutdownCtx)
	if stopErr != nil {
		logger.Error("orchestrator stop failed", "error", stopErr)
	}
	if jrnl != nil {
		if err := jrnl.Stop(shutdownCtx); err != nil {
			logger.Warn("journal stop failed", "error", err)
		}
	}
	if server != nil {
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Warn("status server stop failed", "error", err)
		}
	}

	stats := orch.Stats()
	logger.Info("filemerger stopped",
		"rounds", stats.Rounds,
		"convergences", stats.Convergences,
	)
	return stopErr
}
