package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/tickmerge/internal/config"
)

// maxConnIdleTime releases journal connections between sparse writes.
const maxConnIdleTime = 5 * time.Minute

// Open connects to the journal database, verifies the connection and
// creates the schema. The pool is closed by Stop.
func Open(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Journal, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping journal database: %w", err)
	}

	j := New(pool, logger)
	j.closeDB = pool.Close
	if err := j.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return j, nil
}
