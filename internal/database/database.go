package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Gateway holds the process-wide connection pool shared by every
// repository.
type Gateway struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

// Connect opens the pool and verifies it with a ping before handing
// it out.
func Connect(ctx context.Context, log *slog.Logger, url string) (*Gateway, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("connected to postgres")
	return &Gateway{log: log, pool: pool}, nil
}

// Pool exposes the underlying pgx pool to repositories.
func (g *Gateway) Pool() *pgxpool.Pool { return g.pool }

// IsConnected is the liveness probe backing /health. It returns false
// on any underlying failure rather than propagating it.
func (g *Gateway) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := g.pool.Ping(ctx); err != nil {
		g.log.Warn("liveness probe failed", "err", err)
		return false
	}
	return true
}

func (g *Gateway) Close() { g.pool.Close() }
