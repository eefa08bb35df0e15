package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a pgx connection pool against the given Postgres URL and
// verifies connectivity with a ping.
func NewPool(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnIdleTime = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	defer pingCancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("database connection established",
		slog.String("db", poolCfg.ConnConfig.Database))
	return pool, nil
}

// Store bundles the per-table repositories over one pool.
type Store struct {
	Emails      *EmailRepo
	Attachments *AttachmentRepo
	Analyses    *AnalysisRepo
	Actions     *ActionRepo
	Replies     *ReplyRepo

	pool *pgxpool.Pool
}

// NewStore creates the repositories.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{
		Emails:      NewEmailRepo(pool, logger),
		Attachments: NewAttachmentRepo(pool, logger),
		Analyses:    NewAnalysisRepo(pool, logger),
		Actions:     NewActionRepo(pool, logger),
		Replies:     NewReplyRepo(pool, logger),
		pool:        pool,
	}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the tables when they do not exist yet. Each statement
// runs independently.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
