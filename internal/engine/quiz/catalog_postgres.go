package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// postgresCatalogSchema is applied on connect. Statements must stay
// idempotent; they run against existing catalogs on every start.
var postgresCatalogSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id              BIGSERIAL PRIMARY KEY,
		mode            TEXT NOT NULL,
		total_videos    INTEGER NOT NULL,
		successful      INTEGER NOT NULL,
		failed          INTEGER NOT NULL,
		skipped         INTEGER NOT NULL,
		elapsed_seconds DOUBLE PRECISION NOT NULL,
		started_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS run_videos (
		id       BIGSERIAL PRIMARY KEY,
		run_id   BIGINT NOT NULL REFERENCES runs(id),
		video_id TEXT NOT NULL,
		title    TEXT NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		success  BOOLEAN NOT NULL,
		skipped  BOOLEAN NOT NULL,
		error    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS run_videos_run_id_idx ON run_videos (run_id)`,
}

// postgresCatalog is the shared-database backend, used when several
// hosts feed one run history.
type postgresCatalog struct {
	pool *pgxpool.Pool
}

// OpenPostgresCatalog creates a pgx pool and applies the catalog schema.
func OpenPostgresCatalog(ctx context.Context, databaseURL string) (Catalog, error) {
	if databaseURL == "" {
		return nil, errors.New("catalog: DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("catalog: create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: ping postgres: %w", err)
	}

	for _, stmt := range postgresCatalogSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("catalog: apply schema: %w", err)
		}
	}

	slog.Info("run catalog postgres connected", slog.String("addr", config.ConnConfig.Host))
	return &postgresCatalog{pool: pool}, nil
}

func (c *postgresCatalog) RecordRun(ctx context.Context, mode string, startedAt time.Time, summary *engine.RunSummary) (int64, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO runs (mode, total_videos, successful, failed, skipped, elapsed_seconds, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		mode, summary.TotalVideos, summary.Successful, summary.Failed, summary.Skipped,
		summary.ElapsedSeconds, startedAt.UTC(),
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("catalog: insert run: %w", err)
	}

	for _, v := range summary.Videos {
		if _, err := tx.Exec(ctx,
			`INSERT INTO run_videos (run_id, video_id, title, filename, success, skipped, error)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			runID, v.VideoID, v.Title, v.Filename, v.Success, v.Skipped, v.Error,
		); err != nil {
			return 0, fmt.Errorf("catalog: insert outcome: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("catalog: commit: %w", err)
	}
	return runID, nil
}

func (c *postgresCatalog) RecentRuns(ctx context.Context, limit int) ([]CatalogRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := c.pool.Query(ctx,
		`SELECT id, mode, total_videos, successful, failed, skipped, elapsed_seconds, started_at
		 FROM runs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list runs: %w", err)
	}
	defer rows.Close()

	var runs []CatalogRun
	for rows.Next() {
		var r CatalogRun
		var startedAt time.Time
		if err := rows.Scan(&r.ID, &r.Mode, &r.TotalVideos, &r.Successful, &r.Failed,
			&r.Skipped, &r.ElapsedSeconds, &startedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan run: %w", err)
		}
		r.StartedAt = startedAt.UTC().Format(time.RFC3339)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (c *postgresCatalog) RunOutcomes(ctx context.Context, runID int64) ([]engine.VideoOutcome, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT video_id, title, filename, success, skipped, error
		 FROM run_videos WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []engine.VideoOutcome
	for rows.Next() {
		var v engine.VideoOutcome
		if err := rows.Scan(&v.VideoID, &v.Title, &v.Filename, &v.Success, &v.Skipped, &v.Error); err != nil {
			return nil, fmt.Errorf("catalog: scan outcome: %w", err)
		}
		outcomes = append(outcomes, v)
	}
	return outcomes, rows.Err()
}

func (c *postgresCatalog) Close() error {
	c.pool.Close()
	return nil
}
