package quiz

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// Catalog records run history for the status tools. Orchestrators hold
// a nil Catalog when recording is disabled.
type Catalog interface {
	// RecordRun persists one orchestrator run with its per-video
	// outcomes and returns the run id.
	RecordRun(ctx context.Context, mode string, startedAt time.Time, summary *engine.RunSummary) (int64, error)
	// RecentRuns returns runs newest-first.
	RecentRuns(ctx context.Context, limit int) ([]CatalogRun, error)
	// RunOutcomes returns one run's per-video outcomes in insert order.
	RunOutcomes(ctx context.Context, runID int64) ([]engine.VideoOutcome, error)
	Close() error
}

// CatalogRun is one recorded orchestrator run.
type CatalogRun struct {
	ID             int64   `json:"id"`
	Mode           string  `json:"mode"`
	TotalVideos    int     `json:"total_videos"`
	Successful     int     `json:"successful"`
	Failed         int     `json:"failed"`
	Skipped        int     `json:"skipped"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	StartedAt      string  `json:"started_at"`
}

// sqliteCatalog is the default single-file backend.
type sqliteCatalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) the SQLite run catalog. An empty path
// uses ~/.go_quiz/catalog.db.
func OpenCatalog(path string) (Catalog, error) {
	if path == "" {
		dir := filepath.Join(os.Getenv("HOME"), ".go_quiz")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("catalog: mkdir %s: %w", dir, err)
		}
		path = filepath.Join(dir, "catalog.db")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initCatalogSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: init schema: %w", err)
	}
	return &sqliteCatalog{db: db}, nil
}

func initCatalogSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		mode            TEXT NOT NULL,
		total_videos    INTEGER NOT NULL,
		successful      INTEGER NOT NULL,
		failed          INTEGER NOT NULL,
		skipped         INTEGER NOT NULL,
		elapsed_seconds REAL NOT NULL,
		started_at      TEXT NOT NULL
	)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS run_videos (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id   INTEGER NOT NULL REFERENCES runs(id),
		video_id TEXT NOT NULL,
		title    TEXT NOT NULL,
		filename TEXT,
		success  INTEGER NOT NULL,
		skipped  INTEGER NOT NULL,
		error    TEXT
	)`)
	return err
}

func (c *sqliteCatalog) RecordRun(ctx context.Context, mode string, startedAt time.Time, summary *engine.RunSummary) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (mode, total_videos, successful, failed, skipped, elapsed_seconds, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		mode, summary.TotalVideos, summary.Successful, summary.Failed, summary.Skipped,
		summary.ElapsedSeconds, startedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: run id: %w", err)
	}

	for _, v := range summary.Videos {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_videos (run_id, video_id, title, filename, success, skipped, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, v.VideoID, v.Title, v.Filename, boolInt(v.Success), boolInt(v.Skipped), v.Error,
		); err != nil {
			return 0, fmt.Errorf("catalog: insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("catalog: commit: %w", err)
	}
	return runID, nil
}

func (c *sqliteCatalog) RecentRuns(ctx context.Context, limit int) ([]CatalogRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, mode, total_videos, successful, failed, skipped, elapsed_seconds, started_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list runs: %w", err)
	}
	defer rows.Close()

	var runs []CatalogRun
	for rows.Next() {
		var r CatalogRun
		if err := rows.Scan(&r.ID, &r.Mode, &r.TotalVideos, &r.Successful, &r.Failed,
			&r.Skipped, &r.ElapsedSeconds, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (c *sqliteCatalog) RunOutcomes(ctx context.Context, runID int64) ([]engine.VideoOutcome, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT video_id, title, filename, success, skipped, error
		 FROM run_videos WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []engine.VideoOutcome
	for rows.Next() {
		var v engine.VideoOutcome
		var success, skipped int
		if err := rows.Scan(&v.VideoID, &v.Title, &v.Filename, &success, &skipped, &v.Error); err != nil {
			return nil, fmt.Errorf("catalog: scan outcome: %w", err)
		}
		v.Success = success != 0
		v.Skipped = skipped != 0
		outcomes = append(outcomes, v)
	}
	return outcomes, rows.Err()
}

func (c *sqliteCatalog) Close() error { return c.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
