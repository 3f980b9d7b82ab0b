// Package history persists one fleet-compliance snapshot per analysis run,
// giving the dashboard a real timeline instead of recomputing trends from
// live data on every poll.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/fleetgauge/fleetgauge/internal/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS fleet_snapshots (
	id                     TEXT PRIMARY KEY,
	total_devices          INTEGER NOT NULL,
	successful_deployments INTEGER NOT NULL,
	success_rate           REAL NOT NULL,
	taken_at               DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fleet_snapshots_taken_at ON fleet_snapshots(taken_at);
`

// Snapshot is one stored compliance summary.
type Snapshot struct {
	ID                    string    `json:"id"`
	TotalDevices          int       `json:"total_devices"`
	SuccessfulDeployments int       `json:"successful_deployments"`
	SuccessRate           float64   `json:"success_rate"`
	TakenAt               time.Time `json:"taken_at"`
}

// Store records and lists compliance snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the snapshot database at path and applies the
// schema. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection. WAL enables concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one deployment summary.
func (s *Store) Record(ctx context.Context, d *analysis.Deployment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fleet_snapshots (id, total_devices, successful_deployments, success_rate, taken_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), d.TotalDevices, d.SuccessfulDeployments, d.SuccessRate, d.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

// Recent returns up to limit snapshots, newest first. A non-positive limit
// defaults to 50; the cap is 1000.
func (s *Store) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, total_devices, successful_deployments, success_rate, taken_at
		FROM fleet_snapshots ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.ID, &sn.TotalDevices, &sn.SuccessfulDeployments, &sn.SuccessRate, &sn.TakenAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}
