// Package history persists per-run outcomes to a local sqlite database so
// operators can audit past passes. Everything here is in the reporting
// error class: failures are logged by callers, never fatal.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"hearingbot/internal/dispatch"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Run is one completed pass.
type Run struct {
	ID         string
	Profile    string
	StartedAt  time.Time
	FinishedAt time.Time
	TargetNear time.Time
	TargetFar  time.Time
	Total      int
	Sent       int
	Failed     int
}

// NewRunID returns a lexicographically sortable run identifier.
func NewRunID(at time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(at.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// Store wraps the sqlite database. A nil *Store is a safe no-op, which is
// how a run without a configured history path behaves.
type Store struct {
	db *sql.DB
}

// Open creates or migrates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(string(b)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun writes the run row and its per-record results in one
// transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, results []dispatch.Result) error {
	if s == nil || s.db == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs(id, profile, started_at, finished_at, target_near, target_far, total, sent, failed)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Profile,
		run.StartedAt.Format(time.RFC3339Nano), run.FinishedAt.Format(time.RFC3339Nano),
		run.TargetNear.Format("2006-01-02"), run.TargetFar.Format("2006-01-02"),
		run.Total, run.Sent, run.Failed,
	)
	if err != nil {
		return err
	}

	for _, res := range results {
		var hearing any
		if res.NextHearingDate != nil {
			hearing = res.NextHearingDate.Format("2006-01-02")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results(run_id, client, contact, hearing_date, status, at)
			 VALUES(?,?,?,?,?,?)`,
			run.ID, res.Client, res.Contact, hearing, string(res.Status),
			res.At.Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LastRuns returns up to n most recent runs, newest first.
func (s *Store) LastRuns(ctx context.Context, n int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile, started_at, finished_at, target_near, target_far, total, sent, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			near, far         string
		)
		if err := rows.Scan(&r.ID, &r.Profile, &started, &finished, &near, &far, &r.Total, &r.Sent, &r.Failed); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		r.TargetNear, _ = time.Parse("2006-01-02", near)
		r.TargetFar, _ = time.Parse("2006-01-02", far)
		out = append(out, r)
	}
	return out, rows.Err()
}
