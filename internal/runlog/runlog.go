// Package runlog persists verification runs and their per-obligation
// verdicts in a SQLite database, so past runs can be listed and their
// reports re-rendered without re-solving.
package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/alberdingk-thijm/Timepiece/internal/report"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("runlog: run not found")

// Run is one verification run's record.
type Run struct {
	ID         string
	Network    string
	StartedAt  time.Time
	FinishedAt time.Time // zero while in flight
	Verdict    report.Verdict
	Report     []byte // canonical JSON, nil while in flight
}

// Obligation is one recorded proof obligation of a run.
type Obligation struct {
	Seq     int
	Kind    string
	Node    string
	Verdict report.Verdict
	Detail  string
}

// Store is the run log. SQLite permits one writer at a time, so the
// connection pool is pinned to a single connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens the run log at path. WAL mode keeps reads available
// during writes; the schema is applied idempotently.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: connect: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("runlog: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: set user_version: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records the start of a run over the named network and returns its
// id.
func (s *Store) Begin(ctx context.Context, network string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, network, started_at)
		VALUES (?, ?, ?)
	`, id, network, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("runlog: begin run: %w", err)
	}
	return id, nil
}

// Finish records a run's report and final verdict.
func (s *Store) Finish(ctx context.Context, id string, rep *report.Report) error {
	verdict := report.VerdictProved
	if !rep.Proved() {
		verdict = report.VerdictCounterexample
	}
	doc, err := rep.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("runlog: finish run %s: %w", id, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, verdict = ?, report = ?
		WHERE id = ?
	`, s.now().UTC().Format(time.RFC3339Nano), string(verdict), string(doc), id)
	if err != nil {
		return fmt.Errorf("runlog: finish run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("runlog: finish run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("runlog: finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// Append records one obligation's verdict under a run, in arrival order.
func (s *Store) Append(ctx context.Context, runID string, o Obligation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO obligations (run_id, seq, kind, node, verdict, detail)
		SELECT ?, COALESCE(MAX(seq) + 1, 0), ?, ?, ?, ?
		FROM obligations WHERE run_id = ?
	`, runID, o.Kind, o.Node, string(o.Verdict), o.Detail, runID)
	if err != nil {
		return fmt.Errorf("runlog: append obligation to %s: %w", runID, err)
	}
	return nil
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, network, started_at, finished_at, verdict, report
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("runlog: get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("runlog: get run %s: %w", id, err)
	}
	return run, nil
}

// List returns runs newest first, optionally filtered to one network. A
// non-positive limit means no limit.
func (s *Store) List(ctx context.Context, network string, limit int) ([]Run, error) {
	query := `
		SELECT id, network, started_at, finished_at, verdict, report
		FROM runs
	`
	var args []any
	if network != "" {
		query += " WHERE network = ?"
		args = append(args, network)
	}
	// UUIDv7 ids sort by creation time.
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("runlog: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("runlog: list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runlog: list runs: %w", err)
	}
	return runs, nil
}

// Obligations returns a run's recorded obligations in sequence order.
func (s *Store) Obligations(ctx context.Context, runID string) ([]Obligation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, node, verdict, detail
		FROM obligations WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("runlog: obligations of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Obligation
	for rows.Next() {
		var o Obligation
		var verdict string
		if err := rows.Scan(&o.Seq, &o.Kind, &o.Node, &verdict, &o.Detail); err != nil {
			return nil, fmt.Errorf("runlog: obligations of %s: %w", runID, err)
		}
		o.Verdict = report.Verdict(verdict)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runlog: obligations of %s: %w", runID, err)
	}
	return out, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
		verdict  sql.NullString
		doc      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Network, &started, &finished, &verdict, &doc); err != nil {
		return Run{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = t

	if finished.Valid {
		t, err := time.Parse(time.RFC3339Nano, finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = t
	}
	if verdict.Valid {
		run.Verdict = report.Verdict(verdict.String)
	}
	if doc.Valid {
		run.Report = []byte(doc.String)
	}
	return run, nil
}
