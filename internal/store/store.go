// Package store persists batch run history in SQLite. Each batch run
// records one row per checked snippet so later runs can be compared
// against earlier ones.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"patcheck/internal/logging"
	"patcheck/internal/verdict"
)

const currentSchemaVersion = 1

// DB represents a history database connection
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Run is one batch invocation
type Run struct {
	ID        string
	Pattern   string
	StartedAt time.Time
	Total     int
	Passed    int
	Failed    int
	Errored   int
}

// Record is one snippet's outcome within a run
type Record struct {
	RunID         string
	Source        string
	Pattern       string
	Pass          bool
	FactDigest    string
	BindingsTried int
	Truncated     bool
	Violations    int
	Error         string
}

// Open opens or creates the history database at the given path,
// creating parent directories as needed.
func Open(dbPath string, logger *logging.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	db := &DB{conn: conn, logger: logger, dbPath: dbPath}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// WithTx executes a function within a transaction. On error the
// transaction is rolled back, otherwise committed.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (db *DB) ensureSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				pattern TEXT NOT NULL,
				started_at TEXT NOT NULL,
				total INTEGER NOT NULL DEFAULT 0,
				passed INTEGER NOT NULL DEFAULT 0,
				failed INTEGER NOT NULL DEFAULT 0,
				errored INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS records (
				run_id TEXT NOT NULL REFERENCES runs(id),
				source TEXT NOT NULL,
				pattern TEXT NOT NULL,
				pass INTEGER NOT NULL,
				fact_digest TEXT NOT NULL DEFAULT '',
				bindings_tried INTEGER NOT NULL DEFAULT 0,
				truncated INTEGER NOT NULL DEFAULT 0,
				violations INTEGER NOT NULL DEFAULT 0,
				error TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id)`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}

		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
				return err
			}
			if db.logger != nil {
				db.logger.Info("History schema initialized", map[string]interface{}{
					"path":    db.dbPath,
					"version": currentSchemaVersion,
				})
			}
		}
		return nil
	})
}

// BeginRun inserts a run row. Totals are finalized by FinishRun.
func (db *DB) BeginRun(run *Run) error {
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, pattern, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Pattern, run.StartedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// FinishRun writes the final totals for a run.
func (db *DB) FinishRun(run *Run) error {
	_, err := db.conn.Exec(
		`UPDATE runs SET total = ?, passed = ?, failed = ?, errored = ? WHERE id = ?`,
		run.Total, run.Passed, run.Failed, run.Errored, run.ID,
	)
	return err
}

// RecordVerdict persists one snippet verdict under a run. A nil verdict
// with a non-empty errMsg records an errored snippet.
func (db *DB) RecordVerdict(runID, source string, v *verdict.Verdict, errMsg string) error {
	rec := Record{
		RunID:  runID,
		Source: source,
		Error:  errMsg,
	}
	if v != nil {
		rec.Pattern = v.Pattern
		rec.Pass = v.Pass
		rec.FactDigest = v.FactDigest
		rec.BindingsTried = v.BindingsTried
		rec.Truncated = v.Truncated
		rec.Violations = len(v.Violated)
	}
	_, err := db.conn.Exec(
		`INSERT INTO records (run_id, source, pattern, pass, fact_digest, bindings_tried, truncated, violations, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Source, rec.Pattern, boolInt(rec.Pass), rec.FactDigest,
		rec.BindingsTried, boolInt(rec.Truncated), rec.Violations, rec.Error,
	)
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(
		`SELECT id, pattern, started_at, total, passed, failed, errored
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Pattern, &started, &r.Total, &r.Passed, &r.Failed, &r.Errored); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunRecords returns every snippet record for a run, in insertion order.
func (db *DB) RunRecords(runID string) ([]Record, error) {
	rows, err := db.conn.Query(
		`SELECT run_id, source, pattern, pass, fact_digest, bindings_tried, truncated, violations, error
		 FROM records WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var pass, truncated int
		if err := rows.Scan(&rec.RunID, &rec.Source, &rec.Pattern, &pass, &rec.FactDigest,
			&rec.BindingsTried, &truncated, &rec.Violations, &rec.Error); err != nil {
			return nil, err
		}
		rec.Pass = pass != 0
		rec.Truncated = truncated != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
