package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"database/sql"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339

var migrations = []string{
	`CREATE TABLE deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		channel TEXT NOT NULL,
		schema TEXT NOT NULL,
		task_name TEXT NOT NULL,
		status TEXT NOT NULL,
		task_type TEXT NOT NULL,
		duration_sec INTEGER NOT NULL DEFAULT 0,
		ok INTEGER NOT NULL,
		failure TEXT NOT NULL DEFAULT '',
		diagnostic TEXT NOT NULL DEFAULT '',
		fell_back INTEGER NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE INDEX idx_deliveries_channel ON deliveries(channel);
	CREATE INDEX idx_deliveries_created_at ON deliveries(created_at);`,
}

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, zero CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the delivery log database and runs
// migrations. The file is created with 0600 permissions and its parent
// directory with 0700.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("creating database file: %w", err)
		}
		_ = f.Close()
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		slog.Info("applying migration", "version", i+1)
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordDelivery inserts one dispatch outcome.
func (s *SQLiteStore) RecordDelivery(d *DeliveryRecord) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO deliveries
		(channel, schema, task_name, status, task_type, duration_sec, ok, failure, diagnostic, fell_back, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Channel, d.Schema, d.TaskName, d.Status, d.TaskType, d.DurationSec,
		boolToInt(d.OK), d.Failure, d.Diagnostic, boolToInt(d.FellBack), d.Attempts,
		formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}
	d.ID, _ = res.LastInsertId()
	return nil
}

// ListDeliveries returns recorded deliveries, newest first.
func (s *SQLiteStore) ListDeliveries(f DeliveryFilter) ([]DeliveryRecord, error) {
	query := `SELECT id, channel, schema, task_name, status, task_type, duration_sec,
		ok, failure, diagnostic, fell_back, attempts, created_at
		FROM deliveries WHERE 1=1`
	var args []interface{}

	if f.Channel != "" {
		query += " AND channel = ?"
		args = append(args, f.Channel)
	}
	if f.OK != nil {
		query += " AND ok = ?"
		args = append(args, boolToInt(*f.OK))
	}
	if !f.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, formatTime(f.Since))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deliveries []DeliveryRecord
	for rows.Next() {
		var d DeliveryRecord
		var ok, fellBack int
		var createdAt string
		if err := rows.Scan(&d.ID, &d.Channel, &d.Schema, &d.TaskName, &d.Status,
			&d.TaskType, &d.DurationSec, &ok, &d.Failure, &d.Diagnostic,
			&fellBack, &d.Attempts, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		d.OK = ok != 0
		d.FellBack = fellBack != 0
		d.CreatedAt = parseTime(createdAt)
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// Cleanup removes deliveries created before the cutoff.
func (s *SQLiteStore) Cleanup(olderThan time.Time) error {
	if _, err := s.db.Exec("DELETE FROM deliveries WHERE created_at < ?", formatTime(olderThan)); err != nil {
		return fmt.Errorf("cleaning deliveries: %w", err)
	}
	return nil
}

// --- Helpers ---

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeFormat, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
