package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adda/internal/domain"
	"adda/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Table implements ports.ProjectTable using SQLite
type Table struct {
	db     *sql.DB
	dbPath string
}

// Ensure Table implements ProjectTable and SyncJournal
var (
	_ ports.ProjectTable = (*Table)(nil)
	_ ports.SyncJournal  = (*Table)(nil)
)

// Open opens (creating if needed) the project database at dbPath.
// An empty path selects the XDG data directory.
func Open(dbPath string) (*Table, error) {
	if dbPath == "" {
		dbPath = DefaultPath()
	}

	// Expand ~ in path
	if len(dbPath) > 0 && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL mode for concurrent readers (TUI + scheduler)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS projects (
			partition_key TEXT NOT NULL,
			row_key TEXT NOT NULL,
			name TEXT NOT NULL,
			selected INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (partition_key, row_key)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(partition_key, name);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return &Table{db: db, dbPath: dbPath}, nil
}

// DefaultPath returns the database location under the XDG data directory
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "adda", "projects.db")
}

// Path returns the database file in use
func (t *Table) Path() string {
	return t.dbPath
}

// Close closes the database connection
func (t *Table) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// Get retrieves a project row, nil when absent
func (t *Table) Get(ctx context.Context, partitionKey, rowKey string) (*domain.ProjectEntity, error) {
	row := t.db.QueryRowContext(ctx, `
		SELECT partition_key, row_key, name, selected, deleted, updated_at
		FROM projects WHERE partition_key = ? AND row_key = ?
	`, partitionKey, rowKey)

	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Add inserts a new row
func (t *Table) Add(ctx context.Context, e *domain.ProjectEntity) error {
	res, err := t.db.ExecContext(ctx, `
		INSERT INTO projects (partition_key, row_key, name, selected, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (partition_key, row_key) DO NOTHING
	`, e.PartitionKey, e.RowKey, e.Name, e.Selected, e.Deleted, formatTime(e.UpdatedAt))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", e.PartitionKey, e.RowKey, ports.ErrEntityExists)
	}
	return nil
}

// Update replaces an existing row
func (t *Table) Update(ctx context.Context, e *domain.ProjectEntity) error {
	res, err := t.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, selected = ?, deleted = ?, updated_at = ?
		WHERE partition_key = ? AND row_key = ?
	`, e.Name, e.Selected, e.Deleted, formatTime(e.UpdatedAt), e.PartitionKey, e.RowKey)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", e.PartitionKey, e.RowKey, ports.ErrEntityNotFound)
	}
	return nil
}

// ListRowKeys returns every row key of the partition, deleted rows included
func (t *Table) ListRowKeys(ctx context.Context, partitionKey string) ([]string, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT row_key FROM projects WHERE partition_key = ? ORDER BY row_key
	`, partitionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// List returns the partition rows matching filter, ordered by name
func (t *Table) List(ctx context.Context, partitionKey string, filter domain.ProjectFilter) ([]domain.ProjectEntity, error) {
	query := `
		SELECT partition_key, row_key, name, selected, deleted, updated_at
		FROM projects WHERE partition_key = ?`
	if !filter.IncludeDeleted {
		query += ` AND deleted = 0`
	}
	if filter.SelectedOnly {
		query += ` AND selected = 1`
	}
	query += ` ORDER BY name, row_key`

	rows, err := t.db.QueryContext(ctx, query, partitionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProjectEntity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// RecordSync stores the outcome time of a partition sync
func (t *Table) RecordSync(ctx context.Context, partitionKey string, at time.Time) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)
	`, "last_sync_"+partitionKey, formatTime(at))
	return err
}

// LastSync returns when the partition was last synchronized, zero if never
func (t *Table) LastSync(ctx context.Context, partitionKey string) (time.Time, error) {
	var value string
	err := t.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, "last_sync_"+partitionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(value)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (*domain.ProjectEntity, error) {
	var e domain.ProjectEntity
	var updatedAt string
	if err := s.Scan(&e.PartitionKey, &e.RowKey, &e.Name, &e.Selected, &e.Deleted, &updatedAt); err != nil {
		return nil, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt = t
	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
