package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded per manifest entry
const (
	ActionRemove      = "REMOVE"
	ActionDryRun      = "DRY_RUN"
	ActionSkipMissing = "SKIP_MISSING"
	ActionError       = "ERROR"
)

// RemovalDB manages the SQLite database for removal history
type RemovalDB struct {
	db *sql.DB
}

// RemovalRecord represents a single per-entry outcome
type RemovalRecord struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Path         string
	FileName     string
	Size         int64
	ManifestPath string
	DestDir      string
	ErrorMessage string
	CreatedAt    time.Time
}

// RemovalStats aggregates history over a period
type RemovalStats struct {
	StartDate       time.Time
	EndDate         time.Time
	TotalRemoved    int64
	TotalSkipped    int64
	TotalErrors     int64
	TotalBytesFreed int64
	ByAction        map[string]int
}

// NewRemovalDB creates a new database connection and initializes schema
func NewRemovalDB(dbPath string) (*RemovalDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Execute a simple query instead of Ping() so the database file is
	// created if it doesn't exist
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// Enable WAL mode so query runs can read while an uninstall writes
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	rdb := &RemovalDB{db: db}
	if err = rdb.initSchema(); err != nil {
		return nil, err
	}

	// Clear the deferred error handler since we succeeded
	err = nil
	return rdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *RemovalDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		size INTEGER NOT NULL DEFAULT 0,
		manifest_path TEXT,
		dest_dir TEXT,
		error_message TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_removals_timestamp ON removals(timestamp);
	CREATE INDEX IF NOT EXISTS idx_removals_action ON removals(action);
	CREATE INDEX IF NOT EXISTS idx_removals_path ON removals(path);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordRemoval inserts one per-entry outcome row
func (d *RemovalDB) RecordRemoval(action, path string, size int64, manifestPath, destDir, errorMessage string) error {
	query := `
	INSERT INTO removals (timestamp, action, path, file_name, size, manifest_path, dest_dir, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(query,
		time.Now().UTC(),
		action,
		path,
		filepath.Base(path),
		size,
		manifestPath,
		destDir,
		errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record removal for %s: %w", path, err)
	}
	return nil
}

// Close closes the database connection
func (d *RemovalDB) Close() error {
	return d.db.Close()
}
