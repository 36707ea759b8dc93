package resultdb

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultBatchSize is the number of records to buffer before flushing to the database.
	DefaultBatchSize = 500
)

// Writer writes lookup records to a result database.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []Record
	metadata  Metadata
	batchSize int
	mu        sync.Mutex
}

// New creates a new result writer.
// The database is created if it doesn't exist, and the schema is initialized.
func New(path string, metadata Metadata) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 50000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := insertMetadata(db, metadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	return &Writer{
		db:        db,
		path:      path,
		batch:     make([]Record, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
		metadata:  metadata,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS lookups (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			lon REAL NOT NULL,
			lat REAL NOT NULL,
			dx REAL NOT NULL,
			dy REAL NOT NULL,
			matched INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS matches (
			lookup_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			en_name TEXT NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS match_index ON matches (lookup_id, seq);
		CREATE INDEX IF NOT EXISTS match_code_index ON matches (code);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func insertMetadata(db *sql.DB, meta Metadata) error {
	if _, err := db.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stmt, err := db.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	return nil
}

// Write adds a record to the batch. When the batch is full, it is automatically flushed.
// Writing a record with an existing ID replaces the stored lookup and its matches.
func (w *Writer) Write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, rec)

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Flush writes any buffered records to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered records to the database. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	lookupStmt, err := tx.Prepare("INSERT OR REPLACE INTO lookups (id, name, lon, lat, dx, dy, matched) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare lookup insert: %w", err)
	}
	defer lookupStmt.Close()

	clearStmt, err := tx.Prepare("DELETE FROM matches WHERE lookup_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare match delete: %w", err)
	}
	defer clearStmt.Close()

	matchStmt, err := tx.Prepare("INSERT INTO matches (lookup_id, seq, code, name, en_name) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer matchStmt.Close()

	for _, rec := range w.batch {
		if _, err := lookupStmt.Exec(rec.ID, rec.Name, rec.Lon, rec.Lat, rec.DX, rec.DY, rec.Matched); err != nil {
			return fmt.Errorf("failed to insert lookup %d: %w", rec.ID, err)
		}
		if _, err := clearStmt.Exec(rec.ID); err != nil {
			return fmt.Errorf("failed to clear matches of lookup %d: %w", rec.ID, err)
		}
		for seq, p := range rec.Properties {
			if _, err := matchStmt.Exec(rec.ID, seq, p.Code, p.Name, p.EnName); err != nil {
				return fmt.Errorf("failed to insert match %d/%d: %w", rec.ID, seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Close flushes any remaining records and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
