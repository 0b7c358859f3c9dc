package gallery

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultBatchSize is the number of renders to buffer before flushing to the database.
	DefaultBatchSize = 16
)

// Writer appends renders to a gallery database. It is safe for concurrent use.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []Entry
	metadata  Metadata
	batchSize int
	mu        sync.Mutex
}

// New opens or creates a gallery database and initializes its schema.
// Existing renders are kept; the archive metadata is replaced.
func New(path string, metadata Metadata) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
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
		batch:     make([]Entry, 0, DefaultBatchSize),
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

		CREATE TABLE IF NOT EXISTS renders (
			id TEXT PRIMARY KEY,
			preset TEXT NOT NULL,
			format TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			plotted INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			params TEXT,
			created_at TEXT NOT NULL,
			image_data BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS renders_preset ON renders (preset, created_at);
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

// Add queues a render and returns its ID. An empty ID is replaced with a new
// UUID and a zero CreatedAt with the current time. The batch is flushed when full.
func (w *Writer) Add(e Entry) (string, error) {
	if len(e.Data) == 0 {
		return "", fmt.Errorf("render %q has no image data", e.Preset)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, e)
	if len(w.batch) >= w.batchSize {
		return e.ID, w.flushLocked()
	}
	return e.ID, nil
}

// Flush writes any buffered renders to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered renders to the database. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO renders
		(id, preset, format, width, height, iterations, plotted, seed, params, created_at, image_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range w.batch {
		compressed, err := gzipCompress(e.Data)
		if err != nil {
			return fmt.Errorf("failed to compress render %s: %w", e.ID, err)
		}

		// SQLite integers are signed; uint64 values round-trip through int64.
		if _, err := stmt.Exec(e.ID, e.Preset, e.Format, e.Width, e.Height, e.Iterations,
			int64(e.Plotted), int64(e.Seed), e.Params, e.CreatedAt.UTC().Format(timeLayout), compressed); err != nil {
			return fmt.Errorf("failed to insert render %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Close flushes any remaining renders and closes the database.
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

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}

	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
