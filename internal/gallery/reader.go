package gallery

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound is returned when a render ID is not in the archive.
var ErrNotFound = errors.New("render not found")

// Reader reads renders from a gallery database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a gallery database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='renders'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain renders table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

const entryColumns = "id, preset, format, width, height, iterations, plotted, seed, params, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner, extra ...any) (Entry, error) {
	var (
		e             Entry
		plotted, seed int64
		params        sql.NullString
		created       string
	)
	dest := append([]any{&e.ID, &e.Preset, &e.Format, &e.Width, &e.Height, &e.Iterations,
		&plotted, &seed, &params, &created}, extra...)
	if err := s.Scan(dest...); err != nil {
		return Entry{}, err
	}
	e.Plotted = uint64(plotted)
	e.Seed = uint64(seed)
	e.Params = params.String
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("render %s has invalid timestamp %q: %w", e.ID, created, err)
	}
	e.CreatedAt = t
	return e, nil
}

// List returns all renders without image data, newest first. A non-empty
// preset restricts the list to that preset.
func (r *Reader) List(preset string) ([]Entry, error) {
	query := "SELECT " + entryColumns + " FROM renders"
	var args []any
	if preset != "" {
		query += " WHERE preset = ?"
		args = append(args, preset)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query renders: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan render row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating renders: %w", err)
	}

	return entries, nil
}

// Read returns a render including its decompressed image data.
func (r *Reader) Read(id string) (Entry, error) {
	var compressed []byte
	e, err := scanEntry(
		r.db.QueryRow("SELECT "+entryColumns+", image_data FROM renders WHERE id = ?", id),
		&compressed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query render: %w", err)
	}

	data, err := gzipDecompress(compressed)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to decompress render: %w", err)
	}
	e.Data = data
	return e, nil
}

// Metadata reads the archive metadata.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return metadataFromMap(metaMap), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
