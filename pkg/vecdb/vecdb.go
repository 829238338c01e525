// Package vecdb persists a term to vector table in SQLite so that a large
// word-level vocabulary can serve as a backoff source without being loaded
// into memory.
package vecdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver

	"github.com/headlands-org/go-wordvec/internal/vecfile"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vectors (
	term     TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	vector   BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vectors_position ON vectors(position);
`

// DB is an open vector table. It implements embeddings.Source and is safe
// for concurrent use.
type DB struct {
	db       *sql.DB
	dim      int
	count    int
	sourceID uuid.UUID
	lookup   *sql.Stmt
}

// dsn builds a SQLite URI for path. The path is escaped so that '?' and '#'
// stay part of the file name.
func dsn(path string, readOnly bool) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	if readOnly {
		q.Set("mode", "ro")
	}
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + q.Encode()
}

func open(path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path, readOnly))
	if err != nil {
		return nil, fmt.Errorf("vecdb: open %s: %w", path, err)
	}
	return db, nil
}

// Create writes entries to a new vector table at path in one transaction.
// Repeated terms keep their first position and take the later vector.
// sourceID records where the entries came from; uuid.Nil is allowed.
func Create(ctx context.Context, path string, entries []vecfile.Entry, sourceID uuid.UUID) (err error) {
	db, err := open(path, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("vecdb: create schema: %w", err)
	}

	dim := 0
	if len(entries) > 0 {
		dim = len(entries[0].Vector)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vecdb: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vectors`); err != nil {
		return fmt.Errorf("vecdb: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vectors (term, position, vector) VALUES (?, ?, ?)
		 ON CONFLICT(term) DO UPDATE SET vector = excluded.vector`)
	if err != nil {
		return fmt.Errorf("vecdb: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if len(e.Vector) != dim {
			return fmt.Errorf("vecdb: entry %d (%q) has dimension %d, want %d", i, e.Term, len(e.Vector), dim)
		}
		blob, err := encodeVector(e.Vector)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, e.Term, i, blob); err != nil {
			return fmt.Errorf("vecdb: insert %q: %w", e.Term, err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&count); err != nil {
		return fmt.Errorf("vecdb: count: %w", err)
	}
	meta := map[string]string{
		"dimension": strconv.Itoa(dim),
		"count":     strconv.Itoa(count),
		"source_id": sourceID.String(),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("vecdb: write meta %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vecdb: commit: %w", err)
	}
	return nil
}

// Open opens an existing vector table read-only. A missing file is an
// error and is not created.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := open(path, true)
	if err != nil {
		return nil, err
	}
	d, err := load(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("vecdb: %s: %w", path, err)
	}
	return d, nil
}

func load(ctx context.Context, db *sql.DB) (*DB, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("read meta: %w", err)
		}
		meta[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	d := &DB{db: db}
	if d.dim, err = strconv.Atoi(meta["dimension"]); err != nil {
		return nil, fmt.Errorf("meta dimension %q: %w", meta["dimension"], err)
	}
	if d.count, err = strconv.Atoi(meta["count"]); err != nil {
		return nil, fmt.Errorf("meta count %q: %w", meta["count"], err)
	}
	if d.sourceID, err = uuid.Parse(meta["source_id"]); err != nil {
		return nil, fmt.Errorf("meta source_id %q: %w", meta["source_id"], err)
	}
	if d.lookup, err = db.PrepareContext(ctx, `SELECT vector FROM vectors WHERE term = ?`); err != nil {
		return nil, fmt.Errorf("prepare lookup: %w", err)
	}
	return d, nil
}

// Close releases the database.
func (d *DB) Close() error {
	if d.lookup != nil {
		d.lookup.Close()
	}
	return d.db.Close()
}

// Dim returns the stored vector dimension.
func (d *DB) Dim() int { return d.dim }

// Len returns the number of stored terms.
func (d *DB) Len() int { return d.count }

// SourceID returns the ID recorded at creation.
func (d *DB) SourceID() uuid.UUID { return d.sourceID }

// Vector implements embeddings.Source.
func (d *DB) Vector(term string) ([]float32, bool, error) {
	return d.VectorContext(context.Background(), term)
}

// VectorContext looks term up under ctx.
func (d *DB) VectorContext(ctx context.Context, term string) ([]float32, bool, error) {
	var blob []byte
	err := d.lookup.QueryRowContext(ctx, term).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("vecdb: lookup %q: %w", term, err)
	}
	vec, err := decodeVector(blob)
	if err != nil {
		return nil, false, fmt.Errorf("vecdb: lookup %q: %w", term, err)
	}
	return vec, true, nil
}

// Entries returns every stored entry in position order.
func (d *DB) Entries(ctx context.Context) ([]vecfile.Entry, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT term, vector FROM vectors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("vecdb: scan: %w", err)
	}
	defer rows.Close()

	out := make([]vecfile.Entry, 0, d.count)
	for rows.Next() {
		var term string
		var blob []byte
		if err := rows.Scan(&term, &blob); err != nil {
			return nil, fmt.Errorf("vecdb: scan: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("vecdb: %q: %w", term, err)
		}
		out = append(out, vecfile.Entry{Term: term, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vecdb: scan: %w", err)
	}
	return out, nil
}

// Terms returns the stored terms in position order.
func (d *DB) Terms(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT term FROM vectors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("vecdb: terms: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, d.count)
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("vecdb: terms: %w", err)
		}
		out = append(out, term)
	}
	return out, rows.Err()
}
