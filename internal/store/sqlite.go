// Package store keeps an index of saved games in SQLite so the command
// line can list them without opening every file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"lifetrace/pkg/sims/life"
)

// Entry describes one saved game.
type Entry struct {
	Path       string
	Width      int
	Height     int
	Toroidal   bool
	Rule       string
	Step       uint64
	Population int
	Edits      int
	Bytes      int64
	SavedAt    time.Time
}

// EntryFor summarizes sim as saved to path.
func EntryFor(path string, sim *life.Simulation, size int64, now time.Time) Entry {
	s := sim.Settings()
	return Entry{
		Path:       path,
		Width:      s.Width,
		Height:     s.Height,
		Toroidal:   s.Toroidal,
		Rule:       s.Rule(),
		Step:       sim.CurrentStep(),
		Population: sim.Population(),
		Edits:      sim.Edits(),
		Bytes:      size,
		SavedAt:    now.UTC(),
	}
}

// SQLiteIndex is the save index backed by a single SQLite file.
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the index at path.
func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		`CREATE TABLE IF NOT EXISTS saves (
			path       TEXT PRIMARY KEY,
			width      INTEGER NOT NULL,
			height     INTEGER NOT NULL,
			toroidal   INTEGER NOT NULL,
			rule       TEXT NOT NULL,
			step       INTEGER NOT NULL,
			population INTEGER NOT NULL,
			edits      INTEGER NOT NULL,
			bytes      INTEGER NOT NULL,
			saved_at   TEXT NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS saves_saved_at ON saves(saved_at);",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteIndex) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts e or replaces the entry already stored for e.Path.
func (s *SQLiteIndex) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (path, width, height, toroidal, rule, step, population, edits, bytes, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			width = excluded.width,
			height = excluded.height,
			toroidal = excluded.toroidal,
			rule = excluded.rule,
			step = excluded.step,
			population = excluded.population,
			edits = excluded.edits,
			bytes = excluded.bytes,
			saved_at = excluded.saved_at`,
		e.Path, e.Width, e.Height, boolInt(e.Toroidal), e.Rule, int64(e.Step), e.Population, e.Edits, e.Bytes,
		e.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Path, err)
	}
	return nil
}

const entryColumns = "path, width, height, toroidal, rule, step, population, edits, bytes, saved_at"

// List returns every entry, most recently saved first.
func (s *SQLiteIndex) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM saves ORDER BY saved_at DESC, path")
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Lookup returns the entry stored for path.
func (s *SQLiteIndex) Lookup(ctx context.Context, path string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM saves WHERE path = ?", path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func scanEntry(row interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		e        Entry
		toroidal int
		step     int64
		savedAt  string
	)
	if err := row.Scan(&e.Path, &e.Width, &e.Height, &toroidal, &e.Rule, &step, &e.Population, &e.Edits, &e.Bytes, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan save: %w", err)
	}
	e.Toroidal = toroidal != 0
	e.Step = uint64(step)
	var err error
	if e.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return e, fmt.Errorf("save %s: bad timestamp %q: %w", e.Path, savedAt, err)
	}
	return e, nil
}

// Forget removes the entry for path and reports whether one existed.
func (s *SQLiteIndex) Forget(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saves WHERE path = ?", path)
	if err != nil {
		return false, fmt.Errorf("forget %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Prune removes entries whose files no longer exist and returns them.
func (s *SQLiteIndex) Prune(ctx context.Context) ([]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var gone []string
	for _, e := range entries {
		if _, err := os.Stat(e.Path); errors.Is(err, os.ErrNotExist) {
			if _, err := s.Forget(ctx, e.Path); err != nil {
				return gone, err
			}
			gone = append(gone, e.Path)
		}
	}
	return gone, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
