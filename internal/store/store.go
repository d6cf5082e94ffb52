// Package store provides the SQLite persistence layer for takt.
//
// Extracted events live in a single database file. The store is a plain
// collaborator of the extraction core: the engine never touches it, the CLI
// hands confirmed events over.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deadjay/takt-sub000/internal/event"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.takt/takt.db"

// ListOpts controls filtering and pagination for List.
type ListOpts struct {
	Limit       int
	Offset      int
	IncludeDone bool
	// UpcomingFrom, when set, restricts the listing to events whose
	// primary date or deadline is on or after this instant.
	UpcomingFrom time.Time
}

// Stats holds aggregate counts for the stats command.
type Stats struct {
	Total       int64      `json:"total"`
	Open        int64      `json:"open"`
	Done        int64      `json:"done"`
	Deadlines   int64      `json:"deadlines"`
	NextDate    *time.Time `json:"next_date,omitempty"`
	DBSizeBytes int64      `json:"db_size_bytes"`
}

// Store defines the event persistence interface.
type Store interface {
	Add(ctx context.Context, ev *event.Event) error
	Get(ctx context.Context, id string) (*event.Event, error)
	List(ctx context.Context, opts ListOpts) ([]*event.Event, error)
	Update(ctx context.Context, ev *event.Event) error
	SetDone(ctx context.Context, id string, done bool) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*event.Event, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path and runs
// migrations. "~" expands to the home directory.
func NewStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultDBPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolving db path: %w", err)
	}
	if dir := filepath.Dir(expanded); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single-writer local tool: WAL keeps readers unblocked, busy_timeout
	// covers the CLI racing itself.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, path: expanded}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// Add appends a new event.
func (s *SQLiteStore) Add(ctx context.Context, ev *event.Event) error {
	if ev.ID == "" {
		return fmt.Errorf("event has no id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, date, deadline, notes, done, created_at, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Name, ev.Date.Format(time.RFC3339), nullTime(ev.Deadline),
		ev.Notes, boolToInt(ev.Done), ev.CreatedAt.Format(time.RFC3339), ev.Image,
	)
	if err != nil {
		return fmt.Errorf("inserting event %s: %w", ev.ID, err)
	}
	return nil
}

// Get returns the event with the given id, or an error if it is absent.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*event.Event, error) {
	row := s.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", id, err)
	}
	return ev, nil
}

// List returns events ordered by primary date ascending.
func (s *SQLiteStore) List(ctx context.Context, opts ListOpts) ([]*event.Event, error) {
	q := selectCols + ` WHERE 1=1`
	var args []any
	if !opts.IncludeDone {
		q += ` AND done = 0`
	}
	if !opts.UpcomingFrom.IsZero() {
		q += ` AND (date >= ? OR (deadline IS NOT NULL AND deadline >= ?))`
		from := opts.UpcomingFrom.Format(time.RFC3339)
		args = append(args, from, from)
	}
	q += ` ORDER BY date ASC`
	if opts.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Update replaces all mutable fields of an existing event.
func (s *SQLiteStore) Update(ctx context.Context, ev *event.Event) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET name = ?, date = ?, deadline = ?, notes = ?, done = ?, image = ?
		WHERE id = ?`,
		ev.Name, ev.Date.Format(time.RFC3339), nullTime(ev.Deadline),
		ev.Notes, boolToInt(ev.Done), ev.Image, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event %s: %w", ev.ID, err)
	}
	return requireRow(res, ev.ID)
}

// SetDone flips the completion flag.
func (s *SQLiteStore) SetDone(ctx context.Context, id string, done bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE events SET done = ? WHERE id = ?`, boolToInt(done), id)
	if err != nil {
		return fmt.Errorf("marking event %s: %w", id, err)
	}
	return requireRow(res, id)
}

// Delete removes an event.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return requireRow(res, id)
}

// Search returns events whose name or notes contain the query, ordered by
// primary date.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	like := "%" + strings.ReplaceAll(strings.ReplaceAll(query, "%", `\%`), "_", `\_`) + "%"
	rows, err := s.db.QueryContext(ctx, selectCols+`
		WHERE name LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\'
		ORDER BY date ASC LIMIT ?`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Stats returns aggregate counts and the next upcoming primary date.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN done = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN done = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN deadline IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM events`).Scan(&st.Total, &st.Open, &st.Done, &st.Deadlines)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	var next sql.NullString
	now := time.Now().Format(time.RFC3339)
	err = s.db.QueryRowContext(ctx,
		`SELECT MIN(date) FROM events WHERE done = 0 AND date >= ?`, now).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("finding next event: %w", err)
	}
	if next.Valid {
		t, err := time.Parse(time.RFC3339, next.String)
		if err == nil {
			st.NextDate = &t
		}
	}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}
	return st, nil
}

const selectCols = `SELECT id, name, date, deadline, notes, done, created_at, image FROM events`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var (
		ev        event.Event
		date      string
		deadline  sql.NullString
		done      int
		createdAt string
	)
	if err := row.Scan(&ev.ID, &ev.Name, &date, &deadline, &ev.Notes, &done, &createdAt, &ev.Image); err != nil {
		return nil, err
	}

	var err error
	if ev.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return nil, fmt.Errorf("parsing date of %s: %w", ev.ID, err)
	}
	if deadline.Valid {
		t, err := time.Parse(time.RFC3339, deadline.String)
		if err != nil {
			return nil, fmt.Errorf("parsing deadline of %s: %w", ev.ID, err)
		}
		ev.Deadline = &t
	}
	if ev.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", ev.ID, err)
	}
	ev.Done = done != 0
	return &ev, nil
}

func scanEvents(rows *sql.Rows) ([]*event.Event, error) {
	var out []*event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return out, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %s not found", id)
	}
	return nil
}
