package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/deadjay/takt-sub000/internal/event"
)

// ExportJSON writes all events (including completed ones) as a JSON array.
// The event ID is the stable identifier a later ImportJSON matches on.
func (s *SQLiteStore) ExportJSON(ctx context.Context, w io.Writer) error {
	events, err := s.List(ctx, ListOpts{IncludeDone: true})
	if err != nil {
		return fmt.Errorf("exporting events: %w", err)
	}
	if events == nil {
		events = []*event.Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	return nil
}

// ImportJSON reads a JSON array of events and upserts each one by ID:
// unknown IDs are inserted, known IDs are updated in place. Returns the
// number of events imported.
func (s *SQLiteStore) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	var events []*event.Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return 0, fmt.Errorf("decoding events: %w", err)
	}

	count := 0
	for _, ev := range events {
		if ev.ID == "" {
			return count, fmt.Errorf("event %q has no id", ev.Name)
		}
		if ev.Name == "" {
			ev.Name = event.DefaultName
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = time.Now()
		}
		if err := s.Upsert(ctx, ev); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Upsert inserts the event or, when its ID already exists, updates it in
// place. The ID is the stable identity export/import rounds on.
func (s *SQLiteStore) Upsert(ctx context.Context, ev *event.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, date, deadline, notes, done, created_at, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			deadline = excluded.deadline,
			notes = excluded.notes,
			done = excluded.done,
			image = excluded.image`,
		ev.ID, ev.Name, ev.Date.Format(time.RFC3339), nullTime(ev.Deadline),
		ev.Notes, boolToInt(ev.Done), ev.CreatedAt.Format(time.RFC3339), ev.Image,
	)
	if err != nil {
		return fmt.Errorf("upserting event %s: %w", ev.ID, err)
	}
	return nil
}
