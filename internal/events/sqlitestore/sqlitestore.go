// Package sqlitestore implements events.Store on a local SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"etkinlik-bot/internal/events"
)

const schema = `
CREATE TABLE IF NOT EXISTS event (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	date        TEXT NOT NULL,
	time        TEXT NOT NULL DEFAULT '',
	venue       TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	price       TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	organizer   TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_event_city_date ON event (city, date, category);
`

type Store struct {
	db *sql.DB
}

var (
	_ events.Store  = (*Store)(nil)
	_ events.Writer = (*Store)(nil)
	_ events.Editor = (*Store)(nil)
)

const selectColumns = `SELECT id, title, description, city, category, date, time, venue, address, price, url, image_url, organizer, tags FROM event`

// Open opens (and creates if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func buildWhere(f events.Filter) (string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if f.City != "" {
		where, args = append(where, "city = ?"), append(args, f.City)
	}
	if f.Category != "" && f.Category != events.CategoryAll {
		where, args = append(where, "category = ?"), append(args, f.Category)
	}
	if f.DateFrom != "" {
		where, args = append(where, "date >= ?"), append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where, args = append(where, "date <= ?"), append(args, f.DateTo)
	}
	return strings.Join(where, " AND "), args
}

func (s *Store) Find(ctx context.Context, f events.Filter) ([]events.Event, error) {
	where, args := buildWhere(f)
	query := selectColumns + ` WHERE ` + where + ` ORDER BY date ASC, rowid ASC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var list []events.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		list = append(list, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (events.Event, error) {
	var ev events.Event
	var tags string
	if err := row.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.City, &ev.Category, &ev.Date, &ev.Time,
		&ev.Venue, &ev.Address, &ev.Price, &ev.URL, &ev.ImageURL, &ev.Organizer, &tags,
	); err != nil {
		return events.Event{}, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &ev.Tags); err != nil {
			return events.Event{}, fmt.Errorf("failed to decode tags of %s: %w", ev.ID, err)
		}
	}
	return ev, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func (s *Store) Count(ctx context.Context, f events.Filter) (int64, error) {
	where, args := buildWhere(f)
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func (s *Store) Distinct(ctx context.Context, field string) ([]string, error) {
	if field != "city" && field != "category" {
		return nil, fmt.Errorf("distinct: unsupported field %q", field)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT "+field+" FROM event ORDER BY "+field)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", field, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) InsertMany(ctx context.Context, evs []events.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO event
		(id, title, description, city, category, date, time, venue, address, price, url, image_url, organizer, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range evs {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		tags, err := encodeTags(ev.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			ev.ID, ev.Title, ev.Description, ev.City, ev.Category, ev.Date, ev.Time,
			ev.Venue, ev.Address, ev.Price, ev.URL, ev.ImageURL, ev.Organizer, tags,
		); err != nil {
			return fmt.Errorf("failed to insert %q: %w", ev.Title, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM event"); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, ev events.Event) (events.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if err := s.InsertMany(ctx, []events.Event{ev}); err != nil {
		return events.Event{}, err
	}
	return ev, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (events.Event, error) {
	ev, err := scanEvent(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return events.Event{}, events.ErrNotFound
	}
	if err != nil {
		return events.Event{}, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return ev, nil
}

func (s *Store) Update(ctx context.Context, ev events.Event) error {
	tags, err := encodeTags(ev.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE event SET
		title = ?, description = ?, city = ?, category = ?, date = ?, time = ?, venue = ?,
		address = ?, price = ?, url = ?, image_url = ?, organizer = ?, tags = ?
		WHERE id = ?`,
		ev.Title, ev.Description, ev.City, ev.Category, ev.Date, ev.Time, ev.Venue,
		ev.Address, ev.Price, ev.URL, ev.ImageURL, ev.Organizer, tags, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", ev.ID, err)
	}
	return affectedOne(res)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM event WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}
