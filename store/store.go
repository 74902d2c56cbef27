// Package store persists parameter dictionary states as named snapshots in a
// SQLite database. Restoring a snapshot goes back through the dictionary's
// converters, so stored values are validated again on the way in.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/reoring/typeconv/param"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a name has no snapshot.
var ErrNotFound = errors.New("store: snapshot not found")

// Snapshot is one saved state.
type Snapshot struct {
	ID        string
	Name      string
	CreatedAt time.Time
	State     map[string]any
}

// Store is a snapshot database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000", schemaSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores state under name and returns the new snapshot id.
func (s *Store) Save(ctx context.Context, name string, state map[string]any) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal state %q: %w", name, err)
	}
	id := uuid.Must(uuid.NewV7()).String()
	created := s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, created_at, state) VALUES (?, ?, ?, ?)`,
		id, name, created.UnixNano(), string(data))
	if err != nil {
		return "", fmt.Errorf("insert snapshot %q: %w", name, err)
	}
	slog.Info("snapshot saved", "name", name, "id", id, "keys", len(state))
	return id, nil
}

// Latest returns the most recent snapshot saved under name.
func (s *Store) Latest(ctx context.Context, name string) (Snapshot, error) {
	rows, err := s.query(ctx, name, 1)
	if err != nil {
		return Snapshot{}, err
	}
	if len(rows) == 0 {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return rows[0], nil
}

// List returns every snapshot saved under name, newest first.
func (s *Store) List(ctx context.Context, name string) ([]Snapshot, error) {
	return s.query(ctx, name, -1)
}

// Restore loads the latest snapshot of name into d through d.Update.
func (s *Store) Restore(ctx context.Context, name string, d *param.ParameterDict) error {
	snap, err := s.Latest(ctx, name)
	if err != nil {
		return err
	}
	return d.Update(snap.State)
}

func (s *Store) query(ctx context.Context, name string, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, state FROM snapshots
		 WHERE name = ? ORDER BY created_at DESC, id DESC LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots %q: %w", name, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			snap    Snapshot
			created int64
			state   string
		)
		if err := rows.Scan(&snap.ID, &snap.Name, &created, &state); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.CreatedAt = time.Unix(0, created).UTC()
		if err := json.Unmarshal([]byte(state), &snap.State); err != nil {
			return nil, fmt.Errorf("snapshot %s: bad state: %w", snap.ID, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
