// Package store handles SQLite persistence for imported telemetry.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for sessions, pieces and athlete profiles.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			filename TEXT,
			serial_number TEXT,
			start_time TEXT,
			boat_name TEXT,
			boat_seats INTEGER NOT NULL DEFAULT 8,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS global_athletes (
			id TEXT PRIMARY KEY,
			uni TEXT,
			name TEXT NOT NULL,
			first_name TEXT,
			last_name TEXT,
			squad TEXT,
			weight REAL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS athletes (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seat_position INTEGER NOT NULL,
			name TEXT NOT NULL,
			side TEXT,
			global_athlete_id TEXT REFERENCES global_athletes(id),
			UNIQUE(session_id, seat_position)
		);`,
		`CREATE TABLE IF NOT EXISTS pieces (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			piece_number INTEGER NOT NULL,
			name TEXT,
			start_time_ms INTEGER,
			end_time_ms INTEGER,
			duration TEXT,
			distance_meters REAL,
			avg_rating REAL,
			pace TEXT,
			UNIQUE(session_id, piece_number)
		);`,
		`CREATE TABLE IF NOT EXISTS stroke_metrics (
			id TEXT PRIMARY KEY,
			piece_id TEXT NOT NULL REFERENCES pieces(id) ON DELETE CASCADE,
			stroke_number INTEGER NOT NULL,
			time_ms INTEGER NOT NULL,
			rating REAL,
			avg_boat_speed REAL,
			distance_per_stroke REAL,
			average_power REAL,
			swivel_power TEXT,
			min_angle TEXT,
			max_angle TEXT,
			catch_slip TEXT,
			finish_slip TEXT,
			drive_time TEXT,
			recovery_time TEXT,
			work_pc_q1 TEXT,
			work_pc_q2 TEXT,
			work_pc_q3 TEXT,
			work_pc_q4 TEXT,
			UNIQUE(piece_id, stroke_number)
		);`,
		`CREATE TABLE IF NOT EXISTS periodic_data (
			id TEXT PRIMARY KEY,
			piece_id TEXT NOT NULL REFERENCES pieces(id) ON DELETE CASCADE,
			data TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_athletes_session ON athletes(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_athletes_global ON athletes(global_athlete_id);`,
		`CREATE INDEX IF NOT EXISTS idx_pieces_session ON pieces(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_strokes_piece ON stroke_metrics(piece_id);`,
		`CREATE INDEX IF NOT EXISTS idx_periodic_piece ON periodic_data(piece_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func encodeSeats(values []*float64) (interface{}, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeSeats(raw sql.NullString) ([]*float64, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var out []*float64
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, fmt.Errorf("failed to decode seat array: %w", err)
	}
	return out, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func rollback(tx *sql.Tx) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		// Best-effort rollback.
		_ = rerr
	}
}
