package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const sessionColumns = `id, name, filename, serial_number, start_time, boat_name, boat_seats, created_at`

// ImportBundle stores a parsed telemetry bundle as a new session. A
// non-empty name overrides the bundle's own name. Athletes are linked
// to global profiles by name, creating profiles as needed.
func (s *Store) ImportBundle(ctx context.Context, b model.Bundle, name string) (result model.UploadResult, err error) {
	if strings.TrimSpace(name) == "" {
		name = b.Name
	}
	if strings.TrimSpace(name) == "" {
		name = "Unknown Session"
	}
	seats := b.BoatSeats
	if seats <= 0 {
		seats = len(b.Athletes)
	}
	if seats <= 0 {
		seats = 8
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.UploadResult{}, err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	sessionID := uuid.NewString()
	now := s.timestamp()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, filename, serial_number, start_time, boat_name, boat_seats, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, name, b.Filename, b.SerialNumber, b.StartTime, b.BoatName, seats, now,
	); err != nil {
		return model.UploadResult{}, fmt.Errorf("failed to insert session: %w", err)
	}

	athletes := make([]model.Athlete, 0, len(b.Athletes))
	for _, ba := range b.Athletes {
		if strings.TrimSpace(ba.Name) == "" {
			ba.Name = "Unknown"
		}
		var globalID string
		globalID, err = s.linkGlobalAthlete(ctx, tx, ba.Name, now)
		if err != nil {
			return model.UploadResult{}, err
		}
		a := model.Athlete{
			ID:              uuid.NewString(),
			SessionID:       sessionID,
			SeatPosition:    ba.SeatPosition,
			Name:            ba.Name,
			Side:            ba.Side,
			GlobalAthleteID: &globalID,
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO athletes (id, session_id, seat_position, name, side, global_athlete_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.SessionID, a.SeatPosition, a.Name, a.Side, globalID,
		); err != nil {
			return model.UploadResult{}, fmt.Errorf("failed to insert athlete: %w", err)
		}
		athletes = append(athletes, a)
	}
	sort.SliceStable(athletes, func(i, j int) bool {
		return athletes[i].SeatPosition < athletes[j].SeatPosition
	})

	strokeCount := 0
	for i, bp := range b.Pieces {
		number := bp.PieceNumber
		if number <= 0 {
			number = i + 1
		}
		pieceID := uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO pieces (id, session_id, piece_number, name, start_time_ms, end_time_ms, duration, distance_meters, avg_rating, pace)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pieceID, sessionID, number, bp.Name, bp.StartTimeMs, bp.EndTimeMs, bp.Duration, bp.DistanceMeters, bp.AvgRating, bp.Pace,
		); err != nil {
			return model.UploadResult{}, fmt.Errorf("failed to insert piece: %w", err)
		}
		for _, st := range bp.Strokes {
			if err = insertStroke(ctx, tx, pieceID, st); err != nil {
				return model.UploadResult{}, err
			}
			strokeCount++
		}
		periodic := bp.Periodic
		if periodic == nil {
			periodic = []model.PeriodicDataPoint{}
		}
		var data []byte
		data, err = json.Marshal(periodic)
		if err != nil {
			return model.UploadResult{}, fmt.Errorf("failed to encode periodic data: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO periodic_data (id, piece_id, data) VALUES (?, ?, ?)`,
			uuid.NewString(), pieceID, string(data),
		); err != nil {
			return model.UploadResult{}, fmt.Errorf("failed to insert periodic data: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return model.UploadResult{}, err
	}
	return model.UploadResult{
		SessionID:     sessionID,
		SessionName:   name,
		PiecesCreated: len(b.Pieces),
		StrokeCount:   strokeCount,
		Athletes:      athletes,
	}, nil
}

func insertStroke(ctx context.Context, tx *sql.Tx, pieceID string, st model.StrokeMetric) error {
	arrays := [][]*float64{
		st.SwivelPower, st.MinAngle, st.MaxAngle, st.CatchSlip, st.FinishSlip,
		st.DriveTime, st.RecoveryTime, st.WorkPcQ1, st.WorkPcQ2, st.WorkPcQ3, st.WorkPcQ4,
	}
	encoded := make([]interface{}, len(arrays))
	for i, arr := range arrays {
		v, err := encodeSeats(arr)
		if err != nil {
			return fmt.Errorf("failed to encode stroke %d: %w", st.StrokeNumber, err)
		}
		encoded[i] = v
	}
	args := []interface{}{
		uuid.NewString(), pieceID, st.StrokeNumber, st.TimeMs,
		st.Rating, st.AvgBoatSpeed, st.DistancePerStroke, st.AveragePower,
	}
	args = append(args, encoded...)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stroke_metrics (
			id, piece_id, stroke_number, time_ms, rating, avg_boat_speed,
			distance_per_stroke, average_power, swivel_power, min_angle,
			max_angle, catch_slip, finish_slip, drive_time, recovery_time,
			work_pc_q1, work_pc_q2, work_pc_q3, work_pc_q4
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	); err != nil {
		return fmt.Errorf("failed to insert stroke %d: %w", st.StrokeNumber, err)
	}
	return nil
}

// ListSessions returns every session, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	sessions := []model.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (model.Session, error) {
	var sess model.Session
	var filename, serial, startTime, boat, created sql.NullString
	if err := row.Scan(&sess.ID, &sess.Name, &filename, &serial, &startTime, &boat, &sess.BoatSeats, &created); err != nil {
		return model.Session{}, err
	}
	sess.Filename = nullString(filename)
	sess.SerialNumber = nullString(serial)
	sess.StartTime = nullString(startTime)
	sess.BoatName = nullString(boat)
	sess.CreatedAt = nullString(created)
	return sess, nil
}

// GetSessionRow returns a session without its roster and pieces.
func (s *Store) GetSessionRow(ctx context.Context, id string) (model.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	return sess, err
}

// GetSession returns a session with its athletes and pieces, both in
// ascending seat and piece order.
func (s *Store) GetSession(ctx context.Context, id string) (model.SessionDetail, error) {
	sess, err := s.GetSessionRow(ctx, id)
	if err != nil {
		return model.SessionDetail{}, err
	}
	athletes, err := s.listAthletes(ctx, `WHERE session_id = ?`, id)
	if err != nil {
		return model.SessionDetail{}, err
	}
	pieces, err := s.listPieces(ctx, id)
	if err != nil {
		return model.SessionDetail{}, err
	}
	return model.SessionDetail{Session: sess, Athletes: athletes, Pieces: pieces}, nil
}

// RenameSession updates a session's name.
func (s *Store) RenameSession(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeleteSession removes a session and all of its athletes, pieces,
// strokes and periodic samples.
func (s *Store) DeleteSession(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	stmts := []string{
		`DELETE FROM stroke_metrics WHERE piece_id IN (SELECT id FROM pieces WHERE session_id = ?)`,
		`DELETE FROM periodic_data WHERE piece_id IN (SELECT id FROM pieces WHERE session_id = ?)`,
		`DELETE FROM pieces WHERE session_id = ?`,
		`DELETE FROM athletes WHERE session_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err = expectRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
