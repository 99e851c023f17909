package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const pieceColumns = `id, session_id, piece_number, name, start_time_ms, end_time_ms, duration, distance_meters, avg_rating, pace`

const strokeColumns = `id, piece_id, stroke_number, time_ms, rating, avg_boat_speed,
	distance_per_stroke, average_power, swivel_power, min_angle, max_angle,
	catch_slip, finish_slip, drive_time, recovery_time,
	work_pc_q1, work_pc_q2, work_pc_q3, work_pc_q4`

func scanPiece(row rowScanner) (model.Piece, error) {
	var p model.Piece
	var name, duration, pace sql.NullString
	var start, end sql.NullInt64
	var distance, rating sql.NullFloat64
	if err := row.Scan(&p.ID, &p.SessionID, &p.PieceNumber, &name, &start, &end, &duration, &distance, &rating, &pace); err != nil {
		return model.Piece{}, err
	}
	p.Name = nullString(name)
	p.StartTimeMs = nullInt(start)
	p.EndTimeMs = nullInt(end)
	p.Duration = nullString(duration)
	p.DistanceMeters = nullFloat(distance)
	p.AvgRating = nullFloat(rating)
	p.Pace = nullString(pace)
	return p, nil
}

func (s *Store) listPieces(ctx context.Context, sessionID string) ([]model.Piece, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pieceColumns+` FROM pieces WHERE session_id = ? ORDER BY piece_number`, sessionID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	pieces := []model.Piece{}
	for rows.Next() {
		p, err := scanPiece(rows)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pieces, nil
}

// GetPiece returns one piece.
func (s *Store) GetPiece(ctx context.Context, id string) (model.Piece, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pieceColumns+` FROM pieces WHERE id = ?`, id)
	p, err := scanPiece(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Piece{}, ErrNotFound
	}
	return p, err
}

// PieceAthletes returns the roster of the session a piece belongs to.
func (s *Store) PieceAthletes(ctx context.Context, pieceID string) ([]model.Athlete, error) {
	return s.listAthletes(ctx, `WHERE session_id = (SELECT session_id FROM pieces WHERE id = ?)`, pieceID)
}

func (s *Store) listAthletes(ctx context.Context, where string, args ...interface{}) ([]model.Athlete, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, seat_position, name, side, global_athlete_id FROM athletes `+where+` ORDER BY seat_position`,
		args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	athletes := []model.Athlete{}
	for rows.Next() {
		var a model.Athlete
		var side, global sql.NullString
		if err := rows.Scan(&a.ID, &a.SessionID, &a.SeatPosition, &a.Name, &side, &global); err != nil {
			return nil, err
		}
		a.Side = nullString(side)
		a.GlobalAthleteID = nullString(global)
		athletes = append(athletes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return athletes, nil
}

// ListStrokes returns a piece's strokes ordered by stroke number.
func (s *Store) ListStrokes(ctx context.Context, pieceID string) ([]model.StrokeMetric, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+strokeColumns+` FROM stroke_metrics WHERE piece_id = ? ORDER BY stroke_number`, pieceID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	strokes := []model.StrokeMetric{}
	for rows.Next() {
		st, err := scanStroke(rows)
		if err != nil {
			return nil, err
		}
		strokes = append(strokes, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return strokes, nil
}

// GetStroke returns one stroke of a piece by stroke number.
func (s *Store) GetStroke(ctx context.Context, pieceID string, strokeNumber int) (model.StrokeMetric, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+strokeColumns+` FROM stroke_metrics WHERE piece_id = ? AND stroke_number = ?`, pieceID, strokeNumber)
	st, err := scanStroke(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StrokeMetric{}, ErrNotFound
	}
	return st, err
}

func scanStroke(row rowScanner) (model.StrokeMetric, error) {
	var st model.StrokeMetric
	var rating, speed, dps, power sql.NullFloat64
	raw := make([]sql.NullString, 11)
	dest := []interface{}{&st.ID, &st.PieceID, &st.StrokeNumber, &st.TimeMs, &rating, &speed, &dps, &power}
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	if err := row.Scan(dest...); err != nil {
		return model.StrokeMetric{}, err
	}
	st.Rating = nullFloat(rating)
	st.AvgBoatSpeed = nullFloat(speed)
	st.DistancePerStroke = nullFloat(dps)
	st.AveragePower = nullFloat(power)
	targets := []*[]*float64{
		&st.SwivelPower, &st.MinAngle, &st.MaxAngle, &st.CatchSlip, &st.FinishSlip,
		&st.DriveTime, &st.RecoveryTime, &st.WorkPcQ1, &st.WorkPcQ2, &st.WorkPcQ3, &st.WorkPcQ4,
	}
	for i, target := range targets {
		values, err := decodeSeats(raw[i])
		if err != nil {
			return model.StrokeMetric{}, fmt.Errorf("stroke %d: %w", st.StrokeNumber, err)
		}
		*target = values
	}
	return st, nil
}

// PeriodicData returns every periodic sample recorded for a piece.
func (s *Store) PeriodicData(ctx context.Context, pieceID string) ([]model.PeriodicDataPoint, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM periodic_data WHERE piece_id = ?`, pieceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var points []model.PeriodicDataPoint
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		return nil, fmt.Errorf("failed to decode periodic data: %w", err)
	}
	return points, nil
}
