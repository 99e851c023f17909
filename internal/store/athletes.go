package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const globalAthleteSelect = `SELECT g.id, g.uni, g.name, g.first_name, g.last_name, g.squad, g.weight,
	(SELECT COUNT(DISTINCT a.session_id) FROM athletes a WHERE a.global_athlete_id = g.id),
	g.created_at, g.updated_at
	FROM global_athletes g`

// SeatRef locates one seat an athlete rowed in a piece.
type SeatRef struct {
	Session model.Session
	Piece   model.Piece
	Seat    int
}

// linkGlobalAthlete finds a profile by case-insensitive name or creates one.
func (s *Store) linkGlobalAthlete(ctx context.Context, tx *sql.Tx, name, now string) (string, error) {
	name = strings.TrimSpace(name)
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM global_athletes WHERE lower(name) = lower(?) ORDER BY created_at LIMIT 1`, name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	first, last := splitName(name)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO global_athletes (id, name, first_name, last_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, first, last, now, now,
	); err != nil {
		return "", err
	}
	return id, nil
}

func splitName(name string) (first, last *string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return nil, nil
	case 1:
		return &fields[0], nil
	default:
		rest := strings.Join(fields[1:], " ")
		return &fields[0], &rest
	}
}

func scanGlobalAthlete(row rowScanner) (model.GlobalAthlete, error) {
	var g model.GlobalAthlete
	var uni, first, last, squad, created, updated sql.NullString
	var weight sql.NullFloat64
	if err := row.Scan(&g.ID, &uni, &g.Name, &first, &last, &squad, &weight, &g.SessionCount, &created, &updated); err != nil {
		return model.GlobalAthlete{}, err
	}
	g.UNI = nullString(uni)
	g.FirstName = nullString(first)
	g.LastName = nullString(last)
	g.Squad = nullString(squad)
	g.Weight = nullFloat(weight)
	g.CreatedAt = nullString(created)
	g.UpdatedAt = nullString(updated)
	return g, nil
}

// ListGlobalAthletes returns every profile ordered by name.
func (s *Store) ListGlobalAthletes(ctx context.Context) ([]model.GlobalAthlete, error) {
	rows, err := s.db.QueryContext(ctx, globalAthleteSelect+` ORDER BY lower(g.name)`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	out := []model.GlobalAthlete{}
	for rows.Next() {
		g, err := scanGlobalAthlete(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetGlobalAthlete returns one profile.
func (s *Store) GetGlobalAthlete(ctx context.Context, id string) (model.GlobalAthlete, error) {
	g, err := scanGlobalAthlete(s.db.QueryRowContext(ctx, globalAthleteSelect+` WHERE g.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.GlobalAthlete{}, ErrNotFound
	}
	return g, err
}

// UpdateGlobalAthlete applies the non-nil fields of u.
func (s *Store) UpdateGlobalAthlete(ctx context.Context, id string, u model.AthleteUpdate) (model.GlobalAthlete, error) {
	if _, err := s.GetGlobalAthlete(ctx, id); err != nil {
		return model.GlobalAthlete{}, err
	}
	if u.Empty() {
		return s.GetGlobalAthlete(ctx, id)
	}
	sets := []string{}
	args := []interface{}{}
	if u.Name != nil {
		first, last := splitName(*u.Name)
		sets = append(sets, "name = ?", "first_name = ?", "last_name = ?")
		args = append(args, strings.TrimSpace(*u.Name), first, last)
	}
	if u.UNI != nil {
		sets = append(sets, "uni = ?")
		args = append(args, *u.UNI)
	}
	if u.Squad != nil {
		sets = append(sets, "squad = ?")
		args = append(args, *u.Squad)
	}
	if u.Weight != nil {
		sets = append(sets, "weight = ?")
		args = append(args, *u.Weight)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.timestamp(), id)
	if _, err := s.db.ExecContext(ctx, `UPDATE global_athletes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return model.GlobalAthlete{}, err
	}
	return s.GetGlobalAthlete(ctx, id)
}

// AthleteSessions lists the sessions a profile rowed in, newest first.
func (s *Store) AthleteSessions(ctx context.Context, globalID string) ([]model.AthleteSessionEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.name, COALESCE(NULLIF(s.start_time, ''), s.created_at), a.seat_position, a.side
		 FROM athletes a JOIN sessions s ON s.id = a.session_id
		 WHERE a.global_athlete_id = ?
		 ORDER BY s.created_at DESC, s.rowid DESC`, globalID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	out := []model.AthleteSessionEntry{}
	for rows.Next() {
		var e model.AthleteSessionEntry
		var date, side sql.NullString
		if err := rows.Scan(&e.SessionID, &e.SessionName, &date, &e.SeatPosition, &side); err != nil {
			return nil, err
		}
		e.SessionDate = nullString(date)
		e.Side = nullString(side)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AthleteSeats lists every piece a profile rowed, oldest session first.
func (s *Store) AthleteSeats(ctx context.Context, globalID string) ([]SeatRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.seat_position, s.`+strings.ReplaceAll(sessionColumns, ", ", ", s.")+`,
		 p.`+strings.ReplaceAll(pieceColumns, ", ", ", p.")+`
		 FROM athletes a
		 JOIN sessions s ON s.id = a.session_id
		 JOIN pieces p ON p.session_id = s.id
		 WHERE a.global_athlete_id = ?
		 ORDER BY s.created_at, s.rowid, p.piece_number`, globalID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	out := []SeatRef{}
	for rows.Next() {
		var ref SeatRef
		var filename, serial, startTime, boat, created sql.NullString
		var pieceName, duration, pace sql.NullString
		var start, end sql.NullInt64
		var distance, rating sql.NullFloat64
		if err := rows.Scan(
			&ref.Seat,
			&ref.Session.ID, &ref.Session.Name, &filename, &serial, &startTime, &boat, &ref.Session.BoatSeats, &created,
			&ref.Piece.ID, &ref.Piece.SessionID, &ref.Piece.PieceNumber, &pieceName, &start, &end, &duration, &distance, &rating, &pace,
		); err != nil {
			return nil, err
		}
		ref.Session.Filename = nullString(filename)
		ref.Session.SerialNumber = nullString(serial)
		ref.Session.StartTime = nullString(startTime)
		ref.Session.BoatName = nullString(boat)
		ref.Session.CreatedAt = nullString(created)
		ref.Piece.Name = nullString(pieceName)
		ref.Piece.StartTimeMs = nullInt(start)
		ref.Piece.EndTimeMs = nullInt(end)
		ref.Piece.Duration = nullString(duration)
		ref.Piece.DistanceMeters = nullFloat(distance)
		ref.Piece.AvgRating = nullFloat(rating)
		ref.Piece.Pace = nullString(pace)
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
