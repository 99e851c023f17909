// Package model defines shared data structures.
package model

import "strconv"

// Athlete is a rower occupying one seat within a session.
type Athlete struct {
	ID              string  `json:"id"`
	SessionID       string  `json:"session_id"`
	SeatPosition    int     `json:"seat_position"`
	Name            string  `json:"name"`
	Side            *string `json:"side,omitempty"`
	GlobalAthleteID *string `json:"global_athlete_id,omitempty"`
}

// Piece is a contiguous rowed segment within a session.
type Piece struct {
	ID             string   `json:"id"`
	SessionID      string   `json:"session_id"`
	PieceNumber    int      `json:"piece_number"`
	Name           *string  `json:"name,omitempty"`
	StartTimeMs    *int64   `json:"start_time_ms,omitempty"`
	EndTimeMs      *int64   `json:"end_time_ms,omitempty"`
	Duration       *string  `json:"duration,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	AvgRating      *float64 `json:"avg_rating,omitempty"`
	Pace           *string  `json:"pace,omitempty"`
}

// Label renders the piece for selectors.
func (p Piece) Label() string {
	label := "Piece " + strconv.Itoa(p.PieceNumber)
	if p.Name != nil && *p.Name != "" {
		label += ": " + *p.Name
	}
	return label
}

// Session is the list-level view of a recorded outing.
type Session struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Filename     *string `json:"filename,omitempty"`
	SerialNumber *string `json:"serial_number,omitempty"`
	StartTime    *string `json:"start_time,omitempty"`
	BoatName     *string `json:"boat_name,omitempty"`
	BoatSeats    int     `json:"boat_seats"`
	CreatedAt    *string `json:"created_at,omitempty"`
}

// SessionDetail is a session with its roster and pieces.
type SessionDetail struct {
	Session
	Athletes []Athlete `json:"athletes"`
	Pieces   []Piece   `json:"pieces"`
}

// StrokeMetric is one stroke of a piece. Seat arrays are indexed by
// seat position - 1 and a nil element means the sensor had no reading.
type StrokeMetric struct {
	ID                string     `json:"id"`
	PieceID           string     `json:"piece_id"`
	StrokeNumber      int        `json:"stroke_number"`
	TimeMs            int64      `json:"time_ms"`
	Rating            *float64   `json:"rating,omitempty"`
	AvgBoatSpeed      *float64   `json:"avg_boat_speed,omitempty"`
	DistancePerStroke *float64   `json:"distance_per_stroke,omitempty"`
	AveragePower      *float64   `json:"average_power,omitempty"`
	SwivelPower       []*float64 `json:"swivel_power,omitempty"`
	MinAngle          []*float64 `json:"min_angle,omitempty"`
	MaxAngle          []*float64 `json:"max_angle,omitempty"`
	CatchSlip         []*float64 `json:"catch_slip,omitempty"`
	FinishSlip        []*float64 `json:"finish_slip,omitempty"`
	DriveTime         []*float64 `json:"drive_time,omitempty"`
	RecoveryTime      []*float64 `json:"recovery_time,omitempty"`
	WorkPcQ1          []*float64 `json:"work_pc_q1,omitempty"`
	WorkPcQ2          []*float64 `json:"work_pc_q2,omitempty"`
	WorkPcQ3          []*float64 `json:"work_pc_q3,omitempty"`
	WorkPcQ4          []*float64 `json:"work_pc_q4,omitempty"`
}

// PeriodicDataPoint is a high-frequency intra-stroke sample.
type PeriodicDataPoint struct {
	TimeMs         int64      `json:"time_ms"`
	NormalizedTime *float64   `json:"normalized_time,omitempty"`
	GateAngle      []*float64 `json:"gate_angle,omitempty"`
	GateForceX     []*float64 `json:"gate_force_x,omitempty"`
	GateAngleVel   []*float64 `json:"gate_angle_vel,omitempty"`
	Speed          *float64   `json:"speed,omitempty"`
	Distance       *float64   `json:"distance,omitempty"`
	Accel          *float64   `json:"accel,omitempty"`
}

// PeriodicPage is the response of the periodic samples endpoint.
type PeriodicPage struct {
	PieceID     string              `json:"piece_id"`
	TotalPoints int                 `json:"total_points"`
	Data        []PeriodicDataPoint `json:"data"`
}

// PeriodicQuery bounds a periodic samples request. Zero values mean unbounded.
type PeriodicQuery struct {
	StrokeStart *int64
	StrokeEnd   *int64
	Downsample  int
}

// ForceCurve holds the samples of a single stroke cycle.
type ForceCurve struct {
	StrokeNumber int                 `json:"stroke_number"`
	StrokeTimeMs int64               `json:"stroke_time_ms"`
	DataPoints   int                 `json:"data_points"`
	Data         []PeriodicDataPoint `json:"data"`
}

// AthleteAverage summarizes one seat over a piece.
type AthleteAverage struct {
	SeatPosition       int      `json:"seat_position"`
	Name               string   `json:"name"`
	AvgPower           *float64 `json:"avg_power,omitempty"`
	AvgStrokeLength    *float64 `json:"avg_stroke_length,omitempty"`
	AvgEffectiveLength *float64 `json:"avg_effective_length,omitempty"`
	AvgCatchSlip       *float64 `json:"avg_catch_slip,omitempty"`
	AvgFinishSlip      *float64 `json:"avg_finish_slip,omitempty"`
	AvgDriveTime       *float64 `json:"avg_drive_time,omitempty"`
	AvgRecoveryTime    *float64 `json:"avg_recovery_time,omitempty"`
}

// PieceAverages is the pre-aggregated summary of a piece.
type PieceAverages struct {
	PieceID      string           `json:"piece_id"`
	PieceName    *string          `json:"piece_name,omitempty"`
	TotalStrokes int              `json:"total_strokes"`
	AvgRating    *float64         `json:"avg_rating,omitempty"`
	AvgBoatSpeed *float64         `json:"avg_boat_speed,omitempty"`
	Athletes     []AthleteAverage `json:"athletes"`
	CrewAvgPower *float64         `json:"crew_avg_power,omitempty"`
}

// UploadResult is returned after a telemetry file has been ingested.
type UploadResult struct {
	SessionID     string    `json:"session_id"`
	SessionName   string    `json:"session_name"`
	PiecesCreated int       `json:"pieces_created"`
	StrokeCount   int       `json:"stroke_count"`
	Athletes      []Athlete `json:"athletes"`
}
