package model

// GlobalAthlete is an athlete profile shared across sessions.
type GlobalAthlete struct {
	ID           string   `json:"id"`
	UNI          *string  `json:"uni,omitempty"`
	Name         string   `json:"name"`
	FirstName    *string  `json:"first_name,omitempty"`
	LastName     *string  `json:"last_name,omitempty"`
	Squad        *string  `json:"squad,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	SessionCount int      `json:"session_count"`
	CreatedAt    *string  `json:"created_at,omitempty"`
	UpdatedAt    *string  `json:"updated_at,omitempty"`
}

// AthleteSessionEntry is one session an athlete rowed in.
type AthleteSessionEntry struct {
	SessionID    string  `json:"session_id"`
	SessionName  string  `json:"session_name"`
	SessionDate  *string `json:"session_date,omitempty"`
	SeatPosition int     `json:"seat_position"`
	Side         *string `json:"side,omitempty"`
}

// GlobalAthleteDetail is a profile with its session history.
type GlobalAthleteDetail struct {
	GlobalAthlete
	Sessions []AthleteSessionEntry `json:"sessions"`
}

// AthleteUpdate carries the editable profile fields. Nil fields are left unchanged.
type AthleteUpdate struct {
	Name   *string  `json:"name,omitempty"`
	UNI    *string  `json:"uni,omitempty"`
	Squad  *string  `json:"squad,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u AthleteUpdate) Empty() bool {
	return u.Name == nil && u.UNI == nil && u.Squad == nil && u.Weight == nil
}

// AthleteTrendPoint is a per-piece average for one athlete.
type AthleteTrendPoint struct {
	SessionID          string   `json:"session_id"`
	SessionName        string   `json:"session_name"`
	SessionDate        *string  `json:"session_date,omitempty"`
	PieceID            string   `json:"piece_id"`
	PieceName          *string  `json:"piece_name,omitempty"`
	SeatPosition       int      `json:"seat_position"`
	AvgPower           *float64 `json:"avg_power,omitempty"`
	AvgStrokeLength    *float64 `json:"avg_stroke_length,omitempty"`
	AvgEffectiveLength *float64 `json:"avg_effective_length,omitempty"`
	AvgCatchSlip       *float64 `json:"avg_catch_slip,omitempty"`
	AvgFinishSlip      *float64 `json:"avg_finish_slip,omitempty"`
}

// AthleteTrends groups trend points for a profile.
type AthleteTrends struct {
	Athlete    GlobalAthlete       `json:"athlete"`
	DataPoints []AthleteTrendPoint `json:"data_points"`
}
