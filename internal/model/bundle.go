package model

// Bundle is a pre-parsed telemetry export accepted by the upload endpoint.
// Producing it from raw instrument files is the ingestion pipeline's job.
type Bundle struct {
	Name         string          `json:"name"`
	Filename     *string         `json:"filename,omitempty"`
	SerialNumber *string         `json:"serial_number,omitempty"`
	StartTime    *string         `json:"start_time,omitempty"`
	BoatName     *string         `json:"boat_name,omitempty"`
	BoatSeats    int             `json:"boat_seats"`
	Athletes     []BundleAthlete `json:"athletes"`
	Pieces       []BundlePiece   `json:"pieces"`
}

// BundleAthlete is a roster entry of a bundle.
type BundleAthlete struct {
	SeatPosition int     `json:"seat_position"`
	Name         string  `json:"name"`
	Side         *string `json:"side,omitempty"`
}

// BundlePiece is a piece with its strokes and periodic samples.
type BundlePiece struct {
	PieceNumber    int                 `json:"piece_number"`
	Name           *string             `json:"name,omitempty"`
	StartTimeMs    *int64              `json:"start_time_ms,omitempty"`
	EndTimeMs      *int64              `json:"end_time_ms,omitempty"`
	Duration       *string             `json:"duration,omitempty"`
	DistanceMeters *float64            `json:"distance_meters,omitempty"`
	AvgRating      *float64            `json:"avg_rating,omitempty"`
	Pace           *string             `json:"pace,omitempty"`
	Strokes        []StrokeMetric      `json:"strokes"`
	Periodic       []PeriodicDataPoint `json:"periodic"`
}
