package models

import (
	"time"
)

// Reading представляет одно показание датчиков по пострадавшему
type Reading struct {
	ID           int64     `json:"id"`
	VictimID     string    `json:"victim_id"`
	DistanceCM   float64   `json:"distance_cm"`
	TemperatureC *float64  `json:"temperature_c"`
	HumidityPct  *float64  `json:"humidity_pct"`
	GasPPM       *float64  `json:"gas_ppm"`
	BearingDeg   *float64  `json:"bearing_deg"`
	Confidence   *float64  `json:"confidence"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	Detected     *bool     `json:"detected"`
	ObservedAt   time.Time `json:"observed_at"`
}
