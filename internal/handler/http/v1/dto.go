package v1

import (
	"time"

	"github.com/shenikar/rescue_radar_system/internal/models"
)

// SubmitReadingRequest DTO для приёма показания
// @Description DTO для приёма показания датчиков
type SubmitReadingRequest struct {
	VictimID     string         `json:"victim_id" validate:"omitempty,max=64"`
	DistanceCM   *models.Number `json:"distance_cm"`
	TemperatureC *models.Number `json:"temperature_c"`
	HumidityPct  *models.Number `json:"humidity_pct"`
	GasPPM       *models.Number `json:"gas_ppm"`
	BearingDeg   *models.Number `json:"bearing_deg"`
	Confidence   *models.Number `json:"confidence"`
	Latitude     *models.Number `json:"latitude"`
	Longitude    *models.Number `json:"longitude"`
	Detected     *bool          `json:"detected"`
}

// ReadingResponse DTO для ответа с показанием
// @Description DTO для ответа с показанием
type ReadingResponse struct {
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

// SubmitReadingResponse DTO для результата приёма показания
// @Description DTO для результата приёма показания
type SubmitReadingResponse struct {
	Status  string           `json:"status"`
	Action  string           `json:"action"` // created | updated | skipped
	Reading *ReadingResponse `json:"reading"`
}

// ListReadingsResponse DTO для страницы показаний
// @Description DTO для страницы показаний
type ListReadingsResponse struct {
	Readings []*ReadingResponse `json:"readings"`
	Page     int                `json:"page"`
	PerPage  int                `json:"per_page"`
	Total    int64              `json:"total"`
	Pages    int64              `json:"pages"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	VictimCount int `json:"victim_count"`
}

// CompactResponse DTO для результата компактификации истории
// @Description DTO для результата компактификации истории
type CompactResponse struct {
	Status  string `json:"status"`
	Removed int64  `json:"removed"`
}
