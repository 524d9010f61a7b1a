package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shenikar/rescue_radar_system/internal/models"
)

// Renderer превращает список показаний в табличный документ.
// Реализация выбирается при старте; сейчас это CSV.
type Renderer interface {
	Render(w io.Writer, readings []*models.Reading) error
	ContentType() string
	Filename() string
}

// CSVRenderer - табличный отчёт в формате CSV
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (r *CSVRenderer) ContentType() string {
	return "text/csv"
}

func (r *CSVRenderer) Filename() string {
	return fmt.Sprintf("victim_readings_%s.csv", time.Now().UTC().Format("20060102_150405"))
}

// Render пишет показания в CSV; порядок строк определяет вызывающая сторона
func (r *CSVRenderer) Render(w io.Writer, readings []*models.Reading) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id",
		"victim_id",
		"distance_cm",
		"temperature_c",
		"humidity_pct",
		"gas_ppm",
		"bearing_deg",
		"confidence",
		"latitude",
		"longitude",
		"detected",
		"observed_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, reading := range readings {
		record := []string{
			strconv.FormatInt(reading.ID, 10),
			reading.VictimID,
			strconv.FormatFloat(reading.DistanceCM, 'f', -1, 64),
			formatOptFloat(reading.TemperatureC),
			formatOptFloat(reading.HumidityPct),
			formatOptFloat(reading.GasPPM),
			formatOptFloat(reading.BearingDeg),
			formatOptFloat(reading.Confidence),
			formatOptFloat(reading.Latitude),
			formatOptFloat(reading.Longitude),
			formatOptBool(reading.Detected),
			reading.ObservedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatOptBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
