package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderer_Render(t *testing.T) {
	temp := 36.6
	detected := true
	readings := []*models.Reading{
		{
			ID:           1,
			VictimID:     "vic-csv00001",
			DistanceCM:   123.5,
			TemperatureC: &temp,
			Detected:     &detected,
			ObservedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:         2,
			VictimID:   "vic-csv00002",
			DistanceCM: 10,
			ObservedAt: time.Date(2026, 8, 30, 12, 0, 5, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVRenderer().Render(&buf, readings))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // Заголовок + две строки

	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "victim_id", records[0][1])
	assert.Equal(t, "observed_at", records[0][11])

	assert.Equal(t, "vic-csv00001", records[1][1])
	assert.Equal(t, "123.5", records[1][2])
	assert.Equal(t, "36.6", records[1][3])
	assert.Equal(t, "true", records[1][10])
	assert.Equal(t, "2026-08-30T12:00:00Z", records[1][11])

	// Отсутствующие опциональные поля - пустые ячейки
	assert.Equal(t, "", records[2][3])
	assert.Equal(t, "", records[2][10])
}

func TestCSVRenderer_Render_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVRenderer().Render(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // Только заголовок
}

func TestCSVRenderer_Metadata(t *testing.T) {
	r := NewCSVRenderer()
	assert.Equal(t, "text/csv", r.ContentType())
	assert.Contains(t, r.Filename(), "victim_readings_")
	assert.Contains(t, r.Filename(), ".csv")
}
