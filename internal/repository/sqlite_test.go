package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/shenikar/rescue_radar_system/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepo открывает временную SQLite-БД со свежей схемой
func newTestRepo(t *testing.T) *SQLiteReadingRepository {
	t.Helper()

	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func newReading(victimID string, distance float64, observedAt time.Time) *models.Reading {
	return &models.Reading{
		VictimID:   victimID,
		DistanceCM: distance,
		ObservedAt: observedAt,
	}
}

func TestSQLite_InsertAndGetLatest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	temp := 36.6
	detected := true
	reading := newReading("vic-sqlite01", 123.5, now)
	reading.TemperatureC = &temp
	reading.Detected = &detected

	require.NoError(t, repo.Insert(ctx, reading))
	assert.NotZero(t, reading.ID) // Insert проставляет присвоенный id

	got, err := repo.GetLatest(ctx, "vic-sqlite01")
	require.NoError(t, err)
	assert.Equal(t, reading.ID, got.ID)
	assert.Equal(t, 123.5, got.DistanceCM)
	require.NotNil(t, got.TemperatureC)
	assert.Equal(t, 36.6, *got.TemperatureC)
	require.NotNil(t, got.Detected)
	assert.True(t, *got.Detected)
	assert.Nil(t, got.HumidityPct) // Непереданные поля остаются nil
	assert.True(t, got.ObservedAt.Equal(now))
}

func TestSQLite_GetLatest_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetLatest(context.Background(), "vic-missing1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSQLite_GetLatest_PicksNewest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite02", 10, base.Add(-time.Minute))))
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite02", 20, base)))
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite02", 30, base.Add(-time.Hour))))

	got, err := repo.GetLatest(ctx, "vic-sqlite02")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.DistanceCM)
}

func TestSQLite_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	reading := newReading("vic-sqlite03", 10, now)
	require.NoError(t, repo.Insert(ctx, reading))

	reading.DistanceCM = 99
	reading.ObservedAt = now.Add(time.Second)
	require.NoError(t, repo.Update(ctx, reading))

	got, err := repo.GetLatest(ctx, "vic-sqlite03")
	require.NoError(t, err)
	assert.Equal(t, reading.ID, got.ID)
	assert.Equal(t, 99.0, got.DistanceCM)
	assert.True(t, got.ObservedAt.Equal(now.Add(time.Second)))
}

func TestSQLite_Update_MissingRow(t *testing.T) {
	repo := newTestRepo(t)

	reading := newReading("vic-sqlite04", 10, time.Now().UTC())
	reading.ID = 4242

	err := repo.Update(context.Background(), reading)
	assert.Error(t, err)
}

func TestSQLite_RefreshMeta(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	lat, lon := 55.75, 37.61
	reading := newReading("vic-sqlite05", 10, now)
	reading.Latitude = &lat
	reading.Longitude = &lon
	require.NoError(t, repo.Insert(ctx, reading))

	// Координаты не переданы - прежние значения сохраняются
	refreshed := now.Add(5 * time.Second)
	require.NoError(t, repo.RefreshMeta(ctx, reading.ID, refreshed, nil, nil))

	got, err := repo.GetLatest(ctx, "vic-sqlite05")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.DistanceCM) // Дистанция не тронута
	assert.True(t, got.ObservedAt.Equal(refreshed))
	require.NotNil(t, got.Latitude)
	assert.Equal(t, 55.75, *got.Latitude)

	// Новые координаты перезаписывают прежние
	newLat := 59.93
	require.NoError(t, repo.RefreshMeta(ctx, reading.ID, refreshed.Add(time.Second), &newLat, nil))

	got, err = repo.GetLatest(ctx, "vic-sqlite05")
	require.NoError(t, err)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, 59.93, *got.Latitude)
	require.NotNil(t, got.Longitude)
	assert.Equal(t, 37.61, *got.Longitude)
}

func TestSQLite_List_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite06", float64(i), base.Add(time.Duration(i)*time.Second))))
	}

	// Первая страница: новые первыми
	readings, total, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, readings, 2)
	assert.Equal(t, 4.0, readings[0].DistanceCM)
	assert.Equal(t, 3.0, readings[1].DistanceCM)

	// Последняя неполная страница
	readings, _, err = repo.List(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 0.0, readings[0].DistanceCM)

	// Страница за пределами данных - пустой слайс, а не ошибка
	readings, _, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestSQLite_ListAllAsc(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite07", 2, base.Add(time.Second))))
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite08", 1, base)))

	readings, err := repo.ListAllAsc(ctx)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 1.0, readings[0].DistanceCM)
	assert.Equal(t, 2.0, readings[1].DistanceCM)
}

func TestSQLite_CountRecentSubjects(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Два свежих пострадавших, у одного две записи, и один устаревший
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite09", 1, now)))
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite09", 2, now.Add(-time.Minute))))
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite10", 3, now.Add(-2*time.Minute))))
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite11", 4, now.Add(-3*time.Hour))))

	count, err := repo.CountRecentSubjects(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLite_Compact(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite12", float64(i), base.Add(time.Duration(i)*time.Second))))
	}
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite13", 50, base)))

	removed, err := repo.Compact(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// По каждому пострадавшему осталась самая свежая запись
	got, err := repo.GetLatest(ctx, "vic-sqlite12")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.DistanceCM)

	_, total, err := repo.List(ctx, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestSQLite_ResetSchema(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite14", 1, time.Now().UTC())))
	require.NoError(t, repo.ResetSchema(ctx))

	// Таблица пересоздана пустой и пригодна для записи
	_, err := repo.GetLatest(ctx, "vic-sqlite14")
	assert.ErrorIs(t, err, service.ErrNotFound)
	require.NoError(t, repo.Insert(ctx, newReading("vic-sqlite14", 2, time.Now().UTC())))
}
