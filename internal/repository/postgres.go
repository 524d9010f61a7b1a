package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/shenikar/rescue_radar_system/internal/service"
)

const readingColumns = `
			id,
			victim_id,
			distance_cm,
			temperature_c,
			humidity_pct,
			gas_ppm,
			bearing_deg,
			confidence,
			latitude,
			longitude,
			detected,
			observed_at`

const createReadingsTable = `
		CREATE TABLE IF NOT EXISTS victim_readings (
			id BIGSERIAL PRIMARY KEY,
			victim_id VARCHAR(64) NOT NULL,
			distance_cm DOUBLE PRECISION NOT NULL,
			temperature_c DOUBLE PRECISION,
			humidity_pct DOUBLE PRECISION,
			gas_ppm DOUBLE PRECISION,
			bearing_deg DOUBLE PRECISION,
			confidence DOUBLE PRECISION,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			detected BOOLEAN,
			observed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_victim_readings_victim_id ON victim_readings (victim_id);
		CREATE INDEX IF NOT EXISTS idx_victim_readings_observed_at ON victim_readings (observed_at);
	`

type ReadingRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

// NewReadingRepository создает репозиторий показаний поверх PostgreSQL.
// redisClient может быть nil - тогда кэш последних показаний отключён.
func NewReadingRepository(db *pgxpool.Pool, redisClient *redis.Client) service.ReadingRepository {
	return &ReadingRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// GetLatest возвращает самое свежее показание по victim_id
func (r *ReadingRepository) GetLatest(ctx context.Context, victimID string) (*models.Reading, error) {
	if cached, err := r.getFromCache(ctx, victimID); err == nil && cached != nil {
		return cached, nil
	}

	query := `
		SELECT ` + readingColumns + `
		FROM victim_readings
		WHERE victim_id = $1
		ORDER BY observed_at DESC, id DESC
		LIMIT 1;
	`
	reading := &models.Reading{}
	err := r.db.QueryRow(ctx, query, victimID).Scan(
		&reading.ID,
		&reading.VictimID,
		&reading.DistanceCM,
		&reading.TemperatureC,
		&reading.HumidityPct,
		&reading.GasPPM,
		&reading.BearingDeg,
		&reading.Confidence,
		&reading.Latitude,
		&reading.Longitude,
		&reading.Detected,
		&reading.ObservedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}

	r.setCache(ctx, reading)
	return reading, nil
}

// Insert сохраняет новое показание и проставляет присвоенный id
func (r *ReadingRepository) Insert(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO victim_readings
			(victim_id, distance_cm, temperature_c, humidity_pct, gas_ppm, bearing_deg, confidence, latitude, longitude, detected, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		reading.VictimID,
		reading.DistanceCM,
		reading.TemperatureC,
		reading.HumidityPct,
		reading.GasPPM,
		reading.BearingDeg,
		reading.Confidence,
		reading.Latitude,
		reading.Longitude,
		reading.Detected,
		reading.ObservedAt,
	).Scan(&reading.ID)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	r.invalidateCache(ctx, reading.VictimID)
	return nil
}

// Update перезаписывает существующее показание по id
func (r *ReadingRepository) Update(ctx context.Context, reading *models.Reading) error {
	query := `
		UPDATE victim_readings SET
			distance_cm = $1,
			temperature_c = $2,
			humidity_pct = $3,
			gas_ppm = $4,
			bearing_deg = $5,
			confidence = $6,
			latitude = $7,
			longitude = $8,
			detected = $9,
			observed_at = $10
		WHERE id = $11;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		reading.DistanceCM,
		reading.TemperatureC,
		reading.HumidityPct,
		reading.GasPPM,
		reading.BearingDeg,
		reading.Confidence,
		reading.Latitude,
		reading.Longitude,
		reading.Detected,
		reading.ObservedAt,
		reading.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reading: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("reading with id %d not found for update", reading.ID)
	}

	r.invalidateCache(ctx, reading.VictimID)
	return nil
}

// RefreshMeta обновляет только время и координаты показания, не трогая измерение
func (r *ReadingRepository) RefreshMeta(ctx context.Context, id int64, observedAt time.Time, lat, lon *float64) error {
	query := `
		UPDATE victim_readings SET
			observed_at = $1,
			latitude = COALESCE($2, latitude),
			longitude = COALESCE($3, longitude)
		WHERE id = $4
		RETURNING victim_id;
	`
	var victimID string
	err := r.db.QueryRow(ctx, query, observedAt, lat, lon, id).Scan(&victimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("reading with id %d not found for refresh", id)
		}
		return fmt.Errorf("failed to refresh reading: %w", err)
	}

	r.invalidateCache(ctx, victimID)
	return nil
}

// List возвращает показания с пагинацией, новые первыми, и общее количество
func (r *ReadingRepository) List(ctx context.Context, page, pageSize int) ([]*models.Reading, int64, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `
		SELECT ` + readingColumns + `
		FROM victim_readings
		ORDER BY observed_at DESC, id DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	readings, err := scanReadingRows(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM victim_readings;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return readings, total, nil
}

// ListAllAsc возвращает все показания по возрастанию времени
func (r *ReadingRepository) ListAllAsc(ctx context.Context) ([]*models.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM victim_readings
		ORDER BY observed_at ASC, id ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings for export: %w", err)
	}
	defer rows.Close()

	return scanReadingRows(rows)
}

// CountRecentSubjects возвращает количество уникальных пострадавших за окно в минутах
func (r *ReadingRepository) CountRecentSubjects(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT victim_id)
		FROM victim_readings
		WHERE observed_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count recent subjects: %w", err)
	}
	return count, nil
}

// Compact удаляет все записи, кроме самой свежей по каждому пострадавшему
func (r *ReadingRepository) Compact(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM victim_readings a
		WHERE EXISTS (
			SELECT 1 FROM victim_readings b
			WHERE b.victim_id = a.victim_id
			  AND (b.observed_at > a.observed_at
			       OR (b.observed_at = a.observed_at AND b.id > a.id))
		);
	`
	cmdTag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to compact readings: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// EnsureSchema создаёт таблицу показаний, если её нет
func (r *ReadingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createReadingsTable); err != nil {
		return fmt.Errorf("failed to ensure readings schema: %w", err)
	}
	return nil
}

// ResetSchema пересоздаёт таблицу показаний
func (r *ReadingRepository) ResetSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DROP TABLE IF EXISTS victim_readings;`); err != nil {
		return fmt.Errorf("failed to drop readings table: %w", err)
	}
	return r.EnsureSchema(ctx)
}

func scanReadingRows(rows pgx.Rows) ([]*models.Reading, error) {
	readings := make([]*models.Reading, 0)
	for rows.Next() {
		reading := &models.Reading{}
		err := rows.Scan(
			&reading.ID,
			&reading.VictimID,
			&reading.DistanceCM,
			&reading.TemperatureC,
			&reading.HumidityPct,
			&reading.GasPPM,
			&reading.BearingDeg,
			&reading.Confidence,
			&reading.Latitude,
			&reading.Longitude,
			&reading.Detected,
			&reading.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading row: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows iteration: %w", err)
	}
	return readings, nil
}

// getFromCache пытается получить последнее показание из Redis
func (r *ReadingRepository) getFromCache(ctx context.Context, victimID string) (*models.Reading, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	key := fmt.Sprintf("reading:%s", victimID)
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reading from cache: %w", err)
	}

	reading := &models.Reading{}
	if err := json.Unmarshal(val, reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reading from cache: %w", err)
	}
	return reading, nil
}

// setCache сохраняет последнее показание в Redis; ошибки кэша не критичны
func (r *ReadingRepository) setCache(ctx context.Context, reading *models.Reading) {
	if r.redisClient == nil {
		return
	}
	val, err := json.Marshal(reading)
	if err != nil {
		return
	}
	key := fmt.Sprintf("reading:%s", reading.VictimID)
	// Срок жизни кэша небольшой: показания быстро устаревают
	r.redisClient.Set(ctx, key, val, time.Minute)
}

// invalidateCache удаляет показание из Redis кэша
func (r *ReadingRepository) invalidateCache(ctx context.Context, victimID string) {
	if r.redisClient == nil {
		return
	}
	key := fmt.Sprintf("reading:%s", victimID)
	r.redisClient.Del(ctx, key)
}
