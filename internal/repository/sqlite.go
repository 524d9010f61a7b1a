package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/shenikar/rescue_radar_system/internal/service"

	_ "modernc.org/sqlite"
)

const createReadingsTableSQLite = `
	CREATE TABLE IF NOT EXISTS victim_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		victim_id TEXT NOT NULL,
		distance_cm REAL NOT NULL,
		temperature_c REAL,
		humidity_pct REAL,
		gas_ppm REAL,
		bearing_deg REAL,
		confidence REAL,
		latitude REAL,
		longitude REAL,
		detected INTEGER,
		observed_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_victim_readings_victim_id ON victim_readings (victim_id);
	CREATE INDEX IF NOT EXISTS idx_victim_readings_observed_at ON victim_readings (observed_at);
`

// SQLiteReadingRepository - встроенное хранилище показаний.
// Используется, когда DATABASE_URL не задан, чтобы сервис поднимался без внешней БД.
type SQLiteReadingRepository struct {
	db *sql.DB
}

// OpenSQLite открывает встроенную БД, создавая каталог при необходимости
func OpenSQLite(path string) (*SQLiteReadingRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// Один writer: SQLite сам сериализует запись, лишние соединения только мешают
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &SQLiteReadingRepository{db: db}, nil
}

// Close освобождает соединение с БД
func (r *SQLiteReadingRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// GetLatest возвращает самое свежее показание по victim_id
func (r *SQLiteReadingRepository) GetLatest(ctx context.Context, victimID string) (*models.Reading, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, victim_id, distance_cm, temperature_c, humidity_pct, gas_ppm, bearing_deg, confidence, latitude, longitude, detected, observed_at
		FROM victim_readings
		WHERE victim_id = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT 1;`, victimID)

	reading, err := scanSQLiteReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return reading, nil
}

// Insert сохраняет новое показание и проставляет присвоенный id
func (r *SQLiteReadingRepository) Insert(ctx context.Context, reading *models.Reading) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO victim_readings
			(victim_id, distance_cm, temperature_c, humidity_pct, gas_ppm, bearing_deg, confidence, latitude, longitude, detected, observed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		reading.VictimID,
		reading.DistanceCM,
		reading.TemperatureC,
		reading.HumidityPct,
		reading.GasPPM,
		reading.BearingDeg,
		reading.Confidence,
		reading.Latitude,
		reading.Longitude,
		boolToSQLite(reading.Detected),
		reading.ObservedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	reading.ID = id
	return nil
}

// Update перезаписывает существующее показание по id
func (r *SQLiteReadingRepository) Update(ctx context.Context, reading *models.Reading) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE victim_readings SET
			distance_cm = ?,
			temperature_c = ?,
			humidity_pct = ?,
			gas_ppm = ?,
			bearing_deg = ?,
			confidence = ?,
			latitude = ?,
			longitude = ?,
			detected = ?,
			observed_at = ?
		WHERE id = ?;`,
		reading.DistanceCM,
		reading.TemperatureC,
		reading.HumidityPct,
		reading.GasPPM,
		reading.BearingDeg,
		reading.Confidence,
		reading.Latitude,
		reading.Longitude,
		boolToSQLite(reading.Detected),
		reading.ObservedAt.UTC().Format(time.RFC3339Nano),
		reading.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reading: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reading with id %d not found for update", reading.ID)
	}
	return nil
}

// RefreshMeta обновляет только время и координаты показания
func (r *SQLiteReadingRepository) RefreshMeta(ctx context.Context, id int64, observedAt time.Time, lat, lon *float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE victim_readings SET
			observed_at = ?,
			latitude = COALESCE(?, latitude),
			longitude = COALESCE(?, longitude)
		WHERE id = ?;`,
		observedAt.UTC().Format(time.RFC3339Nano),
		lat,
		lon,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh reading: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check refresh result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reading with id %d not found for refresh", id)
	}
	return nil
}

// List возвращает показания с пагинацией, новые первыми, и общее количество
func (r *SQLiteReadingRepository) List(ctx context.Context, page, pageSize int) ([]*models.Reading, int64, error) {
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, victim_id, distance_cm, temperature_c, humidity_pct, gas_ppm, bearing_deg, confidence, latitude, longitude, detected, observed_at
		FROM victim_readings
		ORDER BY observed_at DESC, id DESC
		LIMIT ? OFFSET ?;`, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	readings, err := collectSQLiteReadings(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM victim_readings;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return readings, total, nil
}

// ListAllAsc возвращает все показания по возрастанию времени
func (r *SQLiteReadingRepository) ListAllAsc(ctx context.Context) ([]*models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, victim_id, distance_cm, temperature_c, humidity_pct, gas_ppm, bearing_deg, confidence, latitude, longitude, detected, observed_at
		FROM victim_readings
		ORDER BY observed_at ASC, id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings for export: %w", err)
	}
	defer rows.Close()

	return collectSQLiteReadings(rows)
}

// CountRecentSubjects возвращает количество уникальных пострадавших за окно в минутах
func (r *SQLiteReadingRepository) CountRecentSubjects(ctx context.Context, minutes int) (int, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(minutes) * time.Minute).Format(time.RFC3339Nano)
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT victim_id)
		FROM victim_readings
		WHERE observed_at >= ?;`, cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent subjects: %w", err)
	}
	return count, nil
}

// Compact удаляет все записи, кроме самой свежей по каждому пострадавшему
func (r *SQLiteReadingRepository) Compact(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM victim_readings
		WHERE id NOT IN (
			SELECT id FROM victim_readings a
			WHERE NOT EXISTS (
				SELECT 1 FROM victim_readings b
				WHERE b.victim_id = a.victim_id
				  AND (b.observed_at > a.observed_at
				       OR (b.observed_at = a.observed_at AND b.id > a.id))
			)
		);`)
	if err != nil {
		return 0, fmt.Errorf("failed to compact readings: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check compact result: %w", err)
	}
	return removed, nil
}

// EnsureSchema создаёт таблицу показаний, если её нет
func (r *SQLiteReadingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReadingsTableSQLite); err != nil {
		return fmt.Errorf("failed to ensure readings schema: %w", err)
	}
	return nil
}

// ResetSchema пересоздаёт таблицу показаний
func (r *SQLiteReadingRepository) ResetSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS victim_readings;`); err != nil {
		return fmt.Errorf("failed to drop readings table: %w", err)
	}
	return r.EnsureSchema(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteReading(row rowScanner) (*models.Reading, error) {
	reading := &models.Reading{}
	var (
		temperature sql.NullFloat64
		humidity    sql.NullFloat64
		gas         sql.NullFloat64
		bearing     sql.NullFloat64
		confidence  sql.NullFloat64
		latitude    sql.NullFloat64
		longitude   sql.NullFloat64
		detected    sql.NullInt64
		observedAt  string
	)

	err := row.Scan(
		&reading.ID,
		&reading.VictimID,
		&reading.DistanceCM,
		&temperature,
		&humidity,
		&gas,
		&bearing,
		&confidence,
		&latitude,
		&longitude,
		&detected,
		&observedAt,
	)
	if err != nil {
		return nil, err
	}

	reading.TemperatureC = nullFloat(temperature)
	reading.HumidityPct = nullFloat(humidity)
	reading.GasPPM = nullFloat(gas)
	reading.BearingDeg = nullFloat(bearing)
	reading.Confidence = nullFloat(confidence)
	reading.Latitude = nullFloat(latitude)
	reading.Longitude = nullFloat(longitude)
	if detected.Valid {
		v := detected.Int64 != 0
		reading.Detected = &v
	}

	ts, err := time.Parse(time.RFC3339Nano, observedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse observed_at %q: %w", observedAt, err)
	}
	reading.ObservedAt = ts.UTC()

	return reading, nil
}

func collectSQLiteReadings(rows *sql.Rows) ([]*models.Reading, error) {
	readings := make([]*models.Reading, 0)
	for rows.Next() {
		reading, err := scanSQLiteReading(rows)
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

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func boolToSQLite(v *bool) any {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}
