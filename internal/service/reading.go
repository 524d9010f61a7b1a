package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/rescue_radar_system/internal/config"
	"github.com/shenikar/rescue_radar_system/internal/metrics"
	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/shenikar/rescue_radar_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// Decision - результат обработки входящего показания
type Decision string

const (
	DecisionCreated Decision = "created"
	DecisionUpdated Decision = "updated"
	DecisionSkipped Decision = "skipped"
)

// ErrNotFound возвращается, когда по victim_id нет сохранённых показаний
var ErrNotFound = errors.New("reading not found")

// ValidationError - ошибка валидации входного показания; отклоняется до обращения к хранилищу
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// SubmitInput - разобранный payload показания.
// Distance равен nil, если поле отсутствует или не приводится к числу;
// DistanceProvided различает эти два случая для текста ошибки.
type SubmitInput struct {
	VictimID         string
	Distance         *float64
	DistanceProvided bool
	TemperatureC     *float64
	HumidityPct      *float64
	GasPPM           *float64
	BearingDeg       *float64
	Confidence       *float64
	Latitude         *float64
	Longitude        *float64
	Detected         *bool
}

// ReadingRepository определяет контракт для работы с хранилищем показаний
type ReadingRepository interface {
	GetLatest(ctx context.Context, victimID string) (*models.Reading, error)
	Insert(ctx context.Context, reading *models.Reading) error
	Update(ctx context.Context, reading *models.Reading) error
	RefreshMeta(ctx context.Context, id int64, observedAt time.Time, lat, lon *float64) error
	List(ctx context.Context, page, pageSize int) ([]*models.Reading, int64, error)
	ListAllAsc(ctx context.Context) ([]*models.Reading, error)
	CountRecentSubjects(ctx context.Context, minutes int) (int, error)
	Compact(ctx context.Context) (int64, error)
	EnsureSchema(ctx context.Context) error
	ResetSchema(ctx context.Context) error
}

// ReadingService определяет контракт для бизнес-логики приёма показаний
type ReadingService interface {
	SubmitReading(ctx context.Context, input SubmitInput) (Decision, *models.Reading, error)
	GetLatest(ctx context.Context, victimID string) (*models.Reading, error)
	ListReadings(ctx context.Context, page, pageSize int) ([]*models.Reading, int64, error)
	ExportReadings(ctx context.Context) ([]*models.Reading, error)
	GetStats(ctx context.Context) (int, error)
	InitSchema(ctx context.Context) error
	ResetSchema(ctx context.Context) error
	CompactHistory(ctx context.Context) (int64, error)
}

type readingService struct {
	repo      ReadingRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher webhook.ReadingPublisher
	subjects  *subjectLocker
}

func NewReadingService(repo ReadingRepository, logger *logrus.Logger, cfg *config.Config, publisher webhook.ReadingPublisher) ReadingService {
	return &readingService{
		repo:      repo,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		subjects:  newSubjectLocker(),
	}
}

// SubmitReading применяет политику дедупликации к входящему показанию.
// Чтение-решение-запись по одному victim_id выполняется под per-subject блокировкой;
// показания разных пострадавших обрабатываются параллельно.
func (s *readingService) SubmitReading(ctx context.Context, input SubmitInput) (Decision, *models.Reading, error) {
	if err := s.validateDistance(input); err != nil {
		metrics.ReadingRejected("validation")
		return "", nil, err
	}
	distance := *input.Distance

	victimID := input.VictimID
	if victimID == "" {
		victimID = newVictimID()
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "reading",
		"method":    "SubmitReading",
		"victim_id": victimID,
	})

	s.subjects.Lock(victimID)
	defer s.subjects.Unlock(victimID)

	now := time.Now().UTC()

	prior, err := s.repo.GetLatest(ctx, victimID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.WithError(err).Error("Failed to look up prior reading")
		metrics.ReadingRejected("storage")
		return "", nil, fmt.Errorf("service: could not look up reading: %w", err)
	}

	// Первое показание по пострадавшему - всегда вставка
	if prior == nil {
		reading := buildReading(victimID, distance, now, input)
		if err := s.repo.Insert(ctx, reading); err != nil {
			log.WithError(err).Error("Failed to insert reading")
			metrics.ReadingRejected("storage")
			return "", nil, fmt.Errorf("service: could not insert reading: %w", err)
		}
		log.WithField("distance_cm", distance).Info("Reading created")
		metrics.ReadingIngested(string(DecisionCreated))
		s.notify(ctx, DecisionCreated, reading, log)
		return DecisionCreated, reading, nil
	}

	deltaV := math.Abs(distance - prior.DistanceCM)
	deltaT := now.Sub(prior.ObservedAt)

	// Отрицательный deltaT означает рассинхронизацию часов: считаем окно истёкшим,
	// чтобы реальное показание не было подавлено
	newEvent := deltaV >= s.cfg.DistanceTolerance || deltaT >= s.cfg.TimeWindow() || deltaT < 0

	observedAt := now
	if observedAt.Before(prior.ObservedAt) {
		observedAt = prior.ObservedAt
	}

	if newEvent {
		if s.cfg.StorageMode == config.StorageModeAppend {
			reading := buildReading(victimID, distance, observedAt, input)
			if err := s.repo.Insert(ctx, reading); err != nil {
				log.WithError(err).Error("Failed to append reading")
				metrics.ReadingRejected("storage")
				return "", nil, fmt.Errorf("service: could not append reading: %w", err)
			}
			log.WithFields(logrus.Fields{"distance_cm": distance, "delta_v": deltaV}).Info("Reading appended")
			metrics.ReadingIngested(string(DecisionCreated))
			s.notify(ctx, DecisionCreated, reading, log)
			return DecisionCreated, reading, nil
		}

		reading := buildReading(victimID, distance, observedAt, input)
		reading.ID = prior.ID
		if err := s.repo.Update(ctx, reading); err != nil {
			log.WithError(err).Error("Failed to update reading")
			metrics.ReadingRejected("storage")
			return "", nil, fmt.Errorf("service: could not update reading: %w", err)
		}
		log.WithFields(logrus.Fields{"distance_cm": distance, "delta_v": deltaV}).Info("Reading updated")
		metrics.ReadingIngested(string(DecisionUpdated))
		s.notify(ctx, DecisionUpdated, reading, log)
		return DecisionUpdated, reading, nil
	}

	// Шум: изменение ниже порога внутри временного окна
	if s.cfg.NoisePolicy == config.NoisePolicyRefresh {
		lat, lon := input.Latitude, input.Longitude
		if err := s.repo.RefreshMeta(ctx, prior.ID, observedAt, lat, lon); err != nil {
			log.WithError(err).Error("Failed to refresh reading metadata")
			metrics.ReadingRejected("storage")
			return "", nil, fmt.Errorf("service: could not refresh reading: %w", err)
		}
		prior.ObservedAt = observedAt
		if lat != nil {
			prior.Latitude = lat
		}
		if lon != nil {
			prior.Longitude = lon
		}
		// Запись состоялась, подписчики должны увидеть обновлённые метаданные
		s.notify(ctx, DecisionSkipped, prior, log)
	}

	log.WithFields(logrus.Fields{"delta_v": deltaV, "delta_t": deltaT.Seconds()}).Debug("Reading skipped as noise")
	metrics.ReadingIngested(string(DecisionSkipped))
	return DecisionSkipped, prior, nil
}

// GetLatest возвращает последнее показание по пострадавшему
func (s *readingService) GetLatest(ctx context.Context, victimID string) (*models.Reading, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "reading",
		"method":    "GetLatest",
		"victim_id": victimID,
	})

	reading, err := s.repo.GetLatest(ctx, victimID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.WithError(err).Error("Failed to get reading from repository")
		return nil, fmt.Errorf("service: could not get reading: %w", err)
	}
	return reading, nil
}

// ListReadings возвращает список показаний с пагинацией, новые первыми
func (s *readingService) ListReadings(ctx context.Context, page, pageSize int) ([]*models.Reading, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "reading",
		"method":    "ListReadings",
		"page":      page,
		"page_size": pageSize,
	})

	readings, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list readings from repository")
		return nil, 0, fmt.Errorf("service: could not list readings: %w", err)
	}
	return readings, total, nil
}

// ExportReadings возвращает все показания по возрастанию времени для построения отчёта
func (s *readingService) ExportReadings(ctx context.Context) ([]*models.Reading, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "reading",
		"method":  "ExportReadings",
	})

	readings, err := s.repo.ListAllAsc(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load readings for export")
		return nil, fmt.Errorf("service: could not export readings: %w", err)
	}
	log.WithField("count", len(readings)).Info("Readings exported")
	return readings, nil
}

// GetStats возвращает количество уникальных пострадавших за окно статистики
func (s *readingService) GetStats(ctx context.Context) (int, error) {
	count, err := s.repo.CountRecentSubjects(ctx, s.cfg.StatsTimeWindowMinutes)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get reading stats")
		return 0, fmt.Errorf("service: could not get stats: %w", err)
	}
	return count, nil
}

// InitSchema создаёт таблицу показаний, если её ещё нет
func (s *readingService) InitSchema(ctx context.Context) error {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("service: could not init schema: %w", err)
	}
	s.logger.Info("Schema ensured")
	return nil
}

// ResetSchema пересоздаёт таблицу показаний с потерей данных.
// Выполняется только при ALLOW_DESTRUCTIVE_ADMIN=true.
func (s *readingService) ResetSchema(ctx context.Context) error {
	if !s.cfg.AllowDestructiveAdmin {
		return &ValidationError{Field: "reset-db", Reason: "is disabled; set ALLOW_DESTRUCTIVE_ADMIN=true to enable"}
	}
	s.logger.Warn("DESTRUCTIVE ADMIN: dropping and recreating readings table, all data will be lost")
	if err := s.repo.ResetSchema(ctx); err != nil {
		return fmt.Errorf("service: could not reset schema: %w", err)
	}
	return nil
}

// CompactHistory оставляет по одной (самой свежей) записи на пострадавшего
func (s *readingService) CompactHistory(ctx context.Context) (int64, error) {
	removed, err := s.repo.Compact(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to compact readings")
		return 0, fmt.Errorf("service: could not compact readings: %w", err)
	}
	s.logger.WithField("removed", removed).Info("Readings compacted")
	return removed, nil
}

// validateDistance - единственная жёсткая валидация; остальные поля best-effort
func (s *readingService) validateDistance(input SubmitInput) error {
	if input.Distance == nil {
		if input.DistanceProvided {
			return &ValidationError{Field: "distance_cm", Reason: "must be numeric"}
		}
		return &ValidationError{Field: "distance_cm", Reason: "is required"}
	}
	d := *input.Distance
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return &ValidationError{Field: "distance_cm", Reason: "must be finite"}
	}
	if d < s.cfg.DistanceMin || d > s.cfg.DistanceMax {
		return &ValidationError{
			Field:  "distance_cm",
			Reason: fmt.Sprintf("must be within [%g, %g]", s.cfg.DistanceMin, s.cfg.DistanceMax),
		}
	}
	return nil
}

// notify публикует событие о записанном показании.
// Ошибка публикации логируется и никогда не влияет на результат операции.
func (s *readingService) notify(ctx context.Context, decision Decision, reading *models.Reading, log *logrus.Entry) {
	event := webhook.ReadingEvent{
		Action:    string(decision),
		Reading:   reading,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.WebhookDelivery("enqueue_failed")
		log.WithError(err).Warn("Failed to publish reading event")
	}
}

func buildReading(victimID string, distance float64, observedAt time.Time, input SubmitInput) *models.Reading {
	return &models.Reading{
		VictimID:     victimID,
		DistanceCM:   distance,
		TemperatureC: input.TemperatureC,
		HumidityPct:  input.HumidityPct,
		GasPPM:       input.GasPPM,
		BearingDeg:   input.BearingDeg,
		Confidence:   input.Confidence,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Detected:     input.Detected,
		ObservedAt:   observedAt,
	}
}

// newVictimID генерирует короткий идентификатор вида vic-1a2b3c4d
func newVictimID() string {
	return "vic-" + uuid.New().String()[:8]
}
