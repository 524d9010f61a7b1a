package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shenikar/rescue_radar_system/internal/config"
	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/shenikar/rescue_radar_system/internal/service"
	"github.com/shenikar/rescue_radar_system/internal/service/mocks"
	"github.com/shenikar/rescue_radar_system/internal/webhook"
	webhook_mocks "github.com/shenikar/rescue_radar_system/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig() *config.Config {
	return &config.Config{
		DistanceTolerance:      2.0,
		TimeWindowSeconds:      10,
		DistanceMin:            0,
		DistanceMax:            10000,
		StorageMode:            config.StorageModeUpsert,
		NoisePolicy:            config.NoisePolicyDiscard,
		StatsTimeWindowMinutes: 60,
	}
}

// newTestReadingService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestReadingService(t *testing.T, cfg *config.Config) (service.ReadingService, *mocks.MockReadingRepository, *webhook_mocks.MockReadingPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockReadingRepository(ctrl)
	webhookMock := webhook_mocks.NewMockReadingPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := service.NewReadingService(repoMock, logger, cfg, webhookMock)
	return svc, repoMock, webhookMock
}

func fptr(v float64) *float64 {
	return &v
}

func submitInput(victimID string, distance float64) service.SubmitInput {
	return service.SubmitInput{
		VictimID:         victimID,
		Distance:         fptr(distance),
		DistanceProvided: true,
	}
}

func TestSubmitReading_FirstReading_Created(t *testing.T) {
	// Подготовка
	svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
	ctx := context.Background()

	// Ожидания
	repoMock.EXPECT().
		GetLatest(ctx, "vic-test0001").
		Return(nil, service.ErrNotFound).
		Times(1)

	repoMock.EXPECT().
		Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, reading *models.Reading) error {
			assert.Equal(t, "vic-test0001", reading.VictimID)
			assert.Equal(t, 123.5, reading.DistanceCM)
			assert.False(t, reading.ObservedAt.IsZero())
			return nil
		}).
		Times(1)

	webhookMock.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.ReadingEvent) error {
			assert.Equal(t, "created", event.Action)
			return nil
		}).
		Times(1)

	// Действие
	decision, reading, err := svc.SubmitReading(ctx, submitInput("vic-test0001", 123.5))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, service.DecisionCreated, decision)
	assert.Equal(t, "vic-test0001", reading.VictimID)
}

func TestSubmitReading_EmptyVictimID_Generated(t *testing.T) {
	// Подготовка
	svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
	ctx := context.Background()

	var generatedID string
	repoMock.EXPECT().
		GetLatest(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, victimID string) (*models.Reading, error) {
			generatedID = victimID
			return nil, service.ErrNotFound
		}).
		Times(1)
	repoMock.EXPECT().Insert(ctx, gomock.Any()).Return(nil).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	decision, reading, err := svc.SubmitReading(ctx, submitInput("", 10))

	// Проверки: сгенерирован идентификатор вида vic-1a2b3c4d
	require.NoError(t, err)
	assert.Equal(t, service.DecisionCreated, decision)
	assert.True(t, strings.HasPrefix(reading.VictimID, "vic-"))
	assert.Len(t, reading.VictimID, len("vic-")+8)
	assert.Equal(t, generatedID, reading.VictimID)
}

func TestSubmitReading_LargeDelta_Updated(t *testing.T) {
	// Подготовка: изменение дистанции выше порога внутри временного окна
	svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
	ctx := context.Background()
	prior := &models.Reading{
		ID:         7,
		VictimID:   "vic-aaaa0001",
		DistanceCM: 100,
		ObservedAt: time.Now().UTC().Add(-time.Second),
	}

	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(1)
	repoMock.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, reading *models.Reading) error {
			// Перезапись существующей строки, а не вставка новой
			assert.Equal(t, prior.ID, reading.ID)
			assert.Equal(t, 150.0, reading.DistanceCM)
			return nil
		}).
		Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	decision, reading, err := svc.SubmitReading(ctx, submitInput(prior.VictimID, 150))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, service.DecisionUpdated, decision)
	assert.Equal(t, prior.ID, reading.ID)
}

func TestSubmitReading_DeltaExactlyAtTolerance_Updated(t *testing.T) {
	// Подготовка: |Δv| == DISTANCE_TOLERANCE считается значимым изменением
	svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
	ctx := context.Background()
	prior := &models.Reading{
		ID:         1,
		VictimID:   "vic-aaaa0002",
		DistanceCM: 100,
		ObservedAt: time.Now().UTC().Add(-time.Second),
	}

	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(1)
	repoMock.EXPECT().Update(ctx, gomock.Any()).Return(nil).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	decision, _, err := svc.SubmitReading(ctx, submitInput(prior.VictimID, 102))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, service.DecisionUpdated, decision)
}

func TestSubmitReading_ExpiredWindow_Updated(t *testing.T) {
	// Подготовка: изменение ниже порога, но окно в 10 секунд истекло
	svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
	ctx := context.Background()
	prior := &models.Reading{
		ID:         2,
		VictimID:   "vic-aaaa0003",
		DistanceCM: 100,
		ObservedAt: time.Now().UTC().Add(-11 * time.Second),
	}

	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(1)
	repoMock.EXPECT().Update(ctx, gomock.Any()).Return(nil).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	decision, _, err := svc.SubmitReading(ctx, submitInput(prior.VictimID, 100.5))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, service.DecisionUpdated, decision)
}

func TestSubmitReading_Noise_Skipped(t *testing.T) {
	// Подготовка: изменение ниже порога внутри окна - шум, хранилище не трогаем
	svc, repoMock, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()
	prior := &models.Reading{
		ID:         3,
		VictimID:   "vic-aaaa0004",
		DistanceCM: 100,
		ObservedAt: time.Now().UTC().Add(-time.Second),
	}

	// Ожидания: только чтение, никаких Insert/Update/Publish
	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(1)

	// Действие
	decision, reading, err := svc.SubmitReading(ctx, submitInput(prior.VictimID, 101))

	// Проверки: возвращается сохранённое показание, а не входящее
	require.NoError(t, err)
	assert.Equal(t, service.DecisionSkipped, decision)
	assert.Equal(t, prior.DistanceCM, reading.DistanceCM)
	assert.Equal(t, prior.ID, reading.ID)
}

func TestSubmitReading_Noise_Idempotent(t *testing.T) {
	// Подготовка: повторная отправка того же показания не создаёт новых записей
	svc, repoMock, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()
	prior := &models.Reading{
		ID:         4,
		VictimID:   "vic-aaaa0005",
		DistanceCM: 100,
		ObservedAt: time.Now().UTC(),
	}

	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(2)

	for i := 0; i < 2; i++ {
		decision, _, err := svc.SubmitReading(ctx, submitInput(prior.VictimID, 100))
		require.NoError(t, err)
		assert.Equal(t, service.DecisionSkipped, decision)
	}
}

func TestSubmitReading_NoiseRefreshPolicy_UpdatesMeta(t *testing.T) {
	// Подготовка: NOISE_POLICY=refresh обновляет только метку времени и координаты
	cfg := testConfig()
	cfg.NoisePolicy = config.NoisePolicyRefresh
	svc, repoMock, webhookMock := newTestReadingService(t, cfg)
	ctx := context.Background()
	prior := &models.Reading{
		ID:         5,
		VictimID:   "vic-aaaa0006",
		DistanceCM: 100,
		ObservedAt: time.Now().UTC().Add(-time.Second),
	}

	input := submitInput(prior.VictimID, 101)
	input.Latitude = fptr(55.75)
	input.Longitude = fptr(37.61)

	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(1)
	repoMock.EXPECT().
		RefreshMeta(ctx, prior.ID, gomock.Any(), input.Latitude, input.Longitude).
		Return(nil).
		Times(1)

	// Запись состоялась, событие публикуется даже при решении skipped
	webhookMock.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.ReadingEvent) error {
			assert.Equal(t, "skipped", event.Action)
			require.NotNil(t, event.Reading)
			assert.Equal(t, 100.0, event.Reading.DistanceCM)
			return nil
		}).
		Times(1)

	// Действие
	decision, reading, err := svc.SubmitReading(ctx, input)

	// Проверки: решение всё равно skipped, дистанция осталась прежней
	require.NoError(t, err)
	assert.Equal(t, service.DecisionSkipped, decision)
	assert.Equal(t, 100.0, reading.DistanceCM)
	require.NotNil(t, reading.Latitude)
	assert.Equal(t, 55.75, *reading.Latitude)
}

func TestSubmitReading_AppendMode_InsertsNewRow(t *testing.T) {
	// Подготовка: STORAGE_MODE=append сохраняет историю вместо перезаписи
	cfg := testConfig()
	cfg.StorageMode = config.StorageModeAppend
	svc, repoMock, webhookMock := newTestReadingService(t, cfg)
	ctx := context.Background()
	prior := &models.Reading{
		ID:         6,
		VictimID:   "vic-aaaa0007",
		DistanceCM: 100,
		ObservedAt: time.Now().UTC().Add(-time.Second),
	}

	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(1)
	repoMock.EXPECT().
		Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, reading *models.Reading) error {
			// Новая строка, идентификатор прежней не переиспользуется
			assert.Zero(t, reading.ID)
			return nil
		}).
		Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	decision, _, err := svc.SubmitReading(ctx, submitInput(prior.VictimID, 150))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, service.DecisionCreated, decision)
}

func TestSubmitReading_PriorFromFuture_Accepted(t *testing.T) {
	// Подготовка: рассинхронизация часов - прежняя запись "из будущего".
	// Показание не должно подавляться, а метка времени не должна откатываться назад.
	svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
	ctx := context.Background()
	future := time.Now().UTC().Add(time.Hour)
	prior := &models.Reading{
		ID:         8,
		VictimID:   "vic-aaaa0008",
		DistanceCM: 100,
		ObservedAt: future,
	}

	repoMock.EXPECT().GetLatest(ctx, prior.VictimID).Return(prior, nil).Times(1)
	repoMock.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, reading *models.Reading) error {
			assert.False(t, reading.ObservedAt.Before(future))
			return nil
		}).
		Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие: изменение ниже порога, решает именно отрицательный Δt
	decision, _, err := svc.SubmitReading(ctx, submitInput(prior.VictimID, 100.5))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, service.DecisionUpdated, decision)
}

func TestSubmitReading_MissingDistance_ValidationError(t *testing.T) {
	// Подготовка: показание без distance_cm отклоняется до обращения к хранилищу
	svc, _, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()

	// Действие
	_, _, err := svc.SubmitReading(ctx, service.SubmitInput{VictimID: "vic-aaaa0009"})

	// Проверки
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "distance_cm", vErr.Field)
	assert.Contains(t, vErr.Reason, "required")
}

func TestSubmitReading_NonNumericDistance_ValidationError(t *testing.T) {
	// Подготовка: поле пришло, но не приводится к числу
	svc, _, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()

	// Действие
	_, _, err := svc.SubmitReading(ctx, service.SubmitInput{
		VictimID:         "vic-aaaa0010",
		DistanceProvided: true,
	})

	// Проверки
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "numeric")
}

func TestSubmitReading_DistanceBounds(t *testing.T) {
	// Граничные значения диапазона принимаются, значения за границей - нет
	tests := []struct {
		name     string
		distance float64
		wantErr  bool
	}{
		{"нижняя граница", 0, false},
		{"верхняя граница", 10000, false},
		{"ниже диапазона", -0.01, true},
		{"выше диапазона", 10000.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
			ctx := context.Background()

			if !tt.wantErr {
				repoMock.EXPECT().GetLatest(ctx, gomock.Any()).Return(nil, service.ErrNotFound).Times(1)
				repoMock.EXPECT().Insert(ctx, gomock.Any()).Return(nil).Times(1)
				webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
			}

			_, _, err := svc.SubmitReading(ctx, submitInput("vic-bounds01", tt.distance))

			if tt.wantErr {
				var vErr *service.ValidationError
				require.ErrorAs(t, err, &vErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSubmitReading_RepositoryError_Wrapped(t *testing.T) {
	// Подготовка: ошибка хранилища оборачивается и возвращается наружу
	svc, repoMock, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()
	dbErr := errors.New("connection refused")

	repoMock.EXPECT().GetLatest(ctx, gomock.Any()).Return(nil, dbErr).Times(1)

	// Действие
	_, _, err := svc.SubmitReading(ctx, submitInput("vic-aaaa0011", 10))

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func TestSubmitReading_PublishError_Ignored(t *testing.T) {
	// Подготовка: сбой публикации события не влияет на результат записи
	svc, repoMock, webhookMock := newTestReadingService(t, testConfig())
	ctx := context.Background()

	repoMock.EXPECT().GetLatest(ctx, gomock.Any()).Return(nil, service.ErrNotFound).Times(1)
	repoMock.EXPECT().Insert(ctx, gomock.Any()).Return(nil).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("redis is down")).Times(1)

	// Действие
	decision, _, err := svc.SubmitReading(ctx, submitInput("vic-aaaa0012", 10))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, service.DecisionCreated, decision)
}

func TestGetLatest_NotFound(t *testing.T) {
	// Подготовка
	svc, repoMock, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()

	repoMock.EXPECT().GetLatest(ctx, "vic-missing1").Return(nil, service.ErrNotFound).Times(1)

	// Действие
	_, err := svc.GetLatest(ctx, "vic-missing1")

	// Проверки
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListReadings_ClampsPagination(t *testing.T) {
	// Подготовка: некорректные параметры пагинации приводятся к допустимым
	svc, repoMock, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()

	repoMock.EXPECT().List(ctx, 1, 50).Return([]*models.Reading{}, int64(0), nil).Times(1)
	repoMock.EXPECT().List(ctx, 1, 500).Return([]*models.Reading{}, int64(0), nil).Times(1)

	_, _, err := svc.ListReadings(ctx, -5, 0)
	require.NoError(t, err)

	_, _, err = svc.ListReadings(ctx, 1, 9000)
	require.NoError(t, err)
}

func TestResetSchema_DisabledByDefault(t *testing.T) {
	// Подготовка: разрушающая операция выключена, хранилище не трогаем
	svc, _, _ := newTestReadingService(t, testConfig())
	ctx := context.Background()

	// Действие
	err := svc.ResetSchema(ctx)

	// Проверки
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestResetSchema_Enabled(t *testing.T) {
	// Подготовка
	cfg := testConfig()
	cfg.AllowDestructiveAdmin = true
	svc, repoMock, _ := newTestReadingService(t, cfg)
	ctx := context.Background()

	repoMock.EXPECT().ResetSchema(ctx).Return(nil).Times(1)

	// Действие
	err := svc.ResetSchema(ctx)

	// Проверки
	require.NoError(t, err)
}

func TestGetStats_PassesConfiguredWindow(t *testing.T) {
	// Подготовка
	cfg := testConfig()
	cfg.StatsTimeWindowMinutes = 15
	svc, repoMock, _ := newTestReadingService(t, cfg)
	ctx := context.Background()

	repoMock.EXPECT().CountRecentSubjects(ctx, 15).Return(3, nil).Times(1)

	// Действие
	count, err := svc.GetStats(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

// memoryRepo - потокобезопасное in-memory хранилище для теста конкурентного приёма.
// Моки gomock здесь не подходят: нужен реальный read-decide-write по общему состоянию.
type memoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[string][]*models.Reading
	inserts int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string][]*models.Reading)}
}

func (r *memoryRepo) GetLatest(_ context.Context, victimID string) (*models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.rows[victimID]
	if len(rows) == 0 {
		return nil, service.ErrNotFound
	}
	latest := *rows[len(rows)-1]
	return &latest, nil
}

func (r *memoryRepo) Insert(_ context.Context, reading *models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	reading.ID = r.nextID
	stored := *reading
	r.rows[reading.VictimID] = append(r.rows[reading.VictimID], &stored)
	r.inserts++
	return nil
}

func (r *memoryRepo) Update(_ context.Context, reading *models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.rows[reading.VictimID]
	for i, row := range rows {
		if row.ID == reading.ID {
			stored := *reading
			rows[i] = &stored
			return nil
		}
	}
	return errors.New("row not found")
}

func (r *memoryRepo) RefreshMeta(_ context.Context, id int64, observedAt time.Time, lat, lon *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rows := range r.rows {
		for _, row := range rows {
			if row.ID == id {
				row.ObservedAt = observedAt
				if lat != nil {
					row.Latitude = lat
				}
				if lon != nil {
					row.Longitude = lon
				}
				return nil
			}
		}
	}
	return errors.New("row not found")
}

func (r *memoryRepo) List(_ context.Context, _, _ int) ([]*models.Reading, int64, error) {
	return nil, 0, nil
}

func (r *memoryRepo) ListAllAsc(_ context.Context) ([]*models.Reading, error) {
	return nil, nil
}

func (r *memoryRepo) CountRecentSubjects(_ context.Context, _ int) (int, error) {
	return 0, nil
}

func (r *memoryRepo) Compact(_ context.Context) (int64, error) { return 0, nil }

func (r *memoryRepo) EnsureSchema(_ context.Context) error { return nil }

func (r *memoryRepo) ResetSchema(_ context.Context) error { return nil }

func TestSubmitReading_ConcurrentSameVictim_SingleRow(t *testing.T) {
	// Подготовка: параллельные показания одного пострадавшего в режиме upsert
	// должны схлопнуться в одну строку без потерянных обновлений
	repo := newMemoryRepo()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	svc := service.NewReadingService(repo, logger, testConfig(), webhook.NewNoopPublisher())

	ctx := context.Background()
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Дистанции разнесены дальше порога, каждая попытка - значимое изменение
			_, _, err := svc.SubmitReading(ctx, submitInput("vic-race0001", float64(10+n*10)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Проверки: ровно одна вставка, остальные - перезаписи той же строки
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, 1, repo.inserts)
	require.Len(t, repo.rows["vic-race0001"], 1)

	// Итоговое значение - одно из отправленных
	final := repo.rows["vic-race0001"][0].DistanceCM
	found := false
	for i := 0; i < workers; i++ {
		if final == float64(10+i*10) {
			found = true
			break
		}
	}
	assert.True(t, found, "итоговая дистанция %v не из числа отправленных", final)
}
