package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/rescue_radar_system/internal/models"
)

const (
	readingQueueKey = "reading_events"
)

// ReadingEvent - структура для данных события о показании
type ReadingEvent struct {
	Action    string          `json:"action"` // created | updated | skipped (refresh)
	Reading   *models.Reading `json:"reading"`
	Timestamp time.Time       `json:"timestamp"`
}

// ReadingPublisher - интерфейс для публикации событий о показаниях
type ReadingPublisher interface {
	Publish(ctx context.Context, event ReadingEvent) error
}

// RedisReadingPublisher - реализация ReadingPublisher, использующая Redis
type RedisReadingPublisher struct {
	redisClient *redis.Client
}

// NewRedisReadingPublisher создает новый RedisReadingPublisher
func NewRedisReadingPublisher(client *redis.Client) *RedisReadingPublisher {
	return &RedisReadingPublisher{
		redisClient: client,
	}
}

// Publish публикует событие о показании в очередь Redis
func (p *RedisReadingPublisher) Publish(ctx context.Context, event ReadingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reading event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, readingQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish reading event to Redis: %w", err)
	}
	return nil
}

// NoopPublisher - заглушка, выбираемая при старте, когда Redis не настроен.
// Путь записи остаётся рабочим без подсистемы уведомлений.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(_ context.Context, _ ReadingEvent) error {
	return nil
}
