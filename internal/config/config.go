package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Режимы хранения показаний
const (
	StorageModeUpsert = "upsert"
	StorageModeAppend = "append"
)

// Политики обработки "шумовых" показаний
const (
	NoisePolicyDiscard = "discard"
	NoisePolicyRefresh = "refresh"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/rescue_radar.db"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Dedup Policy Config
	DistanceTolerance float64 `env:"DISTANCE_TOLERANCE" envDefault:"2.0"`
	TimeWindowSeconds int     `env:"TIME_WINDOW_SECONDS" envDefault:"10"`
	DistanceMin       float64 `env:"DISTANCE_MIN" envDefault:"0"`
	DistanceMax       float64 `env:"DISTANCE_MAX" envDefault:"10000"`
	StorageMode       string  `env:"STORAGE_MODE" envDefault:"upsert"`
	NoisePolicy       string  `env:"NOISE_POLICY" envDefault:"discard"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// MQTT Config (опциональный источник показаний)
	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	MQTTTopic     string `env:"MQTT_TOPIC" envDefault:"rescue/readings"`

	// Stats Config
	StatsTimeWindowMinutes int `env:"STATS_TIME_WINDOW_MINUTES" envDefault:"60"`

	// Админские операции, уничтожающие данные, должны включаться явно
	AllowDestructiveAdmin bool `env:"ALLOW_DESTRUCTIVE_ADMIN" envDefault:"false"`

	// API Keys for write authentication
	APIKeys []string `env:"WRITE_API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SQLitePath:             getEnv("SQLITE_PATH", "data/rescue_radar.db"),
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DistanceTolerance:      getEnvAsFloat("DISTANCE_TOLERANCE", 2.0),
		TimeWindowSeconds:      getEnvAsInt("TIME_WINDOW_SECONDS", 10),
		DistanceMin:            getEnvAsFloat("DISTANCE_MIN", 0),
		DistanceMax:            getEnvAsFloat("DISTANCE_MAX", 10000),
		StorageMode:            getEnv("STORAGE_MODE", StorageModeUpsert),
		NoisePolicy:            getEnv("NOISE_POLICY", NoisePolicyDiscard),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPass:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		WebhookURL:             os.Getenv("WEBHOOK_URL"),
		WebhookSecret:          os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:         getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:      getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:       getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		MQTTBrokerURL:          os.Getenv("MQTT_BROKER_URL"),
		MQTTTopic:              getEnv("MQTT_TOPIC", "rescue/readings"),
		StatsTimeWindowMinutes: getEnvAsInt("STATS_TIME_WINDOW_MINUTES", 60),
		AllowDestructiveAdmin:  getEnvAsBool("ALLOW_DESTRUCTIVE_ADMIN", false),
	}

	// Загрузка ключей записи; без явной настройки остаётся dev-ключ
	apiKeysStr := getEnv("WRITE_API_KEYS", "rescue-radar-dev")
	cfg.APIKeys = strings.Split(apiKeysStr, ",")
	for i, key := range cfg.APIKeys {
		cfg.APIKeys[i] = strings.TrimSpace(key)
	}

	if cfg.StorageMode != StorageModeUpsert && cfg.StorageMode != StorageModeAppend {
		return nil, fmt.Errorf("STORAGE_MODE must be %q or %q, got %q", StorageModeUpsert, StorageModeAppend, cfg.StorageMode)
	}
	if cfg.NoisePolicy != NoisePolicyDiscard && cfg.NoisePolicy != NoisePolicyRefresh {
		return nil, fmt.Errorf("NOISE_POLICY must be %q or %q, got %q", NoisePolicyDiscard, NoisePolicyRefresh, cfg.NoisePolicy)
	}
	if cfg.DistanceMin >= cfg.DistanceMax {
		return nil, fmt.Errorf("DISTANCE_MIN (%v) must be below DISTANCE_MAX (%v)", cfg.DistanceMin, cfg.DistanceMax)
	}
	if cfg.DistanceTolerance < 0 {
		return nil, fmt.Errorf("DISTANCE_TOLERANCE must not be negative")
	}

	return cfg, nil
}

// TimeWindow возвращает окно дедупликации как time.Duration
func (c *Config) TimeWindow() time.Duration {
	return time.Duration(c.TimeWindowSeconds) * time.Second
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
