package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/rescue_radar_system/internal/config"
	"github.com/shenikar/rescue_radar_system/internal/export"
	v1 "github.com/shenikar/rescue_radar_system/internal/handler/http/v1"
	"github.com/shenikar/rescue_radar_system/internal/ingest"
	"github.com/shenikar/rescue_radar_system/internal/repository"
	"github.com/shenikar/rescue_radar_system/internal/service"
	"github.com/shenikar/rescue_radar_system/internal/webhook"
	"github.com/shenikar/rescue_radar_system/pkg/logger"
	"github.com/shenikar/rescue_radar_system/pkg/postgres"
	redisclient "github.com/shenikar/rescue_radar_system/pkg/redis"
	"github.com/sirupsen/logrus"

	goredis "github.com/redis/go-redis/v9"
	_ "github.com/shenikar/rescue_radar_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Rescue Radar API
// @version 1.0
// @description Disaster-rescue sensor telemetry collector.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Redis клиента (опционально)
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")
	} else {
		log.Info("REDIS_ADDR is not set, cache and webhook delivery are disabled")
	}

	// Выбор хранилища: PostgreSQL или встроенный SQLite, если DATABASE_URL не задан
	var readingRepo service.ReadingRepository
	if cfg.DatabaseURL != "" {
		// Запуск миграций
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		// Подключение к PostgreSQL
		dbpool, err := postgres.NewPostgresDB(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")

		readingRepo = repository.NewReadingRepository(dbpool, redisClient)
	} else {
		log.Infof("DATABASE_URL is not set, using local SQLite database %s", cfg.SQLitePath)
		sqliteRepo, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite database: %v", err)
		}
		defer sqliteRepo.Close()

		if err := sqliteRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to init SQLite schema: %v", err)
		}
		readingRepo = sqliteRepo
	}

	// Инициализация издателя событий: без Redis остаётся no-op заглушка
	var publisher webhook.ReadingPublisher = webhook.NewNoopPublisher()
	if redisClient != nil {
		publisher = webhook.NewRedisReadingPublisher(redisClient)

		// Инициализация и запуск воркера доставки вебхуков
		readingWorker := webhook.NewReadingWorker(redisClient, log, cfg)
		readingWorker.Start(ctx)
	}

	// Инициализация сервисов
	readingService := service.NewReadingService(readingRepo, log, cfg, publisher)

	// Инициализация хэндлеров
	handler := v1.NewHandler(readingService, export.NewCSVRenderer(), log, cfg)

	// Опциональный источник показаний из MQTT
	if cfg.MQTTBrokerURL != "" {
		mqttSource := ingest.NewMQTTSource(readingService, log, cfg)
		if err := mqttSource.Start(ctx); err != nil {
			log.WithError(err).Warn("MQTT reading source unavailable, continuing without it")
		} else {
			defer mqttSource.Stop()
		}
	}

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	handler.RegisterRoot(router)

	// Метрики Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
