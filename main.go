package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch-backend/internal/config"
	"dispatch-backend/internal/db"
	"dispatch-backend/internal/logger"
	"dispatch-backend/internal/middleware"
	"dispatch-backend/internal/models"
	"dispatch-backend/internal/routes"
	"dispatch-backend/internal/services"
	"dispatch-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func connectWithRetry(cfg config.Config, log logger.ILogger, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	var gormDB *gorm.DB
	var err error

	for i := 0; i < maxAttempts; i++ {
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Error),
		})
		if err == nil {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return nil, fmt.Errorf("не удалось получить доступ к sql.DB: %w", err)
			}
			sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
			sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
			sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMins) * time.Minute)
			return gormDB, nil
		}
		log.Warning("попытка подключения к БД не удалась",
			logger.Int("attempt", i+1),
			logger.Int("max_attempts", maxAttempts),
			logger.Error(err))
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("не удалось подключиться к базе данных после %d попыток: %w", maxAttempts, err)
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключение к базе данных
	database, err := connectWithRetry(cfg, log, 5, 5*time.Second)
	if err != nil {
		log.Error("ошибка подключения к базе данных", logger.Error(err))
		os.Exit(1)
	}

	// Подключение к Redis. Без Redis работаем, но без кэширования списков.
	redisClient, err := db.NewRedisClient(cfg)
	if err != nil {
		log.Warning("Redis недоступен, продолжаем без кэширования", logger.Error(err))
		services.InitListCache(nil, 0)
	} else {
		log.Info("успешное подключение к Redis")
		defer redisClient.Close()
		if cfg.CacheEnabled {
			services.InitListCache(redisClient, cfg.CacheTTLSeconds)
		} else {
			services.InitListCache(nil, 0)
		}
	}

	// Автоматическая миграция моделей
	if err := database.AutoMigrate(
		&models.Driver{},
		&models.Client{},
		&models.Tender{},
		&models.Trip{},
		&models.Payment{},
		&models.Pricing{},
	); err != nil {
		log.Error("ошибка миграции базы данных", logger.Error(err))
		os.Exit(1)
	}

	// Запускаем WebSocket менеджер
	websocket.StartManager()

	// Создаем Gin роутер
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Middleware для сбора метрик
	r.Use(middleware.PrometheusMiddleware())

	r.SetTrustedProxies([]string{"127.0.0.1"})

	// Настройка CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Эндпоинт для метрик Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Проверка работоспособности системы
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API группа
	api := r.Group("/api")
	routes.SetupRoutes(api, database)

	// WebSocket маршрут вне группы /api для совместимости с клиентом
	r.GET("/ws", websocket.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("сервер запущен", logger.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ошибка запуска сервера", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("получен сигнал завершения, закрываем соединения")

	// Даем 30 секунд на завершение текущих запросов
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("ошибка при graceful shutdown", logger.Error(err))
		os.Exit(1)
	}

	log.Info("сервер корректно завершил работу")
}
