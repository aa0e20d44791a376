package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"astrowatch/internal/clients"
	"astrowatch/internal/config"
	"astrowatch/internal/handlers"
	"astrowatch/internal/metrics"
	"astrowatch/internal/middleware"
	"astrowatch/internal/notify"
	"astrowatch/internal/repository"
	"astrowatch/internal/service"
	"astrowatch/internal/worker"
	"astrowatch/pkg/database"
	"astrowatch/pkg/redis"
)

func main() {
	// Загрузка .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== AstroWatch NEO Monitor Starting ===")

	cfg := config.Load()

	// Подключение к PostgreSQL
	db, err := database.Connect(database.Config(cfg.DB))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// Подключение к Redis
	redisClient, err := redis.Connect(redis.Config(cfg.Redis))
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	metrics.Register()

	// Репозитории
	neoRepo := repository.NewNEORepository(db)
	userRepo := repository.NewUserRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	neoClient := clients.NewNEOFeedClient(clients.NEOConfig(cfg.NeoWs))

	// Шина нотификаций передается сервисам явно, глобального стейта нет
	gateway := notify.NewRedisGateway(redisClient)
	defer gateway.Close()

	// Сервисы
	neoService := service.NewNEOService(neoRepo, cacheRepo, neoClient, gateway)
	alertService := service.NewAlertService(alertRepo, userRepo, neoRepo, gateway)

	pipeline := worker.NewPipeline(neoService, alertService)

	// Фоновые воркеры
	scheduler := worker.NewScheduler()

	if cfg.Workers.DailyEnabled {
		scheduler.AddWorker(worker.NewPipelineWorker(pipeline, worker.PipelineDaily, cfg.Workers.DailyInterval))
		log.Printf("Daily pipeline enabled (interval: %v)", cfg.Workers.DailyInterval)
	}

	if cfg.Workers.WeeklyEnabled {
		scheduler.AddWorker(worker.NewPipelineWorker(pipeline, worker.PipelineWeekly, cfg.Workers.WeeklyInterval))
		log.Printf("Weekly pipeline enabled (interval: %v)", cfg.Workers.WeeklyInterval)
	}

	if cfg.Workers.SweepEnabled {
		scheduler.AddWorker(worker.NewSweepWorker(alertService, cfg.Workers.SweepInterval, cfg.Workers.SweepLookahead))
		log.Printf("Alert sweep enabled (interval: %v, lookahead: %v)",
			cfg.Workers.SweepInterval, cfg.Workers.SweepLookahead)
	}

	if cfg.Workers.CleanupEnabled {
		scheduler.AddWorker(worker.NewCleanupWorker(neoService, cfg.Workers.CleanupInterval))
		log.Printf("Snapshot cleanup enabled (interval: %v)", cfg.Workers.CleanupInterval)
	}

	go scheduler.Start()
	defer scheduler.Stop()

	// HTTP
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if !cfg.App.Debug {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	neoHandler := handlers.NewNEOHandler(neoService, pipeline)
	alertHandler := handlers.NewAlertHandler(alertService)
	userHandler := handlers.NewUserHandler(userRepo)
	streamHandler := handlers.NewStreamHandler(gateway)

	api := r.Group("/api/v1")

	// NEO данные
	api.GET("/neo/upcoming", neoHandler.GetUpcoming)
	api.GET("/neo/report", neoHandler.ExportReport)
	api.GET("/neo/object/:refID", neoHandler.GetByRefID)
	api.POST("/neo/refresh", neoHandler.TriggerRefresh)

	// Алерты
	api.GET("/alerts", alertHandler.ListAlerts)
	api.GET("/alerts/unread-count", alertHandler.UnreadCount)
	api.POST("/alerts/read-all", alertHandler.MarkAllRead)
	api.POST("/alerts/read/:id", alertHandler.MarkRead)

	// Настройки алертов
	api.GET("/users/:id/alert-prefs", userHandler.GetAlertPrefs)
	api.PUT("/users/:id/alert-prefs", userHandler.UpdateAlertPrefs)
	api.POST("/users/:id/watch/:refID", userHandler.WatchObject)
	api.DELETE("/users/:id/watch/:refID", userHandler.UnwatchObject)

	// Real-time события
	api.GET("/stream", streamHandler.Stream)

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database": "connected",
				"redis":    "connected",
				"neo_feed": "enabled",
			},
		})
	})

	// Системная статистика
	api.GET("/system/stats", func(c *gin.Context) {
		ctx := c.Request.Context()

		redisStats, _ := redis.GetStats(redisClient)
		neoCount, _ := neoRepo.Count(ctx)
		userCount, _ := userRepo.Count(ctx)
		alertCount, _ := alertRepo.Count(ctx)
		lastBatch, _ := neoService.LastBatchStats(ctx)

		c.JSON(200, gin.H{
			"database": gin.H{
				"neo_objects": neoCount,
				"users":       userCount,
				"alerts":      alertCount,
			},
			"redis":      redisStats,
			"last_batch": lastBatch,
			"workers": gin.H{
				"daily_enabled":   cfg.Workers.DailyEnabled,
				"weekly_enabled":  cfg.Workers.WeeklyEnabled,
				"sweep_enabled":   cfg.Workers.SweepEnabled,
				"cleanup_enabled": cfg.Workers.CleanupEnabled,
			},
		})
	})

	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api/v1", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}
