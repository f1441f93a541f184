package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"journal-management-api/config"
	"journal-management-api/controllers"
	"journal-management-api/middleware"
	"journal-management-api/monitor"
	"journal-management-api/routes"
	"journal-management-api/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, logFile := config.InitLogging(cfg.Environment)
	defer logger.Sync()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database
	db := config.InitDB(cfg)

	// Wire workflow service
	mailer := config.NewMailer(cfg)
	dispatcher := services.NewDispatcher(db, mailer, logger)
	svc := services.NewService(db, logger, dispatcher,
		services.WithBaseURL(cfg.BaseURL),
		services.WithDOIGenerator(services.NewDOIGenerator(cfg.DOIPrefix, cfg.DOIJournalCode)),
	)
	controllers.Init(svc, logger)

	// Set Gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware())

	monitor.RegisterMetricsRoute(router)

	// Register /logs route early (before 404 catch-all in SetupRoutes)
	router.GET("/logs", func(c *gin.Context) {
		if c.Query("token") != cfg.JWTSecret {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}

		c.Data(200, "text/plain; charset=utf-8", logData)
	})

	routes.SetupRoutes(router)

	// Create upload directory if not exists
	for _, dir := range []string{cfg.UploadPath, "./logs"} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			logger.Warn("failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	// Overdue-review reminder scheduler
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, func() {
		if _, err := svc.RunReviewReminders(); err != nil {
			logger.Error("review reminder job failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("invalid reminder schedule",
			zap.String("schedule", cfg.ReminderSchedule), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("environment", cfg.Environment))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
