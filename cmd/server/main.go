package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/captchakit/captcha-recognizer/configs"
	"github.com/captchakit/captcha-recognizer/internal/application/processors"
	"github.com/captchakit/captcha-recognizer/internal/application/services"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/cache"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/health"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/httpserver"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/imaging"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/metrics"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/ocr"
	infraRedis "github.com/captchakit/captcha-recognizer/internal/infrastructure/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting captcha recognizer service...")

	// Build the result cache per configured backend
	var resultCache ports.ResultCache
	healthCheckers := []ports.HealthChecker{}

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisClient, err := infraRedis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")

		resultCache, err = cache.NewRedisCache(redisClient, cfg.Redis.KeyPrefix, cfg.Cache.TTL)
		if err != nil {
			logger.Fatal("Failed to initialize Redis cache:", err)
		}
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
	default:
		memCache, err := cache.NewMemoryCache(cfg.Cache.MaxSize, cfg.Cache.TTL)
		if err != nil {
			logger.Fatal("Failed to initialize memory cache:", err)
		}
		resultCache = memCache
	}
	healthCheckers = append(healthCheckers, health.NewCacheHealthChecker(resultCache))

	// OCR engine with the configured recognition timeout
	engine := ocr.WithTimeout(ocr.NewTesseractEngine(&cfg.OCR), cfg.Recognition.Timeout)
	healthCheckers = append(healthCheckers, health.NewOCRHealthChecker(engine, nil))

	// Baseline processors and the dispatching service
	registry := processors.NewDefaultRegistry(engine)
	recognizer := services.NewRecognizerService(
		registry,
		resultCache,
		imaging.NewPreprocessor(),
		metrics.NewRecorder(),
		logger,
	)

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
		DefaultType:  cfg.Recognition.DefaultType,
	}
	limits := httpserver.Limits{
		MaxImageBytes: cfg.Recognition.MaxImageBytes,
		MinImageBytes: cfg.Recognition.MinImageBytes,
		URLFetchLimit: cfg.Recognition.URLFetchLimit,
	}

	server := httpserver.NewServer(serverConfig, limits, logger, httpserver.ServerDeps{
		Recognizer:     recognizer,
		HealthCheckers: healthCheckers,
	})

	// Start the server in a goroutine so shutdown signals are handled
	go func() {
		if err := server.Start(); err != nil {
			logger.Info("Server stopped:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}
	logger.Info("Server exited")
}
