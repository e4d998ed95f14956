package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/minutes-service/pkg/validator"

	"github.com/johnquangdev/minutes-service/internal/adapter/handler"
	"github.com/johnquangdev/minutes-service/internal/infrastructure/cache"
	"github.com/johnquangdev/minutes-service/internal/infrastructure/external/transcription"
	"github.com/johnquangdev/minutes-service/internal/usecase/minutes"
	"github.com/johnquangdev/minutes-service/pkg/config"
	"github.com/johnquangdev/minutes-service/pkg/llm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Result cache: Redis when enabled, in-memory otherwise
	var store cache.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(cfg, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Println("📦 Using in-memory result cache")
		store = cache.NewMemoryStore()
	}

	// Initialize text-generation providers
	log.Println("🤖 Initializing text-generation providers...")
	var primary, secondary llm.Provider
	if cfg.Groq.APIKey != "" {
		primary = llm.NewGroqClient(&cfg.Groq)
	} else {
		log.Println("⚠️  GROQ_API_KEY not set, primary provider disabled")
	}
	if cfg.Gemini.APIKey != "" {
		secondary = llm.NewGeminiClient(&cfg.Gemini)
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set, secondary provider disabled")
	}

	// Transcription adapter (client is built lazily on first audio request)
	log.Println("🎙️  Initializing transcription adapter...")
	transcriber := transcription.NewAssemblyAITranscriber(cfg, logger)

	// Pipeline service
	log.Println("⚙️  Initializing pipeline service...")
	pool := minutes.NewPool(cfg.Pipeline.WorkerPoolSize)
	service := minutes.NewService(transcriber, primary, secondary, pool, store, cfg, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	minutesHandler := handler.NewMinutes(service, logger)
	router := handler.NewRouter(cfg, minutesHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
