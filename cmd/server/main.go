package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storyteller-server/internal/config"
	"storyteller-server/internal/handler"
	"storyteller-server/internal/logger"
	"storyteller-server/internal/middleware"
	"storyteller-server/internal/repository"
	"storyteller-server/internal/service"
)

func main() {
	_ = godotenv.Load()
	log.Println("Starting StoryTeller server...")

	// Конфиг загружаем до инициализации логгера
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// Инициализация зависимостей
	storyRepo, err := repository.NewFileStoryRepository(cfg.PublicDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize story repository", zap.Error(err))
	}

	aiClient, err := service.NewAIClient(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	synthesizer := service.NewCommandSynthesizer(cfg, zapLogger)
	generator := service.NewGenerationService(
		storyRepo, aiClient, synthesizer, cfg.TempDir(), cfg.TempAudioRetention, zapLogger)
	storyHandler := handler.NewStoryHandler(
		storyRepo, generator, cfg.UploadsDir(), cfg.UploadMaxSizeMB*1024*1024, zapLogger)

	// Настройка Gin
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.ZapLoggingMiddleware(zapLogger))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Метрики Prometheus (регистрирует и /metrics)
	prom := ginprometheus.NewPrometheus("storyteller")
	prom.Use(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	storyHandler.RegisterRoutes(router)

	// Статика: истории, обложки, загрузки и временные аудиофайлы лежат
	// под публичным корнем и раздаются как есть
	router.Static("/stories", cfg.StoriesDir())
	router.Static("/covers", cfg.CoversDir())
	router.Static("/uploads", cfg.UploadsDir())
	router.Static("/temp", cfg.TempDir())

	// SPA-фолбэк: неизвестные не-API пути получают index.html
	indexPath := filepath.Join(cfg.PublicDir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if _, err := os.Stat(indexPath); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.File(indexPath)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown по SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
