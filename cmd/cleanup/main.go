package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storyteller-server/internal/config"
	"storyteller-server/internal/logger"
	"storyteller-server/internal/repository"
)

// Сметает невалидные директории историй: битые метаданные, отсутствующее
// аудио, чужую обложку, шаблонный заголовок. Удаление безвозвратное.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	storyRepo, err := repository.NewFileStoryRepository(cfg.PublicDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize story repository", zap.Error(err))
	}

	removed, err := storyRepo.Cleanup(context.Background())
	if err != nil {
		zapLogger.Fatal("Cleanup failed", zap.Error(err))
	}
	zapLogger.Info("Story cleanup completed", zap.Int("removed", removed))
}
