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

// Одноразовый перенос плоских .txt-историй в директорную раскладку.
// Безопасно запускать повторно: уже перенесённые истории пропускаются.
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

	migrated, err := storyRepo.MigrateLegacy(context.Background())
	if err != nil {
		zapLogger.Fatal("Migration failed", zap.Error(err))
	}
	zapLogger.Info("Migration complete", zap.Int("migrated", migrated))
}
