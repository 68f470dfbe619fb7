package config

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервера историй
type Config struct {
	// Настройки HTTP-сервера
	Port               string   `envconfig:"PORT" default:"3001"`
	GinMode            string   `envconfig:"GIN_MODE" default:"release"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:3002"`

	// Публичный корень: отсюда раздаётся статика, здесь же лежат истории
	PublicDir string `envconfig:"PUBLIC_DIR" default:"public"`

	// Настройки логгера
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки AI (ollama или openai-совместимый endpoint)
	AIClientType string        `envconfig:"AI_CLIENT_TYPE" default:"ollama"`
	AIBaseURL    string        `envconfig:"AI_BASE_URL" default:"http://localhost:11434"`
	AIModel      string        `envconfig:"AI_MODEL" default:"llama2"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	AIAPIKey     string        `envconfig:"AI_API_KEY"`

	// Настройки синтеза речи: команда озвучки и конвертер в WAV (LEI16@44100).
	// По умолчанию - macOS say/afconvert, как в исходной установке.
	TTSSpeakCommand   string        `envconfig:"TTS_SPEAK_COMMAND" default:"say"`
	TTSConvertCommand string        `envconfig:"TTS_CONVERT_COMMAND" default:"afconvert"`
	TTSTimeout        time.Duration `envconfig:"TTS_TIMEOUT" default:"120s"`

	// Сколько живут временные аудиофайлы из /api/tts
	TempAudioRetention time.Duration `envconfig:"TEMP_AUDIO_RETENTION" default:"1h"`

	// Лимит размера загружаемых файлов в /api/upload
	UploadMaxSizeMB int64 `envconfig:"UPLOAD_MAX_SIZE_MB" default:"100"`
}

// StoriesDir возвращает путь к корню директорий историй.
func (c *Config) StoriesDir() string { return filepath.Join(c.PublicDir, "stories") }

// CoversDir возвращает путь к директории обложек.
func (c *Config) CoversDir() string { return filepath.Join(c.PublicDir, "covers") }

// UploadsDir возвращает путь к директории загруженных файлов.
func (c *Config) UploadsDir() string { return filepath.Join(c.PublicDir, "uploads") }

// TempDir возвращает путь к директории временных аудиофайлов.
func (c *Config) TempDir() string { return filepath.Join(c.PublicDir, "temp") }

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Логируем загруженную конфигурацию (кроме ключей)
	log.Printf("Configuration loaded:")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  Public Dir: %s", cfg.PublicDir)
	log.Printf("  CORS Origins: %v", cfg.CORSAllowedOrigins)
	log.Printf("  AI Client Type: %s", cfg.AIClientType)
	log.Printf("  AI Base URL: %s", cfg.AIBaseURL)
	log.Printf("  AI Model: %s", cfg.AIModel)
	log.Printf("  AI Timeout: %v", cfg.AITimeout)
	if cfg.AIAPIKey != "" {
		log.Printf("  AI API Key: [SET]")
	}
	log.Printf("  TTS Commands: %s / %s", cfg.TTSSpeakCommand, cfg.TTSConvertCommand)
	log.Printf("  Temp Audio Retention: %v", cfg.TempAudioRetention)

	return &cfg, nil
}
