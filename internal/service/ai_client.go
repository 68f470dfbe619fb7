package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storyteller-server/internal/config"
)

// Ошибки взаимодействия с AI. Разделяем "сервис ответил ошибкой",
// "сервис недоступен" и "сервис ответил пустотой" - обработчикам HTTP
// нужны разные диагностики.
var (
	ErrAIGenerationFailed = errors.New("ai generation failed")
	ErrAIUnavailable      = errors.New("ai service unavailable")
	ErrAIEmptyResponse    = errors.New("ai returned empty response")
)

// AIClient - интерфейс для взаимодействия с сервисом генерации текста.
type AIClient interface {
	// Generate отправляет промпт и возвращает сгенерированный текст.
	// Пустой результат - ошибка, а не валидный ответ.
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewAIClient создаёт клиент по типу из конфигурации.
func NewAIClient(cfg *config.Config, logger *zap.Logger) (AIClient, error) {
	switch strings.ToLower(cfg.AIClientType) {
	case "ollama":
		return newOllamaClient(cfg, logger)
	case "openai":
		return newOpenAIClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI client type: '%s'", cfg.AIClientType)
	}
}

// --- Ollama Client Implementation ---

// ollamaClient реализует AIClient поверх нативного API Ollama
// (POST /api/generate с stream=false).
type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg *config.Config, logger *zap.Logger) (AIClient, error) {
	// api.NewClient ожидает базовый URL без суффикса /v1
	baseURL := strings.TrimSuffix(cfg.AIBaseURL, "/v1")
	baseURL = strings.TrimSuffix(baseURL, "/")

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Ollama base URL '%s': %w", baseURL, err)
	}

	httpClient := &http.Client{Timeout: cfg.AITimeout}
	logger.Info("Ollama client created",
		zap.String("baseURL", baseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &ollamaClient{
		client:  api.NewClient(parsedURL, httpClient),
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		logger:  logger.Named("ollama_client"),
	}, nil
}

func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
	}

	startTime := time.Now()
	c.logger.Debug("Sending request to Ollama",
		zap.String("model", c.model),
		zap.Int("promptBytes", len(prompt)))

	var resp api.GenerateResponse
	err := c.client.Generate(requestCtx, req, func(r api.GenerateResponse) error {
		resp = r // при stream=false колбэк вызывается один раз с полным ответом
		return nil
	})
	duration := time.Since(startTime)

	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			c.logger.Error("Ollama API returned error status",
				zap.Int("status", statusErr.StatusCode),
				zap.Duration("duration", duration),
				zap.Error(err))
			return "", fmt.Errorf("%w: status %d: %s", ErrAIGenerationFailed, statusErr.StatusCode, statusErr.ErrorMessage)
		}
		c.logger.Error("Ollama API unreachable", zap.Duration("duration", duration), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		c.logger.Error("Ollama API returned empty response", zap.Duration("duration", duration))
		return "", fmt.Errorf("%w: model '%s'", ErrAIEmptyResponse, c.model)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())
	c.logger.Info("Ollama response received",
		zap.Duration("duration", duration),
		zap.Int("responseChars", len(text)))
	return text, nil
}

// --- OpenAI Client Implementation ---

// openAIClient реализует AIClient через go-openai. Подходит для любого
// OpenAI-совместимого endpoint (OpenRouter и т.п.).
type openAIClient struct {
	client  *openaigo.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOpenAIClient(cfg *config.Config, logger *zap.Logger) AIClient {
	clientConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
	if cfg.AIBaseURL != "" {
		clientConfig.BaseURL = cfg.AIBaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}

	logger.Info("OpenAI client created",
		zap.String("baseURL", clientConfig.BaseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &openAIClient{
		client:  openaigo.NewClientWithConfig(clientConfig),
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		logger:  logger.Named("openai_client"),
	}
}

func (c *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := c.client.CreateChatCompletion(requestCtx, openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: prompt},
		},
	})
	duration := time.Since(startTime)

	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		var apiErr *openaigo.APIError
		if errors.As(err, &apiErr) {
			c.logger.Error("OpenAI API returned error",
				zap.Int("status", apiErr.HTTPStatusCode),
				zap.Duration("duration", duration),
				zap.Error(err))
			return "", fmt.Errorf("%w: status %d: %s", ErrAIGenerationFailed, apiErr.HTTPStatusCode, apiErr.Message)
		}
		c.logger.Error("OpenAI API unreachable", zap.Duration("duration", duration), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		c.logger.Error("OpenAI API returned empty response", zap.Duration("duration", duration))
		return "", fmt.Errorf("%w: model '%s'", ErrAIEmptyResponse, c.model)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
