package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storyteller-server/internal/models"
	"storyteller-server/internal/repository"
)

// storyPromptTemplate - фиксированный шаблон промпта. Формат ответа
// (TITLE/STORY/MORAL) завязан на паттерны извлечения ниже.
const storyPromptTemplate = `Write a short children's story with the following requirements:
1. Title: A creative, engaging title (1 line)
2. Story: A complete story (at least 3 paragraphs)
3. Moral: A simple moral or lesson (1-2 sentences)

THEME: %s

Format your response exactly like this:
TITLE: [Your story title here]

STORY:
[Your story here]

MORAL:
[The moral of the story]`

// Значения полей для сгенерированных историй.
const (
	generatedAuthor   = "AI Storyteller"
	generatedGenre    = "Children's Fiction"
	generatedDuration = "5 min"

	narrationFile = "audio.wav"

	descriptionLimit = 150
)

// Паттерны извлечения терпимы к отступлениям модели от формата:
// несовпадение любого из них - не ошибка, а откат к запасным значениям.
var (
	titleRe      = regexp.MustCompile(`(?i)^TITLE:[ \t]*(.+)`)
	storyRe      = regexp.MustCompile(`(?is)STORY:(.+?)MORAL:`)
	moralRe      = regexp.MustCompile(`(?is)MORAL:(.+)$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// GenerationService - оркестратор генерации: промпт -> AI -> разбор ->
// запись через репозиторий -> синтез озвучки.
type GenerationService struct {
	repo          repository.StoryRepository
	ai            AIClient
	speech        Synthesizer
	tempDir       string // публичная директория временных аудиофайлов
	tempRetention time.Duration
	logger        *zap.Logger
}

func NewGenerationService(
	repo repository.StoryRepository,
	ai AIClient,
	speech Synthesizer,
	tempDir string,
	tempRetention time.Duration,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		repo:          repo,
		ai:            ai,
		speech:        speech,
		tempDir:       tempDir,
		tempRetention: tempRetention,
		logger:        logger.Named("generation_service"),
	}
}

// Generate создаёт историю по теме. Ошибка AI фатальна для запроса и не
// оставляет новой директории на диске; ошибка синтеза речи деградирует до
// пустого аудиофайла.
func (s *GenerationService) Generate(ctx context.Context, theme string) (*models.Story, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, fmt.Errorf("%w: theme is required", models.ErrBadRequest)
	}

	startTime := time.Now()
	s.logger.Info("Starting story generation", zap.String("theme", theme))

	raw, err := s.ai.Generate(ctx, fmt.Sprintf(storyPromptTemplate, theme))
	if err != nil {
		generationsTotal.With(prometheus.Labels{"status": "ai_error"}).Inc()
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		generationsTotal.With(prometheus.Labels{"status": "ai_error"}).Inc()
		return nil, fmt.Errorf("%w: generated story text is empty", ErrAIEmptyResponse)
	}

	title, body, moral := extractSections(raw)
	if title == "" {
		title = "Story about " + theme
	}
	if body == "" {
		body = raw
	}
	description := deriveDescription(body)
	if description == "" {
		description = "A delightful story about " + theme
	}
	if moral != "" {
		body = body + "\n\nMoral: " + moral
	}

	story, err := s.repo.Create(ctx, repository.CreateStoryInput{
		Title:       title,
		Author:      generatedAuthor,
		Genre:       generatedGenre,
		Duration:    generatedDuration,
		Description: description,
		Text:        body,
	})
	if err != nil {
		generationsTotal.With(prometheus.Labels{"status": "store_error"}).Inc()
		return nil, err
	}

	// Озвучка некритична: история остаётся и с пустым аудиофайлом
	audioPath := s.repo.StoryFilePath(story.ID, narrationFile)
	if err := s.speech.Synthesize(ctx, body, audioPath); err != nil {
		s.logger.Warn("Narration synthesis failed, writing empty audio file",
			zap.String("storyID", story.ID), zap.Error(err))
		if writeErr := os.WriteFile(audioPath, nil, 0o644); writeErr != nil {
			s.logger.Error("Failed to write placeholder audio",
				zap.String("storyID", story.ID), zap.Error(writeErr))
		}
	}

	generationsTotal.With(prometheus.Labels{"status": "success"}).Inc()
	generationDuration.Observe(time.Since(startTime).Seconds())
	s.logger.Info("Story generation completed",
		zap.String("storyID", story.ID),
		zap.String("title", story.Title),
		zap.Duration("duration", time.Since(startTime)))
	return story, nil
}

// SynthesizeToTemp озвучивает произвольный текст во временный файл под
// публичным корнем и планирует его удаление по истечении срока хранения.
// Возвращает веб-путь к файлу.
func (s *GenerationService) SynthesizeToTemp(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is required", models.ErrBadRequest)
	}
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create temp dir: %v", ErrSpeechSynthesis, err)
	}

	filename := fmt.Sprintf("tts-%d.wav", time.Now().UnixMilli())
	audioPath := filepath.Join(s.tempDir, filename)
	if err := s.speech.Synthesize(ctx, text, audioPath); err != nil {
		return "", err
	}

	// Файл одноразовый: подчищаем его по таймеру
	logger := s.logger
	time.AfterFunc(s.tempRetention, func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to clean up temporary audio file", zap.String("path", audioPath), zap.Error(err))
			return
		}
		logger.Debug("Cleaned up temporary audio file", zap.String("path", audioPath))
	})

	return "/temp/" + filename, nil
}

// extractSections вытаскивает заголовок, тело и мораль из сырого ответа
// модели. Любая из секций может отсутствовать.
func extractSections(raw string) (title, body, moral string) {
	if m := titleRe.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(m[1])
	}
	if m := storyRe.FindStringSubmatch(raw); m != nil {
		body = strings.TrimSpace(m[1])
	}
	if m := moralRe.FindStringSubmatch(raw); m != nil {
		moral = strings.TrimSpace(m[1])
	}
	return title, body, moral
}

// deriveDescription строит короткое описание из первого абзаца тела,
// обрезая до 150 символов с многоточием.
func deriveDescription(body string) string {
	paragraph := strings.SplitN(body, "\n\n", 2)[0]
	description := strings.TrimSpace(whitespaceRe.ReplaceAllString(paragraph, " "))
	runes := []rune(description)
	if len(runes) > descriptionLimit {
		description = string(runes[:descriptionLimit-3]) + "..."
	}
	return description
}
