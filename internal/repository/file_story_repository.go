package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyteller-server/internal/models"
	"storyteller-server/internal/parser"
)

// Соглашения о раскладке: директория истории начинается с префикса,
// внутри - фиксированные имена файлов.
const (
	storyDirPrefix = "story-"
	metadataFile   = "metadata.json"
	textFile       = "story.txt"
	coverFile      = "cover.jpg"
	audioFile      = "audio.wav"

	defaultCoverWebPath = "/covers/default.jpg"
)

// sampleStories - демо-истории, которые миграция не трогает.
var sampleStories = []string{
	"ocean-mystery",
	"space-explorer",
	"the-cloud-who-wanted-to-shine",
	"the-magical-forest",
}

// FileStoryRepository хранит истории как директории под публичным корнем.
// Мутирующие операции сериализуются мьютексом: отдельные истории живут в
// разных директориях, но миграция и очистка проходят по всему корню.
type FileStoryRepository struct {
	publicDir string
	root      string // publicDir/stories
	logger    *zap.Logger

	mu sync.Mutex
}

// NewFileStoryRepository создаёт репозиторий и гарантирует существование
// директорий историй и обложек.
func NewFileStoryRepository(publicDir string, logger *zap.Logger) (*FileStoryRepository, error) {
	root := filepath.Join(publicDir, "stories")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stories dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(publicDir, "covers"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create covers dir: %w", err)
	}
	return &FileStoryRepository{
		publicDir: publicDir,
		root:      root,
		logger:    logger.Named("story_repository"),
	}, nil
}

// newStoryID выделяет новый идентификатор. Ведущая метка времени сохраняет
// сортируемость и привычный вид story-<millis>, случайный суффикс исключает
// коллизии при конкурентном создании.
func newStoryID() string {
	return fmt.Sprintf("%s%d-%s", storyDirPrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func (r *FileStoryRepository) StoryFilePath(id, filename string) string {
	return filepath.Join(r.root, id, filename)
}

func (r *FileStoryRepository) WebPath(id, filename string) string {
	return "/stories/" + id + "/" + filename
}

func (r *FileStoryRepository) List(ctx context.Context) ([]models.StorySummary, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read stories dir: %w", err)
	}

	summaries := make([]models.StorySummary, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), storyDirPrefix) {
			continue
		}
		story, err := r.readMetadata(entry.Name())
		if err != nil {
			// Битая запись не должна ломать список целиком
			r.logger.Warn("Skipping unreadable story", zap.String("storyID", entry.Name()), zap.Error(err))
			continue
		}
		summaries = append(summaries, story.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return parseCreatedAt(summaries[i].CreatedAt).After(parseCreatedAt(summaries[j].CreatedAt))
	})
	return summaries, nil
}

func (r *FileStoryRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	dir := filepath.Join(r.root, id)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		story, err := r.readMetadata(id)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
			}
			return nil, err
		}
		if story.Text == "" {
			// Старые записи держали текст только в story.txt
			if text, err := os.ReadFile(filepath.Join(dir, textFile)); err == nil {
				story.Text = string(text)
			} else {
				r.logger.Warn("Story text file missing", zap.String("storyID", id), zap.Error(err))
			}
		}
		return story, nil
	}

	return r.getLegacy(id)
}

// getLegacy читает плоский <id>.txt через парсер заголовков. Путь остаётся
// только для историй, которые ещё не прошли миграцию.
func (r *FileStoryRepository) getLegacy(id string) (*models.Story, error) {
	content, err := os.ReadFile(filepath.Join(r.root, id+".txt"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
	}
	meta, body := parser.ParseStory(string(content))
	audio := meta.Audio
	if audio == "" {
		audio = "/stories/" + id + ".mp3"
	}
	return &models.Story{
		ID:          id,
		Title:       meta.Title,
		Author:      meta.Author,
		Genre:       meta.Genre,
		Duration:    meta.Duration,
		Cover:       meta.Cover,
		Audio:       audio,
		Description: meta.Description,
		Text:        body,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (r *FileStoryRepository) Create(ctx context.Context, input CreateStoryInput) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := newStoryID()
	dir := filepath.Join(r.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create story dir: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	story := &models.Story{
		ID:          id,
		Title:       orDefault(strings.TrimSpace(input.Title), parser.DefaultTitle),
		Author:      orDefault(input.Author, parser.DefaultAuthor),
		Genre:       orDefault(input.Genre, parser.DefaultGenre),
		Duration:    orDefault(input.Duration, parser.DefaultDuration),
		Cover:       r.WebPath(id, coverFile),
		Audio:       r.WebPath(id, audioFile),
		Description: orDefault(input.Description, parser.DefaultDescription),
		Text:        input.Text,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := os.WriteFile(filepath.Join(dir, textFile), []byte(story.Text), 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write story text: %w", err)
	}

	// Обложка некритична: при любой ошибке деградируем до пустого файла
	if err := r.writeCover(filepath.Join(dir, coverFile)); err != nil {
		r.logger.Warn("Failed to write cover, using empty file", zap.String("storyID", id), zap.Error(err))
		if err := os.WriteFile(filepath.Join(dir, coverFile), nil, 0o644); err != nil {
			r.logger.Warn("Failed to write placeholder cover", zap.String("storyID", id), zap.Error(err))
		}
	}

	if err := r.writeMetadata(id, story); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	r.logger.Info("Story created", zap.String("storyID", id), zap.String("title", story.Title))
	return story, nil
}

func (r *FileStoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(r.root, id)); err != nil {
		return fmt.Errorf("failed to remove story dir: %w", err)
	}
	return nil
}

func (r *FileStoryRepository) MigrateLegacy(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read stories dir: %w", err)
	}

	migrated := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return migrated, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") || strings.HasPrefix(name, ".") {
			continue
		}
		if isSampleStory(name) {
			r.logger.Info("Skipping sample story", zap.String("file", name))
			continue
		}

		legacyID := strings.TrimSuffix(name, ".txt")
		storyID := storyDirPrefix + legacyID
		dir := filepath.Join(r.root, storyID)
		if _, err := os.Stat(dir); err == nil {
			r.logger.Info("Skipping already migrated story", zap.String("file", name))
			continue
		}

		if err := r.migrateOne(legacyID, storyID, dir); err != nil {
			r.logger.Error("Failed to migrate story", zap.String("file", name), zap.Error(err))
			continue
		}
		migrated++
		r.logger.Info("Story migrated", zap.String("file", name), zap.String("storyID", storyID))
	}
	return migrated, nil
}

// migrateOne переносит один плоский файл в директорную раскладку:
// текст становится story.txt, попутно переезжает аудио с одним из известных
// имён, метаданные синтезируются.
func (r *FileStoryRepository) migrateOne(legacyID, storyID, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create story dir: %w", err)
	}
	if err := os.Rename(filepath.Join(r.root, legacyID+".txt"), filepath.Join(dir, textFile)); err != nil {
		return fmt.Errorf("failed to move story text: %w", err)
	}

	// Аудио могло быть записано под несколькими историческими именами;
	// переносим первое найденное.
	audioWebPath := ""
	candidates := []string{legacyID + ".m4a", "audio-" + legacyID + ".wav", "audio-" + legacyID + ".m4a"}
	for _, candidate := range candidates {
		src := filepath.Join(r.root, candidate)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		target := "audio" + filepath.Ext(candidate)
		if err := os.Rename(src, filepath.Join(dir, target)); err != nil {
			return fmt.Errorf("failed to move audio file: %w", err)
		}
		audioWebPath = r.WebPath(storyID, target)
		break
	}

	content, err := os.ReadFile(filepath.Join(dir, textFile))
	if err != nil {
		return fmt.Errorf("failed to read migrated text: %w", err)
	}
	text := string(content)

	// ID плоской истории обычно был меткой времени в миллисекундах
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if millis, err := strconv.ParseInt(legacyID, 10, 64); err == nil {
		createdAt = time.UnixMilli(millis).UTC().Format(time.RFC3339)
	}

	story := &models.Story{
		ID:          storyID,
		Title:       "Story " + legacyID,
		Author:      "AI Storyteller",
		Genre:       "Children's Fiction",
		Duration:    "5 min",
		Cover:       defaultCoverWebPath,
		Audio:       audioWebPath,
		Description: truncate(text, 100),
		Text:        text,
		CreatedAt:   createdAt,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	return r.writeMetadata(storyID, story)
}

func (r *FileStoryRepository) Cleanup(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read stories dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), storyDirPrefix) {
			continue
		}
		id := entry.Name()
		reason := r.invalidReason(id)
		if reason == "" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(r.root, id)); err != nil {
			r.logger.Error("Failed to remove invalid story", zap.String("storyID", id), zap.Error(err))
			continue
		}
		removed++
		r.logger.Info("Removed invalid story", zap.String("storyID", id), zap.String("reason", reason))
	}
	return removed, nil
}

// invalidReason возвращает причину удаления директории или пустую строку,
// если история валидна. Эвристики: читаемые метаданные, существующее аудио,
// обложка со своим ID в пути, не-шаблонный заголовок.
func (r *FileStoryRepository) invalidReason(id string) string {
	story, err := r.readMetadata(id)
	if err != nil {
		return "unreadable metadata"
	}
	if story.Audio == "" {
		return "missing audio path"
	}
	if strings.HasPrefix(story.Audio, "/") {
		audioPath := filepath.Join(r.publicDir, filepath.FromSlash(strings.TrimPrefix(story.Audio, "/")))
		if _, err := os.Stat(audioPath); err != nil {
			return "audio file missing"
		}
	}
	if story.Cover != "" && !strings.Contains(story.Cover, id) {
		return "cover path mismatch"
	}
	if strings.HasPrefix(story.Title, "Story") && len(story.Title) > 20 {
		return "placeholder title"
	}
	return ""
}

func (r *FileStoryRepository) SaveUpload(ctx context.Context, slug string, story models.UploadedStory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal uploaded story: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.root, slug+".json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write uploaded story: %w", err)
	}
	return nil
}

func (r *FileStoryRepository) readMetadata(id string) (*models.Story, error) {
	data, err := os.ReadFile(filepath.Join(r.root, id, metadataFile))
	if err != nil {
		return nil, err
	}
	var story models.Story
	if err := json.Unmarshal(data, &story); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", id, err)
	}
	if story.ID == "" {
		story.ID = id
	}
	return &story, nil
}

func (r *FileStoryRepository) writeMetadata(id string, story *models.Story) error {
	data, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.root, id, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// writeCover копирует обложку по умолчанию в директорию истории.
func (r *FileStoryRepository) writeCover(dst string) error {
	src, err := os.Open(filepath.Join(r.publicDir, "covers", "default.jpg"))
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func isSampleStory(filename string) bool {
	for _, sample := range sampleStories {
		if strings.Contains(filename, sample) {
			return true
		}
	}
	return false
}

func parseCreatedAt(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
