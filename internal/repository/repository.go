package repository

import (
	"context"

	"storyteller-server/internal/models"
)

// CreateStoryInput - поля новой истории. Пустые поля заменяются значениями
// по умолчанию при создании, поэтому вызывающему достаточно передать то,
// что у него есть.
type CreateStoryInput struct {
	Title       string
	Author      string
	Genre       string
	Duration    string
	Description string
	Text        string
}

// StoryRepository управляет коллекцией историй на диске.
type StoryRepository interface {
	// List возвращает сводки всех историй, отсортированные по createdAt
	// по убыванию. Нечитаемые записи пропускаются, а не ломают список.
	List(ctx context.Context) ([]models.StorySummary, error)

	// Get возвращает полную запись истории. Если директории нет, пробует
	// легаси-формат (плоский <id>.txt). Возвращает models.ErrStoryNotFound,
	// если истории нет ни в одном формате.
	Get(ctx context.Context, id string) (*models.Story, error)

	// Create выделяет новый ID, создаёт директорию истории и записывает
	// текст, обложку и метаданные. После успешного возврата Get(id)
	// согласован с записанным.
	Create(ctx context.Context, input CreateStoryInput) (*models.Story, error)

	// Delete удаляет директорию истории целиком.
	Delete(ctx context.Context, id string) error

	// MigrateLegacy переносит плоские .txt-истории в директорный формат.
	// Идемпотентна: повторный запуск ничего не дублирует. Возвращает число
	// перенесённых историй.
	MigrateLegacy(ctx context.Context) (int, error)

	// Cleanup удаляет директории историй с битыми метаданными, отсутствующим
	// аудио, чужой обложкой или шаблонным заголовком. Возвращает число
	// удалённых директорий.
	Cleanup(ctx context.Context) (int, error)

	// SaveUpload записывает метаданные загруженной истории как <slug>.json.
	SaveUpload(ctx context.Context, slug string, story models.UploadedStory) error

	// StoryFilePath возвращает абсолютный путь к файлу внутри директории
	// истории (например, для записи narration-аудио оркестратором).
	StoryFilePath(id, filename string) string

	// WebPath возвращает веб-путь файла истории относительно публичного корня.
	WebPath(id, filename string) string
}
