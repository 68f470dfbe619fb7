package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyteller-server/internal/models"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugSpacesRe   = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// slugify превращает заголовок в идентификатор: нижний регистр, без
// спецсимволов, пробелы заменены дефисами.
func slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStripRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpacesRe.ReplaceAllString(s, "-")
	return slugCollapseRe.ReplaceAllString(s, "-")
}

// uniqueFilename подбирает свободное имя файла в директории, добавляя
// числовой суффикс при коллизии.
func uniqueFilename(baseDir, baseName, ext string) string {
	filename := baseName + ext
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(baseDir, filename)); err != nil {
			return filename
		}
		filename = fmt.Sprintf("%s-%d%s", baseName, counter, ext)
	}
}

// uploadStory принимает multipart-форму с текстовыми полями истории и
// опциональными файлами audio/lullaby/cover. Метаданные записываются как
// <slug>.json в корень историй.
func (h *StoryHandler) uploadStory(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxSize)

	title := c.PostForm("title")
	text := c.PostForm("text")
	genre := c.PostForm("genre")
	author := c.PostForm("author")
	duration := c.PostForm("duration")
	description := c.PostForm("description")

	if title == "" || text == "" || genre == "" || author == "" || duration == "" || description == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing required fields"})
		return
	}

	slug := slugify(title)
	story := models.UploadedStory{
		Title:       title,
		Text:        text,
		Genre:       genre,
		Author:      author,
		Duration:    duration,
		Description: description,
		Audio:       h.saveUploadedFile(c, "audio", slug),
		Lullaby:     h.saveUploadedFile(c, "lullaby", slug),
		Cover:       h.saveUploadedFile(c, "cover", slug),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.repo.SaveUpload(c.Request.Context(), slug, story); err != nil {
		h.logger.Error("Error saving uploaded story", zap.String("slug", slug), zap.Error(err))
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{Message: "Story uploaded successfully", Story: story})
}

// saveUploadedFile сохраняет опциональный файл формы в директорию загрузок
// и возвращает его веб-путь. Отсутствие файла и ошибка сохранения дают
// пустой путь: файлы в форме необязательны.
func (h *StoryHandler) saveUploadedFile(c *gin.Context, field, slug string) string {
	file, err := c.FormFile(field)
	if err != nil {
		return ""
	}
	return h.storeUpload(c, file, slug+"-"+field)
}

func (h *StoryHandler) storeUpload(c *gin.Context, file *multipart.FileHeader, baseName string) string {
	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		h.logger.Error("Failed to create uploads dir", zap.Error(err))
		return ""
	}
	filename := uniqueFilename(h.uploadsDir, baseName, filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadsDir, filename)); err != nil {
		h.logger.Error("Failed to save uploaded file",
			zap.String("field", baseName), zap.Error(err))
		return ""
	}
	return "/uploads/" + filename
}
