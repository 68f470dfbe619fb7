package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyteller-server/internal/models"
	"storyteller-server/internal/repository"
	"storyteller-server/internal/service"
)

// StoryHandler обслуживает HTTP API историй.
type StoryHandler struct {
	repo          repository.StoryRepository
	generator     *service.GenerationService
	uploadsDir    string
	uploadMaxSize int64 // в байтах
	logger        *zap.Logger
}

func NewStoryHandler(
	repo repository.StoryRepository,
	generator *service.GenerationService,
	uploadsDir string,
	uploadMaxSize int64,
	logger *zap.Logger,
) *StoryHandler {
	return &StoryHandler{
		repo:          repo,
		generator:     generator,
		uploadsDir:    uploadsDir,
		uploadMaxSize: uploadMaxSize,
		logger:        logger.Named("story_handler"),
	}
}

// RegisterRoutes регистрирует маршруты API на роутере.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("", h.apiIndex)
		api.GET("/stories", h.listStories)
		api.GET("/stories/:id", h.getStory)
		api.POST("/generate", h.generateStory)
		api.POST("/tts", h.textToSpeech)
		api.POST("/upload", h.uploadStory)
	}
}

// apiIndex отдаёт краткое описание API.
func (h *StoryHandler) apiIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "StoryTeller API",
		"endpoints": gin.H{
			"stories": gin.H{
				"get":         "/api/stories",
				"description": "Get list of available stories",
			},
			"generate": gin.H{
				"post":        "/api/generate",
				"description": "Generate a new story based on theme",
			},
			"upload": gin.H{
				"post":        "/api/upload",
				"description": "Upload new story with files",
			},
			"tts": gin.H{
				"post":        "/api/tts",
				"description": "Convert text to speech",
			},
		},
	})
}

func (h *StoryHandler) listStories(c *gin.Context) {
	summaries, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Error listing stories", zap.Error(err))
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *StoryHandler) getStory(c *gin.Context) {
	id := c.Param("id")
	story, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("Error getting story", zap.String("storyID", id), zap.Error(err))
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, story)
}

type generateStoryRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (h *StoryHandler) generateStory(c *gin.Context) {
	var req generateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body for generateStory", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Theme is required"})
		return
	}

	story, err := h.generator.Generate(c.Request.Context(), req.Theme)
	if err != nil {
		h.logger.Error("Error generating story", zap.String("theme", req.Theme), zap.Error(err))
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, story)
}

type ttsRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *StoryHandler) textToSpeech(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body for textToSpeech", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Text is required"})
		return
	}

	audioPath, err := h.generator.SynthesizeToTemp(c.Request.Context(), req.Text)
	if err != nil {
		h.logger.Error("Error converting text to speech", zap.Error(err))
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, models.TTSResponse{Audio: audioPath})
}
