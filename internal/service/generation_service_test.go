package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyteller-server/internal/mocks"
	"storyteller-server/internal/models"
	"storyteller-server/internal/repository"
	"storyteller-server/internal/service"
)

const wellFormedResponse = `TITLE: Mouse Tales

STORY:
Once upon a time a small mouse set out to see the world.

She crossed the kitchen, the garden and the tall grass beyond the fence.

At last she came home, braver than before.

MORAL:
Be brave, even when you are small.`

type generationFixture struct {
	repo    *repository.FileStoryRepository
	ai      *mocks.MockAIClient
	speech  *mocks.MockSynthesizer
	service *service.GenerationService

	publicDir string
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	publicDir := t.TempDir()
	repo, err := repository.NewFileStoryRepository(publicDir, zap.NewNop())
	require.NoError(t, err)

	ai := new(mocks.MockAIClient)
	speech := new(mocks.MockSynthesizer)
	svc := service.NewGenerationService(
		repo, ai, speech,
		filepath.Join(publicDir, "temp"), time.Hour,
		zap.NewNop(),
	)
	return &generationFixture{
		repo:      repo,
		ai:        ai,
		speech:    speech,
		service:   svc,
		publicDir: publicDir,
	}
}

// expectSynthesis настраивает мок так, чтобы он реально записывал аудиофайл
// по переданному пути, как это делает боевой синтезатор.
func (f *generationFixture) expectSynthesis() {
	f.speech.On("Synthesize", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			_ = os.WriteFile(args.String(2), []byte("RIFF"), 0o644)
		}).
		Return(nil)
}

func (f *generationFixture) storyDirs(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.publicDir, "stories"))
	require.NoError(t, err)
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs
}

func TestGenerate_Success(t *testing.T) {
	f := newGenerationFixture(t)
	f.ai.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "THEME: dragons")
	})).Return(wellFormedResponse, nil)
	f.expectSynthesis()

	story, err := f.service.Generate(context.Background(), "dragons")
	require.NoError(t, err)

	assert.Equal(t, "Mouse Tales", story.Title)
	assert.Equal(t, "AI Storyteller", story.Author)
	assert.Equal(t, "Children's Fiction", story.Genre)
	assert.Equal(t, "5 min", story.Duration)
	assert.True(t, strings.HasPrefix(story.Text, "Once upon a time"))
	assert.Contains(t, story.Text, "Moral: Be brave, even when you are small.")
	assert.Equal(t, "Once upon a time a small mouse set out to see the world.", story.Description)
	assert.Equal(t, "/stories/"+story.ID+"/audio.wav", story.Audio)

	// Аудио реально записано синтезатором
	assert.FileExists(t, filepath.Join(f.publicDir, "stories", story.ID, "audio.wav"))

	f.ai.AssertExpectations(t)
	f.speech.AssertExpectations(t)
}

func TestGenerate_FallbacksWhenFormatIgnored(t *testing.T) {
	f := newGenerationFixture(t)
	// Модель проигнорировала формат: нет ни TITLE, ни STORY, ни MORAL
	f.ai.On("Generate", mock.Anything, mock.Anything).Return("Just a plain blob of text.", nil)
	f.expectSynthesis()

	story, err := f.service.Generate(context.Background(), "the moon")
	require.NoError(t, err)

	assert.Equal(t, "Story about the moon", story.Title)
	assert.Equal(t, "Just a plain blob of text.", story.Text)
	assert.Equal(t, "Just a plain blob of text.", story.Description)
}

func TestGenerate_EmptyTheme(t *testing.T) {
	f := newGenerationFixture(t)

	_, err := f.service.Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrBadRequest)
	f.ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_AIError_NoStoryLeftBehind(t *testing.T) {
	f := newGenerationFixture(t)
	f.ai.On("Generate", mock.Anything, mock.Anything).
		Return("", service.ErrAIUnavailable)

	_, err := f.service.Generate(context.Background(), "dragons")
	assert.ErrorIs(t, err, service.ErrAIUnavailable)
	assert.Empty(t, f.storyDirs(t))
}

func TestGenerate_EmptyAIResponse(t *testing.T) {
	f := newGenerationFixture(t)
	f.ai.On("Generate", mock.Anything, mock.Anything).Return("   \n  ", nil)

	_, err := f.service.Generate(context.Background(), "dragons")
	assert.ErrorIs(t, err, service.ErrAIEmptyResponse)
	assert.Empty(t, f.storyDirs(t))
}

func TestGenerate_SynthesisFailureKeepsStory(t *testing.T) {
	f := newGenerationFixture(t)
	f.ai.On("Generate", mock.Anything, mock.Anything).Return(wellFormedResponse, nil)
	f.speech.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("say: command not found"))

	story, err := f.service.Generate(context.Background(), "dragons")
	require.NoError(t, err)

	// История осталась, аудиофайл пустой
	audioPath := filepath.Join(f.publicDir, "stories", story.ID, "audio.wav")
	info, statErr := os.Stat(audioPath)
	require.NoError(t, statErr)
	assert.Zero(t, info.Size())
}

func TestSynthesizeToTemp(t *testing.T) {
	f := newGenerationFixture(t)
	f.expectSynthesis()

	webPath, err := f.service.SynthesizeToTemp(context.Background(), "Good night, little fox.")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(webPath, "/temp/tts-"))
	assert.True(t, strings.HasSuffix(webPath, ".wav"))
	assert.FileExists(t, filepath.Join(f.publicDir, "temp", strings.TrimPrefix(webPath, "/temp/")))
}

func TestSynthesizeToTemp_EmptyText(t *testing.T) {
	f := newGenerationFixture(t)

	_, err := f.service.SynthesizeToTemp(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestSynthesizeToTemp_SynthesisError(t *testing.T) {
	f := newGenerationFixture(t)
	f.speech.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).
		Return(service.ErrSpeechSynthesis)

	_, err := f.service.SynthesizeToTemp(context.Background(), "Some text")
	assert.ErrorIs(t, err, service.ErrSpeechSynthesis)
}
