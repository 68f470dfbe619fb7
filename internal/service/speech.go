package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"storyteller-server/internal/config"
)

// ErrSpeechSynthesis - ошибка синтеза речи внешней командой.
var ErrSpeechSynthesis = errors.New("speech synthesis failed")

// Synthesizer озвучивает текст в аудиофайл по указанному пути.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// CommandSynthesizer запускает внешнюю команду озвучки и конвертер формата.
// По умолчанию это macOS say + afconvert: say пишет AIFF, afconvert
// переводит его в WAV PCM 16-bit 44.1kHz.
type CommandSynthesizer struct {
	speakCommand   string
	convertCommand string
	timeout        time.Duration
	logger         *zap.Logger
}

func NewCommandSynthesizer(cfg *config.Config, logger *zap.Logger) *CommandSynthesizer {
	return &CommandSynthesizer{
		speakCommand:   cfg.TTSSpeakCommand,
		convertCommand: cfg.TTSConvertCommand,
		timeout:        cfg.TTSTimeout,
		logger:         logger.Named("synthesizer"),
	}
}

func (s *CommandSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Текст передаём команде через временный файл: истории длиннее,
	// чем позволяет командная строка.
	stamp := time.Now().UnixNano()
	textPath := filepath.Join(os.TempDir(), fmt.Sprintf("tts_%d.txt", stamp))
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write temp text file: %v", ErrSpeechSynthesis, err)
	}
	defer os.Remove(textPath)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create output dir: %v", ErrSpeechSynthesis, err)
	}

	aiffPath := filepath.Join(os.TempDir(), fmt.Sprintf("tts_%d.aiff", stamp))
	defer os.Remove(aiffPath)

	startTime := time.Now()
	s.logger.Debug("Running speech synthesis",
		zap.String("command", s.speakCommand),
		zap.Int("textChars", len(text)),
		zap.String("output", outputPath))

	speak := exec.CommandContext(runCtx, s.speakCommand, "-f", textPath, "-o", aiffPath)
	if out, err := speak.CombinedOutput(); err != nil {
		ttsFailuresTotal.Inc()
		s.logger.Error("Speech command failed", zap.Error(err), zap.ByteString("output", out))
		return fmt.Errorf("%w: %s: %v", ErrSpeechSynthesis, s.speakCommand, err)
	}

	convert := exec.CommandContext(runCtx, s.convertCommand, "-f", "WAVE", "-d", "LEI16@44100", aiffPath, outputPath)
	if out, err := convert.CombinedOutput(); err != nil {
		ttsFailuresTotal.Inc()
		s.logger.Error("Audio conversion failed", zap.Error(err), zap.ByteString("output", out))
		return fmt.Errorf("%w: %s: %v", ErrSpeechSynthesis, s.convertCommand, err)
	}

	// Команды могли отработать без кода ошибки, но не создать файл
	if _, err := os.Stat(outputPath); err != nil {
		ttsFailuresTotal.Inc()
		return fmt.Errorf("%w: output file was not created: %v", ErrSpeechSynthesis, err)
	}

	ttsDuration.Observe(time.Since(startTime).Seconds())
	s.logger.Info("Audio file created",
		zap.String("output", outputPath),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}
