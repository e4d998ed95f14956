package transcription

import (
	"context"
	"fmt"
	"os"
	"sync"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes-service/pkg/config"
)

// AssemblyAITranscriber wraps the official SDK client. The client is built
// lazily on first use and reused for the life of the process, so service
// startup never pays the initialization cost for text-only traffic.
type AssemblyAITranscriber struct {
	cfg    *config.Config
	logger *zap.Logger

	once    sync.Once
	client  *aai.Client
	initErr error
}

// NewAssemblyAITranscriber creates the adapter without touching the network
func NewAssemblyAITranscriber(cfg *config.Config, logger *zap.Logger) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{cfg: cfg, logger: logger}
}

func (t *AssemblyAITranscriber) ensureClient() error {
	t.once.Do(func() {
		if t.cfg.Transcription.APIKey == "" {
			t.initErr = fmt.Errorf("assemblyai api key not configured")
			return
		}
		t.client = aai.NewClient(t.cfg.Transcription.APIKey)
		if t.logger != nil {
			t.logger.Info("transcription client initialized",
				zap.String("speech_model", t.cfg.Transcription.SpeechModel),
			)
		}
	})
	return t.initErr
}

// Transcribe uploads the audio file and blocks until the transcript is ready.
// Any failure is returned to the caller unchanged: transcription has no
// degraded mode.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	if err := t.ensureClient(); err != nil {
		return "", err
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	params := &aai.TranscriptOptionalParams{
		SpeechModel: aai.SpeechModel(t.cfg.Transcription.SpeechModel),
	}
	if language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(language)
	}

	transcript, err := t.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", fmt.Errorf("transcription failed: %s", msg)
	}
	if transcript.Text == nil {
		return "", fmt.Errorf("transcription returned no text")
	}

	if t.logger != nil {
		t.logger.Info("transcription completed",
			zap.String("language", language),
			zap.Int("chars", len(*transcript.Text)),
		)
	}

	return *transcript.Text, nil
}
