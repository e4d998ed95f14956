package minutes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/minutes-service/errors"
	"github.com/johnquangdev/minutes-service/internal/domain/entities"
	"github.com/johnquangdev/minutes-service/internal/infrastructure/cache"
	"github.com/johnquangdev/minutes-service/internal/infrastructure/external/transcription"
	"github.com/johnquangdev/minutes-service/internal/infrastructure/observability"
	"github.com/johnquangdev/minutes-service/pkg/config"
	"github.com/johnquangdev/minutes-service/pkg/llm"
)

// AudioBlob is an uploaded audio payload held in memory until it is staged
// to a temp file for transcription
type AudioBlob struct {
	Data     []byte
	Filename string
}

// Input is the union of accepted request payloads. Audio wins when both
// audio and transcript are present.
type Input struct {
	Audio      *AudioBlob
	Transcript []byte
	Language   string
}

// Service runs the meeting-minutes pipeline and its individual stages
type Service interface {
	Process(ctx context.Context, input Input) (*entities.MeetingMinutesResult, error)
	Clean(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, text, language string) (entities.StructuredSummary, error)
	Diarize(ctx context.Context, text string) ([]entities.DiarizationSegment, error)
	Extract(ctx context.Context, text string) ([]entities.ActionItem, []entities.Decision, error)
}

type service struct {
	transcriber transcription.Transcriber
	primary     llm.Provider
	secondary   llm.Provider
	pool        *Pool
	store       cache.Store
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService creates the pipeline service
func NewService(
	transcriber transcription.Transcriber,
	primary llm.Provider,
	secondary llm.Provider,
	pool *Pool,
	store cache.Store,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		transcriber: transcriber,
		primary:     primary,
		secondary:   secondary,
		pool:        pool,
		store:       store,
		cfg:         cfg,
		logger:      logger,
	}
}

// Process runs the full pipeline: acquire input text, clean, split into
// sentences, summarize and diarize concurrently, extract, assemble. Stage
// failures degrade to documented defaults; only missing input and
// transcription failure abort the request.
func (s *service) Process(ctx context.Context, input Input) (*entities.MeetingMinutesResult, error) {
	requestID := uuid.New().String()
	language := input.Language
	if language == "" {
		language = s.cfg.Pipeline.DefaultLanguage
	}

	logger := s.logger.With(zap.String("request_id", requestID))

	text, err := s.acquireText(ctx, input, language, logger)
	if err != nil {
		var appErr apperrors.AppError
		if ok := asAppError(err, &appErr); ok && appErr.HTTPCode < 500 {
			observability.RequestsTotal.WithLabelValues("client_error").Inc()
		} else {
			observability.RequestsTotal.WithLabelValues("server_error").Inc()
		}
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		observability.RequestsTotal.WithLabelValues("client_error").Inc()
		return nil, apperrors.ErrNoInputText()
	}

	cacheKey := resultCacheKey(language, text)
	if cached, ok := s.store.Get(ctx, cacheKey); ok {
		var result entities.MeetingMinutesResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			logger.Info("result cache hit")
			observability.RequestsTotal.WithLabelValues("cache_hit").Inc()
			return &result, nil
		}
		// Corrupt entry, drop it and recompute
		s.store.Delete(ctx, cacheKey)
	}

	var cleaned string
	if err := s.pool.Do(ctx, func() {
		cleaned = s.cleanStage(ctx, text)
	}); err != nil {
		observability.RequestsTotal.WithLabelValues("server_error").Inc()
		return nil, apperrors.ErrProcessingFailed(err)
	}

	sentences := splitSentences(cleaned)
	if len(sentences) == 0 {
		// Cleaning stripped the input to nothing: pure filler carries no
		// meaningful content, which is a client error.
		observability.RequestsTotal.WithLabelValues("client_error").Inc()
		return nil, apperrors.ErrNoInputText()
	}

	summary, diarization := s.runParallelStages(ctx, language, cleaned, sentences, logger)

	var actionItems []entities.ActionItem
	var decisions []entities.Decision
	if err := s.pool.Do(ctx, func() {
		actionItems, decisions = s.extractStage(ctx, sentences, diarization)
	}); err != nil {
		observability.RequestsTotal.WithLabelValues("server_error").Inc()
		return nil, apperrors.ErrProcessingFailed(err)
	}

	result := &entities.MeetingMinutesResult{
		Transcript:        cleaned,
		StructuredSummary: summary,
		ActionItems:       actionItems,
		Decisions:         decisions,
		Diarization:       diarization,
	}
	result.Normalize()

	if payload, err := json.Marshal(result); err == nil {
		s.store.Set(ctx, cacheKey, string(payload), s.cfg.Pipeline.CacheTTL)
	}

	logger.Info("pipeline completed",
		zap.Int("sentences", len(sentences)),
		zap.Int("action_items", len(result.ActionItems)),
		zap.Int("decisions", len(result.Decisions)),
		zap.Int("diarization_segments", len(result.Diarization)),
	)
	observability.RequestsTotal.WithLabelValues("completed").Inc()

	return result, nil
}

// runParallelStages executes summarization and diarization concurrently.
// Each branch is isolated: a failure or panic in one substitutes that
// branch's default and never aborts the sibling.
func (s *service) runParallelStages(ctx context.Context, language, cleaned string, sentences []string, logger *zap.Logger) (entities.StructuredSummary, []entities.DiarizationSegment) {
	summaryCh := make(chan entities.StructuredSummary, 1)
	diarizationCh := make(chan []entities.DiarizationSegment, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("summarize stage panicked", zap.Any("panic", r))
				summaryCh <- entities.StructuredSummary{}
			}
		}()
		var summary entities.StructuredSummary
		if err := s.pool.Do(ctx, func() {
			summary, _ = s.summarizeStage(ctx, language, sentences)
		}); err != nil {
			logger.Warn("summarize stage not scheduled", zap.Error(err))
		}
		summaryCh <- summary
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("diarize stage panicked", zap.Any("panic", r))
				diarizationCh <- []entities.DiarizationSegment{}
			}
		}()
		var segments []entities.DiarizationSegment
		if err := s.pool.Do(ctx, func() {
			segments = s.diarizeStage(ctx, cleaned)
		}); err != nil {
			logger.Warn("diarize stage not scheduled", zap.Error(err))
		}
		diarizationCh <- segments
	}()

	summary := <-summaryCh
	diarization := <-diarizationCh
	return summary, diarization
}

// acquireText resolves the input union to transcript text. Audio is staged
// to a temp file, transcribed, and the temp dir removed before returning.
func (s *service) acquireText(ctx context.Context, input Input, language string, logger *zap.Logger) (string, error) {
	if input.Audio != nil && len(input.Audio.Data) > 0 {
		dir, err := os.MkdirTemp("", "minutes-*")
		if err != nil {
			return "", apperrors.ErrTranscriptionFailed(err)
		}
		defer os.RemoveAll(dir)

		name := filepath.Base(input.Audio.Filename)
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = "audio_input"
		}
		audioPath := filepath.Join(dir, name)
		if err := os.WriteFile(audioPath, input.Audio.Data, 0o600); err != nil {
			return "", apperrors.ErrTranscriptionFailed(err)
		}

		logger.Info("transcribing uploaded audio",
			zap.String("filename", name),
			zap.Int("bytes", len(input.Audio.Data)),
		)

		var text string
		var transcribeErr error
		if err := s.pool.Do(ctx, func() {
			text, transcribeErr = s.transcriber.Transcribe(ctx, audioPath, language)
		}); err != nil {
			return "", apperrors.ErrTranscriptionFailed(err)
		}
		if transcribeErr != nil {
			return "", apperrors.ErrTranscriptionFailed(transcribeErr)
		}
		return text, nil
	}

	if len(input.Transcript) > 0 {
		return string(input.Transcript), nil
	}

	return "", apperrors.ErrMissingInput()
}

// Clean runs only the cleaning stage
func (s *service) Clean(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.ErrNoInputText()
	}
	var cleaned string
	if err := s.pool.Do(ctx, func() {
		cleaned = s.cleanStage(ctx, text)
	}); err != nil {
		return "", apperrors.ErrProcessingFailed(err)
	}
	return cleaned, nil
}

// Summarize runs only the summarization stage
func (s *service) Summarize(ctx context.Context, text, language string) (entities.StructuredSummary, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.StructuredSummary{}, apperrors.ErrNoInputText()
	}
	if language == "" {
		language = s.cfg.Pipeline.DefaultLanguage
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return entities.StructuredSummary{}, apperrors.ErrNoInputText()
	}
	var summary entities.StructuredSummary
	if err := s.pool.Do(ctx, func() {
		summary, _ = s.summarizeStage(ctx, language, sentences)
	}); err != nil {
		return entities.StructuredSummary{}, apperrors.ErrProcessingFailed(err)
	}
	if summary.Attendants == nil {
		summary.Attendants = []string{}
	}
	if summary.TableOfContent == nil {
		summary.TableOfContent = []string{}
	}
	return summary, nil
}

// Diarize runs only the diarization stage
func (s *service) Diarize(ctx context.Context, text string) ([]entities.DiarizationSegment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrNoInputText()
	}
	var segments []entities.DiarizationSegment
	if err := s.pool.Do(ctx, func() {
		segments = s.diarizeStage(ctx, text)
	}); err != nil {
		return nil, apperrors.ErrProcessingFailed(err)
	}
	if segments == nil {
		segments = []entities.DiarizationSegment{}
	}
	return segments, nil
}

// Extract runs only the extraction stage
func (s *service) Extract(ctx context.Context, text string) ([]entities.ActionItem, []entities.Decision, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, apperrors.ErrNoInputText()
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, nil, apperrors.ErrNoInputText()
	}
	// Deterministic diarization is cheap and total; its segments feed the
	// prompt as an owner-attribution hint.
	hint := deterministicDiarize(text)
	var items []entities.ActionItem
	var decisions []entities.Decision
	if err := s.pool.Do(ctx, func() {
		items, decisions = s.extractStage(ctx, sentences, hint)
	}); err != nil {
		return nil, nil, apperrors.ErrProcessingFailed(err)
	}
	return items, decisions, nil
}

// resultCacheKey derives a stable cache key from the language and the raw
// transcript text
func resultCacheKey(language, text string) string {
	h := sha256.New()
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "minutes:result:" + hex.EncodeToString(h.Sum(nil))
}

func asAppError(err error, target *apperrors.AppError) bool {
	if appErr, ok := err.(apperrors.AppError); ok {
		*target = appErr
		return true
	}
	return false
}
