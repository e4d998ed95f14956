package minutes

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/minutes-service/errors"
	"github.com/johnquangdev/minutes-service/pkg/llm"
)

// routerProvider answers by stage, keyed on the prompt prefix, so the
// concurrent summarize and diarize branches stay deterministic
type routerProvider struct {
	name string

	mu     sync.Mutex
	byKind map[string]int
}

func newRouterProvider(name string) *routerProvider {
	return &routerProvider{name: name, byKind: make(map[string]int)}
}

func (p *routerProvider) Name() string { return p.name }

func (p *routerProvider) Generate(_ context.Context, prompt string, _ llm.GenerateParams) (string, error) {
	var kind, out string
	switch {
	case strings.HasPrefix(prompt, "Clean the following"):
		kind = "clean"
		out = "We need to finalize the budget by Friday. John said he will send the report."
	case strings.HasPrefix(prompt, "Language:"):
		kind = "summarize"
		out = validSummaryJSON
	case strings.HasPrefix(prompt, "Transcript:"):
		kind = "diarize"
		out = `[{"speaker": "John", "text": "I will send the report."}, {"speaker": "Mary", "text": "Budget is due Friday."}]`
	default:
		kind = "extract"
		out = `{
			"action_items": [{"description": "Send the report", "owner": "John", "due_date": "Friday", "priority": "high"}],
			"decisions": [{"text": "Finalize the budget by Friday"}]
		}`
	}

	p.mu.Lock()
	p.byKind[kind]++
	p.mu.Unlock()
	return out, nil
}

func (p *routerProvider) countFor(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byKind[kind]
}

func (p *routerProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.byKind {
		total += n
	}
	return total
}

func TestProcess_TranscriptHappyPath(t *testing.T) {
	provider := newRouterProvider("groq")
	s := newTestService(provider, nil, nil)

	result, err := s.Process(context.Background(), Input{
		Transcript: []byte("Um, we need to finalize the budget by Friday. Uh, John said he will send the report."),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Contains(t, result.Transcript, "finalize the budget by Friday")
	assert.Equal(t, "Budget Review", result.StructuredSummary.Title)
	require.Len(t, result.ActionItems, 1)
	assert.Equal(t, "John", result.ActionItems[0].Owner)
	require.Len(t, result.Decisions, 1)
	require.Len(t, result.Diarization, 2)

	// Every stage ran exactly once
	assert.Equal(t, 1, provider.countFor("clean"))
	assert.Equal(t, 1, provider.countFor("summarize"))
	assert.Equal(t, 1, provider.countFor("diarize"))
	assert.Equal(t, 1, provider.countFor("extract"))
}

func TestProcess_EmptyTranscript(t *testing.T) {
	s := newTestService(newRouterProvider("groq"), nil, nil)

	_, err := s.Process(context.Background(), Input{Transcript: []byte("   \n  ")})
	require.Error(t, err)

	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_NO_INPUT_TEXT, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestProcess_NoInputAtAll(t *testing.T) {
	s := newTestService(newRouterProvider("groq"), nil, nil)

	_, err := s.Process(context.Background(), Input{})
	require.Error(t, err)

	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_NO_INPUT_TEXT, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestProcess_AllProvidersDownStillCompletes(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{{err: providerErr("groq", llm.KindAuth)}}}
	secondary := &stubProvider{name: "gemini", script: []stubReply{{err: providerErr("gemini", llm.KindAuth)}}}
	s := newTestService(primary, secondary, nil)

	result, err := s.Process(context.Background(), Input{
		Transcript: []byte("Um, the budget is due Friday. John sends the report."),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Deterministic cleaning still removed the filler
	assert.NotContains(t, strings.ToLower(result.Transcript), "um")
	// Summary degrades to the zero value, diarization stays total
	assert.True(t, result.StructuredSummary.IsZero())
	assert.NotEmpty(t, result.Diarization)
	// Extraction degrades to empty, non-nil lists
	assert.NotNil(t, result.ActionItems)
	assert.Empty(t, result.ActionItems)
	assert.NotNil(t, result.Decisions)
	assert.Empty(t, result.Decisions)
}

func TestProcess_NoProvidersConfigured(t *testing.T) {
	// Deterministic tiers alone carry the request end to end
	s := newTestService(nil, nil, nil)

	result, err := s.Process(context.Background(), Input{
		Transcript: []byte("Um, we need to finalize the budget by Friday. John said he will send the report."),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotContains(t, result.Transcript, "Um")
	assert.Contains(t, result.Transcript, "finalize the budget by Friday")
	assert.NotEmpty(t, result.Diarization)
	assert.True(t, result.StructuredSummary.IsZero())
	assert.NotNil(t, result.ActionItems)
	assert.NotNil(t, result.Decisions)
}

func TestProcess_AudioInput(t *testing.T) {
	provider := newRouterProvider("groq")
	transcriber := &fakeTranscriber{text: "The budget is due Friday. John sends the report."}
	s := newTestService(provider, nil, transcriber)

	result, err := s.Process(context.Background(), Input{
		Audio: &AudioBlob{Data: []byte("fake-audio-bytes"), Filename: "meeting.mp3"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Transcript)
	assert.Equal(t, 1, provider.countFor("clean"))
}

func TestProcess_AudioPreferredOverTranscript(t *testing.T) {
	provider := newRouterProvider("groq")
	transcriber := &fakeTranscriber{text: "Audio transcript content here."}
	s := newTestService(provider, nil, transcriber)

	result, err := s.Process(context.Background(), Input{
		Audio:      &AudioBlob{Data: []byte("bytes"), Filename: "a.wav"},
		Transcript: []byte("Text transcript that should be ignored."),
	})
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestProcess_TranscriptionFailureIsHard(t *testing.T) {
	transcriber := &fakeTranscriber{err: stdErrors.New("upstream 500")}
	s := newTestService(newRouterProvider("groq"), nil, transcriber)

	_, err := s.Process(context.Background(), Input{
		Audio: &AudioBlob{Data: []byte("bytes"), Filename: "a.wav"},
	})
	require.Error(t, err)

	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_TRANSCRIPTION_FAILED, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode)
}

func TestProcess_ResultCached(t *testing.T) {
	provider := newRouterProvider("groq")
	s := newTestService(provider, nil, nil)

	input := Input{Transcript: []byte("The budget is due Friday. John sends the report.")}

	first, err := s.Process(context.Background(), input)
	require.NoError(t, err)
	callsAfterFirst := provider.totalCalls()

	second, err := s.Process(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, provider.totalCalls(), "second run must be served from cache")
	assert.Equal(t, first, second)
}

func TestProcess_LanguageChangesCacheKey(t *testing.T) {
	provider := newRouterProvider("groq")
	s := newTestService(provider, nil, nil)

	input := Input{Transcript: []byte("The budget is due Friday.")}

	_, err := s.Process(context.Background(), input)
	require.NoError(t, err)
	callsAfterFirst := provider.totalCalls()

	input.Language = "vi"
	_, err = s.Process(context.Background(), input)
	require.NoError(t, err)

	assert.Greater(t, provider.totalCalls(), callsAfterFirst)
}

func TestClean_EmptyText(t *testing.T) {
	s := newTestService(newRouterProvider("groq"), nil, nil)
	_, err := s.Clean(context.Background(), "  ")
	require.Error(t, err)

	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_NO_INPUT_TEXT, appErr.Code)
}

func TestSummarize_DefaultLanguage(t *testing.T) {
	provider := newRouterProvider("groq")
	s := newTestService(provider, nil, nil)

	summary, err := s.Summarize(context.Background(), "The budget is due Friday.", "")
	require.NoError(t, err)
	assert.Equal(t, "Budget Review", summary.Title)
}

func TestDiarize_SingleStage(t *testing.T) {
	provider := newRouterProvider("groq")
	s := newTestService(provider, nil, nil)

	segments, err := s.Diarize(context.Background(), "John: hello. Mary: hi.")
	require.NoError(t, err)
	assert.NotEmpty(t, segments)
}

func TestProcess_AllFillerInputRejected(t *testing.T) {
	// Cleaning strips pure filler to nothing; that is a client error, not an
	// empty success
	s := newTestService(nil, nil, nil)

	_, err := s.Process(context.Background(), Input{Transcript: []byte("Um uh er hmm.")})
	require.Error(t, err)

	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_NO_INPUT_TEXT, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestExtract_SingleStage(t *testing.T) {
	provider := newRouterProvider("groq")
	s := newTestService(provider, nil, nil)

	items, decisions, err := s.Extract(context.Background(), "John will send the report.")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, decisions, 1)
}

func TestExtract_SingleStageCarriesSpeakerHint(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{
		{out: `{"action_items": [], "decisions": []}`},
	}}
	s := newTestService(primary, nil, nil)

	_, _, err := s.Extract(context.Background(), "Speaker 1: We ship Monday.\nSpeaker 2: QA needs two days.")
	require.NoError(t, err)

	require.Equal(t, 1, primary.callCount())
	prompt := primary.promptAt(0)
	assert.Contains(t, prompt, "Speaker turns:")
	assert.Contains(t, prompt, "Speaker 1: We ship Monday.")
	assert.Contains(t, prompt, "Speaker 2: QA needs two days.")
}
