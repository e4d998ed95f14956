package minutes

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes-service/internal/infrastructure/cache"
	"github.com/johnquangdev/minutes-service/pkg/config"
	"github.com/johnquangdev/minutes-service/pkg/llm"
)

// stubProvider replays a scripted sequence of responses. When the script runs
// out, the last entry repeats.
type stubProvider struct {
	name   string
	script []stubReply

	mu      sync.Mutex
	calls   int
	prompts []string
}

type stubReply struct {
	out string
	err error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(_ context.Context, prompt string, _ llm.GenerateParams) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)
	idx := p.calls
	p.calls++
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	reply := p.script[idx]
	return reply.out, reply.err
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *stubProvider) promptAt(i int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts[i]
}

func providerErr(name string, kind llm.ErrorKind) error {
	return &llm.Error{Kind: kind, Provider: name}
}

// fakeTranscriber satisfies the transcription interface without the network
type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			WorkerPoolSize:  4,
			DefaultLanguage: "en",
			CacheTTL:        time.Hour,
		},
	}
}

func newTestService(primary, secondary llm.Provider, transcriber *fakeTranscriber) *service {
	if transcriber == nil {
		transcriber = &fakeTranscriber{}
	}
	return &service{
		transcriber: transcriber,
		primary:     primary,
		secondary:   secondary,
		pool:        NewPool(4),
		store:       cache.NewMemoryStore(),
		cfg:         testConfig(),
		logger:      zap.NewNop(),
	}
}
