package minutes

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/minutes-service/pkg/llm"
)

func identityDecode(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("empty response")
	}
	return raw, nil
}

func plainPrompt(string) func(int, error) string {
	return func(int, error) string { return "prompt" }
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{{out: "ok"}}}
	secondary := &stubProvider{name: "gemini", script: []stubReply{{out: "never"}}}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), decode: identityDecode},
			{provider: secondary, prompt: plainPrompt(""), decode: identityDecode},
		},
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 0, secondary.callCount())
}

func TestChain_AuthErrorAdvancesWithoutRetry(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{{err: providerErr("groq", llm.KindAuth)}}}
	secondary := &stubProvider{name: "gemini", script: []stubReply{{out: "backup"}}}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), parseRetries: 3, transientRetries: 2, decode: identityDecode},
			{provider: secondary, prompt: plainPrompt(""), decode: identityDecode},
		},
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, "backup", out)
	// Auth failures burn exactly one call on the failing provider
	assert.Equal(t, 1, primary.callCount())
}

func TestChain_RateLimitAdvancesChain(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{{err: providerErr("groq", llm.KindRateLimited)}}}
	secondary := &stubProvider{name: "gemini", script: []stubReply{{out: "backup"}}}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), transientRetries: 2, decode: identityDecode},
			{provider: secondary, prompt: plainPrompt(""), decode: identityDecode},
		},
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, "backup", out)
	assert.Equal(t, 1, primary.callCount())
}

func TestChain_TransientErrorRetriedBounded(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{
		{err: providerErr("groq", llm.KindTransient)},
		{err: providerErr("groq", llm.KindTransient)},
		{out: "recovered"},
	}}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), transientRetries: 2, decode: identityDecode},
		},
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 3, primary.callCount())
}

func TestChain_TransientBudgetExhaustedAdvances(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{
		{err: providerErr("groq", llm.KindTransient)},
	}}
	secondary := &stubProvider{name: "gemini", script: []stubReply{{out: "backup"}}}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), transientRetries: 2, decode: identityDecode},
			{provider: secondary, prompt: plainPrompt(""), decode: identityDecode},
		},
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, "backup", out)
	// Initial call plus two bounded retries
	assert.Equal(t, 3, primary.callCount())
}

func TestChain_ParseRetryStrengthensPrompt(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{
		{out: "not json at all"},
		{out: `{"a": 1}`},
	}}

	decodeJSON := func(raw string) (string, error) {
		if !strings.HasPrefix(raw, "{") {
			return "", fmt.Errorf("not valid JSON")
		}
		return raw, nil
	}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{
				provider: primary,
				prompt: func(retry int, lastErr error) string {
					return withFormatComplaint("base prompt", retry, lastErr)
				},
				parseRetries: 2,
				decode:       decodeJSON,
			},
		},
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, out)
	require.Equal(t, 2, primary.callCount())

	assert.Equal(t, "base prompt", primary.promptAt(0))
	retryPrompt := primary.promptAt(1)
	assert.Contains(t, retryPrompt, "base prompt")
	assert.Contains(t, retryPrompt, "not valid JSON")
	assert.Contains(t, retryPrompt, "valid JSON only")
}

func TestChain_DeterministicFallbackIsTotal(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{{err: providerErr("groq", llm.KindAuth)}}}
	secondary := &stubProvider{name: "gemini", script: []stubReply{{err: providerErr("gemini", llm.KindAuth)}}}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), decode: identityDecode},
			{provider: secondary, prompt: plainPrompt(""), decode: identityDecode},
		},
		fallback: func() string { return "deterministic" },
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, "deterministic", out)
}

func TestChain_ExhaustionWithoutFallback(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{{err: providerErr("groq", llm.KindQuotaExceeded)}}}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), decode: identityDecode},
		},
	}

	out, ok := c.run(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "", out)
}

func TestChain_NilProvidersSkipped(t *testing.T) {
	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: nil, prompt: plainPrompt(""), decode: identityDecode},
			{provider: nil, prompt: plainPrompt(""), decode: identityDecode},
		},
		fallback: func() string { return "deterministic" },
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, "deterministic", out)
}

func TestChain_ParseRetriesExhaustedAdvances(t *testing.T) {
	primary := &stubProvider{name: "groq", script: []stubReply{{out: "garbage"}}}
	secondary := &stubProvider{name: "gemini", script: []stubReply{{out: `{"a": 1}`}}}

	decodeJSON := func(raw string) (string, error) {
		if !strings.HasPrefix(raw, "{") {
			return "", fmt.Errorf("not valid JSON")
		}
		return raw, nil
	}

	c := chain[string]{
		stage: "test",
		attempts: []providerAttempt[string]{
			{provider: primary, prompt: plainPrompt(""), parseRetries: 2, decode: decodeJSON},
			{provider: secondary, prompt: plainPrompt(""), decode: decodeJSON},
		},
	}

	out, ok := c.run(context.Background())
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, out)
	// Base attempt plus two parse retries before advancing
	assert.Equal(t, 3, primary.callCount())
}
