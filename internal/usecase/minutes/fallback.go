package minutes

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes-service/internal/infrastructure/observability"
	"github.com/johnquangdev/minutes-service/pkg/llm"
)

// providerAttempt is one provider-backed entry in a fallback chain
type providerAttempt[T any] struct {
	provider llm.Provider

	// prompt builds the user prompt for the given retry; retry > 0 means the
	// previous response failed to decode and lastErr carries the reason, so
	// the prompt should complain and tighten the format instructions.
	prompt func(retry int, lastErr error) string

	system      string
	temperature float64
	maxTokens   int

	// parseRetries is the number of extra same-provider attempts allowed
	// after a decode failure
	parseRetries int

	// transientRetries bounds same-provider retries on transient network
	// errors before the chain advances
	transientRetries uint64

	// decode validates and converts the raw model output; a decode error
	// triggers a strengthened-prompt retry, never a panic
	decode func(raw string) (T, error)
}

// chain is the fallback executor: an ordered list of provider attempts with an
// optional deterministic terminal attempt. run never returns an error — it
// yields either a decoded provider value, the deterministic result, or the
// zero value with ok=false when a chain without a deterministic tail is
// exhausted.
type chain[T any] struct {
	stage    string
	attempts []providerAttempt[T]

	// fallback is the deterministic terminal attempt; it cannot fail and is
	// always last
	fallback func() T

	logger *zap.Logger
}

func (c *chain[T]) run(ctx context.Context) (T, bool) {
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues(c.stage).Observe(time.Since(start).Seconds())
	}()

	for _, attempt := range c.attempts {
		if attempt.provider == nil {
			continue
		}
		if val, ok := c.runProvider(ctx, attempt); ok {
			observability.StageOutcomes.WithLabelValues(c.stage, attempt.provider.Name()).Inc()
			return val, true
		}
	}

	if c.fallback != nil {
		observability.StageOutcomes.WithLabelValues(c.stage, "deterministic").Inc()
		return c.fallback(), true
	}

	observability.StageOutcomes.WithLabelValues(c.stage, "exhausted").Inc()
	if c.logger != nil {
		c.logger.Warn("stage exhausted all attempts, using default value",
			zap.String("stage", c.stage),
		)
	}
	var zero T
	return zero, false
}

// runProvider drives one provider attempt through its transient-retry and
// parse-retry budgets. ok=false advances the chain.
func (c *chain[T]) runProvider(ctx context.Context, attempt providerAttempt[T]) (T, bool) {
	var zero T
	var lastParseErr error

	for try := 0; try <= attempt.parseRetries; try++ {
		prompt := attempt.prompt(try, lastParseErr)

		raw, err := c.generate(ctx, attempt, prompt)
		if err != nil {
			kind, _ := llm.KindOf(err)
			if c.logger != nil {
				c.logger.Warn("provider attempt failed, advancing chain",
					zap.String("stage", c.stage),
					zap.String("provider", attempt.provider.Name()),
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
			}
			// Auth, quota, and rate-limit failures are never retried against
			// the same provider within one stage invocation.
			return zero, false
		}

		val, derr := attempt.decode(raw)
		if derr == nil {
			return val, true
		}
		lastParseErr = derr

		if c.logger != nil {
			c.logger.Warn("provider output failed to decode",
				zap.String("stage", c.stage),
				zap.String("provider", attempt.provider.Name()),
				zap.Int("retry", try),
				zap.Error(derr),
			)
		}
	}
	return zero, false
}

// generate calls the provider, retrying only transient network errors a small
// bounded number of times
func (c *chain[T]) generate(ctx context.Context, attempt providerAttempt[T], prompt string) (string, error) {
	params := llm.GenerateParams{
		SystemInstruction: attempt.system,
		Temperature:       attempt.temperature,
		MaxOutputTokens:   attempt.maxTokens,
	}

	var raw string
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	err := backoff.Retry(func() error {
		out, err := attempt.provider.Generate(ctx, prompt, params)
		if err != nil {
			if kind, ok := llm.KindOf(err); ok && kind == llm.KindTransient {
				return err
			}
			return backoff.Permanent(err)
		}
		raw = out
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, attempt.transientRetries), ctx))

	return raw, err
}
