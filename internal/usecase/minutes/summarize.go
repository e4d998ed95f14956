package minutes

import (
	"context"
	"fmt"

	"github.com/johnquangdev/minutes-service/internal/domain/entities"
	"github.com/johnquangdev/minutes-service/pkg/jsonrepair"
)

// summarizeStage builds the structured summary. Chain: primary LLM, secondary
// LLM, no deterministic tail. Exhaustion resolves to the zero-value summary,
// which is a valid state of the final response, not an error.
func (s *service) summarizeStage(ctx context.Context, language string, sentences []string) (entities.StructuredSummary, bool) {
	decode := func(raw string) (entities.StructuredSummary, error) {
		var summary entities.StructuredSummary
		if err := jsonrepair.Decode(raw, &summary); err != nil {
			return entities.StructuredSummary{}, err
		}
		// A summary without main content is treated as malformed so the
		// caller never sees a partially populated shape.
		if summary.MainContent == "" {
			return entities.StructuredSummary{}, fmt.Errorf("missing main_content in response")
		}
		if summary.Attendants == nil {
			summary.Attendants = []string{}
		}
		if summary.TableOfContent == nil {
			summary.TableOfContent = []string{}
		}
		return summary, nil
	}

	prompt := func(retry int, lastErr error) string {
		return withFormatComplaint(summaryPrompt(language, sentences), retry, lastErr)
	}

	c := chain[entities.StructuredSummary]{
		stage: "summarize",
		attempts: []providerAttempt[entities.StructuredSummary]{
			{
				provider:         s.primary,
				prompt:           prompt,
				system:           summarySystemPrompt,
				temperature:      0.3,
				maxTokens:        8000,
				parseRetries:     2,
				transientRetries: 2,
				decode:           decode,
			},
			{
				provider:         s.secondary,
				prompt:           prompt,
				system:           summarySystemPrompt,
				temperature:      0.3,
				maxTokens:        8000,
				parseRetries:     2,
				transientRetries: 2,
				decode:           decode,
			},
		},
		logger: s.logger,
	}

	return c.run(ctx)
}
