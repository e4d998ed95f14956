package minutes

import (
	"context"

	"github.com/johnquangdev/minutes-service/internal/domain/entities"
	"github.com/johnquangdev/minutes-service/pkg/jsonrepair"
)

// extraction is the expected provider output shape for the extract stage
type extraction struct {
	ActionItems []entities.ActionItem `json:"action_items"`
	Decisions   []entities.Decision   `json:"decisions"`
}

// extractStage pulls action items and decisions out of the sentence list.
// Chain: primary LLM with up to 3 strengthening retries on parse failure.
// Exhaustion resolves to empty lists. Diarization is a contextual hint for
// owner attribution only, never a required input.
func (s *service) extractStage(ctx context.Context, sentences []string, diarization []entities.DiarizationSegment) ([]entities.ActionItem, []entities.Decision) {
	decode := func(raw string) (extraction, error) {
		var parsed extraction
		if err := jsonrepair.Decode(raw, &parsed); err != nil {
			return extraction{}, err
		}
		return validateExtraction(parsed), nil
	}

	prompt := func(retry int, lastErr error) string {
		return withFormatComplaint(extractPrompt(sentences, diarization), retry, lastErr)
	}

	c := chain[extraction]{
		stage: "extract",
		attempts: []providerAttempt[extraction]{
			{
				provider:         s.primary,
				prompt:           prompt,
				system:           extractSystemPrompt,
				temperature:      0.2,
				maxTokens:        8000,
				parseRetries:     3,
				transientRetries: 2,
				decode:           decode,
			},
		},
		logger: s.logger,
	}

	result, ok := c.run(ctx)
	if !ok {
		return []entities.ActionItem{}, []entities.Decision{}
	}
	return result.ActionItems, result.Decisions
}

// validateExtraction drops invalid entries and enforces the list caps.
// Invalid items are discarded silently, never surfaced as errors.
func validateExtraction(parsed extraction) extraction {
	items := make([]entities.ActionItem, 0, len(parsed.ActionItems))
	for _, item := range parsed.ActionItems {
		if item.Description == "" {
			continue
		}
		items = append(items, item)
		if len(items) == entities.MaxListEntries {
			break
		}
	}

	decisions := make([]entities.Decision, 0, len(parsed.Decisions))
	for _, d := range parsed.Decisions {
		if d.Text == "" {
			continue
		}
		decisions = append(decisions, d)
		if len(decisions) == entities.MaxListEntries {
			break
		}
	}

	return extraction{ActionItems: items, Decisions: decisions}
}
