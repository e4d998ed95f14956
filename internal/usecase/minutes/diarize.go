package minutes

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/johnquangdev/minutes-service/internal/domain/entities"
	"github.com/johnquangdev/minutes-service/pkg/jsonrepair"
)

// diarizeStage attributes transcript spans to speakers. Chain: primary LLM,
// secondary LLM, deterministic pattern detection with a chunking tail. The
// final tiers cannot fail, so the stage always yields a non-empty result.
func (s *service) diarizeStage(ctx context.Context, text string) []entities.DiarizationSegment {
	decode := func(raw string) ([]entities.DiarizationSegment, error) {
		var parsed []entities.DiarizationSegment
		if err := jsonrepair.Decode(raw, &parsed); err != nil {
			return nil, err
		}
		segments := make([]entities.DiarizationSegment, 0, len(parsed))
		for _, seg := range parsed {
			if strings.TrimSpace(seg.Text) == "" {
				continue
			}
			if seg.Speaker == "" {
				seg.Speaker = "Speaker 1"
			}
			segments = append(segments, seg)
		}
		if len(segments) == 0 {
			return nil, fmt.Errorf("no usable segments in response")
		}
		return segments, nil
	}

	prompt := func(retry int, lastErr error) string {
		return withFormatComplaint(diarizePrompt(text), retry, lastErr)
	}

	c := chain[[]entities.DiarizationSegment]{
		stage: "diarize",
		attempts: []providerAttempt[[]entities.DiarizationSegment]{
			{
				provider:         s.primary,
				prompt:           prompt,
				system:           diarizeSystemPrompt,
				temperature:      0.2,
				maxTokens:        8000,
				parseRetries:     1,
				transientRetries: 2,
				decode:           decode,
			},
			{
				provider:         s.secondary,
				prompt:           prompt,
				system:           diarizeSystemPrompt,
				temperature:      0.2,
				maxTokens:        8000,
				parseRetries:     1,
				transientRetries: 2,
				decode:           decode,
			},
		},
		fallback: func() []entities.DiarizationSegment { return deterministicDiarize(text) },
		logger:   s.logger,
	}

	segments, _ := c.run(ctx)
	return segments
}

// Common speaker indicators in meeting transcripts
var speakerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Speaker\s*\d+`),
	regexp.MustCompile(`(?i)Người\s+nói\s*\d+`),
	regexp.MustCompile(`(?i)Person\s*\d+`),
	regexp.MustCompile(`\bP\d+\b`),
	regexp.MustCompile(`\bS\d+\b`),
	regexp.MustCompile(`Mr\.?\s+\p{L}+`),
	regexp.MustCompile(`Ms\.?\s+\p{L}+`),
	regexp.MustCompile(`Mrs\.?\s+\p{L}+`),
	regexp.MustCompile(`Anh\s+\p{L}+`),
	regexp.MustCompile(`Chị\s+\p{L}+`),
	regexp.MustCompile(`Ông\s+\p{L}+`),
	regexp.MustCompile(`Bà\s+\p{L}+`),
}

// deterministicDiarize scans for speaker indicators line by line; when none
// appear it falls through to distributing sentences over placeholder labels.
// Total: never returns an empty result for non-empty input.
func deterministicDiarize(text string) []entities.DiarizationSegment {
	if strings.TrimSpace(text) == "" {
		return []entities.DiarizationSegment{}
	}

	var segments []entities.DiarizationSegment
	currentSpeaker := "Speaker 1"
	var currentText string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var found string
		for _, pattern := range speakerPatterns {
			if m := pattern.FindString(line); m != "" {
				found = m
				break
			}
		}

		if found != "" {
			if strings.TrimSpace(currentText) != "" {
				segments = append(segments, entities.DiarizationSegment{
					Speaker: currentSpeaker,
					Text:    strings.TrimSpace(currentText),
				})
			}
			currentSpeaker = found
			rest := strings.TrimPrefix(line, found)
			rest = strings.TrimPrefix(rest, ":")
			currentText = strings.TrimSpace(rest)
		} else if currentText != "" {
			currentText += " " + line
		} else {
			currentText = line
		}
	}
	if strings.TrimSpace(currentText) != "" {
		segments = append(segments, entities.DiarizationSegment{
			Speaker: currentSpeaker,
			Text:    strings.TrimSpace(currentText),
		})
	}

	if len(segments) > 0 {
		return segments
	}
	return chunkBySentence(text)
}

// chunkBySentence assigns sentences round-robin to placeholder speakers
func chunkBySentence(text string) []entities.DiarizationSegment {
	sentences := splitSentences(text)
	if len(sentences) <= 1 {
		return []entities.DiarizationSegment{{Speaker: "Speaker 1", Text: strings.TrimSpace(text)}}
	}

	speakers := []string{"Speaker 1", "Speaker 2", "Speaker 3"}
	segments := make([]entities.DiarizationSegment, 0, len(sentences))
	for i, sentence := range sentences {
		segments = append(segments, entities.DiarizationSegment{
			Speaker: speakers[i%len(speakers)],
			Text:    sentence,
		})
	}
	return segments
}
