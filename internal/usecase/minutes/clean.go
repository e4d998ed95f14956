package minutes

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// cleanStage normalizes the raw transcript. Chain: primary LLM, secondary LLM,
// deterministic pattern cleanup. The deterministic tail makes the stage total.
func (s *service) cleanStage(ctx context.Context, text string) string {
	decode := func(raw string) (string, error) {
		out := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "`"))
		if out == "" {
			return "", fmt.Errorf("empty cleaning response")
		}
		return out, nil
	}

	prompt := func(int, error) string { return cleanPrompt(text) }

	c := chain[string]{
		stage: "clean",
		attempts: []providerAttempt[string]{
			{
				provider:         s.primary,
				prompt:           prompt,
				system:           cleanSystemPrompt,
				temperature:      0.1,
				maxTokens:        8000,
				transientRetries: 2,
				decode:           decode,
			},
			{
				provider:         s.secondary,
				prompt:           prompt,
				system:           cleanSystemPrompt,
				temperature:      0.1,
				maxTokens:        8000,
				transientRetries: 2,
				decode:           decode,
			},
		},
		fallback: func() string { return deterministicClean(text) },
		logger:   s.logger,
	}

	cleaned, _ := c.run(ctx)
	return cleaned
}

// Only clear hesitations are removed; when in doubt, the word stays.
var (
	enFillerRe = regexp.MustCompile(`(?i)\b(?:uh|um|ah|eh|er|hmm|oh|you know|i mean|kind of|sort of|like actually)\b`)
	vnFillerRe = regexp.MustCompile(`(?i)(^|\s)(?:ừ|ờ|à|ạ|nhé|nhá)($|[\s.,!?;:])`)

	whitespaceRe      = regexp.MustCompile(`\s+`)
	punctSpacingRe    = regexp.MustCompile(`\s*([.,;:!?])\s*`)
	duplicatePunctRe  = regexp.MustCompile(`([.,;:!?])(?:\s*[,;:])+`)
	leadingPunctRe    = regexp.MustCompile(`^[\s.,;:!?]+`)
	spaceBeforeStopRe = regexp.MustCompile(`\s+([.!?])`)
)

// deterministicClean removes a fixed filler-word list via word-boundary
// matching and normalizes whitespace and punctuation. It never fails; it can
// return an empty string only when the input was entirely filler.
func deterministicClean(text string) string {
	if text == "" {
		return ""
	}

	out := whitespaceRe.ReplaceAllString(text, " ")
	out = strings.TrimSpace(out)

	out = enFillerRe.ReplaceAllString(out, "")
	// Run twice so adjacent fillers sharing one separator are both caught
	out = vnFillerRe.ReplaceAllString(out, "$1$2")
	out = vnFillerRe.ReplaceAllString(out, "$1$2")

	out = punctSpacingRe.ReplaceAllString(out, "$1 ")
	out = duplicatePunctRe.ReplaceAllString(out, "$1")
	out = leadingPunctRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(out, " ")
	out = spaceBeforeStopRe.ReplaceAllString(out, "$1")
	out = strings.TrimSpace(out)

	out = capitalizeSentences(out)

	if out != "" && !strings.ContainsRune(".!?", rune(out[len(out)-1])) {
		out += "."
	}
	return out
}

// capitalizeSentences uppercases the first letter after each sentence stop
func capitalizeSentences(text string) string {
	runes := []rune(text)
	atStart := true
	for i, r := range runes {
		switch {
		case atStart && unicode.IsLetter(r):
			runes[i] = unicode.ToUpper(r)
			atStart = false
		case r == '.' || r == '!' || r == '?':
			atStart = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			atStart = false
		}
	}
	return string(runes)
}
