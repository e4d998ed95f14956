package minutes

import "strings"

// splitSentences derives the ordered sentence list from cleaned text by
// splitting on sentence-terminal punctuation and discarding empty fragments.
// Order matches the original discourse order.
func splitSentences(text string) []string {
	flat := strings.NewReplacer("\n", " ", "\r", " ").Replace(text)

	parts := strings.FieldsFunc(flat, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
