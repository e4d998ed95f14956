package minutes

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/minutes-service/internal/domain/entities"
)

const cleanSystemPrompt = "You clean raw meeting transcripts. Remove hesitation " +
	"filler words and normalize whitespace and punctuation. Preserve every name, " +
	"date, numeral and technical term verbatim. Reply with the cleaned text only, " +
	"no commentary."

const summarySystemPrompt = "You are an AI assistant specialized in creating structured meeting minutes. " +
	"Based on the meeting content, extract and organize the following information:\n\n" +
	"1. TITLE: Create a clear, descriptive title for the meeting\n" +
	"2. DATE & TIME: Extract date and time if mentioned, or use 'To be determined' if not found\n" +
	"3. ATTENDANTS: List all people mentioned as participants, speakers, or attendees\n" +
	"4. PROJECT NAME: Identify the project name or topic being discussed\n" +
	"5. CUSTOMER: Identify the customer or client if mentioned\n" +
	"6. TABLE OF CONTENT: Create a structured outline of main topics discussed\n" +
	"7. MAIN CONTENT: Provide a comprehensive summary of the meeting content (200-500 words)\n\n" +
	"Format your response as a JSON object with these exact keys: title, date, time, " +
	"attendants, project_name, customer, table_of_content, main_content."

const diarizeSystemPrompt = "You attribute meeting transcript spans to speakers. " +
	"Use names or role labels when the text reveals them, otherwise generic labels " +
	"like \"Speaker 1\". Return a JSON array of objects with exact keys: speaker, text. " +
	"Cover the whole transcript in original order."

const extractSystemPrompt = "Extract decisions and action items from the meeting content.\n" +
	"Return strict JSON with keys: decisions (array of {text, owner?}), " +
	"action_items (array of {description, owner?, due_date?, priority?})."

func cleanPrompt(text string) string {
	return "Clean the following meeting transcript:\n\n" + text
}

func summaryPrompt(language string, sentences []string) string {
	return fmt.Sprintf("Language: %s.\n\nContent:\n%s", language, strings.Join(sentences, "\n"))
}

func diarizePrompt(text string) string {
	return "Transcript:\n" + text
}

func extractPrompt(sentences []string, diarization []entities.DiarizationSegment) string {
	var sb strings.Builder
	sb.WriteString("Content:\n")
	sb.WriteString(strings.Join(sentences, "\n"))
	if len(diarization) > 0 {
		// Speaker turns are a hint for owner attribution only
		sb.WriteString("\n\nSpeaker turns:\n")
		for _, seg := range diarization {
			sb.WriteString(seg.Speaker)
			sb.WriteString(": ")
			sb.WriteString(seg.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// withFormatComplaint strengthens a structured-output prompt after a decode
// failure: it quotes the failure and restates the format rules. Retry 0 is the
// base prompt unchanged.
func withFormatComplaint(base string, retry int, lastErr error) string {
	if retry == 0 || lastErr == nil {
		return base
	}
	return base + fmt.Sprintf(
		"\n\nYour previous response was not valid JSON (%v). "+
			"Respond with valid JSON only: no markdown fences, no comments, "+
			"no trailing commas, every bracket closed.", lastErr)
}
