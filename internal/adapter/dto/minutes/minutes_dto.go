package minutes

import "github.com/johnquangdev/minutes-service/internal/domain/entities"

// TextRequest is the shared body for the single-stage JSON endpoints
type TextRequest struct {
	Text     string `json:"text" form:"text" validate:"required"`
	Language string `json:"language" form:"language"`
}

// ProcessResponse is the assembled pipeline result
type ProcessResponse struct {
	Transcript        string                        `json:"transcript"`
	StructuredSummary entities.StructuredSummary    `json:"structured_summary"`
	ActionItems       []entities.ActionItem         `json:"action_items"`
	Decisions         []entities.Decision           `json:"decisions"`
	Diarization       []entities.DiarizationSegment `json:"diarization"`
}

// FromResult maps the domain result onto the response shape
func FromResult(r *entities.MeetingMinutesResult) ProcessResponse {
	return ProcessResponse{
		Transcript:        r.Transcript,
		StructuredSummary: r.StructuredSummary,
		ActionItems:       r.ActionItems,
		Decisions:         r.Decisions,
		Diarization:       r.Diarization,
	}
}

// CleanResponse carries the cleaned transcript text
type CleanResponse struct {
	CleanedText string `json:"cleaned_text"`
}

// DiarizeResponse carries the speaker-attributed segments
type DiarizeResponse struct {
	Segments []entities.DiarizationSegment `json:"segments"`
}

// ExtractResponse carries the extracted action items and decisions
type ExtractResponse struct {
	ActionItems []entities.ActionItem `json:"action_items"`
	Decisions   []entities.Decision   `json:"decisions"`
}
