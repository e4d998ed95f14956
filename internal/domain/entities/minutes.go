package entities

// MaxListEntries caps the action item and decision lists in the final result
const MaxListEntries = 25

// StructuredSummary is the structured meeting-minutes header block. The zero
// value is the documented empty summary used when summarization is exhausted.
type StructuredSummary struct {
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Attendants     []string `json:"attendants"`
	ProjectName    string   `json:"project_name"`
	Customer       string   `json:"customer"`
	TableOfContent []string `json:"table_of_content"`
	MainContent    string   `json:"main_content"`
}

// IsZero reports whether the summary carries no content
func (s StructuredSummary) IsZero() bool {
	return s.Title == "" && s.Date == "" && s.Time == "" &&
		len(s.Attendants) == 0 && s.ProjectName == "" && s.Customer == "" &&
		len(s.TableOfContent) == 0 && s.MainContent == ""
}

// DiarizationSegment attributes a transcript span to a speaker. Speaker is
// free text: a name, a role label, or a generated placeholder.
type DiarizationSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ActionItem is a task extracted from the meeting content
type ActionItem struct {
	Description string `json:"description"`
	Owner       string `json:"owner"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

// Decision is a decision extracted from the meeting content
type Decision struct {
	Text  string `json:"text"`
	Owner string `json:"owner"`
}

// MeetingMinutesResult is the assembled pipeline output. Every field is
// present in the serialized form even when individual stages failed.
type MeetingMinutesResult struct {
	Transcript        string               `json:"transcript"`
	StructuredSummary StructuredSummary    `json:"structured_summary"`
	ActionItems       []ActionItem         `json:"action_items"`
	Decisions         []Decision           `json:"decisions"`
	Diarization       []DiarizationSegment `json:"diarization"`
}

// Normalize guarantees the serialization invariants: no nil slices anywhere,
// no action item or decision without a description, and both lists capped.
func (r *MeetingMinutesResult) Normalize() {
	if r.StructuredSummary.Attendants == nil {
		r.StructuredSummary.Attendants = []string{}
	}
	if r.StructuredSummary.TableOfContent == nil {
		r.StructuredSummary.TableOfContent = []string{}
	}
	if r.Diarization == nil {
		r.Diarization = []DiarizationSegment{}
	}

	items := make([]ActionItem, 0, len(r.ActionItems))
	for _, item := range r.ActionItems {
		if item.Description == "" {
			continue
		}
		items = append(items, item)
		if len(items) == MaxListEntries {
			break
		}
	}
	r.ActionItems = items

	decisions := make([]Decision, 0, len(r.Decisions))
	for _, d := range r.Decisions {
		if d.Text == "" {
			continue
		}
		decisions = append(decisions, d)
		if len(decisions) == MaxListEntries {
			break
		}
	}
	r.Decisions = decisions
}
