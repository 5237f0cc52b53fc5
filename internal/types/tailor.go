package types

// HighlightType enumerates the kinds of change a highlight can mark.
const (
	HighlightChanged = "changed"
	HighlightAdded   = "added"
	HighlightRemoved = "removed"
)

// HighlightedField marks one changed location in a tailored document.
// Path is dot-addressed, e.g. "experience.<entryId>.bullets.0", or a
// bare top-level key for whole-section changes.
type HighlightedField struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// ReasoningEntry explains one section-level change made by the model.
type ReasoningEntry struct {
	Section      string `json:"section"`
	Change       string `json:"change"`
	Why          string `json:"why"`
	CoachingNote string `json:"coachingNote,omitempty"`
}

// TailorResult is the output of a completed tailoring job.
type TailorResult struct {
	Resume     *ResumeDocument    `json:"resume"`
	Highlights []HighlightedField `json:"highlights"`
	Reasoning  []ReasoningEntry   `json:"reasoning"`
}

// TailorParams is the input payload of a tailoring job. MasterProfile
// only ever reaches the model as extra prompt context; the job's Resume
// is the sole reconciliation base, so sections the model leaves out keep
// the resume's values rather than picking up the profile's.
type TailorParams struct {
	Resume         *ResumeDocument `json:"resume"`
	JobDescription string          `json:"jobDescription"`
	MasterProfile  *ResumeDocument `json:"masterProfile,omitempty"`
}
