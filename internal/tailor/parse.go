package tailor

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/jonathan/forgecv/internal/extract"
	"github.com/jonathan/forgecv/internal/reconcile"
	"github.com/jonathan/forgecv/internal/repair"
	"github.com/jonathan/forgecv/internal/types"
)

// ErrUnparseable indicates extraction and repair both failed to produce
// valid JSON from the model output. Parsing is deterministic, so this is
// never retried: the same text cannot parse on a second attempt.
var ErrUnparseable = errors.New("tailor: model output is not valid JSON")

// ParseError wraps an unparseable model response together with the raw
// text, which is surfaced to the caller for diagnosis.
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return ErrUnparseable }

// envelope is the loose shape of a tailoring response. Models sometimes
// answer in the chat shape ("updatedResume") or emit the resume object
// bare at the top level; all three are accepted.
type envelope struct {
	Resume        json.RawMessage          `json:"resume"`
	UpdatedResume json.RawMessage          `json:"updatedResume"`
	Highlights    []types.HighlightedField `json:"highlights"`
	Reasoning     []types.ReasoningEntry   `json:"reasoning"`
}

// ParseResponse runs the extract -> repair -> parse -> reconcile
// pipeline on raw model output, merging the proposed update into base.
// base is the job's own input resume, never shared state.
func ParseResponse(raw string, base *types.ResumeDocument) (*types.TailorResult, error) {
	jsonStr := extract.JSON(raw)
	if !json.Valid([]byte(jsonStr)) {
		jsonStr = repair.JSON(jsonStr)
	}

	var env envelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return nil, &ParseError{Raw: raw, Cause: err}
	}

	update := env.Resume
	if len(update) == 0 || string(update) == "null" {
		update = env.UpdatedResume
	}
	if len(update) == 0 || string(update) == "null" {
		// Bare resume object at the top level.
		update = json.RawMessage(jsonStr)
	}

	doc := reconcile.Document(base, update)

	highlights := sanitizeHighlights(env.Highlights)
	if len(highlights) == 0 {
		highlights = deriveHighlights(base, doc)
	}
	reasoning := env.Reasoning
	if reasoning == nil {
		reasoning = []types.ReasoningEntry{}
	}

	return &types.TailorResult{
		Resume:     doc,
		Highlights: highlights,
		Reasoning:  reasoning,
	}, nil
}

func sanitizeHighlights(highlights []types.HighlightedField) []types.HighlightedField {
	kept := make([]types.HighlightedField, 0, len(highlights))
	for _, h := range highlights {
		if h.Path == "" {
			continue
		}
		switch h.Type {
		case types.HighlightChanged, types.HighlightAdded, types.HighlightRemoved:
		default:
			h.Type = types.HighlightChanged
		}
		kept = append(kept, h)
	}
	return kept
}

// deriveHighlights marks whole sections that differ between base and the
// reconciled document. Used when the model omits its own highlight list,
// so the result stays total without trusting the model to self-report.
func deriveHighlights(base, doc *types.ResumeDocument) []types.HighlightedField {
	if base == nil {
		base = types.EmptyResume()
	}
	highlights := []types.HighlightedField{}
	mark := func(section string, changed bool) {
		if changed {
			highlights = append(highlights, types.HighlightedField{Path: section, Type: types.HighlightChanged})
		}
	}

	mark("contact", base.Contact != doc.Contact)
	mark(types.SectionSummary, base.Summary != doc.Summary)
	mark("sectionOrder", sliceChanged(base.SectionOrder, doc.SectionOrder))
	mark(types.SectionExperience, sliceChanged(base.Experience, doc.Experience))
	mark(types.SectionSkills, sliceChanged(base.Skills, doc.Skills))
	mark(types.SectionEducation, sliceChanged(base.Education, doc.Education))
	mark(types.SectionProjects, sliceChanged(base.Projects, doc.Projects))
	mark(types.SectionCertifications, sliceChanged(base.Certifications, doc.Certifications))
	mark(types.SectionAwards, sliceChanged(base.Awards, doc.Awards))
	mark(types.SectionPublications, sliceChanged(base.Publications, doc.Publications))
	return highlights
}

// sliceChanged treats nil and empty as equal, since reconciliation
// always materializes empty slices.
func sliceChanged[T any](a, b []T) bool {
	if len(a) == 0 && len(b) == 0 {
		return false
	}
	return !reflect.DeepEqual(a, b)
}
