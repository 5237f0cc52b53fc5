// Package reconcile merges a model-proposed partial update into a
// canonical resume document. The generation prompt allows the model to
// return only the top-level keys it changed, so the merge is what makes
// that contract safe: untouched sections always survive, and no shape of
// untrusted JSON can make the merge fail.
package reconcile

import (
	"encoding/json"

	"github.com/jonathan/forgecv/internal/types"
)

// proposedUpdate mirrors the document's top-level keys as raw JSON so
// each section can be decoded independently. A section that is absent,
// null, or malformed falls back to the prior canonical value.
type proposedUpdate struct {
	Contact        json.RawMessage `json:"contact"`
	Summary        json.RawMessage `json:"summary"`
	SectionOrder   json.RawMessage `json:"sectionOrder"`
	Experience     json.RawMessage `json:"experience"`
	Skills         json.RawMessage `json:"skills"`
	Education      json.RawMessage `json:"education"`
	Projects       json.RawMessage `json:"projects"`
	Certifications json.RawMessage `json:"certifications"`
	Awards         json.RawMessage `json:"awards"`
	Publications   json.RawMessage `json:"publications"`
}

// Document merges proposed (parsed but untrusted JSON) into prior and
// returns a new canonical document. It never fails: anything missing or
// malformed keeps the prior value, and collections with no value on
// either side come back as empty slices, never nil.
func Document(prior *types.ResumeDocument, proposed json.RawMessage) *types.ResumeDocument {
	if prior == nil {
		prior = types.EmptyResume()
	}

	var update proposedUpdate
	if len(proposed) > 0 {
		// Best effort: a decode error here means the update contributes
		// nothing and the prior document wins wholesale.
		_ = json.Unmarshal(proposed, &update)
	}

	doc := &types.ResumeDocument{
		Contact:        mergeContact(prior.Contact, update.Contact),
		Summary:        stringOr(update.Summary, prior.Summary),
		SectionOrder:   mergeSectionOrder(prior.SectionOrder, update.SectionOrder),
		Experience:     sliceOr(update.Experience, prior.Experience),
		Skills:         sliceOr(update.Skills, prior.Skills),
		Education:      sliceOr(update.Education, prior.Education),
		Projects:       sliceOr(update.Projects, prior.Projects),
		Certifications: sliceOr(update.Certifications, prior.Certifications),
		Awards:         sliceOr(update.Awards, prior.Awards),
		Publications:   sliceOr(update.Publications, prior.Publications),
	}

	doc.Skills = CleanSkills(doc.Skills)
	doc.EnsureEntryIDs()
	return doc
}

// mergeContact merges field-by-field: a model asked to change only the
// phone number must not null out the email by omission. Only keys the
// update actually carries override the prior value.
func mergeContact(prior types.Contact, raw json.RawMessage) types.Contact {
	if isAbsent(raw) {
		return prior
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return prior
	}

	merged := prior
	assign := func(key string, dst *string) {
		if fieldRaw, ok := fields[key]; ok {
			var v string
			if err := json.Unmarshal(fieldRaw, &v); err == nil {
				*dst = v
			}
		}
	}
	assign("name", &merged.Name)
	assign("title", &merged.Title)
	assign("email", &merged.Email)
	assign("phone", &merged.Phone)
	assign("location", &merged.Location)
	assign("linkedin", &merged.LinkedIn)
	assign("github", &merged.GitHub)
	return merged
}

// mergeSectionOrder takes the proposed order when it decodes and keeps
// only recognized section tokens; an order emptied by filtering (or a
// missing one) falls back to prior, then to the default.
func mergeSectionOrder(prior []string, raw json.RawMessage) []string {
	order := prior
	if !isAbsent(raw) {
		var proposed []string
		if err := json.Unmarshal(raw, &proposed); err == nil {
			filtered := make([]string, 0, len(proposed))
			for _, token := range proposed {
				if types.ValidSectionToken(token) {
					filtered = append(filtered, token)
				}
			}
			if len(filtered) > 0 {
				order = filtered
			}
		}
	}
	if len(order) == 0 {
		return types.DefaultSectionOrder()
	}
	return order
}

func stringOr(raw json.RawMessage, fallback string) string {
	if isAbsent(raw) {
		return fallback
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	return v
}

// sliceOr decodes raw into a fresh slice of T, falling back to prior on
// absence or decode failure, and never returns nil.
func sliceOr[T any](raw json.RawMessage, prior []T) []T {
	result := prior
	if !isAbsent(raw) {
		var decoded []T
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded != nil {
			result = decoded
		}
	}
	if result == nil {
		return []T{}
	}
	return result
}

// isAbsent reports whether a raw section value contributes nothing:
// either the key was missing entirely or it was explicitly null.
func isAbsent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	return string(raw) == "null"
}
