package tailor

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/forgecv/internal/types"
)

func baseResume() *types.ResumeDocument {
	doc := types.EmptyResume()
	doc.Contact = types.Contact{Name: "Alex Chen", Email: "alex@example.com"}
	doc.Summary = "Engineer with 6+ years of experience."
	doc.Experience = []types.ExperienceEntry{
		{ID: "exp-1", Company: "Acme", Role: "Senior Engineer", Bullets: []string{"Did things"}},
	}
	doc.Skills = []types.SkillCategory{
		{ID: "sk-1", Label: "Languages", Skills: []string{"Go"}},
	}
	return doc
}

func TestParseResponseFullEnvelope(t *testing.T) {
	raw := `{"resume":{"summary":"Tailored summary."},"highlights":[{"path":"summary","type":"changed"}],"reasoning":[{"section":"summary","change":"rewrote","why":"match JD"}]}`

	result, err := ParseResponse(raw, baseResume())
	require.NoError(t, err)

	assert.Equal(t, "Tailored summary.", result.Resume.Summary)
	assert.Equal(t, "Alex Chen", result.Resume.Contact.Name, "untouched sections survive")
	require.Len(t, result.Highlights, 1)
	assert.Equal(t, "summary", result.Highlights[0].Path)
	require.Len(t, result.Reasoning, 1)
	assert.Equal(t, "match JD", result.Reasoning[0].Why)
}

func TestParseResponseFencedOutput(t *testing.T) {
	raw := "Here is the tailored resume:\n```json\n{\"resume\":{\"summary\":\"New.\"},\"highlights\":[],\"reasoning\":[]}\n```"

	result, err := ParseResponse(raw, baseResume())
	require.NoError(t, err)
	assert.Equal(t, "New.", result.Resume.Summary)
}

func TestParseResponseTruncatedOutputRepaired(t *testing.T) {
	// Token limit hit mid-bullet: unterminated string, unclosed brackets.
	raw := `{"resume":{"experience":[{"id":"exp-1","company":"Acme","role":"Senior Engineer","bullets":["Shipped event-driven pipeline cutting p99 by`

	result, err := ParseResponse(raw, baseResume())
	require.NoError(t, err)
	require.Len(t, result.Resume.Experience, 1)
	assert.Contains(t, result.Resume.Experience[0].Bullets[0], "Shipped event-driven pipeline")
	assert.Equal(t, "Go", result.Resume.Skills[0].Skills[0], "sections the update omitted keep prior values")
}

func TestParseResponseChatShapeAccepted(t *testing.T) {
	raw := `{"reply":"done","updatedResume":{"summary":"Via chat shape."}}`

	result, err := ParseResponse(raw, baseResume())
	require.NoError(t, err)
	assert.Equal(t, "Via chat shape.", result.Resume.Summary)
}

func TestParseResponseBareResumeObject(t *testing.T) {
	raw := `{"summary":"Bare object.","skills":[{"id":"sk-1","label":"Languages","skills":["Go","Rust"]}]}`

	result, err := ParseResponse(raw, baseResume())
	require.NoError(t, err)
	assert.Equal(t, "Bare object.", result.Resume.Summary)
	assert.Equal(t, []string{"Go", "Rust"}, result.Resume.Skills[0].Skills)
}

func TestParseResponseUnparseable(t *testing.T) {
	raw := "I'm sorry, I can't produce JSON for that."

	_, err := ParseResponse(raw, baseResume())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparseable))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, raw, parseErr.Raw, "raw text is carried for diagnostics")
}

func TestParseResponseDerivesHighlightsWhenOmitted(t *testing.T) {
	raw := `{"resume":{"summary":"Changed summary."}}`

	result, err := ParseResponse(raw, baseResume())
	require.NoError(t, err)
	require.Len(t, result.Highlights, 1)
	assert.Equal(t, types.HighlightedField{Path: "summary", Type: types.HighlightChanged}, result.Highlights[0])
}

func TestParseResponseNoChangesNoHighlights(t *testing.T) {
	result, err := ParseResponse(`{"resume":{}}`, baseResume())
	require.NoError(t, err)
	assert.Empty(t, result.Highlights)
	assert.NotNil(t, result.Reasoning)
}

func TestParseResponseSanitizesHighlightTypes(t *testing.T) {
	raw := `{"resume":{"summary":"x"},"highlights":[{"path":"summary","type":"rewritten"},{"path":"","type":"changed"}]}`

	result, err := ParseResponse(raw, baseResume())
	require.NoError(t, err)
	require.Len(t, result.Highlights, 1, "pathless highlights are dropped")
	assert.Equal(t, types.HighlightChanged, result.Highlights[0].Type, "unknown types normalize to changed")
}

func TestBuildUserMessageCapsSections(t *testing.T) {
	params := types.TailorParams{
		Resume:         baseResume(),
		JobDescription: strings.Repeat("x", JobDescriptionCap+500),
	}

	message := BuildUserMessage(params)

	assert.Contains(t, message, "CURRENT RESUME JSON:")
	assert.Contains(t, message, "JOB DESCRIPTION:")
	assert.NotContains(t, message, "MASTER PROFILE")
	assert.Contains(t, message, "...[truncated]")
}

func TestBuildUserMessageIncludesMasterProfile(t *testing.T) {
	master := baseResume()
	master.Summary = "Full career history."
	params := types.TailorParams{
		Resume:         baseResume(),
		JobDescription: "Backend role",
		MasterProfile:  master,
	}

	message := BuildUserMessage(params)
	assert.Contains(t, message, "MASTER PROFILE JSON")
	assert.Contains(t, message, "Full career history.")
}
