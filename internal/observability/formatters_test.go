package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/forgecv/internal/types"
)

func TestPrintTailorResult(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	resume := types.EmptyResume()
	resume.Contact.Name = "Alex Chen"
	resume.Experience = []types.ExperienceEntry{{ID: "exp-1", Company: "Acme"}}

	printer.PrintTailorResult(&types.TailorResult{
		Resume: resume,
		Highlights: []types.HighlightedField{
			{Path: "summary", Type: types.HighlightChanged},
			{Path: "experience[0].bullets[1]", Type: types.HighlightAdded},
		},
		Reasoning: []types.ReasoningEntry{
			{Section: "summary", Change: "rewrote opener", Why: "match job keywords"},
		},
	})

	output := buf.String()
	assert.Contains(t, output, "TAILORED RESUME")
	assert.Contains(t, output, "Alex Chen")
	assert.Contains(t, output, "summary (changed)")
	assert.Contains(t, output, "REASONING")
	assert.Contains(t, output, "match job keywords")
}

func TestPrintTailorResultTruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	result := &types.TailorResult{Resume: types.EmptyResume()}
	for i := 0; i < maxItemsToShow+3; i++ {
		result.Highlights = append(result.Highlights,
			types.HighlightedField{Path: "summary", Type: types.HighlightChanged})
	}

	printer.PrintTailorResult(result)
	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintTailorResultNilSafe(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	printer.PrintTailorResult(nil)
	printer.PrintTailorResult(&types.TailorResult{})
	assert.Empty(t, buf.String())
}
