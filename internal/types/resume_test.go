package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyResumeCollectionsNonNil(t *testing.T) {
	doc := EmptyResume()

	assert.NotNil(t, doc.Experience)
	assert.NotNil(t, doc.Skills)
	assert.NotNil(t, doc.Education)
	assert.NotNil(t, doc.Projects)
	assert.NotNil(t, doc.Certifications)
	assert.NotNil(t, doc.Awards)
	assert.NotNil(t, doc.Publications)
	assert.Equal(t, DefaultSectionOrder(), doc.SectionOrder)
}

func TestEmptyResumeSerializesArraysNotNull(t *testing.T) {
	data, err := json.Marshal(EmptyResume())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"experience", "skills", "education", "projects", "certifications", "awards", "publications"} {
		assert.NotEqual(t, "null", string(raw[key]), "section %s must serialize as an array", key)
	}
}

func TestValidSectionToken(t *testing.T) {
	tests := []struct {
		token string
		valid bool
	}{
		{"summary", true},
		{"experience", true},
		{"skills", true},
		{"education", true},
		{"projects", true},
		{"certifications", true},
		{"awards", true},
		{"publications", true},
		{"contact", false},
		{"Summary", false},
		{"", false},
		{"hobbies", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidSectionToken(tt.token))
		})
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, (*ResumeDocument)(nil).IsEmpty())
	assert.True(t, EmptyResume().IsEmpty())

	doc := EmptyResume()
	doc.Summary = "engineer"
	assert.False(t, doc.IsEmpty())

	doc = EmptyResume()
	doc.Experience = append(doc.Experience, ExperienceEntry{ID: "exp-1", Company: "Acme"})
	assert.False(t, doc.IsEmpty())
}

func TestEnsureEntryIDs(t *testing.T) {
	doc := EmptyResume()
	doc.Experience = []ExperienceEntry{
		{ID: "keep-me", Company: "Acme"},
		{Company: "StartupXYZ"},
	}
	doc.Skills = []SkillCategory{{Label: "Languages", Skills: []string{"Go"}}}

	doc.EnsureEntryIDs()

	assert.Equal(t, "keep-me", doc.Experience[0].ID, "existing IDs must be preserved")
	assert.NotEmpty(t, doc.Experience[1].ID)
	assert.NotEmpty(t, doc.Skills[0].ID)
	assert.NotEqual(t, doc.Experience[1].ID, doc.Skills[0].ID)
}
