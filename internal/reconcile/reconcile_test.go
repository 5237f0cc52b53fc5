package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/forgecv/internal/types"
)

func canonicalDoc() *types.ResumeDocument {
	return &types.ResumeDocument{
		Contact: types.Contact{
			Name:  "Alex Chen",
			Title: "Senior Software Engineer",
			Email: "alex.chen@example.com",
			Phone: "(555) 123-4567",
		},
		Summary:      "Engineer with 6+ years of distributed systems experience.",
		SectionOrder: []string{"summary", "experience", "skills", "education"},
		Experience: []types.ExperienceEntry{
			{ID: "exp-1", Company: "Acme Corp", Role: "Senior Engineer", Dates: "2022 - Present",
				Bullets: []string{"Cut p99 latency by 40%", "Led Kubernetes migration"}},
			{ID: "exp-2", Company: "StartupXYZ", Role: "Engineer", Dates: "2019 - 2022",
				Bullets: []string{"Built streaming pipeline"}},
		},
		Skills: []types.SkillCategory{
			{ID: "sk-1", Label: "Languages", Skills: []string{"Go", "TypeScript"}},
		},
		Education: []types.EducationEntry{
			{ID: "edu-1", Institution: "MIT", Degree: "B.S. Computer Science", Dates: "2014 - 2018"},
		},
		Projects:       []types.ProjectEntry{},
		Certifications: []types.CertificationEntry{},
		Awards:         []types.AwardEntry{},
		Publications:   []types.PublicationEntry{},
	}
}

func TestDocumentPartialUpdateKeepsUntouchedSections(t *testing.T) {
	prior := canonicalDoc()
	proposed := json.RawMessage(`{"education":[{"id":"edu-9","institution":"Stanford","degree":"M.S.","dates":"2020"}]}`)

	result := Document(prior, proposed)

	assert.Equal(t, prior.Experience, result.Experience)
	assert.Equal(t, prior.Skills, result.Skills)
	assert.Equal(t, prior.Summary, result.Summary)
	assert.Equal(t, prior.Contact, result.Contact)
	require.Len(t, result.Education, 1)
	assert.Equal(t, "Stanford", result.Education[0].Institution)
}

func TestDocumentFullUpdateIsIdempotent(t *testing.T) {
	prior := canonicalDoc()
	full, err := json.Marshal(prior)
	require.NoError(t, err)

	result := Document(prior, full)

	assert.Equal(t, prior, result)
}

func TestDocumentContactMergedFieldByField(t *testing.T) {
	prior := canonicalDoc()
	proposed := json.RawMessage(`{"contact":{"phone":"(555) 999-0000"}}`)

	result := Document(prior, proposed)

	assert.Equal(t, "(555) 999-0000", result.Contact.Phone)
	assert.Equal(t, "alex.chen@example.com", result.Contact.Email, "omitted contact fields must survive")
	assert.Equal(t, "Alex Chen", result.Contact.Name)
}

func TestDocumentContactExplicitEmptyOverrides(t *testing.T) {
	prior := canonicalDoc()
	proposed := json.RawMessage(`{"contact":{"title":""}}`)

	result := Document(prior, proposed)

	assert.Empty(t, result.Contact.Title, "a field the update carries, even empty, wins")
	assert.Equal(t, "Alex Chen", result.Contact.Name)
}

func TestDocumentNullSectionsFallBack(t *testing.T) {
	prior := canonicalDoc()
	proposed := json.RawMessage(`{"summary":null,"experience":null,"skills":null}`)

	result := Document(prior, proposed)

	assert.Equal(t, prior.Summary, result.Summary)
	assert.Equal(t, prior.Experience, result.Experience)
	assert.Equal(t, prior.Skills, result.Skills)
}

func TestDocumentMalformedSectionsFallBack(t *testing.T) {
	prior := canonicalDoc()

	tests := []struct {
		name     string
		proposed string
	}{
		{"experience is a string", `{"experience":"not an array"}`},
		{"skills is a number", `{"skills":42}`},
		{"contact is an array", `{"contact":["x"]}`},
		{"summary is an object", `{"summary":{"text":"x"}}`},
		{"update is not an object", `"just a string"`},
		{"update is empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Document(prior, json.RawMessage(tt.proposed))
			assert.Equal(t, prior.Experience, result.Experience)
			assert.Equal(t, prior.Skills, result.Skills)
			assert.Equal(t, prior.Summary, result.Summary)
			assert.Equal(t, prior.Contact, result.Contact)
		})
	}
}

func TestDocumentNilPriorDefaultsEverything(t *testing.T) {
	result := Document(nil, json.RawMessage(`{"summary":"fresh"}`))

	assert.Equal(t, "fresh", result.Summary)
	assert.NotNil(t, result.Experience)
	assert.NotNil(t, result.Skills)
	assert.NotNil(t, result.Projects)
	assert.Equal(t, types.DefaultSectionOrder(), result.SectionOrder)
}

func TestDocumentSectionOrderFiltersUnknownTokens(t *testing.T) {
	prior := canonicalDoc()
	proposed := json.RawMessage(`{"sectionOrder":["skills","hobbies","summary"]}`)

	result := Document(prior, proposed)

	assert.Equal(t, []string{"skills", "summary"}, result.SectionOrder)
}

func TestDocumentSectionOrderAllInvalidFallsBack(t *testing.T) {
	prior := canonicalDoc()
	proposed := json.RawMessage(`{"sectionOrder":["hobbies","references"]}`)

	result := Document(prior, proposed)

	assert.Equal(t, prior.SectionOrder, result.SectionOrder)
}

func TestDocumentGeneratesMissingEntryIDs(t *testing.T) {
	prior := canonicalDoc()
	proposed := json.RawMessage(`{"experience":[{"company":"NewCo","role":"Lead","bullets":["did things"]}]}`)

	result := Document(prior, proposed)

	require.Len(t, result.Experience, 1)
	assert.NotEmpty(t, result.Experience[0].ID)
}

func TestCleanSkills(t *testing.T) {
	tests := []struct {
		name     string
		input    []types.SkillCategory
		expected []types.SkillCategory
	}{
		{
			name: "decoration stripping and case-insensitive dedup",
			input: []types.SkillCategory{
				{ID: "sk-1", Label: "Tools", Skills: []string{"- Go", "go", "Go ", "• Rust"}},
			},
			expected: []types.SkillCategory{
				{ID: "sk-1", Label: "Tools", Skills: []string{"Go", "Rust"}},
			},
		},
		{
			name: "dedup spans categories, first occurrence wins",
			input: []types.SkillCategory{
				{ID: "sk-1", Label: "Languages", Skills: []string{"Go", "Python"}},
				{ID: "sk-2", Label: "Backend", Skills: []string{"GO", "gRPC"}},
			},
			expected: []types.SkillCategory{
				{ID: "sk-1", Label: "Languages", Skills: []string{"Go", "Python"}},
				{ID: "sk-2", Label: "Backend", Skills: []string{"gRPC"}},
			},
		},
		{
			name: "category emptied by cleanup is dropped",
			input: []types.SkillCategory{
				{ID: "sk-1", Label: "Languages", Skills: []string{"Go"}},
				{ID: "sk-2", Label: "Duplicates", Skills: []string{"go", " ", "-"}},
			},
			expected: []types.SkillCategory{
				{ID: "sk-1", Label: "Languages", Skills: []string{"Go"}},
			},
		},
		{
			name: "already clean input unchanged",
			input: []types.SkillCategory{
				{ID: "sk-1", Label: "Languages", Skills: []string{"Go", "TypeScript"}},
			},
			expected: []types.SkillCategory{
				{ID: "sk-1", Label: "Languages", Skills: []string{"Go", "TypeScript"}},
			},
		},
		{
			name:     "empty input yields empty non-nil slice",
			input:    nil,
			expected: []types.SkillCategory{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanSkills(tt.input))
		})
	}
}
