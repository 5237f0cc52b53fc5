// Package types defines the canonical resume document model shared by
// the reconciler, the tailoring workflow, and the HTTP API.
package types

import (
	"strings"

	"github.com/google/uuid"
)

// Section name tokens allowed in SectionOrder.
const (
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionSkills         = "skills"
	SectionEducation      = "education"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionAwards         = "awards"
	SectionPublications   = "publications"
)

// DefaultSectionOrder returns the section ordering used when a document
// carries none of its own.
func DefaultSectionOrder() []string {
	return []string{
		SectionSummary,
		SectionExperience,
		SectionSkills,
		SectionEducation,
		SectionProjects,
		SectionCertifications,
		SectionAwards,
		SectionPublications,
	}
}

// ValidSectionToken reports whether name is a recognized section token.
func ValidSectionToken(name string) bool {
	switch name {
	case SectionSummary, SectionExperience, SectionSkills, SectionEducation,
		SectionProjects, SectionCertifications, SectionAwards, SectionPublications:
		return true
	}
	return false
}

// Contact holds the flat contact header of a resume.
type Contact struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// ExperienceEntry is one role in the experience section.
type ExperienceEntry struct {
	ID      string   `json:"id"`
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Dates   string   `json:"dates"`
	Bullets []string `json:"bullets"`
}

// SkillCategory groups related skills under a label.
type SkillCategory struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Skills []string `json:"skills"`
}

// EducationEntry is one institution in the education section.
type EducationEntry struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Dates       string `json:"dates"`
	Details     string `json:"details"`
}

// ProjectEntry is one project in the projects section.
type ProjectEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Bullets     []string `json:"bullets"`
}

// CertificationEntry is one certification.
type CertificationEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// AwardEntry is one award or honor.
type AwardEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// PublicationEntry is one publication.
type PublicationEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	Link      string `json:"link"`
}

// ResumeDocument is the canonical structured resume. Entry IDs are
// stable across edits: an edit locates its entry by ID and mutates it in
// place. Collection fields are never nil after reconciliation.
type ResumeDocument struct {
	Contact        Contact              `json:"contact"`
	Summary        string               `json:"summary"`
	SectionOrder   []string             `json:"sectionOrder"`
	Experience     []ExperienceEntry    `json:"experience"`
	Skills         []SkillCategory      `json:"skills"`
	Education      []EducationEntry     `json:"education"`
	Projects       []ProjectEntry       `json:"projects"`
	Certifications []CertificationEntry `json:"certifications"`
	Awards         []AwardEntry         `json:"awards"`
	Publications   []PublicationEntry   `json:"publications"`
}

// EmptyResume returns a document with every collection initialized and
// the default section order, so downstream consumers never null-check.
func EmptyResume() *ResumeDocument {
	return &ResumeDocument{
		SectionOrder:   DefaultSectionOrder(),
		Experience:     []ExperienceEntry{},
		Skills:         []SkillCategory{},
		Education:      []EducationEntry{},
		Projects:       []ProjectEntry{},
		Certifications: []CertificationEntry{},
		Awards:         []AwardEntry{},
		Publications:   []PublicationEntry{},
	}
}

// IsEmpty reports whether the document carries no content at all.
func (d *ResumeDocument) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Contact == (Contact{}) &&
		strings.TrimSpace(d.Summary) == "" &&
		len(d.Experience) == 0 &&
		len(d.Skills) == 0 &&
		len(d.Education) == 0 &&
		len(d.Projects) == 0 &&
		len(d.Certifications) == 0 &&
		len(d.Awards) == 0 &&
		len(d.Publications) == 0
}

// NewEntryID generates a short unique identifier for a new array entry.
func NewEntryID() string {
	return uuid.NewString()[:8]
}

// EnsureEntryIDs fills in IDs for any entries the model returned without
// one, so every entry stays addressable by the presentation layer.
func (d *ResumeDocument) EnsureEntryIDs() {
	for i := range d.Experience {
		if d.Experience[i].ID == "" {
			d.Experience[i].ID = NewEntryID()
		}
	}
	for i := range d.Skills {
		if d.Skills[i].ID == "" {
			d.Skills[i].ID = NewEntryID()
		}
	}
	for i := range d.Education {
		if d.Education[i].ID == "" {
			d.Education[i].ID = NewEntryID()
		}
	}
	for i := range d.Projects {
		if d.Projects[i].ID == "" {
			d.Projects[i].ID = NewEntryID()
		}
	}
	for i := range d.Certifications {
		if d.Certifications[i].ID == "" {
			d.Certifications[i].ID = NewEntryID()
		}
	}
	for i := range d.Awards {
		if d.Awards[i].ID == "" {
			d.Awards[i].ID = NewEntryID()
		}
	}
	for i := range d.Publications {
		if d.Publications[i].ID == "" {
			d.Publications[i].ID = NewEntryID()
		}
	}
}
