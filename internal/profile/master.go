// Package profile maintains the candidate's master profile: the
// superset document that individual tailored resumes draw from. Merging
// a resume into the profile only ever adds or refreshes; it never
// discards history the resume happens to omit.
package profile

import (
	"strings"

	"github.com/jonathan/forgecv/internal/reconcile"
	"github.com/jonathan/forgecv/internal/types"
)

// Merge folds a resume into the master profile and returns the merged
// document. Neither input is modified.
//
// Merge rules per section:
//   - contact: non-empty resume fields override, empty fields keep the
//     profile's values.
//   - experience: matched by normalized company+role; matches are
//     replaced with the resume's version, the rest of the profile's
//     entries are kept, new entries append.
//   - education: same, matched by normalized institution.
//   - skills: category labels union case-insensitively; skills within a
//     matched category union case-insensitively, first spelling wins.
//   - summary and scalar sections: resume wins when non-empty.
func Merge(master, resume *types.ResumeDocument) *types.ResumeDocument {
	if master == nil {
		master = types.EmptyResume()
	}
	if resume == nil || resume.IsEmpty() {
		merged := *master
		return &merged
	}

	merged := *master

	merged.Contact = mergeContact(master.Contact, resume.Contact)
	if strings.TrimSpace(resume.Summary) != "" {
		merged.Summary = resume.Summary
	}
	merged.Experience = mergeExperience(master.Experience, resume.Experience)
	merged.Education = mergeEducation(master.Education, resume.Education)
	merged.Skills = reconcile.CleanSkills(mergeSkills(master.Skills, resume.Skills))

	merged.Projects = mergeByKey(master.Projects, resume.Projects,
		func(p types.ProjectEntry) string { return normalize(p.Name) })
	merged.Certifications = mergeByKey(master.Certifications, resume.Certifications,
		func(c types.CertificationEntry) string { return normalize(c.Name) })
	merged.Awards = mergeByKey(master.Awards, resume.Awards,
		func(a types.AwardEntry) string { return normalize(a.Title) })
	merged.Publications = mergeByKey(master.Publications, resume.Publications,
		func(p types.PublicationEntry) string { return normalize(p.Title) })

	if len(resume.SectionOrder) > 0 {
		merged.SectionOrder = append([]string(nil), resume.SectionOrder...)
	}

	merged.EnsureEntryIDs()
	return &merged
}

func mergeContact(base, overlay types.Contact) types.Contact {
	merged := base
	if overlay.Name != "" {
		merged.Name = overlay.Name
	}
	if overlay.Title != "" {
		merged.Title = overlay.Title
	}
	if overlay.Email != "" {
		merged.Email = overlay.Email
	}
	if overlay.Phone != "" {
		merged.Phone = overlay.Phone
	}
	if overlay.Location != "" {
		merged.Location = overlay.Location
	}
	if overlay.LinkedIn != "" {
		merged.LinkedIn = overlay.LinkedIn
	}
	if overlay.GitHub != "" {
		merged.GitHub = overlay.GitHub
	}
	return merged
}

// mergeExperience keeps every profile entry, replacing those the resume
// also carries. Identity is company+role so two stints at the same
// company under different titles stay distinct.
func mergeExperience(base, overlay []types.ExperienceEntry) []types.ExperienceEntry {
	return mergeByKey(base, overlay, func(e types.ExperienceEntry) string {
		return normalize(e.Company) + "\x00" + normalize(e.Role)
	})
}

func mergeEducation(base, overlay []types.EducationEntry) []types.EducationEntry {
	return mergeByKey(base, overlay, func(e types.EducationEntry) string {
		return normalize(e.Institution)
	})
}

// mergeByKey replaces base entries whose key appears in overlay and
// appends overlay entries with unseen keys, preserving base order.
func mergeByKey[T any](base, overlay []T, key func(T) string) []T {
	replacements := make(map[string]T, len(overlay))
	for _, entry := range overlay {
		replacements[key(entry)] = entry
	}

	merged := make([]T, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(base))
	for _, entry := range base {
		k := key(entry)
		seen[k] = true
		if replacement, ok := replacements[k]; ok {
			merged = append(merged, replacement)
		} else {
			merged = append(merged, entry)
		}
	}
	for _, entry := range overlay {
		if !seen[key(entry)] {
			merged = append(merged, entry)
		}
	}
	return merged
}

// mergeSkills unions categories by label and skills within a category,
// both case-insensitive, first spelling wins.
func mergeSkills(base, overlay []types.SkillCategory) []types.SkillCategory {
	merged := make([]types.SkillCategory, 0, len(base)+len(overlay))
	index := make(map[string]int, len(base))

	for _, cat := range base {
		copied := cat
		copied.Skills = append([]string(nil), cat.Skills...)
		index[normalize(cat.Label)] = len(merged)
		merged = append(merged, copied)
	}

	for _, cat := range overlay {
		k := normalize(cat.Label)
		at, ok := index[k]
		if !ok {
			copied := cat
			copied.Skills = append([]string(nil), cat.Skills...)
			index[k] = len(merged)
			merged = append(merged, copied)
			continue
		}
		existing := make(map[string]bool, len(merged[at].Skills))
		for _, s := range merged[at].Skills {
			existing[normalize(s)] = true
		}
		for _, s := range cat.Skills {
			if !existing[normalize(s)] {
				existing[normalize(s)] = true
				merged[at].Skills = append(merged[at].Skills, s)
			}
		}
	}
	return merged
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
