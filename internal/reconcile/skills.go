package reconcile

import (
	"strings"

	"github.com/jonathan/forgecv/internal/types"
)

// Models reliably decorate skill strings with list markers even when
// told not to; strip the common ones before comparing.
const skillDecorations = "-•*–—·"

// CleanSkills normalizes the skills section: strips leading bullet or
// hyphen decoration from each skill, trims whitespace, drops empties,
// deduplicates case-insensitively across all categories combined (first
// occurrence wins, in category-then-in-array order), and drops any
// category left with no skills.
func CleanSkills(categories []types.SkillCategory) []types.SkillCategory {
	seen := make(map[string]bool)
	cleaned := make([]types.SkillCategory, 0, len(categories))

	for _, category := range categories {
		kept := make([]string, 0, len(category.Skills))
		for _, skill := range category.Skills {
			skill = strings.TrimSpace(strings.TrimLeft(skill, skillDecorations+" \t"))
			if skill == "" {
				continue
			}
			key := strings.ToLower(skill)
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, skill)
		}
		if len(kept) == 0 {
			continue
		}
		category.Skills = kept
		cleaned = append(cleaned, category)
	}
	return cleaned
}
