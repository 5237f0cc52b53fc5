package tailor

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/forgecv/internal/llm"
	"github.com/jonathan/forgecv/internal/prompts"
	"github.com/jonathan/forgecv/internal/types"
)

// Per-field character budgets for the context payload. The backend
// rejects oversized inputs outright, so each field is cut independently
// rather than letting one huge job description crowd out the resume.
const (
	ResumeContextCap  = 6000
	JobDescriptionCap = 2000
	MasterProfileCap  = 6000
)

// MaxTailorTokens caps the model's output; the partial-update contract
// in the prompt keeps responses small enough to fit.
const MaxTailorTokens = 1500

// SystemPrompt returns the tailoring system instruction.
func SystemPrompt() string {
	return prompts.MustGet("tailor.json", "system")
}

// BuildUserMessage assembles the size-capped context payload for one
// tailoring call. Resume JSON is serialized compactly: without
// indentation roughly three times more document fits the budget.
func BuildUserMessage(params types.TailorParams) string {
	sections := []string{
		"CURRENT RESUME JSON:\n" + compactJSON(params.Resume, ResumeContextCap),
		"JOB DESCRIPTION:\n" + llm.Truncate(strings.TrimSpace(params.JobDescription), JobDescriptionCap),
	}
	if params.MasterProfile != nil && !params.MasterProfile.IsEmpty() {
		sections = append(sections,
			"MASTER PROFILE JSON (full career history, may contain content not on the resume):\n"+
				compactJSON(params.MasterProfile, MasterProfileCap))
	}
	return strings.Join(sections, "\n\n---\n\n")
}

func compactJSON(doc *types.ResumeDocument, max int) string {
	data, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return llm.Truncate(string(data), max)
}
