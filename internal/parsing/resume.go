// Package parsing converts freeform resume text into a structured
// document. It is a synchronous fast path: one model call, no job
// record, errors returned straight to the caller.
package parsing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/forgecv/internal/llm"
	"github.com/jonathan/forgecv/internal/prompts"
	"github.com/jonathan/forgecv/internal/tailor"
	"github.com/jonathan/forgecv/internal/types"
)

// ResumeTextCap bounds the raw text sent to the model. Pasted resumes
// beyond this are truncated, not rejected.
const ResumeTextCap = 8000

// MaxParseTokens bounds the structured output.
const MaxParseTokens = 2000

// ParseResume structures raw resume text into a document. The model
// output goes through the same extract/repair/reconcile pipeline as
// tailoring, reconciled against an empty document so omitted sections
// come back empty rather than invented. Output the pipeline cannot
// parse surfaces as a *tailor.ParseError carrying the raw text.
func ParseResume(ctx context.Context, client llm.Client, text string) (*types.ResumeDocument, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("resume text is empty")
	}

	raw, err := client.Generate(ctx, llm.Request{
		Instruction: prompts.MustGet("parsing.json", "system"),
		Context:     "RESUME TEXT:\n" + llm.Truncate(trimmed, ResumeTextCap),
		MaxTokens:   MaxParseTokens,
		Tier:        llm.TierFast,
	})
	if err != nil {
		return nil, fmt.Errorf("resume parsing failed: %w", err)
	}

	result, err := tailor.ParseResponse(raw, types.EmptyResume())
	if err != nil {
		return nil, err
	}
	return result.Resume, nil
}
