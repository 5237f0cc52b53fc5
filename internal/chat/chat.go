// Package chat implements the synchronous resume-editing chat path.
// Unlike tailoring there is no durable job: the caller waits on the
// model call, and a bad model response degrades to a canned reply
// rather than an error. Raw model text is never surfaced to the user.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/forgecv/internal/extract"
	"github.com/jonathan/forgecv/internal/llm"
	"github.com/jonathan/forgecv/internal/prompts"
	"github.com/jonathan/forgecv/internal/reconcile"
	"github.com/jonathan/forgecv/internal/repair"
	"github.com/jonathan/forgecv/internal/types"
)

// Context caps keep the prompt bounded regardless of input size.
const (
	ResumeCap         = 6000
	JobDescriptionCap = 2000
	BioCap            = 1000

	// MaxHistory is how many trailing messages the model sees. Older
	// turns are dropped, not summarized.
	MaxHistory = 6

	MaxChatTokens = 1000
)

// FallbackReply is returned when the model output yields no usable
// reply even after recovery.
const FallbackReply = "Sorry, I had trouble with that one. Could you rephrase?"

// replyPattern recovers the reply value from a response whose JSON
// envelope is broken but whose reply string survived intact.
var replyPattern = regexp.MustCompile(`"reply"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Request carries the conversation and its document context.
type Request struct {
	Messages       []Message
	Resume         *types.ResumeDocument
	JobDescription string
	Bio            string
}

// Response is the assistant's turn. UpdatedResume is nil when the turn
// was answer-only; when set, it is the full reconciled document.
type Response struct {
	Reply         string                `json:"reply"`
	UpdatedResume *types.ResumeDocument `json:"updatedResume,omitempty"`
}

// envelope is the shape the model is instructed to return.
type envelope struct {
	Reply         string          `json:"reply"`
	UpdatedResume json.RawMessage `json:"updatedResume"`
}

// Respond runs one chat turn. An empty conversation gets the primer
// reply without a model call.
func Respond(ctx context.Context, client llm.Client, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		var primer envelope
		if err := json.Unmarshal([]byte(prompts.MustGet("chat.json", "primer_reply")), &primer); err != nil {
			return nil, fmt.Errorf("failed to parse primer reply: %w", err)
		}
		return &Response{Reply: primer.Reply}, nil
	}

	raw, err := client.Generate(ctx, llm.Request{
		Instruction: prompts.MustGet("chat.json", "system"),
		Context:     BuildUserMessage(req),
		MaxTokens:   MaxChatTokens,
		Tier:        llm.TierFast,
	})
	if err != nil {
		return nil, fmt.Errorf("chat generation failed: %w", err)
	}

	return parseReply(raw, req.Resume), nil
}

// BuildUserMessage assembles the document context and the trailing
// conversation window into a single prompt body.
func BuildUserMessage(req Request) string {
	sections := []string{
		"CURRENT RESUME JSON:\n" + compactJSON(req.Resume, ResumeCap),
	}
	if strings.TrimSpace(req.Bio) != "" {
		sections = append(sections, "CANDIDATE BACKGROUND:\n"+llm.Truncate(req.Bio, BioCap))
	}
	if strings.TrimSpace(req.JobDescription) != "" {
		sections = append(sections, "TARGET JOB DESCRIPTION:\n"+llm.Truncate(req.JobDescription, JobDescriptionCap))
	}

	messages := req.Messages
	if len(messages) > MaxHistory {
		messages = messages[len(messages)-MaxHistory:]
	}
	var transcript strings.Builder
	transcript.WriteString("CONVERSATION:\n")
	for _, m := range messages {
		transcript.WriteString(strings.ToUpper(m.Role))
		transcript.WriteString(": ")
		transcript.WriteString(m.Content)
		transcript.WriteString("\n")
	}
	sections = append(sections, transcript.String())

	return strings.Join(sections, "\n\n---\n\n")
}

// parseReply turns raw model output into a Response. It never fails:
// a broken envelope falls back to reply recovery, then to the canned
// fallback reply with the resume untouched.
func parseReply(raw string, prior *types.ResumeDocument) *Response {
	candidate := extract.JSON(raw)
	if !json.Valid([]byte(candidate)) {
		candidate = repair.JSON(candidate)
	}

	var env envelope
	if err := json.Unmarshal([]byte(candidate), &env); err != nil || env.Reply == "" {
		return &Response{Reply: recoverReply(raw)}
	}

	resp := &Response{Reply: env.Reply}
	if !isNull(env.UpdatedResume) {
		resp.UpdatedResume = reconcile.Document(prior, env.UpdatedResume)
	}
	return resp
}

// recoverReply pulls the reply string out of otherwise unparseable
// output. The update, if any, is discarded: a document change must
// ride a valid envelope.
func recoverReply(raw string) string {
	match := replyPattern.FindStringSubmatch(raw)
	if match == nil {
		return FallbackReply
	}
	reply, err := strconv.Unquote(`"` + match[1] + `"`)
	if err != nil || strings.TrimSpace(reply) == "" {
		return FallbackReply
	}
	return reply
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func compactJSON(doc *types.ResumeDocument, max int) string {
	if doc == nil {
		doc = types.EmptyResume()
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return llm.Truncate(string(encoded), max)
}
