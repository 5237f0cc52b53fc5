package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/forgecv/internal/llm"
	"github.com/jonathan/forgecv/internal/types"
)

type fakeClient struct {
	response string
	err      error
	calls    int
	lastReq  llm.Request
}

func (f *fakeClient) Generate(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeClient) Close() error { return nil }

func chatResume() *types.ResumeDocument {
	doc := types.EmptyResume()
	doc.Contact = types.Contact{Name: "Alex Chen"}
	doc.Summary = "Engineer."
	doc.Experience = []types.ExperienceEntry{
		{ID: "exp-1", Company: "Acme", Role: "Engineer", Bullets: []string{"Built things"}},
	}
	return doc
}

func TestRespondEmptyConversationUsesPrimer(t *testing.T) {
	client := &fakeClient{}

	resp, err := Respond(context.Background(), client, Request{Resume: chatResume()})
	require.NoError(t, err)

	assert.Contains(t, resp.Reply, "resume")
	assert.Nil(t, resp.UpdatedResume)
	assert.Zero(t, client.calls, "the primer turn must not pay for a model call")
}

func TestRespondAnswerOnly(t *testing.T) {
	client := &fakeClient{response: `{"reply":"Your summary is strong.","updatedResume":null}`}

	resp, err := Respond(context.Background(), client, Request{
		Messages: []Message{{Role: "user", Content: "How is my summary?"}},
		Resume:   chatResume(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Your summary is strong.", resp.Reply)
	assert.Nil(t, resp.UpdatedResume)
}

func TestRespondWithResumeUpdate(t *testing.T) {
	client := &fakeClient{response: `{"reply":"Tightened the summary.","updatedResume":{"summary":"Go engineer, 6 years."}}`}

	resp, err := Respond(context.Background(), client, Request{
		Messages: []Message{{Role: "user", Content: "Tighten my summary"}},
		Resume:   chatResume(),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.UpdatedResume)
	assert.Equal(t, "Go engineer, 6 years.", resp.UpdatedResume.Summary)
	assert.Equal(t, "Alex Chen", resp.UpdatedResume.Contact.Name, "untouched sections carry over")
	assert.Len(t, resp.UpdatedResume.Experience, 1)
}

func TestRespondRecoversReplyFromBrokenEnvelope(t *testing.T) {
	client := &fakeClient{response: `Sure! {"reply":"Use \"led\" instead of \"helped\".", "updatedResume": {oops`}

	resp, err := Respond(context.Background(), client, Request{
		Messages: []Message{{Role: "user", Content: "Improve my bullets"}},
		Resume:   chatResume(),
	})
	require.NoError(t, err)

	assert.Equal(t, `Use "led" instead of "helped".`, resp.Reply)
	assert.Nil(t, resp.UpdatedResume, "a document change must not ride a broken envelope")
}

func TestRespondFallsBackOnProse(t *testing.T) {
	client := &fakeClient{response: "I think your resume looks great overall!"}

	resp, err := Respond(context.Background(), client, Request{
		Messages: []Message{{Role: "user", Content: "Thoughts?"}},
		Resume:   chatResume(),
	})
	require.NoError(t, err)

	assert.Equal(t, FallbackReply, resp.Reply, "raw model text never leaks to the user")
	assert.Nil(t, resp.UpdatedResume)
}

func TestRespondGenerationError(t *testing.T) {
	client := &fakeClient{err: llm.ErrEmptyResponse}

	_, err := Respond(context.Background(), client, Request{
		Messages: []Message{{Role: "user", Content: "Hi"}},
		Resume:   chatResume(),
	})
	assert.Error(t, err)
}

func TestBuildUserMessageWindowsHistory(t *testing.T) {
	var messages []Message
	for i := 0; i < 10; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages = append(messages, Message{Role: role, Content: fmt.Sprintf("turn-%02d", i)})
	}

	body := BuildUserMessage(Request{Messages: messages, Resume: chatResume()})

	assert.Contains(t, body, "turn-09")
	assert.Contains(t, body, "turn-04", "window keeps the last six turns")
	assert.NotContains(t, body, "turn-03", "older turns are dropped")
}

func TestBuildUserMessageCapsContext(t *testing.T) {
	req := Request{
		Messages:       []Message{{Role: "user", Content: "Hi"}},
		Resume:         chatResume(),
		JobDescription: strings.Repeat("j", JobDescriptionCap+100),
		Bio:            strings.Repeat("b", BioCap+100),
	}

	body := BuildUserMessage(req)

	assert.Contains(t, body, "CANDIDATE BACKGROUND:")
	assert.Contains(t, body, "TARGET JOB DESCRIPTION:")
	assert.Contains(t, body, llm.TruncationMarker)
	assert.Less(t, strings.Count(body, strings.Repeat("j", 50)), JobDescriptionCap)
}

func TestBuildUserMessageOmitsEmptySections(t *testing.T) {
	body := BuildUserMessage(Request{
		Messages: []Message{{Role: "user", Content: "Hi"}},
		Resume:   chatResume(),
	})

	assert.NotContains(t, body, "CANDIDATE BACKGROUND")
	assert.NotContains(t, body, "TARGET JOB DESCRIPTION")
	assert.Contains(t, body, "CONVERSATION:")
}
