package gemini

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/chat-relay/internal/domain/chat"
	"google.golang.org/genai"
)

type fakeStreamer struct {
	responses []*genai.GenerateContentResponse
	failAfter int // yield an error after this many responses; <0 disables
	pulled    int

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeStreamer) GenerateContentStream(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.model, f.contents, f.config = model, contents, config
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for i, r := range f.responses {
			if f.failAfter >= 0 && i == f.failAfter {
				yield(nil, errors.New("upstream reset"))
				return
			}
			f.pulled++
			if !yield(r, nil) {
				return
			}
		}
		if f.failAfter >= len(f.responses) {
			yield(nil, errors.New("upstream reset"))
		}
	}
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: s}}},
		}},
	}
}

func collect(seq iter.Seq2[string, error]) ([]string, error) {
	var out []string
	for s, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

func testConversation() chat.Conversation {
	return chat.Conversation{
		History: []chat.Turn{
			{Role: chat.RoleUser, Text: "hi"},
			{Role: chat.RoleAssistant, Text: "hello"},
		},
		Prompt: chat.Turn{Role: chat.RoleUser, Text: "how are you?"},
	}
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestStream_SkipsEmptyIncrements(t *testing.T) {
	f := &fakeStreamer{
		responses: []*genai.GenerateContentResponse{textResponse("He"), textResponse(""), nil, textResponse("llo")},
		failAfter: -1,
	}
	g := newGenerator(f, Config{SystemPrompt: "be nice"})

	got, err := collect(g.Stream(context.Background(), testConversation()))
	require.NoError(t, err)
	assert.Equal(t, []string{"He", "llo"}, got)
	assert.Equal(t, DefaultModel, f.model)
	require.NotNil(t, f.config)
	require.NotNil(t, f.config.SystemInstruction)
	assert.Equal(t, "be nice", f.config.SystemInstruction.Parts[0].Text)
}

func TestStream_MapsRoles(t *testing.T) {
	f := &fakeStreamer{failAfter: -1}
	g := newGenerator(f, Config{Model: "gemini-test"})

	_, err := collect(g.Stream(context.Background(), testConversation()))
	require.NoError(t, err)

	assert.Equal(t, "gemini-test", f.model)
	assert.Nil(t, f.config)
	require.Len(t, f.contents, 3)
	wantRoles := []string{"user", "model", "user"}
	wantText := []string{"hi", "hello", "how are you?"}
	for i, c := range f.contents {
		assert.Equal(t, wantRoles[i], string(c.Role))
		assert.Equal(t, wantText[i], c.Parts[0].Text)
	}
}

func TestStream_PromptAlwaysSentAsUser(t *testing.T) {
	f := &fakeStreamer{failAfter: -1}
	g := newGenerator(f, Config{})
	conv := testConversation()
	conv.Prompt.Role = chat.RoleAssistant

	_, err := collect(g.Stream(context.Background(), conv))
	require.NoError(t, err)

	require.Len(t, f.contents, 3)
	last := f.contents[len(f.contents)-1]
	assert.Equal(t, genai.RoleUser, last.Role)
	assert.Equal(t, "how are you?", last.Parts[0].Text)
}

func TestStream_ErrorAfterIncrement(t *testing.T) {
	f := &fakeStreamer{
		responses: []*genai.GenerateContentResponse{textResponse("partial"), textResponse("never")},
		failAfter: 1,
	}
	g := newGenerator(f, Config{})

	got, err := collect(g.Stream(context.Background(), testConversation()))
	assert.Equal(t, []string{"partial"}, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream reset")
}

func TestStream_StopsWhenConsumerStops(t *testing.T) {
	f := &fakeStreamer{
		responses: []*genai.GenerateContentResponse{textResponse("a"), textResponse("b"), textResponse("c")},
		failAfter: -1,
	}
	g := newGenerator(f, Config{})

	for range g.Stream(context.Background(), testConversation()) {
		break
	}
	assert.Equal(t, 1, f.pulled)
}
