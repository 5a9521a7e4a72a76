// Package gemini adapts the Gemini API (google.golang.org/genai) to ports.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"github.com/target/chat-relay/internal/domain/chat"
	"github.com/target/chat-relay/internal/ports"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned by NewGenerator when no API key is configured.
var ErrNoAPIKey = errors.New("gemini: API key is not configured")

// Config holds the Gemini connection settings.
type Config struct {
	APIKey       string
	Model        string
	SystemPrompt string
	HTTPClient   *http.Client // Optional
}

// contentStreamer is the subset of *genai.Models used here.
type contentStreamer interface {
	GenerateContentStream(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Generator streams answers from a Gemini model.
type Generator struct {
	models       contentStreamer
	model        string
	systemPrompt string
}

var _ ports.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed generator. No request is made until Stream is called.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(models contentStreamer, cfg Config) *Generator {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Generator{models: models, model: model, systemPrompt: cfg.SystemPrompt}
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.model }

// Stream sends the conversation to the model and yields each non-empty text increment.
// A failure is yielded once as a non-nil error, after which the sequence ends.
func (g *Generator) Stream(ctx context.Context, conv chat.Conversation) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		upstream := g.models.GenerateContentStream(ctx, g.model, toContents(conv), g.requestConfig())
		for resp, err := range upstream {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			if resp == nil {
				continue
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func (g *Generator) requestConfig() *genai.GenerateContentConfig {
	if g.systemPrompt == "" {
		return nil
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
	}
}

// toContents flattens context and prompt into Gemini contents, mapping the assistant role
// onto Gemini's "model" role.
func toContents(conv chat.Conversation) []*genai.Content {
	contents := make([]*genai.Content, 0, len(conv.History)+1)
	for _, t := range conv.History {
		contents = append(contents, genai.NewContentFromText(t.Text, toRole(t.Role)))
	}
	// The prompt is the user's next message regardless of the role the client labelled it with.
	return append(contents, genai.NewContentFromText(conv.Prompt.Text, genai.RoleUser))
}

func toRole(r chat.Role) genai.Role {
	if r == chat.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}
