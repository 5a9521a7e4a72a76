package config

import (
	"strings"
	"time"
)

// DefaultSystemPrompt instructs the model to answer helpfully in Japanese.
const DefaultSystemPrompt = "あなたは親切で知識豊富なAIアシスタントです。\n" +
	"ユーザーの質問に対して、わかりやすく丁寧に回答してください。\n" +
	"日本語で回答し、必要に応じてコード例や具体例を提示してください。"

// UpstreamConfig configures the generator chat requests are relayed to.
type UpstreamConfig struct {
	// APIKey authenticates against the Gemini API. Without it chat requests fail with 503.
	APIKey string `env:"GOOGLE_API_KEY"`

	// Model is the Gemini model name.
	Model string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// SystemPrompt is sent as the system instruction of every request.
	SystemPrompt string `env:"SYSTEM_PROMPT"`

	// HistoryLimit is the number of most recent turns forwarded upstream.
	HistoryLimit int `env:"UPSTREAM_HISTORY_LIMIT" envDefault:"20"`

	// FirstChunkTimeout bounds the wait for the first increment, before any response is sent.
	FirstChunkTimeout time.Duration `env:"UPSTREAM_FIRST_CHUNK_TIMEOUT" envDefault:"60s"`

	// StreamTimeout bounds a whole stream.
	StreamTimeout time.Duration `env:"UPSTREAM_STREAM_TIMEOUT" envDefault:"5m"`
}

// Sanitize trims values and restores defaults for out-of-range settings.
func (u *UpstreamConfig) Sanitize() {
	u.APIKey = strings.TrimSpace(u.APIKey)
	if u.Model = strings.TrimSpace(u.Model); u.Model == "" {
		u.Model = "gemini-2.5-flash"
	}
	if strings.TrimSpace(u.SystemPrompt) == "" {
		u.SystemPrompt = DefaultSystemPrompt
	}
	if u.HistoryLimit <= 0 {
		u.HistoryLimit = 20
	}
	if u.FirstChunkTimeout <= 0 {
		u.FirstChunkTimeout = 60 * time.Second
	}
	if u.StreamTimeout <= 0 {
		u.StreamTimeout = 5 * time.Minute
	}
}

// HasAPIKey reports whether the generator can be constructed.
func (u *UpstreamConfig) HasAPIKey() bool {
	return u.APIKey != ""
}
