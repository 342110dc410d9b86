package config

import "time"

// ProviderConfig contains remote research provider configuration.
//
// The deep research provider speaks an OpenAI-compatible background Responses
// API. The JMESPath expressions let the payload shape drift between provider
// versions without a code change.
type ProviderConfig struct {
	// BaseURL is the provider API root, e.g. "https://api.openai.com/v1".
	BaseURL string `env:"PROVIDER_BASE_URL" envDefault:"https://api.openai.com/v1"`

	// APIKey authenticates against the provider.
	APIKey string `env:"PROVIDER_API_KEY"`

	// ResearchModel is the model used for background research tasks.
	ResearchModel string `env:"PROVIDER_RESEARCH_MODEL" envDefault:"o4-mini-deep-research"`

	// TransformModel is the model used for the cheap structuring call.
	TransformModel string `env:"PROVIDER_TRANSFORM_MODEL" envDefault:"gpt-4.1-mini"`

	// RequestTimeout bounds a single provider round-trip. Background task
	// creation and status reads are quick; only the synchronous transform
	// call needs headroom.
	RequestTimeout time.Duration `env:"PROVIDER_REQUEST_TIMEOUT" envDefault:"120s"`

	// OutputTextPath extracts the research prose from a task response. The
	// expression may yield a single string or a list of strings; list parts
	// are joined with newlines by the client.
	OutputTextPath string `env:"PROVIDER_OUTPUT_TEXT_PATH" envDefault:"output[?type=='message'][].content[?type=='output_text'][].text"`

	// ToolTracePath extracts the ordered tool-invocation trace from a task response.
	ToolTracePath string `env:"PROVIDER_TOOL_TRACE_PATH" envDefault:"output[?type=='web_search_call']"`

	// Gemini configuration for deployments routing the structuring call to
	// Gemini instead of the deep research provider.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	UseGemini    bool   `env:"USE_GEMINI_TRANSFORMER" envDefault:"false"`
}

// Sanitize applies guardrails to provider configuration values.
func (p *ProviderConfig) Sanitize() {
	if p.RequestTimeout < time.Second {
		p.RequestTimeout = time.Second
	}
	if p.UseGemini && p.GeminiAPIKey == "" {
		p.UseGemini = false
	}
}
