package llm

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Provider constants for narrative model selection.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds narrative model client configuration.
type Config struct {
	Provider string // "openai" or "gemini"
	APIKey   string // Required: API key for the provider
	BaseURL  string // Optional: custom API endpoint
	Model    string // Model name (e.g., "gpt-4o-mini", "gemini-1.5-flash")
}

// Request is one text-generation call. The system instruction frames the
// model, the user message carries the day's signals, and the response is
// the raw candidate text: callers own parsing and validation.
type Request struct {
	SystemInstruction string
	UserMessage       string
	Temperature       *float64 // nil = model default, explicit 0 = deterministic
	MaxOutputTokens   int
	SchemaName        string // optional structured-output schema (OpenAI only)
	Schema            any
}

// Response carries the candidate text and usage accounting.
type Response struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Client is a text-completion client. Implementations must honor context
// deadlines so a caller-supplied timeout always terminates the call.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// StatusError is returned when the provider answered with a non-success
// status. It lets callers distinguish "the service rejected us" from "we
// never reached the service".
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm status %d: %s", e.StatusCode, e.Message)
}

// New creates a Client for the configured provider. Defaults to Gemini if
// no provider is specified.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderGemini:
		return newGeminiClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// Temp is a helper for setting an explicit temperature.
func Temp(t float64) *float64 {
	return &t
}

// GenerateSchema generates a JSON schema for structured-output requests.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
