package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// speaker of a message sent to a model
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// single conversation turn
type Message struct {
	Role    Role
	Content string
}

// one completion request: system instructions plus alternating turns that
// start with a user message
type Request struct {
	System   string
	Messages []Message
}

// interface for chat-style language models
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// language model provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultOpenAIModel   = "gpt-5-mini"
	DefaultOllamaModel   = "llama3.1"
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
	DefaultMaxTokens     = 8192
)

type Options struct {
	Model       string
	BaseURL     string   // OpenAI-compatible endpoint override
	Temperature *float64 // nil leaves the provider default
	MaxTokens   int
}

// creates Model based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Model, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiModel(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIModel(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicModel(ctx, apiKey, opts)
	case ProviderOllama:
		if apiKey == "" {
			apiKey = "ollama"
		}
		if opts.BaseURL == "" {
			opts.BaseURL = DefaultOllamaBaseURL
		}
		if opts.Model == "" {
			opts.Model = DefaultOllamaModel
		}
		return NewOpenAIModel(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", provider)
	}
}

// APIKeyEnv names the environment variable holding the provider's key.
func APIKeyEnv(provider Provider) string {
	switch provider {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOllama:
		return "OLLAMA_API_KEY"
	default:
		return "API_KEY"
	}
}

func validateRequest(req Request) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("request has no messages")
	}
	if req.Messages[0].Role != RoleUser {
		return fmt.Errorf("first message must come from the user, got %q", req.Messages[0].Role)
	}
	return nil
}

var codeFenceRegex = regexp.MustCompile("```[a-zA-Z]*[ \t]*\n?")

// CleanResponse trims a model reply and drops markdown code fences.
func CleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = codeFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
