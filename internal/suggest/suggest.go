package suggest

import (
	"context"
	"fmt"
	"strings"
)

// Completer sends one system+user prompt pair to a chat model and returns the
// raw text of the reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// language model provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf(
			"unsupported LLM provider %q: use openai, anthropic, or gemini",
			s,
		)
	}
}

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

type Options struct {
	Provider    Provider
	APIKey      string
	Model       string
	BatchSize   int // segments per classification request (default 50)
	Concurrency int // classification requests in flight (default 3)
}

// creates Completer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	model string,
) (Completer, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAICompleter(ctx, apiKey, model)
	case ProviderAnthropic:
		return NewAnthropicCompleter(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// New returns the classification and reference-link services for opts. Without
// an API key both fall back to their static implementations.
func New(ctx context.Context, opts Options) (Classifier, LinkSuggester, error) {
	if opts.APIKey == "" {
		return StaticClassifier{}, StaticLinkSuggester{}, nil
	}

	completer, err := Factory(ctx, opts.Provider, opts.APIKey, opts.Model)
	if err != nil {
		return nil, nil, err
	}

	return NewLLMClassifier(completer, opts.BatchSize, opts.Concurrency),
		NewLLMLinkSuggester(completer),
		nil
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return truncateRunes(s, maxLen) + "..."
}
