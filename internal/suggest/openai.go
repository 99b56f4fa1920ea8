package suggest

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Completer using OpenAI Chat Completions
type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(
	ctx context.Context,
	apiKey string,
	model string,
) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAICompleter{
		client: client,
		model:  model,
	}, nil
}

func (c *OpenAICompleter) Complete(
	ctx context.Context,
	system string,
	prompt string,
) (string, error) {
	completion, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(prompt),
			},
			Model: c.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}

	return text, nil
}
