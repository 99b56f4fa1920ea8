package imagegen

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Generator using the OpenAI Images API
type OpenAIGenerator struct {
	client openai.Client
	model  openai.ImageModel
}

func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	m := openai.ImageModel(model)
	if model == "" {
		m = openai.ImageModelDallE3
	}

	return &OpenAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  m,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	req, err := req.Normalize()
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.StyledPrompt(),
		Model:          g.model,
		N:              openai.Int(1),
		Size:           openAISize(req.AspectRatio),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if resp == nil || len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("no image URL in response")
	}
	return resp.Data[0].URL, nil
}

// openAISize maps an aspect ratio onto the closest size the Images API offers.
func openAISize(aspectRatio string) openai.ImageGenerateParamsSize {
	switch aspectRatio {
	case "16:9", "21:9", "3:2", "4:3", "5:4":
		return openai.ImageGenerateParamsSize1792x1024
	case "9:16", "2:3", "3:4", "4:5":
		return openai.ImageGenerateParamsSize1024x1792
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}
