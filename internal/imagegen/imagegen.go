package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mgpai22/sourceplan/internal/subtitle"
)

// ErrNotConfigured is returned when no image backend has credentials. Callers
// must treat it as a failure; no placeholder URL is ever produced.
var ErrNotConfigured = errors.New("image generation is not configured")

const (
	DefaultAspectRatio = "16:9"
	DefaultResolution  = "1K"
	maxPromptLen       = 900

	illustrationPrefix = "Professional illustration style, digital art, clean artistic drawing, not a photo. Scene: "
	photoPrefix        = "Photorealistic, real photograph, high quality realistic photo, lifelike, not illustration. Scene: "
)

// AspectRatios lists the ratios accepted by the FAL backend.
var AspectRatios = []string{
	"1:1", "16:9", "9:16", "4:3", "3:4", "3:2", "2:3", "21:9", "5:4", "4:5",
}

// Resolutions lists the output sizes accepted by the FAL backend.
var Resolutions = []string{"1K", "2K", "4K"}

// one image to render
type Request struct {
	Prompt      string
	SourceType  subtitle.SourceType
	AspectRatio string
	Resolution  string
}

// Generator renders one image and returns its absolute URL.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// image service provider
type Provider string

const (
	ProviderFAL    Provider = "fal"
	ProviderOpenAI Provider = "openai"
)

func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderFAL, ProviderOpenAI:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported image provider %q: use fal or openai", s)
	}
}

type Options struct {
	Model       string
	AspectRatio string
	Resolution  string
}

// Disabled is the Generator used when no API key is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}

// creates Generator based on provider; an empty key yields Disabled
func Factory(provider Provider, apiKey string, opts Options) (Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return Disabled{}, nil
	}

	switch provider {
	case ProviderFAL:
		return NewFALGenerator(FALConfig{APIKey: apiKey, Model: opts.Model}), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(apiKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", provider)
	}
}

// Normalize fills request defaults and validates the fields.
func (r Request) Normalize() (Request, error) {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Prompt == "" {
		return r, errors.New("prompt required")
	}
	if r.SourceType == "" {
		r.SourceType = subtitle.SourceIllustration
	}
	if !r.SourceType.UsesMood() {
		return r, fmt.Errorf("cannot generate an image for source type %q", r.SourceType)
	}
	if r.AspectRatio == "" {
		r.AspectRatio = DefaultAspectRatio
	}
	if !contains(AspectRatios, r.AspectRatio) {
		return r, fmt.Errorf("unsupported aspect ratio %q", r.AspectRatio)
	}
	if r.Resolution == "" {
		r.Resolution = DefaultResolution
	}
	r.Resolution = strings.ToUpper(r.Resolution)
	if !contains(Resolutions, r.Resolution) {
		return r, fmt.Errorf("unsupported resolution %q", r.Resolution)
	}
	return r, nil
}

// StyledPrompt prefixes the scene text with the style for the request's
// source type.
func (r Request) StyledPrompt() string {
	prefix := illustrationPrefix
	if r.SourceType == subtitle.SourcePhoto {
		prefix = photoPrefix
	}
	return prefix + truncateRunes(strings.TrimSpace(r.Prompt), maxPromptLen)
}

// RequestFor builds the image request for a segment, carrying its mood into
// the scene description.
func RequestFor(seg subtitle.Segment, aspectRatio, resolution string) Request {
	prompt := seg.Text
	if mood := strings.TrimSpace(seg.Mood); mood != "" {
		prompt = prompt + " Mood: " + mood + "."
	}
	return Request{
		Prompt:      prompt,
		SourceType:  seg.SourceType,
		AspectRatio: aspectRatio,
		Resolution:  resolution,
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
