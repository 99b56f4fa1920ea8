package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() {
	c.normalizeLLM()
	c.normalizeImage()
	c.normalizeExport()
	c.Input.Encoding = strings.ToLower(strings.TrimSpace(c.Input.Encoding))
	c.normalizeLogging()
}

func (c *Config) normalizeLLM() {
	if value, ok := os.LookupEnv(defaultProviderEnvName); ok && strings.TrimSpace(value) != "" {
		c.LLM.Provider = value
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = lookupKey(llmKeyEnv(c.LLM.Provider)...)
	}
	if c.LLM.BatchSize == 0 {
		c.LLM.BatchSize = defaultBatchSize
	}
	if c.LLM.Concurrency == 0 {
		c.LLM.Concurrency = defaultConcurrency
	}
}

func (c *Config) normalizeImage() {
	c.Image.Provider = strings.ToLower(strings.TrimSpace(c.Image.Provider))
	if c.Image.Provider == "" {
		c.Image.Provider = defaultImageProvider
	}
	c.Image.Model = strings.TrimSpace(c.Image.Model)
	c.Image.APIKey = strings.TrimSpace(c.Image.APIKey)
	if c.Image.APIKey == "" {
		switch c.Image.Provider {
		case "fal":
			c.Image.APIKey = lookupKey("FAL_KEY")
		case "openai":
			c.Image.APIKey = lookupKey("OPENAI_API_KEY")
		}
	}
	c.Image.AspectRatio = strings.TrimSpace(c.Image.AspectRatio)
	if c.Image.AspectRatio == "" {
		c.Image.AspectRatio = defaultAspectRatio
	}
	c.Image.Resolution = strings.ToUpper(strings.TrimSpace(c.Image.Resolution))
	if c.Image.Resolution == "" {
		c.Image.Resolution = defaultResolution
	}
}

func (c *Config) normalizeExport() {
	c.Export.CollisionPolicy = strings.ToLower(strings.TrimSpace(c.Export.CollisionPolicy))
	if c.Export.CollisionPolicy == "" {
		c.Export.CollisionPolicy = defaultCollision
	}
	c.Export.TranscriptName = strings.TrimSpace(c.Export.TranscriptName)
	if c.Export.TranscriptName == "" {
		c.Export.TranscriptName = defaultTranscriptName
	}
	c.Export.DefaultClassification = strings.ToLower(strings.TrimSpace(c.Export.DefaultClassification))
	if c.Export.DefaultClassification == "" {
		c.Export.DefaultClassification = defaultClassification
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func llmKeyEnv(provider string) []string {
	switch provider {
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	case "gemini":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	default:
		return []string{"OPENAI_API_KEY"}
	}
}

func lookupKey(names ...string) string {
	for _, name := range names {
		if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
