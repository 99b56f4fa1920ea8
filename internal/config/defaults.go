package config

const (
	defaultLLMProvider     = "openai"
	defaultBatchSize       = 50
	defaultConcurrency     = 3
	defaultImageProvider   = "fal"
	defaultAspectRatio     = "16:9"
	defaultResolution      = "1K"
	defaultCollision       = "suffix"
	defaultTranscriptName  = "full.srt"
	defaultClassification  = "none"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultProviderEnvName = "SOURCEPLAN_LLM_PROVIDER"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LLM: LLM{
			Provider:    defaultLLMProvider,
			BatchSize:   defaultBatchSize,
			Concurrency: defaultConcurrency,
		},
		Image: Image{
			Provider:    defaultImageProvider,
			AspectRatio: defaultAspectRatio,
			Resolution:  defaultResolution,
		},
		Export: Export{
			CollisionPolicy:       defaultCollision,
			TranscriptName:        defaultTranscriptName,
			DefaultClassification: defaultClassification,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
