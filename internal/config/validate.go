package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/mgpai22/sourceplan/internal/archive"
	"github.com/mgpai22/sourceplan/internal/imagegen"
	"github.com/mgpai22/sourceplan/internal/subtitle"
	"github.com/mgpai22/sourceplan/internal/suggest"
	"golang.org/x/text/encoding/htmlindex"
)

var tokenNameRegex = regexp.MustCompile(`^\d{2,}_\d{2}_\d{2}_\d{3}`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if c.Input.Encoding != "" {
		if _, err := htmlindex.Get(c.Input.Encoding); err != nil {
			return fmt.Errorf("input.encoding %q is not a known encoding", c.Input.Encoding)
		}
	}
	return c.validateLogging()
}

func (c *Config) validateLLM() error {
	if _, err := suggest.ParseProvider(c.LLM.Provider); err != nil {
		return fmt.Errorf("llm.provider: %w", err)
	}
	if c.LLM.BatchSize < 0 {
		return errors.New("llm.batch_size must be positive")
	}
	if c.LLM.Concurrency < 0 {
		return errors.New("llm.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateImage() error {
	if _, err := imagegen.ParseProvider(c.Image.Provider); err != nil {
		return fmt.Errorf("image.provider: %w", err)
	}
	if !slices.Contains(imagegen.AspectRatios, c.Image.AspectRatio) {
		return fmt.Errorf(
			"image.aspect_ratio %q is not supported (use one of %s)",
			c.Image.AspectRatio,
			strings.Join(imagegen.AspectRatios, ", "),
		)
	}
	if !slices.Contains(imagegen.Resolutions, c.Image.Resolution) {
		return fmt.Errorf(
			"image.resolution %q is not supported (use one of %s)",
			c.Image.Resolution,
			strings.Join(imagegen.Resolutions, ", "),
		)
	}
	return nil
}

func (c *Config) validateExport() error {
	if _, err := archive.ParseCollisionPolicy(c.Export.CollisionPolicy); err != nil {
		return fmt.Errorf("export.collision_policy: %w", err)
	}
	if strings.ContainsAny(c.Export.TranscriptName, `/\`) {
		return errors.New("export.transcript_name must be a plain file name")
	}
	if strings.EqualFold(c.Export.TranscriptName, archive.ManifestFileName) {
		return fmt.Errorf("export.transcript_name must not be %s", archive.ManifestFileName)
	}
	// segment folders are named HH_MM_SS_mmm
	if tokenNameRegex.MatchString(c.Export.TranscriptName) {
		return fmt.Errorf(
			"export.transcript_name %q looks like a segment folder name",
			c.Export.TranscriptName,
		)
	}
	if _, err := subtitle.ParseSourceType(c.Export.DefaultClassification); err != nil {
		return fmt.Errorf("export.default_classification: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}

// SuggestOptions returns the settings for the classification and link services.
func (c *Config) SuggestOptions() suggest.Options {
	provider, _ := suggest.ParseProvider(c.LLM.Provider)
	return suggest.Options{
		Provider:    provider,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		BatchSize:   c.LLM.BatchSize,
		Concurrency: c.LLM.Concurrency,
	}
}

// ArchiveOptions returns the export layout settings.
func (c *Config) ArchiveOptions() archive.Options {
	policy, _ := archive.ParseCollisionPolicy(c.Export.CollisionPolicy)
	return archive.Options{
		Collision:      policy,
		TranscriptName: c.Export.TranscriptName,
	}
}

// DefaultSourceType returns the classification assigned to freshly parsed
// segments.
func (c *Config) DefaultSourceType() subtitle.SourceType {
	st, err := subtitle.ParseSourceType(c.Export.DefaultClassification)
	if err != nil {
		return subtitle.SourceNone
	}
	return st
}
