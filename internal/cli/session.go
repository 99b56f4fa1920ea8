package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mgpai22/sourceplan/internal/enrich"
	"github.com/mgpai22/sourceplan/internal/imagegen"
	"github.com/mgpai22/sourceplan/internal/subtitle"
	"github.com/mgpai22/sourceplan/internal/suggest"
	"github.com/spf13/cobra"
)

// loadTranscript parses the subtitle file into a fresh store.
func loadTranscript(cmd *cobra.Command, path string) (*subtitle.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file not found: %s", path)
	}

	enc, _ := cmd.Flags().GetString("encoding")
	if enc == "" {
		enc = cfg.Input.Encoding
	}

	logger.Infow("Parsing subtitle file", "input", path, "encoding", enc)
	segments, err := subtitle.Load(path, enc, cfg.DefaultSourceType())
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("subtitle file contains no segments")
	}

	logger.Infow("Parsed subtitle file", "segments", len(segments))
	return subtitle.NewStore(segments), nil
}

// newEnricher wires the configured collaborators to store.
func newEnricher(ctx context.Context, store *subtitle.Store) (*enrich.Enricher, error) {
	opts := cfg.SuggestOptions()
	if opts.APIKey == "" {
		logger.Warnw("No LLM API key configured; suggestions use static placeholders",
			"provider", opts.Provider,
		)
	}

	classifier, links, err := suggest.New(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion service: %w", err)
	}

	provider, err := imagegen.ParseProvider(cfg.Image.Provider)
	if err != nil {
		return nil, err
	}
	images, err := imagegen.Factory(provider, cfg.Image.APIKey, imagegen.Options{
		Model: cfg.Image.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create image generator: %w", err)
	}

	return enrich.New(store, enrich.Config{
		Classifier:  classifier,
		Links:       links,
		Images:      images,
		Logger:      logger,
		Concurrency: cfg.LLM.Concurrency,
		AspectRatio: cfg.Image.AspectRatio,
		Resolution:  cfg.Image.Resolution,
	}), nil
}
