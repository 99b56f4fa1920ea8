package cli

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mgpai22/sourceplan/internal/archive"
	"github.com/mgpai22/sourceplan/internal/enrich"
	"github.com/mgpai22/sourceplan/internal/imagegen"
	"github.com/mgpai22/sourceplan/internal/plan"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [subtitle_file]",
	Short: "Export segments as a zip archive keyed by timecode",
	Long: `Export a subtitle file as a zip archive with one folder per segment.

Each folder is named after the segment start time (HH_MM_SS_mmm) and holds
text.txt, meta.json, and urls.txt when reference links exist. The archive
also contains manifest.csv and the reconstructed transcript.

Edits from a YAML plan are applied first, then any requested AI steps run
in the order classify, suggest links, generate images. A failed AI call is
reported and leaves that segment unchanged; the export still completes.

Examples:
  sourceplan export narration.srt
  sourceplan export narration.srt --plan narration.plan.yaml -o out.zip
  sourceplan export narration.srt --classify --suggest-links --generate-images
  sourceplan export narration.srt --collision reject`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		String("plan", "", "YAML plan with segment edits to apply before export")
	exportCmd.Flags().
		Bool("classify", false, "Suggest a source type for every segment")
	exportCmd.Flags().
		Bool("suggest-links", false, "Suggest reference links for real segments")
	exportCmd.Flags().
		Bool("generate-images", false, "Generate images for illustration and photo segments")
	exportCmd.Flags().
		Bool("replace", false, "Re-run link and image suggestions for segments that already have them")
	exportCmd.Flags().
		String("collision", "", "Folder name collision policy (suffix, overwrite, reject)")
}

func runExport(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	planPath, _ := cmd.Flags().GetString("plan")
	classify, _ := cmd.Flags().GetBool("classify")
	suggestLinks, _ := cmd.Flags().GetBool("suggest-links")
	generateImages, _ := cmd.Flags().GetBool("generate-images")
	replace, _ := cmd.Flags().GetBool("replace")
	collision, _ := cmd.Flags().GetString("collision")
	outputPath, _ := cmd.Flags().GetString("output")

	opts := cfg.ArchiveOptions()
	if collision != "" {
		policy, err := archive.ParseCollisionPolicy(collision)
		if err != nil {
			return err
		}
		opts.Collision = policy
	}

	if generateImages && cfg.Image.APIKey == "" {
		return fmt.Errorf(
			"image generation requires an API key: set image.api_key or %s",
			imageKeyEnv(cfg.Image.Provider),
		)
	}

	if outputPath == "" {
		outputPath = filepath.Join(
			filepath.Dir(subtitlePath),
			archive.FileName(subtitlePath),
		)
	}

	logger.Infow("Starting export",
		"input", subtitlePath,
		"output", outputPath,
		"plan", planPath,
		"collision", opts.Collision,
	)

	store, err := loadTranscript(cmd, subtitlePath)
	if err != nil {
		return err
	}

	if planPath != "" {
		doc, err := readPlan(planPath)
		if err != nil {
			return err
		}
		missing := plan.Apply(store, doc)
		if len(missing) > 0 {
			logger.Warnw("Plan entries matched no segment", "indices", missing)
		}
		logger.Infow("Applied plan", "entries", len(doc.Segments)-len(missing))
	}

	var failures int
	if classify || suggestLinks || generateImages {
		enricher, err := newEnricher(ctx, store)
		if err != nil {
			return err
		}
		enricher = enricher.WithReplace(replace)

		if classify {
			if _, err := enricher.Classify(ctx); err != nil {
				failures += reportFailure(cmd, "classification", err)
			}
		}
		if suggestLinks {
			if _, err := enricher.SuggestLinks(ctx); err != nil {
				failures += reportFailure(cmd, "link suggestion", err)
			}
		}
		if generateImages {
			if _, err := enricher.GenerateImages(ctx); err != nil {
				failures += reportFailure(cmd, "image generation", err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export cancelled: %w", err)
	}

	segments := store.Snapshot()
	tree, err := archive.Assemble(segments, opts)
	if err != nil {
		return fmt.Errorf("failed to assemble archive: %w", err)
	}
	var buf bytes.Buffer
	if err := tree.WriteZip(&buf); err != nil {
		return fmt.Errorf("failed to build archive: %w", err)
	}

	logger.Infow("Writing archive", "bytes", buf.Len(), "folders", len(tree.Folders()))
	if err := archive.WriteFile(outputPath, buf.Bytes()); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Archive exported successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Segments: %d\n", len(segments))
	fmt.Fprintf(out, "  Folders: %d\n", len(tree.Folders()))
	if failures > 0 {
		fmt.Fprintf(out, "  AI failures: %d (see messages above)\n", failures)
	}

	return nil
}

// reportFailure prints every per-segment failure and returns how many there
// were.
func reportFailure(cmd *cobra.Command, step string, err error) int {
	var segErrs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		segErrs = joined.Unwrap()
	} else {
		segErrs = []error{err}
	}

	for _, e := range segErrs {
		var segErr *enrich.SegmentError
		if errors.As(e, &segErr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s failed for segment %d: %v\n", step, segErr.Index, segErr.Err)
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s failed: %v\n", step, e)
	}
	return len(segErrs)
}

func imageKeyEnv(provider string) string {
	if provider == string(imagegen.ProviderOpenAI) {
		return "OPENAI_API_KEY"
	}
	return "FAL_KEY"
}
