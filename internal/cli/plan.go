package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/sourceplan/internal/plan"
	"github.com/mgpai22/sourceplan/internal/subtitle"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [subtitle_file]",
	Short: "Write an editable YAML plan for a subtitle file",
	Long: `Write a YAML plan listing every segment with its classification, mood,
reference links, and generated image. Edit the plan and pass it to
'sourceplan export --plan' to apply your changes.

Examples:
  sourceplan plan narration.srt
  sourceplan plan narration.srt --classify -o narration.plan.yaml
  sourceplan plan narration.srt -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().
		Bool("classify", false, "Pre-fill source types with AI suggestions")
}

func runPlan(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	classify, _ := cmd.Flags().GetBool("classify")
	outputPath, _ := cmd.Flags().GetString("output")

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outputPath = baseName + ".plan.yaml"
	}

	store, err := loadTranscript(cmd, subtitlePath)
	if err != nil {
		return err
	}

	if classify {
		enricher, err := newEnricher(ctx, store)
		if err != nil {
			return err
		}
		if _, err := enricher.Classify(ctx); err != nil {
			return err
		}
	}

	source := filepath.Base(subtitlePath)
	if outputPath == "-" {
		return plan.Dump(cmd.OutOrStdout(), source, store.Snapshot())
	}

	if err := writePlan(outputPath, source, store.Snapshot()); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	logger.Infow("Plan written", "output", absOutput, "segments", store.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "Plan written: %s\n", absOutput)
	return nil
}

func writePlan(path, source string, segments []subtitle.Segment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plan file: %w", err)
	}
	if err := plan.Dump(file, source, segments); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

func readPlan(path string) (plan.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return plan.Document{}, fmt.Errorf("failed to open plan: %w", err)
	}
	defer file.Close()
	return plan.Load(file)
}
