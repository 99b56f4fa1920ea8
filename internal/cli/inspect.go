package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mgpai22/sourceplan/internal/subtitle"
	"github.com/spf13/cobra"
)

const inspectTextWidth = 60

var inspectCmd = &cobra.Command{
	Use:   "inspect [subtitle_file]",
	Short: "List the parsed segments of a subtitle file",
	Long: `Parse a SubRip file and print its segments as a table.

With --transcript the normalized SubRip text is printed instead, exactly as
it is stored in exported archives.

Examples:
  sourceplan inspect narration.srt
  sourceplan inspect narration.srt --encoding euc-kr --transcript`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().
		Bool("transcript", false, "Print the normalized transcript instead of a table")
}

func runInspect(cmd *cobra.Command, args []string) error {
	transcript, _ := cmd.Flags().GetBool("transcript")

	store, err := loadTranscript(cmd, args[0])
	if err != nil {
		return err
	}
	segments := store.Snapshot()

	if transcript {
		return subtitle.WriteTranscript(cmd.OutOrStdout(), segments)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSegments(segments))
	fmt.Fprintln(cmd.OutOrStdout(), summarizeTypes(segments))
	return nil
}

func renderSegments(segments []subtitle.Segment) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Type", "Mood", "Text"})

	for _, seg := range segments {
		tw.AppendRow(table.Row{
			seg.Index,
			seg.StartTimecode,
			seg.EndTimecode,
			string(seg.SourceType),
			seg.Mood,
			ellipsize(seg.Text, inspectTextWidth),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func summarizeTypes(segments []subtitle.Segment) string {
	counts := make(map[subtitle.SourceType]int)
	for _, seg := range segments {
		counts[seg.SourceType]++
	}

	parts := make([]string, 0, len(subtitle.SourceTypes))
	for _, st := range subtitle.SourceTypes {
		if counts[st] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[st], strings.ToLower(st.Label())))
		}
	}
	return fmt.Sprintf("%d segments: %s", len(segments), strings.Join(parts, ", "))
}

func ellipsize(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
