package subtitle

import (
	"fmt"
	"io"
	"strings"
)

// FormatBlock renders one segment as a SubRip block including the trailing
// blank line.
func FormatBlock(seg Segment) string {
	return fmt.Sprintf(
		"%d\n%s --> %s\n%s\n\n",
		seg.Index,
		seg.StartTimecode,
		seg.EndTimecode,
		seg.Text,
	)
}

// FormatTranscript concatenates the blocks of all segments in order.
func FormatTranscript(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(FormatBlock(seg))
	}
	return sb.String()
}

// WriteTranscript writes the reconstructed transcript to w.
func WriteTranscript(w io.Writer, segments []Segment) error {
	_, err := io.WriteString(w, FormatTranscript(segments))
	return err
}
