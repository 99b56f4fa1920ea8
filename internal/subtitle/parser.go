package subtitle

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	indexLineRegex  = regexp.MustCompile(`^\d+$`)
	timingLineRegex = regexp.MustCompile(
		`^(\d{2,}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2}[,.]\d{3})$`,
	)
)

// Parse scans a SubRip transcript and returns its segments in the order they
// appear. Blocks that do not match the grammar (index line, timing line, one
// or more text lines) are skipped; empty input yields an empty slice.
func Parse(raw string, defaultType SourceType) []Segment {
	lines := splitLines(normalize(raw))
	segments := make([]Segment, 0)

	for i := 0; i < len(lines); {
		if isBlank(lines[i]) {
			i++
			continue
		}

		end := i
		for end < len(lines) && !isBlank(lines[end]) {
			end++
		}

		if seg, ok := parseBlock(lines[i:end], defaultType); ok {
			segments = append(segments, seg)
		}
		i = end
	}

	return segments
}

func parseBlock(block []string, defaultType SourceType) (Segment, bool) {
	if len(block) < 3 {
		return Segment{}, false
	}

	indexLine := strings.TrimSpace(block[0])
	if !indexLineRegex.MatchString(indexLine) {
		return Segment{}, false
	}
	index, err := strconv.Atoi(indexLine)
	if err != nil || index <= 0 {
		return Segment{}, false
	}

	matches := timingLineRegex.FindStringSubmatch(strings.TrimSpace(block[1]))
	if matches == nil {
		return Segment{}, false
	}
	startMs, err := ParseTimecode(matches[1])
	if err != nil {
		return Segment{}, false
	}
	endMs, err := ParseTimecode(matches[2])
	if err != nil {
		return Segment{}, false
	}

	text := strings.Join(block[2:], "\n")
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	return Segment{
		Index:          index,
		StartMs:        startMs,
		EndMs:          endMs,
		StartTimecode:  FormatTimecode(startMs),
		EndTimecode:    FormatTimecode(endMs),
		Text:           text,
		SourceType:     defaultType,
		ReferenceLinks: []ReferenceLink{},
	}, true
}

func normalize(raw string) string {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return strings.TrimSpace(raw)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
