package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var timecodeRegex = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})$`)

// FormatError reports text that does not follow the HH:MM:SS,mmm grammar.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid timecode %q", e.Text)
	}
	return fmt.Sprintf("invalid timecode %q: %s", e.Text, e.Reason)
}

// FormatTimecode renders a millisecond offset as HH:MM:SS,mmm. Hours are at
// least two digits and grow without truncation.
func FormatTimecode(ms int64) string {
	h, m, s, millis := splitMillis(ms)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, millis)
}

// ParseTimecode converts HH:MM:SS,mmm (or HH:MM:SS.mmm) into milliseconds.
func ParseTimecode(text string) (int64, error) {
	matches := timecodeRegex.FindStringSubmatch(text)
	if matches == nil {
		return 0, &FormatError{Text: text}
	}

	hours, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, &FormatError{Text: text, Reason: "hours out of range"}
	}
	minutes, _ := strconv.ParseInt(matches[2], 10, 64)
	seconds, _ := strconv.ParseInt(matches[3], 10, 64)
	millis, _ := strconv.ParseInt(matches[4], 10, 64)

	if minutes > 59 {
		return 0, &FormatError{Text: text, Reason: "minutes must be 00-59"}
	}
	if seconds > 59 {
		return 0, &FormatError{Text: text, Reason: "seconds must be 00-59"}
	}

	rest := (minutes*60+seconds)*1000 + millis
	if hours > (math.MaxInt64-rest)/3600000 {
		return 0, &FormatError{Text: text, Reason: "hours out of range"}
	}

	return hours*3600000 + rest, nil
}

// NumberingToken names the archive folder of a segment. Only the start
// offset participates, so two segments starting at the same millisecond
// share a token.
func NumberingToken(startMs, endMs int64) string {
	h, m, s, millis := splitMillis(startMs)
	return fmt.Sprintf("%02d_%02d_%02d_%03d", h, m, s, millis)
}

func splitMillis(ms int64) (h, m, s, millis int64) {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	return totalSeconds / 3600, (totalSeconds % 3600) / 60, totalSeconds % 60, ms % 1000
}
