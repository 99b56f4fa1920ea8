package archive

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mgpai22/sourceplan/internal/subtitle"
)

var manifestHeader = []string{
	"index",
	"startTimecode",
	"endTimecode",
	"sourceType",
	"mood",
	"text",
	"urls",
}

// every field is always present; unset advisory values are null
type metaDocument struct {
	Index             int                      `json:"index"`
	StartTimecode     string                   `json:"startTimecode"`
	EndTimecode       string                   `json:"endTimecode"`
	SourceType        subtitle.SourceType      `json:"sourceType"`
	Mood              string                   `json:"mood"`
	SuggestedReason   *string                  `json:"suggestedReason"`
	GeneratedAssetURL *string                  `json:"generatedAssetUrl"`
	ReferenceLinks    []subtitle.ReferenceLink `json:"referenceLinks"`
}

func metaJSON(seg subtitle.Segment) ([]byte, error) {
	doc := metaDocument{
		Index:             seg.Index,
		StartTimecode:     seg.StartTimecode,
		EndTimecode:       seg.EndTimecode,
		SourceType:        seg.SourceType,
		Mood:              seg.Mood,
		SuggestedReason:   optional(seg.SuggestedReason),
		GeneratedAssetURL: optional(seg.GeneratedAssetURL),
		ReferenceLinks:    seg.ReferenceLinks,
	}
	if doc.ReferenceLinks == nil {
		doc.ReferenceLinks = []subtitle.ReferenceLink{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func urlsText(links []subtitle.ReferenceLink) string {
	parts := make([]string, len(links))
	for i, link := range links {
		if link.Title != "" {
			parts[i] = link.Title + "\n" + link.URL
		} else {
			parts[i] = link.URL
		}
	}
	return strings.Join(parts, "\n\n")
}

func manifestCSV(segments []subtitle.Segment) string {
	rows := make([]string, 0, len(segments)+1)
	rows = append(rows, strings.Join(manifestHeader, ","))

	for _, seg := range segments {
		fields := []string{
			strconv.Itoa(seg.Index),
			csvField(seg.StartTimecode),
			csvField(seg.EndTimecode),
			csvField(string(seg.SourceType)),
			csvField(seg.Mood),
			quoteCSV(seg.Text),
			csvField(strings.Join(seg.URLs(), "; ")),
		}
		rows = append(rows, strings.Join(fields, ","))
	}

	return strings.Join(rows, "\n")
}

// text is always quoted; other columns only when they need it
func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quoteCSV(s)
	}
	return s
}
