package subtitle

import (
	"fmt"
	"strings"
)

// SourceType is the visual-source classification of a segment.
type SourceType string

const (
	SourceNone         SourceType = "none"
	SourceIllustration SourceType = "illustration"
	SourcePhoto        SourceType = "photo"
	SourceReal         SourceType = "real"
)

// SourceTypes lists every classification in display order.
var SourceTypes = []SourceType{
	SourceNone,
	SourceIllustration,
	SourcePhoto,
	SourceReal,
}

func (t SourceType) Label() string {
	switch t {
	case SourceNone:
		return "Unclassified"
	case SourceIllustration:
		return "Illustration"
	case SourcePhoto:
		return "Photo"
	case SourceReal:
		return "Real reference (URL)"
	default:
		return string(t)
	}
}

// UsesMood reports whether a mood tag is meaningful for the type.
func (t SourceType) UsesMood() bool {
	return t == SourceIllustration || t == SourcePhoto
}

func (t SourceType) Valid() bool {
	for _, st := range SourceTypes {
		if t == st {
			return true
		}
	}
	return false
}

// ParseSourceType accepts a tag or one of its aliases, case-insensitively.
func ParseSourceType(s string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "unclassified", "":
		return SourceNone, nil
	case "illustration":
		return SourceIllustration, nil
	case "photo":
		return SourcePhoto, nil
	case "real", "real-reference", "reference":
		return SourceReal, nil
	default:
		return "", fmt.Errorf(
			"unknown source type %q: use none, illustration, photo, or real",
			s,
		)
	}
}

// ReferenceLink is a real-world reference attached to a segment.
type ReferenceLink struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Segment is one timed unit of a transcript together with its
// classification state.
type Segment struct {
	Index         int
	StartMs       int64
	EndMs         int64
	StartTimecode string
	EndTimecode   string
	Text          string

	SourceType     SourceType
	Mood           string
	ReferenceLinks []ReferenceLink

	// advisory, empty when unset
	SuggestedReason   string
	GeneratedAssetURL string
}

// Clone returns a copy that shares no mutable state with s.
func (s Segment) Clone() Segment {
	out := s
	if s.ReferenceLinks != nil {
		out.ReferenceLinks = make([]ReferenceLink, len(s.ReferenceLinks))
		copy(out.ReferenceLinks, s.ReferenceLinks)
	}
	return out
}

// URLs returns the bare URLs of the segment's reference links in order.
func (s Segment) URLs() []string {
	urls := make([]string, len(s.ReferenceLinks))
	for i, link := range s.ReferenceLinks {
		urls[i] = link.URL
	}
	return urls
}

func cloneSegments(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg.Clone()
	}
	return out
}
