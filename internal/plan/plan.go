// Package plan reads and writes the YAML plan document: a hand-editable view
// of every segment's classification that can be merged back into a store.
package plan

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mgpai22/sourceplan/internal/subtitle"
	"gopkg.in/yaml.v3"
)

const CurrentVersion = 1

type Document struct {
	Version  int     `yaml:"version"`
	Source   string  `yaml:"source,omitempty"`
	Segments []Entry `yaml:"segments"`
}

// Entry is one segment in the plan. Start and End are informational and never
// applied. Absent fields leave the segment untouched; `links: []` clears the
// list.
type Entry struct {
	Index      int                      `yaml:"index"`
	Start      string                   `yaml:"start,omitempty"`
	End        string                   `yaml:"end,omitempty"`
	Text       *string                  `yaml:"text,omitempty"`
	SourceType *string                  `yaml:"source_type,omitempty"`
	Mood       *string                  `yaml:"mood,omitempty"`
	Reason     *string                  `yaml:"reason,omitempty"`
	Links      []subtitle.ReferenceLink `yaml:"links,omitempty"`
	Image      *string                  `yaml:"image,omitempty"`
}

// New renders segments as a plan document.
func New(source string, segments []subtitle.Segment) Document {
	doc := Document{
		Version:  CurrentVersion,
		Source:   source,
		Segments: make([]Entry, len(segments)),
	}
	for i, seg := range segments {
		st := string(seg.SourceType)
		entry := Entry{
			Index:      seg.Index,
			Start:      seg.StartTimecode,
			End:        seg.EndTimecode,
			Text:       subtitle.Ptr(seg.Text),
			SourceType: &st,
			Links:      seg.ReferenceLinks,
		}
		if seg.Mood != "" {
			entry.Mood = subtitle.Ptr(seg.Mood)
		}
		if seg.SuggestedReason != "" {
			entry.Reason = subtitle.Ptr(seg.SuggestedReason)
		}
		if seg.GeneratedAssetURL != "" {
			entry.Image = subtitle.Ptr(seg.GeneratedAssetURL)
		}
		doc.Segments[i] = entry
	}
	return doc
}

// Dump writes segments as a YAML plan.
func Dump(w io.Writer, source string, segments []subtitle.Segment) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(New(source, segments)); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

// Load decodes and validates a plan document.
func Load(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, errors.New("plan is empty")
		}
		return doc, fmt.Errorf("failed to parse plan: %w", err)
	}
	if doc.Version > CurrentVersion {
		return doc, fmt.Errorf("plan version %d is newer than supported version %d", doc.Version, CurrentVersion)
	}
	if err := doc.Validate(); err != nil {
		return doc, err
	}
	return doc, nil
}

func (d Document) Validate() error {
	var problems []string
	seen := make(map[int]bool)

	for i, e := range d.Segments {
		if e.Index <= 0 {
			problems = append(problems, fmt.Sprintf("entry %d: index must be positive", i+1))
			continue
		}
		if seen[e.Index] {
			problems = append(problems, fmt.Sprintf("segment %d: listed more than once", e.Index))
		}
		seen[e.Index] = true

		if e.SourceType != nil {
			if _, err := subtitle.ParseSourceType(*e.SourceType); err != nil {
				problems = append(problems, fmt.Sprintf("segment %d: %v", e.Index, err))
			}
		}
		for _, link := range e.Links {
			if strings.TrimSpace(link.URL) == "" {
				problems = append(problems, fmt.Sprintf("segment %d: link without url", e.Index))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid plan:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Patch converts the entry to a store patch. The entry must have been
// validated.
func (e Entry) Patch() subtitle.Patch {
	p := subtitle.Patch{
		Text:              e.Text,
		Mood:              e.Mood,
		SuggestedReason:   e.Reason,
		GeneratedAssetURL: e.Image,
	}
	if e.SourceType != nil {
		st, _ := subtitle.ParseSourceType(*e.SourceType)
		p.SourceType = &st
	}
	if e.Links != nil {
		p.ReferenceLinks = make([]subtitle.ReferenceLink, len(e.Links))
		for i, link := range e.Links {
			p.ReferenceLinks[i] = subtitle.ReferenceLink{
				URL:   strings.TrimSpace(link.URL),
				Title: strings.TrimSpace(link.Title),
			}
		}
	}
	return p
}

// Apply patches every entry into store and returns the indices that matched
// no segment, sorted.
func Apply(store *subtitle.Store, doc Document) []int {
	var missing []int
	for _, e := range doc.Segments {
		if _, ok := store.Patch(e.Index, e.Patch()); !ok {
			missing = append(missing, e.Index)
		}
	}
	sort.Ints(missing)
	return missing
}
