package subtitle

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when no segment carries the requested index.
var ErrNotFound = errors.New("segment not found")

// Patch carries the fields to merge into one segment. Nil pointers leave the
// field untouched. ReferenceLinks replaces the whole list when non-nil; an
// empty non-nil slice clears it.
type Patch struct {
	Text              *string
	SourceType        *SourceType
	Mood              *string
	ReferenceLinks    []ReferenceLink
	SuggestedReason   *string
	GeneratedAssetURL *string
}

// Ptr returns a pointer to v, for filling Patch fields.
func Ptr[T any](v T) *T {
	return &v
}

// Store owns the segment sequence of the loaded transcript. It is safe for
// concurrent use; every Patch is applied atomically.
type Store struct {
	mu       sync.RWMutex
	segments []Segment
}

func NewStore(segments []Segment) *Store {
	s := &Store{}
	s.ReplaceAll(segments)
	return s
}

// ReplaceAll discards the current state and installs segments.
func (s *Store) ReplaceAll(segments []Segment) {
	installed := cloneSegments(segments)

	s.mu.Lock()
	s.segments = installed
	s.mu.Unlock()
}

// Patch merges p into the first segment whose Index matches and returns the
// updated sequence. When nothing matches the sequence is returned unchanged
// and ok is false.
func (s *Store) Patch(index int, p Patch) (segments []Segment, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.position(index)
	if pos < 0 {
		return cloneSegments(s.segments), false
	}

	s.segments[pos] = applyPatch(s.segments[pos], p)
	return cloneSegments(s.segments), true
}

// Snapshot returns a deep copy of the current sequence.
func (s *Store) Snapshot() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSegments(s.segments)
}

func (s *Store) Get(index int) (Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos := s.position(index)
	if pos < 0 {
		return Segment{}, ErrNotFound
	}
	return s.segments[pos].Clone(), nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

func (s *Store) position(index int) int {
	for i := range s.segments {
		if s.segments[i].Index == index {
			return i
		}
	}
	return -1
}

func applyPatch(seg Segment, p Patch) Segment {
	if p.Text != nil {
		seg.Text = *p.Text
	}
	if p.SourceType != nil && *p.SourceType != seg.SourceType {
		seg.SourceType = *p.SourceType
		seg.Mood = ""
	}
	if p.Mood != nil {
		seg.Mood = *p.Mood
	}
	if !seg.SourceType.UsesMood() {
		seg.Mood = ""
	}
	if p.ReferenceLinks != nil {
		seg.ReferenceLinks = make([]ReferenceLink, len(p.ReferenceLinks))
		copy(seg.ReferenceLinks, p.ReferenceLinks)
	}
	if p.SuggestedReason != nil {
		seg.SuggestedReason = *p.SuggestedReason
	}
	if p.GeneratedAssetURL != nil {
		seg.GeneratedAssetURL = *p.GeneratedAssetURL
	}
	return seg
}
