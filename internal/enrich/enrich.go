// Package enrich runs the classification, reference-link and image
// collaborators against a segment store. Results are patched in only after
// the collaborator call for that segment has succeeded.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mgpai22/sourceplan/internal/imagegen"
	"github.com/mgpai22/sourceplan/internal/logging"
	"github.com/mgpai22/sourceplan/internal/subtitle"
	"github.com/mgpai22/sourceplan/internal/suggest"
)

const defaultConcurrency = 3

type Config struct {
	Classifier  suggest.Classifier
	Links       suggest.LinkSuggester
	Images      imagegen.Generator
	Logger      *logging.Logger
	Concurrency int

	AspectRatio string
	Resolution  string
	// re-run links/images for segments that already have them
	Replace bool
}

type Enricher struct {
	store *subtitle.Store
	cfg   Config
}

func New(store *subtitle.Store, cfg Config) *Enricher {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Classifier == nil {
		cfg.Classifier = suggest.StaticClassifier{}
	}
	if cfg.Links == nil {
		cfg.Links = suggest.StaticLinkSuggester{}
	}
	if cfg.Images == nil {
		cfg.Images = imagegen.Disabled{}
	}
	return &Enricher{store: store, cfg: cfg}
}

// WithReplace returns a copy that re-runs links and images for segments
// that already have them.
func (e *Enricher) WithReplace(replace bool) *Enricher {
	cfg := e.cfg
	cfg.Replace = replace
	return &Enricher{store: e.store, cfg: cfg}
}

// SegmentError ties a collaborator failure to the segment it was for.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// Report summarizes one enrichment pass.
type Report struct {
	Requested int
	Applied   []int
	Skipped   int
}

// Classify suggests a source type for every segment. The whole pass fails or
// succeeds together; on failure no segment is touched.
func (e *Enricher) Classify(ctx context.Context) (Report, error) {
	segments := e.store.Snapshot()
	report := Report{Requested: len(segments)}
	if len(segments) == 0 {
		return report, nil
	}

	log := e.cfg.Logger.With("request_id", uuid.NewString(), "op", "classify")
	log.Infow("Classifying segments", "segments", len(segments))
	start := time.Now()

	results, err := e.cfg.Classifier.Classify(ctx, suggest.ItemsFromSegments(segments))
	if err != nil {
		log.Warnw("Classification failed", "error", err)
		return report, fmt.Errorf("classification failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, c := range results {
		if _, ok := e.store.Patch(c.Index, c.PatchFor()); ok {
			report.Applied = append(report.Applied, c.Index)
		}
	}

	log.Infow("Classification applied",
		"applied", len(report.Applied),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// SuggestLinks fills reference links for segments classified as real.
func (e *Enricher) SuggestLinks(ctx context.Context) (Report, error) {
	return e.forEach(ctx, "suggest_links",
		func(seg subtitle.Segment) bool {
			if seg.SourceType != subtitle.SourceReal {
				return false
			}
			return e.cfg.Replace || len(seg.ReferenceLinks) == 0
		},
		func(ctx context.Context, seg subtitle.Segment) (subtitle.Patch, error) {
			links, err := e.cfg.Links.SuggestLinks(ctx, seg.Text)
			if err != nil {
				return subtitle.Patch{}, err
			}
			if links == nil {
				links = []subtitle.ReferenceLink{}
			}
			return subtitle.Patch{ReferenceLinks: links}, nil
		},
	)
}

// GenerateImages renders an image for illustration and photo segments.
func (e *Enricher) GenerateImages(ctx context.Context) (Report, error) {
	return e.forEach(ctx, "generate_images",
		func(seg subtitle.Segment) bool {
			if !seg.SourceType.UsesMood() {
				return false
			}
			return e.cfg.Replace || seg.GeneratedAssetURL == ""
		},
		func(ctx context.Context, seg subtitle.Segment) (subtitle.Patch, error) {
			req := imagegen.RequestFor(seg, e.cfg.AspectRatio, e.cfg.Resolution)
			url, err := e.cfg.Images.Generate(ctx, req)
			if err != nil {
				return subtitle.Patch{}, err
			}
			return subtitle.Patch{GeneratedAssetURL: subtitle.Ptr(url)}, nil
		},
	)
}

type segmentJob func(ctx context.Context, seg subtitle.Segment) (subtitle.Patch, error)

// forEach runs job for every selected segment, at most Concurrency at a time.
// Failures are collected; other segments still receive their results.
func (e *Enricher) forEach(
	ctx context.Context,
	op string,
	selected func(subtitle.Segment) bool,
	job segmentJob,
) (Report, error) {
	var targets []subtitle.Segment
	for _, seg := range e.store.Snapshot() {
		if selected(seg) {
			targets = append(targets, seg)
		}
	}

	report := Report{Requested: len(targets)}
	if len(targets) == 0 {
		return report, nil
	}

	log := e.cfg.Logger.With("op", op)
	log.Infow("Enriching segments", "segments", len(targets), "concurrency", e.cfg.Concurrency)

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	sem := make(chan struct{}, e.cfg.Concurrency)

	for _, seg := range targets {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(seg subtitle.Segment) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			reqLog := log.With("request_id", uuid.NewString(), "segment", seg.Index)
			reqLog.Debugw("Calling collaborator")

			patch, err := job(ctx, seg)
			if err == nil {
				err = ctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				reqLog.Warnw("Collaborator failed", "error", err)
				errs = append(errs, &SegmentError{Index: seg.Index, Err: err})
				return
			}
			if _, ok := e.store.Patch(seg.Index, patch); ok {
				report.Applied = append(report.Applied, seg.Index)
			}
		}(seg)
	}

	wg.Wait()

	// cancelled before running, or removed from the store meanwhile
	report.Skipped = report.Requested - len(report.Applied) - len(errs)
	sort.Ints(report.Applied)
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].(*SegmentError).Index < errs[j].(*SegmentError).Index
	})

	log.Infow("Enrichment finished",
		"applied", len(report.Applied),
		"failed", len(errs),
		"skipped", report.Skipped,
	)

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
