package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mgpai22/sourceplan/internal/subtitle"
)

const (
	maxClassifyTextLen = 200
	maxReasonLen       = 120
	NoClassification   = "no classification"
)

// single segment to classify
type ClassifyItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// suggested source type for one segment
type Classification struct {
	Index      int
	SourceType subtitle.SourceType
	Reason     string
}

// Classifier suggests a source type for every requested segment. The result
// has one entry per item, in request order.
type Classifier interface {
	Classify(ctx context.Context, items []ClassifyItem) ([]Classification, error)
}

// StaticClassifier distributes illustration, photo and real round-robin. It is
// used when no language model is configured.
type StaticClassifier struct{}

var staticRotation = []subtitle.SourceType{
	subtitle.SourceIllustration,
	subtitle.SourcePhoto,
	subtitle.SourceReal,
}

func (StaticClassifier) Classify(
	_ context.Context,
	items []ClassifyItem,
) ([]Classification, error) {
	out := make([]Classification, len(items))
	for i, item := range items {
		st := staticRotation[i%len(staticRotation)]
		out[i] = Classification{
			Index:      item.Index,
			SourceType: st,
			Reason: fmt.Sprintf(
				"default distribution: %s (configure an API key for content-based classification)",
				st.Label(),
			),
		}
	}
	return out, nil
}

// implements Classifier on top of a chat model
type LLMClassifier struct {
	completer   Completer
	batchSize   int
	concurrency int
}

func NewLLMClassifier(c Completer, batchSize, concurrency int) *LLMClassifier {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &LLMClassifier{
		completer:   c,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

const classifySystemPrompt = `You help plan visuals for narrated video. For each subtitle segment, choose exactly one visual source:
- illustration: concepts, metaphors, emotions or mood, characters, anything best shown as a graphic
- photo: real scenes, people, products, places, a documentary feel
- real: news, statistics, quoted articles, facts that need a citable source
Spread the choices across all three types according to the content; do not label everything illustration.
Return ONLY a JSON array, with no explanation or markdown:
[{"index": 1, "sourceType": "illustration" | "photo" | "real", "reason": "one short line"}]
The index values must match the input indices exactly. Keep each reason under 20 words.`

// BuildClassifyPrompt renders the user prompt for one batch.
func BuildClassifyPrompt(items []ClassifyItem) string {
	trimmed := make([]ClassifyItem, len(items))
	for i, item := range items {
		text := strings.ReplaceAll(item.Text, "\n", " ")
		trimmed[i] = ClassifyItem{
			Index: item.Index,
			Text:  truncateRunes(text, maxClassifyTextLen),
		}
	}

	var sb strings.Builder
	sb.WriteString("Classify each of the following segments.\n\n")
	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(trimmed, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the JSON array only:")
	return sb.String()
}

// Items are split into batches of batchSize. Each batch becomes one model
// request. Workers (up to concurrency) pull batches from a shared queue.
func (c *LLMClassifier) Classify(
	ctx context.Context,
	items []ClassifyItem,
) ([]Classification, error) {
	if len(items) == 0 {
		return []Classification{}, nil
	}

	var batches [][]ClassifyItem
	for i := 0; i < len(items); i += c.batchSize {
		end := min(i+c.batchSize, len(items))
		batches = append(batches, items[i:end])
	}

	results, err := c.runBatches(ctx, batches)
	if err != nil {
		return nil, err
	}

	found := make(map[int]Classification)
	for _, r := range results {
		if _, dup := found[r.Index]; !dup {
			found[r.Index] = r
		}
	}

	return fillClassifications(items, found), nil
}

func (c *LLMClassifier) runBatches(
	ctx context.Context,
	batches [][]ClassifyItem,
) ([]Classification, error) {
	if len(batches) == 1 {
		return c.classifyBatch(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []Classification
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < c.concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := c.classifyBatch(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]batchResult, 0, len(batches))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"batch %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			results = append(results, result)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	// a cancelled parent can stop the workers before every batch ran
	if len(results) != len(batches) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("classified %d of %d batches", len(results), len(batches))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	var all []Classification
	for _, r := range results {
		all = append(all, r.Results...)
	}
	return all, nil
}

type rawClassification struct {
	Index      *flexInt `json:"index"`
	SourceType string   `json:"sourceType"`
	Reason     string   `json:"reason"`
}

func (c *LLMClassifier) classifyBatch(
	ctx context.Context,
	items []ClassifyItem,
) ([]Classification, error) {
	text, err := c.completer.Complete(ctx, classifySystemPrompt, BuildClassifyPrompt(items))
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	return parseClassifications(text)
}

func parseClassifications(text string) ([]Classification, error) {
	text = cleanJSONResponse(text)

	raw, err := extractArray(
		text,
		[]string{"suggestions", "results", "data", "items"},
		func(rs []rawClassification) bool {
			for _, r := range rs {
				if r.Index != nil {
					return true
				}
			}
			return len(rs) == 0
		},
	)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}

	out := make([]Classification, 0, len(raw))
	for _, r := range raw {
		if r.Index == nil {
			continue
		}
		out = append(out, normalizeClassification(int(*r.Index), r.SourceType, r.Reason))
	}
	return out, nil
}

// anything but the three assignable types becomes illustration
func normalizeClassification(index int, sourceType, reason string) Classification {
	st := subtitle.SourceType(strings.ToLower(strings.TrimSpace(sourceType)))
	switch st {
	case subtitle.SourceIllustration, subtitle.SourcePhoto, subtitle.SourceReal:
	default:
		st = subtitle.SourceIllustration
	}

	return Classification{
		Index:      index,
		SourceType: st,
		Reason:     truncateRunes(strings.TrimSpace(reason), maxReasonLen),
	}
}

func fillClassifications(
	items []ClassifyItem,
	found map[int]Classification,
) []Classification {
	out := make([]Classification, len(items))
	for i, item := range items {
		if c, ok := found[item.Index]; ok {
			out[i] = c
			continue
		}
		out[i] = Classification{
			Index:      item.Index,
			SourceType: subtitle.SourceIllustration,
			Reason:     NoClassification,
		}
	}
	return out
}

// ItemsFromSegments builds classification requests in segment order.
func ItemsFromSegments(segments []subtitle.Segment) []ClassifyItem {
	items := make([]ClassifyItem, len(segments))
	for i, seg := range segments {
		items[i] = ClassifyItem{Index: seg.Index, Text: seg.Text}
	}
	return items
}

// PatchFor turns a suggestion into a store patch. Mood is cleared because
// the previous tag may not fit the new type.
func (c Classification) PatchFor() subtitle.Patch {
	return subtitle.Patch{
		SourceType:      subtitle.Ptr(c.SourceType),
		Mood:            subtitle.Ptr(""),
		SuggestedReason: subtitle.Ptr(c.Reason),
	}
}
