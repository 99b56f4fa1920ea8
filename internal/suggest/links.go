package suggest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mgpai22/sourceplan/internal/subtitle"
)

const (
	maxLinkTextLen  = 1000
	maxLinkURLLen   = 500
	maxLinkTitleLen = 200
)

// LinkSuggester proposes real-world reference links for one segment's text.
// Every returned URL is an absolute http(s) URL.
type LinkSuggester interface {
	SuggestLinks(ctx context.Context, text string) ([]subtitle.ReferenceLink, error)
}

// StaticLinkSuggester returns placeholder links when no language model is
// configured.
type StaticLinkSuggester struct{}

func (StaticLinkSuggester) SuggestLinks(
	_ context.Context,
	_ string,
) ([]subtitle.ReferenceLink, error) {
	return []subtitle.ReferenceLink{
		{URL: "https://example.com/related-1", Title: "Related article 1 (placeholder)"},
		{URL: "https://example.com/related-2", Title: "Related article 2 (placeholder)"},
	}, nil
}

// implements LinkSuggester on top of a chat model
type LLMLinkSuggester struct {
	completer Completer
}

func NewLLMLinkSuggester(c Completer) *LLMLinkSuggester {
	return &LLMLinkSuggester{completer: c}
}

const linksSystemPrompt = `You recommend news articles and reference pages related to a line of narration.
Answer with 2-3 real, searchable news, wiki, or official site URLs as a JSON array only:
[{"url": "https://...", "title": "article title"}]
The title may be omitted. If you do not know any, return an empty array [].`

func (s *LLMLinkSuggester) SuggestLinks(
	ctx context.Context,
	text string,
) ([]subtitle.ReferenceLink, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	reply, err := s.completer.Complete(ctx, linksSystemPrompt, truncateRunes(text, maxLinkTextLen))
	if err != nil {
		return nil, fmt.Errorf("link suggestion failed: %w", err)
	}

	return parseLinks(reply)
}

type rawLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func parseLinks(text string) ([]subtitle.ReferenceLink, error) {
	text = cleanJSONResponse(text)

	raw, err := extractArray(
		text,
		[]string{"urls", "links", "results", "data", "items"},
		func([]rawLink) bool { return true },
	)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}

	return normalizeLinks(raw), nil
}

func normalizeLinks(raw []rawLink) []subtitle.ReferenceLink {
	links := make([]subtitle.ReferenceLink, 0, len(raw))
	for _, r := range raw {
		u := truncateRunes(strings.TrimSpace(r.URL), maxLinkURLLen)
		if !isWebURL(u) {
			continue
		}
		links = append(links, subtitle.ReferenceLink{
			URL:   u,
			Title: truncateRunes(strings.TrimSpace(r.Title), maxLinkTitleLen),
		})
	}
	return links
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
