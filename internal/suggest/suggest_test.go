package suggest

import (
	"context"
	"os"
	"testing"
)

func TestFactoryReturnsGeminiCompleter(t *testing.T) {
	ctx := context.Background()
	c, err := Factory(ctx, ProviderGemini, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := c.(*GeminiCompleter); !ok {
		t.Errorf("expected *GeminiCompleter, got %T", c)
	}
}

func TestFactoryReturnsOpenAICompleter(t *testing.T) {
	ctx := context.Background()
	c, err := Factory(ctx, ProviderOpenAI, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := c.(*OpenAICompleter); !ok {
		t.Errorf("expected *OpenAICompleter, got %T", c)
	}
}

func TestFactoryReturnsAnthropicCompleter(t *testing.T) {
	ctx := context.Background()
	c, err := Factory(ctx, ProviderAnthropic, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := c.(*AnthropicCompleter); !ok {
		t.Errorf("expected *AnthropicCompleter, got %T", c)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("unknown"), "fake-key", "")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		if _, err := Factory(context.Background(), p, "", ""); err == nil {
			t.Errorf("Factory(%s) with empty key should fail", p)
		}
	}
}

func TestNewWithoutKeyUsesStaticServices(t *testing.T) {
	classifier, links, err := New(context.Background(), Options{Provider: ProviderOpenAI})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := classifier.(StaticClassifier); !ok {
		t.Errorf("classifier = %T, want StaticClassifier", classifier)
	}
	if _, ok := links.(StaticLinkSuggester); !ok {
		t.Errorf("link suggester = %T, want StaticLinkSuggester", links)
	}
}

func TestNewWithKeyUsesModel(t *testing.T) {
	classifier, links, err := New(context.Background(), Options{
		Provider: ProviderAnthropic,
		APIKey:   "fake-key",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := classifier.(*LLMClassifier); !ok {
		t.Errorf("classifier = %T, want *LLMClassifier", classifier)
	}
	if _, ok := links.(*LLMLinkSuggester); !ok {
		t.Errorf("link suggester = %T, want *LLMLinkSuggester", links)
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"openai", ProviderOpenAI, false},
		{"Anthropic", ProviderAnthropic, false},
		{" gemini ", ProviderGemini, false},
		{"ollama", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProvider(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"안녕하세요", 2, "안녕"},
		{"abc", 0, ""},
	}

	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

// Integration test: only runs if OPENAI_API_KEY is set
func TestOpenAIClassifierIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	completer, err := NewOpenAICompleter(ctx, apiKey, "")
	if err != nil {
		t.Fatalf("NewOpenAICompleter error: %v", err)
	}

	items := []ClassifyItem{
		{Index: 1, Text: "Imagine your savings as a tree that grows every year."},
		{Index: 2, Text: "The central bank raised rates by 0.5 points on Thursday."},
	}

	results, err := NewLLMClassifier(completer, 0, 0).Classify(ctx, items)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.SourceType.Valid() {
			t.Errorf("result index %d has invalid type %q", r.Index, r.SourceType)
		}
	}
}
