package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tokenfit/tokenfit/codeblock"
	"github.com/tokenfit/tokenfit/tokenize"
)

func newSummarizer() *Summarizer {
	counter := tokenize.NewEstimator(tokenize.Ratios{})
	return NewSummarizer(counter, codeblock.NewAnalyzer(counter))
}

const sampleConversation = `We spent the morning debugging the ingestion pipeline.
The root cause was a broken retry loop in worker.go that dropped batches silently.
We decided to switch to exponential backoff with a cap of five retries.
Should we also add a dead-letter queue for batches that keep failing?
The config change needs to land in settings.yaml before the Friday deploy.
Everything else looked healthy after the fix was applied.`

func TestExtractKeyInfo(t *testing.T) {
	info := ExtractKeyInfo(sampleConversation)

	if len(info.Decisions) == 0 {
		t.Error("expected at least one decision ('we decided to switch...')")
	}
	if len(info.Questions) == 0 {
		t.Error("expected the dead-letter question to be extracted")
	}
	if len(info.Issues) == 0 {
		t.Error("expected the broken retry loop to appear as an issue")
	}
	found := false
	for _, f := range info.FileRefs {
		if f == "worker.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("file refs missing worker.go: %v", info.FileRefs)
	}
}

func TestExtractKeyInfo_LengthWindowAndCaps(t *testing.T) {
	// Tiny fragments and run-ons are rejected; categories stay capped.
	text := "We will X.\n" + strings.Repeat("We decided to adopt the new parser for the importer module.\n", 20) +
		"We decided to " + strings.Repeat("very ", 80) + "long.\n"
	info := ExtractKeyInfo(text)
	if len(info.Decisions) > maxPerCategory {
		t.Errorf("decisions over cap: %d", len(info.Decisions))
	}
	for _, d := range info.Decisions {
		if len(d) < minItemLen || len(d) > maxItemLen {
			t.Errorf("decision outside length window: %q", d)
		}
	}
	// Identical sentences dedupe to one.
	if len(info.Decisions) != 1 {
		t.Errorf("expected 1 deduplicated decision, got %d", len(info.Decisions))
	}
}

func TestExtractTopics(t *testing.T) {
	text := "The pipeline failed. The pipeline retried. Backoff fixed the pipeline. Backoff works."
	topics := ExtractTopics(text)
	if len(topics) == 0 || topics[0] != "pipeline" {
		t.Errorf("expected 'pipeline' as the top topic, got %v", topics)
	}
}

// Extractive summary sentences must keep their source order, never the
// score order.
func TestExtractive_PreservesOrder(t *testing.T) {
	s := newSummarizer()
	out := s.Extractive(sampleConversation, 120)
	if out == "" {
		t.Fatal("expected a non-empty summary")
	}

	sentences := splitSentences(sampleConversation)
	last := -1
	for _, sent := range sentences {
		idx := strings.Index(out, sent)
		if idx == -1 {
			continue
		}
		if idx < last {
			t.Fatalf("sentence %q appears out of source order", sent)
		}
		last = idx
	}
}

func TestExtractive_RespectsBudget(t *testing.T) {
	s := newSummarizer()
	counter := tokenize.NewEstimator(tokenize.Ratios{})
	out := s.Extractive(sampleConversation, 30)
	if counter.Count(out) > 40 {
		t.Errorf("summary of %d tokens exceeds the 30-token target", counter.Count(out))
	}
	if s.Extractive("", 100) != "" {
		t.Error("empty input must yield an empty summary")
	}
}

func TestSummarize_ExtractiveOnly(t *testing.T) {
	s := newSummarizer()
	res := s.Summarize(context.Background(), sampleConversation, Options{TargetTokens: 100})
	if res.UsedAI {
		t.Error("no AI callback configured, UsedAI must be false")
	}
	if res.Summary == "" {
		t.Error("expected a non-empty extractive summary")
	}
	if res.Tokens <= 0 {
		t.Error("expected a token count for the summary")
	}
}

func TestSummarize_AIPath(t *testing.T) {
	s := newSummarizer()
	var gotPrompt string
	ai := func(_ context.Context, prompt string, _ int) (string, error) {
		gotPrompt = prompt
		return "ai summary of the session", nil
	}
	res := s.Summarize(context.Background(), sampleConversation, Options{AI: ai})
	if !res.UsedAI || res.Summary != "ai summary of the session" {
		t.Errorf("AI summary not used: %+v", res)
	}
	if !strings.Contains(gotPrompt, "decided to switch") {
		t.Error("prompt should embed the extracted decisions")
	}
}

// A failing callback falls back to the extractive summary and reports
// UsedAI=false, never an error.
func TestSummarize_AIFailureFallsBack(t *testing.T) {
	s := newSummarizer()
	tests := []struct {
		name string
		ai   AIFunc
	}{
		{"error", func(context.Context, string, int) (string, error) {
			return "", errors.New("model unavailable")
		}},
		{"empty", func(context.Context, string, int) (string, error) {
			return "   ", nil
		}},
		{"panic", func(context.Context, string, int) (string, error) {
			panic("client blew up")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Summarize(context.Background(), sampleConversation, Options{AI: tt.ai})
			if res.UsedAI {
				t.Error("UsedAI must be false after a callback failure")
			}
			if res.Summary == "" {
				t.Error("extractive fallback summary must be non-empty")
			}
			if res.Fallback == "" {
				t.Error("fallback reason should be recorded")
			}
		})
	}
}

func TestSummarize_AITimeout(t *testing.T) {
	s := newSummarizer()
	slow := func(ctx context.Context, _ string, _ int) (string, error) {
		select {
		case <-time.After(5 * time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	start := time.Now()
	res := s.Summarize(context.Background(), sampleConversation, Options{AI: slow, Timeout: 50 * time.Millisecond})
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout did not bound the AI callback")
	}
	if res.UsedAI || res.Summary == "" {
		t.Errorf("expected extractive fallback after timeout, got %+v", res)
	}
}

func TestSummarize_DetailedAppendsStructure(t *testing.T) {
	s := newSummarizer()
	text := sampleConversation + "\n```go\nfunc Retry(n int) error {\n\treturn nil\n}\n```\n"
	res := s.Summarize(context.Background(), text, Options{DetailLevel: DetailDetailed, PreserveCode: true})
	if !strings.Contains(res.Summary, "Decisions:") {
		t.Error("detailed summary missing the decisions section")
	}
	if !strings.Contains(res.Summary, "func Retry") {
		t.Error("detailed summary with PreserveCode missing the code block")
	}
}
