// Package summarize condenses conversation text under a token budget. The
// extractive path is pure and always available; an injected AI callback can
// take over, falling back to the extractive summary on any failure — a
// summarization attempt never errors past this boundary.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tokenfit/tokenfit/codeblock"
	"github.com/tokenfit/tokenfit/tokenize"
)

// Detail levels.
const (
	DetailBrief    = "brief"
	DetailStandard = "standard"
	DetailDetailed = "detailed"
)

// AIFunc is the injected summarize callback, supplied by a model-routing
// collaborator. The engine never constructs API clients itself.
type AIFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

// Options controls a summarization attempt.
type Options struct {
	TargetTokens int    // default 500
	DetailLevel  string // brief, standard (default), detailed
	PreserveCode bool   // detailed mode appends preserved code blocks
	AI           AIFunc // optional; nil means extractive only
	// Timeout bounds the AI callback. On expiry the attempt falls back to
	// the extractive path rather than blocking. Default 30s.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.TargetTokens <= 0 {
		o.TargetTokens = 500
	}
	if o.DetailLevel == "" {
		o.DetailLevel = DetailStandard
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Result is the outcome of a summarization attempt.
type Result struct {
	Summary   string
	UsedAI    bool
	Extracted Extracted
	Tokens    int
	// Fallback records why the AI path was abandoned, when it was.
	Fallback string
}

// Summarizer produces extractive and AI-assisted summaries.
type Summarizer struct {
	counter  tokenize.Counter
	analyzer *codeblock.Analyzer
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(counter tokenize.Counter, analyzer *codeblock.Analyzer) *Summarizer {
	return &Summarizer{counter: counter, analyzer: analyzer}
}

// Summarize condenses text per opts. The AI callback, when present, is
// invoked once, raced against the timeout; any error, timeout, or empty
// response falls back to the extractive summary with UsedAI=false.
func (s *Summarizer) Summarize(ctx context.Context, text string, opts Options) Result {
	opts = opts.withDefaults()
	info := ExtractKeyInfo(text)

	res := Result{Extracted: info}
	if opts.AI != nil {
		out, err := callAI(ctx, opts.AI, buildPrompt(text, info, opts.DetailLevel), opts.TargetTokens, opts.Timeout)
		switch {
		case err != nil:
			res.Fallback = err.Error()
		case strings.TrimSpace(out) == "":
			res.Fallback = "empty response"
		default:
			res.Summary = strings.TrimSpace(out)
			res.UsedAI = true
		}
	}

	if !res.UsedAI {
		res.Summary = s.Extractive(text, opts.TargetTokens)
	}

	if opts.DetailLevel == DetailDetailed {
		res.Summary = s.formatDetailed(res.Summary, info, text, opts.PreserveCode)
	}

	res.Tokens = s.counter.Count(res.Summary)
	return res
}

// callAI runs fn once with a bounded context. A panicking callback is
// treated the same as one that returned an error.
func callAI(ctx context.Context, fn AIFunc, prompt string, maxTokens int, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("summarize callback panic: %v", r)}
			}
		}()
		out, err := fn(ctx, prompt, maxTokens)
		ch <- reply{text: out, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// promptTextCap bounds how much raw conversation goes into the AI prompt.
const promptTextCap = 12000

// buildPrompt embeds the detail level and the top extracted findings so the
// model knows what must survive the summary.
func buildPrompt(text string, info Extracted, detailLevel string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Summarize the conversation below at %q detail. Preserve decisions, open questions, unresolved issues, and references to code or files. Return only the summary — no preamble.
`, detailLevel)

	writeCues := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		if len(items) > 3 {
			items = items[:3]
		}
		fmt.Fprintf(&sb, "\nKnown %s:\n", label)
		for _, it := range items {
			fmt.Fprintf(&sb, "- %s\n", it)
		}
	}
	writeCues("decisions", info.Decisions)
	writeCues("action items", info.ActionItems)
	writeCues("issues", info.Issues)

	sb.WriteString("\n--- CONVERSATION ---\n")
	sb.WriteString(capText(text, promptTextCap))
	sb.WriteString("\n--- END ---")
	return sb.String()
}

// capText caps s at roughly maxChars, trimming at a sentence boundary when
// one falls in the second half.
func capText(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	trimmed := s[:maxChars]
	if idx := strings.LastIndexAny(trimmed, ".!?\n"); idx > maxChars/2 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + " [...]"
}

// maxDetailedBlocks caps how many preserved code blocks detailed mode
// appends.
const maxDetailedBlocks = 3

// formatDetailed appends the structured lists, and in PreserveCode mode the
// highest-importance code blocks, to the summary.
func (s *Summarizer) formatDetailed(summary string, info Extracted, text string, preserveCode bool) string {
	var sb strings.Builder
	sb.WriteString(summary)

	writeList := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n\n%s:\n", label)
		for _, it := range items {
			fmt.Fprintf(&sb, "- %s\n", it)
		}
	}
	writeList("Decisions", info.Decisions)
	writeList("Action items", info.ActionItems)
	writeList("Open questions", info.Questions)
	writeList("Issues", info.Issues)
	writeList("Files", info.FileRefs)

	if preserveCode {
		blocks := s.analyzer.Parse(text)
		if len(blocks) > 0 {
			sorted := make([]codeblock.Block, len(blocks))
			copy(sorted, blocks)
			for i := 1; i < len(sorted); i++ {
				for j := i; j > 0 && sorted[j].Importance > sorted[j-1].Importance; j-- {
					sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
				}
			}
			if len(sorted) > maxDetailedBlocks {
				sorted = sorted[:maxDetailedBlocks]
			}
			sb.WriteString("\n\nPreserved code:\n")
			for _, b := range sorted {
				fmt.Fprintf(&sb, "```%s\n%s\n```\n", b.Language, b.Content)
			}
		}
	}
	return sb.String()
}
