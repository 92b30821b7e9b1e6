package compress

import "github.com/tokenfit/tokenfit/tokenize"

// SummaryFunc produces a summary of text within targetTokens. The bool
// reports whether a summary was actually generated; on false the strategy
// falls back to truncate-middle.
type SummaryFunc func(text string, targetTokens int) (string, bool)

// aiSummary delegates to an injected summarizer. It never fails: a missing
// or empty summary degrades to truncation.
type aiSummary struct {
	counter   tokenize.Counter
	summarize SummaryFunc
}

// NewAISummary creates the AI-summary strategy around fn.
func NewAISummary(counter tokenize.Counter, fn SummaryFunc) Strategy {
	return &aiSummary{counter: counter, summarize: fn}
}

func (s *aiSummary) Name() string { return StrategyAISummary }

func (s *aiSummary) Compress(text string, targetTokens int) (string, Meta) {
	if s.summarize != nil {
		if out, ok := s.summarize(text, targetTokens); ok && out != "" {
			return out, Meta{SummaryGenerated: true}
		}
	}
	return TruncateMiddle(text, targetTokens, DefaultPreserveRatio, s.counter), Meta{}
}
