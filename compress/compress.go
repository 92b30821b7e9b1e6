// Package compress reduces text and message histories to fit a token
// budget. Named strategies register in an ordered list; selection picks the
// highest-priority strategy whose activation threshold the current usage
// ratio clears. All operations return new values and leave their inputs
// untouched.
package compress

import (
	"github.com/tokenfit/tokenfit/codeblock"
	"github.com/tokenfit/tokenfit/tokenize"
)

// Strategy names.
const (
	StrategyTruncate     = "truncate"
	StrategyCodeExtract  = "code_extract"
	StrategyAISummary    = "ai_summary"
	StrategyHybrid       = "hybrid"
	strategyMessagePrune = "message_prune"
)

// Meta carries optional details about what a compression pass did.
type Meta struct {
	BlocksPreserved  int
	MessagesRemoved  int
	SummaryGenerated bool
}

// Result describes one compression pass.
// Invariant: CompressedTokens <= OriginalTokens and
// SavedTokens == OriginalTokens - CompressedTokens.
type Result struct {
	Text             string // the compressed text (empty for message passes)
	OriginalTokens   int
	CompressedTokens int
	SavedTokens      int
	Ratio            float64 // compressed / original
	Strategy         string
	WasCompressed    bool
	Meta             Meta
}

func newResult(strategy string, original, compressed int, changed bool, meta Meta) Result {
	if compressed > original {
		compressed = original
	}
	ratio := 1.0
	if original > 0 {
		ratio = float64(compressed) / float64(original)
	}
	return Result{
		OriginalTokens:   original,
		CompressedTokens: compressed,
		SavedTokens:      original - compressed,
		Ratio:            ratio,
		Strategy:         strategy,
		WasCompressed:    changed,
		Meta:             meta,
	}
}

// Strategy is a named compression algorithm. Compress shrinks text toward
// targetTokens, best-effort, and reports what it did.
type Strategy interface {
	Name() string
	Compress(text string, targetTokens int) (string, Meta)
}

// Registration binds a strategy to its activation threshold, target ratio,
// and selection priority.
type Registration struct {
	Strategy    Strategy
	Threshold   float64 // usage ratio (estimated/budget) at which it activates
	TargetRatio float64 // fraction of the budget to compress down to
	Priority    int     // higher runs first
}

// DefaultPreserveRatio is the head/tail share of the target each side of a
// truncate-middle keeps.
const DefaultPreserveRatio = 0.3

// DefaultStrategies is the fixed ordered list used when a caller supplies
// none. The AI summary strategy is not included here; it joins the list when
// a summarizer is wired in (see NewAISummary).
func DefaultStrategies(counter tokenize.Counter, analyzer *codeblock.Analyzer) []Registration {
	return DefaultStrategiesWithSelect(counter, analyzer, codeblock.SelectOptions{})
}

// DefaultStrategiesWithSelect is DefaultStrategies with explicit block
// selection options for the code-aware strategies.
func DefaultStrategiesWithSelect(counter tokenize.Counter, analyzer *codeblock.Analyzer, opts codeblock.SelectOptions) []Registration {
	return []Registration{
		{Strategy: NewTruncate(counter), Threshold: 1.0, TargetRatio: 0.8, Priority: 1},
		{Strategy: NewCodePreserveWithSelect(counter, analyzer, opts), Threshold: 1.2, TargetRatio: 0.75, Priority: 2},
		{Strategy: NewHybridWithSelect(counter, analyzer, opts), Threshold: 1.5, TargetRatio: 0.7, Priority: 3},
	}
}

// Compressor selects and applies compression strategies.
type Compressor struct {
	counter    tokenize.Counter
	strategies []Registration // held sorted by priority, highest first
}

// NewCompressor creates a Compressor. A nil strategy list uses
// DefaultStrategies with a fresh code block analyzer.
func NewCompressor(counter tokenize.Counter, strategies []Registration) *Compressor {
	if strategies == nil {
		strategies = DefaultStrategies(counter, codeblock.NewAnalyzer(counter))
	}
	sorted := make([]Registration, len(strategies))
	copy(sorted, strategies)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Priority > sorted[j-1].Priority; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return &Compressor{counter: counter, strategies: sorted}
}

// Compress fits text into budgetTokens. Text already at or under the
// budget comes back unchanged with WasCompressed=false. Otherwise the first
// strategy (in descending priority) whose threshold the usage ratio clears
// runs with a target of budget × its target ratio. When no strategy
// matches, or the chosen strategy cannot shrink the text, the input also
// comes back unchanged.
func (c *Compressor) Compress(text string, budgetTokens int) Result {
	original := c.counter.Count(text)
	if budgetTokens <= 0 || original <= budgetTokens {
		// Fits already, including at exact equality; compressing would
		// only lose content.
		res := newResult("", original, original, false, Meta{})
		res.Text = text
		return res
	}

	usage := float64(original) / float64(budgetTokens)
	for _, reg := range c.strategies {
		if reg.Threshold > usage {
			continue
		}
		target := int(float64(budgetTokens) * reg.TargetRatio)
		out, meta := reg.Strategy.Compress(text, target)
		compressed := c.counter.Count(out)
		if out == text || compressed >= original {
			// The pass achieved nothing; keep the input.
			res := newResult(reg.Strategy.Name(), original, original, false, Meta{})
			res.Text = text
			return res
		}
		res := newResult(reg.Strategy.Name(), original, compressed, true, meta)
		res.Text = out
		return res
	}
	res := newResult("", original, original, false, Meta{})
	res.Text = text
	return res
}
