package compress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tokenfit/tokenfit/codeblock"
	"github.com/tokenfit/tokenfit/tokenize"
)

// fenceOverheadTokens is the flat charge for re-fencing a preserved block.
const fenceOverheadTokens = 8

// minTextShare floors the prose sub-budget at this fraction of the target.
const minTextShare = 0.2

// codePreserve extracts code blocks, keeps the important ones whole, and
// truncate-middles the surrounding prose under whatever budget remains.
type codePreserve struct {
	counter    tokenize.Counter
	analyzer   *codeblock.Analyzer
	selectOpts codeblock.SelectOptions
}

// NewCodePreserve creates the code-preserving strategy.
func NewCodePreserve(counter tokenize.Counter, analyzer *codeblock.Analyzer) Strategy {
	return &codePreserve{counter: counter, analyzer: analyzer}
}

// NewCodePreserveWithSelect creates the code-preserving strategy with
// explicit block selection options.
func NewCodePreserveWithSelect(counter tokenize.Counter, analyzer *codeblock.Analyzer, opts codeblock.SelectOptions) Strategy {
	return &codePreserve{counter: counter, analyzer: analyzer, selectOpts: opts}
}

func (s *codePreserve) Name() string { return StrategyCodeExtract }

func (s *codePreserve) Compress(text string, targetTokens int) (string, Meta) {
	blocks := s.analyzer.Parse(text)
	if len(blocks) == 0 {
		return TruncateMiddle(text, targetTokens, DefaultPreserveRatio, s.counter), Meta{}
	}

	// Blocks may use at most the target minus the prose floor.
	blockBudget := targetTokens - int(minTextShare*float64(targetTokens))
	preserved, removed := s.analyzer.Select(blocks, blockBudget, s.selectOpts)

	codeTokens := 0
	for _, b := range preserved {
		codeTokens += b.Tokens + fenceOverheadTokens
	}
	textBudget := targetTokens - codeTokens
	if floor := int(minTextShare * float64(targetTokens)); textBudget < floor {
		textBudget = floor
	}

	out := spliceProse(text, preserved, removed, textBudget, s.counter)
	return out, Meta{BlocksPreserved: len(preserved)}
}

// marker returns the internal single-line stand-in for preserved block i.
func marker(i int) string { return fmt.Sprintf("\x00block:%d\x00", i) }

// spliceProse replaces preserved blocks with markers and removed blocks
// with placeholders, truncate-middles the resulting prose under textBudget,
// and splices the preserved blocks back in original order. Blocks whose
// marker fell inside the dropped middle are restored right after the
// omission separator.
func spliceProse(text string, preserved, removed []codeblock.Block, textBudget int, counter tokenize.Counter) string {
	type span struct {
		b       codeblock.Block
		keepIdx int // -1 for removed blocks
	}
	spans := make([]span, 0, len(preserved)+len(removed))
	for i, b := range preserved {
		spans = append(spans, span{b: b, keepIdx: i})
	}
	for _, b := range removed {
		spans = append(spans, span{b: b, keepIdx: -1})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].b.Start > spans[j].b.Start })

	for _, sp := range spans {
		if sp.b.Start < 0 || sp.b.End > len(text) || sp.b.Start >= sp.b.End {
			continue
		}
		repl := codeblock.Placeholder(sp.b)
		if sp.keepIdx >= 0 {
			repl = marker(sp.keepIdx)
		}
		text = text[:sp.b.Start] + repl + text[sp.b.End:]
	}

	lines := strings.Split(text, "\n")
	head, tail, dropped := splitHeadTail(lines, int(DefaultPreserveRatio*float64(textBudget)), counter)

	var out string
	if dropped == 0 {
		out = text
	} else {
		// Preserved blocks must survive truncation: markers lost to the
		// dropped middle are re-inserted after the separator, in order.
		kept := strings.Join(head, "\n") + "\n" + strings.Join(tail, "\n")
		var middle []string
		for i := range preserved {
			if !strings.Contains(kept, marker(i)) {
				middle = append(middle, marker(i))
			}
		}
		out = joinHeadTail(head, tail, dropped, middle)
	}

	for i, b := range preserved {
		fenced := "```" + b.Language + "\n" + b.Content + "\n```"
		out = strings.Replace(out, marker(i), fenced, 1)
	}
	return out
}

// hybrid runs code-preserving first and truncate-middles its output when
// the result still overruns the target.
type hybrid struct {
	counter tokenize.Counter
	inner   Strategy
}

// NewHybrid creates the hybrid strategy.
func NewHybrid(counter tokenize.Counter, analyzer *codeblock.Analyzer) Strategy {
	return &hybrid{counter: counter, inner: NewCodePreserve(counter, analyzer)}
}

// NewHybridWithSelect creates the hybrid strategy with explicit block
// selection options for its code-preserving pass.
func NewHybridWithSelect(counter tokenize.Counter, analyzer *codeblock.Analyzer, opts codeblock.SelectOptions) Strategy {
	return &hybrid{counter: counter, inner: NewCodePreserveWithSelect(counter, analyzer, opts)}
}

func (h *hybrid) Name() string { return StrategyHybrid }

func (h *hybrid) Compress(text string, targetTokens int) (string, Meta) {
	out, meta := h.inner.Compress(text, targetTokens)
	if h.counter.Count(out) > targetTokens {
		out = TruncateMiddle(out, targetTokens, DefaultPreserveRatio, h.counter)
	}
	return out, meta
}
