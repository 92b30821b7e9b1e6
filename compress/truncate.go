package compress

import (
	"fmt"
	"strings"

	"github.com/tokenfit/tokenfit/tokenize"
)

// truncate keeps head and tail lines and drops the interior. Framing
// context at both ends tends to carry the task setup and the final outcome.
type truncate struct {
	counter       tokenize.Counter
	preserveRatio float64
}

// NewTruncate creates the truncate-middle strategy with the default
// preserve ratio.
func NewTruncate(counter tokenize.Counter) Strategy {
	return &truncate{counter: counter, preserveRatio: DefaultPreserveRatio}
}

func (t *truncate) Name() string { return StrategyTruncate }

func (t *truncate) Compress(text string, targetTokens int) (string, Meta) {
	return TruncateMiddle(text, targetTokens, t.preserveRatio, t.counter), Meta{}
}

// TruncateMiddle accumulates lines from the start while under
// preserveRatio × targetTokens, then independently accumulates lines from
// the end under the same budget, and joins the two with a separator noting
// how many lines were dropped. Returns text unchanged when nothing needs
// dropping.
func TruncateMiddle(text string, targetTokens int, preserveRatio float64, counter tokenize.Counter) string {
	if preserveRatio <= 0 {
		preserveRatio = DefaultPreserveRatio
	}
	lines := strings.Split(text, "\n")
	head, tail, dropped := splitHeadTail(lines, int(preserveRatio*float64(targetTokens)), counter)
	if dropped == 0 {
		return text
	}
	return joinHeadTail(head, tail, dropped, nil)
}

// splitHeadTail fills head from the front and tail from the back, each
// under sideBudget tokens, without overlap.
func splitHeadTail(lines []string, sideBudget int, counter tokenize.Counter) (head, tail []string, dropped int) {
	headEnd := 0
	used := 0
	for headEnd < len(lines) {
		t := counter.Count(lines[headEnd]) + 1 // newline
		if used+t > sideBudget {
			break
		}
		used += t
		headEnd++
	}

	tailStart := len(lines)
	used = 0
	for tailStart > headEnd {
		t := counter.Count(lines[tailStart-1]) + 1
		if used+t > sideBudget {
			break
		}
		used += t
		tailStart--
	}

	return lines[:headEnd], lines[tailStart:], tailStart - headEnd
}

// joinHeadTail assembles the truncated output. middle, when non-empty, is
// spliced in right after the separator (used to restore preserved code
// blocks whose slots fell inside the dropped region).
func joinHeadTail(head, tail []string, dropped int, middle []string) string {
	parts := make([]string, 0, len(head)+len(middle)+len(tail)+1)
	parts = append(parts, head...)
	parts = append(parts, fmt.Sprintf("... [%d lines omitted] ...", dropped))
	parts = append(parts, middle...)
	parts = append(parts, tail...)
	return strings.Join(parts, "\n")
}
