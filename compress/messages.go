package compress

import (
	"github.com/tokenfit/tokenfit/message"
)

// messageTargetShare leaves headroom below the hard limit when filling the
// prunable middle of a conversation.
const messageTargetShare = 0.85

// MessageOptions controls message-array compression.
type MessageOptions struct {
	// PreserveRecentMessages always keeps the last N messages. Zero means
	// the default of 3.
	PreserveRecentMessages int
	// DropSystem allows system messages into the prunable middle. By
	// default they are always preserved.
	DropSystem bool
}

func (o MessageOptions) recent() int {
	if o.PreserveRecentMessages <= 0 {
		return 3
	}
	return o.PreserveRecentMessages
}

// CompressMessages fits a message history into budgetTokens by dropping
// prunable middle messages. System messages (unless DropSystem) and the
// last PreserveRecentMessages are always kept; the middle is filled in
// original order against a target of 85% of the budget. The output is a new
// slice in the original order — messages are never reordered or mutated.
func (c *Compressor) CompressMessages(msgs []message.Message, budgetTokens int, opts MessageOptions) ([]message.Message, Result) {
	costs := make([]int, len(msgs))
	original := 0
	for i, m := range msgs {
		costs[i] = c.counter.Count(m.Text())
		original += costs[i]
	}

	if budgetTokens <= 0 || original <= budgetTokens {
		out := make([]message.Message, len(msgs))
		copy(out, msgs)
		return out, newResult(strategyMessagePrune, original, original, false, Meta{})
	}

	target := int(messageTargetShare * float64(budgetTokens))
	recentFrom := len(msgs) - opts.recent()
	if recentFrom < 0 {
		recentFrom = 0
	}

	kept := make([]bool, len(msgs))
	used := 0
	for i, m := range msgs {
		if i >= recentFrom || (m.IsSystem() && !opts.DropSystem) {
			kept[i] = true
			used += costs[i]
		}
	}

	// Fill the middle in original order; whatever does not fit is dropped.
	for i := range msgs {
		if kept[i] {
			continue
		}
		if used+costs[i] <= target {
			kept[i] = true
			used += costs[i]
		}
	}

	out := make([]message.Message, 0, len(msgs))
	for i, m := range msgs {
		if kept[i] {
			out = append(out, m)
		}
	}

	removed := len(msgs) - len(out)
	return out, newResult(strategyMessagePrune, original, used, removed > 0, Meta{MessagesRemoved: removed})
}
