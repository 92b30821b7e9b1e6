package budget

import (
	"encoding/json"

	"github.com/tokenfit/tokenfit/compress"
	"github.com/tokenfit/tokenfit/tokenize"
)

// Limits applied when shrinking structured tool output.
const (
	shrinkStringCap = 256
	shrinkArrayCap  = 10
)

// ShrinkToolResult fits an oversized tool result into budgetTokens. JSON
// output is shrunk structurally (long strings truncated, arrays capped);
// anything unparsable, and JSON that is still too large after shrinking,
// falls back to plain truncation of the raw text. The bool reports whether
// the result changed.
func ShrinkToolResult(counter tokenize.Counter, raw string, budgetTokens int) (string, bool) {
	if budgetTokens <= 0 || counter.Count(raw) <= budgetTokens {
		return raw, false
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		if b, err := json.Marshal(shrinkValue(parsed)); err == nil {
			shrunk := string(b)
			if counter.Count(shrunk) <= budgetTokens {
				return shrunk, true
			}
			raw = shrunk
		}
	}

	return compress.TruncateMiddle(raw, budgetTokens, compress.DefaultPreserveRatio, counter), true
}

// shrinkValue recursively truncates long strings and caps arrays.
func shrinkValue(v any) any {
	switch val := v.(type) {
	case string:
		if len(val) > shrinkStringCap {
			return val[:shrinkStringCap] + "...[truncated]"
		}
		return val
	case []any:
		if len(val) > shrinkArrayCap {
			val = val[:shrinkArrayCap]
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = shrinkValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = shrinkValue(item)
		}
		return out
	default:
		return v
	}
}
