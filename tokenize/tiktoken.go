package tokenize

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tiktoken wraps tiktoken for exact token counting. It is not the engine
// default — budget decisions only need the conservative heuristic — but
// callers can use it to calibrate ratios or verify estimates.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken creates a Tiktoken counter using the cl100k_base encoding
// (used by GPT-4 and a good approximation for other providers).
func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tokenize: get encoding: %w", err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count implements Counter with real BPE token counts.
func (t *Tiktoken) Count(s string) int {
	return len(t.enc.Encode(s, nil, nil))
}

// Truncate truncates s to at most maxTokens tokens, returning the result.
func (t *Tiktoken) Truncate(s string, maxTokens int) string {
	tokens := t.enc.Encode(s, nil, nil)
	if len(tokens) <= maxTokens {
		return s
	}
	return t.enc.Decode(tokens[:maxTokens])
}
