// Package tokenize estimates token counts for text without a real tokenizer.
//
// The heuristic Estimator classifies content (CJK, code, JSON, Markdown,
// English prose) and converts character counts to tokens with per-class
// ratios. Counts are deliberately conservative: estimates round up so that
// downstream budget checks never admit more than the model can hold.
package tokenize

// ContentType is the inferred primary content class of a text span.
type ContentType string

const (
	TypeCJK      ContentType = "cjk"
	TypeCode     ContentType = "code"
	TypeJSON     ContentType = "json"
	TypeMarkdown ContentType = "markdown"
	TypeEnglish  ContentType = "english"
)

// ContentAnalysis is the per-call character classification of a text span.
type ContentAnalysis struct {
	TotalChars      int
	CJKChars        int
	CodeChars       int // code-indicator characters: braces, operators, etc.
	WhitespaceChars int
	SpecialChars    int // punctuation and symbols that often become their own token
	PrimaryType     ContentType
	Confidence      float64 // 0-1
}

// TokenEstimate is an estimated token count with an optional breakdown.
type TokenEstimate struct {
	Tokens     int
	CJKTokens  int
	TextTokens int
	Overhead   int // flat per-special-character charge, in tokens
}

// Counter is the one estimation law used engine-wide. Both the heuristic
// Estimator and the tiktoken-backed Tiktoken satisfy it.
type Counter interface {
	Count(text string) int
}
