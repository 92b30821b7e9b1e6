package tokenize

import (
	"strings"
	"testing"
)

func TestEstimate_Empty(t *testing.T) {
	e := NewEstimator(Ratios{})
	if got := e.Count(""); got != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", got)
	}
}

func TestEstimate_NeverZeroForNonEmpty(t *testing.T) {
	e := NewEstimator(Ratios{})
	for _, s := range []string{"a", ".", " x ", "好"} {
		if got := e.Count(s); got < 1 {
			t.Errorf("Count(%q) = %d, want >= 1", s, got)
		}
	}
}

func TestEstimate_EnglishRatio(t *testing.T) {
	e := NewEstimator(Ratios{})
	// 350 chars of plain prose at 3.5 chars/token ≈ 100 text tokens.
	text := strings.Repeat("the quick brown fox jumps over the lazy dog again ", 7)
	est := e.Estimate(text)
	if est.TextTokens < 90 || est.TextTokens > 130 {
		t.Errorf("text tokens = %d, want roughly 100-120 for %d chars", est.TextTokens, len(text))
	}
	if est.CJKTokens != 0 {
		t.Errorf("expected no CJK tokens, got %d", est.CJKTokens)
	}
}

func TestEstimate_CJKHalvesCharCount(t *testing.T) {
	e := NewEstimator(Ratios{})
	text := strings.Repeat("数据库连接失败需重试", 10) // 100 CJK chars
	est := e.Estimate(text)
	if est.CJKTokens != 50 {
		t.Errorf("CJK tokens = %d, want 50 for 100 CJK chars", est.CJKTokens)
	}
}

func TestAnalyze_DetectsCJK(t *testing.T) {
	e := NewEstimator(Ratios{})
	a := e.Analyze("我们决定使用新的架构方案")
	if a.PrimaryType != TypeCJK {
		t.Errorf("primary type = %q, want cjk", a.PrimaryType)
	}
}

func TestAnalyze_DetectsJSON(t *testing.T) {
	e := NewEstimator(Ratios{})
	a := e.Analyze(`{"name": "engine", "tokens": 42, "nested": {"ok": true}}`)
	if a.PrimaryType != TypeJSON {
		t.Errorf("primary type = %q, want json", a.PrimaryType)
	}
}

func TestAnalyze_DetectsCode(t *testing.T) {
	e := NewEstimator(Ratios{})
	code := `func main() {
	var total int
	for i := 0; i < 10; i++ {
		total += i
	}
	return total
}`
	a := e.Analyze(code)
	if a.PrimaryType != TypeCode {
		t.Errorf("primary type = %q, want code", a.PrimaryType)
	}
}

func TestAnalyze_DetectsMarkdown(t *testing.T) {
	e := NewEstimator(Ratios{})
	md := `# Title

- first point
- second point

## Section

> a quote here`
	a := e.Analyze(md)
	if a.PrimaryType != TypeMarkdown {
		t.Errorf("primary type = %q, want markdown", a.PrimaryType)
	}
}

func TestAnalyze_DefaultsToEnglish(t *testing.T) {
	e := NewEstimator(Ratios{})
	a := e.Analyze("This is a perfectly ordinary sentence about nothing in particular.")
	if a.PrimaryType != TypeEnglish {
		t.Errorf("primary type = %q, want english", a.PrimaryType)
	}
}

func TestEstimate_WhitespaceInflation(t *testing.T) {
	e := NewEstimator(Ratios{})
	dense := strings.Repeat("abcdefghij", 20)
	sparse := strings.Repeat("ab cd ef g ", 20) // > 20% whitespace, same length ballpark
	if e.Count(sparse) >= e.Count(dense)+20 {
		t.Errorf("whitespace-heavy text should not estimate far above dense text: sparse=%d dense=%d",
			e.Count(sparse), e.Count(dense))
	}
}

func TestEstimate_SpecialCharOverhead(t *testing.T) {
	e := NewEstimator(Ratios{})
	plain := "abcdefgh abcdefgh abcdefgh"
	symbols := "a=b; c&d; (e|f); g<h>; i!?"
	if e.Estimate(symbols).Overhead == 0 {
		t.Error("expected nonzero overhead for symbol-dense text")
	}
	if e.Estimate(plain).Overhead != 0 {
		t.Errorf("expected zero overhead for plain words, got %d", e.Estimate(plain).Overhead)
	}
}
