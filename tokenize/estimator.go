package tokenize

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Ratios holds the tunable chars-per-token ratios and detection thresholds.
// Zero fields fall back to the defaults below.
type Ratios struct {
	CJKCharsPerToken      float64 // default 2.0
	EnglishCharsPerToken  float64 // default 3.5
	CodeCharsPerToken     float64 // default 3.0
	JSONCharsPerToken     float64 // default 2.6
	MarkdownCharsPerToken float64 // default 3.2
	SpecialCharCharge     float64 // tokens added per special character, default 0.25
	WhitespaceThreshold   float64 // fraction above which the ratio inflates, default 0.2
	WhitespaceInflateMax  float64 // maximum ratio inflation, default 0.3
}

func (r Ratios) withDefaults() Ratios {
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&r.CJKCharsPerToken, 2.0)
	def(&r.EnglishCharsPerToken, 3.5)
	def(&r.CodeCharsPerToken, 3.0)
	def(&r.JSONCharsPerToken, 2.6)
	def(&r.MarkdownCharsPerToken, 3.2)
	def(&r.SpecialCharCharge, 0.25)
	def(&r.WhitespaceThreshold, 0.2)
	def(&r.WhitespaceInflateMax, 0.3)
	return r
}

// Estimator estimates token counts from character-class heuristics.
// It never errors: malformed input gets a best-effort guess, empty input
// gets zero.
type Estimator struct {
	ratios Ratios
}

// NewEstimator creates an Estimator. Zero ratio fields use the defaults.
func NewEstimator(ratios Ratios) *Estimator {
	return &Estimator{ratios: ratios.withDefaults()}
}

// Pattern families for content-type detection. Kept as data so the
// heuristics stay tunable without touching control flow.
var (
	codeKeywordPattern = regexp.MustCompile(`(?m)\b(func|function|def|class|struct|interface|return|import|package|const|var|let|public|private|static|void|if|else|for|while)\b`)
	markdownPattern    = regexp.MustCompile("(?m)^(#{1,6} |[-*] |\\d+\\. |> |```)")
	jsonShapePattern   = regexp.MustCompile(`"[^"\n]*"\s*:`)
)

const codeIndicatorChars = "{}[]();=<>|&:"

func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	case r >= 0x3040 && r <= 0x30FF: // Hiragana + Katakana
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // Hangul syllables
		return true
	case r >= 0x3000 && r <= 0x303F: // CJK punctuation
		return true
	}
	return false
}

// Analyze classifies the characters of text and infers its primary type.
func (e *Estimator) Analyze(text string) ContentAnalysis {
	a := ContentAnalysis{PrimaryType: TypeEnglish}
	if text == "" {
		a.Confidence = 1.0
		return a
	}

	for _, r := range text {
		a.TotalChars++
		switch {
		case isCJK(r):
			a.CJKChars++
		case unicode.IsSpace(r):
			a.WhitespaceChars++
		case strings.ContainsRune(codeIndicatorChars, r):
			a.CodeChars++
			a.SpecialChars++
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			a.SpecialChars++
		}
	}

	nonCJK := a.TotalChars - a.CJKChars
	if nonCJK == 0 || float64(a.CJKChars)/float64(a.TotalChars) > 0.5 {
		a.PrimaryType = TypeCJK
		a.Confidence = float64(a.CJKChars) / float64(a.TotalChars)
		return a
	}

	a.PrimaryType, a.Confidence = detectNonCJKType(text, a, nonCJK)
	return a
}

// detectNonCJKType picks the non-CJK content type whose heuristic ratio
// clears its threshold, defaulting to english.
func detectNonCJKType(text string, a ContentAnalysis, nonCJK int) (ContentType, float64) {
	trimmed := strings.TrimSpace(text)

	// JSON: shaped like an object or array, with quoted keys.
	if len(trimmed) > 1 && (trimmed[0] == '{' || trimmed[0] == '[') {
		keys := len(jsonShapePattern.FindAllStringIndex(text, -1))
		if keys >= 2 || (keys >= 1 && trimmed[len(trimmed)-1] == '}') {
			return TypeJSON, math.Min(1.0, 0.5+float64(keys)*0.05)
		}
	}

	// Code: keyword hits plus indicator-character density.
	keywords := len(codeKeywordPattern.FindAllStringIndex(text, -1))
	indicatorDensity := float64(a.CodeChars) / float64(nonCJK)
	if keywords >= 3 && indicatorDensity > 0.03 {
		return TypeCode, math.Min(1.0, 0.4+float64(keywords)*0.05+indicatorDensity)
	}

	// Markdown: enough lines carrying markers.
	lines := strings.Count(text, "\n") + 1
	markers := len(markdownPattern.FindAllStringIndex(text, -1))
	if markers > 0 && float64(markers)/float64(lines) > 0.15 {
		return TypeMarkdown, math.Min(1.0, 0.4+float64(markers)/float64(lines))
	}

	return TypeEnglish, 0.6
}

// Estimate converts text to an estimated token count. Empty input returns
// zero; the result is otherwise always at least one.
func (e *Estimator) Estimate(text string) TokenEstimate {
	if text == "" {
		return TokenEstimate{}
	}
	a := e.Analyze(text)

	var est TokenEstimate
	if a.CJKChars > 0 {
		est.CJKTokens = int(math.Ceil(float64(a.CJKChars) / e.ratios.CJKCharsPerToken))
	}

	nonCJK := a.TotalChars - a.CJKChars
	if nonCJK > 0 {
		ratio := e.charsPerToken(a.PrimaryType)

		// Whitespace-heavy text tokenizes differently; inflate the ratio by
		// up to WhitespaceInflateMax once the whitespace fraction passes the
		// threshold.
		wsFrac := float64(a.WhitespaceChars) / float64(nonCJK)
		if wsFrac > e.ratios.WhitespaceThreshold {
			inflate := math.Min(e.ratios.WhitespaceInflateMax, wsFrac-e.ratios.WhitespaceThreshold)
			ratio *= 1 + inflate
		}

		est.TextTokens = int(math.Ceil(float64(nonCJK) / ratio))
	}

	// Punctuation and symbols often become their own token.
	est.Overhead = int(math.Ceil(float64(a.SpecialChars) * e.ratios.SpecialCharCharge))

	est.Tokens = est.CJKTokens + est.TextTokens + est.Overhead
	if est.Tokens < 1 {
		est.Tokens = 1
	}
	return est
}

func (e *Estimator) charsPerToken(t ContentType) float64 {
	switch t {
	case TypeCode:
		return e.ratios.CodeCharsPerToken
	case TypeJSON:
		return e.ratios.JSONCharsPerToken
	case TypeMarkdown:
		return e.ratios.MarkdownCharsPerToken
	default:
		return e.ratios.EnglishCharsPerToken
	}
}

// Count implements Counter.
func (e *Estimator) Count(text string) int {
	return e.Estimate(text).Tokens
}
