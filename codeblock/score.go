package codeblock

import "regexp"

// Importance keyword families. Data-driven so they stay tunable.
var (
	importPattern  = regexp.MustCompile(`(?m)^\s*(import|from|require|use|#include|export)\b`)
	typeDefPattern = regexp.MustCompile(`\b(type|class|struct|interface|enum|trait)\s+\w+`)
	funcDefPattern = regexp.MustCompile(`\b(func|function|def|fn)\s+\w+\s*\(`)
	testPattern    = regexp.MustCompile(`\b(it|describe|test|Test\w+|assert\w*|expect)\s*\(`)
	todoPattern    = regexp.MustCompile(`\b(TODO|FIXME|XXX)\b`)
)

// highPriorityLanguages get a scoring bonus: the languages most likely to
// carry the working code of a session.
var highPriorityLanguages = map[string]bool{
	"go":         true,
	"python":     true,
	"typescript": true,
	"javascript": true,
	"rust":       true,
}

// scoreBlock computes an importance score in [0,1] from a 0.5 base.
func scoreBlock(b Block) float64 {
	score := 0.5

	lines := b.Lines()
	if lines > 20 {
		score += 0.1
	}
	if lines > 50 {
		score += 0.1
	}
	if lines < 3 {
		score -= 0.2
	}

	if highPriorityLanguages[b.Language] {
		score += 0.1
	}
	if importPattern.MatchString(b.Content) {
		score += 0.05
	}
	if typeDefPattern.MatchString(b.Content) {
		score += 0.1
	}
	if funcDefPattern.MatchString(b.Content) {
		score += 0.1
	}
	if testPattern.MatchString(b.Content) {
		score += 0.1
	}
	if todoPattern.MatchString(b.Content) {
		score += 0.05
	}
	if b.FilePath != "" {
		score += 0.1
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
