package summarize

import (
	"regexp"
	"sort"
	"strings"
)

// importanceKeywords earn a sentence +2 each when present.
var importanceKeywords = []string{
	"error", "fix", "fixed", "decided", "decision", "important", "critical",
	"bug", "solution", "implement", "issue", "failed", "root cause",
	"config", "deploy", "test", "breaking", "resolved",
}

// inlineCodeCue marks sentences carrying inline code or file-like tokens.
var inlineCodeCue = regexp.MustCompile("`[^`]+`|[A-Za-z0-9_./-]+\\.[a-z]{1,4}\\b|\\w+\\(\\)")

// splitSentences breaks text into trimmed sentences at terminator
// punctuation and blank-line boundaries.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			flush()
			continue
		}
		cur.WriteByte(c)
		if c == '.' || c == '!' || c == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				flush()
			}
		}
	}
	flush()
	return out
}

type scoredSentence struct {
	index int
	text  string
	score float64
}

// scoreSentence rates a sentence by keyword hits, position, length sweet
// spot, and inline code presence.
func scoreSentence(s string, index, total int) float64 {
	score := 0.0
	lower := strings.ToLower(s)

	for _, kw := range importanceKeywords {
		if strings.Contains(lower, kw) {
			score += 2
		}
	}

	// Earlier sentences score higher; the final two get a flat bonus.
	if total > 1 {
		score += 2 * float64(total-index) / float64(total)
	}
	if index >= total-2 {
		score += 1.5
	}

	if words := len(strings.Fields(s)); words >= 10 && words <= 30 {
		score += 1
	}

	if inlineCodeCue.MatchString(s) {
		score += 2
	}

	return score
}

// Extractive builds a summary by selecting the highest-scoring sentences
// that fit targetTokens, then restoring their original order — the summary
// reads as the source did, never score-ordered.
func (s *Summarizer) Extractive(text string, targetTokens int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	scored := make([]scoredSentence, len(sentences))
	for i, sent := range sentences {
		scored[i] = scoredSentence{index: i, text: sent, score: scoreSentence(sent, i, len(sentences))}
	}

	byScore := make([]scoredSentence, len(scored))
	copy(byScore, scored)
	sort.SliceStable(byScore, func(i, j int) bool {
		if byScore[i].score != byScore[j].score {
			return byScore[i].score > byScore[j].score
		}
		return byScore[i].index < byScore[j].index
	})

	var accepted []scoredSentence
	used := 0
	for _, cand := range byScore {
		t := s.counter.Count(cand.text)
		if used+t > targetTokens {
			continue
		}
		accepted = append(accepted, cand)
		used += t
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].index < accepted[j].index })

	parts := make([]string, len(accepted))
	for i, a := range accepted {
		parts[i] = a.text
	}
	return strings.Join(parts, " ")
}
