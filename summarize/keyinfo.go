package summarize

import (
	"regexp"
	"sort"
	"strings"
)

// Per-category caps and the length window that excludes fragments and
// run-ons.
const (
	maxPerCategory = 8
	minItemLen     = 12
	maxItemLen     = 240
)

// Extracted holds the bounded structured information pulled from a
// conversation.
type Extracted struct {
	Decisions   []string
	ActionItems []string
	Questions   []string
	Issues      []string
	Topics      []string
	FileRefs    []string
}

// Cue pattern families, one per category. Kept as data so they stay tunable
// without touching control flow.
var (
	decisionCues = regexp.MustCompile(`(?i)\b(decided to|decision:|we will|we'll|going with|chose|agreed (?:to|on)|settled on|switched to|let's use)\b`)
	actionCues   = regexp.MustCompile(`(?i)\b(need to|needs to|must|todo:?|next step|action item|will implement|have to|remember to)\b`)
	issueCues    = regexp.MustCompile(`(?i)\b(error|bug|fails?|failed|failing|broken|issue|problem|crash|exception|regression)\b`)
	fileRefCue   = regexp.MustCompile(`[A-Za-z0-9_][A-Za-z0-9_./-]*\.(?:go|py|js|jsx|ts|tsx|java|rb|rs|c|h|cpp|md|json|yaml|yml|toml|sql|sh|proto)\b`)
)

// ExtractKeyInfo pulls decisions, action items, questions, issues, topics,
// and file references out of text. Each category is deduplicated, filtered
// to the length window, and capped.
func ExtractKeyInfo(text string) Extracted {
	sentences := splitSentences(text)

	var info Extracted
	for _, s := range sentences {
		switch {
		case strings.HasSuffix(s, "?"):
			info.Questions = appendBounded(info.Questions, s)
		case decisionCues.MatchString(s):
			info.Decisions = appendBounded(info.Decisions, s)
		case issueCues.MatchString(s):
			info.Issues = appendBounded(info.Issues, s)
		case actionCues.MatchString(s):
			info.ActionItems = appendBounded(info.ActionItems, s)
		}
	}

	for _, ref := range fileRefCue.FindAllString(text, -1) {
		if len(info.FileRefs) >= maxPerCategory {
			break
		}
		if !containsFold(info.FileRefs, ref) {
			info.FileRefs = append(info.FileRefs, ref)
		}
	}

	info.Topics = ExtractTopics(text)
	return info
}

// appendBounded adds s when it passes the length window, is not a
// duplicate, and the category has room.
func appendBounded(list []string, s string) []string {
	if len(list) >= maxPerCategory {
		return list
	}
	if len(s) < minItemLen || len(s) > maxItemLen {
		return list
	}
	if containsFold(list, s) {
		return list
	}
	return append(list, s)
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// topicStopwords are frequent words that never make useful topics.
var topicStopwords = map[string]bool{
	"about": true, "after": true, "again": true, "because": true,
	"before": true, "being": true, "could": true, "doing": true,
	"having": true, "other": true, "should": true, "their": true,
	"there": true, "these": true, "thing": true, "things": true,
	"think": true, "those": true, "through": true, "using": true,
	"where": true, "which": true, "while": true, "would": true,
	"really": true, "still": true, "going": true,
}

const maxTopics = 5

// ExtractTopics returns the most frequent significant words, ordered by
// frequency then first appearance, capped at maxTopics.
func ExtractTopics(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '_' && r != '-'
	})

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, w := range words {
		if len(w) < 5 || topicStopwords[w] {
			continue
		}
		if counts[w] == 0 {
			firstSeen[w] = i
		}
		counts[w]++
	}

	var topics []string
	for w, n := range counts {
		if n >= 2 {
			topics = append(topics, w)
		}
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return firstSeen[topics[i]] < firstSeen[topics[j]]
	})
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}
