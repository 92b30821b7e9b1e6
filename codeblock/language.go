package codeblock

import "regexp"

// languageSignals maps a language to the syntax patterns that vote for it.
// A language needs at least two matching signals to be inferred; the one
// with the most matches wins.
var languageSignals = map[string][]*regexp.Regexp{
	"go": {
		regexp.MustCompile(`\bfunc\s+\w+\s*\(`),
		regexp.MustCompile(`\bpackage\s+\w+`),
		regexp.MustCompile(`:=`),
		regexp.MustCompile(`\b(chan|defer|goroutine|go func)\b`),
	},
	"python": {
		regexp.MustCompile(`\bdef\s+\w+\s*\(`),
		regexp.MustCompile(`(?m)^\s*(import|from)\s+\w+`),
		regexp.MustCompile(`\bself\b`),
		regexp.MustCompile(`(?m):\s*$`),
	},
	"javascript": {
		regexp.MustCompile(`\b(const|let)\s+\w+\s*=`),
		regexp.MustCompile(`=>`),
		regexp.MustCompile(`\bconsole\.log\b`),
		regexp.MustCompile(`\brequire\s*\(`),
	},
	"typescript": {
		regexp.MustCompile(`:\s*(string|number|boolean|void)\b`),
		regexp.MustCompile(`\binterface\s+\w+\s*\{`),
		regexp.MustCompile(`\b(const|let)\s+\w+\s*:`),
		regexp.MustCompile(`\bexport\s+(type|interface|const)\b`),
	},
	"rust": {
		regexp.MustCompile(`\bfn\s+\w+\s*\(`),
		regexp.MustCompile(`\blet\s+mut\b`),
		regexp.MustCompile(`\bimpl\s+\w+`),
		regexp.MustCompile(`::`),
	},
	"java": {
		regexp.MustCompile(`\bpublic\s+(class|static|void)\b`),
		regexp.MustCompile(`\bSystem\.out\.print`),
		regexp.MustCompile(`\bprivate\s+\w+\s+\w+;`),
		regexp.MustCompile(`\bnew\s+\w+\s*\(`),
	},
	"ruby": {
		regexp.MustCompile(`(?m)^\s*def\s+\w+\s*$`),
		regexp.MustCompile(`(?m)^\s*end\s*$`),
		regexp.MustCompile(`\brequire\s+['"]`),
		regexp.MustCompile(`\bdo\s*\|\w+\|`),
	},
	"c": {
		regexp.MustCompile(`#include\s*<`),
		regexp.MustCompile(`\bint\s+main\s*\(`),
		regexp.MustCompile(`\bprintf\s*\(`),
		regexp.MustCompile(`\w+\s*\*\s*\w+`),
	},
	"bash": {
		regexp.MustCompile(`(?m)^#!/bin/(ba)?sh`),
		regexp.MustCompile(`\becho\s+`),
		regexp.MustCompile(`\$\{?\w+`),
		regexp.MustCompile(`(?m)^\s*(if|fi|done|esac)\b`),
	},
	"sql": {
		regexp.MustCompile(`(?i)\bSELECT\b.*\bFROM\b`),
		regexp.MustCompile(`(?i)\b(INSERT INTO|UPDATE|DELETE FROM)\b`),
		regexp.MustCompile(`(?i)\bWHERE\b`),
		regexp.MustCompile(`(?i)\b(CREATE|ALTER)\s+TABLE\b`),
	},
}

// languageOrder fixes the tie-break order so inference is deterministic.
var languageOrder = []string{
	"go", "python", "typescript", "javascript", "rust",
	"java", "ruby", "c", "bash", "sql",
}

// InferLanguage guesses the language of untagged code by signal voting.
// Returns "" when no language reaches two matching signals.
func InferLanguage(content string) string {
	best := ""
	bestVotes := 1 // require >= 2
	for _, lang := range languageOrder {
		signals := languageSignals[lang]
		votes := 0
		for _, sig := range signals {
			if sig.MatchString(content) {
				votes++
			}
		}
		if votes > bestVotes {
			best, bestVotes = lang, votes
		}
	}
	return best
}
