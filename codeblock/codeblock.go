// Package codeblock extracts fenced code spans from text, infers their
// language, scores their importance, and selects a subset to preserve under
// a token ceiling.
package codeblock

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tokenfit/tokenfit/tokenize"
)

// Block is a fenced code span. Immutable once created — if score inputs
// change, a new block is made.
type Block struct {
	ID         string
	Language   string
	Content    string // trimmed body, without fences
	Start      int    // byte offset of the opening fence in the source
	End        int    // byte offset just past the closing fence
	Tokens     int
	Recent     bool
	Importance float64 // 0-1
	FilePath   string  // associated file, when known
}

// Lines returns the number of lines in the block body.
func (b Block) Lines() int {
	if b.Content == "" {
		return 0
	}
	return strings.Count(b.Content, "\n") + 1
}

// WithFilePath returns a copy of b associated with path, rescored. Blocks
// are immutable; score inputs changing means a new block.
func WithFilePath(b Block, path string) Block {
	b.FilePath = path
	b.Importance = scoreBlock(b)
	return b
}

// MarkRecent returns a copy of b flagged as recent.
func MarkRecent(b Block) Block {
	b.Recent = true
	return b
}

// Analyzer parses and ranks code blocks.
type Analyzer struct {
	counter tokenize.Counter
}

// NewAnalyzer creates an Analyzer counting tokens through counter.
func NewAnalyzer(counter tokenize.Counter) *Analyzer {
	return &Analyzer{counter: counter}
}

// Parse scans text for fenced code spans. The language comes from the fence
// tag when present, otherwise from content inference. Unclosed fences are
// ignored.
func (a *Analyzer) Parse(text string) []Block {
	var blocks []Block
	offset := 0
	for {
		rel := strings.Index(text[offset:], "```")
		if rel == -1 {
			break
		}
		start := offset + rel
		nl := strings.IndexByte(text[start:], '\n')
		if nl == -1 {
			break
		}
		tag := strings.TrimSpace(text[start+3 : start+nl])
		bodyStart := start + nl + 1
		closeRel := strings.Index(text[bodyStart:], "```")
		if closeRel == -1 {
			break
		}
		end := bodyStart + closeRel + 3

		content := strings.Trim(text[bodyStart:bodyStart+closeRel], "\n")
		lang := tag
		if lang == "" {
			lang = InferLanguage(content)
		}

		b := Block{
			ID:       uuid.NewString(),
			Language: lang,
			Content:  content,
			Start:    start,
			End:      end,
			Tokens:   a.counter.Count(content),
		}
		b.Importance = scoreBlock(b)
		blocks = append(blocks, b)

		offset = end
	}
	return blocks
}
