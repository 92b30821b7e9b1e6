package codeblock

import (
	"fmt"
	"sort"
	"strings"
)

// SelectOptions controls preservation under a token ceiling.
type SelectOptions struct {
	// PreserveRecentCount reserves a sub-quota for recent blocks, filled
	// before any other block is considered.
	PreserveRecentCount int
	// PriorityFiles ranks blocks from these paths ahead of others.
	PriorityFiles []string
	// MinImportance rejects blocks scoring below it outright, regardless of
	// remaining budget.
	MinImportance float64
}

// Select picks the blocks to preserve under budgetTokens. Candidates are
// ordered by recency, then priority-file membership, then importance, and
// accepted greedily while the running token total fits. Returns new slices;
// the input is not modified.
func (a *Analyzer) Select(blocks []Block, budgetTokens int, opts SelectOptions) (preserved, removed []Block) {
	if len(blocks) == 0 {
		return nil, nil
	}

	priority := make(map[string]bool, len(opts.PriorityFiles))
	for _, p := range opts.PriorityFiles {
		priority[p] = true
	}

	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Recent != b.Recent {
			return a.Recent
		}
		if pa, pb := priority[a.FilePath], priority[b.FilePath]; pa != pb {
			return pa
		}
		return a.Importance > b.Importance
	})

	kept := make(map[string]bool, len(sorted))
	used := 0

	// Recent blocks fill their reserved quota first, even when other blocks
	// would rank higher on importance alone.
	recentQuota := opts.PreserveRecentCount
	for _, b := range sorted {
		if recentQuota == 0 {
			break
		}
		if !b.Recent || b.Importance < opts.MinImportance {
			continue
		}
		if used+b.Tokens > budgetTokens {
			continue
		}
		kept[b.ID] = true
		used += b.Tokens
		recentQuota--
	}

	for _, b := range sorted {
		if kept[b.ID] || b.Importance < opts.MinImportance {
			continue
		}
		if used+b.Tokens > budgetTokens {
			continue
		}
		kept[b.ID] = true
		used += b.Tokens
	}

	// Preserve original block order in the outputs.
	for _, b := range blocks {
		if kept[b.ID] {
			preserved = append(preserved, b)
		} else {
			removed = append(removed, b)
		}
	}
	return preserved, removed
}

// Reconstruct replaces each removed block's span in text with a short
// placeholder noting language and token count. Removals are applied in
// descending offset order so earlier offsets stay valid.
func Reconstruct(text string, removed []Block) string {
	if len(removed) == 0 {
		return text
	}
	byOffset := make([]Block, len(removed))
	copy(byOffset, removed)
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].Start > byOffset[j].Start })

	var sb strings.Builder
	for _, b := range byOffset {
		if b.Start < 0 || b.End > len(text) || b.Start >= b.End {
			continue
		}
		sb.Reset()
		sb.WriteString(text[:b.Start])
		sb.WriteString(Placeholder(b))
		sb.WriteString(text[b.End:])
		text = sb.String()
	}
	return text
}

// Placeholder is the marker left where a block was removed.
func Placeholder(b Block) string {
	lang := b.Language
	if lang == "" {
		lang = "code"
	}
	return fmt.Sprintf("[code block removed: %s, ~%d tokens]", lang, b.Tokens)
}
