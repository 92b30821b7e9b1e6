// Package budget tracks a model's context-window ceiling and prunes
// conversation history to fit it. A Manager is scoped to one session: its
// running counters are mutated by sequential calls and are not safe for
// concurrent writers — use one instance per session.
package budget

import (
	"errors"
	"fmt"

	"github.com/tokenfit/tokenfit/message"
	"github.com/tokenfit/tokenfit/tokenize"
)

// Defaults.
const (
	DefaultMaxTokens          = 128000
	DefaultReservedOutput     = 4096
	DefaultTargetUtilization  = 0.9
	DefaultProactiveThreshold = 0.75
)

// ErrInvalidOptions marks configuration rejected at construction — the one
// error class with no safe fallback.
var ErrInvalidOptions = errors.New("budget: invalid options")

// Options configures a Manager. Zero fields use the defaults above.
type Options struct {
	MaxTokens         int     // context-window ceiling
	ReservedOutput    int     // tokens reserved for the model's own output
	TargetUtilization float64 // fraction of the usable window pruning aims for
	// ProactiveThreshold is the usage fraction that triggers compression
	// before the hard ceiling. Clamped to [0.5, 0.95] when set.
	ProactiveThreshold float64
}

// Manager tracks token usage against one model's context window.
type Manager struct {
	counter            tokenize.Counter
	maxTokens          int
	reservedOutput     int
	targetUtilization  float64
	proactiveThreshold float64
	used               int // running usage, updated per call
}

// NewManager validates opts and creates a Manager.
func NewManager(counter tokenize.Counter, opts Options) (*Manager, error) {
	if opts.MaxTokens < 0 || opts.ReservedOutput < 0 {
		return nil, fmt.Errorf("%w: negative token budget", ErrInvalidOptions)
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.ReservedOutput == 0 {
		opts.ReservedOutput = DefaultReservedOutput
	}
	if opts.ReservedOutput >= opts.MaxTokens {
		return nil, fmt.Errorf("%w: reserved output %d leaves no room in a %d-token window",
			ErrInvalidOptions, opts.ReservedOutput, opts.MaxTokens)
	}
	if opts.TargetUtilization < 0 || opts.TargetUtilization > 1 {
		return nil, fmt.Errorf("%w: target utilization %f outside [0,1]", ErrInvalidOptions, opts.TargetUtilization)
	}
	if opts.TargetUtilization == 0 {
		opts.TargetUtilization = DefaultTargetUtilization
	}

	threshold := opts.ProactiveThreshold
	switch {
	case threshold == 0:
		threshold = DefaultProactiveThreshold
	case threshold < 0.5:
		threshold = 0.5
	case threshold > 0.95:
		threshold = 0.95
	}

	return &Manager{
		counter:            counter,
		maxTokens:          opts.MaxTokens,
		reservedOutput:     opts.ReservedOutput,
		targetUtilization:  opts.TargetUtilization,
		proactiveThreshold: threshold,
	}, nil
}

// Window is a snapshot of the context budget. Available may be negative,
// signaling overflow.
type Window struct {
	MaxTokens      int
	ReservedOutput int
	Used           int
	Available      int
}

// ContextWindow measures msgs plus the system prompt against the window and
// records the usage on the manager.
func (m *Manager) ContextWindow(msgs []message.Message, systemPrompt string) Window {
	used := m.counter.Count(systemPrompt)
	for _, msg := range msgs {
		used += m.counter.Count(msg.Text())
	}
	m.used = used
	return Window{
		MaxTokens:      m.maxTokens,
		ReservedOutput: m.reservedOutput,
		Used:           used,
		Available:      m.maxTokens - m.reservedOutput - used,
	}
}

// Usage returns the most recently recorded token usage.
func (m *Manager) Usage() int { return m.used }

// target is the pruning goal: the usable window scaled by the target
// utilization, minus the system prompt's own cost.
func (m *Manager) target(systemPrompt string) int {
	usable := float64(m.maxTokens - m.reservedOutput)
	return int(usable*m.targetUtilization) - m.counter.Count(systemPrompt)
}

// NeedsPruning reports whether the history exceeds the pruning target.
func (m *Manager) NeedsPruning(msgs []message.Message, systemPrompt string) bool {
	w := m.ContextWindow(msgs, systemPrompt)
	return w.Used-m.counter.Count(systemPrompt) > m.target(systemPrompt)
}

// ShouldProactivelyCompress reports whether usage has crossed the
// proactive threshold — compression should start before a hard overflow,
// not after.
func (m *Manager) ShouldProactivelyCompress(currentTokens, maxTokens int) bool {
	if maxTokens <= 0 {
		return false
	}
	return float64(currentTokens)/float64(maxTokens) > m.proactiveThreshold
}

// PruneOptions controls which messages survive pruning. Zero values keep 1
// earliest and 4 most recent messages.
type PruneOptions struct {
	KeepFirst int
	KeepLast  int
}

func (o PruneOptions) withDefaults() PruneOptions {
	if o.KeepFirst <= 0 {
		o.KeepFirst = 1
	}
	if o.KeepLast <= 0 {
		o.KeepLast = 4
	}
	return o
}

// PruneResult summarises a pruning pass.
type PruneResult struct {
	KeptMessages    int
	RemovedMessages int
	TokensBefore    int
	TokensAfter     int
}

// PruneMessages keeps the first KeepFirst and last KeepLast messages
// unconditionally, then fills the remaining budget with middle messages
// taken newest-first, so the most recent middle context survives. Returns a
// new slice in the original order; the caller's messages are never mutated.
func (m *Manager) PruneMessages(msgs []message.Message, systemPrompt string, opts PruneOptions) ([]message.Message, PruneResult) {
	opts = opts.withDefaults()

	costs := make([]int, len(msgs))
	before := 0
	for i, msg := range msgs {
		costs[i] = m.counter.Count(msg.Text())
		before += costs[i]
	}

	target := m.target(systemPrompt)

	lastFrom := len(msgs) - opts.KeepLast
	if lastFrom < opts.KeepFirst {
		lastFrom = opts.KeepFirst
	}

	kept := make([]bool, len(msgs))
	used := 0
	for i := range msgs {
		if i < opts.KeepFirst || i >= lastFrom {
			kept[i] = true
			used += costs[i]
		}
	}

	// Middle messages, newest first, while the budget holds. If the
	// unconditional set already exceeds the target nothing further fits.
	for i := lastFrom - 1; i >= opts.KeepFirst; i-- {
		if kept[i] {
			continue
		}
		if used+costs[i] <= target {
			kept[i] = true
			used += costs[i]
		}
	}

	out := make([]message.Message, 0, len(msgs))
	for i, msg := range msgs {
		if kept[i] {
			out = append(out, msg)
		}
	}
	m.used = used + m.counter.Count(systemPrompt)

	return out, PruneResult{
		KeptMessages:    len(out),
		RemovedMessages: len(msgs) - len(out),
		TokensBefore:    before,
		TokensAfter:     used,
	}
}
