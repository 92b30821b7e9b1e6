// Package tokenfit is the engine facade: one Engine per session ties the
// token estimator, code block analyzer, compression strategies, summarizer,
// and window manager together under a single configuration. There are no
// package-level singletons; construct an Engine and pass it around.
package tokenfit

import (
	"context"
	"fmt"
	"time"

	"github.com/tokenfit/tokenfit/budget"
	"github.com/tokenfit/tokenfit/codeblock"
	"github.com/tokenfit/tokenfit/compress"
	"github.com/tokenfit/tokenfit/config"
	"github.com/tokenfit/tokenfit/message"
	"github.com/tokenfit/tokenfit/summarize"
	"github.com/tokenfit/tokenfit/tokenize"
)

// Engine is a session-scoped facade over the budget engine. The underlying
// Manager and Deduper carry per-session state, so an Engine is not safe for
// concurrent writers.
type Engine struct {
	cfg        config.Config
	estimator  *tokenize.Estimator
	counter    tokenize.Counter
	analyzer   *codeblock.Analyzer
	compressor *compress.Compressor
	summarizer *summarize.Summarizer
	manager    *budget.Manager
	cache      *budget.ResultCache
	dedup      *budget.Deduper
	ai         summarize.AIFunc
}

// New validates cfg and builds an Engine on the heuristic estimator. The
// ai callback is optional; nil keeps every path extractive.
func New(cfg config.Config, ai summarize.AIFunc) (*Engine, error) {
	return newEngine(cfg, nil, ai)
}

// NewWithCounter builds an Engine whose token counts come from counter —
// typically a tokenize.Tiktoken for exact counts. Content analysis still
// uses the heuristic estimator.
func NewWithCounter(cfg config.Config, counter tokenize.Counter, ai summarize.AIFunc) (*Engine, error) {
	if counter == nil {
		return nil, fmt.Errorf("tokenfit: nil counter")
	}
	return newEngine(cfg, counter, ai)
}

func newEngine(cfg config.Config, counter tokenize.Counter, ai summarize.AIFunc) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	estimator := tokenize.NewEstimator(tokenize.Ratios{
		CJKCharsPerToken:      cfg.Estimator.CJKCharsPerToken,
		EnglishCharsPerToken:  cfg.Estimator.EnglishCharsPerToken,
		CodeCharsPerToken:     cfg.Estimator.CodeCharsPerToken,
		JSONCharsPerToken:     cfg.Estimator.JSONCharsPerToken,
		MarkdownCharsPerToken: cfg.Estimator.MarkdownCharsPerToken,
		SpecialCharCharge:     cfg.Estimator.SpecialCharCharge,
	})
	if counter == nil {
		counter = estimator
	}

	analyzer := codeblock.NewAnalyzer(counter)
	summarizer := summarize.NewSummarizer(counter, analyzer)

	strategies, err := buildStrategies(counter, analyzer, summarizer, cfg, ai)
	if err != nil {
		return nil, err
	}

	manager, err := budget.NewManager(counter, budget.Options{
		MaxTokens:          cfg.Window.MaxTokens,
		ReservedOutput:     cfg.Window.ReservedOutput,
		TargetUtilization:  cfg.Window.TargetUtilization,
		ProactiveThreshold: cfg.Window.ProactiveThreshold,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		estimator:  estimator,
		counter:    counter,
		analyzer:   analyzer,
		compressor: compress.NewCompressor(counter, strategies),
		summarizer: summarizer,
		manager:    manager,
		cache:      budget.NewResultCache(secs(cfg.Cache.TTLSecs), secs(cfg.Cache.CleanupSecs)),
		dedup:      budget.NewDeduper(0),
		ai:         ai,
	}, nil
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// buildStrategies maps the configured strategy rules onto implementations.
// An empty rule list uses the stock set, with the AI summary strategy
// appended when a callback is present.
func buildStrategies(counter tokenize.Counter, analyzer *codeblock.Analyzer, summarizer *summarize.Summarizer, cfg config.Config, ai summarize.AIFunc) ([]compress.Registration, error) {
	summaryFn := func(text string, targetTokens int) (string, bool) {
		res := summarizer.Summarize(context.Background(), text, summarize.Options{
			TargetTokens: targetTokens,
			AI:           ai,
			Timeout:      secs(cfg.Summarizer.AITimeoutSecs),
		})
		return res.Summary, res.Summary != ""
	}

	selOpts := codeblock.SelectOptions{
		PreserveRecentCount: cfg.Compression.PreserveRecentBlocks,
		MinImportance:       cfg.Compression.MinBlockImportance,
	}

	rules := cfg.Compression.Strategies
	if len(rules) == 0 {
		regs := compress.DefaultStrategiesWithSelect(counter, analyzer, selOpts)
		if ai != nil {
			regs = append(regs, compress.Registration{
				Strategy:    compress.NewAISummary(counter, summaryFn),
				Threshold:   2.0,
				TargetRatio: 0.5,
				Priority:    4,
			})
		}
		return regs, nil
	}

	regs := make([]compress.Registration, 0, len(rules))
	for _, r := range rules {
		var s compress.Strategy
		switch r.Name {
		case compress.StrategyTruncate:
			s = compress.NewTruncate(counter)
		case compress.StrategyCodeExtract:
			s = compress.NewCodePreserveWithSelect(counter, analyzer, selOpts)
		case compress.StrategyHybrid:
			s = compress.NewHybridWithSelect(counter, analyzer, selOpts)
		case compress.StrategyAISummary:
			s = compress.NewAISummary(counter, summaryFn)
		default:
			return nil, fmt.Errorf("%w: unknown strategy %q", config.ErrInvalid, r.Name)
		}
		regs = append(regs, compress.Registration{
			Strategy:    s,
			Threshold:   r.Threshold,
			TargetRatio: r.TargetRatio,
			Priority:    r.Priority,
		})
	}
	return regs, nil
}

// EstimateTokens counts the tokens of text under the engine's counter.
func (e *Engine) EstimateTokens(text string) int {
	return e.counter.Count(text)
}

// Analyze classifies text and reports its character statistics.
func (e *Engine) Analyze(text string) tokenize.ContentAnalysis {
	return e.estimator.Analyze(text)
}

// CodeBlocks parses the fenced code blocks of text.
func (e *Engine) CodeBlocks(text string) []codeblock.Block {
	return e.analyzer.Parse(text)
}

// Compress fits text into budgetTokens using the configured strategy list.
// Results are cached per text/budget pair for the cache TTL, so repeated
// compression of an unchanged prompt costs one pass.
func (e *Engine) Compress(text string, budgetTokens int) compress.Result {
	key := e.cache.Key(text, budgetTokens)
	if res, ok := e.cache.Get(key); ok {
		return res
	}
	res := e.compressor.Compress(text, budgetTokens)
	e.cache.Put(key, res)
	return res
}

// CompressMessages fits a message history into budgetTokens. A zero
// PreserveRecentMessages in opts takes the configured value.
func (e *Engine) CompressMessages(msgs []message.Message, budgetTokens int, opts compress.MessageOptions) ([]message.Message, compress.Result) {
	if opts.PreserveRecentMessages <= 0 {
		opts.PreserveRecentMessages = e.cfg.Compression.PreserveRecentMessages
	}
	return e.compressor.CompressMessages(msgs, budgetTokens, opts)
}

// Summarize condenses text. Zero fields in opts take the configured
// defaults, and a nil opts.AI uses the engine's callback.
func (e *Engine) Summarize(ctx context.Context, text string, opts summarize.Options) summarize.Result {
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = e.cfg.Summarizer.TargetTokens
	}
	if opts.DetailLevel == "" {
		opts.DetailLevel = e.cfg.Summarizer.DetailLevel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = secs(e.cfg.Summarizer.AITimeoutSecs)
	}
	if opts.AI == nil {
		opts.AI = e.ai
	}
	return e.summarizer.Summarize(ctx, text, opts)
}

// ContextWindow measures msgs plus the system prompt against the window.
func (e *Engine) ContextWindow(msgs []message.Message, systemPrompt string) budget.Window {
	return e.manager.ContextWindow(msgs, systemPrompt)
}

// NeedsPruning reports whether the history exceeds the pruning target.
func (e *Engine) NeedsPruning(msgs []message.Message, systemPrompt string) bool {
	return e.manager.NeedsPruning(msgs, systemPrompt)
}

// ShouldProactivelyCompress reports whether usage has crossed the
// configured proactive threshold.
func (e *Engine) ShouldProactivelyCompress(currentTokens, maxTokens int) bool {
	return e.manager.ShouldProactivelyCompress(currentTokens, maxTokens)
}

// PruneMessages prunes the history to the window target. Zero fields in
// opts take the configured keep-first/keep-last values.
func (e *Engine) PruneMessages(msgs []message.Message, systemPrompt string, opts budget.PruneOptions) ([]message.Message, budget.PruneResult) {
	if opts.KeepFirst <= 0 {
		opts.KeepFirst = e.cfg.Window.KeepFirstMessages
	}
	if opts.KeepLast <= 0 {
		opts.KeepLast = e.cfg.Window.KeepLastMessages
	}
	return e.manager.PruneMessages(msgs, systemPrompt, opts)
}

// ShrinkToolResult fits a raw tool result into budgetTokens, structurally
// for JSON and by middle truncation otherwise.
func (e *Engine) ShrinkToolResult(raw string, budgetTokens int) (string, bool) {
	return budget.ShrinkToolResult(e.counter, raw, budgetTokens)
}

// FoldDuplicates collapses consecutive duplicate messages.
func (e *Engine) FoldDuplicates(msgs []message.Message) ([]message.Message, int) {
	return e.dedup.Fold(msgs)
}

// RoleBreakdown reports token usage per role.
func (e *Engine) RoleBreakdown(msgs []message.Message) map[message.Role]int {
	return budget.RoleBreakdown(e.counter, msgs)
}
