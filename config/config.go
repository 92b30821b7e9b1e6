// Package config holds the tunable settings of the budget engine: token
// ratios, strategy thresholds, and window parameters, loadable from TOML so
// the heuristics stay adjustable without code changes. Invalid settings are
// rejected at load/validate time — a bad budget has no safe fallback.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrInvalid marks configuration that cannot be used.
var ErrInvalid = errors.New("config: invalid")

// Config is the full engine configuration.
type Config struct {
	Estimator   Estimator   `toml:"estimator"`
	Compression Compression `toml:"compression"`
	Summarizer  Summarizer  `toml:"summarizer"`
	Window      Window      `toml:"window"`
	Cache       Cache       `toml:"cache"`
}

// Estimator tunes the chars-per-token heuristics.
type Estimator struct {
	CJKCharsPerToken      float64 `toml:"cjk_chars_per_token"`
	EnglishCharsPerToken  float64 `toml:"english_chars_per_token"`
	CodeCharsPerToken     float64 `toml:"code_chars_per_token"`
	JSONCharsPerToken     float64 `toml:"json_chars_per_token"`
	MarkdownCharsPerToken float64 `toml:"markdown_chars_per_token"`
	SpecialCharCharge     float64 `toml:"special_char_charge"`
}

// StrategyRule activates one named strategy.
type StrategyRule struct {
	Name        string  `toml:"name"`
	Threshold   float64 `toml:"threshold"`
	TargetRatio float64 `toml:"target_ratio"`
	Priority    int     `toml:"priority"`
}

// Compression tunes strategy selection and block preservation.
type Compression struct {
	Strategies             []StrategyRule `toml:"strategies"`
	PreserveRecentBlocks   int            `toml:"preserve_recent_blocks"`
	MinBlockImportance     float64        `toml:"min_block_importance"`
	PreserveRecentMessages int            `toml:"preserve_recent_messages"`
}

// Summarizer tunes the summarization paths.
type Summarizer struct {
	TargetTokens  int     `toml:"target_tokens"`
	DetailLevel   string  `toml:"detail_level"`
	AITimeoutSecs float64 `toml:"ai_timeout_secs"`
}

// Window tunes the conversation budget manager.
type Window struct {
	MaxTokens          int     `toml:"max_tokens"`
	ReservedOutput     int     `toml:"reserved_output"`
	TargetUtilization  float64 `toml:"target_utilization"`
	ProactiveThreshold float64 `toml:"proactive_threshold"`
	KeepFirstMessages  int     `toml:"keep_first_messages"`
	KeepLastMessages   int     `toml:"keep_last_messages"`
}

// Cache tunes the compression result cache.
type Cache struct {
	TTLSecs     float64 `toml:"ttl_secs"`
	CleanupSecs float64 `toml:"cleanup_secs"`
}

// Default returns the stock configuration. Most values are zero, meaning
// "use the component default"; only the entries that differ engine-wide
// are pinned here.
func Default() Config {
	return Config{
		Summarizer: Summarizer{
			TargetTokens:  500,
			DetailLevel:   "standard",
			AITimeoutSecs: 30,
		},
		Window: Window{
			MaxTokens:          128000,
			ReservedOutput:     4096,
			TargetUtilization:  0.9,
			ProactiveThreshold: 0.75,
			KeepFirstMessages:  1,
			KeepLastMessages:   4,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings with no safe interpretation.
func (c Config) Validate() error {
	if c.Window.MaxTokens < 0 {
		return fmt.Errorf("%w: window.max_tokens %d is negative", ErrInvalid, c.Window.MaxTokens)
	}
	if c.Window.ReservedOutput < 0 {
		return fmt.Errorf("%w: window.reserved_output %d is negative", ErrInvalid, c.Window.ReservedOutput)
	}
	if c.Window.MaxTokens > 0 && c.Window.ReservedOutput >= c.Window.MaxTokens {
		return fmt.Errorf("%w: window.reserved_output %d leaves no room in a %d-token window",
			ErrInvalid, c.Window.ReservedOutput, c.Window.MaxTokens)
	}
	if u := c.Window.TargetUtilization; u < 0 || u > 1 {
		return fmt.Errorf("%w: window.target_utilization %f outside [0,1]", ErrInvalid, u)
	}
	if c.Summarizer.TargetTokens < 0 {
		return fmt.Errorf("%w: summarizer.target_tokens %d is negative", ErrInvalid, c.Summarizer.TargetTokens)
	}
	if v := c.Compression.MinBlockImportance; v < 0 || v > 1 {
		return fmt.Errorf("%w: compression.min_block_importance %f outside [0,1]", ErrInvalid, v)
	}
	for _, s := range c.Compression.Strategies {
		if s.Threshold < 0 || s.TargetRatio < 0 || s.TargetRatio > 1 {
			return fmt.Errorf("%w: strategy %q has threshold %f / target_ratio %f",
				ErrInvalid, s.Name, s.Threshold, s.TargetRatio)
		}
	}
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"estimator.cjk_chars_per_token", c.Estimator.CJKCharsPerToken},
		{"estimator.english_chars_per_token", c.Estimator.EnglishCharsPerToken},
		{"estimator.code_chars_per_token", c.Estimator.CodeCharsPerToken},
		{"estimator.json_chars_per_token", c.Estimator.JSONCharsPerToken},
		{"estimator.markdown_chars_per_token", c.Estimator.MarkdownCharsPerToken},
	} {
		if r.value < 0 {
			return fmt.Errorf("%w: %s %f is negative", ErrInvalid, r.name, r.value)
		}
	}
	return nil
}
