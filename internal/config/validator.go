package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/hbollon/go-edlib"

	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/types"
)

// suggestionThreshold is the minimum similarity for a "did you mean" hint
const suggestionThreshold = 0.6

// Validator validates configuration and sets smart defaults
type Validator struct {
	ruleKinds []string
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{ruleKinds: types.RuleKinds()}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Returns a *errors.ConfigError naming the offending section.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateAnalysisConfig(&cfg.Analysis); err != nil {
		return bserrors.NewConfigError("analysis", "", err)
	}

	if err := v.validateScriptConfig(&cfg.Script); err != nil {
		return bserrors.NewConfigError("script", "", err)
	}

	if err := v.validatePatternsConfig(&cfg.Patterns); err != nil {
		return bserrors.NewConfigError("patterns", "", err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return bserrors.NewConfigError("performance", "", err)
	}

	if cfg.Output.Format != "" && cfg.Output.Format != "json" && cfg.Output.Format != "text" {
		return bserrors.NewConfigError("output.format", cfg.Output.Format, errors.New("format must be json or text"))
	}

	if cfg.Watch.DebounceMs < 0 {
		return bserrors.NewConfigError("watch.debounce_ms", fmt.Sprint(cfg.Watch.DebounceMs), errors.New("debounce cannot be negative"))
	}

	for _, kind := range cfg.Disabled {
		if !slices.Contains(v.ruleKinds, kind) {
			return bserrors.NewConfigError("disable", kind, v.unknownRuleError(kind))
		}
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateAnalysisConfig(analysis *Analysis) error {
	if analysis.MaxComplexity < 1 {
		return fmt.Errorf("max_complexity must be at least 1, got %d", analysis.MaxComplexity)
	}
	if analysis.MaxArguments < 0 {
		return fmt.Errorf("max_arguments cannot be negative, got %d", analysis.MaxArguments)
	}
	if analysis.DocstringMinLines < 0 || analysis.TypeHintMinLines < 0 {
		return errors.New("line thresholds cannot be negative")
	}
	if analysis.MinSecretLength < 0 {
		return fmt.Errorf("min_secret_length cannot be negative, got %d", analysis.MinSecretLength)
	}
	return nil
}

func (v *Validator) validateScriptConfig(script *Script) error {
	if script.MaxConsoleLogs < 0 || script.MaxVarDeclarations < 0 {
		return errors.New("script thresholds cannot be negative")
	}
	return nil
}

func (v *Validator) validatePatternsConfig(patterns *Patterns) error {
	if patterns.HighComplexityScore < 0 {
		return fmt.Errorf("high_complexity_score cannot be negative, got %d", patterns.HighComplexityScore)
	}
	if patterns.CriticalIssueCount < 1 || patterns.ImportantIssueCount < 1 {
		return errors.New("issue count thresholds must be at least 1")
	}
	return nil
}

func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	if perf.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", perf.Workers)
	}
	if perf.CacheEntries < 0 {
		return fmt.Errorf("cache_entries cannot be negative, got %d", perf.CacheEntries)
	}
	return nil
}

// unknownRuleError builds the error for an unrecognized rule kind,
// suggesting the closest known kind when one is similar enough
func (v *Validator) unknownRuleError(kind string) error {
	best, bestScore := "", float32(0)
	for _, known := range v.ruleKinds {
		score, err := edlib.StringsSimilarity(kind, known, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = known, score
		}
	}
	if bestScore >= suggestionThreshold {
		return fmt.Errorf("unknown rule %q, did you mean %q?", kind, best)
	}
	return fmt.Errorf("unknown rule %q", kind)
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Use cores-1 to leave headroom for the system, minimum of 1
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}

	if len(cfg.Analysis.SecretKeywords) == 0 {
		cfg.Analysis.SecretKeywords = slices.Clone(defaultSecretKeywords)
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
