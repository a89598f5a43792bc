package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/standardbeagle/blockscan/internal/debug"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/types"
)

// Config file names looked up in the project directory, in priority order
const (
	KDLFileName  = ".blockscan.kdl"
	TOMLFileName = ".blockscan.toml"
)

type Config struct {
	Version     int         `toml:"version"`
	Analysis    Analysis    `toml:"analysis"`
	Script      Script      `toml:"script"`
	Patterns    Patterns    `toml:"patterns"`
	Languages   Languages   `toml:"languages"`
	Performance Performance `toml:"performance"`
	Output      Output      `toml:"output"`
	Scan        Scan        `toml:"scan"`
	Watch       Watch       `toml:"watch"`
	Disabled    []string    `toml:"disable"` // Rule kinds whose issues are dropped

	// Source is the file the configuration was read from, empty for defaults
	Source string `toml:"-"`
}

// Analysis holds the structural (Python) thresholds
type Analysis struct {
	MaxComplexity     int      `toml:"max_complexity"`      // high_complexity above this
	MaxArguments      int      `toml:"max_arguments"`       // too_many_arguments above this
	DocstringMinLines int      `toml:"docstring_min_lines"` // missing_docstring when the span exceeds this
	TypeHintMinLines  int      `toml:"type_hint_min_lines"` // missing_type_hint when the span exceeds this
	MinSecretLength   int      `toml:"min_secret_length"`   // hardcoded_secret when the literal is longer
	SecretKeywords    []string `toml:"secret_keywords"`
}

type Script struct {
	MaxConsoleLogs     int `toml:"max_console_logs"`
	MaxVarDeclarations int `toml:"max_var_declarations"`
}

// Patterns holds the run-level synthesis thresholds
type Patterns struct {
	HighComplexityScore int `toml:"high_complexity_score"`
	CriticalIssueCount  int `toml:"critical_issue_count"`
	ImportantIssueCount int `toml:"important_issue_count"`
}

// Languages lists extra fence tags routed to each analyzer
type Languages struct {
	Python     []string `toml:"python"`
	JavaScript []string `toml:"javascript"`
	Shell      []string `toml:"shell"`
	SQL        []string `toml:"sql"`
}

type Performance struct {
	Workers      int `toml:"workers"`       // 0 = auto-detect
	CacheEntries int `toml:"cache_entries"` // 0 disables the block cache
}

type Output struct {
	Format string `toml:"format"` // "json" or "text"
}

type Scan struct {
	Include          []string `toml:"include"`
	Exclude          []string `toml:"exclude"`
	RespectGitignore bool     `toml:"respect_gitignore"`
}

type Watch struct {
	DebounceMs int `toml:"debounce_ms"`
}

// Default secret keywords matched against lowercased assignment targets
var defaultSecretKeywords = []string{"password", "secret", "api_key", "apikey", "token", "credential"}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Version: 1,
		Analysis: Analysis{
			MaxComplexity:     10,
			MaxArguments:      5,
			DocstringMinLines: 5,
			TypeHintMinLines:  3,
			MinSecretLength:   5,
			SecretKeywords:    slices.Clone(defaultSecretKeywords),
		},
		Script: Script{
			MaxConsoleLogs:     5,
			MaxVarDeclarations: 3,
		},
		Patterns: Patterns{
			HighComplexityScore: 20,
			CriticalIssueCount:  3,
			ImportantIssueCount: 5,
		},
		Performance: Performance{
			Workers:      0,
			CacheEntries: 1024,
		},
		Output: Output{Format: "json"},
		Scan: Scan{
			Include:          []string{"**/*.md", "**/*.txt", "**/*.jsonl"},
			Exclude:          []string{"**/.git/**", "**/node_modules/**"},
			RespectGitignore: true,
		},
		Watch: Watch{DebounceMs: 300},
	}
}

// Load reads the configuration. An explicit path wins; otherwise dir is
// searched for .blockscan.kdl then .blockscan.toml. With no file the
// defaults are returned. The result is always validated.
func Load(path, dir string) (*Config, error) {
	cfg, err := load(path, dir)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		debug.LogConfig("loaded %s\n", cfg.Source)
	}
	return cfg, nil
}

func load(path, dir string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	if dir == "" {
		dir = "."
	}

	if cfg, err := LoadKDL(dir); err != nil || cfg != nil {
		return cfg, err
	}
	if cfg, err := LoadTOML(dir); err != nil || cfg != nil {
		return cfg, err
	}
	return Default(), nil
}

func loadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, bserrors.NewFileError("read config", path, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kdl":
		cfg, err = parseKDL(string(content))
	case ".toml":
		cfg, err = parseTOML(content)
	default:
		return nil, bserrors.NewConfigError("file", path, fmt.Errorf("unsupported config format %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// IsDisabled reports whether issues of kind are suppressed
func (c *Config) IsDisabled(kind string) bool {
	return slices.Contains(c.Disabled, kind)
}

// ExtraAliases maps each configured extra fence tag to its class
func (c *Config) ExtraAliases() map[string]types.LanguageClass {
	out := make(map[string]types.LanguageClass)
	add := func(tags []string, class types.LanguageClass) {
		for _, tag := range tags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				out[tag] = class
			}
		}
	}
	add(c.Languages.Python, types.ClassPython)
	add(c.Languages.JavaScript, types.ClassScript)
	add(c.Languages.Shell, types.ClassShell)
	add(c.Languages.SQL, types.ClassQuery)
	return out
}
