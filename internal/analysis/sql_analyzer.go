package analysis

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/types"
)

// SQLAnalyzer implements pattern-based checks for SQL blocks
type SQLAnalyzer struct {
	cfg   *config.Config
	rules []regexRule
}

// NewSQLAnalyzer creates a new SQL analyzer
func NewSQLAnalyzer(cfg *config.Config) *SQLAnalyzer {
	// Query text built from a literal by concatenation, f-string,
	// %-formatting, str.format or a template literal
	injection := regexp.MustCompile(strings.Join([]string{
		`['"]\s*\+|\+\s*['"]`,
		`\bf['"][^\n]*\{[^\n]*\}`,
		`['"]\s+%\s*[\w(]`,
		`['"]\s*\.format\s*\(`,
		"`[^`]*\\$\\{",
	}, "|"))

	return &SQLAnalyzer{
		cfg: cfg,
		rules: []regexRule{
			{
				pattern:  injection,
				severity: types.SeverityCritical,
				kind:     types.KindSQLInjection,
				message:  "String concatenation in SQL query - use parameterized queries",
				learning: &types.Learning{
					Key:  "parameterized_queries",
					Text: "Always use parameterized queries (?, :param, or %s) instead of string concatenation",
				},
			},
			{
				pattern:  regexp.MustCompile(`(?i)\bSELECT\s+\*`),
				severity: types.SeverityMinor,
				kind:     types.KindSelectStar,
				message:  "SELECT * can fetch unnecessary data - specify columns explicitly",
			},
		},
	}
}

// Class returns the language class
func (sa *SQLAnalyzer) Class() types.LanguageClass {
	return types.ClassQuery
}

// Analyze runs the query checks over source
func (sa *SQLAnalyzer) Analyze(source string) *BlockResult {
	c := newCollector(sa.cfg)
	for _, rule := range sa.rules {
		rule.apply(source, c)
	}
	return c.res
}
