package analysis

import (
	"fmt"
	"regexp"

	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/types"
)

// JavaScriptAnalyzer implements pattern-based checks for JavaScript and
// TypeScript blocks
type JavaScriptAnalyzer struct {
	cfg *config.Config

	evalRule     regexRule
	docWriteRule regexRule

	xssPattern     *regexp.Regexp
	consolePattern *regexp.Regexp
	varPattern     *regexp.Regexp
	looseEqPattern *regexp.Regexp
}

// NewJavaScriptAnalyzer creates a new JavaScript analyzer
func NewJavaScriptAnalyzer(cfg *config.Config) *JavaScriptAnalyzer {
	return &JavaScriptAnalyzer{
		cfg: cfg,
		evalRule: regexRule{
			pattern:  regexp.MustCompile(`\beval\s*\(`),
			severity: types.SeverityCritical,
			kind:     types.KindDangerousEval,
			message:  "Use of eval() in JavaScript is dangerous - can execute arbitrary code",
			learning: &types.Learning{
				Key:  "avoid_eval_js",
				Text: "Avoid eval() in JavaScript - use JSON.parse() for data or explicit parsing",
			},
		},
		docWriteRule: regexRule{
			pattern:  regexp.MustCompile(`\bdocument\.write(?:ln)?\s*\(`),
			severity: types.SeverityImportant,
			kind:     types.KindDocumentWrite,
			message:  "document.write() is deprecated and can cause security issues",
		},
		// A sink assigned anything but a string or template literal
		xssPattern:     regexp.MustCompile("\\.(innerHTML|outerHTML)\\s*\\+?=\\s*[^\"'`\\s=]"),
		consolePattern: regexp.MustCompile(`\bconsole\.(?:log|debug)\s*\(`),
		varPattern:     regexp.MustCompile(`\bvar\s+\w+`),
		looseEqPattern: regexp.MustCompile(`[^=!]==[^=]`),
	}
}

// Class returns the language class
func (ja *JavaScriptAnalyzer) Class() types.LanguageClass {
	return types.ClassScript
}

// Analyze runs the script checks over source
func (ja *JavaScriptAnalyzer) Analyze(source string) *BlockResult {
	c := newCollector(ja.cfg)

	ja.evalRule.apply(source, c)

	if m := ja.xssPattern.FindStringSubmatchIndex(source); m != nil {
		sink := source[m[2]:m[3]]
		msg := fmt.Sprintf("%s assignment with variable - potential XSS vulnerability", sink)
		if c.issue(types.SeverityCritical, types.KindPotentialXSS, msg, lineAt(source, m[0])) {
			c.learning("use_textcontent", "Use textContent instead of innerHTML when possible, or sanitize HTML input")
		}
	}

	ja.docWriteRule.apply(source, c)

	if n, at := countMatches(ja.consolePattern, source); n > ja.cfg.Script.MaxConsoleLogs {
		c.issue(types.SeverityMinor, types.KindExcessiveLogging,
			fmt.Sprintf("Found %d console.log statements - remove before production", n), lineAt(source, at))
	}

	if n, at := countMatches(ja.varPattern, source); n > ja.cfg.Script.MaxVarDeclarations {
		c.issue(types.SeverityMinor, types.KindUseLetConst,
			fmt.Sprintf("Found %d uses of 'var' - prefer 'let' or 'const' for block scoping", n), lineAt(source, at))
	}

	if n, at := countMatches(ja.looseEqPattern, source); n > 0 {
		c.issue(types.SeverityMinor, types.KindStrictEquality,
			fmt.Sprintf("Found %d uses of '==' - prefer '===' for strict comparison", n), lineAt(source, at))
	}

	return c.res
}
