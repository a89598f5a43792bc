package analysis

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/types"
)

// ShellAnalyzer implements pattern-based checks for shell blocks
type ShellAnalyzer struct {
	cfg *config.Config

	rmPattern    *regexp.Regexp
	rmGuard      *regexp.Regexp
	curlPipeRule regexRule
}

// NewShellAnalyzer creates a new shell analyzer
func NewShellAnalyzer(cfg *config.Config) *ShellAnalyzer {
	return &ShellAnalyzer{
		cfg: cfg,
		// rm, its flag words, then a target starting with an expansion
		rmPattern: regexp.MustCompile(`\brm\s+((?:-{1,2}[\w-]*\s+)+)("?\$\S*)`),
		rmGuard:   regexp.MustCompile(`^"?\$\{\w+:\?`),
		curlPipeRule: regexRule{
			pattern:  regexp.MustCompile(`\b(?:curl|wget)\b[^\n]*\|\s*(?:sudo\s+(?:-\S+\s+)*)?(?:ba|z)?sh\b`),
			severity: types.SeverityCritical,
			kind:     types.KindCurlPipeBash,
			message:  "curl | bash is dangerous - downloads and executes untrusted code",
		},
	}
}

// Class returns the language class
func (sa *ShellAnalyzer) Class() types.LanguageClass {
	return types.ClassShell
}

// Analyze runs the shell checks over source
func (sa *ShellAnalyzer) Analyze(source string) *BlockResult {
	c := newCollector(sa.cfg)

	if at := firstUnquotedExpansion(source); at >= 0 {
		if c.issue(types.SeverityImportant, types.KindUnquotedVariable,
			"Unquoted shell variables can cause word splitting issues", lineAt(source, at)) {
			c.learning("quote_shell_vars", `Always quote shell variables: use "$var" instead of $var`)
		}
	}

	if at := sa.findDangerousRm(source); at >= 0 {
		if c.issue(types.SeverityCritical, types.KindDangerousRm,
			"rm -rf with variable path is dangerous - variable could be empty or wrong", lineAt(source, at)) {
			c.learning("safe_rm_rf", `Use 'rm -rf "${var:?}"' to fail if variable is empty, or use explicit paths`)
		}
	}

	sa.curlPipeRule.apply(source, c)

	return c.res
}

// findDangerousRm returns the offset of the first recursive rm whose target
// is an unguarded expansion, or -1. "${var:?}" aborts on an empty variable
// and is accepted.
func (sa *ShellAnalyzer) findDangerousRm(source string) int {
	for _, m := range sa.rmPattern.FindAllStringSubmatchIndex(source, -1) {
		flags, target := source[m[2]:m[3]], source[m[4]:m[5]]
		if !recursiveFlags(flags) || sa.rmGuard.MatchString(target) {
			continue
		}
		return m[0]
	}
	return -1
}

func recursiveFlags(flags string) bool {
	for _, f := range strings.Fields(flags) {
		if strings.HasPrefix(f, "--") {
			if f == "--recursive" {
				return true
			}
			continue
		}
		if strings.ContainsAny(f[1:], "rR") {
			return true
		}
	}
	return false
}

// firstUnquotedExpansion returns the offset of the first $name or ${...}
// expansion outside double quotes, or -1. Single-quoted text, escaped
// dollars and comments never expand.
func firstUnquotedExpansion(src string) int {
	inSingle, inDouble := false, false
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case inSingle:
			if ch == '\'' {
				inSingle = false
			}
		case ch == '\\':
			i++
		case ch == '"':
			inDouble = !inDouble
		case inDouble:
		case ch == '\'':
			inSingle = true
		case ch == '#' && (i == 0 || isShellSpace(src[i-1])):
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case ch == '$' && i+1 < len(src) && isExpansionStart(src[i+1]):
			return i
		}
	}
	return -1
}

func isShellSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == ';'
}

func isExpansionStart(b byte) bool {
	return b == '_' || b == '{' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
