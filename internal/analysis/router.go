package analysis

import (
	"maps"
	"strings"

	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/types"
)

// defaultAliases maps fence tags to language classes. Tags not listed are
// counted as "other" and not analyzed.
var defaultAliases = map[string]types.LanguageClass{
	"python":  types.ClassPython,
	"py":      types.ClassPython,
	"python3": types.ClassPython,

	"javascript": types.ClassScript,
	"js":         types.ClassScript,
	"typescript": types.ClassScript,
	"ts":         types.ClassScript,
	"jsx":        types.ClassScript,
	"tsx":        types.ClassScript,

	"bash":  types.ClassShell,
	"sh":    types.ClassShell,
	"shell": types.ClassShell,
	"zsh":   types.ClassShell,

	"sql":        types.ClassQuery,
	"mysql":      types.ClassQuery,
	"postgresql": types.ClassQuery,
	"postgres":   types.ClassQuery,
}

// Router normalizes a block's language tag and dispatches it to the
// analyzer for its class
type Router struct {
	aliases   map[string]types.LanguageClass
	analyzers map[types.LanguageClass]BlockAnalyzer
}

// NewRouter builds a router with the built-in aliases, extended by any
// extra aliases from cfg
func NewRouter(cfg *config.Config) *Router {
	aliases := maps.Clone(defaultAliases)
	maps.Copy(aliases, cfg.ExtraAliases())

	r := &Router{
		aliases:   aliases,
		analyzers: make(map[types.LanguageClass]BlockAnalyzer),
	}
	for _, a := range []BlockAnalyzer{
		NewPythonAnalyzer(cfg),
		NewJavaScriptAnalyzer(cfg),
		NewShellAnalyzer(cfg),
		NewSQLAnalyzer(cfg),
	} {
		r.analyzers[a.Class()] = a
	}
	return r
}

// Classify returns the language class for a fence tag
func (r *Router) Classify(tag string) types.LanguageClass {
	return r.aliases[strings.ToLower(strings.TrimSpace(tag))]
}

// Route counts the block in the metrics and runs its analyzer, if any
func (r *Router) Route(block types.CodeBlock) *BlockResult {
	class := r.Classify(block.Language)

	res := &BlockResult{}
	if a, ok := r.analyzers[class]; ok {
		res = a.Analyze(block.Source)
	}
	res.Metrics.CountBlock(class, LineCount(block.Source))
	return res
}

// LineCount returns the number of lines a block contributes to total_lines.
// An empty block still counts as one line.
func LineCount(source string) int {
	return strings.Count(source, "\n") + 1
}
