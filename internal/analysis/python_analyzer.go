package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/debug"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/parser"
	"github.com/standardbeagle/blockscan/internal/pyast"
	"github.com/standardbeagle/blockscan/internal/types"
)

// syntaxSnippetLength bounds the snippet attached to a syntax_error
const syntaxSnippetLength = 100

// PythonAnalyzer implements structural analysis for Python blocks.
// Uses tree-sitter for parsing, lowered into a pyast tree.
type PythonAnalyzer struct {
	parser *parser.PythonParser
	cfg    *config.Config
}

// NewPythonAnalyzer creates a new Python analyzer
func NewPythonAnalyzer(cfg *config.Config) *PythonAnalyzer {
	return &PythonAnalyzer{
		parser: parser.SharedPythonParser(),
		cfg:    cfg,
	}
}

// Class returns the language class
func (pa *PythonAnalyzer) Class() types.LanguageClass {
	return types.ClassPython
}

// Analyze parses the block and runs the per-function, security and module
// checks. A block that does not parse yields a single syntax_error.
func (pa *PythonAnalyzer) Analyze(source string) *BlockResult {
	c := newCollector(pa.cfg)

	mod, err := pa.parser.Parse(source)
	if err != nil {
		pa.reportParseFailure(source, err, c)
		return c.res
	}

	functions := pyast.Walk[*pyast.FunctionDef](mod)
	classes := pyast.Walk[*pyast.ClassDef](mod)
	c.res.Metrics.TotalFunctions += len(functions)
	c.res.Metrics.TotalClasses += len(classes)

	lines := strings.Split(source, "\n")
	for _, fn := range functions {
		pa.checkFunction(fn, lines, c)
	}
	pa.checkSecurity(mod, lines, c)
	pa.checkModule(mod, c)

	return c.res
}

func (pa *PythonAnalyzer) reportParseFailure(source string, err error, c *collector) {
	snippet := types.Truncate(source, syntaxSnippetLength)

	var perr *bserrors.ParseError
	if errors.As(err, &perr) {
		msg := fmt.Sprintf("Python syntax error: %s at line %d", perr.Message(), perr.Line)
		c.issue(types.SeverityImportant, types.KindSyntaxError, msg, snippet)
		return
	}

	debug.LogAnalysis("python parser failed: %v\n", err)
	c.issue(types.SeverityImportant, types.KindAnalysisError, fmt.Sprintf("Python analysis failed: %v", err), snippet)
}

// checkFunction applies the per-function quality checks to one def
func (pa *PythonAnalyzer) checkFunction(fn *pyast.FunctionDef, lines []string, c *collector) {
	limits := pa.cfg.Analysis
	span := fn.EndLine - fn.Line
	defLine := strings.TrimSpace(sourceLines(lines, pyast.Span{Line: fn.Line, EndLine: fn.Line}))

	if doc, ok := fn.Docstring(); (!ok || strings.TrimSpace(doc) == "") && span > limits.DocstringMinLines {
		c.issue(types.SeverityMinor, types.KindMissingDocs,
			fmt.Sprintf("Function '%s' lacks a docstring", fn.Name), defLine)
	}

	pyast.Inspect(fn, func(n pyast.Node) bool {
		if h, ok := n.(*pyast.ExceptHandler); ok && h.Bare() {
			c.issue(types.SeverityImportant, types.KindBareExcept,
				fmt.Sprintf("Bare except clause in function '%s' - catches all exceptions including KeyboardInterrupt", fn.Name),
				strings.TrimSpace(sourceLines(lines, pyast.Span{Line: h.Line, EndLine: h.Line})))
		}
		return true
	})

	if complexity := Complexity(fn); complexity > limits.MaxComplexity {
		msg := fmt.Sprintf("Function '%s' has cyclomatic complexity of %d (>%d is high)", fn.Name, complexity, limits.MaxComplexity)
		if c.issue(types.SeverityImportant, types.KindHighComplexity, msg, defLine) {
			c.res.Metrics.ComplexityScore += complexity
		}
	}

	if args := fn.Params.Count(); args > limits.MaxArguments {
		c.issue(types.SeverityMinor, types.KindTooManyArgs,
			fmt.Sprintf("Function '%s' has %d arguments (>%d may indicate need for refactoring)", fn.Name, args, limits.MaxArguments),
			defLine)
	}

	if fn.Returns == nil && fn.Name != "__init__" && span > limits.TypeHintMinLines {
		c.issue(types.SeverityMinor, types.KindMissingTypeHint,
			fmt.Sprintf("Function '%s' lacks return type hint", fn.Name), defLine)
	}
}

// checkModule applies the module-level checks: wildcard imports anywhere
// in the tree and a missing entry-point guard around top-level calls
func (pa *PythonAnalyzer) checkModule(mod *pyast.Module, c *collector) {
	for _, imp := range pyast.Walk[*pyast.ImportFrom](mod) {
		if !imp.Wildcard {
			continue
		}
		module := strings.TrimLeft(imp.Module, ".")
		if module == "" {
			module = "None"
		}
		c.issue(types.SeverityMinor, types.KindWildcardImport,
			fmt.Sprintf("Wildcard import from %s - imports unknown names into namespace", module),
			"from "+imp.Module+" import *")
	}

	hasMainGuard, hasTopLevelCall := false, false
	for _, stmt := range mod.Body {
		switch s := stmt.(type) {
		case *pyast.If:
			if isMainGuard(s) {
				hasMainGuard = true
			}
		case *pyast.ExprStmt:
			if _, ok := s.Value.(*pyast.Call); ok {
				hasTopLevelCall = true
			}
		}
	}
	if hasTopLevelCall && !hasMainGuard {
		c.issue(types.SeverityMinor, types.KindMissingMain,
			"Module has top-level code without if __name__ == '__main__' guard", "")
	}
}

// isMainGuard matches `if __name__ == "__main__":`
func isMainGuard(s *pyast.If) bool {
	cmp, ok := s.Test.(*pyast.Compare)
	if !ok || len(cmp.Ops) != 1 || cmp.Ops[0] != "==" || len(cmp.Comparators) == 0 {
		return false
	}
	left, ok := cmp.Left.(*pyast.Name)
	if !ok || left.ID != "__name__" {
		return false
	}
	right, ok := cmp.Comparators[0].(*pyast.Constant)
	return ok && right.Kind == pyast.ConstStr && right.Value == "__main__"
}
