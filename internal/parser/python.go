// Package parser turns Python fragments into pyast trees using tree-sitter.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/blockscan/internal/debug"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/pyast"
	"github.com/standardbeagle/blockscan/internal/types"
)

// PythonParser parses Python source into a pyast.Module.
// tree-sitter parsers are not safe for concurrent use, so each call borrows
// one from a pool; PythonParser itself may be shared across goroutines.
type PythonParser struct {
	language *tree_sitter.Language
	pool     sync.Pool
}

// NewPythonParser creates a parser bound to the Python grammar
func NewPythonParser() *PythonParser {
	p := &PythonParser{
		language: tree_sitter.NewLanguage(tree_sitter_python.Language()),
	}
	p.pool.New = func() any {
		parser := tree_sitter.NewParser()
		if err := parser.SetLanguage(p.language); err != nil {
			debug.LogParse("failed to set python language: %v\n", err)
			parser.Close()
			return nil
		}
		return parser
	}
	return p
}

var (
	sharedPython     *PythonParser
	sharedPythonOnce sync.Once
)

// SharedPythonParser returns the process-wide parser instance
func SharedPythonParser() *PythonParser {
	sharedPythonOnce.Do(func() {
		sharedPython = NewPythonParser()
	})
	return sharedPython
}

// Parse parses source. A fragment that is not valid Python 3 yields a
// *errors.ParseError carrying the 1-based line of the first problem.
func (p *PythonParser) Parse(source string) (*pyast.Module, error) {
	parser, _ := p.pool.Get().(*tree_sitter.Parser)
	if parser == nil {
		return nil, fmt.Errorf("python grammar unavailable")
	}
	defer p.pool.Put(parser)

	src := []byte(source)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if perr := findSyntaxError(root, src); perr != nil {
		debug.LogParse("syntax error at line %d: %s\n", perr.Line, perr.Message())
		return nil, perr
	}

	l := &lowerer{src: src}
	return l.module(root), nil
}

// ParsePython parses source with the shared parser
func ParsePython(source string) (*pyast.Module, error) {
	return SharedPythonParser().Parse(source)
}

// errSyntax is the generic reason reported for an unparseable region
var errSyntax = errors.New("invalid syntax")

// findSyntaxError returns the earliest problem in the tree, or nil.
// Python 2 print and exec statements are reported as errors since the
// grammar accepts them but Python 3 does not. A tree without ERROR or
// MISSING nodes still goes through the Python 3 checks.
func findSyntaxError(root *tree_sitter.Node, src []byte) *bserrors.ParseError {
	var found *tree_sitter.Node
	var reason error

	var visit func(n *tree_sitter.Node) bool
	visit = func(n *tree_sitter.Node) bool {
		switch {
		case n.IsMissing():
			found = n
			reason = fmt.Errorf("expected '%s'", n.Kind())
			return true
		case n.IsError():
			found = n
			reason = errSyntax
			return true
		case n.Kind() == "print_statement":
			found = n
			reason = errors.New("Missing parentheses in call to 'print'. Did you mean print(...)?")
			return true
		case n.Kind() == "exec_statement":
			found = n
			reason = errors.New("Missing parentheses in call to 'exec'")
			return true
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			if visit(child) {
				return true
			}
		}
		return false
	}

	if visit(root) {
		pos := found.StartPosition()
		token := ""
		if found.IsError() {
			token = types.Truncate(firstLine(found.Utf8Text(src)), 20)
		}
		return bserrors.NewParseError("python", int(pos.Row)+1, int(pos.Column), token, reason)
	}

	checker := &python3Checker{src: src}
	checker.check(root)
	problem, ok := checker.earliest()
	if !ok {
		return nil
	}
	return bserrors.NewParseError("python", int(problem.row)+1, int(problem.column),
		types.Truncate(problem.token, 20), problem.reason)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
