package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// syntaxProblem is a construct the grammar accepted but Python 3 rejects
type syntaxProblem struct {
	row    uint
	column uint
	token  string
	reason error
}

func (p syntaxProblem) before(o syntaxProblem) bool {
	if p.row != o.row {
		return p.row < o.row
	}
	return p.column < o.column
}

// validStringPrefixes lists the lowercased prefixes Python 3 accepts
var validStringPrefixes = map[string]bool{
	"": true, "r": true, "u": true, "b": true, "f": true, "t": true,
	"br": true, "rb": true, "fr": true, "rf": true, "tr": true, "rt": true,
}

// suiteOwners names the header reported for an empty block
var suiteOwners = map[string]string{
	"function_definition": "function definition",
	"class_definition":    "class definition",
	"if_statement":        "'if' statement",
	"elif_clause":         "'elif' statement",
	"else_clause":         "'else' statement",
	"for_statement":       "'for' statement",
	"while_statement":     "'while' statement",
	"try_statement":       "'try' statement",
	"except_clause":       "'except' statement",
	"except_group_clause": "'except*' statement",
	"finally_clause":      "'finally' statement",
	"with_statement":      "'with' statement",
	"match_statement":     "'match' statement",
	"case_clause":         "'case' statement",
}

// python3Checker walks a tree that has no ERROR or MISSING nodes and
// collects the constructs tree-sitter's grammar tolerates but CPython does
// not: empty suites, misaligned statements, Python 2 syntax and argument
// ordering mistakes.
type python3Checker struct {
	src      []byte
	problems []syntaxProblem
	// byte ranges of strings and comments, in document order
	opaque [][2]uint
}

func (c *python3Checker) report(n *tree_sitter.Node, reason string) {
	pos := n.StartPosition()
	c.problems = append(c.problems, syntaxProblem{
		row:    pos.Row,
		column: pos.Column,
		token:  firstLine(n.Utf8Text(c.src)),
		reason: errors.New(reason),
	})
}

func (c *python3Checker) reportAt(row, column uint, token, reason string) {
	c.problems = append(c.problems, syntaxProblem{row: row, column: column, token: token, reason: errors.New(reason)})
}

// earliest returns the first problem in source order
func (c *python3Checker) earliest() (syntaxProblem, bool) {
	if len(c.problems) == 0 {
		return syntaxProblem{}, false
	}
	first := c.problems[0]
	for _, p := range c.problems[1:] {
		if p.before(first) {
			first = p
		}
	}
	return first, true
}

func (c *python3Checker) check(root *tree_sitter.Node) {
	c.visit(root)
	c.scanTokens()
}

func (c *python3Checker) visit(n *tree_sitter.Node) {
	switch n.Kind() {
	case "module":
		c.checkAlignment(n, 0)
	case "block":
		c.checkBlock(n)
	case "except_clause", "except_group_clause":
		c.checkExceptTypes(n)
	case "raise_statement":
		if childOfKind(n, "expression_list") != nil {
			c.report(n, "invalid syntax")
		}
	case "integer":
		c.checkInteger(n)
	case "string":
		c.opaque = append(c.opaque, [2]uint{n.StartByte(), n.EndByte()})
		c.checkStringPrefix(n)
	case "comment":
		c.opaque = append(c.opaque, [2]uint{n.StartByte(), n.EndByte()})
		return
	case "parameters", "lambda_parameters":
		c.checkDefaults(n)
	case "for_in_clause":
		c.checkForIn(n)
	case "argument_list":
		c.checkGeneratorArgument(n)
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			c.visit(child)
		}
	}
}

// checkBlock rejects suites without statements and verifies the alignment
// of the statements a suite does hold
func (c *python3Checker) checkBlock(n *tree_sitter.Node) {
	if len(named(n)) > 0 {
		c.checkAlignment(n, -1)
		return
	}

	owner := n.Parent()
	if owner == nil {
		return
	}
	header := suiteOwners[owner.Kind()]
	if header == "" {
		header = "statement"
	}
	headerRow := owner.StartPosition().Row
	c.reportAt(headerRow+1, 0, "",
		fmt.Sprintf("expected an indented block after %s on line %d", header, headerRow+1))
}

// checkAlignment requires every statement that begins a line to start at
// the same column. want is the module's column 0, or -1 to take the column
// of a block's first statement. Blocks written inline after the colon are
// left alone.
func (c *python3Checker) checkAlignment(container *tree_sitter.Node, want int) {
	for i, stmt := range named(container) {
		if !c.beginsLine(stmt) {
			if i == 0 && want < 0 {
				return
			}
			continue
		}
		col := int(stmt.StartPosition().Column)
		if want < 0 {
			want = col
			continue
		}
		if col == want {
			continue
		}
		if col < c.previousIndent(stmt.StartByte()) {
			c.report(stmt, "unindent does not match any outer indentation level")
		} else {
			c.report(stmt, "unexpected indent")
		}
		return
	}
}

// beginsLine reports whether only whitespace precedes n on its line
func (c *python3Checker) beginsLine(n *tree_sitter.Node) bool {
	start := int(n.StartByte())
	lineStart := bytes.LastIndexByte(c.src[:start], '\n') + 1
	return len(bytes.TrimLeft(c.src[lineStart:start], " \t\f")) == 0
}

// previousIndent is the indentation of the closest code line above offset
func (c *python3Checker) previousIndent(offset uint) int {
	end := bytes.LastIndexByte(c.src[:offset], '\n')
	for end > 0 {
		start := bytes.LastIndexByte(c.src[:end], '\n') + 1
		line := c.src[start:end]
		body := bytes.TrimLeft(line, " \t\f")
		if len(bytes.TrimSpace(body)) > 0 && body[0] != '#' {
			return len(line) - len(body)
		}
		end = start - 1
	}
	return 0
}

// checkExceptTypes rejects "except A, B:" and the Python 2 "except A, e:"
func (c *python3Checker) checkExceptTypes(n *tree_sitter.Node) {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case ",", "expression_list":
			c.report(n, "multiple exception types must be parenthesized")
			return
		case "as", ":":
			return
		}
	}
}

// checkInteger rejects leading-zero decimals such as 0777 and the Python 2
// long suffix
func (c *python3Checker) checkInteger(n *tree_sitter.Node) {
	text := n.Utf8Text(c.src)
	if text == "" {
		return
	}
	switch text[len(text)-1] {
	case 'j', 'J':
		return
	case 'l', 'L':
		c.report(n, "invalid decimal literal")
		return
	}
	if len(text) < 2 || text[0] != '0' {
		return
	}
	if next := text[1]; next != '_' && (next < '0' || next > '9') {
		return
	}
	if strings.Trim(text, "0_") != "" {
		c.report(n, "leading zeros in decimal integer literals are not permitted; use an 0o prefix for octal integers")
	}
}

// checkStringPrefix rejects prefixes such as ur that Python 3 dropped
func (c *python3Checker) checkStringPrefix(n *tree_sitter.Node) {
	text := n.Utf8Text(c.src)
	quote := strings.IndexAny(text, `'"`)
	if quote < 0 {
		return
	}
	if !validStringPrefixes[strings.ToLower(text[:quote])] {
		c.report(n, "invalid syntax")
	}
}

// checkDefaults rejects a parameter without a default after one with a
// default, up to the first star parameter
func (c *python3Checker) checkDefaults(n *tree_sitter.Node) {
	seenDefault := false
	for _, p := range named(n) {
		switch p.Kind() {
		case "default_parameter", "typed_default_parameter":
			seenDefault = true
		case "typed_parameter":
			if inner := p.NamedChild(0); inner != nil && strings.HasSuffix(inner.Kind(), "splat_pattern") {
				return
			}
			fallthrough
		case "identifier":
			if seenDefault {
				c.report(p, "parameter without a default follows parameter with a default")
				return
			}
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			return
		}
	}
}

// checkForIn rejects an unparenthesized tuple after "in" in a comprehension,
// which is also how tree-sitter reads f(x for x in y, 1)
func (c *python3Checker) checkForIn(n *tree_sitter.Node) {
	afterIn := false
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "in":
			afterIn = true
		case ",":
			if !afterIn {
				continue
			}
			if gen := n.Parent(); gen != nil && gen.Kind() == "generator_expression" {
				if call := gen.Parent(); call != nil && call.Kind() == "call" {
					c.report(gen, "Generator expression must be parenthesized")
					return
				}
			}
			c.report(child, "invalid syntax")
			return
		}
	}
}

// checkGeneratorArgument rejects a bare generator expression passed next to
// other arguments
func (c *python3Checker) checkGeneratorArgument(n *tree_sitter.Node) {
	args := named(n)
	if len(args) < 2 {
		return
	}
	for _, arg := range args {
		if arg.Kind() == "generator_expression" && !strings.HasPrefix(arg.Utf8Text(c.src), "(") {
			c.report(arg, "Generator expression must be parenthesized")
			return
		}
	}
}

// scanTokens finds backtick repr and the <> operator outside strings and
// comments. Neither exists in Python 3.
func (c *python3Checker) scanTokens() {
	var row, lineStart uint
	var skipUntil uint
	next := 0
	for i := uint(0); i < uint(len(c.src)); i++ {
		for next < len(c.opaque) && c.opaque[next][0] <= i {
			skipUntil = max(skipUntil, c.opaque[next][1])
			next++
		}
		b := c.src[i]
		if b == '\n' {
			row++
			lineStart = i + 1
			continue
		}
		if i < skipUntil {
			continue
		}
		switch {
		case b == '`':
			c.reportAt(row, i-lineStart, "`", "invalid syntax")
			return
		case b == '<' && i+1 < uint(len(c.src)) && c.src[i+1] == '>':
			c.reportAt(row, i-lineStart, "<>", "invalid syntax")
			return
		}
	}
}
