package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/blockscan/internal/pyast"
)

// lowerer copies a tree-sitter CST into pyast nodes. Nothing in the result
// refers back to the tree, so the tree can be closed once lowering returns.
type lowerer struct {
	src []byte
}

var statementKinds = map[string]bool{
	"future_import_statement": true,
	"import_statement":        true,
	"import_from_statement":   true,
	"print_statement":         true,
	"assert_statement":        true,
	"expression_statement":    true,
	"return_statement":        true,
	"delete_statement":        true,
	"raise_statement":         true,
	"pass_statement":          true,
	"break_statement":         true,
	"continue_statement":      true,
	"global_statement":        true,
	"nonlocal_statement":      true,
	"exec_statement":          true,
	"type_alias_statement":    true,
	"if_statement":            true,
	"for_statement":           true,
	"while_statement":         true,
	"try_statement":           true,
	"with_statement":          true,
	"function_definition":     true,
	"class_definition":        true,
	"decorated_definition":    true,
	"match_statement":         true,
}

func (l *lowerer) text(n *tree_sitter.Node) string {
	return n.Utf8Text(l.src)
}

// span converts a node range to 1-based lines. A range that ends at column 0
// of a later row stops at the end of the previous line.
func (l *lowerer) span(n *tree_sitter.Node) pyast.Span {
	start, end := n.StartPosition(), n.EndPosition()
	s := pyast.Span{
		Line:      int(start.Row) + 1,
		Column:    int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndColumn: int(end.Column),
	}
	if end.Column == 0 && end.Row > start.Row {
		s.EndLine = int(end.Row)
	}
	return s
}

// compoundSpan ends a compound statement at its last nested statement so
// trailing comments swallowed by a block do not extend it.
func (l *lowerer) compoundSpan(n *tree_sitter.Node, bodies ...[]pyast.Stmt) pyast.Span {
	s := l.span(n)
	last := 0
	lastCol := 0
	for _, body := range bodies {
		for _, st := range body {
			if p := st.Pos(); p.EndLine > last {
				last, lastCol = p.EndLine, p.EndColumn
			}
		}
	}
	if last > 0 {
		s.EndLine, s.EndColumn = last, lastCol
	}
	return s
}

// named returns the named children of n, skipping comments
func named(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*tree_sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// fieldChildren returns every child of n stored under field, in order
func fieldChildren(n *tree_sitter.Node, field string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.FieldNameForChild(uint32(i)) != field {
			continue
		}
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func hasLeadingKeyword(n *tree_sitter.Node, keyword string) bool {
	first := n.Child(0)
	return first != nil && !first.IsNamed() && first.Kind() == keyword
}

func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for _, c := range named(n) {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

func (l *lowerer) module(root *tree_sitter.Node) *pyast.Module {
	m := &pyast.Module{Span: l.span(root), Body: l.stmts(root)}
	if m.Span.Line == 0 {
		m.Span.Line = 1
	}
	return m
}

// stmts lowers the statement children of a module or block
func (l *lowerer) stmts(n *tree_sitter.Node) []pyast.Stmt {
	if n == nil {
		return nil
	}
	var out []pyast.Stmt
	for _, c := range named(n) {
		if statementKinds[c.Kind()] {
			out = append(out, l.stmt(c))
		} else if c.Kind() == "block" {
			out = append(out, l.stmts(c)...)
		}
	}
	return out
}

func (l *lowerer) stmt(n *tree_sitter.Node) pyast.Stmt {
	switch n.Kind() {
	case "function_definition":
		return l.functionDef(n, nil)
	case "class_definition":
		return l.classDef(n, nil)
	case "decorated_definition":
		return l.decorated(n)
	case "if_statement":
		return l.ifStmt(n)
	case "for_statement":
		return l.forStmt(n)
	case "while_statement":
		return l.whileStmt(n)
	case "try_statement":
		return l.tryStmt(n)
	case "with_statement":
		return l.withStmt(n)
	case "match_statement":
		return l.matchStmt(n)
	case "return_statement":
		ret := &pyast.Return{Span: l.span(n)}
		if cs := named(n); len(cs) > 0 {
			ret.Value = l.expr(cs[0])
		}
		return ret
	case "expression_statement":
		return l.expressionStmt(n)
	case "import_statement":
		imp := &pyast.Import{Span: l.span(n)}
		for _, c := range fieldChildren(n, "name") {
			imp.Names = append(imp.Names, l.importName(c))
		}
		return imp
	case "import_from_statement":
		return l.importFrom(n)
	case "future_import_statement":
		imp := &pyast.ImportFrom{Span: l.span(n), Module: "__future__"}
		for _, c := range fieldChildren(n, "name") {
			imp.Names = append(imp.Names, l.importName(c))
		}
		return imp
	case "raise_statement":
		r := &pyast.Raise{Span: l.span(n)}
		cause := n.ChildByFieldName("cause")
		for _, c := range named(n) {
			if cause != nil && c.StartByte() == cause.StartByte() {
				r.Cause = l.expr(c)
				continue
			}
			if r.Exc == nil {
				r.Exc = l.expr(c)
			}
		}
		return r
	}
	return &pyast.OtherStmt{Span: l.span(n), Kind: n.Kind(), Children: l.generic(n)}
}

func (l *lowerer) functionDef(n *tree_sitter.Node, decorators []pyast.Expr) *pyast.FunctionDef {
	fn := &pyast.FunctionDef{
		Async:      hasLeadingKeyword(n, "async"),
		Decorators: decorators,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = l.text(name)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		fn.Params = l.params(params)
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = l.expr(ret)
	}
	fn.Body = l.stmts(n.ChildByFieldName("body"))
	fn.Span = l.compoundSpan(n, fn.Body)
	return fn
}

func (l *lowerer) classDef(n *tree_sitter.Node, decorators []pyast.Expr) *pyast.ClassDef {
	cls := &pyast.ClassDef{Decorators: decorators}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = l.text(name)
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for _, c := range named(supers) {
			cls.Bases = append(cls.Bases, l.expr(c))
		}
	}
	cls.Body = l.stmts(n.ChildByFieldName("body"))
	cls.Span = l.compoundSpan(n, cls.Body)
	return cls
}

func (l *lowerer) decorated(n *tree_sitter.Node) pyast.Stmt {
	var decorators []pyast.Expr
	for _, c := range named(n) {
		if c.Kind() != "decorator" {
			continue
		}
		if inner := named(c); len(inner) > 0 {
			decorators = append(decorators, l.expr(inner[0]))
		}
	}
	def := n.ChildByFieldName("definition")
	if def == nil {
		return &pyast.OtherStmt{Span: l.span(n), Kind: n.Kind(), Children: l.generic(n)}
	}
	if def.Kind() == "class_definition" {
		return l.classDef(def, decorators)
	}
	return l.functionDef(def, decorators)
}

// ifStmt lowers an if/elif/else chain; each elif becomes a nested If
func (l *lowerer) ifStmt(n *tree_sitter.Node) *pyast.If {
	node := &pyast.If{
		Test: l.optExpr(n.ChildByFieldName("condition")),
		Body: l.stmts(n.ChildByFieldName("consequence")),
	}

	alternatives := fieldChildren(n, "alternative")
	var orelse []pyast.Stmt
	for i := len(alternatives) - 1; i >= 0; i-- {
		alt := alternatives[i]
		switch alt.Kind() {
		case "else_clause":
			orelse = l.stmts(alt.ChildByFieldName("body"))
		case "elif_clause":
			elif := &pyast.If{
				Test:   l.optExpr(alt.ChildByFieldName("condition")),
				Body:   l.stmts(alt.ChildByFieldName("consequence")),
				Orelse: orelse,
			}
			elif.Span = l.compoundSpan(alt, elif.Body, elif.Orelse)
			orelse = []pyast.Stmt{elif}
		}
	}
	node.Orelse = orelse
	node.Span = l.compoundSpan(n, node.Body, node.Orelse)
	return node
}

func (l *lowerer) elseBody(n *tree_sitter.Node) []pyast.Stmt {
	alt := n.ChildByFieldName("alternative")
	if alt == nil || alt.Kind() != "else_clause" {
		return nil
	}
	return l.stmts(alt.ChildByFieldName("body"))
}

func (l *lowerer) forStmt(n *tree_sitter.Node) *pyast.For {
	node := &pyast.For{
		Async:  hasLeadingKeyword(n, "async"),
		Target: l.optExpr(n.ChildByFieldName("left")),
		Iter:   l.optExpr(n.ChildByFieldName("right")),
		Body:   l.stmts(n.ChildByFieldName("body")),
		Orelse: l.elseBody(n),
	}
	node.Span = l.compoundSpan(n, node.Body, node.Orelse)
	return node
}

func (l *lowerer) whileStmt(n *tree_sitter.Node) *pyast.While {
	node := &pyast.While{
		Test:   l.optExpr(n.ChildByFieldName("condition")),
		Body:   l.stmts(n.ChildByFieldName("body")),
		Orelse: l.elseBody(n),
	}
	node.Span = l.compoundSpan(n, node.Body, node.Orelse)
	return node
}

func (l *lowerer) tryStmt(n *tree_sitter.Node) *pyast.Try {
	node := &pyast.Try{Body: l.stmts(n.ChildByFieldName("body"))}
	handlerBodies := [][]pyast.Stmt{node.Body}
	for _, c := range named(n) {
		switch c.Kind() {
		case "except_clause", "except_group_clause":
			h := l.exceptHandler(c)
			node.Handlers = append(node.Handlers, h)
			handlerBodies = append(handlerBodies, h.Body)
		case "else_clause":
			node.Orelse = l.stmts(c.ChildByFieldName("body"))
		case "finally_clause":
			node.Finalbody = l.stmts(childOfKind(c, "block"))
		}
	}
	handlerBodies = append(handlerBodies, node.Orelse, node.Finalbody)
	node.Span = l.compoundSpan(n, handlerBodies...)
	return node
}

// exceptHandler reads "except [type [as name]]:". The first non-block child
// is the caught type; a second one is the bound name.
func (l *lowerer) exceptHandler(n *tree_sitter.Node) *pyast.ExceptHandler {
	h := &pyast.ExceptHandler{}
	var operands []*tree_sitter.Node
	for _, c := range named(n) {
		if c.Kind() == "block" {
			h.Body = l.stmts(c)
			continue
		}
		operands = append(operands, c)
	}
	// "except E as name" usually arrives as a single as_pattern operand
	if len(operands) == 1 && operands[0].Kind() == "as_pattern" {
		pattern := operands[0]
		if alias := pattern.ChildByFieldName("alias"); alias != nil {
			h.Name = l.text(alias)
		}
		if inner := named(pattern); len(inner) > 0 {
			operands = []*tree_sitter.Node{inner[0]}
		}
	}
	if len(operands) > 0 {
		h.Type = l.expr(operands[0])
	}
	if len(operands) > 1 {
		h.Name = l.text(operands[1])
	}
	h.Span = l.compoundSpan(n, h.Body)
	return h
}

func (l *lowerer) withStmt(n *tree_sitter.Node) *pyast.With {
	node := &pyast.With{
		Async: hasLeadingKeyword(n, "async"),
		Body:  l.stmts(n.ChildByFieldName("body")),
	}
	if clause := childOfKind(n, "with_clause"); clause != nil {
		for _, item := range named(clause) {
			node.Items = append(node.Items, l.expr(item))
		}
	}
	node.Span = l.compoundSpan(n, node.Body)
	return node
}

func (l *lowerer) matchStmt(n *tree_sitter.Node) *pyast.Match {
	node := &pyast.Match{}
	if subjects := fieldChildren(n, "subject"); len(subjects) > 0 {
		node.Subject = l.expr(subjects[0])
	}
	var bodies [][]pyast.Stmt
	for _, c := range named(n.ChildByFieldName("body")) {
		if c.Kind() != "case_clause" {
			continue
		}
		mc := &pyast.MatchCase{}
		for _, part := range named(c) {
			switch part.Kind() {
			case "block":
				mc.Body = l.stmts(part)
			case "if_clause":
				if inner := named(part); len(inner) > 0 {
					mc.Guard = l.expr(inner[0])
				}
			default:
				mc.Patterns = append(mc.Patterns, l.expr(part))
			}
		}
		mc.Span = l.compoundSpan(c, mc.Body)
		node.Cases = append(node.Cases, mc)
		bodies = append(bodies, mc.Body)
	}
	node.Span = l.compoundSpan(n, bodies...)
	return node
}

func (l *lowerer) expressionStmt(n *tree_sitter.Node) pyast.Stmt {
	children := named(n)
	if len(children) == 1 {
		c := children[0]
		switch c.Kind() {
		case "assignment":
			return l.assignment(n, c)
		case "augmented_assignment":
			aug := &pyast.AugAssign{
				Span:   l.span(n),
				Target: l.optExpr(c.ChildByFieldName("left")),
				Value:  l.optExpr(c.ChildByFieldName("right")),
			}
			if op := c.ChildByFieldName("operator"); op != nil {
				aug.Op = l.text(op)
			}
			return aug
		}
		return &pyast.ExprStmt{Span: l.span(n), Value: l.expr(c)}
	}

	// "a, b" evaluated as a bare tuple
	tuple := &pyast.OtherExpr{Span: l.span(n), Kind: "tuple"}
	for _, c := range children {
		tuple.Children = append(tuple.Children, l.expr(c))
	}
	return &pyast.ExprStmt{Span: l.span(n), Value: tuple}
}

// assignment flattens "a = b = value" into one Assign with two targets
func (l *lowerer) assignment(stmt, n *tree_sitter.Node) pyast.Stmt {
	if typ := n.ChildByFieldName("type"); typ != nil {
		ann := &pyast.AnnAssign{
			Span:       l.span(stmt),
			Target:     l.optExpr(n.ChildByFieldName("left")),
			Annotation: l.expr(typ),
		}
		if right := n.ChildByFieldName("right"); right != nil {
			ann.Value = l.expr(right)
		}
		return ann
	}

	assign := &pyast.Assign{Span: l.span(stmt)}
	cur := n
	for {
		assign.Targets = append(assign.Targets, l.optExpr(cur.ChildByFieldName("left")))
		right := cur.ChildByFieldName("right")
		if right != nil && right.Kind() == "assignment" && right.ChildByFieldName("type") == nil {
			cur = right
			continue
		}
		assign.Value = l.optExpr(right)
		return assign
	}
}

func (l *lowerer) importName(n *tree_sitter.Node) string {
	if n.Kind() == "aliased_import" {
		if name := n.ChildByFieldName("name"); name != nil {
			return l.text(name)
		}
	}
	return l.text(n)
}

func (l *lowerer) importFrom(n *tree_sitter.Node) *pyast.ImportFrom {
	imp := &pyast.ImportFrom{Span: l.span(n)}
	if mod := n.ChildByFieldName("module_name"); mod != nil {
		imp.Module = l.text(mod)
	}
	if childOfKind(n, "wildcard_import") != nil {
		imp.Wildcard = true
		imp.Names = []string{"*"}
		return imp
	}
	for _, c := range fieldChildren(n, "name") {
		imp.Names = append(imp.Names, l.importName(c))
	}
	return imp
}

// params lowers a parameters or lambda_parameters node
func (l *lowerer) params(n *tree_sitter.Node) pyast.Params {
	var p pyast.Params
	keywordOnly := false
	add := func(prm pyast.Param) {
		if keywordOnly {
			p.KeywordOnly = append(p.KeywordOnly, prm)
		} else {
			p.Positional = append(p.Positional, prm)
		}
	}
	splatName := func(c *tree_sitter.Node) string {
		if inner := named(c); len(inner) > 0 {
			return l.text(inner[0])
		}
		return strings.TrimLeft(l.text(c), "*")
	}

	for _, c := range named(n) {
		switch c.Kind() {
		case "identifier", "tuple_pattern":
			add(pyast.Param{Name: l.text(c)})
		case "default_parameter":
			add(pyast.Param{
				Name:    l.fieldText(c, "name"),
				Default: l.optExpr(c.ChildByFieldName("value")),
			})
		case "typed_default_parameter":
			add(pyast.Param{
				Name:       l.fieldText(c, "name"),
				Annotation: l.optExpr(c.ChildByFieldName("type")),
				Default:    l.optExpr(c.ChildByFieldName("value")),
			})
		case "typed_parameter":
			annotation := l.optExpr(c.ChildByFieldName("type"))
			inner := named(c)
			if len(inner) == 0 {
				continue
			}
			switch inner[0].Kind() {
			case "list_splat_pattern":
				p.VarArg = &pyast.Param{Name: splatName(inner[0]), Annotation: annotation}
				keywordOnly = true
			case "dictionary_splat_pattern":
				p.KwArg = &pyast.Param{Name: splatName(inner[0]), Annotation: annotation}
			default:
				add(pyast.Param{Name: l.text(inner[0]), Annotation: annotation})
			}
		case "list_splat_pattern":
			p.VarArg = &pyast.Param{Name: splatName(c)}
			keywordOnly = true
		case "dictionary_splat_pattern":
			p.KwArg = &pyast.Param{Name: splatName(c)}
		case "keyword_separator":
			keywordOnly = true
		case "positional_separator":
			p.PositionalOnly = append(p.PositionalOnly, p.Positional...)
			p.Positional = nil
		}
	}
	return p
}

func (l *lowerer) fieldText(n *tree_sitter.Node, field string) string {
	if c := n.ChildByFieldName(field); c != nil {
		return l.text(c)
	}
	return ""
}

// optExpr lowers n, or returns nil for a missing child
func (l *lowerer) optExpr(n *tree_sitter.Node) pyast.Expr {
	if n == nil {
		return nil
	}
	return l.expr(n)
}

func (l *lowerer) expr(n *tree_sitter.Node) pyast.Expr {
	span := l.span(n)
	switch n.Kind() {
	case "identifier":
		return &pyast.Name{Span: span, ID: l.text(n)}
	case "attribute":
		return &pyast.Attribute{
			Span:  span,
			Value: l.optExpr(n.ChildByFieldName("object")),
			Attr:  l.fieldText(n, "attribute"),
		}
	case "call":
		return l.call(n)
	case "string":
		return l.str(n)
	case "concatenated_string":
		return l.concatenated(n)
	case "integer":
		return &pyast.Constant{Span: span, Kind: pyast.ConstInt, Value: l.text(n)}
	case "float":
		return &pyast.Constant{Span: span, Kind: pyast.ConstFloat, Value: l.text(n)}
	case "true":
		return &pyast.Constant{Span: span, Kind: pyast.ConstTrue, Value: "True"}
	case "false":
		return &pyast.Constant{Span: span, Kind: pyast.ConstFalse, Value: "False"}
	case "none":
		return &pyast.Constant{Span: span, Kind: pyast.ConstNone, Value: "None"}
	case "ellipsis":
		return &pyast.Constant{Span: span, Kind: pyast.ConstEllipsis, Value: "..."}
	case "boolean_operator":
		return l.boolOp(n)
	case "comparison_operator":
		return l.compare(n)
	case "conditional_expression":
		parts := named(n)
		if len(parts) == 3 {
			return &pyast.IfExp{
				Span:   span,
				Body:   l.expr(parts[0]),
				Test:   l.expr(parts[1]),
				Orelse: l.expr(parts[2]),
			}
		}
	case "lambda":
		lam := &pyast.Lambda{Span: span, Body: l.optExpr(n.ChildByFieldName("body"))}
		if params := n.ChildByFieldName("parameters"); params != nil {
			lam.Params = l.params(params)
		}
		return lam
	case "await":
		if inner := named(n); len(inner) > 0 {
			return &pyast.Await{Span: span, Value: l.expr(inner[0])}
		}
	case "parenthesized_expression":
		if inner := named(n); len(inner) == 1 {
			return l.expr(inner[0])
		}
	case "type":
		// annotation wrapper around a plain expression
		if inner := named(n); len(inner) == 1 {
			return l.expr(inner[0])
		}
	}
	return &pyast.OtherExpr{Span: span, Kind: n.Kind(), Children: l.generic(n)}
}

// generic lowers the named children of a node without a dedicated variant
func (l *lowerer) generic(n *tree_sitter.Node) []pyast.Node {
	var out []pyast.Node
	for _, c := range named(n) {
		switch {
		case statementKinds[c.Kind()]:
			out = append(out, l.stmt(c))
		case c.Kind() == "block":
			for _, s := range l.stmts(c) {
				out = append(out, s)
			}
		default:
			out = append(out, l.expr(c))
		}
	}
	return out
}

func (l *lowerer) call(n *tree_sitter.Node) *pyast.Call {
	call := &pyast.Call{Span: l.span(n), Func: l.optExpr(n.ChildByFieldName("function"))}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return call
	}
	if args.Kind() == "generator_expression" {
		call.Args = append(call.Args, l.expr(args))
		return call
	}
	for _, c := range named(args) {
		switch c.Kind() {
		case "keyword_argument":
			call.Keywords = append(call.Keywords, &pyast.Keyword{
				Span:  l.span(c),
				Arg:   l.fieldText(c, "name"),
				Value: l.optExpr(c.ChildByFieldName("value")),
			})
		case "dictionary_splat":
			kw := &pyast.Keyword{Span: l.span(c)}
			if inner := named(c); len(inner) > 0 {
				kw.Value = l.expr(inner[0])
			}
			call.Keywords = append(call.Keywords, kw)
		default:
			call.Args = append(call.Args, l.expr(c))
		}
	}
	return call
}

// boolOp flattens left-associated runs of the same operator
func (l *lowerer) boolOp(n *tree_sitter.Node) *pyast.BoolOp {
	op := l.fieldText(n, "operator")
	node := &pyast.BoolOp{Span: l.span(n), Op: op}
	left := n.ChildByFieldName("left")
	if left != nil && left.Kind() == "boolean_operator" && l.fieldText(left, "operator") == op {
		node.Values = append(node.Values, l.boolOp(left).Values...)
	} else if left != nil {
		node.Values = append(node.Values, l.expr(left))
	}
	if right := n.ChildByFieldName("right"); right != nil {
		node.Values = append(node.Values, l.expr(right))
	}
	return node
}

func (l *lowerer) compare(n *tree_sitter.Node) *pyast.Compare {
	node := &pyast.Compare{Span: l.span(n)}
	first := true
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		if !c.IsNamed() {
			node.Ops = append(node.Ops, c.Kind())
			continue
		}
		if first {
			node.Left = l.expr(c)
			first = false
			continue
		}
		node.Comparators = append(node.Comparators, l.expr(c))
	}
	return node
}

// stringPrefix returns the lowercase prefix letters of a string literal
func (l *lowerer) stringPrefix(n *tree_sitter.Node) string {
	start := childOfAnyKind(n, "string_start")
	text := ""
	if start != nil {
		text = l.text(start)
	} else {
		text = l.text(n)
	}
	end := strings.IndexAny(text, `'"`)
	if end < 0 {
		return ""
	}
	return strings.ToLower(text[:end])
}

func childOfAnyKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// stringParts returns the raw body of a literal and its interpolations
func (l *lowerer) stringParts(n *tree_sitter.Node) (string, []*tree_sitter.Node) {
	var body strings.Builder
	var interpolations []*tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "string_content", "escape_sequence":
			body.WriteString(l.text(c))
		case "interpolation":
			interpolations = append(interpolations, c)
		}
	}
	return body.String(), interpolations
}

func (l *lowerer) str(n *tree_sitter.Node) pyast.Expr {
	prefix := l.stringPrefix(n)
	raw, interpolations := l.stringParts(n)
	span := l.span(n)

	if strings.Contains(prefix, "f") {
		js := &pyast.JoinedStr{Span: span}
		for _, in := range interpolations {
			if e := in.ChildByFieldName("expression"); e != nil {
				js.Values = append(js.Values, l.expr(e))
			}
		}
		return js
	}

	value := raw
	if !strings.Contains(prefix, "r") {
		value = decodeEscapes(raw)
	}
	kind := pyast.ConstStr
	if strings.Contains(prefix, "b") {
		kind = pyast.ConstBytes
	}
	return &pyast.Constant{Span: span, Kind: kind, Value: value}
}

// concatenated lowers implicit concatenation "a" "b". Any f-string part makes
// the whole literal a JoinedStr.
func (l *lowerer) concatenated(n *tree_sitter.Node) pyast.Expr {
	span := l.span(n)
	var parts []pyast.Expr
	joined := false
	for _, c := range named(n) {
		e := l.expr(c)
		if _, ok := e.(*pyast.JoinedStr); ok {
			joined = true
		}
		parts = append(parts, e)
	}

	if joined {
		js := &pyast.JoinedStr{Span: span}
		for _, p := range parts {
			if inner, ok := p.(*pyast.JoinedStr); ok {
				js.Values = append(js.Values, inner.Values...)
			}
		}
		return js
	}

	var value strings.Builder
	kind := pyast.ConstStr
	for i, p := range parts {
		c, ok := p.(*pyast.Constant)
		if !ok {
			continue
		}
		if i == 0 {
			kind = c.Kind
		}
		value.WriteString(c.Value)
	}
	return &pyast.Constant{Span: span, Kind: kind, Value: value.String()}
}
