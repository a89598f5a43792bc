package pyast

// Inspect traverses the tree rooted at n in depth-first pre-order, visiting
// children in source order. If f returns false the children of that node are
// skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) {
		return
	}
	if !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Walk collects every node of type T under n, including n itself, in pre-order
func Walk[T Node](n Node) []T {
	var out []T
	Inspect(n, func(c Node) bool {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// Children returns the direct children of n in source order. Nil optional
// fields are omitted.
func Children(n Node) []Node {
	var b childList
	switch n := n.(type) {
	case *Module:
		b.stmts(n.Body)
	case *FunctionDef:
		b.exprs(n.Decorators)
		b.params(n.Params)
		b.expr(n.Returns)
		b.stmts(n.Body)
	case *ClassDef:
		b.exprs(n.Decorators)
		b.exprs(n.Bases)
		b.stmts(n.Body)
	case *If:
		b.expr(n.Test)
		b.stmts(n.Body)
		b.stmts(n.Orelse)
	case *For:
		b.expr(n.Target)
		b.expr(n.Iter)
		b.stmts(n.Body)
		b.stmts(n.Orelse)
	case *While:
		b.expr(n.Test)
		b.stmts(n.Body)
		b.stmts(n.Orelse)
	case *Try:
		b.stmts(n.Body)
		for _, h := range n.Handlers {
			b.add(h)
		}
		b.stmts(n.Orelse)
		b.stmts(n.Finalbody)
	case *ExceptHandler:
		b.expr(n.Type)
		b.stmts(n.Body)
	case *With:
		b.exprs(n.Items)
		b.stmts(n.Body)
	case *Match:
		b.expr(n.Subject)
		for _, c := range n.Cases {
			b.add(c)
		}
	case *MatchCase:
		b.exprs(n.Patterns)
		b.expr(n.Guard)
		b.stmts(n.Body)
	case *Return:
		b.expr(n.Value)
	case *Assign:
		b.exprs(n.Targets)
		b.expr(n.Value)
	case *AnnAssign:
		b.expr(n.Target)
		b.expr(n.Annotation)
		b.expr(n.Value)
	case *AugAssign:
		b.expr(n.Target)
		b.expr(n.Value)
	case *ExprStmt:
		b.expr(n.Value)
	case *Raise:
		b.expr(n.Exc)
		b.expr(n.Cause)
	case *OtherStmt:
		b.nodes(n.Children)
	case *Attribute:
		b.expr(n.Value)
	case *Call:
		b.expr(n.Func)
		b.exprs(n.Args)
		for _, k := range n.Keywords {
			b.add(k)
		}
	case *Keyword:
		b.expr(n.Value)
	case *JoinedStr:
		b.exprs(n.Values)
	case *BoolOp:
		b.exprs(n.Values)
	case *Compare:
		b.expr(n.Left)
		b.exprs(n.Comparators)
	case *IfExp:
		b.expr(n.Body)
		b.expr(n.Test)
		b.expr(n.Orelse)
	case *Lambda:
		b.params(n.Params)
		b.expr(n.Body)
	case *Await:
		b.expr(n.Value)
	case *OtherExpr:
		b.nodes(n.Children)
	}
	return b.list
}

type childList struct {
	list []Node
}

func (b *childList) add(n Node) {
	if n != nil && !isNilNode(n) {
		b.list = append(b.list, n)
	}
}

func (b *childList) expr(e Expr) {
	if e != nil {
		b.add(e)
	}
}

func (b *childList) exprs(es []Expr) {
	for _, e := range es {
		b.expr(e)
	}
}

func (b *childList) stmts(ss []Stmt) {
	for _, s := range ss {
		if s != nil {
			b.add(s)
		}
	}
}

func (b *childList) nodes(ns []Node) {
	for _, n := range ns {
		b.add(n)
	}
}

func (b *childList) params(p Params) {
	each := func(ps []Param) {
		for _, prm := range ps {
			b.expr(prm.Annotation)
			b.expr(prm.Default)
		}
	}
	each(p.PositionalOnly)
	each(p.Positional)
	if p.VarArg != nil {
		b.expr(p.VarArg.Annotation)
	}
	each(p.KeywordOnly)
	if p.KwArg != nil {
		b.expr(p.KwArg.Annotation)
	}
}

// isNilNode catches typed nil pointers stored in an interface
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Module:
		return v == nil
	case *FunctionDef:
		return v == nil
	case *ClassDef:
		return v == nil
	case *ExceptHandler:
		return v == nil
	case *MatchCase:
		return v == nil
	case *Keyword:
		return v == nil
	case *Call:
		return v == nil
	case *Name:
		return v == nil
	case *Constant:
		return v == nil
	case *OtherExpr:
		return v == nil
	case *OtherStmt:
		return v == nil
	}
	return false
}
