// Package pyast is a closed syntax tree for Python fragments.
//
// Every node type implements Node through an unexported method, so the set
// of variants is fixed and analyses are written as type switches. Trees are
// produced by the parser package and hold no references into parser state.
package pyast

// Span locates a node in its fragment. Lines are 1-based, columns are
// 0-based byte offsets within the line.
type Span struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Node is any syntax tree node
type Node interface {
	Pos() Span
	node()
}

// Stmt is a statement node
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression node
type Expr interface {
	Node
	expr()
}

// Pos returns the node span; embedded by every node type.
func (s Span) Pos() Span { return s }

// ---------------------------------------------------------------------------
// Statements

// Module is the root of a parsed fragment
type Module struct {
	Span
	Body []Stmt
}

// Param is one named parameter of a function or lambda
type Param struct {
	Name       string
	Annotation Expr
	Default    Expr
}

// Params groups parameters the way Python's calling convention does
type Params struct {
	PositionalOnly []Param // before "/"
	Positional     []Param // ordinary positional-or-keyword parameters
	KeywordOnly    []Param // after "*" or "*args"
	VarArg         *Param  // *args
	KwArg          *Param  // **kwargs
}

// Count returns the number of named, non-variadic parameters
func (p Params) Count() int {
	return len(p.PositionalOnly) + len(p.Positional) + len(p.KeywordOnly)
}

// FunctionDef is a def or async def
type FunctionDef struct {
	Span
	Name       string
	Async      bool
	Params     Params
	Returns    Expr // nil without a return annotation
	Body       []Stmt
	Decorators []Expr
}

// Docstring returns the leading string literal of the body, if any
func (f *FunctionDef) Docstring() (string, bool) {
	return docstring(f.Body)
}

// ClassDef is a class statement
type ClassDef struct {
	Span
	Name       string
	Bases      []Expr
	Body       []Stmt
	Decorators []Expr
}

// Docstring returns the leading string literal of the body, if any
func (c *ClassDef) Docstring() (string, bool) {
	return docstring(c.Body)
}

// If is an if statement. An elif chain is a nested If as the only Orelse entry.
type If struct {
	Span
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// For is a for or async for loop
type For struct {
	Span
	Async  bool
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
}

// While is a while loop
type While struct {
	Span
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// Try is a try statement with its handlers
type Try struct {
	Span
	Body      []Stmt
	Handlers  []*ExceptHandler
	Orelse    []Stmt
	Finalbody []Stmt
}

// ExceptHandler is one except clause. Type is nil for a bare "except:".
type ExceptHandler struct {
	Span
	Type Expr
	Name string
	Body []Stmt
}

// Bare reports whether the handler catches everything
func (h *ExceptHandler) Bare() bool { return h.Type == nil }

// With is a with or async with statement
type With struct {
	Span
	Async bool
	Items []Expr
	Body  []Stmt
}

// Match is a structural pattern matching statement
type Match struct {
	Span
	Subject Expr
	Cases   []*MatchCase
}

// MatchCase is one case arm
type MatchCase struct {
	Span
	Patterns []Expr
	Guard    Expr
	Body     []Stmt
}

// Return is a return statement
type Return struct {
	Span
	Value Expr
}

// Assign is a plain assignment. Chained "a = b = v" has two targets.
type Assign struct {
	Span
	Targets []Expr
	Value   Expr
}

// AnnAssign is an annotated assignment, Value may be nil
type AnnAssign struct {
	Span
	Target     Expr
	Annotation Expr
	Value      Expr
}

// AugAssign is an augmented assignment such as "x += 1"
type AugAssign struct {
	Span
	Target Expr
	Op     string
	Value  Expr
}

// ExprStmt is an expression evaluated for effect
type ExprStmt struct {
	Span
	Value Expr
}

// Import is "import a, b.c"
type Import struct {
	Span
	Names []string
}

// ImportFrom is "from m import x"; Wildcard is set for "import *"
type ImportFrom struct {
	Span
	Module   string
	Names    []string
	Wildcard bool
}

// Raise is a raise statement
type Raise struct {
	Span
	Exc   Expr
	Cause Expr
}

// OtherStmt covers statements without dedicated analyses (pass, del, assert,
// global, ...). Children keeps nested nodes reachable by the walker.
type OtherStmt struct {
	Span
	Kind     string
	Children []Node
}

// ---------------------------------------------------------------------------
// Expressions

// Name is an identifier reference
type Name struct {
	Span
	ID string
}

// Attribute is "value.attr"
type Attribute struct {
	Span
	Value Expr
	Attr  string
}

// Call is a function call
type Call struct {
	Span
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

// Keyword is a keyword argument of a call. Arg is empty for "**mapping".
type Keyword struct {
	Span
	Arg   string
	Value Expr
}

// ConstKind identifies the literal type of a Constant
type ConstKind int

const (
	ConstStr ConstKind = iota
	ConstBytes
	ConstInt
	ConstFloat
	ConstTrue
	ConstFalse
	ConstNone
	ConstEllipsis
)

// Constant is a literal. Value is the decoded text for strings and bytes and
// the source text otherwise.
type Constant struct {
	Span
	Kind  ConstKind
	Value string
}

// JoinedStr is an f-string; Values holds the interpolated expressions
type JoinedStr struct {
	Span
	Values []Expr
}

// BoolOp is an "and"/"or" chain. Runs of the same operator are flattened,
// so "a and b and c" has three values.
type BoolOp struct {
	Span
	Op     string
	Values []Expr
}

// Compare is a comparison chain "left op1 c1 op2 c2 ..."
type Compare struct {
	Span
	Left        Expr
	Ops         []string
	Comparators []Expr
}

// IfExp is a conditional expression "body if test else orelse"
type IfExp struct {
	Span
	Test   Expr
	Body   Expr
	Orelse Expr
}

// Lambda is an anonymous function
type Lambda struct {
	Span
	Params Params
	Body   Expr
}

// Await is an await expression
type Await struct {
	Span
	Value Expr
}

// OtherExpr covers expressions without dedicated analyses (containers,
// subscripts, arithmetic, comprehensions, ...).
type OtherExpr struct {
	Span
	Kind     string
	Children []Node
}

func (*Module) node()        {}
func (*FunctionDef) node()   {}
func (*ClassDef) node()      {}
func (*If) node()            {}
func (*For) node()           {}
func (*While) node()         {}
func (*Try) node()           {}
func (*ExceptHandler) node() {}
func (*With) node()          {}
func (*Match) node()         {}
func (*MatchCase) node()     {}
func (*Return) node()        {}
func (*Assign) node()        {}
func (*AnnAssign) node()     {}
func (*AugAssign) node()     {}
func (*ExprStmt) node()      {}
func (*Import) node()        {}
func (*ImportFrom) node()    {}
func (*Raise) node()         {}
func (*OtherStmt) node()     {}
func (*Name) node()          {}
func (*Attribute) node()     {}
func (*Call) node()          {}
func (*Keyword) node()       {}
func (*Constant) node()      {}
func (*JoinedStr) node()     {}
func (*BoolOp) node()        {}
func (*Compare) node()       {}
func (*IfExp) node()         {}
func (*Lambda) node()        {}
func (*Await) node()         {}
func (*OtherExpr) node()     {}

func (*FunctionDef) stmt() {}
func (*ClassDef) stmt()    {}
func (*If) stmt()          {}
func (*For) stmt()         {}
func (*While) stmt()       {}
func (*Try) stmt()         {}
func (*With) stmt()        {}
func (*Match) stmt()       {}
func (*Return) stmt()      {}
func (*Assign) stmt()      {}
func (*AnnAssign) stmt()   {}
func (*AugAssign) stmt()   {}
func (*ExprStmt) stmt()    {}
func (*Import) stmt()      {}
func (*ImportFrom) stmt()  {}
func (*Raise) stmt()       {}
func (*OtherStmt) stmt()   {}

func (*Name) expr()      {}
func (*Attribute) expr() {}
func (*Call) expr()      {}
func (*Constant) expr()  {}
func (*JoinedStr) expr() {}
func (*BoolOp) expr()    {}
func (*Compare) expr()   {}
func (*IfExp) expr()     {}
func (*Lambda) expr()    {}
func (*Await) expr()     {}
func (*OtherExpr) expr() {}

func docstring(body []Stmt) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	es, ok := body[0].(*ExprStmt)
	if !ok {
		return "", false
	}
	c, ok := es.Value.(*Constant)
	if !ok || c.Kind != ConstStr {
		return "", false
	}
	return c.Value, true
}
