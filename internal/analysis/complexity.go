package analysis

import "github.com/standardbeagle/blockscan/internal/pyast"

// Complexity returns the cyclomatic complexity of a function-like unit.
//
// The count starts at 1 and adds one per if/elif, for, while, typed except
// clause and conditional expression, plus n-1 per and/or chain of n
// operands. Nested functions are walked as part of the enclosing body.
// A bare except adds nothing; it is reported as bare_except instead.
func Complexity(unit pyast.Node) int {
	complexity := 1
	pyast.Inspect(unit, func(n pyast.Node) bool {
		switch n := n.(type) {
		case *pyast.If, *pyast.For, *pyast.While, *pyast.IfExp:
			complexity++
		case *pyast.ExceptHandler:
			if !n.Bare() {
				complexity++
			}
		case *pyast.BoolOp:
			complexity += len(n.Values) - 1
		}
		return true
	})
	return complexity
}
