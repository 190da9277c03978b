package simplify

import "stencil/internal/ir"

// substituter is an ir.Rewriter that replaces every Variable named Name with
// Value; it is driven through an ir.Mutator so that subtrees containing no
// occurrence of Name are returned unchanged (same pointer).
type substituter struct {
	ir.BaseRewriter
	name  string
	value ir.Expr
}

func (s *substituter) RewriteVariable(n *ir.Variable) ir.Expr {
	if n.Name == s.name {
		return s.value
	}
	return n
}

// Substitute replaces free occurrences of name in e with value. A nested Let
// or For that rebinds name shadows it, but the Mutator has no scoping logic
// of its own; since every caller in this package only substitutes a name
// that no enclosing binder in e reuses (the let-inlining and loop-splitting
// call sites pick fresh loop/let names), a full shadow-aware walk is not
// needed here.
func Substitute(e ir.Expr, name string, value ir.Expr) ir.Expr {
	m := ir.NewMutator(&substituter{name: name, value: value})
	return m.MutateExpr(e)
}

// SubstituteStmt is Substitute's statement counterpart.
func SubstituteStmt(s ir.Stmt, name string, value ir.Expr) ir.Stmt {
	m := ir.NewMutator(&substituter{name: name, value: value})
	return m.MutateStmt(s)
}
