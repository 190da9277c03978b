package simplify

import "stencil/internal/ir"

// useCounter is a read-only Visitor that counts occurrences of a named
// Variable, used to decide whether a Let binding is cheap enough to inline
// even when its value isn't a literal or bare variable reference.
type useCounter struct {
	ir.BaseVisitor
	name  string
	count int
}

func (u *useCounter) VisitVariable(n *ir.Variable) {
	if n.Name == u.name {
		u.count++
	}
}

// countUses returns how many times name occurs free in e.
func countUses(e ir.Expr, name string) int {
	u := &useCounter{name: name}
	u.Self = u
	ir.VisitExpr(u, e)
	return u.count
}

// countUsesStmt is countUses's statement counterpart.
func countUsesStmt(s ir.Stmt, name string) int {
	u := &useCounter{name: name}
	u.Self = u
	ir.VisitStmt(u, s)
	return u.count
}
