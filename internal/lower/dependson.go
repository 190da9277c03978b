package lower

import "stencil/internal/ir"

// dependsOn is an ir.Visitor that records whether it ever saw a Variable
// named Name.
type dependsOn struct {
	ir.BaseVisitor
	name  string
	found bool
}

func (d *dependsOn) VisitVariable(n *ir.Variable) {
	if n.Name == d.name {
		d.found = true
	}
}

// ExprDependsOnVar reports whether e refers to a Variable named name.
func ExprDependsOnVar(e ir.Expr, name string) bool {
	d := &dependsOn{name: name}
	d.Self = d
	ir.VisitExpr(d.Self, e)
	return d.found
}

// StmtDependsOnVar reports whether s refers to a Variable named name.
func StmtDependsOnVar(s ir.Stmt, name string) bool {
	d := &dependsOn{name: name}
	d.Self = d
	ir.VisitStmt(d.Self, s)
	return d.found
}
