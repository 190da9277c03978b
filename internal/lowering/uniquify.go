package lowering

import (
	"stencil/internal/ir"
	"stencil/internal/simplify"
)

// Uniquify (pipeline step 10) renames every For- and Let-bound variable to
// a process-wide-unique name and substitutes every reference within its
// scope, so later passes (sliding window, loop splitting) never have to
// worry about two differently-scoped loops sharing a bound name.
func Uniquify(s ir.Stmt) ir.Stmt {
	return ir.NewMutator(&uniquifier{}).MutateStmt(s)
}

type uniquifier struct{ ir.BaseRewriter }

// RewriteFor/RewriteLetStmt/RewriteLet all run post-order: n.Body (or
// n.Value) has already been recursively mutated — any nested binder
// inside it already carries its own fresh name — before this method sees
// n, so substituting the outer name into the already-mutated body is
// enough; re-walking it here would rename already-renamed inner binders a
// second time.
func (u *uniquifier) RewriteFor(n *ir.For) ir.Stmt {
	fresh := uniqueName(n.Name)
	body := simplify.SubstituteStmt(n.Body, n.Name, &ir.Variable{T: n.Min.ExprType(), Name: fresh})
	return &ir.For{Name: fresh, Min: n.Min, Extent: n.Extent, ForType: n.ForType, SplitInfo: n.SplitInfo, Body: body}
}

func (u *uniquifier) RewriteLetStmt(n *ir.LetStmt) ir.Stmt {
	fresh := uniqueName(n.Name)
	body := simplify.SubstituteStmt(n.Body, n.Name, &ir.Variable{T: n.Value.ExprType(), Name: fresh})
	return &ir.LetStmt{Name: fresh, Value: n.Value, Body: body}
}

func (u *uniquifier) RewriteLet(n *ir.Let) ir.Expr {
	fresh := uniqueName(n.Name)
	body := simplify.Substitute(n.Body, n.Name, &ir.Variable{T: n.Value.ExprType(), Name: fresh})
	return &ir.Let{Name: fresh, Value: n.Value, Body: body}
}
