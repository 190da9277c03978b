package bounds

import (
	"stencil/internal/ir"
	"stencil/internal/types"
)

// InferValidDomain computes the Valid domain of a function defined over vars
// by body: every Call in body that references a named callee present in
// callees narrows the variable appearing (possibly shifted by a constant
// offset, e.g. x-1) as that call's j'th argument to the callee's own Valid
// domain's j'th dimension, shifted back by the offset — a kernel that uses
// indices x-1..x+1 of a callee narrows its own domain by intersecting the
// shifted callee domains. Restricted to the affine single-variable-per-argument
// case every schedule-stage indexing expression reduces to by the time the
// scheduler calls this; a fully general version would need to invert an
// arbitrary expression via symbolic solving, but that generality isn't
// needed here since a Call's arguments are always a loop variable plus a
// compile-time constant offset once the scheduler has built the loop nest.
func InferValidDomain(vars []string, body ir.Stmt, callees map[string]Domain) Domain {
	out := make(Domain, len(vars))
	for i := range vars {
		out[i] = Everything(types.Int32)
	}
	w := &calleeWalk{callees: callees, perVar: map[string]Interval{}}
	w.Self = w
	ir.VisitStmt(w.Self, body)
	for i, v := range vars {
		if iv, ok := w.perVar[v]; ok {
			out[i] = Intersection(out[i], iv)
		}
	}
	return out
}

// InferComputableDomain computes the Computable domain: the region a
// function can be evaluated over at all. Absent an explicit guard (an
// AssertStmt narrowing a variable, handled the same way a Valid-domain call
// argument is), a function is computable everywhere its type allows, so
// this defaults to Everything per dimension and only narrows via asserts
// recognized as direct single-variable bounds.
func InferComputableDomain(vars []string, body ir.Stmt) Domain {
	out := make(Domain, len(vars))
	for i := range vars {
		out[i] = Everything(types.Int32)
	}
	w := &assertWalk{perVar: map[string]Interval{}}
	w.Self = w
	ir.VisitStmt(w.Self, body)
	for i, v := range vars {
		if iv, ok := w.perVar[v]; ok {
			out[i] = Intersection(out[i], iv)
		}
	}
	return out
}

type calleeWalk struct {
	ir.BaseVisitor
	callees map[string]Domain
	perVar  map[string]Interval
}

func (w *calleeWalk) narrow(name string, iv Interval) {
	if cur, ok := w.perVar[name]; ok {
		w.perVar[name] = Intersection(cur, iv)
	} else {
		w.perVar[name] = iv
	}
}

func (w *calleeWalk) VisitCall(n *ir.Call) {
	if dom, ok := w.callees[n.Name]; ok {
		for j, arg := range n.Args {
			if j >= len(dom) {
				continue
			}
			name, offset, ok := affineVar(arg)
			if !ok {
				continue
			}
			w.narrow(name, Interval{
				Min:   subConst(dom[j].Min, offset),
				Max:   subConst(dom[j].Max, offset),
				Exact: dom[j].Exact,
			})
		}
	}
	for _, a := range n.Args {
		ir.VisitExpr(w.Self, a)
	}
}

// affineVar recognizes e as var, var+c, c+var or var-c, returning the bound
// variable's name and the offset such that var == e - offset. Any other
// shape (a non-affine index, or an affine form with a coefficient other
// than ±1 on the variable) is reported as not handled.
func affineVar(e ir.Expr) (name string, offset ir.Expr, ok bool) {
	switch n := e.(type) {
	case *ir.Variable:
		return n.Name, &ir.IntImm{T: n.T, Value: 0}, true
	case *ir.Binary:
		switch n.Op {
		case ir.Add:
			if v, ok := n.A.(*ir.Variable); ok {
				if c, ok := n.B.(*ir.IntImm); ok {
					return v.Name, c, true
				}
			}
			if v, ok := n.B.(*ir.Variable); ok {
				if c, ok := n.A.(*ir.IntImm); ok {
					return v.Name, c, true
				}
			}
		case ir.Sub:
			if v, ok := n.A.(*ir.Variable); ok {
				if c, ok := n.B.(*ir.IntImm); ok {
					return v.Name, &ir.IntImm{T: c.T, Value: -c.Value}, true
				}
			}
		}
	}
	return "", nil, false
}

// assertWalk recognizes AssertStmt conditions of the form var <op> const
// (and its mirror const <op> var) as narrowing that variable's Computable
// range, the same pattern internal/bounds/boundssimplify.go's
// resolveCompare discharges in the other direction.
type assertWalk struct {
	ir.BaseVisitor
	perVar map[string]Interval
}

func (w *assertWalk) VisitAssertStmt(n *ir.AssertStmt) {
	if cmp, ok := n.Cond.(*ir.Compare); ok {
		if name, iv, ok := boundFromCompare(cmp); ok {
			if cur, exists := w.perVar[name]; exists {
				w.perVar[name] = Intersection(cur, iv)
			} else {
				w.perVar[name] = iv
			}
		}
	}
}

func boundFromCompare(cmp *ir.Compare) (name string, iv Interval, ok bool) {
	if v, isVar := cmp.A.(*ir.Variable); isVar {
		if c, isConst := cmp.B.(*ir.IntImm); isConst {
			return v.Name, boundFromOp(cmp.Op, c, false), true
		}
	}
	if v, isVar := cmp.B.(*ir.Variable); isVar {
		if c, isConst := cmp.A.(*ir.IntImm); isConst {
			return v.Name, boundFromOp(cmp.Op, c, true), true
		}
	}
	return "", Interval{}, false
}

// boundFromOp builds the Interval var's compared op against the constant c
// implies; flipped is true when the comparison was written const <op> var
// rather than var <op> const, which mirrors the operator's sense.
func boundFromOp(op ir.CompareOp, c *ir.IntImm, flipped bool) Interval {
	t := c.T
	if flipped {
		op = mirrorOp(op)
	}
	switch op {
	case ir.LT:
		return Interval{Min: NegInf(t), Max: &ir.IntImm{T: t, Value: c.Value - 1}, Exact: true}
	case ir.LE:
		return Interval{Min: NegInf(t), Max: c, Exact: true}
	case ir.GT:
		return Interval{Min: &ir.IntImm{T: t, Value: c.Value + 1}, Max: PosInf(t), Exact: true}
	case ir.GE:
		return Interval{Min: c, Max: PosInf(t), Exact: true}
	case ir.EQ:
		return Single(c)
	default:
		return Everything(t)
	}
}

func mirrorOp(op ir.CompareOp) ir.CompareOp {
	switch op {
	case ir.LT:
		return ir.GT
	case ir.LE:
		return ir.GE
	case ir.GT:
		return ir.LT
	case ir.GE:
		return ir.LE
	default:
		return op
	}
}
