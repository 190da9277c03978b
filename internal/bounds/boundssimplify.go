package bounds

import (
	"stencil/internal/ir"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

// boundsPass is a second simplifier pass: it uses interval facts bound
// in the current scope (by an enclosing For, Let or LetStmt) to discharge
// conditions a purely syntactic simplify pass can't — eliminating a Clamp
// once the clamped value already lies in range, a Min/Max once one
// operand's interval dominates the other's, or a Select once its
// condition's truth follows from bounds rather than from constant folding.
// It is idempotent with simplify.Simplify and is meant to run after any
// pass that introduces new bounds facts (sliding window, loop splitting).
type boundsPass struct {
	scope       *Scope
	constraints Constraints
}

// BoundsSimplifyStmt runs the bounds-informed simplifier over s.
func BoundsSimplifyStmt(s ir.Stmt, constraints Constraints) ir.Stmt {
	p := &boundsPass{scope: NewScope(), constraints: constraints}
	return simplify.SimplifyStmt(p.stmt(s))
}

// BoundsSimplifyExpr is BoundsSimplifyStmt's expression counterpart, usable
// directly on a standalone Expr with an already-built Scope (e.g. from
// inside the scheduler, which already tracks loop-variable intervals).
func BoundsSimplifyExpr(e ir.Expr, scope *Scope, constraints Constraints) ir.Expr {
	p := &boundsPass{scope: scope, constraints: constraints}
	return simplify.Simplify(p.expr(e))
}

func (p *boundsPass) withBinding(name string, v Interval) *boundsPass {
	return &boundsPass{scope: p.scope.Push(name, v), constraints: p.constraints}
}

func (p *boundsPass) interval(e ir.Expr) Interval {
	return ExprInterval(e, p.scope, p.constraints)
}

func (p *boundsPass) expr(e ir.Expr) ir.Expr {
	switch n := e.(type) {
	case *ir.IntImm, *ir.FloatImm, *ir.Variable, *ir.Infinity:
		return n
	case *ir.Cast:
		return &ir.Cast{To: n.To, Value: p.expr(n.Value)}
	case *ir.Not:
		return &ir.Not{Value: p.expr(n.Value)}
	case *ir.SignFill:
		return &ir.SignFill{Value: p.expr(n.Value)}
	case *ir.Binary:
		return p.binary(n)
	case *ir.Compare:
		return &ir.Compare{Op: n.Op, A: p.expr(n.A), B: p.expr(n.B), T: n.T}
	case *ir.Logical:
		return &ir.Logical{Op: n.Op, A: p.expr(n.A), B: p.expr(n.B)}
	case *ir.Select:
		return p.selectExpr(n)
	case *ir.Load:
		return &ir.Load{T: n.T, Name: n.Name, Index: p.expr(n.Index), Buffer: n.Buffer}
	case *ir.Ramp:
		return &ir.Ramp{Base: p.expr(n.Base), Stride: p.expr(n.Stride), Lanes: n.Lanes}
	case *ir.Broadcast:
		return &ir.Broadcast{Value: p.expr(n.Value), Lanes: n.Lanes}
	case *ir.Call:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = p.expr(a)
		}
		return &ir.Call{T: n.T, Name: n.Name, Args: args, CallType: n.CallType, Func: n.Func, Buffer: n.Buffer}
	case *ir.Let:
		v := p.expr(n.Value)
		inner := p.withBinding(n.Name, p.interval(v))
		return &ir.Let{Name: n.Name, Value: v, Body: inner.expr(n.Body)}
	case *ir.Clamp:
		return p.clampExpr(n)
	case *ir.Solve:
		return &ir.Solve{Var: n.Var, Body: p.expr(n.Body)}
	case *ir.TargetVar:
		inner := p.withBinding(n.Name, Everything(n.Body.ExprType()))
		return &ir.TargetVar{Name: n.Name, Body: inner.expr(n.Body)}
	default:
		return e
	}
}

func (p *boundsPass) binary(n *ir.Binary) ir.Expr {
	a, b := p.expr(n.A), p.expr(n.B)
	if n.Op == ir.Min || n.Op == ir.Max {
		ia, ib := p.interval(a), p.interval(b)
		if dominates(ia, ib, n.Op == ir.Max) {
			return a
		}
		if dominates(ib, ia, n.Op == ir.Max) {
			return b
		}
	}
	return &ir.Binary{Op: n.Op, A: a, B: b, T: n.T}
}

// dominates reports whether interval x's range already covers the
// extremum max/min would pick over y: for Max, x dominates y when x.Min is
// already ≥ y.Max (so max(x,y) is always x); for Min, symmetric.
func dominates(x, y Interval, isMax bool) bool {
	if isMax {
		return provedGE(x.Min, y.Max)
	}
	return provedLE2(x.Max, y.Min)
}

func (p *boundsPass) selectExpr(n *ir.Select) ir.Expr {
	cond := p.expr(n.Cond)
	t, f := p.expr(n.TrueVal), p.expr(n.FalseVal)
	if cmp, ok := cond.(*ir.Compare); ok {
		if truth, known := resolveCompare(p.interval(cmp.A), cmp.Op, p.interval(cmp.B)); known {
			if truth {
				return t
			}
			return f
		}
	}
	return &ir.Select{Cond: cond, TrueVal: t, FalseVal: f}
}

// resolveCompare decides a <op> b purely from the two operands' intervals,
// when their ranges don't overlap in a way that leaves the comparison
// ambiguous.
func resolveCompare(a Interval, op ir.CompareOp, b Interval) (truth bool, known bool) {
	switch op {
	case ir.LT:
		if provedLE2(a.Max, subtractOneLike(b.Min)) {
			return true, true
		}
		if provedGE(a.Min, b.Max) {
			return false, true
		}
	case ir.LE:
		if provedLE2(a.Max, b.Min) {
			return true, true
		}
		if provedGE(a.Min, addOneLike(b.Max)) {
			return false, true
		}
	case ir.GT:
		if provedGE(a.Min, addOneLike(b.Max)) {
			return true, true
		}
		if provedLE2(a.Max, b.Min) {
			return false, true
		}
	case ir.GE:
		if provedGE(a.Min, b.Max) {
			return true, true
		}
		if provedLE2(a.Max, subtractOneLike(b.Min)) {
			return false, true
		}
	}
	return false, false
}

func subtractOneLike(e ir.Expr) ir.Expr {
	if imm, ok := e.(*ir.IntImm); ok {
		return &ir.IntImm{T: imm.T, Value: imm.Value - 1}
	}
	return e
}

func addOneLike(e ir.Expr) ir.Expr {
	if imm, ok := e.(*ir.IntImm); ok {
		return &ir.IntImm{T: imm.T, Value: imm.Value + 1}
	}
	return e
}

func (p *boundsPass) clampExpr(n *ir.Clamp) ir.Expr {
	a := p.expr(n.A)
	lo, hi := p.expr(n.Min), p.expr(n.Max)
	ia := p.interval(a)
	if provedGE(ia.Min, lo) && provedLE2(ia.Max, hi) {
		return a
	}
	var p1 ir.Expr
	if n.P1 != nil {
		p1 = p.expr(n.P1)
	}
	return &ir.Clamp{ClampKind: n.ClampKind, A: a, Min: lo, Max: hi, P1: p1}
}

func (p *boundsPass) stmt(s ir.Stmt) ir.Stmt {
	switch n := s.(type) {
	case *ir.LetStmt:
		v := p.expr(n.Value)
		inner := p.withBinding(n.Name, p.interval(v))
		return &ir.LetStmt{Name: n.Name, Value: v, Body: inner.stmt(n.Body)}
	case *ir.AssertStmt:
		return &ir.AssertStmt{Cond: p.expr(n.Cond), Message: n.Message}
	case *ir.PrintStmt:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = p.expr(a)
		}
		return &ir.PrintStmt{Prefix: n.Prefix, Args: args}
	case *ir.For:
		min, extent := p.expr(n.Min), p.expr(n.Extent)
		minIv, extentIv := p.interval(min), p.interval(extent)
		one := &ir.IntImm{T: n.Min.ExprType(), Value: 1}
		hi := subConst(addII(minIv.Max, extentIv.Max), one)
		inner := p.withBinding(n.Name, Interval{Min: minIv.Min, Max: hi, Exact: minIv.Exact && extentIv.Exact})
		return &ir.For{Name: n.Name, Min: min, Extent: extent, ForType: n.ForType, SplitInfo: n.SplitInfo, Body: inner.stmt(n.Body)}
	case *ir.Store:
		return &ir.Store{Name: n.Name, Value: p.expr(n.Value), Index: p.expr(n.Index)}
	case *ir.Provide:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = p.expr(a)
		}
		return &ir.Provide{Name: n.Name, Value: p.expr(n.Value), Args: args}
	case *ir.Allocate:
		return &ir.Allocate{Name: n.Name, T: n.T, Size: p.expr(n.Size), Body: p.stmt(n.Body)}
	case *ir.Realize:
		bounds := make([]ir.Range, len(n.Bounds))
		for i, r := range n.Bounds {
			bounds[i] = ir.Range{Min: p.expr(r.Min), Extent: p.expr(r.Extent)}
		}
		return &ir.Realize{Name: n.Name, T: n.T, Bounds: bounds, Body: p.stmt(n.Body)}
	case *ir.Pipeline:
		var update ir.Stmt
		if n.Update != nil {
			update = p.stmt(n.Update)
		}
		return &ir.Pipeline{Name: n.Name, Produce: p.stmt(n.Produce), Update: update, Consume: p.stmt(n.Consume)}
	case *ir.Block:
		var rest ir.Stmt
		if n.Rest != nil {
			rest = p.stmt(n.Rest)
		}
		return &ir.Block{First: p.stmt(n.First), Rest: rest}
	case *ir.StmtTargetVar:
		inner := p.withBinding(n.Name, Everything(types.Int32))
		return &ir.StmtTargetVar{Name: n.Name, Body: inner.stmt(n.Body)}
	default:
		return s
	}
}
