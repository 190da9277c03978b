// Package lower implements the late middle-end rewrites: clamp lowering,
// sliding-window reuse, loop splitting, and storage
// folding/flattening/early-free.
package lower

import (
	"stencil/internal/ir"
)

// ClampPass lowers every Clamp node to the equivalent arithmetic for its
// ClampKind. It is a plain ir.Rewriter: by the time RewriteClamp sees a node
// its A/Min/Max/P1 children have already been recursively lowered, and a
// kind that falls back onto another (Reflect101's float fallback onto
// Reflect) calls that kind's lowering function directly.
type ClampPass struct {
	ir.BaseRewriter
}

// LowerClampExpr rewrites every Clamp node reachable from e.
func LowerClampExpr(e ir.Expr) ir.Expr {
	return ir.NewMutator(&ClampPass{}).MutateExpr(e)
}

// LowerClampStmt rewrites every Clamp node reachable from s.
func LowerClampStmt(s ir.Stmt) ir.Stmt {
	return ir.NewMutator(&ClampPass{}).MutateStmt(s)
}

func (p *ClampPass) RewriteClamp(n *ir.Clamp) ir.Expr {
	t := n.A.ExprType()
	a, lo, hi := n.A, n.Min, n.Max

	var adjust ir.Expr
	if t.IsFloat() {
		adjust = &ir.FloatImm{T: t, Value: 0}
	} else {
		adjust = &ir.IntImm{T: t, Value: 1}
	}

	switch n.ClampKind {
	case ir.ClampNone:
		return a

	case ir.ClampReplicate:
		// max(min(a, hi), lo)
		return ir.NewBinary(ir.Max, ir.NewBinary(ir.Min, a, hi), lo)

	case ir.ClampWrap:
		// (a - lo) mod (hi - lo + adjust) + lo
		span := ir.NewBinary(ir.Add, ir.NewBinary(ir.Sub, hi, lo), adjust)
		return ir.NewBinary(ir.Add, ir.NewBinary(ir.Mod, ir.NewBinary(ir.Sub, a, lo), span), lo)

	case ir.ClampReflect:
		return p.lowerReflect(a, lo, hi, adjust)

	case ir.ClampReflect101:
		if t.IsFloat() {
			// same as Reflect for floats
			return p.lowerReflect(a, lo, hi, adjust)
		}
		return p.lowerReflect101(a, lo, hi, adjust)

	case ir.ClampTile:
		return p.lowerTile(a, lo, hi, n.P1, adjust)

	default:
		return n
	}
}

// lowerReflect: r = hi-lo+adjust; e = (a-lo) mod 2r;
// select(e < r, (a-lo) mod r, r-adjust-(a-lo) mod r) + lo
func (p *ClampPass) lowerReflect(a, lo, hi, adjust ir.Expr) ir.Expr {
	r := ir.NewBinary(ir.Add, ir.NewBinary(ir.Sub, hi, lo), adjust)
	aMinusLo := ir.NewBinary(ir.Sub, a, lo)
	two := &ir.IntImm{T: r.ExprType(), Value: 2}
	e := ir.NewBinary(ir.Mod, aMinusLo, ir.NewBinary(ir.Mul, two, r))
	cond := ir.NewCompare(ir.LT, e, r)
	onLeft := ir.NewBinary(ir.Mod, aMinusLo, r)
	onRight := ir.NewBinary(ir.Sub, ir.NewBinary(ir.Sub, r, adjust), ir.NewBinary(ir.Mod, aMinusLo, r))
	return ir.NewBinary(ir.Add, ir.NewSelect(cond, onLeft, onRight), lo)
}

// lowerReflect101 (integer only): r = hi-lo; e = (a-lo) mod 2r;
// select(e <= r, e mod (r+adjust), (2r-e) mod (r+adjust)) + lo
func (p *ClampPass) lowerReflect101(a, lo, hi, adjust ir.Expr) ir.Expr {
	r := ir.NewBinary(ir.Sub, hi, lo)
	aMinusLo := ir.NewBinary(ir.Sub, a, lo)
	two := &ir.IntImm{T: r.ExprType(), Value: 2}
	e := ir.NewBinary(ir.Mod, aMinusLo, ir.NewBinary(ir.Mul, two, r))
	cond := ir.NewCompare(ir.LE, e, r)
	rPlusAdjust := ir.NewBinary(ir.Add, r, adjust)
	onLeft := ir.NewBinary(ir.Mod, e, rPlusAdjust)
	onRight := ir.NewBinary(ir.Mod, ir.NewBinary(ir.Sub, ir.NewBinary(ir.Mul, two, r), e), rPlusAdjust)
	return ir.NewBinary(ir.Add, ir.NewSelect(cond, onLeft, onRight), lo)
}

// lowerTile: select(a<lo, (a-lo) mod p1 + lo,
//
//	select(a>hi, (a-hi-adjust) mod p1 + hi + adjust - p1, (a-lo) mod (hi-lo+adjust) + lo))
func (p *ClampPass) lowerTile(a, lo, hi, p1, adjust ir.Expr) ir.Expr {
	below := ir.NewCompare(ir.LT, a, lo)
	above := ir.NewCompare(ir.GT, a, hi)
	belowVal := ir.NewBinary(ir.Add, ir.NewBinary(ir.Mod, ir.NewBinary(ir.Sub, a, lo), p1), lo)
	aboveVal := ir.NewBinary(ir.Add,
		ir.NewBinary(ir.Sub, ir.NewBinary(ir.Add, ir.NewBinary(ir.Mod, ir.NewBinary(ir.Sub, ir.NewBinary(ir.Sub, a, hi), adjust), p1), hi), p1),
		adjust)
	withinVal := ir.NewBinary(ir.Add,
		ir.NewBinary(ir.Mod, ir.NewBinary(ir.Sub, a, lo), ir.NewBinary(ir.Add, ir.NewBinary(ir.Sub, hi, lo), adjust)),
		lo)
	return ir.NewSelect(below, belowVal, ir.NewSelect(above, aboveVal, withinVal))
}
