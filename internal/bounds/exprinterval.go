package bounds

import (
	"stencil/internal/ir"
	"stencil/internal/types"
)

// Constraints supplies the interval a named buffer's Load/Call contributes
// when the caller has a tighter bound than the element type's native range
// (a parameter constraint narrowing it). A nil Constraints (or a name
// absent from it) falls back to the unconstrained (T.min, T.max) of the
// reference's type.
type Constraints map[string]Interval

// ExprInterval returns the tightest Interval derivable for e from the
// interval facts bound in scope. constraints may be nil.
func ExprInterval(e ir.Expr, scope *Scope, constraints Constraints) Interval {
	w := &intervalWalk{scope: scope, constraints: constraints}
	return w.of(e)
}

type intervalWalk struct {
	scope       *Scope
	constraints Constraints
}

func (w *intervalWalk) of(e ir.Expr) Interval {
	switch n := e.(type) {
	case *ir.IntImm:
		return Single(n)
	case *ir.FloatImm:
		return Single(n)
	case *ir.Infinity:
		return Single(n)
	case *ir.Variable:
		return w.ofVariable(n)
	case *ir.Cast:
		return w.ofCast(n)
	case *ir.Not:
		return Everything(n.ExprType())
	case *ir.SignFill:
		return Everything(n.ExprType())
	case *ir.Binary:
		return w.ofBinary(n)
	case *ir.Compare:
		return Everything(n.ExprType())
	case *ir.Logical:
		return Everything(n.ExprType())
	case *ir.Select:
		return Union(w.of(n.TrueVal), w.of(n.FalseVal))
	case *ir.Load:
		return w.ofBuffer(n.Name, n.T)
	case *ir.Ramp:
		return w.ofRamp(n)
	case *ir.Broadcast:
		return w.of(n.Value)
	case *ir.Call:
		if n.Buffer != ir.BufferNone {
			return w.ofBuffer(n.Name, n.T)
		}
		// Calls to other pipeline functions would need that function's Valid
		// domain (schedule.Function), which this package cannot import
		// without an ir <-> schedule cycle; fall back conservatively.
		return Everything(n.T)
	case *ir.Let:
		v := w.of(n.Value)
		inner := &intervalWalk{scope: w.scope.Push(n.Name, v), constraints: w.constraints}
		return inner.of(n.Body)
	case *ir.Clamp:
		return Interval{Min: n.Min, Max: n.Max, Exact: true}
	case *ir.Solve:
		return w.of(n.Body)
	case *ir.TargetVar:
		inner := &intervalWalk{scope: w.scope.Push(n.Name, Everything(n.Body.ExprType())), constraints: w.constraints}
		return inner.of(n.Body)
	default:
		return Everything(e.ExprType())
	}
}

// ofVariable resolves a Variable against the current scope, then a
// reduction-domain's own (min, min+extent-1), then a parameter constraint,
// falling back to the element type's full range.
func (w *intervalWalk) ofVariable(n *ir.Variable) Interval {
	if v, ok := w.scope.Lookup(n.Name); ok {
		return v
	}
	if n.Reduction != nil {
		min := w.of(n.Reduction.Min)
		extent := w.of(n.Reduction.Extent)
		one := &ir.IntImm{T: n.T, Value: 1}
		hi := subConst(addII(min.Max, extent.Max), one)
		return Interval{Min: min.Min, Max: hi, Exact: min.Exact && extent.Exact}
	}
	if c, ok := w.constraints[n.Name]; ok {
		return c
	}
	return Everything(n.T)
}

// ofBuffer is the Load/Call-on-a-buffer case: a constraint if one was
// supplied, otherwise the element type's native range.
func (w *intervalWalk) ofBuffer(name string, t types.Type) Interval {
	if c, ok := w.constraints[name]; ok {
		return c
	}
	return Everything(t)
}

func (w *intervalWalk) ofCast(n *ir.Cast) Interval {
	inner := w.of(n.Value)
	return Interval{Min: castExpr(inner.Min, n.To), Max: castExpr(inner.Max, n.To), Exact: inner.Exact}
}

// castExpr reinterprets e's type as to; an Infinity keeps its sign/count
// under the new element type, a literal is folded directly, and anything
// else is wrapped in an explicit Cast node.
func castExpr(e ir.Expr, to types.Type) ir.Expr {
	switch v := e.(type) {
	case *ir.Infinity:
		return &ir.Infinity{T: to, Sign: v.Sign, Count: v.Count}
	case *ir.IntImm:
		if to.IsFloat() {
			return &ir.FloatImm{T: to, Value: float64(v.Value)}
		}
		return &ir.IntImm{T: to, Value: v.Value}
	case *ir.FloatImm:
		if to.IsInt() || to.IsBool() {
			return &ir.IntImm{T: to, Value: int64(v.Value)}
		}
		return &ir.FloatImm{T: to, Value: v.Value}
	default:
		return &ir.Cast{To: to, Value: e}
	}
}

func (w *intervalWalk) ofRamp(n *ir.Ramp) Interval {
	base := w.of(n.Base)
	stride, ok := n.Stride.(*ir.IntImm)
	if !ok || n.Lanes <= 1 {
		return Everything(n.ExprType())
	}
	extra := stride.Value * int64(n.Lanes-1)
	extraExpr := &ir.IntImm{T: n.Stride.ExprType(), Value: extra}
	if extra >= 0 {
		return Interval{Min: base.Min, Max: addConst(base.Max, extraExpr), Exact: base.Exact}
	}
	return Interval{Min: addConst(base.Min, extraExpr), Max: base.Max, Exact: base.Exact}
}

func (w *intervalWalk) ofBinary(n *ir.Binary) Interval {
	a, b := w.of(n.A), w.of(n.B)
	switch n.Op {
	case ir.Add:
		return AddII(a, b)
	case ir.Sub:
		return SubII(a, b)
	case ir.Mul:
		return MulII(a, b)
	case ir.Div:
		return DivII(a, b)
	case ir.Mod:
		return ModII(a, b)
	case ir.Min:
		return MinII(a, b)
	case ir.Max:
		return MaxII(a, b)
	default:
		return Everything(n.T)
	}
}
