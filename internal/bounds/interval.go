// Package bounds implements the interval/domain lattice: a unified Interval
// type with possibly-infinite bounds and an exactness bit in one struct,
// interval arithmetic, and the analyses built on top of it
// (interval-of-expression-in-scope, region queries, bounds-informed
// simplification).
package bounds

import (
	"stencil/internal/ir"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

// Interval is (Min, Max) over a single dimension, with an Exact bit: false
// marks a bound derived from an unsolved equation and so a possible
// over-approximation. Either bound may be a *ir.Infinity node; every other
// operation here treats Infinity specially so an unbounded dimension stays
// exactly unbounded rather than decaying into a finite-looking expression.
type Interval struct {
	Min, Max ir.Expr
	Exact    bool
}

// PosInf and NegInf build the symbolic endpoints of an everywhere interval
// for type t.
func PosInf(t types.Type) ir.Expr { return &ir.Infinity{T: t, Sign: 1, Count: 1} }
func NegInf(t types.Type) ir.Expr { return &ir.Infinity{T: t, Sign: -1, Count: 1} }

// Everything returns the unbounded (−∞, +∞) interval over t, exact by
// construction (an infinite bound isn't an approximation, it's definite).
func Everything(t types.Type) Interval {
	return Interval{Min: NegInf(t), Max: PosInf(t), Exact: true}
}

// Single returns the degenerate interval [e, e].
func Single(e ir.Expr) Interval {
	return Interval{Min: e, Max: e, Exact: true}
}

func isInfinity(e ir.Expr) (*ir.Infinity, bool) {
	inf, ok := e.(*ir.Infinity)
	return inf, ok
}

func zeroOf(t types.Type) ir.Expr {
	if t.IsFloat() {
		return &ir.FloatImm{T: t, Value: 0}
	}
	return &ir.IntImm{T: t, Value: 0}
}

// negate computes the simplified expression -e, flipping an Infinity's sign
// in place rather than building a no-op arithmetic node around it.
func negate(e ir.Expr) ir.Expr {
	if inf, ok := isInfinity(e); ok {
		return &ir.Infinity{T: inf.T, Sign: -inf.Sign, Count: inf.Count}
	}
	return simplify.Simplify(ir.NewBinary(ir.Sub, zeroOf(e.ExprType()), e))
}

// addConst folds a finite offset into e, leaving an Infinity endpoint
// unchanged (±∞ + finite == ±∞).
func addConst(e, b ir.Expr) ir.Expr {
	if _, ok := isInfinity(e); ok {
		return e
	}
	return simplify.Simplify(ir.NewBinary(ir.Add, e, b))
}

func subConst(e, b ir.Expr) ir.Expr {
	if _, ok := isInfinity(e); ok {
		return e
	}
	return simplify.Simplify(ir.NewBinary(ir.Sub, e, b))
}

// Add returns v shifted by the constant/symbolic offset b.
func Add(v Interval, b ir.Expr) Interval {
	return Interval{Min: addConst(v.Min, b), Max: addConst(v.Max, b), Exact: v.Exact}
}

// Sub returns v shifted down by b.
func Sub(v Interval, b ir.Expr) Interval {
	return Interval{Min: subConst(v.Min, b), Max: subConst(v.Max, b), Exact: v.Exact}
}

// Negate returns -v, swapping min and max.
func Negate(v Interval) Interval {
	return Interval{Min: negate(v.Max), Max: negate(v.Min), Exact: v.Exact}
}

// scaleExpr builds the literal for a compile-time integer factor of type t;
// Zoom/Decimate/Unzoom/MulConst/DivConst all require their scale
// argument to be a known integer (every caller in the scheduler and
// loop-splitting pass supplies a literal split factor, never a symbolic
// one), so the sign is always statically known.
func scaleExpr(t types.Type, b int64) ir.Expr { return &ir.IntImm{T: t, Value: b} }

// MulConst multiplies v by the known integer constant b, flipping the
// interval when b is negative.
func MulConst(v Interval, b int64) Interval {
	bt := scaleExpr(elemType(v), b)
	if b >= 0 {
		return Interval{Min: mulFinite(v.Min, bt), Max: mulFinite(v.Max, bt), Exact: v.Exact}
	}
	return Interval{Min: mulFinite(v.Max, bt), Max: mulFinite(v.Min, bt), Exact: v.Exact}
}

func mulFinite(e, b ir.Expr) ir.Expr {
	if _, ok := isInfinity(e); ok {
		return e
	}
	return simplify.Simplify(ir.NewBinary(ir.Mul, e, b))
}

// DivConst divides v by the known integer constant b (floor
// division), flipping the interval when b is negative.
func DivConst(v Interval, b int64) Interval {
	bt := scaleExpr(elemType(v), b)
	if b >= 0 {
		return Interval{Min: divFinite(v.Min, bt), Max: divFinite(v.Max, bt), Exact: v.Exact}
	}
	return Interval{Min: divFinite(v.Max, bt), Max: divFinite(v.Min, bt), Exact: v.Exact}
}

func divFinite(e, b ir.Expr) ir.Expr {
	if inf, ok := isInfinity(e); ok {
		return inf
	}
	return simplify.Simplify(ir.NewBinary(ir.Div, e, b))
}

func elemType(v Interval) types.Type { return v.Min.ExprType().ElementOf() }

// Zoom is the adjoint of Decimate: for b>0 the result is (lo*b,
// hi*b+(b-1)); for b<0 it mirrors. zoom(I,b)/b == I and |zoom(I,b)| ==
// |I|*|b|.
func Zoom(v Interval, b int64) Interval {
	if v.Min.ExprType().IsFloat() {
		return MulConst(v, b)
	}
	t := elemType(v)
	if b >= 0 {
		bm1 := scaleExpr(t, b-1)
		return Interval{
			Min:   mulFinite(v.Min, scaleExpr(t, b)),
			Max:   addConst(mulFinite(v.Max, scaleExpr(t, b)), bm1),
			Exact: v.Exact,
		}
	}
	bp1 := scaleExpr(t, b+1)
	return Interval{
		Min:   addConst(mulFinite(v.Max, scaleExpr(t, b)), bp1),
		Max:   mulFinite(v.Min, scaleExpr(t, b)),
		Exact: v.Exact,
	}
}

// Decimate takes every multiple-of-b element of v and divides it by b:
// for b>0, (⌈lo/b⌉, ⌊hi/b⌋); decimate(I,b)*b ⊆ I and is the maximal such.
func Decimate(v Interval, b int64) Interval {
	if v.Min.ExprType().IsFloat() {
		return DivConst(v, b)
	}
	t := elemType(v)
	one := scaleExpr(t, 1)
	if b >= 0 {
		return Interval{
			Min:   addConst(divFinite(subConst(v.Min, one), scaleExpr(t, b)), one), // ceil(lo,b) = (lo-1)/b+1
			Max:   divFinite(v.Max, scaleExpr(t, b)),
			Exact: v.Exact,
		}
	}
	return Interval{
		Min:   addConst(divFinite(addConst(v.Max, one), scaleExpr(t, b)), one), // ceil(hi,b) for negative b = (hi+1)/b+1
		Max:   divFinite(v.Min, scaleExpr(t, b)),
		Exact: v.Exact,
	}
}

// Unzoom is Zoom's other adjoint: for b>0, (⌈lo/b⌉, ⌊(hi+1)/b⌋-1);
// zoom(unzoom(I,b),b) ⊆ I.
func Unzoom(v Interval, b int64) Interval {
	if v.Min.ExprType().IsFloat() {
		return DivConst(v, b)
	}
	t := elemType(v)
	one := scaleExpr(t, 1)
	if b >= 0 {
		return Interval{
			Min:   addConst(divFinite(subConst(v.Min, one), scaleExpr(t, b)), one),
			Max:   subConst(divFinite(addConst(v.Max, one), scaleExpr(t, b)), one),
			Exact: v.Exact,
		}
	}
	two := scaleExpr(t, 2)
	return Interval{
		Min:   addConst(divFinite(addConst(v.Max, two), scaleExpr(t, b)), two),
		Max:   divFinite(v.Min, scaleExpr(t, b)),
		Exact: v.Exact,
	}
}

func exprMin(a, b ir.Expr) ir.Expr { return simplify.Simplify(ir.NewBinary(ir.Min, a, b)) }
func exprMax(a, b ir.Expr) ir.Expr { return simplify.Simplify(ir.NewBinary(ir.Max, a, b)) }

// MinII, MaxII, Intersection and Union are all componentwise.
func MinII(u, v Interval) Interval {
	return Interval{Min: exprMin(u.Min, v.Min), Max: exprMin(u.Max, v.Max), Exact: u.Exact && v.Exact}
}
func MaxII(u, v Interval) Interval {
	return Interval{Min: exprMax(u.Min, v.Min), Max: exprMax(u.Max, v.Max), Exact: u.Exact && v.Exact}
}
func Intersection(u, v Interval) Interval {
	return Interval{Min: exprMax(u.Min, v.Min), Max: exprMin(u.Max, v.Max), Exact: u.Exact && v.Exact}
}
func Union(u, v Interval) Interval {
	return Interval{Min: exprMin(u.Min, v.Min), Max: exprMax(u.Max, v.Max), Exact: u.Exact && v.Exact}
}

// AddII adds two intervals elementwise.
func AddII(u, v Interval) Interval {
	return Interval{Min: addII(u.Min, v.Min), Max: addII(u.Max, v.Max), Exact: u.Exact && v.Exact}
}
func addII(a, b ir.Expr) ir.Expr {
	if _, ok := isInfinity(a); ok {
		return a
	}
	if _, ok := isInfinity(b); ok {
		return b
	}
	return simplify.Simplify(ir.NewBinary(ir.Add, a, b))
}

// SubII subtracts two intervals: (u - v) = (u.min - v.max, u.max - v.min).
func SubII(u, v Interval) Interval {
	return Interval{Min: addII(u.Min, negate(v.Max)), Max: addII(u.Max, negate(v.Min)), Exact: u.Exact && v.Exact}
}

// MulII multiplies two intervals by taking the min/max of the four cross
// products, special-casing a degenerate (constant) operand the way the
// original implementation does to avoid building unnecessary min/max chains.
func MulII(u, v Interval) Interval {
	if c, ok := constOf(u); ok {
		return mulByConst(v, c)
	}
	if c, ok := constOf(v); ok {
		return mulByConst(u, c)
	}
	a := mulFiniteBoth(u.Min, v.Min)
	b := mulFiniteBoth(u.Min, v.Max)
	c := mulFiniteBoth(u.Max, v.Min)
	d := mulFiniteBoth(u.Max, v.Max)
	return Interval{
		Min:   exprMin(exprMin(a, b), exprMin(c, d)),
		Max:   exprMax(exprMax(a, b), exprMax(c, d)),
		Exact: u.Exact && v.Exact,
	}
}

func mulFiniteBoth(a, b ir.Expr) ir.Expr {
	if _, ok := isInfinity(a); ok {
		return a
	}
	if _, ok := isInfinity(b); ok {
		return b
	}
	return simplify.Simplify(ir.NewBinary(ir.Mul, a, b))
}

func constOf(v Interval) (int64, bool) {
	if !ir.Equal(v.Min, v.Max) {
		return 0, false
	}
	imm, ok := v.Min.(*ir.IntImm)
	if !ok {
		return 0, false
	}
	return imm.Value, true
}

func mulByConst(v Interval, c int64) Interval {
	if c < 0 {
		v = Interval{Min: v.Max, Max: v.Min, Exact: v.Exact}
	}
	t := elemType(v)
	ce := scaleExpr(t, c)
	return Interval{Min: mulFinite(v.Min, ce), Max: mulFinite(v.Max, ce), Exact: v.Exact}
}

// DivII divides two intervals. If the divisor's sign can't be proven
// (its interval straddles zero), the result is unbounded and not exact,
// since a divisor interval spanning zero makes the quotient's magnitude
// unbounded.
func DivII(u, v Interval) Interval {
	if c, ok := constOf(v); ok && c != 0 {
		return DivConst(u, c)
	}
	minPositive := provedGT(v.Min, 0)
	maxNegative := provedLT0(v.Max, 0)
	if !minPositive && !maxNegative {
		unbounded := Everything(elemType(u))
		unbounded.Exact = false
		return unbounded
	}
	a := divFiniteBoth(u.Min, v.Min)
	b := divFiniteBoth(u.Min, v.Max)
	c := divFiniteBoth(u.Max, v.Min)
	d := divFiniteBoth(u.Max, v.Max)
	return Interval{
		Min:   exprMin(exprMin(a, b), exprMin(c, d)),
		Max:   exprMax(exprMax(a, b), exprMax(c, d)),
		Exact: u.Exact && v.Exact,
	}
}

func divFiniteBoth(a, b ir.Expr) ir.Expr {
	if _, ok := isInfinity(a); ok {
		return a
	}
	if _, ok := isInfinity(b); ok {
		return zeroOf(a.ExprType())
	}
	return simplify.Simplify(ir.NewBinary(ir.Div, a, b))
}

func provedGT(e ir.Expr, c int64) bool {
	imm, ok := e.(*ir.IntImm)
	return ok && imm.Value > c
}
func provedLT0(e ir.Expr, c int64) bool {
	imm, ok := e.(*ir.IntImm)
	return ok && imm.Value < c
}

// ModII is the interval of (u mod v): if u is provably contained in
// [0, v.min) the modulus is a no-op;
// otherwise the result is clamped to [0, v.max-1] (integers) or [0, v.max]
// (floats).
func ModII(u, v Interval) Interval {
	if provedLE(0, u.Min) && provedLT(u.Max, v.Min) {
		return u
	}
	t := elemType(u)
	zero := zeroOf(t)
	var max ir.Expr
	if t.IsFloat() {
		max = v.Max
	} else {
		max = subConst(v.Max, scaleExpr(t, 1))
	}
	return Interval{Min: zero, Max: max, Exact: u.Exact && v.Exact}
}

func provedLE(c int64, e ir.Expr) bool {
	imm, ok := e.(*ir.IntImm)
	return ok && c <= imm.Value
}
func provedLT(a ir.Expr, c ir.Expr) bool {
	imm, ok := a.(*ir.IntImm)
	cimm, cok := c.(*ir.IntImm)
	return ok && cok && imm.Value < cimm.Value
}
