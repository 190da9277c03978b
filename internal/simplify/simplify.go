package simplify

import (
	"math"

	"stencil/internal/ir"
	"stencil/internal/types"
)

// maxIterations bounds the fixed-point loop Simplify/SimplifyStmt run: each
// pass can only shrink or canonicalize a finite tree, so non-termination
// would itself be a compiler bug (cerr.BugUnknownVariant-class), not a
// legitimate outcome; the cap just keeps a bug from hanging the compiler.
const maxIterations = 100

// Simplifier is the ir.Rewriter that implements the algebraic identities and
// constant folding rules: one method per node variant that can be folded or
// canonicalized, left at BaseRewriter's identity default everywhere else.
// It is driven by an ir.Mutator (plain, uncached — the simplifier runs once
// per pass invocation rather than being threaded through the scheduler's
// repeated-node-sharing use of CachedMutator) to a fixed point by Simplify/
// SimplifyStmt below.
type Simplifier struct {
	ir.BaseRewriter
}

// Simplify rewrites e to a semantically equivalent, more canonical form,
// iterating constant folding, algebraic identities and let-inlining to a
// fixed point.
func Simplify(e ir.Expr) ir.Expr {
	m := ir.NewMutator(&Simplifier{})
	for i := 0; i < maxIterations; i++ {
		next := m.MutateExpr(e)
		if ir.Equal(next, e) {
			return next
		}
		e = next
	}
	return e
}

// SimplifyStmt is Simplify's statement counterpart.
func SimplifyStmt(s ir.Stmt) ir.Stmt {
	m := ir.NewMutator(&Simplifier{})
	for i := 0; i < maxIterations; i++ {
		next := m.MutateStmt(s)
		if ir.EqualStmt(next, s) {
			return next
		}
		s = next
	}
	return s
}

// proved reports whether e is the literal boolean/int constant "true"
// (nonzero), the contract RewriteCompare/RewriteLogical/RewriteSelect use to
// decide whether a branch can be taken unconditionally.
func proved(e ir.Expr) bool {
	imm, ok := e.(*ir.IntImm)
	return ok && imm.Value != 0
}

// disproved is proved's complement: e is the literal constant "false"/0.
func disproved(e ir.Expr) bool {
	imm, ok := e.(*ir.IntImm)
	return ok && imm.Value == 0
}

func boolImm(v bool) *ir.IntImm {
	if v {
		return &ir.IntImm{T: types.BoolT, Value: 1}
	}
	return &ir.IntImm{T: types.BoolT, Value: 0}
}

// nopStmt is the canonical no-op used by passes (zero-extent loop removal,
// proved-true assert removal) that need to erase a statement entirely; the
// IR has no dedicated empty-statement node, so a trivially-true assert
// serves the role of "nothing happens here" while still being a valid Stmt
// everywhere one is required.
func nopStmt() ir.Stmt {
	return &ir.AssertStmt{Cond: boolImm(true), Message: ""}
}

// RewriteBinary folds constant operands and applies algebraic identities:
// identity/absorbing elements, self-cancellation, and moving a constant
// operand to the right of commutative operators so later rewrites (and the
// printer) see a canonical shape.
func (s *Simplifier) RewriteBinary(n *ir.Binary) ir.Expr {
	if v, ok := foldBinaryInt(n); ok {
		return v
	}
	if v, ok := foldBinaryFloat(n); ok {
		return v
	}
	if v, ok := distributeVector(n); ok {
		return v
	}

	switch n.Op {
	case ir.Add:
		if isZeroConst(n.A) {
			return n.B
		}
		if isZeroConst(n.B) {
			return n.A
		}
	case ir.Sub:
		if isZeroConst(n.B) {
			return n.A
		}
		if ir.Equal(n.A, n.B) {
			return zeroLike(n.T)
		}
	case ir.Mul:
		if isZeroConst(n.A) {
			return n.A
		}
		if isZeroConst(n.B) {
			return n.B
		}
		if isOneConst(n.A) {
			return n.B
		}
		if isOneConst(n.B) {
			return n.A
		}
	case ir.Div:
		if isOneConst(n.B) {
			return n.A
		}
	case ir.Min, ir.Max:
		if ir.Equal(n.A, n.B) {
			return n.A
		}
		if folded, ok := foldMinMaxInfinity(n); ok {
			return folded
		}
		if fused, ok := fuseNestedMinMax(n); ok {
			return fused
		}
	case ir.BitOr:
		if isZeroConst(n.A) {
			return n.B
		}
		if isZeroConst(n.B) {
			return n.A
		}
		if ir.Equal(n.A, n.B) {
			return n.A
		}
	case ir.BitAnd:
		if isZeroConst(n.A) {
			return n.A
		}
		if isZeroConst(n.B) {
			return n.B
		}
		if ir.Equal(n.A, n.B) {
			return n.A
		}
	case ir.BitXor:
		if isZeroConst(n.A) {
			return n.B
		}
		if isZeroConst(n.B) {
			return n.A
		}
		if ir.Equal(n.A, n.B) {
			return zeroLike(n.T)
		}
	}

	if isCommutative(n.Op) && isConst(n.A) && !isConst(n.B) {
		return &ir.Binary{Op: n.Op, A: n.B, B: n.A, T: n.T}
	}

	return n
}

func isCommutative(op ir.BinOp) bool {
	switch op {
	case ir.Add, ir.Mul, ir.Min, ir.Max, ir.BitAnd, ir.BitOr, ir.BitXor:
		return true
	default:
		return false
	}
}

func foldMinMaxInfinity(n *ir.Binary) (ir.Expr, bool) {
	inf, ok := n.B.(*ir.Infinity)
	other := n.A
	if !ok {
		inf, ok = n.A.(*ir.Infinity)
		other = n.B
	}
	if !ok {
		return nil, false
	}
	switch n.Op {
	case ir.Min:
		if inf.Sign > 0 {
			return other, true
		}
		return n, true
	case ir.Max:
		if inf.Sign < 0 {
			return other, true
		}
		return n, true
	}
	return nil, false
}

// fuseNestedMinMax collapses min/max(min/max(x,y), z) into the inner node
// when z is one of the inner node's own operands: min(min(x,y),x) and
// min(min(x,y),y) both reduce to min(x,y), and symmetrically for max and
// for the inner node appearing as n.B instead of n.A.
func fuseNestedMinMax(n *ir.Binary) (ir.Expr, bool) {
	if inner, ok := n.A.(*ir.Binary); ok && inner.Op == n.Op {
		if ir.Equal(inner.A, n.B) || ir.Equal(inner.B, n.B) {
			return inner, true
		}
	}
	if inner, ok := n.B.(*ir.Binary); ok && inner.Op == n.Op {
		if ir.Equal(inner.A, n.A) || ir.Equal(inner.B, n.A) {
			return inner, true
		}
	}
	return nil, false
}

// distributeVector pushes a scalar-shaped Add/Sub/Mul between a Ramp and/or
// Broadcast operand down into their lane-defining subexpressions, so later
// constant folding sees scalar arithmetic instead of a vector node it can't
// fold directly.
func distributeVector(n *ir.Binary) (ir.Expr, bool) {
	switch n.Op {
	case ir.Add, ir.Sub, ir.Mul:
	default:
		return nil, false
	}

	if ramp, ok := n.A.(*ir.Ramp); ok {
		if bc, ok := n.B.(*ir.Broadcast); ok {
			return distributeRampBroadcast(n.Op, ramp, bc, false)
		}
		if other, ok := n.B.(*ir.Ramp); ok && n.Op != ir.Mul {
			return distributeRampRamp(n.Op, ramp, other)
		}
	}
	if bc, ok := n.A.(*ir.Broadcast); ok {
		if ramp, ok := n.B.(*ir.Ramp); ok {
			return distributeRampBroadcast(n.Op, ramp, bc, true)
		}
		if other, ok := n.B.(*ir.Broadcast); ok {
			if bc.Lanes != other.Lanes {
				return nil, false
			}
			v := &ir.Binary{Op: n.Op, A: bc.Value, B: other.Value, T: bc.Value.ExprType()}
			return &ir.Broadcast{Value: v, Lanes: bc.Lanes}, true
		}
	}
	return nil, false
}

// distributeRampBroadcast distributes op between a Ramp and a Broadcast of
// the same lane count; swapped indicates the Broadcast was the left
// operand (n.A) so that Sub's non-commutativity is handled correctly.
func distributeRampBroadcast(op ir.BinOp, ramp *ir.Ramp, bc *ir.Broadcast, swapped bool) (ir.Expr, bool) {
	if ramp.Lanes != bc.Lanes {
		return nil, false
	}
	switch op {
	case ir.Add:
		base := &ir.Binary{Op: ir.Add, A: ramp.Base, B: bc.Value, T: ramp.Base.ExprType()}
		return &ir.Ramp{Base: base, Stride: ramp.Stride, Lanes: ramp.Lanes}, true
	case ir.Sub:
		if swapped {
			base := &ir.Binary{Op: ir.Sub, A: bc.Value, B: ramp.Base, T: ramp.Base.ExprType()}
			stride := &ir.Binary{Op: ir.Sub, A: zeroLike(ramp.Stride.ExprType()), B: ramp.Stride, T: ramp.Stride.ExprType()}
			return &ir.Ramp{Base: base, Stride: stride, Lanes: ramp.Lanes}, true
		}
		base := &ir.Binary{Op: ir.Sub, A: ramp.Base, B: bc.Value, T: ramp.Base.ExprType()}
		return &ir.Ramp{Base: base, Stride: ramp.Stride, Lanes: ramp.Lanes}, true
	case ir.Mul:
		base := &ir.Binary{Op: ir.Mul, A: ramp.Base, B: bc.Value, T: ramp.Base.ExprType()}
		stride := &ir.Binary{Op: ir.Mul, A: ramp.Stride, B: bc.Value, T: ramp.Stride.ExprType()}
		return &ir.Ramp{Base: base, Stride: stride, Lanes: ramp.Lanes}, true
	}
	return nil, false
}

// distributeRampRamp fuses an elementwise Add/Sub of two same-length Ramps
// into a single Ramp over the summed/differenced base and stride.
func distributeRampRamp(op ir.BinOp, a, b *ir.Ramp) (ir.Expr, bool) {
	if a.Lanes != b.Lanes {
		return nil, false
	}
	base := &ir.Binary{Op: op, A: a.Base, B: b.Base, T: a.Base.ExprType()}
	stride := &ir.Binary{Op: op, A: a.Stride, B: b.Stride, T: a.Stride.ExprType()}
	return &ir.Ramp{Base: base, Stride: stride, Lanes: a.Lanes}, true
}

func foldBinaryInt(n *ir.Binary) (ir.Expr, bool) {
	a, aok := n.A.(*ir.IntImm)
	b, bok := n.B.(*ir.IntImm)
	if !aok || !bok {
		return nil, false
	}
	switch n.Op {
	case ir.Add:
		return &ir.IntImm{T: n.T, Value: a.Value + b.Value}, true
	case ir.Sub:
		return &ir.IntImm{T: n.T, Value: a.Value - b.Value}, true
	case ir.Mul:
		return &ir.IntImm{T: n.T, Value: a.Value * b.Value}, true
	case ir.Div:
		if b.Value == 0 {
			return nil, false
		}
		return &ir.IntImm{T: n.T, Value: floorDiv(a.Value, b.Value)}, true
	case ir.Mod:
		if b.Value == 0 {
			return nil, false
		}
		return &ir.IntImm{T: n.T, Value: floorMod(a.Value, b.Value)}, true
	case ir.Min:
		if a.Value < b.Value {
			return a, true
		}
		return b, true
	case ir.Max:
		if a.Value > b.Value {
			return a, true
		}
		return b, true
	case ir.BitAnd:
		return &ir.IntImm{T: n.T, Value: a.Value & b.Value}, true
	case ir.BitOr:
		return &ir.IntImm{T: n.T, Value: a.Value | b.Value}, true
	case ir.BitXor:
		return &ir.IntImm{T: n.T, Value: a.Value ^ b.Value}, true
	}
	return nil, false
}

func foldBinaryFloat(n *ir.Binary) (ir.Expr, bool) {
	a, aok := n.A.(*ir.FloatImm)
	b, bok := n.B.(*ir.FloatImm)
	if !aok || !bok {
		return nil, false
	}
	switch n.Op {
	case ir.Add:
		return &ir.FloatImm{T: n.T, Value: a.Value + b.Value}, true
	case ir.Sub:
		return &ir.FloatImm{T: n.T, Value: a.Value - b.Value}, true
	case ir.Mul:
		return &ir.FloatImm{T: n.T, Value: a.Value * b.Value}, true
	case ir.Div:
		if b.Value == 0 {
			return nil, false
		}
		return &ir.FloatImm{T: n.T, Value: a.Value / b.Value}, true
	case ir.Mod:
		if b.Value == 0 {
			return nil, false
		}
		return &ir.FloatImm{T: n.T, Value: math.Mod(a.Value, b.Value)}, true
	case ir.Min:
		return &ir.FloatImm{T: n.T, Value: math.Min(a.Value, b.Value)}, true
	case ir.Max:
		return &ir.FloatImm{T: n.T, Value: math.Max(a.Value, b.Value)}, true
	}
	return nil, false
}

func isConst(e ir.Expr) bool {
	switch e.(type) {
	case *ir.IntImm, *ir.FloatImm:
		return true
	default:
		return false
	}
}

func isZeroConst(e ir.Expr) bool {
	switch v := e.(type) {
	case *ir.IntImm:
		return v.Value == 0
	case *ir.FloatImm:
		return v.Value == 0
	default:
		return false
	}
}

func isOneConst(e ir.Expr) bool {
	switch v := e.(type) {
	case *ir.IntImm:
		return v.Value == 1
	case *ir.FloatImm:
		return v.Value == 1
	default:
		return false
	}
}

func zeroLike(t types.Type) ir.Expr {
	if t.IsFloat() {
		return &ir.FloatImm{T: t, Value: 0}
	}
	return &ir.IntImm{T: t, Value: 0}
}

// RewriteCompare folds constant comparisons and the self-comparison
// identities (x==x, x!=x, ...) that hold regardless of x's value.
func (s *Simplifier) RewriteCompare(n *ir.Compare) ir.Expr {
	if a, ok := n.A.(*ir.IntImm); ok {
		if b, ok := n.B.(*ir.IntImm); ok {
			return boolImm(compareInt(n.Op, a.Value, b.Value))
		}
	}
	if a, ok := n.A.(*ir.FloatImm); ok {
		if b, ok := n.B.(*ir.FloatImm); ok {
			return boolImm(compareFloat(n.Op, a.Value, b.Value))
		}
	}
	if ir.Equal(n.A, n.B) {
		switch n.Op {
		case ir.EQ, ir.LE, ir.GE:
			return boolImm(true)
		case ir.NE, ir.LT, ir.GT:
			return boolImm(false)
		}
	}
	if a, ok := n.A.(*ir.Broadcast); ok {
		if b, ok := n.B.(*ir.Broadcast); ok && a.Lanes == b.Lanes {
			cmp := &ir.Compare{Op: n.Op, A: a.Value, B: b.Value, T: types.BoolT}
			return &ir.Broadcast{Value: cmp, Lanes: a.Lanes}
		}
	}
	if a, ok := n.A.(*ir.Ramp); ok {
		if b, ok := n.B.(*ir.Ramp); ok && a.Lanes == b.Lanes && ir.Equal(a.Stride, b.Stride) {
			cmp := &ir.Compare{Op: n.Op, A: a.Base, B: b.Base, T: types.BoolT}
			return &ir.Broadcast{Value: cmp, Lanes: a.Lanes}
		}
	}
	return n
}

func compareInt(op ir.CompareOp, a, b int64) bool {
	switch op {
	case ir.EQ:
		return a == b
	case ir.NE:
		return a != b
	case ir.LT:
		return a < b
	case ir.LE:
		return a <= b
	case ir.GT:
		return a > b
	case ir.GE:
		return a >= b
	}
	return false
}

func compareFloat(op ir.CompareOp, a, b float64) bool {
	switch op {
	case ir.EQ:
		return a == b
	case ir.NE:
		return a != b
	case ir.LT:
		return a < b
	case ir.LE:
		return a <= b
	case ir.GT:
		return a > b
	case ir.GE:
		return a >= b
	}
	return false
}

// RewriteLogical folds constant operands, short-circuits on an
// absorbing/identity element, and collapses x&&x / x||x.
func (s *Simplifier) RewriteLogical(n *ir.Logical) ir.Expr {
	switch n.Op {
	case ir.LogicalAnd:
		if disproved(n.A) || disproved(n.B) {
			return boolImm(false)
		}
		if proved(n.A) {
			return n.B
		}
		if proved(n.B) {
			return n.A
		}
	case ir.LogicalOr:
		if proved(n.A) || proved(n.B) {
			return boolImm(true)
		}
		if disproved(n.A) {
			return n.B
		}
		if disproved(n.B) {
			return n.A
		}
	}
	if ir.Equal(n.A, n.B) {
		return n.A
	}
	return n
}

// RewriteNot folds a constant operand and cancels a double negation.
func (s *Simplifier) RewriteNot(n *ir.Not) ir.Expr {
	if proved(n.Value) {
		return boolImm(false)
	}
	if disproved(n.Value) {
		return boolImm(true)
	}
	if inner, ok := n.Value.(*ir.Not); ok {
		return inner.Value
	}
	return n
}

// RewriteSelect resolves a constant condition and collapses a select whose
// branches are equal.
func (s *Simplifier) RewriteSelect(n *ir.Select) ir.Expr {
	if proved(n.Cond) {
		return n.TrueVal
	}
	if disproved(n.Cond) {
		return n.FalseVal
	}
	if ir.Equal(n.TrueVal, n.FalseVal) {
		return n.TrueVal
	}
	return n
}

// RewriteRamp collapses a zero-stride Ramp into a Broadcast of its base,
// since every lane then carries the same value.
func (s *Simplifier) RewriteRamp(n *ir.Ramp) ir.Expr {
	if isZeroConst(n.Stride) {
		return &ir.Broadcast{Value: n.Base, Lanes: n.Lanes}
	}
	return n
}

// RewriteBroadcast drops a single-lane Broadcast, since it carries no more
// information than its scalar Value.
func (s *Simplifier) RewriteBroadcast(n *ir.Broadcast) ir.Expr {
	if n.Lanes == 1 {
		return n.Value
	}
	return n
}

// RewriteCast drops a cast to the value's own type and folds a cast of a
// constant.
func (s *Simplifier) RewriteCast(n *ir.Cast) ir.Expr {
	if n.Value.ExprType().Equal(n.To) {
		return n.Value
	}
	switch v := n.Value.(type) {
	case *ir.IntImm:
		if n.To.IsFloat() {
			return &ir.FloatImm{T: n.To, Value: float64(v.Value)}
		}
		return &ir.IntImm{T: n.To, Value: v.Value}
	case *ir.FloatImm:
		if n.To.IsInt() || n.To.IsBool() {
			return &ir.IntImm{T: n.To, Value: int64(v.Value)}
		}
		return &ir.FloatImm{T: n.To, Value: v.Value}
	}
	return n
}

// RewriteLet inlines the binding into its body when the value is cheap to
// duplicate (a literal or a bare variable reference) or is referenced at
// most once; otherwise the binding is left in place.
func (s *Simplifier) RewriteLet(n *ir.Let) ir.Expr {
	switch n.Value.(type) {
	case *ir.IntImm, *ir.FloatImm, *ir.Variable:
		return Substitute(n.Body, n.Name, n.Value)
	}
	if countUses(n.Body, n.Name) <= 1 {
		return Substitute(n.Body, n.Name, n.Value)
	}
	return n
}

// RewriteLetStmt is RewriteLet's statement counterpart.
func (s *Simplifier) RewriteLetStmt(n *ir.LetStmt) ir.Stmt {
	switch n.Value.(type) {
	case *ir.IntImm, *ir.FloatImm, *ir.Variable:
		return SubstituteStmt(n.Body, n.Name, n.Value)
	}
	if countUsesStmt(n.Body, n.Name) <= 1 {
		return SubstituteStmt(n.Body, n.Name, n.Value)
	}
	return n
}

// RewriteAssertStmt drops a proved-true assertion.
func (s *Simplifier) RewriteAssertStmt(n *ir.AssertStmt) ir.Stmt {
	if proved(n.Cond) {
		return nopStmt()
	}
	return n
}

// RewriteFor collapses a single-trip loop into a let binding and drops a
// loop whose extent is proved to be zero or negative.
func (s *Simplifier) RewriteFor(n *ir.For) ir.Stmt {
	if ext, ok := n.Extent.(*ir.IntImm); ok {
		if ext.Value <= 0 {
			return nopStmt()
		}
		if ext.Value == 1 {
			return &ir.LetStmt{Name: n.Name, Value: n.Min, Body: n.Body}
		}
	}
	return n
}

// RewriteBlock unwraps a First that is itself a Block with no Rest (other
// left-nested Blocks are left as they are) and drops a no-op First
// statement (the canonical shape RewriteAssertStmt/RewriteFor leave behind
// once their condition/extent has been resolved away).
func (s *Simplifier) RewriteBlock(n *ir.Block) ir.Stmt {
	if inner, ok := n.First.(*ir.Block); ok && inner.Rest == nil {
		return &ir.Block{First: inner.First, Rest: n.Rest}
	}
	if isNop(n.First) {
		if n.Rest == nil {
			return nopStmt()
		}
		return n.Rest
	}
	return n
}

func isNop(s ir.Stmt) bool {
	a, ok := s.(*ir.AssertStmt)
	return ok && a.Message == "" && proved(a.Cond)
}
