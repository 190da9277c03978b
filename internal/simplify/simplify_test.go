package simplify

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/types"
)

func i32(v int64) *ir.IntImm { return &ir.IntImm{T: types.Int32, Value: v} }

func TestConstantFoldingArithmetic(t *testing.T) {
	e := ir.NewBinary(ir.Add, i32(2), i32(3))
	got := Simplify(e)
	imm, ok := got.(*ir.IntImm)
	if !ok || imm.Value != 5 {
		t.Fatalf("expected constant-folded 5, got %#v", got)
	}
}

func TestFloorDivisionContract(t *testing.T) {
	// -7 / 2 floors to -4, not the truncating -3 Go's "/" would give.
	e := ir.NewBinary(ir.Div, i32(-7), i32(2))
	got := Simplify(e)
	imm, ok := got.(*ir.IntImm)
	if !ok || imm.Value != -4 {
		t.Fatalf("expected floor-divided -4, got %#v", got)
	}
}

func TestFloorModulusSignMatchesDivisor(t *testing.T) {
	e := ir.NewBinary(ir.Mod, i32(-7), i32(2))
	got := Simplify(e)
	imm, ok := got.(*ir.IntImm)
	if !ok || imm.Value != 1 {
		t.Fatalf("expected remainder with divisor's sign (1), got %#v", got)
	}
}

func TestAdditiveIdentityElimination(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	e := ir.NewBinary(ir.Add, x, i32(0))
	got := Simplify(e)
	if got != x {
		t.Fatalf("expected x+0 to simplify to x itself, got %#v", got)
	}
}

func TestSelfSubtractionIsZero(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	e := ir.NewBinary(ir.Sub, x, x)
	got := Simplify(e)
	imm, ok := got.(*ir.IntImm)
	if !ok || imm.Value != 0 {
		t.Fatalf("expected x-x to simplify to 0, got %#v", got)
	}
}

func TestSelectWithConstantCondition(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	y := &ir.Variable{Name: "y", T: types.Int32}
	sel := ir.NewSelect(boolImm(true), x, y)
	got := Simplify(sel)
	if got != x {
		t.Fatalf("expected select(true, x, y) to simplify to x, got %#v", got)
	}
}

func TestCompareSelfIsConstant(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	eq := ir.NewCompare(ir.EQ, x, x)
	got := Simplify(eq)
	imm, ok := got.(*ir.IntImm)
	if !ok || imm.Value != 1 {
		t.Fatalf("expected x==x to simplify to true, got %#v", got)
	}
}

func TestLetInliningOfLiteral(t *testing.T) {
	body := ir.NewBinary(ir.Add, &ir.Variable{Name: "x", T: types.Int32}, i32(1))
	let := &ir.Let{Name: "x", Value: i32(41), Body: body}
	got := Simplify(let)
	imm, ok := got.(*ir.IntImm)
	if !ok || imm.Value != 42 {
		t.Fatalf("expected let x=41 in x+1 to fully inline and fold to 42, got %#v", got)
	}
}

func TestLetPreservedWhenUsedMoreThanOnceAndExpensive(t *testing.T) {
	expensiveValue := ir.NewBinary(ir.Mul, &ir.Variable{Name: "n", T: types.Int32}, &ir.Variable{Name: "n", T: types.Int32})
	xRef := &ir.Variable{Name: "x", T: types.Int32}
	body := ir.NewBinary(ir.Add, xRef, xRef)
	let := &ir.Let{Name: "x", Value: expensiveValue, Body: body}
	got := Simplify(let)
	if _, ok := got.(*ir.Let); !ok {
		t.Fatalf("expected a multiply-used, non-trivial let binding to survive simplification, got %#v", got)
	}
}

func TestAssertTrueRemoved(t *testing.T) {
	assertion := &ir.AssertStmt{Cond: boolImm(true), Message: "unreachable"}
	rest := &ir.Store{Name: "out", Value: i32(1), Index: i32(0)}
	block := &ir.Block{First: assertion, Rest: rest}
	got := SimplifyStmt(block)
	if got != rest {
		t.Fatalf("expected the proved-true assert to be elided, got %#v", got)
	}
}

func TestSingleTripForBecomesLet(t *testing.T) {
	body := &ir.Store{Name: "out", Value: &ir.Variable{Name: "i", T: types.Int32}, Index: i32(0)}
	loop := &ir.For{Name: "i", Min: i32(7), Extent: i32(1), Body: body}
	got := SimplifyStmt(loop)
	store, ok := got.(*ir.Store)
	if !ok {
		t.Fatalf("expected the single-trip loop to collapse to its substituted body, got %#v", got)
	}
	imm, ok := store.Value.(*ir.IntImm)
	if !ok || imm.Value != 7 {
		t.Fatalf("expected the loop index substituted with its bound 7, got %#v", store.Value)
	}
}

func TestZeroExtentForRemoved(t *testing.T) {
	body := &ir.Store{Name: "out", Value: i32(1), Index: i32(0)}
	loop := &ir.For{Name: "i", Min: i32(0), Extent: i32(0), Body: body}
	rest := &ir.Store{Name: "out2", Value: i32(2), Index: i32(0)}
	block := &ir.Block{First: loop, Rest: rest}
	got := SimplifyStmt(block)
	if got != rest {
		t.Fatalf("expected the zero-extent loop to be elided from the block, got %#v", got)
	}
}

func TestNestedMinFusesOnSharedOperand(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	y := &ir.Variable{Name: "y", T: types.Int32}
	inner := ir.NewBinary(ir.Min, x, y)
	e := ir.NewBinary(ir.Min, inner, x)
	got := Simplify(e)
	if !ir.Equal(got, inner) {
		t.Fatalf("expected min(min(x,y),x) to fuse to min(x,y), got %#v", got)
	}
}

func TestNestedMaxFusesWhenSharedOperandIsOuter(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	y := &ir.Variable{Name: "y", T: types.Int32}
	inner := ir.NewBinary(ir.Max, x, y)
	e := ir.NewBinary(ir.Max, y, inner)
	got := Simplify(e)
	if !ir.Equal(got, inner) {
		t.Fatalf("expected max(y,max(x,y)) to fuse to max(x,y), got %#v", got)
	}
}

func TestRampPlusBroadcastDistributesIntoBase(t *testing.T) {
	ramp := &ir.Ramp{Base: i32(5), Stride: i32(1), Lanes: 4}
	e := &ir.Binary{Op: ir.Add, A: ramp, B: &ir.Broadcast{Value: i32(10), Lanes: 4}, T: ramp.ExprType()}
	got := Simplify(e)
	r, ok := got.(*ir.Ramp)
	if !ok {
		t.Fatalf("expected ramp+broadcast to distribute into a Ramp, got %#v", got)
	}
	imm, ok := r.Base.(*ir.IntImm)
	if !ok || imm.Value != 15 {
		t.Fatalf("expected base 5 folded with +10 to 15, got %#v", r.Base)
	}
}

func TestRampTimesBroadcastScalesStride(t *testing.T) {
	ramp := &ir.Ramp{Base: i32(0), Stride: i32(1), Lanes: 4}
	e := &ir.Binary{Op: ir.Mul, A: ramp, B: &ir.Broadcast{Value: i32(2), Lanes: 4}, T: ramp.ExprType()}
	got := Simplify(e)
	r, ok := got.(*ir.Ramp)
	if !ok {
		t.Fatalf("expected ramp*broadcast to distribute into a Ramp, got %#v", got)
	}
	stride, ok := r.Stride.(*ir.IntImm)
	if !ok || stride.Value != 2 {
		t.Fatalf("expected stride scaled to 2, got %#v", r.Stride)
	}
}

func TestZeroStrideRampCollapsesToBroadcast(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	ramp := &ir.Ramp{Base: x, Stride: i32(0), Lanes: 4}
	got := Simplify(ramp)
	bc, ok := got.(*ir.Broadcast)
	if !ok || bc.Value != x || bc.Lanes != 4 {
		t.Fatalf("expected zero-stride ramp to collapse to broadcast(x), got %#v", got)
	}
}

func TestCompareOverBroadcastsReducesToScalarCompareBroadcast(t *testing.T) {
	a := &ir.Variable{Name: "a", T: types.Int32}
	b := &ir.Variable{Name: "b", T: types.Int32}
	cmp := &ir.Compare{Op: ir.LT, A: &ir.Broadcast{Value: a, Lanes: 8}, B: &ir.Broadcast{Value: b, Lanes: 8}, T: types.BoolT.WithLanes(8)}
	got := Simplify(cmp)
	bc, ok := got.(*ir.Broadcast)
	if !ok {
		t.Fatalf("expected compare(broadcast,broadcast) to reduce to a broadcast, got %#v", got)
	}
	inner, ok := bc.Value.(*ir.Compare)
	if !ok || inner.A != a || inner.B != b {
		t.Fatalf("expected the broadcast to wrap a scalar a<b compare, got %#v", bc.Value)
	}
}

func TestCompareOverSameStrideRampsIgnoresStride(t *testing.T) {
	baseA := i32(3)
	baseB := i32(5)
	cmp := &ir.Compare{
		Op: ir.LT,
		A:  &ir.Ramp{Base: baseA, Stride: i32(2), Lanes: 4},
		B:  &ir.Ramp{Base: baseB, Stride: i32(2), Lanes: 4},
		T:  types.BoolT.WithLanes(4),
	}
	got := Simplify(cmp)
	bc, ok := got.(*ir.Broadcast)
	if !ok {
		t.Fatalf("expected a shared-stride ramp compare to reduce to a broadcast, got %#v", got)
	}
	imm, ok := bc.Value.(*ir.IntImm)
	if !ok || imm.Value != 1 {
		t.Fatalf("expected 3<5 to resolve true regardless of shared stride, got %#v", bc.Value)
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	x := &ir.Variable{Name: "x", T: types.Int32}
	e := ir.NewBinary(ir.Add, ir.NewBinary(ir.Mul, x, i32(1)), i32(0))
	once := Simplify(e)
	twice := Simplify(once)
	if !ir.Equal(once, twice) {
		t.Fatalf("expected simplification to be idempotent, got %#v then %#v", once, twice)
	}
}
