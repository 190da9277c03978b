package bounds

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/types"
)

func i32(v int64) *ir.IntImm { return &ir.IntImm{T: types.Int32, Value: v} }

func asInt(t *testing.T, e ir.Expr) int64 {
	t.Helper()
	imm, ok := e.(*ir.IntImm)
	if !ok {
		t.Fatalf("expected *ir.IntImm, got %#v", e)
	}
	return imm.Value
}

func TestZoomUnzoomAdjoint(t *testing.T) {
	// zoom(I,b)/b contains I back out for positive b, per InfInterval.cpp.
	i := Interval{Min: i32(3), Max: i32(9)}
	z := Zoom(i, 4)
	if got := asInt(t, z.Min); got != 12 {
		t.Fatalf("zoom min = %d, want 12", got)
	}
	if got := asInt(t, z.Max); got != 39 {
		t.Fatalf("zoom max = %d, want 39", got)
	}
	back := Unzoom(z, 4)
	if got := asInt(t, back.Min); got != i.Min.(*ir.IntImm).Value {
		t.Fatalf("unzoom(zoom(I)) min = %d, want %d", got, 3)
	}
	if got := asInt(t, back.Max); got != 9 {
		t.Fatalf("unzoom(zoom(I)) max = %d, want 9", got)
	}
}

func TestDecimateContainment(t *testing.T) {
	// decimate(I,b)*b must stay inside I: ceil(lo/b)*b >= lo, floor(hi/b)*b <= hi.
	i := Interval{Min: i32(5), Max: i32(17)}
	d := Decimate(i, 4)
	lo := asInt(t, d.Min) * 4
	hi := asInt(t, d.Max) * 4
	if lo < 5 {
		t.Fatalf("decimate(I,4).min*4 = %d, must be >= 5", lo)
	}
	if hi > 17 {
		t.Fatalf("decimate(I,4).max*4 = %d, must be <= 17", hi)
	}
}

func TestNegativeScaleFlipsInterval(t *testing.T) {
	i := Interval{Min: i32(2), Max: i32(6)}
	got := MulConst(i, -3)
	if asInt(t, got.Min) != -18 || asInt(t, got.Max) != -6 {
		t.Fatalf("MulConst(I,-3) = [%v,%v], want [-18,-6]", got.Min, got.Max)
	}
}

func TestAddIIPreservesInfinity(t *testing.T) {
	i := Everything(types.Int32)
	got := AddII(i, Single(i32(5)))
	if _, ok := got.Min.(*ir.Infinity); !ok {
		t.Fatalf("expected -inf to survive a finite shift, got %#v", got.Min)
	}
	if _, ok := got.Max.(*ir.Infinity); !ok {
		t.Fatalf("expected +inf to survive a finite shift, got %#v", got.Max)
	}
}

func TestDivIIStraddlesZeroIsUnbounded(t *testing.T) {
	u := Interval{Min: i32(1), Max: i32(10)}
	v := Interval{Min: i32(-2), Max: i32(2)}
	got := DivII(u, v)
	if _, ok := got.Min.(*ir.Infinity); !ok {
		t.Fatalf("expected unbounded result dividing by a zero-straddling interval, got %#v", got)
	}
}

func TestModIINoOpWhenAlreadyInRange(t *testing.T) {
	u := Interval{Min: i32(0), Max: i32(3)}
	v := Interval{Min: i32(8), Max: i32(8)}
	got := ModII(u, v)
	if asInt(t, got.Min) != 0 || asInt(t, got.Max) != 3 {
		t.Fatalf("ModII should be a no-op here, got [%v,%v]", got.Min, got.Max)
	}
}

func TestExprIntervalOfLoopVariable(t *testing.T) {
	scope := NewScope().Push("x", Interval{Min: i32(0), Max: i32(9)})
	e := ir.NewBinary(ir.Add, &ir.Variable{T: types.Int32, Name: "x"}, i32(1))
	got := ExprInterval(e, scope, nil)
	if asInt(t, got.Min) != 1 || asInt(t, got.Max) != 10 {
		t.Fatalf("interval of x+1 over x in [0,9] = [%v,%v], want [1,10]", got.Min, got.Max)
	}
}

func TestExprIntervalClampIsExactlyItsOwnRange(t *testing.T) {
	c := &ir.Clamp{ClampKind: ir.ClampReplicate, A: &ir.Variable{T: types.Int32, Name: "x"}, Min: i32(0), Max: i32(99)}
	got := ExprInterval(c, NewScope(), nil)
	if asInt(t, got.Min) != 0 || asInt(t, got.Max) != 99 {
		t.Fatalf("clamp interval = [%v,%v], want [0,99]", got.Min, got.Max)
	}
	if !got.Exact {
		t.Fatalf("clamp interval should be exact")
	}
}

func TestRegionsTouchedOverLoop(t *testing.T) {
	// for x in [0,10): out[x] = in[x+1]
	body := &ir.For{
		Name:   "x",
		Min:    i32(0),
		Extent: i32(10),
		Body: &ir.Provide{
			Name:  "out",
			Value: &ir.Load{T: types.Int32, Name: "in", Index: ir.NewBinary(ir.Add, &ir.Variable{T: types.Int32, Name: "x"}, i32(1))},
			Args:  []ir.Expr{&ir.Variable{T: types.Int32, Name: "x"}},
		},
	}
	called := RegionCalled(body, "in", nil)
	if len(called) != 1 {
		t.Fatalf("expected one dimension of called region, got %d", len(called))
	}
	if asInt(t, called[0].Min) != 1 || asInt(t, called[0].Max) != 10 {
		t.Fatalf("in's called region = [%v,%v], want [1,10]", called[0].Min, called[0].Max)
	}
	provided := RegionProvided(body, "out", nil)
	if len(provided) != 1 {
		t.Fatalf("expected one dimension of provided region, got %d", len(provided))
	}
	if asInt(t, provided[0].Min) != 0 || asInt(t, provided[0].Max) != 9 {
		t.Fatalf("out's provided region = [%v,%v], want [0,9]", provided[0].Min, provided[0].Max)
	}
}

func TestBoundsSimplifyDropsRedundantClamp(t *testing.T) {
	// for x in [0,10): out[x] = clamp(x, 0, 9)  -- clamp is provably a no-op
	body := &ir.For{
		Name:   "x",
		Min:    i32(0),
		Extent: i32(10),
		Body: &ir.Provide{
			Name:  "out",
			Value: &ir.Clamp{ClampKind: ir.ClampReplicate, A: &ir.Variable{T: types.Int32, Name: "x"}, Min: i32(0), Max: i32(9)},
			Args:  []ir.Expr{&ir.Variable{T: types.Int32, Name: "x"}},
		},
	}
	got := BoundsSimplifyStmt(body, nil)
	forNode, ok := got.(*ir.For)
	if !ok {
		t.Fatalf("expected *ir.For at top, got %#v", got)
	}
	provide, ok := forNode.Body.(*ir.Provide)
	if !ok {
		t.Fatalf("expected *ir.Provide in loop body, got %#v", forNode.Body)
	}
	if _, stillClamp := provide.Value.(*ir.Clamp); stillClamp {
		t.Fatalf("expected redundant clamp to be removed, got %#v", provide.Value)
	}
	v, ok := provide.Value.(*ir.Variable)
	if !ok || v.Name != "x" {
		t.Fatalf("expected clamp to collapse to bare variable x, got %#v", provide.Value)
	}
}

func TestInferValidDomainNarrowsFromCallee(t *testing.T) {
	// blur(x) = src(x-1) + src(x+1), with src's own Valid domain [0,99].
	callees := map[string]Domain{
		"src": {Interval{Min: i32(0), Max: i32(99), Exact: true}},
	}
	body := &ir.LetStmt{
		Name: "unused",
		Value: ir.NewBinary(ir.Add,
			&ir.Call{T: types.Int32, Name: "src", CallType: ir.CallPipeline, Args: []ir.Expr{ir.NewBinary(ir.Sub, &ir.Variable{T: types.Int32, Name: "x"}, i32(1))}},
			&ir.Call{T: types.Int32, Name: "src", CallType: ir.CallPipeline, Args: []ir.Expr{ir.NewBinary(ir.Add, &ir.Variable{T: types.Int32, Name: "x"}, i32(1))}},
		),
		Body: &ir.AssertStmt{Cond: &ir.IntImm{T: types.BoolT, Value: 1}},
	}
	dom := InferValidDomain([]string{"x"}, body, callees)
	if len(dom) != 1 {
		t.Fatalf("expected one dimension, got %d", len(dom))
	}
	if asInt(t, dom[0].Min) != 1 || asInt(t, dom[0].Max) != 98 {
		t.Fatalf("blur's inferred valid domain = [%v,%v], want [1,98]", dom[0].Min, dom[0].Max)
	}
}
