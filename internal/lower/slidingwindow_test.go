package lower

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/types"
)

func yVar() *ir.Variable    { return &ir.Variable{T: types.Int32, Name: "y"} }
func imm32(n int64) *ir.IntImm { return &ir.IntImm{T: types.Int32, Value: n} }

// g(x,y) realized with a dimension-1 window
// that slides forward with the consumer's y loop.
func TestSlideRealizeNarrowsDependentDimension(t *testing.T) {
	extentX := imm32(10)
	minY := ir.NewBinary(ir.Sub, yVar(), imm32(0)) // depends on y, e.g. min = y
	extentY := imm32(2)                            // reads rows [y, y+2), independent extent

	realize := &ir.Realize{
		Name: "g",
		T:    types.Int32,
		Bounds: []ir.Range{
			{Min: imm32(0), Extent: extentX},
			{Min: minY, Extent: extentY},
		},
		Body: &ir.AssertStmt{Cond: &ir.IntImm{T: types.BoolT, Value: 1}},
	}

	out, applied := SlideRealize(realize, "g", "y", imm32(0))
	if !applied {
		t.Fatalf("expected the slide to apply")
	}
	got, ok := out.(*ir.Realize)
	if !ok {
		t.Fatalf("expected *ir.Realize back, got %#v", out)
	}
	if _, ok := got.Bounds[1].Min.(*ir.Select); !ok {
		t.Fatalf("expected dimension 1's Min to become a Select, got %#v", got.Bounds[1].Min)
	}
	if got.Bounds[0].Min != realize.Bounds[0].Min {
		t.Fatalf("dimension 0 should be untouched since it never depended on y")
	}
}

func TestSlideRealizeSkipsWhenExtentDependsOnLoopVar(t *testing.T) {
	realize := &ir.Realize{
		Name: "g",
		T:    types.Int32,
		Bounds: []ir.Range{
			{Min: yVar(), Extent: yVar()},
		},
		Body: &ir.AssertStmt{Cond: &ir.IntImm{T: types.BoolT, Value: 1}},
	}
	out, applied := SlideRealize(realize, "g", "y", imm32(0))
	if applied {
		t.Fatalf("expected no slide when an extent depends on the loop variable")
	}
	if out != realize {
		t.Fatalf("expected the unchanged Realize back")
	}
}

func TestSlideRealizeSkipsWhenTwoDimensionsDepend(t *testing.T) {
	realize := &ir.Realize{
		Name: "g",
		T:    types.Int32,
		Bounds: []ir.Range{
			{Min: yVar(), Extent: imm32(2)},
			{Min: yVar(), Extent: imm32(2)},
		},
		Body: &ir.AssertStmt{Cond: &ir.IntImm{T: types.BoolT, Value: 1}},
	}
	out, applied := SlideRealize(realize, "g", "y", imm32(0))
	if applied {
		t.Fatalf("expected no slide when two dimensions depend on the loop variable")
	}
	if out != realize {
		t.Fatalf("expected the unchanged Realize back")
	}
}
