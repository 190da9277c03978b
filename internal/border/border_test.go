package border

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/lower"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

func ci(n int64) *ir.IntImm { return &ir.IntImm{T: types.Int32, Value: n} }
func xVar() *ir.Variable    { return &ir.Variable{T: types.Int32, Name: "x", Param: true} }

func evalAt(t *testing.T, e ir.Expr, x int64) int64 {
	t.Helper()
	lowered := lower.LowerClampExpr(e)
	substituted := simplify.Substitute(lowered, "x", ci(x))
	folded := simplify.Simplify(substituted)
	imm, ok := folded.(*ir.IntImm)
	if !ok {
		t.Fatalf("expected a constant after substituting x=%d, got %#v", x, folded)
	}
	return imm.Value
}

func TestReplicateIndexExprClampsToDomain(t *testing.T) {
	b := Border{Kind: Replicate}
	idx := b.IndexExpr(0, xVar(), ci(3), ci(5))
	want := []int64{3, 3, 3, 3, 4, 5, 5, 5, 5, 5}
	for x := int64(0); x < 10; x++ {
		if got := evalAt(t, idx, x); got != want[x] {
			t.Errorf("replicate(%d) = %d, want %d", x, got, want[x])
		}
	}
}

func TestConstantValueExprSubstitutesOutsideDomain(t *testing.T) {
	b := Border{Kind: Constant, Constant: ci(-1)}
	idx := b.IndexExpr(0, xVar(), ci(3), ci(5))
	val := b.ValueExpr(0, idx, xVar(), ci(3), ci(5))

	for x := int64(0); x < 10; x++ {
		got := evalAt(t, val, x)
		if x < 3 || x > 5 {
			if got != -1 {
				t.Errorf("constant(%d) = %d, want fill value -1", x, got)
			}
		} else if got != x {
			t.Errorf("constant(%d) = %d, want passthrough %d", x, got, x)
		}
	}
}

func TestOffsetDimOverGeneralDimOneWraps(t *testing.T) {
	g := General{Dims: []Border{{Kind: Replicate}, {Kind: Wrap}}}
	offset := OffsetDim{Base: g.at(1), Offset: 0}
	if offset.Base.Kind != Wrap {
		t.Fatalf("expected General.at(1) to be the wrap border")
	}

	wrapped := offset.IndexExpr(0, xVar(), ci(4), ci(9))
	for x := int64(0); x < 20; x++ {
		want := ((x-4)%6+6)%6 + 4
		if got := evalAt(t, wrapped, x); got != want {
			t.Errorf("offset wrap(%d) = %d, want %d", x, got, want)
		}
	}
}
