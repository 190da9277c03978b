package lower

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

func evalAt(t *testing.T, e ir.Expr, x int64) int64 {
	t.Helper()
	substituted := simplify.Substitute(e, "x", &ir.IntImm{T: types.Int32, Value: x})
	folded := simplify.Simplify(substituted)
	imm, ok := folded.(*ir.IntImm)
	if !ok {
		t.Fatalf("expected a constant after substituting x=%d, got %#v", x, folded)
	}
	return imm.Value
}

func xVar() *ir.Variable { return &ir.Variable{T: types.Int32, Name: "x", Param: true} }
func ci(n int64) *ir.IntImm { return &ir.IntImm{T: types.Int32, Value: n} }

// Replicate border over domain [3,5].
func TestLowerClampReplicateSequence(t *testing.T) {
	lowered := LowerClampExpr(&ir.Clamp{ClampKind: ir.ClampReplicate, A: xVar(), Min: ci(3), Max: ci(5)})
	want := []int64{3, 3, 3, 3, 4, 5, 5, 5, 5, 5}
	for x := int64(0); x < 10; x++ {
		if got := evalAt(t, lowered, x); got != want[x] {
			t.Errorf("replicate(%d) = %d, want %d", x, got, want[x])
		}
	}
}

// Wrap border, domain width 6 at offset 4.
func TestLowerClampWrapMatchesModularArithmetic(t *testing.T) {
	lowered := LowerClampExpr(&ir.Clamp{ClampKind: ir.ClampWrap, A: xVar(), Min: ci(4), Max: ci(9)})
	for x := int64(0); x < 20; x++ {
		want := ((x-4)%6 + 6) % 6 + 4
		if got := evalAt(t, lowered, x); got != want {
			t.Errorf("wrap(%d) = %d, want %d", x, got, want)
		}
	}
}

// Reflect border, domain [30,50].
func TestLowerClampReflectFoldsAtBoundaries(t *testing.T) {
	lowered := LowerClampExpr(&ir.Clamp{ClampKind: ir.ClampReflect, A: xVar(), Min: ci(30), Max: ci(50)})
	for x := int64(0); x < 100; x++ {
		v := x
		for v < 30 || v > 50 {
			if v < 30 {
				v = 29 - v + 30
			}
			if v > 50 {
				v = 51 - v + 50
			}
		}
		if got := evalAt(t, lowered, x); got != v {
			t.Errorf("reflect(%d) = %d, want %d", x, got, v)
		}
	}
}

func TestLowerClampReflect101FoldsAtBoundaries(t *testing.T) {
	lowered := LowerClampExpr(&ir.Clamp{ClampKind: ir.ClampReflect101, A: xVar(), Min: ci(30), Max: ci(50)})
	for x := int64(0); x < 100; x++ {
		v := x
		for v < 30 || v > 50 {
			if v < 30 {
				v = 29 - v + 31
			}
			if v > 50 {
				v = 51 - v + 49
			}
		}
		if got := evalAt(t, lowered, x); got != v {
			t.Errorf("reflect101(%d) = %d, want %d", x, got, v)
		}
	}
}

// Clamp-lowered Tile, period 3.
func TestLowerClampTileFoldsAtBoundaries(t *testing.T) {
	lowered := LowerClampExpr(&ir.Clamp{ClampKind: ir.ClampTile, A: xVar(), Min: ci(30), Max: ci(50), P1: ci(3)})
	for x := int64(0); x < 100; x++ {
		v := x
		for v < 30 {
			v += 3
		}
		for v > 50 {
			v -= 3
		}
		if got := evalAt(t, lowered, x); got != v {
			t.Errorf("tile(%d) = %d, want %d", x, got, v)
		}
	}
}

func TestLowerClampNoneIsIdentity(t *testing.T) {
	lowered := LowerClampExpr(&ir.Clamp{ClampKind: ir.ClampNone, A: xVar(), Min: ci(0), Max: ci(10)})
	if _, ok := lowered.(*ir.Variable); !ok {
		t.Fatalf("expected the bare variable back, got %#v", lowered)
	}
}
