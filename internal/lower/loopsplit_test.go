package lower

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/types"
)

// for (x, 0, 1280) body becomes
// for (0,5) body; for (5,1270) body'; for (1275,5) body.
func TestLoopSplitIdentityPartitionsRange(t *testing.T) {
	body := &ir.Store{Name: "out", Value: &ir.Variable{T: types.Int32, Name: "x"}, Index: &ir.Variable{T: types.Int32, Name: "x"}}
	f := &ir.For{Name: "x", Min: imm32(0), Extent: imm32(1280), ForType: ir.Serial, Body: body}

	out := LoopSplit(f, 5, nil)
	block, ok := out.(*ir.Block)
	if !ok {
		t.Fatalf("expected the loop to split into a Block chain, got %#v", out)
	}
	before, ok := block.First.(*ir.For)
	if !ok || before.SplitInfo.Fragment != ir.FragmentBefore {
		t.Fatalf("expected the before fragment first, got %#v", block.First)
	}
	if got := asInt32(t, before.Extent); got != 5 {
		t.Fatalf("before extent = %d, want 5", got)
	}

	rest, ok := block.Rest.(*ir.Block)
	if !ok {
		t.Fatalf("expected a nested Block for main/after, got %#v", block.Rest)
	}
	main, ok := rest.First.(*ir.For)
	if !ok || main.SplitInfo.Fragment != ir.FragmentMain {
		t.Fatalf("expected the main fragment second, got %#v", rest.First)
	}
	if got := asInt32(t, main.Min); got != 5 {
		t.Fatalf("main min = %d, want 5", got)
	}
	if got := asInt32(t, main.Extent); got != 1270 {
		t.Fatalf("main extent = %d, want 1270", got)
	}

	after, ok := rest.Rest.(*ir.For)
	if !ok || after.SplitInfo.Fragment != ir.FragmentAfter {
		t.Fatalf("expected the after fragment last, got %#v", rest.Rest)
	}
	if got := asInt32(t, after.Min); got != 1275 {
		t.Fatalf("after min = %d, want 1275", got)
	}
	if got := asInt32(t, after.Extent); got != 5 {
		t.Fatalf("after extent = %d, want 5", got)
	}
}

func TestLoopSplitRevertsWhenMainFragmentKeepsASelect(t *testing.T) {
	cond := ir.NewCompare(ir.LT, &ir.Variable{T: types.Int32, Name: "w"}, imm32(0))
	body := &ir.Store{
		Name:  "out",
		Value: ir.NewSelect(cond, imm32(0), &ir.Variable{T: types.Int32, Name: "w"}),
		Index: &ir.Variable{T: types.Int32, Name: "x"},
	}
	f := &ir.For{Name: "x", Min: imm32(0), Extent: imm32(1280), ForType: ir.Serial, Body: body}

	out := LoopSplit(f, 5, nil)
	if out != ir.Stmt(f) { // revert keeps the exact original pointer
		t.Fatalf("expected the split to revert to the original loop, got %#v", out)
	}
}

func TestLoopSplitSkipsNonSerialLoops(t *testing.T) {
	body := &ir.Store{Name: "out", Value: imm32(0), Index: &ir.Variable{T: types.Int32, Name: "x"}}
	f := &ir.For{Name: "x", Min: imm32(0), Extent: imm32(1280), ForType: ir.Parallel, Body: body}
	out := LoopSplit(f, 5, nil)
	if out != ir.Stmt(f) { // revert keeps the exact original pointer
		t.Fatalf("expected a Parallel loop to pass through unchanged")
	}
}

func asInt32(t *testing.T, e ir.Expr) int64 {
	t.Helper()
	imm, ok := e.(*ir.IntImm)
	if !ok {
		t.Fatalf("expected *ir.IntImm, got %#v", e)
	}
	return imm.Value
}
