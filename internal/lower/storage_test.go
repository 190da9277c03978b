package lower

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/types"
)

func TestFoldStorageShrinksProvablyBoundedDimension(t *testing.T) {
	realize := &ir.Realize{
		Name: "g", T: types.Int32,
		Bounds: []ir.Range{{Min: imm32(0), Extent: imm32(3)}},
		Body: &ir.Provide{
			Name: "g", Value: imm32(0),
			Args: []ir.Expr{&ir.Variable{T: types.Int32, Name: "y"}},
		},
	}
	out := FoldStorage(realize, nil)
	got, ok := out.(*ir.Realize)
	if !ok {
		t.Fatalf("expected *ir.Realize back, got %#v", out)
	}
	if got.Bounds[0].Extent.(*ir.IntImm).Value != 4 {
		t.Fatalf("expected extent 3 to fold up to the next power of two (4), got %v", got.Bounds[0].Extent)
	}
	provide, ok := got.Body.(*ir.Provide)
	if !ok {
		t.Fatalf("expected a Provide body, got %#v", got.Body)
	}
	if _, ok := provide.Args[0].(*ir.Binary); !ok {
		t.Fatalf("expected the folded dimension's access to become a Binary mod, got %#v", provide.Args[0])
	}
}

func TestFlattenStorageLowersRealizeToAllocate(t *testing.T) {
	realize := &ir.Realize{
		Name: "g", T: types.Int32,
		Bounds: []ir.Range{
			{Min: imm32(0), Extent: imm32(10)},
			{Min: imm32(0), Extent: imm32(20)},
		},
		Body: &ir.Block{
			First: &ir.Provide{Name: "g", Value: imm32(1), Args: []ir.Expr{imm32(2), imm32(3)}},
			Rest: &ir.AssertStmt{Cond: &ir.Call{T: types.Int32, Name: "g", CallType: ir.CallPipeline, Args: []ir.Expr{imm32(2), imm32(3)}}, Message: "dummy"},
		},
	}
	out := FlattenStorage(realize)
	alloc, ok := out.(*ir.Allocate)
	if !ok {
		t.Fatalf("expected *ir.Allocate back, got %#v", out)
	}
	if got := alloc.Size.(*ir.IntImm).Value; got != 200 {
		t.Fatalf("expected a 10*20=200 element allocation, got %d", got)
	}
	block, ok := alloc.Body.(*ir.Block)
	if !ok {
		t.Fatalf("expected the flattened body to stay a Block, got %#v", alloc.Body)
	}
	store, ok := block.First.(*ir.Store)
	if !ok {
		t.Fatalf("expected Provide to become Store, got %#v", block.First)
	}
	if got := store.Index.(*ir.IntImm).Value; got != 32 {
		t.Fatalf("expected index 2 + 10*3 = 32, got %d", got)
	}
}

func TestRemoveTrivialForsCollapsesUnitExtent(t *testing.T) {
	f := &ir.For{Name: "x", Min: imm32(7), Extent: imm32(1), ForType: ir.Serial,
		Body: &ir.Store{Name: "out", Value: &ir.Variable{T: types.Int32, Name: "x"}, Index: imm32(0)}}
	out := RemoveTrivialFors(f)
	let, ok := out.(*ir.LetStmt)
	if !ok || let.Name != "x" {
		t.Fatalf("expected a LetStmt binding x, got %#v", out)
	}
	if let.Value.(*ir.IntImm).Value != 7 {
		t.Fatalf("expected x bound to the loop's Min (7), got %v", let.Value)
	}
}

func TestRemoveTrivialForsLeavesRealLoopsAlone(t *testing.T) {
	f := &ir.For{Name: "x", Min: imm32(0), Extent: imm32(10), ForType: ir.Serial,
		Body: &ir.Store{Name: "out", Value: imm32(0), Index: imm32(0)}}
	out := RemoveTrivialFors(f)
	if out != ir.Stmt(f) {
		t.Fatalf("expected a non-unit loop to pass through unchanged")
	}
}

func TestVectorizeRetagsTheNamedLoop(t *testing.T) {
	f := &ir.For{Name: "x", Min: imm32(0), Extent: imm32(8), ForType: ir.Serial,
		Body: &ir.Store{Name: "out", Value: imm32(0), Index: imm32(0)}}
	out := Vectorize(f, "x")
	got, ok := out.(*ir.For)
	if !ok || got.ForType != ir.Vectorized {
		t.Fatalf("expected x retagged Vectorized, got %#v", out)
	}
}

func TestUnrollExpandsConstantExtentLoop(t *testing.T) {
	f := &ir.For{Name: "x", Min: imm32(0), Extent: imm32(3), ForType: ir.Serial,
		Body: &ir.Store{Name: "out", Value: &ir.Variable{T: types.Int32, Name: "x"}, Index: &ir.Variable{T: types.Int32, Name: "x"}}}
	out, err := Unroll(f, "x")
	if err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	stmts := flattenBlockChain(out)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 unrolled copies, got %d", len(stmts))
	}
	for i, st := range stmts {
		store, ok := st.(*ir.Store)
		if !ok {
			t.Fatalf("copy %d: expected *ir.Store, got %#v", i, st)
		}
		if got := store.Index.(*ir.IntImm).Value; got != int64(i) {
			t.Fatalf("copy %d: expected index %d, got %d", i, i, got)
		}
	}
}

func TestUnrollRejectsNonConstantExtent(t *testing.T) {
	f := &ir.For{Name: "x", Min: imm32(0), Extent: &ir.Variable{T: types.Int32, Name: "n"}, ForType: ir.Serial,
		Body: &ir.Store{Name: "out", Value: imm32(0), Index: imm32(0)}}
	if _, err := Unroll(f, "x"); err == nil {
		t.Fatalf("expected an error unrolling a non-constant extent")
	}
}

func TestEarlyFreeNarrowsAllocateToLastUse(t *testing.T) {
	alloc := &ir.Allocate{
		Name: "g", T: types.Int32, Size: imm32(10),
		Body: ir.NewBlock(
			&ir.Store{Name: "g", Value: imm32(1), Index: imm32(0)},
			&ir.Store{Name: "h", Value: imm32(2), Index: imm32(0)},
			&ir.Store{Name: "h", Value: imm32(3), Index: imm32(0)},
		),
	}
	out := EarlyFree(alloc)
	block, ok := out.(*ir.Block)
	if !ok {
		t.Fatalf("expected a Block splitting the allocation from its trailer, got %#v", out)
	}
	narrowed, ok := block.First.(*ir.Allocate)
	if !ok {
		t.Fatalf("expected the narrowed Allocate first, got %#v", block.First)
	}
	if stmtUsesBuffer(narrowed.Body, "h") {
		t.Fatalf("narrowed allocation body should not still include the h-only trailer")
	}
	if !stmtUsesBuffer(block.Rest, "h") {
		t.Fatalf("trailing statements should have been spliced out after the allocation")
	}
}
