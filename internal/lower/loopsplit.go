package lower

import (
	"stencil/internal/bounds"
	"stencil/internal/ir"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

// DefaultSplitN is the heuristic inner-interval half-width used when no
// user-specified bound is given.
const DefaultSplitN = 5

// LoopSplit performs index-set splitting for a single serial For:
// partitions it into before/main/after fragments over [min,min+N),
// [min+N, max(extent-2N,0)) and the remainder, re-runs bounds simplification
// on each fragment under the tightened per-fragment index range (since
// wrapping the original body in a narrower For makes internal/bounds push
// that tighter interval the same way any other For node does), and reverts
// to the untouched original loop unless the main fragment's simplified
// body comes out free of Select/Clamp — the patterns that motivated
// splitting in the first place. Only applies to Serial loops;
// Parallel/Vectorized/Unrolled loops are returned unchanged.
func LoopSplit(f *ir.For, n int64, constraints bounds.Constraints) ir.Stmt {
	if f.ForType != ir.Serial {
		return f
	}
	if n <= 0 {
		n = DefaultSplitN
	}
	nExpr := &ir.IntImm{T: types.Int32, Value: n}
	zero := &ir.IntImm{T: types.Int32, Value: 0}

	beforeMin := f.Min
	mainMin := simplify.Simplify(ir.NewBinary(ir.Add, f.Min, nExpr))
	mainExtent := simplify.Simplify(ir.NewBinary(ir.Max, ir.NewBinary(ir.Sub, f.Extent, ir.NewBinary(ir.Mul, nExpr, &ir.IntImm{T: types.Int32, Value: 2})), zero))
	afterMin := simplify.Simplify(ir.NewBinary(ir.Add, mainMin, mainExtent))
	loopEnd := simplify.Simplify(ir.NewBinary(ir.Add, f.Min, f.Extent))
	afterExtent := simplify.Simplify(ir.NewBinary(ir.Sub, loopEnd, afterMin))

	before := fragmentFor(f, ir.FragmentBefore, beforeMin, nExpr, beforeMin, mainMin)
	main := fragmentFor(f, ir.FragmentMain, mainMin, mainExtent, mainMin, afterMin)
	after := fragmentFor(f, ir.FragmentAfter, afterMin, afterExtent, afterMin, loopEnd)

	beforeOut, ok1 := bounds.BoundsSimplifyStmt(before, constraints).(*ir.For)
	mainOut, ok2 := bounds.BoundsSimplifyStmt(main, constraints).(*ir.For)
	afterOut, ok3 := bounds.BoundsSimplifyStmt(after, constraints).(*ir.For)
	if !ok1 || !ok2 || !ok3 {
		return f
	}

	mainOut.SplitInfo.Effective = freeOfClampOrSelect(mainOut.Body)
	if !mainOut.SplitInfo.Effective {
		return f
	}

	return &ir.Block{First: beforeOut, Rest: &ir.Block{First: mainOut, Rest: afterOut}}
}

func fragmentFor(f *ir.For, frag ir.LoopFragment, min, extent, knownMin, knownMax ir.Expr) *ir.For {
	return &ir.For{
		Name: f.Name, Min: min, Extent: extent, ForType: f.ForType, Body: f.Body,
		SplitInfo: &ir.LoopSplitInfo{Fragment: frag, KnownMin: knownMin, KnownMax: knownMax},
	}
}

// clampOrSelectSeeker is an ir.Visitor flagging whether a Clamp or Select
// node survives anywhere in a statement — a successful split must prove
// both absent from the main fragment.
type clampOrSelectSeeker struct {
	ir.BaseVisitor
	found bool
}

func (c *clampOrSelectSeeker) VisitClamp(*ir.Clamp)   { c.found = true }
func (c *clampOrSelectSeeker) VisitSelect(n *ir.Select) {
	c.found = true
	c.BaseVisitor.VisitSelect(n)
}

func freeOfClampOrSelect(s ir.Stmt) bool {
	c := &clampOrSelectSeeker{}
	c.Self = c
	ir.VisitStmt(c.Self, s)
	return !c.found
}
