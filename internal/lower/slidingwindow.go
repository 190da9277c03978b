package lower

import (
	"stencil/internal/ir"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

// SlideRealize handles a single producer/consumer-loop pair: within body
// (the body of a serial For over loopVar, e.g. a consumer's store_at
// loop), find the Realize named funcName and, if exactly one of its
// dimensions' Min depends on loopVar and no dimension's Extent does,
// replace that dimension's [Min, Extent) with the incremental-slice
// formula:
//
//	new_min    = select(loopVar > loopMin, substitute(loopVar -> loopVar-1, min+extent), min)
//	new_extent = select(loopVar > loopMin, (min+extent) - new_min, extent)
//
// Returns the rewritten body and true if the rewrite applied; on any
// disqualifying shape (two dependent dimensions, an extent depending on
// loopVar, or no matching Realize at all) it returns body unchanged and
// false. No diagnostic is emitted for a miss, here or in the lowering
// caller (applySlidingWindow), which keeps the body unchanged.
func SlideRealize(body ir.Stmt, funcName, loopVar string, loopMin ir.Expr) (ir.Stmt, bool) {
	r := &slider{funcName: funcName, loopVar: loopVar, loopMin: loopMin}
	out := ir.NewMutator(r).MutateStmt(body)
	if !r.applied {
		return body, false
	}
	return out, true
}

// slider is the single-pass ir.Rewriter driving SlideRealize: by the time
// RewriteRealize sees a Realize its Bounds have already been recursively
// mutated by the enclosing Mutator, so the disqualification check and the
// rewrite both happen directly against the already-final Bounds slice.
type slider struct {
	ir.BaseRewriter
	funcName string
	loopVar  string
	loopMin  ir.Expr
	applied  bool
}

func (s *slider) RewriteRealize(n *ir.Realize) ir.Stmt {
	if s.applied || n.Name != s.funcName {
		return n
	}
	dim, ok := slideDimension(n.Bounds, s.loopVar)
	if !ok {
		return n
	}

	bounds := append([]ir.Range(nil), n.Bounds...)
	minExtent := simplify.Simplify(ir.NewBinary(ir.Add, bounds[dim].Min, bounds[dim].Extent))
	loopVarExpr := &ir.Variable{T: types.Int32, Name: s.loopVar}
	cond := ir.NewCompare(ir.GT, loopVarExpr, s.loopMin)

	shifted := simplify.Substitute(minExtent, s.loopVar, ir.NewBinary(ir.Sub, loopVarExpr, &ir.IntImm{T: types.Int32, Value: 1}))
	newMin := ir.NewSelect(cond, shifted, bounds[dim].Min)
	newExtent := ir.NewSelect(cond, ir.NewBinary(ir.Sub, minExtent, newMin), bounds[dim].Extent)
	bounds[dim] = ir.Range{Min: newMin, Extent: newExtent}

	s.applied = true
	return &ir.Realize{Name: n.Name, T: n.T, Bounds: bounds, Body: n.Body}
}

// slideDimension applies the §4.7 disqualification rules: exactly one
// dimension's Min may depend on loopVar, and no dimension's Extent may.
func slideDimension(bounds []ir.Range, loopVar string) (int, bool) {
	found := -1
	for i, r := range bounds {
		if ExprDependsOnVar(r.Extent, loopVar) {
			return 0, false
		}
		if ExprDependsOnVar(r.Min, loopVar) {
			if found != -1 {
				return 0, false
			}
			found = i
		}
	}
	if found == -1 {
		return 0, false
	}
	return found, true
}
