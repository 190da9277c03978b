// Package border implements the index/value rewriting rules a consumer
// applies when it reads outside a producer's valid domain. A
// BorderBase/BorderReplicate/BorderWrap/... virtual-dispatch hierarchy is
// flattened here into a single tagged Kind variant with IndexExpr/ValueExpr
// methods switching on Kind, matching the Kind-tag idiom internal/ir already
// uses for Clamp and the node Kind enum.
package border

import (
	"stencil/internal/ir"
)

// Kind enumerates the border-handling strategies: none, replicate, wrap,
// reflect, reflect101, constant, and tile.
type Kind int

const (
	None Kind = iota
	Replicate
	Wrap
	Reflect
	Reflect101
	Constant
	Tile
)

// Border is the tagged replacement for BorderBase and its subclasses.
// Constant is only meaningful for Kind == Constant; TileSizes is only
// meaningful for Kind == Tile (one period expression per image dimension,
// cycled with modulus len(TileSizes) the way BorderTile::indexExpr did
// with "dim = dim % tile.size()").
type Border struct {
	Kind      Kind
	Constant  ir.Expr
	TileSizes []ir.Expr
}

// IndexExpr rewrites an out-of-domain index expr (bounded by [min, max] in
// dimension dim) into the Clamp node that reads the correct in-domain
// location, the counterpart of BorderBase::indexExpr. KindConstant clamps
// the index too (BorderValueBase's default) since ValueExpr is what
// actually substitutes the constant back in; clamping first keeps the
// underlying Load in-bounds.
func (b Border) IndexExpr(dim int, expr, min, max ir.Expr) ir.Expr {
	switch b.Kind {
	case None:
		return &ir.Clamp{ClampKind: ir.ClampNone, A: expr, Min: min, Max: max}
	case Replicate, Constant:
		return &ir.Clamp{ClampKind: ir.ClampReplicate, A: expr, Min: min, Max: max}
	case Wrap:
		return &ir.Clamp{ClampKind: ir.ClampWrap, A: expr, Min: min, Max: max}
	case Reflect:
		return &ir.Clamp{ClampKind: ir.ClampReflect, A: expr, Min: min, Max: max}
	case Reflect101:
		return &ir.Clamp{ClampKind: ir.ClampReflect101, A: expr, Min: min, Max: max}
	case Tile:
		if len(b.TileSizes) == 0 {
			panic("border: Tile requires at least one tile dimension")
		}
		period := b.TileSizes[dim%len(b.TileSizes)]
		return &ir.Clamp{ClampKind: ir.ClampTile, A: expr, Min: min, Max: max, P1: period}
	default:
		return expr
	}
}

// ValueExpr rewrites the value loaded at the clamped index, the
// counterpart of BorderBase::valueExpr. Every kind but Constant passes
// value through unchanged (BorderBase's default); Constant substitutes
// its fill value whenever the original (unclamped) expr fell outside
// [min, max].
func (b Border) ValueExpr(dim int, value, expr, min, max ir.Expr) ir.Expr {
	if b.Kind != Constant {
		return value
	}
	if b.Constant == nil {
		panic("border: Constant requires a fill value")
	}
	below := ir.NewCompare(ir.LT, expr, min)
	above := ir.NewCompare(ir.GT, expr, max)
	return ir.NewSelect(below, b.Constant, ir.NewSelect(above, b.Constant, value))
}

// OffsetDim is the dimension-shifting adapter the grounding source's
// BorderIndex provides: Base's IndexExpr/ValueExpr are always invoked at
// dim+Offset, letting a caller iterating 0..N-1 over its own dimensions
// reach into Base at a fixed starting point (e.g. Base.dim(2) behaves as
// dimension 0 of a 2-dimension-shifted view).
type OffsetDim struct {
	Base   Border
	Offset int
}

func (o OffsetDim) IndexExpr(dim int, expr, min, max ir.Expr) ir.Expr {
	return o.Base.IndexExpr(dim+o.Offset, expr, min, max)
}

func (o OffsetDim) ValueExpr(dim int, value, expr, min, max ir.Expr) ir.Expr {
	return o.Base.ValueExpr(dim+o.Offset, value, expr, min, max)
}
