package border

import "stencil/internal/ir"

// General is the tagged counterpart of BorderGeneral: one Border per
// dimension, each applied to that dimension alone (e.g. replication on
// dimension 0 and wrapping on dimension 1). Dims shorter than a Func's
// actual dimensionality leave the remaining dimensions with Kind None,
// the same fallback BorderTile's modulus produced implicitly when asked
// for more dimensions than tile sizes were supplied.
type General struct {
	Dims []Border
}

func (g General) at(dim int) Border {
	if dim < len(g.Dims) {
		return g.Dims[dim]
	}
	return Border{Kind: None}
}

// IndexExpr dispatches dim to the Border configured for that dimension,
// ignoring dim's own offset (General.at already indexes by dim).
func (g General) IndexExpr(dim int, expr, min, max ir.Expr) ir.Expr {
	return g.at(dim).IndexExpr(0, expr, min, max)
}

func (g General) ValueExpr(dim int, value, expr, min, max ir.Expr) ir.Expr {
	return g.at(dim).ValueExpr(0, value, expr, min, max)
}
