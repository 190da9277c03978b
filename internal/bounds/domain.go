package bounds

import "stencil/internal/ir"

// Domain is a per-dimension vector of Intervals. A Function carries two:
// Valid (where it promises a meaningful value) and Computable (where it can
// be evaluated at all); Valid must be a subset of Computable
// dimension-for-dimension.
type Domain []Interval

// Subset reports whether every dimension of d is contained within the
// corresponding dimension of other — the check a Function's (Valid,
// Computable) pair must satisfy.
func (d Domain) Subset(other Domain) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if !intervalSubset(d[i], other[i]) {
			return false
		}
	}
	return true
}

func intervalSubset(inner, outer Interval) bool {
	return provedGE(inner.Min, outer.Min) && provedLE2(inner.Max, outer.Max)
}

func provedGE(a, b ir.Expr) bool {
	ai, aok := a.(*ir.IntImm)
	bi, bok := b.(*ir.IntImm)
	if aok && bok {
		return ai.Value >= bi.Value
	}
	return ir.Equal(a, b)
}

func provedLE2(a, b ir.Expr) bool {
	ai, aok := a.(*ir.IntImm)
	bi, bok := b.(*ir.IntImm)
	if aok && bok {
		return ai.Value <= bi.Value
	}
	return ir.Equal(a, b)
}

// IntersectDomain intersects two domains dimension-by-dimension, used when a
// kernel's indexing narrows its own domain by the shifted domains of its
// callees.
func IntersectDomain(a, b Domain) Domain {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make(Domain, n)
	for i := 0; i < n; i++ {
		out[i] = Intersection(a[i], b[i])
	}
	return out
}

// ShiftDomain offsets every dimension of d by the corresponding Expr in
// offsets (e.g. a callee referenced at x-1..x+1 narrows its caller's domain
// by the shifted callee domain).
func ShiftDomain(d Domain, offsets []ir.Expr) Domain {
	out := make(Domain, len(d))
	for i := range d {
		if i < len(offsets) && offsets[i] != nil {
			out[i] = Add(d[i], offsets[i])
		} else {
			out[i] = d[i]
		}
	}
	return out
}
