package lower

import (
	"fmt"

	"stencil/internal/bounds"
	"stencil/internal/ir"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

// FoldStorage shrinks storage allocations: for every dimension of every
// Realize whose extent is provably bounded by a power of two, it shrinks
// the allocation to that power of two and rewrites accesses along the
// dimension to index mod 2^k.
func FoldStorage(s ir.Stmt, constraints bounds.Constraints) ir.Stmt {
	return ir.NewMutator(&storageFolder{constraints: constraints}).MutateStmt(s)
}

type storageFolder struct {
	ir.BaseRewriter
	constraints bounds.Constraints
}

func (f *storageFolder) RewriteRealize(n *ir.Realize) ir.Stmt {
	newBounds := append([]ir.Range(nil), n.Bounds...)
	body := n.Body
	changed := false
	for i, b := range newBounds {
		pow2, ok := provablePow2Bound(b.Extent, f.constraints)
		if !ok {
			continue
		}
		newBounds[i] = ir.Range{Min: b.Min, Extent: pow2}
		body = foldAccessDimension(body, n.Name, i, pow2)
		changed = true
	}
	if !changed {
		return n
	}
	return &ir.Realize{Name: n.Name, T: n.T, Bounds: newBounds, Body: body}
}

// provablePow2Bound reports the smallest power of two that extent is
// provably at most, using the same interval machinery bounds_simplify
// relies on elsewhere.
func provablePow2Bound(extent ir.Expr, constraints bounds.Constraints) (ir.Expr, bool) {
	iv := bounds.ExprInterval(extent, bounds.NewScope(), constraints)
	max, ok := iv.Max.(*ir.IntImm)
	if !ok || max.Value <= 0 {
		return nil, false
	}
	return &ir.IntImm{T: extent.ExprType(), Value: nextPow2(max.Value)}, true
}

func nextPow2(n int64) int64 {
	p := int64(1)
	for p < n {
		p <<= 1
	}
	return p
}

func foldAccessDimension(body ir.Stmt, name string, dim int, pow2 ir.Expr) ir.Stmt {
	return ir.NewMutator(&dimensionFolder{name: name, dim: dim, pow2: pow2}).MutateStmt(body)
}

type dimensionFolder struct {
	ir.BaseRewriter
	name string
	dim  int
	pow2 ir.Expr
}

func (d *dimensionFolder) RewriteProvide(n *ir.Provide) ir.Stmt {
	if n.Name != d.name || d.dim >= len(n.Args) {
		return n
	}
	args := append([]ir.Expr(nil), n.Args...)
	args[d.dim] = simplify.Simplify(ir.NewBinary(ir.Mod, args[d.dim], d.pow2))
	return &ir.Provide{Name: n.Name, Value: n.Value, Args: args}
}

func (d *dimensionFolder) RewriteCall(n *ir.Call) ir.Expr {
	if n.Name != d.name || d.dim >= len(n.Args) {
		return n
	}
	args := append([]ir.Expr(nil), n.Args...)
	args[d.dim] = simplify.Simplify(ir.NewBinary(ir.Mod, args[d.dim], d.pow2))
	return &ir.Call{T: n.T, Name: n.Name, Args: args, CallType: n.CallType, Func: n.Func, Buffer: n.Buffer}
}

// FlattenStorage lowers every Realize to an Allocate of a 1-D linear
// buffer, and every Provide/Call against that buffer to Store/Load with a
// row-major strided index.
func FlattenStorage(s ir.Stmt) ir.Stmt {
	return ir.NewMutator(&storageFlattenerPass{}).MutateStmt(s)
}

type storageFlattenerPass struct {
	ir.BaseRewriter
}

func (storageFlattenerPass) RewriteRealize(n *ir.Realize) ir.Stmt {
	return flattenRealize(n)
}

func flattenRealize(n *ir.Realize) *ir.Allocate {
	strides := make([]ir.Expr, len(n.Bounds))
	size := ir.Expr(&ir.IntImm{T: types.Int32, Value: 1})
	for i, b := range n.Bounds {
		if i == 0 {
			strides[0] = &ir.IntImm{T: types.Int32, Value: 1}
		} else {
			strides[i] = simplify.Simplify(ir.NewBinary(ir.Mul, strides[i-1], n.Bounds[i-1].Extent))
		}
		size = simplify.Simplify(ir.NewBinary(ir.Mul, size, b.Extent))
	}
	body := ir.NewMutator(&accessFlattener{name: n.Name, bounds: n.Bounds, strides: strides}).MutateStmt(n.Body)
	return &ir.Allocate{Name: n.Name, T: n.T, Size: size, Body: body}
}

type accessFlattener struct {
	ir.BaseRewriter
	name    string
	bounds  []ir.Range
	strides []ir.Expr
}

func (a *accessFlattener) flatIndex(args []ir.Expr) ir.Expr {
	var idx ir.Expr
	for i, arg := range args {
		offset := ir.NewBinary(ir.Sub, arg, a.bounds[i].Min)
		var term ir.Expr = offset
		if i > 0 {
			term = ir.NewBinary(ir.Mul, a.strides[i], offset)
		}
		if idx == nil {
			idx = term
		} else {
			idx = ir.NewBinary(ir.Add, idx, term)
		}
	}
	return simplify.Simplify(idx)
}

func (a *accessFlattener) RewriteProvide(n *ir.Provide) ir.Stmt {
	if n.Name != a.name {
		return n
	}
	return &ir.Store{Name: n.Name, Value: n.Value, Index: a.flatIndex(n.Args)}
}

func (a *accessFlattener) RewriteCall(n *ir.Call) ir.Expr {
	if n.Name != a.name {
		return n
	}
	return &ir.Load{T: n.T, Name: n.Name, Index: a.flatIndex(n.Args), Buffer: n.Buffer}
}

// bufferUse is an ir.Visitor reporting whether a statement touches buffer
// name through any of Store/Load/Provide/Call — the unit of "last use"
// EarlyFree orders by.
type bufferUse struct {
	ir.BaseVisitor
	name  string
	found bool
}

func (b *bufferUse) VisitStore(n *ir.Store) {
	if n.Name == b.name {
		b.found = true
	}
	b.BaseVisitor.VisitStore(n)
}

func (b *bufferUse) VisitLoad(n *ir.Load) {
	if n.Name == b.name {
		b.found = true
	}
	b.BaseVisitor.VisitLoad(n)
}

func (b *bufferUse) VisitProvide(n *ir.Provide) {
	if n.Name == b.name {
		b.found = true
	}
	b.BaseVisitor.VisitProvide(n)
}

func (b *bufferUse) VisitCall(n *ir.Call) {
	if n.Name == b.name {
		b.found = true
	}
	b.BaseVisitor.VisitCall(n)
}

func stmtUsesBuffer(s ir.Stmt, name string) bool {
	v := &bufferUse{name: name}
	v.Self = v
	ir.VisitStmt(v.Self, s)
	return v.found
}

func flattenBlockChain(s ir.Stmt) []ir.Stmt {
	var out []ir.Stmt
	for {
		b, ok := s.(*ir.Block)
		if !ok {
			if s != nil {
				out = append(out, s)
			}
			return out
		}
		out = append(out, b.First)
		s = b.Rest
	}
}

// EarlyFree shrinks an Allocate's live range to end right after its last
// use. This IR has no standalone Free node: an Allocate's Body already
// delimits the buffer's live range, so EarlyFree narrows Body to the
// shortest prefix of its top-level statement sequence that still reaches
// the last use, and splices any trailing statements out to run after the
// (now-freed) Allocate instead of nested inside it.
func EarlyFree(s ir.Stmt) ir.Stmt {
	return ir.NewMutator(&earlyFreePass{}).MutateStmt(s)
}

type earlyFreePass struct {
	ir.BaseRewriter
}

func (earlyFreePass) RewriteAllocate(n *ir.Allocate) ir.Stmt {
	stmts := flattenBlockChain(n.Body)
	last := -1
	for i, st := range stmts {
		if stmtUsesBuffer(st, n.Name) {
			last = i
		}
	}
	if last == -1 || last == len(stmts)-1 {
		return n
	}
	narrowed := &ir.Allocate{Name: n.Name, T: n.T, Size: n.Size, Body: ir.NewBlock(stmts[:last+1]...)}
	return ir.NewBlock(append([]ir.Stmt{narrowed}, stmts[last+1:]...)...)
}

// RemoveTrivialFors collapses a For whose Extent simplifies to the
// constant 1: it contributes no looping behavior, so it becomes a LetStmt
// binding its variable to Min instead.
func RemoveTrivialFors(s ir.Stmt) ir.Stmt {
	return ir.NewMutator(&trivialForPass{}).MutateStmt(s)
}

type trivialForPass struct {
	ir.BaseRewriter
}

func (trivialForPass) RewriteFor(n *ir.For) ir.Stmt {
	if extent, ok := n.Extent.(*ir.IntImm); ok && extent.Value == 1 {
		return &ir.LetStmt{Name: n.Name, Value: n.Min, Body: n.Body}
	}
	return n
}

// Vectorize is a structural no-op beyond marking the named For's ForType:
// it retags a loop already chosen for vectorization by the schedule,
// leaving the actual SIMD lowering to the (out-of-scope) back end.
func Vectorize(s ir.Stmt, loopName string) ir.Stmt {
	return ir.NewMutator(&forTagger{target: loopName, tag: ir.Vectorized}).MutateStmt(s)
}

type forTagger struct {
	ir.BaseRewriter
	target string
	tag    ir.ForType
	found  bool
}

func (t *forTagger) RewriteFor(n *ir.For) ir.Stmt {
	if t.found || n.Name != t.target {
		return n
	}
	t.found = true
	return &ir.For{Name: n.Name, Min: n.Min, Extent: n.Extent, ForType: t.tag, SplitInfo: n.SplitInfo, Body: n.Body}
}

// Unroll, unlike Vectorize, has real semantic content in the middle end
// itself: a For with a constant extent expands into that many copies of
// Body with the loop variable substituted by Min+i. The copies carry no
// ir.Unrolled tag: once expanded, the loop no longer exists structurally.
func Unroll(s ir.Stmt, loopName string) (ir.Stmt, error) {
	u := &unroller{target: loopName}
	out := ir.NewMutator(u).MutateStmt(s)
	if !u.found {
		return nil, fmt.Errorf("lower: no For named %q to unroll", loopName)
	}
	if u.err != nil {
		return nil, u.err
	}
	return out, nil
}

type unroller struct {
	ir.BaseRewriter
	target string
	found  bool
	err    error
}

func (u *unroller) RewriteFor(n *ir.For) ir.Stmt {
	if u.found || u.err != nil || n.Name != u.target {
		return n
	}
	u.found = true
	extent, ok := n.Extent.(*ir.IntImm)
	if !ok {
		u.err = fmt.Errorf("lower: cannot unroll %q with a non-constant extent", n.Name)
		return n
	}
	copies := make([]ir.Stmt, extent.Value)
	for i := int64(0); i < extent.Value; i++ {
		index := simplify.Simplify(ir.NewBinary(ir.Add, n.Min, &ir.IntImm{T: n.Min.ExprType(), Value: i}))
		copies[i] = simplify.SubstituteStmt(n.Body, n.Name, index)
	}
	return ir.NewBlock(copies...)
}
