package ir

// Visitor is a read-only preorder walk over an Expr/Stmt tree. There is one
// method per node variant; BaseVisitor's implementation of each method
// recurses into the node's children. A concrete visitor embeds *BaseVisitor,
// sets Self to itself, and overrides only the variants it cares about — Go
// has no virtual dispatch through embedding, so BaseVisitor re-enters
// traversal through Self rather than through its own methods.
type Visitor interface {
	VisitIntImm(*IntImm)
	VisitFloatImm(*FloatImm)
	VisitVariable(*Variable)
	VisitCast(*Cast)
	VisitNot(*Not)
	VisitSignFill(*SignFill)
	VisitBinary(*Binary)
	VisitCompare(*Compare)
	VisitLogical(*Logical)
	VisitSelect(*Select)
	VisitLoad(*Load)
	VisitRamp(*Ramp)
	VisitBroadcast(*Broadcast)
	VisitCall(*Call)
	VisitLet(*Let)
	VisitClamp(*Clamp)
	VisitInfinity(*Infinity)
	VisitSolve(*Solve)
	VisitTargetVar(*TargetVar)

	VisitLetStmt(*LetStmt)
	VisitAssertStmt(*AssertStmt)
	VisitPrintStmt(*PrintStmt)
	VisitFor(*For)
	VisitStore(*Store)
	VisitProvide(*Provide)
	VisitAllocate(*Allocate)
	VisitRealize(*Realize)
	VisitPipeline(*Pipeline)
	VisitBlock(*Block)
	VisitStmtTargetVar(*StmtTargetVar)
}

// VisitExpr dispatches e to the appropriate method of v.
func VisitExpr(v Visitor, e Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *IntImm:
		v.VisitIntImm(n)
	case *FloatImm:
		v.VisitFloatImm(n)
	case *Variable:
		v.VisitVariable(n)
	case *Cast:
		v.VisitCast(n)
	case *Not:
		v.VisitNot(n)
	case *SignFill:
		v.VisitSignFill(n)
	case *Binary:
		v.VisitBinary(n)
	case *Compare:
		v.VisitCompare(n)
	case *Logical:
		v.VisitLogical(n)
	case *Select:
		v.VisitSelect(n)
	case *Load:
		v.VisitLoad(n)
	case *Ramp:
		v.VisitRamp(n)
	case *Broadcast:
		v.VisitBroadcast(n)
	case *Call:
		v.VisitCall(n)
	case *Let:
		v.VisitLet(n)
	case *Clamp:
		v.VisitClamp(n)
	case *Infinity:
		v.VisitInfinity(n)
	case *Solve:
		v.VisitSolve(n)
	case *TargetVar:
		v.VisitTargetVar(n)
	default:
		panic("ir.VisitExpr: unknown expr variant")
	}
}

// VisitStmt dispatches s to the appropriate method of v.
func VisitStmt(v Visitor, s Stmt) {
	if s == nil {
		return
	}
	switch n := s.(type) {
	case *LetStmt:
		v.VisitLetStmt(n)
	case *AssertStmt:
		v.VisitAssertStmt(n)
	case *PrintStmt:
		v.VisitPrintStmt(n)
	case *For:
		v.VisitFor(n)
	case *Store:
		v.VisitStore(n)
	case *Provide:
		v.VisitProvide(n)
	case *Allocate:
		v.VisitAllocate(n)
	case *Realize:
		v.VisitRealize(n)
	case *Pipeline:
		v.VisitPipeline(n)
	case *Block:
		v.VisitBlock(n)
	case *StmtTargetVar:
		v.VisitStmtTargetVar(n)
	default:
		panic("ir.VisitStmt: unknown stmt variant")
	}
}

// BaseVisitor implements every Visitor method as "recurse into children".
// Embed it, set Self to the embedding type, and override only the variants
// that need special behavior.
type BaseVisitor struct {
	Self Visitor
}

func (b *BaseVisitor) self() Visitor {
	if b.Self != nil {
		return b.Self
	}
	return b
}

func (b *BaseVisitor) VisitIntImm(*IntImm)     {}
func (b *BaseVisitor) VisitFloatImm(*FloatImm) {}
func (b *BaseVisitor) VisitVariable(*Variable) {}
func (b *BaseVisitor) VisitCast(n *Cast)        { VisitExpr(b.self(), n.Value) }
func (b *BaseVisitor) VisitNot(n *Not)          { VisitExpr(b.self(), n.Value) }
func (b *BaseVisitor) VisitSignFill(n *SignFill) { VisitExpr(b.self(), n.Value) }
func (b *BaseVisitor) VisitBinary(n *Binary) {
	VisitExpr(b.self(), n.A)
	VisitExpr(b.self(), n.B)
}
func (b *BaseVisitor) VisitCompare(n *Compare) {
	VisitExpr(b.self(), n.A)
	VisitExpr(b.self(), n.B)
}
func (b *BaseVisitor) VisitLogical(n *Logical) {
	VisitExpr(b.self(), n.A)
	VisitExpr(b.self(), n.B)
}
func (b *BaseVisitor) VisitSelect(n *Select) {
	VisitExpr(b.self(), n.Cond)
	VisitExpr(b.self(), n.TrueVal)
	VisitExpr(b.self(), n.FalseVal)
}
func (b *BaseVisitor) VisitLoad(n *Load) { VisitExpr(b.self(), n.Index) }
func (b *BaseVisitor) VisitRamp(n *Ramp) {
	VisitExpr(b.self(), n.Base)
	VisitExpr(b.self(), n.Stride)
}
func (b *BaseVisitor) VisitBroadcast(n *Broadcast) { VisitExpr(b.self(), n.Value) }
func (b *BaseVisitor) VisitCall(n *Call) {
	for _, a := range n.Args {
		VisitExpr(b.self(), a)
	}
}
func (b *BaseVisitor) VisitLet(n *Let) {
	VisitExpr(b.self(), n.Value)
	VisitExpr(b.self(), n.Body)
}
func (b *BaseVisitor) VisitClamp(n *Clamp) {
	VisitExpr(b.self(), n.A)
	VisitExpr(b.self(), n.Min)
	VisitExpr(b.self(), n.Max)
	if n.P1 != nil {
		VisitExpr(b.self(), n.P1)
	}
}
func (b *BaseVisitor) VisitInfinity(*Infinity) {}
func (b *BaseVisitor) VisitSolve(n *Solve)         { VisitExpr(b.self(), n.Body) }
func (b *BaseVisitor) VisitTargetVar(n *TargetVar) { VisitExpr(b.self(), n.Body) }

func (b *BaseVisitor) VisitLetStmt(n *LetStmt) {
	VisitExpr(b.self(), n.Value)
	VisitStmt(b.self(), n.Body)
}
func (b *BaseVisitor) VisitAssertStmt(n *AssertStmt) { VisitExpr(b.self(), n.Cond) }
func (b *BaseVisitor) VisitPrintStmt(n *PrintStmt) {
	for _, a := range n.Args {
		VisitExpr(b.self(), a)
	}
}
func (b *BaseVisitor) VisitFor(n *For) {
	VisitExpr(b.self(), n.Min)
	VisitExpr(b.self(), n.Extent)
	VisitStmt(b.self(), n.Body)
}
func (b *BaseVisitor) VisitStore(n *Store) {
	VisitExpr(b.self(), n.Value)
	VisitExpr(b.self(), n.Index)
}
func (b *BaseVisitor) VisitProvide(n *Provide) {
	VisitExpr(b.self(), n.Value)
	for _, a := range n.Args {
		VisitExpr(b.self(), a)
	}
}
func (b *BaseVisitor) VisitAllocate(n *Allocate) {
	VisitExpr(b.self(), n.Size)
	VisitStmt(b.self(), n.Body)
}
func (b *BaseVisitor) VisitRealize(n *Realize) {
	for _, r := range n.Bounds {
		VisitExpr(b.self(), r.Min)
		VisitExpr(b.self(), r.Extent)
	}
	VisitStmt(b.self(), n.Body)
}
func (b *BaseVisitor) VisitPipeline(n *Pipeline) {
	VisitStmt(b.self(), n.Produce)
	if n.Update != nil {
		VisitStmt(b.self(), n.Update)
	}
	VisitStmt(b.self(), n.Consume)
}
func (b *BaseVisitor) VisitBlock(n *Block) {
	VisitStmt(b.self(), n.First)
	if n.Rest != nil {
		VisitStmt(b.self(), n.Rest)
	}
}
func (b *BaseVisitor) VisitStmtTargetVar(n *StmtTargetVar) { VisitStmt(b.self(), n.Body) }
