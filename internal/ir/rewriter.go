package ir

// Rewriter is the policy object a Mutator consults once a node's children
// have already been mutated: it receives the
// already-children-mutated node and returns the node that should actually
// appear in the tree. BaseRewriter's default for every variant returns the
// node unchanged, so a concrete rewriter (the simplifier, the clamp
// lowering pass, ...) only needs to override the handful of variants it
// actually rewrites.
type Rewriter interface {
	RewriteIntImm(*IntImm) Expr
	RewriteFloatImm(*FloatImm) Expr
	RewriteVariable(*Variable) Expr
	RewriteCast(*Cast) Expr
	RewriteNot(*Not) Expr
	RewriteSignFill(*SignFill) Expr
	RewriteBinary(*Binary) Expr
	RewriteCompare(*Compare) Expr
	RewriteLogical(*Logical) Expr
	RewriteSelect(*Select) Expr
	RewriteLoad(*Load) Expr
	RewriteRamp(*Ramp) Expr
	RewriteBroadcast(*Broadcast) Expr
	RewriteCall(*Call) Expr
	RewriteLet(*Let) Expr
	RewriteClamp(*Clamp) Expr
	RewriteInfinity(*Infinity) Expr
	RewriteSolve(*Solve) Expr
	RewriteTargetVar(*TargetVar) Expr

	RewriteLetStmt(*LetStmt) Stmt
	RewriteAssertStmt(*AssertStmt) Stmt
	RewritePrintStmt(*PrintStmt) Stmt
	RewriteFor(*For) Stmt
	RewriteStore(*Store) Stmt
	RewriteProvide(*Provide) Stmt
	RewriteAllocate(*Allocate) Stmt
	RewriteRealize(*Realize) Stmt
	RewritePipeline(*Pipeline) Stmt
	RewriteBlock(*Block) Stmt
	RewriteStmtTargetVar(*StmtTargetVar) Stmt
}

// BaseRewriter implements the identity Rewriter. Embed it in a concrete
// rewriter and override only the methods that need to change something.
type BaseRewriter struct{}

func (BaseRewriter) RewriteIntImm(n *IntImm) Expr         { return n }
func (BaseRewriter) RewriteFloatImm(n *FloatImm) Expr     { return n }
func (BaseRewriter) RewriteVariable(n *Variable) Expr     { return n }
func (BaseRewriter) RewriteCast(n *Cast) Expr             { return n }
func (BaseRewriter) RewriteNot(n *Not) Expr               { return n }
func (BaseRewriter) RewriteSignFill(n *SignFill) Expr     { return n }
func (BaseRewriter) RewriteBinary(n *Binary) Expr         { return n }
func (BaseRewriter) RewriteCompare(n *Compare) Expr       { return n }
func (BaseRewriter) RewriteLogical(n *Logical) Expr       { return n }
func (BaseRewriter) RewriteSelect(n *Select) Expr         { return n }
func (BaseRewriter) RewriteLoad(n *Load) Expr             { return n }
func (BaseRewriter) RewriteRamp(n *Ramp) Expr             { return n }
func (BaseRewriter) RewriteBroadcast(n *Broadcast) Expr   { return n }
func (BaseRewriter) RewriteCall(n *Call) Expr             { return n }
func (BaseRewriter) RewriteLet(n *Let) Expr               { return n }
func (BaseRewriter) RewriteClamp(n *Clamp) Expr           { return n }
func (BaseRewriter) RewriteInfinity(n *Infinity) Expr     { return n }
func (BaseRewriter) RewriteSolve(n *Solve) Expr           { return n }
func (BaseRewriter) RewriteTargetVar(n *TargetVar) Expr   { return n }

func (BaseRewriter) RewriteLetStmt(n *LetStmt) Stmt               { return n }
func (BaseRewriter) RewriteAssertStmt(n *AssertStmt) Stmt         { return n }
func (BaseRewriter) RewritePrintStmt(n *PrintStmt) Stmt           { return n }
func (BaseRewriter) RewriteFor(n *For) Stmt                       { return n }
func (BaseRewriter) RewriteStore(n *Store) Stmt                   { return n }
func (BaseRewriter) RewriteProvide(n *Provide) Stmt               { return n }
func (BaseRewriter) RewriteAllocate(n *Allocate) Stmt             { return n }
func (BaseRewriter) RewriteRealize(n *Realize) Stmt               { return n }
func (BaseRewriter) RewritePipeline(n *Pipeline) Stmt             { return n }
func (BaseRewriter) RewriteBlock(n *Block) Stmt                   { return n }
func (BaseRewriter) RewriteStmtTargetVar(n *StmtTargetVar) Stmt   { return n }
