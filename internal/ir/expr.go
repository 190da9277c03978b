package ir

import "stencil/internal/types"

// Expr is the sum type of every expression variant. Every constructor below
// panics if the type-compatibility invariants are violated, since a type
// error in the middle end is an invariant violation, not a recoverable
// condition; front ends that might hand the builder an ill-typed
// expression (the grammar package) must validate before calling these
// constructors and return a cerr.Diagnostic instead.
type Expr interface {
	Node
	ExprType() types.Type
	isExpr()
}

// ReductionDomain names the extent a Variable ranges over when it is bound
// as a reduction variable.
type ReductionDomain struct {
	Var   string
	Min   Expr
	Extent Expr
}

// IntImm is a literal of integer or boolean kind.
type IntImm struct {
	T     types.Type
	Value int64
}

func (*IntImm) isExpr()             {}
func (*IntImm) Kind() Kind          { return KindIntImm }
func (n *IntImm) ExprType() types.Type { return n.T }

// FloatImm is a floating point literal.
type FloatImm struct {
	T     types.Type
	Value float64
}

func (*FloatImm) isExpr()                {}
func (*FloatImm) Kind() Kind             { return KindFloatImm }
func (n *FloatImm) ExprType() types.Type { return n.T }

// Variable is a free or bound reference to a name: a function parameter, a
// let-bound name, a loop index, or a reduction variable.
type Variable struct {
	T         types.Type
	Name      string
	Param     bool             // true if bound by the enclosing function's parameter list
	Reduction *ReductionDomain // non-nil if this is a reduction-domain variable
}

func (*Variable) isExpr()                {}
func (*Variable) Kind() Kind             { return KindVariable }
func (n *Variable) ExprType() types.Type { return n.T }

// Cast converts Value to To, truncating or widening per the target type.
type Cast struct {
	To    types.Type
	Value Expr
}

func (*Cast) isExpr()                {}
func (*Cast) Kind() Kind             { return KindCast }
func (n *Cast) ExprType() types.Type { return n.To }

// Not is logical/bitwise negation, matching its operand's type.
type Not struct {
	Value Expr
}

func (*Not) isExpr()                {}
func (*Not) Kind() Kind             { return KindNot }
func (n *Not) ExprType() types.Type { return n.Value.ExprType() }

// SignFill replicates the sign bit across all bits of the operand's type,
// used by bit-twiddling lowerings of Select-on-comparison idioms.
type SignFill struct {
	Value Expr
}

func (*SignFill) isExpr()                {}
func (*SignFill) Kind() Kind             { return KindSignFill }
func (n *SignFill) ExprType() types.Type { return n.Value.ExprType() }

// BinOp enumerates the arithmetic binary operators.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Min
	Max
	BitAnd
	BitOr
	BitXor
)

var binOpNames = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Min: "min", Max: "max", BitAnd: "&", BitOr: "|", BitXor: "^",
}

func (op BinOp) String() string { return binOpNames[op] }

// Binary is the shared node for Add/Sub/Mul/Div/Mod/Min/Max/BitAnd/BitOr/BitXor.
// Both operands and the result share one Type; NewBinary enforces this
// rather than trusting the caller.
type Binary struct {
	Op   BinOp
	A, B Expr
	T    types.Type
}

// NewBinary builds a Binary node, validating that A and B share a type.
func NewBinary(op BinOp, a, b Expr) *Binary {
	t, err := types.ArithResult(a.ExprType(), b.ExprType())
	if err != nil {
		panic("ir.NewBinary: " + err.Error())
	}
	return &Binary{Op: op, A: a, B: b, T: t}
}

func (*Binary) isExpr()                {}
func (*Binary) Kind() Kind             { return KindBinary }
func (n *Binary) ExprType() types.Type { return n.T }

// CompareOp enumerates the comparison operators.
type CompareOp int

const (
	EQ CompareOp = iota
	NE
	LT
	LE
	GT
	GE
)

var compareOpNames = map[CompareOp]string{
	EQ: "==", NE: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
}

func (op CompareOp) String() string { return compareOpNames[op] }

// Compare yields a Bool of the same lane count as its (equal-typed) operands.
type Compare struct {
	Op   CompareOp
	A, B Expr
	T    types.Type
}

// NewCompare builds a Compare node, validating that A and B share a type.
func NewCompare(op CompareOp, a, b Expr) *Compare {
	t, err := types.CompareResult(a.ExprType(), b.ExprType())
	if err != nil {
		panic("ir.NewCompare: " + err.Error())
	}
	return &Compare{Op: op, A: a, B: b, T: t}
}

func (*Compare) isExpr()                {}
func (*Compare) Kind() Kind             { return KindCompare }
func (n *Compare) ExprType() types.Type { return n.T }

// LogicalOp enumerates And/Or.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

func (op LogicalOp) String() string {
	if op == LogicalAnd {
		return "&&"
	}
	return "||"
}

// Logical is a boolean And/Or node; both operands and the result are Bool.
type Logical struct {
	Op   LogicalOp
	A, B Expr
}

func NewLogical(op LogicalOp, a, b Expr) *Logical {
	if !a.ExprType().IsBool() || !b.ExprType().IsBool() {
		panic("ir.NewLogical: operands must be Bool")
	}
	return &Logical{Op: op, A: a, B: b}
}

func (*Logical) isExpr()                {}
func (*Logical) Kind() Kind             { return KindLogical }
func (n *Logical) ExprType() types.Type { return n.A.ExprType() }

// Select picks TrueValue or FalseValue per lane according to Cond.
type Select struct {
	Cond             Expr
	TrueVal, FalseVal Expr
}

func NewSelect(cond, t, f Expr) *Select {
	if !cond.ExprType().IsBool() {
		panic("ir.NewSelect: condition must be Bool")
	}
	if t.ExprType() != f.ExprType() {
		panic("ir.NewSelect: branches must have equal types")
	}
	return &Select{Cond: cond, TrueVal: t, FalseVal: f}
}

func (*Select) isExpr()                {}
func (*Select) Kind() Kind             { return KindSelect }
func (n *Select) ExprType() types.Type { return n.TrueVal.ExprType() }

// BufferKind distinguishes the two kinds of outside-the-pipeline buffer a
// Load/Call may reference.
type BufferKind int

const (
	BufferNone BufferKind = iota
	BufferImage
	BufferParam
)

// Load reads an element of a buffer at a (already-flattened or still
// multidimensional, depending on pipeline stage) index.
type Load struct {
	T      types.Type
	Name   string
	Index  Expr
	Buffer BufferKind
}

func (*Load) isExpr()                {}
func (*Load) Kind() Kind             { return KindLoad }
func (n *Load) ExprType() types.Type { return n.T }

// Ramp yields a vector {Base, Base+Stride, Base+2*Stride, ...} of Lanes
// elements. Base and Stride must be scalar; the result is a Lanes-wide
// vector of Base's scalar type.
type Ramp struct {
	Base, Stride Expr
	Lanes        int
}

func NewRamp(base, stride Expr, lanes int) *Ramp {
	if !base.ExprType().Scalar() || !stride.ExprType().Scalar() {
		panic("ir.NewRamp: base and stride must be scalar")
	}
	return &Ramp{Base: base, Stride: stride, Lanes: lanes}
}

func (*Ramp) isExpr()                {}
func (*Ramp) Kind() Kind             { return KindRamp }
func (n *Ramp) ExprType() types.Type { return n.Base.ExprType().WithLanes(n.Lanes) }

// Broadcast replicates a scalar Value across Lanes lanes.
type Broadcast struct {
	Value Expr
	Lanes int
}

func NewBroadcast(value Expr, lanes int) *Broadcast {
	if !value.ExprType().Scalar() {
		panic("ir.NewBroadcast: value must be scalar")
	}
	return &Broadcast{Value: value, Lanes: lanes}
}

func (*Broadcast) isExpr()                {}
func (*Broadcast) Kind() Kind             { return KindBroadcast }
func (n *Broadcast) ExprType() types.Type { return n.Value.ExprType().WithLanes(n.Lanes) }

// CallType distinguishes a reference to another pipeline function from an
// extern/runtime call and from a target-intrinsic call.
type CallType int

const (
	CallPipeline CallType = iota
	CallExtern
	CallIntrinsic
)

// Call is a reference to a pipeline function, an extern function, or a
// target intrinsic.
type Call struct {
	T        types.Type
	Name     string
	Args     []Expr
	CallType CallType
	Func     any // *schedule.Function, opaque here to avoid an import cycle
	Buffer   BufferKind
}

func (*Call) isExpr()                {}
func (*Call) Kind() Kind             { return KindCall }
func (n *Call) ExprType() types.Type { return n.T }

// Let is a lexical binding: Body may reference Name, bound to Value.
type Let struct {
	Name  string
	Value Expr
	Body  Expr
}

func (*Let) isExpr()                {}
func (*Let) Kind() Kind             { return KindLet }
func (n *Let) ExprType() types.Type { return n.Body.ExprType() }

// ClampKind enumerates the border-handling sugar kinds.
type ClampKind int

const (
	ClampNone ClampKind = iota
	ClampReplicate
	ClampWrap
	ClampReflect
	ClampReflect101
	ClampTile
)

func (k ClampKind) String() string {
	switch k {
	case ClampNone:
		return "none"
	case ClampReplicate:
		return "replicate"
	case ClampWrap:
		return "wrap"
	case ClampReflect:
		return "reflect"
	case ClampReflect101:
		return "reflect101"
	case ClampTile:
		return "tile"
	default:
		return "?"
	}
}

// Clamp is the sugar node lowered by internal/lower/clamp.go. P1 is only
// meaningful for ClampTile (the tile period).
type Clamp struct {
	ClampKind  ClampKind
	A, Min, Max Expr
	P1         Expr // nil unless ClampKind == ClampTile
}

func (*Clamp) isExpr()                {}
func (*Clamp) Kind() Kind             { return KindClamp }
func (n *Clamp) ExprType() types.Type { return n.A.ExprType() }

// Infinity is the symbolic ±∞ value used by the bounds lattice. Count
// distinguishes nested infinities that must not cancel
// against each other during simplification (e.g. ∞ - ∞ is not simplified to
// 0 unless both sides carry the same Count).
type Infinity struct {
	T     types.Type
	Sign  int // +1 or -1
	Count int
}

func (*Infinity) isExpr()                {}
func (*Infinity) Kind() Kind             { return KindInfinity }
func (n *Infinity) ExprType() types.Type { return n.T }

// Solve marks a subexpression that the bounds solver should treat Var as
// free within.
type Solve struct {
	Var  string
	Body Expr
}

func (*Solve) isExpr()                {}
func (*Solve) Kind() Kind             { return KindSolve }
func (n *Solve) ExprType() types.Type { return n.Body.ExprType() }

// TargetVar marks the variable the bounds solver is trying to isolate an
// interval for.
type TargetVar struct {
	Name string
	Body Expr
}

func (*TargetVar) isExpr()                {}
func (*TargetVar) Kind() Kind             { return KindTargetVar }
func (n *TargetVar) ExprType() types.Type { return n.Body.ExprType() }
