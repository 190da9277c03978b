// Package ir is the immutable expression/statement tree that the lowering
// pipeline reads and rewrites. Nodes are plain Go values built once by a
// pass and never mutated in place; a rewrite produces a new node.
// Structural sharing is obtained for free because
// sibling subtrees are ordinary Go pointers: a mutator that leaves a child
// untouched simply reuses the same *Node value instead of allocating a copy.
package ir

// Kind tags every expression and statement variant. Equal and EqualStmt
// compare it before comparing fields, and Hash mixes it in; the visitor,
// mutator and printer dispatch with type switches instead. Operator
// variants of one node type share a Kind (Add and Sub are both
// KindBinary) and are told apart by their Op field.
type Kind int

const (
	// Expressions
	KindIntImm Kind = iota
	KindFloatImm
	KindVariable
	KindCast
	KindNot
	KindSignFill
	KindBinary
	KindCompare
	KindLogical
	KindSelect
	KindLoad
	KindRamp
	KindBroadcast
	KindCall
	KindLet
	KindClamp
	KindInfinity
	KindSolve
	KindTargetVar

	// Statements
	KindLetStmt
	KindAssertStmt
	KindPrintStmt
	KindFor
	KindStore
	KindProvide
	KindAllocate
	KindRealize
	KindPipeline
	KindBlock
	KindStmtTargetVar
)

var kindNames = map[Kind]string{
	KindIntImm:        "IntImm",
	KindFloatImm:      "FloatImm",
	KindVariable:      "Variable",
	KindCast:          "Cast",
	KindNot:           "Not",
	KindSignFill:      "SignFill",
	KindBinary:        "Binary",
	KindCompare:       "Compare",
	KindLogical:       "Logical",
	KindSelect:        "Select",
	KindLoad:          "Load",
	KindRamp:          "Ramp",
	KindBroadcast:     "Broadcast",
	KindCall:          "Call",
	KindLet:           "Let",
	KindClamp:         "Clamp",
	KindInfinity:      "Infinity",
	KindSolve:         "Solve",
	KindTargetVar:     "TargetVar",
	KindLetStmt:       "LetStmt",
	KindAssertStmt:    "AssertStmt",
	KindPrintStmt:     "PrintStmt",
	KindFor:           "For",
	KindStore:         "Store",
	KindProvide:       "Provide",
	KindAllocate:      "Allocate",
	KindRealize:       "Realize",
	KindPipeline:      "Pipeline",
	KindBlock:         "Block",
	KindStmtTargetVar: "StmtTargetVar",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UnknownKind"
}

// Node is implemented by both Expr and Stmt so traversal helpers that don't
// care which sum type they're looking at (e.g. a generic "does this subtree
// reference name X" search) can share code.
type Node interface {
	Kind() Kind
	String() string
}
