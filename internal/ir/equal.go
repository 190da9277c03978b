package ir

import (
	"hash/fnv"
	"math"
)

// Equal reports structural equality of two expressions: variants must
// match and every child must be (recursively) equal. Two nil expressions
// are equal; a nil and non-nil are not.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *IntImm:
		y := b.(*IntImm)
		return x.T == y.T && x.Value == y.Value
	case *FloatImm:
		y := b.(*FloatImm)
		return x.T == y.T && x.Value == y.Value
	case *Variable:
		y := b.(*Variable)
		return x.T == y.T && x.Name == y.Name
	case *Cast:
		y := b.(*Cast)
		return x.To == y.To && Equal(x.Value, y.Value)
	case *Not:
		y := b.(*Not)
		return Equal(x.Value, y.Value)
	case *SignFill:
		y := b.(*SignFill)
		return Equal(x.Value, y.Value)
	case *Binary:
		y := b.(*Binary)
		return x.Op == y.Op && Equal(x.A, y.A) && Equal(x.B, y.B)
	case *Compare:
		y := b.(*Compare)
		return x.Op == y.Op && Equal(x.A, y.A) && Equal(x.B, y.B)
	case *Logical:
		y := b.(*Logical)
		return x.Op == y.Op && Equal(x.A, y.A) && Equal(x.B, y.B)
	case *Select:
		y := b.(*Select)
		return Equal(x.Cond, y.Cond) && Equal(x.TrueVal, y.TrueVal) && Equal(x.FalseVal, y.FalseVal)
	case *Load:
		y := b.(*Load)
		return x.Name == y.Name && x.Buffer == y.Buffer && Equal(x.Index, y.Index)
	case *Ramp:
		y := b.(*Ramp)
		return x.Lanes == y.Lanes && Equal(x.Base, y.Base) && Equal(x.Stride, y.Stride)
	case *Broadcast:
		y := b.(*Broadcast)
		return x.Lanes == y.Lanes && Equal(x.Value, y.Value)
	case *Call:
		y := b.(*Call)
		if x.Name != y.Name || x.CallType != y.CallType || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Let:
		y := b.(*Let)
		return x.Name == y.Name && Equal(x.Value, y.Value) && Equal(x.Body, y.Body)
	case *Clamp:
		y := b.(*Clamp)
		return x.ClampKind == y.ClampKind && Equal(x.A, y.A) && Equal(x.Min, y.Min) &&
			Equal(x.Max, y.Max) && Equal(x.P1, y.P1)
	case *Infinity:
		y := b.(*Infinity)
		return x.Sign == y.Sign && x.Count == y.Count
	case *Solve:
		y := b.(*Solve)
		return x.Var == y.Var && Equal(x.Body, y.Body)
	case *TargetVar:
		y := b.(*TargetVar)
		return x.Name == y.Name && Equal(x.Body, y.Body)
	default:
		panic("ir.Equal: unknown expr variant")
	}
}

// EqualStmt reports structural equality of two statements, used by the
// cached mutator's cache-check mode and by the code logger's
// log-only-if-changed de-duplication.
func EqualStmt(a, b Stmt) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *LetStmt:
		y := b.(*LetStmt)
		return x.Name == y.Name && Equal(x.Value, y.Value) && EqualStmt(x.Body, y.Body)
	case *AssertStmt:
		y := b.(*AssertStmt)
		return x.Message == y.Message && Equal(x.Cond, y.Cond)
	case *PrintStmt:
		y := b.(*PrintStmt)
		if x.Prefix != y.Prefix || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *For:
		y := b.(*For)
		return x.Name == y.Name && x.ForType == y.ForType &&
			Equal(x.Min, y.Min) && Equal(x.Extent, y.Extent) && EqualStmt(x.Body, y.Body)
	case *Store:
		y := b.(*Store)
		return x.Name == y.Name && Equal(x.Value, y.Value) && Equal(x.Index, y.Index)
	case *Provide:
		y := b.(*Provide)
		if x.Name != y.Name || !Equal(x.Value, y.Value) || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Allocate:
		y := b.(*Allocate)
		return x.Name == y.Name && x.T == y.T && Equal(x.Size, y.Size) && EqualStmt(x.Body, y.Body)
	case *Realize:
		y := b.(*Realize)
		if x.Name != y.Name || x.T != y.T || len(x.Bounds) != len(y.Bounds) {
			return false
		}
		for i := range x.Bounds {
			if !Equal(x.Bounds[i].Min, y.Bounds[i].Min) || !Equal(x.Bounds[i].Extent, y.Bounds[i].Extent) {
				return false
			}
		}
		return EqualStmt(x.Body, y.Body)
	case *Pipeline:
		y := b.(*Pipeline)
		return x.Name == y.Name && EqualStmt(x.Produce, y.Produce) &&
			EqualStmt(x.Update, y.Update) && EqualStmt(x.Consume, y.Consume)
	case *Block:
		y := b.(*Block)
		return EqualStmt(x.First, y.First) && EqualStmt(x.Rest, y.Rest)
	case *StmtTargetVar:
		y := b.(*StmtTargetVar)
		return x.Name == y.Name && EqualStmt(x.Body, y.Body)
	default:
		panic("ir.EqualStmt: unknown stmt variant")
	}
}

// Hash returns an FNV-1a hash over the structure of e, such that
// Equal(a, b) implies Hash(a) == Hash(b). The cached mutator does not use
// it: its table is keyed by (context, node pointer).
func Hash(e Expr) uint64 {
	h := fnv.New64a()
	hashExpr(h, e)
	return h.Sum64()
}

func hashExpr(h interface{ Write([]byte) (int, error) }, e Expr) {
	write := func(b byte) { h.Write([]byte{b}) }
	writeStr := func(s string) { h.Write([]byte(s)) }
	writeU64 := func(v uint64) {
		var buf [8]byte
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	if e == nil {
		write(0xFF)
		return
	}
	write(byte(e.Kind()))
	switch n := e.(type) {
	case *IntImm:
		writeU64(uint64(n.Value))
	case *FloatImm:
		writeU64(math.Float64bits(n.Value))
	case *Variable:
		writeStr(n.Name)
	case *Cast:
		hashExpr(h, n.Value)
	case *Not:
		hashExpr(h, n.Value)
	case *SignFill:
		hashExpr(h, n.Value)
	case *Binary:
		write(byte(n.Op))
		hashExpr(h, n.A)
		hashExpr(h, n.B)
	case *Compare:
		write(byte(n.Op))
		hashExpr(h, n.A)
		hashExpr(h, n.B)
	case *Logical:
		write(byte(n.Op))
		hashExpr(h, n.A)
		hashExpr(h, n.B)
	case *Select:
		hashExpr(h, n.Cond)
		hashExpr(h, n.TrueVal)
		hashExpr(h, n.FalseVal)
	case *Load:
		writeStr(n.Name)
		hashExpr(h, n.Index)
	case *Ramp:
		writeU64(uint64(n.Lanes))
		hashExpr(h, n.Base)
		hashExpr(h, n.Stride)
	case *Broadcast:
		writeU64(uint64(n.Lanes))
		hashExpr(h, n.Value)
	case *Call:
		writeStr(n.Name)
		for _, a := range n.Args {
			hashExpr(h, a)
		}
	case *Let:
		writeStr(n.Name)
		hashExpr(h, n.Value)
		hashExpr(h, n.Body)
	case *Clamp:
		write(byte(n.ClampKind))
		hashExpr(h, n.A)
		hashExpr(h, n.Min)
		hashExpr(h, n.Max)
		hashExpr(h, n.P1)
	case *Infinity:
		writeU64(uint64(n.Sign))
		writeU64(uint64(n.Count))
	case *Solve:
		writeStr(n.Var)
		hashExpr(h, n.Body)
	case *TargetVar:
		writeStr(n.Name)
		hashExpr(h, n.Body)
	}
}
