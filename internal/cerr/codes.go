package cerr

// Error codes for this compiler's diagnostics. Codes are grouped by stage so
// a code's prefix alone tells a reader what part of the pipeline raised it.
//
// Error code ranges:
// E0001-E0099: type-checking errors (IR construction)
// E0100-E0199: scheduling errors
// E0200-E0299: bounds inference errors
// E0300-E0399: lowering errors (clamp, sliding window, loop split, flatten)
// W0800-W0899: warnings
// B0001-B0099: invariant violations ("bugs" — conditions the compiler itself
//              must never produce, as opposed to mistakes in user schedules)

const (
	// E0001: arithmetic/compare/logical operand type mismatch
	ErrorTypeMismatch = "E0001"

	// E0002: a Func is called or realized with the wrong number of dimensions
	ErrorArgCountMismatch = "E0002"

	// E0003: a Func has no schedule set before the scheduler runs
	ErrorUnscheduledFunc = "E0003"

	// E0004: compute_at/store_at names a loop variable that doesn't exist in
	// the realization order
	ErrorBadLoopLevel = "E0004"

	// E0005: split factor is non-positive
	ErrorBadSplitFactor = "E0005"

	// E0100: compute_at references a function not in its callers' pipeline
	ErrorBadComputeAt = "E0100"

	// E0101: store_at is not an ancestor of compute_at in the loop nest
	ErrorStoreAtNotAncestor = "E0101"

	// E0102: dependency cycle in the call graph — no realization order exists
	ErrorRealizationCycle = "E0102"

	// E0200: a bounds query was made for a Func with no Domain recorded
	ErrorNoDomain = "E0200"

	// E0201: an explicit bound (Schedule.Bound) is narrower than the bounds
	// actually required by a consumer
	ErrorInsufficientBound = "E0201"

	// E0300: clamp lowering requested a BorderKind with no registered
	// lowering rule
	ErrorUnknownBorderKind = "E0300"

	// E0301: storage folding factor does not evenly divide the extent used
	// to derive it
	ErrorBadFoldFactor = "E0301"

	// E0302: a buffer's declared element type disagrees with a Load/Store
	// that addresses it
	ErrorBufferElementSize = "E0302"

	// Warnings

	// W0800: a schedule directive has no effect because the Func it targets
	// is never called
	WarningUnusedSchedule = "W0800"

	// W0801: a split's "after" fragment is always empty given the known
	// bounds — the split degenerates to a no-op guard
	WarningDegenerateSplit = "W0801"

	// Invariant violations (compiler bugs, not schedule/user errors)

	// B0001: the cached mutator recomputed a cached (context, node) pair and
	// got a structurally different answer
	BugCacheMismatch = "B0001"

	// B0002: LazyScope's context push/pop stack was popped more times than
	// pushed, or never popped at all
	BugUnbalancedScope = "B0002"

	// B0003: a type switch over Expr/Stmt fell through to a variant this
	// version of the compiler does not know about
	BugUnknownVariant = "B0003"

	// B0004: a Func was injected into the loop nest without a compute_level
	// having been resolved for it
	BugMissingComputeLevel = "B0004"
)

// IsWarning reports whether code identifies a warning rather than a hard
// error or invariant violation.
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// IsBug reports whether code identifies an internal invariant violation —
// something that should abort compilation unconditionally rather than be
// collected and reported alongside user-facing diagnostics.
func IsBug(code string) bool {
	return len(code) > 0 && code[0] == 'B'
}

// Description returns a human-readable description of code, used by
// documentation generation and by `--explain`-style CLI flags.
func Description(code string) string {
	switch code {
	case ErrorTypeMismatch:
		return "operand types do not match; this compiler never widens implicitly"
	case ErrorArgCountMismatch:
		return "call or realize supplied the wrong number of dimensions"
	case ErrorUnscheduledFunc:
		return "a function reachable from the output has no schedule"
	case ErrorBadLoopLevel:
		return "a loop level names a variable absent from the realization order"
	case ErrorBadSplitFactor:
		return "a split factor must be a positive integer"
	case ErrorBadComputeAt:
		return "compute_at names a function that is not actually a consumer"
	case ErrorStoreAtNotAncestor:
		return "store_at must name a loop at or outside the compute_at level"
	case ErrorRealizationCycle:
		return "the call graph has a cycle; no realization order exists"
	case ErrorNoDomain:
		return "bounds were requested for a function with no recorded domain"
	case ErrorInsufficientBound:
		return "an explicit bound is narrower than what a consumer requires"
	case ErrorUnknownBorderKind:
		return "no lowering rule is registered for this border handling kind"
	case ErrorBadFoldFactor:
		return "a storage fold factor must evenly divide the derived extent"
	case ErrorBufferElementSize:
		return "a buffer access disagrees with the buffer's declared element type"
	case WarningUnusedSchedule:
		return "a schedule directive targets a function that is never called"
	case WarningDegenerateSplit:
		return "a loop split's tail fragment is provably empty"
	case BugCacheMismatch:
		return "cached mutator cache-check found a stale cache entry"
	case BugUnbalancedScope:
		return "lazy scope context stack was not balanced"
	case BugUnknownVariant:
		return "type switch fell through on an unknown IR variant"
	case BugMissingComputeLevel:
		return "a function was scheduled with no resolved compute_level"
	default:
		return "unknown diagnostic code"
	}
}
