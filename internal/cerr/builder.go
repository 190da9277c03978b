package cerr

import (
	"fmt"

	"stencil/token"
)

// Builder provides a fluent interface for constructing Diagnostics, the same
// shape the rest of this toolchain uses to attach suggestions and notes to a
// bare error code and message.
type Builder struct {
	d Diagnostic
}

// New starts building an error-level Diagnostic.
func New(code, message string, pos token.Position) *Builder {
	return &Builder{d: Diagnostic{Level: Error, Code: code, Message: message, Position: pos, Length: 1}}
}

// NewWarning starts building a warning-level Diagnostic.
func NewWarning(code, message string, pos token.Position) *Builder {
	return &Builder{d: Diagnostic{Level: Warning, Code: code, Message: message, Position: pos, Length: 1}}
}

func (b *Builder) WithLength(length int) *Builder {
	b.d.Length = length
	return b
}

func (b *Builder) WithSuggestion(message string) *Builder {
	b.d.Suggestions = append(b.d.Suggestions, Suggestion{Message: message})
	return b
}

func (b *Builder) WithReplacement(message, replacement string, pos token.Position, length int) *Builder {
	b.d.Suggestions = append(b.d.Suggestions, Suggestion{
		Message: message, Replacement: replacement, Position: pos, Length: length,
	})
	return b
}

func (b *Builder) WithNote(note string) *Builder {
	b.d.Notes = append(b.d.Notes, note)
	return b
}

func (b *Builder) WithHelp(help string) *Builder {
	b.d.HelpText = help
	return b
}

func (b *Builder) Build() Diagnostic { return b.d }

// Domain-specific constructors, one per code a caller actually raises.

// TypeMismatch builds the diagnostic for mismatched operand types in an
// arithmetic, compare, or logical expression.
func TypeMismatch(op, leftType, rightType string, pos token.Position) Diagnostic {
	return New(ErrorTypeMismatch, fmt.Sprintf("operand type mismatch in %q: %s vs %s", op, leftType, rightType), pos).
		WithNote("this compiler never widens operand types implicitly").
		WithSuggestion("insert an explicit cast on one side").
		Build()
}

// UnscheduledFunc builds the diagnostic for a function with no schedule
// reachable from the output.
func UnscheduledFunc(name string, pos token.Position) Diagnostic {
	return New(ErrorUnscheduledFunc, fmt.Sprintf("function %q has no schedule", name), pos).
		WithSuggestion(fmt.Sprintf("call %s.compute_root() or %s.compute_at(...)", name, name)).
		Build()
}

// BadLoopLevel builds the diagnostic for a compute_at/store_at level that
// names a loop variable absent from the realization order.
func BadLoopLevel(funcName, varName string, pos token.Position) Diagnostic {
	return New(ErrorBadLoopLevel, fmt.Sprintf("loop level %q does not name a variable of %q", varName, funcName), pos).
		WithHelp("loop levels must name a dimension of one of this function's callers").
		Build()
}

// BadSplitFactor builds the diagnostic for a non-positive split factor.
func BadSplitFactor(funcName, varName string, factor int, pos token.Position) Diagnostic {
	return New(ErrorBadSplitFactor, fmt.Sprintf("split factor %d for %s.%s must be positive", factor, funcName, varName), pos).
		Build()
}

// InsufficientBound builds the diagnostic for an explicit bound narrower
// than what a consumer actually requires.
func InsufficientBound(funcName, dim string, pos token.Position) Diagnostic {
	return New(ErrorInsufficientBound, fmt.Sprintf("explicit bound on %s.%s is narrower than the region consumers require", funcName, dim), pos).
		WithNote("widen the bound, or remove it and let inference compute one").
		Build()
}

// UnusedSchedule builds the warning for a schedule directive on a function
// that is never called from the output.
func UnusedSchedule(funcName string, pos token.Position) Diagnostic {
	return NewWarning(WarningUnusedSchedule, fmt.Sprintf("schedule on %q has no effect; it is never called", funcName), pos).
		Build()
}

// Bug is an internal invariant violation — a condition the compiler itself
// must never reach regardless of the user's schedule. Raising one panics
// rather than returning an error, mirroring the original implementation's
// internal_error()-class assertions: these are compiler bugs, not
// diagnosable user mistakes.
type Bug struct {
	Code    string
	Message string
}

func (b Bug) Error() string { return fmt.Sprintf("%s: %s", b.Code, b.Message) }

// Panic raises an invariant violation with the given code and message.
func Panic(code, message string) {
	panic(Bug{Code: code, Message: message})
}

// Panicf is Panic with fmt.Sprintf-style formatting.
func Panicf(code, format string, args ...any) {
	panic(Bug{Code: code, Message: fmt.Sprintf(format, args...)})
}
