package cerr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stencil/token"
)

func TestReporterFormat(t *testing.T) {
	source := `func blur(x, y) {
    schedule blur.compute_root();
}`
	reporter := NewReporter("blur.stn", source)

	d := UnscheduledFunc("blur_x", token.Position{Line: 2, Column: 5})
	formatted := reporter.Format(d)

	assert.Contains(t, formatted, "error["+ErrorUnscheduledFunc+"]")
	assert.Contains(t, formatted, "blur_x")
	assert.Contains(t, formatted, "blur.stn:2:5")
	assert.Contains(t, formatted, "compute_root")
}

func TestTypeMismatchDiagnostic(t *testing.T) {
	d := TypeMismatch("+", "int32", "float32", token.Position{Line: 1, Column: 1})
	assert.Equal(t, ErrorTypeMismatch, d.Code)
	assert.Contains(t, d.Message, "int32")
	assert.Contains(t, d.Message, "float32")
	assert.NotEmpty(t, d.Suggestions)
}

func TestIsWarningAndIsBug(t *testing.T) {
	assert.True(t, IsWarning(WarningUnusedSchedule))
	assert.False(t, IsWarning(ErrorTypeMismatch))
	assert.True(t, IsBug(BugCacheMismatch))
	assert.False(t, IsBug(ErrorTypeMismatch))
}

func TestPanicRaisesBug(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		bug, ok := r.(Bug)
		if !ok {
			t.Fatalf("expected Bug, got %T", r)
		}
		assert.Equal(t, BugUnknownVariant, bug.Code)
	}()
	Panicf(BugUnknownVariant, "unknown variant %d", 7)
}
