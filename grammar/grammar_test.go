package grammar

import "testing"

const samplePipeline = `
/// Produces a horizontally-blurred view of input.
param input: buffer(u8, 2);
param width: i32;

func blur_x(x, y) = (input(x - 1, y) + input(x, y) + input(x + 1, y)) / 3;

func blur_y(x, y) = (blur_x(x, y - 1) + blur_x(x, y) + blur_x(x, y + 1)) / 3;

reduce hist(blur_y(x, y)) += 1 over x in [0, width), y in [0, 16);

schedule blur_x {
  compute_at(blur_y, y);
  vectorize(x);
}

schedule blur_y {
  compute_root();
  split(y, y_outer, y_inner, 8);
  parallel(y_outer);
}
`

func TestParseProgramDecls(t *testing.T) {
	prog, err := ParseString("sample.stn", samplePipeline)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	var params, funcs, reduces, schedules int
	for _, d := range prog.Decls {
		switch {
		case d.Param != nil:
			params++
		case d.Func != nil:
			funcs++
		case d.Reduce != nil:
			reduces++
		case d.Schedule != nil:
			schedules++
		}
	}
	if params != 2 {
		t.Fatalf("expected 2 params, got %d", params)
	}
	if funcs != 2 {
		t.Fatalf("expected 2 funcs, got %d", funcs)
	}
	if reduces != 1 {
		t.Fatalf("expected 1 reduce, got %d", reduces)
	}
	if schedules != 2 {
		t.Fatalf("expected 2 schedules, got %d", schedules)
	}
}

func TestParseBufferParamType(t *testing.T) {
	prog, err := ParseString("sample.stn", `param input: buffer(u8, 2);`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	p := prog.Decls[0].Param
	if p == nil || p.Name != "input" {
		t.Fatalf("expected a param decl named input, got %#v", prog.Decls[0])
	}
	if p.Type.Buffer == nil {
		t.Fatalf("expected a buffer type")
	}
	if p.Type.Buffer.Elem != "u8" || p.Type.Buffer.Dims != "2" {
		t.Fatalf("unexpected buffer type: %+v", p.Type.Buffer)
	}
}

func TestParseScalarParamType(t *testing.T) {
	prog, err := ParseString("sample.stn", `param width: i32;`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	p := prog.Decls[0].Param
	if p.Type.Buffer != nil || p.Type.Scalar != "i32" {
		t.Fatalf("expected a scalar i32 type, got %+v", p.Type)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog, err := ParseString("sample.stn", `func f(x, y) = x + y * 2 == 10 && x > 0;`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	f := prog.Decls[0].Func
	and := f.Body.Or.Left
	if len(and.Rest) != 1 {
		t.Fatalf("expected a single && clause, got %d", len(and.Rest))
	}
	cmp := and.Left
	if cmp.Op == nil || *cmp.Op != "==" {
		t.Fatalf("expected the left conjunct to be an == comparison, got %+v", cmp)
	}
	if len(cmp.Left.Ops) != 1 || cmp.Left.Ops[0].Operator != "+" {
		t.Fatalf("expected x + (y * 2) on the comparison's left side, got %+v", cmp.Left)
	}
	if len(cmp.Left.Left.Ops) != 0 {
		t.Fatalf("expected the addition's left operand to carry no multiplication, got %+v", cmp.Left.Left)
	}
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	if _, err := ParseString("sample.stn", `param width: i32`); err == nil {
		t.Fatalf("expected a parse error for a missing semicolon")
	}
}

func TestProgramStringRoundTripsDecl(t *testing.T) {
	prog, err := ParseString("sample.stn", `func f(x) = x + 1;`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	got := prog.String()
	want := "func f(x) = x + 1;\n"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
