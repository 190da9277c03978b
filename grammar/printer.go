package grammar

import (
	"fmt"
	"strings"
)

func indent(level int) string {
	return strings.Repeat("    ", level)
}

func (p *Program) String() string {
	var b strings.Builder
	for _, d := range p.Decls {
		b.WriteString(d.String())
	}
	return b.String()
}

func (d *Decl) String() string {
	switch {
	case d.Comment != nil:
		return d.Comment.String() + "\n"
	case d.Param != nil:
		return d.Param.String() + "\n"
	case d.Func != nil:
		return d.Func.String() + "\n"
	case d.Reduce != nil:
		return d.Reduce.String() + "\n"
	case d.Schedule != nil:
		return d.Schedule.String()
	}
	return ""
}

func (c *DocComment) String() string { return c.Text }
func (c *Comment) String() string    { return c.Text }

func (p *ParamDecl) String() string {
	return fmt.Sprintf("param %s: %s;", p.Name, p.Type.String())
}

func (t *TypeName) String() string {
	if t.Buffer != nil {
		return t.Buffer.String()
	}
	return t.Scalar
}

func (b *BufferType) String() string {
	return fmt.Sprintf("buffer(%s, %s)", b.Elem, b.Dims)
}

func (f *FuncDecl) String() string {
	return fmt.Sprintf("func %s(%s) = %s;", f.Name, strings.Join(f.Args, ", "), f.Body.String())
}

func (r *ReduceDecl) String() string {
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = a.String()
	}
	dims := make([]string, len(r.Dims))
	for i, d := range r.Dims {
		dims[i] = d.String()
	}
	return fmt.Sprintf("reduce %s(%s) %s %s over %s;",
		r.Name, strings.Join(args, ", "), r.Op, r.Body.String(), strings.Join(dims, ", "))
}

func (d *ReduceDim) String() string {
	return fmt.Sprintf("%s in [%s, %s)", d.Var, d.Min.String(), d.Max.String())
}

func (s *ScheduleDecl) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("schedule %s {\n", s.Name))
	for _, dir := range s.Directives {
		b.WriteString(indent(1) + dir.String() + "\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func (d *ScheduleDirective) String() string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s);", d.Name, strings.Join(args, ", "))
}

func (a *DirectiveArg) String() string {
	if a.Number != nil {
		return *a.Number
	}
	if a.Ident != nil {
		return *a.Ident
	}
	return ""
}

func (e *Expr) String() string { return e.Or.String() }

func (o *OrExpr) String() string {
	parts := make([]string, 0, len(o.Rest)+1)
	parts = append(parts, o.Left.String())
	for _, r := range o.Rest {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " || ")
}

func (a *AndExpr) String() string {
	parts := make([]string, 0, len(a.Rest)+1)
	parts = append(parts, a.Left.String())
	for _, r := range a.Rest {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " && ")
}

func (c *CompareExpr) String() string {
	if c.Op == nil {
		return c.Left.String()
	}
	return fmt.Sprintf("%s %s %s", c.Left.String(), *c.Op, c.Right.String())
}

func (a *AddExpr) String() string {
	var b strings.Builder
	b.WriteString(a.Left.String())
	for _, op := range a.Ops {
		b.WriteString(" " + op.String())
	}
	return b.String()
}

func (o *AddOp) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Right.String())
}

func (m *MulExpr) String() string {
	var b strings.Builder
	b.WriteString(m.Left.String())
	for _, op := range m.Ops {
		b.WriteString(" " + op.String())
	}
	return b.String()
}

func (o *MulOp) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Right.String())
}

func (u *UnaryExpr) String() string {
	if u.Negative {
		return "-" + u.Value.String()
	}
	return u.Value.String()
}

func (p *PrimaryExpr) String() string {
	switch {
	case p.Call != nil:
		return p.Call.String()
	case p.Number != nil:
		return *p.Number
	case p.Ident != nil:
		return *p.Ident
	case p.Paren != nil:
		return "(" + p.Paren.String() + ")"
	}
	return ""
}

func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}
