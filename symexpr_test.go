package symexpr_test

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	symexpr "github.com/njchilds90/symexpr"
)

// ============================================================
// Construction and rendering
// ============================================================

func TestConst_Render(t *testing.T) {
	e := symexpr.Const(42.0)
	if e.String() != "42" {
		t.Errorf("want 42, got %s", e.String())
	}
}

func TestVar_Render(t *testing.T) {
	x := symexpr.Var[float64]("x")
	if x.String() != "x" {
		t.Errorf("want x, got %s", x.String())
	}
}

func TestZeroValue_IsZeroConstant(t *testing.T) {
	var e symexpr.Expr[float64]
	if e.String() != "0" {
		t.Errorf("zero value should render as 0, got %s", e.String())
	}
	v, err := e.Eval(nil)
	if err != nil || v != 0 {
		t.Errorf("zero value should evaluate to 0, got %v, %v", v, err)
	}
	if !e.IsConstant() {
		t.Errorf("zero value should be constant")
	}
}

func TestRender_FullyParenthesized(t *testing.T) {
	x := symexpr.Var[float64]("x")
	y := symexpr.Var[float64]("y")
	cases := []struct {
		expr symexpr.Expr[float64]
		want string
	}{
		{x.Add(y), "(x + y)"},
		{x.Sub(y), "(x - y)"},
		{x.Mul(y), "(x * y)"},
		{x.Div(y), "(x / y)"},
		{x.Neg(), "-(x)"},
		{symexpr.Pow(x, y), "pow(x, y)"},
		{symexpr.PowN(x, 2), "pow(x, 2)"},
		{symexpr.Sin(x), "sin(x)"},
		{symexpr.Cos(x), "cos(x)"},
		{symexpr.Exp(x), "exp(x)"},
		{symexpr.Log(x), "log(x)"},
		{symexpr.PowN(x, 2).Add(symexpr.Sin(x)), "(pow(x, 2) + sin(x))"},
	}
	for _, c := range cases {
		if got := c.expr.String(); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestRender_ComplexConstant(t *testing.T) {
	z := symexpr.Var[complex128]("z")
	g := symexpr.Exp(z).Add(symexpr.PowN(z, 2))
	if g.String() != "(exp(z) + pow(z, (2+0i)))" {
		t.Errorf("want (exp(z) + pow(z, (2+0i))), got %s", g.String())
	}
}

// ============================================================
// Evaluation
// ============================================================

func TestEval_RealExpression(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.PowN(x, 2).Add(symexpr.Sin(x))

	got, err := f.Eval(map[string]float64{"x": 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Pow(1.5, 2) + math.Sin(1.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestEval_AllOperators(t *testing.T) {
	x := symexpr.Var[float64]("x")
	y := symexpr.Var[float64]("y")
	vars := map[string]float64{"x": 3, "y": 2}
	cases := []struct {
		expr symexpr.Expr[float64]
		want float64
	}{
		{x.Add(y), 5},
		{x.Sub(y), 1},
		{x.Mul(y), 6},
		{x.Div(y), 1.5},
		{x.Neg(), -3},
		{symexpr.Pow(x, y), 9},
		{symexpr.Log(symexpr.Exp(y)), 2},
		{symexpr.Cos(symexpr.Const(0.0)), 1},
	}
	for _, c := range cases {
		got, err := c.expr.Eval(vars)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.expr, err)
		}
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("%s: want %v, got %v", c.expr, c.want, got)
		}
	}
}

func TestEval_UndefinedVariable(t *testing.T) {
	x := symexpr.Var[float64]("x")
	y := symexpr.Var[float64]("y")
	f := x.Add(y.Mul(symexpr.Const(2.0)))

	_, err := f.Eval(map[string]float64{"x": 1})
	if err == nil {
		t.Fatal("expected error for unbound y")
	}
	if !errors.Is(err, symexpr.ErrUndefinedVariable) {
		t.Errorf("want ErrUndefinedVariable, got %v", err)
	}
	var uv *symexpr.UndefinedVariableError
	if !errors.As(err, &uv) || uv.Name != "y" {
		t.Errorf("want UndefinedVariableError for y, got %v", err)
	}
}

func TestEval_DivisionByZeroUnguarded(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.Const(1.0).Div(x)

	got, err := f.Eval(map[string]float64{"x": 0})
	if err != nil {
		t.Fatalf("division by zero must not error, got %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Errorf("want +Inf, got %v", got)
	}
}

func TestEval_ComplexExpression(t *testing.T) {
	z := symexpr.Var[complex128]("z")
	g := symexpr.Exp(z).Add(symexpr.PowN(z, 2))

	at := complex(1, 1)
	got, err := g.Eval(map[string]complex128{"z": at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := cmplx.Exp(at) + at*at
	if cmplx.Abs(got-want) > 1e-12 {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestEval_EmptyVariableName(t *testing.T) {
	v := symexpr.Var[float64]("")
	got, err := v.Eval(map[string]float64{"": 7})
	if err != nil || got != 7 {
		t.Errorf("empty name is an ordinary variable: want 7, got %v, %v", got, err)
	}
}

// ============================================================
// Differentiation
// ============================================================

func TestDiff_RealExpression(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.PowN(x, 2).Add(symexpr.Sin(x))

	df, err := f.Diff("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := df.Eval(map[string]float64{"x": 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 2*1.5 + math.Cos(1.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestDiff_Unsimplified(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.PowN(x, 2).Add(symexpr.Sin(x))

	df, err := f.Diff("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The raw rule output, multiplications by 1 included.
	want := "(((2 * pow(x, 1)) * 1) + (cos(x) * 1))"
	if df.String() != want {
		t.Errorf("want %s, got %s", want, df.String())
	}
}

func TestDiff_RuleTable(t *testing.T) {
	x := symexpr.Var[float64]("x")
	u := symexpr.Var[float64]("u")
	cases := []struct {
		expr symexpr.Expr[float64]
		want string
	}{
		{symexpr.Const(5.0), "0"},
		{x, "1"},
		{u, "0"},
		{x.Add(u), "(1 + 0)"},
		{x.Sub(u), "(1 - 0)"},
		{x.Mul(u), "((1 * u) + (x * 0))"},
		{x.Div(u), "(((1 * u) - (x * 0)) / pow(u, 2))"},
		{symexpr.Cos(x), "(-(sin(x)) * 1)"},
		{symexpr.Exp(x), "(exp(x) * 1)"},
		{symexpr.Log(x), "(1 / x)"},
		{x.Neg(), "-(1)"},
	}
	for _, c := range cases {
		d, err := c.expr.Diff("x")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.expr, err)
		}
		if d.String() != c.want {
			t.Errorf("d/dx %s: want %s, got %s", c.expr, c.want, d.String())
		}
	}
}

func TestDiff_NonConstantExponent(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.Pow(x, x)

	_, err := f.Diff("x")
	if err == nil {
		t.Fatal("expected error for x^x")
	}
	if !errors.Is(err, symexpr.ErrUnsupportedDerivative) {
		t.Errorf("want ErrUnsupportedDerivative, got %v", err)
	}
}

func TestDiff_NestedNonConstantExponent(t *testing.T) {
	// The failure must propagate out of an enclosing sum with no partial result.
	x := symexpr.Var[float64]("x")
	f := symexpr.Sin(x).Add(symexpr.Pow(symexpr.Const(2.0), x))

	_, err := f.Diff("x")
	if !errors.Is(err, symexpr.ErrUnsupportedDerivative) {
		t.Errorf("want ErrUnsupportedDerivative, got %v", err)
	}
}

func TestDiff_ConstantExponentSubtree(t *testing.T) {
	// The exponent need not be a literal, only variable-free.
	x := symexpr.Var[float64]("x")
	f := symexpr.Pow(x, symexpr.Const(1.0).Add(symexpr.Const(2.0)))

	df, err := f.Diff("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := df.Eval(map[string]float64{"x": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-12) > 1e-12 { // 3*x^2 at x=2
		t.Errorf("want 12, got %v", got)
	}
}

func TestDiff_SecondDerivative(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.PowN(x, 3)

	df, err := f.Diff("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2f, err := df.Diff("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := d2f.Eval(map[string]float64{"x": 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-24) > 1e-12 { // 6*x at x=4
		t.Errorf("want 24, got %v", got)
	}
}

func TestDiff_ComplexExpression(t *testing.T) {
	z := symexpr.Var[complex128]("z")
	g := symexpr.Exp(z).Add(symexpr.PowN(z, 2))

	dg, err := g.Diff("z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at := complex(1, 1)
	got, err := dg.Eval(map[string]complex128{"z": at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := cmplx.Exp(at) + 2*at
	if cmplx.Abs(got-want) > 1e-12 {
		t.Errorf("want %v, got %v", want, got)
	}
}

// ============================================================
// Substitution
// ============================================================

func TestSubstitute_Match(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.PowN(x, 2).Add(x)

	g := f.Substitute("x", symexpr.Const(3.0))
	if g.String() != "(pow(3, 2) + 3)" {
		t.Errorf("want (pow(3, 2) + 3), got %s", g.String())
	}
	got, err := g.Eval(nil)
	if err != nil || got != 12 {
		t.Errorf("want 12, got %v, %v", got, err)
	}
}

func TestSubstitute_NoMatch(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.PowN(x, 2).Add(symexpr.Sin(x))

	g := f.Substitute("y", symexpr.Const(9.0))
	for _, at := range []float64{-2, 0, 1.5, 10} {
		fv, err1 := f.Eval(map[string]float64{"x": at})
		gv, err2 := g.Eval(map[string]float64{"x": at})
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected error: %v, %v", err1, err2)
		}
		if fv != gv {
			t.Errorf("at x=%v: want %v, got %v", at, fv, gv)
		}
	}
}

func TestSubstitute_ReplacementInsertedVerbatim(t *testing.T) {
	// Substitution never recurses into the replacement.
	x := symexpr.Var[float64]("x")
	f := x.Mul(symexpr.Const(2.0))

	g := f.Substitute("x", x.Add(symexpr.Const(1.0)))
	if g.String() != "((x + 1) * 2)" {
		t.Errorf("want ((x + 1) * 2), got %s", g.String())
	}
	got, err := g.Eval(map[string]float64{"x": 4})
	if err != nil || got != 10 {
		t.Errorf("want 10, got %v, %v", got, err)
	}
}

func TestSubstitute_Expression(t *testing.T) {
	x := symexpr.Var[float64]("x")
	t2 := symexpr.Var[float64]("t")
	f := symexpr.Sin(x)

	g := f.Substitute("x", symexpr.PowN(t2, 2))
	if g.String() != "sin(pow(t, 2))" {
		t.Errorf("want sin(pow(t, 2)), got %s", g.String())
	}
}

// ============================================================
// Immutability
// ============================================================

func TestImmutability_OriginalUnchanged(t *testing.T) {
	x := symexpr.Var[float64]("x")
	f := symexpr.PowN(x, 2).Add(symexpr.Sin(x))

	before := f.String()
	beforeVal, err := f.Eval(map[string]float64{"x": 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.Diff("x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = f.Substitute("x", symexpr.Const(0.0))
	_ = f.Mul(f).Add(f.Neg())

	if f.String() != before {
		t.Errorf("rendering changed: want %s, got %s", before, f.String())
	}
	afterVal, err := f.Eval(map[string]float64{"x": 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if afterVal != beforeVal {
		t.Errorf("evaluation changed: want %v, got %v", beforeVal, afterVal)
	}
}

// ============================================================
// Predicates
// ============================================================

func TestIsConstant(t *testing.T) {
	x := symexpr.Var[float64]("x")
	cases := []struct {
		expr symexpr.Expr[float64]
		want bool
	}{
		{symexpr.Const(2.0), true},
		{symexpr.Const(2.0).Add(symexpr.Const(3.0)).Mul(symexpr.Const(4.0)), true},
		{symexpr.Sin(symexpr.Const(1.0)), true},
		{x, false},
		{symexpr.Const(2.0).Add(x), false},
		{symexpr.Pow(symexpr.Const(2.0), symexpr.Exp(x)), false},
	}
	for _, c := range cases {
		if got := c.expr.IsConstant(); got != c.want {
			t.Errorf("%s: want %v, got %v", c.expr, c.want, got)
		}
	}
}

func TestIsVariable_Shallow(t *testing.T) {
	x := symexpr.Var[float64]("x")
	if !x.IsVariable() {
		t.Errorf("x should be a variable")
	}
	if x.Add(x).IsVariable() {
		t.Errorf("(x + x) is not a variable leaf")
	}
	if !x.IsVariableNamed("x") {
		t.Errorf("x should match name x")
	}
	if x.IsVariableNamed("y") {
		t.Errorf("x should not match name y")
	}
}
