package calc_test

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/zephyrtronium/calc"
)

// sym builds a symbolic term by applying a binary operator.
func sym(t *testing.T, op string, x, y any) any {
	t.Helper()
	v, err := calc.BinaryOps[op].Apply(x, y)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSolveLinear(t *testing.T) {
	x, y := calc.Symbol("x"), calc.Symbol("y")
	eqs := []calc.Equation{
		{Lhs: sym(t, "+", x, y), Rhs: big.NewInt(3)},
		{Lhs: sym(t, "-", x, y), Rhs: big.NewInt(1)},
	}
	sol, err := calc.Solve(eqs, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if len(sol.Unknowns) != 2 || sol.Unknowns[0] != x || sol.Unknowns[1] != y {
		t.Fatalf("wrong unknowns %v", sol.Unknowns)
	}
	if sol.Multiple() {
		t.Errorf("unique solution reported as multiple: %v", sol.Sets)
	}
	if got := calc.Format(calc.List(sol.Sets[0])); got != "[2, 1]" {
		t.Errorf("want [2, 1], got %s", got)
	}
}

func TestSolveRational(t *testing.T) {
	x := calc.Symbol("x")
	eqs := []calc.Equation{{Lhs: sym(t, "*", big.NewInt(3), x), Rhs: big.NewInt(1)}}
	sol, err := calc.Solve(eqs, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if got := calc.Format(sol.Sets[0][0]); got != "1/3" {
		t.Errorf("want exact 1/3, got %s", got)
	}
}

func TestSolveQuadratic(t *testing.T) {
	x := calc.Symbol("x")
	eqs := []calc.Equation{{Lhs: sym(t, "^", x, big.NewInt(2)), Rhs: big.NewInt(2)}}
	sol, err := calc.Solve(eqs, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if len(sol.Sets) != 2 {
		t.Fatalf("want two roots, got %v", sol.Sets)
	}
	for i, want := range []float64{-math.Sqrt2, math.Sqrt2} {
		f, ok := calc.Float64(sol.Sets[i][0])
		if !ok {
			t.Fatalf("root %d is %v", i, sol.Sets[i][0])
		}
		if math.Abs(f-want) > 1e-12 {
			t.Errorf("root %d: want %g, got %g", i, want, f)
		}
	}
}

func TestSolveFree(t *testing.T) {
	x, y := calc.Symbol("x"), calc.Symbol("y")
	eqs := []calc.Equation{{Lhs: sym(t, "+", x, y), Rhs: big.NewInt(3)}}
	sol, err := calc.Solve(eqs, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if !sol.Multiple() {
		t.Error("underdetermined system should have multiple solutions")
	}
	if len(sol.Free) != 1 || sol.Free[0] != y {
		t.Errorf("want y free, got %v", sol.Free)
	}
	if got := calc.Format(calc.List(sol.Sets[0])); got != "[3, 0]" {
		t.Errorf("want [3, 0], got %s", got)
	}
}

func TestSolveErrors(t *testing.T) {
	x, y := calc.Symbol("x"), calc.Symbol("y")
	cases := []struct {
		name string
		eqs  []calc.Equation
	}{
		{"inconsistent", []calc.Equation{{Lhs: x, Rhs: sym(t, "+", x, big.NewInt(1))}}},
		{"contradiction", []calc.Equation{{Lhs: big.NewInt(1), Rhs: big.NewInt(2)}}},
		{"nonlinear", []calc.Equation{{Lhs: sym(t, "*", x, y), Rhs: big.NewInt(1)}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sol, err := calc.Solve(c.eqs, 1e-12)
			var ve *calc.ValueError
			if !errors.As(err, &ve) {
				t.Errorf("want value error, got %v, %v", sol, err)
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	x := calc.Symbol("x")
	term := sym(t, "+", sym(t, "*", big.NewInt(2), x), big.NewInt(1))
	if got := calc.Format(term); got != "2 * x + 1" {
		t.Errorf("wrong term %s", got)
	}
	v, err := calc.Substitute(term, map[string]any{"x": big.NewInt(4)})
	if err != nil {
		t.Fatal(err)
	}
	if got := calc.Format(v); got != "9" {
		t.Errorf("want 9, got %s", got)
	}
}
