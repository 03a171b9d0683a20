package funcs_test

import (
	"errors"
	"math"
	"testing"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/funcs"
)

func newContext() *calc.Context {
	opts := []calc.ContextOption{calc.Builtins(funcs.Table())}
	for name, m := range funcs.Modules() {
		opts = append(opts, calc.Module(name, m))
	}
	return calc.NewContext(opts...)
}

func eval(t *testing.T, ctx *calc.Context, src string) any {
	t.Helper()
	r, err := ctx.Exec(src)
	if err != nil {
		t.Fatalf("%s failed: %v", src, err)
	}
	return r.Value
}

func TestFuncs(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"sqrt(16)", "4"},
		{"sqrt(9/4)", "3/2"},
		{"sqrt(2)", "1.41421356237309505"},
		{"sqrt(-4)", "(0+2i)"},
		{"sqrt 25", "5"},
		{"abs(-3)", "3"},
		{"abs(-3/4)", "3/4"},
		{"floor(7/2)", "3"},
		{"ceil(7/2)", "4"},
		{"floor(-7/2)", "-4"},
		{"ceil(-7/2)", "-3"},
		{"floor(-2.5)", "-3"},
		{"ceil(2.5)", "3"},
		{"max(3, 1, 4)", "4"},
		{"min([3, 1, 4])", "1"},
		{"gcd(12, 18)", "6"},
		{"binom(5, 2)", "10"},
		{"binom(2, 5)", "0"},
		{"real(3)", "3"},
		{"imag(3)", "0"},
		{"sin(0)", "0"},
		{"cos(0)", "1"},
		{"len(\"héllo\")", "5"},
		{"len([1, 2, 3])", "3"},
		{"sum(1, 2, 3)", "6"},
		{"sum(1..4)", "10"},
		{"sum([])", "0"},
		{"product(1..5)", "120"},
		{"list(range(3))", "[1, 2, 3]"},
		{"range(2, 8, 3)", "2..5..8"},
		{"sort([3, 1, 2])", "[1, 2, 3]"},
		{"map(x => x*x, 1..3)", "[1, 4, 9]"},
		{"filter(? > 1, [1, 2, 3])", "[2, 3]"},
		{"reduce((a, b) => a + b, 1..4)", "10"},
		{"reduce((a, b) => a - b, [1, 2], 10)", "7"},
		{"zip([1, 2], [3, 4, 5])", "[[1, 3], [2, 4]]"},
		{"car([1, 2])", "1"},
		{"cdr([1, 2, 3])", "[2, 3]"},
		{"cons(0, [1])", "[0, 1]"},
		{"enum([\"a\", \"b\"])", `[[1, "a"], [2, "b"]]`},
		{"find(2, [1, 2, 2])", "[2, 3]"},
		{"find(? > 1, [1, 2, 3])", "[2, 3]"},
		{"all([1, true])", "true"},
		{"any([0, false])", "false"},
		{"same([1, 1.0])", "true"},
		{"depth([[1], 2])", "2"},
		{"shape([[1, 2, 3], [4, 5, 6]])", "[2, 3]"},
		{"transp([[1, 2], [3, 4]])", "[[1, 3], [2, 4]]"},
		{"flatten([1, [2, [3]]])", "[1, 2, 3]"},
		{"number?(1)", "true"},
		{"list?(1)", "false"},
		{"map?(sqrt)", "true"},
		{"symbol?('x)", "true"},
		{"compose(sqrt, abs)(-16)", "4"},
		{"solve('(2 x + 1 == 7))", "3"},
		{"solve('(x^2 - 4))", "[-2, 2]"},
		{"solve('(x + y == 3), '(x - y == 1))", "[2, 1]"},
		{"subs('(2 x + 1), x: 4)", "9"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			ctx := newContext()
			v := eval(t, ctx, c.src)
			if got := ctx.Format(v); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestConstants(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"PI", math.Pi},
		{"E", math.E},
		{"degrees(PI)", 180},
		{"exp(0)", 1},
		{"ln(E)", 1},
		{"log(1000)", 3},
		{"log2(8)", 3},
		{"atan(1) * 4", math.Pi},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			v := eval(t, newContext(), c.src)
			f, ok := calc.Float64(v)
			if !ok {
				t.Fatalf("%v is not real", v)
			}
			if math.Abs(f-c.want) > 1e-12 {
				t.Errorf("want %g, got %g", c.want, f)
			}
		})
	}
}

func TestFuncErrors(t *testing.T) {
	cases := []struct {
		src string
		err any
	}{
		{"ln(0)", new(*calc.DomainError)},
		{"log(-1)", new(*calc.DomainError)},
		{"asin(2)", new(*calc.DomainError)},
		{"sqrt(\"x\")", new(*calc.TypeError)},
		{"gcd(1.5, 2)", new(*calc.TypeError)},
		{"max()", new(*calc.ValueError)},
		{"car([])", new(*calc.ValueError)},
		{"reduce((a, b) => a, [])", new(*calc.ValueError)},
		{"map(1, [1])", new(*calc.TypeError)},
		{"sort([1, \"a\"])", new(*calc.TypeError)},
		{"gcd(1)", new(*calc.ArityError)},
		{"solve('(x y - 1))", new(*calc.ValueError)},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			r, err := newContext().Exec(c.src)
			if err == nil {
				t.Fatalf("%s succeeded with %v", c.src, r.Value)
			}
			if !errors.As(err, c.err) {
				t.Errorf("wrong error type %T: %v", err, err)
			}
		})
	}
}

func TestStats(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"mean(1, 2, 3, 4)", "5/2"},
		{"median([3, 1, 2])", "2"},
		{"median(1, 2, 3, 4)", "5/2"},
		{"var(1, 2, 3, 4)", "5/4"},
		{"std([2, 4, 4, 4, 5, 5, 7, 9])", "2"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			ctx := newContext()
			eval(t, ctx, "import stats")
			if got := ctx.Format(eval(t, ctx, c.src)); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
	var ne *calc.NameError
	if _, err := newContext().Exec("mean(1, 2)"); !errors.As(err, &ne) {
		t.Errorf("stats without import: want name error, got %v", err)
	}
}
