package calc_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/zephyrtronium/calc"
)

func TestBind(t *testing.T) {
	cases := []execCase{
		{"name", []string{"x = 4"}, "4"},
		{"chain", []string{"x = y = 2", "x + y"}, "4"},
		{"list", []string{"(a, b) = [1, 2]", "b"}, "2"},
		{"rest", []string{"(a, b..) = [1, 2, 3]", "b"}, "[2, 3]"},
		{"rest-first", []string{"(a, b..) = [1, 2, 3]", "a"}, "1"},
		{"rest-middle", []string{"(a, m.., z) = [1, 2, 3, 4]", "m"}, "[2, 3]"},
		{"rest-empty", []string{"(a, m.., z) = [1, 4]", "m"}, "[]"},
		{"rejoin", []string{"(h, t..) = [1, 2, 3]", "[h] | t"}, "[1, 2, 3]"},
		{"nested", []string{"(a, (b, c)) = [1, [2, 3]]", "c"}, "3"},
		{"string", []string{`(a, b) = "hi"`, "b"}, `"i"`},
		{"keyword-default", []string{"k(x, scale: 2) = x * scale", "k(3)"}, "6"},
		{"keyword-override", []string{"k(x, scale: 2) = x * scale", "k(3, scale: 10)"}, "30"},
		{"named-positional", []string{"f(x, y) = x - y", "f(y: 1, x: 10)"}, "9"},
		{"named-mixed", []string{"f(x, y) = x - y", "f(1, y: 5)"}, "-4"},
		{"named-around-rest", []string{"g(a, r.., z) = [a, r, z]", "g(1, 2, 3, a: 0)"}, "[0, [1, 2], 3]"},
		{"algebraic", []string{"2 x + 1 = 7", "x"}, "3"},
		{"algebraic-list", []string{"(2 a, b + 1) = [6, 5]", "a b"}, "12"},
		{"algebraic-mixed", []string{"(n, 2 m) = [1, 8]", "n + m"}, "5"},
		{"path", []string{"p.q = 3", "p.q"}, "3"},
		{"path-env", []string{"p.q = 3", "p"}, "{q = 3}"},
		{"box-value", []string{"n = 5", "n.unit = 2", "n + 1"}, "6"},
		{"box-field", []string{"n = 5", "n.unit = 2", "n.unit"}, "2"},
		{"define", []string{"sq(x) = x^2"}, "sq(x)"},
		{"lambda-named", []string{"double = x => 2 x"}, "double(x)"},
		{"lambda-renamed", []string{"double = x => 2 x", "twice = double", "twice"}, "double(x)"},
	}
	runExecCases(t, cases)
}

func TestBindErrors(t *testing.T) {
	cases := []execErrCase{
		{"too-few", []string{"(a, b) = [1]"}, new(*calc.ArityError)},
		{"too-many", []string{"(a, b) = [1, 2, 3]"}, new(*calc.ArityError)},
		{"rest-short", []string{"(a, b, c..) = [1]"}, new(*calc.ArityError)},
		{"duplicate", []string{"(a, a) = [1, 2]"}, new(*calc.SyntaxError)},
		{"two-rests", []string{"(a.., b..) = [1, 2]"}, new(*calc.SyntaxError)},
		{"unknown-keyword", []string{"k(x, s: 1) = x", "k(1, t: 2)"}, new(*calc.TypeError)},
		{"named-too-few", []string{"f(x, y) = x - y", "f(x: 1)"}, new(*calc.ArityError)},
		{"named-twice", []string{"f(x, y) = x - y", "f(x: 2, x: 3)"}, new(*calc.SyntaxError)},
		{"scalar", []string{"(a, b) = 5"}, new(*calc.TypeError)},
		{"inconsistent", []string{"0 x = 1"}, new(*calc.ValueError)},
	}
	runExecErrCases(t, cases)
}

func TestBindFailureLeavesEnv(t *testing.T) {
	ctx := calc.NewContext()
	execAll(t, ctx, "a = 0")
	if _, err := ctx.Exec("(a, b) = [1, 2, 3]"); err == nil {
		t.Fatal("bad binding succeeded")
	}
	r := execAll(t, ctx, "a")
	if got := calc.Format(r.Value); got != "0" {
		t.Errorf("failed binding changed a to %s", got)
	}
}

func TestBindMultipleSolutions(t *testing.T) {
	var logs bytes.Buffer
	ctx := calc.NewContext(calc.Logger(slog.New(slog.NewTextHandler(&logs, nil))))
	r := execAll(t, ctx, "x^2 = 4", "x")
	if got := calc.Format(r.Value); got != "-2" {
		t.Errorf("want the first solution -2, got %s", got)
	}
	if !strings.Contains(logs.String(), "multiple solutions") {
		t.Errorf("no warning in %q", logs.String())
	}
}

func TestArityErrorFields(t *testing.T) {
	ctx := calc.NewContext()
	execAll(t, ctx, "f(x, y) = x + y")
	_, err := ctx.Exec("f(1)")
	var ae *calc.ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("want arity error, got %v", err)
	}
	if ae.Func != "f" || ae.Want != 2 || ae.Got != 1 || ae.Variadic {
		t.Errorf("wrong arity error %+v", *ae)
	}
}
