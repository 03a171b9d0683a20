package calc

import (
	"errors"
	"math/big"
	"testing"
)

func TestResolve(t *testing.T) {
	inc := NewBuiltin("inc", 1, func(args ...any) (any, error) {
		return add(args[0], intOf(1))
	})
	double := NewBuiltin("double", 1, func(args ...any) (any, error) {
		return mul(args[0], intOf(2))
	})
	cases := []struct {
		name  string
		items []any
		want  string
	}{
		{"left-assoc", []any{intOf(8), OpToken("-"), intOf(3), OpToken("-"), intOf(2)}, "3"},
		{"priority", []any{intOf(1), OpToken("+"), intOf(2), OpToken("*"), intOf(3)}, "7"},
		{"pow-left", []any{intOf(2), OpToken("^"), intOf(3), OpToken("^"), intOf(2)}, "64"},
		{"prefix", []any{OpToken("-"), intOf(2)}, "-2"},
		{"postfix", []any{intOf(3), OpToken("!")}, "6"},
		{"postfix-then-binary", []any{intOf(3), OpToken("!"), OpToken("+"), intOf(1)}, "7"},
		{"juxt-mul", []any{intOf(2), intOf(3), OpToken("+"), intOf(1)}, "7"},
		{"juxt-compose", []any{inc, double, intOf(3)}, "7"},
		{"juxt-left", []any{inc, intOf(3), intOf(2)}, "8"},
		{"symbolic-left", []any{Symbol("a"), OpToken("-"), Symbol("b"), OpToken("-"), Symbol("c")}, "a - b - c"},
		{"symbolic-juxt", []any{intOf(2), Symbol("x"), OpToken("+"), intOf(1)}, "2 * x + 1"},
	}
	ctx := NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := ctx.resolve(c.items)
			if err != nil {
				t.Fatalf("failed to resolve %v: %v", c.items, err)
			}
			if got := Format(v); got != c.want {
				t.Errorf("wrong result: want %s, got %s", c.want, got)
			}
		})
	}
}

func TestResolveTree(t *testing.T) {
	ctx := NewContext()
	v, err := ctx.resolve([]any{Name("x"), OpToken("+"), intOf(1)})
	if err != nil {
		t.Fatal(err)
	}
	u, ok := v.(*Tree)
	if !ok || u.Tag != TagApp {
		t.Fatalf("want APP tree, got %v", v)
	}
	if u.Args[0] != BinaryOps["+"] {
		t.Errorf("wrong op %v", u.Args[0])
	}
	if n, ok := u.Args[2].(*big.Int); !ok || n.Int64() != 1 {
		t.Errorf("wrong operand %v", u.Args[2])
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name  string
		items []any
	}{
		{"lone-op", []any{OpToken("+")}},
		{"missing-right", []any{intOf(1), OpToken("+")}},
		{"not-prefix", []any{OpToken("*"), intOf(1)}},
		{"empty", nil},
	}
	ctx := NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := ctx.resolve(c.items)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("want syntax error, got %v, %v", v, err)
			}
		})
	}
}
