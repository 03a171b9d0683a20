package calc_test

import (
	"testing"

	"github.com/zephyrtronium/calc"
)

func TestComprehensions(t *testing.T) {
	cases := []execCase{
		{"simple", []string{"[x^2 for x in 1..4]"}, "[1, 4, 9, 16]"},
		{"nested", []string{"[x*10 + y for x in 1..2 for y in 1..3]"}, "[11, 12, 13, 21, 22, 23]"},
		{"dependent", []string{"[y for x in 1..3 for y in 1..x]"}, "[1, 1, 2, 1, 2, 3]"},
		{"filter", []string{"[x for x in 1..10 if x % 3 == 0]"}, "[3, 6, 9]"},
		{"with", []string{"[z for x in 1..3 with z = x^2 if z > 1]"}, "[4, 9]"},
		{"with-many", []string{"[a + b for x in 1..2 with a = x, b = 10 x]"}, "[11, 22]"},
		{"destructure", []string{"[a + b for (a, b) in [[1, 2], [3, 4]]]"}, "[3, 7]"},
		{"empty", []string{"[x for x in 3..1]"}, "[]"},
		{"string", []string{`[c for c in "ab"]`}, `["a", "b"]`},
		{"outer-names", []string{"k = 100", "[x + k for x in [1, 2]]"}, "[101, 102]"},
		{"nested-list", []string{"[[x, y] for x in 1..2 for y in 1..1]"}, "[[1, 1], [2, 1]]"},
	}
	runExecCases(t, cases)
}

func TestComprehensionErrors(t *testing.T) {
	cases := []execErrCase{
		{"not-iterable", []string{"[x for x in 5]"}, new(*calc.TypeError)},
		{"scope", []string{"[x for x in 1..2]", "x"}, new(*calc.NameError)},
		{"form", []string{"[a for (a, b) in [1, 2]]"}, new(*calc.TypeError)},
	}
	runExecErrCases(t, cases)
}
