//go:build go1.18
// +build go1.18

package calc_test

import (
	"math/big"
	"testing"

	"github.com/zephyrtronium/calc"
)

func FuzzExec(f *testing.F) {
	f.Add("x")
	f.Add("1 + 2 * 3")
	f.Add("[x y for x in 1..3 for y in (1, 2)]")
	f.Add("(a, b..) = [1, 2, 3]")
	f.Add("f(x, k: 2) = x k")
	f.Fuzz(func(t *testing.T, s string) {
		calc.NewContext(calc.SetVar("x", big.NewInt(2))).Exec(s)
	})
}
