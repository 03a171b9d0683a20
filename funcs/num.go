package funcs

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/zephyrtronium/bigfloat"

	"github.com/zephyrtronium/calc"
)

// sqrt is exact on perfect squares and complex on negative reals.
func sqrt(args ...any) (any, error) {
	switch x := args[0].(type) {
	case *big.Int:
		if x.Sign() < 0 {
			f, _ := calc.Float64(x)
			return cmplx.Sqrt(complex(f, 0)), nil
		}
		if r := new(big.Int).Sqrt(x); new(big.Int).Mul(r, r).Cmp(x) == 0 {
			return r, nil
		}
	case *big.Rat:
		if x.Sign() < 0 {
			f, _ := calc.Float64(x)
			return cmplx.Sqrt(complex(f, 0)), nil
		}
		n, d := new(big.Int).Sqrt(x.Num()), new(big.Int).Sqrt(x.Denom())
		if new(big.Int).Mul(n, n).Cmp(x.Num()) == 0 && new(big.Int).Mul(d, d).Cmp(x.Denom()) == 0 {
			return new(big.Rat).SetFrac(n, d), nil
		}
	case *big.Float:
		if x.Sign() < 0 {
			f, _ := x.Float64()
			return cmplx.Sqrt(complex(f, 0)), nil
		}
	case complex128:
		return normComplex(cmplx.Sqrt(x)), nil
	}
	f, err := toReal("sqrt", args[0])
	if err != nil {
		return nil, err
	}
	if f.IsInf() {
		return f, nil
	}
	return new(big.Float).SetPrec(f.Prec()).Sqrt(f), nil
}

func abs(args ...any) (any, error) {
	switch x := args[0].(type) {
	case *big.Int:
		return new(big.Int).Abs(x), nil
	case *big.Rat:
		return new(big.Rat).Abs(x), nil
	case *big.Float:
		return new(big.Float).Abs(x), nil
	case complex128:
		return new(big.Float).SetFloat64(cmplx.Abs(x)), nil
	}
	return nil, notReal("abs", args[0])
}

// rounder rounds reals to integers toward negative or positive infinity.
func rounder(name string, mode big.RoundingMode) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		switch x := args[0].(type) {
		case *big.Int:
			return x, nil
		case *big.Rat:
			// Div is Euclidean, which is floor for the positive denominator.
			if mode == big.ToNegativeInf {
				return new(big.Int).Div(x.Num(), x.Denom()), nil
			}
			n := new(big.Int).Neg(x.Num())
			n.Div(n, x.Denom())
			return n.Neg(n), nil
		case *big.Float:
			if x.IsInf() {
				return nil, &calc.DomainError{X: x, Arg: 1, Func: name}
			}
			i, acc := x.Int(nil)
			switch {
			case mode == big.ToNegativeInf && acc == big.Above:
				i.Sub(i, big.NewInt(1))
			case mode == big.ToPositiveInf && acc == big.Below:
				i.Add(i, big.NewInt(1))
			}
			return i, nil
		}
		return nil, notReal(name, args[0])
	}
}

// extreme finds the item x of its arguments, or of its single list
// argument, such that y cmp x is false for every other item y.
func extreme(name, cmp string) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		items, err := spread(args)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, &calc.ValueError{Msg: name + " of nothing"}
		}
		best := items[0]
		for _, y := range items[1:] {
			r, err := op(cmp, y, best)
			if err != nil {
				return nil, err
			}
			b, ok := r.(bool)
			if !ok {
				return nil, &calc.TypeError{Msg: "cannot order " + calc.Format(y) + " and " + calc.Format(best)}
			}
			if b {
				best = y
			}
		}
		return best, nil
	}
}

// spread returns the items of a single iterable argument, or the arguments
// themselves.
func spread(args []any) (calc.List, error) {
	if len(args) == 1 {
		switch args[0].(type) {
		case calc.List, *calc.Range:
			return calc.Iterate(args[0])
		}
	}
	return calc.List(args), nil
}

func ints(name string, args []any) ([]*big.Int, error) {
	r := make([]*big.Int, len(args))
	for i, a := range args {
		n, ok := a.(*big.Int)
		if !ok {
			return nil, &calc.TypeError{Msg: name + " needs integers, not " + calc.TypeName(a)}
		}
		r[i] = n
	}
	return r, nil
}

func gcd(args ...any) (any, error) {
	n, err := ints("gcd", args)
	if err != nil {
		return nil, err
	}
	return new(big.Int).GCD(nil, nil, n[0], n[1]), nil
}

func binom(args ...any) (any, error) {
	n, err := ints("binom", args)
	if err != nil {
		return nil, err
	}
	for i, x := range n {
		if x.Sign() < 0 || !x.IsInt64() {
			return nil, &calc.DomainError{X: x, Arg: i + 1, Func: "binom"}
		}
	}
	if n[1].Cmp(n[0]) > 0 {
		return big.NewInt(0), nil
	}
	return new(big.Int).Binomial(n[0].Int64(), n[1].Int64()), nil
}

func realPart(args ...any) (any, error) {
	if z, ok := args[0].(complex128); ok {
		return new(big.Float).SetFloat64(real(z)), nil
	}
	if _, err := toReal("real", args[0]); err != nil {
		return nil, err
	}
	return args[0], nil
}

func imagPart(args ...any) (any, error) {
	if z, ok := args[0].(complex128); ok {
		return new(big.Float).SetFloat64(imag(z)), nil
	}
	if _, err := toReal("imag", args[0]); err != nil {
		return nil, err
	}
	return big.NewInt(0), nil
}

func conj(args ...any) (any, error) {
	if z, ok := args[0].(complex128); ok {
		return cmplx.Conj(z), nil
	}
	if _, err := toReal("conj", args[0]); err != nil {
		return nil, err
	}
	return args[0], nil
}

func angle(args ...any) (any, error) {
	if z, ok := args[0].(complex128); ok {
		return new(big.Float).SetFloat64(cmplx.Phase(z)), nil
	}
	f, err := toReal("angle", args[0])
	if err != nil {
		return nil, err
	}
	if f.Sign() < 0 {
		return new(big.Float).SetFloat64(math.Pi), nil
	}
	return big.NewInt(0), nil
}

// degrees converts radians to degrees.
func degrees(args ...any) (any, error) {
	if _, err := toReal("degrees", args[0]); err != nil {
		return nil, err
	}
	d, err := op("*", args[0], big.NewInt(180))
	if err != nil {
		return nil, err
	}
	return op("/", d, bigfloat.Pi(new(big.Float).SetPrec(Prec)))
}
