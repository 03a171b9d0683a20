// Package funcs provides the primitive function library for calc contexts.
package funcs

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/zephyrtronium/bigfloat"

	"github.com/zephyrtronium/calc"
)

// Table returns a fresh table of the primitive functions and constants,
// suitable for the calc.Builtins option.
func Table() map[string]any {
	t := map[string]any{
		"exp": Monadic("exp", bigfloat.Exp, cmplx.Exp),
		"ln":  Monadic("ln", positive("ln", bigfloat.Log), cmplx.Log),
		"log": Monadic("log", positive("log", logBase(10)), cmplx.Log10),
		"lg":  Monadic("lg", positive("lg", logBase(10)), cmplx.Log10),
		"log2": Monadic("log2", positive("log2", logBase(2)), func(z complex128) complex128 {
			return cmplx.Log(z) / math.Ln2
		}),
		"sqrt": calc.NewBuiltin("sqrt", 1, sqrt),

		"sin":   Float("sin", math.Sin, cmplx.Sin),
		"cos":   Float("cos", math.Cos, cmplx.Cos),
		"tan":   Float("tan", math.Tan, cmplx.Tan),
		"asin":  Float("asin", math.Asin, cmplx.Asin),
		"acos":  Float("acos", math.Acos, cmplx.Acos),
		"atan":  Float("atan", math.Atan, cmplx.Atan),
		"sinh":  Float("sinh", math.Sinh, cmplx.Sinh),
		"cosh":  Float("cosh", math.Cosh, cmplx.Cosh),
		"tanh":  Float("tanh", math.Tanh, cmplx.Tanh),
		"asinh": Float("asinh", math.Asinh, cmplx.Asinh),
		"acosh": Float("acosh", math.Acosh, cmplx.Acosh),
		"atanh": Float("atanh", math.Atanh, cmplx.Atanh),

		"abs":     calc.NewBuiltin("abs", 1, abs),
		"floor":   calc.NewBuiltin("floor", 1, rounder("floor", big.ToNegativeInf)),
		"ceil":    calc.NewBuiltin("ceil", 1, rounder("ceil", big.ToPositiveInf)),
		"max":     calc.NewBuiltin("max", -1, extreme("max", ">")),
		"min":     calc.NewBuiltin("min", -1, extreme("min", "<")),
		"gcd":     calc.NewBuiltin("gcd", 2, gcd),
		"binom":   calc.NewBuiltin("binom", 2, binom),
		"real":    calc.NewBuiltin("real", 1, realPart),
		"imag":    calc.NewBuiltin("imag", 1, imagPart),
		"conj":    calc.NewBuiltin("conj", 1, conj),
		"angle":   calc.NewBuiltin("angle", 1, angle),
		"degrees": calc.NewBuiltin("degrees", 1, degrees),

		"len":     calc.NewBuiltin("len", 1, length),
		"sum":     calc.NewBuiltin("sum", -1, fold("sum", "+", 0)),
		"product": calc.NewBuiltin("product", -1, fold("product", "*", 1)),
		"list":    calc.NewBuiltin("list", -1, list),
		"sort":    calc.NewBuiltin("sort", 1, sortList),
		"map":     calc.NewBuiltin("map", 2, mapList),
		"filter":  calc.NewBuiltin("filter", 2, filter),
		"reduce":  calc.NewBuiltin("reduce", -1, reduce),
		"zip":     calc.NewBuiltin("zip", -1, zip),
		"car":     calc.NewBuiltin("car", 1, car),
		"cdr":     calc.NewBuiltin("cdr", 1, cdr),
		"cons":    calc.NewBuiltin("cons", 2, cons),
		"enum":    calc.NewBuiltin("enum", 1, enum),
		"range":   calc.NewBuiltin("range", -1, rangeOf),
		"find":    calc.NewBuiltin("find", 2, find),
		"all":     calc.NewBuiltin("all", 1, quantifier(true)),
		"any":     calc.NewBuiltin("any", 1, quantifier(false)),
		"same":    calc.NewBuiltin("same", 1, same),
		"depth":   calc.NewBuiltin("depth", 1, depth),
		"shape":   calc.NewBuiltin("shape", 1, shape),
		"transp":  calc.NewBuiltin("transp", 1, transp),
		"flatten": calc.NewBuiltin("flatten", 1, flatten),

		"number?": calc.NewBuiltin("number?", 1, isNumber),
		"symbol?": calc.NewBuiltin("symbol?", 1, isSymbol),
		"list?":   calc.NewBuiltin("list?", 1, isList),
		"map?":    calc.NewBuiltin("map?", 1, isMap),

		"compose": calc.NewBuiltin("compose", -1, compose),
		"solve":   calc.NewBuiltin("solve", -1, solve),
		"subs":    calc.NewBuiltin("subs", -1, subs),

		"E":   constant(func(out *big.Float) *big.Float { return bigfloat.Exp(out, big.NewFloat(1).SetPrec(out.Prec())) }),
		"PI":  constant(bigfloat.Pi),
		"I":   complex(0, 1),
		"INF": new(big.Float).SetInf(false),
	}
	return t
}

// Modules returns the importable modules.
func Modules() map[string]map[string]any {
	return map[string]map[string]any{
		"stats": stats(),
	}
}

// Prec is the precision in bits of reals the library computes from exact
// arguments.
const Prec = 128

// constant computes a niladic real constant at Prec bits.
func constant(f func(out *big.Float) *big.Float) *big.Float {
	return f(new(big.Float).SetPrec(Prec))
}

// Monadic wraps a function of one real variable into a builtin. f must set
// out to its result at the precision of out. If f is called on an argument
// outside its domain, it may panic with big.ErrNaN, which becomes a
// *calc.DomainError. Complex arguments use c if it is not nil.
func Monadic(name string, f func(out, in *big.Float) *big.Float, c func(complex128) complex128) *calc.Builtin {
	return calc.NewBuiltin(name, 1, func(args ...any) (r any, err error) {
		x := args[0]
		if z, ok := x.(complex128); ok && c != nil {
			return normComplex(c(z)), nil
		}
		in, err := toReal(name, x)
		if err != nil {
			return nil, err
		}
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if _, ok := p.(big.ErrNaN); ok {
				r, err = nil, &calc.DomainError{X: x, Arg: 1, Func: name}
				return
			}
			panic(p)
		}()
		return f(new(big.Float).SetPrec(in.Prec()), in), nil
	})
}

// Float wraps a float64 function into a builtin. A NaN result is a domain
// error.
func Float(name string, f func(float64) float64, c func(complex128) complex128) *calc.Builtin {
	return calc.NewBuiltin(name, 1, func(args ...any) (any, error) {
		x := args[0]
		if z, ok := x.(complex128); ok {
			return normComplex(c(z)), nil
		}
		v, ok := calc.Float64(x)
		if !ok {
			return nil, notReal(name, x)
		}
		r := f(v)
		if math.IsNaN(r) {
			return nil, &calc.DomainError{X: x, Arg: 1, Func: name}
		}
		return new(big.Float).SetFloat64(r), nil
	})
}

// positive restricts a real function to positive arguments.
func positive(name string, f func(out, in *big.Float) *big.Float) func(out, in *big.Float) *big.Float {
	return func(out, in *big.Float) *big.Float {
		if in.Sign() <= 0 {
			panic(big.ErrNaN{})
		}
		return f(out, in)
	}
}

func logBase(b float64) func(out, in *big.Float) *big.Float {
	return func(out, in *big.Float) *big.Float {
		bigfloat.Log(out, in)
		d := new(big.Float).SetPrec(out.Prec()).SetFloat64(b)
		bigfloat.Log(d, d)
		return out.Quo(out, d)
	}
}

func normComplex(z complex128) any {
	if imag(z) == 0 && !math.IsNaN(real(z)) {
		return new(big.Float).SetFloat64(real(z))
	}
	return z
}

// toReal converts a real number to a *big.Float. Exact numbers get Prec bits.
func toReal(name string, x any) (*big.Float, error) {
	switch x := x.(type) {
	case *big.Int:
		return new(big.Float).SetPrec(Prec).SetInt(x), nil
	case *big.Rat:
		return new(big.Float).SetPrec(Prec).SetRat(x), nil
	case *big.Float:
		return x, nil
	}
	return nil, notReal(name, x)
}

func notReal(name string, x any) error {
	return &calc.TypeError{Msg: name + " needs a real number, not " + calc.TypeName(x)}
}

// op applies a binary operator of the calc language.
func op(sym string, x, y any) (any, error) {
	return calc.BinaryOps[sym].Apply(x, y)
}

// less reports whether x < y.
func less(x, y any) (bool, error) {
	r, err := op("<", x, y)
	if err != nil {
		return false, err
	}
	b, ok := r.(bool)
	if !ok {
		return false, &calc.TypeError{Msg: "cannot order " + calc.Format(x) + " and " + calc.Format(y)}
	}
	return b, nil
}
