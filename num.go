package calc

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/zephyrtronium/bigfloat"
)

// floatPrec is the precision of reals converted from exact numbers.
const floatPrec = 64

// Numbers are *big.Int, *big.Rat, *big.Float, or complex128, in increasing
// order of generality. Binary arithmetic converts both operands to the more
// general representation. Rationals with denominator 1 become integers.

func intOf(n int64) *big.Int {
	return big.NewInt(n)
}

func floatOf(f float64) *big.Float {
	return new(big.Float).SetPrec(floatPrec).SetFloat64(f)
}

// numLevel returns the generality of a number, or -1 if v is not a number.
func numLevel(v any) int {
	switch v.(type) {
	case *big.Int:
		return 0
	case *big.Rat:
		return 1
	case *big.Float:
		return 2
	case complex128:
		return 3
	}
	return -1
}

func isNumber(v any) bool {
	return numLevel(v) >= 0
}

func toRat(v any) *big.Rat {
	switch v := v.(type) {
	case *big.Int:
		return new(big.Rat).SetInt(v)
	case *big.Rat:
		return v
	}
	panic("calc: toRat on " + TypeName(v))
}

func toFloat(v any) *big.Float {
	switch v := v.(type) {
	case *big.Int:
		return new(big.Float).SetPrec(floatPrec).SetInt(v)
	case *big.Rat:
		return new(big.Float).SetPrec(floatPrec).SetRat(v)
	case *big.Float:
		return v
	}
	panic("calc: toFloat on " + TypeName(v))
}

func toComplex(v any) complex128 {
	switch v := v.(type) {
	case *big.Int, *big.Rat, *big.Float:
		f, _ := toFloat(v).Float64()
		return complex(f, 0)
	case complex128:
		return v
	}
	panic("calc: toComplex on " + TypeName(v))
}

// Float64 converts a real number to a float64.
func Float64(v any) (float64, bool) {
	switch numLevel(v) {
	case 0, 1, 2:
		f, _ := toFloat(v).Float64()
		return f, true
	}
	return 0, false
}

// Int64 converts an integer to an int64.
func Int64(v any) (int64, bool) {
	n, ok := v.(*big.Int)
	if !ok || !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

// normRat converts a rational with denominator 1 to an integer.
func normRat(r *big.Rat) any {
	if r.IsInt() {
		return new(big.Int).Set(r.Num())
	}
	return r
}

// normComplex converts a complex number with no imaginary part to a real.
func normComplex(c complex128) any {
	if imag(c) == 0 {
		return floatOf(real(c))
	}
	return c
}

type numOps struct {
	name string
	i    func(z, x, y *big.Int) *big.Int
	r    func(z, x, y *big.Rat) *big.Rat
	f    func(z, x, y *big.Float) *big.Float
	c    func(x, y complex128) complex128
}

// arith applies a binary numeric operation at the level of its more general
// operand. Operations producing NaN on reals are domain errors.
func arith(x, y any, o numOps) (r any, err error) {
	lx, ly := numLevel(x), numLevel(y)
	if lx < 0 || ly < 0 {
		return nil, typeErr("cannot apply " + o.name + " to " + TypeName(x) + " and " + TypeName(y))
	}
	l := max(lx, ly)
	if l == 0 && o.i == nil {
		l = 1
	}
	switch l {
	case 0:
		return o.i(new(big.Int), x.(*big.Int), y.(*big.Int)), nil
	case 1:
		return normRat(o.r(new(big.Rat), toRat(x), toRat(y))), nil
	case 2:
		defer func() {
			if p := recover(); p != nil {
				if _, ok := p.(big.ErrNaN); !ok {
					panic(p)
				}
				r, err = nil, &DomainError{X: y, Arg: 2, Func: o.name}
			}
		}()
		return o.f(new(big.Float), toFloat(x), toFloat(y)), nil
	default:
		return o.c(toComplex(x), toComplex(y)), nil
	}
}

var (
	addOps = numOps{
		name: "+",
		i:    (*big.Int).Add,
		r:    (*big.Rat).Add,
		f:    (*big.Float).Add,
		c:    func(x, y complex128) complex128 { return x + y },
	}
	subOps = numOps{
		name: "-",
		i:    (*big.Int).Sub,
		r:    (*big.Rat).Sub,
		f:    (*big.Float).Sub,
		c:    func(x, y complex128) complex128 { return x - y },
	}
	mulOps = numOps{
		name: "*",
		i:    (*big.Int).Mul,
		r:    (*big.Rat).Mul,
		f:    (*big.Float).Mul,
		c:    func(x, y complex128) complex128 { return x * y },
	}
	quoOps = numOps{
		name: "/",
		r:    (*big.Rat).Quo,
		f:    (*big.Float).Quo,
		c:    func(x, y complex128) complex128 { return x / y },
	}
)

func add(x, y any) (any, error) { return arith(x, y, addOps) }
func sub(x, y any) (any, error) { return arith(x, y, subOps) }
func mul(x, y any) (any, error) { return arith(x, y, mulOps) }

func quo(x, y any) (any, error) {
	if l := max(numLevel(x), numLevel(y)); l >= 0 && l <= 1 {
		if s, err := sign(y); err == nil && s == 0 {
			return nil, &DomainError{X: y, Arg: 2, Func: "/"}
		}
	}
	return arith(x, y, quoOps)
}

func neg(x any) (any, error) {
	switch x := x.(type) {
	case *big.Int:
		return new(big.Int).Neg(x), nil
	case *big.Rat:
		return new(big.Rat).Neg(x), nil
	case *big.Float:
		return new(big.Float).Neg(x), nil
	case complex128:
		return -x, nil
	}
	return nil, typeErr("cannot negate " + TypeName(x))
}

// sign returns the sign of a real number.
func sign(x any) (int, error) {
	switch x := x.(type) {
	case *big.Int:
		return x.Sign(), nil
	case *big.Rat:
		return x.Sign(), nil
	case *big.Float:
		return x.Sign(), nil
	}
	return 0, typeErr(TypeName(x) + " has no sign")
}

// compare orders two reals or two strings.
func compare(x, y any) (int, error) {
	if sx, ok := x.(string); ok {
		if sy, ok := y.(string); ok {
			switch {
			case sx < sy:
				return -1, nil
			case sx > sy:
				return 1, nil
			}
			return 0, nil
		}
	}
	lx, ly := numLevel(x), numLevel(y)
	if lx < 0 || ly < 0 || lx > 2 || ly > 2 {
		return 0, typeErr("cannot compare " + TypeName(x) + " and " + TypeName(y))
	}
	switch max(lx, ly) {
	case 0:
		return x.(*big.Int).Cmp(y.(*big.Int)), nil
	case 1:
		return toRat(x).Cmp(toRat(y)), nil
	}
	return toFloat(x).Cmp(toFloat(y)), nil
}

// floorDivMod computes q = floor(x/y) and m = x - q*y for reals, so that m has
// the sign of y.
func floorDivMod(x, y any) (q, m any, err error) {
	lx, ly := numLevel(x), numLevel(y)
	if lx < 0 || ly < 0 || lx > 2 || ly > 2 {
		return nil, nil, typeErr("cannot divide " + TypeName(x) + " by " + TypeName(y) + " with remainder")
	}
	if s, _ := sign(y); s == 0 {
		return nil, nil, &DomainError{X: y, Arg: 2, Func: "//"}
	}
	switch max(lx, ly) {
	case 0:
		a, b := x.(*big.Int), y.(*big.Int)
		qi, mi := new(big.Int).DivMod(a, b, new(big.Int))
		if mi.Sign() != 0 && b.Sign() < 0 {
			qi.Sub(qi, intOf(1))
			mi.Add(mi, b)
		}
		return qi, mi, nil
	case 1:
		r := new(big.Rat).Quo(toRat(x), toRat(y))
		qi := ratFloor(r)
		mr := new(big.Rat).Sub(toRat(x), new(big.Rat).Mul(new(big.Rat).SetInt(qi), toRat(y)))
		return qi, normRat(mr), nil
	}
	fx, fy := toFloat(x), toFloat(y)
	if fx.IsInf() || fy.IsInf() {
		return nil, nil, &DomainError{X: x, Arg: 1, Func: "//"}
	}
	r := new(big.Float).Quo(fx, fy)
	qi, acc := r.Int(nil)
	if acc == big.Above {
		qi.Sub(qi, intOf(1))
	}
	qf := new(big.Float).SetInt(qi)
	mf := new(big.Float).Sub(fx, qf.Mul(qf, fy))
	return qi, mf, nil
}

// ratFloor returns the greatest integer not greater than r.
func ratFloor(r *big.Rat) *big.Int {
	// Denominators are positive, so Euclidean division is floor division.
	return new(big.Int).Div(r.Num(), r.Denom())
}

// pow raises x to the power y. Exact numbers raised to integers stay exact;
// real powers use bigfloat, and negative bases with non-integer exponents
// become complex.
func pow(x, y any) (any, error) {
	lx, ly := numLevel(x), numLevel(y)
	if lx < 0 || ly < 0 {
		return nil, typeErr("cannot raise " + TypeName(x) + " to " + TypeName(y))
	}
	if lx == 3 || ly == 3 {
		return cmplx.Pow(toComplex(x), toComplex(y)), nil
	}
	if n, ok := y.(*big.Int); ok {
		return powInt(x, n)
	}
	if s, _ := sign(x); s == 0 {
		switch t, _ := sign(y); {
		case t > 0:
			return intOf(0), nil
		case t == 0:
			return intOf(1), nil
		}
		return nil, &DomainError{X: x, Arg: 1, Func: "^"}
	} else if s < 0 {
		fx, _ := Float64(x)
		fy, _ := Float64(y)
		return normComplex(cmplx.Pow(complex(fx, 0), complex(fy, 0))), nil
	}
	fx, fy := toFloat(x), toFloat(y)
	if fx.IsInf() || fy.IsInf() {
		fx64, _ := fx.Float64()
		fy64, _ := fy.Float64()
		return floatOf(math.Pow(fx64, fy64)), nil
	}
	prec := max(fx.Prec(), fy.Prec())
	return bigfloat.Pow(new(big.Float).SetPrec(prec), fx, fy), nil
}

func powInt(x any, n *big.Int) (any, error) {
	if !n.IsInt64() {
		return nil, &DomainError{X: n, Arg: 2, Func: "^"}
	}
	k := n.Int64()
	switch x := x.(type) {
	case *big.Int:
		if k >= 0 {
			return new(big.Int).Exp(x, n, nil), nil
		}
		if x.Sign() == 0 {
			return nil, &DomainError{X: x, Arg: 1, Func: "^"}
		}
		d := new(big.Int).Exp(x, new(big.Int).Neg(n), nil)
		return normRat(new(big.Rat).SetFrac(intOf(1), d)), nil
	case *big.Rat:
		m := new(big.Int).Abs(n)
		num := new(big.Int).Exp(x.Num(), m, nil)
		den := new(big.Int).Exp(x.Denom(), m, nil)
		if k < 0 {
			if num.Sign() == 0 {
				return nil, &DomainError{X: x, Arg: 1, Func: "^"}
			}
			num, den = den, num
		}
		return normRat(new(big.Rat).SetFrac(num, den)), nil
	case *big.Float:
		r := new(big.Float).SetPrec(x.Prec()).SetInt64(1)
		b := new(big.Float).Copy(x)
		m := k
		if m < 0 {
			m = -m
		}
		for ; m > 0; m >>= 1 {
			if m&1 != 0 {
				r.Mul(r, b)
			}
			b.Mul(b, b)
		}
		if k < 0 {
			if r.Sign() == 0 {
				return nil, &DomainError{X: x, Arg: 1, Func: "^"}
			}
			r.Quo(new(big.Float).SetPrec(r.Prec()).SetInt64(1), r)
		}
		return r, nil
	}
	return nil, typeErr("cannot raise " + TypeName(x) + " to an integer")
}

// bitwise applies an integer operation.
func bitwise(name string, x, y any, f func(z, x, y *big.Int) *big.Int) (any, error) {
	a, ok := x.(*big.Int)
	b, ok2 := y.(*big.Int)
	if !ok || !ok2 {
		return nil, typeErr("cannot apply " + name + " to " + TypeName(x) + " and " + TypeName(y))
	}
	return f(new(big.Int), a, b), nil
}
