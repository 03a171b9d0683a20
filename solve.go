package calc

import (
	"math"
	"math/big"
	"math/cmplx"
	"strings"
)

// Equation states that Lhs equals Rhs.
type Equation struct {
	Lhs, Rhs any
}

// Solutions are the solutions of a system of equations.
type Solutions struct {
	// Unknowns are the symbols solved for, in order of appearance.
	Unknowns []Symbol
	// Sets are the solutions found, each giving one value per unknown.
	Sets [][]any
	// Free are unknowns the equations do not determine, set to 0 in Sets.
	Free []Symbol
}

// Multiple reports whether the equations have more than one solution.
func (s *Solutions) Multiple() bool {
	return len(s.Sets) > 1 || len(s.Free) > 0
}

// Solve solves a system of equations in the symbols they contain. Linear
// systems are solved exactly when their coefficients are exact; equations
// that are quadratic in a single unknown yield their roots in ascending
// order. Anything else, and any system with no solution, is a *ValueError.
// Values within tol of each other compare equal when inexact.
func Solve(eqs []Equation, tol float64) (*Solutions, error) {
	minus := BinaryOps["-"]
	var res []any
	var unk []Symbol
	for _, e := range eqs {
		r, err := minus.Apply(e.Lhs, e.Rhs)
		if err != nil {
			return nil, err
		}
		res = appendResidual(res, r)
	}
	for _, r := range res {
		unk = symbols(r, unk)
	}
	sol := &Solutions{Unknowns: unk}
	if len(unk) == 0 {
		for _, r := range res {
			if !isNumber(r) || !nearZero(r, tol) {
				return nil, valueErr("equation has no solution")
			}
		}
		sol.Sets = [][]any{{}}
		return sol, nil
	}
	vals, free, ok, err := solveLinear(res, unk, tol)
	if err != nil {
		return nil, err
	}
	if ok {
		sol.Sets, sol.Free = [][]any{vals}, free
		return sol, nil
	}
	if len(unk) == 1 {
		roots, err := solveQuadratic(res, unk[0], tol)
		if err != nil {
			return nil, err
		}
		for _, x := range roots {
			sol.Sets = append(sol.Sets, []any{x})
		}
		return sol, nil
	}
	names := make([]string, len(unk))
	for i, s := range unk {
		names[i] = string(s)
	}
	return nil, valueErr("cannot solve for " + strings.Join(names, ", "))
}

// appendResidual flattens list residuals into one equation per item.
func appendResidual(res []any, r any) []any {
	if l, ok := r.(List); ok {
		for _, x := range l {
			res = appendResidual(res, x)
		}
		return res
	}
	return append(res, r)
}

func evalResidual(r any, unk []Symbol, point []any) (any, error) {
	m := make(map[string]any, len(unk))
	for i, u := range unk {
		m[string(u)] = point[i]
	}
	v, err := Substitute(r, m)
	if err != nil {
		return nil, err
	}
	if !isNumber(v) {
		return nil, typeErr("equation has " + TypeName(v) + " residual")
	}
	return v, nil
}

// numErr collects the first error of a sequence of arithmetic steps.
type numErr struct {
	err error
}

func (e *numErr) do(v any, err error) any {
	if e.err == nil {
		e.err = err
	}
	return v
}

var probePrimes = [...]int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53}

func probeAt(j int) *big.Int {
	if j < len(probePrimes) {
		return intOf(probePrimes[j])
	}
	return intOf(int64(7*j + 1))
}

// solveLinear treats the residuals as affine in the unknowns. It finds the
// coefficients by probing at zero and at unit vectors, checks the fit at
// another point, and eliminates. ok is false if the residuals are not
// affine.
func solveLinear(res []any, unk []Symbol, tol float64) (vals []any, free []Symbol, ok bool, err error) {
	n := len(unk)
	point := func(f func(j int) any) []any {
		p := make([]any, n)
		for j := range p {
			p[j] = f(j)
		}
		return p
	}
	zero := point(func(int) any { return intOf(0) })
	c := make([]any, len(res))
	for i, r := range res {
		if c[i], err = evalResidual(r, unk, zero); err != nil {
			return nil, nil, false, nil
		}
	}
	a := make([][]any, len(res))
	for i := range a {
		a[i] = make([]any, n+1)
	}
	var ne numErr
	for j := 0; j < n; j++ {
		e := point(func(k int) any { return intOf(int64(b2i(k == j))) })
		for i, r := range res {
			v, err := evalResidual(r, unk, e)
			if err != nil {
				return nil, nil, false, nil
			}
			a[i][j] = ne.do(sub(v, c[i]))
		}
	}
	probe := point(func(j int) any { return probeAt(j) })
	for i, r := range res {
		got, err := evalResidual(r, unk, probe)
		if err != nil {
			return nil, nil, false, nil
		}
		want := c[i]
		for j := 0; j < n; j++ {
			want = ne.do(add(want, ne.do(mul(a[i][j], probe[j]))))
		}
		if ne.err != nil {
			return nil, nil, false, ne.err
		}
		if !near(got, want, tol) {
			return nil, nil, false, nil
		}
	}
	for i := range a {
		a[i][n] = ne.do(neg(c[i]))
	}
	var pivots []int
	row := 0
	for col := 0; col < n && row < len(a); col++ {
		p := -1
		for r := row; r < len(a); r++ {
			if !nearZero(a[r][col], tol) {
				p = r
				break
			}
		}
		if p < 0 {
			continue
		}
		a[row], a[p] = a[p], a[row]
		pv := a[row][col]
		for k := col; k <= n; k++ {
			a[row][k] = ne.do(quo(a[row][k], pv))
		}
		for r := range a {
			if r == row || nearZero(a[r][col], tol) {
				continue
			}
			f := a[r][col]
			for k := col; k <= n; k++ {
				a[r][k] = ne.do(sub(a[r][k], ne.do(mul(f, a[row][k]))))
			}
		}
		if ne.err != nil {
			return nil, nil, false, ne.err
		}
		pivots = append(pivots, col)
		row++
	}
	for r := row; r < len(a); r++ {
		if !nearZero(a[r][n], tol) {
			return nil, nil, true, valueErr("equations are inconsistent")
		}
	}
	vals = zero
	isPivot := make([]bool, n)
	for r, col := range pivots {
		vals[col] = a[r][n]
		isPivot[col] = true
	}
	for j, s := range unk {
		if !isPivot[j] {
			free = append(free, s)
		}
	}
	return vals, free, true, nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// solveQuadratic fits the first residual as a quadratic in x and returns
// the roots that satisfy every residual.
func solveQuadratic(res []any, x Symbol, tol float64) ([]any, error) {
	cannot := valueErr("cannot solve for " + string(x))
	f := func(t any) (any, error) {
		return evalResidual(res[0], []Symbol{x}, []any{t})
	}
	var ne numErr
	c := ne.do(f(intOf(0)))
	f1 := ne.do(f(intOf(1)))
	fm1 := ne.do(f(intOf(-1)))
	if ne.err != nil {
		return nil, cannot
	}
	two := intOf(2)
	a := ne.do(sub(ne.do(quo(ne.do(add(f1, fm1)), two)), c))
	b := ne.do(quo(ne.do(sub(f1, fm1)), two))
	for _, t := range []int64{2, 3} {
		tt := intOf(t)
		want := ne.do(add(ne.do(mul(a, ne.do(mul(tt, tt)))), ne.do(add(ne.do(mul(b, tt)), c))))
		got := ne.do(f(tt))
		if ne.err != nil || !near(got, want, tol) {
			return nil, cannot
		}
	}
	if nearZero(a, tol) {
		return nil, cannot
	}
	disc := ne.do(sub(ne.do(mul(b, b)), ne.do(mul(intOf(4), ne.do(mul(a, c))))))
	if ne.err != nil {
		return nil, ne.err
	}
	roots, err := quadRoots(a, b, disc)
	if err != nil {
		return nil, err
	}
	var r []any
	for _, z := range roots {
		ok := true
		for _, e := range res {
			v, err := evalResidual(e, []Symbol{x}, []any{z})
			if err != nil || !nearZero(v, tol) {
				ok = false
				break
			}
		}
		if ok {
			r = append(r, z)
		}
	}
	if len(r) == 0 {
		return nil, valueErr("equations have no common solution in " + string(x))
	}
	return r, nil
}

func quadRoots(a, b, disc any) ([]any, error) {
	var sq any
	switch numLevel(disc) {
	case 0, 1:
		if s, ok := exactSqrt(toRat(disc)); ok {
			sq = s
		}
	}
	if sq == nil {
		switch {
		case numLevel(disc) == 3:
			sq = cmplx.Sqrt(toComplex(disc))
		default:
			if s, _ := sign(disc); s < 0 {
				f, _ := Float64(disc)
				sq = complex(0, math.Sqrt(-f))
			} else {
				sq = new(big.Float).SetPrec(toFloat(disc).Prec()).Sqrt(toFloat(disc))
			}
		}
	}
	var ne numErr
	twoA := ne.do(mul(intOf(2), a))
	negB := ne.do(neg(b))
	r1 := ne.do(quo(ne.do(sub(negB, sq)), twoA))
	r2 := ne.do(quo(ne.do(add(negB, sq)), twoA))
	if ne.err != nil {
		return nil, ne.err
	}
	if Equal(r1, r2) {
		return []any{r1}, nil
	}
	if less(r2, r1) {
		r1, r2 = r2, r1
	}
	return []any{r1, r2}, nil
}

// less orders reals by value and complex numbers by real then imaginary
// part.
func less(x, y any) bool {
	if numLevel(x) == 3 || numLevel(y) == 3 {
		cx, cy := toComplex(x), toComplex(y)
		if real(cx) != real(cy) {
			return real(cx) < real(cy)
		}
		return imag(cx) < imag(cy)
	}
	c, _ := compare(x, y)
	return c < 0
}

// exactSqrt returns the square root of a non-negative rational if it is
// rational.
func exactSqrt(r *big.Rat) (any, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	root := func(n *big.Int) (*big.Int, bool) {
		s := new(big.Int).Sqrt(n)
		return s, new(big.Int).Mul(s, s).Cmp(n) == 0
	}
	n, ok := root(r.Num())
	if !ok {
		return nil, false
	}
	d, ok := root(r.Denom())
	if !ok {
		return nil, false
	}
	return normRat(new(big.Rat).SetFrac(n, d)), true
}

func magnitude(v any) float64 {
	if numLevel(v) == 3 {
		return cmplx.Abs(toComplex(v))
	}
	f, _ := Float64(v)
	return math.Abs(f)
}

// nearZero reports whether a number is zero, exactly for exact numbers and
// within tol otherwise.
func nearZero(v any, tol float64) bool {
	switch numLevel(v) {
	case 0, 1:
		s, _ := sign(v)
		return s == 0
	case 2, 3:
		return magnitude(v) <= tol
	}
	return false
}

// near reports whether got is equal to want, relative to want's magnitude
// when inexact.
func near(got, want any, tol float64) bool {
	d, err := sub(got, want)
	if err != nil {
		return false
	}
	if numLevel(d) <= 1 {
		return nearZero(d, tol)
	}
	return magnitude(d) <= tol*math.Max(1, magnitude(want))
}
