package calc

import (
	"math/big"
	"strings"
)

func opAdd(a ...any) (any, error) {
	if x, ok := a[0].(string); ok {
		if y, ok := a[1].(string); ok {
			return x + y, nil
		}
	}
	return add(a[0], a[1])
}

func opSub(a ...any) (any, error) { return sub(a[0], a[1]) }
func opMul(a ...any) (any, error) { return mul(a[0], a[1]) }
func opQuo(a ...any) (any, error) { return quo(a[0], a[1]) }
func opPow(a ...any) (any, error) { return pow(a[0], a[1]) }

func opFloorDiv(a ...any) (any, error) {
	q, _, err := floorDivMod(a[0], a[1])
	return q, err
}

func opMod(a ...any) (any, error) {
	_, m, err := floorDivMod(a[0], a[1])
	return m, err
}

func opNeg(a ...any) (any, error) { return neg(a[0]) }

func opNot(a ...any) (any, error) { return !Truthy(a[0]), nil }

func opInv(a ...any) (any, error) {
	x, ok := a[0].(*big.Int)
	if !ok {
		return nil, typeErr("cannot invert " + TypeName(a[0]))
	}
	return new(big.Int).Not(x), nil
}

func opEq(a ...any) (any, error) { return Equal(a[0], a[1]), nil }
func opNe(a ...any) (any, error) { return !Equal(a[0], a[1]), nil }

func cmpOp(f func(int) bool) func(a ...any) (any, error) {
	return func(a ...any) (any, error) {
		c, err := compare(a[0], a[1])
		if err != nil {
			return nil, err
		}
		return f(c), nil
	}
}

var (
	opLt = cmpOp(func(c int) bool { return c < 0 })
	opGt = cmpOp(func(c int) bool { return c > 0 })
	opLe = cmpOp(func(c int) bool { return c <= 0 })
	opGe = cmpOp(func(c int) bool { return c >= 0 })
)

// opAnd is conjunction on booleans, bitwise and on integers, and
// intersection on lists.
func opAnd(a ...any) (any, error) {
	switch x := a[0].(type) {
	case bool:
		if y, ok := a[1].(bool); ok {
			return x && y, nil
		}
	case List:
		y, err := Iterate(a[1])
		if err != nil {
			return nil, err
		}
		var r List
		for _, v := range x {
			if contains(y, v) {
				r = append(r, v)
			}
		}
		return r, nil
	}
	return bitwise("&", a[0], a[1], (*big.Int).And)
}

// opOr is disjunction on booleans, bitwise or on integers, concatenation on
// lists, and merging on envs. A non-list operand to list concatenation is a
// single item.
func opOr(a ...any) (any, error) {
	x, y := a[0], a[1]
	switch x := x.(type) {
	case bool:
		if y, ok := y.(bool); ok {
			return x || y, nil
		}
	case List:
		r := append(List(nil), x...)
		if y, ok := y.(List); ok {
			return append(r, y...), nil
		}
		return append(r, y), nil
	case *Env:
		if y, ok := y.(*Env); ok {
			e := x.Parent().Child(nil)
			e.Merge(x, true)
			e.Merge(y, true)
			return e, nil
		}
	}
	if y, ok := y.(List); ok {
		return append(List{x}, y...), nil
	}
	return bitwise("|", x, y, (*big.Int).Or)
}

func opXor(a ...any) (any, error) {
	if x, ok := a[0].(bool); ok {
		if y, ok := a[1].(bool); ok {
			return x != y, nil
		}
	}
	return bitwise("xor", a[0], a[1], (*big.Int).Xor)
}

func contains(l List, x any) bool {
	for _, v := range l {
		if Equal(v, x) {
			return true
		}
	}
	return false
}

// opIn tests membership of an item in a list, range, string, or env.
func opIn(a ...any) (any, error) {
	x := a[0]
	switch y := a[1].(type) {
	case List:
		return contains(y, x), nil
	case *Range:
		return y.Contains(x), nil
	case string:
		s, ok := x.(string)
		if !ok {
			return nil, typeErr("cannot search string for " + TypeName(x))
		}
		return strings.Contains(y, s), nil
	case *Env:
		var name string
		switch x := x.(type) {
		case string:
			name = x
		case Symbol:
			name = string(x)
		default:
			return false, nil
		}
		_, ok := y.Get(name)
		return ok, nil
	}
	return nil, typeErr(TypeName(a[1]) + " is not a container")
}

func opOutof(a ...any) (any, error) {
	r, err := opIn(a...)
	if err != nil {
		return nil, err
	}
	return !r.(bool), nil
}

// opRange builds a range. Applied to a range without a step, the range's
// stop becomes its second item, so "1..3..9" is 1, 3, 5, 7, 9.
func opRange(a ...any) (any, error) {
	if r, ok := a[0].(*Range); ok && r.Step == nil {
		step, err := sub(r.Stop, r.Start)
		if err != nil {
			return nil, err
		}
		if !isNumber(a[1]) {
			return nil, typeErr("range bound must be a number, not " + TypeName(a[1]))
		}
		return &Range{Start: r.Start, Stop: a[1], Step: step}, nil
	}
	for _, x := range a {
		if numLevel(x) < 0 || numLevel(x) > 2 {
			return nil, typeErr("range bound must be a real number, not " + TypeName(x))
		}
	}
	return &Range{Start: a[0], Stop: a[1]}, nil
}

// adjoin is juxtaposition: composition of two callables, application if
// only the left operand is callable, otherwise multiplication.
func adjoin(a ...any) (any, error) {
	if f, ok := a[0].(Callable); ok {
		if g, ok := a[1].(Callable); ok {
			return Compose(f, g), nil
		}
		return Call(f, a[1])
	}
	return BinaryOps["*"].Apply(a[0], a[1])
}

// opApp applies its left operand to a bracketed argument list. A
// non-callable with a single argument multiplies it, so "2(x+1)" reads as a
// product.
func opApp(a ...any) (any, error) {
	var args List
	switch x := a[1].(type) {
	case List:
		args = x
	case Unpack:
		args = x.List
	default:
		args = List{x}
	}
	if f, ok := a[0].(Callable); ok {
		return Call(f, args...)
	}
	if len(args) == 1 {
		return adjoin(a[0], args[0])
	}
	return adjoin(a[0], args)
}

// opGet indexes its left operand by a bracketed index list.
func opGet(a ...any) (any, error) {
	idx, ok := a[1].(List)
	if !ok {
		idx = List{a[1]}
	}
	return index(a[0], idx)
}

// index selects from a sequence. Indices are 1-based, and negative indices
// count from the end. A range index slices. Further indices select within
// the selected items.
func index(v any, idx List) (any, error) {
	if len(idx) == 0 {
		return v, nil
	}
	v = unbox(v)
	if e, ok := v.(*Env); ok {
		name, ok := idx[0].(string)
		if !ok {
			return nil, typeErr("env index must be a string, not " + TypeName(idx[0]))
		}
		x, err := e.Lookup(name)
		if err != nil {
			return nil, err
		}
		return index(x, idx[1:])
	}
	seq, err := Iterate(v)
	if err != nil {
		return nil, typeErr(TypeName(v) + " is not indexable")
	}
	if r, ok := idx[0].(*Range); ok {
		sel, err := sliceRange(seq, r)
		if err != nil {
			return nil, err
		}
		out := make(List, len(sel))
		for i, x := range sel {
			if out[i], err = index(x, idx[1:]); err != nil {
				return nil, err
			}
		}
		if _, ok := v.(string); ok && len(idx) == 1 {
			var b strings.Builder
			for _, x := range out {
				b.WriteString(x.(string))
			}
			return b.String(), nil
		}
		return out, nil
	}
	x, err := at(seq, idx[0])
	if err != nil {
		return nil, err
	}
	return index(x, idx[1:])
}

func position(n int64, length int) (int, error) {
	if n == 0 {
		return 0, valueErr("indices start at 1")
	}
	i := int(n) - 1
	if n < 0 {
		i = length + int(n)
	}
	if i < 0 || i >= length {
		return 0, valueErr("index " + Format(intOf(n)) + " out of range for length " + Format(intOf(int64(length))))
	}
	return i, nil
}

func at(seq List, i any) (any, error) {
	n, ok := Int64(i)
	if !ok {
		return nil, typeErr("index must be an integer, not " + TypeName(i))
	}
	k, err := position(n, len(seq))
	if err != nil {
		return nil, err
	}
	return seq[k], nil
}

func sliceRange(seq List, r *Range) (List, error) {
	rel := func(x any) (any, error) {
		n, ok := Int64(x)
		if !ok {
			return nil, typeErr("index must be an integer, not " + TypeName(x))
		}
		if n < 0 {
			n += int64(len(seq)) + 1
		}
		return intOf(n), nil
	}
	start, err := rel(r.Start)
	if err != nil {
		return nil, err
	}
	stop, err := rel(r.Stop)
	if err != nil {
		return nil, err
	}
	ix, err := (&Range{Start: start, Stop: stop, Step: r.Step}).Items()
	if err != nil {
		return nil, err
	}
	out := make(List, len(ix))
	for i, k := range ix {
		if out[i], err = at(seq, k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// opDot composes callables, maps a callable over an iterable, and takes
// inner products of vectors and matrices. Other operands multiply.
func opDot(a ...any) (any, error) {
	x, y := a[0], a[1]
	if f, ok := x.(Callable); ok {
		if g, ok := y.(Callable); ok {
			return Compose(f, g), nil
		}
		items, err := Iterate(y)
		if err != nil {
			return nil, err
		}
		r := make(List, len(items))
		for i, v := range items {
			if r[i], err = Call(f, v); err != nil {
				return nil, err
			}
		}
		return r, nil
	}
	lx, okx := x.(List)
	ly, oky := y.(List)
	if !okx || !oky {
		return BinaryOps["*"].Apply(x, y)
	}
	return dot(lx, ly)
}

func dot(x, y List) (any, error) {
	dx, dy := Depth(x), Depth(y)
	switch {
	case dx == 1 && dy == 1:
		if len(x) != len(y) {
			return nil, valueErr("dimension mismatch for dot product")
		}
		var s any = intOf(0)
		times, plus := BinaryOps["*"], BinaryOps["+"]
		for i := range x {
			p, err := times.Apply(x[i], y[i])
			if err != nil {
				return nil, err
			}
			if s, err = plus.Apply(s, p); err != nil {
				return nil, err
			}
		}
		return s, nil
	case dx == 1:
		return dot(List{x}, y)
	case dy == 1:
		r := make(List, len(x))
		for i, row := range x {
			l, ok := row.(List)
			if !ok {
				return nil, valueErr("ragged matrix")
			}
			v, err := dot(l, y)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	}
	cols, err := Transpose(y)
	if err != nil {
		return nil, err
	}
	r := make(List, len(x))
	for i, row := range x {
		l, ok := row.(List)
		if !ok {
			return nil, valueErr("ragged matrix")
		}
		out := make(List, len(cols))
		for j, c := range cols {
			if out[j], err = dot(l, c.(List)); err != nil {
				return nil, err
			}
		}
		r[i] = out
	}
	return r, nil
}

// Depth returns the nesting depth of a value: 0 for a non-list and one more
// than the deepest item for a list.
func Depth(v any) int {
	l, ok := v.(List)
	if !ok {
		return 0
	}
	d := 0
	for _, x := range l {
		d = max(d, Depth(x))
	}
	return d + 1
}

// Transpose exchanges the rows and columns of a matrix.
func Transpose(m List) (List, error) {
	if len(m) == 0 {
		return List{}, nil
	}
	first, ok := m[0].(List)
	if !ok {
		return nil, valueErr("transpose of a non-matrix")
	}
	r := make(List, len(first))
	for j := range r {
		col := make(List, len(m))
		for i, row := range m {
			l, ok := row.(List)
			if !ok || len(l) != len(first) {
				return nil, valueErr("ragged matrix")
			}
			col[i] = l[j]
		}
		r[j] = col
	}
	return r, nil
}

func opFact(a ...any) (any, error) {
	n, ok := a[0].(*big.Int)
	if !ok || n.Sign() < 0 || !n.IsInt64() {
		return nil, &DomainError{X: a[0], Arg: 1, Func: "!"}
	}
	if n.Sign() == 0 {
		return intOf(1), nil
	}
	return new(big.Int).MulRange(1, n.Int64()), nil
}

func opFact2(a ...any) (any, error) {
	n, ok := a[0].(*big.Int)
	if !ok || n.Sign() < 0 || !n.IsInt64() {
		return nil, &DomainError{X: a[0], Arg: 1, Func: "!!"}
	}
	r := intOf(1)
	for k := n.Int64(); k > 1; k -= 2 {
		r.Mul(r, intOf(k))
	}
	return r, nil
}

func opUnpack(a ...any) (any, error) {
	l, err := Iterate(a[0])
	if err != nil {
		return nil, err
	}
	return Unpack{List: l}, nil
}
