package funcs

import (
	"math/big"
	"sort"

	"github.com/zephyrtronium/calc"
)

func length(args ...any) (any, error) {
	switch x := args[0].(type) {
	case string:
		return big.NewInt(int64(len([]rune(x)))), nil
	case *calc.Env:
		return big.NewInt(int64(x.Len())), nil
	}
	l, err := calc.Iterate(args[0])
	if err != nil {
		return nil, err
	}
	return big.NewInt(int64(len(l))), nil
}

// fold combines its arguments, or the items of its single list argument,
// with a binary operator. The empty fold is zero.
func fold(name, sym string, zero int64) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		items, err := spread(args)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return big.NewInt(zero), nil
		}
		acc := items[0]
		for _, x := range items[1:] {
			if acc, err = op(sym, acc, x); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
}

func list(args ...any) (any, error) {
	if len(args) == 1 {
		if _, ok := args[0].(calc.List); !ok {
			if l, err := calc.Iterate(args[0]); err == nil {
				return l, nil
			}
		}
	}
	return calc.List(args), nil
}

func items(name string, x any) (calc.List, error) {
	l, err := calc.Iterate(x)
	if err != nil {
		return nil, &calc.TypeError{Msg: name + " needs a list, not " + calc.TypeName(x)}
	}
	return l, nil
}

func callable(name string, x any) (calc.Callable, error) {
	f, ok := x.(calc.Callable)
	if !ok {
		return nil, &calc.TypeError{Msg: name + " needs a function, not " + calc.TypeName(x)}
	}
	return f, nil
}

func sortList(args ...any) (any, error) {
	l, err := items("sort", args[0])
	if err != nil {
		return nil, err
	}
	r := append(calc.List(nil), l...)
	sort.SliceStable(r, func(i, j int) bool {
		if err != nil {
			return false
		}
		var b bool
		b, err = less(r[i], r[j])
		return b
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func mapList(args ...any) (any, error) {
	f, err := callable("map", args[0])
	if err != nil {
		return nil, err
	}
	l, err := items("map", args[1])
	if err != nil {
		return nil, err
	}
	r := make(calc.List, len(l))
	for i, x := range l {
		if r[i], err = calc.Call(f, x); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func filter(args ...any) (any, error) {
	f, err := callable("filter", args[0])
	if err != nil {
		return nil, err
	}
	l, err := items("filter", args[1])
	if err != nil {
		return nil, err
	}
	r := calc.List{}
	for _, x := range l {
		ok, err := calc.Call(f, x)
		if err != nil {
			return nil, err
		}
		if calc.Truthy(ok) {
			r = append(r, x)
		}
	}
	return r, nil
}

// reduce folds a list with a function of two arguments, starting from an
// optional initial value.
func reduce(args ...any) (any, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, &calc.ArityError{Func: "reduce", Want: 2, Got: len(args), Variadic: true}
	}
	f, err := callable("reduce", args[0])
	if err != nil {
		return nil, err
	}
	l, err := items("reduce", args[1])
	if err != nil {
		return nil, err
	}
	var acc any
	if len(args) == 3 {
		acc = args[2]
	} else {
		if len(l) == 0 {
			return nil, &calc.ValueError{Msg: "reduce of empty list with no initial value"}
		}
		acc, l = l[0], l[1:]
	}
	for _, x := range l {
		if acc, err = calc.Call(f, acc, x); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// zip groups the nth items of each list, stopping at the shortest.
func zip(args ...any) (any, error) {
	ls := make([]calc.List, len(args))
	n := -1
	for i, a := range args {
		l, err := items("zip", a)
		if err != nil {
			return nil, err
		}
		ls[i] = l
		if n < 0 || len(l) < n {
			n = len(l)
		}
	}
	r := make(calc.List, max(n, 0))
	for k := range r {
		t := make(calc.List, len(ls))
		for i, l := range ls {
			t[i] = l[k]
		}
		r[k] = t
	}
	return r, nil
}

func car(args ...any) (any, error) {
	l, err := items("car", args[0])
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, &calc.ValueError{Msg: "car of empty list"}
	}
	return l[0], nil
}

func cdr(args ...any) (any, error) {
	l, err := items("cdr", args[0])
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, &calc.ValueError{Msg: "cdr of empty list"}
	}
	return append(calc.List{}, l[1:]...), nil
}

func cons(args ...any) (any, error) {
	l, err := items("cons", args[1])
	if err != nil {
		return nil, err
	}
	return append(calc.List{args[0]}, l...), nil
}

// enum pairs each item with its position, counting from 1.
func enum(args ...any) (any, error) {
	l, err := items("enum", args[0])
	if err != nil {
		return nil, err
	}
	r := make(calc.List, len(l))
	for i, x := range l {
		r[i] = calc.List{big.NewInt(int64(i + 1)), x}
	}
	return r, nil
}

// rangeOf builds range(stop) from 1, range(start, stop), or
// range(start, stop, step).
func rangeOf(args ...any) (any, error) {
	for i, a := range args {
		if _, ok := calc.Float64(a); !ok {
			return nil, &calc.TypeError{Msg: "range bound " + calc.Format(big.NewInt(int64(i+1))) + " must be real, not " + calc.TypeName(a)}
		}
	}
	switch len(args) {
	case 1:
		return &calc.Range{Start: big.NewInt(1), Stop: args[0]}, nil
	case 2:
		return &calc.Range{Start: args[0], Stop: args[1]}, nil
	case 3:
		return &calc.Range{Start: args[0], Stop: args[1], Step: args[2]}, nil
	}
	return nil, &calc.ArityError{Func: "range", Want: 1, Got: len(args), Variadic: true}
}

// find lists the positions of the items equal to x, or satisfying x if it is
// a function.
func find(args ...any) (any, error) {
	l, err := items("find", args[1])
	if err != nil {
		return nil, err
	}
	f, pred := args[0].(calc.Callable)
	r := calc.List{}
	for i, y := range l {
		var ok bool
		if pred {
			v, err := calc.Call(f, y)
			if err != nil {
				return nil, err
			}
			ok = calc.Truthy(v)
		} else {
			ok = calc.Equal(args[0], y)
		}
		if ok {
			r = append(r, big.NewInt(int64(i+1)))
		}
	}
	return r, nil
}

func quantifier(all bool) func(args ...any) (any, error) {
	name := "any"
	if all {
		name = "all"
	}
	return func(args ...any) (any, error) {
		l, err := items(name, args[0])
		if err != nil {
			return nil, err
		}
		for _, x := range l {
			if calc.Truthy(x) != all {
				return !all, nil
			}
		}
		return all, nil
	}
}

func same(args ...any) (any, error) {
	l, err := items("same", args[0])
	if err != nil {
		return nil, err
	}
	for _, x := range l {
		if !calc.Equal(x, l[0]) {
			return false, nil
		}
	}
	return true, nil
}

func depth(args ...any) (any, error) {
	return big.NewInt(int64(calc.Depth(args[0]))), nil
}

// shape lists the lengths of nested lists, following first items.
func shape(args ...any) (any, error) {
	r := calc.List{}
	for x := args[0]; ; {
		l, ok := x.(calc.List)
		if !ok {
			return r, nil
		}
		r = append(r, big.NewInt(int64(len(l))))
		if len(l) == 0 {
			return r, nil
		}
		x = l[0]
	}
}

func transp(args ...any) (any, error) {
	l, err := items("transp", args[0])
	if err != nil {
		return nil, err
	}
	return calc.Transpose(l)
}

func flatten(args ...any) (any, error) {
	var r calc.List
	var walk func(x any)
	walk = func(x any) {
		l, ok := x.(calc.List)
		if !ok {
			r = append(r, x)
			return
		}
		for _, y := range l {
			walk(y)
		}
	}
	walk(args[0])
	if r == nil {
		r = calc.List{}
	}
	return r, nil
}

func isNumber(args ...any) (any, error) {
	switch args[0].(type) {
	case *big.Int, *big.Rat, *big.Float, complex128:
		return true, nil
	}
	return false, nil
}

func isSymbol(args ...any) (any, error) {
	switch args[0].(type) {
	case calc.Symbol, *calc.Term:
		return true, nil
	}
	return false, nil
}

func isList(args ...any) (any, error) {
	_, ok := args[0].(calc.List)
	return ok, nil
}

func isMap(args ...any) (any, error) {
	_, ok := args[0].(calc.Callable)
	return ok, nil
}

func compose(args ...any) (any, error) {
	if len(args) < 2 {
		return nil, &calc.ArityError{Func: "compose", Want: 2, Got: len(args), Variadic: true}
	}
	outer, err := callable("compose", args[0])
	if err != nil {
		return nil, err
	}
	inner := make([]calc.Callable, len(args)-1)
	for i, a := range args[1:] {
		if inner[i], err = callable("compose", a); err != nil {
			return nil, err
		}
	}
	return calc.Compose(outer, inner...), nil
}

// solve solves equations given as symbolic comparisons a == b, or as
// expressions equal to zero. A single unknown gives its value, or the list
// of its values if there are several; otherwise the result lists the value
// of each unknown in order of appearance.
func solve(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, &calc.ArityError{Func: "solve", Want: 1, Variadic: true}
	}
	eq := calc.BinaryOps["=="]
	eqs := make([]calc.Equation, len(args))
	for i, a := range args {
		if t, ok := a.(*calc.Term); ok && t.Op == eq {
			eqs[i] = calc.Equation{Lhs: t.Args[0], Rhs: t.Args[1]}
			continue
		}
		eqs[i] = calc.Equation{Lhs: a, Rhs: big.NewInt(0)}
	}
	sol, err := calc.Solve(eqs, calc.DefaultConfig().Tolerance)
	if err != nil {
		return nil, err
	}
	if len(sol.Sets) == 0 {
		return nil, &calc.ValueError{Msg: "equations have no solution"}
	}
	if len(sol.Unknowns) == 1 {
		if len(sol.Sets) == 1 {
			return sol.Sets[0][0], nil
		}
		r := make(calc.List, len(sol.Sets))
		for i, s := range sol.Sets {
			r[i] = s[0]
		}
		return r, nil
	}
	return calc.List(sol.Sets[0]), nil
}

// subs substitutes keyword arguments for the symbols they name.
func subs(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, &calc.ArityError{Func: "subs", Want: 1, Variadic: true}
	}
	vals := make(map[string]any, len(args)-1)
	for _, a := range args[1:] {
		k, ok := a.(calc.Keyword)
		if !ok {
			return nil, &calc.TypeError{Msg: "subs needs keyword arguments, not " + calc.TypeName(a)}
		}
		vals[k.Name] = k.Value
	}
	return calc.Substitute(args[0], vals)
}
