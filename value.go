package calc

import (
	"math/big"
	"strings"
)

// List is an ordered sequence of values.
type List []any

// Symbol is a named symbolic placeholder. Names that are unbound when the
// symbolic setting is on, names inside quotes, and unknowns in algebraic form
// positions evaluate to symbols.
type Symbol string

// Term is a symbolic application of an operator to arguments at least one of
// which is symbolic.
type Term struct {
	Op   *Op
	Args []any
}

// Keyword is a value passed by name, written "name: value".
type Keyword struct {
	Name  string
	Value any
}

// Unpack is a list to be spliced into an enclosing list.
type Unpack struct {
	List List
}

// Attr is a field name produced by an attribute path.
type Attr string

// OpToken is an operator spelling inside a sequence of items, before its
// class is decided by its position.
type OpToken string

// Range is a sequence of numbers from Start to Stop inclusive, advancing by
// Step, which is 1 if nil.
type Range struct {
	Start, Stop, Step any
}

// Attr returns the fields of a range.
func (r *Range) Attr(name string) (any, bool) {
	switch name {
	case "first", "start":
		return r.Start, true
	case "last", "stop":
		return r.Stop, true
	case "step":
		return r.step(), true
	}
	return nil, false
}

func (r *Range) step() any {
	if r.Step == nil {
		return intOf(1)
	}
	return r.Step
}

// Items materializes the range.
func (r *Range) Items() (List, error) {
	step := r.step()
	sgn, err := sign(step)
	if err != nil {
		return nil, err
	}
	if sgn == 0 {
		return nil, valueErr("range step is zero")
	}
	var l List
	x := r.Start
	for {
		c, err := compare(x, r.Stop)
		if err != nil {
			return nil, err
		}
		if c*sgn > 0 {
			return l, nil
		}
		l = append(l, x)
		if x, err = add(x, step); err != nil {
			return nil, err
		}
	}
}

// Contains reports whether x is one of the range's items without
// materializing it.
func (r *Range) Contains(x any) bool {
	lo, hi := r.Start, r.Stop
	sgn, err := sign(r.step())
	if err != nil || sgn == 0 {
		return false
	}
	if sgn < 0 {
		lo, hi = hi, lo
	}
	if c, err := compare(x, lo); err != nil || c < 0 {
		return false
	}
	if c, err := compare(x, hi); err != nil || c > 0 {
		return false
	}
	off, err := sub(x, r.Start)
	if err != nil {
		return false
	}
	_, m, err := floorDivMod(off, r.step())
	if err != nil {
		return false
	}
	s, _ := sign(m)
	return s == 0
}

// Iterate returns the items of an iterable value.
func Iterate(v any) (List, error) {
	switch v := unbox(v).(type) {
	case List:
		return v, nil
	case *Range:
		return v.Items()
	case string:
		var l List
		for _, r := range v {
			l = append(l, string(r))
		}
		return l, nil
	case Unpack:
		return v.List, nil
	case *Env:
		l := make(List, 0, v.Len())
		for _, k := range v.Names() {
			l = append(l, k)
		}
		return l, nil
	}
	return nil, typeErr(TypeName(v) + " is not iterable")
}

// Truthy reports whether a value counts as true in conditions.
func Truthy(v any) bool {
	switch v := unbox(v).(type) {
	case nil:
		return false
	case bool:
		return v
	case *big.Int:
		return v.Sign() != 0
	case *big.Rat:
		return v.Sign() != 0
	case *big.Float:
		return v.Sign() != 0
	case complex128:
		return v != 0
	case string:
		return v != ""
	case List:
		return len(v) != 0
	}
	return true
}

// Equal reports whether two values are equal. Numbers compare by value across
// representations.
func Equal(x, y any) bool {
	x, y = unbox(x), unbox(y)
	if isNumber(x) && isNumber(y) {
		if numLevel(x) == 3 || numLevel(y) == 3 {
			return toComplex(x) == toComplex(y)
		}
		c, err := compare(x, y)
		return err == nil && c == 0
	}
	switch x := x.(type) {
	case List:
		y, ok := y.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Keyword:
		y, ok := y.(Keyword)
		return ok && x.Name == y.Name && Equal(x.Value, y.Value)
	case Unpack:
		y, ok := y.(Unpack)
		return ok && Equal(x.List, y.List)
	case *Term:
		y, ok := y.(*Term)
		if !ok || x.Op != y.Op || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Range:
		y, ok := y.(*Range)
		return ok && Equal(x.Start, y.Start) && Equal(x.Stop, y.Stop) && Equal(x.step(), y.step())
	}
	switch y.(type) {
	case List, Keyword, Unpack, *Term, *Range:
		return false
	}
	return x == y
}

// isSymbolic reports whether v is a symbol or symbolic term.
func isSymbolic(v any) bool {
	switch v.(type) {
	case Symbol, *Term:
		return true
	}
	return false
}

// symbols collects the symbols appearing in v in order of appearance.
func symbols(v any, into []Symbol) []Symbol {
	switch v := v.(type) {
	case Symbol:
		for _, s := range into {
			if s == v {
				return into
			}
		}
		return append(into, v)
	case *Term:
		for _, a := range v.Args {
			into = symbols(a, into)
		}
	case List:
		for _, a := range v {
			into = symbols(a, into)
		}
	}
	return into
}

// Substitute replaces symbols in v by the values bound to their names and
// re-applies the operators of symbolic terms.
func Substitute(v any, vals map[string]any) (any, error) {
	switch v := v.(type) {
	case Symbol:
		if r, ok := vals[string(v)]; ok {
			return r, nil
		}
		return v, nil
	case *Term:
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			r, err := Substitute(a, vals)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return v.Op.Apply(args...)
	case List:
		l := make(List, len(v))
		for i, a := range v {
			r, err := Substitute(a, vals)
			if err != nil {
				return nil, err
			}
			l[i] = r
		}
		return l, nil
	}
	return v, nil
}

// TypeName describes the kind of a value for error messages.
func TypeName(v any) string {
	switch v := v.(type) {
	case nil:
		return "nothing"
	case bool:
		return "boolean"
	case *big.Int:
		return "integer"
	case *big.Rat:
		return "rational"
	case *big.Float:
		return "real"
	case complex128:
		return "complex"
	case string:
		return "string"
	case List:
		return "list"
	case *Range:
		return "range"
	case Symbol:
		return "symbol"
	case *Term:
		return "expression"
	case Keyword:
		return "keyword " + v.Name
	case Unpack:
		return "unpacked list"
	case *Env:
		return "env"
	case Callable:
		return "function"
	case *Op:
		return "operator " + v.Symbol
	case *Tree:
		return "unevaluated " + strings.ToLower(v.Tag.String())
	}
	return "value"
}
