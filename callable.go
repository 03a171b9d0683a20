package calc

import (
	"errors"
	"log/slog"
)

// Callable is a value that can be applied to arguments. The variants are
// *Builtin, *Closure, *Composed, and *Lifted; Call dispatches over exactly
// these.
type Callable interface {
	callable()
}

// Builtin is a primitive function implemented in Go.
type Builtin struct {
	Name string
	// Arity is the number of arguments Fn takes, or -1 if it takes any
	// number.
	Arity int
	Fn    func(args ...any) (any, error)
}

// NewBuiltin creates a primitive function. An arity of -1 accepts any
// number of arguments.
func NewBuiltin(name string, arity int, fn func(args ...any) (any, error)) *Builtin {
	return &Builtin{Name: name, Arity: arity, Fn: fn}
}

// Closure is a user-defined function. It captures the env it was defined in
// by reference, so later changes to that env are visible to its body.
type Closure struct {
	// Name is the name the closure was first bound to, if any.
	Name string
	// Env is the defining environment.
	Env *Env
	// Context, if not nil, is tried as the body's scope before Env.
	Context *Env
	Form    *Form
	Body    any

	ctx *Context
}

// Composed applies Outer to the results of applying each of Inner to the
// arguments.
type Composed struct {
	Outer Callable
	Inner []Callable
}

// Lifted applies an operator to the results of applying its callable
// operands to the arguments. Operands that are not callable are used as is.
type Lifted struct {
	Op       *Op
	Operands []any
}

func (*Builtin) callable()  {}
func (*Closure) callable()  {}
func (*Composed) callable() {}
func (*Lifted) callable()   {}

// Compose creates the composition of outer with inner.
func Compose(outer Callable, inner ...Callable) *Composed {
	return &Composed{Outer: outer, Inner: inner}
}

// Call applies a callable to arguments.
func Call(f Callable, args ...any) (any, error) {
	switch f := f.(type) {
	case *Builtin:
		if f.Arity >= 0 && len(args) != f.Arity {
			return nil, &ArityError{Func: f.Name, Want: f.Arity, Got: len(args)}
		}
		return f.Fn(args...)
	case *Closure:
		return f.call(args)
	case *Composed:
		r := make([]any, len(f.Inner))
		for i, g := range f.Inner {
			v, err := Call(g, args...)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return Call(f.Outer, r...)
	case *Lifted:
		r := make([]any, len(f.Operands))
		for i, x := range f.Operands {
			g, ok := x.(Callable)
			if !ok {
				r[i] = x
				continue
			}
			v, err := Call(g, args...)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return f.Op.Apply(r...)
	}
	panic("calc: unknown callable type")
}

// Arity returns the number of positional arguments a callable requires and
// whether it accepts more. Composed callables report their outer callable's
// arity.
func Arity(f Callable) (n int, variadic bool) {
	switch f := f.(type) {
	case *Builtin:
		if f.Arity < 0 {
			return 0, true
		}
		return f.Arity, false
	case *Closure:
		return f.Form.Arity()
	case *Composed:
		return Arity(f.Outer)
	case *Lifted:
		n, variadic = 0, true
		for _, x := range f.Operands {
			if g, ok := x.(Callable); ok {
				k, v := Arity(g)
				if !v {
					return k, false
				}
				n = max(n, k)
			}
		}
		return n, variadic
	}
	panic("calc: unknown callable type")
}

func (c *Closure) call(args []any) (any, error) {
	n, variadic := c.Form.Arity()
	got := 0
	for _, a := range args {
		if k, ok := a.(Keyword); !ok || c.Form.position(k.Name) >= 0 {
			got++
		}
	}
	if got < n || (!variadic && got != n) {
		return nil, &ArityError{Func: c.Name, Want: n, Got: got, Variadic: variadic}
	}
	if c.Context != nil {
		r, err := c.eval(c.Context, args)
		var ne *NameError
		if !errors.As(err, &ne) {
			return r, err
		}
	}
	return c.eval(c.Env, args)
}

func (c *Closure) eval(scope *Env, args []any) (any, error) {
	local := scope.Child(nil)
	local.Name = c.Name
	var v any = List(args)
	if c.Form.Kind != FormList {
		v = args[0]
	}
	if err := c.ctx.bind(c.Form, v, local); err != nil {
		return nil, err
	}
	if c.ctx.cfg.Debug {
		c.ctx.log.Debug("call", slog.String("func", c.Name), slog.Int("depth", local.Depth()))
	}
	return c.ctx.eval(c.Body, local)
}

// Attr gets fields of a closure: its name and its defining env.
func (c *Closure) Attr(name string) (any, bool) {
	switch name {
	case "name":
		return c.Name, true
	case "env":
		return c.Env, true
	}
	return nil, false
}
