package calc

import (
	"strconv"
)

// NameError is an error from a lookup for a name that is bound nowhere in the
// environment chain. It is the only error the evaluator recovers from: with no
// environment, it leaves the tree partially evaluated instead.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "unbound name: " + strconv.Quote(err.Name)
}

// SyntaxError is an error from a malformed tree: operators and operands out of
// order, duplicate variables in a form, or an invalid form shape.
type SyntaxError struct {
	Msg string
}

func (err *SyntaxError) Error() string {
	return "syntax error: " + err.Msg
}

// ArityError is an error from supplying the wrong number of values to a
// callable or to a form.
type ArityError struct {
	// Func names the callable or form, if known.
	Func string
	// Want is the number of values required.
	Want int
	// Got is the number of values supplied.
	Got int
	// Variadic indicates that Want is a minimum.
	Variadic bool
}

func (err *ArityError) Error() string {
	s := "wrong number of arguments"
	if err.Func != "" {
		s += " to " + err.Func
	}
	w := strconv.Itoa(err.Want)
	if err.Variadic {
		w = "at least " + w
	}
	return s + ": want " + w + ", got " + strconv.Itoa(err.Got)
}

// TypeError is an error from asking a value for an operation it does not
// support.
type TypeError struct {
	Msg string
}

func (err *TypeError) Error() string {
	return "type error: " + err.Msg
}

// ValueError is an error from a destructuring or equation that has no
// consistent solution, or an index out of range.
type ValueError struct {
	Msg string
}

func (err *ValueError) Error() string {
	return "value error: " + err.Msg
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X any
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := Format(err.X) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func typeErr(msg string) error {
	return &TypeError{Msg: msg}
}

func valueErr(msg string) error {
	return &ValueError{Msg: msg}
}

func syntaxErr(msg string) error {
	return &SyntaxError{Msg: msg}
}
