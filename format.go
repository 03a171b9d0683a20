package calc

import (
	"math/big"
	"strconv"
	"strings"
)

// DefaultDigits is the number of significant digits Format uses for reals.
const DefaultDigits = 18

// Format formats a value for display.
func Format(v any) string {
	return FormatPrec(v, DefaultDigits)
}

// FormatPrec formats a value for display with reals rounded to the given
// number of significant digits.
func FormatPrec(v any, digits int) string {
	var b strings.Builder
	f := formatter{b: &b, digits: digits}
	f.value(v)
	return b.String()
}

type formatter struct {
	b      *strings.Builder
	digits int
}

func (f formatter) value(v any) {
	b := f.b
	switch v := v.(type) {
	case nil:
		b.WriteByte('_')
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case *big.Int:
		b.WriteString(v.String())
	case *big.Rat:
		b.WriteString(v.RatString())
	case *big.Float:
		switch {
		case v.IsInf() && v.Sign() > 0:
			b.WriteString("inf")
		case v.IsInf():
			b.WriteString("-inf")
		default:
			b.WriteString(v.Text('g', f.digits))
		}
	case complex128:
		b.WriteString(strconv.FormatComplex(v, 'g', min(f.digits, 17), 128))
	case string:
		b.WriteString(strconv.Quote(v))
	case List:
		b.WriteByte('[')
		f.list(v)
		b.WriteByte(']')
	case *Range:
		f.value(v.Start)
		if v.Step != nil {
			b.WriteString("..")
			second, err := add(v.Start, v.Step)
			if err != nil {
				second = v.Step
			}
			f.value(second)
		}
		b.WriteString("..")
		f.value(v.Stop)
	case Symbol:
		b.WriteString(string(v))
	case *Term:
		f.apply(v.Op, v.Args)
	case Keyword:
		b.WriteString(v.Name)
		b.WriteString(": ")
		f.value(v.Value)
	case Unpack:
		f.value(v.List)
		b.WriteByte('~')
	case Attr:
		b.WriteString(string(v))
	case OpToken:
		b.WriteString(string(v))
	case *Env:
		if v.Val != nil {
			f.value(v.Val)
			return
		}
		b.WriteByte('{')
		for i, k := range v.Names() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(" = ")
			x, _ := v.Local(k)
			if e, ok := x.(*Env); ok && e == v {
				b.WriteString("{...}")
				continue
			}
			f.value(x)
		}
		b.WriteByte('}')
	case *Builtin:
		b.WriteString(v.Name)
	case *Closure:
		if v.Name != "" {
			b.WriteString(v.Name)
			if v.Form.Kind != FormList {
				b.WriteByte('(')
				b.WriteString(v.Form.String())
				b.WriteByte(')')
			} else {
				b.WriteString(v.Form.String())
			}
			return
		}
		b.WriteString(v.Form.String())
		b.WriteString(" => ")
		f.value(v.Body)
	case *Composed:
		f.value(v.Outer)
		for _, g := range v.Inner {
			b.WriteString(" . ")
			f.value(g)
		}
	case *Lifted:
		f.apply(v.Op, v.Operands)
	case *Op:
		b.WriteString(v.String())
	case *Tree:
		b.WriteString(v.String())
	case *Form:
		b.WriteString(v.String())
	default:
		b.WriteString("<" + TypeName(v) + ">")
	}
}

func (f formatter) list(l List) {
	for i, x := range l {
		if i > 0 {
			f.b.WriteString(", ")
		}
		f.value(x)
	}
}

// apply formats an operator application in infix form, parenthesizing
// operands that are looser applications.
func (f formatter) apply(op *Op, args []any) {
	b := f.b
	operand := func(x any) {
		var inner *Op
		switch x := x.(type) {
		case *Term:
			inner = x.Op
		case *Lifted:
			inner = x.Op
		}
		if inner != nil && inner.Priority < op.Priority {
			b.WriteByte('(')
			f.value(x)
			b.WriteByte(')')
			return
		}
		f.value(x)
	}
	switch {
	case op.Class == PrefixOp:
		b.WriteString(op.Symbol)
		if op.Symbol == "not" {
			b.WriteByte(' ')
		}
		operand(args[0])
	case op.Class == PostfixOp:
		operand(args[0])
		b.WriteString(op.Symbol)
	case op == appOp || op == getOp:
		operand(args[0])
		lb, rb := byte('('), byte(')')
		if op == getOp {
			lb, rb = '[', ']'
		}
		b.WriteByte(lb)
		if l, ok := args[1].(List); ok {
			f.list(l)
		} else {
			f.value(args[1])
		}
		b.WriteByte(rb)
	default:
		operand(args[0])
		switch op.Symbol {
		case "":
			b.WriteByte(' ')
		case "^":
			b.WriteByte('^')
		default:
			b.WriteString(" " + op.Symbol + " ")
		}
		operand(args[1])
	}
}
