package calc

// OpClass is the syntactic class of an operator.
type OpClass uint8

const (
	BinaryOp OpClass = iota
	PrefixOp
	PostfixOp
)

// Op is an operator: a symbol of a given class with a priority, and the
// operation it denotes. Ops of the same spelling but different class, like
// subtraction and negation, are distinct. Ops are never modified after
// construction.
type Op struct {
	Class    OpClass
	Symbol   string
	Priority int

	fn func(args ...any) (any, error)
	// lift makes applying the op to callables produce a lifted callable.
	lift bool
	// bcast makes the op apply elementwise to lists.
	bcast bool
	// sym makes applying the op to symbolic values produce a Term.
	sym bool
}

// Arity returns the number of operands the op takes.
func (op *Op) Arity() int {
	if op.Class == BinaryOp {
		return 2
	}
	return 1
}

func (op *Op) String() string {
	switch op.Class {
	case PrefixOp:
		return op.Symbol + "_"
	case PostfixOp:
		return "_" + op.Symbol
	}
	if op.Symbol == "" {
		return "_ _"
	}
	return "_" + op.Symbol + "_"
}

// Apply applies the op to operands. If the op lifts and any operand is
// callable, the result is a callable that applies the callable operands to
// its arguments first. Boxed values are unboxed.
func (op *Op) Apply(args ...any) (any, error) {
	if len(args) != op.Arity() {
		return nil, &ArityError{Func: op.String(), Want: op.Arity(), Got: len(args)}
	}
	a := make([]any, len(args))
	for i, x := range args {
		a[i] = unbox(x)
	}
	if op.lift {
		for _, x := range a {
			if _, ok := x.(Callable); ok {
				return &Lifted{Op: op, Operands: a}, nil
			}
		}
	}
	if op.bcast {
		if r, ok, err := op.broadcast(a); ok {
			return r, err
		}
	}
	if op.sym {
		for _, x := range a {
			if isSymbolic(x) {
				return &Term{Op: op, Args: a}, nil
			}
		}
	}
	return op.fn(a...)
}

// broadcast applies the op elementwise when an operand is a list. A list
// paired with a scalar applies the scalar to every element.
func (op *Op) broadcast(a []any) (any, bool, error) {
	if len(a) == 1 {
		l, ok := a[0].(List)
		if !ok {
			return nil, false, nil
		}
		r := make(List, len(l))
		for i, x := range l {
			v, err := op.Apply(x)
			if err != nil {
				return nil, true, err
			}
			r[i] = v
		}
		return r, true, nil
	}
	lx, okx := a[0].(List)
	ly, oky := a[1].(List)
	var r List
	switch {
	case okx && oky:
		if len(lx) != len(ly) {
			return nil, true, valueErr("dimension mismatch for " + op.String())
		}
		r = make(List, len(lx))
		for i := range lx {
			v, err := op.Apply(lx[i], ly[i])
			if err != nil {
				return nil, true, err
			}
			r[i] = v
		}
	case okx:
		r = make(List, len(lx))
		for i := range lx {
			v, err := op.Apply(lx[i], a[1])
			if err != nil {
				return nil, true, err
			}
			r[i] = v
		}
	case oky:
		r = make(List, len(ly))
		for i := range ly {
			v, err := op.Apply(a[0], ly[i])
			if err != nil {
				return nil, true, err
			}
			r[i] = v
		}
	default:
		return nil, false, nil
	}
	return r, true, nil
}

// Operator tables, keyed by spelling. They are filled in init because the
// operations they hold call back into evaluation.
var (
	BinaryOps  map[string]*Op
	PrefixOps  map[string]*Op
	PostfixOps map[string]*Op

	// Juxt is the implicit operator between two adjacent operands, as in
	// "2 x" or "f x". Like every binary operator it is left-associative;
	// "f g x" composes f and g before applying the result to x.
	Juxt *Op
	// appOp applies an operand to a bracketed argument list written directly
	// after it, as in "f(x, y)".
	appOp *Op
	// getOp indexes an operand by a bracketed index list written directly
	// after it, as in "m[1][2]".
	getOp *Op
)

func init() {
	bin := func(sym string, pri int, fn func(args ...any) (any, error)) *Op {
		return &Op{Class: BinaryOp, Symbol: sym, Priority: pri, fn: fn, lift: true}
	}
	arith := func(op *Op) *Op {
		op.bcast, op.sym = true, true
		return op
	}
	symbolic := func(op *Op) *Op {
		op.sym = true
		return op
	}
	BinaryOps = map[string]*Op{
		"+":     arith(bin("+", 6, opAdd)),
		"-":     arith(bin("-", 6, opSub)),
		"*":     arith(bin("*", 8, opMul)),
		"/":     arith(bin("/", 8, opQuo)),
		"//":    arith(bin("//", 8, opFloorDiv)),
		"%":     arith(bin("%", 8, opMod)),
		"^":     arith(bin("^", 18, opPow)),
		".":     {Class: BinaryOp, Symbol: ".", Priority: 10, fn: opDot},
		"&":     bin("&", 8, opAnd),
		"|":     bin("|", 7, opOr),
		"xor":   bin("xor", 3, opXor),
		"==":    symbolic(bin("==", 0, opEq)),
		"/=":    symbolic(bin("/=", 0, opNe)),
		"<":     symbolic(bin("<", 0, opLt)),
		">":     symbolic(bin(">", 0, opGt)),
		"<=":    symbolic(bin("<=", 0, opLe)),
		">=":    symbolic(bin(">=", 0, opGe)),
		"in":    bin("in", -2, opIn),
		"outof": bin("outof", -2, opOutof),
		"..":    bin("..", 4, opRange),
	}
	PrefixOps = map[string]*Op{
		"-":   arith(&Op{Class: PrefixOp, Symbol: "-", Priority: 10, fn: opNeg, lift: true}),
		"~":   {Class: PrefixOp, Symbol: "~", Priority: 10, fn: opInv, lift: true, bcast: true},
		"not": {Class: PrefixOp, Symbol: "not", Priority: -4, fn: opNot, lift: true},
	}
	PostfixOps = map[string]*Op{
		"!":  {Class: PostfixOp, Symbol: "!", Priority: 22, fn: opFact, lift: true, bcast: true},
		"!!": {Class: PostfixOp, Symbol: "!!", Priority: 22, fn: opFact2, lift: true, bcast: true},
		"~":  {Class: PostfixOp, Symbol: "~", Priority: 11, fn: opUnpack},
	}
	Juxt = &Op{Class: BinaryOp, Symbol: "", Priority: 20, fn: adjoin}
	appOp = &Op{Class: BinaryOp, Symbol: "(app)", Priority: 24, fn: opApp}
	getOp = &Op{Class: BinaryOp, Symbol: "(get)", Priority: 24, fn: opGet}
	BinaryOps[appOp.Symbol] = appOp
	BinaryOps[getOp.Symbol] = getOp
}
