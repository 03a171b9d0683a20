package calc

// resolve reduces a flat sequence of operands and operator tokens to a single
// value, or to an application tree if some operand is unresolved.
//
// The class of an operator token is decided by position. Where an operand is
// expected, it is prefix. After an operand, it is postfix if a postfix op of
// that spelling exists and either no binary op does or the next item is not
// an operand; otherwise it is binary. Two operands in a row are joined by
// Juxt.
func (ctx *Context) resolve(items []any) (any, error) {
	r := resolver{ctx: ctx}
	expect := true
	for i, it := range items {
		tok, ok := it.(OpToken)
		if !ok {
			if !expect {
				if err := r.binary(Juxt); err != nil {
					return nil, err
				}
			}
			r.operands = append(r.operands, it)
			expect = false
			continue
		}
		s := string(tok)
		if expect {
			op := PrefixOps[s]
			if op == nil {
				return nil, syntaxErr("operator " + s + " is missing its left operand")
			}
			r.ops = append(r.ops, op)
			continue
		}
		post, bin := PostfixOps[s], BinaryOps[s]
		if post != nil && (bin == nil || i+1 == len(items) || isOpToken(items[i+1])) {
			if err := r.postfix(post); err != nil {
				return nil, err
			}
			continue
		}
		if bin == nil {
			return nil, syntaxErr("operator " + s + " is not binary or postfix")
		}
		if err := r.binary(bin); err != nil {
			return nil, err
		}
		expect = true
	}
	if expect {
		if len(r.ops) > 0 {
			return nil, syntaxErr("operator " + r.ops[len(r.ops)-1].String() + " is missing an operand")
		}
		return nil, syntaxErr("empty expression")
	}
	for len(r.ops) > 0 {
		if err := r.reduce(); err != nil {
			return nil, err
		}
	}
	if len(r.operands) != 1 {
		return nil, syntaxErr("operands and operators out of order")
	}
	return r.operands[0], nil
}

func isOpToken(x any) bool {
	_, ok := x.(OpToken)
	return ok
}

type resolver struct {
	ctx      *Context
	operands []any
	ops      []*Op
}

// reduce pops the top operator with its operands and pushes the result of
// applying it. The application is evaluated without an env, so an
// unresolved operand leaves an APP tree in place of the result.
func (r *resolver) reduce() error {
	op := r.ops[len(r.ops)-1]
	r.ops = r.ops[:len(r.ops)-1]
	k := op.Arity()
	if len(r.operands) < k {
		return syntaxErr("operator " + op.String() + " is missing an operand")
	}
	args := make([]any, 0, k+1)
	args = append(args, op)
	args = append(args, r.operands[len(r.operands)-k:]...)
	r.operands = r.operands[:len(r.operands)-k]
	v, err := r.ctx.eval(T(TagApp, args...), nil)
	if err != nil {
		return err
	}
	r.operands = append(r.operands, v)
	return nil
}

// binary pushes a binary operator, first reducing operators of higher or
// equal priority.
func (r *resolver) binary(op *Op) error {
	for len(r.ops) > 0 {
		top := r.ops[len(r.ops)-1]
		if op.Priority > top.Priority {
			break
		}
		if err := r.reduce(); err != nil {
			return err
		}
	}
	r.ops = append(r.ops, op)
	return nil
}

// postfix applies a postfix operator to the top operand after reducing
// operators that bind at least as tightly.
func (r *resolver) postfix(op *Op) error {
	for len(r.ops) > 0 && r.ops[len(r.ops)-1].Priority >= op.Priority {
		if err := r.reduce(); err != nil {
			return err
		}
	}
	r.ops = append(r.ops, op)
	return r.reduce()
}
