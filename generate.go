package calc

// generate evaluates a comprehension GENER(expr, CONSTR...). Each CONSTR is
// (form, range, WITH or nil, filter or nil). Constraints nest left to right,
// so the first varies slowest.
func (ctx *Context) generate(t *Tree, env *Env) (any, error) {
	out := List{}
	if err := ctx.walk(t.Args[0], t.Args[1:], env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (ctx *Context) walk(expr any, cons []any, env *Env, out *List) error {
	if len(cons) == 0 {
		v, err := ctx.eval(expr, env)
		if err != nil {
			return err
		}
		*out = append(*out, v)
		return nil
	}
	c, ok := cons[0].(*Tree)
	if !ok || c.Tag != TagConstr || len(c.Args) != 4 {
		return syntaxErr("malformed comprehension constraint")
	}
	form, err := ctx.makeForm(c.Args[0], env)
	if err != nil {
		return err
	}
	rv, err := ctx.eval(c.Args[1], env)
	if err != nil {
		return err
	}
	items, err := Iterate(rv)
	if err != nil {
		return err
	}
	for _, x := range items {
		local := env.Child(nil)
		if err := ctx.bind(form, x, local); err != nil {
			return err
		}
		if w, ok := c.Args[2].(*Tree); ok {
			for _, b := range w.Args {
				if _, err := ctx.eval(b, local); err != nil {
					return err
				}
			}
		}
		if c.Args[3] != nil {
			v, err := ctx.eval(c.Args[3], local)
			if err != nil {
				return err
			}
			if !Truthy(v) {
				continue
			}
		}
		if err := ctx.walk(expr, cons[1:], local, out); err != nil {
			return err
		}
	}
	return nil
}
