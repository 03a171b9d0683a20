package calc

import "log/slog"

// binding accumulates the results of matching a form before any of them are
// defined, so that a failed match leaves the target env untouched.
type binding struct {
	order []string
	vals  map[string]any
	eqs   []Equation
}

func (b *binding) set(name string, v any) error {
	if _, ok := b.vals[name]; ok {
		return syntaxErr("duplicate variable " + name + " in form")
	}
	b.order = append(b.order, name)
	b.vals[name] = v
	return nil
}

// match destructures v against f.
func (b *binding) match(f *Form, v any) error {
	switch f.Kind {
	case FormName:
		return b.set(f.Name, v)
	case FormExpr:
		b.eqs = append(b.eqs, Equation{Lhs: f.Expr, Rhs: v})
		return nil
	}
	items, err := indexable(v)
	if err != nil {
		return err
	}
	// Keyword items fill keyword positions or name positional ones.
	slots := make([]any, len(f.Items))
	named := make([]bool, len(f.Items))
	var pos List
	var kw map[string]any
	nnamed := 0
	for _, it := range items {
		k, ok := it.(Keyword)
		if !ok {
			pos = append(pos, it)
			continue
		}
		if i := f.position(k.Name); i >= 0 {
			if named[i] {
				return syntaxErr("duplicate variable " + k.Name + " in form")
			}
			slots[i], named[i] = k.Value, true
			nnamed++
			continue
		}
		if !f.hasKey(k.Name) {
			return typeErr("no keyword " + k.Name + " in " + f.String())
		}
		if kw == nil {
			kw = make(map[string]any)
		}
		kw[k.Name] = k.Value
	}
	// Positional items fill the unnamed positions before the rest from the
	// front and those after it from the back.
	var pre, post []int
	for i := range f.Items {
		switch {
		case i == f.Rest || named[i]:
		case f.Rest >= 0 && i > f.Rest:
			post = append(post, i)
		default:
			pre = append(pre, i)
		}
	}
	n, variadic := f.Arity()
	if need := len(pre) + len(post); len(pos) < need || (!variadic && len(pos) > need) {
		return &ArityError{Func: f.String(), Want: n, Got: len(pos) + nnamed, Variadic: variadic}
	}
	for j, i := range pre {
		slots[i] = pos[j]
	}
	for j, i := range post {
		slots[i] = pos[len(pos)-len(post)+j]
	}
	for i, sub := range f.Items {
		if i == f.Rest {
			rest := append(List{}, pos[len(pre):len(pos)-len(post)]...)
			if err := b.set(sub.Name, rest); err != nil {
				return err
			}
			continue
		}
		if err := b.match(sub, slots[i]); err != nil {
			return err
		}
	}
	for i, k := range f.Keys {
		v, ok := kw[k]
		if !ok {
			v = f.Defaults[i]
		}
		if err := b.set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// indexable returns the items of a value that supports ordered, indexed
// access.
func indexable(v any) (List, error) {
	switch v := unbox(v).(type) {
	case List:
		return v, nil
	case Unpack:
		return v.List, nil
	case *Range, string:
		return Iterate(v)
	}
	return nil, typeErr("cannot destructure " + TypeName(v))
}

// bind matches v against f and defines the resulting names in env. Algebraic
// positions are solved jointly once the whole form has been matched. When
// the equations have several solutions, the first is bound and a warning is
// logged.
func (ctx *Context) bind(f *Form, v any, env *Env) error {
	b := binding{vals: make(map[string]any)}
	if err := b.match(f, v); err != nil {
		return err
	}
	if len(b.eqs) > 0 {
		sol, err := Solve(b.eqs, ctx.cfg.Tolerance)
		if err != nil {
			return err
		}
		if sol.Multiple() {
			ctx.log.Warn("multiple solutions; binding the first", slog.String("form", f.String()))
		}
		for i, s := range sol.Unknowns {
			if err := b.set(string(s), sol.Sets[0][i]); err != nil {
				return err
			}
		}
	}
	for _, name := range b.order {
		val := b.vals[name]
		if c, ok := val.(*Closure); ok && c.Name == "" {
			named := *c
			named.Name = name
			val = &named
		}
		env.Define(name, val)
	}
	return nil
}
