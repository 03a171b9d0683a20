package calc

import "strings"

// FormKind is the kind of a pattern.
type FormKind uint8

const (
	// FormName binds a value directly to a name.
	FormName FormKind = iota
	// FormList destructures an indexable value.
	FormList
	// FormExpr is an algebraic expression matched by solving an equation.
	FormExpr
)

// Form is a pattern describing how to destructure a value into bindings.
type Form struct {
	Kind FormKind
	// Name is the variable of a FormName.
	Name string
	// Items are the positional sub-forms of a FormList.
	Items []*Form
	// Rest is the index in Items of the rest position, which collects the
	// positional values not taken by the others, or -1 if there is none.
	Rest int
	// Keys are the names of keyword positions, and Defaults their values
	// when a matched value does not supply them.
	Keys     []string
	Defaults []any
	// Expr is the symbolic expression of a FormExpr.
	Expr any
}

// Arity returns the number of positional values the form requires and
// whether it accepts more. Forms other than lists take exactly one value.
func (f *Form) Arity() (n int, variadic bool) {
	if f.Kind != FormList {
		return 1, false
	}
	if f.Rest >= 0 {
		return len(f.Items) - 1, true
	}
	return len(f.Items), false
}

// Vars returns the variables the form binds, in order.
func (f *Form) Vars() []string {
	return f.vars(nil)
}

func (f *Form) vars(into []string) []string {
	switch f.Kind {
	case FormName:
		return append(into, f.Name)
	case FormExpr:
		for _, s := range symbols(f.Expr, nil) {
			into = append(into, string(s))
		}
		return into
	}
	for _, it := range f.Items {
		into = it.vars(into)
	}
	return append(into, f.Keys...)
}

func (f *Form) hasKey(name string) bool {
	for _, k := range f.Keys {
		if k == name {
			return true
		}
	}
	return false
}

// position returns the index in Items of the positional name, or -1. The
// rest position cannot be named.
func (f *Form) position(name string) int {
	if f.Kind != FormList {
		return -1
	}
	for i, it := range f.Items {
		if i != f.Rest && it.Kind == FormName && it.Name == name {
			return i
		}
	}
	return -1
}

func (f *Form) String() string {
	switch f.Kind {
	case FormName:
		return f.Name
	case FormExpr:
		return Format(f.Expr)
	}
	var parts []string
	for i, it := range f.Items {
		s := it.String()
		if i == f.Rest {
			s += ".."
		}
		parts = append(parts, s)
	}
	for i, k := range f.Keys {
		parts = append(parts, k+": "+Format(f.Defaults[i]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// makeForm builds a form from a pattern tree. Defaults of keyword positions
// are evaluated in env, as are algebraic positions, with unbound names
// becoming symbols. A variable appearing twice is a syntax error.
func (ctx *Context) makeForm(x any, env *Env) (*Form, error) {
	f, err := ctx.formOf(x, env)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, v := range f.Vars() {
		if seen[v] {
			return nil, syntaxErr("duplicate variable " + v + " in form")
		}
		seen[v] = true
	}
	return f, nil
}

func (ctx *Context) formOf(x any, env *Env) (*Form, error) {
	switch x := x.(type) {
	case *Tree:
		switch x.Tag {
		case TagForm:
			return ctx.formOf(x.Args[0], env)
		case TagName:
			return &Form{Kind: FormName, Name: x.Args[0].(string)}, nil
		case TagPhrase, TagItems:
			if len(x.Args) == 1 {
				return ctx.formOf(x.Args[0], env)
			}
		case TagList:
			return ctx.listForm(x, env)
		}
	case Symbol:
		return &Form{Kind: FormName, Name: string(x)}, nil
	case *Form:
		return x, nil
	}
	v, err := ctx.evalSymbolic(x, env)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(Symbol); ok {
		return &Form{Kind: FormName, Name: string(s)}, nil
	}
	if isTree(v) {
		return nil, syntaxErr("invalid form " + v.(*Tree).String())
	}
	return &Form{Kind: FormExpr, Expr: v}, nil
}

func (ctx *Context) listForm(t *Tree, env *Env) (*Form, error) {
	f := &Form{Kind: FormList, Rest: -1}
	for _, it := range t.Args {
		if tagOf(it) == TagKwd {
			kt := it.(*Tree)
			var def any
			if len(kt.Args) > 1 && kt.Args[1] != nil {
				v, err := ctx.eval(kt.Args[1], env)
				if err != nil {
					return nil, err
				}
				def = v
			}
			f.Keys = append(f.Keys, kt.Args[0].(string))
			f.Defaults = append(f.Defaults, def)
			continue
		}
		if len(f.Keys) > 0 {
			return nil, syntaxErr("positional item after keyword in form")
		}
		if r, ok := restOf(it); ok {
			if f.Rest >= 0 {
				return nil, syntaxErr("more than one rest position in form")
			}
			sub, err := ctx.formOf(r, env)
			if err != nil {
				return nil, err
			}
			if sub.Kind != FormName {
				return nil, syntaxErr("rest position must be a name")
			}
			f.Rest = len(f.Items)
			f.Items = append(f.Items, sub)
			continue
		}
		sub, err := ctx.formOf(it, env)
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, sub)
	}
	return f, nil
}

// restOf recognizes a rest position, written as a phrase ending in "..".
func restOf(x any) (any, bool) {
	t, ok := x.(*Tree)
	if !ok || t.Tag != TagPhrase || len(t.Args) < 2 {
		return nil, false
	}
	last, ok := t.Args[len(t.Args)-1].(*Tree)
	if !ok || last.Tag != TagOp || last.Args[0] != ".." {
		return nil, false
	}
	if len(t.Args) == 2 {
		return t.Args[0], true
	}
	return t.with(t.Args[:len(t.Args)-1]), true
}

// evalSymbolic evaluates x with unbound names becoming symbols.
func (ctx *Context) evalSymbolic(x any, env *Env) (any, error) {
	ctx.symbolic++
	defer func() { ctx.symbolic-- }()
	return ctx.eval(x, env)
}
