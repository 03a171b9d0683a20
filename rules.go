package calc

import (
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// RuleKind classifies how a rule is applied to a tree.
type RuleKind uint8

const (
	// Macro rules rewrite a tree before anything else happens to it.
	Macro RuleKind = iota
	// Substitution rules compute a value from evaluated children.
	Substitution
	// Evaluation rules receive the raw tree and an env, and evaluate the
	// children they need themselves.
	Evaluation
	// Execution rules are commands acting on the context, given evaluated
	// children.
	Execution
)

type rule struct {
	kind RuleKind
	// tolerant rules are applied even when some children remain unresolved.
	tolerant bool
	// optional evaluation rules are applied even without an env.
	optional bool

	macro func(t *Tree) (any, error)
	subst func(ctx *Context, t *Tree) (any, error)
	eval  func(ctx *Context, t *Tree, env *Env) (any, error)
	exec  func(ctx *Context, t *Tree) (any, error)
}

func macroRule(f func(*Tree) (any, error)) rule {
	return rule{kind: Macro, macro: f}
}

func substRule(f func(*Context, *Tree) (any, error)) rule {
	return rule{kind: Substitution, subst: f}
}

func evalRule(f func(*Context, *Tree, *Env) (any, error)) rule {
	return rule{kind: Evaluation, eval: f}
}

func execRule(f func(*Context, *Tree) (any, error)) rule {
	return rule{kind: Execution, exec: f}
}

// rules maps each tag to its rule. It is filled in init because the rules
// refer back to evaluation.
var rules map[Tag]rule

func init() {
	tolerant := func(r rule) rule {
		r.tolerant = true
		return r
	}
	optional := func(r rule) rule {
		r.optional = true
		return r
	}
	misplaced := evalRule(func(_ *Context, t *Tree, _ *Env) (any, error) {
		return nil, syntaxErr(strings.ToLower(t.Tag.String()) + " used outside its construct")
	})
	rules = map[Tag]rule{
		TagPhrase: macroRule(phraseMacro),

		TagEmpty:   substRule(func(*Context, *Tree) (any, error) { return nil, nil }),
		TagInt:     substRule(substInt),
		TagReal:    substRule(substReal),
		TagComplex: substRule(substComplex),
		TagHex:     substRule(substBase(16)),
		TagBin:     substRule(substBase(2)),
		TagList:    tolerant(substRule(substList)),
		TagItems:   tolerant(substRule(substItems)),
		TagApp:     substRule(substApp),
		TagKwd:     substRule(substKwd),
		TagVar:     substRule(substVar),
		TagAttr:    substRule(func(_ *Context, t *Tree) (any, error) { return Attr(t.Args[0].(string)), nil }),
		TagOp:      substRule(func(_ *Context, t *Tree) (any, error) { return OpToken(t.Args[0].(string)), nil }),
		TagAns:     substRule(substAns),
		TagUnknown: substRule(func(_ *Context, t *Tree) (any, error) {
			return nil, syntaxErr("placeholder " + t.Args[0].(string) + " outside an expression")
		}),

		TagName:    optional(evalRule(evalName)),
		TagOr:      evalRule(evalOr),
		TagAnd:     evalRule(evalAnd),
		TagIf:      evalRule(evalIf),
		TagAt:      optional(evalRule(evalAt)),
		TagStr:     optional(evalRule(evalStr)),
		TagQuote:   optional(evalRule(evalQuote)),
		TagUnquote: optional(evalRule(evalUnquote)),
		TagGener:   evalRule(func(ctx *Context, t *Tree, env *Env) (any, error) { return ctx.generate(t, env) }),
		TagEnv:     evalRule(evalEnv),
		TagMap:     evalRule(evalMap),
		TagBind:    evalRule(evalBind),
		TagDel:     optional(evalRule(evalDel)),
		TagForm:    misplaced,
		TagConstr:  misplaced,
		TagWith:    misplaced,

		TagDir:    execRule(execDir),
		TagLoad:   execRule(execLoad),
		TagImport: execRule(execImport),
		TagConf:   execRule(execConf),
		TagExit:   execRule(func(*Context, *Tree) (any, error) { panic(exitSignal{}) }),
	}
}

// phraseMacro rewrites a phrase. A phrase with placeholders becomes an
// anonymous function of them. Otherwise it splits on the first of the words
// or, and, if, in that order, and a phrase with none of them becomes ITEMS
// for the resolver.
func phraseMacro(t *Tree) (any, error) {
	if len(t.Args) == 0 {
		return nil, syntaxErr("empty expression")
	}
	if hasPlaceholder(t.Args) {
		return lambda(t), nil
	}
	for _, w := range [...]struct {
		word string
		tag  Tag
	}{{"or", TagOr}, {"and", TagAnd}, {"if", TagIf}} {
		i := wordAt(t.Args, w.word)
		if i < 0 {
			continue
		}
		l, r := t.Args[:i], t.Args[i+1:]
		if len(l) == 0 || len(r) == 0 {
			return nil, syntaxErr(w.word + " is missing an operand")
		}
		return T(w.tag, T(TagPhrase, l...), T(TagPhrase, r...)), nil
	}
	return &Tree{Tag: TagItems, Args: t.Args}, nil
}

func wordAt(args []any, w string) int {
	for i, a := range args {
		if t, ok := a.(*Tree); ok && t.Tag == TagOp && t.Args[0] == w {
			return i
		}
	}
	return -1
}

// placeholderScope reports whether placeholders inside a tree belong to the
// enclosing phrase.
func placeholderScope(t *Tree) bool {
	switch t.Tag {
	case TagPhrase, TagMap, TagGener, TagQuote, TagStr:
		return false
	}
	return true
}

func hasPlaceholder(args []any) bool {
	for _, a := range args {
		t, ok := a.(*Tree)
		if !ok {
			continue
		}
		if t.Tag == TagUnknown || placeholderScope(t) && hasPlaceholder(t.Args) {
			return true
		}
	}
	return false
}

// lambda turns a phrase with placeholders into a function. Each bare ? is a
// new parameter, ?n is the nth parameter, and ?name is a parameter named
// name. Numbered parameters come first.
func lambda(t *Tree) *Tree {
	bare, maxN := 0, 0
	var named []string
	seen := make(map[string]bool)
	var rename func(args []any) []any
	rename = func(args []any) []any {
		r := make([]any, len(args))
		for i, a := range args {
			u, ok := a.(*Tree)
			switch {
			case !ok:
				r[i] = a
			case u.Tag == TagUnknown:
				s := u.Args[0].(string)
				var name string
				if s == "?" {
					bare++
					name = "?" + strconv.Itoa(bare)
					maxN = max(maxN, bare)
				} else if n, err := strconv.Atoi(s[1:]); err == nil && n > 0 {
					name = s
					maxN = max(maxN, n)
				} else {
					name = s[1:]
					if !seen[name] {
						seen[name] = true
						named = append(named, name)
					}
				}
				r[i] = Name(name)
			case placeholderScope(u):
				r[i] = u.with(rename(u.Args))
			default:
				r[i] = u
			}
		}
		return r
	}
	body := T(TagPhrase, rename(t.Args)...)
	params := make([]any, 0, maxN+len(named))
	for k := 1; k <= maxN; k++ {
		params = append(params, Name("?"+strconv.Itoa(k)))
	}
	for _, n := range named {
		params = append(params, Name(n))
	}
	return T(TagMap, T(TagForm, T(TagList, params...)), body)
}

func substInt(_ *Context, t *Tree) (any, error) {
	s := t.Args[0].(string)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, syntaxErr("invalid integer " + s)
	}
	return n, nil
}

func substReal(ctx *Context, t *Tree) (any, error) {
	s := t.Args[0].(string)
	f, _, err := big.ParseFloat(s, 10, ctx.cfg.bits(), big.ToNearestEven)
	if err != nil {
		return nil, syntaxErr("invalid real " + s)
	}
	return f, nil
}

func substBase(base int) func(*Context, *Tree) (any, error) {
	return func(_ *Context, t *Tree) (any, error) {
		s := t.Args[0].(string)
		if len(s) < 3 {
			return nil, syntaxErr("invalid integer " + s)
		}
		n, ok := new(big.Int).SetString(s[2:], base)
		if !ok {
			return nil, syntaxErr("invalid integer " + s)
		}
		return n, nil
	}
}

// substComplex builds a complex number from an optional real part, a sign,
// and an imaginary part.
func substComplex(_ *Context, t *Tree) (any, error) {
	var re float64
	if t.Args[0] != nil {
		f, ok := Float64(t.Args[0])
		if !ok {
			return nil, typeErr("real part must be real, not " + TypeName(t.Args[0]))
		}
		re = f
	}
	im, ok := Float64(t.Args[2])
	if !ok {
		return nil, typeErr("imaginary part must be real, not " + TypeName(t.Args[2]))
	}
	if t.Args[1] == "-" {
		im = -im
	}
	return complex(re, im), nil
}

// substList builds a list, splicing unpacked items. With unresolved items,
// the list stays a tree.
func substList(_ *Context, t *Tree) (any, error) {
	if t.partial() {
		return t, nil
	}
	l := make(List, 0, len(t.Args))
	for _, a := range t.Args {
		if u, ok := a.(Unpack); ok {
			l = append(l, u.List...)
			continue
		}
		l = append(l, a)
	}
	return l, nil
}

func substItems(ctx *Context, t *Tree) (any, error) {
	return ctx.resolve(t.Args)
}

func substApp(_ *Context, t *Tree) (any, error) {
	switch f := unbox(t.Args[0]).(type) {
	case *Op:
		return f.Apply(t.Args[1:]...)
	case Callable:
		return Call(f, t.Args[1:]...)
	}
	return nil, typeErr(TypeName(t.Args[0]) + " is not callable")
}

func substKwd(_ *Context, t *Tree) (any, error) {
	var v any
	if len(t.Args) > 1 {
		v = t.Args[1]
	}
	return Keyword{Name: t.Args[0].(string), Value: v}, nil
}

func substVar(_ *Context, t *Tree) (any, error) {
	v := t.Args[0]
	for _, a := range t.Args[1:] {
		r, err := GetAttr(v, string(a.(Attr)))
		if err != nil {
			return nil, err
		}
		v = r
	}
	return v, nil
}

// substAns refers to the history: $ is the last answer, $$ the one before,
// and $n the nth.
func substAns(ctx *Context, t *Tree) (any, error) {
	s := t.Args[0].(string)
	n := len(ctx.ans)
	var k int
	switch s {
	case "$":
		k = n - 1
	case "$$":
		k = n - 2
	default:
		i, err := strconv.Atoi(s[1:])
		if err != nil {
			return nil, syntaxErr("invalid history reference " + s)
		}
		k = i - 1
	}
	if k < 0 || k >= n {
		return nil, valueErr("no answer " + s)
	}
	return ctx.ans[k], nil
}

// evalName looks up a name. Inside a quote, names are symbols. Unbound names
// are symbols when the symbolic setting is on or a form is being built.
// Without an env, the name stays unresolved.
func evalName(ctx *Context, t *Tree, env *Env) (any, error) {
	name := t.Args[0].(string)
	if ctx.quoting > 0 {
		return Symbol(name), nil
	}
	if env == nil {
		return t, nil
	}
	v, err := env.Lookup(name)
	if err != nil && (ctx.cfg.Symbolic || ctx.symbolic > 0) {
		return Symbol(name), nil
	}
	return v, err
}

func evalOr(ctx *Context, t *Tree, env *Env) (any, error) {
	x, err := ctx.eval(t.Args[0], env)
	if err != nil || Truthy(x) {
		return x, err
	}
	return ctx.eval(t.Args[1], env)
}

func evalAnd(ctx *Context, t *Tree, env *Env) (any, error) {
	x, err := ctx.eval(t.Args[0], env)
	if err != nil || !Truthy(x) {
		return x, err
	}
	return ctx.eval(t.Args[1], env)
}

// evalIf evaluates IF(value, condition) to the value if the condition is
// true and to nothing otherwise.
func evalIf(ctx *Context, t *Tree, env *Env) (any, error) {
	c, err := ctx.eval(t.Args[1], env)
	if err != nil || !Truthy(c) {
		return nil, err
	}
	return ctx.eval(t.Args[0], env)
}

// evalAt evaluates AT(context, body) with the context env as the body's
// scope, falling back to env for names the context does not bind.
func evalAt(ctx *Context, t *Tree, env *Env) (any, error) {
	c, err := ctx.eval(t.Args[0], env)
	if err != nil {
		var ne *NameError
		if env == nil && errors.As(err, &ne) {
			return t, nil
		}
		return nil, err
	}
	if isTree(c) {
		return t, nil
	}
	e, ok := c.(*Env)
	if !ok {
		return nil, typeErr("context must be an env, not " + TypeName(c))
	}
	v, err := ctx.eval(t.Args[1], e)
	var ne *NameError
	if env != nil && errors.As(err, &ne) {
		return ctx.eval(t.Args[1], env)
	}
	return v, err
}

// evalStr evaluates a string literal STR(mode, text). Raw strings are
// literal; others interpolate {expr}, and print strings are written to the
// output instead of being returned.
func evalStr(ctx *Context, t *Tree, env *Env) (any, error) {
	mode, s := t.Args[0].(string), t.Args[1].(string)
	if mode == "r" {
		return s, nil
	}
	if strings.ContainsAny(s, "{}") {
		if env == nil {
			return t, nil
		}
		var err error
		if s, err = ctx.interpolate(s, env); err != nil {
			return nil, err
		}
	}
	if mode == "p" {
		io.WriteString(ctx.out, s+"\n")
		return nil, nil
	}
	return s, nil
}

// interpolate replaces each {expr} in s by its value in env. {expr=} also
// writes the expression, and {{ and }} are literal braces.
func (ctx *Context) interpolate(s string, env *Env) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case (c == '{' || c == '}') && i+1 < len(s) && s[i+1] == c:
			b.WriteByte(c)
			i += 2
		case c == '{':
			j := closeBrace(s, i)
			if j < 0 {
				return "", syntaxErr("unclosed { in string")
			}
			src := strings.TrimSpace(s[i+1 : j])
			echo := strings.HasSuffix(src, "=") && !strings.ContainsAny(src[max(len(src)-2, 0):len(src)-1], "=<>/")
			if echo {
				src = strings.TrimSpace(src[:len(src)-1])
			}
			e, err := Parse(src)
			if err != nil {
				return "", err
			}
			v, err := ctx.eval(e.Tree, env)
			if err != nil {
				return "", err
			}
			if echo {
				b.WriteString(src + " = ")
			}
			if str, ok := v.(string); ok {
				b.WriteString(str)
			} else {
				b.WriteString(ctx.Format(v))
			}
			i = j + 1
		case c == '}':
			return "", syntaxErr("unmatched } in string")
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

func closeBrace(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// evalQuote evaluates its operand with names as symbols.
func evalQuote(ctx *Context, t *Tree, env *Env) (any, error) {
	ctx.quoting++
	defer func() { ctx.quoting-- }()
	return ctx.eval(t.Args[0], env)
}

// evalUnquote evaluates its operand normally inside a quote.
func evalUnquote(ctx *Context, t *Tree, env *Env) (any, error) {
	q := ctx.quoting
	ctx.quoting = 0
	defer func() { ctx.quoting = q }()
	return ctx.eval(t.Args[0], env)
}

// evalEnv evaluates ENV(BIND...) into a new child env.
func evalEnv(ctx *Context, t *Tree, env *Env) (any, error) {
	e := env.Child(nil)
	for _, b := range t.Args {
		if _, err := ctx.eval(b, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// evalMap creates a closure from MAP(form, body). A body of the form
// AT(context, inner) gives the closure a context env.
func evalMap(ctx *Context, t *Tree, env *Env) (any, error) {
	form, err := ctx.makeForm(t.Args[0], env)
	if err != nil {
		return nil, err
	}
	c := &Closure{Env: env, Form: form, Body: t.Args[1], ctx: ctx.top()}
	if at, ok := t.Args[1].(*Tree); ok && at.Tag == TagAt {
		v, err := ctx.eval(at.Args[0], env)
		if err != nil {
			return nil, err
		}
		e, ok := v.(*Env)
		if !ok {
			return nil, typeErr("context must be an env, not " + TypeName(v))
		}
		c.Context, c.Body = e, at.Args[1]
	}
	return c, nil
}

// evalBind evaluates BIND(form, value). An attribute path form a.b binds b
// in a sub-env stored at a, which boxes a's previous value if it was not an
// env.
func evalBind(ctx *Context, t *Tree, env *Env) (any, error) {
	v, err := ctx.eval(t.Args[1], env)
	if err != nil {
		return nil, err
	}
	ft := t.Args[0]
	if f, ok := ft.(*Tree); ok && f.Tag == TagForm {
		ft = f.Args[0]
	}
	if f, ok := ft.(*Tree); ok && f.Tag == TagVar {
		return v, bindPath(env, f, v)
	}
	form, err := ctx.makeForm(ft, env)
	if err != nil {
		return nil, err
	}
	if err := ctx.bind(form, v, env); err != nil {
		return nil, err
	}
	if form.Kind == FormName {
		v, _ = env.Local(form.Name)
	}
	return v, nil
}

func bindPath(env *Env, f *Tree, v any) error {
	head, ok := f.Args[0].(*Tree)
	if !ok || head.Tag != TagName {
		return syntaxErr("cannot bind to " + f.String())
	}
	path := []string{head.Args[0].(string)}
	for _, a := range f.Args[1:] {
		at, ok := a.(*Tree)
		if !ok || at.Tag != TagAttr {
			return syntaxErr("cannot bind to " + f.String())
		}
		path = append(path, at.Args[0].(string))
	}
	target := env
	for _, name := range path[:len(path)-1] {
		old, _ := target.Get(name)
		sub, ok := old.(*Env)
		if !ok {
			sub = NewEnv(nil)
			sub.Name, sub.Val = name, old
			target.Define(name, sub)
		}
		target = sub
	}
	target.Define(path[len(path)-1], v)
	return nil
}

// evalDel deletes names from env, or from the global env when there is
// none. An attribute path a.b deletes b from the env at a.
func evalDel(ctx *Context, t *Tree, env *Env) (any, error) {
	if env == nil {
		env = ctx.global
	}
	for _, a := range t.Args {
		target, name := env, ""
		switch a := a.(type) {
		case string:
			name = a
		case *Tree:
			switch a.Tag {
			case TagName:
				name = a.Args[0].(string)
			case TagVar:
				var err error
				if target, name, err = delPath(env, a); err != nil {
					return nil, err
				}
			}
		}
		if name == "" {
			return nil, typeErr("cannot delete " + TypeName(a))
		}
		if err := target.Delete(name); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// delPath finds the env holding the last attribute of a VAR path.
func delPath(env *Env, f *Tree) (*Env, string, error) {
	head, ok := f.Args[0].(*Tree)
	if !ok || head.Tag != TagName {
		return nil, "", syntaxErr("cannot delete " + f.String())
	}
	name := head.Args[0].(string)
	target := env
	for _, a := range f.Args[1:] {
		at, ok := a.(*Tree)
		if !ok || at.Tag != TagAttr {
			return nil, "", syntaxErr("cannot delete " + f.String())
		}
		v, err := target.Lookup(name)
		if err != nil {
			return nil, "", err
		}
		sub, ok := v.(*Env)
		if !ok {
			return nil, "", typeErr("cannot delete attribute " + at.Args[0].(string) + " of " + TypeName(v))
		}
		target, name = sub, at.Args[0].(string)
	}
	return target, name, nil
}
