package calc

import (
	"io"
	"log/slog"
)

// execDir lists names. DIR(nil, all) lists the global names, including
// builtins if all is true. DIR(env, _) lists the names bound in env.
func execDir(ctx *Context, t *Tree) (any, error) {
	var names []string
	switch x := t.Args[0].(type) {
	case nil:
		if all, _ := t.Args[1].(bool); all {
			names = ctx.global.AllNames()
		} else {
			names = ctx.global.Names()
		}
	case *Env:
		names = x.Names()
	default:
		return nil, typeErr("cannot list names of " + TypeName(x))
	}
	l := make(List, len(names))
	for i, n := range names {
		l[i] = n
	}
	return l, nil
}

// execLoad runs LOAD(name, overwrite, verbose).
func execLoad(ctx *Context, t *Tree) (any, error) {
	overwrite, _ := t.Args[1].(bool)
	verbose, _ := t.Args[2].(bool)
	return nil, ctx.Load(t.Args[0].(string), overwrite, verbose)
}

// Load runs a script in a fresh context sharing the builtins of ctx, then
// merges the script's global bindings into the global env of ctx. With
// overwrite, the script's bindings replace existing ones; otherwise existing
// bindings are kept and a warning is logged for each skipped name. With
// verbose, the script's results are written to the output. An exit in the
// script ends the session without merging.
func (ctx *Context) Load(name string, overwrite, verbose bool) error {
	if ctx.loader == nil {
		return valueErr("no script loader")
	}
	rc, err := ctx.loader.Load(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	out := io.Discard
	if verbose {
		out = ctx.out
	}
	sub := ctx.Clone(Output(out))
	sub.cfg, sub.session = ctx.cfg, ctx.top()
	exit, err := sub.run(rc)
	if err != nil {
		return err
	}
	if exit {
		panic(exitSignal{})
	}
	ctx.merge(name, sub.global, overwrite)
	return nil
}

func (ctx *Context) merge(from string, e *Env, overwrite bool) {
	for _, k := range ctx.global.Merge(e, overwrite) {
		ctx.log.Warn("name already bound; keeping existing binding", slog.String("name", k), slog.String("from", from))
	}
}

// execImport runs IMPORT(name, overwrite), merging a module's bindings into
// the global env like a loaded script.
func execImport(ctx *Context, t *Tree) (any, error) {
	name := t.Args[0].(string)
	overwrite, _ := t.Args[1].(bool)
	binds, ok := ctx.modules[name]
	if !ok {
		return nil, &NameError{Name: name}
	}
	ctx.merge(name, NewEnv(binds), overwrite)
	return nil, nil
}

var confNames = [...]string{"precision", "tolerance", "symbolic", "debug"}

// execConf runs CONF(name, value). Without a name, it lists all settings.
// Without a value, it gets one setting; with a value, it sets it.
func execConf(ctx *Context, t *Tree) (any, error) {
	name, _ := t.Args[0].(string)
	if name == "" {
		l := make(List, len(confNames))
		for i, k := range confNames {
			v, _ := ctx.cfg.get(k)
			l[i] = Keyword{Name: k, Value: v}
		}
		return l, nil
	}
	if t.Args[1] == nil {
		return ctx.cfg.get(name)
	}
	if err := ctx.cfg.set(name, t.Args[1]); err != nil {
		return nil, err
	}
	if name == "debug" {
		ctx.setDebug(ctx.cfg.Debug)
	}
	return ctx.cfg.get(name)
}
