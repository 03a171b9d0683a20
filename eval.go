package calc

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Context is a session for evaluating expressions. It holds the global
// environment, chained to an environment of builtins, the history of
// answers, and settings. It is not safe to use a Context concurrently.
type Context struct {
	global   *Env
	builtins *Env
	ans      []any
	cfg      *Config
	out      io.Writer
	log      *slog.Logger
	level    *slog.LevelVar
	loader   Loader
	modules  map[string]map[string]any

	// session is the context that loaded this one's script, or nil for a
	// top-level context. Closures defined by a script belong to the session.
	session *Context

	// symbolic counts nested evaluations in which unbound names become
	// symbols.
	symbolic int
	// quoting counts nested quotes, in which all names become symbols.
	quoting int
}

// Result is the outcome of evaluating a tree.
type Result struct {
	// Value is the result. If evaluation was partial, Value is a *Tree.
	Value any
	// Pending lists the unbound names that left the result partial.
	Pending []string
	// Quiet is set when the input asked not to display the result.
	Quiet bool
	// Exit is set when the input asked to end the session.
	Exit bool
}

// Partial reports whether the result is an unevaluated tree.
func (r Result) Partial() bool {
	return isTree(r.Value)
}

// Loader opens scripts by name.
type Loader interface {
	Load(name string) (io.ReadCloser, error)
}

// DirLoader loads scripts from a directory. Dots in a script name separate
// path elements, and the file has the extension .cal.
type DirLoader string

// Load opens the named script.
func (d DirLoader) Load(name string) (io.ReadCloser, error) {
	p := filepath.Join(string(d), filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))+".cal")
	return os.Open(p)
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  any
	}
	varsopt     map[string]any
	precopt     uint
	symopt      bool
	builtinsopt map[string]any
	outopt      struct{ w io.Writer }
	logopt      struct{ l *slog.Logger }
	loaderopt   struct{ l Loader }
	moduleopt   struct {
		name  string
		binds map[string]any
	}
	configopt Config
)

func (varopt) ctxOption()      {}
func (varsopt) ctxOption()     {}
func (precopt) ctxOption()     {}
func (symopt) ctxOption()      {}
func (builtinsopt) ctxOption() {}
func (outopt) ctxOption()      {}
func (logopt) ctxOption()      {}
func (loaderopt) ctxOption()   {}
func (moduleopt) ctxOption()   {}
func (configopt) ctxOption()   {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val any) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]any) ContextOption {
	return varsopt(vars)
}

// Prec sets the number of significant decimal digits of reals.
func Prec(digits uint) ContextOption {
	return precopt(digits)
}

// Symbolic sets whether unbound names evaluate to symbols.
func Symbolic(on bool) ContextOption {
	return symopt(on)
}

// Builtins adds names to the builtin environment, which is the parent of the
// global environment.
func Builtins(binds map[string]any) ContextOption {
	return builtinsopt(binds)
}

// Output sets the writer for printed strings and loaded scripts' results.
// The default discards them.
func Output(w io.Writer) ContextOption {
	return outopt{w}
}

// Logger sets the logger for diagnostics. The default logs warnings to
// stderr.
func Logger(l *slog.Logger) ContextOption {
	return logopt{l}
}

// ScriptLoader sets the loader used by the load command.
func ScriptLoader(l Loader) ContextOption {
	return loaderopt{l}
}

// Module makes a set of bindings available to the import command.
func Module(name string, binds map[string]any) ContextOption {
	return moduleopt{name, binds}
}

// Configure replaces all settings.
func Configure(cfg Config) ContextOption {
	return configopt(cfg)
}

// NewContext creates a new evaluation context.
func NewContext(opts ...ContextOption) *Context {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	cfg := DefaultConfig()
	ctx := Context{
		builtins: NewEnv(nil),
		cfg:      &cfg,
		out:      io.Discard,
		log:      slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
		level:    level,
		modules:  make(map[string]map[string]any),
	}
	ctx.builtins.Name = "builtins"
	ctx.builtins.Define("true", true)
	ctx.builtins.Define("false", false)
	return ctx.Clone(opts...)
}

// Clone creates a context sharing the builtins and collaborators of ctx,
// with a copy of its settings and a fresh global environment and history,
// and applies options to it. Builtins options add to a copy of the builtin environment.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	cfg := *ctx.cfg
	n := Context{
		builtins: ctx.builtins,
		cfg:      &cfg,
		out:      ctx.out,
		log:      ctx.log,
		level:    ctx.level,
		loader:   ctx.loader,
		modules:  make(map[string]map[string]any, len(ctx.modules)),
	}
	for k, v := range ctx.modules {
		n.modules[k] = v
	}
	for _, opt := range opts {
		if b, ok := opt.(builtinsopt); ok {
			if n.builtins == ctx.builtins {
				n.builtins = NewEnv(nil)
				n.builtins.Name = "builtins"
				n.builtins.Merge(ctx.builtins, true)
			}
			for k, v := range b {
				n.builtins.Define(k, v)
			}
		}
	}
	n.global = n.builtins.Child(nil)
	n.global.Name = "global"
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.global.Define(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				n.global.Define(k, v)
			}
		case precopt:
			n.cfg.Precision = int(opt)
		case symopt:
			n.cfg.Symbolic = bool(opt)
		case outopt:
			n.out = opt.w
		case logopt:
			n.log, n.level = opt.l, nil
		case loaderopt:
			n.loader = opt.l
		case moduleopt:
			n.modules[opt.name] = opt.binds
		case configopt:
			*n.cfg = Config(opt)
		case builtinsopt:
			// Already done. Do nothing.
		default:
			panic("calc: unknown option type")
		}
	}
	n.setDebug(n.cfg.Debug)
	return &n
}

// Global returns the global environment.
func (ctx *Context) Global() *Env {
	return ctx.global
}

// Config returns the current settings.
func (ctx *Context) Config() Config {
	return *ctx.cfg
}

// top returns the session context of ctx.
func (ctx *Context) top() *Context {
	if ctx.session != nil {
		return ctx.session
	}
	return ctx
}

// Answers returns the history of results, oldest first.
func (ctx *Context) Answers() []any {
	return append([]any(nil), ctx.ans...)
}

// Format formats a value with the context's precision.
func (ctx *Context) Format(v any) string {
	return FormatPrec(v, ctx.cfg.Precision)
}

func (ctx *Context) setDebug(on bool) {
	if ctx.level == nil {
		return
	}
	if on {
		ctx.level.Set(slog.LevelDebug)
	} else {
		ctx.level.Set(slog.LevelWarn)
	}
}

// exitSignal is panicked by the exit command and recovered only at the
// context's public boundary.
type exitSignal struct{}

func (ctx *Context) guard(r *Result) {
	if p := recover(); p != nil {
		if _, ok := p.(exitSignal); !ok {
			panic(p)
		}
		*r = Result{Exit: true}
	}
}

// Eval evaluates a tree. If env is nil, names cannot be resolved; the parts of
// the tree that do not depend on them are evaluated, and the result is a tree
// which can be evaluated later with an env that binds the pending names.
// With an env, an unbound name is a *NameError.
func (ctx *Context) Eval(t any, env *Env) (r Result, err error) {
	defer ctx.guard(&r)
	v, err := ctx.eval(t, env)
	if err != nil {
		var ne *NameError
		if env != nil || !errors.As(err, &ne) {
			return Result{}, err
		}
		v = t
	}
	r.Value = v
	if u, ok := v.(*Tree); ok {
		r.Pending = u.names(nil)
	}
	return r, nil
}

// Exec parses and evaluates one line of input in the global environment. A
// result that is not nothing or quiet is appended to the history.
func (ctx *Context) Exec(src string) (r Result, err error) {
	defer ctx.guard(&r)
	e, err := Parse(src)
	if err != nil {
		return Result{}, err
	}
	if e.Tree == nil {
		return Result{Quiet: true}, nil
	}
	v, err := ctx.eval(e.Tree, ctx.global)
	if err != nil {
		return Result{}, err
	}
	if v != nil && !e.Quiet {
		ctx.ans = append(ctx.ans, v)
	}
	return Result{Value: v, Quiet: e.Quiet}, nil
}

// Run executes lines of input until the end of input, an error, or the exit
// command. Results that are not quiet or nothing are written to the output.
// A line with unclosed brackets continues on the next.
func (ctx *Context) Run(r io.Reader) error {
	_, err := ctx.run(r)
	return err
}

// run is Run that also reports whether the script ended with exit.
func (ctx *Context) run(r io.Reader) (exit bool, err error) {
	sc := bufio.NewScanner(r)
	var pending strings.Builder
	line, start := 0, 0
	for sc.Scan() {
		line++
		if pending.Len() == 0 {
			start = line
		} else {
			pending.WriteByte('\n')
		}
		pending.WriteString(sc.Text())
		res, err := ctx.Exec(pending.String())
		var be *BracketError
		if errors.As(err, &be) && be.Unclosed() {
			continue
		}
		pending.Reset()
		if err != nil {
			return false, &ScriptError{Line: start, Err: err}
		}
		if res.Exit {
			return true, nil
		}
		if !res.Quiet && res.Value != nil {
			io.WriteString(ctx.out, ctx.Format(res.Value)+"\n")
		}
	}
	if err := sc.Err(); err != nil {
		return false, err
	}
	if pending.Len() > 0 {
		res, err := ctx.Exec(pending.String())
		if err != nil {
			return false, &ScriptError{Line: start, Err: err}
		}
		return res.Exit, nil
	}
	return false, nil
}

// ScriptError is an error from a line of a script.
type ScriptError struct {
	Line int
	Err  error
}

func (err *ScriptError) Error() string {
	return "line " + strconv.Itoa(err.Line) + ": " + err.Err.Error()
}

func (err *ScriptError) Unwrap() error {
	return err.Err
}

// eval evaluates x in env, which may be nil.
func (ctx *Context) eval(x any, env *Env) (any, error) {
	t, ok := x.(*Tree)
	if !ok {
		return x, nil
	}
	r, ok := rules[t.Tag]
	for ok && r.kind == Macro {
		v, err := r.macro(t)
		if err != nil {
			return nil, err
		}
		if t, ok = v.(*Tree); !ok {
			return v, nil
		}
		r, ok = rules[t.Tag]
	}
	if !ok {
		return nil, syntaxErr("no rule for " + t.Tag.String())
	}
	if r.kind == Evaluation {
		if env == nil && !r.optional {
			return t, nil
		}
		return r.eval(ctx, t, env)
	}
	args := make([]any, len(t.Args))
	partial := false
	for i, a := range t.Args {
		v, err := ctx.eval(a, env)
		if err != nil {
			var ne *NameError
			if env != nil || !errors.As(err, &ne) {
				return nil, err
			}
			v = a
		}
		partial = partial || isTree(v)
		args[i] = v
	}
	t = t.with(args)
	if partial && !r.tolerant {
		return t, nil
	}
	if r.kind == Execution {
		return r.exec(ctx, t)
	}
	return r.subst(ctx, t)
}
