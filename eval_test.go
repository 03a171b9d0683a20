package calc_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/zephyrtronium/calc"
)

// execCase executes lines in a fresh context and checks the formatted value
// of the last.
type execCase struct {
	name  string
	lines []string
	want  string
}

func runExecCases(t *testing.T, cases []execCase, opts ...calc.ContextOption) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := calc.NewContext(opts...)
			r := execAll(t, ctx, c.lines...)
			if got := ctx.Format(r.Value); got != c.want {
				t.Errorf("wrong result after %q:\n\twant %s\n\tgot  %s", c.lines, c.want, got)
			}
		})
	}
}

// execErrCase executes lines in a fresh context and checks that the last
// fails with an error of the type err points to.
type execErrCase struct {
	name  string
	lines []string
	err   any
}

func runExecErrCases(t *testing.T, cases []execErrCase, opts ...calc.ContextOption) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := calc.NewContext(opts...)
			n := len(c.lines) - 1
			execAll(t, ctx, c.lines[:n]...)
			r, err := ctx.Exec(c.lines[n])
			if err == nil {
				t.Fatalf("%q succeeded with %s", c.lines[n], ctx.Format(r.Value))
			}
			if !errors.As(err, c.err) {
				t.Errorf("%q: wrong error type %T: %v", c.lines[n], err, err)
			}
		})
	}
}

func execAll(t *testing.T, ctx *calc.Context, lines ...string) calc.Result {
	t.Helper()
	var r calc.Result
	for _, line := range lines {
		var err error
		r, err = ctx.Exec(line)
		if err != nil {
			t.Fatalf("%q failed: %v", line, err)
		}
	}
	return r
}

func TestExecValues(t *testing.T) {
	cases := []execCase{
		{"priority", []string{"1 + 2 * 3"}, "7"},
		{"pow", []string{"2^10"}, "1024"},
		{"rational", []string{"7 / 2"}, "7/2"},
		{"floor-div", []string{"7 // 2"}, "3"},
		{"neg-mod", []string{"-7 % 3"}, "2"},
		{"fact", []string{"5!"}, "120"},
		{"bases", []string{"0x10 + 0b11"}, "19"},
		{"juxt", []string{"x = 3", "2 x + 1"}, "7"},
		{"juxt-paren", []string{"2(3 + 1)"}, "8"},
		{"lists", []string{"[1, 2] + [3, 4]"}, "[4, 6]"},
		{"broadcast", []string{"[1, 2] * 2"}, "[2, 4]"},
		{"index", []string{"(1, 2, 3)[2]"}, "2"},
		{"index-neg", []string{"[1, 2, 3][-1]"}, "3"},
		{"compare", []string{"1 < 2"}, "true"},
		{"in", []string{"2 in [1, 2]"}, "true"},
		{"not", []string{"not 1 > 2"}, "true"},
		{"or", []string{"1 > 2 or 3"}, "3"},
		{"and", []string{"1 < 2 and 3"}, "3"},
		{"range", []string{"1..3"}, "1..3"},
		{"range-step", []string{"[x for x in 1..3..7]"}, "[1, 3, 5, 7]"},
		{"concat", []string{"[1] | [2, 3]"}, "[1, 2, 3]"},
		{"string", []string{`"a" + "b"`}, `"ab"`},
		{"bool-names", []string{"true and false"}, "false"},
		{"recursion", []string{"fact(n) = 1 if n < 2 or n fact(n - 1)", "fact(10)"}, "3628800"},
	}
	runExecCases(t, cases)
}

func TestExecIfFalse(t *testing.T) {
	ctx := calc.NewContext()
	r := execAll(t, ctx, "5 if 1 > 2")
	if r.Value != nil {
		t.Errorf("want nothing, got %v", r.Value)
	}
	if n := len(ctx.Answers()); n != 0 {
		t.Errorf("nothing should not enter the history, have %d answers", n)
	}
}

func TestExecQuiet(t *testing.T) {
	ctx := calc.NewContext()
	r := execAll(t, ctx, "x = 1;")
	if !r.Quiet {
		t.Error("result should be quiet")
	}
	r = execAll(t, ctx, "")
	if !r.Quiet || r.Value != nil {
		t.Errorf("blank line gave %v", r)
	}
}

func TestEvalPartial(t *testing.T) {
	ctx := calc.NewContext()
	e, err := calc.Parse("x + y * 2")
	if err != nil {
		t.Fatal(err)
	}
	before := e.Tree.String()
	r, err := ctx.Eval(e.Tree, nil)
	if err != nil {
		t.Fatalf("partial evaluation failed: %v", err)
	}
	if !r.Partial() {
		t.Fatalf("want a partial result, got %v", r.Value)
	}
	if want := []string{"x", "y"}; !reflect.DeepEqual(r.Pending, want) {
		t.Errorf("want pending %q, got %q", want, r.Pending)
	}
	again, err := ctx.Eval(e.Tree, nil)
	if err != nil {
		t.Fatal(err)
	}
	if calc.Format(again.Value) != calc.Format(r.Value) {
		t.Errorf("partial evaluation is not deterministic: %v then %v", r.Value, again.Value)
	}
	if e.Tree.String() != before {
		t.Errorf("evaluation modified the tree: %s became %s", before, e.Tree.String())
	}
	env := calc.NewEnv(map[string]any{"x": big.NewInt(1), "y": big.NewInt(3)})
	full, err := ctx.Eval(r.Value, env)
	if err != nil {
		t.Fatalf("completing the partial result failed: %v", err)
	}
	if got := calc.Format(full.Value); got != "7" {
		t.Errorf("want 7, got %s", got)
	}
	var ne *calc.NameError
	if _, err := ctx.Eval(r.Value, calc.NewEnv(nil)); !errors.As(err, &ne) {
		t.Errorf("evaluating with missing names: want name error, got %v", err)
	}
}

func TestExit(t *testing.T) {
	ctx := calc.NewContext()
	r, err := ctx.Exec("exit")
	if err != nil {
		t.Fatal(err)
	}
	if !r.Exit {
		t.Error("exit did not set Exit")
	}
	var out bytes.Buffer
	ctx = calc.NewContext(calc.Output(&out))
	if err := ctx.Run(strings.NewReader("1\nexit\n2\n")); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "1\n" {
		t.Errorf("wrong output %q", got)
	}
}

func TestRun(t *testing.T) {
	cases := []struct {
		name string
		src  string
		out  string
	}{
		{"values", "1 + 1\n\n2 * 3\n", "2\n6\n"},
		{"quiet", "x = 2;\nx\n", "2\n"},
		{"continuation", "x = [1,\n2]\nx\n", "[1, 2]\n[1, 2]\n"},
		{"nested-continuation", "f(x) = (x +\n1)\nf(1)\n", "f(x)\n2\n"},
		{"comment", "# nothing\n3 # three\n", "3\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out bytes.Buffer
			ctx := calc.NewContext(calc.Output(&out))
			if err := ctx.Run(strings.NewReader(c.src)); err != nil {
				t.Fatal(err)
			}
			if got := out.String(); got != c.out {
				t.Errorf("wrong output:\n\twant %q\n\tgot  %q", c.out, got)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		line int
		err  any
	}{
		{"empty", "x = 1\ny = \n", 2, new(*calc.EmptyExpressionError)},
		{"unclosed", "x = 1\nx = (1\n", 2, new(*calc.BracketError)},
		{"name", "x = 1\n\ny\n", 3, new(*calc.NameError)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := calc.NewContext()
			err := ctx.Run(strings.NewReader(c.src))
			var se *calc.ScriptError
			if !errors.As(err, &se) {
				t.Fatalf("want script error, got %v", err)
			}
			if se.Line != c.line {
				t.Errorf("want error on line %d, got %d", c.line, se.Line)
			}
			if !errors.As(err, c.err) {
				t.Errorf("wrong error type %T: %v", se.Err, se.Err)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	cases := []execCase{
		{"plain", []string{`"x is {x}"`}, `"x is 3"`},
		{"echo", []string{`"{x=}"`}, `"x = 3"`},
		{"expr", []string{`"{x + 1}"`}, `"4"`},
		{"braces", []string{`"{{x}}"`}, `"{x}"`},
		{"raw", []string{`r"{x}\n"`}, `"{x}\\n"`},
		{"escape", []string{`"a\tb"`}, `"a\tb"`},
	}
	runExecCases(t, cases, calc.SetVar("x", big.NewInt(3)))
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	ctx := calc.NewContext(calc.Output(&out), calc.SetVar("x", big.NewInt(3)))
	r := execAll(t, ctx, `p"x = {x}"`)
	if r.Value != nil {
		t.Errorf("print string has value %v", r.Value)
	}
	if got := out.String(); got != "x = 3\n" {
		t.Errorf("wrong output %q", got)
	}
}

func TestAnswers(t *testing.T) {
	ctx := calc.NewContext()
	r := execAll(t, ctx, "2", "3", "$ + $1")
	if got := calc.Format(r.Value); got != "5" {
		t.Errorf("$ + $1: want 5, got %s", got)
	}
	r = execAll(t, ctx, "$$")
	if got := calc.Format(r.Value); got != "3" {
		t.Errorf("$$: want 3, got %s", got)
	}
	if got := calc.Format(calc.List(ctx.Answers())); got != "[2, 3, 5, 3]" {
		t.Errorf("wrong history %s", got)
	}
	var ve *calc.ValueError
	if _, err := ctx.Exec("$9"); !errors.As(err, &ve) {
		t.Errorf("$9: want value error, got %v", err)
	}
	r = execAll(t, ctx, "7", "1;", "$")
	if got := calc.Format(r.Value); got != "7" {
		t.Errorf("quiet result entered history: $ is %s", got)
	}
}

func TestConf(t *testing.T) {
	ctx := calc.NewContext()
	execAll(t, ctx, "conf precision 5")
	if p := ctx.Config().Precision; p != 5 {
		t.Errorf("want precision 5, have %d", p)
	}
	r := execAll(t, ctx, "1/3.0")
	if got := ctx.Format(r.Value); got != "0.33333" {
		t.Errorf("want 0.33333, got %s", got)
	}
	r = execAll(t, ctx, "conf precision")
	if got := ctx.Format(r.Value); got != "5" {
		t.Errorf("conf precision: want 5, got %s", got)
	}
	r = execAll(t, ctx, "conf")
	if l, ok := r.Value.(calc.List); !ok || len(l) != 4 {
		t.Errorf("conf: want four settings, got %s", ctx.Format(r.Value))
	}
	execAll(t, ctx, "conf symbolic true")
	r = execAll(t, ctx, "y + 1")
	if got := ctx.Format(r.Value); got != "y + 1" {
		t.Errorf("symbolic: want y + 1, got %s", got)
	}
	var ve *calc.ValueError
	if _, err := ctx.Exec("conf tolerance -1"); !errors.As(err, &ve) {
		t.Errorf("negative tolerance: want value error, got %v", err)
	}
	var ne *calc.NameError
	if _, err := ctx.Exec("conf nonsense 1"); !errors.As(err, &ne) {
		t.Errorf("unknown setting: want name error, got %v", err)
	}
	var te *calc.TypeError
	if _, err := ctx.Exec("conf precision 1.5"); !errors.As(err, &te) {
		t.Errorf("real precision: want type error, got %v", err)
	}
}

func TestDelDir(t *testing.T) {
	ctx := calc.NewContext()
	r := execAll(t, ctx, "b = 2", "a = 1", "dir")
	if got := calc.Format(r.Value); got != `["a", "b"]` {
		t.Errorf("dir: got %s", got)
	}
	r = execAll(t, ctx, "dir *")
	if got := calc.Format(r.Value); got != `["a", "b", "false", "true"]` {
		t.Errorf("dir *: got %s", got)
	}
	r = execAll(t, ctx, "e = {u = 1, v = 2}", "dir e")
	if got := calc.Format(r.Value); got != `["u", "v"]` {
		t.Errorf("dir e: got %s", got)
	}
	execAll(t, ctx, "del a e")
	var ne *calc.NameError
	if _, err := ctx.Exec("a"); !errors.As(err, &ne) {
		t.Errorf("a after del: want name error, got %v", err)
	}
	if _, err := ctx.Exec("del a"); !errors.As(err, &ne) {
		t.Errorf("del of unbound name: want name error, got %v", err)
	}
	if _, err := ctx.Exec("del true"); !errors.As(err, &ne) {
		t.Errorf("del of builtin: want name error, got %v", err)
	}
}

func TestDelPath(t *testing.T) {
	ctx := calc.NewContext()
	r := execAll(t, ctx, "q.r = 1", "q.s = 2", "del q.r", "dir q")
	if got := calc.Format(r.Value); got != `["s"]` {
		t.Errorf("dir q after del q.r: got %s", got)
	}
	var ne *calc.NameError
	if _, err := ctx.Exec("del q.r"); !errors.As(err, &ne) {
		t.Errorf("del of deleted attribute: want name error, got %v", err)
	}
	var te *calc.TypeError
	execAll(t, ctx, "n = 5")
	if _, err := ctx.Exec("del n.u"); !errors.As(err, &te) {
		t.Errorf("del of attribute of a number: want type error, got %v", err)
	}
}

func TestImport(t *testing.T) {
	var logs bytes.Buffer
	ctx := calc.NewContext(
		calc.Module("m", map[string]any{"answer": big.NewInt(42), "x": big.NewInt(0)}),
		calc.Logger(slog.New(slog.NewTextHandler(&logs, nil))),
		calc.SetVar("x", big.NewInt(1)),
	)
	r := execAll(t, ctx, "import m", "answer x")
	if got := calc.Format(r.Value); got != "42" {
		t.Errorf("want 42, got %s", got)
	}
	if !strings.Contains(logs.String(), "name already bound") {
		t.Errorf("no warning for x in %q", logs.String())
	}
	r = execAll(t, ctx, "import m -w", "x")
	if got := calc.Format(r.Value); got != "0" {
		t.Errorf("import -w should overwrite x, got %s", got)
	}
	var ne *calc.NameError
	if _, err := ctx.Exec("import nothing"); !errors.As(err, &ne) {
		t.Errorf("unknown module: want name error, got %v", err)
	}
}

// mapLoader loads scripts from memory.
type mapLoader map[string]string

func (m mapLoader) Load(name string) (io.ReadCloser, error) {
	s, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no script %s: %w", name, os.ErrNotExist)
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

func TestLoad(t *testing.T) {
	scripts := mapLoader{
		"lib.consts": "x = 2\ny = 3\n",
		"bad":        "z = 1\nz +\n",
	}
	var logs, out bytes.Buffer
	ctx := calc.NewContext(
		calc.ScriptLoader(scripts),
		calc.Output(&out),
		calc.Logger(slog.New(slog.NewTextHandler(&logs, nil))),
		calc.SetVar("x", big.NewInt(1)),
	)
	r := execAll(t, ctx, "load lib.consts", "x y")
	if got := calc.Format(r.Value); got != "3" {
		t.Errorf("load should keep x: want 3, got %s", got)
	}
	if !strings.Contains(logs.String(), "name already bound") {
		t.Errorf("no warning for x in %q", logs.String())
	}
	if out.Len() != 0 {
		t.Errorf("quiet load wrote %q", out.String())
	}
	r = execAll(t, ctx, "load lib.consts -wv", "x y")
	if got := calc.Format(r.Value); got != "6" {
		t.Errorf("load -w should overwrite x: want 6, got %s", got)
	}
	if got := out.String(); got != "2\n3\n" {
		t.Errorf("load -v wrote %q", got)
	}
	var se *calc.ScriptError
	if _, err := ctx.Exec("load bad"); !errors.As(err, &se) || se.Line != 2 {
		t.Errorf("bad script: want script error on line 2, got %v", err)
	}
	if _, err := ctx.Exec("z"); err == nil {
		t.Error("failed script leaked bindings")
	}
	if _, err := ctx.Exec("load missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing script: want not exist, got %v", err)
	}
}

func TestLoadExit(t *testing.T) {
	scripts := mapLoader{"quit": "a = 1\nexit\nb = 2\n"}
	ctx := calc.NewContext(calc.ScriptLoader(scripts))
	r, err := ctx.Exec("load quit")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !r.Exit {
		t.Error("exit in a loaded script did not end the session")
	}
	if _, err := ctx.Exec("b"); err == nil {
		t.Error("lines after exit ran")
	}
	var out bytes.Buffer
	err = calc.NewContext(calc.ScriptLoader(scripts), calc.Output(&out)).Run(strings.NewReader("load quit\n5\n"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("run continued after exit: %q", out.String())
	}
}

func TestLoadClosureSettings(t *testing.T) {
	scripts := mapLoader{"f": "f(x) = x + y\n"}
	ctx := calc.NewContext(calc.ScriptLoader(scripts))
	execAll(t, ctx, "load f", "conf symbolic true")
	r := execAll(t, ctx, "f(1)")
	if got := ctx.Format(r.Value); got != "1 + y" {
		t.Errorf("loaded closure ignored session settings: want 1 + y, got %s", got)
	}
}

func TestSymbolic(t *testing.T) {
	cases := []execCase{
		{"sum", []string{"y + 1"}, "y + 1"},
		{"product", []string{"2 y"}, "2 * y"},
		{"grouping", []string{"(a + b) c"}, "(a + b) * c"},
		{"bound", []string{"a = 2", "a + b"}, "2 + b"},
	}
	runExecCases(t, cases, calc.Symbolic(true))
}

func TestQuote(t *testing.T) {
	cases := []execCase{
		{"quote", []string{"'(a + 1)"}, "a + 1"},
		{"bound", []string{"a = 5", "'(a + 1)"}, "a + 1"},
		{"unquote", []string{"a = 5", `'(a + \a)`}, "a + 5"},
	}
	runExecCases(t, cases)
}
