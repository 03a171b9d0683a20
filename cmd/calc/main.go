package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lmorg/readline"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/funcs"
)

func main() {
	log.SetFlags(0)
	var (
		inname, confname, lib string
		with                  [][2]string
		number, echo          bool
		digits                int
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "script file to run (- for stdin)")
	flag.StringVar(&confname, "config", "", "YAML settings file")
	flag.StringVar(&lib, "lib", ".", "directory of scripts for the load command")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&digits, "digits", 0, "significant digits of reals (default from config)")
	flag.BoolVar(&number, "n", false, "label results with their history references")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.Parse()

	cfg := calc.DefaultConfig()
	if confname != "" {
		f, err := os.Open(confname)
		if err != nil {
			log.Fatal(err)
		}
		cfg, err = calc.LoadConfig(f)
		f.Close()
		if err != nil {
			log.Fatalf("reading %s: %v", confname, err)
		}
	}
	if digits < 0 {
		log.Fatalf("digits (%d) must be positive", digits)
	}
	if digits > 0 {
		cfg.Precision = digits
	}

	opts := []calc.ContextOption{
		calc.Configure(cfg),
		calc.Builtins(funcs.Table()),
		calc.ScriptLoader(calc.DirLoader(lib)),
		calc.Output(os.Stdout),
	}
	for name, binds := range funcs.Modules() {
		opts = append(opts, calc.Module(name, binds))
	}
	ctx := calc.NewContext(opts...)
	for _, d := range with {
		r, err := ctx.Clone().Exec(d[1])
		if err != nil {
			log.Fatalf("setting %s: %v", d[0], err)
		}
		ctx.Global().Define(d[0], r.Value)
	}

	s := session{ctx: ctx, number: number, echo: echo}
	switch {
	case inname != "":
		in := os.Stdin
		if inname != "-" {
			f, err := os.Open(inname)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()
			in = f
		}
		if err := ctx.Run(in); err != nil {
			log.Fatal(err)
		}
	case flag.NArg() > 0:
		for _, arg := range flag.Args() {
			exit, err := s.exec(arg)
			if err != nil {
				log.Fatal(err)
			}
			if exit {
				return
			}
		}
	case interactive():
		s.repl()
	default:
		if err := ctx.Run(os.Stdin); err != nil {
			log.Fatal(err)
		}
	}
}

// interactive reports whether stdin is a terminal.
func interactive() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

type session struct {
	ctx    *calc.Context
	number bool
	echo   bool
}

// exec runs one line and prints its result.
func (s *session) exec(src string) (exit bool, err error) {
	if s.echo {
		e, err := calc.Parse(src)
		if err != nil {
			return false, err
		}
		fmt.Println(e)
	}
	r, err := s.ctx.Exec(src)
	if err != nil {
		return false, err
	}
	if r.Exit {
		return true, nil
	}
	if r.Quiet || r.Value == nil {
		return false, nil
	}
	if s.number {
		fmt.Printf("$%d = ", len(s.ctx.Answers()))
	}
	fmt.Println(s.ctx.Format(r.Value))
	return false, nil
}

func (s *session) repl() {
	rline := readline.NewInstance()
	var pending strings.Builder
	for {
		if pending.Len() == 0 {
			rline.SetPrompt("> ")
		} else {
			rline.SetPrompt(". ")
		}
		line, err := rline.Readline()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintln(os.Stderr, err)
			}
			return
		}
		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)
		exit, err := s.exec(pending.String())
		var be *calc.BracketError
		if errors.As(err, &be) && be.Unclosed() {
			continue
		}
		pending.Reset()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		if exit {
			return
		}
	}
}
