package calc

import (
	"strings"
)

// Line    = [Command | Stmt] [';']
// Command = 'del' Atom {Atom} | 'dir' [Atom] ['*'] | 'load' path {flag} | 'import' path {flag} | 'conf' [name [Expr]] | 'exit'
// Stmt    = Expr ['=' Stmt]
// Expr    = Phrase ['=>' Expr | '@' Expr]
// Phrase  = Item {Item}
// Item    = Atom | operator | word
// Atom    = num | name {'.' name} | string | '$' | '?' | "'" Atom | '\' Atom | '(' [Arg {',' Arg} [',']] ')' | '[' List ']' | '{' [Stmt {',' Stmt}] '}'
// Arg     = name ':' Expr | Expr
// List    = Expr {'for' Phrase 'in' Phrase ['with' Stmt {',' Stmt}] ['if' Phrase]} | [Arg {',' Arg}]
//
// A bracket written directly after an operand, with no space between, is an
// application or index of that operand. Word operators are and, or, not,
// xor, in, outof, and if.

// Expr is a parsed line of input.
type Expr struct {
	// Tree is the syntax tree, or nil if the line was blank.
	Tree *Tree
	// Quiet is set when the line ends with a semicolon.
	Quiet bool
}

// Names returns the names used in the expression.
func (e *Expr) Names() []string {
	if e.Tree == nil {
		return nil
	}
	return e.Tree.names(nil)
}

func (e *Expr) String() string {
	if e.Tree == nil {
		return ""
	}
	return e.Tree.String()
}

// wordOps are names that are operators.
var wordOps = map[string]bool{
	"and": true, "or": true, "not": true, "xor": true, "in": true, "outof": true, "if": true,
}

// reserved are words that only appear inside comprehensions.
var reserved = map[string]bool{"for": true, "with": true}

// commands are words that begin commands at the start of a line.
var commands = map[string]bool{
	"del": true, "dir": true, "load": true, "import": true, "conf": true, "exit": true,
}

// Parse parses a line of input.
func Parse(src string) (*Expr, error) {
	l := lex(src)
	var p parser
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		p.toks = append(p.toks, tok)
		if tok.kind == tokenEOF {
			break
		}
	}
	return p.line()
}

type parser struct {
	toks []lexToken
	i    int
	// opens are the brackets enclosing the current position.
	opens []lexToken
}

// empty is the error for a missing expression before tok. At the end of
// input inside brackets, it is an unclosed bracket instead, so that callers
// can ask for more input.
func (p *parser) empty(tok lexToken) error {
	if tok.kind == tokenEOF && len(p.opens) > 0 {
		open := p.opens[len(p.opens)-1]
		return &BracketError{Col: open.pos, Left: open.text}
	}
	return &EmptyExpressionError{Col: tok.pos, End: tok.text}
}

func (p *parser) push(open lexToken) {
	p.opens = append(p.opens, open)
}

func (p *parser) pop() {
	p.opens = p.opens[:len(p.opens)-1]
}

func (p *parser) peek() lexToken {
	return p.toks[p.i]
}

// peekAt returns the token k places after the next one.
func (p *parser) peekAt(k int) lexToken {
	if p.i+k >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+k]
}

func (p *parser) next() lexToken {
	tok := p.toks[p.i]
	if tok.kind != tokenEOF {
		p.i++
	}
	return tok
}

func (p *parser) isOp(text string) bool {
	tok := p.peek()
	return tok.kind == tokenOp && tok.text == text
}

func (p *parser) isWord(text string) bool {
	tok := p.peek()
	return tok.kind == tokenIdent && tok.text == text
}

// stopSet tells a phrase which words end it.
type stopSet map[string]bool

func (p *parser) line() (*Expr, error) {
	e := new(Expr)
	if p.peek().kind == tokenEOF {
		return e, nil
	}
	var err error
	if tok := p.peek(); tok.kind == tokenIdent && commands[tok.text] && !p.isBindTarget() {
		e.Tree, err = p.command()
	} else {
		var t any
		t, err = p.stmt(nil)
		e.Tree, _ = t.(*Tree)
	}
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind == tokenSep && tok.text == ";" {
		p.next()
		e.Quiet = true
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return e, nil
}

// isBindTarget reports whether a command word at the start of a line is
// instead being used as a name.
func (p *parser) isBindTarget() bool {
	n := p.peekAt(1)
	if n.kind == tokenOp && (n.text == "=" || n.text == "=>" || (n.text == "." && !n.space)) {
		return true
	}
	return n.kind == tokenOpen && !n.space
}

// end checks that the input is exhausted.
func (p *parser) end() error {
	tok := p.peek()
	switch tok.kind {
	case tokenEOF:
		return nil
	case tokenClose:
		return &BracketError{Col: tok.pos, Right: tok.text}
	case tokenSep:
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	}
	return &OperatorError{Col: tok.pos, Operator: tok.text}
}

func (p *parser) stmt(stop stopSet) (any, error) {
	lhs, err := p.expr(stop)
	if err != nil {
		return nil, err
	}
	if !p.isOp("=") {
		return lhs, nil
	}
	p.next()
	rhs, err := p.stmt(stop)
	if err != nil {
		return nil, err
	}
	return bindTree(lhs, rhs), nil
}

// bindTree builds a binding. A left side f(params) defines a function.
func bindTree(lhs, rhs any) *Tree {
	if t, ok := lhs.(*Tree); ok && t.Tag == TagPhrase && len(t.Args) == 3 {
		op, _ := t.Args[1].(*Tree)
		if tagOf(t.Args[0]) == TagName && op != nil && op.Tag == TagOp && op.Args[0] == appOp.Symbol {
			return T(TagBind, T(TagForm, t.Args[0]), T(TagMap, T(TagForm, t.Args[2]), rhs))
		}
	}
	return T(TagBind, T(TagForm, lhs), rhs)
}

func (p *parser) expr(stop stopSet) (any, error) {
	ph, err := p.phrase(stop)
	if err != nil {
		return nil, err
	}
	switch {
	case p.isOp("=>"):
		p.next()
		body, err := p.expr(stop)
		if err != nil {
			return nil, err
		}
		return T(TagMap, T(TagForm, ph), body), nil
	case p.isOp("@"):
		p.next()
		body, err := p.expr(stop)
		if err != nil {
			return nil, err
		}
		return T(TagAt, ph, body), nil
	}
	return ph, nil
}

// phrase reads operands and operators up to the end of the expression. A
// phrase of one operand is that operand.
func (p *parser) phrase(stop stopSet) (any, error) {
	var items []any
	operand := false
loop:
	for {
		tok := p.peek()
		switch tok.kind {
		case tokenEOF, tokenSep, tokenClose:
			break loop
		case tokenOp:
			switch tok.text {
			case "=", "=>", "@", ":":
				break loop
			}
			p.next()
			items = append(items, T(TagOp, tok.text))
			operand = false
			continue
		case tokenIdent:
			if stop[tok.text] {
				break loop
			}
			if reserved[tok.text] {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if wordOps[tok.text] {
				p.next()
				items = append(items, T(TagOp, tok.text))
				operand = false
				continue
			}
		case tokenOpen:
			if operand && !tok.space && tok.text != "{" {
				p.next()
				op := appOp.Symbol
				if tok.text == "[" {
					op = getOp.Symbol
				}
				args, err := p.args(tok, closing(tok.text))
				if err != nil {
					return nil, err
				}
				items = append(items, T(TagOp, op), args)
				continue
			}
		}
		a, err := p.atom()
		if err != nil {
			return nil, err
		}
		items = append(items, a)
		operand = true
	}
	if len(items) == 0 {
		return nil, p.empty(p.peek())
	}
	if len(items) == 1 && tagOf(items[0]) != TagOp {
		return items[0], nil
	}
	return T(TagPhrase, items...), nil
}

func closing(open string) string {
	return string(CloseBrackets[strings.Index(OpenBrackets, open)])
}

// expectClose consumes the close bracket matching open.
func (p *parser) expectClose(open lexToken, want string) error {
	tok := p.peek()
	switch {
	case tok.kind == tokenClose && tok.text == want:
		p.next()
		p.pop()
		return nil
	case tok.kind == tokenClose:
		return &BracketError{Col: tok.pos, Left: open.text, Right: tok.text}
	case tok.kind == tokenEOF:
		return &BracketError{Col: open.pos, Left: open.text}
	case tok.kind == tokenSep:
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	}
	return &OperatorError{Col: tok.pos, Operator: tok.text}
}

// args reads a comma-separated argument list after an open bracket into a
// LIST, through the close bracket.
func (p *parser) args(open lexToken, want string) (*Tree, error) {
	p.push(open)
	var items []any
	for !(p.peek().kind == tokenClose && p.peek().text == want) {
		a, err := p.arg(nil)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
		if tok := p.peek(); tok.kind == tokenSep && tok.text == "," {
			p.next()
			continue
		}
		break
	}
	if err := p.expectClose(open, want); err != nil {
		return nil, err
	}
	return T(TagList, items...), nil
}

// arg reads an expression or a keyword argument name: expr.
func (p *parser) arg(stop stopSet) (any, error) {
	if tok, n := p.peek(), p.peekAt(1); tok.kind == tokenIdent && n.kind == tokenOp && n.text == ":" {
		p.next()
		p.next()
		v, err := p.expr(stop)
		if err != nil {
			return nil, err
		}
		return T(TagKwd, tok.text, v), nil
	}
	return p.expr(stop)
}

func (p *parser) atom() (any, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNum:
		return numTree(tok.text), nil
	case tokenStr:
		k := strings.IndexByte(tok.text, '"')
		return T(TagStr, tok.text[:k], tok.text[k+1:]), nil
	case tokenAns:
		return T(TagAns, tok.text), nil
	case tokenUnknown:
		return T(TagUnknown, tok.text), nil
	case tokenQuote, tokenUnquote:
		a, err := p.atom()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenQuote {
			return T(TagQuote, a), nil
		}
		return T(TagUnquote, a), nil
	case tokenIdent:
		name := Name(tok.text)
		var path []any
		for p.isOp(".") && !p.peek().space {
			n := p.peekAt(1)
			if n.kind != tokenIdent || n.space || wordOps[n.text] {
				break
			}
			p.next()
			p.next()
			path = append(path, T(TagAttr, n.text))
		}
		if path == nil {
			return name, nil
		}
		return T(TagVar, append([]any{name}, path...)...), nil
	case tokenOpen:
		switch tok.text {
		case "(":
			return p.paren(tok)
		case "[":
			return p.bracket(tok)
		default:
			return p.brace(tok)
		}
	case tokenEOF:
		return nil, p.empty(tok)
	case tokenClose:
		return nil, &BracketError{Col: tok.pos, Right: tok.text}
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	}
	return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
}

// numTree builds the tree of a numeric literal.
func numTree(s string) *Tree {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		return T(TagHex, s)
	case strings.HasPrefix(lower, "0b"):
		return T(TagBin, s)
	case strings.HasSuffix(s, "i"):
		return T(TagComplex, nil, "+", numTree(s[:len(s)-1]))
	case strings.ContainsAny(s, ".eE"):
		return T(TagReal, s)
	}
	return T(TagInt, s)
}

// paren reads a parenthesized group. One item without a trailing comma is
// grouping; otherwise the items form a list.
func (p *parser) paren(open lexToken) (any, error) {
	p.push(open)
	var items []any
	comma := false
	for !(p.peek().kind == tokenClose && p.peek().text == ")") {
		a, err := p.arg(nil)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
		comma = false
		if tok := p.peek(); tok.kind == tokenSep && tok.text == "," {
			p.next()
			comma = true
			continue
		}
		break
	}
	if err := p.expectClose(open, ")"); err != nil {
		return nil, err
	}
	if len(items) == 1 && !comma && tagOf(items[0]) != TagKwd {
		return items[0], nil
	}
	return T(TagList, items...), nil
}

var (
	stopFor    = stopSet{"for": true}
	stopIn     = stopSet{"in": true}
	stopRange  = stopSet{"for": true, "with": true, "if": true}
	stopFilter = stopSet{"for": true, "if": true}
)

// bracket reads a list or a comprehension.
func (p *parser) bracket(open lexToken) (any, error) {
	p.push(open)
	if tok := p.peek(); tok.kind == tokenClose && tok.text == "]" {
		p.next()
		p.pop()
		return T(TagList), nil
	}
	first, err := p.arg(stopFor)
	if err != nil {
		return nil, err
	}
	if !p.isWord("for") {
		items := []any{first}
		for {
			if tok := p.peek(); tok.kind != tokenSep || tok.text != "," {
				break
			}
			p.next()
			if tok := p.peek(); tok.kind == tokenClose && tok.text == "]" {
				break
			}
			a, err := p.arg(nil)
			if err != nil {
				return nil, err
			}
			items = append(items, a)
		}
		if err := p.expectClose(open, "]"); err != nil {
			return nil, err
		}
		return T(TagList, items...), nil
	}
	gen := []any{first}
	for p.isWord("for") {
		p.next()
		form, err := p.phrase(stopIn)
		if err != nil {
			return nil, err
		}
		if !p.isWord("in") {
			tok := p.peek()
			if tok.kind == tokenEOF {
				return nil, p.empty(tok)
			}
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
		}
		p.next()
		rng, err := p.phrase(stopRange)
		if err != nil {
			return nil, err
		}
		var with, filter any
		if p.isWord("with") {
			p.next()
			var binds []any
			for {
				b, err := p.stmt(stopFilter)
				if err != nil {
					return nil, err
				}
				if tagOf(b) != TagBind {
					tok := p.peek()
					return nil, &OperatorError{Col: tok.pos, Operator: "with"}
				}
				binds = append(binds, b)
				if tok := p.peek(); tok.kind != tokenSep || tok.text != "," {
					break
				}
				p.next()
			}
			with = T(TagWith, binds...)
		}
		if p.isWord("if") {
			p.next()
			if filter, err = p.expr(stopFor); err != nil {
				return nil, err
			}
		}
		gen = append(gen, T(TagConstr, T(TagForm, form), rng, with, filter))
	}
	if err := p.expectClose(open, "]"); err != nil {
		return nil, err
	}
	return T(TagGener, gen...), nil
}

// brace reads an env literal of bindings.
func (p *parser) brace(open lexToken) (any, error) {
	p.push(open)
	var binds []any
	for !(p.peek().kind == tokenClose && p.peek().text == "}") {
		b, err := p.stmt(nil)
		if err != nil {
			return nil, err
		}
		if tagOf(b) != TagBind {
			tok := p.peek()
			return nil, &OperatorError{Col: tok.pos, Operator: "{"}
		}
		binds = append(binds, b)
		if tok := p.peek(); tok.kind == tokenSep && tok.text == "," {
			p.next()
			continue
		}
		break
	}
	if err := p.expectClose(open, "}"); err != nil {
		return nil, err
	}
	return T(TagEnv, binds...), nil
}

// command reads a command line.
func (p *parser) command() (*Tree, error) {
	cmd := p.next()
	switch cmd.text {
	case "exit":
		return T(TagExit), nil
	case "del":
		var names []any
		for p.peek().kind == tokenIdent {
			a, err := p.atom()
			if err != nil {
				return nil, err
			}
			if t := a.(*Tree); t.Tag == TagName {
				a = t.Args[0]
			}
			names = append(names, a)
		}
		if names == nil {
			return nil, &CommandError{Col: p.peek().pos, Command: cmd.text, Want: "names"}
		}
		return T(TagDel, names...), nil
	case "dir":
		var target any
		if p.peek().kind == tokenIdent {
			a, err := p.atom()
			if err != nil {
				return nil, err
			}
			target = a
		}
		all := false
		if p.isOp("*") {
			p.next()
			all = true
		}
		return T(TagDir, target, all), nil
	case "load", "import":
		path, err := p.path(cmd)
		if err != nil {
			return nil, err
		}
		flags, err := p.flags(cmd)
		if err != nil {
			return nil, err
		}
		if cmd.text == "load" {
			return T(TagLoad, path, flags['w'], flags['v']), nil
		}
		return T(TagImport, path, flags['w']), nil
	case "conf":
		if tok := p.peek(); tok.kind == tokenEOF || tok.kind == tokenSep {
			return T(TagConf, nil, nil), nil
		}
		tok := p.next()
		if tok.kind != tokenIdent {
			return nil, &CommandError{Col: tok.pos, Command: cmd.text, Want: "a setting name"}
		}
		if n := p.peek(); n.kind == tokenEOF || n.kind == tokenSep {
			return T(TagConf, tok.text, nil), nil
		}
		v, err := p.expr(nil)
		if err != nil {
			return nil, err
		}
		return T(TagConf, tok.text, v), nil
	}
	panic("calc: unknown command " + cmd.text)
}

// path reads a dotted script or module name.
func (p *parser) path(cmd lexToken) (string, error) {
	tok := p.next()
	if tok.kind != tokenIdent {
		return "", &CommandError{Col: tok.pos, Command: cmd.text, Want: "a name"}
	}
	s := tok.text
	for p.isOp(".") && !p.peek().space && p.peekAt(1).kind == tokenIdent && !p.peekAt(1).space {
		p.next()
		s += "." + p.next().text
	}
	return s, nil
}

// flags reads single-letter flags, e.g. -w -v or -wv.
func (p *parser) flags(cmd lexToken) (map[rune]bool, error) {
	f := make(map[rune]bool)
	for p.isOp("-") {
		p.next()
		tok := p.next()
		if tok.kind != tokenIdent || tok.space {
			return nil, &CommandError{Col: tok.pos, Command: cmd.text, Want: "flags -w or -v"}
		}
		for _, r := range tok.text {
			if r != 'w' && r != 'v' {
				return nil, &CommandError{Col: tok.pos, Command: cmd.text, Want: "flags -w or -v"}
			}
			f[r] = true
		}
	}
	return f, nil
}
