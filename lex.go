package calc

import (
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
	// space is whether whitespace precedes the token.
	space bool
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer, real, hex, binary, or imaginary literal.
	tokenNum
	// tokenIdent is a name or a word operator.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep is an item separator, either , or ;.
	tokenSep
	// tokenStr is a string literal. Its text is the mode prefix, a quote,
	// and the unescaped contents.
	tokenStr
	// tokenAns is a history reference, e.g. $ or $2.
	tokenAns
	// tokenUnknown is a placeholder, e.g. ? or ?x.
	tokenUnknown
	// tokenQuote is '.
	tokenQuote
	// tokenUnquote is \.
	tokenUnquote
)

var tokenKindNames = [...]string{
	tokenNone:    "None",
	tokenEOF:     "EOF",
	tokenNum:     "Num",
	tokenIdent:   "Ident",
	tokenOp:      "Op",
	tokenOpen:    "Open",
	tokenClose:   "Close",
	tokenSep:     "Sep",
	tokenStr:     "Str",
	tokenAns:     "Ans",
	tokenUnknown: "Unknown",
	tokenQuote:   "Quote",
	tokenUnquote: "Unquote",
}

func (k tokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "tokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Operators contains the runes which begin operators.
const Operators = "+-*/%^&|.<>!~=@:"

// longOps are the operators spelled with two runes. The lexer always takes
// the longest operator.
var longOps = []string{"=>", "==", "/=", "<=", ">=", "//", "..", "!!"}

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in ClosedBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

type lexer struct {
	src []rune
	// i is the index of the next rune to scan.
	i   int
	buf strings.Builder
	eof bool
}

func lex(src string) *lexer {
	return &lexer{src: []rune(src)}
}

// peek returns the rune k runes ahead of the next one, or -1 past the end.
func (l *lexer) peek(k int) rune {
	if l.i+k >= len(l.src) {
		return -1
	}
	return l.src[l.i+k]
}

// next scans the next token from the input. The first time the end of input
// is reached, the result is an EOF token. A # starts a comment running to
// the end of input.
func (l *lexer) next() (lexToken, error) {
	if l.eof {
		return lexToken{kind: tokenEOF, pos: len(l.src) + 1}, nil
	}
	l.buf.Reset()
	var space bool
	for l.i < len(l.src) && unicode.IsSpace(l.src[l.i]) {
		l.i++
		space = true
	}
	tok := lexToken{pos: l.i + 1, space: space}
	if l.i >= len(l.src) || l.src[l.i] == '#' {
		l.i = len(l.src)
		l.eof = true
		tok.kind = tokenEOF
		return tok, nil
	}
	r := l.src[l.i]
	switch {
	case '0' <= r && r <= '9', r == '.' && isDigit(l.peek(1)):
		if err := l.scanNum(); err != nil {
			return tok, err
		}
		tok.kind = tokenNum
	case r == '_', unicode.IsLetter(r):
		l.scanIdent()
		if s := l.buf.String(); (s == "r" || s == "p") && l.peek(0) == '"' {
			if err := l.scanStr(s == "r"); err != nil {
				return tok, err
			}
			tok.text = s + l.buf.String()
			tok.kind = tokenStr
			return tok, nil
		}
		tok.kind = tokenIdent
	case r == '"':
		if err := l.scanStr(false); err != nil {
			return tok, err
		}
		tok.kind = tokenStr
	case r == '$':
		l.take()
		if l.peek(0) == '$' {
			l.take()
		} else {
			for isDigit(l.peek(0)) {
				l.take()
			}
		}
		tok.kind = tokenAns
	case r == '?':
		l.take()
		for c := l.peek(0); c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c); c = l.peek(0) {
			l.take()
		}
		tok.kind = tokenUnknown
	case r == '\'':
		l.take()
		tok.kind = tokenQuote
	case r == '\\':
		l.take()
		tok.kind = tokenUnquote
	case r == ',', r == ';':
		l.take()
		tok.kind = tokenSep
	case strings.ContainsRune(OpenBrackets, r):
		l.take()
		tok.kind = tokenOpen
	case strings.ContainsRune(CloseBrackets, r):
		l.take()
		tok.kind = tokenClose
	case strings.ContainsRune(Operators, r):
		l.scanOp()
		tok.kind = tokenOp
	default:
		// Write the rune so that it shows up in the error message.
		l.take()
		return tok, l.error("")
	}
	tok.text = l.buf.String()
	return tok, nil
}

// take moves the next rune into the token buffer.
func (l *lexer) take() {
	l.buf.WriteRune(l.src[l.i])
	l.i++
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isBaseDigit(r rune, base int) bool {
	if base == 2 {
		return r == '0' || r == '1'
	}
	return isDigit(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) scanOp() {
	r := l.src[l.i]
	if n := l.peek(1); n >= 0 {
		two := string([]rune{r, n})
		for _, op := range longOps {
			if op == two {
				l.take()
				l.take()
				return
			}
		}
	}
	l.take()
}

// scanNum scans a number. A number ends at the first rune that cannot
// continue it, so 2x is a number followed by a name.
func (l *lexer) scanNum() error {
	if l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X' || l.peek(1) == 'b' || l.peek(1) == 'B') {
		base := 16
		if l.peek(1) == 'b' || l.peek(1) == 'B' {
			base = 2
		}
		l.take()
		l.take()
		n := 0
		for isBaseDigit(l.peek(0), base) {
			l.take()
			n++
		}
		if n == 0 || isIdentRune(l.peek(0)) {
			if l.i < len(l.src) {
				l.take()
			}
			return l.error("number")
		}
		return nil
	}
	var dot, e bool
	for {
		c := l.peek(0)
		switch {
		case isDigit(c):
			l.take()
		case c == '.' && !dot && !e && l.peek(1) != '.':
			dot = true
			l.take()
		case (c == 'e' || c == 'E') && !e:
			k := 1
			if s := l.peek(1); s == '+' || s == '-' {
				k = 2
			}
			if !isDigit(l.peek(k)) {
				return l.imag()
			}
			e = true
			for ; k > 0; k-- {
				l.take()
			}
		default:
			return l.imag()
		}
	}
}

// imag takes an imaginary suffix if there is one.
func (l *lexer) imag() error {
	if l.peek(0) == 'i' && !isIdentRune(l.peek(1)) {
		l.take()
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.take()
		return l.error("number")
	}
	return nil
}

func (l *lexer) scanIdent() {
	for isIdentRune(l.peek(0)) {
		l.take()
	}
	// Predicates like list? end in a question mark.
	if l.peek(0) == '?' && !isIdentRune(l.peek(1)) {
		l.take()
	}
}

// scanStr scans a quoted string into the buffer as a quote followed by the
// contents. Escapes are processed unless raw, in which only \" is.
func (l *lexer) scanStr(raw bool) error {
	l.buf.Reset()
	l.i++
	l.buf.WriteByte('"')
	for {
		if l.i >= len(l.src) {
			return l.error("string")
		}
		c := l.src[l.i]
		l.i++
		switch {
		case c == '"':
			return nil
		case c == '\\' && l.i < len(l.src):
			n := l.src[l.i]
			l.i++
			switch {
			case n == '"':
				l.buf.WriteRune('"')
			case raw:
				l.buf.WriteRune('\\')
				l.buf.WriteRune(n)
			case n == 'n':
				l.buf.WriteRune('\n')
			case n == 't':
				l.buf.WriteRune('\t')
			case n == '\\':
				l.buf.WriteRune('\\')
			default:
				l.buf.WriteRune('\\')
				l.buf.WriteRune(n)
			}
		default:
			l.buf.WriteRune(c)
		}
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.i,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "string", or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
