package calc

import (
	"strconv"
	"strings"
)

// Tree is a node in a syntax tree. Each argument is either a *Tree that has
// not been evaluated yet or an already resolved value. Evaluation never
// modifies a Tree; a partially evaluated result is a new Tree.
type Tree struct {
	Tag  Tag
	Args []any
}

// Tag identifies the kind of a syntax tree node and so the rule that
// evaluates it.
type Tag uint8

const (
	TagNone Tag = iota

	// literals
	TagEmpty   // no value
	TagName    // Args[0] is the name
	TagInt     // Args[0] is decimal digits
	TagReal    // Args[0] is a decimal real
	TagComplex // real part, "+" or "-", imaginary part
	TagHex     // Args[0] is 0x digits
	TagBin     // Args[0] is 0b digits
	TagStr     // mode prefix, contents

	// structure
	TagPhrase  // operands and OP trees with short-circuit words still in place
	TagItems   // operands and OP trees to be resolved
	TagOp      // Args[0] is the operator spelling
	TagApp     // Args[0] is an *Op or Callable, the rest its operands
	TagList    // list construction
	TagVar     // NAME followed by ATTR path
	TagAttr    // Args[0] is the field name
	TagKwd     // Args[0] is the keyword name, Args[1] the value
	TagEnv     // BIND trees evaluated into a new child env
	TagAns     // Args[0] is the history reference, e.g. "$$" or "$3"
	TagUnknown // Args[0] is the placeholder, e.g. "?" or "?2"

	// binding
	TagForm // Args[0] is the pattern tree
	TagBind // form, value
	TagMap  // form, body

	// control
	TagIf      // value, condition
	TagAnd     // lhs, rhs
	TagOr      // lhs, rhs
	TagAt      // context env, body
	TagQuote   // Args[0] is the quoted tree
	TagUnquote // Args[0] is evaluated inside a quote
	TagGener   // output, CONSTR...
	TagConstr  // form, range, WITH or nil, filter or nil
	TagWith    // BIND trees

	// commands
	TagDir
	TagLoad
	TagImport
	TagConf
	TagDel
	TagExit

	tagCount
)

var tagNames = [...]string{
	TagNone:    "NONE",
	TagEmpty:   "EMPTY",
	TagName:    "NAME",
	TagInt:     "INT",
	TagReal:    "REAL",
	TagComplex: "COMPLEX",
	TagHex:     "HEX",
	TagBin:     "BIN",
	TagStr:     "STR",
	TagPhrase:  "PHRASE",
	TagItems:   "ITEMS",
	TagOp:      "OP",
	TagApp:     "APP",
	TagList:    "LIST",
	TagVar:     "VAR",
	TagAttr:    "ATTR",
	TagKwd:     "KWD",
	TagEnv:     "ENV",
	TagAns:     "ANS",
	TagUnknown: "UNKNOWN",
	TagForm:    "FORM",
	TagBind:    "BIND",
	TagMap:     "MAP",
	TagIf:      "IF",
	TagAnd:     "AND",
	TagOr:      "OR",
	TagAt:      "AT",
	TagQuote:   "QUOTE",
	TagUnquote: "UNQUOTE",
	TagGener:   "GENER",
	TagConstr:  "CONSTR",
	TagWith:    "WITH",
	TagDir:     "DIR",
	TagLoad:    "LOAD",
	TagImport:  "IMPORT",
	TagConf:    "CONF",
	TagDel:     "DEL",
	TagExit:    "EXIT",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) && tagNames[t] != "" {
		return tagNames[t]
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// T is a shortcut to build a tree.
func T(tag Tag, args ...any) *Tree {
	return &Tree{Tag: tag, Args: args}
}

// Name is a shortcut to build a NAME tree.
func Name(name string) *Tree {
	return T(TagName, name)
}

// isTree reports whether x is an unresolved tree.
func isTree(x any) bool {
	_, ok := x.(*Tree)
	return ok
}

// tagOf returns the tag of x, or TagNone if x is not a tree.
func tagOf(x any) Tag {
	if t, ok := x.(*Tree); ok {
		return t.Tag
	}
	return TagNone
}

// with returns a copy of t with new arguments.
func (t *Tree) with(args []any) *Tree {
	return &Tree{Tag: t.Tag, Args: args}
}

// partial reports whether any argument of t is still a tree.
func (t *Tree) partial() bool {
	for _, a := range t.Args {
		if isTree(a) {
			return true
		}
	}
	return false
}

// names collects the names of NAME nodes in t in order of appearance.
func (t *Tree) names(into []string) []string {
	if t.Tag == TagName {
		if s, ok := t.Args[0].(string); ok {
			for _, n := range into {
				if n == s {
					return into
				}
			}
			return append(into, s)
		}
	}
	for _, a := range t.Args {
		if u, ok := a.(*Tree); ok {
			into = u.names(into)
		}
	}
	return into
}

// String formats the tree as a bracketed tag expression, with resolved values
// formatted as they would be displayed.
func (t *Tree) String() string {
	var b strings.Builder
	t.fmt(&b)
	return b.String()
}

func (t *Tree) fmt(b *strings.Builder) {
	switch t.Tag {
	case TagName, TagInt, TagReal, TagHex, TagBin, TagAttr, TagAns, TagUnknown:
		if len(t.Args) == 1 {
			if s, ok := t.Args[0].(string); ok {
				b.WriteString(s)
				return
			}
		}
	case TagOp:
		if len(t.Args) == 1 {
			if s, ok := t.Args[0].(string); ok {
				b.WriteString("`" + s + "`")
				return
			}
		}
	}
	b.WriteByte('[')
	b.WriteString(t.Tag.String())
	for _, a := range t.Args {
		b.WriteByte(' ')
		switch a := a.(type) {
		case *Tree:
			a.fmt(b)
		case nil:
			b.WriteByte('_')
		default:
			b.WriteString(Format(a))
		}
	}
	b.WriteByte(']')
}
