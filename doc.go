// Package calc implements an interactive expression language with exact and
// arbitrary-precision numbers, lists, symbols, and user-defined functions.
//
// The syntax is intended to be similar to math you'd write in your notes.
// "2 x y" is a multiplication of three terms, and "f x" applies f to x when f
// is a function. "-2^3^2" is the same as
// "-((2^3)^2)", since every operator associates left. Operators are
// resolved by priority at evaluation time, so a phrase with names that are
// not yet bound evaluates to a tree which can be finished later in an env
// that binds them.
//
// Binding is by pattern: "(a, b, rest..) = [1, 2, 3, 4]" destructures a
// list, "f(x, y: 2) = x + y" defines a function with a keyword parameter, and
// "2 x + 1 = 7" solves for x. Comprehensions like "[x y for x in 1..3 for y
// in [10, 20] if x < 2]" generate lists.
//
// A Context holds a session: the global env, the history of answers, and
// settings. The primitive functions live in the funcs package and are
// installed with the Builtins option.
package calc
