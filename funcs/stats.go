package funcs

import (
	"math/big"

	"github.com/zephyrtronium/calc"
)

// stats is the stats module: summaries of lists of numbers.
func stats() map[string]any {
	return map[string]any{
		"mean":   calc.NewBuiltin("mean", -1, mean),
		"median": calc.NewBuiltin("median", -1, median),
		"var":    calc.NewBuiltin("var", -1, variance),
		"std": calc.NewBuiltin("std", -1, func(args ...any) (any, error) {
			v, err := variance(args...)
			if err != nil {
				return nil, err
			}
			return sqrt(v)
		}),
	}
}

func sample(name string, args []any) (calc.List, error) {
	l, err := spread(args)
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, &calc.ValueError{Msg: name + " of nothing"}
	}
	return l, nil
}

func mean(args ...any) (any, error) {
	l, err := sample("mean", args)
	if err != nil {
		return nil, err
	}
	s, err := fold("mean", "+", 0)(l)
	if err != nil {
		return nil, err
	}
	return op("/", s, big.NewInt(int64(len(l))))
}

// median is the middle item of the sorted sample, or the mean of the two
// middle items.
func median(args ...any) (any, error) {
	l, err := sample("median", args)
	if err != nil {
		return nil, err
	}
	r, err := sortList(l)
	if err != nil {
		return nil, err
	}
	s := r.(calc.List)
	k := len(s) / 2
	if len(s)%2 == 1 {
		return s[k], nil
	}
	return mean(s[k-1], s[k])
}

// variance is the population variance.
func variance(args ...any) (any, error) {
	l, err := sample("var", args)
	if err != nil {
		return nil, err
	}
	m, err := mean(l)
	if err != nil {
		return nil, err
	}
	sq := make(calc.List, len(l))
	for i, x := range l {
		d, err := op("-", x, m)
		if err != nil {
			return nil, err
		}
		if sq[i], err = op("*", d, d); err != nil {
			return nil, err
		}
	}
	return mean(sq)
}
