package calc_test

import (
	"fmt"
	"math/big"

	"github.com/zephyrtronium/calc"
)

func ExampleContext_Exec() {
	ctx := calc.NewContext(calc.SetVar("x", big.NewInt(3)))
	for _, src := range []string{"2 x + 1", "(h, t..) = [1, 2, 3]", "t", "[y for y in 1..3..7]"} {
		r, err := ctx.Exec(src)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(ctx.Format(r.Value))
	}

	// Output:
	// 7
	// [1, 2, 3]
	// [2, 3]
	// [1, 3, 5, 7]
}

func ExampleContext_Exec_algebraic() {
	ctx := calc.NewContext()
	ctx.Exec("2 x + 1 = 7")
	r, _ := ctx.Exec("x")
	fmt.Println(ctx.Format(r.Value))

	// Output:
	// 3
}
