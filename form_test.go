package calc

import (
	"errors"
	"testing"
)

func TestFormExitRestoresNames(t *testing.T) {
	quit := NewBuiltin("quit", 1, func(args ...any) (any, error) {
		panic(exitSignal{})
	})
	ctx := NewContext(Builtins(map[string]any{"quit": quit}))
	r, err := ctx.Exec("quit(1) x = 2")
	if err != nil {
		t.Fatalf("exit during form construction failed: %v", err)
	}
	if !r.Exit {
		t.Fatal("exit during form construction was lost")
	}
	if ctx.symbolic != 0 {
		t.Errorf("symbolic depth left at %d", ctx.symbolic)
	}
	var ne *NameError
	if _, err := ctx.Exec("y"); !errors.As(err, &ne) {
		t.Errorf("unbound name after exit: want name error, got %v", err)
	}
}
