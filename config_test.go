package calc_test

import (
	"strings"
	"testing"

	"github.com/zephyrtronium/calc"
)

func TestLoadConfig(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want calc.Config
	}{
		{"empty", "", calc.DefaultConfig()},
		{"precision", "precision: 30\n", calc.Config{Precision: 30, Tolerance: 1e-12}},
		{"all", "precision: 10\ntolerance: 0.001\nsymbolic: true\ndebug: true\n", calc.Config{Precision: 10, Tolerance: 0.001, Symbolic: true, Debug: true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := calc.LoadConfig(strings.NewReader(c.src))
			if err != nil {
				t.Fatal(err)
			}
			if cfg != c.want {
				t.Errorf("want %+v, got %+v", c.want, cfg)
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unknown", "colour: blue\n"},
		{"zero-precision", "precision: 0\n"},
		{"negative-tolerance", "tolerance: -1\n"},
		{"type", "precision: lots\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := calc.LoadConfig(strings.NewReader(c.src))
			if err == nil {
				t.Errorf("loaded %+v", cfg)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	s := calc.DefaultConfig().String()
	for _, want := range []string{"precision: 18", "symbolic: false"} {
		if !strings.Contains(s, want) {
			t.Errorf("%q does not contain %q", s, want)
		}
	}
	cfg, err := calc.LoadConfig(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != calc.DefaultConfig() {
		t.Errorf("round trip gave %+v", cfg)
	}
}

func TestConfigure(t *testing.T) {
	cfg := calc.DefaultConfig()
	cfg.Precision = 4
	ctx := calc.NewContext(calc.Configure(cfg))
	r := execAll(t, ctx, "2/3.0")
	if got := ctx.Format(r.Value); got != "0.6667" {
		t.Errorf("want 0.6667, got %s", got)
	}
	if got := calc.NewContext(calc.Prec(7)).Config().Precision; got != 7 {
		t.Errorf("Prec option: want 7, got %d", got)
	}
}
