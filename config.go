package calc

import (
	"errors"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of a context.
type Config struct {
	// Precision is the number of significant decimal digits of reals.
	Precision int `yaml:"precision"`
	// Tolerance is the largest difference between inexact numbers that the
	// equation solver treats as equality.
	Tolerance float64 `yaml:"tolerance"`
	// Symbolic makes unbound names evaluate to symbols instead of failing.
	Symbolic bool `yaml:"symbolic"`
	// Debug logs closure calls.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{Precision: 18, Tolerance: 1e-12}
}

// LoadConfig reads settings in YAML. Settings absent from the input keep
// their default values. Unknown settings are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Precision <= 0 {
		return valueErr("precision must be positive")
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return valueErr("tolerance must be non-negative")
	}
	return nil
}

// bits is the binary precision needed for the configured decimal digits.
func (c Config) bits() uint {
	return uint(math.Ceil(float64(c.Precision)*math.Log2(10))) + 8
}

// set changes one setting by name.
func (c *Config) set(name string, v any) error {
	n := *c
	switch name {
	case "precision", "digits":
		k, ok := Int64(v)
		if !ok {
			return typeErr("precision must be an integer")
		}
		n.Precision = int(k)
	case "tolerance":
		f, ok := Float64(v)
		if !ok {
			return typeErr("tolerance must be a real number")
		}
		n.Tolerance = f
	case "symbolic":
		b, ok := v.(bool)
		if !ok {
			return typeErr("symbolic must be a boolean")
		}
		n.Symbolic = b
	case "debug":
		b, ok := v.(bool)
		if !ok {
			return typeErr("debug must be a boolean")
		}
		n.Debug = b
	default:
		return &NameError{Name: name}
	}
	if err := n.validate(); err != nil {
		return err
	}
	*c = n
	return nil
}

// get returns one setting by name.
func (c *Config) get(name string) (any, error) {
	switch name {
	case "precision", "digits":
		return intOf(int64(c.Precision)), nil
	case "tolerance":
		return floatOf(c.Tolerance), nil
	case "symbolic":
		return c.Symbolic, nil
	case "debug":
		return c.Debug, nil
	}
	return nil, &NameError{Name: name}
}

// String formats the settings as YAML.
func (c Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		panic("calc: marshaling config: " + err.Error())
	}
	return string(b)
}
