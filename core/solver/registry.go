package solver

import (
	"fmt"

	"github.com/kilianp07/loadplan/core/factory"
)

// Config selects the default method and holds the per-method settings.
type Config struct {
	Method     string           `json:"method"`
	Exhaustive ExhaustiveConfig `json:"exhaustive"`
	Greedy     GreedyConfig     `json:"greedy"`
	LP         LPConfig         `json:"lp"`
}

// DefaultConfig uses the exhaustive search with its default grid.
func DefaultConfig() Config {
	return Config{
		Method:     MethodExhaustive,
		Exhaustive: DefaultExhaustiveConfig(),
		Greedy:     DefaultGreedyConfig(),
		LP:         DefaultLPConfig(),
	}
}

// SetDefaults fills zero-valued settings.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.Method == "" {
		c.Method = d.Method
	}
	if c.Exhaustive.Step == 0 && c.Exhaustive.Radius == 0 {
		c.Exhaustive = d.Exhaustive
	}
	if c.LP.Tolerance == 0 {
		c.LP.Tolerance = d.LP.Tolerance
	}
}

// Validate checks the method name and every per-method block.
func (c Config) Validate() error {
	known := false
	for _, m := range Methods {
		known = known || m == c.Method
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, c.Method)
	}
	if err := c.Exhaustive.Validate(); err != nil {
		return err
	}
	if err := c.Greedy.Validate(); err != nil {
		return err
	}
	return c.LP.Validate()
}

// Registry creates solvers by method name. Raw settings passed to New are
// decoded over the configured defaults of that method.
type Registry struct {
	reg *factory.Registry[Solver]
}

// NewRegistry registers the built-in methods using cfg as their defaults.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	r := &Registry{reg: factory.NewRegistry[Solver]()}
	r.mustRegister(MethodExhaustive, func(conf map[string]any) (Solver, error) {
		c := cfg.Exhaustive
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewExhaustive(c, opts...)
	})
	r.mustRegister(MethodGreedy, func(conf map[string]any) (Solver, error) {
		c := cfg.Greedy
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewGreedy(c, opts...)
	})
	for _, v := range []Variant{VariantBand, VariantTarget} {
		r.mustRegister("lp-"+string(v), func(conf map[string]any) (Solver, error) {
			c := cfg.LP
			if err := factory.Decode(conf, &c); err != nil {
				return nil, err
			}
			return NewLP(v, c, opts...)
		})
	}
	return r
}

func (r *Registry) mustRegister(name string, f factory.Factory[Solver]) {
	if err := r.reg.Register(name, f); err != nil {
		panic(err)
	}
}

// Register adds a custom strategy, e.g. an LP with an external backend.
func (r *Registry) Register(name string, f factory.Factory[Solver]) error {
	return r.reg.Register(name, f)
}

// New builds the solver registered under method.
func (r *Registry) New(method string, conf map[string]any) (Solver, error) {
	if !r.reg.Has(method) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return r.reg.Create(factory.ModuleConfig{Type: method, Conf: conf})
}

// Names lists registered methods in lexical order.
func (r *Registry) Names() []string { return r.reg.Names() }
