// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Solvers and report sinks are both built through it:
//
//	reg := factory.NewRegistry[solver.Solver]()
//	reg.Register("exhaustive", func(conf map[string]any) (solver.Solver, error) {
//	    c := solver.DefaultExhaustiveConfig()
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return solver.NewExhaustive(c)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "exhaustive", Conf: map[string]any{"radius": 1000}})
package factory
