package solver

import (
	"fmt"

	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/production"
)

// Variant selects how the production rows are written.
type Variant string

const (
	// VariantBand keeps output inside the demand band and flags loads as
	// integer, the mixed-integer formulation.
	VariantBand Variant = "band"
	// VariantTarget pins output to the demand forecast with continuous loads.
	VariantTarget Variant = "target"
)

// VarKind tells load variables from the auxiliary ramp variables.
type VarKind int

const (
	VarLoad VarKind = iota
	VarDiff
)

// Variable is one decision variable, bounded below by zero.
type Variable struct {
	Name    string
	Kind    VarKind
	Node    string
	Period  int
	Integer bool
}

// Sense is the direction of a linear constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	}
	return "=="
}

// Term is a coefficient applied to a variable index.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is Σ terms <sense> RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is the declarative form of the planning problem: minimise the
// objective subject to every constraint, all variables non-negative.
type Model struct {
	Variant     Variant
	Variables   []Variable
	Constraints []Constraint
	Objective   []Term

	loads map[loadKey]int
}

type loadKey struct {
	node   string
	period int
}

// LoadVar returns the index of load[node, period].
func (m *Model) LoadVar(node string, period int) (int, bool) {
	i, ok := m.loads[loadKey{node, period}]
	return i, ok
}

// ObjectiveValue evaluates the objective at x.
func (m *Model) ObjectiveValue(x []float64) float64 {
	var v float64
	for _, t := range m.Objective {
		v += t.Coef * x[t.Var]
	}
	return v
}

// Violated returns the names of constraints x breaks by more than tol.
func (m *Model) Violated(x []float64, tol float64) []string {
	var names []string
	for _, c := range m.Constraints {
		var lhs float64
		for _, t := range c.Terms {
			lhs += t.Coef * x[t.Var]
		}
		bad := false
		switch c.Sense {
		case LessEq:
			bad = lhs > c.RHS+tol
		case GreaterEq:
			bad = lhs < c.RHS-tol
		case Equal:
			bad = lhs > c.RHS+tol || lhs < c.RHS-tol
		}
		if bad {
			names = append(names, c.Name)
		}
	}
	return names
}

func (m *Model) addVar(v Variable) int {
	m.Variables = append(m.Variables, v)
	return len(m.Variables) - 1
}

func (m *Model) add(name string, sense Sense, rhs float64, terms ...Term) {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// BuildModel writes the scenario as a linear model. For VariantBand the band
// is narrowed by margin on both sides when it stays non-empty, leaving room
// to round loads to integers afterwards.
func BuildModel(s *model.Scenario, variant Variant, margin float64) (*Model, error) {
	if variant != VariantBand && variant != VariantTarget {
		return nil, fmt.Errorf("unknown model variant %q", variant)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m := &Model{Variant: variant, loads: make(map[loadKey]int)}
	for p := range s.Periods {
		for _, n := range s.Nodes {
			i := m.addVar(Variable{
				Name:    fmt.Sprintf("load_%s_%d", n.ID, p),
				Kind:    VarLoad,
				Node:    n.ID,
				Period:  p,
				Integer: variant == VariantBand,
			})
			m.loads[loadKey{n.ID, p}] = i
		}
	}

	ramp := float64(s.MaxRamp)
	for _, n := range s.Nodes {
		x0 := m.loads[loadKey{n.ID, 0}]
		m.add("pin_"+n.ID, Equal, float64(s.Initial[n.ID]), Term{x0, 1})
	}
	for p := 1; p < len(s.Periods); p++ {
		for _, n := range s.Nodes {
			cur, prev := m.loads[loadKey{n.ID, p}], m.loads[loadKey{n.ID, p - 1}]
			d := m.addVar(Variable{Name: fmt.Sprintf("diff_%s_%d", n.ID, p), Kind: VarDiff, Node: n.ID, Period: p})
			m.add(fmt.Sprintf("ramp_up_%s_%d", n.ID, p), LessEq, ramp, Term{cur, 1}, Term{prev, -1})
			m.add(fmt.Sprintf("ramp_down_%s_%d", n.ID, p), LessEq, ramp, Term{prev, 1}, Term{cur, -1})
			m.add(fmt.Sprintf("abs_pos_%s_%d", n.ID, p), GreaterEq, 0, Term{d, 1}, Term{cur, -1}, Term{prev, 1})
			m.add(fmt.Sprintf("abs_neg_%s_%d", n.ID, p), GreaterEq, 0, Term{d, 1}, Term{prev, -1}, Term{cur, 1})
			m.Objective = append(m.Objective, Term{d, 1})
		}

		terms := make([]Term, 0, len(s.Nodes))
		for _, n := range s.Nodes {
			terms = append(terms, Term{m.loads[loadKey{n.ID, p}], production.UnitContribution(s, n, p)})
		}
		per := s.Periods[p]
		if variant == VariantTarget {
			m.add(fmt.Sprintf("production_%d", p), Equal, per.Demand, terms...)
			continue
		}
		lo, hi := per.Lower(), per.Upper()
		if lo+margin <= hi-margin {
			lo, hi = lo+margin, hi-margin
		}
		m.add(fmt.Sprintf("production_lo_%d", p), GreaterEq, lo, terms...)
		m.add(fmt.Sprintf("production_hi_%d", p), LessEq, hi, terms...)
	}
	return m, nil
}

// roundingMargin bounds how much output truncating every load of a period
// can remove, with a factor two of headroom.
func roundingMargin(s *model.Scenario) float64 {
	var worst float64
	for p := range s.Periods {
		var sum float64
		for _, n := range s.Nodes {
			sum += production.UnitContribution(s, n, p)
		}
		worst = max(worst, sum)
	}
	return 2 * worst
}
