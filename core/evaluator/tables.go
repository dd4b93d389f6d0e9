package evaluator

import (
	"fmt"

	"github.com/kilianp07/loadplan/core/model"
)

// Workstation is one tool group of the fab.
type Workstation struct {
	ID           string  `json:"id" yaml:"id"`
	InitialTools int     `json:"initial_tools" yaml:"initial_tools"`
	Utilization  float64 `json:"utilization" yaml:"utilization"`
	// CapexPerTool is expressed in millions of dollars.
	CapexPerTool float64 `json:"capex_per_tool" yaml:"capex_per_tool"`
}

// Tables holds the cost model used to price a plan.
type Tables struct {
	Workstations []Workstation `json:"workstations" yaml:"workstations"`
	// MinuteLoad[node][workstation] is the tool time one loading unit takes
	// per week.
	MinuteLoad map[string]map[string]float64 `json:"minute_load" yaml:"minute_load"`
	// MarginPerUnit is the contribution margin in dollars per unscaled unit
	// of output.
	MarginPerUnit  float64 `json:"margin_per_unit" yaml:"margin_per_unit"`
	MinutesPerWeek float64 `json:"minutes_per_week" yaml:"minutes_per_week"`
}

// ReferenceTables returns the tool tables matching model.ReferenceScenario.
func ReferenceTables() Tables {
	return Tables{
		Workstations: []Workstation{
			{ID: "A", InitialTools: 10, Utilization: 0.78, CapexPerTool: 3.0},
			{ID: "B", InitialTools: 18, Utilization: 0.76, CapexPerTool: 6.0},
			{ID: "C", InitialTools: 5, Utilization: 0.80, CapexPerTool: 2.2},
			{ID: "D", InitialTools: 11, Utilization: 0.80, CapexPerTool: 3.0},
			{ID: "E", InitialTools: 15, Utilization: 0.76, CapexPerTool: 3.5},
			{ID: "F", InitialTools: 2, Utilization: 0.80, CapexPerTool: 6.0},
			{ID: "G", InitialTools: 23, Utilization: 0.70, CapexPerTool: 2.1},
			{ID: "H", InitialTools: 3, Utilization: 0.85, CapexPerTool: 1.8},
			{ID: "I", InitialTools: 4, Utilization: 0.75, CapexPerTool: 3.0},
			{ID: "J", InitialTools: 1, Utilization: 0.60, CapexPerTool: 8.0},
		},
		MinuteLoad: map[string]map[string]float64{
			"Node1": {"A": 4.0, "B": 6.0, "C": 2.0, "D": 5.0, "E": 5.0, "G": 12.0, "H": 2.1},
			"Node2": {"A": 4.0, "B": 9.0, "C": 2.0, "D": 5.0, "E": 10, "F": 1.8, "I": 6.0},
			"Node3": {"A": 4.0, "B": 15.0, "C": 5.4, "F": 5.8, "G": 16.0, "J": 2.1},
		},
		MarginPerUnit:  0.002,
		MinutesPerWeek: 7 * 24 * 60,
	}
}

// SetDefaults fills an empty table set with the reference tables and a zero
// week length with seven days of minutes.
func (t *Tables) SetDefaults() {
	if len(t.Workstations) == 0 && len(t.MinuteLoad) == 0 {
		*t = ReferenceTables()
		return
	}
	if t.MinutesPerWeek == 0 {
		t.MinutesPerWeek = 7 * 24 * 60
	}
}

// Validate checks the tables on their own.
func (t Tables) Validate() error {
	if len(t.Workstations) == 0 {
		return fmt.Errorf("%w: no workstations", model.ErrMalformedInput)
	}
	if t.MinutesPerWeek <= 0 {
		return fmt.Errorf("%w: minutes_per_week must be > 0", model.ErrMalformedInput)
	}
	if t.MarginPerUnit < 0 {
		return fmt.Errorf("%w: margin_per_unit must be >= 0", model.ErrMalformedInput)
	}
	known := make(map[string]struct{}, len(t.Workstations))
	for _, w := range t.Workstations {
		if w.ID == "" {
			return fmt.Errorf("%w: workstation without id", model.ErrMalformedInput)
		}
		if _, dup := known[w.ID]; dup {
			return fmt.Errorf("%w: duplicate workstation %s", model.ErrMalformedInput, w.ID)
		}
		known[w.ID] = struct{}{}
		if w.Utilization <= 0 || w.Utilization > 1 {
			return fmt.Errorf("%w: workstation %s utilization %v outside (0,1]", model.ErrMalformedInput, w.ID, w.Utilization)
		}
		if w.InitialTools < 0 || w.CapexPerTool < 0 {
			return fmt.Errorf("%w: workstation %s has negative tools or capex", model.ErrMalformedInput, w.ID)
		}
	}
	for node, loads := range t.MinuteLoad {
		for ws, m := range loads {
			if _, ok := known[ws]; !ok {
				return fmt.Errorf("%w: node %s loads unknown workstation %s", model.ErrMalformedInput, node, ws)
			}
			if m < 0 {
				return fmt.Errorf("%w: node %s minute load on %s is negative", model.ErrMalformedInput, node, ws)
			}
		}
	}
	return nil
}

// Covers reports an error when a scenario node has no minute-load row.
func (t Tables) Covers(s *model.Scenario) error {
	for _, n := range s.Nodes {
		if _, ok := t.MinuteLoad[n.ID]; !ok {
			return fmt.Errorf("%w: no minute load for node %s", model.ErrMalformedInput, n.ID)
		}
	}
	return nil
}
