// Package evaluator prices a loading plan: tool requirements per workstation,
// the capital spent to add tools, and the revenue of the planned output.
package evaluator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/loadplan/core/logger"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/production"
)

// PeriodReport is the financial view of one period. Money is in millions.
type PeriodReport struct {
	Period  int                 `json:"period" yaml:"period"`
	Label   string              `json:"label" yaml:"label"`
	Loading model.LoadingVector `json:"loading" yaml:"loading"`
	Tools   map[string]int      `json:"tools" yaml:"tools"`
	Output  float64             `json:"output" yaml:"output"`
	Revenue float64             `json:"revenue" yaml:"revenue"`
	Capex   float64             `json:"capex" yaml:"capex"`
	Net     float64             `json:"net" yaml:"net"`
}

// Report aggregates the per-period reports of a plan.
type Report struct {
	Periods []PeriodReport `json:"periods" yaml:"periods"`
	Revenue float64        `json:"revenue" yaml:"revenue"`
	Capex   float64        `json:"capex" yaml:"capex"`
	Net     float64        `json:"net" yaml:"net"`
}

// Evaluator prices plans against a fixed set of tables.
type Evaluator struct {
	tables Tables
	log    logger.Logger
}

// New validates the tables and returns an evaluator. A nil logger discards
// output.
func New(t Tables, log logger.Logger) (*Evaluator, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Evaluator{tables: t, log: log}, nil
}

// Tables returns the workstation tables in use.
func (e *Evaluator) Tables() Tables { return e.tables }

// Evaluate prices plan for scenario s. Capex only counts tool additions; the
// baseline of each period is the requirement of the period before, starting
// from the initial tool inventory.
func (e *Evaluator) Evaluate(s *model.Scenario, plan model.LoadingPlan) (Report, error) {
	if err := s.Validate(); err != nil {
		return Report{}, err
	}
	if err := e.tables.Covers(s); err != nil {
		return Report{}, err
	}
	if err := plan.Validate(s); err != nil {
		return Report{}, err
	}

	current := make(map[string]int, len(e.tables.Workstations))
	for _, w := range e.tables.Workstations {
		current[w.ID] = w.InitialTools
	}
	rep := Report{Periods: make([]PeriodReport, 0, len(plan))}
	revenue := make([]float64, 0, len(plan))
	capex := make([]float64, 0, len(plan))
	for p, v := range plan {
		tools := e.ToolsNeeded(s, v)
		var spend float64
		for _, w := range e.tables.Workstations {
			if tools[w.ID] >= current[w.ID] {
				spend += float64(tools[w.ID]-current[w.ID]) * w.CapexPerTool
			}
		}
		out := production.Output(s, v, p)
		rev := out * s.OutputScale * e.tables.MarginPerUnit / 1e6
		rep.Periods = append(rep.Periods, PeriodReport{
			Period:  p,
			Label:   s.Periods[p].Label,
			Loading: v.Clone(),
			Tools:   tools,
			Output:  out,
			Revenue: rev,
			Capex:   spend,
			Net:     rev - spend,
		})
		revenue = append(revenue, rev)
		capex = append(capex, spend)
		current = tools
	}
	rep.Revenue = floats.Sum(revenue)
	rep.Capex = floats.Sum(capex)
	rep.Net = rep.Revenue - rep.Capex
	e.log.Debugf("evaluator: revenue %.1f capex %.1f net %.1f", rep.Revenue, rep.Capex, rep.Net)
	return rep, nil
}

// ToolsNeeded returns the whole number of tools each workstation needs to run
// v for a week at its utilization.
func (e *Evaluator) ToolsNeeded(s *model.Scenario, v model.LoadingVector) map[string]int {
	tools := make(map[string]int, len(e.tables.Workstations))
	for _, w := range e.tables.Workstations {
		var minutes float64
		for _, n := range s.Nodes {
			if m := e.tables.MinuteLoad[n.ID][w.ID]; m > 0 {
				minutes += float64(v[n.ID]) * m
			}
		}
		tools[w.ID] = int(math.Ceil(minutes / (e.tables.MinutesPerWeek * w.Utilization)))
	}
	return tools
}
