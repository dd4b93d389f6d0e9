package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceScenarioValid(t *testing.T) {
	s := ReferenceScenario()
	require.NoError(t, s.Validate())
	assert.Equal(t, []string{"Node1", "Node2", "Node3"}, s.NodeIDs())
	assert.Equal(t, "Q1'26", s.Periods[0].Label)
	assert.Equal(t, "Q4'27", s.Periods[7].Label)
	assert.InDelta(t, 25.4, s.Periods[1].Lower(), 1e-9)
	assert.InDelta(t, 29.4, s.Periods[1].Upper(), 1e-9)
}

func TestScenarioValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *Scenario)
	}{
		{"no nodes", func(s *Scenario) { s.Nodes = nil }},
		{"no periods", func(s *Scenario) { s.Periods = nil }},
		{"zero weeks", func(s *Scenario) { s.WeeksPerPeriod = 0 }},
		{"zero scale", func(s *Scenario) { s.OutputScale = 0 }},
		{"negative ramp", func(s *Scenario) { s.MaxRamp = -1 }},
		{"empty id", func(s *Scenario) { s.Nodes[0].ID = "" }},
		{"duplicate id", func(s *Scenario) { s.Nodes[1].ID = "Node1" }},
		{"zero throughput", func(s *Scenario) { s.Nodes[2].ThroughputPerUnit = 0 }},
		{"short yield", func(s *Scenario) { s.Nodes[0].Yield = s.Nodes[0].Yield[:3] }},
		{"yield above one", func(s *Scenario) { s.Nodes[1].Yield[4] = 1.2 }},
		{"negative demand", func(s *Scenario) { s.Periods[3].Demand = -1 }},
		{"zero tolerance", func(s *Scenario) { s.Periods[2].Tolerance = 0 }},
		{"negative tolerance", func(s *Scenario) { s.Periods[2].Tolerance = -2 }},
		{"missing initial node", func(s *Scenario) { delete(s.Initial, "Node3") }},
		{"unknown initial node", func(s *Scenario) { s.Initial["Node9"] = 1 }},
		{"negative initial", func(s *Scenario) { s.Initial["Node2"] = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := ReferenceScenario()
			tc.mutate(s)
			err := s.Validate()
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
		})
	}
}

func TestScenarioCloneIndependent(t *testing.T) {
	s := ReferenceScenario()
	cp := s.Clone()
	cp.Nodes[0].Yield[0] = 0.5
	cp.Initial["Node1"] = 1
	cp.Periods[0].Demand = 0

	assert.Equal(t, 0.98, s.Nodes[0].Yield[0])
	assert.Equal(t, 12000, s.Initial["Node1"])
	assert.Equal(t, 21.8, s.Periods[0].Demand)
}

func TestQuarterLabel(t *testing.T) {
	assert.Equal(t, "Q1'26", QuarterLabel(0, 2026))
	assert.Equal(t, "Q4'26", QuarterLabel(3, 2026))
	assert.Equal(t, "Q1'27", QuarterLabel(4, 2026))
	assert.Equal(t, "Q2'00", QuarterLabel(5, 2099))
}

func TestNodeLookup(t *testing.T) {
	s := ReferenceScenario()
	n, ok := s.Node("Node3")
	require.True(t, ok)
	assert.Equal(t, 0.35, n.YieldAt(2))
	_, ok = s.Node("missing")
	assert.False(t, ok)
}
