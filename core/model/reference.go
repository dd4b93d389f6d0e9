package model

import "fmt"

// ReferenceScenario returns the built-in dataset: three memory nodes planned
// over eight quarters starting Q1'26, demand in billions of GB.
func ReferenceScenario() *Scenario {
	demand := []float64{21.8, 27.4, 34.9, 39.0, 44.7, 51.5, 52.5, 53.5}
	periods := make([]Period, len(demand))
	for i, d := range demand {
		periods[i] = Period{Label: QuarterLabel(i, 2026), Demand: d, Tolerance: 2.0}
	}
	return &Scenario{
		Nodes: []Node{
			{ID: "Node1", ThroughputPerUnit: 100000, Yield: []float64{0.98, 0.98, 0.98, 0.98, 0.98, 0.98, 0.98, 0.98}},
			{ID: "Node2", ThroughputPerUnit: 150000, Yield: []float64{0.60, 0.82, 0.95, 0.98, 0.98, 0.98, 0.98, 0.98}},
			{ID: "Node3", ThroughputPerUnit: 270000, Yield: []float64{0.20, 0.25, 0.35, 0.50, 0.65, 0.85, 0.95, 0.98}},
		},
		Periods:        periods,
		Initial:        LoadingVector{"Node1": 12000, "Node2": 5000, "Node3": 1000},
		MaxRamp:        2500,
		WeeksPerPeriod: 13,
		OutputScale:    1e9,
	}
}

// QuarterLabel formats the i-th quarter after Q1 of startYear, e.g. Q3'26.
func QuarterLabel(i, startYear int) string {
	return fmt.Sprintf("Q%d'%02d", i%4+1, (startYear+i/4)%100)
}
