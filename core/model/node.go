package model

// Node is a process technology that can be loaded with wafers.
type Node struct {
	ID string `json:"id" yaml:"id"`
	// ThroughputPerUnit is the output produced by one loading unit per week
	// before yield losses.
	ThroughputPerUnit float64 `json:"throughput_per_unit" yaml:"throughput_per_unit"`
	// Yield holds one efficiency multiplier in [0,1] per planning period.
	Yield []float64 `json:"yield" yaml:"yield"`
}

// YieldAt returns the node yield for the given period.
func (n Node) YieldAt(period int) float64 {
	return n.Yield[period]
}

// Period is one planning bucket with its demand forecast.
type Period struct {
	Label     string  `json:"label" yaml:"label"`
	Demand    float64 `json:"demand" yaml:"demand"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// Lower returns the lower edge of the demand band.
func (p Period) Lower() float64 { return p.Demand - p.Tolerance }

// Upper returns the upper edge of the demand band.
func (p Period) Upper() float64 { return p.Demand + p.Tolerance }
