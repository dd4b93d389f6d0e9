// Package export writes plans and their financials in machine and human
// readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadplan/core/constraint"
	"github.com/kilianp07/loadplan/core/evaluator"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/solver"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
	FormatHTML  = "html"
)

// Formats lists every format accepted by Write.
var Formats = []string{FormatTable, FormatJSON, FormatYAML, FormatCSV, FormatHTML}

// PlanPeriod is one row of an exported plan.
type PlanPeriod struct {
	Period  int                 `json:"period" yaml:"period"`
	Label   string              `json:"label" yaml:"label"`
	Loading model.LoadingVector `json:"loading" yaml:"loading"`
	Output  float64             `json:"output" yaml:"output"`
	Demand  float64             `json:"demand" yaml:"demand"`
	Lower   float64             `json:"lower" yaml:"lower"`
	Upper   float64             `json:"upper" yaml:"upper"`
	InBand  bool                `json:"in_band" yaml:"in_band"`
}

// Plan is the exported view of one solver run.
type Plan struct {
	Method      string            `json:"method" yaml:"method"`
	Status      string            `json:"status" yaml:"status"`
	Nodes       []string          `json:"nodes" yaml:"nodes"`
	OutOfBand   []int             `json:"out_of_band,omitempty" yaml:"out_of_band,omitempty"`
	TotalRamp   int               `json:"total_ramp" yaml:"total_ramp"`
	Evaluations int               `json:"evaluations,omitempty" yaml:"evaluations,omitempty"`
	Iterations  int               `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Periods     []PlanPeriod      `json:"periods" yaml:"periods"`
	Violations  []string          `json:"violations,omitempty" yaml:"violations,omitempty"`
	Financials  *evaluator.Report `json:"financials,omitempty" yaml:"financials,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewPlan builds the exported view of res. fin may be nil.
func NewPlan(s *model.Scenario, res solver.Result, fin *evaluator.Report) Plan {
	p := Plan{
		Method:      res.Method,
		Status:      string(res.Status),
		Nodes:       s.NodeIDs(),
		OutOfBand:   res.OutOfBand,
		TotalRamp:   res.TotalRamp,
		Evaluations: res.Evaluations,
		Iterations:  res.Iterations,
		Financials:  fin,
	}
	for _, st := range res.Periods {
		per := s.Periods[st.Period]
		p.Periods = append(p.Periods, PlanPeriod{
			Period:  st.Period,
			Label:   per.Label,
			Loading: res.Plan[st.Period],
			Output:  st.Output,
			Demand:  per.Demand,
			Lower:   per.Lower(),
			Upper:   per.Upper(),
			InBand:  st.InBand,
		})
	}
	for _, v := range constraint.Violations(s, res.Plan) {
		p.Violations = append(p.Violations, v.String())
	}
	return p
}

// FailedPlan is the exported view of a run that produced no plan.
func FailedPlan(method string, err error) Plan {
	return Plan{Method: method, Status: "error", Error: err.Error()}
}

// Write dispatches on format.
func Write(w io.Writer, format string, plans []Plan) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, plans)
	case FormatJSON:
		return WriteJSON(w, plans)
	case FormatYAML:
		return WriteYAML(w, plans)
	case FormatCSV:
		return WriteCSV(w, plans)
	case FormatHTML:
		return WriteChartHTML(w, plans)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// WriteJSON writes the plans to w as an indented JSON array.
func WriteJSON(w io.Writer, plans []Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plans)
}

// WriteYAML writes the plans to w as a YAML sequence.
func WriteYAML(w io.Writer, plans []Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plans); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes one row per method and period with a column per node.
// Plans of the same export share the scenario, so the node columns of the
// first successful plan are used.
func WriteCSV(w io.Writer, plans []Plan) error {
	var nodes []string
	for _, p := range plans {
		if len(p.Nodes) > 0 {
			nodes = p.Nodes
			break
		}
	}
	cw := csv.NewWriter(w)
	header := []string{"method", "period", "label"}
	header = append(header, nodes...)
	header = append(header, "output", "demand", "in_band", "revenue", "capex")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range plans {
		for _, pp := range p.Periods {
			rec := []string{p.Method, strconv.Itoa(pp.Period), pp.Label}
			for _, n := range nodes {
				rec = append(rec, strconv.Itoa(pp.Loading[n]))
			}
			revenue, capex := "", ""
			if p.Financials != nil && pp.Period < len(p.Financials.Periods) {
				fp := p.Financials.Periods[pp.Period]
				revenue = formatFloat(fp.Revenue)
				capex = formatFloat(fp.Capex)
			}
			rec = append(rec,
				formatFloat(pp.Output),
				formatFloat(pp.Demand),
				strconv.FormatBool(pp.InBand),
				revenue,
				capex,
			)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
