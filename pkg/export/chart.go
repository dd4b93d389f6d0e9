package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChartHTML renders an HTML line chart of every plan's output against
// the demand band.
func WriteChartHTML(w io.Writer, plans []Plan) error {
	var ref *Plan
	for i := range plans {
		if len(plans[i].Periods) > 0 {
			ref = &plans[i]
			break
		}
	}
	if ref == nil {
		return fmt.Errorf("no plan to chart")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Planned output vs demand"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Period"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Output"}),
	)

	labels := make([]string, len(ref.Periods))
	demand := make([]opts.LineData, len(ref.Periods))
	lower := make([]opts.LineData, len(ref.Periods))
	upper := make([]opts.LineData, len(ref.Periods))
	for i, pp := range ref.Periods {
		labels[i] = pp.Label
		demand[i] = opts.LineData{Value: pp.Demand}
		lower[i] = opts.LineData{Value: pp.Lower}
		upper[i] = opts.LineData{Value: pp.Upper}
	}
	line.SetXAxis(labels).
		AddSeries("demand", demand).
		AddSeries("lower", lower).
		AddSeries("upper", upper)
	for _, p := range plans {
		if len(p.Periods) == 0 {
			continue
		}
		data := make([]opts.LineData, len(p.Periods))
		for i, pp := range p.Periods {
			data[i] = opts.LineData{Value: pp.Output}
		}
		line.AddSeries(p.Method, data)
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
