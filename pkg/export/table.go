package export

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
)

// WriteTable prints, per plan, the loading table and, when priced, the
// financial and tool tables.
func WriteTable(w io.Writer, plans []Plan) error {
	for i, p := range plans {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writePlanTable(w, p); err != nil {
			return err
		}
	}
	return nil
}

func writePlanTable(w io.Writer, p Plan) error {
	if p.Error != "" {
		_, err := fmt.Fprintf(w, "%s: no plan: %s\n", p.Method, p.Error)
		return err
	}
	fmt.Fprintf(w, "%s: %s, total ramp %d", p.Method, p.Status, p.TotalRamp)
	if len(p.OutOfBand) > 0 {
		fmt.Fprintf(w, ", out of band %v", p.OutOfBand)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "period\t%s\toutput\tdemand\tband\t\n", strings.Join(p.Nodes, "\t"))
	for _, pp := range p.Periods {
		loads := make([]string, len(p.Nodes))
		for i, n := range p.Nodes {
			loads[i] = fmt.Sprint(pp.Loading[n])
		}
		band := "ok"
		if !pp.InBand {
			band = "miss"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.1f\t%s\t\n", pp.Label, strings.Join(loads, "\t"), pp.Output, pp.Demand, band)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, v := range p.Violations {
		fmt.Fprintf(w, "  ! %s\n", v)
	}
	if p.Financials == nil {
		return nil
	}
	return writeFinancials(w, p)
}

func writeFinancials(w io.Writer, p Plan) error {
	f := p.Financials
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "period\toutput\trevenue $M\tcapex $M\tnet $M\t\n")
	for _, fp := range f.Periods {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\t%.1f\t\n", fp.Label, fp.Output, fp.Revenue, fp.Capex, fp.Net)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(f.Periods) > 0 {
		fmt.Fprintln(w)
		ws := toolColumns(f.Periods[0].Tools)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "tools\t%s\t\n", strings.Join(ws, "\t"))
		for _, fp := range f.Periods {
			counts := make([]string, len(ws))
			for i, id := range ws {
				counts[i] = fmt.Sprint(fp.Tools[id])
			}
			fmt.Fprintf(tw, "%s\t%s\t\n", fp.Label, strings.Join(counts, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\ntotal revenue $%.1fM, capex $%.1fM, net profit $%.1fM\n", f.Revenue, f.Capex, f.Net)
	return err
}

func toolColumns(tools map[string]int) []string {
	return slices.Sorted(maps.Keys(tools))
}
