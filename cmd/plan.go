package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadplan/app"
	"github.com/kilianp07/loadplan/pkg/export"
)

var (
	planMethod    string
	planFormat    string
	planOut       string
	planOverrides []string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Solve the scenario with one method and print the plan",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planMethod, "method", "m", "", "solver method (defaults to solver.method)")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", export.FormatTable, "output format: "+strings.Join(export.Formats, ", "))
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "output file (stdout when empty)")
	planCmd.Flags().StringArrayVar(&planOverrides, "set", nil, "method setting override key=value, repeatable")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	conf, err := parseOverrides(planOverrides)
	if err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		run, err := svc.Plan(ctx, planMethod, conf)
		plan := planFor(svc, run)
		if werr := writePlans(cmd, planFormat, planOut, []export.Plan{plan}); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	})
}

func planFor(svc *app.Service, run app.Run) export.Plan {
	if run.Err != nil {
		return export.FailedPlan(run.Method, run.Err)
	}
	return export.NewPlan(svc.Scenario(), run.Result, run.Financials)
}

func writePlans(cmd *cobra.Command, format, path string, plans []export.Plan) error {
	w, closeFn, err := output(cmd, path)
	if err != nil {
		return err
	}
	return errors.Join(export.Write(w, format, plans), closeFn())
}

// parseOverrides turns key=value pairs into raw settings. Values stay
// strings; the solver registry decodes them with weak typing.
func parseOverrides(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	conf := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid override %q, want key=value", p)
		}
		conf[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return conf, nil
}
