package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadplan/app"
	"github.com/kilianp07/loadplan/pkg/export"
)

var (
	compareFormat string
	compareOut    string
)

var compareCmd = &cobra.Command{
	Use:   "compare [method...]",
	Short: "Run several methods side by side (all when none given)",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", export.FormatTable, "output format")
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "", "output file (stdout when empty)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		runs, err := svc.Compare(ctx, args)
		if err != nil {
			return err
		}
		plans := make([]export.Plan, len(runs))
		for i, r := range runs {
			plans[i] = planFor(svc, r)
		}
		return writePlans(cmd, compareFormat, compareOut, plans)
	})
}
