package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadplan/app"
	"github.com/kilianp07/loadplan/core/runlog"
)

var (
	historyMethod  string
	historyOutcome string
	historyLimit   int
	historySince   time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded solver runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyMethod, "method", "m", "", "only runs of this method")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "", "only runs with this outcome")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "most recent runs to show, 0 for all")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only runs newer than this duration")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	q := runlog.RunQuery{Method: historyMethod, Outcome: historyOutcome, Limit: historyLimit}
	if historySince > 0 {
		q.Start = time.Now().Add(-historySince)
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		recs, err := svc.History(ctx, q)
		if err != nil {
			return err
		}
		return writeHistory(cmd, recs)
	})
}

func writeHistory(cmd *cobra.Command, recs []runlog.RunRecord) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tID\tMETHOD\tOUTCOME\tRAMP\tNET $M\tDURATION")
	for _, r := range recs {
		net := "-"
		if r.Error == "" {
			net = fmt.Sprintf("%.1f", r.Net)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%.1fms\n",
			r.Timestamp.Format(time.RFC3339), r.ID, r.Method, r.Outcome, r.TotalRamp, net, r.DurationMS)
	}
	return tw.Flush()
}
