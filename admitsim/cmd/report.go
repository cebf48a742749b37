package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/admitsim/datarecording"
	"github.com/sarchlab/admitsim/tracing"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a recorded run.",
	Long: "`report --db FILE.sqlite3` prints the lifetime of every completed " +
		"process and the summary of the run.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("db")

		reader, err := datarecording.NewReader(path)
		if err != nil {
			return err
		}
		defer reader.Close()

		return report(cmd.Context(), reader, cmd.OutOrStdout())
	},
}

func init() {
	reportCmd.Flags().String("db", "", "database written by the run command")
	_ = reportCmd.MarkFlagRequired("db")

	rootCmd.AddCommand(reportCmd)
}

func report(
	ctx context.Context,
	reader datarecording.DataReader,
	out io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader.MapTable(tracing.LifetimeTable, tracing.LifetimeEntry{})
	reader.MapTable(tracing.SummaryTable, tracing.SummaryEntry{})

	lifetimes, _, err := reader.Query(ctx, tracing.LifetimeTable,
		datarecording.QueryParams{OrderBy: "Completed, PID"})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PID\tArrival\tAdmitted\tCompleted\tSize\tDuration\t"+
		"Turnaround\t")

	var totalTurnaround uint64

	for _, l := range lifetimes {
		e := l.(*tracing.LifetimeEntry)
		totalTurnaround += e.Turnaround
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
			e.PID, e.Arrival, e.Admitted, e.Completed,
			e.Size, e.Duration, e.Turnaround)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if len(lifetimes) > 0 {
		fmt.Fprintf(out, "average turnaround: %.2f\n",
			float64(totalTurnaround)/float64(len(lifetimes)))
	}

	summaries, _, err := reader.Query(ctx, tracing.SummaryTable,
		datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, s := range summaries {
		e := s.(*tracing.SummaryEntry)
		fmt.Fprintf(out,
			"run %s: end time %d, admitted %d, blocked %d, completed %d\n",
			e.RunID, e.EndTime, e.Admitted, e.Blocked, e.Completed)
	}

	return nil
}
