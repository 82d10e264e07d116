package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	runtimesvc "github.com/lexcodex/remedy/internal/remedy/runtime"
)

// newHistoryCmd queries the run-history database.
func newHistoryCmd() *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtimesvc.Runtime) error {
				if runID != "" {
					outcomes, err := rt.Store.Outcomes(runID)
					if err != nil {
						return err
					}
					if len(outcomes) == 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "No outcomes recorded for run %s.\n", runID)
						return nil
					}
					for _, out := range outcomes {
						status := "rejected"
						if out.Accepted {
							status = "accepted"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%d attempts) %s\n",
							status, out.IssueType, out.FilePath, out.Attempts, out.Detail)
					}
					return nil
				}

				runs, err := rt.Store.RecentRuns(limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
					return nil
				}
				for _, run := range runs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  issues=%d fixed=%d rejected=%d\n",
						run.StartedAt.Format("2006-01-02 15:04:05"), run.ID, run.Issues, run.Fixed, run.Rejected)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-issue outcomes for one run")
	return cmd
}
