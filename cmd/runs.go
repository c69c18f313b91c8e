package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect appraisal run history",
	Long:  "Commands for listing, viewing, and pruning appraisal runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appraisal runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		domain, _ := cmd.Flags().GetString("domain")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Domain: domain,
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs prune --

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		days, _ := cmd.Flags().GetInt("older-than-days")
		if days <= 0 {
			return eris.New("runs prune: --older-than-days must be positive")
		}

		n, err := st.PruneRuns(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return eris.Wrap(err, "runs prune")
		}

		fmt.Fprintf(os.Stdout, "Pruned %d runs.\n", n)
		return nil
	},
}

func formatRunsList(w io.Writer, runs []model.AnalysisRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOMAIN\tSTATUS\tVALUE\tCREATED")
	for _, r := range runs {
		value := "-"
		if r.Result != nil {
			value = fmt.Sprintf("$%d", r.Result.EstimatedValue)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Domain, r.Status, value, r.CreatedAt.Format(time.RFC3339))
	}
	tw.Flush()
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by status (running|complete|failed)")
	runsListCmd.Flags().String("domain", "", "filter by domain")
	runsListCmd.Flags().Int("limit", 50, "max runs to list")
	runsPruneCmd.Flags().Int("older-than-days", 30, "delete runs older than this many days")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsPruneCmd)
	rootCmd.AddCommand(runsCmd)
}
