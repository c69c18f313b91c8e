package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/appraisal-cli/internal/analyzer"
)

var (
	analyzeJSON  bool
	analyzeDebug bool
	analyzeSave  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <domain>",
	Short: "Appraise a single domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}

		onStage := func(st analyzer.Stage) {
			if !analyzeJSON {
				fmt.Fprintf(os.Stderr, "  %s done\n", st)
			}
		}

		result, err := a.Analyze(ctx, args[0], onStage)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if analyzeSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run, err := st.CreateRun(ctx, result.Domain)
			if err != nil {
				return eris.Wrap(err, "create run")
			}
			if err := st.CompleteRun(ctx, run.ID, result); err != nil {
				return eris.Wrap(err, "complete run")
			}
			zap.L().Info("run saved", zap.String("run_id", run.ID))
		}

		if !analyzeDebug {
			result.Debug = nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "suppress progress output, emit JSON only")
	analyzeCmd.Flags().BoolVar(&analyzeDebug, "debug", false, "include per-stage timing and fallback info")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "record the run in the store")
	rootCmd.AddCommand(analyzeCmd)
}
