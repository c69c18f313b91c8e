package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/appraisal-cli/internal/analyzer"
	"github.com/sells-group/appraisal-cli/internal/export"
	"github.com/sells-group/appraisal-cli/internal/model"
)

var (
	batchInput  string
	batchOutput string
	batchLimit  int
	batchSave   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Appraise a list of domains and write an XLSX report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		domains, err := readDomains(batchInput)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(domains) > batchLimit {
			domains = domains[:batchLimit]
		}
		if len(domains) == 0 {
			zap.L().Info("no domains to appraise")
			return nil
		}

		a, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}

		results, failed := processBatch(ctx, a, domains, cfg.Batch.MaxConcurrentDomains)

		if batchSave && len(results) > 0 {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			runs := make([]model.AnalysisRun, len(results))
			for i := range results {
				runs[i] = model.AnalysisRun{
					Domain: results[i].Domain,
					Status: model.RunStatusComplete,
					Result: &results[i],
				}
			}
			n, err := st.ImportRuns(ctx, runs)
			if err != nil {
				return eris.Wrap(err, "import runs")
			}
			zap.L().Info("runs saved", zap.Int("count", n))
		}

		if err := export.WriteXLSX(batchOutput, results); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int("appraised", len(results)),
			zap.Int64("failed", failed),
			zap.String("report", batchOutput),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "domains file: one per line, or an .xlsx with domains in the first column (required)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "appraisals.xlsx", "report file path")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of domains to process (0 = all)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "record completed runs in the store")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

// processBatch appraises domains concurrently. Individual failures are
// counted, not fatal: the only per-domain error is an unusable domain.
func processBatch(ctx context.Context, a *analyzer.Analyzer, domains []string, concurrency int) ([]model.DomainAnalysis, int64) {
	if concurrency <= 0 {
		concurrency = 1
	}
	zap.L().Info("processing batch",
		zap.Int("domains", len(domains)),
		zap.Int("concurrency", concurrency),
	)

	var (
		mu      sync.Mutex
		results []model.DomainAnalysis
		failed  atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, domain := range domains {
		g.Go(func() error {
			result, err := a.Analyze(gctx, domain, nil)
			if err != nil {
				failed.Add(1)
				zap.L().Error("appraisal failed", zap.String("domain", domain), zap.Error(err))
				return nil // don't abort the batch on individual failure
			}
			mu.Lock()
			results = append(results, *result)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results, failed.Load()
}

// readDomains loads the input list: an .xlsx first column, or one domain
// per line of a text file with blank lines and # comments skipped.
func readDomains(path string) ([]string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return export.ReadDomainColumn(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}
	return domains, nil
}
