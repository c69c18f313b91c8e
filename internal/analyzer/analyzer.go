package analyzer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/appraisal-cli/internal/model"
)

// ErrEmptyDomain is returned when Analyze is called without a usable domain.
var ErrEmptyDomain = eris.New("analyzer: domain is required")

// Analyzer coordinates the appraisal stages for a domain. One analyzer may
// serve many concurrent Analyze calls; identical in-flight stage work is
// shared through its runner.
type Analyzer struct {
	whois    WhoisProvider
	traffic  TrafficProvider
	keywords KeywordProvider
	speed    SpeedProvider
	valuer   Valuer
	runner   *Runner
	tiers    TierTable
}

// New creates an analyzer over the given stage providers.
func New(w WhoisProvider, t TrafficProvider, k KeywordProvider, s SpeedProvider, v Valuer, runnerCfg RunnerConfig, tiers TierTable) *Analyzer {
	if len(tiers.High) == 0 && len(tiers.Medium) == 0 {
		tiers = DefaultTiers()
	}
	return &Analyzer{
		whois:    w,
		traffic:  t,
		keywords: k,
		speed:    s,
		valuer:   v,
		runner:   NewRunner(runnerCfg),
		tiers:    tiers,
	}
}

// Normalize reduces a raw domain input to a bare lowercase hostname:
// scheme, leading www., path, query and port are stripped.
func Normalize(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range []string{"https://", "http://"} {
		d = strings.TrimPrefix(d, prefix)
	}
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, ".")
}

// Analyze runs the full appraisal for a domain. The four independent stages
// run concurrently; valuation starts only after all four have settled.
// onStage, if non-nil, is invoked exactly once per stage in settlement
// order, valuation last. Analyze fails only for an empty domain; every
// stage degrades to its fallback instead of propagating errors.
func (a *Analyzer) Analyze(ctx context.Context, rawDomain string, onStage func(Stage)) (*model.DomainAnalysis, error) {
	domain := Normalize(rawDomain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	log := zap.L().With(zap.String("domain", domain))
	log.Info("analysis started")
	start := time.Now()

	var (
		mu         sync.Mutex // serializes settlement: results, debug, callback
		stageDebug = make(map[string]model.StageDebug)

		whoisData   model.WhoisData
		trafficData model.TrafficData
		keywords    []model.KeywordSuggestion
		speed       model.PageSpeedResult
	)

	// settle records a stage outcome and fires the progress callback while
	// holding the lock, keeping the callback stream ordered.
	settle := func(stage Stage, elapsed time.Duration, err error, apply func()) {
		mu.Lock()
		defer mu.Unlock()

		dbg := model.StageDebug{DurationMs: elapsed.Milliseconds()}
		if err != nil {
			dbg.Fallback = true
			dbg.Error = err.Error()
			log.Warn("stage failed, using fallback",
				zap.String("stage", string(stage)),
				zap.Error(err),
			)
		}
		stageDebug[string(stage)] = dbg

		apply()
		if onStage != nil {
			onStage(stage)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t0 := time.Now()
		res, err := runStage(gctx, a.runner, domain, StageWhois, func(ctx context.Context) (model.WhoisData, error) {
			return a.whois.Lookup(ctx, domain)
		})
		settle(StageWhois, time.Since(t0), err, func() {
			if err != nil {
				res = model.WhoisData{DomainAge: "Unknown"}
			}
			whoisData = res
		})
		return nil
	})

	g.Go(func() error {
		t0 := time.Now()
		res, err := runStage(gctx, a.runner, domain, StageTraffic, func(ctx context.Context) (model.TrafficData, error) {
			return a.traffic.Estimate(ctx, domain)
		})
		settle(StageTraffic, time.Since(t0), err, func() {
			if err != nil {
				res = model.TrafficData{Trend: model.TrendUnknown}
			}
			trafficData = res
		})
		return nil
	})

	g.Go(func() error {
		t0 := time.Now()
		res, err := runStage(gctx, a.runner, domain, StageKeywords, func(ctx context.Context) ([]model.KeywordSuggestion, error) {
			return a.keywords.Suggest(ctx, domain)
		})
		settle(StageKeywords, time.Since(t0), err, func() {
			if err != nil {
				res = fallbackKeywords(domain)
			}
			keywords = res
		})
		return nil
	})

	g.Go(func() error {
		t0 := time.Now()
		res, err := runStage(gctx, a.runner, domain, StageSEO, func(ctx context.Context) (model.PageSpeedResult, error) {
			return a.speed.Score(ctx, domain)
		})
		settle(StageSEO, time.Since(t0), err, func() {
			if err != nil {
				res = model.PageSpeedResult{
					Score:        neutralSpeedScore,
					MobileScore:  neutralSpeedScore,
					DesktopScore: neutralSpeedScore,
				}
			}
			speed = res
		})
		return nil
	})

	// Stage errors are absorbed by their fallbacks; the group only joins.
	_ = g.Wait()

	in := model.ValuationInput{
		Domain:         domain,
		DomainAge:      whoisData.DomainAge,
		TLD:            tldOf(domain),
		MonthlyTraffic: trafficData.MonthlyVisits,
		Registrar:      whoisData.Registrar,
		ExpiryDate:     whoisData.ExpiryDate,
	}

	t0 := time.Now()
	valuation, err := runStage(ctx, a.runner, domain, StageValuation, func(ctx context.Context) (model.Valuation, error) {
		return a.valuer.Valuate(ctx, in)
	})
	settle(StageValuation, time.Since(t0), err, func() {
		if err != nil {
			valuation = fallbackValuation()
		}
	})

	result := assemble(domain, whoisData, trafficData, keywords, speed, valuation, a.tiers)
	result.Debug = &model.DebugInfo{
		TotalMs: time.Since(start).Milliseconds(),
		Stages:  stageDebug,
	}

	log.Info("analysis complete",
		zap.Int("estimated_value", result.EstimatedValue),
		zap.Int("confidence", result.ConfidenceScore),
		zap.Int64("total_ms", result.Debug.TotalMs),
	)

	return result, nil
}
