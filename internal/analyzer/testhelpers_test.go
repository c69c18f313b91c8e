package analyzer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/internal/resilience"
)

// Function adapters so tests can drop in provider behavior inline.

type whoisFunc func(ctx context.Context, domain string) (model.WhoisData, error)

func (f whoisFunc) Lookup(ctx context.Context, domain string) (model.WhoisData, error) {
	return f(ctx, domain)
}

type trafficFunc func(ctx context.Context, domain string) (model.TrafficData, error)

func (f trafficFunc) Estimate(ctx context.Context, domain string) (model.TrafficData, error) {
	return f(ctx, domain)
}

type keywordFunc func(ctx context.Context, domain string) ([]model.KeywordSuggestion, error)

func (f keywordFunc) Suggest(ctx context.Context, domain string) ([]model.KeywordSuggestion, error) {
	return f(ctx, domain)
}

type speedFunc func(ctx context.Context, domain string) (model.PageSpeedResult, error)

func (f speedFunc) Score(ctx context.Context, domain string) (model.PageSpeedResult, error) {
	return f(ctx, domain)
}

type valuerFunc func(ctx context.Context, in model.ValuationInput) (model.Valuation, error)

func (f valuerFunc) Valuate(ctx context.Context, in model.ValuationInput) (model.Valuation, error) {
	return f(ctx, in)
}

// testProviders bundles happy-path doubles with invocation counters.
type testProviders struct {
	whoisCalls     atomic.Int32
	trafficCalls   atomic.Int32
	keywordCalls   atomic.Int32
	speedCalls     atomic.Int32
	valuationCalls atomic.Int32

	whois    WhoisProvider
	traffic  TrafficProvider
	keywords KeywordProvider
	speed    SpeedProvider
	valuer   Valuer
}

func happyProviders() *testProviders {
	p := &testProviders{}
	created := time.Date(2021, time.August, 20, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2030, time.August, 20, 0, 0, 0, 0, time.UTC)

	p.whois = whoisFunc(func(_ context.Context, _ string) (model.WhoisData, error) {
		p.whoisCalls.Add(1)
		return model.WhoisData{
			DomainAge:    "5 years",
			CreationDate: &created,
			ExpiryDate:   &expiry,
			Registrar:    "Example Registrar",
		}, nil
	})
	p.traffic = trafficFunc(func(_ context.Context, _ string) (model.TrafficData, error) {
		p.trafficCalls.Add(1)
		return model.TrafficData{
			MonthlyVisits: model.KnownVisits(12000),
			Trend:         model.TrendStable,
			Confidence:    80,
		}, nil
	})
	p.keywords = keywordFunc(func(_ context.Context, _ string) ([]model.KeywordSuggestion, error) {
		p.keywordCalls.Add(1)
		return []model.KeywordSuggestion{
			{Keyword: "example", SearchVolume: "High", Difficulty: "Easy"},
		}, nil
	})
	p.speed = speedFunc(func(_ context.Context, _ string) (model.PageSpeedResult, error) {
		p.speedCalls.Add(1)
		return model.PageSpeedResult{Score: 85, MobileScore: 85, DesktopScore: 85}, nil
	})
	p.valuer = valuerFunc(func(_ context.Context, _ model.ValuationInput) (model.Valuation, error) {
		p.valuationCalls.Add(1)
		return model.Valuation{
			EstimatedValue:   2400,
			ConfidenceScore:  90,
			DetailedAnalysis: "Strong aged .com with steady traffic.",
		}, nil
	})
	return p
}

func fastRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Retry: resilience.RetryConfig{MaxAttempts: 2, Delay: time.Millisecond},
	}
}

func newTestAnalyzer(p *testProviders) *Analyzer {
	return New(p.whois, p.traffic, p.keywords, p.speed, p.valuer, fastRunnerConfig(), DefaultTiers())
}
