package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/appraisal-cli/internal/analyzer"
	"github.com/sells-group/appraisal-cli/internal/config"
	"github.com/sells-group/appraisal-cli/internal/resilience"
	"github.com/sells-group/appraisal-cli/internal/store"
	anthropicpkg "github.com/sells-group/appraisal-cli/pkg/anthropic"
	"github.com/sells-group/appraisal-cli/pkg/pagespeed"
	"github.com/sells-group/appraisal-cli/pkg/semrush"
	"github.com/sells-group/appraisal-cli/pkg/similarweb"
	"github.com/sells-group/appraisal-cli/pkg/whois"
)

// buildAnalyzer wires the stage providers from configuration. Providers
// whose API key is missing are left nil; their stages settle via fallback.
func buildAnalyzer(cfg *config.Config) (*analyzer.Analyzer, error) {
	tiers := analyzer.DefaultTiers()
	if cfg.Analyze.TLDTierFile != "" {
		t, err := analyzer.LoadTiers(cfg.Analyze.TLDTierFile)
		if err != nil {
			return nil, eris.Wrap(err, "load tld tiers")
		}
		tiers = t
	}

	whoisClient := whois.NewClient(whois.WithBaseURL(cfg.Whois.BaseURL))

	var swClient similarweb.Client
	if cfg.SimilarWeb.Key != "" {
		swClient = similarweb.NewClient(cfg.SimilarWeb.Key, similarweb.WithBaseURL(cfg.SimilarWeb.BaseURL))
	}
	var semClient semrush.Client
	if cfg.SEMrush.Key != "" {
		semClient = semrush.NewClient(cfg.SEMrush.Key, semrush.WithBaseURL(cfg.SEMrush.BaseURL))
	}

	psClient := pagespeed.NewClient(cfg.PageSpeed.Key,
		pagespeed.WithBaseURL(cfg.PageSpeed.BaseURL),
		pagespeed.WithRateLimit(cfg.PageSpeed.RatePerSecond),
	)

	var llm anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		llm = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Info("no anthropic key configured, using heuristic valuation and fallback keywords")
	}

	var valuer analyzer.Valuer
	if llm != nil {
		valuer = analyzer.NewLLMValuer(llm, cfg.Anthropic.Model)
	} else {
		valuer = analyzer.NewHeuristicValuer(tiers)
	}

	runnerCfg := analyzer.RunnerConfig{
		Retry: resilience.RetryConfig{
			MaxAttempts: cfg.Analyze.RetryAttempts,
			Delay:       time.Duration(cfg.Analyze.RetryDelayMs) * time.Millisecond,
		},
		StageTimeout: time.Duration(cfg.Analyze.StageTimeoutSec) * time.Second,
		SEOTimeout:   time.Duration(cfg.Analyze.SEOTimeoutSec) * time.Second,
	}

	return analyzer.New(
		analyzer.NewWhoisProvider(whoisClient),
		analyzer.NewTrafficProvider(swClient, semClient),
		analyzer.NewKeywordProvider(llm, cfg.Anthropic.Model),
		analyzer.NewSpeedProvider(psClient),
		valuer,
		runnerCfg,
		tiers,
	), nil
}

// initStore opens the configured run store with migrations applied.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}
