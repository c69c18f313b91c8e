package analyzer

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sells-group/appraisal-cli/internal/resilience"
)

// Runner executes one provider call per (domain, stage) with bounded retry
// and in-flight de-duplication. Concurrent callers asking for the same key
// share a single underlying call and receive the same outcome; the key is
// released when the call settles, so a later fresh request runs again.
type Runner struct {
	group        singleflight.Group
	retry        resilience.RetryConfig
	stageTimeout time.Duration
	seoTimeout   time.Duration
}

// RunnerConfig tunes the runner. Zero values select the defaults: two
// attempts 2s apart, 15s per attempt, 30s for the seo stage.
type RunnerConfig struct {
	Retry        resilience.RetryConfig
	StageTimeout time.Duration
	SEOTimeout   time.Duration
}

// NewRunner creates a stage runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 15 * time.Second
	}
	if cfg.SEOTimeout <= 0 {
		cfg.SEOTimeout = 30 * time.Second
	}
	return &Runner{
		retry:        cfg.Retry,
		stageTimeout: cfg.StageTimeout,
		seoTimeout:   cfg.SEOTimeout,
	}
}

func (r *Runner) timeoutFor(stage Stage) time.Duration {
	if stage == StageSEO {
		return r.seoTimeout
	}
	return r.stageTimeout
}

// runStage routes fn through the runner's de-duplication registry and retry
// policy. Retries happen inside the shared call, so a second caller joining
// an in-flight key never triggers its own attempts. The first caller's
// context drives the shared call.
func runStage[T any](ctx context.Context, r *Runner, domain string, stage Stage, fn func(ctx context.Context) (T, error)) (T, error) {
	key := domain + "|" + string(stage)

	v, err, _ := r.group.Do(key, func() (any, error) {
		cfg := r.retry
		if cfg.OnRetry == nil {
			cfg.OnRetry = resilience.RetryLogger(string(stage), domain)
		}
		return resilience.DoVal(ctx, cfg, func(ctx context.Context) (T, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, r.timeoutFor(stage))
			defer cancel()
			return fn(attemptCtx)
		})
	})

	var zero T
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, nil
	}
	return out, nil
}
