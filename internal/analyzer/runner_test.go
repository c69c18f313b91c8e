package analyzer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sells-group/appraisal-cli/internal/resilience"
)

func TestRunStageDedupesInFlightCalls(t *testing.T) {
	r := NewRunner(fastRunnerConfig())

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := runStage(context.Background(), r, "example.com", StageWhois, fn)
			if err != nil {
				t.Errorf("runStage: %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fn invoked %d times for 5 concurrent callers, want 1", got)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("caller %d got %d, want 42", i, v)
		}
	}
}

func TestRunStageDifferentKeysRunIndependently(t *testing.T) {
	r := NewRunner(fastRunnerConfig())

	var calls atomic.Int32
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		return "ok", nil
	}

	if _, err := runStage(context.Background(), r, "example.com", StageWhois, fn); err != nil {
		t.Fatal(err)
	}
	if _, err := runStage(context.Background(), r, "example.com", StageTraffic, fn); err != nil {
		t.Fatal(err)
	}
	if _, err := runStage(context.Background(), r, "other.com", StageWhois, fn); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("fn invoked %d times for 3 distinct keys, want 3", got)
	}
}

func TestRunStageKeyReleasedAfterSettle(t *testing.T) {
	r := NewRunner(fastRunnerConfig())

	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	v1, _ := runStage(context.Background(), r, "example.com", StageSEO, fn)
	v2, _ := runStage(context.Background(), r, "example.com", StageSEO, fn)
	if v1 != 1 || v2 != 2 {
		t.Errorf("sequential calls returned %d, %d; want fresh runs 1, 2", v1, v2)
	}
}

func TestRunStageRetriesInsideSharedCall(t *testing.T) {
	r := NewRunner(fastRunnerConfig())

	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("transient failure")
		}
		return 7, nil
	}

	v, err := runStage(context.Background(), r, "example.com", StageKeywords, fn)
	if err != nil {
		t.Fatalf("runStage: %v", err)
	}
	if v != 7 {
		t.Errorf("got %d, want 7", v)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("fn invoked %d times, want 2", got)
	}
}

func TestRunStageExhaustsAttempts(t *testing.T) {
	r := NewRunner(fastRunnerConfig())

	var calls atomic.Int32
	boom := errors.New("still broken")
	_, err := runStage(context.Background(), r, "example.com", StageTraffic, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("fn invoked %d times, want 2", got)
	}
}

func TestRunStagePerAttemptTimeout(t *testing.T) {
	r := NewRunner(RunnerConfig{
		Retry:        resilience.RetryConfig{MaxAttempts: 1, Delay: time.Millisecond},
		StageTimeout: 10 * time.Millisecond,
	})

	_, err := runStage(context.Background(), r, "example.com", StageWhois, func(ctx context.Context) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return 1, nil
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded from the attempt timeout", err)
	}
}

func TestRunnerTimeoutFor(t *testing.T) {
	r := NewRunner(RunnerConfig{StageTimeout: 5 * time.Second, SEOTimeout: 9 * time.Second})
	if d := r.timeoutFor(StageWhois); d != 5*time.Second {
		t.Errorf("whois timeout = %v, want 5s", d)
	}
	if d := r.timeoutFor(StageSEO); d != 9*time.Second {
		t.Errorf("seo timeout = %v, want 9s", d)
	}

	def := NewRunner(RunnerConfig{})
	if d := def.timeoutFor(StageTraffic); d != 15*time.Second {
		t.Errorf("default stage timeout = %v, want 15s", d)
	}
	if d := def.timeoutFor(StageSEO); d != 30*time.Second {
		t.Errorf("default seo timeout = %v, want 30s", d)
	}
}
