package pagespeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScore_ParsesAndScales(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("url") != "https://example.com" {
			t.Errorf("unexpected url param %q", q.Get("url"))
		}
		if q.Get("strategy") != "mobile" {
			t.Errorf("unexpected strategy %q", q.Get("strategy"))
		}
		if q.Get("key") != "psi1" {
			t.Errorf("unexpected key %q", q.Get("key"))
		}
		w.Write([]byte(`{"lighthouseResult": {"categories": {"performance": {"score": 0.85}}}}`))
	}))
	defer srv.Close()

	c := NewClient("psi1", WithBaseURL(srv.URL))
	score, err := c.Score(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 85 {
		t.Errorf("expected score 85, got %d", score)
	}
}

func TestScore_MissingScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lighthouseResult": {"categories": {}}}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	if _, err := c.Score(context.Background(), "example.com"); err == nil {
		t.Fatal("expected error for missing score")
	}
}

func TestScore_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Score(ctx, "example.com"); err == nil {
		t.Fatal("expected error on context deadline")
	}
}

func TestScore_RateLimiterWaits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lighthouseResult": {"categories": {"performance": {"score": 0.5}}}}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL), WithRateLimit(20))
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Score(context.Background(), "example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// 20 rps with burst 1: three calls need ~100ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected limiter to pace requests, took %v", elapsed)
	}
}
