package similarweb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sells-group/appraisal-cli/internal/resilience"
)

func TestVisits_ParsesSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "k123" {
			t.Errorf("expected api-key header, got %q", got)
		}
		if got := r.URL.Query().Get("granularity"); got != "monthly" {
			t.Errorf("expected monthly granularity, got %q", got)
		}
		w.Write([]byte(`{"visits": [
			{"date": "2026-05-01", "visits": 11000},
			{"date": "2026-06-01", "visits": 11500},
			{"date": "2026-07-01", "visits": 12000}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("k123", WithBaseURL(srv.URL))
	series, err := c.Visits(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 months, got %d", len(series))
	}
	if series[2].Visits != 12000 {
		t.Errorf("expected 12000 latest visits, got %v", series[2].Visits)
	}
}

func TestVisits_EmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"visits": []}`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	if _, err := c.Visits(context.Background(), "example.com"); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestVisits_TransientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream sad", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Visits(context.Background(), "example.com")
	if err == nil {
		t.Fatal("expected error")
	}
	var te *resilience.TransientError
	if !errors.As(err, &te) {
		t.Errorf("502 should yield a transient error, got %v", err)
	}
}

func TestVisits_PermanentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Visits(context.Background(), "example.com")
	if err == nil {
		t.Fatal("expected error")
	}
	var te *resilience.TransientError
	if errors.As(err, &te) {
		t.Error("401 should not be transient")
	}
}
