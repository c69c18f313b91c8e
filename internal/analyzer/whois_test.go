package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sells-group/appraisal-cli/pkg/whois"
)

type whoisClientFunc func(ctx context.Context, domain string) (*whois.Record, error)

func (f whoisClientFunc) Lookup(ctx context.Context, domain string) (*whois.Record, error) {
	return f(ctx, domain)
}

func TestAgeString(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		created time.Time
		want    string
	}{
		{time.Date(2021, time.June, 10, 0, 0, 0, 0, time.UTC), "5 years 2 months"},
		{time.Date(2025, time.August, 28, 0, 0, 0, 0, time.UTC), "1 year"},
		{time.Date(2024, time.August, 28, 0, 0, 0, 0, time.UTC), "2 years"},
		{time.Date(2026, time.May, 28, 0, 0, 0, 0, time.UTC), "3 months"},
		{time.Date(2026, time.July, 28, 0, 0, 0, 0, time.UTC), "1 month"},
		{time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC), "Less than a month"},
		{time.Date(2025, time.September, 29, 0, 0, 0, 0, time.UTC), "10 months"},
		{time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), "Unknown"},
	}
	for _, c := range cases {
		if got := ageString(c.created, now); got != c.want {
			t.Errorf("ageString(%s) = %q, want %q", c.created.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestWhoisProviderLookup(t *testing.T) {
	created := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2028, time.March, 1, 0, 0, 0, 0, time.UTC)

	p := &whoisProvider{
		client: whoisClientFunc(func(_ context.Context, domain string) (*whois.Record, error) {
			if domain != "example.com" {
				t.Errorf("client called with %q", domain)
			}
			return &whois.Record{
				CreatedDate:    &created,
				ExpirationDate: &expiry,
				Registrar:      "Example Registrar",
			}, nil
		}),
		now: func() time.Time { return time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC) },
	}

	data, err := p.Lookup(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if data.DomainAge != "6 years 5 months" {
		t.Errorf("DomainAge = %q, want 6 years 5 months", data.DomainAge)
	}
	if data.Registrar != "Example Registrar" {
		t.Errorf("Registrar = %q", data.Registrar)
	}
	if data.CreationDate == nil || !data.CreationDate.Equal(created) {
		t.Errorf("CreationDate = %v", data.CreationDate)
	}
	if data.ExpiryDate == nil || !data.ExpiryDate.Equal(expiry) {
		t.Errorf("ExpiryDate = %v", data.ExpiryDate)
	}
}

func TestWhoisProviderMissingCreationDate(t *testing.T) {
	p := &whoisProvider{
		client: whoisClientFunc(func(context.Context, string) (*whois.Record, error) {
			return &whois.Record{Registrar: "Some Registrar"}, nil
		}),
		now: time.Now,
	}

	data, err := p.Lookup(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if data.DomainAge != "Unknown" {
		t.Errorf("DomainAge = %q, want Unknown", data.DomainAge)
	}
}

func TestWhoisProviderPropagatesError(t *testing.T) {
	boom := errors.New("whois unavailable")
	p := &whoisProvider{
		client: whoisClientFunc(func(context.Context, string) (*whois.Record, error) {
			return &whois.Record{}, boom
		}),
		now: time.Now,
	}

	if _, err := p.Lookup(context.Background(), "example.com"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped client error", err)
	}
}
