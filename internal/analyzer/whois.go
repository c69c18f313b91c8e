package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/pkg/whois"
)

// whoisProvider adapts the WHOIS client and derives the human-readable
// domain age.
type whoisProvider struct {
	client whois.Client
	now    func() time.Time
}

// NewWhoisProvider wraps a WHOIS client as a stage provider.
func NewWhoisProvider(c whois.Client) WhoisProvider {
	return &whoisProvider{client: c, now: time.Now}
}

func (p *whoisProvider) Lookup(ctx context.Context, domain string) (model.WhoisData, error) {
	rec, err := p.client.Lookup(ctx, domain)
	if err != nil {
		return model.WhoisData{}, err
	}

	data := model.WhoisData{
		DomainAge:    "Unknown",
		CreationDate: rec.CreatedDate,
		ExpiryDate:   rec.ExpirationDate,
		Registrar:    rec.Registrar,
	}
	if rec.CreatedDate != nil {
		data.DomainAge = ageString(*rec.CreatedDate, p.now())
	}
	return data, nil
}

// ageString renders the span since creation as "5 years 2 months",
// "1 year", "3 months", or "Less than a month".
func ageString(created, now time.Time) string {
	if created.After(now) {
		return "Unknown"
	}

	months := (now.Year()-created.Year())*12 + int(now.Month()) - int(created.Month())
	if now.Day() < created.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}

	years := months / 12
	rem := months % 12

	switch {
	case years > 0 && rem > 0:
		return fmt.Sprintf("%s %s", plural(years, "year"), plural(rem, "month"))
	case years > 0:
		return plural(years, "year")
	case rem > 0:
		return plural(rem, "month")
	default:
		return "Less than a month"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
