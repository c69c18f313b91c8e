package analyzer

import (
	"context"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/appraisal-cli/internal/model"
)

// heuristicValuer prices a domain from registration age, TLD, name length
// and traffic. It is the valuation stage when no LLM is configured and
// never fails.
type heuristicValuer struct {
	tiers TierTable
}

// NewHeuristicValuer creates the formula-based valuer.
func NewHeuristicValuer(tiers TierTable) Valuer {
	return &heuristicValuer{tiers: tiers}
}

func (v *heuristicValuer) Valuate(_ context.Context, in model.ValuationInput) (model.Valuation, error) {
	return model.Valuation{
		EstimatedValue:   heuristicValue(in, v.tiers),
		ConfidenceScore:  confidenceScore(in),
		DetailedAnalysis: analysisText(in, v.tiers),
	}, nil
}

// heuristicValue computes the price estimate: a base value with an age
// bonus, TLD and length multipliers, and a capped traffic bonus.
func heuristicValue(in model.ValuationInput, tiers TierTable) int {
	value := 500.0

	if years, ok := ageYears(in.DomainAge); ok {
		value += math.Min(float64(years)*100, 2000)
	}

	value *= tiers.Multiplier(in.TLD)

	switch name := nameOf(in.Domain); {
	case len(name) <= 4:
		value *= 1.5
	case len(name) <= 6:
		value *= 1.3
	case len(name) <= 8:
		value *= 1.1
	}

	if in.MonthlyTraffic.Known {
		value += math.Min(float64(in.MonthlyTraffic.Count)*0.1, 5000)
	}

	return int(math.Round(value))
}

// confidenceScore grows with the amount of real data available.
func confidenceScore(in model.ValuationInput) int {
	score := 50
	if in.DomainAge != "Unknown" && in.DomainAge != "" {
		score += 15
	}
	if in.MonthlyTraffic.Known {
		score += 15
	}
	if in.Registrar != "" {
		score += 10
	}
	if in.ExpiryDate != nil {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

// analysisText renders the human-readable appraisal summary.
func analysisText(in model.ValuationInput, tiers TierTable) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "Domain Analysis for %s:\n\n", in.Domain)
	p.Fprintf(&b, "- Age: %s\n", in.DomainAge)
	if in.Registrar != "" {
		p.Fprintf(&b, "- Registered with: %s\n", in.Registrar)
	}
	if in.ExpiryDate != nil {
		p.Fprintf(&b, "- Expires: %s\n", in.ExpiryDate.Format("January 2, 2006"))
	}

	tierWord := strings.ToLower(strings.SplitN(tiers.Label(in.Domain), " ", 2)[0])
	p.Fprintf(&b, "\n- TLD Analysis: .%s %s value TLD\n", in.TLD, tierWord)
	p.Fprintf(&b, "- Length: %d characters\n", len(nameOf(in.Domain)))

	if in.MonthlyTraffic.Known {
		p.Fprintf(&b, "- Monthly Traffic: %d visits\n", in.MonthlyTraffic.Count)
	} else {
		b.WriteString("- Traffic data not available\n")
	}

	return b.String()
}

// ageYears extracts the whole-year count from an age string such as
// "5 years 2 months".
func ageYears(age string) (int, bool) {
	fields := strings.Fields(age)
	if len(fields) < 2 || !strings.HasPrefix(fields[1], "year") {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}
