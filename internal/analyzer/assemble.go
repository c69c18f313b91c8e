package analyzer

import (
	"github.com/sells-group/appraisal-cli/internal/model"
)

// assemble merges the five settled stage outputs into the final record.
func assemble(
	domain string,
	whoisData model.WhoisData,
	trafficData model.TrafficData,
	keywords []model.KeywordSuggestion,
	speed model.PageSpeedResult,
	valuation model.Valuation,
	tiers TierTable,
) *model.DomainAnalysis {
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return &model.DomainAnalysis{
		Domain:            domain,
		EstimatedValue:    valuation.EstimatedValue,
		ConfidenceScore:   valuation.ConfidenceScore,
		DomainAge:         whoisData.DomainAge,
		MonthlyTraffic:    trafficData.MonthlyVisits,
		SEOScore:          speed.Score,
		TLDValue:          tiers.Label(domain),
		DetailedAnalysis:  valuation.DetailedAnalysis,
		SuggestedKeywords: keywords,
	}
}
