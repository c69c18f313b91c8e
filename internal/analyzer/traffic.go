package analyzer

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/internal/resilience"
	"github.com/sells-group/appraisal-cli/pkg/semrush"
	"github.com/sells-group/appraisal-cli/pkg/similarweb"
)

// Per-source confidence in the returned estimate. SimilarWeb panel data is
// considered slightly more reliable than SEMrush's modeled numbers.
const (
	similarwebConfidence = 80
	semrushConfidence    = 75
)

// trafficProvider tries SimilarWeb first and falls back to SEMrush. Either
// client may be nil when the corresponding API key is not configured; the
// provider errors only when no source yields data.
type trafficProvider struct {
	similarweb similarweb.Client
	semrush    semrush.Client
	swBreaker  *resilience.Breaker
	semBreaker *resilience.Breaker
}

// NewTrafficProvider builds the chained traffic stage provider.
func NewTrafficProvider(sw similarweb.Client, sem semrush.Client) TrafficProvider {
	return &trafficProvider{
		similarweb: sw,
		semrush:    sem,
		swBreaker:  resilience.NewBreaker("similarweb", 5, 0),
		semBreaker: resilience.NewBreaker("semrush", 5, 0),
	}
}

func (p *trafficProvider) Estimate(ctx context.Context, domain string) (model.TrafficData, error) {
	log := zap.L().With(zap.String("domain", domain))

	if p.similarweb != nil && p.swBreaker.Allow() {
		series, err := p.similarweb.Visits(ctx, domain)
		p.swBreaker.Record(err)
		if err == nil {
			latest := int64(math.Round(series[len(series)-1].Visits))
			return model.TrafficData{
				MonthlyVisits: model.KnownVisits(latest),
				Trend:         seriesTrend(series),
				Confidence:    similarwebConfidence,
			}, nil
		}
		log.Warn("similarweb estimate failed", zap.Error(err))
	}

	if p.semrush != nil && p.semBreaker.Allow() {
		summary, err := p.semrush.TrafficSummary(ctx, domain)
		p.semBreaker.Record(err)
		if err == nil {
			trend := summary.Trend
			if trend == "" {
				trend = model.TrendUnknown
			}
			return model.TrafficData{
				MonthlyVisits: model.KnownVisits(int64(math.Round(summary.Visits))),
				Trend:         trend,
				Confidence:    semrushConfidence,
			}, nil
		}
		log.Warn("semrush estimate failed", zap.Error(err))
	}

	return model.TrafficData{}, eris.New("traffic: no provider produced an estimate")
}

// seriesTrend classifies the last three months of a visit series. A swing
// of more than 10% either way counts as a trend.
func seriesTrend(series []similarweb.MonthlyVisits) string {
	if len(series) < 3 {
		return model.TrendUnknown
	}
	last3 := series[len(series)-3:]
	first := last3[0].Visits
	if first == 0 {
		return model.TrendUnknown
	}
	change := (last3[2].Visits - first) / first * 100

	switch {
	case change > 10:
		return model.TrendUp
	case change < -10:
		return model.TrendDown
	default:
		return model.TrendStable
	}
}
