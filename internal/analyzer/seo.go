package analyzer

import (
	"context"

	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/internal/resilience"
	"github.com/sells-group/appraisal-cli/pkg/pagespeed"
)

// neutralSpeedScore is the substitute when no measurement is available.
const neutralSpeedScore = 50

// speedProvider adapts the PageSpeed client. Only the mobile strategy is
// measured; the score is reported for both form factors.
type speedProvider struct {
	client  pagespeed.Client
	breaker *resilience.Breaker
}

// NewSpeedProvider wraps a PageSpeed client as the seo stage provider.
func NewSpeedProvider(c pagespeed.Client) SpeedProvider {
	return &speedProvider{
		client:  c,
		breaker: resilience.NewBreaker("pagespeed", 5, 0),
	}
}

func (p *speedProvider) Score(ctx context.Context, domain string) (model.PageSpeedResult, error) {
	if !p.breaker.Allow() {
		return model.PageSpeedResult{}, resilience.ErrBreakerOpen
	}

	score, err := p.client.Score(ctx, domain)
	p.breaker.Record(err)
	if err != nil {
		return model.PageSpeedResult{}, err
	}

	return model.PageSpeedResult{
		Score:        score,
		MobileScore:  score,
		DesktopScore: score,
	}, nil
}
