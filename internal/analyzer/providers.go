package analyzer

import (
	"context"

	"github.com/sells-group/appraisal-cli/internal/model"
)

// The analyzer consumes its external collaborators through these interfaces
// so tests can substitute doubles and the wiring layer can pick concrete
// clients.

// WhoisProvider looks up registration data for a domain.
type WhoisProvider interface {
	Lookup(ctx context.Context, domain string) (model.WhoisData, error)
}

// TrafficProvider estimates monthly traffic for a domain.
type TrafficProvider interface {
	Estimate(ctx context.Context, domain string) (model.TrafficData, error)
}

// KeywordProvider suggests up to five keywords for a domain.
type KeywordProvider interface {
	Suggest(ctx context.Context, domain string) ([]model.KeywordSuggestion, error)
}

// SpeedProvider scores page performance for a domain.
type SpeedProvider interface {
	Score(ctx context.Context, domain string) (model.PageSpeedResult, error)
}

// Valuer produces the final valuation from the settled stage outputs.
type Valuer interface {
	Valuate(ctx context.Context, in model.ValuationInput) (model.Valuation, error)
}
