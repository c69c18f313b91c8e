// Package model defines the data records shared across the appraisal pipeline.
package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Traffic trend labels as reported by the traffic providers.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendStable  = "stable"
	TrendUnknown = "unknown"
)

// Visits is a monthly visit count that may be unavailable. It marshals to a
// plain number when known and to the literal string "Unknown" otherwise,
// matching the shape consumers of the analysis record expect.
type Visits struct {
	Count int64
	Known bool
}

// KnownVisits returns a known visit count.
func KnownVisits(n int64) Visits {
	return Visits{Count: n, Known: true}
}

func (v Visits) MarshalJSON() ([]byte, error) {
	if !v.Known {
		return []byte(`"Unknown"`), nil
	}
	return []byte(strconv.FormatInt(v.Count, 10)), nil
}

func (v *Visits) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Visits{Count: n, Known: true}
		return nil
	}
	*v = Visits{}
	return nil
}

func (v Visits) String() string {
	if !v.Known {
		return "Unknown"
	}
	return strconv.FormatInt(v.Count, 10)
}

// WhoisData holds registration facts for a domain. DomainAge is a
// human-readable span ("5 years 2 months") or "Unknown".
type WhoisData struct {
	DomainAge    string     `json:"domainAge"`
	CreationDate *time.Time `json:"creationDate"`
	ExpiryDate   *time.Time `json:"expiryDate"`
	Registrar    string     `json:"registrar,omitempty"`
}

// TrafficData holds a provider's monthly traffic estimate.
type TrafficData struct {
	MonthlyVisits Visits `json:"monthlyVisits"`
	Trend         string `json:"trend"`
	Confidence    int    `json:"confidence"`
}

// KeywordSuggestion is one keyword opportunity for a domain.
type KeywordSuggestion struct {
	Keyword      string `json:"keyword"`
	SearchVolume string `json:"searchVolume"`
	Difficulty   string `json:"difficulty"`
}

// PageSpeedResult holds Lighthouse performance scores on a 0-100 scale.
type PageSpeedResult struct {
	Score        int `json:"score"`
	MobileScore  int `json:"mobileScore"`
	DesktopScore int `json:"desktopScore"`
}

// Valuation is the outcome of the valuation stage. It is always fully
// populated; the stage substitutes a fixed fallback rather than failing.
type Valuation struct {
	EstimatedValue   int    `json:"estimatedValue"`
	ConfidenceScore  int    `json:"confidenceScore"`
	DetailedAnalysis string `json:"detailedAnalysis"`
}

// ValuationInput carries the settled stage outputs the valuer consumes.
type ValuationInput struct {
	Domain         string
	DomainAge      string
	TLD            string
	MonthlyTraffic Visits
	Registrar      string
	ExpiryDate     *time.Time
}

// StageDebug records observational diagnostics for one stage of a run.
type StageDebug struct {
	DurationMs int64  `json:"duration_ms"`
	Fallback   bool   `json:"fallback,omitempty"`
	Error      string `json:"error,omitempty"`
}

// DebugInfo is the opaque diagnostic bag attached to an analysis. It is
// never load-bearing for correctness.
type DebugInfo struct {
	TotalMs int64                 `json:"total_ms"`
	Stages  map[string]StageDebug `json:"stages,omitempty"`
}

// DomainAnalysis is the final appraisal record for one domain.
type DomainAnalysis struct {
	Domain            string              `json:"domain"`
	EstimatedValue    int                 `json:"estimatedValue"`
	ConfidenceScore   int                 `json:"confidenceScore"`
	DomainAge         string              `json:"domainAge"`
	MonthlyTraffic    Visits              `json:"monthlyTraffic"`
	SEOScore          int                 `json:"seoScore"`
	TLDValue          string              `json:"tldValue"`
	DetailedAnalysis  string              `json:"detailedAnalysis"`
	SuggestedKeywords []KeywordSuggestion `json:"suggestedKeywords"`
	Debug             *DebugInfo          `json:"debug,omitempty"`
}
