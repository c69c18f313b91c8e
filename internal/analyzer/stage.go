// Package analyzer orchestrates the multi-stage domain appraisal: four
// independent provider stages run concurrently, a dependent valuation stage
// runs over their settled outputs, and every stage degrades to a fixed
// fallback instead of failing the run.
package analyzer

import "sync"

// Stage names one unit of work in an appraisal.
type Stage string

const (
	StageWhois     Stage = "whois"
	StageTraffic   Stage = "traffic"
	StageKeywords  Stage = "keywords"
	StageSEO       Stage = "seo"
	StageValuation Stage = "valuation"
)

// Stages is the display order used for progress reporting. The first four
// race; valuation always settles last.
var Stages = []Stage{StageWhois, StageTraffic, StageKeywords, StageSEO, StageValuation}

func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// StageEvent is one progress notification emitted as a stage settles.
type StageEvent struct {
	Domain string `json:"domain"`
	Stage  Stage  `json:"stage"`
	// Fallback is true when the stage settled via its fallback value.
	Fallback bool `json:"fallback,omitempty"`
}

// Tracker keeps a monotonic furthest-stage pointer for display purposes.
// A result arriving for an earlier stage after a later one has been
// reported never rewinds the pointer.
type Tracker struct {
	mu  sync.Mutex
	idx int
}

// NewTracker creates a tracker with no stage reached yet.
func NewTracker() *Tracker {
	return &Tracker{idx: -1}
}

// Advance moves the pointer forward to s if s is further than the current
// position.
func (t *Tracker) Advance(s Stage) {
	i := s.index()
	if i < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if i > t.idx {
		t.idx = i
	}
}

// Current returns the furthest stage reached, or false if none has settled.
func (t *Tracker) Current() (Stage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.idx < 0 {
		return "", false
	}
	return Stages[t.idx], true
}
