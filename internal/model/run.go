package model

import "time"

// RunStatus tracks the lifecycle of a stored appraisal run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// AnalysisRun is a persisted appraisal with its lifecycle metadata.
type AnalysisRun struct {
	ID        string          `json:"id"`
	Domain    string          `json:"domain"`
	Status    RunStatus       `json:"status"`
	Result    *DomainAnalysis `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
