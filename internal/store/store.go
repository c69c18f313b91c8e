// Package store persists appraisal runs behind a driver-selectable
// interface. SQLite backs the single-binary default; Postgres serves
// shared deployments.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/appraisal-cli/internal/config"
	"github.com/sells-group/appraisal-cli/internal/model"
)

// ErrRunNotFound is returned when a run id has no stored row.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Domain string          `json:"domain,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for appraisal history.
type Store interface {
	// Lifecycle of a single run.
	CreateRun(ctx context.Context, domain string) (*model.AnalysisRun, error)
	CompleteRun(ctx context.Context, runID string, result *model.DomainAnalysis) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error)

	// ImportRuns bulk-loads finished runs, e.g. from a batch job.
	ImportRuns(ctx context.Context, runs []model.AnalysisRun) (int, error)

	// PruneRuns deletes runs older than the retention window and reports
	// how many were removed.
	PruneRuns(ctx context.Context, olderThan time.Duration) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		s, err = NewSQLite(cfg.Path)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
