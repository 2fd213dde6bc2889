// Package store persists an audit log of qualification runs. Lead data never
// outlives its run; only run summaries are recorded.
package store

import (
	"context"

	"github.com/ecr-group/leadqual-cli/internal/model"
)

// Store defines the run-history persistence interface.
type Store interface {
	CreateRun(ctx context.Context, domains []string) (*model.RunRecord, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	FinishRun(ctx context.Context, runID string, status model.RunStatus, summary *model.RunSummary) error
	GetRun(ctx context.Context, runID string) (*model.RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
