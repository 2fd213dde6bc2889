package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecr-group/leadqual-cli/internal/model"
)

// memoryHistory is an in-memory store.Store for pipeline tests.
type memoryHistory struct {
	createdID    string
	statuses     []model.RunStatus
	finishStatus model.RunStatus
	summary      *model.RunSummary
}

func (m *memoryHistory) CreateRun(_ context.Context, domains []string) (*model.RunRecord, error) {
	m.createdID = uuid.New().String()
	return &model.RunRecord{ID: m.createdID, Domains: domains, Status: model.RunStatusQueued}, nil
}

func (m *memoryHistory) UpdateRunStatus(_ context.Context, _ string, status model.RunStatus) error {
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memoryHistory) FinishRun(_ context.Context, _ string, status model.RunStatus, summary *model.RunSummary) error {
	m.finishStatus = status
	m.summary = summary
	return nil
}

func (m *memoryHistory) GetRun(context.Context, string) (*model.RunRecord, error) {
	return nil, nil
}

func (m *memoryHistory) ListRuns(context.Context, int) ([]model.RunRecord, error) {
	return nil, nil
}

func (m *memoryHistory) Migrate(context.Context) error { return nil }
func (m *memoryHistory) Close() error                  { return nil }
