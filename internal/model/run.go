package model

import (
	"fmt"
	"time"
)

// RunStatus tracks the pipeline state machine for a qualification run.
type RunStatus string

const (
	RunStatusQueued           RunStatus = "queued"
	RunStatusFetching         RunStatus = "fetching"
	RunStatusFiltering        RunStatus = "filtering"
	RunStatusComposing        RunStatus = "composing"
	RunStatusExporting        RunStatus = "exporting"
	RunStatusAwaitingDispatch RunStatus = "awaiting_dispatch"
	RunStatusDispatching      RunStatus = "dispatching"
	RunStatusComplete         RunStatus = "complete"
	RunStatusFailed           RunStatus = "failed"
)

// Export artifact keys. Zip entry names are fixed for downstream consumers.
const (
	ArtifactXLSX   = "xlsx"
	ArtifactCSV    = "csv"
	ArtifactZIP    = "zip"
	ArtifactCRMCSV = "crm_csv"

	ZipEntryXLSX = "qualified_leads.xlsx"
	ZipEntryCSV  = "salesflow_leads.csv"
)

// DomainError records a per-domain fetch failure. Failures never abort the
// remaining domains in a run.
type DomainError struct {
	Domain string `json:"domain"`
	Detail string `json:"detail"`
}

// PipelineRun is the aggregate result of one qualification run. It is owned
// by the caller; no global state survives the run.
type PipelineRun struct {
	ID        string            `json:"id"`
	Domains   []string          `json:"domains"`
	Status    RunStatus         `json:"status"`
	Leads     []QualifiedLead   `json:"leads"`
	Messages  []OutreachMessage `json:"messages"`
	Errors    []DomainError     `json:"errors,omitempty"`
	Artifacts map[string][]byte `json:"-"`
	Dispatch  *DispatchReport   `json:"dispatch,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   time.Time         `json:"ended_at"`
}

// Empty reports whether the run produced no qualified leads.
func (r *PipelineRun) Empty() bool {
	return len(r.Leads) == 0
}

// DispatchResult is the outcome of posting a single lead downstream.
type DispatchResult struct {
	LeadEmail string `json:"lead_email"`
	Sent      bool   `json:"sent"`
	Detail    string `json:"detail,omitempty"`
}

// DispatchReport aggregates per-lead dispatch outcomes for one run.
type DispatchReport struct {
	Sent    int              `json:"sent"`
	Total   int              `json:"total"`
	Results []DispatchResult `json:"results"`
}

// Summary renders the "sent/total" tally, e.g. "2/3".
func (r DispatchReport) Summary() string {
	return fmt.Sprintf("%d/%d", r.Sent, r.Total)
}
