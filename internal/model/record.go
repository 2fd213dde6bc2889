package model

import "time"

// RunSummary is the persisted outcome of a finished run. Lead data itself is
// not persisted; only the downloadable artifacts leave the run.
type RunSummary struct {
	LeadCount     int           `json:"lead_count"`
	MessageCount  int           `json:"message_count"`
	DispatchSent  int           `json:"dispatch_sent,omitempty"`
	DispatchTotal int           `json:"dispatch_total,omitempty"`
	Errors        []DomainError `json:"errors,omitempty"`
}

// RunRecord is the audit-log row for one qualification run.
type RunRecord struct {
	ID        string      `json:"id"`
	Domains   []string    `json:"domains"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Summarize collapses a finished pipeline run into its persisted summary.
func (r *PipelineRun) Summarize() *RunSummary {
	s := &RunSummary{
		LeadCount:    len(r.Leads),
		MessageCount: len(r.Messages),
		Errors:       r.Errors,
	}
	if r.Dispatch != nil {
		s.DispatchSent = r.Dispatch.Sent
		s.DispatchTotal = r.Dispatch.Total
	}
	return s
}
