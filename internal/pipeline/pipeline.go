// Package pipeline orchestrates a qualification run: sequential per-domain
// contact fetching and filtering, cross-domain deduplication, message
// composition, and artifact export, with optional downstream dispatch.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecr-group/leadqual-cli/internal/compose"
	"github.com/ecr-group/leadqual-cli/internal/dispatch"
	"github.com/ecr-group/leadqual-cli/internal/export"
	"github.com/ecr-group/leadqual-cli/internal/ingest"
	"github.com/ecr-group/leadqual-cli/internal/model"
	"github.com/ecr-group/leadqual-cli/internal/qualify"
	"github.com/ecr-group/leadqual-cli/internal/retry"
	"github.com/ecr-group/leadqual-cli/internal/store"
	"github.com/ecr-group/leadqual-cli/pkg/hunter"
)

// Options configures a qualification run.
type Options struct {
	// Filter holds the admission rules.
	Filter qualify.Options
	// Compose selects the message generation mode and inputs.
	Compose compose.Params
	// Paginate fetches all provider pages per domain instead of one.
	Paginate bool
	// PageSize is the single-page fetch limit when Paginate is off.
	PageSize int
	// DomainLimiter paces requests across domains. Nil disables pacing.
	DomainLimiter *rate.Limiter
	// Retry bounds transient-failure retries on provider fetches.
	Retry retry.Config
	// DispatchSink, when set, marks the run as awaiting dispatch.
	DispatchSink dispatch.Sink
	// DispatchLimiter paces per-lead dispatch. Nil disables pacing.
	DispatchLimiter *rate.Limiter
}

// Pipeline runs lead qualification. One Pipeline may serve multiple runs;
// each run owns its own PipelineRun value and shares nothing.
type Pipeline struct {
	contacts hunter.Client
	composer *compose.Composer
	history  store.Store // optional run audit log, may be nil
	opts     Options
}

// New creates a Pipeline. history may be nil to skip run auditing.
func New(contacts hunter.Client, composer *compose.Composer, history store.Store, opts Options) *Pipeline {
	return &Pipeline{
		contacts: contacts,
		composer: composer,
		history:  history,
		opts:     opts,
	}
}

// Run qualifies leads for the given domains. Per-domain provider failures
// are collected on the run, never returned; the only error conditions are
// export serialization failures.
func (p *Pipeline) Run(ctx context.Context, domains []string) (*model.PipelineRun, error) {
	domains = ingest.Normalize(domains)

	run := &model.PipelineRun{
		ID:        uuid.New().String(),
		Domains:   domains,
		Status:    model.RunStatusQueued,
		StartedAt: time.Now().UTC(),
	}
	if p.history != nil {
		if rec, err := p.history.CreateRun(ctx, domains); err != nil {
			zap.L().Warn("pipeline: create run record failed", zap.Error(err))
		} else {
			run.ID = rec.ID
		}
	}

	log := zap.L().With(zap.String("run", run.ID))
	log.Info("pipeline: starting qualification", zap.Int("domains", len(domains)))

	for i, domain := range domains {
		if i > 0 && p.opts.DomainLimiter != nil {
			if err := p.opts.DomainLimiter.Wait(ctx); err != nil {
				return p.fail(ctx, run, err)
			}
		}

		p.setStatus(ctx, run, model.RunStatusFetching)
		contacts, err := p.fetchDomain(ctx, domain)
		if err != nil {
			if ctx.Err() != nil {
				return p.fail(ctx, run, err)
			}
			log.Warn("pipeline: domain fetch failed",
				zap.String("domain", domain),
				zap.Error(err),
			)
			run.Errors = append(run.Errors, model.DomainError{Domain: domain, Detail: err.Error()})
			continue
		}

		p.setStatus(ctx, run, model.RunStatusFiltering)
		qualified := qualify.Filter(contacts, p.opts.Filter)
		log.Info("pipeline: domain qualified",
			zap.String("domain", domain),
			zap.Int("contacts", len(contacts)),
			zap.Int("qualified", len(qualified)),
		)
		run.Leads = append(run.Leads, qualified...)
	}

	run.Leads = qualify.Dedupe(run.Leads)

	p.setStatus(ctx, run, model.RunStatusComposing)
	run.Messages = p.composer.ComposeAll(ctx, run.Leads, p.opts.Compose)

	p.setStatus(ctx, run, model.RunStatusExporting)
	artifacts, err := export.Build(run.Leads, run.Messages)
	if err != nil {
		return p.fail(ctx, run, err)
	}
	run.Artifacts = artifacts

	if p.opts.DispatchSink != nil && !run.Empty() {
		p.setStatus(ctx, run, model.RunStatusAwaitingDispatch)
	} else {
		p.finish(ctx, run, model.RunStatusComplete)
	}

	if run.Empty() {
		log.Info("pipeline: no qualified leads")
	} else {
		log.Info("pipeline: qualification complete",
			zap.Int("leads", len(run.Leads)),
			zap.Int("errors", len(run.Errors)),
		)
	}
	return run, nil
}

// Dispatch forwards the run's leads to the configured sink, sequentially in
// lead order. It is a no-op for runs not awaiting dispatch.
func (p *Pipeline) Dispatch(ctx context.Context, run *model.PipelineRun) model.DispatchReport {
	if p.opts.DispatchSink == nil || run.Status != model.RunStatusAwaitingDispatch {
		return model.DispatchReport{}
	}

	p.setStatus(ctx, run, model.RunStatusDispatching)
	report := dispatch.Run(ctx, p.opts.DispatchSink, run.Leads, export.MessageIndex(run.Messages), p.opts.DispatchLimiter)
	run.Dispatch = &report

	p.finish(ctx, run, model.RunStatusComplete)
	return report
}

// fetchDomain retrieves the provider contacts for one domain, attaching the
// resolved organization name to every contact in the batch. Transient
// provider failures are retried with backoff before the domain is marked
// failed.
func (p *Pipeline) fetchDomain(ctx context.Context, domain string) ([]model.RawContact, error) {
	data, err := retry.Do(ctx, p.opts.Retry, "domain-search", func(ctx context.Context) (*hunter.SearchData, error) {
		if p.opts.Paginate {
			return p.contacts.DomainSearchAll(ctx, domain)
		}
		return p.contacts.DomainSearch(ctx, domain, p.opts.PageSize, 0)
	})
	if err != nil {
		return nil, err
	}

	contacts := make([]model.RawContact, 0, len(data.Emails))
	for _, e := range data.Emails {
		contacts = append(contacts, model.RawContact{
			Email:       e.Value,
			FirstName:   e.FirstName,
			LastName:    e.LastName,
			Position:    e.Position,
			LinkedInURL: e.LinkedIn,
			Company:     data.Organization,
			Domain:      domain,
			DirectPhone: e.PhoneNumber,
			Confidence:  e.Confidence,
		})
	}
	return contacts, nil
}

func (p *Pipeline) setStatus(ctx context.Context, run *model.PipelineRun, status model.RunStatus) {
	run.Status = status
	if p.history == nil {
		return
	}
	if err := p.history.UpdateRunStatus(ctx, run.ID, status); err != nil {
		zap.L().Warn("pipeline: update run status failed",
			zap.String("run", run.ID),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) finish(ctx context.Context, run *model.PipelineRun, status model.RunStatus) {
	run.Status = status
	run.EndedAt = time.Now().UTC()
	if p.history == nil {
		return
	}
	if err := p.history.FinishRun(ctx, run.ID, status, run.Summarize()); err != nil {
		zap.L().Warn("pipeline: finish run record failed",
			zap.String("run", run.ID),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) fail(ctx context.Context, run *model.PipelineRun, err error) (*model.PipelineRun, error) {
	p.finish(ctx, run, model.RunStatusFailed)
	return run, err
}
