// Package dispatch forwards qualified leads downstream, one HTTP round-trip
// per lead in input order. A failure for one lead never aborts the rest.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecr-group/leadqual-cli/internal/model"
	"github.com/ecr-group/leadqual-cli/pkg/salesforce"
)

// Payload is the per-lead JSON body posted to the webhook (and the field
// source for direct CRM inserts).
type Payload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	LinkedInURL string `json:"linkedin_url"`
	Message     string `json:"message"`
	Domain      string `json:"domain"`
	Mobile      string `json:"mobile"`
	DirectPhone string `json:"direct_phone"`
	HQPhone     string `json:"hq_phone"`
}

// BuildPayload assembles the dispatch body for one lead.
func BuildPayload(lead model.QualifiedLead, message string) Payload {
	return Payload{
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		Email:       lead.Email,
		JobTitle:    lead.Position,
		Company:     lead.Company,
		LinkedInURL: lead.LinkedInURL,
		Message:     message,
		Domain:      lead.Domain,
		Mobile:      lead.Mobile,
		DirectPhone: lead.DirectPhone,
		HQPhone:     lead.HQPhone,
	}
}

// Sink accepts a single lead payload.
type Sink interface {
	Send(ctx context.Context, p Payload) error
}

// WebhookSink posts payloads as JSON to a configured URL. A 200 response
// means accepted; anything else is a failure.
type WebhookSink struct {
	URL  string
	HTTP *http.Client
}

// NewWebhookSink creates a webhook sink with a 10s default timeout.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		URL:  url,
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSink) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "dispatch: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "dispatch: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return eris.Wrap(err, "dispatch: send request")
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return eris.New(fmt.Sprintf("dispatch: webhook status %d", resp.StatusCode))
	}
	return nil
}

// SalesforceSink inserts each payload as a Lead sObject.
type SalesforceSink struct {
	Client salesforce.Client
}

func (s *SalesforceSink) Send(ctx context.Context, p Payload) error {
	lastName := p.LastName
	if lastName == "" {
		// Lead.LastName is mandatory in Salesforce.
		lastName = p.Email
	}
	_, err := salesforce.CreateLead(ctx, s.Client, map[string]any{
		"FirstName":   p.FirstName,
		"LastName":    lastName,
		"Company":     companyOrDomain(p),
		"Email":       p.Email,
		"Title":       p.JobTitle,
		"Website":     p.Domain,
		"MobilePhone": p.Mobile,
		"Phone":       p.DirectPhone,
		"Description": p.Message,
	})
	return err
}

func companyOrDomain(p Payload) string {
	if p.Company != "" {
		return p.Company
	}
	return p.Domain
}

// Run dispatches every lead to the sink sequentially in input order, pacing
// on the limiter when set. Per-lead failures are recorded and skipped over.
func Run(ctx context.Context, sink Sink, leads []model.QualifiedLead, messageByLead map[string]string, limiter *rate.Limiter) model.DispatchReport {
	report := model.DispatchReport{
		Total:   len(leads),
		Results: make([]model.DispatchResult, 0, len(leads)),
	}

	for i, lead := range leads {
		if i > 0 && limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				// Cancelled mid-batch: mark the rest unsent.
				for _, rest := range leads[i:] {
					report.Results = append(report.Results, model.DispatchResult{
						LeadEmail: rest.Email,
						Detail:    "cancelled before dispatch",
					})
				}
				return report
			}
		}

		payload := BuildPayload(lead, messageByLead[strings.ToLower(lead.Email)])
		result := model.DispatchResult{LeadEmail: lead.Email}

		if err := sink.Send(ctx, payload); err != nil {
			result.Detail = err.Error()
			zap.L().Warn("dispatch: lead failed",
				zap.String("lead", lead.Email),
				zap.Error(err),
			)
		} else {
			result.Sent = true
			report.Sent++
		}
		report.Results = append(report.Results, result)
	}

	zap.L().Info("dispatch complete",
		zap.Int("sent", report.Sent),
		zap.Int("total", report.Total),
	)
	return report
}
