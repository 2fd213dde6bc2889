// Package compose produces one personalized outreach message per qualified
// lead, either by template substitution or via the generative-text provider.
package compose

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ecr-group/leadqual-cli/internal/model"
	"github.com/ecr-group/leadqual-cli/pkg/anthropic"
)

const (
	// targetChars is the soft length target passed to the provider. Not hard
	// enforced on the result.
	targetChars = 250

	defaultMaxTokens   = 100
	defaultTemperature = 0.8

	systemPrompt = "You are an outreach assistant. You write short, personalized LinkedIn connection messages for B2B prospecting. Reply with the message text only."
)

// Params selects the generation mode and its inputs.
type Params struct {
	Mode        model.GenerationMode
	Template    string     // templated mode
	Tone        model.Tone // generated mode, optional
	Instruction string     // generated mode, optional free-text directive
}

// Composer generates outreach messages. The zero value is not usable; create
// one with NewComposer.
type Composer struct {
	ai          anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// Option configures the composer.
type Option func(*Composer)

// WithMaxTokens overrides the completion token budget.
func WithMaxTokens(n int64) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Composer) {
		c.temperature = t
	}
}

// NewComposer creates a Composer. ai may be nil when only templated mode is
// used; generated mode then falls back to the canned template.
func NewComposer(ai anthropic.Client, modelID string, opts ...Option) *Composer {
	c := &Composer{
		ai:          ai,
		model:       modelID,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compose produces the outreach message for one lead. It never returns an
// error: template failures fall back to the unfilled template and provider
// failures fall back to the canned message, both logged as warnings.
func (c *Composer) Compose(ctx context.Context, lead model.QualifiedLead, params Params) model.OutreachMessage {
	msg := model.OutreachMessage{
		LeadEmail:   lead.Email,
		Mode:        params.Mode,
		Tone:        params.Tone,
		Instruction: params.Instruction,
	}

	if params.Mode == model.ModeTemplated {
		text, err := RenderTemplate(params.Template, lead)
		if err != nil {
			zap.L().Warn("compose: template render failed, using unfilled template",
				zap.String("lead", lead.Email),
				zap.Error(err),
			)
			msg.Text = params.Template
			msg.Fallback = true
			return msg
		}
		msg.Text = text
		return msg
	}

	msg.Text, msg.Fallback = c.generate(ctx, lead, params)
	return msg
}

// ComposeAll produces one message per lead, preserving input order.
func (c *Composer) ComposeAll(ctx context.Context, leads []model.QualifiedLead, params Params) []model.OutreachMessage {
	msgs := make([]model.OutreachMessage, 0, len(leads))
	for _, lead := range leads {
		msgs = append(msgs, c.Compose(ctx, lead, params))
	}
	return msgs
}

// generate requests one completion from the provider. A single attempt; any
// failure falls back to the canned template and reports fallback=true.
func (c *Composer) generate(ctx context.Context, lead model.QualifiedLead, params Params) (text string, fallback bool) {
	if c.ai == nil {
		zap.L().Warn("compose: no generation client configured, using fallback",
			zap.String("lead", lead.Email),
		)
		return renderFallback(lead), true
	}

	temp := c.temperature
	resp, err := c.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(lead, params)},
		},
	})
	if err != nil {
		zap.L().Warn("compose: generation failed, using fallback",
			zap.String("lead", lead.Email),
			zap.Error(err),
		)
		return renderFallback(lead), true
	}

	text = strings.TrimSpace(resp.Text)
	if text == "" {
		zap.L().Warn("compose: empty completion, using fallback",
			zap.String("lead", lead.Email),
		)
		return renderFallback(lead), true
	}

	resp.Usage.LogUsage(c.model, "compose")
	return text, false
}

// buildPrompt embeds the lead's name, title and company plus the optional
// tone and custom instruction.
func buildPrompt(lead model.QualifiedLead, params Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a LinkedIn outreach message of at most %d characters to %s, who works as %s at %s.",
		targetChars, lead.FirstName, lead.Position, lead.Company)
	if params.Tone != "" {
		fmt.Fprintf(&b, " Tone: %s.", params.Tone)
	}
	if params.Instruction != "" {
		fmt.Fprintf(&b, " Additional instruction: %s", params.Instruction)
	}
	return b.String()
}
