package compose

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecr-group/leadqual-cli/internal/model"
	"github.com/ecr-group/leadqual-cli/pkg/anthropic"
)

var testLead = model.QualifiedLead{
	Email:     "alex@ing.com",
	FirstName: "Alex",
	Position:  "CFO",
	Company:   "ING",
}

// fakeAI is a scripted anthropic.Client.
type fakeAI struct {
	text string
	err  error

	gotReq anthropic.MessageRequest
	calls  int
}

func (f *fakeAI) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{Text: f.text}, nil
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		want    string
		wantErr string
	}{
		{
			name: "round trip",
			tmpl: "Hi {first_name}, {position} at {company}",
			want: "Hi Alex, CFO at ING",
		},
		{
			name: "last name allowed",
			tmpl: "{first_name} {last_name}",
			want: "Alex ",
		},
		{
			name: "no placeholders",
			tmpl: "plain text",
			want: "plain text",
		},
		{
			name: "unclosed brace kept literally",
			tmpl: "Hi {first_name",
			want: "Hi {first_name",
		},
		{
			name:    "unknown placeholder",
			tmpl:    "Hi {nickname}",
			wantErr: "unsupported placeholder {nickname}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tt.tmpl, testLead)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var tmplErr *TemplateError
				assert.ErrorAs(t, err, &tmplErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate("Hi {first_name} at {company}"))
	assert.Error(t, ValidateTemplate("Hi {email}"))
}

func TestComposeTemplated(t *testing.T) {
	c := NewComposer(nil, "")
	msg := c.Compose(context.Background(), testLead, Params{
		Mode:     model.ModeTemplated,
		Template: "Hi {first_name}, {position} at {company}",
	})

	assert.Equal(t, "Hi Alex, CFO at ING", msg.Text)
	assert.Equal(t, model.ModeTemplated, msg.Mode)
	assert.Equal(t, "alex@ing.com", msg.LeadEmail)
	assert.False(t, msg.Fallback)
}

func TestComposeTemplatedBadPlaceholderIsNonFatal(t *testing.T) {
	c := NewComposer(nil, "")
	msg := c.Compose(context.Background(), testLead, Params{
		Mode:     model.ModeTemplated,
		Template: "Hi {nickname}",
	})

	// Unfilled template, flagged as fallback; never an error.
	assert.Equal(t, "Hi {nickname}", msg.Text)
	assert.True(t, msg.Fallback)
}

func TestComposeGenerated(t *testing.T) {
	ai := &fakeAI{text: "Hi Alex — impressive work at ING. Open to a quick chat?"}
	c := NewComposer(ai, "claude-haiku-4-5-20251001")

	msg := c.Compose(context.Background(), testLead, Params{
		Mode:        model.ModeGenerated,
		Tone:        model.ToneFriendly,
		Instruction: "mention treasury automation",
	})

	assert.Equal(t, ai.text, msg.Text)
	assert.False(t, msg.Fallback)
	assert.Equal(t, model.ToneFriendly, msg.Tone)

	require.Len(t, ai.gotReq.Messages, 1)
	prompt := ai.gotReq.Messages[0].Content
	assert.Contains(t, prompt, "Alex")
	assert.Contains(t, prompt, "CFO")
	assert.Contains(t, prompt, "ING")
	assert.Contains(t, prompt, "Friendly")
	assert.Contains(t, prompt, "treasury automation")
	assert.Equal(t, systemPrompt, ai.gotReq.System)
	require.NotNil(t, ai.gotReq.Temperature)
	assert.InDelta(t, 0.8, *ai.gotReq.Temperature, 1e-9)
	assert.Equal(t, int64(100), ai.gotReq.MaxTokens)
}

func TestComposeGeneratedFallsBackOnProviderError(t *testing.T) {
	ai := &fakeAI{err: eris.New("quota exceeded")}
	c := NewComposer(ai, "claude-haiku-4-5-20251001")

	msg := c.Compose(context.Background(), testLead, Params{Mode: model.ModeGenerated})

	assert.Equal(t, "Hi Alex, I'd love to connect regarding insights relevant to CFO at ING.", msg.Text)
	assert.True(t, msg.Fallback)
	// Single attempt, no retry.
	assert.Equal(t, 1, ai.calls)
}

func TestComposeGeneratedFallsBackOnEmptyCompletion(t *testing.T) {
	ai := &fakeAI{text: "   "}
	c := NewComposer(ai, "claude-haiku-4-5-20251001")

	msg := c.Compose(context.Background(), testLead, Params{Mode: model.ModeGenerated})
	assert.True(t, msg.Fallback)
	assert.Equal(t, "Hi Alex, I'd love to connect regarding insights relevant to CFO at ING.", msg.Text)
}

func TestComposeAllPreservesOrder(t *testing.T) {
	leads := []model.QualifiedLead{
		testLead,
		{Email: "b@acme.com", FirstName: "Bo", Position: "Controller", Company: "Acme"},
	}
	c := NewComposer(nil, "")

	msgs := c.ComposeAll(context.Background(), leads, Params{
		Mode:     model.ModeTemplated,
		Template: "{first_name}",
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, "alex@ing.com", msgs[0].LeadEmail)
	assert.Equal(t, "Alex", msgs[0].Text)
	assert.Equal(t, "b@acme.com", msgs[1].LeadEmail)
	assert.Equal(t, "Bo", msgs[1].Text)
}
