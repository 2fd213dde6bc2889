package anthropic

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSDKMessages(t *testing.T) {
	msgs := []Message{
		{Role: "user", Content: "write an outreach message"},
		{Role: "assistant", Content: "Hi Jane"},
	}

	out := toSDKMessages(msgs)
	require.Len(t, out, 2)
	assert.Equal(t, sdk.MessageParamRoleUser, out[0].Role)
	assert.Equal(t, sdk.MessageParamRoleAssistant, out[1].Role)
}

func TestFromSDKMessageConcatenatesText(t *testing.T) {
	msg := &sdk.Message{
		ID:         "msg_123",
		Model:      "claude-haiku-4-5-20251001",
		StopReason: "end_turn",
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "Hi Jane, "},
			{Type: "text", Text: "let's connect."},
		},
	}
	msg.Usage.InputTokens = 42
	msg.Usage.OutputTokens = 11

	resp := fromSDKMessage(msg)
	assert.Equal(t, "msg_123", resp.ID)
	assert.Equal(t, "Hi Jane, let's connect.", resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, int64(42), resp.Usage.InputTokens)
	assert.Equal(t, int64(11), resp.Usage.OutputTokens)
}
