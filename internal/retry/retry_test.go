package retry

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecr-group/leadqual-cli/pkg/hunter"
)

var fastCfg = Config{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastCfg, "test", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastCfg, "test", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &hunter.StatusError{StatusCode: 429, Detail: "rate limited"}
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastCfg, "test", func(context.Context) (int, error) {
		calls++
		return 0, &hunter.StatusError{StatusCode: 401, Detail: "bad key"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastCfg, "test", func(context.Context) (int, error) {
		calls++
		return 0, &hunter.StatusError{StatusCode: 503, Detail: "unavailable"}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var se *hunter.StatusError
	assert.ErrorAs(t, err, &se)
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Do(ctx, fastCfg, "test", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, &hunter.StatusError{StatusCode: 500, Detail: "boom"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoDoesNotRetryWrappedPermanent(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastCfg, "test", func(context.Context) (int, error) {
		calls++
		return 0, eris.New("parse failure")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &hunter.StatusError{StatusCode: 429}, true},
		{"server error", &hunter.StatusError{StatusCode: 502}, true},
		{"bad request", &hunter.StatusError{StatusCode: 400}, false},
		{"unauthorized", &hunter.StatusError{StatusCode: 401}, false},
		{"wrapped transient", eris.Wrap(&hunter.StatusError{StatusCode: 503}, "fetch"), true},
		{"plain error", eris.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestBackoffCapped(t *testing.T) {
	cfg := Config{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		Multiplier:     10,
	}.withDefaults()

	d := backoff(5, cfg)
	assert.LessOrEqual(t, d, time.Duration(float64(cfg.MaxBackoff)*(1+cfg.Jitter)))
}
