package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadqual.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.hunter.io/v2", cfg.Hunter.BaseURL)
	assert.Equal(t, 100, cfg.Hunter.PageSize)
	assert.False(t, cfg.Hunter.Paginate)
	assert.Equal(t, 1200, cfg.Hunter.PageIntervalMS)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 50, cfg.Filter.ConfidenceThreshold)
	assert.Equal(t, "token_subset", cfg.Filter.TitleMatch)
	assert.Equal(t, "templated", cfg.Compose.Mode)
	assert.Equal(t, "Friendly", cfg.Compose.Tone)
	assert.Equal(t, "webhook", cfg.Dispatch.Target)
	assert.Equal(t, 1000, cfg.Dispatch.IntervalMS)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leadqual
log:
  level: debug
  format: console
server:
  port: 9090
filter:
  confidence_threshold: 75
compose:
  mode: generated
  tone: Formal
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leadqual", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 75, cfg.Filter.ConfidenceThreshold)
	assert.Equal(t, "generated", cfg.Compose.Mode)
	assert.Equal(t, "Formal", cfg.Compose.Tone)
	// Defaults still apply for unset values
	assert.Equal(t, 100, cfg.Hunter.PageSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADQUAL_STORE_DRIVER", "sqlite")
	t.Setenv("LEADQUAL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LEADQUAL_HUNTER_KEY", "hk_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hk_test", cfg.Hunter.Key)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with the defaults a validation test needs.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Hunter.Key = "hk_test"
	cfg.Hunter.PageSize = 100
	cfg.Filter.ConfidenceThreshold = 50
	cfg.Compose.Mode = "templated"
	cfg.Dispatch.Target = "webhook"
	cfg.Dispatch.WebhookURL = "https://hooks.example.com/catch"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateQualify_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("qualify"))
}

func TestValidateQualify_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Hunter.Key = ""

	err := cfg.Validate("qualify")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hunter.key is required")
}

func TestValidateQualify_GeneratedNeedsAnthropic(t *testing.T) {
	cfg := validDefaults()
	cfg.Compose.Mode = "generated"

	err := cfg.Validate("qualify")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("qualify"))
}

func TestValidateQualify_TemplatePlaceholders(t *testing.T) {
	cfg := validDefaults()

	cfg.Compose.Template = "Hi {first_name}, {position} at {company}"
	assert.NoError(t, cfg.Validate("qualify"))

	// Bad templates are rejected up front, not discovered per-lead.
	cfg.Compose.Template = "Hi {nickname}"
	err := cfg.Validate("qualify")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "compose.template")
	assert.Contains(t, err.Error(), "nickname")

	// Generated mode does not use the template.
	cfg.Compose.Mode = "generated"
	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("qualify"))
}

func TestValidateDispatch_Webhook(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("dispatch"))

	cfg.Dispatch.WebhookURL = ""
	err := cfg.Validate("dispatch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch.webhook_url is required")
}

func TestValidateDispatch_Salesforce(t *testing.T) {
	cfg := validDefaults()
	cfg.Dispatch.Target = "salesforce"

	err := cfg.Validate("dispatch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce.client_id")

	cfg.Salesforce.ClientID = "client-id"
	cfg.Salesforce.Username = "user@example.com"
	cfg.Salesforce.KeyPath = "/etc/sf/key.pem"
	assert.NoError(t, cfg.Validate("dispatch"))
}

func TestValidateDispatch_UnknownTarget(t *testing.T) {
	cfg := validDefaults()
	cfg.Dispatch.Target = "carrier-pigeon"

	err := cfg.Validate("dispatch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch.target must be webhook or salesforce")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateThresholdBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Filter.ConfidenceThreshold = -1
	err := cfg.Validate("qualify")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "confidence_threshold must be between 0 and 100")

	cfg.Filter.ConfidenceThreshold = 101
	err = cfg.Validate("qualify")
	assert.Error(t, err)

	cfg.Filter.ConfidenceThreshold = 100
	assert.NoError(t, cfg.Validate("qualify"))
}

func TestValidatePageSize(t *testing.T) {
	cfg := validDefaults()
	cfg.Hunter.PageSize = 0

	err := cfg.Validate("qualify")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hunter.page_size must be >= 1")
}
