package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ecr-group/leadqual-cli/internal/compose"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Hunter     HunterConfig     `yaml:"hunter" mapstructure:"hunter"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Filter     FilterConfig     `yaml:"filter" mapstructure:"filter"`
	Compose    ComposeConfig    `yaml:"compose" mapstructure:"compose"`
	Dispatch   DispatchConfig   `yaml:"dispatch" mapstructure:"dispatch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// HunterConfig holds contact-search API settings.
type HunterConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	PageSize       int    `yaml:"page_size" mapstructure:"page_size"`
	Paginate       bool   `yaml:"paginate" mapstructure:"paginate"`
	PageIntervalMS int    `yaml:"page_interval_ms" mapstructure:"page_interval_ms"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// FilterConfig configures lead admission rules.
type FilterConfig struct {
	ConfidenceThreshold int    `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	KeywordsFile        string `yaml:"keywords_file" mapstructure:"keywords_file"`
	TitleMatch          string `yaml:"title_match" mapstructure:"title_match"`
}

// ComposeConfig configures outreach message composition.
type ComposeConfig struct {
	Mode        string `yaml:"mode" mapstructure:"mode"`
	Template    string `yaml:"template" mapstructure:"template"`
	Tone        string `yaml:"tone" mapstructure:"tone"`
	Instruction string `yaml:"instruction" mapstructure:"instruction"`
}

// DispatchConfig configures CRM hand-off.
type DispatchConfig struct {
	Target     string `yaml:"target" mapstructure:"target"`
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
	IntervalMS int    `yaml:"interval_ms" mapstructure:"interval_ms"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADQUAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadqual.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	// Credential and URL keys get empty defaults so env-only values are
	// seen by Unmarshal.
	v.SetDefault("hunter.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("salesforce.client_id", "")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.key_path", "")
	v.SetDefault("dispatch.webhook_url", "")
	v.SetDefault("filter.keywords_file", "")
	v.SetDefault("compose.instruction", "")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.page_size", 100)
	v.SetDefault("hunter.paginate", false)
	v.SetDefault("hunter.page_interval_ms", 1200)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("filter.confidence_threshold", 50)
	v.SetDefault("filter.title_match", "token_subset")
	v.SetDefault("compose.mode", "templated")
	v.SetDefault("compose.template", "Hi {first_name}, I noticed your work as {position} at {company} and wanted to reach out.")
	v.SetDefault("compose.tone", "Friendly")
	v.SetDefault("dispatch.target", "webhook")
	v.SetDefault("dispatch.interval_ms", 1000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration required for the given mode is
// present. Modes: "qualify", "dispatch", "serve".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "qualify":
		if c.Hunter.Key == "" {
			missing = append(missing, "hunter.key is required")
		}
		if c.Compose.Mode == "generated" && c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required for generated messages")
		}
		if c.Compose.Mode == "templated" {
			if err := compose.ValidateTemplate(c.Compose.Template); err != nil {
				missing = append(missing, "compose.template: "+err.Error())
			}
		}
	case "dispatch":
		switch c.Dispatch.Target {
		case "webhook":
			if c.Dispatch.WebhookURL == "" {
				missing = append(missing, "dispatch.webhook_url is required")
			}
		case "salesforce":
			if c.Salesforce.ClientID == "" || c.Salesforce.Username == "" || c.Salesforce.KeyPath == "" {
				missing = append(missing, "salesforce.client_id, salesforce.username and salesforce.key_path are required")
			}
		default:
			missing = append(missing, "dispatch.target must be webhook or salesforce")
		}
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		if c.Hunter.Key == "" {
			missing = append(missing, "hunter.key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Filter.ConfidenceThreshold < 0 || c.Filter.ConfidenceThreshold > 100 {
		missing = append(missing, "filter.confidence_threshold must be between 0 and 100")
	}
	if c.Hunter.PageSize < 1 {
		missing = append(missing, "hunter.page_size must be >= 1")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
