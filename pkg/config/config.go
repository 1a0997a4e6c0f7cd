// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

// EnvPrefix is prepended to every environment override, e.g.
// TABWARDEN_BROWSER_HEADLESS=true.
const EnvPrefix = "TABWARDEN"

// Supported browser backends.
const (
	BackendCDP        = "cdp"
	BackendPlaywright = "playwright"
)

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	BrowserCfg     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	InteractionCfg InteractionConfig `mapstructure:"interaction" yaml:"interaction"`
	LedgerCfg      LedgerConfig      `mapstructure:"ledger" yaml:"ledger"`
	PromptCfg      PromptConfig      `mapstructure:"prompt" yaml:"prompt"`
}

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig         { return c.BrowserCfg }
func (c *Config) Interaction() InteractionConfig { return c.InteractionCfg }
func (c *Config) Ledger() LedgerConfig           { return c.LedgerCfg }
func (c *Config) Prompt() PromptConfig           { return c.PromptCfg }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal color used for each log level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls how the browser handle is launched.
type BrowserConfig struct {
	// Backend selects the automation protocol: "cdp" or "playwright".
	Backend      string   `mapstructure:"backend" yaml:"backend"`
	Headless     bool     `mapstructure:"headless" yaml:"headless"`
	WindowWidth  int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int      `mapstructure:"window_height" yaml:"window_height"`
	Args         []string `mapstructure:"args" yaml:"args"`
	ExecPath     string   `mapstructure:"exec_path" yaml:"exec_path"`
	// RemoteURL attaches to an already running browser instead of launching one.
	RemoteURL     string        `mapstructure:"remote_url" yaml:"remote_url"`
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
}

// InteractionConfig tunes element lookups.
type InteractionConfig struct {
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// LedgerConfig controls where the error ledger is exported on close.
type LedgerConfig struct {
	// ExportPath receives the ledger as JSON lines. Empty disables export.
	ExportPath string `mapstructure:"export_path" yaml:"export_path"`
}

// PromptConfig controls whether failures block on user acknowledgement.
type PromptConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "tabwarden")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.backend", BackendCDP)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.window_width", 800)
	v.SetDefault("browser.window_height", 600)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.launch_timeout", "30s")

	// -- Interaction --
	v.SetDefault("interaction.default_timeout", "5s")
	v.SetDefault("interaction.poll_interval", "500ms")

	// -- Ledger --
	v.SetDefault("ledger.export_path", "")

	// -- Prompt --
	v.SetDefault("prompt.enabled", true)
}

// BindEnv enables environment overrides for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.BrowserCfg.Backend = strings.ToLower(strings.TrimSpace(cfg.BrowserCfg.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values. Failures are
// *fault.ConfigurationError.
func (c *Config) Validate() error {
	if err := c.BrowserCfg.Validate(); err != nil {
		return err
	}
	return c.InteractionCfg.Validate()
}

// Validate checks the browser section.
func (b *BrowserConfig) Validate() error {
	const op = "config"
	switch b.Backend {
	case BackendCDP, BackendPlaywright:
	default:
		return fault.Configuration(op, "browser.backend",
			fmt.Sprintf("must be %q or %q, got %q", BackendCDP, BackendPlaywright, b.Backend))
	}
	if b.WindowWidth <= 0 {
		return fault.Configuration(op, "browser.window_width", "must be a positive integer")
	}
	if b.WindowHeight <= 0 {
		return fault.Configuration(op, "browser.window_height", "must be a positive integer")
	}
	if b.LaunchTimeout < 0 {
		return fault.Configuration(op, "browser.launch_timeout", "must not be negative")
	}
	return nil
}

// Validate checks the interaction section.
func (i *InteractionConfig) Validate() error {
	const op = "config"
	if i.DefaultTimeout < 0 {
		return fault.Configuration(op, "interaction.default_timeout", "must not be negative")
	}
	if i.PollInterval <= 0 {
		return fault.Configuration(op, "interaction.poll_interval", "must be a positive duration")
	}
	return nil
}
