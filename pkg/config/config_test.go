// pkg/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "tabwarden", cfg.Logger().ServiceName)
	assert.Equal(t, "green", cfg.Logger().Colors.Info)
	assert.Equal(t, BackendCDP, cfg.Browser().Backend)
	assert.Equal(t, 800, cfg.Browser().WindowWidth)
	assert.Equal(t, 600, cfg.Browser().WindowHeight)
	assert.Equal(t, 30*time.Second, cfg.Browser().LaunchTimeout)
	assert.Equal(t, 5*time.Second, cfg.Interaction().DefaultTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Interaction().PollInterval)
	assert.Empty(t, cfg.Ledger().ExportPath)
	assert.True(t, cfg.Prompt().Enabled)
	assert.NoError(t, cfg.Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		param  string
	}{
		{"unknown backend", func(c *Config) { c.BrowserCfg.Backend = "webdriver" }, "browser.backend"},
		{"zero width", func(c *Config) { c.BrowserCfg.WindowWidth = 0 }, "browser.window_width"},
		{"negative height", func(c *Config) { c.BrowserCfg.WindowHeight = -1 }, "browser.window_height"},
		{"negative launch timeout", func(c *Config) { c.BrowserCfg.LaunchTimeout = -time.Second }, "browser.launch_timeout"},
		{"negative default timeout", func(c *Config) { c.InteractionCfg.DefaultTimeout = -time.Second }, "interaction.default_timeout"},
		{"zero poll interval", func(c *Config) { c.InteractionCfg.PollInterval = 0 }, "interaction.poll_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var ce *fault.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.param, ce.Param)
		})
	}
}

// -- Viper Loading Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("yaml overrides defaults", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		yamlConfig := []byte(`
logger:
  level: debug
browser:
  backend: " Playwright "
  headless: true
  window_width: 1280
  args: ["--lang=en-US"]
interaction:
  default_timeout: 2s
ledger:
  export_path: /tmp/tabwarden/errors.jsonl
prompt:
  enabled: false
`)
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logger().Level)
		assert.Equal(t, BackendPlaywright, cfg.Browser().Backend)
		assert.True(t, cfg.Browser().Headless)
		assert.Equal(t, 1280, cfg.Browser().WindowWidth)
		assert.Equal(t, 600, cfg.Browser().WindowHeight)
		assert.Equal(t, []string{"--lang=en-US"}, cfg.Browser().Args)
		assert.Equal(t, 2*time.Second, cfg.Interaction().DefaultTimeout)
		assert.Equal(t, "/tmp/tabwarden/errors.jsonl", cfg.Ledger().ExportPath)
		assert.False(t, cfg.Prompt().Enabled)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("browser.window_height", 0)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.True(t, fault.IsConfiguration(err))
		assert.Contains(t, err.Error(), "browser.window_height")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("TABWARDEN_BROWSER_WINDOW_WIDTH", "1920")
		v := viper.New()
		SetDefaults(v)
		BindEnv(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 1920, cfg.Browser().WindowWidth)
	})
}
