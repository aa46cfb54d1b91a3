package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configPathEnv, bearerTokenEnv, dataDirEnv, logLevelEnv, telegramTokenEnv, telegramChatIDEnv} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "twitter", cfg.Source.Name)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, 1000, cfg.Pipeline.MaxCount)
	assert.True(t, cfg.Pipeline.UseCached)
	assert.True(t, cfg.History.IsEnabled())
	assert.False(t, cfg.Presentation.Telegram.Enabled())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
logging:
  level: debug
storage:
  dataDir: /tmp/tweets
source:
  name: html
  twitter:
    pageSize: 50
    timeout: 3s
  html:
    urlTemplate: https://example.org/search?q={query}
    itemSelector: li.post
pipeline:
  maxCount: 200
  watchInterval: 1m
history:
  enabled: false
presentation:
  exportFormats: [csv, xlsx]
`)
	t.Setenv(bearerTokenEnv, "env-token")
	t.Setenv(logLevelEnv, "warn")
	t.Setenv(telegramTokenEnv, "bot")
	t.Setenv(telegramChatIDEnv, "chat")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "/tmp/tweets", cfg.Storage.DataDir)
	assert.Equal(t, "tweets.csv", cfg.Storage.RawFile)
	assert.Equal(t, "html", cfg.Source.Name)
	assert.Equal(t, 50, cfg.Source.Twitter.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Source.Twitter.Timeout)
	assert.Equal(t, "en", cfg.Source.Twitter.Language)
	assert.Equal(t, "env-token", cfg.Source.Twitter.BearerToken)
	assert.Equal(t, "li.post", cfg.Source.HTML.ItemSelector)
	assert.Equal(t, 200, cfg.Pipeline.MaxCount)
	assert.Equal(t, time.Minute, cfg.Pipeline.WatchInterval)
	assert.False(t, cfg.History.IsEnabled())
	assert.Equal(t, []string{"csv", "xlsx"}, cfg.Presentation.ExportFormats)
	assert.True(t, cfg.Presentation.Telegram.Enabled())
}

func TestLoadPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, writeConfig(t, "storage:\n  dataDir: from-env\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Storage.DataDir)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "logging: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "source:\n  name: mastodon\n"))
	assert.ErrorContains(t, err, "unknown source")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "zero max count", mutate: func(c *Config) { c.Pipeline.MaxCount = 0 }},
		{name: "default count above max", mutate: func(c *Config) { c.Pipeline.DefaultCount = 5000 }},
		{name: "tiny watch interval", mutate: func(c *Config) { c.Pipeline.WatchInterval = time.Millisecond }},
		{name: "negative sample rows", mutate: func(c *Config) { c.Presentation.SampleRows = -1 }},
		{name: "empty data dir", mutate: func(c *Config) { c.Storage.DataDir = "" }},
		{name: "bad export format", mutate: func(c *Config) { c.Presentation.ExportFormats = []string{"pdf"} }},
		{name: "html without selectors", mutate: func(c *Config) { c.Source.Name = "html" }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if tc.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
