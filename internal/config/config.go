package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "TWEETSENTIMENT_CONFIG"
	bearerTokenEnv    = "BEARER_TOKEN"
	dataDirEnv        = "TWEETSENTIMENT_DATA_DIR"
	logLevelEnv       = "TWEETSENTIMENT_LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Storage      StorageConfig      `yaml:"storage"`
	Source       SourceConfig       `yaml:"source"`
	Scoring      ScoringConfig      `yaml:"scoring"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	Presentation PresentationConfig `yaml:"presentation"`
	History      HistoryConfig      `yaml:"history"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig locates the pipeline artifacts.
type StorageConfig struct {
	DataDir       string `yaml:"dataDir"`
	RawFile       string `yaml:"rawFile"`
	CleanFile     string `yaml:"cleanFile"`
	SentimentFile string `yaml:"sentimentFile"`
}

// SourceConfig picks the fetch strategy and its settings.
type SourceConfig struct {
	Name    string        `yaml:"name"`
	Twitter TwitterConfig `yaml:"twitter"`
	HTML    HTMLConfig    `yaml:"html"`
}

// TwitterConfig wires the X API recent-search client.
type TwitterConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	BearerToken       string        `yaml:"bearerToken"`
	Language          string        `yaml:"language"`
	PageSize          int           `yaml:"pageSize"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Timeout           time.Duration `yaml:"timeout"`
}

// HTMLConfig describes a scraped search page.
type HTMLConfig struct {
	URLTemplate  string `yaml:"urlTemplate"`
	ItemSelector string `yaml:"itemSelector"`
	TextSelector string `yaml:"textSelector"`
	IDAttribute  string `yaml:"idAttribute"`
	MaxPages     int    `yaml:"maxPages"`
}

// ScoringConfig tunes the scorer.
type ScoringConfig struct {
	LexiconPath string `yaml:"lexiconPath"`
}

// PipelineConfig bounds invocation parameters.
type PipelineConfig struct {
	MaxCount      int           `yaml:"maxCount"`
	DefaultCount  int           `yaml:"defaultCount"`
	UseCached     bool          `yaml:"useCached"`
	WatchInterval time.Duration `yaml:"watchInterval"`
}

// PresentationConfig selects the presenters.
type PresentationConfig struct {
	SampleRows    int            `yaml:"sampleRows"`
	TopTerms      int            `yaml:"topTerms"`
	ExportDir     string         `yaml:"exportDir"`
	ExportFormats []string       `yaml:"exportFormats"`
	Telegram      TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	Endpoint string `yaml:"endpoint"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// HistoryConfig locates the run history database.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// IsEnabled defaults to true when unset.
func (h HistoryConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// Sources known to the application.
var knownSources = map[string]struct{}{"twitter": {}, "html": {}}

// Load reads YAML configuration (path argument first, then the
// TWEETSENTIMENT_CONFIG variable) and applies environment overrides.
// A missing or broken file is an error only when its path was given.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, eris.Wrapf(err, "read config %s", path)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, eris.Wrapf(err, "parse config %s", path)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	return cfg, cfg.Validate()
}

// Validate rejects settings the application cannot run with.
func (c Config) Validate() error {
	if _, ok := knownSources[c.Source.Name]; !ok {
		return eris.Errorf("config: unknown source %q", c.Source.Name)
	}
	if c.Pipeline.MaxCount <= 0 {
		return eris.Errorf("config: pipeline.maxCount must be positive, got %d", c.Pipeline.MaxCount)
	}
	if c.Pipeline.DefaultCount <= 0 || c.Pipeline.DefaultCount > c.Pipeline.MaxCount {
		return eris.Errorf("config: pipeline.defaultCount must be in 1..%d, got %d", c.Pipeline.MaxCount, c.Pipeline.DefaultCount)
	}
	if c.Pipeline.WatchInterval < time.Second {
		return eris.Errorf("config: pipeline.watchInterval must be at least 1s, got %s", c.Pipeline.WatchInterval)
	}
	if c.Presentation.SampleRows < 0 || c.Presentation.TopTerms < 0 {
		return eris.New("config: presentation limits must not be negative")
	}
	if c.Storage.DataDir == "" {
		return eris.New("config: storage.dataDir is required")
	}
	for _, f := range c.Presentation.ExportFormats {
		switch strings.ToLower(f) {
		case "csv", "xlsx":
		default:
			return eris.Errorf("config: unknown export format %q", f)
		}
	}
	if c.Source.Name == "html" && (c.Source.HTML.URLTemplate == "" || c.Source.HTML.ItemSelector == "") {
		return eris.New("config: html source needs urlTemplate and itemSelector")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(bearerTokenEnv); v != "" {
		c.Source.Twitter.BearerToken = v
	}

	if v := os.Getenv(dataDirEnv); v != "" {
		c.Storage.DataDir = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Presentation.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Presentation.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Storage.DataDir != "" {
		base.Storage.DataDir = override.Storage.DataDir
	}
	if override.Storage.RawFile != "" {
		base.Storage.RawFile = override.Storage.RawFile
	}
	if override.Storage.CleanFile != "" {
		base.Storage.CleanFile = override.Storage.CleanFile
	}
	if override.Storage.SentimentFile != "" {
		base.Storage.SentimentFile = override.Storage.SentimentFile
	}

	if override.Source.Name != "" {
		base.Source.Name = override.Source.Name
	}
	tw := override.Source.Twitter
	if tw.BaseURL != "" {
		base.Source.Twitter.BaseURL = tw.BaseURL
	}
	if tw.BearerToken != "" {
		base.Source.Twitter.BearerToken = tw.BearerToken
	}
	if tw.Language != "" {
		base.Source.Twitter.Language = tw.Language
	}
	if tw.PageSize != 0 {
		base.Source.Twitter.PageSize = tw.PageSize
	}
	if tw.RequestsPerSecond != 0 {
		base.Source.Twitter.RequestsPerSecond = tw.RequestsPerSecond
	}
	if tw.Timeout != 0 {
		base.Source.Twitter.Timeout = tw.Timeout
	}
	if override.Source.HTML.URLTemplate != "" {
		base.Source.HTML = override.Source.HTML
	}

	if override.Scoring.LexiconPath != "" {
		base.Scoring.LexiconPath = override.Scoring.LexiconPath
	}

	if override.Pipeline.MaxCount != 0 {
		base.Pipeline.MaxCount = override.Pipeline.MaxCount
	}
	if override.Pipeline.DefaultCount != 0 {
		base.Pipeline.DefaultCount = override.Pipeline.DefaultCount
	}
	if override.Pipeline.UseCached {
		base.Pipeline.UseCached = true
	}
	if override.Pipeline.WatchInterval != 0 {
		base.Pipeline.WatchInterval = override.Pipeline.WatchInterval
	}

	if override.Presentation.SampleRows != 0 {
		base.Presentation.SampleRows = override.Presentation.SampleRows
	}
	if override.Presentation.TopTerms != 0 {
		base.Presentation.TopTerms = override.Presentation.TopTerms
	}
	if override.Presentation.ExportDir != "" {
		base.Presentation.ExportDir = override.Presentation.ExportDir
	}
	if len(override.Presentation.ExportFormats) > 0 {
		base.Presentation.ExportFormats = override.Presentation.ExportFormats
	}
	if override.Presentation.Telegram.BotToken != "" {
		base.Presentation.Telegram.BotToken = override.Presentation.Telegram.BotToken
	}
	if override.Presentation.Telegram.ChatID != "" {
		base.Presentation.Telegram.ChatID = override.Presentation.Telegram.ChatID
	}
	if override.Presentation.Telegram.Endpoint != "" {
		base.Presentation.Telegram.Endpoint = override.Presentation.Telegram.Endpoint
	}

	if override.History.Enabled != nil {
		base.History.Enabled = override.History.Enabled
	}
	if override.History.DSN != "" {
		base.History.DSN = override.History.DSN
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Storage: StorageConfig{
			DataDir:       "data",
			RawFile:       "tweets.csv",
			CleanFile:     "tweets_clean.csv",
			SentimentFile: "tweets_sentiment.csv",
		},
		Source: SourceConfig{
			Name: "twitter",
			Twitter: TwitterConfig{
				BaseURL:           "https://api.twitter.com",
				Language:          "en",
				PageSize:          100,
				RequestsPerSecond: 1,
				Timeout:           15 * time.Second,
			},
		},
		Pipeline: PipelineConfig{
			MaxCount:      1000,
			DefaultCount:  20,
			UseCached:     true,
			WatchInterval: 15 * time.Minute,
		},
		Presentation: PresentationConfig{
			SampleRows:    10,
			TopTerms:      20,
			ExportDir:     "data/export",
			ExportFormats: []string{"csv"},
		},
		History: HistoryConfig{DSN: "data/history.db"},
	}
}
