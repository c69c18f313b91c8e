// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Whois      WhoisConfig      `yaml:"whois" mapstructure:"whois"`
	SimilarWeb SimilarWebConfig `yaml:"similarweb" mapstructure:"similarweb"`
	SEMrush    SEMrushConfig    `yaml:"semrush" mapstructure:"semrush"`
	PageSpeed  PageSpeedConfig  `yaml:"pagespeed" mapstructure:"pagespeed"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Analyze    AnalyzeConfig    `yaml:"analyze" mapstructure:"analyze"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the analysis history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// WhoisConfig holds WHOIS lookup settings.
type WhoisConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SimilarWebConfig holds SimilarWeb API settings.
type SimilarWebConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SEMrushConfig holds SEMrush API settings (traffic fallback provider).
type SEMrushConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PageSpeedConfig holds Google PageSpeed Insights settings.
type PageSpeedConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// AnthropicConfig holds Anthropic API settings for the keyword and
// valuation stages. An empty key selects the heuristic valuer.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// AnalyzeConfig tunes the stage runner.
type AnalyzeConfig struct {
	RetryAttempts   int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelayMs    int    `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`
	StageTimeoutSec int    `yaml:"stage_timeout_secs" mapstructure:"stage_timeout_secs"`
	SEOTimeoutSec   int    `yaml:"seo_timeout_secs" mapstructure:"seo_timeout_secs"`
	TLDTierFile     string `yaml:"tld_tier_file" mapstructure:"tld_tier_file"`
}

// BatchConfig configures bulk appraisal.
type BatchConfig struct {
	MaxConcurrentDomains int `yaml:"max_concurrent_domains" mapstructure:"max_concurrent_domains"`
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
	v.SetEnvPrefix("APPRAISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "appraisals.db")
	v.SetDefault("whois.base_url", "https://who-dat.as93.net")
	v.SetDefault("similarweb.base_url", "https://api.similarweb.com/v1/website")
	v.SetDefault("semrush.base_url", "https://api.semrush.com")
	v.SetDefault("pagespeed.base_url", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed")
	v.SetDefault("pagespeed.rate_per_second", 1.0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("analyze.retry_attempts", 2)
	v.SetDefault("analyze.retry_delay_ms", 2000)
	v.SetDefault("analyze.stage_timeout_secs", 15)
	v.SetDefault("analyze.seo_timeout_secs", 30)
	v.SetDefault("batch.max_concurrent_domains", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
