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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Matcher   MatcherConfig   `yaml:"matcher" mapstructure:"matcher"`
	Query     QueryConfig     `yaml:"query" mapstructure:"query"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	Model           string  `yaml:"model" mapstructure:"model"`
	CallTimeoutSecs int     `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	RequestsPerSec  float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// PricingConfig holds per-million-token rates for the configured model.
type PricingConfig struct {
	InputPerMTok  float64 `yaml:"input_per_mtok" mapstructure:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok" mapstructure:"output_per_mtok"`
}

// MatcherConfig holds fuzzy-matching thresholds and the alias cache TTL.
// The thresholds are behavioral contract: changing them changes which picks
// count toward every aggregate.
type MatcherConfig struct {
	AliasAcceptScore  int `yaml:"alias_accept_score" mapstructure:"alias_accept_score"`
	SideClassifyScore int `yaml:"side_classify_score" mapstructure:"side_classify_score"`
	AliasCacheTTLMins int `yaml:"alias_cache_ttl_mins" mapstructure:"alias_cache_ttl_mins"`
}

// QueryConfig holds aggregation eligibility thresholds.
type QueryConfig struct {
	UnderdogMinTotal int `yaml:"underdog_min_total" mapstructure:"underdog_min_total"`
	UnderdogMinCount int `yaml:"underdog_min_count" mapstructure:"underdog_min_count"`
	FinishMinPicks   int `yaml:"finish_min_picks" mapstructure:"finish_min_picks"`
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
	v.SetEnvPrefix("PICKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "picks.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.call_timeout_secs", 60)
	v.SetDefault("anthropic.requests_per_sec", 2)
	v.SetDefault("pricing.input_per_mtok", 3.00)
	v.SetDefault("pricing.output_per_mtok", 15.00)
	v.SetDefault("matcher.alias_accept_score", 85)
	v.SetDefault("matcher.side_classify_score", 60)
	v.SetDefault("matcher.alias_cache_ttl_mins", 5)
	v.SetDefault("query.underdog_min_total", 5)
	v.SetDefault("query.underdog_min_count", 2)
	v.SetDefault("query.finish_min_picks", 3)

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
