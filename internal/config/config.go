// Package config loads application configuration and per-source override
// files, and installs the global logger.
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
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	BoxOffice BoxOfficeConfig `yaml:"boxoffice" mapstructure:"boxoffice"`
	Wikipedia WikipediaConfig `yaml:"wikipedia" mapstructure:"wikipedia"`
	Tomatoes  TomatoesConfig  `yaml:"tomatoes" mapstructure:"tomatoes"`
	Feature   FeatureConfig   `yaml:"feature" mapstructure:"feature"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the shared HTTP fetcher.
type HTTPConfig struct {
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// BoxOfficeConfig configures the annual gross chart scraper.
type BoxOfficeConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	OverrideFile string `yaml:"override_file" mapstructure:"override_file"`
}

// WikipediaConfig configures title resolution and revision scraping.
type WikipediaConfig struct {
	APIURL           string `yaml:"api_url" mapstructure:"api_url"`
	SearchLimit      int    `yaml:"search_limit" mapstructure:"search_limit"`
	HorizonStartDays int    `yaml:"horizon_start_days" mapstructure:"horizon_start_days"`
	HorizonEndDays   int    `yaml:"horizon_end_days" mapstructure:"horizon_end_days"`
	ScrapeDir        string `yaml:"scrape_dir" mapstructure:"scrape_dir"`
	OverrideFile     string `yaml:"override_file" mapstructure:"override_file"`
}

// TomatoesConfig configures the critic catalog client.
type TomatoesConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	OverrideFile string `yaml:"override_file" mapstructure:"override_file"`
}

// FeatureConfig configures feature extraction.
type FeatureConfig struct {
	Metric       string `yaml:"metric" mapstructure:"metric"`
	MaxDaysApart int    `yaml:"max_days_apart" mapstructure:"max_days_apart"`
}

// StoreConfig configures the run ledger database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and the environment
// (PREDICTOPEDIA_ prefix), applying defaults for everything else.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PREDICTOPEDIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("http.user_agent", "predictopedia/1.0")
	v.SetDefault("http.rate_per_sec", 4)
	v.SetDefault("boxoffice.base_url", "http://www.boxofficemojo.com")
	v.SetDefault("boxoffice.override_file", "config/boxofficemojo.yaml")
	v.SetDefault("wikipedia.api_url", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("wikipedia.search_limit", 15)
	v.SetDefault("wikipedia.horizon_start_days", 0)
	v.SetDefault("wikipedia.horizon_end_days", 28)
	v.SetDefault("wikipedia.scrape_dir", "scrape")
	v.SetDefault("wikipedia.override_file", "config/wikipedia.yaml")
	v.SetDefault("tomatoes.base_url", "http://api.rottentomatoes.com/api/public/v1.0")
	v.SetDefault("tomatoes.override_file", "config/rottentomatoes.yaml")
	v.SetDefault("feature.metric", "people_genres_jaccard")
	v.SetDefault("feature.max_days_apart", 1825)
	v.SetDefault("store.path", "predictopedia.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// InitLogger builds the global zap logger from cfg.
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
