// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all harvester configuration knobs loaded via Viper.
type Config struct {
	Site       SiteConfig       `mapstructure:"site"`
	Directory  DirectoryConfig  `mapstructure:"directory"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	DB         DBConfig         `mapstructure:"db"`
	Dedupe     DedupeConfig     `mapstructure:"dedupe"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Server     ServerConfig     `mapstructure:"server"`
	Twitter    TwitterConfig    `mapstructure:"twitter"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SiteConfig identifies the target site.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// DirectoryConfig locates the author listing and its sentinel range.
type DirectoryConfig struct {
	URL         string `mapstructure:"url"`
	FirstAuthor string `mapstructure:"first_author"`
	LastAuthor  string `mapstructure:"last_author"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DedupeConfig tunes near-duplicate title collapsing.
type DedupeConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// CheckpointConfig locates the per-item outcome log.
type CheckpointConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig controls the optional status HTTP server. A zero port
// disables it.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// TwitterConfig holds credentials for the enrichment client.
type TwitterConfig struct {
	BearerToken string `mapstructure:"bearer_token"`
	BaseURL     string `mapstructure:"base_url"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REPEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://ideas.repec.org")
	v.SetDefault("directory.url", "https://ideas.repec.org/i/eall.html")
	v.SetDefault("directory.first_author", "Aaberge, Rolf")
	v.SetDefault("directory.last_author", "Zhou, Li")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "repec-harvester/0.1")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("dedupe.threshold", 0.95)
	v.SetDefault("checkpoint.path", "checkpoint.json")
	v.SetDefault("server.port", 0)
	v.SetDefault("twitter.base_url", "https://api.twitter.com")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.Directory.URL == "" {
		return fmt.Errorf("directory.url is required")
	}
	if c.Directory.FirstAuthor == "" || c.Directory.LastAuthor == "" {
		return fmt.Errorf("directory sentinel authors are required")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Dedupe.Threshold <= 0 || c.Dedupe.Threshold > 1 {
		return fmt.Errorf("dedupe.threshold must be in (0, 1]")
	}
	if c.Checkpoint.Path == "" {
		return fmt.Errorf("checkpoint.path is required")
	}
	if c.Server.Port < 0 {
		return fmt.Errorf("server.port must be >= 0")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
