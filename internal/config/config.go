// Package config loads application configuration from config.yaml and
// DIRECTORY_-prefixed environment variables.
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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Places PlacesConfig `yaml:"places" mapstructure:"places"`
	Site   SiteConfig   `yaml:"site" mapstructure:"site"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds Google Places API settings and the geographic bias
// for searches.
type PlacesConfig struct {
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Latitude     float64 `yaml:"latitude" mapstructure:"latitude"`
	Longitude    float64 `yaml:"longitude" mapstructure:"longitude"`
	RadiusMeters float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SiteConfig describes the town the directory serves and the public
// base URL images are hosted under.
type SiteConfig struct {
	Town    string   `yaml:"town" mapstructure:"town"`
	Zip     string   `yaml:"zip" mapstructure:"zip"`
	BaseURL string   `yaml:"base_url" mapstructure:"base_url"`
	Queries []string `yaml:"queries" mapstructure:"queries"`
}

// ImportConfig configures the import reconciler.
type ImportConfig struct {
	LeaseTTLMinutes int `yaml:"lease_ttl_minutes" mapstructure:"lease_ttl_minutes"`
}

// ServerConfig configures the admin/read API server.
type ServerConfig struct {
	Port     int    `yaml:"port" mapstructure:"port"`
	AdminKey string `yaml:"admin_key" mapstructure:"admin_key"`
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
	v.SetEnvPrefix("DIRECTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so AutomaticEnv can see their
	// keys; Validate rejects them when a subsystem needs a value.
	v.SetDefault("places.api_key", "")
	v.SetDefault("site.base_url", "")
	v.SetDefault("server.admin_key", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "directory.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.latitude", 31.3085)  // Moody, TX
	v.SetDefault("places.longitude", -97.3614)
	v.SetDefault("places.radius_meters", 8000)
	v.SetDefault("places.rate_limit", 10)
	v.SetDefault("site.town", "Moody")
	v.SetDefault("site.zip", "76557")
	v.SetDefault("site.queries", []string{
		"restaurants in Moody TX",
		"stores in Moody TX",
		"churches in Moody TX",
		"services in Moody TX",
		"auto repair in Moody TX",
		"health clinic in Moody TX",
	})
	v.SetDefault("import.lease_ttl_minutes", 15)

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

// Validate checks the settings a given subsystem needs before it runs.
func (c *Config) Validate(subsystem string) error {
	switch subsystem {
	case "places":
		if c.Places.APIKey == "" {
			return eris.New("config: places API key is required (DIRECTORY_PLACES_API_KEY)")
		}
	case "normalize":
		if c.Site.BaseURL == "" {
			return eris.New("config: site base URL is required (DIRECTORY_SITE_BASE_URL)")
		}
	case "server":
		if c.Server.AdminKey == "" {
			return eris.New("config: server admin key is required (DIRECTORY_SERVER_ADMIN_KEY)")
		}
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
