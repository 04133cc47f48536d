// Package config loads the import-places settings from a YAML file,
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/iiab/staticsearch"
	"github.com/iiab/staticsearch/internal/publish"
)

// EnvPrefix prefixes every environment variable, e.g. STATICSEARCH_DATA_DIR.
const EnvPrefix = "STATICSEARCH"

// Config stores all configuration of the import command.
type Config struct {
	DataDir         string        `mapstructure:"data_dir"`
	OutputDir       string        `mapstructure:"output_dir"`
	ArchiveDir      string        `mapstructure:"archive_dir"`
	ArchiveName     string        `mapstructure:"archive_name"` // empty: dated default
	RegionsURL      string        `mapstructure:"regions_url"`
	CitiesURL       string        `mapstructure:"cities_url"`
	Refresh         bool          `mapstructure:"refresh"`
	TokenLength     int           `mapstructure:"token_length"`
	DeniedCountries []string      `mapstructure:"denied_countries"`
	Compression     string        `mapstructure:"compression"`
	Log             LogConfig     `mapstructure:"log"`
	Publish         PublishConfig `mapstructure:"publish"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// PublishConfig describes the optional bucket upload of the archive.
type PublishConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// BucketConfig converts the publish settings for the bucket sink.
func (p PublishConfig) BucketConfig() publish.BucketConfig {
	return publish.BucketConfig{
		Endpoint:  p.Endpoint,
		Region:    p.Region,
		Bucket:    p.Bucket,
		Prefix:    p.Prefix,
		AccessKey: p.AccessKey,
		SecretKey: p.SecretKey,
		UseSSL:    p.UseSSL,
	}
}

// DataSources returns the download sources with any configured URLs.
func (c *Config) DataSources() []staticsearch.DataSource {
	sources := append([]staticsearch.DataSource(nil), staticsearch.DefaultDataSources...)
	for i := range sources {
		switch sources[i].ID {
		case staticsearch.DataSourceGeonamesAdmin1:
			sources[i].URL = c.RegionsURL
		case staticsearch.DataSourceGeonamesCities:
			sources[i].URL = c.CitiesURL
		}
	}
	return sources
}

func setDefaults(v *viper.Viper) {
	var regionsURL, citiesURL string
	for _, src := range staticsearch.DefaultDataSources {
		switch src.ID {
		case staticsearch.DataSourceGeonamesAdmin1:
			regionsURL = src.URL
		case staticsearch.DataSourceGeonamesCities:
			citiesURL = src.URL
		}
	}

	v.SetDefault("data_dir", "./geonames-data")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("archive_dir", ".")
	v.SetDefault("archive_name", "")
	v.SetDefault("regions_url", regionsURL)
	v.SetDefault("cities_url", citiesURL)
	v.SetDefault("refresh", false)
	v.SetDefault("token_length", staticsearch.DefaultTokenLength)
	v.SetDefault("denied_countries", staticsearch.DefaultDeniedCountries)
	v.SetDefault("compression", string(publish.CompressionGzip))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.region", "")
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.access_key", "")
	v.SetDefault("publish.secret_key", "")
	v.SetDefault("publish.use_ssl", true)
}

// Load reads configuration from configPath, or from config.yaml in the
// working directory when configPath is empty. A missing default file is
// not an error. Environment variables override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot check by type alone.
func (c *Config) Validate() error {
	if c.TokenLength < 1 {
		return fmt.Errorf("token_length must be positive, got %d", c.TokenLength)
	}
	if c.DataDir == "" || c.OutputDir == "" {
		return fmt.Errorf("data_dir and output_dir must be set")
	}
	if _, err := publish.ParseCompression(c.Compression); err != nil {
		return err
	}
	if c.Publish.Enabled && (c.Publish.Endpoint == "" || c.Publish.Bucket == "") {
		return fmt.Errorf("publish.endpoint and publish.bucket are required when publishing")
	}
	return nil
}
