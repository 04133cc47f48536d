package staticsearch

import (
	"os"

	"github.com/rs/zerolog"
)

// DefaultTokenLength is the prefix length shards are keyed by.
const DefaultTokenLength = 3

// DefaultDeniedCountries lists countries whose cities mix rows with and
// without admin1 codes in ways that cannot be reconciled. Their cities are
// always displayed without a region.
var DefaultDeniedCountries = []string{"MR"}

// Config contains the options of a pipeline run.
type Config struct {
	Logger          zerolog.Logger
	TokenLength     int
	DeniedCountries []string
	Normalizer      TextNormalizer
}

// Option is a functional option for configuring a Pipeline.
type Option func(*Config)

// WithLogger sets the logger warnings and the run summary go to.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTokenLength sets the shard prefix length. Values below 1 are ignored.
func WithTokenLength(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.TokenLength = n
		}
	}
}

// WithDeniedCountries replaces the deny-list of inconsistent countries.
func WithDeniedCountries(codes ...string) Option {
	return func(c *Config) {
		c.DeniedCountries = append([]string(nil), codes...)
	}
}

// WithTextNormalizer swaps the normalization applied before tokenizing.
// It must match what the client applies to typed queries.
func WithTextNormalizer(fn TextNormalizer) Option {
	return func(c *Config) {
		if fn != nil {
			c.Normalizer = fn
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		Logger:          zerolog.New(os.Stderr).With().Timestamp().Logger(),
		TokenLength:     DefaultTokenLength,
		DeniedCountries: DefaultDeniedCountries,
		Normalizer:      NormalizeText,
	}
}
