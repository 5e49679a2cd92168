package feed

import (
	"fmt"
	"net/url"

	"github.com/kbukum/livefeed/config"
	"github.com/kbukum/livefeed/logger"
	"github.com/kbukum/livefeed/validation"
)

const defaultBufferSize = 200

// Config configures the feed client.
type Config struct {
	// BaseURL is the feed server origin, e.g. "https://feed.example.com".
	// The stream endpoint is <BaseURL>/sse and the side-channel is
	// <BaseURL>/broadcast.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Token is a short-lived auth token passed through as the "t" query
	// parameter. The stream transport cannot carry custom headers.
	Token string `yaml:"token" mapstructure:"token"`

	// AutoReconnect enables capped exponential backoff reconnection
	// after stream errors.
	AutoReconnect bool `yaml:"auto_reconnect" mapstructure:"auto_reconnect"`

	// AutoConnect makes the component connect on Start.
	AutoConnect bool `yaml:"auto_connect" mapstructure:"auto_connect"`

	// BufferSize caps the record buffer. Defaults to 200.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size" validate:"gte=1"`

	// Logging configures the component logger.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// LoadConfig loads the feed configuration from config files and the
// environment under the "livefeed" name (env prefix LIVEFEED_).
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	if err := config.Load("livefeed", &cfg, opts...); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = defaultBufferSize
	}
	c.Logging.ApplyDefaults()
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("feed: base_url must be an absolute http(s) URL (got: %s)", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed: base_url scheme must be http or https (got: %s)", u.Scheme)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	return nil
}
