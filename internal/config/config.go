package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultEndpoint is the public messages resource the client was built against.
const DefaultEndpoint = "https://it3049c-chat.fly.dev/messages"

// ErrInvalid is returned by Validate for any rejected configuration.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// Config holds client configuration values.
type Config struct {
	Endpoint       string        `mapstructure:"endpoint" yaml:"endpoint" validate:"required,http_url"`
	Name           string        `mapstructure:"name" yaml:"name"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gte=0"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error disabled off"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	Timezone       string        `mapstructure:"timezone" yaml:"timezone"`
}

// Default returns the public endpoint with 10s polling and
// no request timeout beyond the platform default.
func Default() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		PollInterval:   10 * time.Second,
		RequestTimeout: 0,
		LogLevel:       "info",
		LogFile:        "pollchat.log",
		Timezone:       "Local",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Endpoint != "" {
		c.Endpoint = other.Endpoint
	}
	if other.Name != "" {
		c.Name = other.Name
	}
	if other.PollInterval != 0 {
		c.PollInterval = other.PollInterval
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
	if other.Timezone != "" {
		c.Timezone = other.Timezone
	}
}

// Validate checks field constraints and that the timezone resolves.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	return nil
}

// Location resolves the viewer's clock. Empty and "Local" both mean the machine's zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
