// Package config handles runtime settings for the chatapp client.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/fxpyramid/chatapp/utils"
)

// SupportedModels is the fixed model set the completion endpoint accepts.
var SupportedModels = []string{"gpt-4", "gpt-3.5-turbo"}

// validate is the shared validator instance used across the package.
var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("model", validateModel); err != nil {
		// init cannot return an error; a missing validator would let bad
		// configs through silently.
		panic(fmt.Sprintf("failed to register model validator: %v", err))
	}
}

// validateModel checks that the field holds one of the supported models.
func validateModel(fl validator.FieldLevel) bool {
	return slices.Contains(SupportedModels, fl.Field().String())
}

// Config holds every runtime setting for one chat session.
type Config struct {
	Endpoint    string         `env:"CHATAPP_ENDPOINT" envDefault:"http://openai.fxpyramid.com/interact/" validate:"required,url"`
	Model       string         `env:"CHATAPP_MODEL" envDefault:"gpt-4" validate:"required,model"`
	Temperature float64        `env:"CHATAPP_TEMPERATURE" envDefault:"1.0" validate:"gte=0,lte=2"`
	Timeout     time.Duration  `env:"CHATAPP_TIMEOUT" envDefault:"300s"`
	HistoryDir  string         `env:"CHATAPP_HISTORY_DIR" envDefault:"history" validate:"required"`
	Role        string         `env:"CHATAPP_ROLE" envDefault:"user" validate:"oneof=user system"`
	LogLevel    utils.LogLevel `env:"CHATAPP_LOG_LEVEL" envDefault:"WARN"`
}

// LoadConfig reads the configuration from environment variables and applies
// defaults for anything unset. The result is not yet validated; callers
// apply their options first and then call Validate.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// NewConfig returns a Config with the default settings.
func NewConfig() *Config {
	return &Config{
		Endpoint:    "http://openai.fxpyramid.com/interact/",
		Model:       "gpt-4",
		Temperature: 1.0,
		Timeout:     300 * time.Second,
		HistoryDir:  "history",
		Role:        "user",
		LogLevel:    utils.LogLevelWarn,
	}
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigOption mutates a Config during session construction.
type ConfigOption func(*Config)

func SetEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func SetHistoryDir(dir string) ConfigOption {
	return func(c *Config) {
		c.HistoryDir = dir
	}
}

func SetRole(role string) ConfigOption {
	return func(c *Config) {
		c.Role = role
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// ApplyOptions runs each option against the config in order.
func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}
