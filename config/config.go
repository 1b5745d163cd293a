package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-yetichat"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable read by Load.
const Prefix = "YETICHAT_"

var _ yetichat.Config = (*Config)(nil)

// Config is the process configuration for yetichat tooling.
type Config struct {
	AppID       string        `env:"APP_ID"`
	Region      string        `env:"REGION" envDefault:"us"`
	AuthKey     string        `env:"AUTH_KEY"`
	RestAPIKey  string        `env:"REST_API_KEY"`
	APIDomain   string        `env:"API_DOMAIN" envDefault:"cometchat.io"`
	APIBaseURL  string        `env:"API_BASE_URL"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	SessionDSN  string        `env:"SESSION_DSN" envDefault:"file:yetichat.db?cache=shared"`
	SessionSlot string        `env:"SESSION_SLOT" envDefault:"default"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string        `env:"LOG_FILE"`
	SeedDelay   time.Duration `env:"SEED_DELAY" envDefault:"200ms"`
}

// Option customizes Load.
type Option func(*loadOptions)

type loadOptions struct {
	envFiles    []string
	environment map[string]string
}

// WithEnvFiles loads the given dotenv files before parsing. Missing files are skipped.
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) {
		o.envFiles = append(o.envFiles, files...)
	}
}

// WithEnvironment parses from env instead of the process environment.
func WithEnvironment(environment map[string]string) Option {
	return func(o *loadOptions) {
		o.environment = environment
	}
}

// Load reads the configuration from dotenv files and the environment.
// Values already set in the environment win over dotenv files.
func Load(opts ...Option) (*Config, error) {
	options := loadOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	for _, file := range options.envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	parseOpts := env.Options{Prefix: Prefix}
	if options.environment != nil {
		parseOpts.Environment = options.environment
	}
	if err := env.ParseWithOptions(cfg, parseOpts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.AppID = strings.TrimSpace(c.AppID)
	c.Region = strings.ToLower(strings.TrimSpace(c.Region))
	c.AuthKey = strings.TrimSpace(c.AuthKey)
	c.RestAPIKey = strings.TrimSpace(c.RestAPIKey)
	c.APIDomain = strings.TrimSpace(c.APIDomain)
	c.APIBaseURL = strings.TrimSuffix(strings.TrimSpace(c.APIBaseURL), "/")
}

// Validate checks that the chat platform can be reached with this configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AppID, validation.Required),
		validation.Field(&c.Region, validation.Required),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.SeedDelay, validation.Min(time.Duration(0))),
	)
}

// ValidateProvisioning additionally requires the management API key.
func (c *Config) ValidateProvisioning() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.RestAPIKey, validation.Required),
	)
}

func (c Config) GetAppID() string {
	return c.AppID
}

func (c Config) GetRegion() string {
	return c.Region
}

func (c Config) GetAuthKey() string {
	return c.AuthKey
}

func (c Config) GetRestAPIKey() string {
	return c.RestAPIKey
}

func (c Config) GetAPIDomain() string {
	return c.APIDomain
}

func (c Config) GetAPIBaseURL() string {
	return c.APIBaseURL
}
