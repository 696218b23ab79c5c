package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	// APIBaseURL is where the liveness probe is sent. Defaults to this service itself.
	APIBaseURL   string
	APIProbePath string

	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	Simulation SimulationDefaults
}

// SimulationDefaults are the evaporator feed parameters shown on the status page.
// Concentrations are mass fractions in [0, 1].
type SimulationDefaults struct {
	FeedFlow           float64 // kg/h
	FeedConcentration  float64
	FinalConcentration float64
	FeedTemperature    float64 // °C
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	API struct {
		BaseURL   string `yaml:"base_url"`
		ProbePath string `yaml:"probe_path"`
	} `yaml:"api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Simulation struct {
		FeedFlow           *float64 `yaml:"feed_flow"`
		FeedConcentration  *float64 `yaml:"feed_concentration"`
		FinalConcentration *float64 `yaml:"final_concentration"`
		FeedTemperature    *float64 `yaml:"feed_temperature"`
	} `yaml:"simulation"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) relative to the
// working directory. SERVER_PORT and API_BASE_URL override the file.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes, applying env overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = strings.TrimSpace(os.Getenv("SERVER_PORT"))
	if cfg.ServerPort == "" {
		cfg.ServerPort = strings.TrimSpace(fc.Server.Port)
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.APIBaseURL = strings.TrimSpace(os.Getenv("API_BASE_URL"))
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = strings.TrimSpace(fc.API.BaseURL)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:" + cfg.ServerPort
	}
	cfg.APIProbePath = strings.TrimSpace(fc.API.ProbePath)
	if cfg.APIProbePath == "" {
		cfg.APIProbePath = "/api/test"
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 5*time.Second)
	// zero disables rate limiting
	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.Simulation = SimulationDefaults{
		FeedFlow:           floatOr(fc.Simulation.FeedFlow, 20000),
		FeedConcentration:  floatOr(fc.Simulation.FeedConcentration, 0.15),
		FinalConcentration: floatOr(fc.Simulation.FinalConcentration, 0.65),
		FeedTemperature:    floatOr(fc.Simulation.FeedTemperature, 85),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and formats that defaults cannot repair.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.By(validatePort)),
		validation.Field(&c.APIBaseURL, validation.Required, validation.By(validateBaseURL)),
		validation.Field(&c.APIProbePath, validation.Required, validation.By(validateProbePath)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RateLimitRPS, validation.Min(0)),
		validation.Field(&c.RateLimitBurst, validation.Min(0)),
		validation.Field(&c.Simulation),
	)
}

// Validate implements validation.Validatable so nested errors carry field names.
func (s SimulationDefaults) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.FeedFlow, validation.Min(0.0)),
		validation.Field(&s.FeedConcentration, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&s.FinalConcentration, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&s.FeedTemperature, validation.Min(-273.15)),
	)
}

func validatePort(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return validation.NewError("validation_invalid_port", "must be a port number between 1 and 65535")
	}
	return nil
}

func validateBaseURL(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validation.NewError("validation_invalid_url", "must be an absolute http(s) URL")
	}
	return nil
}

func validateProbePath(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if !strings.HasPrefix(s, "/") {
		return validation.NewError("validation_invalid_path", "must start with /")
	}
	return nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
