package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	BackendMemory = "memory"
	BackendRedis  = "redis"

	DefaultPath = "config.yaml"
)

// Config is the root configuration for the job feed server.
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Cache     CacheConfig
	Normalize NormalizeConfig
}

type ServerConfig struct {
	Port        string
	Env         string   // "development" adds stack traces to 500 bodies
	CORSOrigins []string // defaults to "*"
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env == EnvDevelopment
}

// UpstreamConfig describes the JobSpy sidecar and how calls to it are shaped.
type UpstreamConfig struct {
	BaseURL                  string
	APIKey                   string
	Timeout                  time.Duration // per call
	BatchSize                int           // keywords per call
	ResultsPerCall           int
	HoursOld                 int
	DefaultLocation          string
	CountryIndeed            string
	GoogleLocation           string
	LinkedInFetchDescription bool
	DescriptionFormat        string
	RatePerSecond            float64 // 0 disables limiting
	Burst                    int
}

type CacheConfig struct {
	Enabled       bool
	Backend       string
	TTL           time.Duration
	SweepInterval time.Duration
	RedisURL      string
}

type NormalizeConfig struct {
	StripHTML bool
}

// rawConfig is used for YAML unmarshaling (durations as strings, optional
// booleans as pointers so defaults survive an absent key).
type rawConfig struct {
	Server    rawServerConfig    `yaml:"server"`
	Upstream  rawUpstreamConfig  `yaml:"upstream"`
	Cache     rawCacheConfig     `yaml:"cache"`
	Normalize rawNormalizeConfig `yaml:"normalize"`
}

type rawServerConfig struct {
	Port        string   `yaml:"port"`
	Env         string   `yaml:"env"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type rawUpstreamConfig struct {
	BaseURL                  string  `yaml:"base_url"`
	APIKey                   string  `yaml:"api_key"`
	Timeout                  string  `yaml:"timeout"`
	BatchSize                int     `yaml:"batch_size"`
	ResultsPerCall           int     `yaml:"results_per_call"`
	HoursOld                 int     `yaml:"hours_old"`
	DefaultLocation          string  `yaml:"default_location"`
	CountryIndeed            string  `yaml:"country_indeed"`
	GoogleLocation           string  `yaml:"google_location"`
	LinkedInFetchDescription *bool   `yaml:"linkedin_fetch_description"`
	DescriptionFormat        string  `yaml:"description_format"`
	RatePerSecond            float64 `yaml:"rate_per_second"`
	Burst                    int     `yaml:"burst"`
}

type rawCacheConfig struct {
	Enabled       *bool  `yaml:"enabled"`
	Backend       string `yaml:"backend"`
	TTL           string `yaml:"ttl"`
	SweepInterval string `yaml:"sweep_interval"`
	RedisURL      string `yaml:"redis_url"`
}

type rawNormalizeConfig struct {
	StripHTML bool `yaml:"strip_html"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Env:         EnvProduction,
			CORSOrigins: []string{"*"},
		},
		Upstream: UpstreamConfig{
			BaseURL:                  "http://localhost:8000",
			Timeout:                  25 * time.Second,
			BatchSize:                3,
			ResultsPerCall:           10,
			HoursOld:                 24,
			DefaultLocation:          "Lebanon",
			CountryIndeed:            "Lebanon",
			GoogleLocation:           "worldwide",
			LinkedInFetchDescription: true,
			DescriptionFormat:        "markdown",
			Burst:                    1,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Backend:       BackendMemory,
			TTL:           10 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		var raw rawConfig
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if err := apply(cfg, raw); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath picks the config file: the flag value, then JOBFEED_CONFIG,
// then config.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("JOBFEED_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

func apply(cfg *Config, raw rawConfig) error {
	var err error

	if raw.Server.Port != "" {
		cfg.Server.Port = raw.Server.Port
	}
	if raw.Server.Env != "" {
		cfg.Server.Env = raw.Server.Env
	}
	if len(raw.Server.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = raw.Server.CORSOrigins
	}

	u := raw.Upstream
	if u.BaseURL != "" {
		cfg.Upstream.BaseURL = u.BaseURL
	}
	cfg.Upstream.APIKey = u.APIKey
	if u.Timeout != "" {
		if cfg.Upstream.Timeout, err = time.ParseDuration(u.Timeout); err != nil {
			return fmt.Errorf("parse upstream.timeout %q: %w", u.Timeout, err)
		}
	}
	if u.BatchSize != 0 {
		cfg.Upstream.BatchSize = u.BatchSize
	}
	if u.ResultsPerCall != 0 {
		cfg.Upstream.ResultsPerCall = u.ResultsPerCall
	}
	if u.HoursOld != 0 {
		cfg.Upstream.HoursOld = u.HoursOld
	}
	if u.DefaultLocation != "" {
		cfg.Upstream.DefaultLocation = u.DefaultLocation
	}
	if u.CountryIndeed != "" {
		cfg.Upstream.CountryIndeed = u.CountryIndeed
	}
	if u.GoogleLocation != "" {
		cfg.Upstream.GoogleLocation = u.GoogleLocation
	}
	if u.LinkedInFetchDescription != nil {
		cfg.Upstream.LinkedInFetchDescription = *u.LinkedInFetchDescription
	}
	if u.DescriptionFormat != "" {
		cfg.Upstream.DescriptionFormat = u.DescriptionFormat
	}
	cfg.Upstream.RatePerSecond = u.RatePerSecond
	if u.Burst != 0 {
		cfg.Upstream.Burst = u.Burst
	}

	c := raw.Cache
	if c.Enabled != nil {
		cfg.Cache.Enabled = *c.Enabled
	}
	if c.Backend != "" {
		cfg.Cache.Backend = c.Backend
	}
	if c.TTL != "" {
		if cfg.Cache.TTL, err = time.ParseDuration(c.TTL); err != nil {
			return fmt.Errorf("parse cache.ttl %q: %w", c.TTL, err)
		}
	}
	if c.SweepInterval != "" {
		if cfg.Cache.SweepInterval, err = time.ParseDuration(c.SweepInterval); err != nil {
			return fmt.Errorf("parse cache.sweep_interval %q: %w", c.SweepInterval, err)
		}
	}
	cfg.Cache.RedisURL = c.RedisURL

	cfg.Normalize.StripHTML = raw.Normalize.StripHTML
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("JOBSPY_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("JOBSPY_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Server.Port) == "" {
		return errors.New("server.port is required")
	}
	if cfg.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	if cfg.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.BatchSize <= 0 {
		return fmt.Errorf("upstream.batch_size must be positive, got %d", cfg.Upstream.BatchSize)
	}
	if cfg.Upstream.ResultsPerCall <= 0 {
		return fmt.Errorf("upstream.results_per_call must be positive, got %d", cfg.Upstream.ResultsPerCall)
	}
	if cfg.Upstream.RatePerSecond < 0 {
		return fmt.Errorf("upstream.rate_per_second must not be negative, got %v", cfg.Upstream.RatePerSecond)
	}
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", cfg.Cache.TTL)
	}
	switch cfg.Cache.Backend {
	case BackendMemory:
		if cfg.Cache.SweepInterval <= 0 {
			return fmt.Errorf("cache.sweep_interval must be positive, got %v", cfg.Cache.SweepInterval)
		}
	case BackendRedis:
		if cfg.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required when cache.backend is redis")
		}
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", BackendMemory, BackendRedis, cfg.Cache.Backend)
	}
	return nil
}
