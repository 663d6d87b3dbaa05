package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Plot source kinds.
const (
	PlotSourceMemory   = "memory"
	PlotSourcePostgres = "postgres"
	PlotSourceValkey   = "valkey"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Plots    PlotsConfig    `yaml:"plots"`
	Identify IdentifyConfig `yaml:"identify"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig throttles endpoints that call third-party providers.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig guards mutating endpoints. An empty secret disables the check.
type AuthConfig struct {
	RefreshSecret string `yaml:"refreshSecret"`
}

// CatalogConfig locates the reference dataset, on disk or in a bucket.
type CatalogConfig struct {
	Path    string              `yaml:"path"`
	Object  ObjectStorageConfig `yaml:"object"`
	Preload bool                `yaml:"preload"`
}

// ObjectStorageConfig describes an S3-compatible bucket.
type ObjectStorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
}

// PlotsConfig selects the remote plot source.
type PlotsConfig struct {
	Source   string         `yaml:"source"`
	SeedPath string         `yaml:"seedPath"`
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the document store.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// IdentifyConfig points at the plant identification provider.
type IdentifyConfig struct {
	BaseURL       string        `yaml:"baseUrl"`
	APIKey        string        `yaml:"apiKey"`
	Project       string        `yaml:"project"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxImageBytes int64         `yaml:"maxImageBytes"`
}

// GeocodeConfig points at the geocoding provider.
type GeocodeConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				*dst = parsed
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				*dst = parsed
			}
		}
	}

	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	setDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	setDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	if v := getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setString("AUTH_REFRESH_SECRET", &cfg.Auth.RefreshSecret)

	setString("CATALOG_PATH", &cfg.Catalog.Path)
	setBool("CATALOG_PRELOAD", &cfg.Catalog.Preload)
	setBool("CATALOG_OBJECT_ENABLED", &cfg.Catalog.Object.Enabled)
	setString("CATALOG_OBJECT_ENDPOINT", &cfg.Catalog.Object.Endpoint)
	setString("CATALOG_OBJECT_ACCESS_KEY", &cfg.Catalog.Object.AccessKey)
	setString("CATALOG_OBJECT_SECRET_KEY", &cfg.Catalog.Object.SecretKey)
	setString("CATALOG_OBJECT_BUCKET", &cfg.Catalog.Object.Bucket)
	setString("CATALOG_OBJECT_KEY", &cfg.Catalog.Object.Key)
	setString("CATALOG_OBJECT_REGION", &cfg.Catalog.Object.Region)

	setString("PLOTS_SOURCE", &cfg.Plots.Source)
	setString("PLOTS_SEED_PATH", &cfg.Plots.SeedPath)
	setString("PLOTS_POSTGRES_DSN", &cfg.Plots.Postgres.DSN)
	if v := getenv("PLOTS_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Plots.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := getenv("PLOTS_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Plots.Postgres.MinConns = int32(parsed)
		}
	}
	setString("PLOTS_VALKEY_ADDR", &cfg.Plots.Valkey.Addr)
	setString("PLOTS_VALKEY_PREFIX", &cfg.Plots.Valkey.Prefix)

	setString("IDENTIFY_BASE_URL", &cfg.Identify.BaseURL)
	setString("IDENTIFY_API_KEY", &cfg.Identify.APIKey)
	setString("IDENTIFY_PROJECT", &cfg.Identify.Project)
	setDuration("IDENTIFY_TIMEOUT", &cfg.Identify.Timeout)
	if v := getenv("IDENTIFY_MAX_IMAGE_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Identify.MaxImageBytes = parsed
		}
	}

	setString("GEOCODE_BASE_URL", &cfg.Geocode.BaseURL)
	setString("GEOCODE_USER_AGENT", &cfg.Geocode.UserAgent)
	setDuration("GEOCODE_TIMEOUT", &cfg.Geocode.Timeout)

	setBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("METRICS_PATH", &cfg.Metrics.Path)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
		},
		Catalog: CatalogConfig{
			Path:    "data/services.csv",
			Preload: true,
			Object: ObjectStorageConfig{
				Key: "services.csv",
			},
		},
		Plots: PlotsConfig{
			Source: PlotSourceMemory,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Valkey: ValkeyConfig{
				Prefix: "ecoplot",
			},
		},
		Identify: IdentifyConfig{
			BaseURL:       "https://my-api.plantnet.org/v2/identify",
			Project:       "all",
			Timeout:       20 * time.Second,
			MaxImageBytes: 8 << 20,
		},
		Geocode: GeocodeConfig{
			BaseURL:   "https://nominatim.openstreetmap.org/search",
			UserAgent: "ecoplot/1.0",
			Timeout:   10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 {
		return errors.New("http timeouts cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive when enabled")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive when enabled")
		}
	}
	if c.Catalog.Object.Enabled {
		if strings.TrimSpace(c.Catalog.Object.Endpoint) == "" {
			return errors.New("catalog.object.endpoint cannot be empty when object storage is enabled")
		}
		if strings.TrimSpace(c.Catalog.Object.Bucket) == "" {
			return errors.New("catalog.object.bucket cannot be empty when object storage is enabled")
		}
		if strings.TrimSpace(c.Catalog.Object.Key) == "" {
			return errors.New("catalog.object.key cannot be empty when object storage is enabled")
		}
	} else if strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path cannot be empty")
	}
	switch c.Plots.Source {
	case PlotSourceMemory:
	case PlotSourcePostgres:
		if strings.TrimSpace(c.Plots.Postgres.DSN) == "" {
			return errors.New("plots.postgres.dsn cannot be empty when plots.source is postgres")
		}
	case PlotSourceValkey:
		if strings.TrimSpace(c.Plots.Valkey.Addr) == "" {
			return errors.New("plots.valkey.addr cannot be empty when plots.source is valkey")
		}
	default:
		return fmt.Errorf("plots.source %q is not one of memory, postgres, valkey", c.Plots.Source)
	}
	if c.Identify.MaxImageBytes < 0 {
		return errors.New("identify.maxImageBytes cannot be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
