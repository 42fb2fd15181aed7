// Package config handles application configuration loading from a YAML file
// with environment variable overrides.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "happymeter/internal/utils"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default configuration values applied when the config file and environment
// leave a field unset.
const (
	// DefaultPort is the HTTP listen port
	DefaultPort = "3001"
	// DefaultMaxOpenConns is the database connection pool ceiling
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the number of idle pooled connections kept around
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime bounds how long a pooled connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultRateLimitPerMinute is the per-client submission budget
	DefaultRateLimitPerMinute = 5
	// DefaultSentimentTimeout bounds a single classification round-trip
	DefaultSentimentTimeout = 30 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `json:"server" yaml:"server"`
	Database      DatabaseConfig      `json:"database" yaml:"database"`
	Sentiment     SentimentConfig     `json:"sentiment" yaml:"sentiment"`
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port" validate:"required"`
	AdminUsername string   `json:"admin_username" yaml:"admin_username" validate:"required"`
	AdminPassword string   `json:"admin_password" yaml:"admin_password" validate:"required"`
	Debug         bool     `json:"debug" yaml:"debug"`
	LogLevel      string   `json:"log_level" yaml:"log_level"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
	// RateLimitPerMinute is the number of feedback submissions allowed per
	// client per minute; RateLimitBurst is the instantaneous burst allowance.
	RateLimitPerMinute int `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute" validate:"gte=1"`
	RateLimitBurst     int `json:"rate_limit_burst" yaml:"rate_limit_burst" validate:"gte=1"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL             string        `json:"url" yaml:"url" validate:"required"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`       // Maximum number of open connections to the database
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`       // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // Maximum amount of time a connection may be reused
}

// SentimentConfig represents the remote sentiment classifier configuration
type SentimentConfig struct {
	// URL is the base URL of the text-classification inference server
	URL string `json:"url" yaml:"url" validate:"required"`
	// Model is the model identifier appended to the inference path
	Model         string        `json:"model" yaml:"model"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
	WarmupOnStart bool          `json:"warmup_on_start" yaml:"warmup_on_start"`
}

// OpenTelemetryConfig represents observability configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`
	Protocol       string            `json:"protocol" yaml:"protocol"` // "grpc" or "http"
	Insecure       bool              `json:"insecure" yaml:"insecure"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	ServiceName    string            `json:"service_name" yaml:"service_name"`
	ServiceVersion string            `json:"service_version" yaml:"service_version"`
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

// NewConfig loads configuration from the YAML file first, then overrides with
// environment variables, applies defaults, and validates the result.
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to load config")
	}

	config.overrideFromEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and value ranges using validator struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeValidationFailed,
			contextutils.SeverityFatal,
			"Invalid configuration",
			err.Error(),
			err,
		)
	}
	return nil
}

// applyDefaults fills in zero-valued fields after file and env loading.
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = c.Server.RateLimitPerMinute
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if c.Sentiment.Timeout == 0 {
		c.Sentiment.Timeout = DefaultSentimentTimeout
	}
	if c.OpenTelemetry.ServiceName == "" {
		c.OpenTelemetry.ServiceName = "happymeter"
	}
	if c.OpenTelemetry.ServiceVersion == "" {
		c.OpenTelemetry.ServiceVersion = "dev"
	}
	if c.OpenTelemetry.Protocol == "" {
		c.OpenTelemetry.Protocol = "grpc"
	}
	if c.OpenTelemetry.SamplingRate == 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnvWithPrefix(c, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		yamlTag = strings.Split(yamlTag, ",")[0]

		// Convert yaml tag to environment variable name
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				// time.Duration fields accept both "30s" and raw nanoseconds
				if field.Type() == reflect.TypeOf(time.Duration(0)) {
					if d, err := time.ParseDuration(envVal); err == nil {
						field.SetInt(int64(d))
						continue
					}
				}
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			// Recursively process nested structs with the field name as prefix
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file, honoring HAPPYMETER_CONFIG_FILE.
// A missing default config.yaml is not an error; everything can come from the
// environment in that case.
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv("HAPPYMETER_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to load config from %s", envPath)
		}
		return config, nil
	}

	config, err := loadConfigFromFile("config.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	return config, nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
