package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SECREPORT"

// Header match policies
const (
	HeaderMatchLast  = "last"
	HeaderMatchFirst = "first"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Templates TemplatesConfig `yaml:"templates" envconfig:"TEMPLATES"`
	Policy    PolicyConfig    `yaml:"policy" envconfig:"POLICY"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PathsConfig contains the three working directories of a batch
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"xls_folder" validate:"required"`
	TempDir   string `yaml:"temp_dir" envconfig:"TEMP_DIR" default:"reports" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"rapport2" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/process_reports.log"`
}

// ServerConfig contains HTTP front-end configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// TemplatesConfig optionally replaces the built-in notification text.
// Empty paths keep the built-in preamble and postamble.
type TemplatesConfig struct {
	PreambleFile  string `yaml:"preamble_file" envconfig:"PREAMBLE_FILE"`
	PostambleFile string `yaml:"postamble_file" envconfig:"POSTAMBLE_FILE"`
}

// PolicyConfig holds the batch policies that are deliberately configurable.
type PolicyConfig struct {
	// FailUnsupported counts files with unknown extensions as failed instead
	// of producing an empty report.
	FailUnsupported bool `yaml:"fail_unsupported" envconfig:"FAIL_UNSUPPORTED" default:"false"`
	// KeepFailedIntermediates leaves intermediates whose finalization failed
	// in the temp directory.
	KeepFailedIntermediates bool   `yaml:"keep_failed_intermediates" envconfig:"KEEP_FAILED_INTERMEDIATES" default:"false"`
	HeaderMatch             string `yaml:"header_match" envconfig:"HEADER_MATCH" default:"last" validate:"oneof=last first"`
}

// TelemetryConfig controls metrics and tracing exporters
type TelemetryConfig struct {
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=prometheus none"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=stdout none"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// Load loads configuration from environment variables and an optional YAML
// file. Environment values take precedence over the file.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays values that were explicitly set in the environment
// on top of the file config. A value counts as set in the environment when
// the variable exists, so envconfig defaults never shadow file values.
func mergeConfigs(fileConfig, envConfig Config) Config {
	merged := fileConfig
	overrideIfSet("PATHS_INPUT_DIR", &merged.Paths.InputDir, envConfig.Paths.InputDir)
	overrideIfSet("PATHS_TEMP_DIR", &merged.Paths.TempDir, envConfig.Paths.TempDir)
	overrideIfSet("PATHS_OUTPUT_DIR", &merged.Paths.OutputDir, envConfig.Paths.OutputDir)
	overrideIfSet("PATHS_LOGS_DIR", &merged.Paths.LogsDir, envConfig.Paths.LogsDir)
	overrideIfSet("LOGGING_LEVEL", &merged.Logging.Level, envConfig.Logging.Level)
	overrideIfSet("LOGGING_OUTPUT", &merged.Logging.Output, envConfig.Logging.Output)
	overrideIfSet("LOGGING_FILE_PATH", &merged.Logging.FilePath, envConfig.Logging.FilePath)
	overrideIfSet("TEMPLATES_PREAMBLE_FILE", &merged.Templates.PreambleFile, envConfig.Templates.PreambleFile)
	overrideIfSet("TEMPLATES_POSTAMBLE_FILE", &merged.Templates.PostambleFile, envConfig.Templates.PostambleFile)
	overrideIfSet("POLICY_HEADER_MATCH", &merged.Policy.HeaderMatch, envConfig.Policy.HeaderMatch)
	overrideIfSet("TELEMETRY_METRIC_EXPORTER", &merged.Telemetry.MetricExporter, envConfig.Telemetry.MetricExporter)
	overrideIfSet("TELEMETRY_TRACE_EXPORTER", &merged.Telemetry.TraceExporter, envConfig.Telemetry.TraceExporter)
	overrideIfSet("TELEMETRY_ENVIRONMENT", &merged.Telemetry.Environment, envConfig.Telemetry.Environment)

	overrideIfSet("SERVER_PORT", &merged.Server.Port, envConfig.Server.Port)
	overrideIfSet("SERVER_READ_TIMEOUT", &merged.Server.ReadTimeout, envConfig.Server.ReadTimeout)
	overrideIfSet("SERVER_WRITE_TIMEOUT", &merged.Server.WriteTimeout, envConfig.Server.WriteTimeout)
	overrideIfSet("SERVER_SHUTDOWN_TIMEOUT", &merged.Server.ShutdownTimeout, envConfig.Server.ShutdownTimeout)
	overrideIfSet("SERVER_MAX_UPLOAD_BYTES", &merged.Server.MaxUploadBytes, envConfig.Server.MaxUploadBytes)
	overrideIfSet("SERVER_RATE_LIMIT_RPS", &merged.Server.RateLimitRPS, envConfig.Server.RateLimitRPS)
	overrideIfSet("SERVER_RATE_LIMIT_BURST", &merged.Server.RateLimitBurst, envConfig.Server.RateLimitBurst)

	if _, ok := os.LookupEnv(EnvPrefix + "_POLICY_FAIL_UNSUPPORTED"); ok {
		merged.Policy.FailUnsupported = envConfig.Policy.FailUnsupported
	}
	if _, ok := os.LookupEnv(EnvPrefix + "_POLICY_KEEP_FAILED_INTERMEDIATES"); ok {
		merged.Policy.KeepFailedIntermediates = envConfig.Policy.KeepFailedIntermediates
	}

	return merged
}

// overrideIfSet replaces *file with env when the variable is set, or when
// the file left the field at its zero value.
func overrideIfSet[T comparable](name string, file *T, env T) {
	var zero T
	if _, ok := os.LookupEnv(EnvPrefix + "_" + name); ok || *file == zero {
		*file = env
	}
}

// Validate checks the configuration against its struct tags and normalizes
// a few values.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Policy.HeaderMatch = strings.ToLower(c.Policy.HeaderMatch)

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Paths.TempDir == c.Paths.OutputDir {
		return fmt.Errorf("temp_dir and output_dir must differ: %s", c.Paths.TempDir)
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/process_reports.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"secreport.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:  "xls_folder",
			TempDir:   "reports",
			OutputDir: "rapport2",
			LogsDir:   "logs",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/process_reports.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  32 << 20,
			RateLimitRPS:    20,
			RateLimitBurst:  10,
		},
		Policy: PolicyConfig{
			HeaderMatch: HeaderMatchLast,
		},
		Telemetry: TelemetryConfig{
			MetricExporter: "prometheus",
			TraceExporter:  "none",
			Environment:    "development",
		},
	}
}
