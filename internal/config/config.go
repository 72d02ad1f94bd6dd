// Package config loads application configuration from environment variables
// and an optional YAML file. Environment values take precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" envconfig:"API"`
	DB      DBConfig      `yaml:"db" envconfig:"DB"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
}

// APIConfig describes the remote indicator API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api1.dottdot.com/api/indistock"`
	Key     string        `yaml:"key" envconfig:"KEY" default:"guest"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// DBConfig describes the relational data source.
type DBConfig struct {
	Host     string `yaml:"host" envconfig:"HOST" default:"localhost"`
	Port     int    `yaml:"port" envconfig:"PORT" default:"3306"`
	User     string `yaml:"user" envconfig:"USER"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	Schema   string `yaml:"schema" envconfig:"SCHEMA"`
}

// DSN builds a go-sql-driver/mysql connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", d.User, d.Password, d.Host, d.Port, d.Schema)
}

// ExportConfig controls the value/score CSV exports.
type ExportConfig struct {
	DateFormat string `yaml:"date_format" envconfig:"DATE_FORMAT" default:"2006/01/02"`
	Precision  int32  `yaml:"precision" envconfig:"PRECISION" default:"2"`
	BOM        bool   `yaml:"bom" envconfig:"BOM" default:"true"`
}

// ReportConfig controls report shaping and rendering.
type ReportConfig struct {
	Frequency  string `yaml:"frequency" envconfig:"FREQUENCY" default:"M"`
	DateFormat string `yaml:"date_format" envconfig:"DATE_FORMAT" default:"2006-01-02"`
	// LookbackYears is how far back raw history is fetched before alignment.
	LookbackYears int `yaml:"lookback_years" envconfig:"LOOKBACK_YEARS" default:"5"`
	// DisplayPeriods is how many trailing reporting periods the report shows.
	DisplayPeriods int `yaml:"display_periods" envconfig:"DISPLAY_PERIODS" default:"6"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// ServerConfig contains the report page server configuration.
type ServerConfig struct {
	Port         int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
}

// Load loads configuration from environment variables and, if present, a
// config file. Environment variables win.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TWMW", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := configFilePath(); path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge fills zero-valued env fields from the file config.
func merge(fileCfg, envCfg Config) Config {
	if envCfg.API.BaseURL == "" {
		envCfg.API.BaseURL = fileCfg.API.BaseURL
	}
	if envCfg.API.Key == "" {
		envCfg.API.Key = fileCfg.API.Key
	}
	if envCfg.DB.Host == "" {
		envCfg.DB.Host = fileCfg.DB.Host
	}
	if envCfg.DB.Port == 0 {
		envCfg.DB.Port = fileCfg.DB.Port
	}
	if envCfg.DB.User == "" {
		envCfg.DB.User = fileCfg.DB.User
	}
	if envCfg.DB.Password == "" {
		envCfg.DB.Password = fileCfg.DB.Password
	}
	if envCfg.DB.Schema == "" {
		envCfg.DB.Schema = fileCfg.DB.Schema
	}
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	return envCfg
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	if c.Export.Precision < 0 {
		return fmt.Errorf("export precision must not be negative: %d", c.Export.Precision)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Report.Frequency {
	case "D", "W", "M", "Q", "Y":
	default:
		return fmt.Errorf("invalid report frequency: %q", c.Report.Frequency)
	}
	if c.Report.LookbackYears <= 0 {
		c.Report.LookbackYears = 5
	}
	if c.Report.DisplayPeriods <= 0 {
		c.Report.DisplayPeriods = 6
	}
	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	return nil
}

// configFilePath returns the first config file found in common locations.
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Default returns the default configuration without consulting the
// environment. Used by tests and the report server fallback path.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api1.dottdot.com/api/indistock",
			Key:     "guest",
			Timeout: 30 * time.Second,
		},
		DB: DBConfig{
			Host: "localhost",
			Port: 3306,
		},
		Export: ExportConfig{
			DateFormat: "2006/01/02",
			Precision:  2,
			BOM:        true,
		},
		Report: ReportConfig{
			Frequency:      "M",
			DateFormat:     "2006-01-02",
			LookbackYears:  5,
			DisplayPeriods: 6,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}
