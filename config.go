package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`             // listen address, ":0" picks a free port
	ExportDir string `yaml:"export_dir" json:"export_dir"` // directory for saved memos
}

// ReportConfig holds the fixed memo chrome
type ReportConfig struct {
	Title      string `yaml:"title" json:"title"`
	FooterNote string `yaml:"footer_note" json:"footer_note"`
	Filename   string `yaml:"filename" json:"filename"`
}

// LogConfig selects the logger flavour
type LogConfig struct {
	Env string `yaml:"env" json:"env"` // "development" or "production"
}

// Config is the application configuration loaded from YAML
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Report ReportConfig `yaml:"report" json:"report"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// Environment variables that override the config file
const (
	envAddr      = "DEALMEMO_ADDR"
	envExportDir = "DEALMEMO_EXPORT_DIR"
	envAppEnv    = "APP_ENV"
)

// LoadConfig loads configuration from a YAML file on top of the embedded
// defaults. A missing file is not an error. Values from .env files and the
// environment win over the file.
func LoadConfig(filename string) (*Config, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", filename, err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", filename, err)
			}
		}
	}

	// .env files are optional
	_ = godotenv.Load(".env", ".env.local")
	config.applyEnv()
	config.fillDefaults()
	return config, nil
}

// LoadDefaultConfig parses the embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &config); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}
	return &config, nil
}

// SaveConfig writes the configuration as YAML
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Deal memo configuration
# Environment overrides: DEALMEMO_ADDR, DEALMEMO_EXPORT_DIR, APP_ENV

`)
	return os.WriteFile(filename, append(header, data...), 0644)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(envExportDir); v != "" {
		c.Server.ExportDir = v
	}
	if v := os.Getenv(envAppEnv); v != "" {
		c.Log.Env = v
	}
}

func (c *Config) fillDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "localhost:0"
	}
	if c.Server.ExportDir == "" {
		c.Server.ExportDir = "exports"
	}
	if c.Log.Env == "" {
		c.Log.Env = "production"
	}
}

// ReportOptions builds memo options from the report section
func (c *Config) ReportOptions() ReportOptions {
	opts := DefaultReportOptions()
	if c.Report.Title != "" {
		opts.Title = c.Report.Title
	}
	if c.Report.FooterNote != "" {
		opts.FooterNote = c.Report.FooterNote
	}
	if c.Report.Filename != "" {
		opts.Filename = c.Report.Filename
	}
	return opts
}
