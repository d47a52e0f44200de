package logger

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables that override the YAML logging block.
const (
	EnvLevel         = "DUNGEONGEN_LOG_LEVEL"
	EnvConsoleFormat = "DUNGEONGEN_LOG_FORMAT"
	EnvFileEnabled   = "DUNGEONGEN_LOG_FILE_ENABLED"
	EnvFile          = "DUNGEONGEN_LOG_FILE"
)

// Config holds logging configuration. It is embedded as the `logging` block
// of the generator config.
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// DefaultConfig logs INFO and above as text on the console only.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/dungeongen.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// Normalize fills zero values left by a partial YAML block with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Level == "" {
		c.Level = def.Level
	}
	if c.ConsoleFormat == "" {
		c.ConsoleFormat = def.ConsoleFormat
	}
	if c.FilePath == "" {
		c.FilePath = def.FilePath
	}
	if c.FileFormat == "" {
		c.FileFormat = def.FileFormat
	}
	if c.FileMaxSizeMB <= 0 {
		c.FileMaxSizeMB = def.FileMaxSizeMB
	}
	if c.FileMaxBackups <= 0 {
		c.FileMaxBackups = def.FileMaxBackups
	}
	if c.FileMaxAgeDays <= 0 {
		c.FileMaxAgeDays = def.FileMaxAgeDays
	}
}

// ApplyEnv overrides fields from DUNGEONGEN_LOG_* environment variables.
// Setting DUNGEONGEN_LOG_FILE also turns the file handler on.
func (c *Config) ApplyEnv() {
	if level := os.Getenv(EnvLevel); level != "" {
		c.Level = strings.ToUpper(level)
	}

	if format := os.Getenv(EnvConsoleFormat); format != "" {
		c.ConsoleFormat = format
	}

	if path := os.Getenv(EnvFile); path != "" {
		c.FilePath = path
		c.FileEnabled = true
	}

	if enabled := os.Getenv(EnvFileEnabled); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			c.FileEnabled = v
		}
	}
}
