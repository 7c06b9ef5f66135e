// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by [Load].
const (
	// EnvConfigFile names the configuration file when no path is given.
	EnvConfigFile = "TLS_CERT_MONITOR_CONFIG"
	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "TLS_CERT_MONITOR_LOG_LEVEL"
)

// DefaultFile is loaded from the working directory when no path is given and
// [EnvConfigFile] is unset.
const DefaultFile = "appsettings.json"

// Default values.
const (
	DefaultTimeoutSeconds = 10
	DefaultConcurrency    = 1
	DefaultWarnDays       = 30
	DefaultLogLevel       = "info"
	DefaultLogDirectory   = "logs"
	DefaultLogFileName    = "certificateMonitor.log"
	DefaultMaxBackups     = 7
	DefaultMaxAgeDays     = 31
)

var (
	// ErrNoEndpoints is returned by [Config.Endpoints] when nothing is configured.
	ErrNoEndpoints = errors.New("config: no URLs found in configuration to check")

	// ErrInvalidConfig is returned when a file does not match the schema.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

//go:embed schema.json
var schema []byte

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the monitor configuration.
type Config struct {
	// URLsToCheck: Endpoints to check, in order
	URLsToCheck []string `json:"urlsToCheck" yaml:"urlsToCheck"`

	// Defaults: Settings applied to every check
	Defaults struct {
		// TimeoutSeconds: Per-endpoint connection timeout
		TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// Concurrency: Endpoints checked at once; 1 checks them in order
		Concurrency int `json:"concurrency" yaml:"concurrency"`
		// WarnDays: Days before expiry to log a warning; -1 disables it
		WarnDays int `json:"warnDays" yaml:"warnDays"`
	} `json:"defaults" yaml:"defaults"`

	// Logging: Log destinations and verbosity
	Logging struct {
		Level       string `json:"level" yaml:"level"`
		Directory   string `json:"directory" yaml:"directory"`
		FileName    string `json:"fileName" yaml:"fileName"`
		MaxBackups  int    `json:"maxBackups" yaml:"maxBackups"`
		MaxAgeDays  int    `json:"maxAgeDays" yaml:"maxAgeDays"`
		DisableFile bool   `json:"disableFile" yaml:"disableFile"`
	} `json:"logging" yaml:"logging"`

	// Path is the file the configuration was read from, empty if none.
	Path string `json:"-" yaml:"-"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	c := &Config{}
	c.Defaults.TimeoutSeconds = DefaultTimeoutSeconds
	c.Defaults.Concurrency = DefaultConcurrency
	c.Defaults.WarnDays = DefaultWarnDays
	c.Logging.Level = DefaultLogLevel
	c.Logging.Directory = DefaultLogDirectory
	c.Logging.FileName = DefaultLogFileName
	c.Logging.MaxBackups = DefaultMaxBackups
	c.Logging.MaxAgeDays = DefaultMaxAgeDays
	return c
}

// Load builds the configuration.
//
// Configuration Priority:
//  1. Default values are set
//  2. The file at path is read; if path is empty, [EnvConfigFile] is checked,
//     then [DefaultFile] is used when it exists
//  3. File values override defaults after schema validation
//  4. Environment variables override file values ([EnvLogLevel])
//
// Having no file at all is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
		if err := decode(data, config, detectConfigFormat(path)); err != nil {
			return nil, err
		}
		config.Path = path
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Logging.Level = level
	}

	config.normalize()
	return config, nil
}

// detectConfigFormat determines the configuration file format from its
// extension, case-insensitively. Unknown extensions are read as JSON.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// decode validates data against the schema and merges it into config.
func decode(data []byte, config *Config, format configFormat) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var document gojsonschema.JSONLoader
	switch format {
	case configFormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("config: failed to parse YAML config file: %w", err)
		}
		document = gojsonschema.NewGoLoader(doc)
	default:
		document = gojsonschema.NewBytesLoader(data)
	}

	if err := validate(document); err != nil {
		return err
	}

	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("config: failed to parse YAML config file: %w", err)
		}
		// yaml.v3 drops null items when decoding into []string; keep them as
		// blank entries so each one is reported.
		var list struct {
			URLs []*string `yaml:"urlsToCheck"`
		}
		if err := yaml.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("config: failed to parse YAML config file: %w", err)
		}
		if list.URLs != nil {
			config.URLsToCheck = make([]string, len(list.URLs))
			for i, u := range list.URLs {
				if u != nil {
					config.URLsToCheck[i] = *u
				}
			}
		}
	default:
		// encoding/json leaves null items in a []string as "".
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("config: failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

func validate(document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), document)
	if err != nil {
		return fmt.Errorf("config: failed to parse config file: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	if c.Defaults.TimeoutSeconds <= 0 {
		c.Defaults.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Defaults.Concurrency <= 0 {
		c.Defaults.Concurrency = DefaultConcurrency
	}
	if c.Defaults.WarnDays < -1 {
		c.Defaults.WarnDays = -1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.FileName == "" {
		c.Logging.FileName = DefaultLogFileName
	}
}

// Timeout returns the per-endpoint timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Defaults.TimeoutSeconds) * time.Second
}

// Endpoints returns the configured URLs, or [ErrNoEndpoints] if there are none.
// Blank and null entries are kept as "" so they are reported individually.
func (c *Config) Endpoints() ([]string, error) {
	if len(c.URLsToCheck) == 0 {
		return nil, ErrNoEndpoints
	}
	return c.URLsToCheck, nil
}
