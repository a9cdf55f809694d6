// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/herald/lib/localsink"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "HERALD_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the relay configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Name identifies this service in startup and shutdown notices.
	Name string `yaml:"name"`

	// Matrix configures the remote channel.
	Matrix MatrixConfig `yaml:"matrix"`

	// Local configures terminal output.
	Local LocalConfig `yaml:"local"`

	// Relay configures raw line ingestion.
	Relay RelayConfig `yaml:"relay"`

	// Ingest configures the HTTP ingestion server.
	Ingest IngestConfig `yaml:"ingest"`

	// Logging configures diagnostic logging.
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains the sections an environment may override. Empty
// fields leave the base value in place.
type Overrides struct {
	Name    string         `yaml:"name,omitempty"`
	Matrix  *MatrixConfig  `yaml:"matrix,omitempty"`
	Local   *LocalConfig   `yaml:"local,omitempty"`
	Relay   *RelayConfig   `yaml:"relay,omitempty"`
	Ingest  *IngestConfig  `yaml:"ingest,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// MatrixConfig configures the Matrix room events are delivered to.
type MatrixConfig struct {
	// HomeserverURL is the homeserver base URL. Empty disables remote
	// delivery.
	HomeserverURL string `yaml:"homeserver_url"`

	// UserID is the relay's Matrix user. Optional: when empty it is
	// learned from the token with whoami.
	UserID string `yaml:"user_id"`

	// TokenFile holds the access token, plain or age-sealed.
	TokenFile string `yaml:"token_file"`

	// IdentityFile is an age identity file. When set, TokenFile is
	// decrypted with it.
	IdentityFile string `yaml:"identity_file"`

	// Room is a room alias (#...) or room ID (!...).
	Room string `yaml:"room"`

	// SendTimeout bounds each Matrix request, as a Go duration.
	// Default: 10s
	SendTimeout string `yaml:"send_timeout"`
}

// LocalConfig configures terminal output.
type LocalConfig struct {
	// Color is auto, always, or never. Default: auto
	Color string `yaml:"color"`

	// Timezone is an IANA zone name or "Local" for the clock shown in
	// rendered lines. Default: Local
	Timezone string `yaml:"timezone"`
}

// RelayConfig configures raw line ingestion.
type RelayConfig struct {
	// Producer is the process-name prefix stripped from raw lines.
	// Empty strips any "<name> |" prefix.
	Producer string `yaml:"producer"`
}

// IngestConfig configures the HTTP ingestion server.
type IngestConfig struct {
	// Listen is a host:port. Empty disables the server.
	Listen string `yaml:"listen"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Format is auto, text, or json. Default: auto
	Format string `yaml:"format"`
}

// Default returns the configuration used as the base before a file is
// loaded, and by the relay when no file is named.
func Default() *Config {
	return &Config{
		Environment: Development,
		Name:        "herald",
		Matrix: MatrixConfig{
			SendTimeout: "10s",
		},
		Local: LocalConfig{
			Color:    "auto",
			Timezone: "Local",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by HERALD_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your herald.yaml config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, applies environment
// overrides, and expands variables. It does not validate.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".json":
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	override(&c.Name, overrides.Name)
	if m := overrides.Matrix; m != nil {
		override(&c.Matrix.HomeserverURL, m.HomeserverURL)
		override(&c.Matrix.UserID, m.UserID)
		override(&c.Matrix.TokenFile, m.TokenFile)
		override(&c.Matrix.IdentityFile, m.IdentityFile)
		override(&c.Matrix.Room, m.Room)
		override(&c.Matrix.SendTimeout, m.SendTimeout)
	}
	if l := overrides.Local; l != nil {
		override(&c.Local.Color, l.Color)
		override(&c.Local.Timezone, l.Timezone)
	}
	if r := overrides.Relay; r != nil {
		override(&c.Relay.Producer, r.Producer)
	}
	if i := overrides.Ingest; i != nil {
		override(&c.Ingest.Listen, i.Listen)
	}
	if l := overrides.Logging; l != nil {
		override(&c.Logging.Level, l.Level)
		override(&c.Logging.Format, l.Format)
	}
}

func override(field *string, value string) {
	if value != "" {
		*field = value
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}
	c.Matrix.TokenFile = expandVars(c.Matrix.TokenFile, vars)
	c.Matrix.IdentityFile = expandVars(c.Matrix.IdentityFile, vars)
	c.Matrix.HomeserverURL = expandVars(c.Matrix.HomeserverURL, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, consulting vars
// before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// RemoteEnabled reports whether a homeserver is configured.
func (c *Config) RemoteEnabled() bool {
	return c.Matrix.HomeserverURL != ""
}

// SendTimeout returns the parsed matrix.send_timeout. Call Validate
// first; an unparseable value yields the default.
func (c *Config) SendTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Matrix.SendTimeout)
	if err != nil || timeout <= 0 {
		return 10 * time.Second
	}
	return timeout
}

// Location returns the time zone for rendered timestamps.
func (c *Config) Location() (*time.Location, error) {
	if c.Local.Timezone == "" || c.Local.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Local.Timezone)
}

// Validate checks the configuration, reporting every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}

	if c.RemoteEnabled() {
		if c.Matrix.TokenFile == "" {
			errs = append(errs, errors.New("matrix.token_file is required when matrix.homeserver_url is set"))
		}
		if c.Matrix.Room == "" {
			errs = append(errs, errors.New("matrix.room is required when matrix.homeserver_url is set"))
		} else if !strings.HasPrefix(c.Matrix.Room, "#") && !strings.HasPrefix(c.Matrix.Room, "!") {
			errs = append(errs, fmt.Errorf("matrix.room %q must be a room alias (#...) or room ID (!...)", c.Matrix.Room))
		}
		if c.Matrix.UserID != "" && !strings.HasPrefix(c.Matrix.UserID, "@") {
			errs = append(errs, fmt.Errorf("matrix.user_id %q must start with @", c.Matrix.UserID))
		}
	}
	if timeout, err := time.ParseDuration(c.Matrix.SendTimeout); err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("matrix.send_timeout %q must be a positive duration", c.Matrix.SendTimeout))
	}

	if _, err := localsink.ParseColorMode(c.Local.Color); err != nil {
		errs = append(errs, fmt.Errorf("local.color: %w", err))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("local.timezone: %w", err))
	}

	if !contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error"))
	}
	if !contains([]string{"auto", "text", "json"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: auto, text, json"))
	}

	return errors.Join(errs...)
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
