// Package config loads CLI settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pluginform/pkg/transport"
)

const (
	NotifyLog     = "log"
	NotifyDesktop = "desktop"
	NotifyNone    = "none"

	DefaultTimeout = 30 * time.Second

	EnvServer = "PLUGINFORM_SERVER"
	EnvToken  = "PLUGINFORM_TOKEN"
)

// Config holds everything the CLI needs to reach one plugin endpoint.
type Config struct {
	Server       string        `yaml:"server"`
	Token        string        `yaml:"token"`
	Organization string        `yaml:"organization"`
	Project      string        `yaml:"project"`
	Plugin       string        `yaml:"plugin"`
	Timeout      time.Duration `yaml:"timeout"`
	Notify       string        `yaml:"notify"`
	SanitizeHelp bool          `yaml:"sanitize_help"`
	Log          LoggingConfig `yaml:"log"`
}

// LoggingConfig selects the log level and an optional log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Timeout: DefaultTimeout,
		Notify:  NotifyLog,
		Log:     LoggingConfig{Level: "info"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/pluginform/config.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "pluginform", "config.yaml"), nil
}

// Load reads path on top of Default. A missing file is only an error when
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides the server and token from the environment when set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvServer); ok && strings.TrimSpace(v) != "" {
		c.Server = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvToken); ok && strings.TrimSpace(v) != "" {
		c.Token = strings.TrimSpace(v)
	}
}

// Validate checks the endpoint and option values. The server URL is checked
// separately by RequireServer since offline runs do without one.
func (c Config) Validate() error {
	var problems []string
	if err := c.Endpoint().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Timeout < 0 {
		problems = append(problems, "timeout must not be negative")
	}
	switch c.Notify {
	case NotifyLog, NotifyDesktop, NotifyNone:
	default:
		problems = append(problems, fmt.Sprintf("unsupported notify mode %q", c.Notify))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RequireServer reports a missing server URL.
func (c Config) RequireServer() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("config: server is required (set it in the config file, --server or " + EnvServer + ")")
	}
	return nil
}

// Endpoint returns the configured plugin endpoint.
func (c Config) Endpoint() transport.Endpoint {
	return transport.Endpoint{
		Organization: strings.TrimSpace(c.Organization),
		Project:      strings.TrimSpace(c.Project),
		Plugin:       strings.TrimSpace(c.Plugin),
	}
}
