package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-courseflow"
	"github.com/goliatone/go-courseflow/internal/di"
	"gopkg.in/yaml.v3"
)

// DefaultDSN is used when neither the config file nor flags name a database.
const DefaultDSN = "file:courseflow.db?cache=shared"

// Options captures configuration for CLI bootstraps.
type Options struct {
	ConfigPath string
	Driver     string
	DSN        string
	LogLevel   string
	DIOptions  []di.Option
}

// LoadConfig reads the YAML file at path over the default configuration.
// The CLI defaults to sqlite storage so state survives between invocations.
func LoadConfig(path string) (courseflow.Config, error) {
	cfg := courseflow.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = DefaultDSN
	cfg.Logging.Level = "warn"

	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// BuildModule constructs a courseflow module and prepares its storage.
func BuildModule(opts Options) (*courseflow.Module, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if driver := strings.TrimSpace(opts.Driver); driver != "" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.Driver = driver
	}
	if dsn := strings.TrimSpace(opts.DSN); dsn != "" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.DSN = dsn
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}

	module, err := courseflow.New(cfg, opts.DIOptions...)
	if err != nil {
		return nil, fmt.Errorf("initialise courseflow module: %w", err)
	}
	return module, nil
}
