package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrEditLimitInvalid = errors.New("courseflow config: approval edit limit must be greater than zero")
var ErrGenerationTimeoutInvalid = errors.New("courseflow config: generation timeout must be zero or positive")
var ErrStorageProviderUnknown = errors.New("courseflow config: storage provider is invalid")
var ErrStorageDriverUnknown = errors.New("courseflow config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("courseflow config: storage dsn is required for bun storage")
var ErrCacheTTLInvalid = errors.New("courseflow config: cache ttl must be zero or positive")
var ErrLoggingProviderUnknown = errors.New("courseflow config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("courseflow config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("courseflow config: logging format is invalid")
var ErrCommandTimeoutInvalid = errors.New("courseflow config: command timeout must be zero or positive")

const (
	StorageProviderMemory = "memory"
	StorageProviderBun    = "bun"

	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"

	LoggingProviderGoLogger = "gologger"
	LoggingProviderNone     = "none"
)

// Config aggregates the approval policy and adapter bindings for the courseflow module.
type Config struct {
	Approval ApprovalConfig `yaml:"approval"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	PLT      PLTConfig      `yaml:"plt"`
	Logging  LoggingConfig  `yaml:"logging"`
	Commands CommandsConfig `yaml:"commands"`
}

// ApprovalConfig captures the faculty approval policy.
type ApprovalConfig struct {
	// MaxEditsPerStage bounds edit iterations within a single checkpoint.
	MaxEditsPerStage int `yaml:"max_edits_per_stage"`
	// GenerationTimeout bounds every call to a generation collaborator. Zero disables the bound.
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	// RecordRejectedAttempts appends a history entry for actions refused by the state machine.
	RecordRejectedAttempts bool `yaml:"record_rejected_attempts"`
}

// StorageConfig selects the course state store.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
}

// CacheConfig captures cache behaviour for learning tree reads.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// PLTConfig captures learning tree generation policy.
type PLTConfig struct {
	// ReuseExisting returns a previously stored tree when the learner context is unchanged.
	ReuseExisting bool `yaml:"reuse_existing"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns defaults suitable for a single process using an
// in-memory store.
func DefaultConfig() Config {
	return Config{
		Approval: ApprovalConfig{
			MaxEditsPerStage:  5,
			GenerationTimeout: 2 * time.Minute,
		},
		Storage: StorageConfig{
			Provider: StorageProviderMemory,
			Driver:   StorageDriverSQLite,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: 10 * time.Minute,
		},
		PLT: PLTConfig{
			ReuseExisting: true,
		},
		Logging: LoggingConfig{
			Provider: LoggingProviderGoLogger,
			Level:    "info",
			Format:   "console",
		},
		Commands: CommandsConfig{
			Enabled: true,
			Timeout: 5 * time.Minute,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Approval.MaxEditsPerStage <= 0 {
		return ErrEditLimitInvalid
	}
	if cfg.Approval.GenerationTimeout < 0 {
		return ErrGenerationTimeoutInvalid
	}

	switch normalize(cfg.Storage.Provider) {
	case StorageProviderMemory:
	case StorageProviderBun:
		switch normalize(cfg.Storage.Driver) {
		case StorageDriverSQLite, StorageDriverPostgres:
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	switch normalize(cfg.Logging.Provider) {
	case LoggingProviderNone:
	case LoggingProviderGoLogger:
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}

	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
