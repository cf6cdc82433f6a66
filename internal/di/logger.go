package di

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-courseflow/internal/logging/gologger"
	"github.com/goliatone/go-courseflow/internal/runtimeconfig"
)

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case runtimeconfig.LoggingProviderNone, "":
		return nil
	case runtimeconfig.LoggingProviderGoLogger:
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure go-logger: %w", err)
		}
		c.loggerProvider = provider
		return nil
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}
