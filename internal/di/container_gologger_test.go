package di

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/internal/logging/gologger"
	"github.com/goliatone/go-courseflow/internal/runtimeconfig"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = runtimeconfig.LoggingProviderGoLogger
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}

	if logger := provider.GetLogger("courseflow.test"); logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestConfigureLoggerProviderNoneLeavesProviderUnset(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = runtimeconfig.LoggingProviderNone

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.loggerProvider != nil {
		t.Fatalf("expected no logger provider, got %T", container.loggerProvider)
	}
}

type storageEvents struct {
	info  []string
	error []string
}

func (s *storageEvents) Trace(string, ...any) {}
func (s *storageEvents) Debug(string, ...any) {}
func (s *storageEvents) Info(msg string, _ ...any) { s.info = append(s.info, msg) }
func (s *storageEvents) Warn(string, ...any) {}
func (s *storageEvents) Error(msg string, _ ...any) { s.error = append(s.error, msg) }
func (s *storageEvents) Fatal(string, ...any) {}
func (s *storageEvents) WithContext(context.Context) interfaces.Logger { return s }

type storageProvider struct{ logger *storageEvents }

func (p storageProvider) GetLogger(string) interfaces.Logger { return p.logger }

func TestOpenBunDBRejectsUnknownDriver(t *testing.T) {
	events := &storageEvents{}
	_, err := OpenBunDB(runtimeconfig.StorageConfig{Driver: "oracle", DSN: "x"}, logging.StorageLogger(storageProvider{logger: events}))
	if !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
	if len(events.error) != 1 || events.error[0] != "storage.open.failed" {
		t.Fatalf("expected storage.open.failed entry, got %v", events.error)
	}
}

func TestOpenBunDBLogsDriver(t *testing.T) {
	events := &storageEvents{}
	db, err := OpenBunDB(runtimeconfig.StorageConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"}, logging.StorageLogger(storageProvider{logger: events}))
	if err != nil {
		t.Fatalf("OpenBunDB returned error: %v", err)
	}
	defer db.Close()
	if len(events.info) != 1 || events.info[0] != "storage.open" {
		t.Fatalf("expected storage.open entry, got %v", events.info)
	}
}

func TestOpenBunDBAcceptsNilLogger(t *testing.T) {
	_, err := OpenBunDB(runtimeconfig.StorageConfig{Driver: "sqlite"}, nil)
	if !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}
