package courseflow

import "github.com/goliatone/go-courseflow/internal/runtimeconfig"

var (
	ErrEditLimitInvalid         = runtimeconfig.ErrEditLimitInvalid
	ErrGenerationTimeoutInvalid = runtimeconfig.ErrGenerationTimeoutInvalid
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrCommandTimeoutInvalid    = runtimeconfig.ErrCommandTimeoutInvalid
)

type (
	Config         = runtimeconfig.Config
	ApprovalConfig = runtimeconfig.ApprovalConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	PLTConfig      = runtimeconfig.PLTConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	CommandsConfig = runtimeconfig.CommandsConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
