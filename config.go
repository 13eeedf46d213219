package sitecms

import "github.com/goliatone/go-sitecms/internal/runtimeconfig"

var (
	ErrDefaultLanguageUnsupported = runtimeconfig.ErrDefaultLanguageUnsupported
	ErrLocalesRequired            = runtimeconfig.ErrLocalesRequired
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrRedisAddrRequired          = runtimeconfig.ErrRedisAddrRequired
	ErrObjectStorageBucketMissing = runtimeconfig.ErrObjectStorageBucketMissing
	ErrCRMBaseURLRequired         = runtimeconfig.ErrCRMBaseURLRequired
	ErrEmailBaseURLRequired       = runtimeconfig.ErrEmailBaseURLRequired
	ErrSearchLimitInvalid         = runtimeconfig.ErrSearchLimitInvalid
)

type (
	Config              = runtimeconfig.Config
	SiteConfig          = runtimeconfig.SiteConfig
	I18NConfig          = runtimeconfig.I18NConfig
	StorageConfig       = runtimeconfig.StorageConfig
	CacheConfig         = runtimeconfig.CacheConfig
	LoggingConfig       = runtimeconfig.LoggingConfig
	HTTPConfig          = runtimeconfig.HTTPConfig
	RedisConfig         = runtimeconfig.RedisConfig
	GenAIConfig         = runtimeconfig.GenAIConfig
	ObjectStorageConfig = runtimeconfig.ObjectStorageConfig
	CRMConfig           = runtimeconfig.CRMConfig
	EmailConfig         = runtimeconfig.EmailConfig
	SearchConfig        = runtimeconfig.SearchConfig
)

// DefaultConfig returns a memory backed configuration suitable for local runs.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file and applies SITECMS_* environment overrides.
// An empty path loads defaults plus the environment.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
