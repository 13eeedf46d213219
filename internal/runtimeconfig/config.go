package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrDefaultLanguageUnsupported = errors.New("sitecms config: default language must be one of the configured locales")
	ErrLocalesRequired            = errors.New("sitecms config: at least one locale is required")
	ErrStorageProviderUnknown     = errors.New("sitecms config: storage provider is invalid")
	ErrStorageDriverUnknown       = errors.New("sitecms config: storage driver is invalid")
	ErrStorageDSNRequired         = errors.New("sitecms config: storage dsn is required for bun storage")
	ErrLoggingProviderUnknown     = errors.New("sitecms config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("sitecms config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("sitecms config: logging format is invalid")
	ErrRedisAddrRequired          = errors.New("sitecms config: redis address is required when redis is enabled")
	ErrObjectStorageBucketMissing = errors.New("sitecms config: object storage bucket is required for gcs")
	ErrCRMBaseURLRequired         = errors.New("sitecms config: crm base url is required when crm is enabled")
	ErrEmailBaseURLRequired       = errors.New("sitecms config: email base url is required when email is enabled")
	ErrSearchLimitInvalid         = errors.New("sitecms config: search limits must be positive and default <= max")
)

// Config aggregates adapter bindings for the site module.
type Config struct {
	DefaultLanguage string              `yaml:"default_language"`
	Site            SiteConfig          `yaml:"site"`
	I18N            I18NConfig          `yaml:"i18n"`
	Storage         StorageConfig       `yaml:"storage"`
	Cache           CacheConfig         `yaml:"cache"`
	Logging         LoggingConfig       `yaml:"logging"`
	HTTP            HTTPConfig          `yaml:"http"`
	Redis           RedisConfig         `yaml:"redis"`
	GenAI           GenAIConfig         `yaml:"genai"`
	ObjectStorage   ObjectStorageConfig `yaml:"object_storage"`
	CRM             CRMConfig           `yaml:"crm"`
	Email           EmailConfig         `yaml:"email"`
	Search          SearchConfig        `yaml:"search"`
}

// SiteConfig drives public URL generation.
type SiteConfig struct {
	BaseURL string `yaml:"base_url"`
}

type I18NConfig struct {
	Locales []string `yaml:"locales"`
}

// StorageConfig selects where page content and registries live. The memory
// provider needs no DSN.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
}

// CacheConfig toggles the repository cache wrapped around registry lookups.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	AdminPrefix  string        `yaml:"admin_prefix"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Metrics      bool          `yaml:"metrics"`
}

type RedisConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// GenAIConfig configures the Gemini client shared by translation and search.
// An empty APIKey disables both integrations.
type GenAIConfig struct {
	APIKey           string `yaml:"api_key"`
	TranslationModel string `yaml:"translation_model"`
	EmbeddingModel   string `yaml:"embedding_model"`
}

type ObjectStorageConfig struct {
	Provider      string `yaml:"provider"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// CRMConfig points at the marketing automation API.
type CRMConfig struct {
	Enabled       bool    `yaml:"enabled"`
	BaseURL       string  `yaml:"base_url"`
	Username      string  `yaml:"username"`
	Password      string  `yaml:"password"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

type EmailConfig struct {
	Enabled       bool   `yaml:"enabled"`
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	From          string `yaml:"from"`
	NotifyAddress string `yaml:"notify_address"`
}

type SearchConfig struct {
	DefaultLimit int           `yaml:"default_limit"`
	MaxLimit     int           `yaml:"max_limit"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// DefaultConfig returns an in-memory, console-logging configuration that is
// usable without any external service.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage: "en",
		Site: SiteConfig{
			BaseURL: "http://localhost:8080",
		},
		I18N: I18NConfig{
			Locales: []string{"en", "de", "ja", "ko", "zh"},
		},
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			AdminPrefix:  "/admin/api",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			Metrics:      true,
		},
		Redis: RedisConfig{
			KeyPrefix: "sitecms:",
		},
		GenAI: GenAIConfig{
			TranslationModel: "gemini-2.5-flash",
			EmbeddingModel:   "gemini-embedding-001",
		},
		ObjectStorage: ObjectStorageConfig{
			Provider: "memory",
		},
		CRM: CRMConfig{
			RatePerSecond: 5,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			MaxLimit:     50,
			CacheTTL:     10 * time.Minute,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if len(cfg.I18N.Locales) == 0 {
		return ErrLocalesRequired
	}
	if !slices.Contains(cfg.I18N.Locales, strings.TrimSpace(cfg.DefaultLanguage)) {
		return fmt.Errorf("%w: %s", ErrDefaultLanguageUnsupported, cfg.DefaultLanguage)
	}

	switch normalize(cfg.Storage.Provider) {
	case "memory":
	case "bun":
		switch normalize(cfg.Storage.Driver) {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	provider := normalize(cfg.Logging.Provider)
	switch provider {
	case "console", "gologger", "zap":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}
	if level := normalize(cfg.Logging.Level); level != "" && !slices.Contains(supportedLevels, level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider != "console" {
		if format := normalize(cfg.Logging.Format); format != "" && !slices.Contains(supportedFormats, format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return ErrRedisAddrRequired
	}
	if normalize(cfg.ObjectStorage.Provider) == "gcs" && strings.TrimSpace(cfg.ObjectStorage.Bucket) == "" {
		return ErrObjectStorageBucketMissing
	}
	if cfg.CRM.Enabled && strings.TrimSpace(cfg.CRM.BaseURL) == "" {
		return ErrCRMBaseURLRequired
	}
	if cfg.Email.Enabled && strings.TrimSpace(cfg.Email.BaseURL) == "" {
		return ErrEmailBaseURLRequired
	}
	if cfg.Search.DefaultLimit <= 0 || cfg.Search.MaxLimit <= 0 || cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		return ErrSearchLimitInvalid
	}
	return nil
}

var (
	supportedLevels  = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal"}
	supportedFormats = []string{"json", "console", "pretty"}
)

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
