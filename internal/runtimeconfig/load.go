package runtimeconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the config file.
const (
	EnvGenAIAPIKey   = "SITECMS_GENAI_API_KEY"
	EnvStorageDSN    = "SITECMS_STORAGE_DSN"
	EnvRedisPassword = "SITECMS_REDIS_PASSWORD"
	EnvCRMPassword   = "SITECMS_CRM_PASSWORD"
	EnvEmailAPIKey   = "SITECMS_EMAIL_API_KEY"
)

// Load reads a YAML file over DefaultConfig, applies environment overrides and
// validates the result. An empty path loads defaults only.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("sitecms config: read %s: %w", path, err)
		}
		if err := Decode(raw, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals YAML into cfg, keeping existing values for absent keys.
func Decode(raw []byte, cfg *Config) error {
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("sitecms config: decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	set(EnvGenAIAPIKey, &cfg.GenAI.APIKey)
	set(EnvStorageDSN, &cfg.Storage.DSN)
	set(EnvRedisPassword, &cfg.Redis.Password)
	set(EnvCRMPassword, &cfg.CRM.Password)
	set(EnvEmailAPIKey, &cfg.Email.APIKey)
}
