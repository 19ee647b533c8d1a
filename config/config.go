package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides, e.g. BIDZU_API_BASEURL.
const EnvPrefix = "BIDZU_"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. config.<env>.yaml, then config.yaml
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with the YAML files looked up in dir.
func LoadFrom(dir string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadOptionalFile(k, filepath.Join(dir, "config.yaml")); err != nil {
		return nil, err
	}

	if appEnv := envOverride("app.env", k.String("app.env")); appEnv != "" {
		if err := loadOptionalFile(k, filepath.Join(dir, fmt.Sprintf("config.%s.yaml", appEnv))); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(k); err != nil {
		return nil, err
	}

	return finish(k)
}

// loadOptionalFile merges a YAML file. A missing file is skipped; one that
// exists but cannot be read or parsed is an error.
func loadOptionalFile(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadYAML builds a configuration from defaults, the given YAML document and
// the environment.
func LoadYAML(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnv(k *koanf.Koanf) error {
	provider := env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// envKey maps BIDZU_API_AUTH_MAXRETRIES to api.auth.maxretries.
func envKey(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
}

// envOverride lets the environment pick the profile file before the env layer is loaded.
func envOverride(key, fallback string) string {
	k := koanf.New(".")
	if err := loadEnv(k); err == nil && k.Exists(key) {
		return k.String(key)
	}
	return fallback
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name": "bidzu",
		"app.env":  EnvDevelopment,

		"api.timeout":             "0s",
		"api.logpayloads":         false,
		"api.maxpayloadlogbytes":  1024,
		"api.traceidheader":       "X-Request-ID",
		"api.auth.maxretries":     5,
		"api.auth.expiredmessage": "Token expired",
		"api.auth.expiredstatus":  401,
		"api.rate.limit":          0,
		"api.rate.burst":          0,

		"session.type": SessionMemory,
		"session.path": "",

		"log.level":  "info",
		"log.pretty": false,

		"observability.enabled":  false,
		"observability.endpoint": "",
		"observability.interval": "60s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// GetString retrieves a raw string value, or the provided default when unset.
func (c *Config) GetString(key string, defaultVal ...string) string {
	if c == nil || c.k == nil || !c.k.Exists(key) {
		if len(defaultVal) > 0 {
			return defaultVal[0]
		}
		return ""
	}
	return c.k.String(key)
}

// Exists reports whether key was set by any configuration source.
func (c *Config) Exists(key string) bool {
	return c != nil && c.k != nil && c.k.Exists(key)
}
