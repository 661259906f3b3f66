package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseURL     = "http://127.0.0.1:3001"
	DefaultDatabaseURL = "smolpaste.sqlite"
	DefaultAddr        = "127.0.0.1:3001"
	DefaultStorageDir  = "pastes"
	DefaultLogLevel    = "info"
	DefaultFileName    = "smolpaste.toml"

	DefaultMaxUploadBytes int64 = 1<<32 - 1

	ConfigPathEnvKey        = "SMOLPASTE_CONFIG"
	BaseURLEnvKey           = "BASE_URL"
	DatabaseURLEnvKey       = "DATABASE_URL"
	AddrEnvKey              = "SMOLPASTE_ADDR"
	LogLevelEnvKey          = "SMOLPASTE_LOG_LEVEL"
	MaxUploadBytesEnvKey    = "SMOLPASTE_MAX_UPLOAD_BYTES"
	AllowedExtensionsEnvKey = "SMOLPASTE_ALLOWED_EXTENSIONS"
)

// Config defines runtime configuration for smolpaste.
type Config struct {
	BaseURL           string   `toml:"base_url"`
	DatabaseURL       string   `toml:"database_url"`
	Addr              string   `toml:"addr"`
	StorageDir        string   `toml:"storage_dir"`
	LogLevel          string   `toml:"log_level"`
	MaxUploadBytes    int64    `toml:"max_upload_bytes"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	LoadedPath        string   `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		DatabaseURL:       DefaultDatabaseURL,
		Addr:              DefaultAddr,
		StorageDir:        DefaultStorageDir,
		LogLevel:          DefaultLogLevel,
		MaxUploadBytes:    DefaultMaxUploadBytes,
		AllowedExtensions: nil,
	}
}

func loadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if err := loadFile(path, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// ResolvePath picks the config file: the explicit path, then
// SMOLPASTE_CONFIG, then smolpaste.toml in the working directory.
// required reports whether the file must exist.
func ResolvePath(explicit string) (path string, required bool) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, true
	}
	if fromEnv := strings.TrimSpace(os.Getenv(ConfigPathEnvKey)); fromEnv != "" {
		return fromEnv, true
	}
	return DefaultFileName, false
}

var allowedKeys = []string{
	"base_url",
	"database_url",
	"addr",
	"storage_dir",
	"log_level",
	"max_upload_bytes",
	"allowed_extensions",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "base_url":
		return c.BaseURL, nil
	case "database_url":
		return c.DatabaseURL, nil
	case "addr":
		return c.Addr, nil
	case "storage_dir":
		return c.StorageDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "max_upload_bytes":
		return strconv.FormatInt(c.MaxUploadBytes, 10), nil
	case "allowed_extensions":
		return strings.Join(c.AllowedExtensions, ","), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	data[key] = parsedValue

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads the config file resolved from explicitPath and applies env
// overrides.
func Load(explicitPath string) (*Config, error) {
	cfg := Default()

	path, required := ResolvePath(explicitPath)
	if required {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
		cfg.LoadedPath = path
	} else {
		loaded, err := loadFileIfExists(path, &cfg)
		if err != nil {
			return nil, err
		}
		if loaded {
			cfg.LoadedPath = path
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	// BASE_URL is used verbatim; a trailing slash is kept.
	if baseURL := os.Getenv(BaseURLEnvKey); baseURL != "" {
		c.BaseURL = baseURL
	}
	if databaseURL := strings.TrimSpace(os.Getenv(DatabaseURLEnvKey)); databaseURL != "" {
		c.DatabaseURL = databaseURL
	}
	if addr := strings.TrimSpace(os.Getenv(AddrEnvKey)); addr != "" {
		c.Addr = addr
	}
	if level := strings.TrimSpace(os.Getenv(LogLevelEnvKey)); level != "" {
		c.LogLevel = level
	}
	if raw := strings.TrimSpace(os.Getenv(MaxUploadBytesEnvKey)); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", MaxUploadBytesEnvKey, raw)
		}
		c.MaxUploadBytes = parsed
	}
	if raw, ok := os.LookupEnv(AllowedExtensionsEnvKey); ok {
		c.AllowedExtensions = splitCSV(raw)
	}
	return nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "max_upload_bytes":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 || parsed > DefaultMaxUploadBytes {
			return nil, fmt.Errorf("%s must be a positive integer no larger than %d", key, DefaultMaxUploadBytes)
		}
		return parsed, nil
	case "allowed_extensions":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalize() error {
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.MaxUploadBytes > DefaultMaxUploadBytes {
		return fmt.Errorf("max_upload_bytes %d exceeds the 32-bit paste size limit %d", c.MaxUploadBytes, DefaultMaxUploadBytes)
	}
	if strings.TrimSpace(c.StorageDir) == "" {
		c.StorageDir = DefaultStorageDir
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		c.DatabaseURL = DefaultDatabaseURL
	}
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = DefaultAddr
	}
	c.AllowedExtensions = normalizeExtensions(c.AllowedExtensions)
	return nil
}

func normalizeExtensions(rawValues []string) []string {
	if len(rawValues) == 0 {
		return nil
	}
	out := make([]string, 0, len(rawValues))
	seen := map[string]struct{}{}
	for _, raw := range rawValues {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
