// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

type Compression struct {
	MinSize int `json:"min_size"` // payloads smaller than this are stored raw
	Level   int `json:"level"`    // 1=fastest .. 4=best
}

type Config struct {
	LogLevel      string `json:"log_level"` // debug, info, warn, error
	DefaultBranch string `json:"default_branch"`

	Storage struct {
		CacheSize   int         `json:"cache_size"`
		Compression Compression `json:"compression"`
	} `json:"storage"`
}

// EnvLogLevel overrides whatever level the config file sets.
const EnvLogLevel = "GITLET_LOG_LEVEL"

func Default() *Config {
	cfg := &Config{
		LogLevel:      "warn",
		DefaultBranch: "master",
	}
	cfg.Storage.CacheSize = 1000
	cfg.Storage.Compression = Compression{MinSize: 1024, Level: 2}
	return cfg
}

// Load reads path on top of Default(). JSON files are decoded as JSON,
// everything else is treated as a git-style ini file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	} else {
		f, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		core := f.Section("core")
		cfg.LogLevel = core.Key("logLevel").MustString(cfg.LogLevel)
		cfg.DefaultBranch = core.Key("defaultBranch").MustString(cfg.DefaultBranch)

		st := f.Section("storage")
		cfg.Storage.CacheSize = st.Key("cacheSize").MustInt(cfg.Storage.CacheSize)
		cfg.Storage.Compression.MinSize = st.Key("compressionMinSize").MustInt(cfg.Storage.Compression.MinSize)
		cfg.Storage.Compression.Level = st.Key("compressionLevel").MustInt(cfg.Storage.Compression.Level)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return Load(path)
}

// Save writes cfg as an ini file.
func Save(path string, cfg *Config) error {
	f := ini.Empty()

	core := f.Section("core")
	core.Key("logLevel").SetValue(cfg.LogLevel)
	core.Key("defaultBranch").SetValue(cfg.DefaultBranch)

	st := f.Section("storage")
	st.Key("cacheSize").SetValue(fmt.Sprint(cfg.Storage.CacheSize))
	st.Key("compressionMinSize").SetValue(fmt.Sprint(cfg.Storage.Compression.MinSize))
	st.Key("compressionLevel").SetValue(fmt.Sprint(cfg.Storage.Compression.Level))

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DefaultBranch == "" {
		return fmt.Errorf("default branch cannot be empty")
	}
	if c.Storage.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Storage.CacheSize)
	}
	if l := c.Storage.Compression.Level; l < 1 || l > 4 {
		return fmt.Errorf("compression level must be between 1 and 4, got %d", l)
	}
	return nil
}

func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}
