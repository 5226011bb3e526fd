package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Store backend names accepted in the config file.
const (
	backendMemory = "memory"
	backendRedis  = "redis"
	backendMongo  = "mongo"
)

// Config is the CLI configuration, loaded from a TOML file.
//
// The default location is ~/.config/schemadraw/config.toml (or
// $XDG_CONFIG_HOME/schemadraw/config.toml). A missing file yields the
// defaults; a malformed file is an error.
//
// Example:
//
//	[store]
//	backend = "redis"
//
//	[store.redis]
//	addr = "localhost:6379"
//
//	[generator]
//	base_url = "https://api.example.com"
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Generator GeneratorConfig `toml:"generator"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// GeneratorConfig configures the AI generation service.
type GeneratorConfig struct {
	BaseURL   string `toml:"base_url"`
	AuthToken string `toml:"auth_token"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{Backend: backendMemory},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "", backendMemory, backendRedis, backendMongo:
	default:
		return configErrorf("unknown store backend %q (must be memory, redis, or mongo)", c.Store.Backend)
	}
	if c.Store.Backend == backendRedis && c.Store.Redis.Addr == "" {
		return configErrorf("store.redis.addr is required for the redis backend")
	}
	if c.Store.Backend == backendMongo && c.Store.Mongo.URI == "" {
		return configErrorf("store.mongo.uri is required for the mongo backend")
	}
	return nil
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("config: "+format, args...)
}
