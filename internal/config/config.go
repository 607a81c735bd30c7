package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"invoicer/internal/logger"
	"invoicer/internal/store"
)

type Config struct {
	// Store Configuration
	StoreBackend       string
	StorePath          string
	StoreCapacityBytes int64

	// Redis Configuration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from environment variables and, when configFile
// is not empty, from that file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.backend", store.KindFile)
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.capacity_bytes", store.DefaultCapacity)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "invoicer:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.output", "stderr")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	config := &Config{
		StoreBackend:       strings.ToLower(v.GetString("store.backend")),
		StorePath:          v.GetString("store.path"),
		StoreCapacityBytes: v.GetInt64("store.capacity_bytes"),
		RedisAddr:          v.GetString("redis.addr"),
		RedisPassword:      v.GetString("redis.password"),
		RedisDB:            v.GetInt("redis.db"),
		RedisKeyPrefix:     v.GetString("redis.key_prefix"),
		LogLevel:           v.GetString("log.level"),
		LogFormat:          v.GetString("log.format"),
		LogTimeFormat:      v.GetString("log.time_format"),
		LogOutput:          v.GetString("log.output"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case store.KindFile, store.KindSQLite:
		if c.StorePath == "" {
			return errors.New("STORE_PATH is required for the file and sqlite backends")
		}
	case store.KindRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis backend")
		}
	case store.KindMemory:
	default:
		return fmt.Errorf("STORE_BACKEND %q is not one of file, sqlite, redis, memory", c.StoreBackend)
	}
	if c.StoreCapacityBytes < 0 {
		return errors.New("STORE_CAPACITY_BYTES must not be negative")
	}
	if c.RedisDB < 0 {
		return errors.New("REDIS_DB must not be negative")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetStoreConfig returns the backend selection for store.Open.
func (c *Config) GetStoreConfig() store.BackendConfig {
	return store.BackendConfig{
		Kind:          c.StoreBackend,
		Path:          c.StorePath,
		CapacityBytes: c.StoreCapacityBytes,
		Redis: store.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisKeyPrefix,
		},
	}
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "invoicer")
	}
	return ".invoicer"
}
