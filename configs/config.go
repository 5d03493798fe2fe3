package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Cache       CacheConfig       `yaml:"cache"`
	Recognition RecognitionConfig `yaml:"recognition"`
	OCR         OCRConfig         `yaml:"ocr"`
	Redis       RedisConfig       `yaml:"redis"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	TLSCertFile  string        `yaml:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file"`
}

// CacheBackend selects the ResultCache implementation.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type CacheConfig struct {
	Backend string        `yaml:"backend"`
	MaxSize int           `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

type RecognitionConfig struct {
	DefaultType   string        `yaml:"default_type"`
	MaxImageBytes int64         `yaml:"max_image_bytes"`
	MinImageBytes int64         `yaml:"min_image_bytes"`
	Timeout       time.Duration `yaml:"timeout"`
	URLFetchLimit int64         `yaml:"url_fetch_limit"`
}

type OCRConfig struct {
	Languages []string          `yaml:"languages"`
	Variables map[string]string `yaml:"variables"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Pool and timeout settings
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolTimeout  time.Duration `yaml:"pool_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	KeyPrefix    string        `yaml:"key_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := defaults()

	// Optional YAML config file merged before env overrides.
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			MaxSize: 1000,
			TTL:     time.Hour,
		},
		Recognition: RecognitionConfig{
			DefaultType:   "text",
			MaxImageBytes: 16 * 1024 * 1024,
			MinImageBytes: 16,
			Timeout:       30 * time.Second,
			URLFetchLimit: 16 * 1024 * 1024,
		},
		OCR: OCRConfig{
			Languages: []string{"eng"},
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         "6379",
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  5 * time.Minute,
			KeyPrefix:    "captcha",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getDurationEnv("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.TLSCertFile = getEnv("TLS_CERT_FILE", c.Server.TLSCertFile)
	c.Server.TLSKeyFile = getEnv("TLS_KEY_FILE", c.Server.TLSKeyFile)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.MaxSize = getIntEnv("CACHE_MAX_SIZE", c.Cache.MaxSize)
	c.Cache.TTL = getDurationEnv("CACHE_TTL", c.Cache.TTL)

	c.Recognition.DefaultType = getEnv("RECOGNITION_DEFAULT_TYPE", c.Recognition.DefaultType)
	c.Recognition.MaxImageBytes = getInt64Env("RECOGNITION_MAX_IMAGE_BYTES", c.Recognition.MaxImageBytes)
	c.Recognition.MinImageBytes = getInt64Env("RECOGNITION_MIN_IMAGE_BYTES", c.Recognition.MinImageBytes)
	c.Recognition.Timeout = getDurationEnv("RECOGNITION_TIMEOUT", c.Recognition.Timeout)
	c.Recognition.URLFetchLimit = getInt64Env("RECOGNITION_URL_FETCH_LIMIT", c.Recognition.URLFetchLimit)

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)
	c.Redis.PoolSize = getIntEnv("REDIS_POOL_SIZE", c.Redis.PoolSize)
	c.Redis.MinIdleConns = getIntEnv("REDIS_MIN_IDLE_CONNS", c.Redis.MinIdleConns)
	c.Redis.DialTimeout = getDurationEnv("REDIS_DIAL_TIMEOUT", c.Redis.DialTimeout)
	c.Redis.ReadTimeout = getDurationEnv("REDIS_READ_TIMEOUT", c.Redis.ReadTimeout)
	c.Redis.WriteTimeout = getDurationEnv("REDIS_WRITE_TIMEOUT", c.Redis.WriteTimeout)
	c.Redis.PoolTimeout = getDurationEnv("REDIS_POOL_TIMEOUT", c.Redis.PoolTimeout)
	c.Redis.IdleTimeout = getDurationEnv("REDIS_IDLE_TIMEOUT", c.Redis.IdleTimeout)
	c.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", c.Redis.KeyPrefix)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate rejects configurations the cache and recognition core cannot honor.
func (c *Config) Validate() error {
	if c.Cache.MaxSize <= 0 {
		return fmt.Errorf("cache.max_size must be positive, got %d", c.Cache.MaxSize)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.Backend != CacheBackendMemory && c.Cache.Backend != CacheBackendRedis {
		return fmt.Errorf("cache.backend must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.Cache.Backend)
	}
	if c.Recognition.MaxImageBytes <= 0 {
		return fmt.Errorf("recognition.max_image_bytes must be positive, got %d", c.Recognition.MaxImageBytes)
	}
	if c.Recognition.Timeout <= 0 {
		return fmt.Errorf("recognition.timeout must be positive, got %s", c.Recognition.Timeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Bare integers are treated as seconds, matching the documented
		// cache.ttl / recognition.timeout units.
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
