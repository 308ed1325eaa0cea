package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Log        LogConfig
	Worker     WorkerConfig
	OlapAPI    OlapAPIConfig
	Boundary   BoundaryConfig
	Normalizer NormalizerConfig
	Explorer   ExplorerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

// DatabaseConfig - хранилище (star schema) для эталонного /api/query
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled  bool
	QueryTTL time.Duration
	FeedTTL  time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

// OlapAPIConfig - внешний сервис измерений и поток hotspot
type OlapAPIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
}

type BoundaryConfig struct {
	Dir    string
	Format string
	Files  map[string]string
}

type NormalizerConfig struct {
	AliasFile string
}

type ExplorerConfig struct {
	SessionTTL       time.Duration
	CollapseSiblings bool
	ShowEmpty        bool
}

// Load reads .env (optional) and the environment; the environment wins.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: v.GetString("CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("WAREHOUSE_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Enabled:  v.GetBool("CACHE_ENABLED"),
			QueryTTL: time.Duration(v.GetInt("QUERY_CACHE_TTL")) * time.Second,
			FeedTTL:  time.Duration(v.GetInt("FEED_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
		},
		OlapAPI: OlapAPIConfig{
			BaseURL:        strings.TrimRight(v.GetString("OLAP_API_URL"), "/"),
			RequestTimeout: time.Duration(v.GetInt("OLAP_API_TIMEOUT")) * time.Second,
			RateLimit:      v.GetFloat64("OLAP_API_RATE_LIMIT"),
			RateBurst:      v.GetInt("OLAP_API_RATE_BURST"),
		},
		Boundary: BoundaryConfig{
			Dir:    v.GetString("BOUNDARY_DIR"),
			Format: strings.ToLower(v.GetString("BOUNDARY_FORMAT")),
			Files:  parseFiles(v.GetString("BOUNDARY_FILES")),
		},
		Normalizer: NormalizerConfig{
			AliasFile: v.GetString("ALIAS_FILE"),
		},
		Explorer: ExplorerConfig{
			SessionTTL:       time.Duration(v.GetInt("SESSION_TTL")) * time.Second,
			CollapseSiblings: v.GetBool("COLLAPSE_SIBLINGS"),
			ShowEmpty:        v.GetBool("MAP_SHOW_EMPTY"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("QUERY_CACHE_TTL", 600)
	v.SetDefault("FEED_CACHE_TTL", 300)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WORKER_CONSUMER_GROUP", "hotspot-cache-workers")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("OLAP_API_URL", "http://localhost:8000")
	v.SetDefault("OLAP_API_TIMEOUT", 30)
	v.SetDefault("OLAP_API_RATE_LIMIT", 20)
	v.SetDefault("OLAP_API_RATE_BURST", 10)
	v.SetDefault("BOUNDARY_DIR", "data/boundaries")
	v.SetDefault("BOUNDARY_FORMAT", "geojson")
	v.SetDefault("SESSION_TTL", 1800)
	v.SetDefault("COLLAPSE_SIBLINGS", true)
	v.SetDefault("MAP_SHOW_EMPTY", false)
}

// parseFiles reads "pulau=pulau.geojson,provinsi=prov.geojson" overrides.
func parseFiles(s string) map[string]string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make(map[string]string, len(parts))
	for _, p := range parts {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok {
			continue
		}
		if key, value = strings.TrimSpace(key), strings.TrimSpace(value); key != "" && value != "" {
			result[key] = value
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
