package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

type Config struct {
	DiscordToken  string
	ApplicationID string

	GuildID    string
	BotOwnerID string

	ShardCount int

	LogLevel         string
	AutoLeaveTimeout int
	DefaultVolume    int
	PromptTimeout    int

	StoreBackend string
	DataDir      string
	SQLitePath   string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	RedisCacheTTL int

	HTTPAddr         string
	APIJWTSecret     string
	APIAdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),

		GuildID:    os.Getenv("DISCORD_GUILD_ID"),
		BotOwnerID: os.Getenv("BOT_OWNER_ID"),

		ShardCount: getEnvAsIntWithDefault("SHARD_COUNT", 0),

		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		AutoLeaveTimeout: getEnvAsIntWithDefault("AUTO_LEAVE_TIMEOUT", 300),
		DefaultVolume:    getEnvAsIntWithDefault("DEFAULT_VOLUME", 70),
		PromptTimeout:    getEnvAsIntWithDefault("PROMPT_TIMEOUT", 60),

		StoreBackend: strings.ToLower(getEnvWithDefault("STORE_BACKEND", StoreFile)),
		DataDir:      getEnvWithDefault("DATA_DIR", "data"),
		SQLitePath:   getEnvWithDefault("SQLITE_PATH", "radiowave.db"),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvAsIntWithDefault("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvAsIntWithDefault("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", 0),
		RedisCacheTTL: getEnvAsIntWithDefault("REDIS_CACHE_TTL", 600),

		HTTPAddr:         os.Getenv("HTTP_ADDR"),
		APIJWTSecret:     os.Getenv("API_JWT_SECRET"),
		APIAdminPassword: os.Getenv("API_ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}

	if c.ApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is required")
	}

	if c.DefaultVolume < 0 || c.DefaultVolume > 100 {
		return errors.New("DEFAULT_VOLUME must be between 0 and 100")
	}

	if c.PromptTimeout < 1 {
		return errors.New("PROMPT_TIMEOUT must be at least 1")
	}

	switch c.StoreBackend {
	case StoreFile:
		if c.DataDir == "" {
			return errors.New("DATA_DIR is required for the file store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DBName == "" || c.DBUser == "" {
			return errors.New("DB_NAME and DB_USER are required for the postgres store")
		}
	case StoreRedis:
		if c.RedisHost == "" {
			return errors.New("REDIS_HOST is required for the redis store")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of file, postgres, sqlite, redis (got %q)", c.StoreBackend)
	}

	if c.APIJWTSecret != "" && c.APIAdminPassword == "" {
		return errors.New("API_ADMIN_PASSWORD is required when API_JWT_SECRET is set")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.GuildID != ""
}

// RedisEnabled reports whether a redis server is configured, either as the
// store itself or as a cache in front of a SQL store.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func (c *Config) HTTPEnabled() bool {
	return c.HTTPAddr != ""
}

// DefaultVolumeLevel is DEFAULT_VOLUME as a player level in [0, 1].
func (c *Config) DefaultVolumeLevel() float64 {
	return float64(c.DefaultVolume) / 100
}

func (c *Config) AutoLeaveDuration() time.Duration {
	if c.AutoLeaveTimeout <= 0 {
		return 0
	}
	return time.Duration(c.AutoLeaveTimeout) * time.Second
}

func (c *Config) PromptDuration() time.Duration {
	return time.Duration(c.PromptTimeout) * time.Second
}

func (c *Config) RedisCacheDuration() time.Duration {
	if c.RedisCacheTTL <= 0 {
		return 0
	}
	return time.Duration(c.RedisCacheTTL) * time.Second
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// GetDBConfig returns the SQL settings for the postgres or sqlite store.
func (c *Config) GetDBConfig() *DBConfig {
	driver := "postgres"
	if c.StoreBackend == StoreSQLite {
		driver = "sqlite3"
	}
	return &DBConfig{
		Driver:     driver,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		Name:       c.DBName,
		SSLMode:    c.DBSSLMode,
		SQLitePath: c.SQLitePath,
	}
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

func (c *Config) GetRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Enabled:  c.RedisEnabled(),
	}
}
