package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	GinMode     string
	AppPort     string

	DBHost                string
	DBPort                string
	DBUser                string
	DBPassword            string
	DBName                string
	DBMaxOpenConns        int
	DBMaxIdleConns        int
	DBConnMaxLifetimeMins int

	RedisHost     string
	RedisPort     string
	RedisPassword string

	CacheEnabled    bool
	CacheTTLSeconds int
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "dispatch-backend"))
	cfg.GinMode = cast.ToString(getOrReturnDefault("GIN_MODE", "debug"))
	cfg.AppPort = cast.ToString(getOrReturnDefault("PORT", "8080"))

	cfg.DBHost = cast.ToString(getOrReturnDefault("DB_HOST", "localhost"))
	cfg.DBPort = cast.ToString(getOrReturnDefault("DB_PORT", "5432"))
	cfg.DBUser = cast.ToString(getOrReturnDefault("DB_USER", "postgres"))
	cfg.DBPassword = cast.ToString(getOrReturnDefault("DB_PASSWORD", "postgres"))
	cfg.DBName = cast.ToString(getOrReturnDefault("DB_NAME", "dispatch"))
	cfg.DBMaxOpenConns = cast.ToInt(getOrReturnDefault("DB_MAX_OPEN_CONNS", 100))
	cfg.DBMaxIdleConns = cast.ToInt(getOrReturnDefault("DB_MAX_IDLE_CONNS", 25))
	cfg.DBConnMaxLifetimeMins = cast.ToInt(getOrReturnDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	cfg.CacheEnabled = cast.ToBool(getOrReturnDefault("CACHE_ENABLED", true))
	cfg.CacheTTLSeconds = cast.ToInt(getOrReturnDefault("CACHE_TTL_SECONDS", 60))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
