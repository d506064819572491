package config

import (
	"time"

	"github.com/josswuzhur/cloud-notes-app/utils"
)

type ServerConfig struct {
	Port            string
	AllowedOrigin   string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogPretty       bool
}

type DatabaseConfig struct {
	URI             string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	DatabaseName    string
	RetryWrites     bool
}

// MongoOptions converts the database config into the connection options the
// client constructor consumes.
func (c DatabaseConfig) MongoOptions() utils.MongoOptions {
	return utils.MongoOptions{
		URI:             c.URI,
		MaxPoolSize:     c.MaxPoolSize,
		MinPoolSize:     c.MinPoolSize,
		MaxConnIdleTime: c.MaxConnIdleTime,
		RetryWrites:     c.RetryWrites,
	}
}

type RedisConfig struct {
	URL         string
	PresenceTTL time.Duration
}

// IdentityConfig describes the external identity provider's tokens. The
// server only verifies and reads them; it never issues them. RequirePresence
// additionally gates valid tokens on a live session presence record.
type IdentityConfig struct {
	JWTSecret       string
	Issuer          string
	RequirePresence bool
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            utils.GetEnvAsString("PORT", "3001"),
		AllowedOrigin:   utils.GetEnvAsString("CORS_ALLOWED_ORIGIN", "*"),
		ShutdownTimeout: utils.GetEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        utils.GetEnvAsString("LOG_LEVEL", "info"),
		LogPretty:       utils.GetEnvAsBool("LOG_PRETTY", false),
	}
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URI:             utils.GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		MaxPoolSize:     utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:     utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
		MaxConnIdleTime: time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
		DatabaseName:    utils.GetEnvAsString("MONGO_DB", "cloudnotes"),
		RetryWrites:     utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),
	}
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:         utils.GetEnvAsString("REDIS_URL", ""),
		PresenceTTL: utils.GetEnvAsDuration("SESSION_PRESENCE_TTL", 30*time.Minute),
	}
}

func LoadIdentityConfig() IdentityConfig {
	return IdentityConfig{
		JWTSecret:       utils.GetEnvAsString("IDENTITY_JWT_SECRET", ""),
		Issuer:          utils.GetEnvAsString("IDENTITY_ISSUER", ""),
		RequirePresence: utils.GetEnvAsBool("IDENTITY_REQUIRE_PRESENCE", false),
	}
}
