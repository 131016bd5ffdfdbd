package config

import (
	"time"

	"kitchen_control/pkg/utils"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	API       APIConfig
	Session   SessionConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Inventory InventoryConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type LoggerConfig struct {
	Level  string
	Pretty bool
}

// APIConfig points at the remote REST service this server fronts.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Secret      string
	CookieName  string
	Secure      bool
	IdleTimeout time.Duration
	Store       string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// InventoryConfig holds dashboard thresholds.
type InventoryConfig struct {
	LowStockKitchen   int
	LowStockManager   int
	ExpiryWarningDays int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               utils.Getenv("PORT", "8080"),
			CORSAllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			ShutdownTimeout:    utils.GetenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:  utils.Getenv("LOG_LEVEL", "info"),
			Pretty: utils.GetenvBool("LOG_PRETTY", true),
		},
		API: APIConfig{
			BaseURL: utils.Getenv("API_BASE_URL", "http://localhost:8081/api"),
			Timeout: utils.GetenvDuration("API_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			Secret:      utils.Getenv("SESSION_SECRET", "change-me-kitchen-control-session-secret"),
			CookieName:  utils.Getenv("SESSION_COOKIE", "kc_session"),
			Secure:      utils.GetenvBool("SESSION_SECURE", false),
			IdleTimeout: utils.GetenvDuration("SESSION_IDLE_TIMEOUT", 5*time.Minute),
			Store:       utils.Getenv("SESSION_STORE", StoreMemory),
		},
		Postgres: PostgresConfig{
			Host:            utils.Getenv("DB_HOST", "localhost"),
			Port:            utils.Getenv("DB_PORT", "5432"),
			User:            utils.Getenv("DB_USER", "kitchen"),
			Password:        utils.Getenv("DB_PASSWORD", "kitchen"),
			DBName:          utils.Getenv("DB_NAME", "kitchen_control"),
			SSLMode:         utils.Getenv("DB_SSLMODE", "disable"),
			MaxOpenConns:    utils.GetenvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    utils.GetenvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: utils.GetenvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     utils.Getenv("REDIS_ADDR", "localhost:6379"),
			Password: utils.Getenv("REDIS_PASSWORD", ""),
			DB:       utils.GetenvInt("REDIS_DB", 0),
		},
		Inventory: InventoryConfig{
			LowStockKitchen:   utils.GetenvInt("LOW_STOCK_KITCHEN", 20),
			LowStockManager:   utils.GetenvInt("LOW_STOCK_MANAGER", 50),
			ExpiryWarningDays: utils.GetenvInt("EXPIRY_WARNING_DAYS", 3),
		},
	}
}
