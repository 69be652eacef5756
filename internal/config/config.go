package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "propertypal/common/config"

	"github.com/joho/godotenv"
)

// Config propertypal-data settings
type Config struct {
	HTTP struct {
		Addr string
	}
	// API remote PropertyPal backend; empty BaseURL serves the local backend in-process.
	API struct {
		BaseURL  string
		Timeout  time.Duration
		Username string
		Password string
	}
	Storage struct {
		Driver string // memory | sqlite | postgres
	}
	Database commoncfg.DatabaseConfig
	Draft    struct {
		Store string // redis | sql
		Key   string
	}
	Redis commoncfg.RedisConfig
	Auth  struct {
		JWTSecret        string
		AccessTTL        time.Duration
		RefreshTTL       time.Duration
		OperatorUser     string
		OperatorPassword string
	}
	Events struct {
		Sink  string // none | mqtt | redis
		Topic string
	}
	MQTT commoncfg.MQTTConfig
	Log  struct {
		Level  string
		Format string
	}
}

// Load reads the environment, after loading envFile (default ".env") when it exists.
func Load(envFile ...string) (*Config, error) {
	path := ".env"
	if len(envFile) > 0 && envFile[0] != "" {
		path = envFile[0]
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.API.BaseURL = strings.TrimRight(getEnv("API_BASE_URL", ""), "/")
	cfg.API.Timeout = time.Duration(parseInt(getEnv("API_TIMEOUT_SECONDS", "15"), 15)) * time.Second
	cfg.API.Username = getEnv("API_USERNAME", "")
	cfg.API.Password = getEnv("API_PASSWORD", "")

	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite"))
	cfg.Database.Driver = cfg.Storage.Driver
	cfg.Database.Path = getEnv("SQLITE_PATH", "data/propertypal.db")
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "propertypal"
	cfg.Database.SSLMode = "disable"
	cfg.Database.LoadFromEnv("DB")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	defaultDraft := "sql"
	if cfg.Storage.Driver == "memory" {
		defaultDraft = "redis"
	}
	cfg.Draft.Store = strings.ToLower(getEnv("DRAFT_STORE", defaultDraft))
	cfg.Draft.Key = getEnv("WIZARD_DRAFT_KEY", "propertypal:wizard:draft")

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "change-me")
	cfg.Auth.AccessTTL = time.Duration(parseInt(getEnv("ACCESS_TOKEN_TTL_MINUTES", "15"), 15)) * time.Minute
	cfg.Auth.RefreshTTL = time.Duration(parseInt(getEnv("REFRESH_TOKEN_TTL_HOURS", "168"), 168)) * time.Hour
	cfg.Auth.OperatorUser = getEnv("OPERATOR_USER", "admin")
	cfg.Auth.OperatorPassword = getEnv("OPERATOR_PASSWORD", "ChangeMe123!")

	cfg.Events.Sink = strings.ToLower(getEnv("EVENTS_SINK", "none"))
	cfg.Events.Topic = getEnv("EVENTS_TOPIC", "propertypal/events")

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "propertypal-data"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// Remote reports whether a remote backend is configured.
func (c *Config) Remote() bool {
	return c.API.BaseURL != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
