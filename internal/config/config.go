package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverBolt     = "bolt"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	Bolt        BoltConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Todo        TodoConfig
	Monitor     MonitorConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

// StoreConfig selects the todo/user persistence backend.
type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type MongoConfig struct {
	URL         string
	Database    string
	MaxPoolSize int
}

type BoltConfig struct {
	Path string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

// TodoConfig bounds list and export queries.
type TodoConfig struct {
	DefaultLimit  int
	MaxLimit      int
	ExportMaxRows int
}

type MonitorConfig struct {
	Interval time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{
		AppName:     getString("APP_NAME", "tasktracker"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Store: StoreConfig{
			Driver: getString("STORE_DRIVER", StoreDriverPostgres),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "tasktracker"),
			User:            getString("DB_USER", "tasktracker"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URL:         getString("MONGO_URL", "mongodb://localhost:27017"),
			Database:    getString("MONGO_DATABASE", "tasktracker"),
			MaxPoolSize: getInt("MONGO_MAX_POOL_SIZE", 50),
		},
		Bolt: BoltConfig{
			Path: getString("BOLT_PATH", "./data/tasktracker.db"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Issuer:     getString("JWT_ISSUER", "tasktracker"),
			SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),
		},
		Todo: TodoConfig{
			DefaultLimit:  getInt("TODO_DEFAULT_LIMIT", 10),
			MaxLimit:      getInt("TODO_MAX_LIMIT", 100),
			ExportMaxRows: getInt("EXPORT_MAX_ROWS", 5000),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 10*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTP),
		validation.Field(&c.Store),
		validation.Field(&c.Mongo, validation.Skip.When(c.Store.Driver != StoreDriverMongo)),
		validation.Field(&c.Bolt, validation.Skip.When(c.Store.Driver != StoreDriverBolt)),
		validation.Field(&c.Todo),
		validation.Field(&c.Logger),
	)
}

func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required),
	)
}

func (c StoreConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(StoreDriverPostgres, StoreDriverMongo, StoreDriverBolt)),
	)
}

func (c MongoConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Database, validation.Required),
	)
}

func (c BoltConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.Required),
	)
}

// Validate is only enforced by commands that issue tokens.
func (c JWTConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Minute)),
	)
}

func (c TodoConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultLimit, validation.Required, validation.Min(1), validation.Max(c.MaxLimit)),
		validation.Field(&c.MaxLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.ExportMaxRows, validation.Required, validation.Min(1)),
	)
}

func (c LoggerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Encoding, validation.In("json", "console")),
	)
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
