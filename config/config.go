package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"` // postgres or sqlite
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"shop.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"shop-api"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"` // empty keeps carts in memory
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CartTTL       time.Duration `envconfig:"CART_TTL" default:"72h"`

	CheckoutTimeout time.Duration `envconfig:"CHECKOUT_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	PageSize    int `envconfig:"PAGE_SIZE" default:"20"`
	MaxPageSize int `envconfig:"MAX_PAGE_SIZE" default:"100"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	PolicyFile  string   `envconfig:"POLICY_FILE"`
	UploadsDir  string   `envconfig:"UPLOADS_DIR" default:"uploads"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, errors.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.PageSize < 1 || cfg.MaxPageSize < cfg.PageSize {
		return nil, errors.Errorf("invalid page sizes %d/%d", cfg.PageSize, cfg.MaxPageSize)
	}
	return &cfg, nil
}

// PostgresDSN prefers DATABASE_URL and falls back to the DB_* parts.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
