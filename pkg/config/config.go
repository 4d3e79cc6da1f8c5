package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SELLERDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "SELLERDESK_APP_ENV"
	EnvPort       = "SELLERDESK_APP_PORT"
	EnvDBDSN      = "SELLERDESK_DB_DSN"
	EnvDBHost     = "SELLERDESK_DB_HOST"
	EnvDBUser     = "SELLERDESK_DB_USER"
	EnvDBName     = "SELLERDESK_DB_NAME"
	EnvRedisURL   = "SELLERDESK_REDIS_URL"
	EnvJWTSecret  = "SELLERDESK_JWT_SECRET"
	EnvJWTIssuer  = "SELLERDESK_JWT_ISSUER"
	EnvJWTExpMins = "SELLERDESK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SELLERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SELLERDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SELLERDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SELLERDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SELLERDESK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SELLERDESK_DB_DSN"`
	Driver string `envconfig:"SELLERDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SELLERDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"SELLERDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SELLERDESK_DB_USER"`
	LegacyPassword string `envconfig:"SELLERDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SELLERDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SELLERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SELLERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SELLERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SELLERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SELLERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SELLERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SELLERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SELLERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SELLERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SELLERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SELLERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SELLERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SELLERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SELLERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SELLERDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SELLERDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SELLERDESK_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SELLERDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SELLERDESK_AUTO_MIGRATE" default:"false"`
}

// PricingConfig tunes the read-through cache that fronts price resolution.
type PricingConfig struct {
	CacheTTL     time.Duration `envconfig:"SELLERDESK_PRICING_CACHE_TTL" default:"5m"`
	CacheEnabled bool          `envconfig:"SELLERDESK_PRICING_CACHE_ENABLED" default:"true"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"SELLERDESK_IDEMPOTENCY_TTL" default:"24h"`
}

// RateLimitConfig throttles mutating API calls per caller.
type RateLimitConfig struct {
	Enabled bool          `envconfig:"SELLERDESK_RATE_LIMIT_ENABLED" default:"true"`
	Limit   int64         `envconfig:"SELLERDESK_RATE_LIMIT" default:"120"`
	Window  time.Duration `envconfig:"SELLERDESK_RATE_LIMIT_WINDOW" default:"1m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
