package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix scopes every environment variable the backend reads.
	EnvPrefix = "AION"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Loyalty       LoyaltyConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Loyalty.Rate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AION_APP_ENV" required:"true"`
	Port         string `envconfig:"AION_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AION_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AION_DB_DSN"`
	Driver string `envconfig:"AION_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AION_DB_HOST"`
	Port     int    `envconfig:"AION_DB_PORT" default:"5432"`
	User     string `envconfig:"AION_DB_USER"`
	Password string `envconfig:"AION_DB_PASSWORD"`
	Name     string `envconfig:"AION_DB_NAME"`
	SSLMode  string `envconfig:"AION_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AION_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AION_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a DSN from discrete host settings when one was not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either AION_DB_DSN or AION_DB_HOST/USER/NAME must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"AION_REDIS_URL"`
	Address      string        `envconfig:"AION_REDIS_ADDR"`
	Password     string        `envconfig:"AION_REDIS_PASSWORD"`
	DB           int           `envconfig:"AION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AION_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AION_JWT_ISSUER" default:"aion-backend"`
	ExpirationMinutes      int    `envconfig:"AION_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"AION_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AION_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AION_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AION_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AION_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AION_ARGON_KEY_LEN" default:"32"`
}

// LoyaltyConfig controls point accrual at checkout.
type LoyaltyConfig struct {
	// AccrualRate is the fraction of the final order amount converted to
	// points, e.g. "0.01" credits 1 point per 100 won spent.
	AccrualRate string `envconfig:"AION_LOYALTY_ACCRUAL_RATE" default:"0.01"`
}

// Rate parses AccrualRate into a decimal, rejecting negatives.
func (l LoyaltyConfig) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(l.AccrualRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing loyalty accrual rate %q: %w", l.AccrualRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("loyalty accrual rate must not be negative")
	}
	return rate, nil
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AION_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AION_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AION_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AION_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AION_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AION_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AION_AUTO_MIGRATE" default:"false"`
}
