package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/bcrypt"

	pkgconfig "github.com/utafrali/addressbook/pkg/config"
	"github.com/utafrali/addressbook/pkg/database"
	"github.com/utafrali/addressbook/pkg/tracing"
)

// DefaultJWTSecret is the development placeholder. It is rejected outside
// development.
const DefaultJWTSecret = "change-this-to-a-secure-secret"

const minJWTSecretLen = 32

// Config holds all configuration for the address book service.
type Config struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"addressbook"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort            int           `env:"ADDRESSBOOK_HTTP_PORT" envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// PostgreSQL
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"addressbook"`
	PostgresPass     string        `env:"POSTGRES_PASSWORD" envDefault:"addressbook_secret"`
	PostgresDB       string        `env:"ADDRESSBOOK_DB_NAME" envDefault:"addressbook"`
	PostgresSSL      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32         `env:"POSTGRES_MAX_CONNS" envDefault:"20"`
	PostgresMinConns int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	SlowQuery        time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Redis backs recent-search history. Empty means in-process storage.
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	RecentSearchTTL time.Duration `env:"RECENT_SEARCH_TTL" envDefault:"720h"`

	// Kafka. No brokers means events are not published.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Authentication
	JWTSecret      string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTTokenExpiry string `env:"JWT_TOKEN_EXPIRY" envDefault:"1h"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"12"`

	// Sign-up and sign-in throttling per client IP. Zero RPS disables it.
	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"5"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Diagnostics
	HealthTimeout time.Duration `env:"HEALTH_CHECK_TIMEOUT" envDefault:"3s"`
	PprofEnabled  bool          `env:"PPROF_ENABLED" envDefault:"false"`
	PprofCIDRs    []string      `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load addressbook config: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting that cannot be expressed as a struct tag.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}

	if !c.IsDevelopment() {
		if c.JWTSecret == DefaultJWTSecret {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment))
		} else if len(c.JWTSecret) < minJWTSecretLen {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters long, got %d", minJWTSecretLen, len(c.JWTSecret)))
		}
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}

	if expiry, err := time.ParseDuration(c.JWTTokenExpiry); err != nil {
		errs = append(errs, fmt.Errorf("invalid JWT_TOKEN_EXPIRY %q: %w", c.JWTTokenExpiry, err))
	} else if expiry <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TOKEN_EXPIRY must be positive, got %s", expiry))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}

	if c.AuthRateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_RPS must not be negative, got %v", c.AuthRateLimitRPS))
	} else if c.AuthRateLimitRPS > 0 && c.AuthRateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_BURST must be at least 1, got %d", c.AuthRateLimitBurst))
	}

	if c.RecentSearchTTL <= 0 {
		errs = append(errs, fmt.Errorf("RECENT_SEARCH_TTL must be positive, got %s", c.RecentSearchTTL))
	}

	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.OTelSampleRate))
	}

	if c.PostgresMinConns > c.PostgresMaxConns {
		errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)", c.PostgresMinConns, c.PostgresMaxConns))
	}

	if c.PprofEnabled {
		for _, cidr := range c.PprofCIDRs {
			if _, _, err := net.ParseCIDR(cidr); err != nil {
				errs = append(errs, fmt.Errorf("invalid PPROF_ALLOWED_CIDRS entry %q: %w", cidr, err))
			}
		}
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// TokenExpiry returns the parsed session token horizon. Validate guarantees
// it parses.
func (c *Config) TokenExpiry() time.Duration {
	d, _ := time.ParseDuration(c.JWTTokenExpiry)
	return d
}

// Postgres returns the connection pool settings.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.PostgresMaxConns
	pg.MinConns = c.PostgresMinConns
	return pg
}

// Redis returns the Redis client settings and whether Redis is configured.
func (c *Config) Redis() (database.RedisConfig, bool) {
	rc := database.DefaultRedisConfig()
	rc.Addr = c.RedisAddr
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc, c.RedisAddr != ""
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:        c.OTelEnabled,
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTelEndpoint,
		Insecure:       c.OTelInsecure,
		SampleRate:     c.OTelSampleRate,
	}
}
