package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment (and .env when present).
type Config struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	GinMode  string `env:"GIN_MODE"  envDefault:"debug"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Database Database

	JWTSecret        string   `env:"JWT_SECRET"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RateLimitEnabled  bool          `env:"RATE_LIMIT_ENABLED"  envDefault:"true"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"120"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW"   envDefault:"1m"`

	RepairWorkers        int    `env:"REPAIR_WORKERS"         envDefault:"1"`
	AnomalySweepEnabled  bool   `env:"ANOMALY_SWEEP_ENABLED"  envDefault:"false"`
	AnomalySweepSchedule string `env:"ANOMALY_SWEEP_SCHEDULE" envDefault:"0 0 * * * *"`
}

type Database struct {
	Driver          string        `env:"DB_DRIVER"            envDefault:"postgres"`
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST"              envDefault:"localhost"`
	Port            string        `env:"DB_PORT"              envDefault:"5432"`
	User            string        `env:"DB_USER"              envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD"`
	Name            string        `env:"DB_NAME"              envDefault:"fantasy_doubles"`
	SSLMode         string        `env:"DB_SSLMODE"           envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"    envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// Load reads .env if present, then parses the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.RepairWorkers < 1 {
		return fmt.Errorf("REPAIR_WORKERS must be at least 1, got %d", c.RepairWorkers)
	}
	if c.RateLimitEnabled && (c.RateLimitRequests < 1 || c.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// DSN returns DATABASE_URL, or builds a postgres DSN from the DB_* parts.
// For sqlite the DSN is the database file path.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.Name + ".db"
	}

	parts := []string{
		"host=" + d.Host,
		"user=" + d.User,
		"dbname=" + d.Name,
		"port=" + d.Port,
		"sslmode=" + d.SSLMode,
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}
	return strings.Join(parts, " ")
}
