package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxListLimit           = 100
	DefaultCategoriesCacheTTLSecs = 60
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// posts live in mongo
	MongoURI    string `toml:"mongo_uri"`
	MongoDBName string `toml:"mongo_db_name"`

	// registered users live in postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// sessions and rate limits
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	AllowedOrigins              []string `toml:"allowed_origins"`
	MaxListLimit                int      `toml:"max_list_limit"`
	CategoriesCacheTTLSecs      int      `toml:"categories_cache_ttl_sec"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	RegistrationRateLimitPerMin int      `toml:"registration_rate_limit_per_min"`
	DashboardAuthRequired       bool     `toml:"dashboard_auth_required"`
	SessionCleanupIntervalHours int      `toml:"session_cleanup_interval_hours"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file, selects the env section and applies the
// environment overrides (a .env file in the working dir is loaded first, if present).
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env file: %s", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		c.MongoURI = mongoURI
	}
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PORT env var [%s]: %w", portStr, err)
		}
		c.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.MongoDBName == "" {
		c.MongoDBName = "blogdb"
	}
	if c.MaxListLimit <= 0 {
		c.MaxListLimit = DefaultMaxListLimit
	}
	if c.CategoriesCacheTTLSecs <= 0 {
		c.CategoriesCacheTTLSecs = DefaultCategoriesCacheTTLSecs
	}
	if c.SessionCleanupIntervalHours <= 0 {
		c.SessionCleanupIntervalHours = 8
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}
